package application

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/registry"
	regmock "github.com/linskybing/survey-platform/internal/domain/registry/mock"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/internal/testutils"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func familyInput(familyID string, asDraft bool) submission.SubmitDTO {
	return submission.SubmitDTO{
		EntityType: form.TargetFamily,
		FamilyID:   familyID,
		Responses:  form.Responses{"head_name": form.Scalar("Perera"), "members": form.Scalar("4")},
		AsDraft:    asDraft,
	}
}

func TestSubmitCapOfOne(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "capped", 1)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})

	first, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, first.Status)
	require.NotNil(t, first.SubmittedAt)

	_, err = env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	assert.True(t, errors.Is(err, errs.ErrLimitExceeded))

	// Drafts never count and are never blocked.
	draft, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	require.NoError(t, err)
	assert.Equal(t, submission.StatusDraft, draft.Status)

	_, err = env.svc.Submission.Finalize(gnG001, draft.ID)
	assert.True(t, errors.Is(err, errs.ErrLimitExceeded))

	// The cap is per entity.
	_, err = env.svc.Submission.Submit(gnG002, f.ID, familyInput("FAM-002", false))
	assert.NoError(t, err)

	n, err := env.repos.Submission.CountCounted(f.ID, first.EntityKey())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSubmitCapUnderConcurrentFinalization(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "racy", 1)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})

	const writers = 8
	drafts := make([]uint, 0, writers)
	for i := 0; i < writers; i++ {
		d, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
		require.NoError(t, err)
		drafts = append(drafts, d.ID)
	}

	var wg sync.WaitGroup
	results := make([]error, writers)
	for i := range drafts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, results[i] = env.svc.Submission.Finalize(gnG001, drafts[i])
				return
			}
			_, results[i] = env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
		}(i)
	}
	wg.Wait()

	ok, limited := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrLimitExceeded):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, limited)

	n, err := env.repos.Submission.CountCounted(f.ID, submission.EntityKey{Type: form.TargetFamily, FamilyID: "FAM-001"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "idem", 1)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})

	draft, err := env.svc.Submission.Submit(gnG001, f.ID, submission.SubmitDTO{
		EntityType: form.TargetFamily, FamilyID: "FAM-001", AsDraft: true,
		Responses: form.Responses{"members": form.Scalar("2")},
	})
	require.NoError(t, err)

	_, err = env.svc.Submission.Finalize(gnG001, draft.ID)
	assert.True(t, errors.Is(err, errs.ErrValidation), "missing required field must block finalization")

	_, err = env.svc.Submission.Update(gnG001, draft.ID, submission.UpdateDTO{Responses: form.Responses{"head_name": form.Scalar("Perera")}})
	require.NoError(t, err)

	first, err := env.svc.Submission.Finalize(gnG001, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, first.Status)

	again, err := env.svc.Submission.Finalize(gnG001, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, again.Status)

	n, err := env.repos.Submission.CountCounted(f.ID, first.EntityKey())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	history, err := env.repos.Transition.GetTransitions(repository.TransitionQueryParams{SubmissionID: &draft.ID})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, submission.StatusDraft, history[0].ToStatus)
	assert.Equal(t, submission.StatusDraft, *history[1].FromStatus)
	assert.Equal(t, submission.StatusSubmitted, history[1].ToStatus)
}

func TestSubmitChecks(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "checks", 0)
	past := env.clock.Now().Add(-time.Hour)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN, AssignedToOfficeCode: strp("DV01")})
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeDivision, ExpiresAt: &past})

	tests := []struct {
		name   string
		caller office.Caller
		input  submission.SubmitDTO
		want   error
	}{
		{"not assigned", gnG003, familyInput("FAM-003", false), errs.ErrPermission},
		{"only expired rows match", divisionDV01, familyInput("FAM-001", false), errs.ErrExpired},
		{"gn outside own office", gnG002, familyInput("FAM-001", false), errs.ErrPermission},
		{"unknown family", gnG001, familyInput("FAM-404", false), errs.ErrNotFound},
		{"wrong entity type", gnG001, submission.SubmitDTO{EntityType: form.TargetMember, FamilyID: "FAM-001", MemberID: strp("M001")}, errs.ErrValidation},
		{"missing required", gnG001, submission.SubmitDTO{EntityType: form.TargetFamily, FamilyID: "FAM-001"}, errs.ErrValidation},
		{"unknown response key", gnG001, submission.SubmitDTO{EntityType: form.TargetFamily, FamilyID: "FAM-001",
			Responses: form.Responses{"head_name": form.Scalar("x"), "colour": form.Scalar("red")}}, errs.ErrValidation},
		{"rule violation", gnG001, submission.SubmitDTO{EntityType: form.TargetFamily, FamilyID: "FAM-001",
			Responses: form.Responses{"head_name": form.Scalar("x"), "members": form.Scalar("0")}}, errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Submission.Submit(tt.caller, f.ID, tt.input)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	// Higher tiers may target any entity.
	_, err := env.svc.Submission.Submit(districtD01, f.ID, familyInput("FAM-003", false))
	assert.NoError(t, err)
}

func TestFinalizeOnlyBySubmitter(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "owned_drafts", 0)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN, CanEdit: true})

	draft, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	require.NoError(t, err)

	_, err = env.svc.Submission.Update(gnG002, draft.ID, submission.UpdateDTO{Responses: form.Responses{"members": form.Scalar("3")}})
	assert.True(t, errors.Is(err, errs.ErrPermission))

	// Edit rights on the form do not extend to another user's draft.
	_, err = env.svc.Submission.Finalize(gnG002, draft.ID)
	assert.True(t, errors.Is(err, errs.ErrPermission))

	stored, err := env.repos.Submission.GetSubmissionByID(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusDraft, stored.Status)

	done, err := env.svc.Submission.Finalize(gnG001, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, done.Status)
}

func TestSubmitOutsideFormWindow(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "window", 0)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})

	end := env.clock.Now().Add(time.Hour)
	_, err := env.svc.Form.UpdateForm(districtD01, f.ID, form.UpdateFormDTO{EndDate: &end})
	require.NoError(t, err)

	_, err = env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)
	_, err = env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	assert.True(t, errors.Is(err, errs.ErrExpired))

	_, err = env.svc.Form.UpdateForm(districtD01, f.ID, form.UpdateFormDTO{IsActive: boolp(false)})
	require.NoError(t, err)
	_, err = env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	assert.True(t, errors.Is(err, errs.ErrExpired))
}

func TestMemberSubmissions(t *testing.T) {
	env := newTestEnv(t, Options{})
	f, err := env.svc.Form.CreateForm(districtD01, form.CreateFormDTO{
		Code: "member_health", Name: "Health", TargetEntity: form.TargetMember, MaxSubmissionsPerEntity: 1,
	})
	require.NoError(t, err)
	_, err = env.svc.Form.AddField(districtD01, f.ID, form.CreateFieldDTO{FieldCode: "smoker", Label: "Smoker", Type: form.FieldYesNo, IsRequired: true})
	require.NoError(t, err)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})

	in := submission.SubmitDTO{EntityType: form.TargetMember, FamilyID: "FAM-001", MemberID: strp("M001"),
		Responses: form.Responses{"smoker": form.Scalar("Y")}}
	sub, err := env.svc.Submission.Submit(gnG001, f.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "yes", sub.Responses.Data()["smoker"].Text())

	_, err = env.svc.Submission.Submit(gnG001, f.ID, in)
	assert.True(t, errors.Is(err, errs.ErrLimitExceeded))

	in.MemberID = strp("M002")
	_, err = env.svc.Submission.Submit(gnG001, f.ID, in)
	assert.NoError(t, err)

	in.MemberID = strp("M404")
	_, err = env.svc.Submission.Submit(gnG001, f.ID, in)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	in.MemberID = nil
	_, err = env.svc.Submission.Submit(gnG001, f.ID, in)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestSubmitUsesEntityRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(func() { ctrl.Finish() })

	conn := testutils.NewTestDB(t)
	repos := repository.NewRepositories(conn)
	entities := regmock.NewMockEntityRegistry(ctrl)
	svc := New(repos, testutils.Tree(t), entities, nil, Options{Logger: quietLogger()})

	f, err := svc.Form.CreateForm(mohaUser, form.CreateFormDTO{Code: "external", Name: "External", TargetEntity: form.TargetFamily})
	require.NoError(t, err)
	_, err = svc.Form.CreateAssignment(mohaUser, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})
	require.NoError(t, err)

	entities.EXPECT().
		Lookup(registry.EntityRef{Type: form.TargetFamily, FamilyID: "EXT-1"}).
		Return(registry.Entity{OfficeCode: "G002"}, nil)
	entities.EXPECT().
		Lookup(registry.EntityRef{Type: form.TargetFamily, FamilyID: "EXT-2"}).
		Return(registry.Entity{}, errs.NotFound("family EXT-2 not found"))

	sub, err := svc.Submission.Submit(gnG002, f.ID, submission.SubmitDTO{EntityType: form.TargetFamily, FamilyID: "EXT-1"})
	require.NoError(t, err)
	assert.Equal(t, "G002", sub.OfficeCode)

	_, err = svc.Submission.Submit(gnG002, f.ID, submission.SubmitDTO{EntityType: form.TargetFamily, FamilyID: "EXT-2"})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestUpdateSubmissionRules(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "edits", 0)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeDivision, CanEdit: true, CanReview: true})

	draft, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	require.NoError(t, err)

	_, err = env.svc.Submission.Update(gnG002, draft.ID, submission.UpdateDTO{Responses: form.Responses{"members": form.Scalar("3")}})
	assert.True(t, errors.Is(err, errs.ErrPermission), "only the submitter edits a draft")
	_, err = env.svc.Submission.Update(divisionDV01, draft.ID, submission.UpdateDTO{Responses: form.Responses{"members": form.Scalar("3")}})
	assert.True(t, errors.Is(err, errs.ErrPermission), "edit rights do not reach drafts")

	// Drafts may drop required answers.
	updated, err := env.svc.Submission.Update(gnG001, draft.ID, submission.UpdateDTO{Responses: form.Responses{"head_name": form.Scalar("")}})
	require.NoError(t, err)
	_, has := updated.Responses.Data()["head_name"]
	assert.False(t, has)

	sub, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)

	_, err = env.svc.Submission.Update(gnG001, sub.ID, submission.UpdateDTO{Responses: form.Responses{"members": form.Scalar("3")}})
	assert.True(t, errors.Is(err, errs.ErrPermission), "submitter without edit rights")

	_, err = env.svc.Submission.Update(divisionDV01, sub.ID, submission.UpdateDTO{Responses: form.Responses{"head_name": form.Scalar("")}})
	assert.True(t, errors.Is(err, errs.ErrValidation), "required answers stay required after submission")

	edited, err := env.svc.Submission.Update(divisionDV01, sub.ID, submission.UpdateDTO{Responses: form.Responses{"members": form.Scalar("6")}})
	require.NoError(t, err)
	assert.Equal(t, "6", edited.Responses.Data()["members"].Text())
	assert.Equal(t, "Perera", edited.Responses.Data()["head_name"].Text())

	_, err = env.svc.Review.Transition(divisionDV01, sub.ID, submission.StatusApproved, "")
	require.NoError(t, err)
	_, err = env.svc.Submission.Update(divisionDV01, sub.ID, submission.UpdateDTO{Responses: form.Responses{"members": form.Scalar("7")}})
	assert.True(t, errors.Is(err, errs.ErrPermission), "approved submissions are not editable")
}

func TestDeleteSubmissionRules(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "deletes", 0)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeSpecific, AssignedToUserID: uintp(divisionDV02.UserID), CanDelete: true})

	draft, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	require.NoError(t, err)
	sub, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)

	err = env.svc.Submission.Delete(gnG002, draft.ID)
	assert.True(t, errors.Is(err, errs.ErrPermission))
	err = env.svc.Submission.Delete(gnG001, sub.ID)
	assert.True(t, errors.Is(err, errs.ErrPermission))

	require.NoError(t, env.svc.Submission.Delete(gnG001, draft.ID))
	require.NoError(t, env.svc.Submission.Delete(divisionDV02, sub.ID))

	_, err = env.repos.Submission.GetSubmissionByID(sub.ID)
	assert.Error(t, err)
	history, err := env.repos.Transition.GetTransitions(repository.TransitionQueryParams{SubmissionID: &sub.ID})
	require.NoError(t, err)
	assert.Empty(t, history)

	err = env.svc.Submission.Delete(gnG001, 12345)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}
