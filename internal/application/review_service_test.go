package application

import (
	"errors"
	"testing"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reviewFixture returns a form filled by GN officers and reviewed by DV01 division users.
func reviewFixture(t *testing.T, opts Options) (*testEnv, *form.Form) {
	env := newTestEnv(t, opts)
	f := env.newForm(t, "review", 0)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})
	env.assign(t, f.ID, form.CreateAssignmentDTO{
		AssignedToUserType: office.UserTypeDivision, AssignedToOfficeCode: strp("DV01"),
		AssignmentType: form.AssignmentReview, CanReview: true,
	})
	return env, f
}

func TestIllegalEdgesAreStateErrorsForEveryone(t *testing.T) {
	env, f := reviewFixture(t, Options{})
	sub, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)
	_, err = env.svc.Review.Transition(divisionDV01, sub.ID, submission.StatusPendingReview, "")
	require.NoError(t, err)

	for _, caller := range []office.Caller{mohaUser, districtD01, divisionDV01, gnG001, gnG003} {
		_, err := env.svc.Review.Transition(caller, sub.ID, submission.StatusDraft, "")
		assert.True(t, errors.Is(err, errs.ErrState), "caller %d: %v", caller.UserID, err)
	}

	_, err = env.svc.Review.Transition(divisionDV01, sub.ID, "archived", "")
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestTransitionWithoutReviewRightsKeepsStatus(t *testing.T) {
	env, f := reviewFixture(t, Options{})
	sub, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)

	_, err = env.svc.Review.Transition(gnG001, sub.ID, submission.StatusApproved, "")
	assert.True(t, errors.Is(err, errs.ErrPermission))
	_, err = env.svc.Review.Transition(divisionDV02, sub.ID, submission.StatusApproved, "")
	assert.True(t, errors.Is(err, errs.ErrPermission))

	stored, err := env.repos.Submission.GetSubmissionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, stored.Status)
	assert.Nil(t, stored.ReviewedBy)
}

func TestTransitionRecordsReviewer(t *testing.T) {
	env, f := reviewFixture(t, Options{})
	sub, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)

	rejected, err := env.svc.Review.Transition(divisionDV01, sub.ID, submission.StatusRejected, "address missing")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, divisionDV01.UserID, *rejected.ReviewedBy)
	require.NotNil(t, rejected.ReviewNotes)
	assert.Equal(t, "address missing", *rejected.ReviewNotes)
	require.NotNil(t, rejected.ReviewedAt)
	assert.True(t, rejected.ReviewedAt.Equal(env.clock.Now()))

	_, err = env.svc.Review.Transition(divisionDV01, sub.ID, submission.StatusApproved, "")
	assert.True(t, errors.Is(err, errs.ErrState), "rejected is terminal")

	history, err := env.svc.Query.History(divisionDV01, sub.ID, submission.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, submission.StatusRejected, history[1].ToStatus)
	assert.Equal(t, "address missing", history[1].Notes)
	assert.Equal(t, divisionDV01.UserID, history[1].ActorID)
}

func TestDraftToSubmittedGoesThroughFinalize(t *testing.T) {
	env, f := reviewFixture(t, Options{})
	draft, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	require.NoError(t, err)

	_, err = env.svc.Review.Transition(divisionDV01, draft.ID, submission.StatusSubmitted, "")
	assert.True(t, errors.Is(err, errs.ErrPermission), "reviewers cannot finalize someone else's draft")

	sub, err := env.svc.Review.Transition(gnG001, draft.ID, submission.StatusSubmitted, "")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, sub.Status)
	assert.Nil(t, sub.ReviewedBy)
}

func TestBulkTransitionReportsEachItem(t *testing.T) {
	env, f := reviewFixture(t, Options{})
	a, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
	require.NoError(t, err)
	b, err := env.svc.Submission.Submit(gnG002, f.ID, familyInput("FAM-002", false))
	require.NoError(t, err)
	c, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	require.NoError(t, err)
	_, err = env.svc.Review.Transition(divisionDV01, b.ID, submission.StatusApproved, "")
	require.NoError(t, err)

	results := env.svc.Review.BulkTransition(divisionDV01, []uint{a.ID, b.ID, c.ID, 999}, submission.StatusApproved, "batch")
	require.Len(t, results, 4)

	assert.True(t, results[0].OK)
	assert.Equal(t, submission.StatusApproved, results[0].Status)
	assert.False(t, results[1].OK)
	assert.Equal(t, string(errs.KindState), results[1].ErrorKind)
	assert.False(t, results[2].OK)
	assert.Equal(t, string(errs.KindState), results[2].ErrorKind)
	assert.False(t, results[3].OK)
	assert.Equal(t, string(errs.KindNotFound), results[3].ErrorKind)

	stored, err := env.repos.Submission.GetSubmissionByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusApproved, stored.Status)
}

func TestReopen(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		env, f := reviewFixture(t, Options{})
		sub, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
		require.NoError(t, err)
		_, err = env.svc.Review.Transition(divisionDV01, sub.ID, submission.StatusApproved, "")
		require.NoError(t, err)

		_, err = env.svc.Review.Reopen(districtD01, sub.ID, "")
		assert.True(t, errors.Is(err, errs.ErrState))
	})

	t.Run("enabled", func(t *testing.T) {
		env, f := reviewFixture(t, Options{AllowReopen: true})
		env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeSpecific, AssignedToUserID: uintp(divisionDV02.UserID), CanEdit: true})
		sub, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
		require.NoError(t, err)

		_, err = env.svc.Review.Reopen(districtD01, sub.ID, "")
		assert.True(t, errors.Is(err, errs.ErrState), "only terminal submissions reopen")

		_, err = env.svc.Review.Transition(divisionDV01, sub.ID, submission.StatusApproved, "ok")
		require.NoError(t, err)

		_, err = env.svc.Review.Reopen(divisionDV01, sub.ID, "")
		assert.True(t, errors.Is(err, errs.ErrPermission), "review rights are not edit rights")

		reopened, err := env.svc.Review.Reopen(divisionDV02, sub.ID, "needs correction")
		require.NoError(t, err)
		assert.Equal(t, submission.StatusSubmitted, reopened.Status)
		assert.Nil(t, reopened.ReviewedBy)

		n, err := env.repos.Submission.CountCounted(f.ID, reopened.EntityKey())
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}
