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

// TestHomeSurveyLifecycle walks a form from creation through review.
func TestHomeSurveyLifecycle(t *testing.T) {
	env := newTestEnv(t, Options{})
	outsider := office.Caller{UserID: 99, Type: office.UserTypeGN, OfficeCode: "G003"}

	f, err := env.svc.Form.CreateForm(districtD01, form.CreateFormDTO{
		Code:         "home_survey",
		Name:         "Home survey",
		TargetEntity: form.TargetFamily,
	})
	require.NoError(t, err)
	assert.True(t, f.IsActive)
	assert.Zero(t, f.MaxSubmissionsPerEntity)

	_, err = env.svc.Form.AddField(districtD01, f.ID, form.CreateFieldDTO{
		FieldCode: "head_name", Label: "Head of household", Type: form.FieldText, IsRequired: true,
	})
	require.NoError(t, err)

	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN, CanEdit: true})
	env.assign(t, f.ID, form.CreateAssignmentDTO{
		AssignedToUserType: office.UserTypeDivision, AssignmentType: form.AssignmentReview, CanReview: true,
	})

	sub, err := env.svc.Submission.Submit(gnG001, f.ID, submission.SubmitDTO{
		EntityType: form.TargetFamily,
		FamilyID:   "FAM-001",
		Responses:  form.Responses{"head_name": form.Scalar("Perera")},
	})
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, sub.Status)
	assert.Equal(t, "G001", sub.OfficeCode)

	approved, err := env.svc.Review.Transition(divisionDV01, sub.ID, submission.StatusApproved, "verified")
	require.NoError(t, err)
	assert.Equal(t, submission.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, divisionDV01.UserID, *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewNotes)
	assert.Equal(t, "verified", *approved.ReviewNotes)

	_, err = env.svc.Submission.Update(outsider, sub.ID, submission.UpdateDTO{
		Responses: form.Responses{"head_name": form.Scalar("Silva")},
	})
	assert.True(t, errors.Is(err, errs.ErrPermission))

	stored, err := env.svc.Query.GetSubmission(gnG001, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Perera", stored.Responses.Data()["head_name"].Text())

	history, err := env.svc.Query.History(districtD01, sub.ID, submission.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, submission.StatusSubmitted, history[0].ToStatus)
	require.NotNil(t, history[1].FromStatus)
	assert.Equal(t, submission.StatusSubmitted, *history[1].FromStatus)
	assert.Equal(t, submission.StatusApproved, history[1].ToStatus)
}
