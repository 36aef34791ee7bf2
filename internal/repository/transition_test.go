package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusp(s submission.Status) *submission.Status { return &s }

func TestGetTransitionsFilters(t *testing.T) {
	repos := NewRepositories(testutils.NewTestDB(t))
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	rows := []submission.Transition{
		{SubmissionID: 1, ToStatus: submission.StatusDraft, ActorID: 4, CreatedAt: base},
		{SubmissionID: 1, FromStatus: statusp(submission.StatusDraft), ToStatus: submission.StatusSubmitted, ActorID: 4, CreatedAt: base.Add(time.Hour)},
		{SubmissionID: 1, FromStatus: statusp(submission.StatusSubmitted), ToStatus: submission.StatusApproved, ActorID: 3, Notes: "ok", CreatedAt: base.Add(48 * time.Hour)},
		{SubmissionID: 2, ToStatus: submission.StatusSubmitted, ActorID: 5, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range rows {
		require.NoError(t, repos.Transition.CreateTransition(&rows[i]))
	}

	sub := uint(1)
	actor := uint(4)
	from := base.Add(30 * time.Minute)
	to := base.Add(24 * time.Hour)

	tests := []struct {
		name   string
		params TransitionQueryParams
		want   []submission.Status
	}{
		{"by submission", TransitionQueryParams{SubmissionID: &sub}, []submission.Status{
			submission.StatusDraft, submission.StatusSubmitted, submission.StatusApproved}},
		{"by actor", TransitionQueryParams{SubmissionID: &sub, ActorID: &actor}, []submission.Status{
			submission.StatusDraft, submission.StatusSubmitted}},
		{"by window", TransitionQueryParams{StartTime: &from, EndTime: &to}, []submission.Status{
			submission.StatusSubmitted, submission.StatusSubmitted}},
		{"by target status", TransitionQueryParams{ToStatus: statusp(submission.StatusApproved)}, []submission.Status{
			submission.StatusApproved}},
		{"paged", TransitionQueryParams{SubmissionID: &sub, Limit: 1, Offset: 1}, []submission.Status{
			submission.StatusSubmitted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repos.Transition.GetTransitions(tt.params)
			require.NoError(t, err)
			statuses := make([]submission.Status, 0, len(got))
			for _, tr := range got {
				statuses = append(statuses, tr.ToStatus)
			}
			assert.Equal(t, tt.want, statuses)
		})
	}
}

func TestExecTxRollsBack(t *testing.T) {
	repos := NewRepositories(testutils.NewTestDB(t))
	boom := errors.New("boom")

	err := repos.ExecTx(func(tx *Repos) error {
		if err := tx.Transition.CreateTransition(&submission.Transition{
			SubmissionID: 9, ToStatus: submission.StatusDraft, ActorID: 1,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sub := uint(9)
	got, err := repos.Transition.GetTransitions(TransitionQueryParams{SubmissionID: &sub})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repos.Transition.DeleteBySubmission(9))
}
