package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanReviewTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusSubmitted, StatusPendingReview, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusPendingReview, StatusApproved, true},
		{StatusPendingReview, StatusRejected, true},
		{StatusPendingReview, StatusDraft, false},
		{StatusPendingReview, StatusSubmitted, false},
		{StatusDraft, StatusSubmitted, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusSubmitted, StatusSubmitted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanReviewTransition(tt.from, tt.to))
		})
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.False(t, StatusDraft.Counted())
	for _, s := range CountedStatuses {
		assert.True(t, s.Counted(), s)
	}
	assert.False(t, Status("archived").Valid())
	assert.True(t, StatusApproved.Terminal())
	assert.False(t, StatusPendingReview.Terminal())
	assert.True(t, StatusRejected.Editable())
	assert.False(t, StatusApproved.Editable())
	assert.False(t, StatusDraft.Editable())
}
