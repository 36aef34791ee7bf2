package submission

// reviewEdges lists the status changes a reviewer may make. draft to submitted is a
// finalization and is not a review edge.
var reviewEdges = map[Status][]Status{
	StatusSubmitted:     {StatusPendingReview, StatusApproved, StatusRejected},
	StatusPendingReview: {StatusApproved, StatusRejected},
}

// CanReviewTransition reports whether from -> to is a legal review transition.
func CanReviewTransition(from, to Status) bool {
	for _, s := range reviewEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Editable reports whether a submission in status s may have its responses changed by
// someone holding edit rights. Drafts are only editable by their submitter.
func (s Status) Editable() bool {
	return s == StatusSubmitted || s == StatusRejected
}
