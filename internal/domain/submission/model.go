package submission

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft         Status = "draft"
	StatusSubmitted     Status = "submitted"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// CountedStatuses are the statuses that consume a form's per-entity submission cap.
var CountedStatuses = []Status{StatusSubmitted, StatusPendingReview, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusPendingReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Counted reports whether a submission in this status counts toward the cap.
func (s Status) Counted() bool {
	return s.Valid() && s != StatusDraft
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Submission struct {
	ID          uint                               `gorm:"primaryKey" json:"submission_id"`
	FormID      uint                               `gorm:"not null;index:idx_submission_entity" json:"form_id"`
	EntityType  form.TargetEntity                  `gorm:"size:16;not null;index:idx_submission_entity" json:"entity_type"`
	FamilyID    string                             `gorm:"size:64;not null;index:idx_submission_entity" json:"family_id"`
	MemberID    *string                            `gorm:"size:64;index:idx_submission_entity" json:"member_id,omitempty"`
	SubmittedBy uint                               `gorm:"not null;index" json:"submitted_by"`
	OfficeCode  string                             `gorm:"size:32;not null;index" json:"office_code"`
	Status      Status                             `gorm:"size:16;not null;index" json:"status"`
	Responses   datatypes.JSONType[form.Responses] `gorm:"not null" json:"responses"`
	CreatedAt   time.Time                          `json:"created_at"`
	UpdatedAt   time.Time                          `json:"updated_at"`
	SubmittedAt *time.Time                         `json:"submitted_at,omitempty"`
	ReviewedBy  *uint                              `json:"reviewed_by,omitempty"`
	ReviewNotes *string                            `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedAt  *time.Time                         `json:"reviewed_at,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// EntityKey identifies the family or member a submission is about.
func (s *Submission) EntityKey() EntityKey {
	k := EntityKey{Type: s.EntityType, FamilyID: s.FamilyID}
	if s.MemberID != nil {
		k.MemberID = *s.MemberID
	}
	return k
}

type EntityKey struct {
	Type     form.TargetEntity
	FamilyID string
	MemberID string
}

// Transition is one entry of a submission's status history.
type Transition struct {
	ID           uint      `gorm:"primaryKey" json:"transition_id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	FromStatus   *Status   `gorm:"size:16" json:"from_status,omitempty"`
	ToStatus     Status    `gorm:"size:16;not null" json:"to_status"`
	ActorID      uint      `gorm:"not null;index" json:"actor_id"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (Transition) TableName() string {
	return "submission_transitions"
}
