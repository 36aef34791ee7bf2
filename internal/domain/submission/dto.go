package submission

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
)

type SubmitDTO struct {
	EntityType form.TargetEntity `json:"entity_type" binding:"required,oneof=family member" example:"family"`
	FamilyID   string            `json:"family_id" binding:"required" example:"FAM-0001"`
	MemberID   *string           `json:"member_id"`
	Responses  form.Responses    `json:"responses"`
	AsDraft    bool              `json:"as_draft"`
}

type UpdateDTO struct {
	Responses form.Responses `json:"responses" binding:"required"`
}

type TransitionDTO struct {
	Status Status `json:"status" binding:"required" example:"approved"`
	Notes  string `json:"notes"`
}

type ReopenDTO struct {
	Notes string `json:"notes"`
}

type BulkTransitionDTO struct {
	IDs    []uint `json:"ids" binding:"required,min=1"`
	Status Status `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// BulkResult is the outcome of one item in a bulk transition.
type BulkResult struct {
	SubmissionID uint        `json:"submission_id"`
	OK           bool        `json:"ok"`
	Status       Status      `json:"status,omitempty"`
	ErrorKind    string      `json:"error_kind,omitempty"`
	Error        string      `json:"error,omitempty"`
	Submission   *Submission `json:"-"`
}

type ListFilter struct {
	FormID     *uint             `form:"-"`
	Status     Status            `form:"status"`
	EntityType form.TargetEntity `form:"entity_type"`
	From       *time.Time        `form:"from" time_format:"2006-01-02"`
	To         *time.Time        `form:"to" time_format:"2006-01-02"`
	Search     string            `form:"q"`
	Limit      int               `form:"limit"`
	Offset     int               `form:"offset"`
}

type HistoryFilter struct {
	ActorID *uint      `form:"-"`
	From    *time.Time `form:"from" time_format:"2006-01-02"`
	To      *time.Time `form:"to" time_format:"2006-01-02"`
	Limit   int        `form:"limit"`
	Offset  int        `form:"offset"`
}
