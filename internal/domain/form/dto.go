package form

import (
	"regexp"
	"time"

	"github.com/linskybing/survey-platform/internal/domain/office"
)

const MaxCodeLength = 100

var codePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidCode reports whether s is a valid form or field code.
func ValidCode(s string) bool {
	return len(s) <= MaxCodeLength && codePattern.MatchString(s)
}

type CreateFormDTO struct {
	Code                    string       `json:"form_code" binding:"required" example:"home_survey"`
	Name                    string       `json:"form_name" binding:"required" example:"Home survey"`
	Description             string       `json:"description"`
	TargetEntity            TargetEntity `json:"target_entity" binding:"required,oneof=family member both" example:"family"`
	MaxSubmissionsPerEntity int          `json:"max_submissions_per_entity" binding:"min=0"`
	IsActive                *bool        `json:"is_active"`
	StartDate               *time.Time   `json:"start_date"`
	EndDate                 *time.Time   `json:"end_date"`
}

type UpdateFormDTO struct {
	Name                    *string       `json:"form_name"`
	Description             *string       `json:"description"`
	TargetEntity            *TargetEntity `json:"target_entity" binding:"omitempty,oneof=family member both"`
	MaxSubmissionsPerEntity *int          `json:"max_submissions_per_entity" binding:"omitempty,min=0"`
	IsActive                *bool         `json:"is_active"`
	StartDate               *time.Time    `json:"start_date"`
	EndDate                 *time.Time    `json:"end_date"`
}

type CreateFieldDTO struct {
	FieldCode       string     `json:"field_code" binding:"required" example:"head_name"`
	Label           string     `json:"field_label" binding:"required" example:"Head of household"`
	Type            FieldType  `json:"field_type" binding:"required" example:"text"`
	Options         OptionList `json:"field_options"`
	IsRequired      bool       `json:"is_required"`
	Order           *int       `json:"field_order"`
	DefaultValue    string     `json:"default_value"`
	Placeholder     string     `json:"placeholder"`
	HintText        string     `json:"hint_text"`
	ValidationRules RuleList   `json:"validation_rules"`
}

type FieldOrder struct {
	FieldID uint `json:"field_id" binding:"required"`
	Order   int  `json:"order"`
}

type ReorderFieldsDTO struct {
	Items []FieldOrder `json:"items" binding:"required,min=1,dive"`
}

type CreateAssignmentDTO struct {
	AssignedToUserType   office.UserType `json:"assigned_to_user_type" binding:"required,oneof=moha district division gn specific"`
	AssignedToOfficeCode *string         `json:"assigned_to_office_code"`
	AssignedToUserID     *uint           `json:"assigned_to_user_id"`
	AssignmentType       AssignmentType  `json:"assignment_type" binding:"omitempty,oneof=fill all review"`
	CanEdit              bool            `json:"can_edit"`
	CanDelete            bool            `json:"can_delete"`
	CanReview            bool            `json:"can_review"`
	ExpiresAt            *time.Time      `json:"expires_at"`
}

// FormDetail is a form with its ordered fields and the caller's resolved access.
type FormDetail struct {
	Form
	Access Access `json:"access"`
}

type FormFilter struct {
	Search       string       `form:"q"`
	Active       *bool        `form:"active"`
	TargetEntity TargetEntity `form:"target_entity"`
	From         *time.Time   `form:"from" time_format:"2006-01-02"`
	To           *time.Time   `form:"to" time_format:"2006-01-02"`
	Limit        int          `form:"limit"`
	Offset       int          `form:"offset"`
}
