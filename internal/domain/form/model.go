package form

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/office"
	"gorm.io/datatypes"
)

type TargetEntity string

const (
	TargetFamily TargetEntity = "family"
	TargetMember TargetEntity = "member"
	TargetBoth   TargetEntity = "both"
)

func (t TargetEntity) Valid() bool {
	return t == TargetFamily || t == TargetMember || t == TargetBoth
}

// Accepts reports whether a submission against entityType may target a form with this target.
func (t TargetEntity) Accepts(entityType TargetEntity) bool {
	if t == TargetBoth {
		return entityType == TargetFamily || entityType == TargetMember
	}
	return t == entityType
}

type Form struct {
	ID                      uint         `gorm:"primaryKey" json:"form_id"`
	Code                    string       `gorm:"size:100;not null;uniqueIndex" json:"form_code"`
	Name                    string       `gorm:"size:255;not null" json:"form_name"`
	Description             string       `gorm:"type:text" json:"description"`
	TargetEntity            TargetEntity `gorm:"size:16;not null" json:"target_entity"`
	MaxSubmissionsPerEntity int          `gorm:"not null" json:"max_submissions_per_entity"`
	IsActive                bool         `gorm:"not null" json:"is_active"`
	StartDate               *time.Time   `json:"start_date,omitempty"`
	EndDate                 *time.Time   `json:"end_date,omitempty"`
	CreatedBy               uint         `gorm:"not null;index" json:"created_by_user_id"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
	Fields                  []FormField  `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
}

func (Form) TableName() string {
	return "forms"
}

// OpenAt reports whether the form accepts submissions at now.
func (f *Form) OpenAt(now time.Time) bool {
	if !f.IsActive {
		return false
	}
	if f.StartDate != nil && now.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && now.After(*f.EndDate) {
		return false
	}
	return true
}

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldDropdown FieldType = "dropdown"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldYesNo    FieldType = "yesno"
	FieldFile     FieldType = "file"
	FieldRating   FieldType = "rating"
)

// Rules is the stored, already normalized rule list of a field.
type Rules = datatypes.JSONSlice[ValidationRule]

type FormField struct {
	ID              uint                        `gorm:"primaryKey" json:"field_id"`
	FormID          uint                        `gorm:"not null;uniqueIndex:idx_form_field_code" json:"form_id"`
	FieldCode       string                      `gorm:"size:100;not null;uniqueIndex:idx_form_field_code" json:"field_code"`
	Label           string                      `gorm:"size:255;not null" json:"field_label"`
	Type            FieldType                   `gorm:"size:16;not null" json:"field_type"`
	Options         datatypes.JSONSlice[string] `json:"field_options"`
	IsRequired      bool                        `gorm:"not null" json:"is_required"`
	Order           int                         `gorm:"column:field_order;not null" json:"field_order"`
	DefaultValue    string                      `gorm:"size:255" json:"default_value"`
	Placeholder     string                      `gorm:"size:255" json:"placeholder"`
	HintText        string                      `gorm:"type:text" json:"hint_text"`
	ValidationRules Rules                       `json:"validation_rules"`
	CreatedAt       time.Time                   `json:"-"`
}

func (FormField) TableName() string {
	return "form_fields"
}

// HasOption reports whether v is one of the field's declared options.
func (f *FormField) HasOption(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

type AssignmentType string

const (
	AssignmentFill   AssignmentType = "fill"
	AssignmentAll    AssignmentType = "all"
	AssignmentReview AssignmentType = "review"
)

func (t AssignmentType) Valid() bool {
	return t == AssignmentFill || t == AssignmentAll || t == AssignmentReview
}

type Assignment struct {
	ID                   uint            `gorm:"primaryKey" json:"assignment_id"`
	FormID               uint            `gorm:"not null;index" json:"form_id"`
	AssignedToUserType   office.UserType `gorm:"size:16;not null" json:"assigned_to_user_type"`
	AssignedToOfficeCode *string         `gorm:"size:32" json:"assigned_to_office_code,omitempty"`
	AssignedToUserID     *uint           `json:"assigned_to_user_id,omitempty"`
	AssignmentType       AssignmentType  `gorm:"size:16;not null" json:"assignment_type"`
	CanEdit              bool            `gorm:"not null" json:"can_edit"`
	CanDelete            bool            `gorm:"not null" json:"can_delete"`
	CanReview            bool            `gorm:"not null" json:"can_review"`
	ExpiresAt            *time.Time      `json:"expires_at,omitempty"`
	CreatedBy            uint            `json:"created_by"`
	CreatedAt            time.Time       `json:"created_at"`
}

func (Assignment) TableName() string {
	return "form_assignments"
}

// ExpiredAt reports whether the assignment no longer grants anything at now.
func (a *Assignment) ExpiredAt(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// Access is the resolved permission set of a caller on a form.
type Access struct {
	CanFill   bool `json:"can_fill"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanReview bool `json:"can_review"`
	// ExpiredMatch is set when an otherwise matching assignment had expired.
	ExpiredMatch bool `json:"-"`
}

func (a Access) Any() bool {
	return a.CanFill || a.CanEdit || a.CanDelete || a.CanReview
}

func FullAccess() Access {
	return Access{CanFill: true, CanEdit: true, CanDelete: true, CanReview: true}
}
