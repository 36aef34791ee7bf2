package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FormService owns form definitions, their fields and their assignments.
type FormService struct {
	repos    *repository.Repos
	offices  office.Hierarchy
	resolver *AccessResolver
	log      logrus.FieldLogger
}

func NewFormService(repos *repository.Repos, offices office.Hierarchy, resolver *AccessResolver, log logrus.FieldLogger) *FormService {
	return &FormService{repos: repos, offices: offices, resolver: resolver, log: log}
}

func (s *FormService) CreateForm(caller office.Caller, input form.CreateFormDTO) (*form.Form, error) {
	switch caller.Type {
	case office.UserTypeMOHA, office.UserTypeDistrict, office.UserTypeDivision:
	default:
		return nil, errs.Permission("only district, division or ministry users may create forms")
	}
	if !form.ValidCode(input.Code) {
		return nil, errs.FieldInvalid("form_code", "pattern", "must match [a-z0-9_]+ and be at most 100 characters")
	}
	if !input.TargetEntity.Valid() {
		return nil, errs.FieldInvalid("target_entity", "options", "must be family, member or both")
	}
	if input.MaxSubmissionsPerEntity < 0 {
		return nil, errs.FieldInvalid("max_submissions_per_entity", "min", "must not be negative")
	}
	if err := checkWindow(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	f := &form.Form{
		Code:                    input.Code,
		Name:                    strings.TrimSpace(input.Name),
		Description:             input.Description,
		TargetEntity:            input.TargetEntity,
		MaxSubmissionsPerEntity: input.MaxSubmissionsPerEntity,
		IsActive:                input.IsActive == nil || *input.IsActive,
		StartDate:               input.StartDate,
		EndDate:                 input.EndDate,
		CreatedBy:               caller.UserID,
	}

	exists, err := s.repos.Form.ExistsCode(f.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.FieldInvalid("form_code", "unique", fmt.Sprintf("form code %q is already in use", f.Code))
	}
	if err := s.repos.Form.CreateForm(f); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.FieldInvalid("form_code", "unique", fmt.Sprintf("form code %q is already in use", f.Code))
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"form_id": f.ID, "form_code": f.Code, "actor": caller.UserID}).Info("form created")
	return f, nil
}

func (s *FormService) UpdateForm(caller office.Caller, id uint, input form.UpdateFormDTO) (*form.Form, error) {
	f, err := s.manageable(caller, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, errs.FieldInvalid("form_name", form.RuleRequired, "must not be empty")
		}
		f.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		f.Description = *input.Description
	}
	if input.TargetEntity != nil {
		if !input.TargetEntity.Valid() {
			return nil, errs.FieldInvalid("target_entity", "options", "must be family, member or both")
		}
		f.TargetEntity = *input.TargetEntity
	}
	if input.MaxSubmissionsPerEntity != nil {
		if *input.MaxSubmissionsPerEntity < 0 {
			return nil, errs.FieldInvalid("max_submissions_per_entity", "min", "must not be negative")
		}
		f.MaxSubmissionsPerEntity = *input.MaxSubmissionsPerEntity
	}
	if input.IsActive != nil {
		f.IsActive = *input.IsActive
	}
	if input.StartDate != nil {
		f.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		f.EndDate = input.EndDate
	}
	if err := checkWindow(f.StartDate, f.EndDate); err != nil {
		return nil, err
	}

	if err := s.repos.Form.UpdateForm(f); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"form_id": f.ID, "actor": caller.UserID}).Info("form updated")
	return f, nil
}

// DeleteForm removes a form with its fields and assignments. Forms that already have
// submissions cannot be deleted.
func (s *FormService) DeleteForm(caller office.Caller, id uint) error {
	if _, err := s.manageable(caller, id); err != nil {
		return err
	}
	return s.repos.ExecTx(func(tx *repository.Repos) error {
		n, err := tx.Submission.CountByForm(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errs.State("form %d has %d submissions and cannot be deleted", id, n)
		}
		if err := tx.Form.DeleteForm(id); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"form_id": id, "actor": caller.UserID}).Info("form deleted")
		return nil
	})
}

// GetFormWithFields returns the form, its fields in display order and the caller's access.
func (s *FormService) GetFormWithFields(caller office.Caller, id uint) (*form.FormDetail, error) {
	f, err := s.repos.Form.GetFormWithFields(id)
	if err != nil {
		return nil, lookup(err, "form", id)
	}
	acc, err := s.resolver.Resolve(&f, caller)
	if err != nil {
		return nil, err
	}
	if !acc.Any() {
		if acc.ExpiredMatch {
			return nil, errs.Expired("your assignment on form %d has expired", id)
		}
		return nil, errs.Permission("no access to form %d", id)
	}
	form.SortFields(f.Fields)
	return &form.FormDetail{Form: f, Access: acc}, nil
}

// GetAccess reports the caller's resolved access on a form.
func (s *FormService) GetAccess(caller office.Caller, id uint) (form.Access, error) {
	f, err := s.repos.Form.GetFormByID(id)
	if err != nil {
		return form.Access{}, lookup(err, "form", id)
	}
	return s.resolver.Resolve(&f, caller)
}

func (s *FormService) ListFields(caller office.Caller, formID uint) ([]form.FormField, error) {
	detail, err := s.GetFormWithFields(caller, formID)
	if err != nil {
		return nil, err
	}
	return detail.Fields, nil
}

// AddField appends a field definition. The field code must be unique within the form.
func (s *FormService) AddField(caller office.Caller, formID uint, input form.CreateFieldDTO) (*form.FormField, error) {
	if _, err := s.manageable(caller, formID); err != nil {
		return nil, err
	}
	if !form.ValidCode(input.FieldCode) {
		return nil, errs.FieldInvalid(input.FieldCode, "pattern", "field_code must match [a-z0-9_]+ and be at most 100 characters")
	}

	field := &form.FormField{
		FormID:          formID,
		FieldCode:       input.FieldCode,
		Label:           strings.TrimSpace(input.Label),
		Type:            input.Type,
		Options:         []string(input.Options),
		IsRequired:      input.IsRequired,
		DefaultValue:    input.DefaultValue,
		Placeholder:     input.Placeholder,
		HintText:        input.HintText,
		ValidationRules: form.Rules(input.ValidationRules),
	}
	if field.ValidationRules == nil {
		field.ValidationRules = form.Rules{}
	}
	if !field.Type.HasOptions() {
		field.Options = nil
	}
	if err := form.CheckDefinition(field); err != nil {
		return nil, err
	}

	err := s.repos.ExecTx(func(tx *repository.Repos) error {
		if _, err := tx.Form.LockFormByID(formID); err != nil {
			return lookup(err, "form", formID)
		}
		exists, err := tx.Field.ExistsFieldCode(formID, field.FieldCode)
		if err != nil {
			return err
		}
		if exists {
			return errs.FieldInvalid(field.FieldCode, "unique", fmt.Sprintf("field code %q already exists on this form", field.FieldCode))
		}
		if input.Order != nil {
			field.Order = *input.Order
		} else {
			highest, err := tx.Field.MaxOrder(formID)
			if err != nil {
				return err
			}
			field.Order = highest + 1
		}
		if err := tx.Field.CreateField(field); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.FieldInvalid(field.FieldCode, "unique", fmt.Sprintf("field code %q already exists on this form", field.FieldCode))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"form_id": formID, "field_code": field.FieldCode, "actor": caller.UserID}).Info("field added")
	return field, nil
}

// ReorderFields applies all order changes or none. Repeated or colliding orders are
// stored as given; display ties fall back to insertion order.
func (s *FormService) ReorderFields(caller office.Caller, formID uint, items []form.FieldOrder) ([]form.FormField, error) {
	if _, err := s.manageable(caller, formID); err != nil {
		return nil, err
	}
	var fields []form.FormField
	err := s.repos.ExecTx(func(tx *repository.Repos) error {
		for _, item := range items {
			f, err := tx.Field.GetFieldByID(item.FieldID)
			if err != nil || f.FormID != formID {
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				return errs.FieldInvalid(fmt.Sprint(item.FieldID), "unknown_field", fmt.Sprintf("field %d does not belong to form %d", item.FieldID, formID))
			}
			if err := tx.Field.UpdateFieldOrder(item.FieldID, item.Order); err != nil {
				return err
			}
		}
		var err error
		fields, err = tx.Field.ListFieldsByForm(formID)
		return err
	})
	if err != nil {
		return nil, err
	}
	form.SortFields(fields)
	return fields, nil
}

// DeleteField removes a field definition. Remaining orders are left untouched.
func (s *FormService) DeleteField(caller office.Caller, formID, fieldID uint) error {
	if _, err := s.manageable(caller, formID); err != nil {
		return err
	}
	return s.repos.ExecTx(func(tx *repository.Repos) error {
		f, err := tx.Field.GetFieldByID(fieldID)
		if err != nil {
			return lookup(err, "field", fieldID)
		}
		if f.FormID != formID {
			return errs.NotFound("field %d not found on form %d", fieldID, formID)
		}
		n, err := tx.Submission.CountByForm(formID)
		if err != nil {
			return err
		}
		if n > 0 {
			return errs.State("form %d has submissions; its fields cannot be removed", formID)
		}
		return tx.Field.DeleteField(fieldID)
	})
}

func (s *FormService) CreateAssignment(caller office.Caller, formID uint, input form.CreateAssignmentDTO) (*form.Assignment, error) {
	if _, err := s.manageable(caller, formID); err != nil {
		return nil, err
	}
	if !input.AssignedToUserType.Valid() {
		return nil, errs.FieldInvalid("assigned_to_user_type", "options", "must be moha, district, division, gn or specific")
	}
	if input.AssignmentType == "" {
		input.AssignmentType = form.AssignmentFill
	}
	if !input.AssignmentType.Valid() {
		return nil, errs.FieldInvalid("assignment_type", "options", "must be fill, all or review")
	}
	if input.AssignedToOfficeCode != nil && strings.TrimSpace(*input.AssignedToOfficeCode) == "" {
		input.AssignedToOfficeCode = nil
	}
	if input.AssignedToUserType == office.UserTypeSpecific {
		if input.AssignedToUserID == nil && input.AssignedToOfficeCode == nil {
			return nil, errs.FieldInvalid("assigned_to_user_id", form.RuleRequired, "specific assignments need a user or an office")
		}
	} else if input.AssignedToUserID != nil {
		return nil, errs.FieldInvalid("assigned_to_user_id", "type", "a user can only be targeted by a specific assignment")
	}
	if input.AssignedToOfficeCode != nil {
		if _, err := s.offices.GetOffice(*input.AssignedToOfficeCode); err != nil {
			return nil, errs.FieldInvalid("assigned_to_office_code", "unknown_office", fmt.Sprintf("office %q does not exist", *input.AssignedToOfficeCode))
		}
	}

	a := &form.Assignment{
		FormID:               formID,
		AssignedToUserType:   input.AssignedToUserType,
		AssignedToOfficeCode: input.AssignedToOfficeCode,
		AssignedToUserID:     input.AssignedToUserID,
		AssignmentType:       input.AssignmentType,
		CanEdit:              input.CanEdit,
		CanDelete:            input.CanDelete,
		CanReview:            input.CanReview,
		ExpiresAt:            input.ExpiresAt,
		CreatedBy:            caller.UserID,
	}
	if err := s.repos.Assignment.CreateAssignment(a); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"form_id": formID, "assignment_id": a.ID, "actor": caller.UserID}).Info("assignment created")
	return a, nil
}

func (s *FormService) ListAssignments(caller office.Caller, formID uint) ([]form.Assignment, error) {
	if _, err := s.manageable(caller, formID); err != nil {
		return nil, err
	}
	return s.repos.Assignment.ListAssignmentsByForm(formID)
}

func (s *FormService) DeleteAssignment(caller office.Caller, formID, assignmentID uint) error {
	if _, err := s.manageable(caller, formID); err != nil {
		return err
	}
	a, err := s.repos.Assignment.GetAssignmentByID(assignmentID)
	if err != nil {
		return lookup(err, "assignment", assignmentID)
	}
	if a.FormID != formID {
		return errs.NotFound("assignment %d not found on form %d", assignmentID, formID)
	}
	if err := s.repos.Assignment.DeleteAssignment(assignmentID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"form_id": formID, "assignment_id": assignmentID, "actor": caller.UserID}).Info("assignment deleted")
	return nil
}

// manageable loads the form and checks the caller may change it.
func (s *FormService) manageable(caller office.Caller, id uint) (*form.Form, error) {
	f, err := s.repos.Form.GetFormByID(id)
	if err != nil {
		return nil, lookup(err, "form", id)
	}
	if !CanManage(&f, caller) {
		return nil, errs.Permission("only the form creator or the ministry may change form %d", id)
	}
	return &f, nil
}

func checkWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return errs.FieldInvalid("end_date", "min", "end_date must not be before start_date")
	}
	return nil
}
