package application

import (
	"fmt"
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/repository"
)

// AccessResolver computes a caller's effective permissions on a form from its assignment
// rows. Rows are read on every call; nothing is cached.
type AccessResolver struct {
	repos   *repository.Repos
	offices office.Hierarchy
	now     func() time.Time
}

func NewAccessResolver(repos *repository.Repos, offices office.Hierarchy, now func() time.Time) *AccessResolver {
	if now == nil {
		now = time.Now
	}
	return &AccessResolver{repos: repos, offices: offices, now: now}
}

// Resolve loads the form's assignments and resolves the caller's access.
func (r *AccessResolver) Resolve(f *form.Form, caller office.Caller) (form.Access, error) {
	return r.resolveWith(r.repos, f, caller)
}

func (r *AccessResolver) resolveWith(repos *repository.Repos, f *form.Form, caller office.Caller) (form.Access, error) {
	if grantsAll(f, caller) {
		return form.FullAccess(), nil
	}
	rows, err := repos.Assignment.ListAssignmentsByForm(f.ID)
	if err != nil {
		return form.Access{}, fmt.Errorf("load assignments for form %d: %w", f.ID, err)
	}
	return r.Evaluate(f, caller, rows), nil
}

// Evaluate resolves access against an already loaded set of rows for f.
func (r *AccessResolver) Evaluate(f *form.Form, caller office.Caller, rows []form.Assignment) form.Access {
	if grantsAll(f, caller) {
		return form.FullAccess()
	}
	now := r.now()
	var acc form.Access
	for i := range rows {
		row := &rows[i]
		if row.FormID != f.ID || !r.matches(row, caller) {
			continue
		}
		if row.ExpiredAt(now) {
			acc.ExpiredMatch = true
			continue
		}
		acc.CanFill = true
		acc.CanEdit = acc.CanEdit || row.CanEdit
		acc.CanDelete = acc.CanDelete || row.CanDelete
		acc.CanReview = acc.CanReview || row.CanReview
	}
	return acc
}

// CanManage reports whether the caller may change a form's schema and assignments.
func CanManage(f *form.Form, caller office.Caller) bool {
	return grantsAll(f, caller)
}

func grantsAll(f *form.Form, caller office.Caller) bool {
	return caller.IsMOHA() || (caller.UserID != 0 && f.CreatedBy == caller.UserID)
}

func (r *AccessResolver) matches(row *form.Assignment, caller office.Caller) bool {
	if row.AssignedToUserType == office.UserTypeSpecific {
		if row.AssignedToUserID != nil && *row.AssignedToUserID == caller.UserID {
			return true
		}
		return row.AssignedToOfficeCode != nil && r.offices.IsDescendant(caller.OfficeCode, *row.AssignedToOfficeCode)
	}
	if row.AssignedToUserType != caller.Type {
		return false
	}
	if row.AssignedToOfficeCode != nil {
		return r.offices.IsDescendant(caller.OfficeCode, *row.AssignedToOfficeCode)
	}
	return true
}
