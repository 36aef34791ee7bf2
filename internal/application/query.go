package application

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/pkg/errs"
)

// QueryService lists forms and submissions restricted to what the caller may see.
// Visibility is applied before any filter, so filters only ever narrow the result.
type QueryService struct {
	repos    *repository.Repos
	offices  office.Hierarchy
	resolver *AccessResolver
}

func NewQueryService(repos *repository.Repos, offices office.Hierarchy, resolver *AccessResolver) *QueryService {
	return &QueryService{repos: repos, offices: offices, resolver: resolver}
}

// ListForms returns the forms the caller holds any permission on.
func (s *QueryService) ListForms(caller office.Caller, filter form.FormFilter) ([]form.FormDetail, error) {
	forms, err := s.repos.Form.ListForms(filter)
	if err != nil {
		return nil, err
	}
	access, err := s.accessFor(forms, caller)
	if err != nil {
		return nil, err
	}

	out := make([]form.FormDetail, 0, len(forms))
	for _, f := range forms {
		if acc := access[f.ID]; acc.Any() {
			out = append(out, form.FormDetail{Form: f, Access: acc})
		}
	}
	return paginate(out, filter.Offset, filter.Limit), nil
}

// ListSubmissions returns the caller's own submissions on forms they may fill, and
// others' non-draft submissions on forms they may review. Reviewers other than the
// ministry and the form creator only see submissions owned by offices under their own.
func (s *QueryService) ListSubmissions(caller office.Caller, filter submission.ListFilter) ([]submission.Submission, error) {
	scope, err := s.scope(caller)
	if err != nil {
		return nil, err
	}
	return s.repos.Submission.ListSubmissions(scope, filter)
}

// GetSubmission returns a single submission when it falls inside the caller's visibility.
func (s *QueryService) GetSubmission(caller office.Caller, id uint) (*submission.Submission, error) {
	sub, err := s.repos.Submission.GetSubmissionByID(id)
	if err != nil {
		return nil, lookup(err, "submission", id)
	}
	f, err := s.repos.Form.GetFormByID(sub.FormID)
	if err != nil {
		return nil, lookup(err, "form", sub.FormID)
	}
	acc, err := s.resolver.Resolve(&f, caller)
	if err != nil {
		return nil, err
	}
	if !s.visible(&f, &sub, caller, acc) {
		return nil, errs.Permission("you may not view submission %d", id)
	}
	return &sub, nil
}

// History returns the status transitions of a visible submission, oldest first.
func (s *QueryService) History(caller office.Caller, id uint, filter submission.HistoryFilter) ([]submission.Transition, error) {
	if _, err := s.GetSubmission(caller, id); err != nil {
		return nil, err
	}
	var end *time.Time
	if filter.To != nil {
		next := filter.To.AddDate(0, 0, 1)
		end = &next
	}
	return s.repos.Transition.GetTransitions(repository.TransitionQueryParams{
		SubmissionID: &id,
		ActorID:      filter.ActorID,
		StartTime:    filter.From,
		EndTime:      end,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

func (s *QueryService) visible(f *form.Form, sub *submission.Submission, caller office.Caller, acc form.Access) bool {
	if sub.SubmittedBy == caller.UserID && acc.CanFill {
		return true
	}
	if !acc.CanReview || sub.Status == submission.StatusDraft {
		return false
	}
	if CanManage(f, caller) {
		return true
	}
	return s.offices.IsDescendant(sub.OfficeCode, caller.OfficeCode)
}

func (s *QueryService) scope(caller office.Caller) (repository.SubmissionScope, error) {
	scope := repository.SubmissionScope{UserID: caller.UserID}
	forms, err := s.repos.Form.ListForms(form.FormFilter{})
	if err != nil {
		return scope, err
	}
	access, err := s.accessFor(forms, caller)
	if err != nil {
		return scope, err
	}
	for i := range forms {
		f := &forms[i]
		acc := access[f.ID]
		if acc.CanFill {
			scope.OwnFormIDs = append(scope.OwnFormIDs, f.ID)
		}
		if !acc.CanReview {
			continue
		}
		if CanManage(f, caller) {
			scope.ReviewAllFormIDs = append(scope.ReviewAllFormIDs, f.ID)
		} else {
			scope.ReviewScopedFormIDs = append(scope.ReviewScopedFormIDs, f.ID)
		}
	}
	if len(scope.ReviewScopedFormIDs) > 0 {
		scope.OfficeCodes = s.offices.Descendants(caller.OfficeCode)
	}
	return scope, nil
}

// accessFor resolves access for many forms with one assignment query.
func (s *QueryService) accessFor(forms []form.Form, caller office.Caller) (map[uint]form.Access, error) {
	ids := make([]uint, 0, len(forms))
	for _, f := range forms {
		ids = append(ids, f.ID)
	}
	rows, err := s.repos.Assignment.ListAssignmentsByForms(ids)
	if err != nil {
		return nil, err
	}
	byForm := make(map[uint][]form.Assignment, len(forms))
	for _, r := range rows {
		byForm[r.FormID] = append(byForm[r.FormID], r)
	}
	out := make(map[uint]form.Access, len(forms))
	for i := range forms {
		f := &forms[i]
		out[f.ID] = s.resolver.Evaluate(f, caller, byForm[f.ID])
	}
	return out, nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
