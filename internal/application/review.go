package application

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/sirupsen/logrus"
)

// ReviewService moves submissions through the review states.
type ReviewService struct {
	repos       *repository.Repos
	resolver    *AccessResolver
	submissions *SubmissionService
	now         func() time.Time
	allowReopen bool
	log         logrus.FieldLogger
}

func NewReviewService(repos *repository.Repos, resolver *AccessResolver, submissions *SubmissionService, opts Options) *ReviewService {
	return &ReviewService{
		repos:       repos,
		resolver:    resolver,
		submissions: submissions,
		now:         opts.now(),
		allowReopen: opts.AllowReopen,
		log:         opts.logger(),
	}
}

// Transition applies one status change. Legality of the edge is checked before the
// caller's review rights, so an illegal edge is a state error for everyone.
func (s *ReviewService) Transition(caller office.Caller, id uint, target submission.Status, notes string) (*submission.Submission, error) {
	if !target.Valid() {
		return nil, errs.FieldInvalid("status", "options", "unknown status "+string(target))
	}
	sub, err := s.repos.Submission.GetSubmissionByID(id)
	if err != nil {
		return nil, lookup(err, "submission", id)
	}
	if sub.Status == submission.StatusDraft && target == submission.StatusSubmitted {
		return s.submissions.Finalize(caller, id)
	}
	if !submission.CanReviewTransition(sub.Status, target) {
		return nil, errs.State("submission %d cannot move from %s to %s", id, sub.Status, target)
	}

	f, err := s.repos.Form.GetFormByID(sub.FormID)
	if err != nil {
		return nil, lookup(err, "form", sub.FormID)
	}
	acc, err := s.resolver.Resolve(&f, caller)
	if err != nil {
		return nil, err
	}
	if !acc.CanReview {
		return nil, errs.Permission("you may not review submissions of form %s", f.Code)
	}

	return s.apply(caller, id, sub.Status, target, notes, false)
}

// BulkTransition runs Transition for every id and reports each outcome separately.
func (s *ReviewService) BulkTransition(caller office.Caller, ids []uint, target submission.Status, notes string) []submission.BulkResult {
	results := make([]submission.BulkResult, 0, len(ids))
	for _, id := range ids {
		res := submission.BulkResult{SubmissionID: id}
		sub, err := s.Transition(caller, id, target, notes)
		if err != nil {
			res.ErrorKind = string(errs.KindOf(err))
			res.Error = err.Error()
		} else {
			res.OK = true
			res.Status = sub.Status
			res.Submission = sub
		}
		results = append(results, res)
	}
	return results
}

// Reopen moves an approved or rejected submission back to submitted. It is only
// available when reopening is enabled in the configuration.
func (s *ReviewService) Reopen(caller office.Caller, id uint, notes string) (*submission.Submission, error) {
	if !s.allowReopen {
		return nil, errs.State("reopening reviewed submissions is disabled")
	}
	sub, err := s.repos.Submission.GetSubmissionByID(id)
	if err != nil {
		return nil, lookup(err, "submission", id)
	}
	if !sub.Status.Terminal() {
		return nil, errs.State("submission %d is %s; only approved or rejected submissions can be reopened", id, sub.Status)
	}
	f, err := s.repos.Form.GetFormByID(sub.FormID)
	if err != nil {
		return nil, lookup(err, "form", sub.FormID)
	}
	acc, err := s.resolver.Resolve(&f, caller)
	if err != nil {
		return nil, err
	}
	if !acc.CanEdit {
		return nil, errs.Permission("you may not reopen submissions of form %s", f.Code)
	}
	return s.apply(caller, id, sub.Status, submission.StatusSubmitted, notes, true)
}

// apply writes the new status if the record is still in the expected status.
func (s *ReviewService) apply(caller office.Caller, id uint, expected, target submission.Status, notes string, reopen bool) (*submission.Submission, error) {
	var out submission.Submission
	err := s.repos.ExecTx(func(tx *repository.Repos) error {
		cur, err := tx.Submission.GetSubmissionByID(id)
		if err != nil {
			return lookup(err, "submission", id)
		}
		if cur.Status != expected {
			return errs.State("submission %d changed to %s concurrently", id, cur.Status)
		}
		now := s.now()
		cur.Status = target
		if reopen {
			cur.ReviewedBy = nil
			cur.ReviewedAt = nil
			cur.ReviewNotes = nil
		} else {
			reviewer := caller.UserID
			cur.ReviewedBy = &reviewer
			cur.ReviewedAt = &now
			if notes != "" {
				n := notes
				cur.ReviewNotes = &n
			} else {
				cur.ReviewNotes = nil
			}
		}
		if err := tx.Submission.UpdateSubmission(&cur); err != nil {
			return err
		}
		out = cur
		return logTransition(tx, id, &expected, target, caller.UserID, notes)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"submission_id": id,
		"from":          expected,
		"to":            target,
		"actor":         caller.UserID,
	}).Info("submission status changed")
	return &out, nil
}
