package application

import (
	"fmt"
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/registry"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// SubmissionService creates, edits, finalizes and deletes submissions.
type SubmissionService struct {
	repos         *repository.Repos
	entities      registry.EntityRegistry
	resolver      *AccessResolver
	now           func() time.Time
	retryAttempts int
	log           logrus.FieldLogger
}

func NewSubmissionService(repos *repository.Repos, entities registry.EntityRegistry, resolver *AccessResolver, opts Options) *SubmissionService {
	return &SubmissionService{
		repos:         repos,
		entities:      entities,
		resolver:      resolver,
		now:           opts.now(),
		retryAttempts: opts.CapRetryAttempts,
		log:           opts.logger(),
	}
}

// Submit validates responses and stores a new draft or submitted record. Non-draft
// submissions go through the per-entity cap check in the same transaction as the insert.
func (s *SubmissionService) Submit(caller office.Caller, formID uint, input submission.SubmitDTO) (*submission.Submission, error) {
	f, err := s.repos.Form.GetFormWithFields(formID)
	if err != nil {
		return nil, lookup(err, "form", formID)
	}
	if _, err := s.fillable(&f, caller); err != nil {
		return nil, err
	}

	ref, err := entityRef(&f, input)
	if err != nil {
		return nil, err
	}
	entity, err := s.entities.Lookup(ref)
	if err != nil {
		return nil, err
	}
	if caller.Type == office.UserTypeGN && entity.OfficeCode != caller.OfficeCode {
		return nil, errs.Permission("family %s is outside your office", ref.FamilyID)
	}

	now := s.now()
	responses, err := form.ValidateResponses(f.Fields, input.Responses, input.AsDraft, now)
	if err != nil {
		return nil, err
	}

	sub := &submission.Submission{
		FormID:      f.ID,
		EntityType:  ref.Type,
		FamilyID:    ref.FamilyID,
		MemberID:    ref.MemberID,
		SubmittedBy: caller.UserID,
		OfficeCode:  entity.OfficeCode,
		Status:      submission.StatusDraft,
		Responses:   datatypes.NewJSONType(responses),
	}

	if input.AsDraft {
		err = s.repos.ExecTx(func(tx *repository.Repos) error {
			if err := tx.Submission.CreateSubmission(sub); err != nil {
				return err
			}
			return logTransition(tx, sub.ID, nil, submission.StatusDraft, caller.UserID, "")
		})
		if err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"form_id": f.ID, "submission_id": sub.ID, "actor": caller.UserID}).Info("draft saved")
		return sub, nil
	}

	sub.Status = submission.StatusSubmitted
	sub.SubmittedAt = &now
	err = retry(s.retryAttempts, func() error {
		sub.ID = 0
		return s.repos.ExecTx(func(tx *repository.Repos) error {
			if err := s.checkCap(tx, &f, sub.EntityKey()); err != nil {
				return err
			}
			if err := tx.Submission.CreateSubmission(sub); err != nil {
				return err
			}
			return logTransition(tx, sub.ID, nil, submission.StatusSubmitted, caller.UserID, "")
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"form_id": f.ID, "submission_id": sub.ID, "actor": caller.UserID}).Info("submission created")
	return sub, nil
}

// Finalize moves a draft to submitted through the cap check. Finalizing a submission that
// already left the draft state returns it unchanged.
func (s *SubmissionService) Finalize(caller office.Caller, id uint) (*submission.Submission, error) {
	sub, err := s.repos.Submission.GetSubmissionByID(id)
	if err != nil {
		return nil, lookup(err, "submission", id)
	}
	f, err := s.repos.Form.GetFormWithFields(sub.FormID)
	if err != nil {
		return nil, lookup(err, "form", sub.FormID)
	}
	if sub.SubmittedBy != caller.UserID {
		return nil, errs.Permission("only the submitter may finalize submission %d", id)
	}
	if sub.Status != submission.StatusDraft {
		return &sub, nil
	}
	if _, err := s.fillable(&f, caller); err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := form.ValidateResponses(f.Fields, sub.Responses.Data(), false, now); err != nil {
		return nil, err
	}

	var out submission.Submission
	err = retry(s.retryAttempts, func() error {
		return s.repos.ExecTx(func(tx *repository.Repos) error {
			locked, err := tx.Form.LockFormByID(f.ID)
			if err != nil {
				return lookup(err, "form", f.ID)
			}
			// Re-read under the form lock so a concurrent finalize of this draft is seen.
			cur, err := tx.Submission.GetSubmissionByID(id)
			if err != nil {
				return lookup(err, "submission", id)
			}
			if cur.Status != submission.StatusDraft {
				out = cur
				return nil
			}
			if err := s.capReached(tx, &locked, cur.EntityKey()); err != nil {
				return err
			}
			from := cur.Status
			cur.Status = submission.StatusSubmitted
			cur.SubmittedAt = &now
			if err := tx.Submission.UpdateSubmission(&cur); err != nil {
				return err
			}
			out = cur
			return logTransition(tx, cur.ID, &from, cur.Status, caller.UserID, "")
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"form_id": f.ID, "submission_id": id, "actor": caller.UserID}).Info("draft finalized")
	return &out, nil
}

// Update re-validates the changed responses. Drafts are editable by their submitter;
// submitted and rejected records by holders of edit rights.
func (s *SubmissionService) Update(caller office.Caller, id uint, input submission.UpdateDTO) (*submission.Submission, error) {
	sub, err := s.repos.Submission.GetSubmissionByID(id)
	if err != nil {
		return nil, lookup(err, "submission", id)
	}
	f, err := s.repos.Form.GetFormWithFields(sub.FormID)
	if err != nil {
		return nil, lookup(err, "form", sub.FormID)
	}
	acc, err := s.resolver.Resolve(&f, caller)
	if err != nil {
		return nil, err
	}

	partial := false
	switch {
	case sub.Status == submission.StatusDraft && sub.SubmittedBy == caller.UserID:
		partial = true
	case sub.Status.Editable() && acc.CanEdit:
	default:
		return nil, errs.Permission("submission %d in status %s cannot be edited by you", id, sub.Status)
	}

	merged, err := form.ValidateChanges(f.Fields, sub.Responses.Data(), input.Responses, partial, s.now())
	if err != nil {
		return nil, err
	}
	sub.Responses = datatypes.NewJSONType(merged)
	if err := s.repos.Submission.UpdateSubmission(&sub); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"submission_id": id, "actor": caller.UserID}).Info("submission updated")
	return &sub, nil
}

func (s *SubmissionService) Delete(caller office.Caller, id uint) error {
	sub, err := s.repos.Submission.GetSubmissionByID(id)
	if err != nil {
		return lookup(err, "submission", id)
	}
	ownDraft := sub.Status == submission.StatusDraft && sub.SubmittedBy == caller.UserID
	if !ownDraft {
		f, err := s.repos.Form.GetFormByID(sub.FormID)
		if err != nil {
			return lookup(err, "form", sub.FormID)
		}
		acc, err := s.resolver.Resolve(&f, caller)
		if err != nil {
			return err
		}
		if !acc.CanDelete {
			return errs.Permission("you may not delete submission %d", id)
		}
	}
	err = s.repos.ExecTx(func(tx *repository.Repos) error {
		if err := tx.Transition.DeleteBySubmission(id); err != nil {
			return err
		}
		return tx.Submission.DeleteSubmission(id)
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"submission_id": id, "actor": caller.UserID}).Info("submission deleted")
	return nil
}

// fillable checks the caller may fill the form now.
func (s *SubmissionService) fillable(f *form.Form, caller office.Caller) (form.Access, error) {
	acc, err := s.resolver.Resolve(f, caller)
	if err != nil {
		return acc, err
	}
	if !acc.CanFill {
		if acc.ExpiredMatch {
			return acc, errs.Expired("your assignment on form %s has expired", f.Code)
		}
		return acc, errs.Permission("you are not assigned to fill form %s", f.Code)
	}
	if !f.OpenAt(s.now()) {
		return acc, errs.Expired("form %s is not accepting submissions", f.Code)
	}
	return acc, nil
}

// checkCap locks the form row and counts the entity's counted submissions. It must run
// inside the transaction that inserts or finalizes the submission.
func (s *SubmissionService) checkCap(tx *repository.Repos, f *form.Form, key submission.EntityKey) error {
	locked, err := tx.Form.LockFormByID(f.ID)
	if err != nil {
		return lookup(err, "form", f.ID)
	}
	return s.capReached(tx, &locked, key)
}

// capReached counts against a form row already locked by the caller's transaction.
func (s *SubmissionService) capReached(tx *repository.Repos, locked *form.Form, key submission.EntityKey) error {
	f := locked
	if locked.MaxSubmissionsPerEntity <= 0 {
		return nil
	}
	n, err := tx.Submission.CountCounted(f.ID, key)
	if err != nil {
		return fmt.Errorf("count submissions: %w", err)
	}
	if n >= int64(locked.MaxSubmissionsPerEntity) {
		s.log.WithFields(logrus.Fields{"form_id": f.ID, "family_id": key.FamilyID, "member_id": key.MemberID}).
			Warn("submission cap reached")
		return errs.Limit("form %s allows %d submission(s) per %s", f.Code, locked.MaxSubmissionsPerEntity, key.Type)
	}
	return nil
}

func entityRef(f *form.Form, input submission.SubmitDTO) (registry.EntityRef, error) {
	if !f.TargetEntity.Accepts(input.EntityType) {
		return registry.EntityRef{}, errs.FieldInvalid("entity_type", "target_entity",
			fmt.Sprintf("form %s targets %s, not %s", f.Code, f.TargetEntity, input.EntityType))
	}
	ref := registry.EntityRef{Type: input.EntityType, FamilyID: input.FamilyID}
	if input.FamilyID == "" {
		return ref, errs.FieldInvalid("family_id", form.RuleRequired, "is required")
	}
	switch input.EntityType {
	case form.TargetMember:
		if input.MemberID == nil || *input.MemberID == "" {
			return ref, errs.FieldInvalid("member_id", form.RuleRequired, "is required for member submissions")
		}
		ref.MemberID = input.MemberID
	case form.TargetFamily:
		if input.MemberID != nil && *input.MemberID != "" {
			return ref, errs.FieldInvalid("member_id", "type", "must be empty for family submissions")
		}
	}
	return ref, nil
}

func logTransition(tx *repository.Repos, id uint, from *submission.Status, to submission.Status, actor uint, notes string) error {
	return tx.Transition.CreateTransition(&submission.Transition{
		SubmissionID: id,
		FromStatus:   from,
		ToStatus:     to,
		ActorID:      actor,
		Notes:        notes,
	})
}
