package repository

import (
	"strings"

	"github.com/linskybing/survey-platform/internal/domain/submission"
	"gorm.io/gorm"
)

// SubmissionScope is the set of submissions a caller may see, computed from resolved access.
type SubmissionScope struct {
	UserID uint
	// OwnFormIDs are forms where the caller may see their own submissions.
	OwnFormIDs []uint
	// ReviewAllFormIDs are forms where every non-draft submission is visible.
	ReviewAllFormIDs []uint
	// ReviewScopedFormIDs are forms where non-draft submissions owned by OfficeCodes are visible.
	ReviewScopedFormIDs []uint
	OfficeCodes         []string
}

func (s SubmissionScope) Empty() bool {
	return len(s.OwnFormIDs) == 0 && len(s.ReviewAllFormIDs) == 0 &&
		(len(s.ReviewScopedFormIDs) == 0 || len(s.OfficeCodes) == 0)
}

type SubmissionRepo interface {
	CreateSubmission(s *submission.Submission) error
	GetSubmissionByID(id uint) (submission.Submission, error)
	UpdateSubmission(s *submission.Submission) error
	DeleteSubmission(id uint) error
	CountCounted(formID uint, key submission.EntityKey) (int64, error)
	CountByForm(formID uint) (int64, error)
	ListSubmissions(scope SubmissionScope, filter submission.ListFilter) ([]submission.Submission, error)
	WithTx(tx *gorm.DB) SubmissionRepo
}

type DBSubmissionRepo struct {
	db *gorm.DB
}

func NewSubmissionRepo(db *gorm.DB) *DBSubmissionRepo {
	return &DBSubmissionRepo{
		db: db,
	}
}

func (r *DBSubmissionRepo) CreateSubmission(s *submission.Submission) error {
	return r.db.Create(s).Error
}

func (r *DBSubmissionRepo) GetSubmissionByID(id uint) (submission.Submission, error) {
	var s submission.Submission
	err := r.db.First(&s, id).Error
	return s, err
}

func (r *DBSubmissionRepo) UpdateSubmission(s *submission.Submission) error {
	return r.db.Save(s).Error
}

func (r *DBSubmissionRepo) DeleteSubmission(id uint) error {
	return r.db.Delete(&submission.Submission{}, id).Error
}

// CountCounted counts the submissions for one entity on a form that consume the cap.
func (r *DBSubmissionRepo) CountCounted(formID uint, key submission.EntityKey) (int64, error) {
	var count int64
	query := r.db.Model(&submission.Submission{}).
		Where("form_id = ? AND entity_type = ? AND family_id = ?", formID, key.Type, key.FamilyID).
		Where("status IN ?", submission.CountedStatuses)
	if key.MemberID != "" {
		query = query.Where("member_id = ?", key.MemberID)
	} else {
		query = query.Where("member_id IS NULL")
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *DBSubmissionRepo) CountByForm(formID uint) (int64, error) {
	var count int64
	err := r.db.Model(&submission.Submission{}).Where("form_id = ?", formID).Count(&count).Error
	return count, err
}

func (r *DBSubmissionRepo) ListSubmissions(scope SubmissionScope, filter submission.ListFilter) ([]submission.Submission, error) {
	var subs []submission.Submission
	if scope.Empty() {
		return subs, nil
	}

	visible := r.db.Where("1 = 0")
	if len(scope.OwnFormIDs) > 0 {
		visible = visible.Or("(submissions.submitted_by = ? AND submissions.form_id IN ?)", scope.UserID, scope.OwnFormIDs)
	}
	if len(scope.ReviewAllFormIDs) > 0 {
		visible = visible.Or("(submissions.status <> ? AND submissions.form_id IN ?)", submission.StatusDraft, scope.ReviewAllFormIDs)
	}
	if len(scope.ReviewScopedFormIDs) > 0 && len(scope.OfficeCodes) > 0 {
		visible = visible.Or("(submissions.status <> ? AND submissions.form_id IN ? AND submissions.office_code IN ?)",
			submission.StatusDraft, scope.ReviewScopedFormIDs, scope.OfficeCodes)
	}

	query := r.db.Model(&submission.Submission{}).
		Joins("JOIN forms ON forms.id = submissions.form_id").
		Where(visible)

	if filter.FormID != nil {
		query = query.Where("submissions.form_id = ?", *filter.FormID)
	}
	if filter.Status != "" {
		query = query.Where("submissions.status = ?", filter.Status)
	}
	if filter.EntityType != "" {
		query = query.Where("submissions.entity_type = ?", filter.EntityType)
	}
	if filter.From != nil {
		query = query.Where("submissions.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		// to is a calendar day and includes everything created on it
		query = query.Where("submissions.created_at < ?", filter.To.AddDate(0, 0, 1))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(forms.name) LIKE ? OR LOWER(forms.code) LIKE ? OR LOWER(forms.description) LIKE ?)", like, like, like)
	}

	query = query.Select("submissions.*").Order("submissions.created_at DESC").Order("submissions.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	err := query.Find(&subs).Error
	return subs, err
}

func (r *DBSubmissionRepo) WithTx(tx *gorm.DB) SubmissionRepo {
	if tx == nil {
		return r
	}
	return &DBSubmissionRepo{
		db: tx,
	}
}
