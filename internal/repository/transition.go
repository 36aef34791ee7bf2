package repository

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/submission"
	"gorm.io/gorm"
)

type TransitionQueryParams struct {
	SubmissionID *uint
	ActorID      *uint
	ToStatus     *submission.Status
	StartTime    *time.Time
	EndTime      *time.Time // exclusive
	Limit        int
	Offset       int
}

type TransitionRepo interface {
	GetTransitions(params TransitionQueryParams) ([]submission.Transition, error)
	CreateTransition(t *submission.Transition) error
	DeleteBySubmission(submissionID uint) error
	WithTx(tx *gorm.DB) TransitionRepo
}

type DBTransitionRepo struct {
	db *gorm.DB
}

func NewTransitionRepo(db *gorm.DB) *DBTransitionRepo {
	return &DBTransitionRepo{
		db: db,
	}
}

func (r *DBTransitionRepo) GetTransitions(params TransitionQueryParams) ([]submission.Transition, error) {
	var logs []submission.Transition
	query := r.db.Model(&submission.Transition{})

	if params.SubmissionID != nil {
		query = query.Where("submission_id = ?", *params.SubmissionID)
	}
	if params.ActorID != nil {
		query = query.Where("actor_id = ?", *params.ActorID)
	}
	if params.ToStatus != nil {
		query = query.Where("to_status = ?", *params.ToStatus)
	}
	if params.StartTime != nil {
		query = query.Where("created_at >= ?", *params.StartTime)
	}
	if params.EndTime != nil {
		query = query.Where("created_at < ?", *params.EndTime)
	}

	query = query.Order("created_at ASC").Order("id ASC")
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	err := query.Find(&logs).Error
	return logs, err
}

func (r *DBTransitionRepo) CreateTransition(t *submission.Transition) error {
	return r.db.Create(t).Error
}

func (r *DBTransitionRepo) DeleteBySubmission(submissionID uint) error {
	return r.db.Where("submission_id = ?", submissionID).Delete(&submission.Transition{}).Error
}

func (r *DBTransitionRepo) WithTx(tx *gorm.DB) TransitionRepo {
	if tx == nil {
		return r
	}
	return &DBTransitionRepo{
		db: tx,
	}
}
