package repository

import (
	"gorm.io/gorm"
)

type Repos struct {
	Form       FormRepo
	Field      FieldRepo
	Assignment AssignmentRepo
	Submission SubmissionRepo
	Transition TransitionRepo
	Office     OfficeRepo
	Registry   RegistryRepo

	db *gorm.DB
}

func NewRepositories(db *gorm.DB) *Repos {
	return &Repos{
		Form:       NewFormRepo(db),
		Field:      NewFieldRepo(db),
		Assignment: NewAssignmentRepo(db),
		Submission: NewSubmissionRepo(db),
		Transition: NewTransitionRepo(db),
		Office:     NewOfficeRepo(db),
		Registry:   NewRegistryRepo(db),
		db:         db,
	}
}

func (r *Repos) WithTx(tx *gorm.DB) *Repos {
	return &Repos{
		Form:       r.Form.WithTx(tx),
		Field:      r.Field.WithTx(tx),
		Assignment: r.Assignment.WithTx(tx),
		Submission: r.Submission.WithTx(tx),
		Transition: r.Transition.WithTx(tx),
		Office:     r.Office.WithTx(tx),
		Registry:   r.Registry.WithTx(tx),
		db:         tx,
	}
}

func (r *Repos) ExecTx(fn func(*Repos) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepos := r.WithTx(tx)
		return fn(txRepos)
	})
}
