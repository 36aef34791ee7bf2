package repository

import (
	"github.com/linskybing/survey-platform/internal/domain/form"
	"gorm.io/gorm"
)

type AssignmentRepo interface {
	CreateAssignment(a *form.Assignment) error
	GetAssignmentByID(id uint) (form.Assignment, error)
	ListAssignmentsByForm(formID uint) ([]form.Assignment, error)
	ListAssignmentsByForms(formIDs []uint) ([]form.Assignment, error)
	DeleteAssignment(id uint) error
	WithTx(tx *gorm.DB) AssignmentRepo
}

type DBAssignmentRepo struct {
	db *gorm.DB
}

func NewAssignmentRepo(db *gorm.DB) *DBAssignmentRepo {
	return &DBAssignmentRepo{
		db: db,
	}
}

func (r *DBAssignmentRepo) CreateAssignment(a *form.Assignment) error {
	return r.db.Create(a).Error
}

func (r *DBAssignmentRepo) GetAssignmentByID(id uint) (form.Assignment, error) {
	var a form.Assignment
	err := r.db.First(&a, id).Error
	return a, err
}

func (r *DBAssignmentRepo) ListAssignmentsByForm(formID uint) ([]form.Assignment, error) {
	var rows []form.Assignment
	err := r.db.Where("form_id = ?", formID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *DBAssignmentRepo) ListAssignmentsByForms(formIDs []uint) ([]form.Assignment, error) {
	var rows []form.Assignment
	if len(formIDs) == 0 {
		return rows, nil
	}
	err := r.db.Where("form_id IN ?", formIDs).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *DBAssignmentRepo) DeleteAssignment(id uint) error {
	return r.db.Delete(&form.Assignment{}, id).Error
}

func (r *DBAssignmentRepo) WithTx(tx *gorm.DB) AssignmentRepo {
	if tx == nil {
		return r
	}
	return &DBAssignmentRepo{
		db: tx,
	}
}
