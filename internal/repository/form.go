package repository

import (
	"strings"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FormRepo interface {
	CreateForm(f *form.Form) error
	GetFormByID(id uint) (form.Form, error)
	GetFormWithFields(id uint) (form.Form, error)
	// LockFormByID reads the form row with FOR UPDATE so concurrent cap checks on the
	// same form serialize. Only meaningful inside a transaction.
	LockFormByID(id uint) (form.Form, error)
	ExistsCode(code string) (bool, error)
	UpdateForm(f *form.Form) error
	DeleteForm(id uint) error
	ListForms(filter form.FormFilter) ([]form.Form, error)
	WithTx(tx *gorm.DB) FormRepo
}

type DBFormRepo struct {
	db *gorm.DB
}

func NewFormRepo(db *gorm.DB) *DBFormRepo {
	return &DBFormRepo{
		db: db,
	}
}

func (r *DBFormRepo) CreateForm(f *form.Form) error {
	return r.db.Omit(clause.Associations).Create(f).Error
}

func (r *DBFormRepo) GetFormByID(id uint) (form.Form, error) {
	var f form.Form
	err := r.db.First(&f, id).Error
	return f, err
}

func (r *DBFormRepo) GetFormWithFields(id uint) (form.Form, error) {
	var f form.Form
	err := r.db.
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("field_order ASC").Order("id ASC")
		}).
		First(&f, id).Error
	return f, err
}

func (r *DBFormRepo) LockFormByID(id uint) (form.Form, error) {
	var f form.Form
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&f, id).Error
	return f, err
}

func (r *DBFormRepo) ExistsCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&form.Form{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *DBFormRepo) UpdateForm(f *form.Form) error {
	return r.db.Omit(clause.Associations).Save(f).Error
}

// DeleteForm removes the form with its fields and assignments.
func (r *DBFormRepo) DeleteForm(id uint) error {
	if err := r.db.Where("form_id = ?", id).Delete(&form.FormField{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("form_id = ?", id).Delete(&form.Assignment{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&form.Form{}, id).Error
}

func (r *DBFormRepo) ListForms(filter form.FormFilter) ([]form.Form, error) {
	var forms []form.Form
	query := r.db.Model(&form.Form{})

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(description) LIKE ?)", like, like, like)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.TargetEntity != "" {
		query = query.Where("target_entity = ?", filter.TargetEntity)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To.AddDate(0, 0, 1))
	}

	err := query.Order("created_at DESC").Order("id DESC").Find(&forms).Error
	return forms, err
}

func (r *DBFormRepo) WithTx(tx *gorm.DB) FormRepo {
	if tx == nil {
		return r
	}
	return &DBFormRepo{
		db: tx,
	}
}
