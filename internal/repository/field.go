package repository

import (
	"github.com/linskybing/survey-platform/internal/domain/form"
	"gorm.io/gorm"
)

type FieldRepo interface {
	CreateField(f *form.FormField) error
	GetFieldByID(id uint) (form.FormField, error)
	ListFieldsByForm(formID uint) ([]form.FormField, error)
	ExistsFieldCode(formID uint, code string) (bool, error)
	MaxOrder(formID uint) (int, error)
	UpdateFieldOrder(id uint, order int) error
	DeleteField(id uint) error
	WithTx(tx *gorm.DB) FieldRepo
}

type DBFieldRepo struct {
	db *gorm.DB
}

func NewFieldRepo(db *gorm.DB) *DBFieldRepo {
	return &DBFieldRepo{
		db: db,
	}
}

func (r *DBFieldRepo) CreateField(f *form.FormField) error {
	return r.db.Create(f).Error
}

func (r *DBFieldRepo) GetFieldByID(id uint) (form.FormField, error) {
	var f form.FormField
	err := r.db.First(&f, id).Error
	return f, err
}

func (r *DBFieldRepo) ListFieldsByForm(formID uint) ([]form.FormField, error) {
	var fields []form.FormField
	err := r.db.
		Where("form_id = ?", formID).
		Order("field_order ASC").
		Order("id ASC").
		Find(&fields).Error
	return fields, err
}

func (r *DBFieldRepo) ExistsFieldCode(formID uint, code string) (bool, error) {
	var count int64
	err := r.db.Model(&form.FormField{}).
		Where("form_id = ? AND field_code = ?", formID, code).
		Count(&count).Error
	return count > 0, err
}

func (r *DBFieldRepo) MaxOrder(formID uint) (int, error) {
	var highest int
	row := r.db.Model(&form.FormField{}).
		Select("COALESCE(MAX(field_order), 0)").
		Where("form_id = ?", formID).
		Row()
	if err := row.Scan(&highest); err != nil {
		return 0, err
	}
	return highest, nil
}

func (r *DBFieldRepo) UpdateFieldOrder(id uint, order int) error {
	return r.db.Model(&form.FormField{}).Where("id = ?", id).Update("field_order", order).Error
}

func (r *DBFieldRepo) DeleteField(id uint) error {
	return r.db.Delete(&form.FormField{}, id).Error
}

func (r *DBFieldRepo) WithTx(tx *gorm.DB) FieldRepo {
	if tx == nil {
		return r
	}
	return &DBFieldRepo{
		db: tx,
	}
}
