package repository

import (
	"github.com/linskybing/survey-platform/internal/domain/office"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfficeRepo interface {
	ListOffices() ([]office.Office, error)
	UpsertOffices(offices []office.Office) error
	WithTx(tx *gorm.DB) OfficeRepo
}

type DBOfficeRepo struct {
	db *gorm.DB
}

func NewOfficeRepo(db *gorm.DB) *DBOfficeRepo {
	return &DBOfficeRepo{
		db: db,
	}
}

func (r *DBOfficeRepo) ListOffices() ([]office.Office, error) {
	var offices []office.Office
	err := r.db.Order("code ASC").Find(&offices).Error
	return offices, err
}

func (r *DBOfficeRepo) UpsertOffices(offices []office.Office) error {
	if len(offices) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "level", "parent_code"}),
	}).Create(&offices).Error
}

func (r *DBOfficeRepo) WithTx(tx *gorm.DB) OfficeRepo {
	if tx == nil {
		return r
	}
	return &DBOfficeRepo{
		db: tx,
	}
}
