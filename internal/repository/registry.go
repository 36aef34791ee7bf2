package repository

import (
	"errors"

	"github.com/linskybing/survey-platform/internal/domain/registry"
	"github.com/linskybing/survey-platform/pkg/errs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegistryRepo interface {
	registry.EntityRegistry
	GetFamily(familyID string) (registry.Family, error)
	UpsertFamilies(families []registry.Family) error
	WithTx(tx *gorm.DB) RegistryRepo
}

type DBRegistryRepo struct {
	db *gorm.DB
}

func NewRegistryRepo(db *gorm.DB) *DBRegistryRepo {
	return &DBRegistryRepo{
		db: db,
	}
}

func (r *DBRegistryRepo) GetFamily(familyID string) (registry.Family, error) {
	var f registry.Family
	err := r.db.Preload("Members").Where("family_id = ?", familyID).First(&f).Error
	return f, err
}

func (r *DBRegistryRepo) Lookup(ref registry.EntityRef) (registry.Entity, error) {
	var fam registry.Family
	if err := r.db.Where("family_id = ?", ref.FamilyID).First(&fam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return registry.Entity{}, errs.NotFound("family %s not found", ref.FamilyID)
		}
		return registry.Entity{}, err
	}
	if ref.MemberID != nil {
		var count int64
		err := r.db.Model(&registry.Member{}).
			Where("member_id = ? AND family_id = ?", *ref.MemberID, ref.FamilyID).
			Count(&count).Error
		if err != nil {
			return registry.Entity{}, err
		}
		if count == 0 {
			return registry.Entity{}, errs.NotFound("member %s not found in family %s", *ref.MemberID, ref.FamilyID)
		}
	}
	return registry.Entity{Ref: ref, OfficeCode: fam.OfficeCode}, nil
}

// UpsertFamilies writes families and their members, replacing names and offices on conflict.
func (r *DBRegistryRepo) UpsertFamilies(families []registry.Family) error {
	for i := range families {
		fam := families[i]
		members := fam.Members
		fam.Members = nil
		err := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "family_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"head_name", "address", "office_code"}),
		}).Create(&fam).Error
		if err != nil {
			return err
		}
		for j := range members {
			members[j].FamilyID = fam.FamilyID
		}
		if len(members) == 0 {
			continue
		}
		err = r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"family_id", "full_name"}),
		}).Create(&members).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *DBRegistryRepo) WithTx(tx *gorm.DB) RegistryRepo {
	if tx == nil {
		return r
	}
	return &DBRegistryRepo{
		db: tx,
	}
}
