package registry

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
)

// Family is a household registered under a GN office.
type Family struct {
	FamilyID   string    `gorm:"primaryKey;size:64" json:"family_id" yaml:"family_id"`
	HeadName   string    `gorm:"size:255" json:"head_name" yaml:"head_name"`
	Address    string    `gorm:"type:text" json:"address" yaml:"address"`
	OfficeCode string    `gorm:"size:32;not null;index" json:"office_code" yaml:"office"`
	Members    []Member  `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"members,omitempty" yaml:"members"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
}

func (Family) TableName() string {
	return "families"
}

type Member struct {
	MemberID  string    `gorm:"primaryKey;size:64" json:"member_id" yaml:"member_id"`
	FamilyID  string    `gorm:"size:64;not null;index" json:"family_id" yaml:"-"`
	FullName  string    `gorm:"size:255" json:"full_name" yaml:"full_name"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

func (Member) TableName() string {
	return "members"
}

// EntityRef points at the family, or the member of a family, a submission is about.
type EntityRef struct {
	Type     form.TargetEntity
	FamilyID string
	MemberID *string
}

// Entity is a resolved EntityRef with the GN office that owns it.
type Entity struct {
	Ref        EntityRef
	OfficeCode string
}

// EntityRegistry resolves entity references against the family/member register.
//
//go:generate mockgen -destination=mock/mock_registry.go -package=mock github.com/linskybing/survey-platform/internal/domain/registry EntityRegistry
type EntityRegistry interface {
	// Lookup returns a not found error when the family or member does not exist, or when
	// the member does not belong to the family.
	Lookup(ref EntityRef) (Entity, error)
}
