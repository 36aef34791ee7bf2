package testutils

import (
	"testing"

	"github.com/linskybing/survey-platform/internal/config/db"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/registry"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory sqlite database. A single connection is used so
// every query sees the same database and transactions serialize.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := db.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	conn, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func strPtr(s string) *string { return &s }

// Offices is the fixture hierarchy:
//
//	MOHA
//	├── D01 ── DV01 ── G001, G002
//	└── D02 ── DV02 ── G003
func Offices() []office.Office {
	return []office.Office{
		{Code: "MOHA", Name: "Ministry", Level: office.LevelMOHA},
		{Code: "D01", Name: "Colombo", Level: office.LevelDistrict, ParentCode: strPtr("MOHA")},
		{Code: "D02", Name: "Kandy", Level: office.LevelDistrict, ParentCode: strPtr("MOHA")},
		{Code: "DV01", Name: "Dehiwala", Level: office.LevelDivision, ParentCode: strPtr("D01")},
		{Code: "DV02", Name: "Gangawata", Level: office.LevelDivision, ParentCode: strPtr("D02")},
		{Code: "G001", Name: "Kawdana", Level: office.LevelGN, ParentCode: strPtr("DV01")},
		{Code: "G002", Name: "Karagampitiya", Level: office.LevelGN, ParentCode: strPtr("DV01")},
		{Code: "G003", Name: "Mahaiyawa", Level: office.LevelGN, ParentCode: strPtr("DV02")},
	}
}

// Families registers one family per GN office; FAM-001 has members M001 and M002.
func Families() []registry.Family {
	return []registry.Family{
		{FamilyID: "FAM-001", HeadName: "Perera", OfficeCode: "G001", Members: []registry.Member{
			{MemberID: "M001", FullName: "Nimal Perera"},
			{MemberID: "M002", FullName: "Kamala Perera"},
		}},
		{FamilyID: "FAM-002", HeadName: "Silva", OfficeCode: "G002"},
		{FamilyID: "FAM-003", HeadName: "Fernando", OfficeCode: "G003"},
	}
}

// Tree builds the fixture hierarchy and fails the test on error.
func Tree(t testing.TB) *office.Tree {
	t.Helper()
	tree, err := office.NewTree(Offices())
	if err != nil {
		t.Fatalf("office tree: %v", err)
	}
	return tree
}

// SeedDirectory stores the fixture offices and families.
func SeedDirectory(t testing.TB, conn *gorm.DB) {
	t.Helper()
	offices := Offices()
	if err := conn.Create(&offices).Error; err != nil {
		t.Fatalf("seed offices: %v", err)
	}
	for _, f := range Families() {
		f := f
		if err := conn.Create(&f).Error; err != nil {
			t.Fatalf("seed family %s: %v", f.FamilyID, err)
		}
	}
}
