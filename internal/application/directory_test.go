package application

import (
	"testing"

	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/registry"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
offices:
  - code: MOHA
    name: Ministry
    level: moha
  - code: D01
    name: Colombo
    level: district
    parent: MOHA
  - code: DV01
    name: Dehiwala
    level: division
    parent: D01
  - code: G001
    name: Kawdana
    level: gn
    parent: DV01
---
families:
  - family_id: FAM-100
    head_name: Jayasuriya
    office: G001
    members:
      - member_id: M100
        full_name: Ruwan Jayasuriya
`

func TestImportDirectory(t *testing.T) {
	conn := testutils.NewTestDB(t)
	repos := repository.NewRepositories(conn)

	dir, err := ParseDirectory(seedYAML)
	require.NoError(t, err)
	require.Len(t, dir.Offices, 4)
	require.Len(t, dir.Families, 1)

	require.NoError(t, ImportDirectory(repos, dir, quietLogger()))
	// Importing twice updates in place.
	dir.Families[0].HeadName = "R. Jayasuriya"
	require.NoError(t, ImportDirectory(repos, dir, quietLogger()))

	tree, err := LoadHierarchy(repos)
	require.NoError(t, err)
	assert.Equal(t, 4, tree.Len())
	assert.True(t, tree.IsDescendant("G001", "MOHA"))

	fam, err := repos.Registry.GetFamily("FAM-100")
	require.NoError(t, err)
	assert.Equal(t, "R. Jayasuriya", fam.HeadName)
	require.Len(t, fam.Members, 1)
	assert.Equal(t, "M100", fam.Members[0].MemberID)

	member := "M100"
	entity, err := repos.Registry.Lookup(registry.EntityRef{Type: "member", FamilyID: "FAM-100", MemberID: &member})
	require.NoError(t, err)
	assert.Equal(t, "G001", entity.OfficeCode)
}

func TestImportDirectoryRejectsBadInput(t *testing.T) {
	conn := testutils.NewTestDB(t)
	repos := repository.NewRepositories(conn)
	parent := "MOHA"

	err := ImportDirectory(repos, &Directory{
		Offices: []office.Office{
			{Code: "MOHA", Level: office.LevelMOHA},
			{Code: "G9", Level: office.LevelGN, ParentCode: strp("NOPE")},
		},
	}, quietLogger())
	assert.Error(t, err)

	err = ImportDirectory(repos, &Directory{
		Offices:  []office.Office{{Code: "MOHA", Level: office.LevelMOHA}, {Code: "D9", Level: office.LevelDistrict, ParentCode: &parent}},
		Families: []registry.Family{{FamilyID: "FAM-9", OfficeCode: "D9"}},
	}, quietLogger())
	assert.Error(t, err, "families belong to GN offices")

	offices, err := repos.Office.ListOffices()
	require.NoError(t, err)
	assert.Empty(t, offices, "failed imports leave nothing behind")

	_, err = ParseDirectory("offices:\n  - code: X\n    region: west\n")
	assert.Error(t, err)
}
