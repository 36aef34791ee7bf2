package application

import (
	"fmt"
	"os"

	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/registry"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Directory is the content of an office and family seed file. A file may hold several
// YAML documents; their lists are concatenated.
type Directory struct {
	Offices  []office.Office   `yaml:"offices"`
	Families []registry.Family `yaml:"families"`
}

func ParseDirectory(content string) (*Directory, error) {
	out := &Directory{}
	err := utils.DecodeYAMLDocuments(content, func(doc *Directory) error {
		out.Offices = append(out.Offices, doc.Offices...)
		out.Families = append(out.Families, doc.Families...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func LoadDirectoryFile(path string) (*Directory, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	dir, err := ParseDirectory(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return dir, nil
}

// ImportDirectory upserts offices and families in one transaction. The merged office set
// must still form a valid tree, and every family must belong to a GN office.
func ImportDirectory(repos *repository.Repos, dir *Directory, log logrus.FieldLogger) error {
	return repos.ExecTx(func(tx *repository.Repos) error {
		existing, err := tx.Office.ListOffices()
		if err != nil {
			return err
		}
		merged := mergeOffices(existing, dir.Offices)
		tree, err := office.NewTree(merged)
		if err != nil {
			return fmt.Errorf("invalid office hierarchy: %w", err)
		}
		for _, fam := range dir.Families {
			o, err := tree.GetOffice(fam.OfficeCode)
			if err != nil {
				return fmt.Errorf("family %s: %w", fam.FamilyID, err)
			}
			if o.Level != office.LevelGN {
				return fmt.Errorf("family %s: office %s is not a GN office", fam.FamilyID, o.Code)
			}
		}

		if err := tx.Office.UpsertOffices(dir.Offices); err != nil {
			return fmt.Errorf("upsert offices: %w", err)
		}
		if err := tx.Registry.UpsertFamilies(dir.Families); err != nil {
			return fmt.Errorf("upsert families: %w", err)
		}
		log.WithFields(logrus.Fields{
			"offices":  len(dir.Offices),
			"families": len(dir.Families),
		}).Info("directory imported")
		return nil
	})
}

// LoadHierarchy builds the office tree from the stored offices.
func LoadHierarchy(repos *repository.Repos) (*office.Tree, error) {
	offices, err := repos.Office.ListOffices()
	if err != nil {
		return nil, err
	}
	return office.NewTree(offices)
}

func mergeOffices(existing, incoming []office.Office) []office.Office {
	pos := make(map[string]int, len(existing)+len(incoming))
	out := make([]office.Office, 0, len(existing)+len(incoming))
	for _, list := range [][]office.Office{existing, incoming} {
		for _, o := range list {
			if i, ok := pos[o.Code]; ok {
				out[i] = o
				continue
			}
			pos[o.Code] = len(out)
			out = append(out, o)
		}
	}
	return out
}
