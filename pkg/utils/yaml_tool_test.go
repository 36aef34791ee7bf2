package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type officeDoc struct {
	Offices []struct {
		Code  string `yaml:"code"`
		Level string `yaml:"level"`
	} `yaml:"offices"`
}

type familyDoc struct {
	Families []struct {
		FamilyID string `yaml:"family_id"`
		Address  string `yaml:"address"`
		HeadName string `yaml:"head_name"`
	} `yaml:"families"`
}

func officeCodes(t *testing.T, content string) []string {
	t.Helper()
	codes := []string{}
	err := DecodeYAMLDocuments(content, func(doc *officeDoc) error {
		for _, o := range doc.Offices {
			codes = append(codes, o.Code)
		}
		return nil
	})
	require.NoError(t, err)
	return codes
}

func TestDecodeYAMLDocuments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name: "single document",
			input: `
offices:
  - code: MOHA
    level: moha
`,
			expected: []string{"MOHA"},
		},
		{
			name: "multiple documents with --- separator",
			input: `
---
offices:
  - code: MOHA
    level: moha
---
offices:
  - code: D01
    level: district
`,
			expected: []string{"MOHA", "D01"},
		},
		{
			name: "trailing separator",
			input: `
---
offices:
  - code: MOHA
---
`,
			expected: []string{"MOHA"},
		},
		{
			name:     "empty input",
			input:    ``,
			expected: []string{},
		},
		{
			name:     "only separators",
			input:    "---\n---\n",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, officeCodes(t, tt.input))
		})
	}
}

func TestDecodeYAMLDocumentsKeepsDashesInsideValues(t *testing.T) {
	content := `families:
  - family_id: FAM-009
    address: "--- no street name ---"
    head_name: |
      first line
      --- still the same value
---
families:
  - family_id: FAM-010
`
	var got []string
	var heads []string
	err := DecodeYAMLDocuments(content, func(doc *familyDoc) error {
		for _, f := range doc.Families {
			got = append(got, f.FamilyID)
			heads = append(heads, f.HeadName)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"FAM-009", "FAM-010"}, got)
	assert.Equal(t, "first line\n--- still the same value\n", heads[0])
}

func TestDecodeYAMLDocumentsErrors(t *testing.T) {
	err := DecodeYAMLDocuments("offices:\n  - code: X\n    colour: red\n", func(*officeDoc) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 1")

	err = DecodeYAMLDocuments("offices:\n  - code: X\n---\noffices: [\n", func(*officeDoc) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 2")

	stop := errors.New("stop")
	err = DecodeYAMLDocuments("offices:\n  - code: X\n", func(*officeDoc) error { return stop })
	assert.ErrorIs(t, err, stop)
}
