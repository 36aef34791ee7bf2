package office

import "time"

// Level is the administrative tier of an office. Higher values sit closer to the root.
type Level string

const (
	LevelMOHA     Level = "moha"
	LevelDistrict Level = "district"
	LevelDivision Level = "division"
	LevelGN       Level = "gn"
)

// Rank orders levels: moha > district > division > gn. Unknown levels rank 0.
func (l Level) Rank() int {
	switch l {
	case LevelMOHA:
		return 4
	case LevelDistrict:
		return 3
	case LevelDivision:
		return 2
	case LevelGN:
		return 1
	}
	return 0
}

func (l Level) Valid() bool { return l.Rank() > 0 }

// UserType mirrors office levels, plus the "specific" marker which only appears on assignments.
type UserType string

const (
	UserTypeMOHA     UserType = "moha"
	UserTypeDistrict UserType = "district"
	UserTypeDivision UserType = "division"
	UserTypeGN       UserType = "gn"
	UserTypeSpecific UserType = "specific"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeMOHA, UserTypeDistrict, UserTypeDivision, UserTypeGN, UserTypeSpecific:
		return true
	}
	return false
}

// CallerType reports whether t can describe an authenticated user (specific cannot).
func (t UserType) CallerType() bool {
	return t.Valid() && t != UserTypeSpecific
}

// Office is a node of the administrative tree.
type Office struct {
	Code       string    `gorm:"primaryKey;size:32" json:"code" yaml:"code"`
	Name       string    `gorm:"size:255" json:"name" yaml:"name"`
	Level      Level     `gorm:"size:16;not null;index" json:"level" yaml:"level"`
	ParentCode *string   `gorm:"size:32;index" json:"parent_code,omitempty" yaml:"parent"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
}

func (Office) TableName() string {
	return "offices"
}

// Caller is the authenticated identity supplied by the request layer.
type Caller struct {
	UserID     uint     `json:"user_id"`
	Type       UserType `json:"user_type"`
	OfficeCode string   `json:"office_code"`
}

func (c Caller) IsMOHA() bool { return c.Type == UserTypeMOHA }
