package domain

import (
	"time"
)

// SearchType distinguishes the two discovery pools a user can maintain a
// profile in: peer matching ("flatmate") and listing matching ("accommodation").
type SearchType string

const (
	SearchTypeFlatmate      SearchType = "flatmate"
	SearchTypeAccommodation SearchType = "accommodation"
)

// Valid reports whether t is one of the known search types.
func (t SearchType) Valid() bool {
	return t == SearchTypeFlatmate || t == SearchTypeAccommodation
}

// Profile represents one per-(account, search type) matching profile.
// A single account may hold both a flatmate and an accommodation profile.
type Profile struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	AccountID    string     `gorm:"type:text;not null;index:idx_profiles_account" json:"account_id"`
	SearchType   SearchType `gorm:"type:text;not null;index:idx_profiles_type" json:"search_type"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	SearchRadius float64    `json:"search_radius"` // meters, 0 means unset
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Info      []InfoEntry       `gorm:"foreignKey:ProfileID" json:"info,omitempty"`
	Interests []ProfileInterest `gorm:"foreignKey:ProfileID" json:"interests,omitempty"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string {
	return "profiles"
}

// InfoEntry is a single typed key/value attribute of a profile (name, age,
// budget, bio, university, ...). Keys are unique per profile.
type InfoEntry struct {
	ProfileID string `gorm:"type:text;primaryKey" json:"profile_id"`
	Key       string `gorm:"type:text;primaryKey" json:"key"`
	Value     string `gorm:"type:text" json:"value"`
	ValueType string `gorm:"type:text;default:text" json:"value_type"` // text | number | date | set
}

// TableName returns the database table name for InfoEntry.
func (InfoEntry) TableName() string {
	return "profile_info"
}

// InfoRegistryEntry carries the display metadata for an information key.
// The registry is managed out-of-band; discovery only reads it to annotate
// assembled profiles.
type InfoRegistryEntry struct {
	Key          string `gorm:"type:text;primaryKey" json:"key"`
	Label        string `gorm:"type:text" json:"label"`
	DisplayOrder int    `json:"display_order"`
	Editable     bool   `gorm:"default:true" json:"editable"`
	InputType    string `gorm:"type:text" json:"input_type"`
}

// TableName returns the database table name for InfoRegistryEntry.
func (InfoRegistryEntry) TableName() string {
	return "info_registry"
}
