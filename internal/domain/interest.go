package domain

// Interest is one entry of the global interest vocabulary. The vocabulary is
// append-only; entries are never renamed or removed once published, so an ID
// seen on a profile always resolves.
type Interest struct {
	ID    string `gorm:"type:text;primaryKey" json:"id"`
	Label string `gorm:"type:text;not null" json:"label"`
}

// TableName returns the database table name for Interest.
func (Interest) TableName() string {
	return "interests"
}

// ProfileInterest links a profile to a vocabulary entry.
type ProfileInterest struct {
	ProfileID  string `gorm:"type:text;primaryKey" json:"profile_id"`
	InterestID string `gorm:"type:text;primaryKey" json:"interest_id"`
}

// TableName returns the database table name for ProfileInterest.
func (ProfileInterest) TableName() string {
	return "profile_interests"
}
