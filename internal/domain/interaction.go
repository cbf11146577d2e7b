package domain

import "time"

// InteractionKind is the recorded swipe decision.
type InteractionKind string

const (
	InteractionLike    InteractionKind = "like"
	InteractionDislike InteractionKind = "dislike"
)

// Valid reports whether k is a known interaction kind.
func (k InteractionKind) Valid() bool {
	return k == InteractionLike || k == InteractionDislike
}

// Interaction is a directed like/dislike edge from one profile toward
// another. The table is an append-only log: duplicate rows for the same
// (source, target, kind) are tolerated and all reads are set-membership,
// never count-based.
type Interaction struct {
	ID         string          `gorm:"type:text;primaryKey" json:"id"`
	SourceID   string          `gorm:"type:text;not null;index:idx_interactions_source" json:"source_id"`
	TargetID   string          `gorm:"type:text;not null;index:idx_interactions_target" json:"target_id"`
	Kind       InteractionKind `gorm:"type:text;not null" json:"kind"`
	SearchType SearchType      `gorm:"type:text;not null" json:"search_type"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName returns the database table name for Interaction.
func (Interaction) TableName() string {
	return "interactions"
}

// Connection is the undirected mutual-match relation between two profiles.
// Rows are stored with ProfileA < ProfileB; reads must still check both
// orderings since older writers did not normalize.
type Connection struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	ProfileA  string    `gorm:"type:text;not null;index:idx_connections_a" json:"profile_a"`
	ProfileB  string    `gorm:"type:text;not null;index:idx_connections_b" json:"profile_b"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Connection.
func (Connection) TableName() string {
	return "connections"
}

// Other returns the member of the pair that is not id, or "" when id is not
// part of the connection.
func (c Connection) Other(id string) string {
	switch id {
	case c.ProfileA:
		return c.ProfileB
	case c.ProfileB:
		return c.ProfileA
	}
	return ""
}

// OrderPair returns the two profile IDs in lexicographic order, the stored
// normal form for connection rows.
func OrderPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
