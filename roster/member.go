package roster

import "time"

// Member is a roster entry. Rows are created by roster import and are never
// created or deleted by the linker.
type Member struct {
	ID              int64
	Name            string
	NameKey         string
	LineUserID      string // empty when unlinked
	LineDisplayName string
	IsTarget        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Candidate is the projection returned by roster lookups.
type Candidate struct {
	ID         int64
	LineUserID string
}
