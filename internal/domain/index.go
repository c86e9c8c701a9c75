package domain

import "time"

// IndexNode represents a mirrored element row
type IndexNode struct {
	ID       string // Element id (primary key)
	Type     string // Registered type name
	Name     string // Display name, empty for unnamed elements
	ParentID string // Owner id, empty for roots
	Field    string // Owning field on the parent
}

// Edge represents one reference-index entry
type Edge struct {
	RefereeID  string // Element being pointed at
	ReferrerID string // Element holding the slot
	Count      int    // Number of slots on the referrer
}

// JournalEntry is one executed operation as recorded by the mirror
type JournalEntry struct {
	Seq       int64
	OpID      string
	Name      string
	Kind      string // "do", "undo" or "redo"
	OpCount   int
	Timestamp time.Time
}

// SyncStats holds statistics from a sync operation
type SyncStats struct {
	NodesAdded   int
	NodesUpdated int
	NodesDeleted int
	EdgesAdded   int
	EdgesDeleted int
	Duration     time.Duration
}
