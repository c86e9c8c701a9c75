package ports

import "modelrepo/internal/domain"

// ElementIndex is a persistent mirror of the repository's element and
// reference indices, kept for lookups from outside the running process.
type ElementIndex interface {
	// Lifecycle
	Open(path string) error
	Close() error

	// Rebuild replaces the whole mirror.
	Rebuild(nodes []domain.IndexNode, edges []domain.Edge) (*domain.SyncStats, error)

	// Node queries
	GetNode(id string) (*domain.IndexNode, error)
	SearchNames(query string, limit int) ([]domain.IndexNode, error)
	CountNodes() (int, error)

	// Edge queries
	RefsTo(id string) ([]domain.Edge, error)
	RefsFrom(id string) ([]domain.Edge, error)

	// Journal queries
	Recent(limit int) ([]domain.JournalEntry, error)

	// Batch updates
	BeginTx() (IndexTx, error)
}

// IndexTx is a transaction for atomic mirror updates.
type IndexTx interface {
	// Node operations
	UpsertNode(node *domain.IndexNode) error
	DeleteNode(id string) error

	// Edge operations
	ReplaceEdgesFrom(referrerID string, edges []domain.Edge) error

	// Journal operations
	AppendJournal(entry *domain.JournalEntry) error

	// Transaction control
	Commit() error
	Rollback() error
}
