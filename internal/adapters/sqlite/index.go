package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"modelrepo/internal/domain"
	"modelrepo/internal/ports"
)

const schemaVersion = "1"

// Index implements ports.ElementIndex using SQLite
type Index struct {
	db     *sql.DB
	dbPath string
	log    *zap.SugaredLogger
}

// Ensure Index implements ElementIndex
var _ ports.ElementIndex = (*Index)(nil)

// NewIndex creates a new SQLite index. A nil logger discards output.
func NewIndex(log *zap.SugaredLogger) *Index {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Index{log: log}
}

// Open creates or opens the database file at path
func (idx *Index) Open(path string) error {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	idx.dbPath = path

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// WAL mode lets the CLI read while the TUI writes
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=off")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS elements (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			parent_id TEXT NOT NULL DEFAULT '',
			field TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS refs (
			referee_id TEXT NOT NULL,
			referrer_id TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (referee_id, referrer_id)
		);
		CREATE TABLE IF NOT EXISTS journal (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			op_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			op_count INTEGER NOT NULL,
			time INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_elements_name ON elements(name);
		CREATE INDEX IF NOT EXISTS idx_elements_parent ON elements(parent_id);
		CREATE INDEX IF NOT EXISTS idx_refs_referrer ON refs(referrer_id);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Path returns the database file in use
func (idx *Index) Path() string {
	return idx.dbPath
}

// GetNode retrieves an element row by id. It returns nil when absent.
func (idx *Index) GetNode(id string) (*domain.IndexNode, error) {
	var node domain.IndexNode
	err := idx.db.QueryRow(`
		SELECT id, type, name, parent_id, field
		FROM elements WHERE id = ?
	`, id).Scan(&node.ID, &node.Type, &node.Name, &node.ParentID, &node.Field)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// SearchNames returns named elements whose name contains query, case-insensitively
func (idx *Index) SearchNames(query string, limit int) ([]domain.IndexNode, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := idx.db.Query(`
		SELECT id, type, name, parent_id, field
		FROM elements
		WHERE name != '' AND name LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY name, id
		LIMIT ?
	`, escapeLike(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.IndexNode
	for rows.Next() {
		var n domain.IndexNode
		if err := rows.Scan(&n.ID, &n.Type, &n.Name, &n.ParentID, &n.Field); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// CountNodes returns the number of mirrored elements
func (idx *Index) CountNodes() (int, error) {
	var n int
	err := idx.db.QueryRow(`SELECT COUNT(*) FROM elements`).Scan(&n)
	return n, err
}

// RefsTo returns the reference-index entries pointing at id
func (idx *Index) RefsTo(id string) ([]domain.Edge, error) {
	return idx.queryEdges(`
		SELECT referee_id, referrer_id, count
		FROM refs WHERE referee_id = ? ORDER BY referrer_id
	`, id)
}

// RefsFrom returns the reference-index entries held by id
func (idx *Index) RefsFrom(id string) ([]domain.Edge, error) {
	return idx.queryEdges(`
		SELECT referee_id, referrer_id, count
		FROM refs WHERE referrer_id = ? ORDER BY referee_id
	`, id)
}

func (idx *Index) queryEdges(query, id string) ([]domain.Edge, error) {
	rows, err := idx.db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.RefereeID, &e.ReferrerID, &e.Count); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Recent returns the latest journal entries, newest first
func (idx *Index) Recent(limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := idx.db.Query(`
		SELECT seq, op_id, name, kind, op_count, time
		FROM journal ORDER BY seq DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		var ms int64
		if err := rows.Scan(&e.Seq, &e.OpID, &e.Name, &e.Kind, &e.OpCount, &ms); err != nil {
			return nil, err
		}
		e.Timestamp = unixMilli(ms)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.IndexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}
