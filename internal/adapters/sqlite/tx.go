package sqlite

import (
	"database/sql"
	"time"

	"modelrepo/internal/domain"
	"modelrepo/internal/ports"
)

// indexTx implements ports.IndexTx
type indexTx struct {
	tx *sql.Tx
}

// Ensure indexTx implements IndexTx
var _ ports.IndexTx = (*indexTx)(nil)

// UpsertNode inserts or updates an element row
func (t *indexTx) UpsertNode(node *domain.IndexNode) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO elements (id, type, name, parent_id, field)
		VALUES (?, ?, ?, ?, ?)
	`, node.ID, node.Type, node.Name, node.ParentID, node.Field)
	return err
}

// DeleteNode removes an element row and the entries it holds
func (t *indexTx) DeleteNode(id string) error {
	if _, err := t.tx.Exec(`DELETE FROM elements WHERE id = ?`, id); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM refs WHERE referrer_id = ?`, id)
	return err
}

// ReplaceEdgesFrom swaps every entry held by referrerID for edges
func (t *indexTx) ReplaceEdgesFrom(referrerID string, edges []domain.Edge) error {
	if _, err := t.tx.Exec(`DELETE FROM refs WHERE referrer_id = ?`, referrerID); err != nil {
		return err
	}
	for _, e := range edges {
		if _, err := t.tx.Exec(`
			INSERT OR REPLACE INTO refs (referee_id, referrer_id, count)
			VALUES (?, ?, ?)
		`, e.RefereeID, referrerID, e.Count); err != nil {
			return err
		}
	}
	return nil
}

// AppendJournal records an executed operation and fills in its sequence number
func (t *indexTx) AppendJournal(entry *domain.JournalEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	res, err := t.tx.Exec(`
		INSERT INTO journal (op_id, name, kind, op_count, time)
		VALUES (?, ?, ?, ?, ?)
	`, entry.OpID, entry.Name, entry.Kind, entry.OpCount, entry.Timestamp.UnixMilli())
	if err != nil {
		return err
	}
	entry.Seq, err = res.LastInsertId()
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}

func unixMilli(ms int64) time.Time {
	return time.UnixMilli(ms)
}
