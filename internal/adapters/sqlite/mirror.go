package sqlite

import (
	"fmt"

	"go.uber.org/zap"

	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/ports"
	"modelrepo/internal/repository"
)

// Journal kinds
const (
	JournalDo   = "do"
	JournalUndo = "undo"
	JournalRedo = "redo"
)

// Mirror keeps an ElementIndex in step with a repository. Element events
// mark rows dirty; the closing operation event writes them, with a journal
// entry, in one transaction.
type Mirror struct {
	index ports.ElementIndex
	repo  *repository.Repository
	log   *zap.SugaredLogger

	dirty   map[string]bool
	unsubs  []func()
	lastErr error
}

// Attach subscribes a mirror to repo. Call Sync first so the index starts
// from the repository's current content.
func Attach(index ports.ElementIndex, repo *repository.Repository, log *zap.SugaredLogger) *Mirror {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &Mirror{index: index, repo: repo, log: log, dirty: make(map[string]bool)}

	mark := func(ev repository.Event) {
		for _, e := range ev.Elements {
			m.dirty[e.ID()] = true
		}
		for _, e := range []domain.Element{ev.Element, ev.OldParent, ev.NewParent} {
			if e != nil {
				m.dirty[e.ID()] = true
			}
		}
	}
	// Created and deleted events carry subtree roots only. A removed root
	// still holds its owned children, so both directions reach every row.
	markSubtrees := func(ev repository.Event) {
		for _, e := range ev.Elements {
			for _, x := range repo.Registry().Subtree(e) {
				m.dirty[x.ID()] = true
			}
		}
	}
	m.unsubs = append(m.unsubs,
		repo.Subscribe(repository.EventCreated, markSubtrees),
		repo.Subscribe(repository.EventDeleted, markSubtrees),
		repo.Subscribe(repository.EventUpdated, mark),
		repo.Subscribe(repository.EventRelocated, mark),
		repo.Subscribe(repository.EventOperationExecuted, func(ev repository.Event) { m.flush(ev.Operation, JournalDo) }),
		repo.Subscribe(repository.EventUndo, func(ev repository.Event) { m.flush(ev.Operation, JournalUndo) }),
		repo.Subscribe(repository.EventRedo, func(ev repository.Event) { m.flush(ev.Operation, JournalRedo) }),
	)
	return m
}

// OpenMirror opens the index at path, rebuilds it from repo and attaches a
// mirror. Close the returned index after detaching.
func OpenMirror(path string, repo *repository.Repository, log *zap.SugaredLogger) (*Index, *Mirror, error) {
	index := NewIndex(log)
	if err := index.Open(path); err != nil {
		return nil, nil, err
	}
	stats, err := Sync(index, repo)
	if err != nil {
		index.Close()
		return nil, nil, fmt.Errorf("failed to sync index: %w", err)
	}
	index.log.Debugw("index synced", "path", path, "added", stats.NodesAdded, "deleted", stats.NodesDeleted, "took", stats.Duration)
	return index, Attach(index, repo, log), nil
}

// Detach removes the mirror's subscriptions
func (m *Mirror) Detach() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Err returns the last write failure, if any
func (m *Mirror) Err() error {
	return m.lastErr
}

// flush writes the dirty rows. Bypass operations change the repository
// without element events, so they trigger a full rebuild instead.
func (m *Mirror) flush(op *oplog.Operation, kind string) {
	defer clear(m.dirty)

	if op.Bypass {
		if _, err := Sync(m.index, m.repo); err != nil {
			m.fail("index rebuild failed", op, err)
		}
	}

	tx, err := m.index.BeginTx()
	if err != nil {
		m.fail("index transaction failed", op, err)
		return
	}
	if err := m.write(tx, op, kind); err != nil {
		tx.Rollback()
		m.fail("index update failed", op, err)
		return
	}
	if err := tx.Commit(); err != nil {
		m.fail("index commit failed", op, err)
		return
	}
	m.lastErr = nil
}

func (m *Mirror) write(tx ports.IndexTx, op *oplog.Operation, kind string) error {
	reg := m.repo.Registry()
	if !op.Bypass {
		for id := range m.dirty {
			e := m.repo.Get(id)
			if e == nil {
				if err := tx.DeleteNode(id); err != nil {
					return err
				}
				continue
			}
			node := NodeOf(reg, e)
			if err := tx.UpsertNode(&node); err != nil {
				return err
			}
			if err := tx.ReplaceEdgesFrom(id, EdgesFrom(reg, e)); err != nil {
				return err
			}
		}
	}
	return tx.AppendJournal(&domain.JournalEntry{
		OpID:      op.ID,
		Name:      op.Name,
		Kind:      kind,
		OpCount:   len(op.Ops),
		Timestamp: op.Timestamp(),
	})
}

func (m *Mirror) fail(msg string, op *oplog.Operation, err error) {
	m.lastErr = err
	m.log.Errorw(msg, "operation", op.Name, "id", op.ID, "error", err)
}
