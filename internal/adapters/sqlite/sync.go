package sqlite

import (
	"fmt"
	"sort"
	"time"

	"modelrepo/internal/domain"
	"modelrepo/internal/ports"
	"modelrepo/internal/repository"
)

// Rebuild replaces every element and reference row in one transaction. The
// journal is kept.
func (idx *Index) Rebuild(nodes []domain.IndexNode, edges []domain.Edge) (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM elements`)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	stats.NodesDeleted = int(n)
	if res, err = tx.Exec(`DELETE FROM refs`); err != nil {
		return nil, err
	}
	n, _ = res.RowsAffected()
	stats.EdgesDeleted = int(n)

	t := &indexTx{tx: tx}
	for i := range nodes {
		if err := t.UpsertNode(&nodes[i]); err != nil {
			return nil, fmt.Errorf("failed to insert %s: %w", nodes[i].ID, err)
		}
		stats.NodesAdded++
	}
	for _, e := range edges {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO refs (referee_id, referrer_id, count)
			VALUES (?, ?, ?)
		`, e.RefereeID, e.ReferrerID, e.Count); err != nil {
			return nil, fmt.Errorf("failed to insert reference %s -> %s: %w", e.ReferrerID, e.RefereeID, err)
		}
		stats.EdgesAdded++
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// NodeOf describes a live element as an index row
func NodeOf(reg *domain.Registry, e domain.Element) domain.IndexNode {
	node := domain.IndexNode{ID: e.ID(), Type: e.TypeName(), Name: domain.NameOf(e)}
	if p := e.Parent(); p != nil {
		node.ParentID = p.ID()
		if a, ok := reg.OwningField(p, e); ok {
			node.Field = a.Name
		}
	}
	return node
}

// EdgesFrom counts the slots of e per referee, ordered by referee id
func EdgesFrom(reg *domain.Registry, e domain.Element) []domain.Edge {
	counts := make(map[string]int)
	for _, id := range reg.Referees(e) {
		counts[id]++
	}
	edges := make([]domain.Edge, 0, len(counts))
	for id, n := range counts {
		edges = append(edges, domain.Edge{RefereeID: id, ReferrerID: e.ID(), Count: n})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].RefereeID < edges[j].RefereeID })
	return edges
}

// Snapshot lists the rows mirroring repo: one node per live element and one
// edge per reference-index entry.
func Snapshot(repo *repository.Repository) ([]domain.IndexNode, []domain.Edge) {
	reg := repo.Registry()
	all := repo.All()
	nodes := make([]domain.IndexNode, 0, len(all))
	for _, e := range all {
		nodes = append(nodes, NodeOf(reg, e))
	}

	var edges []domain.Edge
	for referee, referrers := range repo.RefIndex() {
		for referrer, n := range referrers {
			edges = append(edges, domain.Edge{RefereeID: referee, ReferrerID: referrer, Count: n})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].RefereeID != edges[j].RefereeID {
			return edges[i].RefereeID < edges[j].RefereeID
		}
		return edges[i].ReferrerID < edges[j].ReferrerID
	})
	return nodes, edges
}

// Sync rebuilds index from the current content of repo
func Sync(index ports.ElementIndex, repo *repository.Repository) (*domain.SyncStats, error) {
	nodes, edges := Snapshot(repo)
	return index.Rebuild(nodes, edges)
}
