package repository

import (
	"fmt"
	"maps"
	"slices"

	"modelrepo/internal/domain"
)

func (r *Repository) addRef(referee, referrer string) {
	m := r.refs[referee]
	if m == nil {
		m = make(map[string]int)
		r.refs[referee] = m
	}
	m[referrer]++
}

// removeRef tolerates entries that are already gone: a referrer stripped in
// pass 1 may still see its field records reverted in pass 2.
func (r *Repository) removeRef(referee, referrer string) {
	m := r.refs[referee]
	if m == nil {
		return
	}
	if n, ok := m[referrer]; ok {
		if n <= 1 {
			delete(m, referrer)
		} else {
			m[referrer] = n - 1
		}
	}
	if len(m) == 0 {
		delete(r.refs, referee)
	}
}

func (r *Repository) addRefsOf(e domain.Element) {
	for _, id := range r.reg.Referees(e) {
		r.addRef(id, e.ID())
	}
}

// purgeReferrer drops every entry held by e, whatever its count.
func (r *Repository) purgeReferrer(e domain.Element) {
	for _, id := range r.reg.Referees(e) {
		m := r.refs[id]
		if m == nil {
			continue
		}
		delete(m, e.ID())
		if len(m) == 0 {
			delete(r.refs, id)
		}
	}
}

// RefCount returns the number of slots on referrer pointing at referee.
func (r *Repository) RefCount(referee, referrer string) int {
	return r.refs[referee][referrer]
}

// Referrers returns a copy of the reference-index entry for id.
func (r *Repository) Referrers(id string) map[string]int {
	return maps.Clone(r.refs[id])
}

// RefIndex returns a copy of the whole reference index.
func (r *Repository) RefIndex() map[string]map[string]int {
	out := make(map[string]map[string]int, len(r.refs))
	for k, v := range r.refs {
		out[k] = maps.Clone(v)
	}
	return out
}

// Verify recomputes the reference index from live field values and reports
// every entry that disagrees, along with references to dead elements.
func (r *Repository) Verify() []string {
	want := make(map[string]map[string]int)
	var problems []string
	for _, e := range r.All() {
		for _, id := range r.reg.Referees(e) {
			if !r.Contains(id) {
				problems = append(problems, fmt.Sprintf("%s(%s) points at missing element %s", e.TypeName(), e.ID(), id))
				continue
			}
			if want[id] == nil {
				want[id] = make(map[string]int)
			}
			want[id][e.ID()]++
		}
	}
	for _, referee := range slices.Sorted(maps.Keys(want)) {
		for _, referrer := range slices.Sorted(maps.Keys(want[referee])) {
			if got, n := r.refs[referee][referrer], want[referee][referrer]; got != n {
				problems = append(problems, fmt.Sprintf("index[%s][%s] = %d, want %d", referee, referrer, got, n))
			}
		}
	}
	for _, referee := range slices.Sorted(maps.Keys(r.refs)) {
		for _, referrer := range slices.Sorted(maps.Keys(r.refs[referee])) {
			if want[referee][referrer] == 0 {
				problems = append(problems, fmt.Sprintf("index[%s][%s] = %d, want none", referee, referrer, r.refs[referee][referrer]))
			}
		}
	}
	if len(r.All()) != len(r.index) {
		problems = append(problems, fmt.Sprintf("%d indexed elements, %d reachable", len(r.index), len(r.All())))
	}
	return problems
}
