package repository

import (
	"fmt"

	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
)

// RecordDelete records into b the deletion of elems and everything they own.
// Non-owning references held outside the deleted subtrees are cleared in the
// same operation, so the result never leaves a dangling reference. Elements
// owned by another element in elems are covered by their ancestor.
func (r *Repository) RecordDelete(b *oplog.Builder, elems ...domain.Element) error {
	roots := r.topmost(elems)
	doomed := make(map[string]bool)
	for _, e := range roots {
		for _, x := range r.reg.Subtree(e) {
			doomed[x.ID()] = true
		}
	}

	for _, e := range roots {
		for _, x := range r.reg.Subtree(e) {
			for _, referrer := range r.GetRefsTo(x, nil) {
				if doomed[referrer.ID()] {
					continue
				}
				if err := r.recordUnlink(b, referrer, x); err != nil {
					return err
				}
			}
		}
	}

	for _, e := range roots {
		if p := e.Parent(); p != nil && r.Contains(p.ID()) {
			a, ok := r.reg.OwningField(p, e)
			if !ok {
				return fmt.Errorf("%s(%s) is not held by its parent %s", e.TypeName(), e.ID(), p.ID())
			}
			var err error
			if a.Kind.IsMany() {
				err = b.FieldRemove(p, a.Name, e)
			} else {
				err = b.FieldAssign(p, a.Name, nil)
			}
			if err != nil {
				return err
			}
		}
		if err := b.Remove(e); err != nil {
			return err
		}
	}
	return nil
}

// recordUnlink clears every non-owning slot of referrer that points at target.
func (r *Repository) recordUnlink(b *oplog.Builder, referrer, target domain.Element) error {
	for _, a := range r.reg.Attrs(referrer.TypeName()) {
		if a.Kind.IsOwned() {
			continue
		}
		switch a.Kind {
		case domain.KindRefs:
			for _, id := range a.SlotIDs(referrer) {
				if id != target.ID() {
					continue
				}
				if err := b.FieldRemove(referrer, a.Name, target); err != nil {
					return err
				}
			}
		case domain.KindRef, domain.KindVariant:
			ids := a.SlotIDs(referrer)
			if len(ids) == 1 && ids[0] == target.ID() {
				if err := b.FieldAssign(referrer, a.Name, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Repository) topmost(elems []domain.Element) []domain.Element {
	picked := make(map[string]bool, len(elems))
	for _, e := range elems {
		if e != nil {
			picked[e.ID()] = true
		}
	}
	var out []domain.Element
	seen := make(map[string]bool, len(elems))
	for _, e := range elems {
		if e == nil || seen[e.ID()] {
			continue
		}
		seen[e.ID()] = true
		covered := false
		for _, a := range domain.Ancestors(e) {
			if picked[a.ID()] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, e)
		}
	}
	return out
}
