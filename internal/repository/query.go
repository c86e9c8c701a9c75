package repository

import (
	"sort"
	"strings"

	"modelrepo/internal/domain"
	"modelrepo/internal/query"
)

// Predicate filters elements.
type Predicate func(domain.Element) bool

// GetInstancesOf returns the live elements whose type is, or derives from,
// any of typeNames.
func (r *Repository) GetInstancesOf(typeNames ...string) []domain.Element {
	return r.FindAll(func(e domain.Element) bool {
		for _, t := range typeNames {
			if r.reg.IsKindOf(e.TypeName(), t) {
				return true
			}
		}
		return false
	})
}

// Find returns the first element, in All order, matching pred.
func (r *Repository) Find(pred Predicate) domain.Element {
	for _, e := range r.All() {
		if pred(e) {
			return e
		}
	}
	return nil
}

// FindAll returns every element matching pred, in All order.
func (r *Repository) FindAll(pred Predicate) []domain.Element {
	var out []domain.Element
	for _, e := range r.All() {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Search returns the elements whose name contains keyword, case-insensitively.
// An empty typeFilter matches every type.
func (r *Repository) Search(keyword, typeFilter string) []domain.Element {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	return r.FindAll(func(e domain.Element) bool {
		if typeFilter != "" && !r.reg.IsKindOf(e.TypeName(), typeFilter) {
			return false
		}
		name := domain.NameOf(e)
		return name != "" && strings.Contains(strings.ToLower(name), kw)
	})
}

// Select evaluates a selector expression over every live element.
func (r *Repository) Select(selector string) ([]domain.Element, error) {
	return query.Select(r, selector)
}

// GetRefsTo returns the live elements holding a slot that points at e,
// ordered by id. A nil pred matches every referrer.
func (r *Repository) GetRefsTo(e domain.Element, pred Predicate) []domain.Element {
	if e == nil {
		return nil
	}
	ids := make([]string, 0, len(r.refs[e.ID()]))
	for id := range r.refs[e.ID()] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []domain.Element
	for _, id := range ids {
		if ref := r.index[id]; ref != nil && (pred == nil || pred(ref)) {
			out = append(out, ref)
		}
	}
	return out
}

// GetRelationshipsOf returns the relationships attached to model: directed
// relationships naming it as source or target and associations with an end
// referencing it.
func (r *Repository) GetRelationshipsOf(model domain.Element, pred Predicate) []domain.Element {
	seen := make(map[string]bool)
	var out []domain.Element
	for _, ref := range r.GetRefsTo(model, nil) {
		rel := ref
		if r.reg.IsKindOf(ref.TypeName(), domain.TypeAssociationEnd) {
			rel = ref.Parent()
		}
		if rel == nil || seen[rel.ID()] || !r.reg.IsKindOf(rel.TypeName(), domain.TypeRelationship) {
			continue
		}
		if ref == rel && !r.relates(rel, model) {
			continue
		}
		seen[rel.ID()] = true
		if pred == nil || pred(rel) {
			out = append(out, rel)
		}
	}
	return out
}

func (r *Repository) relates(rel, model domain.Element) bool {
	d, ok := rel.(interface {
		DirectedBase() *domain.DirectedRelationship
	})
	if !ok {
		return false
	}
	base := d.DirectedBase()
	return string(base.Source) == model.ID() || string(base.Target) == model.ID()
}

// GetViewsOf returns the views presenting model.
func (r *Repository) GetViewsOf(model domain.Element) []domain.Element {
	return r.GetRefsTo(model, func(e domain.Element) bool {
		v, ok := e.(interface{ ViewBase() *domain.View })
		return ok && string(v.ViewBase().Model) == model.ID()
	})
}
