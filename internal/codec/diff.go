package codec

import (
	"reflect"
	"sort"

	"modelrepo/internal/domain"
)

// Diff represents field-level changes between two versions of an element.
type Diff struct {
	Added    map[string]any           // Fields set only in the newer version
	Modified map[string]ModifiedField // Fields whose value changed
	Removed  []string                 // Fields set only in the older version
}

// ModifiedField represents a field that changed between two versions.
type ModifiedField struct {
	Old any
	New any
}

// IsEmpty returns true if the Diff contains no changes.
// Returns true if the receiver is nil (nil Diff is considered empty).
func (d *Diff) IsEmpty() bool {
	if d == nil {
		return true
	}
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// DocumentDiff lists element-level changes between two serialized documents.
type DocumentDiff struct {
	Added    []string         // Element ids present only in the newer document
	Removed  []string         // Element ids present only in the older document
	Modified map[string]*Diff // Per-element field changes, keyed by id
}

// IsEmpty returns true when both documents hold the same elements and values.
func (d *DocumentDiff) IsEmpty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0)
}

// DiffElements compares two elements field by field through their attribute
// tables. Owned children compare by identity; their content is a separate
// element. Returns nil if the elements are identical.
func DiffElements(reg *domain.Registry, older, newer domain.Element) *Diff {
	return computeDiff(flatten(reg, older), flatten(reg, newer))
}

// DiffDocuments compares two serialized documents element by element.
func DiffDocuments(older, newer map[string]any) *DocumentDiff {
	left, right := index(older), index(newer)
	out := &DocumentDiff{Modified: make(map[string]*Diff)}
	for id, doc := range right {
		old, ok := left[id]
		if !ok {
			out.Added = append(out.Added, id)
			continue
		}
		if d := computeDiff(old, doc); d != nil {
			out.Modified[id] = d
		}
	}
	for id := range left {
		if _, ok := right[id]; !ok {
			out.Removed = append(out.Removed, id)
		}
	}
	sort.Strings(out.Added)
	sort.Strings(out.Removed)
	return out
}

func flatten(reg *domain.Registry, e domain.Element) map[string]any {
	doc := map[string]any{KeyType: e.TypeName()}
	for _, a := range reg.Attrs(e.TypeName()) {
		if a.Transient {
			continue
		}
		v := a.Get(e)
		if a.IsDefault(v) {
			continue
		}
		enc, err := EncodeValue(a, v)
		if err != nil {
			continue
		}
		doc[a.Name] = enc
	}
	return doc
}

// index flattens a serialized tree into id -> fields, replacing each embedded
// object by a reference token so nested changes are attributed to the child.
func index(tree map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any)
	walkObjects(tree, func(obj map[string]any) {
		id, _ := obj[KeyID].(string)
		if id == "" {
			return
		}
		doc := make(map[string]any, len(obj))
		for k, v := range obj {
			if k == KeyID || k == KeyParent {
				continue
			}
			doc[k] = shallow(v)
		}
		out[id] = doc
	})
	return out
}

func shallow(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if _, ok := x[KeyType]; ok {
			id, _ := x[KeyID].(string)
			return RefToken(id)
		}
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = shallow(item)
		}
		return out
	}
	return v
}

// computeDiff computes field-level differences between two flattened elements.
// Returns nil if they are identical.
func computeDiff(oldDoc, newDoc map[string]any) *Diff {
	diff := &Diff{
		Added:    make(map[string]any),
		Modified: make(map[string]ModifiedField),
		Removed:  []string{},
	}

	for key, newVal := range newDoc {
		if oldVal, exists := oldDoc[key]; !exists {
			diff.Added[key] = newVal
		} else if !reflect.DeepEqual(oldVal, newVal) {
			diff.Modified[key] = ModifiedField{Old: oldVal, New: newVal}
		}
	}

	for key := range oldDoc {
		if _, exists := newDoc[key]; !exists {
			diff.Removed = append(diff.Removed, key)
		}
	}
	sort.Strings(diff.Removed)

	if diff.IsEmpty() {
		return nil
	}

	return diff
}
