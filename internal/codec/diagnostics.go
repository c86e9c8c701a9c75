package codec

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Persisted keys.
const (
	KeyType   = "_type"
	KeyID     = "_id"
	KeyParent = "_parent"
	KeyRef    = "$ref"
)

// Diagnostic reports a structural or referential problem found while reading,
// writing or resolving. Diagnostics are collected and logged, never returned
// as errors: the offending field or object is skipped and the rest proceeds.
type Diagnostic struct {
	ElementID string
	Type      string
	Field     string
	Message   string
}

func (d Diagnostic) String() string {
	switch {
	case d.Field != "":
		return fmt.Sprintf("%s(%s).%s: %s", d.Type, d.ElementID, d.Field, d.Message)
	case d.ElementID != "" || d.Type != "":
		return fmt.Sprintf("%s(%s): %s", d.Type, d.ElementID, d.Message)
	default:
		return d.Message
	}
}

type diagnostics struct {
	log   *zap.SugaredLogger
	items []Diagnostic
}

func (d *diagnostics) report(id, typ, field, format string, args ...any) {
	diag := Diagnostic{ElementID: id, Type: typ, Field: field, Message: fmt.Sprintf(format, args...)}
	d.items = append(d.items, diag)
	if d.log != nil {
		d.log.Warnw("structural violation",
			"element", id,
			"type", typ,
			"field", field,
			"reason", diag.Message,
		)
	}
}

// RefToken builds the persisted form of a reference.
func RefToken(id string) map[string]any {
	return map[string]any{KeyRef: id}
}

// TokenID extracts the id from a persisted reference token.
func TokenID(raw any) (string, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := m[KeyRef].(string)
	return id, ok && id != ""
}

// IDs lists every element id embedded in a serialized subtree, pre-order. Only
// owned objects are walked; reference tokens are not followed.
func IDs(tree map[string]any) []string {
	var ids []string
	walkObjects(tree, func(obj map[string]any) {
		if id, ok := obj[KeyID].(string); ok && id != "" {
			ids = append(ids, id)
		}
	})
	return ids
}

func walkObjects(obj map[string]any, fn func(map[string]any)) {
	if obj == nil {
		return
	}
	fn(obj)
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		if key == KeyParent {
			continue
		}
		switch x := obj[key].(type) {
		case map[string]any:
			if _, ok := x[KeyType]; ok {
				walkObjects(x, fn)
			}
		case []any:
			for _, item := range x {
				if m, ok := item.(map[string]any); ok {
					if _, ok := m[KeyType]; ok {
						walkObjects(m, fn)
					}
				}
			}
		}
	}
}
