package codec

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"modelrepo/internal/domain"
)

// Clone deep-copies a serialized subtree and gives every embedded element a
// fresh id. Reference tokens pointing inside the subtree are rewritten to the
// new ids; tokens pointing outside are kept. The root's _parent token is
// dropped so the copy can be placed anywhere. The returned map is old id to
// new id.
func Clone(tree map[string]any) (map[string]any, map[string]string, error) {
	var dst map[string]any
	if err := deepcopy.Copy(&dst, tree); err != nil {
		return nil, nil, fmt.Errorf("failed to copy subtree: %w", err)
	}
	delete(dst, KeyParent)

	remap := make(map[string]string)
	for _, id := range IDs(dst) {
		remap[id] = domain.NewID()
	}
	rewrite(dst, remap)
	return dst, remap, nil
}

// ReplaceIDs rewrites ids and reference tokens in place according to remap.
func ReplaceIDs(tree map[string]any, remap map[string]string) {
	rewrite(tree, remap)
}

func rewrite(v any, remap map[string]string) {
	switch x := v.(type) {
	case map[string]any:
		if id, ok := x[KeyID].(string); ok {
			if next, ok := remap[id]; ok {
				x[KeyID] = next
			}
		}
		if id, ok := x[KeyRef].(string); ok {
			if next, ok := remap[id]; ok {
				x[KeyRef] = next
			}
			return
		}
		for k, child := range x {
			if k == KeyID {
				continue
			}
			rewrite(child, remap)
		}
	case []any:
		for _, item := range x {
			rewrite(item, remap)
		}
	}
}
