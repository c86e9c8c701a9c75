package codec

import "modelrepo/internal/domain"

// Lookup finds a live element by id.
type Lookup func(id string) domain.Element

// Resolve applies every pending reference collected by the reader. Ids are
// looked up among the elements of this read first, then through global.
// Dangling references are cleared and reported.
func (r *Reader) Resolve(global Lookup) []Diagnostic {
	start := len(r.diags.items)
	find := func(id string) domain.Element {
		if e := r.idMap[id]; e != nil {
			return e
		}
		if global != nil {
			return global(id)
		}
		return nil
	}

	for _, p := range r.pending {
		if p.Parent {
			if parent := find(p.IDs[0]); parent != nil {
				p.Owner.SetParent(parent)
			} else {
				r.diags.report(p.Owner.ID(), p.Owner.TypeName(), KeyParent, "dangling parent %s", p.IDs[0])
			}
			continue
		}

		switch p.Attr.Kind {
		case domain.KindRefs:
			refs := make([]domain.Ref, 0, len(p.IDs))
			for _, id := range p.IDs {
				if find(id) == nil {
					r.diags.report(p.Owner.ID(), p.Owner.TypeName(), p.Attr.Name, "dangling reference %s dropped", id)
					continue
				}
				refs = append(refs, domain.Ref(id))
			}
			r.assign(p, refs)
		default:
			id := p.IDs[0]
			if find(id) == nil {
				r.diags.report(p.Owner.ID(), p.Owner.TypeName(), p.Attr.Name, "dangling reference %s cleared", id)
				continue
			}
			r.assign(p, domain.Ref(id))
		}
	}
	r.pending = nil
	return r.diags.items[start:]
}

func (r *Reader) assign(p Pending, v any) {
	if err := p.Attr.Set(p.Owner, v); err != nil {
		r.diags.report(p.Owner.ID(), p.Owner.TypeName(), p.Attr.Name, "%v", err)
	}
}

// Deserialize reads a self-contained tree and resolves it against itself.
func Deserialize(r *Reader, tree map[string]any) (domain.Element, []Diagnostic) {
	root := r.ReadElement(tree)
	r.Resolve(nil)
	return root, r.Diagnostics()
}
