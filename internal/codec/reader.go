package codec

import (
	"go.uber.org/zap"

	"modelrepo/internal/domain"
)

// Pending is an unresolved reference collected while reading. References are
// resolved after every embedded object of the read is known, so forward
// references to siblings not yet constructed work.
type Pending struct {
	Owner domain.Element
	Attr  domain.Attr
	IDs   []string
	// Parent marks the root's _parent token; it sets the owner pointer and is
	// not a field slot.
	Parent bool
}

// Reader turns a serialized tree back into elements. Every object it
// constructs is registered in an id map scoped to this read.
type Reader struct {
	reg     *domain.Registry
	diags   diagnostics
	idMap   map[string]domain.Element
	order   []domain.Element
	pending []Pending
	cur     map[string]any
	elem    domain.Element
}

// NewReader returns a reader driven by the attribute tables in reg.
func NewReader(reg *domain.Registry, log *zap.SugaredLogger) *Reader {
	return &Reader{
		reg:   reg,
		diags: diagnostics{log: log},
		idMap: make(map[string]domain.Element),
	}
}

// Diagnostics returns the structural problems found so far.
func (r *Reader) Diagnostics() []Diagnostic {
	return r.diags.items
}

// Elements returns every element constructed by this reader, pre-order.
func (r *Reader) Elements() []domain.Element {
	return r.order
}

// Lookup finds an element constructed by this reader.
func (r *Reader) Lookup(id string) domain.Element {
	return r.idMap[id]
}

// Pending returns the references still awaiting resolution.
func (r *Reader) Pending() []Pending {
	return r.pending
}

// ReadElement constructs the element serialized in tree and everything it
// embeds. A _parent token on the root is collected as a pending reference.
// It returns nil when the root itself cannot be constructed.
func (r *Reader) ReadElement(tree map[string]any) domain.Element {
	e := r.construct(tree, nil, "")
	if e == nil {
		return nil
	}
	if id, ok := TokenID(tree[KeyParent]); ok {
		r.pending = append(r.pending, Pending{Owner: e, IDs: []string{id}, Parent: true})
	}
	return e
}

func (r *Reader) construct(obj map[string]any, parent domain.Element, wantType string) domain.Element {
	typ, _ := obj[KeyType].(string)
	id, _ := obj[KeyID].(string)
	if typ == "" {
		r.diags.report(id, "", "", "object has no %s", KeyType)
		return nil
	}
	if wantType != "" && !r.reg.IsKindOf(typ, wantType) {
		r.diags.report(id, typ, "", "%s is not a %s", typ, wantType)
		return nil
	}
	e, err := r.reg.New(typ)
	if err != nil {
		r.diags.report(id, typ, "", "skipped: %v", err)
		return nil
	}
	if id == "" {
		id = domain.NewID()
		r.diags.report(id, typ, "", "object has no %s, assigned a new one", KeyID)
	}
	if _, dup := r.idMap[id]; dup {
		r.diags.report(id, typ, "", "duplicate id, object skipped")
		return nil
	}
	e.SetID(id)
	e.SetParent(parent)
	r.idMap[id] = e
	r.order = append(r.order, e)
	r.load(e, obj)
	return e
}

func (r *Reader) load(e domain.Element, obj map[string]any) {
	prevCur, prevElem := r.cur, r.elem
	r.cur, r.elem = obj, e
	defer func() { r.cur, r.elem = prevCur, prevElem }()

	for _, a := range r.reg.Attrs(e.TypeName()) {
		if a.Transient {
			continue
		}
		if _, present := obj[a.Name]; !present {
			continue
		}
		switch a.Kind {
		case domain.KindPrimitive, domain.KindEnum:
			if v, ok := r.Read(a.Name); ok {
				r.set(a, v)
			}
		case domain.KindObj:
			if c := r.ReadObj(a); c != nil {
				r.set(a, c)
			}
		case domain.KindObjs:
			for _, c := range r.ReadObjArray(a) {
				if err := a.InsertAt(e, c, -1); err != nil {
					r.report(a.Name, "%v", err)
				}
			}
		case domain.KindRef:
			if id, ok := r.ReadRef(a.Name); ok {
				r.pending = append(r.pending, Pending{Owner: e, Attr: a, IDs: []string{id}})
			}
		case domain.KindRefs:
			if ids := r.ReadRefArray(a.Name); len(ids) > 0 {
				r.pending = append(r.pending, Pending{Owner: e, Attr: a, IDs: ids})
			}
		case domain.KindVariant:
			v, id := r.ReadVariant(a.Name)
			if id != "" {
				r.pending = append(r.pending, Pending{Owner: e, Attr: a, IDs: []string{id}})
			} else if v != nil {
				r.set(a, v)
			}
		case domain.KindCustom:
			if v, ok := r.ReadCustom(a); ok {
				r.set(a, v)
			}
		}
	}
}

func (r *Reader) set(a domain.Attr, v any) {
	if err := a.Set(r.elem, v); err != nil {
		r.report(a.Name, "%v", err)
	}
}

func (r *Reader) report(field, format string, args ...any) {
	r.diags.report(r.elem.ID(), r.elem.TypeName(), field, format, args...)
}

// Read returns a primitive value.
func (r *Reader) Read(name string) (any, bool) {
	switch v := r.cur[name].(type) {
	case string, bool, float64:
		return v, true
	case nil:
		return nil, false
	default:
		r.report(name, "expected primitive, got %T", v)
		return nil, false
	}
}

// ReadObj constructs an embedded child.
func (r *Reader) ReadObj(a domain.Attr) domain.Element {
	switch m := r.cur[a.Name].(type) {
	case nil:
		return nil
	case map[string]any:
		return r.construct(m, r.elem, a.Type)
	default:
		r.report(a.Name, "expected embedded object, got %T", m)
		return nil
	}
}

// ReadObjArray constructs an array of embedded children, skipping the ones
// that cannot be constructed.
func (r *Reader) ReadObjArray(a domain.Attr) []domain.Element {
	items, ok := r.cur[a.Name].([]any)
	if !ok {
		if r.cur[a.Name] != nil {
			r.report(a.Name, "expected array, got %T", r.cur[a.Name])
		}
		return nil
	}
	out := make([]domain.Element, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			r.report(a.Name, "expected embedded object, got %T", item)
			continue
		}
		if c := r.construct(m, r.elem, a.Type); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ReadRef returns the unresolved id of a reference token.
func (r *Reader) ReadRef(name string) (string, bool) {
	raw := r.cur[name]
	if raw == nil {
		return "", false
	}
	id, ok := TokenID(raw)
	if !ok {
		r.report(name, "expected reference token, got %T", raw)
	}
	return id, ok
}

// ReadRefArray returns the unresolved ids of an array of reference tokens.
func (r *Reader) ReadRefArray(name string) []string {
	items, ok := r.cur[name].([]any)
	if !ok {
		if r.cur[name] != nil {
			r.report(name, "expected array, got %T", r.cur[name])
		}
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		id, ok := TokenID(item)
		if !ok {
			r.report(name, "expected reference token, got %T", item)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ReadVariant returns either a primitive value or the id of a reference token.
func (r *Reader) ReadVariant(name string) (any, string) {
	raw := r.cur[name]
	if _, ok := raw.(map[string]any); ok {
		id, _ := r.ReadRef(name)
		return nil, id
	}
	v, _ := r.Read(name)
	return v, ""
}

// ReadCustom delegates to the attribute's own decoder.
func (r *Reader) ReadCustom(a domain.Attr) (any, bool) {
	v, err := a.Decode(r.cur[a.Name])
	if err != nil {
		r.report(a.Name, "%v", err)
		return nil, false
	}
	return v, true
}
