package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownType   = errors.New("unknown element type")
	ErrAbstractType  = errors.New("abstract element type")
	ErrDuplicateType = errors.New("element type already registered")
	ErrUnknownField  = errors.New("unknown field")
)

// TypeInfo registers one element type. Attrs lists only the fields the type
// declares itself; inherited fields come from Super.
type TypeInfo struct {
	Name     string
	Super    string
	Abstract bool
	New      func() Element
	Attrs    []Attr
}

// Registry maps type names to their metadata. It is populated once at startup
// and read-only afterwards.
type Registry struct {
	types map[string]*TypeInfo
	attrs map[string][]Attr
	names []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*TypeInfo),
		attrs: make(map[string][]Attr),
	}
}

// Register adds a type. Its super type must already be registered.
func (r *Registry) Register(info TypeInfo) error {
	if info.Name == "" {
		return fmt.Errorf("%w: empty type name", ErrUnknownType)
	}
	if _, ok := r.types[info.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, info.Name)
	}
	var inherited []Attr
	if info.Super != "" {
		if _, ok := r.types[info.Super]; !ok {
			return fmt.Errorf("%w: %s extends %s", ErrUnknownType, info.Name, info.Super)
		}
		inherited = r.attrs[info.Super]
	}
	if !info.Abstract && info.New == nil {
		return fmt.Errorf("concrete type %s has no constructor", info.Name)
	}

	all := make([]Attr, 0, len(inherited)+len(info.Attrs))
	all = append(all, inherited...)
	all = append(all, info.Attrs...)

	t := info
	r.types[info.Name] = &t
	r.attrs[info.Name] = all
	r.names = append(r.names, info.Name)
	return nil
}

// MustRegister is Register for static metamodel tables.
func (r *Registry) MustRegister(infos ...TypeInfo) {
	for _, info := range infos {
		if err := r.Register(info); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the registered metadata for a type.
func (r *Registry) Lookup(name string) (*TypeInfo, bool) {
	t, ok := r.types[name]
	return t, ok
}

// New instantiates a concrete type with no id assigned.
func (r *Registry) New(name string) (Element, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	if t.Abstract {
		return nil, fmt.Errorf("%w: %s", ErrAbstractType, name)
	}
	e := t.New()
	e.Base().typ = name
	for _, a := range r.attrs[name] {
		if a.Kind == KindPrimitive || a.Kind == KindEnum {
			_ = a.Set(e, a.Default)
		}
	}
	return e, nil
}

// Types returns every registered type name in registration order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.names...)
}

// Concrete returns the instantiable type names, sorted.
func (r *Registry) Concrete() []string {
	var out []string
	for _, n := range r.names {
		if !r.types[n].Abstract {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Attrs returns the full attribute table of a type, inherited fields first.
func (r *Registry) Attrs(typ string) []Attr {
	return r.attrs[typ]
}

// Attr returns one attribute of a type by name.
func (r *Registry) Attr(typ, name string) (Attr, bool) {
	for _, a := range r.attrs[typ] {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// MustAttr is Attr returning ErrUnknownField when the type lacks the field.
func (r *Registry) MustAttr(typ, name string) (Attr, error) {
	a, ok := r.Attr(typ, name)
	if !ok {
		return Attr{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, typ, name)
	}
	return a, nil
}

// IsKindOf reports whether typ is super or derives from it.
func (r *Registry) IsKindOf(typ, super string) bool {
	for t, ok := r.types[typ]; ok; t, ok = r.types[t.Super] {
		if t.Name == super {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors of a type.
func (r *Registry) Depth(typ string) int {
	d := -1
	for t, ok := r.types[typ]; ok; t, ok = r.types[t.Super] {
		d++
	}
	return d
}

// Children returns the elements owned by e in attribute order.
func (r *Registry) Children(e Element) []Element {
	var out []Element
	for _, a := range r.attrs[e.TypeName()] {
		switch a.Kind {
		case KindObj:
			if c, ok := a.Get(e).(Element); ok && c != nil {
				out = append(out, c)
			}
		case KindObjs:
			cs, _ := a.Get(e).([]Element)
			out = append(out, cs...)
		}
	}
	return out
}

// Traverse walks the owned subtree rooted at e in pre-order. Returning false
// from fn skips the element's children.
func (r *Registry) Traverse(e Element, fn func(Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range r.Children(e) {
		r.Traverse(c, fn)
	}
}

// Subtree returns e and everything it owns, pre-order.
func (r *Registry) Subtree(e Element) []Element {
	var out []Element
	r.Traverse(e, func(x Element) bool {
		out = append(out, x)
		return true
	})
	return out
}

// Referees lists every id e points at through ref, refs, obj, objs and
// variant slots, one entry per slot.
func (r *Registry) Referees(e Element) []string {
	var ids []string
	for _, a := range r.attrs[e.TypeName()] {
		ids = append(ids, a.SlotIDs(e)...)
	}
	return ids
}

// OwningField returns the attribute of parent that holds child.
func (r *Registry) OwningField(parent, child Element) (Attr, bool) {
	for _, a := range r.attrs[parent.TypeName()] {
		if !a.Kind.IsOwned() {
			continue
		}
		for _, id := range a.SlotIDs(parent) {
			if id == child.ID() {
				return a, true
			}
		}
	}
	return Attr{}, false
}

// ContainmentField picks the owned attribute of parentType best suited to hold
// a childType: the one whose declared element type is the most specific
// ancestor of childType.
func (r *Registry) ContainmentField(parentType, childType string) (Attr, bool) {
	best, depth := Attr{}, -1
	for _, a := range r.attrs[parentType] {
		if !a.Kind.IsOwned() || !r.IsKindOf(childType, a.Type) {
			continue
		}
		if d := r.Depth(a.Type); d > depth {
			best, depth = a, d
		}
	}
	return best, depth >= 0
}
