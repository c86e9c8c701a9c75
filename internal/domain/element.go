package domain

// Element is any node in the model graph: model elements, diagrams and views.
type Element interface {
	ID() string
	SetID(id string)
	Parent() Element
	SetParent(p Element)
	TypeName() string
	Base() *Core
}

// Core carries the identity shared by every element. Element types embed it.
type Core struct {
	id     string
	parent Element
	typ    string
}

func (c *Core) ID() string          { return c.id }
func (c *Core) SetID(id string)     { c.id = id }
func (c *Core) Parent() Element     { return c.parent }
func (c *Core) SetParent(p Element) { c.parent = p }
func (c *Core) TypeName() string    { return c.typ }
func (c *Core) Base() *Core         { return c }

// Ref is a non-owning reference to another element, held as its id.
// The zero value is the null reference.
type Ref string

// IsZero reports whether the reference points nowhere.
func (r Ref) IsZero() bool { return r == "" }

// String returns the referenced id.
func (r Ref) String() string { return string(r) }

// RefTo returns a reference to e, or the null reference if e is nil.
func RefTo(e Element) Ref {
	if e == nil {
		return ""
	}
	return Ref(e.ID())
}

// Named is implemented by elements carrying a display name.
type Named interface {
	GetName() string
	SetName(name string)
}

// NameOf returns the element's name, or an empty string for unnamed elements.
func NameOf(e Element) string {
	if n, ok := e.(Named); ok {
		return n.GetName()
	}
	return ""
}

// Ancestors returns the ownership chain of e, nearest first.
func Ancestors(e Element) []Element {
	var chain []Element
	for p := e.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p)
	}
	return chain
}

// IsDescendant reports whether e is owned, directly or transitively, by ancestor.
func IsDescendant(e, ancestor Element) bool {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if p.ID() == ancestor.ID() {
			return true
		}
	}
	return false
}
