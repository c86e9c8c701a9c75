package domain

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrKindMismatch is returned when a value does not fit the attribute's declared kind.
	ErrKindMismatch = errors.New("value kind mismatch")
	// ErrIndexOutOfRange is returned by positional array access past the end.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotArray is returned when an array operation targets a single-valued attribute.
	ErrNotArray = errors.New("attribute is not an array")
)

// Attr describes one field of an element type: how it is stored, what it
// defaults to and how to reach it. Values cross the accessor boundary as:
//
//	primitive  string | float64 | bool
//	enum       int
//	ref        Ref
//	refs       []Ref
//	obj        Element (nil when absent)
//	objs       []Element
//	variant    nil | string | float64 | bool | Ref
//	custom     whatever the custom codec produces
type Attr struct {
	Name      string
	Kind      Kind
	Type      string
	Default   any
	Transient bool
	Literals  []string

	get    func(Element) any
	set    func(Element, any) error
	seq    *sequence
	encode func(any) (any, error)
	decode func(any) (any, error)
}

type sequence struct {
	length func(Element) int
	at     func(Element, int) any
	insert func(Element, int, any) error
	remove func(Element, int)
}

func bind[T any](e Element, attr string) (T, error) {
	t, ok := any(e).(T)
	if !ok {
		return t, fmt.Errorf("%w: %s has no field %q", ErrKindMismatch, e.TypeName(), attr)
	}
	return t, nil
}

func mismatch(attr string, v any) error {
	return fmt.Errorf("%w: %q cannot hold %T", ErrKindMismatch, attr, v)
}

// Check reports whether v fits a primitive or enum attribute's declared
// type. nil always fits and resets the field to its default. Other kinds are
// not checked here.
func (a Attr) Check(v any) error {
	if v == nil {
		return nil
	}
	switch a.Kind {
	case KindPrimitive:
		var ok bool
		switch a.Type {
		case TypeString:
			_, ok = v.(string)
		case TypeNumber:
			_, ok = toFloat(v)
		case TypeBoolean:
			_, ok = v.(bool)
		}
		if !ok {
			return fmt.Errorf("%w: %s field %q cannot hold %T", ErrKindMismatch, a.Type, a.Name, v)
		}
	case KindEnum:
		if s, ok := v.(string); ok {
			if !slices.Contains(a.Literals, s) {
				return fmt.Errorf("%w: %q is not a %s literal", ErrKindMismatch, s, a.Type)
			}
			return nil
		}
		f, ok := toFloat(v)
		if !ok || f != float64(int(f)) {
			return mismatch(a.Name, v)
		}
		if n := int(f); n < 0 || n >= len(a.Literals) {
			return fmt.Errorf("%w: %v is not a %s literal", ErrKindMismatch, v, a.Type)
		}
	}
	return nil
}

// StringField declares a string primitive.
func StringField[T any](name, def string, field func(T) *string) Attr {
	return Attr{
		Name: name, Kind: KindPrimitive, Type: TypeString, Default: def,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return *field(t)
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			switch s := v.(type) {
			case nil:
				*field(t) = def
			case string:
				*field(t) = s
			default:
				return mismatch(name, v)
			}
			return nil
		},
	}
}

// NumberField declares a numeric primitive.
func NumberField[T any](name string, def float64, field func(T) *float64) Attr {
	return Attr{
		Name: name, Kind: KindPrimitive, Type: TypeNumber, Default: def,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return *field(t)
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			if v == nil {
				*field(t) = def
				return nil
			}
			n, ok := toFloat(v)
			if !ok {
				return mismatch(name, v)
			}
			*field(t) = n
			return nil
		},
	}
}

// BoolField declares a boolean primitive.
func BoolField[T any](name string, def bool, field func(T) *bool) Attr {
	return Attr{
		Name: name, Kind: KindPrimitive, Type: TypeBoolean, Default: def,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return *field(t)
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			switch b := v.(type) {
			case nil:
				*field(t) = def
			case bool:
				*field(t) = b
			default:
				return mismatch(name, v)
			}
			return nil
		},
	}
}

// EnumField declares an enumeration stored as the literal's index.
func EnumField[T any](name, enum string, literals []string, def int, field func(T) *int) Attr {
	return Attr{
		Name: name, Kind: KindEnum, Type: enum, Default: def, Literals: literals,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return *field(t)
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			if v == nil {
				*field(t) = def
				return nil
			}
			var n int
			switch x := v.(type) {
			case string:
				n = slices.Index(literals, x)
			default:
				f, ok := toFloat(v)
				if !ok || f != float64(int(f)) {
					return mismatch(name, v)
				}
				n = int(f)
			}
			if n < 0 || n >= len(literals) {
				return fmt.Errorf("%w: %v is not a %s literal", ErrKindMismatch, v, enum)
			}
			*field(t) = n
			return nil
		},
	}
}

// RefField declares a single non-owning reference to an element of type typ.
func RefField[T any](name, typ string, field func(T) *Ref) Attr {
	return Attr{
		Name: name, Kind: KindRef, Type: typ, Default: Ref(""),
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return *field(t)
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			r, ok := toRef(v)
			if !ok {
				return mismatch(name, v)
			}
			*field(t) = r
			return nil
		},
	}
}

// RefsField declares an ordered array of non-owning references.
func RefsField[T any](name, typ string, field func(T) *[]Ref) Attr {
	return Attr{
		Name: name, Kind: KindRefs, Type: typ,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return slices.Clone(*field(t))
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			switch rs := v.(type) {
			case nil:
				*field(t) = nil
			case []Ref:
				*field(t) = slices.Clone(rs)
			default:
				return mismatch(name, v)
			}
			return nil
		},
		seq: &sequence{
			length: func(e Element) int {
				t, err := bind[T](e, name)
				if err != nil {
					return 0
				}
				return len(*field(t))
			},
			at: func(e Element, i int) any {
				t, _ := bind[T](e, name)
				return (*field(t))[i]
			},
			insert: func(e Element, i int, v any) error {
				t, err := bind[T](e, name)
				if err != nil {
					return err
				}
				r, ok := toRef(v)
				if !ok || r.IsZero() {
					return mismatch(name, v)
				}
				*field(t) = slices.Insert(*field(t), i, r)
				return nil
			},
			remove: func(e Element, i int) {
				t, _ := bind[T](e, name)
				*field(t) = slices.Delete(*field(t), i, i+1)
			},
		},
	}
}

// ObjField declares a single owned child. The child is embedded on save and
// deleted together with its owner.
func ObjField[T any, C interface {
	comparable
	Element
}](name, typ string, field func(T) *C) Attr {
	return Attr{
		Name: name, Kind: KindObj, Type: typ,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			var zero C
			if c := *field(t); c != zero {
				return Element(c)
			}
			return nil
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			var zero C
			if v == nil {
				*field(t) = zero
				return nil
			}
			c, ok := v.(C)
			if !ok {
				return mismatch(name, v)
			}
			*field(t) = c
			return nil
		},
	}
}

// ObjsField declares an ordered array of owned children.
func ObjsField[T any, C interface {
	comparable
	Element
}](name, typ string, field func(T) *[]C) Attr {
	return Attr{
		Name: name, Kind: KindObjs, Type: typ,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			items := *field(t)
			out := make([]Element, len(items))
			for i, c := range items {
				out[i] = c
			}
			return out
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			switch items := v.(type) {
			case nil:
				*field(t) = nil
			case []Element:
				out := make([]C, 0, len(items))
				for _, item := range items {
					c, ok := item.(C)
					if !ok {
						return mismatch(name, item)
					}
					out = append(out, c)
				}
				*field(t) = out
			case []C:
				*field(t) = slices.Clone(items)
			default:
				return mismatch(name, v)
			}
			return nil
		},
		seq: &sequence{
			length: func(e Element) int {
				t, err := bind[T](e, name)
				if err != nil {
					return 0
				}
				return len(*field(t))
			},
			at: func(e Element, i int) any {
				t, _ := bind[T](e, name)
				return Element((*field(t))[i])
			},
			insert: func(e Element, i int, v any) error {
				t, err := bind[T](e, name)
				if err != nil {
					return err
				}
				c, ok := v.(C)
				if !ok {
					return mismatch(name, v)
				}
				*field(t) = slices.Insert(*field(t), i, c)
				return nil
			},
			remove: func(e Element, i int) {
				t, _ := bind[T](e, name)
				*field(t) = slices.Delete(*field(t), i, i+1)
			},
		},
	}
}

// VariantField declares a field holding either a primitive or a reference.
func VariantField[T any](name, typ string, field func(T) *any) Attr {
	return Attr{
		Name: name, Kind: KindVariant, Type: typ,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return *field(t)
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			switch x := v.(type) {
			case nil, string, bool, Ref:
				*field(t) = x
			case Element:
				*field(t) = RefTo(x)
			default:
				n, ok := toFloat(v)
				if !ok {
					return mismatch(name, v)
				}
				*field(t) = n
			}
			return nil
		},
	}
}

// CustomField declares a field whose persisted form is produced by its own
// encode/decode pair rather than by the generic codec.
func CustomField[T any, V any](name, typ string, def V, field func(T) *V,
	encode func(V) (any, error), decode func(any) (V, error)) Attr {
	return Attr{
		Name: name, Kind: KindCustom, Type: typ, Default: def,
		get: func(e Element) any {
			t, err := bind[T](e, name)
			if err != nil {
				return nil
			}
			return *field(t)
		},
		set: func(e Element, v any) error {
			t, err := bind[T](e, name)
			if err != nil {
				return err
			}
			if v == nil {
				*field(t) = def
				return nil
			}
			x, ok := v.(V)
			if !ok {
				return mismatch(name, v)
			}
			*field(t) = x
			return nil
		},
		encode: func(v any) (any, error) {
			x, ok := v.(V)
			if !ok {
				return nil, mismatch(name, v)
			}
			return encode(x)
		},
		decode: func(raw any) (any, error) {
			return decode(raw)
		},
	}
}

// Get returns the attribute's current value on e.
func (a Attr) Get(e Element) any {
	return a.get(e)
}

// Set replaces the attribute's value on e. A nil value resets it to its default.
func (a Attr) Set(e Element, v any) error {
	return a.set(e, v)
}

// Encode converts a custom value to its persisted form.
func (a Attr) Encode(v any) (any, error) {
	if a.encode == nil {
		return v, nil
	}
	return a.encode(v)
}

// Decode converts a persisted custom value back to its in-memory form.
func (a Attr) Decode(raw any) (any, error) {
	if a.decode == nil {
		return raw, nil
	}
	return a.decode(raw)
}

// Len returns the number of slots in an array attribute.
func (a Attr) Len(e Element) int {
	if a.seq == nil {
		return 0
	}
	return a.seq.length(e)
}

// At returns the value at position i of an array attribute.
func (a Attr) At(e Element, i int) (any, error) {
	if a.seq == nil {
		return nil, ErrNotArray
	}
	if i < 0 || i >= a.seq.length(e) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, a.Name, i)
	}
	return a.seq.at(e, i), nil
}

// InsertAt places v at position i of an array attribute. Positions past the
// end, and negative positions, append.
func (a Attr) InsertAt(e Element, v any, i int) error {
	if a.seq == nil {
		return ErrNotArray
	}
	if n := a.seq.length(e); i < 0 || i > n {
		i = n
	}
	return a.seq.insert(e, i, v)
}

// RemoveAt deletes position i of an array attribute.
func (a Attr) RemoveAt(e Element, i int) error {
	if a.seq == nil {
		return ErrNotArray
	}
	if i < 0 || i >= a.seq.length(e) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, a.Name, i)
	}
	a.seq.remove(e, i)
	return nil
}

// Move relocates the slot at from to position to within the same array.
func (a Attr) Move(e Element, from, to int) error {
	v, err := a.At(e, from)
	if err != nil {
		return err
	}
	a.seq.remove(e, from)
	return a.InsertAt(e, v, to)
}

// IndexOf returns the first position whose slot points at id, or -1.
func (a Attr) IndexOf(e Element, id string) int {
	return slices.Index(a.SlotIDs(e), id)
}

// SlotIDs lists the ids referenced or owned by this attribute on e, one per slot.
func (a Attr) SlotIDs(e Element) []string {
	return a.ValueIDs(a.Get(e))
}

// ValueIDs lists the element ids carried by v, interpreted as a value of this attribute.
func (a Attr) ValueIDs(v any) []string {
	switch a.Kind {
	case KindRef, KindVariant:
		if r, ok := v.(Ref); ok && !r.IsZero() {
			return []string{string(r)}
		}
	case KindRefs:
		rs, _ := v.([]Ref)
		ids := make([]string, 0, len(rs))
		for _, r := range rs {
			ids = append(ids, string(r))
		}
		return ids
	case KindObj:
		if c, ok := v.(Element); ok && c != nil {
			return []string{c.ID()}
		}
	case KindObjs:
		cs, _ := v.([]Element)
		ids := make([]string, 0, len(cs))
		for _, c := range cs {
			ids = append(ids, c.ID())
		}
		return ids
	}
	return nil
}

// IsDefault reports whether v equals the declared default or is empty.
func (a Attr) IsDefault(v any) bool {
	switch a.Kind {
	case KindRef:
		r, _ := v.(Ref)
		return r.IsZero()
	case KindRefs:
		rs, _ := v.([]Ref)
		return len(rs) == 0
	case KindObj, KindVariant:
		return v == nil
	case KindObjs:
		cs, _ := v.([]Element)
		return len(cs) == 0
	case KindCustom:
		enc, err := a.Encode(v)
		if err != nil {
			return false
		}
		def, _ := a.Encode(a.Default)
		return enc == nil || enc == "" || enc == def
	}
	return v == a.Default
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func toRef(v any) (Ref, bool) {
	switch r := v.(type) {
	case nil:
		return "", true
	case Ref:
		return r, true
	case string:
		return Ref(r), true
	case Element:
		return RefTo(r), true
	}
	return "", false
}
