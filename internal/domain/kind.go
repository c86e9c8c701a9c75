package domain

// Kind classifies how an attribute value is stored, traversed and serialized.
type Kind int

const (
	KindPrimitive Kind = iota
	KindEnum
	KindRef
	KindRefs
	KindObj
	KindObjs
	KindVariant
	KindCustom
)

// Primitive type names used in Attr.Type.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

var kindNames = map[Kind]string{
	KindPrimitive: "prim",
	KindEnum:      "enum",
	KindRef:       "ref",
	KindRefs:      "refs",
	KindObj:       "obj",
	KindObjs:      "objs",
	KindVariant:   "var",
	KindCustom:    "custom",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsMany reports whether the attribute holds an ordered array.
func (k Kind) IsMany() bool {
	return k == KindRefs || k == KindObjs
}

// IsOwned reports whether the attribute owns its value (embedded, cascade-deleted).
func (k Kind) IsOwned() bool {
	return k == KindObj || k == KindObjs
}

// IsReference reports whether the attribute holds a non-owning reference.
func (k Kind) IsReference() bool {
	return k == KindRef || k == KindRefs
}
