package oplog

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"
)

// Kind is the wire code of one mutation record.
type Kind string

const (
	KindInsert        Kind = "I"
	KindRemove        Kind = "R"
	KindFieldAssign   Kind = "a"
	KindFieldInsert   Kind = "i"
	KindFieldRemove   Kind = "r"
	KindFieldReorder  Kind = "o"
	KindFieldRelocate Kind = "l"
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindRemove:
		return "remove"
	case KindFieldAssign:
		return "fieldAssign"
	case KindFieldInsert:
		return "fieldInsert"
	case KindFieldRemove:
		return "fieldRemove"
	case KindFieldReorder:
		return "fieldReorder"
	case KindFieldRelocate:
		return "fieldRelocate"
	}
	return string(k)
}

// Op is one atomic mutation record. Every record carries enough state to be
// inverted without recomputation.
type Op struct {
	Kind Kind

	// Elem is the serialized subtree of an INSERT or REMOVE.
	Elem map[string]any
	// Inbound holds, for a REMOVE, the reference-index entries pointing into
	// the removed subtree from outside it, captured when the record is
	// applied so a revert can restore them.
	Inbound map[string]map[string]int

	// ID is the owner element of a field record, or the moved element of a
	// FIELD_RELOCATE.
	ID    string
	Field string

	// Old and New are the encoded values of a FIELD_ASSIGN.
	Old any
	New any

	// Value is the id placed, removed or moved by an array record.
	Value string
	// Index is the position of a FIELD_INSERT or FIELD_REMOVE, the new
	// position of a FIELD_REORDER, and the position in the old owner of a
	// FIELD_RELOCATE (-1 for single-valued fields).
	Index int
	// OldIndex is the original position of a FIELD_REORDER.
	OldIndex int

	OldParent string
	NewParent string
}

// Operation is an atomic, named, ordered list of mutation records, undoable
// as a unit.
type Operation struct {
	ID     string `json:"id"`
	Time   int64  `json:"time"`
	Name   string `json:"name"`
	Bypass bool   `json:"bypass"`
	Ops    []Op   `json:"ops"`
}

// New returns an empty operation stamped with a fresh id and the current time.
func New(name string, bypass bool) *Operation {
	return &Operation{
		ID:     uuid.NewString(),
		Time:   time.Now().UnixMilli(),
		Name:   name,
		Bypass: bypass,
	}
}

// IsEmpty reports whether the operation has nothing to apply.
func (o *Operation) IsEmpty() bool {
	return o == nil || len(o.Ops) == 0
}

// Timestamp returns Time as a time.Time.
func (o *Operation) Timestamp() time.Time {
	return time.UnixMilli(o.Time)
}

// Clone returns a deep copy, including recorded subtrees.
func (o *Operation) Clone() (*Operation, error) {
	var dst Operation
	if err := deepcopy.Copy(&dst, o); err != nil {
		return nil, fmt.Errorf("failed to copy operation: %w", err)
	}
	return &dst, nil
}

type wireOp struct {
	Op  Kind            `json:"op"`
	Arg json.RawMessage `json:"arg"`
}

type assignArg struct {
	ID    string `json:"_id"`
	Field string `json:"f"`
	Old   any    `json:"o"`
	New   any    `json:"n"`
}

type arrayArg struct {
	ID    string         `json:"_id"`
	Field string         `json:"f"`
	Elem  map[string]any `json:"e"`
	Index int            `json:"i"`
}

type reorderArg struct {
	ID       string         `json:"_id"`
	Field    string         `json:"f"`
	Elem     map[string]any `json:"e"`
	Index    int            `json:"i"`
	OldIndex int            `json:"o"`
}

type relocateArg struct {
	ID        string         `json:"_id"`
	Field     string         `json:"f"`
	OldParent map[string]any `json:"op"`
	NewParent map[string]any `json:"np"`
	Index     int            `json:"i"`
}

func token(id string) map[string]any {
	return map[string]any{"$ref": id}
}

func tokenID(m map[string]any) string {
	id, _ := m["$ref"].(string)
	return id
}

// MarshalJSON encodes the record as {"op": code, "arg": {...}}.
func (op Op) MarshalJSON() ([]byte, error) {
	var arg any
	switch op.Kind {
	case KindInsert, KindRemove:
		arg = op.Elem
	case KindFieldAssign:
		arg = assignArg{ID: op.ID, Field: op.Field, Old: op.Old, New: op.New}
	case KindFieldInsert, KindFieldRemove:
		arg = arrayArg{ID: op.ID, Field: op.Field, Elem: token(op.Value), Index: op.Index}
	case KindFieldReorder:
		arg = reorderArg{ID: op.ID, Field: op.Field, Elem: token(op.Value), Index: op.Index, OldIndex: op.OldIndex}
	case KindFieldRelocate:
		arg = relocateArg{ID: op.ID, Field: op.Field, OldParent: token(op.OldParent), NewParent: token(op.NewParent), Index: op.Index}
	default:
		return nil, fmt.Errorf("unknown op kind %q", op.Kind)
	}
	raw, err := json.Marshal(arg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireOp{Op: op.Kind, Arg: raw})
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (op *Op) UnmarshalJSON(data []byte) error {
	var w wireOp
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*op = Op{Kind: w.Op}
	switch w.Op {
	case KindInsert, KindRemove:
		return json.Unmarshal(w.Arg, &op.Elem)
	case KindFieldAssign:
		var a assignArg
		if err := json.Unmarshal(w.Arg, &a); err != nil {
			return err
		}
		op.ID, op.Field, op.Old, op.New = a.ID, a.Field, a.Old, a.New
	case KindFieldInsert, KindFieldRemove:
		var a arrayArg
		if err := json.Unmarshal(w.Arg, &a); err != nil {
			return err
		}
		op.ID, op.Field, op.Value, op.Index = a.ID, a.Field, tokenID(a.Elem), a.Index
	case KindFieldReorder:
		var a reorderArg
		if err := json.Unmarshal(w.Arg, &a); err != nil {
			return err
		}
		op.ID, op.Field, op.Value, op.Index, op.OldIndex = a.ID, a.Field, tokenID(a.Elem), a.Index, a.OldIndex
	case KindFieldRelocate:
		var a relocateArg
		if err := json.Unmarshal(w.Arg, &a); err != nil {
			return err
		}
		op.ID, op.Field, op.Index = a.ID, a.Field, a.Index
		op.OldParent, op.NewParent = tokenID(a.OldParent), tokenID(a.NewParent)
	default:
		return fmt.Errorf("unknown op kind %q", w.Op)
	}
	return nil
}

// Marshal encodes an operation in its wire format.
func Marshal(o *Operation) ([]byte, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to encode operation: %w", err)
	}
	return data, nil
}

// Unmarshal decodes an operation from its wire format.
func Unmarshal(data []byte) (*Operation, error) {
	var o Operation
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to decode operation: %w", err)
	}
	return &o, nil
}
