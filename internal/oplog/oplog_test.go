package oplog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/domain"
)

func newElem[T domain.Element](t *testing.T, reg *domain.Registry, typ, id string) T {
	t.Helper()
	e, err := reg.New(typ)
	require.NoError(t, err)
	e.SetID(id)
	return e.(T)
}

func modelWith(t *testing.T, reg *domain.Registry, ids ...string) (*domain.Model, []domain.Element) {
	t.Helper()
	m := newElem[*domain.Model](t, reg, domain.TypeModel, "m")
	var out []domain.Element
	for _, id := range ids {
		c := newElem[*domain.Class](t, reg, domain.TypeClass, id)
		c.SetParent(m)
		m.OwnedElements = append(m.OwnedElements, c)
		out = append(out, c)
	}
	return m, out
}

func TestBuilderRequiresBegin(t *testing.T) {
	reg := domain.NewMetamodel()
	b := NewBuilder(reg, nil)
	m, _ := modelWith(t, reg)

	assert.ErrorIs(t, b.Insert(m), ErrNoOperation)
	assert.ErrorIs(t, b.FieldAssign(m, "name", "x"), ErrNoOperation)
	assert.Nil(t, b.End())
}

func TestBuilderMissingArguments(t *testing.T) {
	reg := domain.NewMetamodel()
	b := NewBuilder(reg, nil)
	m, _ := modelWith(t, reg)
	require.NoError(t, b.Begin("test", false))

	assert.ErrorIs(t, b.Insert(nil), ErrMissingArgument)
	assert.ErrorIs(t, b.FieldInsert(m, "ownedElements", nil), ErrMissingArgument)
	assert.ErrorIs(t, b.FieldAssign(m, "", "x"), ErrMissingArgument)
	assert.ErrorIs(t, b.FieldAssign(m, "bogus", "x"), domain.ErrUnknownField)
	assert.ErrorIs(t, b.FieldInsert(m, "name", m), domain.ErrNotArray)
	assert.ErrorIs(t, b.FieldAssign(m, "ownedElements", nil), domain.ErrKindMismatch)
	assert.ErrorIs(t, b.FieldAssign(m, "name", 3.0), domain.ErrKindMismatch)
	c := newElem[*domain.Class](t, reg, domain.TypeClass, "c")
	assert.ErrorIs(t, b.FieldAssign(c, "isAbstract", "yes"), domain.ErrKindMismatch)
	assert.ErrorIs(t, b.FieldAssign(c, "visibility", 7), domain.ErrKindMismatch)
	require.NoError(t, b.FieldAssign(c, "visibility", "private"))
	require.NoError(t, b.FieldAssign(c, "isAbstract", true))
	assert.ErrorIs(t, b.Begin("again", false), ErrInProgress)

	assert.Len(t, b.End().Ops, 2)
}

func TestBuilderShadowIndices(t *testing.T) {
	reg := domain.NewMetamodel()
	b := NewBuilder(reg, nil)
	m, kids := modelWith(t, reg, "a", "b", "c")
	x := newElem[*domain.Class](t, reg, domain.TypeClass, "x")
	y := newElem[*domain.Class](t, reg, domain.TypeClass, "y")

	require.NoError(t, b.Begin("shuffle", false))
	require.NoError(t, b.FieldRemove(m, "ownedElements", kids[0]))
	require.NoError(t, b.FieldRemove(m, "ownedElements", kids[1]))
	require.NoError(t, b.FieldInsert(m, "ownedElements", x))
	require.NoError(t, b.FieldInsertAt(m, "ownedElements", y, 0))
	require.NoError(t, b.FieldReorder(m, "ownedElements", kids[2], 5))
	op := b.End()

	require.Len(t, op.Ops, 5)
	assert.Equal(t, 0, op.Ops[0].Index, "a removed from [a b c]")
	assert.Equal(t, 0, op.Ops[1].Index, "b removed from [b c], not its original slot")
	assert.Equal(t, 1, op.Ops[2].Index, "x appended to [c]")
	assert.Equal(t, 0, op.Ops[3].Index)
	assert.Equal(t, 1, op.Ops[4].OldIndex, "c sits in [y c x]")
	assert.Equal(t, 2, op.Ops[4].Index)

	assert.Len(t, m.OwnedElements, 3, "builder never mutates")

	require.NoError(t, b.Begin("again", false))
	require.NoError(t, b.FieldRemove(m, "ownedElements", kids[1]))
	assert.Equal(t, 1, b.End().Ops[0].Index, "shadows cleared by End")
}

func TestBuilderRemoveAtFallsBack(t *testing.T) {
	reg := domain.NewMetamodel()
	b := NewBuilder(reg, nil)
	m, kids := modelWith(t, reg, "a", "b")
	stranger := newElem[*domain.Class](t, reg, domain.TypeClass, "z")

	require.NoError(t, b.Begin("remove", false))
	require.NoError(t, b.FieldRemoveAt(m, "ownedElements", kids[1], 0))
	assert.ErrorIs(t, b.FieldRemove(m, "ownedElements", stranger), ErrNotMember)
	op := b.End()

	assert.Equal(t, 1, op.Ops[0].Index)
}

func TestBuilderRecords(t *testing.T) {
	reg := domain.NewMetamodel()
	b := NewBuilder(reg, nil)
	m, kids := modelWith(t, reg, "a")
	m.Name = "Before"
	pkg := newElem[*domain.Package](t, reg, domain.TypePackage, "pkg")
	dep := newElem[*domain.Dependency](t, reg, domain.TypeDependency, "dep")

	var seen []Kind
	b.OnOp(func(op Op) { seen = append(seen, op.Kind) })

	require.NoError(t, b.Begin("edit", false))
	dep.SetParent(m)
	require.NoError(t, b.Insert(dep))
	require.NoError(t, b.FieldAssign(m, "name", "After"))
	require.NoError(t, b.FieldAssign(dep, "target", kids[0]))
	require.NoError(t, b.FieldRelocate(kids[0], "ownedElements", m, pkg))
	op := b.End()

	assert.Equal(t, []Kind{KindInsert, KindFieldAssign, KindFieldAssign, KindFieldRelocate}, seen)
	assert.Equal(t, "dep", op.Ops[0].Elem["_id"])
	assert.Equal(t, map[string]any{"$ref": "m"}, op.Ops[0].Elem["_parent"])
	assert.Equal(t, "Before", op.Ops[1].Old)
	assert.Equal(t, "After", op.Ops[1].New)
	assert.Nil(t, op.Ops[2].Old)
	assert.Equal(t, map[string]any{"$ref": "a"}, op.Ops[2].New)
	assert.Equal(t, Op{Kind: KindFieldRelocate, ID: "a", Field: "ownedElements", Index: 0, OldParent: "m", NewParent: "pkg"}, op.Ops[3])
	assert.Equal(t, "Before", m.Name)
}

func TestBuilderRelocateChecks(t *testing.T) {
	reg := domain.NewMetamodel()
	b := NewBuilder(reg, nil)
	m, kids := modelWith(t, reg, "a")
	other, _ := modelWith(t, reg)
	other.SetID("other")
	view := newElem[*domain.NodeView](t, reg, domain.TypeNodeView, "v")
	diagram := newElem[*domain.Diagram](t, reg, domain.TypeDiagram, "d")

	require.NoError(t, b.Begin("move", false))
	assert.ErrorIs(t, b.FieldRelocate(kids[0], "ownedElements", other, m), ErrNotMember)
	assert.ErrorIs(t, b.FieldRelocate(kids[0], "name", m, other), domain.ErrKindMismatch)
	assert.ErrorIs(t, b.FieldRelocate(view, "ownedElements", diagram, m), domain.ErrKindMismatch)
	b.Discard()
	assert.False(t, b.InProgress())
}

func TestOperationJSON(t *testing.T) {
	op := New("everything", true)
	op.Ops = []Op{
		{Kind: KindInsert, Elem: map[string]any{"_type": "Class", "_id": "c", "name": "C"}},
		{Kind: KindRemove, Elem: map[string]any{"_type": "Class", "_id": "d"}},
		{Kind: KindFieldAssign, ID: "c", Field: "name", Old: "C", New: "D"},
		{Kind: KindFieldAssign, ID: "c", Field: "source", Old: nil, New: map[string]any{"$ref": "x"}},
		{Kind: KindFieldInsert, ID: "m", Field: "ownedElements", Value: "c", Index: 2},
		{Kind: KindFieldRemove, ID: "m", Field: "ownedElements", Value: "d", Index: 0},
		{Kind: KindFieldReorder, ID: "m", Field: "ownedElements", Value: "c", Index: 0, OldIndex: 2},
		{Kind: KindFieldRelocate, ID: "c", Field: "ownedElements", Index: 1, OldParent: "m", NewParent: "p"},
	}

	data, err := Marshal(op)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"l"`)
	assert.Contains(t, string(data), `"np":{"$ref":"p"}`)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, op, decoded)
}

func TestOperationJSONRejectsUnknownKind(t *testing.T) {
	_, err := Unmarshal([]byte(`{"id":"x","ops":[{"op":"?","arg":{}}]}`))
	assert.Error(t, err)
}

func TestOperationClone(t *testing.T) {
	op := New("copy", false)
	op.Ops = []Op{{Kind: KindInsert, Elem: map[string]any{
		"_id":           "c",
		"ownedElements": []any{map[string]any{"_id": "n"}},
	}}}

	clone, err := op.Clone()
	require.NoError(t, err)
	clone.Ops[0].Elem["ownedElements"].([]any)[0].(map[string]any)["_id"] = "changed"

	assert.Equal(t, "n", op.Ops[0].Elem["ownedElements"].([]any)[0].(map[string]any)["_id"])
	assert.Equal(t, op.ID, clone.ID)
}
