package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
)

func mustNew[T domain.Element](t *testing.T, reg *domain.Registry, typ, id string) T {
	t.Helper()
	e, err := reg.New(typ)
	require.NoError(t, err)
	e.SetID(id)
	return e.(T)
}

func adopt(parent domain.Element, list *[]domain.Element, kids ...domain.Element) {
	for _, k := range kids {
		k.SetParent(parent)
		*list = append(*list, k)
	}
}

// document serializes a small shop model: two classes, a generalization,
// an association between them and a diagram showing both.
func document(t *testing.T, reg *domain.Registry) map[string]any {
	t.Helper()
	p := mustNew[*domain.Project](t, reg, domain.TypeProject, "project")
	p.Name = "Shop"
	m := mustNew[*domain.Model](t, reg, domain.TypeModel, "model")
	m.Name = "Domain"

	order := mustNew[*domain.Class](t, reg, domain.TypeClass, "order")
	order.Name = "Order"
	total := mustNew[*domain.Property](t, reg, domain.TypeProperty, "total")
	total.Name = "total"
	total.SetParent(order)
	order.Attributes = append(order.Attributes, total)

	special := mustNew[*domain.Class](t, reg, domain.TypeClass, "special")
	special.Name = "SpecialOrder"
	link := mustNew[*domain.Property](t, reg, domain.TypeProperty, "link")
	link.Name = "base"
	link.Type = domain.Ref("order")
	link.SetParent(special)
	special.Attributes = append(special.Attributes, link)

	gen := mustNew[*domain.Generalization](t, reg, domain.TypeGeneralization, "gen")
	gen.Source, gen.Target = "special", "order"

	assoc := mustNew[*domain.Association](t, reg, domain.TypeAssociation, "assoc")
	end1 := mustNew[*domain.AssociationEnd](t, reg, domain.TypeAssociationEnd, "end1")
	end1.Reference = "order"
	end1.SetParent(assoc)
	end2 := mustNew[*domain.AssociationEnd](t, reg, domain.TypeAssociationEnd, "end2")
	end2.Reference = "special"
	end2.SetParent(assoc)
	assoc.End1, assoc.End2 = end1, end2

	diagram := mustNew[*domain.Diagram](t, reg, domain.TypeDiagram, "diagram")
	diagram.Name = "Main"
	n1 := mustNew[*domain.NodeView](t, reg, domain.TypeNodeView, "n1")
	n1.Model = "order"
	n2 := mustNew[*domain.NodeView](t, reg, domain.TypeNodeView, "n2")
	n2.Model = "special"
	n2.Left = 200
	edge := mustNew[*domain.EdgeView](t, reg, domain.TypeEdgeView, "edge")
	edge.Model, edge.Head, edge.Tail = "gen", "n1", "n2"
	adopt(diagram, &diagram.OwnedViews, n1, n2, edge)

	adopt(m, &m.OwnedElements, order, special, gen, assoc, diagram)
	adopt(p, &p.OwnedElements, m)
	return codec.NewWriter(reg, nil).Serialize(p)
}

func loaded(t *testing.T, opts ...Option) *Repository {
	t.Helper()
	reg := domain.NewMetamodel()
	r := New(reg, opts...)
	diags, err := r.Load(document(t, reg))
	require.NoError(t, err)
	require.Empty(t, diags)
	return r
}

func edit(t *testing.T, r *Repository, name string, fn func(b *oplog.Builder)) *oplog.Operation {
	t.Helper()
	b := oplog.NewBuilder(r.Registry(), nil)
	require.NoError(t, b.Begin(name, false))
	fn(b)
	op := b.End()
	require.NoError(t, r.DoOperation(op))
	return op
}

func record(r *Repository, kinds ...EventKind) *[]string {
	var got []string
	for _, k := range kinds {
		r.Subscribe(k, func(ev Event) {
			entry := ev.Kind.String()
			for _, e := range ev.Elements {
				entry += " " + e.ID()
			}
			if ev.Element != nil {
				entry += " " + ev.Element.ID()
			}
			got = append(got, entry)
		})
	}
	return &got
}

var allEvents = []EventKind{
	EventCreated, EventUpdated, EventDeleted, EventReordered, EventRelocated, EventModified,
	EventBeforeExecuteOperation, EventOperationExecuted, EventBeforeUndo, EventUndo, EventBeforeRedo, EventRedo,
}

func TestLoadRoundTrip(t *testing.T) {
	reg := domain.NewMetamodel()
	r := New(reg)
	tree := document(t, reg)

	_, err := r.Load(tree)
	require.NoError(t, err)

	assert.Equal(t, document(t, reg), r.Serialize())
	assert.Equal(t, 14, r.Len())
	assert.Equal(t, "project", r.Root().ID())
	assert.Empty(t, r.Verify())
	assert.False(t, r.IsModified())
	assert.False(t, r.CanUndo())
}

func TestLoadRejectsUnreadableRoot(t *testing.T) {
	r := New(domain.NewMetamodel())
	diags, err := r.Load(map[string]any{"_type": "Nope", "_id": "x"})
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.NotEmpty(t, diags)
	assert.Nil(t, r.Root())
}

func TestReferenceIndexAfterLoad(t *testing.T) {
	r := loaded(t)
	assert.Equal(t, map[string]int{"end1": 1, "gen": 1, "link": 1, "model": 1, "n1": 1}, r.Referrers("order"))
	assert.Equal(t, 1, r.RefCount("end1", "assoc"))
	assert.Equal(t, 1, r.RefCount("n1", "edge"))
	assert.Empty(t, r.Referrers("project"), "no one points at the root")
}

func TestCreateUndoRedo(t *testing.T) {
	r := loaded(t)
	reg := r.Registry()
	before := r.Serialize()
	beforeRefs := r.RefIndex()
	events := record(r, allEvents...)

	model := r.Get("model")
	c := mustNew[*domain.Class](t, reg, domain.TypeClass, "customer")
	c.Name = "Customer"
	c.SetParent(model)
	edit(t, r, "create class", func(b *oplog.Builder) {
		require.NoError(t, b.Insert(c))
		require.NoError(t, b.FieldInsert(model, "ownedElements", c))
	})

	created := r.Get("customer")
	require.NotNil(t, created)
	assert.Same(t, model, created.Parent())
	assert.Equal(t, 1, r.RefCount("customer", "model"))
	assert.True(t, r.IsModified())
	assert.Empty(t, r.Verify())
	after := r.Serialize()

	op, err := r.Undo()
	require.NoError(t, err)
	assert.Equal(t, "create class", op.Name)
	assert.Nil(t, r.Get("customer"))
	assert.Equal(t, before, r.Serialize())
	assert.Equal(t, beforeRefs, r.RefIndex())
	assert.Empty(t, r.Verify())

	_, err = r.Redo()
	require.NoError(t, err)
	assert.Equal(t, after, r.Serialize())
	assert.Empty(t, r.Verify())

	assert.Equal(t, []string{
		"beforeExecuteOperation",
		"created customer",
		"updated model",
		"modified",
		"operationExecuted",
		"beforeUndo",
		"deleted customer",
		"updated model",
		"modified",
		"undo",
		"beforeRedo",
		"created customer",
		"updated model",
		"modified",
		"redo",
	}, *events)
}

func TestNothingToUndo(t *testing.T) {
	r := loaded(t)
	op, err := r.Undo()
	assert.NoError(t, err)
	assert.Nil(t, op)
	op, err = r.Redo()
	assert.NoError(t, err)
	assert.Nil(t, op)
	assert.NoError(t, r.DoOperation(nil))
}

func TestAssociationScenario(t *testing.T) {
	r := loaded(t)
	reg := r.Registry()
	model := r.Get("model")
	before := r.RefIndex()

	assoc := mustNew[*domain.Association](t, reg, domain.TypeAssociation, "owns")
	e1 := mustNew[*domain.AssociationEnd](t, reg, domain.TypeAssociationEnd, "owns1")
	e1.Reference = "order"
	e1.SetParent(assoc)
	e2 := mustNew[*domain.AssociationEnd](t, reg, domain.TypeAssociationEnd, "owns2")
	e2.Reference = "total"
	e2.SetParent(assoc)
	assoc.End1, assoc.End2 = e1, e2
	assoc.SetParent(model)

	edit(t, r, "associate", func(b *oplog.Builder) {
		require.NoError(t, b.Insert(assoc))
		require.NoError(t, b.FieldInsert(model, "ownedElements", assoc))
	})

	assert.Equal(t, 1, r.RefCount("order", "owns1"))
	assert.Equal(t, 1, r.RefCount("total", "owns2"))
	assert.Equal(t, 1, r.RefCount("owns1", "owns"))
	assert.Same(t, r.Get("owns"), r.Get("owns1").Parent())

	var rels []string
	for _, e := range r.GetRelationshipsOf(r.Get("order"), nil) {
		rels = append(rels, e.ID())
	}
	assert.ElementsMatch(t, []string{"assoc", "gen", "owns"}, rels)

	_, err := r.Undo()
	require.NoError(t, err)
	assert.Zero(t, r.RefCount("order", "owns1"))
	assert.Nil(t, r.Get("owns1"))
	assert.Equal(t, before, r.RefIndex())
}

func deleteSpecial(t *testing.T, r *Repository, removeFirst bool) {
	t.Helper()
	special := r.Get("special")
	edit(t, r, "delete special", func(b *oplog.Builder) {
		require.NoError(t, b.FieldAssign(r.Get("gen"), "source", nil))
		require.NoError(t, b.FieldAssign(r.Get("end2"), "reference", nil))
		require.NoError(t, b.FieldAssign(r.Get("n2"), "model", nil))
		if removeFirst {
			require.NoError(t, b.Remove(special))
			require.NoError(t, b.FieldRemove(r.Get("model"), "ownedElements", special))
		} else {
			require.NoError(t, b.FieldRemove(r.Get("model"), "ownedElements", special))
			require.NoError(t, b.Remove(special))
		}
	})
}

func TestDeleteSubtree(t *testing.T) {
	for _, removeFirst := range []bool{false, true} {
		t.Run(fmt.Sprintf("removeFirst=%v", removeFirst), func(t *testing.T) {
			r := loaded(t)
			before := r.Serialize()
			beforeRefs := r.RefIndex()
			events := record(r, EventDeleted, EventUpdated)

			deleteSpecial(t, r, removeFirst)

			assert.Nil(t, r.Get("special"))
			assert.Nil(t, r.Get("link"), "owned children go with their owner")
			assert.Empty(t, r.Referrers("special"))
			assert.Zero(t, r.RefCount("order", "link"))
			assert.Empty(t, r.Verify())
			assert.Equal(t, 12, r.Len())
			assert.Equal(t, []string{"deleted special", "updated gen end2 n2 model"}, *events)

			_, err := r.Undo()
			require.NoError(t, err)
			assert.Equal(t, before, r.Serialize())
			assert.Equal(t, beforeRefs, r.RefIndex())
			assert.Empty(t, r.Verify())
			assert.Same(t, r.Get("special"), r.Get("link").Parent())

			_, err = r.Redo()
			require.NoError(t, err)
			assert.Nil(t, r.Get("special"))
			assert.Empty(t, r.Verify())
		})
	}
}

func TestReorder(t *testing.T) {
	r := loaded(t)
	events := record(r, EventReordered)
	model := r.Get("model")

	edit(t, r, "reorder", func(b *oplog.Builder) {
		require.NoError(t, b.FieldReorder(model, "ownedElements", r.Get("diagram"), 0))
	})

	owned, err := r.Registry().MustAttr(domain.TypeModel, "ownedElements")
	require.NoError(t, err)
	assert.Equal(t, []string{"diagram", "order", "special", "gen", "assoc"}, owned.SlotIDs(model))
	assert.Equal(t, []string{"reordered model"}, *events)

	_, err = r.Undo()
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "special", "gen", "assoc", "diagram"}, owned.SlotIDs(model))
}

func TestRelocate(t *testing.T) {
	r := loaded(t)
	reg := r.Registry()
	model := r.Get("model")
	pkg := mustNew[*domain.Package](t, reg, domain.TypePackage, "billing")
	pkg.SetParent(model)
	edit(t, r, "create package", func(b *oplog.Builder) {
		require.NoError(t, b.Insert(pkg))
		require.NoError(t, b.FieldInsert(model, "ownedElements", pkg))
	})
	before := r.Serialize()

	var moved Event
	r.Subscribe(EventRelocated, func(ev Event) { moved = ev })
	edit(t, r, "move", func(b *oplog.Builder) {
		require.NoError(t, b.FieldRelocate(r.Get("order"), "ownedElements", model, r.Get("billing")))
	})

	order := r.Get("order")
	assert.Same(t, r.Get("billing"), order.Parent())
	assert.Equal(t, 1, r.RefCount("order", "billing"))
	assert.Zero(t, r.RefCount("order", "model"))
	assert.Equal(t, "model", moved.OldParent.ID())
	assert.Equal(t, "billing", moved.NewParent.ID())
	assert.Equal(t, "ownedElements", moved.Field)
	assert.Empty(t, r.Verify())

	_, err := r.Undo()
	require.NoError(t, err)
	assert.Equal(t, before, r.Serialize(), "order returns to its original slot")
	assert.Same(t, model, order.Parent())
	assert.Empty(t, r.Verify())
}

func TestBypassIsSilent(t *testing.T) {
	r := loaded(t)
	events := record(r, allEvents...)

	b := oplog.NewBuilder(r.Registry(), nil)
	require.NoError(t, b.Begin("repair", true))
	require.NoError(t, b.FieldAssign(r.Get("order"), "name", "Purchase"))
	require.NoError(t, r.DoOperation(b.End()))

	assert.Equal(t, "Purchase", domain.NameOf(r.Get("order")))
	assert.Equal(t, []string{"beforeExecuteOperation", "operationExecuted"}, *events)
	assert.False(t, r.IsModified())
	assert.False(t, r.CanUndo())
}

func TestRedoClearedByNewOperation(t *testing.T) {
	r := loaded(t)
	rename := func(name string) {
		edit(t, r, "rename", func(b *oplog.Builder) {
			require.NoError(t, b.FieldAssign(r.Get("order"), "name", name))
		})
	}
	rename("A")
	_, err := r.Undo()
	require.NoError(t, err)
	assert.True(t, r.CanRedo())

	rename("B")
	assert.False(t, r.CanRedo())
	assert.Equal(t, 1, r.UndoLen())
}

func TestHistoryIsBounded(t *testing.T) {
	r := loaded(t)
	for i := 1; i <= DefaultHistoryLimit+1; i++ {
		edit(t, r, "rename", func(b *oplog.Builder) {
			require.NoError(t, b.FieldAssign(r.Get("order"), "name", fmt.Sprintf("n%d", i)))
		})
	}
	assert.Equal(t, DefaultHistoryLimit, r.UndoLen())

	for i := 0; i < DefaultHistoryLimit; i++ {
		op, err := r.Undo()
		require.NoError(t, err)
		require.NotNil(t, op)
	}
	op, err := r.Undo()
	require.NoError(t, err)
	assert.Nil(t, op)
	assert.Equal(t, "n1", domain.NameOf(r.Get("order")), "the oldest operation was evicted")
}

func TestWithHistoryLimit(t *testing.T) {
	r := loaded(t, WithHistoryLimit(2))
	for _, name := range []string{"a", "b", "c"} {
		edit(t, r, "rename", func(b *oplog.Builder) {
			require.NoError(t, b.FieldAssign(r.Get("order"), "name", name))
		})
	}
	assert.Equal(t, 2, r.UndoLen())
	assert.Equal(t, "rename", r.PeekUndo().Name)
	r.ClearHistory()
	assert.False(t, r.CanUndo())
}

func TestListenerCannotReenter(t *testing.T) {
	r := loaded(t)
	var doErr, undoErr error
	r.Subscribe(EventUpdated, func(Event) {
		doErr = r.DoOperation(&oplog.Operation{Ops: []oplog.Op{{Kind: oplog.KindFieldAssign, ID: "order", Field: "name", New: "X"}}})
		_, undoErr = r.Undo()
	})

	edit(t, r, "rename", func(b *oplog.Builder) {
		require.NoError(t, b.FieldAssign(r.Get("order"), "name", "Purchase"))
	})

	assert.ErrorIs(t, doErr, ErrBusy)
	assert.ErrorIs(t, undoErr, ErrBusy)
	assert.Equal(t, "Purchase", domain.NameOf(r.Get("order")))
	assert.Equal(t, 1, r.UndoLen())
}

func TestListenerPanicIsContained(t *testing.T) {
	r := loaded(t)
	reached := false
	r.Subscribe(EventUpdated, func(Event) { panic("boom") })
	r.Subscribe(EventUpdated, func(Event) { reached = true })

	edit(t, r, "rename", func(b *oplog.Builder) {
		require.NoError(t, b.FieldAssign(r.Get("order"), "name", "Purchase"))
	})
	assert.True(t, reached)
	assert.True(t, r.CanUndo())
}

func TestUnsubscribe(t *testing.T) {
	r := loaded(t)
	calls := 0
	stop := r.Subscribe(EventModified, func(Event) { calls++ })
	rename := func() {
		edit(t, r, "rename", func(b *oplog.Builder) {
			require.NoError(t, b.FieldAssign(r.Get("order"), "name", "X"))
		})
	}
	rename()
	stop()
	rename()
	assert.Equal(t, 1, calls)
}

func TestFieldOpOnMissingElementIsSkipped(t *testing.T) {
	r := loaded(t)
	op := oplog.New("stale", false)
	op.Ops = []oplog.Op{
		{Kind: oplog.KindFieldAssign, ID: "ghost", Field: "name", New: "X"},
		{Kind: oplog.KindFieldAssign, ID: "order", Field: "name", Old: "Order", New: "Purchase"},
	}
	require.NoError(t, r.DoOperation(op))
	assert.Equal(t, "Purchase", domain.NameOf(r.Get("order")))
	assert.Empty(t, r.Verify())
}

func TestQueries(t *testing.T) {
	r := loaded(t)
	idsOf := func(es []domain.Element) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.ID())
		}
		return out
	}

	assert.Equal(t, []string{"gen", "assoc"}, idsOf(r.GetInstancesOf(domain.TypeRelationship)))
	assert.Equal(t, []string{"order", "special"}, idsOf(r.Search("order", "")))
	assert.Equal(t, []string{"link"}, idsOf(r.Search("BAS", domain.TypeProperty)))
	assert.Empty(t, r.Search("order", domain.TypeDiagram))
	assert.Equal(t, []string{"n1"}, idsOf(r.GetViewsOf(r.Get("order"))))
	assert.Equal(t, []string{"assoc", "gen"}, idsOf(r.GetRelationshipsOf(r.Get("order"), nil)))
	assert.Equal(t, []string{"end1", "gen", "link", "model", "n1"}, idsOf(r.GetRefsTo(r.Get("order"), nil)))
	assert.Equal(t, "special", r.Find(func(e domain.Element) bool { return domain.NameOf(e) == "SpecialOrder" }).ID())

	sel, err := r.Select("@Model::@Class")
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "special"}, idsOf(sel))

	_, err = r.Select("@Class[name=")
	assert.Error(t, err)
}
