package domain

import (
	"testing"
)

func sampleProject(t *testing.T, reg *Registry) (*Project, *Model, *Class) {
	t.Helper()
	p := mustNew[*Project](t, reg, TypeProject, "p")
	p.Name = "Project"
	m := mustNew[*Model](t, reg, TypeModel, "m")
	m.Name = "Model"
	c := mustNew[*Class](t, reg, TypeClass, "c")
	c.Name = "Order"
	m.OwnedElements = append(m.OwnedElements, c)
	c.SetParent(m)
	p.OwnedElements = append(p.OwnedElements, m)
	m.SetParent(p)
	return p, m, c
}

func mustNew[T Element](t *testing.T, reg *Registry, typ, id string) T {
	t.Helper()
	e, err := reg.New(typ)
	if err != nil {
		t.Fatalf("New(%s): %v", typ, err)
	}
	e.SetID(id)
	return e.(T)
}

func TestBuildTree(t *testing.T) {
	reg := NewMetamodel()
	p, _, _ := sampleProject(t, reg)

	root := BuildTree(reg, p)

	if root.ID != "p" || root.Name != "Project" {
		t.Fatalf("unexpected root %+v", root)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	model := root.Children[0]
	if model.Field != "ownedElements" {
		t.Errorf("expected field ownedElements, got %s", model.Field)
	}
	if model.Parent != root {
		t.Error("expected model parent to be root")
	}
	if len(model.Children) != 1 || model.Children[0].Name != "Order" {
		t.Errorf("expected class Order under model, got %+v", model.Children)
	}
}

func TestTreeNodeFlatten(t *testing.T) {
	reg := NewMetamodel()
	p, _, _ := sampleProject(t, reg)
	root := BuildTree(reg, p)

	t.Run("collapsed root shows only itself", func(t *testing.T) {
		if got := len(root.Flatten()); got != 1 {
			t.Errorf("expected 1 visible node, got %d", got)
		}
	})

	t.Run("reveal expands ancestors", func(t *testing.T) {
		root.Find("c").Reveal()
		flat := root.Flatten()
		if len(flat) != 3 {
			t.Fatalf("expected 3 visible nodes, got %d", len(flat))
		}
		if flat[2].Depth() != 2 {
			t.Errorf("expected depth 2, got %d", flat[2].Depth())
		}
	})

	t.Run("expanded state survives rebuild", func(t *testing.T) {
		ids := root.ExpandedIDs()
		rebuilt := BuildTree(reg, p)
		rebuilt.RestoreExpanded(ids)
		if len(rebuilt.Flatten()) != 3 {
			t.Error("expected rebuilt tree to keep expansion")
		}
	})
}

func TestTreeNodeLabel(t *testing.T) {
	named := &TreeNode{Name: "Order", Type: TypeClass}
	unnamed := &TreeNode{Type: TypeNodeView}

	if named.Label() != "Order" {
		t.Errorf("expected Order, got %s", named.Label())
	}
	if unnamed.Label() != "(NodeView)" {
		t.Errorf("expected (NodeView), got %s", unnamed.Label())
	}
}

func TestOwnerPath(t *testing.T) {
	reg := NewMetamodel()
	_, _, c := sampleProject(t, reg)

	if got := OwnerPath(c); got != "Project/Model/Order" {
		t.Errorf("expected Project/Model/Order, got %s", got)
	}
}

func TestSortByName(t *testing.T) {
	results := []SearchResult{
		{ID: "3", Name: "Zeta"},
		{ID: "2", Name: "Alpha"},
		{ID: "1", Name: "Alpha"},
	}

	SortByName(results)

	if results[0].ID != "1" || results[1].ID != "2" || results[2].ID != "3" {
		t.Errorf("unexpected order: %+v", results)
	}
}
