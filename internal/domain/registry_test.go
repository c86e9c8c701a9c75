package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNew(t *testing.T) {
	reg := NewMetamodel()

	t.Run("concrete type", func(t *testing.T) {
		e, err := reg.New(TypeClass)
		require.NoError(t, err)
		assert.Equal(t, TypeClass, e.TypeName())
		assert.Empty(t, e.ID())
	})

	t.Run("defaults applied", func(t *testing.T) {
		e, err := reg.New(TypeAssociationEnd)
		require.NoError(t, err)
		assert.True(t, e.(*AssociationEnd).Navigable)

		n, err := reg.New(TypeNodeView)
		require.NoError(t, err)
		assert.Equal(t, 100.0, n.(*NodeView).Width)
		assert.Equal(t, "#ffffff", n.(*NodeView).FillColor)
	})

	t.Run("abstract type", func(t *testing.T) {
		_, err := reg.New(TypeModelElement)
		assert.ErrorIs(t, err, ErrAbstractType)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := reg.New("Nope")
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(TypeInfo{Name: "Base", Abstract: true}))

	err := reg.Register(TypeInfo{Name: "Base", Abstract: true})
	assert.True(t, errors.Is(err, ErrDuplicateType))

	err = reg.Register(TypeInfo{Name: "Orphan", Super: "Missing", Abstract: true})
	assert.ErrorIs(t, err, ErrUnknownType)

	err = reg.Register(TypeInfo{Name: "NoCtor", Super: "Base"})
	assert.Error(t, err)
}

func TestRegistryInheritance(t *testing.T) {
	reg := NewMetamodel()

	assert.True(t, reg.IsKindOf(TypeDependency, TypeRelationship))
	assert.True(t, reg.IsKindOf(TypeDependency, TypeElement))
	assert.True(t, reg.IsKindOf(TypeClass, TypeClass))
	assert.False(t, reg.IsKindOf(TypeNodeView, TypeModelElement))

	_, ok := reg.Attr(TypeGeneralization, "source")
	assert.True(t, ok, "directed relationship fields are inherited")
	_, ok = reg.Attr(TypeClass, "name")
	assert.True(t, ok)
	_, ok = reg.Attr(TypeNodeView, "name")
	assert.False(t, ok)

	names := make([]string, 0)
	for _, a := range reg.Attrs(TypeClass) {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"name", "documentation", "tags", "ownedElements", "visibility", "isAbstract", "attributes", "operations"}, names)
}

func TestRegistryChildrenAndReferees(t *testing.T) {
	reg := NewMetamodel()
	_, m, c := sampleProject(t, reg)

	assoc := mustNew[*Association](t, reg, TypeAssociation, "a")
	end1 := mustNew[*AssociationEnd](t, reg, TypeAssociationEnd, "e1")
	end2 := mustNew[*AssociationEnd](t, reg, TypeAssociationEnd, "e2")
	end1.Reference = RefTo(c)
	end2.Reference = RefTo(c)
	assoc.End1, assoc.End2 = end1, end2

	children := reg.Children(assoc)
	require.Len(t, children, 2)
	assert.Equal(t, "e1", children[0].ID())

	assert.Equal(t, []string{"e1", "e2"}, reg.Referees(assoc))
	assert.Equal(t, []string{"c"}, reg.Referees(end1))
	assert.Equal(t, []string{"c"}, reg.Referees(m))

	var visited []string
	reg.Traverse(assoc, func(e Element) bool {
		visited = append(visited, e.ID())
		return true
	})
	assert.Equal(t, []string{"a", "e1", "e2"}, visited)
}

func TestContainmentField(t *testing.T) {
	reg := NewMetamodel()

	cases := []struct {
		parent, child, want string
	}{
		{TypeClass, TypeProperty, "attributes"},
		{TypeClass, TypeMethod, "operations"},
		{TypeClass, TypeTag, "tags"},
		{TypeModel, TypeClass, "ownedElements"},
		{TypeDiagram, TypeNodeView, "ownedViews"},
		{TypeNodeView, TypeLabelView, "subViews"},
	}
	for _, tc := range cases {
		t.Run(tc.parent+"/"+tc.child, func(t *testing.T) {
			a, ok := reg.ContainmentField(tc.parent, tc.child)
			require.True(t, ok)
			assert.Equal(t, tc.want, a.Name)
		})
	}

	_, ok := reg.ContainmentField(TypeNodeView, TypeClass)
	assert.False(t, ok)
}

func TestOwningField(t *testing.T) {
	reg := NewMetamodel()
	_, m, c := sampleProject(t, reg)

	a, ok := reg.OwningField(m, c)
	require.True(t, ok)
	assert.Equal(t, "ownedElements", a.Name)
	assert.True(t, IsDescendant(c, m))
	assert.False(t, IsDescendant(m, c))
}
