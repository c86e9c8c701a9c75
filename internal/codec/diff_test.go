package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/domain"
)

func TestDiffElements(t *testing.T) {
	reg := domain.NewMetamodel()
	a := newElem[*domain.Class](t, reg, domain.TypeClass, "c")
	a.Name = "Order"
	a.Documentation = "old"
	b := newElem[*domain.Class](t, reg, domain.TypeClass, "c")
	b.Name = "Invoice"
	b.IsAbstract = true

	d := DiffElements(reg, a, b)

	require.NotNil(t, d)
	assert.Equal(t, ModifiedField{Old: "Order", New: "Invoice"}, d.Modified["name"])
	assert.Equal(t, true, d.Added["isAbstract"])
	assert.Equal(t, []string{"documentation"}, d.Removed)

	assert.Nil(t, DiffElements(reg, a, a))
}

func TestDiffDocuments(t *testing.T) {
	reg := domain.NewMetamodel()
	w := NewWriter(reg, nil)
	older := w.Serialize(fixture(t, reg))

	changed := fixture(t, reg)
	model := changed.OwnedElements[0].(*domain.Model)
	model.OwnedElements[1].(*domain.Class).Name = "PurchaseOrder"
	model.OwnedElements = model.OwnedElements[:4]
	added := newElem[*domain.Package](t, reg, domain.TypePackage, "pkg")
	model.OwnedElements = append(model.OwnedElements, added)
	added.SetParent(model)
	newer := w.Serialize(changed)

	d := DiffDocuments(older, newer)

	assert.Equal(t, []string{"pkg"}, d.Added)
	assert.Equal(t, []string{"diagram", "edge", "n1", "n2"}, d.Removed)
	require.Contains(t, d.Modified, "order")
	assert.Equal(t, "PurchaseOrder", d.Modified["order"].Modified["name"].New)
	require.Contains(t, d.Modified, "model", "owned array membership changed")
	assert.NotContains(t, d.Modified, "special")

	assert.True(t, DiffDocuments(older, older).IsEmpty())
}
