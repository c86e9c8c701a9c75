package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/domain"
)

func TestClone(t *testing.T) {
	reg := domain.NewMetamodel()
	p := fixture(t, reg)
	model := p.OwnedElements[0]
	tree := NewWriter(reg, nil).Serialize(model)

	clone, remap, err := Clone(tree)
	require.NoError(t, err)

	assert.Len(t, remap, 13)
	assert.NotContains(t, clone, KeyParent)
	assert.Equal(t, remap["model"], clone[KeyID])
	assert.Equal(t, "model", tree[KeyID], "source tree untouched")

	rd := NewReader(reg, nil)
	root, diags := Deserialize(rd, clone)
	require.Empty(t, diags)

	gen := rd.Lookup(remap["gen"]).(*domain.Generalization)
	assert.Equal(t, domain.Ref(remap["order"]), gen.Target, "inner references follow the copy")
	assert.Len(t, rd.Elements(), 13)
	assert.Nil(t, root.Parent())
}

func TestCloneKeepsOutsideReferences(t *testing.T) {
	tree := map[string]any{
		KeyType: domain.TypeDependency, KeyID: "d",
		"source": RefToken("d"),
		"target": RefToken("elsewhere"),
	}

	clone, remap, err := Clone(tree)
	require.NoError(t, err)

	assert.Equal(t, RefToken(remap["d"]), clone["source"])
	assert.Equal(t, RefToken("elsewhere"), clone["target"])
}
