package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// shopDocument holds two classes linked by a generalization and an
// association, a package and a diagram presenting both classes.
const shopDocument = `{
  "_type": "Project", "_id": "p", "name": "Shop",
  "ownedElements": [{
    "_type": "Model", "_id": "m", "name": "Domain",
    "ownedElements": [
      {"_type": "Class", "_id": "order", "name": "Order",
       "attributes": [{"_type": "Property", "_id": "total", "name": "total"}]},
      {"_type": "Class", "_id": "customer", "name": "Customer", "documentation": "buys things"},
      {"_type": "Package", "_id": "billing", "name": "Billing"},
      {"_type": "Generalization", "_id": "g", "source": {"$ref": "customer"}, "target": {"$ref": "order"}},
      {"_type": "Association", "_id": "a",
       "end1": {"_type": "AssociationEnd", "_id": "end1", "reference": {"$ref": "customer"}},
       "end2": {"_type": "AssociationEnd", "_id": "end2", "reference": {"$ref": "order"}}},
      {"_type": "Diagram", "_id": "d", "name": "Main", "defaultDiagram": true,
       "ownedViews": [
         {"_type": "NodeView", "_id": "nv1", "model": {"$ref": "order"}},
         {"_type": "NodeView", "_id": "nv2", "model": {"$ref": "customer"}, "left": 200},
         {"_type": "EdgeView", "_id": "ev", "model": {"$ref": "a"}, "head": {"$ref": "nv2"}, "tail": {"$ref": "nv1"}}
       ]}
    ]
  }]
}`

func shop(t *testing.T) *repository.Repository {
	t.Helper()
	tree, err := codec.Unmarshal([]byte(shopDocument))
	require.NoError(t, err)
	repo := repository.New(domain.NewMetamodel())
	diags, err := repo.Load(tree)
	require.NoError(t, err)
	require.Empty(t, diags)
	return repo
}

func undo(t *testing.T, repo *repository.Repository) {
	t.Helper()
	_, err := NewUndoCommand(repo).Execute(context.Background())
	require.NoError(t, err)
}
