package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/adapters/filesystem"
	"modelrepo/internal/application"
	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
)

const document = `{
  "_type": "Project", "_id": "p", "name": "Shop",
  "ownedElements": [{
    "_type": "Model", "_id": "m", "name": "Domain",
    "ownedElements": [
      {"_type": "Class", "_id": "order", "name": "Order",
       "attributes": [{"_type": "Property", "_id": "total", "name": "total"}]},
      {"_type": "Class", "_id": "customer", "name": "Customer"},
      {"_type": "Dependency", "_id": "dep", "source": {"$ref": "customer"}, "target": {"$ref": "order"}}
    ]
  }]
}`

func workspace(t *testing.T) *Workspace {
	t.Helper()
	tree, err := codec.Unmarshal([]byte(document))
	require.NoError(t, err)

	store := filesystem.NewStore()
	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, store.Save(path, tree))

	session, err := application.OpenSession(store, path)
	require.NoError(t, err)
	return NewWorkspace(session)
}

// call runs a handler and returns its text and whether it reported an error
func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text, res.IsError
	case *mcp.TextContent:
		return c.Text, res.IsError
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return "", false
}

func TestGet(t *testing.T) {
	w := workspace(t)

	text, isErr := call(t, w.getHandler, map[string]any{"id": "order"})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"name": "Order"`)
	assert.Contains(t, text, `"_id": "total"`)

	text, isErr = call(t, w.getHandler, map[string]any{"id": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")

	_, isErr = call(t, w.getHandler, nil)
	assert.True(t, isErr)
}

func TestReadTools(t *testing.T) {
	w := workspace(t)

	tests := []struct {
		name    string
		handler server.ToolHandlerFunc
		args    map[string]any
		want    []string
		wantErr bool
	}{
		{"search", w.searchHandler, map[string]any{"query": "ord"}, []string{"order  Class"}, false},
		{"search by type", w.searchHandler, map[string]any{"query": "to", "type": "Property"}, []string{"total  Property"}, false},
		{"search unknown type", w.searchHandler, map[string]any{"query": "or", "type": "Nope"}, nil, true},
		{"select", w.selectHandler, map[string]any{"selector": "@Class"}, []string{"order", "customer"}, false},
		{"select bad", w.selectHandler, map[string]any{"selector": "@Class[]"}, nil, true},
		{"refs", w.refsHandler, map[string]any{"id": "order"}, []string{"dep  Dependency", "m  Model  Domain"}, false},
		{"tree", w.treeHandler, map[string]any{"id": "m", "depth": float64(1)}, []string{"m  Model  Domain", "… 3 children"}, false},
		{"tree full", w.treeHandler, nil, []string{"p  Project  Shop", "      total  Property  total"}, false},
		{"tree missing", w.treeHandler, map[string]any{"id": "nope"}, nil, true},
		{"relationships", w.relationshipsHandler, map[string]any{"id": "order"}, []string{"dep  Dependency"}, false},
		{"relationships filtered", w.relationshipsHandler, map[string]any{"id": "order", "type": "Generalization"}, []string{"No results."}, false},
		{"views", w.viewsHandler, map[string]any{"id": "order"}, []string{"No results."}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.handler, tt.args)
			assert.Equal(t, tt.wantErr, isErr, text)
			for _, want := range tt.want {
				assert.Contains(t, text, want)
			}
		})
	}
}

func TestWriteTools(t *testing.T) {
	w := workspace(t)
	repo := w.session.Repo

	text, isErr := call(t, w.createHandler, map[string]any{"parent_id": "m", "type": "Class", "name": "Invoice"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Invoice")
	require.Len(t, repo.Search("Invoice", "Class"), 1)

	text, isErr = call(t, w.createHandler, map[string]any{"type": "Generalization", "source_id": "customer", "target_id": "order"})
	require.False(t, isErr, text)
	assert.Len(t, repo.GetRelationshipsOf(repo.Get("order"), nil), 2)

	_, isErr = call(t, w.createHandler, map[string]any{"parent_id": "m", "type": "Class"})
	assert.True(t, isErr, "classes need a name")

	text, isErr = call(t, w.renameHandler, map[string]any{"id": "order", "name": "Purchase"})
	require.False(t, isErr, text)
	assert.Equal(t, "Purchase", domain.NameOf(repo.Get("order")))

	text, isErr = call(t, w.moveHandler, map[string]any{"id": "total", "destination_id": "customer"})
	require.False(t, isErr, text)
	assert.Same(t, repo.Get("customer"), repo.Get("total").Parent())

	text, isErr = call(t, w.deleteHandler, map[string]any{"id": "order, customer"})
	require.False(t, isErr, text)
	assert.Nil(t, repo.Get("order"))
	assert.Nil(t, repo.Get("dep"))

	text, isErr = call(t, w.undoHandler, nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, "Undid")
	assert.NotNil(t, repo.Get("dep"))

	text, isErr = call(t, w.redoHandler, nil)
	require.False(t, isErr, text)
	assert.Nil(t, repo.Get("dep"))

	_, isErr = call(t, w.redoHandler, nil)
	assert.True(t, isErr, "nothing left to redo")
}

func TestSave(t *testing.T) {
	w := workspace(t)
	_, isErr := call(t, w.renameHandler, map[string]any{"id": "order", "name": "Purchase"})
	require.False(t, isErr)
	require.True(t, w.session.Repo.IsModified())

	text, isErr := call(t, w.saveHandler, nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, "Saved")
	assert.False(t, w.session.Repo.IsModified())

	text, _ = call(t, w.saveHandler, nil)
	assert.Equal(t, "No changes to save.", text)

	other := filepath.Join(t.TempDir(), "copy.json")
	text, isErr = call(t, w.saveHandler, map[string]any{"path": other})
	require.False(t, isErr, text)
	assert.Equal(t, other, w.session.Path())

	tree, err := filesystem.NewStore().Load(other)
	require.NoError(t, err)
	data, err := codec.Marshal(tree)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Purchase")
}
