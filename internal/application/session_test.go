package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
	"modelrepo/internal/migrate"
	"modelrepo/internal/oplog"
)

type memStore struct {
	docs  map[string]map[string]any
	fails bool
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]any)}
}

func (m *memStore) Load(path string) (map[string]any, error) {
	doc, ok := m.docs[path]
	if !ok {
		return nil, errors.New("no such document")
	}
	return doc, nil
}

func (m *memStore) Save(path string, tree map[string]any) error {
	if m.fails {
		return errors.New("disk full")
	}
	m.docs[path] = tree
	return nil
}

func (m *memStore) Exists(path string) bool {
	_, ok := m.docs[path]
	return ok
}

func TestOpenSessionNewDocument(t *testing.T) {
	store := newMemStore()

	s, err := OpenSession(store, "/models/shop.json")
	require.NoError(t, err)

	root := s.Repo.Root()
	require.NotNil(t, root)
	assert.Equal(t, domain.TypeProject, root.TypeName())
	assert.Equal(t, "shop", domain.NameOf(root))
	assert.Len(t, s.Repo.GetInstancesOf(domain.TypeDiagram), 1)
	assert.True(t, s.Repo.IsModified())

	require.NoError(t, s.Save())
	assert.False(t, s.Repo.IsModified())
	assert.Equal(t, migrate.CurrentVersion, migrate.Version(store.docs["/models/shop.json"]))
}

func TestOpenSessionMigratesLegacyDocument(t *testing.T) {
	store := newMemStore()
	store.docs["old.json"] = map[string]any{
		"_type": "Project", "_id": "p",
		"ownedElements": []any{
			map[string]any{"_type": "Class", "_id": "a", "name": "A"},
			map[string]any{"_type": "Dependency", "_id": "d", "source": codec.RefToken("a")},
		},
	}

	s, err := OpenSession(store, "old.json", WithHistoryLimit(5))
	require.NoError(t, err)

	require.NotNil(t, s.Migration)
	assert.True(t, s.Migration.Changed())
	assert.Nil(t, s.Repo.Get("d"), "dependency without target is pruned")
	assert.NotNil(t, s.Repo.Get("a"))
	assert.True(t, s.Repo.IsModified())
	assert.False(t, s.Repo.CanUndo())
}

func TestOpenSessionCurrentDocumentUntouched(t *testing.T) {
	store := newMemStore()
	store.docs["doc.json"] = NewDocument(domain.NewMetamodel(), "Doc")

	s, err := OpenSession(store, "doc.json")
	require.NoError(t, err)
	assert.Empty(t, s.Migration.Applied)
	assert.False(t, s.Repo.IsModified())
	assert.Empty(t, s.Diagnostics)
}

func TestOpenSessionErrors(t *testing.T) {
	store := newMemStore()
	store.docs["bad.json"] = map[string]any{"_type": "Nope"}

	_, err := OpenSession(store, "bad.json")
	assert.Error(t, err)
}

func TestSaveFailureKeepsModified(t *testing.T) {
	store := newMemStore()
	s, err := OpenSession(store, "x.json")
	require.NoError(t, err)

	store.fails = true
	assert.Error(t, s.Save())
	assert.True(t, s.Repo.IsModified())

	store.fails = false
	require.NoError(t, s.SaveAs("y.json"))
	assert.Equal(t, "y.json", s.Path())
	assert.True(t, store.Exists("y.json"))
}

func TestReloadDiscardsChanges(t *testing.T) {
	store := newMemStore()
	s, err := OpenSession(store, "shop.json")
	require.NoError(t, err)
	require.NoError(t, s.Save())

	b := oplog.NewBuilder(s.Repo.Registry(), nil)
	require.NoError(t, b.Begin("rename", false))
	require.NoError(t, b.FieldAssign(s.Repo.Root(), "name", "Renamed"))
	require.NoError(t, s.Repo.DoOperation(b.End()))
	require.True(t, s.Repo.IsModified())

	reloads := 0
	s.OnReload(func() { reloads++ })
	require.NoError(t, s.Reload())
	assert.Equal(t, 1, reloads)
	assert.Equal(t, "shop", domain.NameOf(s.Repo.Root()))
	assert.False(t, s.Repo.IsModified())
	assert.False(t, s.Repo.CanUndo())
}
