package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelrepo/internal/domain"
)

func typeText(m tea.Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func submit(t *testing.T, m tea.Model) tea.Msg {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	return cmd()
}

func nodeOf(t *testing.T, b *BrowserModel, id string) *domain.TreeNode {
	t.Helper()
	node := b.root.Find(id)
	require.NotNil(t, node, id)
	return node
}

func TestCreateModel(t *testing.T) {
	b, repo := loadedBrowser(t)
	c := NewCreateModel(repo)
	c.SetParent(nodeOf(t, b, "m"))

	assert.Equal(t, domain.TypeClass, c.form.Value(createFieldType), "classes are the usual child of a model")
	assert.Equal(t, createFieldName, c.form.FocusedField)
	assert.Contains(t, c.View(), "Create Element")

	typeText(c, "Invoice")
	msg := submit(t, c)
	require.IsType(t, CreateSuccessMsg{}, msg)
	created := repo.Get(msg.(CreateSuccessMsg).ID)
	require.NotNil(t, created)
	assert.Equal(t, "Invoice", domain.NameOf(created))
	assert.Same(t, repo.Get("m"), created.Parent())
}

func TestCreateModelErrors(t *testing.T) {
	b, repo := loadedBrowser(t)
	c := NewCreateModel(repo)
	c.SetParent(nodeOf(t, b, "order"))
	assert.Equal(t, domain.TypeProperty, c.form.Value(createFieldType))

	msg := submit(t, c)
	assert.IsType(t, CreateErrMsg{}, msg, "a model element needs a name")

	c.form.SetValue(createFieldType, domain.TypeNodeView)
	msg = submit(t, c)
	assert.IsType(t, CreateErrMsg{}, msg, "classes hold no views")

	_, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, SwitchToBrowserMsg{}, cmd())
}

func TestRenameModel(t *testing.T) {
	b, repo := loadedBrowser(t)
	r := NewRenameModel(repo)
	r.SetTarget(nodeOf(t, b, "p"))
	assert.Equal(t, "Shop", r.form.Value(0))

	typeText(r, "s")
	msg := submit(t, r)
	require.IsType(t, RenameSuccessMsg{}, msg)
	assert.Equal(t, "Shops", domain.NameOf(repo.Root()))

	r.form.SetValue(0, " ")
	assert.IsType(t, RenameErrMsg{}, submit(t, r))
}

func TestMoveModel(t *testing.T) {
	repo := testRepo(t)
	b := NewBrowserModel(repo, "shop.json")
	run(t, b, b.Reveal("total"))

	mv := NewMoveModel(repo)
	mv.SetSource(nodeOf(t, b, "total"))
	assert.NotEmpty(t, mv.targets)

	typeText(mv, "Customer")
	msg := submit(t, mv)
	require.IsType(t, MoveSuccessMsg{}, msg)
	assert.Same(t, repo.Get("customer"), repo.Get("total").Parent())
}

func TestMoveModelResolve(t *testing.T) {
	repo := testRepo(t)
	b := NewBrowserModel(repo, "shop.json")
	run(t, b, b.Reveal("order"))
	mv := NewMoveModel(repo)
	mv.SetSource(nodeOf(t, b, "order"))

	id, err := mv.resolve("customer")
	require.NoError(t, err)
	assert.Equal(t, "customer", id)

	id, err = mv.resolve("Customer")
	require.NoError(t, err)
	assert.Equal(t, "customer", id)

	id, err = mv.resolve("nowhere")
	require.NoError(t, err)
	assert.Equal(t, "nowhere", id, "unknown text is passed through for the command to reject")

	_, err = mv.resolve("")
	assert.Error(t, err)

	typeText(mv, "m")
	assert.IsType(t, MoveErrMsg{}, submit(t, mv), "already owned by m")
}

func TestDeleteModelPlan(t *testing.T) {
	b, repo := loadedBrowser(t)
	d := NewDeleteModel(repo)
	d.SetTarget(nodeOf(t, b, "order"))

	assert.Equal(t, 1, d.owned)
	require.Len(t, d.cascade, 1)
	assert.Equal(t, "dep", d.cascade[0].ID())
	assert.Contains(t, d.View(), "Also deleted")
	assert.Contains(t, d.View(), "n/esc")

	_, cmd := d.Update(keyRunes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, SwitchToBrowserMsg{}, cmd())
	assert.NotNil(t, repo.Get("order"))

	_, cmd = d.Update(keyRunes("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, DeleteSuccessMsg{}, cmd())
	assert.Nil(t, repo.Get("order"))
	assert.Nil(t, repo.Get("dep"))
}

func TestDeleteModelRoot(t *testing.T) {
	b, repo := loadedBrowser(t)
	d := NewDeleteModel(repo)
	d.SetTarget(nodeOf(t, b, "p"))

	require.Error(t, d.planErr)
	assert.IsType(t, DeleteErrMsg{}, d.doDelete())
}

func TestSearchModel(t *testing.T) {
	s := NewSearchModel(testRepo(t))
	s.Reset()

	typeText(s, "or")
	require.Equal(t, "or", s.input.Value())

	msg := s.search("or")()
	require.IsType(t, searchResultsMsg{}, msg)
	s.Update(searchResultsMsg{query: "o"})
	require.Nil(t, s.results, "stale results are dropped")
	s.Update(msg)
	require.NotEmpty(t, s.results)
	assert.Equal(t, "order", s.results[0].ID)

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "order", cmd().(SearchSelectMsg).Result.ID)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		query, text, typ string
	}{
		{"order", "order", ""},
		{"@Class ord", "ord", "Class"},
		{"@Class", "", "Class"},
		{"@Property  total ", "total", "Property"},
	}
	for _, tt := range tests {
		text, typ := parseQuery(tt.query)
		assert.Equal(t, tt.text, text, tt.query)
		assert.Equal(t, tt.typ, typ, tt.query)
	}
}

func TestPaginator(t *testing.T) {
	p := NewPaginator(3)
	p.SetTotal(10)

	for range 4 {
		p.CursorDown()
	}
	start, end := p.VisibleRange()
	assert.Equal(t, 4, p.Cursor())
	assert.Equal(t, []int{2, 5}, []int{start, end})

	p.PageDown()
	p.PageDown()
	assert.Equal(t, 9, p.Cursor())
	assert.False(t, p.CursorDown())

	p.SetTotal(4)
	assert.Equal(t, 3, p.Cursor())
	start, end = p.VisibleRange()
	assert.Equal(t, []int{1, 4}, []int{start, end})

	p.SetPageSize(10)
	start, _ = p.VisibleRange()
	assert.Equal(t, 0, start)
}
