package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/styles"
	"modelrepo/internal/application/commands"
	"modelrepo/internal/repository"
)

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Copy   key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "go to"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy id"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// maxResults bounds the rendered result list
const maxResults = 10

// SearchModel is the model for the search view. A query may be prefixed
// with "@Type " to restrict the matches to one type.
type SearchModel struct {
	ViewState
	repo    *repository.Repository
	input   textinput.Model
	results []commands.SearchResult
	pager   *Paginator
}

// NewSearchModel creates a new search view model
func NewSearchModel(repo *repository.Repository) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Search names, or @Class name"
	input.Focus()

	return &SearchModel{
		repo:  repo,
		input: input,
		pager: NewPaginator(maxResults),
	}
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset resets the search view
func (m *SearchModel) Reset() {
	m.input.SetValue("")
	m.results = nil
	m.pager.Reset()
	m.ClearMessage()
	m.input.Focus()
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case searchResultsMsg:
		// Drop results for a query the user has typed past
		if msg.query != m.input.Value() {
			return m, nil
		}
		m.results = msg.results
		m.pager.Reset()
		m.pager.SetTotal(len(m.results))
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
		} else {
			m.ClearMessage()
		}
		return m, nil

	case statusMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, send(SwitchToBrowserMsg{})

		case key.Matches(msg, SearchKeys.Up):
			m.pager.CursorUp()
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			m.pager.CursorDown()
			return m, nil

		case key.Matches(msg, SearchKeys.Copy):
			if r, ok := m.selected(); ok {
				return m, copyID(r.ID)
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			if r, ok := m.selected(); ok {
				return m, send(SearchSelectMsg{Result: r})
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)

	query := m.input.Value()
	if query == before {
		return m, cmd
	}
	if len(query) == 0 {
		m.results = nil
		m.pager.Reset()
		return m, cmd
	}
	return m, tea.Batch(cmd, m.search(query))
}

func (m *SearchModel) selected() (commands.SearchResult, bool) {
	i := m.pager.Cursor()
	if i >= 0 && i < len(m.results) {
		return m.results[i], true
	}
	return commands.SearchResult{}, false
}

// parseQuery splits an optional "@Type " prefix off the query
func parseQuery(query string) (text, typeFilter string) {
	if !strings.HasPrefix(query, "@") {
		return query, ""
	}
	typ, rest, _ := strings.Cut(query[1:], " ")
	return strings.TrimSpace(rest), typ
}

func (m *SearchModel) search(query string) tea.Cmd {
	return func() tea.Msg {
		text, typ := parseQuery(query)
		results, err := commands.NewSearchCommand(m.repo, text, typ).Execute(context.Background())
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

type searchResultsMsg struct {
	query   string
	results []commands.SearchResult
	err     error
}

// SearchSelectMsg is sent when a search result is selected
type SearchSelectMsg struct {
	Result commands.SearchResult
}

// View renders the search view
func (m *SearchModel) View() string {
	v := NewViewBuilder().
		Title("Search").
		Raw(styles.InputFocused.Render(m.input.View())).
		BlankLine().
		BlankLine()

	text, _ := parseQuery(m.input.Value())
	switch {
	case len(m.results) > 0:
		v.Subtitle(fmt.Sprintf("%d results", len(m.results)))
		start, end := m.pager.VisibleRange()
		for i := start; i < end; i++ {
			v.Line(m.renderResult(m.results[i], i == m.pager.Cursor()))
		}
		if end < len(m.results) {
			v.Muted(fmt.Sprintf("... and %d more", len(m.results)-end))
		}
	case len(text) >= 2 && m.Message == "":
		v.Muted("No results found")
	case m.Message == "":
		v.Muted("Type at least 2 characters to search")
	}

	return v.BlankLine().
		Message(m.Message, m.MessageErr).
		Raw(RenderHelpLine(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Copy, SearchKeys.Cancel)).
		String()
}

func (m *SearchModel) renderResult(r commands.SearchResult, selected bool) string {
	text := fmt.Sprintf("[%s] %s", r.Type, r.Name)
	if selected {
		return styles.NodeSelected.Render(text)
	}
	return text + " " + styles.MutedText.Render(r.Path)
}
