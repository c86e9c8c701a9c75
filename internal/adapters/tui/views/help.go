package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, send(SwitchToBrowserMsg{})
		}
	}

	return m, nil
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

var helpSections = []helpSection{
	{"Navigation", []key.Binding{
		BrowserKeys.Up, BrowserKeys.Down, BrowserKeys.PageUp, BrowserKeys.PageDown,
		BrowserKeys.Left, BrowserKeys.Right, BrowserKeys.Enter,
	}},
	{"Editing", []key.Binding{
		BrowserKeys.New, BrowserKeys.Rename, BrowserKeys.Delete, BrowserKeys.Move,
		BrowserKeys.Undo, BrowserKeys.Redo,
	}},
	{"Document", []key.Binding{
		BrowserKeys.Save, BrowserKeys.Editor, BrowserKeys.Copy, BrowserKeys.Search,
	}},
	{"General", []key.Binding{
		BrowserKeys.Help, BrowserKeys.Quit,
	}},
}

// View renders the help view
func (m *HelpModel) View() string {
	v := NewViewBuilder().
		Title("Model Repository Help").
		Subtitle("Browse and edit a model document")

	for _, s := range helpSections {
		v.Line(styles.InputLabel.Render(s.title))
		for _, b := range s.bindings {
			v.Raw(helpLine(b.Help().Key, b.Help().Desc))
		}
		v.BlankLine()
	}

	v.Line(styles.InputLabel.Render("Search"))
	v.Muted("  Prefix a query with @Type to search one type, e.g. \"@Class ord\".")
	v.Muted("  Every edit is a single undoable step. Save writes the document file.")
	v.BlankLine()

	return v.Raw(styles.HelpDesc.Render("Press ")).
		Raw(styles.HelpKey.Render("esc")).
		Raw(styles.HelpDesc.Render(" or ")).
		Raw(styles.HelpKey.Render("?")).
		Raw(styles.HelpDesc.Render(" to close")).
		String()
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if n := len([]rune(s)); n < length {
		return s + strings.Repeat(" ", length-n)
	}
	return s
}
