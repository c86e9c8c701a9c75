package views

import (
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/styles"
)

// QuitModel asks before quitting with unsaved changes
type QuitModel struct {
	ConfirmationModel
	path string
}

// NewQuitModel creates a new quit confirmation model
func NewQuitModel(path string) *QuitModel {
	return &QuitModel{
		ConfirmationModel: NewConfirmationModel(),
		path:              path,
	}
}

// SetPath updates the document path shown in the prompt
func (m *QuitModel) SetPath(path string) {
	m.path = path
}

// Init initializes the quit view
func (m *QuitModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the quit view
func (m *QuitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg,
			func() tea.Msg { return QuitConfirmedMsg{} },
			func() tea.Msg { return SwitchToBrowserMsg{} },
		); handled {
			return m, cmd
		}
	}
	return m, nil
}

// QuitConfirmedMsg is sent when the user agrees to drop unsaved changes
type QuitConfirmedMsg struct{}

// View renders the quit confirmation
func (m *QuitModel) View() string {
	return NewViewBuilder().
		Title("Unsaved Changes").
		Line(styles.ErrorMsg.Render(m.path + " has changes that were not saved.")).
		BlankLine().
		Raw(m.Prompt("Quit anyway?")).
		String()
}
