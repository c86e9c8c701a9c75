package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// RenameModel is the model for the rename view
type RenameModel struct {
	ViewState
	repo *repository.Repository
	node *domain.TreeNode
	form *InputForm
}

// NewRenameModel creates a new rename view model
func NewRenameModel(repo *repository.Repository) *RenameModel {
	return &RenameModel{
		repo: repo,
		form: NewInputForm(NewInputField("New name:", "Name", 100)),
	}
}

// SetTarget prefills the form with the element's current name
func (m *RenameModel) SetTarget(node *domain.TreeNode) {
	m.node = node
	m.ClearMessage()
	m.form.Reset(0)
	m.form.SetValue(0, node.Name)
	m.form.Fields[0].Input.CursorEnd()
}

// Init initializes the rename view
func (m *RenameModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the rename view
func (m *RenameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, send(SwitchToBrowserMsg{})
		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.rename()
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *RenameModel) rename() tea.Cmd {
	id := m.node.ID
	name := m.form.Value(0)
	return func() tea.Msg {
		result, err := commands.NewRenameCommand(m.repo, id, name).Execute(context.Background())
		if err != nil {
			return RenameErrMsg{Err: err}
		}
		return RenameSuccessMsg{ID: id, Message: result.Message}
	}
}

// RenameSuccessMsg indicates a successful rename
type RenameSuccessMsg struct {
	ID      string
	Message string
}

// RenameErrMsg indicates an error during rename
type RenameErrMsg struct {
	Err error
}

// View renders the rename view
func (m *RenameModel) View() string {
	return NewViewBuilder().
		Title("Rename").
		Line(RenderTargetInfo(m.node, "Rename")).
		BlankLine().
		Raw(m.form.RenderFields()).
		BlankLine().
		BlankLine().
		Message(m.Message, m.MessageErr).
		Raw(m.form.RenderHelp("rename")).
		String()
}
