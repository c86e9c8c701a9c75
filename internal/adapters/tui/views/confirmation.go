package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/styles"
	"modelrepo/internal/domain"
)

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// ConfirmationModel provides a base for confirmation-style views such as delete or discard
type ConfirmationModel struct {
	ViewState
	TargetNode *domain.TreeNode
	Keys       ConfirmKeyMap
}

// NewConfirmationModel creates a new confirmation model with default keys
func NewConfirmationModel() ConfirmationModel {
	return ConfirmationModel{
		Keys: DefaultConfirmKeys,
	}
}

// SetTarget sets the target node for the confirmation
func (m *ConfirmationModel) SetTarget(node *domain.TreeNode) {
	m.TargetNode = node
}

// HandleKeyMsg processes key messages for confirmation views.
// Returns (handled, cmd) where handled is true if the key was processed.
func (m *ConfirmationModel) HandleKeyMsg(msg tea.KeyMsg, onConfirm, onCancel func() tea.Msg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		return true, func() tea.Msg { return onCancel() }
	case key.Matches(msg, m.Keys.Confirm):
		return true, func() tea.Msg { return onConfirm() }
	}
	return false, nil
}

// Prompt renders question followed by the confirm and cancel keys
func (m *ConfirmationModel) Prompt(question string) string {
	return question + " " + RenderHelpLine(m.Keys.Confirm, m.Keys.Cancel)
}

// RenderTargetInfo renders the action and the element it applies to
func RenderTargetInfo(node *domain.TreeNode, action string) string {
	if node == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.InputLabel.Render(action + " " + node.Type + ":"))
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(node.Label())
	b.WriteString(" ")
	b.WriteString(styles.MutedText.Render(node.ID))

	return b.String()
}
