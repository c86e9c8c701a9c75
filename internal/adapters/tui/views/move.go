package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// MoveModel is the model for the move view
type MoveModel struct {
	ViewState
	repo       *repository.Repository
	sourceNode *domain.TreeNode
	targets    []domain.Element
	form       *InputForm
}

// NewMoveModel creates a new move view model
func NewMoveModel(repo *repository.Repository) *MoveModel {
	return &MoveModel{
		repo: repo,
		form: NewInputForm(NewInputField("Destination:", "name or id", 100)),
	}
}

// SetSource sets the element to move and offers every valid destination
func (m *MoveModel) SetSource(node *domain.TreeNode) {
	m.sourceNode = node
	m.ClearMessage()
	m.targets = commands.MoveTargets(m.repo, node.ID)

	var suggestions []string
	for _, t := range m.targets {
		if name := domain.NameOf(t); name != "" {
			suggestions = append(suggestions, name)
		}
		suggestions = append(suggestions, t.ID())
	}
	m.form.Reset(0)
	m.form.SetSuggestions(0, suggestions)
}

// resolve turns the typed destination into an element id. Ids win over
// names; a name must match exactly one destination.
func (m *MoveModel) resolve(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("destination is required")
	}
	var byName []domain.Element
	for _, t := range m.targets {
		if t.ID() == text {
			return text, nil
		}
		if domain.NameOf(t) == text {
			byName = append(byName, t)
		}
	}
	switch len(byName) {
	case 0:
		// Let the command explain why an id is not a valid destination
		return text, nil
	case 1:
		return byName[0].ID(), nil
	default:
		return "", fmt.Errorf("%d destinations are named %q, use an id", len(byName), text)
	}
}

// Init initializes the move view
func (m *MoveModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the move view
func (m *MoveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, send(SwitchToBrowserMsg{})
		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.move()
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *MoveModel) move() tea.Cmd {
	if m.sourceNode == nil {
		return send(MoveErrMsg{Err: fmt.Errorf("no source selected")})
	}
	id := m.sourceNode.ID
	dest, err := m.resolve(m.form.Value(0))
	if err != nil {
		return send(MoveErrMsg{Err: err})
	}
	return func() tea.Msg {
		result, err := commands.NewMoveCommand(m.repo, id, dest).Execute(context.Background())
		if err != nil {
			return MoveErrMsg{Err: err}
		}
		return MoveSuccessMsg{ID: id, Message: result.Message}
	}
}

// MoveSuccessMsg indicates successful move
type MoveSuccessMsg struct {
	ID      string
	Message string
}

// MoveErrMsg indicates an error during move
type MoveErrMsg struct {
	Err error
}

// View renders the move view
func (m *MoveModel) View() string {
	v := NewViewBuilder().
		Title("Move").
		Line(RenderTargetInfo(m.sourceNode, "Move")).
		BlankLine()

	if len(m.targets) == 0 {
		v.Muted("No element can hold it.").BlankLine()
	} else {
		v.Subtitle(fmt.Sprintf("%d possible destinations, tab completes", len(m.targets)))
	}

	return v.Raw(m.form.RenderFields()).
		BlankLine().
		BlankLine().
		Message(m.Message, m.MessageErr).
		Raw(m.form.RenderHelp("move")).
		String()
}
