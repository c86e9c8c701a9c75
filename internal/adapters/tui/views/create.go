package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/styles"
	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

const (
	createFieldType = iota
	createFieldName
)

// CreateModel is the model for the create view
type CreateModel struct {
	ViewState
	repo       *repository.Repository
	parentNode *domain.TreeNode
	allowed    []string
	form       *InputForm
}

// NewCreateModel creates a new create view model
func NewCreateModel(repo *repository.Repository) *CreateModel {
	return &CreateModel{
		repo: repo,
		form: NewInputForm(
			NewInputField("Type:", "Class", 40),
			NewInputField("Name:", "Name", 100),
		),
	}
}

// SetParent sets the parent node for creation and offers the types it can hold
func (m *CreateModel) SetParent(node *domain.TreeNode) {
	m.parentNode = node
	m.ClearMessage()
	m.allowed = commands.CreatableTypes(m.repo.Registry(), node.Type)

	m.form.Reset(createFieldType)
	m.form.SetSuggestions(createFieldType, m.allowed)
	if guess := defaultChildType(node.Type, m.allowed); guess != "" {
		m.form.SetValue(createFieldType, guess)
		m.form.SetFocus(createFieldName)
	}
}

// defaultChildType picks the type most often created under parentType
func defaultChildType(parentType string, allowed []string) string {
	var want string
	switch parentType {
	case domain.TypeProject:
		want = domain.TypeModel
	case domain.TypeModel, domain.TypePackage:
		want = domain.TypeClass
	case domain.TypeClass:
		want = domain.TypeProperty
	case domain.TypeDiagram:
		want = domain.TypeNodeView
	}
	for _, t := range allowed {
		if t == want {
			return t
		}
	}
	return ""
}

// Init initializes the create view
func (m *CreateModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the create view
func (m *CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, send(SwitchToBrowserMsg{})

		case key.Matches(msg, m.form.Keys.Submit):
			return m, m.create()
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *CreateModel) create() tea.Cmd {
	parentID := m.parentNode.ID
	typeName := m.form.Value(createFieldType)
	name := m.form.Value(createFieldName)
	return func() tea.Msg {
		result, err := commands.NewCreateElementCommand(m.repo, parentID, typeName, name).Execute(context.Background())
		if err != nil {
			return CreateErrMsg{Err: err}
		}
		return CreateSuccessMsg{ID: result.Element.ID(), Message: result.Message}
	}
}

// CreateSuccessMsg indicates successful creation
type CreateSuccessMsg struct {
	ID      string
	Message string
}

// CreateErrMsg indicates an error during creation
type CreateErrMsg struct {
	Err error
}

// View renders the create view
func (m *CreateModel) View() string {
	v := NewViewBuilder().Title("Create Element")
	if m.parentNode != nil {
		v.Line(styles.InputLabel.Render("Parent:") + " " + RenderElement(m.parentNode)).BlankLine()
	}
	if len(m.allowed) == 0 {
		v.Muted("Nothing can be created here.").BlankLine()
	} else {
		v.Subtitle(fmt.Sprintf("Allowed: %s", strings.Join(m.allowed, ", ")))
	}
	v.Raw(m.form.RenderFields()).BlankLine().BlankLine()
	return v.Message(m.Message, m.MessageErr).
		Raw(m.form.RenderHelp("create")).
		String()
}
