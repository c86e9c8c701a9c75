package views

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/styles"
	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// maxPlanLines bounds the cascade listing in the confirmation
const maxPlanLines = 8

// DeleteModel is the model for the delete confirmation view
type DeleteModel struct {
	ConfirmationModel
	repo    *repository.Repository
	cascade []domain.Element
	owned   int
	planErr error
}

// NewDeleteModel creates a new delete view model
func NewDeleteModel(repo *repository.Repository) *DeleteModel {
	return &DeleteModel{
		ConfirmationModel: NewConfirmationModel(),
		repo:              repo,
	}
}

// SetTarget sets the element to delete and works out what goes with it
func (m *DeleteModel) SetTarget(node *domain.TreeNode) {
	m.ConfirmationModel.SetTarget(node)
	m.ClearMessage()
	m.cascade, m.owned, m.planErr = nil, 0, nil

	plan, err := commands.NewDeleteCommand(m.repo, node.ID).Plan()
	if err != nil {
		m.planErr = err
		return
	}
	reg := m.repo.Registry()
	m.owned = len(reg.Subtree(plan[0])) - 1
	m.cascade = plan[1:]
}

// Init initializes the delete view
func (m *DeleteModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the delete view
func (m *DeleteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg,
			m.doDelete,
			func() tea.Msg { return SwitchToBrowserMsg{} },
		)
		if handled {
			return m, cmd
		}
	}

	return m, nil
}

func (m *DeleteModel) doDelete() tea.Msg {
	if m.TargetNode == nil {
		return DeleteErrMsg{Err: fmt.Errorf("no target selected")}
	}
	if m.planErr != nil {
		return DeleteErrMsg{Err: m.planErr}
	}

	result, err := commands.NewDeleteCommand(m.repo, m.TargetNode.ID).Execute(context.Background())
	if err != nil {
		return DeleteErrMsg{Err: err}
	}
	return DeleteSuccessMsg{Message: result.Message}
}

// DeleteSuccessMsg indicates successful deletion
type DeleteSuccessMsg struct {
	Message string
}

// DeleteErrMsg indicates an error during deletion
type DeleteErrMsg struct {
	Err error
}

// View renders the delete confirmation view
func (m *DeleteModel) View() string {
	v := NewViewBuilder().
		Title("Delete Confirmation").
		Line(RenderTargetInfo(m.TargetNode, "Delete")).
		BlankLine()

	if m.planErr != nil {
		return v.Message(m.planErr.Error(), true).
			Raw(RenderHelpLine(m.Keys.Cancel)).
			String()
	}

	if m.owned > 0 {
		v.Muted(fmt.Sprintf("  Its %d owned element(s) are deleted with it.", m.owned))
	}
	if len(m.cascade) > 0 {
		v.Line(styles.InputLabel.Render("Also deleted:"))
		for i, e := range m.cascade {
			if i == maxPlanLines {
				v.Muted(fmt.Sprintf("  … and %d more", len(m.cascade)-maxPlanLines))
				break
			}
			v.Line("  " + styles.NodeType.Render(e.TypeName()) + " " + domain.OwnerPath(e))
		}
	}
	if m.owned > 0 || len(m.cascade) > 0 {
		v.BlankLine()
	}

	return v.Muted("Undo restores everything deleted here.").
		BlankLine().
		Message(m.Message, m.MessageErr).
		Raw(m.Prompt("Are you sure?")).
		String()
}
