package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/styles"
	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
	"modelrepo/internal/repository"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	New      key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Move     key.Binding
	Undo     key.Binding
	Redo     key.Binding
	Copy     key.Binding
	Editor   key.Binding
	Save     key.Binding
	Search   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Move: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "redo"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy id"),
	),
	Editor: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit file"),
	),
	Save: key.NewBinding(
		key.WithKeys("s", "ctrl+s"),
		key.WithHelp("s", "save"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// chrome is the number of screen rows taken by everything but the tree
const chrome = 9

// BrowserModel is the model for the tree browser view
type BrowserModel struct {
	ViewState
	repo      *repository.Repository
	title     string
	root      *domain.TreeNode
	flatNodes []*domain.TreeNode
	pager     *Paginator
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(repo *repository.Repository, title string) *BrowserModel {
	return &BrowserModel{
		repo:  repo,
		title: title,
		pager: NewPaginator(20),
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadTree("")
}

// loadTree rebuilds the tree from the repository. The expansion state of the
// current tree carries over, and selectID (or the current selection) stays
// selected when it still exists.
func (m *BrowserModel) loadTree(selectID string) tea.Cmd {
	var expanded []string
	if m.root != nil {
		expanded = m.root.ExpandedIDs()
	}
	if selectID == "" {
		if node := m.SelectedNode(); node != nil {
			selectID = node.ID
		}
	}
	return func() tea.Msg {
		root, err := commands.NewBuildTreeCommand(m.repo).Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		root.RestoreExpanded(expanded)
		return treeLoadedMsg{root: root, selectID: selectID}
	}
}

type treeLoadedMsg struct {
	root     *domain.TreeNode
	selectID string
}

type errMsg struct {
	err error
}

// successMsg reports a completed edit; the tree is rebuilt to show it
type successMsg struct {
	message string
}

// statusMsg reports something that did not change the model
type statusMsg struct {
	message string
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case treeLoadedMsg:
		m.root = msg.root
		m.root.Expand()
		if node := m.root.Find(msg.selectID); node != nil {
			node.Reveal()
		}
		m.refreshFlatNodes()
		m.selectID(msg.selectID)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case successMsg:
		m.SetMessage(msg.message, false)
		return m, m.loadTree("")

	case statusMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	node := m.SelectedNode()

	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return send(QuitRequestMsg{})

	case key.Matches(msg, BrowserKeys.Up):
		m.pager.CursorUp()

	case key.Matches(msg, BrowserKeys.Down):
		m.pager.CursorDown()

	case key.Matches(msg, BrowserKeys.PageUp):
		m.pager.PageUp()

	case key.Matches(msg, BrowserKeys.PageDown):
		m.pager.PageDown()

	case key.Matches(msg, BrowserKeys.Left):
		if node == nil {
			return nil
		}
		if node.IsExpanded && len(node.Children) > 0 {
			node.Collapse()
			m.refreshFlatNodes()
		} else if node.Parent != nil {
			m.selectID(node.Parent.ID)
		}

	case key.Matches(msg, BrowserKeys.Right):
		if node != nil && len(node.Children) > 0 && !node.IsExpanded {
			node.Expand()
			m.refreshFlatNodes()
		}

	case key.Matches(msg, BrowserKeys.Enter):
		if node != nil && len(node.Children) > 0 {
			node.Toggle()
			m.refreshFlatNodes()
		}

	case key.Matches(msg, BrowserKeys.New):
		if node != nil {
			return send(SwitchToCreateMsg{ParentNode: node})
		}

	case key.Matches(msg, BrowserKeys.Rename):
		if node == nil {
			return nil
		}
		e := m.repo.Get(node.ID)
		if e == nil {
			return nil
		}
		if elig := commands.CheckRenameEligibility(e); !elig.CanRename {
			m.SetMessage(elig.Reason, true)
			return nil
		}
		return send(SwitchToRenameMsg{Node: node})

	case key.Matches(msg, BrowserKeys.Delete):
		if node == nil {
			return nil
		}
		if node.Parent == nil {
			m.SetMessage("The project root cannot be deleted", true)
			return nil
		}
		return send(SwitchToDeleteMsg{Node: node})

	case key.Matches(msg, BrowserKeys.Move):
		if node != nil && node.Parent != nil {
			return send(SwitchToMoveMsg{SourceNode: node})
		}

	case key.Matches(msg, BrowserKeys.Undo):
		return m.history(commands.NewUndoCommand(m.repo).Execute)

	case key.Matches(msg, BrowserKeys.Redo):
		return m.history(commands.NewRedoCommand(m.repo).Execute)

	case key.Matches(msg, BrowserKeys.Copy):
		if node != nil {
			return copyID(node.ID)
		}

	case key.Matches(msg, BrowserKeys.Editor):
		return send(OpenEditorMsg{})

	case key.Matches(msg, BrowserKeys.Save):
		return send(SaveRequestMsg{})

	case key.Matches(msg, BrowserKeys.Search):
		return send(SwitchToSearchMsg{})

	case key.Matches(msg, BrowserKeys.Help):
		return send(SwitchToHelpMsg{})
	}
	return nil
}

func (m *BrowserModel) history(run func(context.Context) (*commands.HistoryResult, error)) tea.Cmd {
	return func() tea.Msg {
		result, err := run(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return successMsg{result.Message}
	}
}

func copyID(id string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(id); err != nil {
			return errMsg{fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		return statusMsg{fmt.Sprintf("Copied %s", id)}
	}
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// SelectedNode returns the node under the cursor
func (m *BrowserModel) SelectedNode() *domain.TreeNode {
	cursor := m.pager.Cursor()
	if cursor >= 0 && cursor < len(m.flatNodes) {
		return m.flatNodes[cursor]
	}
	return nil
}

func (m *BrowserModel) selectID(id string) {
	for i, n := range m.flatNodes {
		if n.ID == id {
			m.pager.SetCursor(i)
			return
		}
	}
}

func (m *BrowserModel) refreshFlatNodes() {
	if m.root == nil {
		return
	}
	current := m.SelectedNode()
	m.flatNodes = m.root.Flatten()
	m.pager.SetTotal(len(m.flatNodes))
	if current != nil {
		m.selectID(current.ID)
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	if m.root == nil {
		if m.Message != "" {
			return styles.App.Render(RenderMessage(m.Message, m.MessageErr))
		}
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	start, end := m.pager.VisibleRange()
	for i := start; i < end; i++ {
		b.WriteString(m.renderNode(m.flatNodes[i], i == m.pager.Cursor()))
		b.WriteString("\n")
	}
	if end < len(m.flatNodes) {
		b.WriteString(RenderMuted(fmt.Sprintf("  … %d more", len(m.flatNodes)-end)))
		b.WriteString("\n")
	}

	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		BrowserKeys.New, BrowserKeys.Rename, BrowserKeys.Delete, BrowserKeys.Move,
		BrowserKeys.Undo, BrowserKeys.Save, BrowserKeys.Search, BrowserKeys.Help, BrowserKeys.Quit,
	))

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderStatus() string {
	var b strings.Builder
	if m.repo.IsModified() {
		b.WriteString(styles.StatusModified.Render("modified"))
	}
	status := fmt.Sprintf("%s  %d elements", m.title, m.repo.Len())
	if op := m.repo.PeekUndo(); op != nil {
		status += fmt.Sprintf("  last: %s", op.Name)
	}
	b.WriteString(styles.StatusBar.Render(status))
	return b.String()
}

func (m *BrowserModel) renderNode(node *domain.TreeNode, selected bool) string {
	indent := strings.Repeat("  ", node.Depth())

	var prefix string
	switch {
	case len(node.Children) == 0:
		prefix = styles.TreeLeaf
	case node.IsExpanded:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := node.Label()
	if node.Name != "" {
		text += " " + styles.NodeType.Render(node.Type)
	}
	if width := m.Width - len(indent) - 8; width > 0 {
		text = Truncate(text, width)
	}

	styled := styles.NodeStyle(categoryOf(m.repo.Registry(), node.Type)).Render(text)
	if selected {
		styled = styles.NodeSelected.Render(node.Label())
	}

	return fmt.Sprintf("%s%s%s", indent, styles.TreeBranch.Render(prefix), styled)
}

// categoryOf groups element types for coloring
func categoryOf(reg *domain.Registry, typ string) styles.Category {
	switch {
	case reg.IsKindOf(typ, domain.TypeView):
		return styles.CategoryView
	case reg.IsKindOf(typ, domain.TypeRelationship), typ == domain.TypeAssociationEnd:
		return styles.CategoryRelationship
	case typ == domain.TypeClass:
		return styles.CategoryClassifier
	case typ == domain.TypeProject, typ == domain.TypeModel, typ == domain.TypePackage, typ == domain.TypeDiagram:
		return styles.CategoryContainer
	default:
		return styles.CategoryFeature
	}
}

// SetSize updates the view dimensions and the number of visible rows
func (m *BrowserModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.pager.SetPageSize(height - chrome)
}

// SetTitle sets the text shown in the status bar
func (m *BrowserModel) SetTitle(title string) {
	m.title = title
}

// Reload rebuilds the tree, keeping the selection and expansion state
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadTree("")
}

// Reveal rebuilds the tree and selects id, expanding its ancestors
func (m *BrowserModel) Reveal(id string) tea.Cmd {
	return m.loadTree(id)
}

// Messages for view switching
type SwitchToCreateMsg struct {
	ParentNode *domain.TreeNode
}

type SwitchToRenameMsg struct {
	Node *domain.TreeNode
}

type SwitchToDeleteMsg struct {
	Node *domain.TreeNode
}

type SwitchToMoveMsg struct {
	SourceNode *domain.TreeNode
}

type SwitchToSearchMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}

// SaveRequestMsg asks the app to write the document
type SaveRequestMsg struct{}

// OpenEditorMsg asks the app to open the document file in $EDITOR
type OpenEditorMsg struct{}

// QuitRequestMsg asks the app to quit, confirming when changes are unsaved
type QuitRequestMsg struct{}
