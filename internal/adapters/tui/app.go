package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/tui/views"
	"modelrepo/internal/application"
	"modelrepo/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewCreate
	ViewRename
	ViewDelete
	ViewMove
	ViewSearch
	ViewHelp
	ViewQuit
)

// App is the main TUI application model
type App struct {
	session *application.Session
	editor  ports.EditorOpener

	state   ViewState
	browser *views.BrowserModel
	create  *views.CreateModel
	rename  *views.RenameModel
	remove  *views.DeleteModel
	move    *views.MoveModel
	search  *views.SearchModel
	help    *views.HelpModel
	quit    *views.QuitModel

	width  int
	height int
}

// NewApp creates a new TUI application over an open session. A nil editor
// disables opening the document file.
func NewApp(session *application.Session, ed ports.EditorOpener) *App {
	repo := session.Repo
	return &App{
		session: session,
		editor:  ed,
		state:   ViewBrowser,
		browser: views.NewBrowserModel(repo, session.Path()),
		create:  views.NewCreateModel(repo),
		rename:  views.NewRenameModel(repo),
		remove:  views.NewDeleteModel(repo),
		move:    views.NewMoveModel(repo),
		search:  views.NewSearchModel(repo),
		help:    views.NewHelpModel(),
		quit:    views.NewQuitModel(session.Path()),
	}
}

// State returns the view currently shown
func (a *App) State() ViewState {
	return a.state
}

// Browser returns the tree browser view
func (a *App) Browser() *views.BrowserModel {
	return a.browser
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.create.SetSize(msg.Width, msg.Height)
		a.rename.SetSize(msg.Width, msg.Height)
		a.remove.SetSize(msg.Width, msg.Height)
		a.move.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		a.quit.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToCreateMsg:
		a.state = ViewCreate
		a.create.SetParent(msg.ParentNode)
		return a, a.create.Init()

	case views.SwitchToRenameMsg:
		a.state = ViewRename
		a.rename.SetTarget(msg.Node)
		return a, a.rename.Init()

	case views.SwitchToDeleteMsg:
		a.state = ViewDelete
		a.remove.SetTarget(msg.Node)
		return a, nil

	case views.SwitchToMoveMsg:
		a.state = ViewMove
		a.move.SetSource(msg.SourceNode)
		return a, a.move.Init()

	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		a.search.Reset()
		return a, a.search.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, a.browser.Reload()

	// Results of the editing views
	case views.CreateSuccessMsg:
		return a, a.backToBrowser(msg.Message, msg.ID)

	case views.CreateErrMsg:
		a.create.SetError(msg.Err)
		return a, nil

	case views.RenameSuccessMsg:
		return a, a.backToBrowser(msg.Message, msg.ID)

	case views.RenameErrMsg:
		a.rename.SetError(msg.Err)
		return a, nil

	case views.DeleteSuccessMsg:
		return a, a.backToBrowser(msg.Message, "")

	case views.DeleteErrMsg:
		a.remove.SetError(msg.Err)
		return a, nil

	case views.MoveSuccessMsg:
		return a, a.backToBrowser(msg.Message, msg.ID)

	case views.MoveErrMsg:
		a.move.SetError(msg.Err)
		return a, nil

	case views.SearchSelectMsg:
		a.state = ViewBrowser
		return a, a.browser.Reveal(msg.Result.ID)

	// Document level requests from the browser
	case views.SaveRequestMsg:
		if err := a.session.Save(); err != nil {
			a.browser.SetError(err)
			return a, nil
		}
		a.browser.SetMessage(fmt.Sprintf("Saved %s", a.session.Path()), false)
		return a, nil

	case views.OpenEditorMsg:
		return a, a.openEditor()

	case editorFinishedMsg:
		if msg.err != nil {
			a.browser.SetError(msg.err)
			return a, nil
		}
		if err := a.session.Reload(); err != nil {
			a.browser.SetError(err)
			return a, nil
		}
		a.browser.SetMessage(fmt.Sprintf("Reloaded %s", a.session.Path()), false)
		return a, a.browser.Reload()

	case views.QuitRequestMsg:
		if a.session.Repo.IsModified() {
			a.state = ViewQuit
			a.quit.SetPath(a.session.Path())
			return a, nil
		}
		return a, tea.Quit

	case views.QuitConfirmedMsg:
		return a, tea.Quit
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewCreate:
		_, cmd = a.create.Update(msg)
	case ViewRename:
		_, cmd = a.rename.Update(msg)
	case ViewDelete:
		_, cmd = a.remove.Update(msg)
	case ViewMove:
		_, cmd = a.move.Update(msg)
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	case ViewQuit:
		_, cmd = a.quit.Update(msg)
	}

	return a, cmd
}

func (a *App) backToBrowser(message, selectID string) tea.Cmd {
	a.state = ViewBrowser
	a.browser.SetMessage(message, false)
	return a.browser.Reveal(selectID)
}

type editorFinishedMsg struct{ err error }

// openEditor hands the terminal to $EDITOR on the document file and reloads
// it afterwards. Unsaved changes would be lost, so they block the request.
func (a *App) openEditor() tea.Cmd {
	if a.editor == nil {
		a.browser.SetMessage("No editor configured", true)
		return nil
	}
	if a.session.Repo.IsModified() {
		a.browser.SetError(fmt.Errorf("%w: save before editing the file", application.ErrUnsavedChanges))
		return nil
	}

	cmd, err := a.editor.Command(a.session.Path())
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewCreate:
		return a.create.View()
	case ViewRename:
		return a.rename.View()
	case ViewDelete:
		return a.remove.View()
	case ViewMove:
		return a.move.View()
	case ViewSearch:
		return a.search.View()
	case ViewHelp:
		return a.help.View()
	case ViewQuit:
		return a.quit.View()
	default:
		return a.browser.View()
	}
}
