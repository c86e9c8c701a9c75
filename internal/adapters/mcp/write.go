package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"modelrepo/internal/application/commands"
	"modelrepo/internal/domain"
)

// RegisterWriteTools adds all tools that change the document to the MCP
// server. Changes stay in memory until save is called.
func RegisterWriteTools(s *server.MCPServer, w *Workspace) {
	s.AddTool(createTool(), w.locked(w.createHandler))
	s.AddTool(renameTool(), w.locked(w.renameHandler))
	s.AddTool(deleteTool(), w.locked(w.deleteHandler))
	s.AddTool(moveTool(), w.locked(w.moveHandler))
	s.AddTool(undoTool(), w.locked(w.undoHandler))
	s.AddTool(redoTool(), w.locked(w.redoHandler))
	s.AddTool(saveTool(), w.locked(w.saveHandler))
}

// --- create ---

func createTool() mcp.Tool {
	return mcp.NewTool("create",
		mcp.WithDescription("Create an element. Give parent_id for a child element, source_id and target_id for a relationship (Dependency, Generalization, Association), or parent_id and model_id to place a view of model_id on a diagram."),
		mcp.WithString("type",
			mcp.Description("Element type (e.g. Model, Package, Class, Property, Method, Diagram, Dependency)"),
		),
		mcp.WithString("name",
			mcp.Description("Name of the new element"),
		),
		mcp.WithString("parent_id",
			mcp.Description("Owner of the new element, or the diagram for a view"),
		),
		mcp.WithString("source_id",
			mcp.Description("Relationship source"),
		),
		mcp.WithString("target_id",
			mcp.Description("Relationship target"),
		),
		mcp.WithString("model_id",
			mcp.Description("Model element to show on the diagram"),
		),
	)
}

func (w *Workspace) createHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := w.session.Repo
	typ := req.GetString("type", "")
	name := req.GetString("name", "")
	parentID := req.GetString("parent_id", "")

	var (
		result *commands.CreateResult
		err    error
	)
	switch {
	case req.GetString("model_id", "") != "":
		result, err = commands.NewCreateViewCommand(repo, parentID, req.GetString("model_id", ""), 0, 0).Execute(ctx)
	case typ != "" && repo.Registry().IsKindOf(typ, domain.TypeRelationship):
		result, err = commands.NewCreateRelationshipCommand(repo, typ,
			req.GetString("source_id", ""), req.GetString("target_id", ""), name).Execute(ctx)
	default:
		result, err = commands.NewCreateElementCommand(repo, parentID, typ, name).Execute(ctx)
	}
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s (id %s)", result.Message, result.Element.ID())), nil
}

// --- rename ---

func renameTool() mcp.Tool {
	return mcp.NewTool("rename",
		mcp.WithDescription("Rename a model element."),
		mcp.WithString("id",
			mcp.Description("Element id"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("New name"),
			mcp.Required(),
		),
	)
}

func (w *Workspace) renameHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd := commands.NewRenameCommand(w.session.Repo, req.GetString("id", ""), req.GetString("name", ""))
	result, err := cmd.Execute(ctx)
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(result.Message), nil
}

// --- delete ---

func deleteTool() mcp.Tool {
	return mcp.NewTool("delete",
		mcp.WithDescription("Delete elements with their owned subtrees. Relationships and views left dangling are deleted in the same step."),
		mcp.WithString("id",
			mcp.Description("Element id, or several ids separated by commas"),
			mcp.Required(),
		),
	)
}

func (w *Workspace) deleteHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ids []string
	for _, id := range strings.Split(req.GetString("id", ""), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	result, err := commands.NewDeleteCommand(w.session.Repo, ids...).Execute(ctx)
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(result.Message), nil
}

// --- move ---

func moveTool() mcp.Tool {
	return mcp.NewTool("move",
		mcp.WithDescription("Move an element to a new owner. The owning field is chosen from the destination's type."),
		mcp.WithString("id",
			mcp.Description("Element to move"),
			mcp.Required(),
		),
		mcp.WithString("destination_id",
			mcp.Description("New owner"),
			mcp.Required(),
		),
	)
}

func (w *Workspace) moveHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd := commands.NewMoveCommand(w.session.Repo, req.GetString("id", ""), req.GetString("destination_id", ""))
	result, err := cmd.Execute(ctx)
	if err != nil {
		return toolError(err)
	}

	return mcp.NewToolResultText(result.Message), nil
}

// --- undo / redo ---

func undoTool() mcp.Tool {
	return mcp.NewTool("undo",
		mcp.WithDescription("Revert the most recent change."),
	)
}

func (w *Workspace) undoHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := commands.NewUndoCommand(w.session.Repo).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(result.Message), nil
}

func redoTool() mcp.Tool {
	return mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the most recently undone change."),
	)
}

func (w *Workspace) redoHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := commands.NewRedoCommand(w.session.Repo).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(result.Message), nil
}

// --- save ---

func saveTool() mcp.Tool {
	return mcp.NewTool("save",
		mcp.WithDescription("Write the document to disk."),
		mcp.WithString("path",
			mcp.Description("Save to this path instead, making it the document location"),
		),
	)
}

func (w *Workspace) saveHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		path = w.session.Path()
	}
	if !w.session.Repo.IsModified() && path == w.session.Path() {
		return mcp.NewToolResultText("No changes to save."), nil
	}
	if err := w.session.SaveAs(path); err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved %s", path)), nil
}
