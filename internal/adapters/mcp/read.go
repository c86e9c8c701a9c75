package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"modelrepo/internal/application"
	"modelrepo/internal/application/commands"
	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
)

// Workspace is the session the tools act on. The repository is not safe for
// concurrent use, so every tool call holds the workspace lock.
type Workspace struct {
	mu      sync.Mutex
	session *application.Session
}

// NewWorkspace wraps an open session for the MCP tools.
func NewWorkspace(session *application.Session) *Workspace {
	return &Workspace{session: session}
}

func (w *Workspace) locked(fn server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		return fn(ctx, req)
	}
}

// RegisterReadTools adds all read-only model tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, w *Workspace) {
	s.AddTool(getTool(), w.locked(w.getHandler))
	s.AddTool(selectTool(), w.locked(w.selectHandler))
	s.AddTool(searchTool(), w.locked(w.searchHandler))
	s.AddTool(refsTool(), w.locked(w.refsHandler))
	s.AddTool(treeTool(), w.locked(w.treeHandler))
	s.AddTool(relationshipsTool(), w.locked(w.relationshipsHandler))
	s.AddTool(viewsTool(), w.locked(w.viewsHandler))
}

// --- get ---

func getTool() mcp.Tool {
	return mcp.NewTool("get",
		mcp.WithDescription("Return one element and its owned subtree as document JSON."),
		mcp.WithString("id",
			mcp.Description("Element id"),
			mcp.Required(),
		),
	)
}

func (w *Workspace) getHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return toolError(fmt.Errorf("id is required"))
	}
	repo := w.session.Repo
	e := repo.Get(id)
	if e == nil {
		return toolError(&application.NotFoundError{ID: id})
	}
	data, err := codec.Marshal(repo.SerializeElement(e))
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// --- select ---

func selectTool() mcp.Tool {
	return mcp.NewTool("select",
		mcp.WithDescription("Evaluate a selector such as 'Domain::Order.attributes' or '@Model::@Class[isAbstract=true]' and list the matching elements."),
		mcp.WithString("selector",
			mcp.Description("Selector expression"),
			mcp.Required(),
		),
	)
}

func (w *Workspace) selectHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector := req.GetString("selector", "")
	if selector == "" {
		return toolError(fmt.Errorf("selector is required"))
	}
	results, err := commands.NewSelectCommand(w.session.Repo, selector).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return formatResults(results)
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Fuzzy search element names. Returns the best matches first."),
		mcp.WithString("query",
			mcp.Description("Search query, at least two characters"),
			mcp.Required(),
		),
		mcp.WithString("type",
			mcp.Description("Only match elements of this type or its subtypes (e.g. Class, Relationship)"),
		),
	)
}

func (w *Workspace) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return toolError(fmt.Errorf("query is required"))
	}

	results, err := commands.NewSearchCommand(w.session.Repo, query, req.GetString("type", "")).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "%s  %s  %s\n", r.ID, r.Type, r.Path)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- refs ---

func refsTool() mcp.Tool {
	return mcp.NewTool("refs",
		mcp.WithDescription("List the elements holding references to an element, with the number of slots each holds."),
		mcp.WithString("id",
			mcp.Description("Element id"),
			mcp.Required(),
		),
	)
}

func (w *Workspace) refsHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs, err := commands.NewRefsCommand(w.session.Repo, req.GetString("id", "")).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	if len(refs.Referrers) == 0 {
		return mcp.NewToolResultText("No references."), nil
	}

	ids := make([]string, 0, len(refs.Referrers))
	for id := range refs.Referrers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		label := id
		if e := w.session.Repo.Get(id); e != nil {
			label = fmt.Sprintf("%s  %s  %s", id, e.TypeName(), domain.NameOf(e))
		}
		fmt.Fprintf(&sb, "%s  x%d\n", label, refs.Referrers[id])
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the ownership tree of the document, or of one element."),
		mcp.WithString("id",
			mcp.Description("Element to start from. Omit for the project root."),
		),
		mcp.WithNumber("depth",
			mcp.Description("Levels to show below the start element. 0 shows everything."),
		),
	)
}

func (w *Workspace) treeHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := commands.NewBuildTreeCommand(w.session.Repo).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	if id := req.GetString("id", ""); id != "" {
		if root = root.Find(id); root == nil {
			return toolError(&application.NotFoundError{ID: id})
		}
	}

	var sb strings.Builder
	renderTree(&sb, root, "", req.GetInt("depth", 0))
	return mcp.NewToolResultText(sb.String()), nil
}

func renderTree(sb *strings.Builder, node *domain.TreeNode, prefix string, depth int) {
	fmt.Fprintf(sb, "%s%s  %s  %s\n", prefix, node.ID, node.Type, node.Label())
	if depth == 1 {
		if len(node.Children) > 0 {
			fmt.Fprintf(sb, "%s  … %d children\n", prefix, len(node.Children))
		}
		return
	}
	for _, child := range node.Children {
		renderTree(sb, child, prefix+"  ", max(depth-1, 0))
	}
}

// --- relationships ---

func relationshipsTool() mcp.Tool {
	return mcp.NewTool("relationships",
		mcp.WithDescription("List the relationships attached to a model element (dependencies, generalizations, associations)."),
		mcp.WithString("id",
			mcp.Description("Model element id"),
			mcp.Required(),
		),
		mcp.WithString("type",
			mcp.Description("Only list relationships of this type"),
		),
	)
}

func (w *Workspace) relationshipsHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := w.session.Repo
	e, err := w.element(req)
	if err != nil {
		return toolError(err)
	}
	typ := req.GetString("type", "")
	if typ != "" {
		if _, ok := repo.Registry().Lookup(typ); !ok {
			return toolError(&application.ValidationError{Field: "type", Message: "unknown type: " + typ})
		}
	}

	var results []domain.SearchResult
	for _, rel := range repo.GetRelationshipsOf(e, func(r domain.Element) bool {
		return typ == "" || repo.Registry().IsKindOf(r.TypeName(), typ)
	}) {
		results = append(results, application.ToSearchResult(rel))
	}
	return formatResults(results)
}

// --- views ---

func viewsTool() mcp.Tool {
	return mcp.NewTool("views",
		mcp.WithDescription("List the diagram views presenting a model element."),
		mcp.WithString("id",
			mcp.Description("Model element id"),
			mcp.Required(),
		),
	)
}

func (w *Workspace) viewsHandler(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e, err := w.element(req)
	if err != nil {
		return toolError(err)
	}
	var results []domain.SearchResult
	for _, v := range w.session.Repo.GetViewsOf(e) {
		results = append(results, application.ToSearchResult(v))
	}
	return formatResults(results)
}

// --- helpers ---

func (w *Workspace) element(req mcp.CallToolRequest) (domain.Element, error) {
	id := req.GetString("id", "")
	if err := application.ValidateRequired("id", id); err != nil {
		return nil, err
	}
	e := w.session.Repo.Get(id)
	if e == nil {
		return nil, &application.NotFoundError{ID: id}
	}
	return e, nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatResults(results []domain.SearchResult) (*mcp.CallToolResult, error) {
	if len(results) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "%s  %s  %s\n", r.ID, r.Type, r.Path)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
