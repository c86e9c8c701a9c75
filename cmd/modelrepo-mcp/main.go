package main

import (
	"context"
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"modelrepo/internal/adapters/filesystem"
	mcpadapter "modelrepo/internal/adapters/mcp"
	"modelrepo/internal/adapters/sqlite"
	"modelrepo/internal/application"
	"modelrepo/internal/config"
	"modelrepo/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.For(logger.ComponentMCP).Fatalw("invalid configuration", "error", err)
	}

	docFlag := flag.String("document", cfg.Document, "path to the model document")
	indexFlag := flag.String("index", cfg.Index, "path to the sqlite index, empty to disable")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr
	logger.Init(logger.Level(cfg.LogLevel), logger.ParseFormat(cfg.LogFormat, logger.FormatJSON), os.Stderr)
	defer logger.Sync()
	log := logger.For(logger.ComponentMCP)

	session, err := application.OpenSession(filesystem.NewStore(), config.ExpandPath(*docFlag),
		application.WithHistoryLimit(cfg.HistoryLimit),
		application.WithLogger(logger.For(logger.ComponentRepository)),
	)
	if err != nil {
		log.Fatalw("failed to open document", "path", *docFlag, "error", err)
	}

	if *indexFlag != "" {
		index, mirror, err := sqlite.OpenMirror(config.ExpandPath(*indexFlag), session.Repo, logger.For(logger.ComponentIndex))
		if err != nil {
			log.Warnw("index disabled", "path", *indexFlag, "error", err)
		} else {
			defer index.Close()
			defer mirror.Detach()
		}
	}

	mcpServer := server.NewMCPServer(
		"modelrepo-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	workspace := mcpadapter.NewWorkspace(session)
	mcpadapter.RegisterReadTools(mcpServer, workspace)
	mcpadapter.RegisterWriteTools(mcpServer, workspace)

	log.Infow("serving", "document", session.Path(), "elements", session.Repo.Len())
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Errorw("server stopped", "error", err)
		return
	}
	if session.Repo.IsModified() {
		log.Warnw("exiting with unsaved changes", "document", session.Path())
	}
}
