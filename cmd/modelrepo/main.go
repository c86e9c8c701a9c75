package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"modelrepo/internal/adapters/editor"
	"modelrepo/internal/adapters/filesystem"
	"modelrepo/internal/adapters/sqlite"
	"modelrepo/internal/adapters/tui"
	"modelrepo/internal/application"
	"modelrepo/internal/config"
	"modelrepo/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	docFlag := flag.String("document", cfg.Document, "path to the model document")
	indexFlag := flag.String("index", cfg.Index, "path to the sqlite index, empty to disable")
	logFlag := flag.String("log", filepath.Join(filepath.Dir(cfg.Index), "modelrepo.log"), "log file")
	flag.Parse()

	if err := run(cfg, *docFlag, *indexFlag, *logFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, docPath, indexPath, logPath string) error {
	// The terminal belongs to the TUI, so logs go to a file
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "modelrepo")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.Init(logger.Level(cfg.LogLevel), logger.ParseFormat(cfg.LogFormat, logger.FormatPretty), logFile)
	defer logger.Sync()
	log := logger.For(logger.ComponentTUI)

	session, err := application.OpenSession(filesystem.NewStore(), config.ExpandPath(docPath),
		application.WithHistoryLimit(cfg.HistoryLimit),
		application.WithLogger(logger.For(logger.ComponentRepository)),
	)
	if err != nil {
		return err
	}
	for _, d := range session.Diagnostics {
		log.Warnw("document diagnostic", "detail", d.String())
	}

	if indexPath != "" {
		index, mirror, err := sqlite.OpenMirror(config.ExpandPath(indexPath), session.Repo, logger.For(logger.ComponentIndex))
		if err != nil {
			log.Warnw("index disabled", "path", indexPath, "error", err)
		} else {
			defer index.Close()
			defer mirror.Detach()
			session.OnReload(func() {
				if _, err := sqlite.Sync(index, session.Repo); err != nil {
					log.Errorw("index resync failed", "error", err)
				}
			})
		}
	}

	app := tui.NewApp(session, editor.NewOpener(cfg.Editor))
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
