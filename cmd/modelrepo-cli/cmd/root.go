package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modelrepo/internal/adapters/filesystem"
	"modelrepo/internal/adapters/sqlite"
	"modelrepo/internal/application"
	"modelrepo/internal/config"
	"modelrepo/internal/logger"
)

var (
	cfg          config.Config
	documentPath string
	indexPath    string
	noIndex      bool
	dryRun       bool
	session      *application.Session
	log          *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "modelrepo-cli",
	Short: "CLI for inspecting and editing model documents",
	Long: `modelrepo-cli reads and edits model documents: projects holding models,
packages, classes, relationships and diagrams.

Read commands (tree, show, select, search, refs, validate) leave the document
untouched. Edit commands (create, rename, delete, move) save it afterwards and
record the change in the sqlite index journal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		logger.Init(logger.Level(cfg.LogLevel), logger.ParseFormat(cfg.LogFormat, logger.FormatPretty), cmd.ErrOrStderr())
		log = logger.For(logger.ComponentCLI)

		if !cmd.Flags().Changed("document") {
			documentPath = cfg.Document
		}
		if !cmd.Flags().Changed("index") {
			indexPath = cfg.Index
		}
		if cmd.Annotations[annotationNoDocument] != "" {
			return nil
		}
		return openSession()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// annotationNoDocument marks commands that work without an open session
const annotationNoDocument = "no-document"

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&documentPath, "document", "d", config.DefaultDocumentPath, "path to the model document")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", config.DefaultIndexPath, "path to the sqlite index")
	rootCmd.PersistentFlags().BoolVar(&noIndex, "no-index", false, "do not update the sqlite index")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "apply edits in memory without saving")
}

func openSession() error {
	var err error
	session, err = application.OpenSession(filesystem.NewStore(), config.ExpandPath(documentPath),
		application.WithHistoryLimit(cfg.HistoryLimit),
		application.WithLogger(logger.For(logger.ComponentRepository)),
	)
	if err != nil {
		return err
	}
	for _, d := range session.Diagnostics {
		log.Warnw("document diagnostic", "detail", d.String())
	}
	return nil
}

// GetSession returns the session opened for the current command
func GetSession() *application.Session {
	return session
}

// edit runs fn against the session with the index mirror attached, then
// saves the document unless --dry-run is set.
func edit(cmd *cobra.Command, fn func() (string, error)) error {
	if !noIndex && indexPath != "" {
		index, mirror, err := sqlite.OpenMirror(config.ExpandPath(indexPath), session.Repo, logger.For(logger.ComponentIndex))
		if err != nil {
			log.Warnw("index disabled", "path", indexPath, "error", err)
		} else {
			defer index.Close()
			defer mirror.Detach()
		}
	}

	message, err := fn()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run: document not saved")
		return nil
	}
	return session.Save()
}
