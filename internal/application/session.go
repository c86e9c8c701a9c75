package application

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
	"modelrepo/internal/migrate"
	"modelrepo/internal/ports"
	"modelrepo/internal/repository"
)

// Session binds one repository to the document it was loaded from.
type Session struct {
	Repo        *repository.Repository
	Diagnostics []codec.Diagnostic
	Migration   *migrate.Report

	store    ports.DocumentStore
	path     string
	log      *zap.SugaredLogger
	reloaded []func()
}

// SessionOption configures OpenSession.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	historyLimit int
	log          *zap.SugaredLogger
}

// WithHistoryLimit bounds the session's undo and redo stacks.
func WithHistoryLimit(n int) SessionOption {
	return func(c *sessionConfig) { c.historyLimit = n }
}

// WithLogger sets the session logger.
func WithLogger(log *zap.SugaredLogger) SessionOption {
	return func(c *sessionConfig) { c.log = log }
}

// OpenSession loads the document at path, or starts a new one when nothing is
// stored there yet. Older documents are migrated once after loading.
func OpenSession(store ports.DocumentStore, path string, opts ...SessionOption) (*Session, error) {
	cfg := sessionConfig{historyLimit: repository.DefaultHistoryLimit, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg := domain.NewMetamodel()
	s := &Session{
		Repo:  repository.New(reg, repository.WithLogger(cfg.log), repository.WithHistoryLimit(cfg.historyLimit)),
		store: store,
		path:  path,
		log:   cfg.log,
	}

	if !store.Exists(path) {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if _, err := s.Repo.Load(NewDocument(reg, name)); err != nil {
			return nil, fmt.Errorf("failed to create document: %w", err)
		}
		s.Repo.SetModified(true)
		s.log.Infow("new document", "path", path)
		return s, nil
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the repository contents with the stored document, dropping
// history and unsaved changes.
func (s *Session) Reload() error {
	if err := s.load(); err != nil {
		return err
	}
	for _, fn := range s.reloaded {
		fn()
	}
	return nil
}

// OnReload registers fn to run after every successful Reload. Reloading
// emits no element events, so observers of the repository resync here.
func (s *Session) OnReload(fn func()) {
	s.reloaded = append(s.reloaded, fn)
}

func (s *Session) load() error {
	tree, err := s.store.Load(s.path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", s.path, err)
	}
	diags, err := s.Repo.Load(tree)
	s.Diagnostics = diags
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	report, err := migrate.Run(s.Repo, migrate.Version(tree), s.log)
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.path, err)
	}
	s.Migration = report
	if report.Changed() {
		s.Repo.SetModified(true)
	}
	return nil
}

// Path returns the document location.
func (s *Session) Path() string {
	return s.path
}

// Save writes the document and clears the modified flag.
func (s *Session) Save() error {
	return s.SaveAs(s.path)
}

// SaveAs writes the document to path and makes it the session's location.
func (s *Session) SaveAs(path string) error {
	tree := s.Repo.Serialize()
	if tree == nil {
		return fmt.Errorf("%w: nothing loaded", ErrInvalidOperation)
	}
	migrate.Stamp(tree)
	if err := s.store.Save(path, tree); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	s.path = path
	s.Repo.SetModified(false)
	s.log.Infow("document saved", "path", path, "elements", s.Repo.Len())
	return nil
}

// NewDocument returns the serialized skeleton of an empty project: one model
// holding a default diagram.
func NewDocument(reg *domain.Registry, name string) map[string]any {
	if name == "" {
		name = "Untitled"
	}
	project := mustCreate[*domain.Project](reg, domain.TypeProject)
	project.Name = name
	model := mustCreate[*domain.Model](reg, domain.TypeModel)
	model.Name = "Model"
	diagram := mustCreate[*domain.Diagram](reg, domain.TypeDiagram)
	diagram.Name = "Main"
	diagram.DefaultDiagram = true

	diagram.SetParent(model)
	model.OwnedElements = append(model.OwnedElements, diagram)
	model.SetParent(project)
	project.OwnedElements = append(project.OwnedElements, model)

	tree := codec.NewWriter(reg, nil).Serialize(project)
	migrate.Stamp(tree)
	return tree
}

func mustCreate[T domain.Element](reg *domain.Registry, typ string) T {
	e, err := reg.New(typ)
	if err != nil {
		panic(err)
	}
	e.SetID(domain.NewID())
	return e.(T)
}
