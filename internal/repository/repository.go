package repository

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
)

var (
	// ErrBusy is returned when an operation is requested while another is
	// being applied or reverted, including from inside an event listener.
	ErrBusy = errors.New("repository busy: operation in flight")
	// ErrInvalidDocument is returned by Load when the root cannot be constructed.
	ErrInvalidDocument = errors.New("invalid document")
)

type state int

const (
	stateIdle state = iota
	stateApplying
	stateReverting
)

// Repository owns every live element of one document, the inverted reference
// index and the undo/redo history. All mutation goes through DoOperation,
// Undo and Redo. It is single-threaded: callers must not share it across
// goroutines without their own locking.
type Repository struct {
	reg    *domain.Registry
	log    *zap.SugaredLogger
	rootID string
	index  map[string]domain.Element
	// refs maps a referee id to referrer id to slot count. Zero counts are
	// never stored.
	refs     map[string]map[string]int
	undo     *history
	redo     *history
	events   emitter
	state    state
	modified bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for diagnostics and listener failures.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Repository) {
		if log != nil {
			r.log = log
		}
	}
}

// WithHistoryLimit bounds the undo and redo stacks.
func WithHistoryLimit(n int) Option {
	return func(r *Repository) {
		r.undo = newHistory(n)
		r.redo = newHistory(n)
	}
}

// New returns an empty repository for the types in reg.
func New(reg *domain.Registry, opts ...Option) *Repository {
	r := &Repository{
		reg:   reg,
		log:   zap.NewNop().Sugar(),
		index: make(map[string]domain.Element),
		refs:  make(map[string]map[string]int),
		undo:  newHistory(DefaultHistoryLimit),
		redo:  newHistory(DefaultHistoryLimit),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the type registry the repository was built with.
func (r *Repository) Registry() *domain.Registry {
	return r.reg
}

// Load replaces the repository content with a serialized document. The
// reference index is rebuilt from scratch and the history is cleared.
// Structural problems are returned as diagnostics, not errors.
func (r *Repository) Load(tree map[string]any) ([]codec.Diagnostic, error) {
	if r.state != stateIdle {
		return nil, ErrBusy
	}
	rd := codec.NewReader(r.reg, r.log)
	root := rd.ReadElement(tree)
	if root == nil {
		return rd.Diagnostics(), fmt.Errorf("%w: root element could not be read", ErrInvalidDocument)
	}
	rd.Resolve(nil)
	root.SetParent(nil)

	r.index = make(map[string]domain.Element, len(rd.Elements()))
	r.refs = make(map[string]map[string]int)
	for _, e := range rd.Elements() {
		r.index[e.ID()] = e
	}
	for _, e := range rd.Elements() {
		r.addRefsOf(e)
	}
	r.rootID = root.ID()
	r.undo.reset()
	r.redo.reset()
	r.modified = false

	r.log.Infow("document loaded",
		"root", root.ID(),
		"elements", len(r.index),
		"diagnostics", len(rd.Diagnostics()),
	)
	return rd.Diagnostics(), nil
}

// Serialize writes the whole document.
func (r *Repository) Serialize() map[string]any {
	root := r.Root()
	if root == nil {
		return nil
	}
	return codec.NewWriter(r.reg, r.log).Serialize(root)
}

// SerializeElement writes one element and its owned subtree.
func (r *Repository) SerializeElement(e domain.Element) map[string]any {
	return codec.NewWriter(r.reg, r.log).Serialize(e)
}

// Root returns the document root, or nil before Load.
func (r *Repository) Root() domain.Element {
	return r.index[r.rootID]
}

// Len returns the number of live elements.
func (r *Repository) Len() int {
	return len(r.index)
}

// Get returns a live element by id, or nil.
func (r *Repository) Get(id string) domain.Element {
	return r.index[id]
}

// Contains reports whether id names a live element.
func (r *Repository) Contains(id string) bool {
	_, ok := r.index[id]
	return ok
}

// All returns every live element: the owned tree of each root, pre-order,
// roots ordered by id with the document root first.
func (r *Repository) All() []domain.Element {
	out := make([]domain.Element, 0, len(r.index))
	for _, root := range r.roots() {
		r.reg.Traverse(root, func(e domain.Element) bool {
			if _, live := r.index[e.ID()]; !live {
				return false
			}
			out = append(out, e)
			return true
		})
	}
	return out
}

func (r *Repository) roots() []domain.Element {
	var roots []domain.Element
	for _, e := range r.index {
		if p := e.Parent(); p == nil || r.index[p.ID()] == nil {
			roots = append(roots, e)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].ID() == r.rootID {
			return true
		}
		if roots[j].ID() == r.rootID {
			return false
		}
		return roots[i].ID() < roots[j].ID()
	})
	return roots
}

// IsModified reports whether a non-bypass operation, undo or redo ran since
// the last Load or SetModified(false).
func (r *Repository) IsModified() bool {
	return r.modified
}

// SetModified sets the modified flag, typically cleared after saving.
func (r *Repository) SetModified(modified bool) {
	r.modified = modified
}

// CanUndo reports whether Undo has an operation to revert.
func (r *Repository) CanUndo() bool {
	return r.undo.len() > 0
}

// CanRedo reports whether Redo has an operation to re-apply.
func (r *Repository) CanRedo() bool {
	return r.redo.len() > 0
}

// UndoLen returns the depth of the undo stack.
func (r *Repository) UndoLen() int {
	return r.undo.len()
}

// RedoLen returns the depth of the redo stack.
func (r *Repository) RedoLen() int {
	return r.redo.len()
}

// PeekUndo returns the operation Undo would revert, or nil.
func (r *Repository) PeekUndo() *oplog.Operation {
	return r.undo.peek()
}

// PeekRedo returns the operation Redo would re-apply, or nil.
func (r *Repository) PeekRedo() *oplog.Operation {
	return r.redo.peek()
}

// ClearHistory empties both stacks.
func (r *Repository) ClearHistory() {
	r.undo.reset()
	r.redo.reset()
}

// DoOperation applies op, pushes it onto the undo stack unless it is a bypass
// operation, and clears the redo stack. Empty operations are ignored.
func (r *Repository) DoOperation(op *oplog.Operation) error {
	if op.IsEmpty() {
		return nil
	}
	if r.state != stateIdle {
		return ErrBusy
	}
	r.state = stateApplying
	defer func() { r.state = stateIdle }()

	r.emit(Event{Kind: EventBeforeExecuteOperation, Operation: op})
	changes := r.apply(op)
	if !op.Bypass {
		r.undo.push(op)
		r.redo.reset()
	}
	r.publish(op, changes)
	r.emit(Event{Kind: EventOperationExecuted, Operation: op})
	return nil
}

// Undo reverts the most recent operation. It returns nil when there is
// nothing to undo.
func (r *Repository) Undo() (*oplog.Operation, error) {
	if r.state != stateIdle {
		return nil, ErrBusy
	}
	op := r.undo.pop()
	if op == nil {
		return nil, nil
	}
	r.state = stateReverting
	defer func() { r.state = stateIdle }()

	r.emit(Event{Kind: EventBeforeUndo, Operation: op})
	changes := r.revert(op)
	r.redo.push(op)
	r.publish(op, changes)
	r.emit(Event{Kind: EventUndo, Operation: op})
	return op, nil
}

// Redo re-applies the most recently undone operation. It returns nil when
// there is nothing to redo.
func (r *Repository) Redo() (*oplog.Operation, error) {
	if r.state != stateIdle {
		return nil, ErrBusy
	}
	op := r.redo.pop()
	if op == nil {
		return nil, nil
	}
	r.state = stateApplying
	defer func() { r.state = stateIdle }()

	r.emit(Event{Kind: EventBeforeRedo, Operation: op})
	changes := r.apply(op)
	r.undo.push(op)
	r.publish(op, changes)
	r.emit(Event{Kind: EventRedo, Operation: op})
	return op, nil
}
