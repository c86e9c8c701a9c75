package oplog

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"modelrepo/internal/codec"
	"modelrepo/internal/domain"
)

var (
	// ErrNoOperation is returned by action methods called outside Begin/End.
	ErrNoOperation = errors.New("no operation in progress")
	// ErrInProgress is returned by Begin while another operation is open.
	ErrInProgress = errors.New("operation already in progress")
	// ErrMissingArgument is returned when a required element is nil.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrNotMember is returned when an array record names an element the array does not hold.
	ErrNotMember = errors.New("element is not in the field")
)

type shadowKey struct {
	id    string
	field string
}

// Builder records mutation intents into one Operation. It never mutates the
// graph; positional indices are computed against a per-(element, field)
// shadow copy of each array, taken on first touch and dropped at End.
type Builder struct {
	reg     *domain.Registry
	log     *zap.SugaredLogger
	op      *Operation
	shadows map[shadowKey][]string
	hooks   []func(Op)
}

// NewBuilder returns a builder driven by the attribute tables in reg.
func NewBuilder(reg *domain.Registry, log *zap.SugaredLogger) *Builder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Builder{reg: reg, log: log}
}

// OnOp registers a hook called with every record as it is appended, before
// anything is applied.
func (b *Builder) OnOp(fn func(Op)) {
	b.hooks = append(b.hooks, fn)
}

// Begin opens a new operation.
func (b *Builder) Begin(name string, bypass bool) error {
	if b.op != nil {
		return fmt.Errorf("%w: %s", ErrInProgress, b.op.Name)
	}
	b.op = New(name, bypass)
	b.shadows = make(map[shadowKey][]string)
	return nil
}

// InProgress reports whether an operation is open.
func (b *Builder) InProgress() bool {
	return b.op != nil
}

// End returns the assembled operation and resets the builder.
func (b *Builder) End() *Operation {
	op := b.op
	b.op = nil
	b.shadows = nil
	return op
}

// Discard abandons the operation in progress.
func (b *Builder) Discard() {
	if b.op != nil {
		b.log.Debugw("operation discarded", "name", b.op.Name, "ops", len(b.op.Ops))
	}
	b.op = nil
	b.shadows = nil
}

func (b *Builder) append(op Op) {
	b.op.Ops = append(b.op.Ops, op)
	for _, fn := range b.hooks {
		fn(op)
	}
}

func (b *Builder) check(elems ...domain.Element) error {
	if b.op == nil {
		return ErrNoOperation
	}
	for _, e := range elems {
		if e == nil {
			return ErrMissingArgument
		}
	}
	return nil
}

func (b *Builder) attr(e domain.Element, field string) (domain.Attr, error) {
	if field == "" {
		return domain.Attr{}, fmt.Errorf("%w: field name", ErrMissingArgument)
	}
	return b.reg.MustAttr(e.TypeName(), field)
}

func (b *Builder) shadow(e domain.Element, a domain.Attr) []string {
	key := shadowKey{e.ID(), a.Name}
	if s, ok := b.shadows[key]; ok {
		return s
	}
	s := a.SlotIDs(e)
	b.shadows[key] = s
	return s
}

func (b *Builder) setShadow(e domain.Element, a domain.Attr, s []string) {
	b.shadows[shadowKey{e.ID(), a.Name}] = s
}

// Insert records the creation of e and everything it owns. The element's
// parent pointer, if set, is recorded as its _parent token; placing it in the
// owner's field is a separate record.
func (b *Builder) Insert(e domain.Element) error {
	if err := b.check(e); err != nil {
		return err
	}
	b.append(Op{Kind: KindInsert, Elem: codec.NewWriter(b.reg, b.log).Serialize(e)})
	return nil
}

// Remove records the deletion of e and everything it owns.
func (b *Builder) Remove(e domain.Element) error {
	if err := b.check(e); err != nil {
		return err
	}
	b.append(Op{Kind: KindRemove, Elem: codec.NewWriter(b.reg, b.log).Serialize(e)})
	return nil
}

// FieldAssign records replacing the value of a single-valued field.
func (b *Builder) FieldAssign(e domain.Element, field string, v any) error {
	if err := b.check(e); err != nil {
		return err
	}
	a, err := b.attr(e, field)
	if err != nil {
		return err
	}
	if a.Kind.IsMany() {
		return fmt.Errorf("%w: %s is an array, use FieldInsert or FieldRemove", domain.ErrKindMismatch, field)
	}
	oldVal, err := codec.EncodeValue(a, a.Get(e))
	if err != nil {
		return err
	}
	newVal, err := codec.EncodeValue(a, v)
	if err != nil {
		return err
	}
	b.append(Op{Kind: KindFieldAssign, ID: e.ID(), Field: field, Old: oldVal, New: newVal})
	return nil
}

// FieldInsert records appending v to an array field.
func (b *Builder) FieldInsert(e domain.Element, field string, v domain.Element) error {
	return b.FieldInsertAt(e, field, v, -1)
}

// FieldInsertAt records placing v at pos in an array field. Negative or
// out-of-range positions append.
func (b *Builder) FieldInsertAt(e domain.Element, field string, v domain.Element, pos int) error {
	if err := b.check(e, v); err != nil {
		return err
	}
	a, err := b.attr(e, field)
	if err != nil {
		return err
	}
	if !a.Kind.IsMany() {
		return fmt.Errorf("%w: %s", domain.ErrNotArray, field)
	}
	s := b.shadow(e, a)
	if pos < 0 || pos > len(s) {
		pos = len(s)
	}
	b.setShadow(e, a, slices.Insert(s, pos, v.ID()))
	b.append(Op{Kind: KindFieldInsert, ID: e.ID(), Field: field, Value: v.ID(), Index: pos})
	return nil
}

// FieldRemove records removing the first slot holding v from an array field.
func (b *Builder) FieldRemove(e domain.Element, field string, v domain.Element) error {
	return b.FieldRemoveAt(e, field, v, -1)
}

// FieldRemoveAt records removing v at pos. When pos does not hold v, or is
// negative, the first slot holding v is used.
func (b *Builder) FieldRemoveAt(e domain.Element, field string, v domain.Element, pos int) error {
	if err := b.check(e, v); err != nil {
		return err
	}
	a, err := b.attr(e, field)
	if err != nil {
		return err
	}
	if !a.Kind.IsMany() {
		return fmt.Errorf("%w: %s", domain.ErrNotArray, field)
	}
	s := b.shadow(e, a)
	if pos < 0 || pos >= len(s) || s[pos] != v.ID() {
		pos = slices.Index(s, v.ID())
	}
	if pos < 0 {
		return fmt.Errorf("%w: %s.%s does not hold %s", ErrNotMember, e.ID(), field, v.ID())
	}
	b.setShadow(e, a, slices.Delete(s, pos, pos+1))
	b.append(Op{Kind: KindFieldRemove, ID: e.ID(), Field: field, Value: v.ID(), Index: pos})
	return nil
}

// FieldReorder records moving v to pos within the same array field.
func (b *Builder) FieldReorder(e domain.Element, field string, v domain.Element, pos int) error {
	if err := b.check(e, v); err != nil {
		return err
	}
	a, err := b.attr(e, field)
	if err != nil {
		return err
	}
	if !a.Kind.IsMany() {
		return fmt.Errorf("%w: %s", domain.ErrNotArray, field)
	}
	s := b.shadow(e, a)
	from := slices.Index(s, v.ID())
	if from < 0 {
		return fmt.Errorf("%w: %s.%s does not hold %s", ErrNotMember, e.ID(), field, v.ID())
	}
	if pos < 0 || pos >= len(s) {
		pos = len(s) - 1
	}
	s = slices.Delete(s, from, from+1)
	b.setShadow(e, a, slices.Insert(s, pos, v.ID()))
	b.append(Op{Kind: KindFieldReorder, ID: e.ID(), Field: field, Value: v.ID(), Index: pos, OldIndex: from})
	return nil
}

// FieldRelocate records moving an owned element from field of oldParent to
// the same field of newParent. It is appended to the new owner's array, or
// replaces an empty single-valued field.
func (b *Builder) FieldRelocate(e domain.Element, field string, oldParent, newParent domain.Element) error {
	if err := b.check(e, oldParent, newParent); err != nil {
		return err
	}
	from, err := b.attr(oldParent, field)
	if err != nil {
		return err
	}
	to, err := b.attr(newParent, field)
	if err != nil {
		return err
	}
	if !from.Kind.IsOwned() || !to.Kind.IsOwned() {
		return fmt.Errorf("%w: %s is not an owned field", domain.ErrKindMismatch, field)
	}
	if !b.reg.IsKindOf(e.TypeName(), to.Type) {
		return fmt.Errorf("%w: %s cannot hold %s", domain.ErrKindMismatch, field, e.TypeName())
	}

	index := -1
	if from.Kind.IsMany() {
		s := b.shadow(oldParent, from)
		index = slices.Index(s, e.ID())
		if index < 0 {
			return fmt.Errorf("%w: %s.%s does not hold %s", ErrNotMember, oldParent.ID(), field, e.ID())
		}
		b.setShadow(oldParent, from, slices.Delete(s, index, index+1))
	} else if c, _ := from.Get(oldParent).(domain.Element); c == nil || c.ID() != e.ID() {
		return fmt.Errorf("%w: %s.%s does not hold %s", ErrNotMember, oldParent.ID(), field, e.ID())
	}

	if to.Kind.IsMany() {
		b.setShadow(newParent, to, append(b.shadow(newParent, to), e.ID()))
	} else if c, _ := to.Get(newParent).(domain.Element); c != nil {
		return fmt.Errorf("%w: %s.%s is already set", domain.ErrKindMismatch, newParent.ID(), field)
	}

	b.append(Op{
		Kind:      KindFieldRelocate,
		ID:        e.ID(),
		Field:     field,
		Index:     index,
		OldParent: oldParent.ID(),
		NewParent: newParent.ID(),
	})
	return nil
}
