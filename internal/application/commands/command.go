// Package commands holds the user-level edits and queries shared by the CLI,
// the TUI and the MCP server. Every edit is recorded as one operation and is
// undoable as a unit.
package commands

import (
	"strings"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/repository"
)

// record builds one operation with fn and applies it.
func record(repo *repository.Repository, name string, fn func(b *oplog.Builder) error) (*oplog.Operation, error) {
	b := oplog.NewBuilder(repo.Registry(), nil)
	if err := b.Begin(name, false); err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		b.Discard()
		return nil, err
	}
	op := b.End()
	if err := repo.DoOperation(op); err != nil {
		return nil, err
	}
	return op, nil
}

// lookup resolves a required element id.
func lookup(repo *repository.Repository, fieldName, id string) (domain.Element, error) {
	if err := application.ValidateRequired(fieldName, id); err != nil {
		return nil, err
	}
	e := repo.Get(strings.TrimSpace(id))
	if e == nil {
		return nil, &application.NotFoundError{ID: id}
	}
	return e, nil
}

// placeChild records placing a new child into field of parent.
func placeChild(b *oplog.Builder, parent domain.Element, field domain.Attr, child domain.Element) error {
	if field.Kind.IsMany() {
		return b.FieldInsert(parent, field.Name, child)
	}
	if current, _ := field.Get(parent).(domain.Element); current != nil {
		return &application.ContainmentError{
			Type:     child.TypeName(),
			ParentID: parent.ID(),
			Reason:   field.Name + " is already set",
		}
	}
	return b.FieldAssign(parent, field.Name, child)
}

// label is the name of e, or its type and id when unnamed.
func label(e domain.Element) string {
	if name := domain.NameOf(e); name != "" {
		return name
	}
	return e.TypeName() + " " + e.ID()
}
