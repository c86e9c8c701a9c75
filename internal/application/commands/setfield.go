package commands

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/query"
	"modelrepo/internal/repository"
)

// SetFieldResult contains the result of a field assignment
type SetFieldResult struct {
	ID       string
	Field    string
	OldValue string
	NewValue string
	Message  string
}

// SetFieldCommand assigns a single-valued field from its text form. Enum
// fields take a literal name or its index, reference fields an element id
// or the empty string to clear them. A variant field holds a reference when
// the text is a live element id and the text itself otherwise.
type SetFieldCommand struct {
	repo  *repository.Repository
	ID    string
	Field string
	Value string
}

// NewSetFieldCommand creates a new SetFieldCommand
func NewSetFieldCommand(repo *repository.Repository, id, field, value string) *SetFieldCommand {
	return &SetFieldCommand{repo: repo, ID: id, Field: field, Value: value}
}

// Validate checks if the assignment is well formed
func (c *SetFieldCommand) Validate() error {
	if err := application.ValidateRequired("id", c.ID); err != nil {
		return err
	}
	return application.ValidateRequired("field", c.Field)
}

// Execute runs the set field command
func (c *SetFieldCommand) Execute(ctx context.Context) (*SetFieldResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e, err := lookup(c.repo, "id", c.ID)
	if err != nil {
		return nil, err
	}
	a, ok := c.repo.Registry().Attr(e.TypeName(), strings.TrimSpace(c.Field))
	if !ok {
		return nil, &application.ValidationError{
			Field:   "field",
			Message: fmt.Sprintf("%s has no field %s", e.TypeName(), c.Field),
		}
	}
	v, err := c.parse(a)
	if err != nil {
		return nil, err
	}

	old := query.Render(a, a.Get(e))
	_, err = record(c.repo, "set "+a.Name, func(b *oplog.Builder) error {
		return b.FieldAssign(e, a.Name, v)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", a.Name, err)
	}
	now := query.Render(a, a.Get(e))
	return &SetFieldResult{
		ID:       e.ID(),
		Field:    a.Name,
		OldValue: old,
		NewValue: now,
		Message:  fmt.Sprintf("Set %s.%s to %q", e.ID(), a.Name, now),
	}, nil
}

func (c *SetFieldCommand) parse(a domain.Attr) (any, error) {
	invalid := func(format string, args ...any) error {
		return &application.ValidationError{Field: "value", Message: fmt.Sprintf(format, args...)}
	}
	text := c.Value

	switch a.Kind {
	case domain.KindPrimitive:
		switch a.Default.(type) {
		case bool:
			v, err := strconv.ParseBool(strings.TrimSpace(text))
			if err != nil {
				return nil, invalid("%s expects true or false, got %q", a.Name, text)
			}
			return v, nil
		case float64:
			v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
			if err != nil {
				return nil, invalid("%s expects a number, got %q", a.Name, text)
			}
			return v, nil
		}
		return text, nil
	case domain.KindEnum:
		text = strings.TrimSpace(text)
		if i := slices.Index(a.Literals, text); i >= 0 {
			return i, nil
		}
		if i, err := strconv.Atoi(text); err == nil && i >= 0 && i < len(a.Literals) {
			return i, nil
		}
		return nil, invalid("%s expects one of %s, got %q", a.Name, strings.Join(a.Literals, ", "), text)
	case domain.KindRef:
		id := strings.TrimSpace(text)
		if id == "" {
			return nil, nil
		}
		target := c.repo.Get(id)
		if target == nil {
			return nil, &application.NotFoundError{ID: id}
		}
		if !c.repo.Registry().IsKindOf(target.TypeName(), a.Type) {
			return nil, invalid("%s expects %s, got %s", a.Name, a.Type, target.TypeName())
		}
		return domain.RefTo(target), nil
	case domain.KindVariant:
		if text == "" {
			return nil, nil
		}
		if target := c.repo.Get(strings.TrimSpace(text)); target != nil && c.repo.Registry().IsKindOf(target.TypeName(), a.Type) {
			return domain.RefTo(target), nil
		}
		return text, nil
	case domain.KindCustom:
		v, err := a.Decode(text)
		if err != nil {
			return nil, invalid("%s: %v", a.Name, err)
		}
		return v, nil
	}
	return nil, invalid("%s is a %s field and cannot be assigned", a.Name, a.Kind)
}
