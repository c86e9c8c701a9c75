package commands

import (
	"context"
	"fmt"
	"strings"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/oplog"
	"modelrepo/internal/repository"
)

// CreateResult contains the result of creating an element
type CreateResult struct {
	Element  domain.Element
	ParentID string
	Field    string
	Message  string
}

// CreateElementCommand creates a named element under a parent
type CreateElementCommand struct {
	repo     *repository.Repository
	ParentID string
	Type     string
	Name     string
}

// NewCreateElementCommand creates a new CreateElementCommand
func NewCreateElementCommand(repo *repository.Repository, parentID, typeName, name string) *CreateElementCommand {
	return &CreateElementCommand{
		repo:     repo,
		ParentID: parentID,
		Type:     typeName,
		Name:     name,
	}
}

// Validate checks if the create operation is valid
func (c *CreateElementCommand) Validate() error {
	if err := application.ValidateRequired("parentID", c.ParentID); err != nil {
		return err
	}
	if err := application.ValidateRequired("type", c.Type); err != nil {
		return err
	}
	if err := application.ValidateType(c.repo.Registry(), "type", c.Type, domain.TypeModelElement, domain.TypeView); err != nil {
		return err
	}
	if c.repo.Registry().IsKindOf(c.Type, domain.TypeModelElement) {
		if err := application.ValidateRequired("name", c.Name); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs the create command
func (c *CreateElementCommand) Execute(ctx context.Context) (*CreateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	parent, err := lookup(c.repo, "parentID", c.ParentID)
	if err != nil {
		return nil, err
	}
	reg := c.repo.Registry()
	field, ok := reg.ContainmentField(parent.TypeName(), c.Type)
	if !ok {
		return nil, &application.ContainmentError{
			Type:     c.Type,
			ParentID: parent.ID(),
			Reason:   fmt.Sprintf("%s has no field holding %s", parent.TypeName(), c.Type),
		}
	}

	e, err := reg.New(c.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to create element: %w", err)
	}
	e.SetID(domain.NewID())
	if n, ok := e.(domain.Named); ok {
		n.SetName(strings.TrimSpace(c.Name))
	}
	e.SetParent(parent)

	_, err = record(c.repo, "create "+strings.ToLower(c.Type), func(b *oplog.Builder) error {
		if err := b.Insert(e); err != nil {
			return err
		}
		return placeChild(b, parent, field, e)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create element: %w", err)
	}

	created := c.repo.Get(e.ID())
	return &CreateResult{
		Element:  created,
		ParentID: parent.ID(),
		Field:    field.Name,
		Message:  fmt.Sprintf("Created %s: %s", c.Type, label(created)),
	}, nil
}

// CreatableTypes lists the concrete types CreateElementCommand can place
// under a parentType element. Relationships are left out; they are created
// between two elements with CreateRelationshipCommand.
func CreatableTypes(reg *domain.Registry, parentType string) []string {
	var out []string
	for _, typ := range reg.Concrete() {
		switch {
		case typ == domain.TypeProject, typ == domain.TypeAssociationEnd:
			continue
		case reg.IsKindOf(typ, domain.TypeRelationship):
			continue
		}
		if _, ok := reg.ContainmentField(parentType, typ); ok {
			out = append(out, typ)
		}
	}
	return out
}

// CreateRelationshipCommand connects two elements with a new relationship.
// The relationship is owned by the source's owner.
type CreateRelationshipCommand struct {
	repo     *repository.Repository
	Type     string
	SourceID string
	TargetID string
	Name     string
}

// NewCreateRelationshipCommand creates a new CreateRelationshipCommand
func NewCreateRelationshipCommand(repo *repository.Repository, typeName, sourceID, targetID, name string) *CreateRelationshipCommand {
	return &CreateRelationshipCommand{
		repo:     repo,
		Type:     typeName,
		SourceID: sourceID,
		TargetID: targetID,
		Name:     name,
	}
}

// Validate checks if the relationship can be created
func (c *CreateRelationshipCommand) Validate() error {
	if err := application.ValidateRequired("type", c.Type); err != nil {
		return err
	}
	if err := application.ValidateType(c.repo.Registry(), "type", c.Type, domain.TypeRelationship); err != nil {
		return err
	}
	if err := application.ValidateRequired("sourceID", c.SourceID); err != nil {
		return err
	}
	return application.ValidateRequired("targetID", c.TargetID)
}

// Execute runs the create relationship command
func (c *CreateRelationshipCommand) Execute(ctx context.Context) (*CreateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	source, err := lookup(c.repo, "sourceID", c.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := lookup(c.repo, "targetID", c.TargetID)
	if err != nil {
		return nil, err
	}
	reg := c.repo.Registry()
	for _, end := range []domain.Element{source, target} {
		if !reg.IsKindOf(end.TypeName(), domain.TypeModelElement) {
			return nil, &application.ValidationError{
				Field:   "sourceID",
				Message: fmt.Sprintf("%s is not a model element", end.ID()),
			}
		}
	}

	owner := source.Parent()
	if owner == nil {
		owner = source
	}
	field, ok := reg.ContainmentField(owner.TypeName(), c.Type)
	if !ok {
		return nil, &application.ContainmentError{Type: c.Type, ParentID: owner.ID(), Reason: "no field holds relationships"}
	}

	rel, err := c.build(source, target)
	if err != nil {
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}
	rel.SetParent(owner)

	_, err = record(c.repo, "create "+strings.ToLower(c.Type), func(b *oplog.Builder) error {
		if err := b.Insert(rel); err != nil {
			return err
		}
		return placeChild(b, owner, field, rel)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}

	created := c.repo.Get(rel.ID())
	return &CreateResult{
		Element:  created,
		ParentID: owner.ID(),
		Field:    field.Name,
		Message:  fmt.Sprintf("Created %s: %s -> %s", c.Type, label(source), label(target)),
	}, nil
}

func (c *CreateRelationshipCommand) build(source, target domain.Element) (domain.Element, error) {
	reg := c.repo.Registry()
	e, err := reg.New(c.Type)
	if err != nil {
		return nil, err
	}
	e.SetID(domain.NewID())
	if n, ok := e.(domain.Named); ok {
		n.SetName(strings.TrimSpace(c.Name))
	}

	switch rel := e.(type) {
	case *domain.Association:
		ends := make([]*domain.AssociationEnd, 2)
		for i, ref := range []domain.Element{source, target} {
			end, err := reg.New(domain.TypeAssociationEnd)
			if err != nil {
				return nil, err
			}
			end.SetID(domain.NewID())
			end.SetParent(rel)
			ends[i] = end.(*domain.AssociationEnd)
			ends[i].Reference = domain.RefTo(ref)
		}
		rel.End1, rel.End2 = ends[0], ends[1]
	case interface {
		DirectedBase() *domain.DirectedRelationship
	}:
		d := rel.DirectedBase()
		d.Source, d.Target = domain.RefTo(source), domain.RefTo(target)
	default:
		return nil, fmt.Errorf("%w: %s", application.ErrInvalidOperation, c.Type)
	}
	return e, nil
}

// CreateViewCommand shows a model element on a diagram as a node.
type CreateViewCommand struct {
	repo      *repository.Repository
	DiagramID string
	ModelID   string
	Left      float64
	Top       float64
}

// NewCreateViewCommand creates a new CreateViewCommand
func NewCreateViewCommand(repo *repository.Repository, diagramID, modelID string, left, top float64) *CreateViewCommand {
	return &CreateViewCommand{repo: repo, DiagramID: diagramID, ModelID: modelID, Left: left, Top: top}
}

// Execute runs the create view command
func (c *CreateViewCommand) Execute(ctx context.Context) (*CreateResult, error) {
	diagram, err := lookup(c.repo, "parentID", c.DiagramID)
	if err != nil {
		return nil, err
	}
	model, err := lookup(c.repo, "id", c.ModelID)
	if err != nil {
		return nil, err
	}
	d, ok := diagram.(*domain.Diagram)
	if !ok {
		return nil, &application.ContainmentError{Type: domain.TypeNodeView, ParentID: diagram.ID(), Reason: "not a diagram"}
	}
	reg := c.repo.Registry()
	field, err := reg.MustAttr(domain.TypeDiagram, "ownedViews")
	if err != nil {
		return nil, err
	}

	e, err := reg.New(domain.TypeNodeView)
	if err != nil {
		return nil, err
	}
	view := e.(*domain.NodeView)
	view.SetID(domain.NewID())
	view.Model = domain.RefTo(model)
	view.Left, view.Top = c.Left, c.Top
	view.SetParent(d)

	_, err = record(c.repo, "add view", func(b *oplog.Builder) error {
		if err := b.Insert(view); err != nil {
			return err
		}
		return b.FieldInsert(d, field.Name, view)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add view: %w", err)
	}
	return &CreateResult{
		Element:  c.repo.Get(view.ID()),
		ParentID: d.ID(),
		Field:    field.Name,
		Message:  fmt.Sprintf("Added %s to %s", label(model), label(d)),
	}, nil
}
