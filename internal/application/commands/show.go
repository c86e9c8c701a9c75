package commands

import (
	"context"

	"modelrepo/internal/application"
	"modelrepo/internal/domain"
	"modelrepo/internal/query"
	"modelrepo/internal/repository"
)

// FieldValue is one attribute of an element rendered as text
type FieldValue struct {
	Name    string
	Kind    string
	Value   string   // Single-valued fields
	Items   []string // Element ids held by array fields
	Default bool
}

// ElementDetail describes one element and who points at it
type ElementDetail struct {
	domain.SearchResult
	ParentID  string
	Field     string // Owning field on the parent
	Fields    []FieldValue
	Referrers []domain.SearchResult
}

// ShowCommand describes an element field by field
type ShowCommand struct {
	repo *repository.Repository
	ID   string
}

// NewShowCommand creates a new ShowCommand
func NewShowCommand(repo *repository.Repository, id string) *ShowCommand {
	return &ShowCommand{repo: repo, ID: id}
}

// Execute runs the show command
func (c *ShowCommand) Execute(ctx context.Context) (*ElementDetail, error) {
	e, err := lookup(c.repo, "id", c.ID)
	if err != nil {
		return nil, err
	}
	reg := c.repo.Registry()
	detail := &ElementDetail{SearchResult: application.ToSearchResult(e)}
	if p := e.Parent(); p != nil {
		detail.ParentID = p.ID()
		if a, ok := reg.OwningField(p, e); ok {
			detail.Field = a.Name
		}
	}

	for _, a := range reg.Attrs(e.TypeName()) {
		if a.Transient {
			continue
		}
		v := a.Get(e)
		fv := FieldValue{Name: a.Name, Kind: a.Kind.String(), Default: a.IsDefault(v)}
		if a.Kind.IsMany() {
			fv.Items = a.SlotIDs(e)
		} else {
			fv.Value = query.Render(a, v)
		}
		detail.Fields = append(detail.Fields, fv)
	}

	for _, ref := range c.repo.GetRefsTo(e, nil) {
		if ref == e.Parent() {
			continue
		}
		detail.Referrers = append(detail.Referrers, application.ToSearchResult(ref))
	}
	return detail, nil
}

// References groups what points at a model element
type References struct {
	ID            string
	Referrers     map[string]int // Referrer id to slot count, owner included
	Relationships []domain.SearchResult
	Views         []domain.SearchResult
}

// RefsCommand reports the reference-index entries of an element
type RefsCommand struct {
	repo *repository.Repository
	ID   string
}

// NewRefsCommand creates a new RefsCommand
func NewRefsCommand(repo *repository.Repository, id string) *RefsCommand {
	return &RefsCommand{repo: repo, ID: id}
}

// Execute runs the refs command
func (c *RefsCommand) Execute(ctx context.Context) (*References, error) {
	e, err := lookup(c.repo, "id", c.ID)
	if err != nil {
		return nil, err
	}
	out := &References{ID: e.ID(), Referrers: c.repo.Referrers(e.ID())}
	for _, rel := range c.repo.GetRelationshipsOf(e, nil) {
		out.Relationships = append(out.Relationships, application.ToSearchResult(rel))
	}
	for _, v := range c.repo.GetViewsOf(e) {
		out.Views = append(out.Views, application.ToSearchResult(v))
	}
	return out, nil
}
