package application

import "modelrepo/internal/domain"

// Re-export domain types for use by adapters
type (
	TreeNode     = domain.TreeNode
	SearchResult = domain.SearchResult
)

// RelationshipTypes are the relationship kinds adapters can create between two elements.
var RelationshipTypes = []string{
	domain.TypeDependency,
	domain.TypeGeneralization,
	domain.TypeAssociation,
}

// ToSearchResult describes a live element for listings.
func ToSearchResult(e domain.Element) SearchResult {
	doc := ""
	if m, ok := e.(interface{ ModelBase() *domain.ModelElement }); ok {
		doc = m.ModelBase().Documentation
	}
	return SearchResult{
		ID:          e.ID(),
		Type:        e.TypeName(),
		Name:        domain.NameOf(e),
		Path:        domain.OwnerPath(e),
		MatchedText: doc,
	}
}
