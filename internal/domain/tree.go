package domain

import "slices"

// SearchResult represents a search match
type SearchResult struct {
	ID          string
	Type        string
	Name        string
	Path        string // Owner chain, e.g. "Project/Model/Class"
	MatchedText string
}

// TreeNode represents a node in the ownership tree for navigation
type TreeNode struct {
	ID         string
	Type       string
	Name       string
	Field      string // Owning field on the parent element
	Children   []*TreeNode
	IsExpanded bool
	Parent     *TreeNode
}

// BuildTree mirrors the owned subtree of root as TreeNodes.
func BuildTree(reg *Registry, root Element) *TreeNode {
	return buildNode(reg, root, "", nil)
}

func buildNode(reg *Registry, e Element, field string, parent *TreeNode) *TreeNode {
	node := &TreeNode{
		ID:     e.ID(),
		Type:   e.TypeName(),
		Name:   NameOf(e),
		Field:  field,
		Parent: parent,
	}
	for _, a := range reg.Attrs(e.TypeName()) {
		switch a.Kind {
		case KindObj:
			if c, ok := a.Get(e).(Element); ok && c != nil {
				node.Children = append(node.Children, buildNode(reg, c, a.Name, node))
			}
		case KindObjs:
			cs, _ := a.Get(e).([]Element)
			for _, c := range cs {
				node.Children = append(node.Children, buildNode(reg, c, a.Name, node))
			}
		}
	}
	return node
}

// Label returns the display text for the node
func (n *TreeNode) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return "(" + n.Type + ")"
}

// Flatten returns all visible nodes in the tree (for list rendering)
func (n *TreeNode) Flatten() []*TreeNode {
	var result []*TreeNode
	n.flattenRecursive(&result, 0)
	return result
}

func (n *TreeNode) flattenRecursive(result *[]*TreeNode, depth int) {
	*result = append(*result, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			child.flattenRecursive(result, depth+1)
		}
	}
}

// Depth returns the depth of this node in the tree
func (n *TreeNode) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// Find returns the node with the given element id, or nil
func (n *TreeNode) Find(id string) *TreeNode {
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Reveal expands every ancestor of the node so it shows up in Flatten
func (n *TreeNode) Reveal() {
	for p := n.Parent; p != nil; p = p.Parent {
		p.IsExpanded = true
	}
}

// ExpandedIDs collects the ids of expanded nodes, for restoring state after a rebuild
func (n *TreeNode) ExpandedIDs() []string {
	var ids []string
	if n.IsExpanded {
		ids = append(ids, n.ID)
	}
	for _, child := range n.Children {
		ids = append(ids, child.ExpandedIDs()...)
	}
	return ids
}

// RestoreExpanded expands every node whose id is listed
func (n *TreeNode) RestoreExpanded(ids []string) {
	if slices.Contains(ids, n.ID) {
		n.IsExpanded = true
	}
	for _, child := range n.Children {
		child.RestoreExpanded(ids)
	}
}

// Toggle expands or collapses the node
func (n *TreeNode) Toggle() {
	n.IsExpanded = !n.IsExpanded
}

// Expand sets the node as expanded
func (n *TreeNode) Expand() {
	n.IsExpanded = true
}

// Collapse sets the node as collapsed
func (n *TreeNode) Collapse() {
	n.IsExpanded = false
}

// SortByName sorts search results by name, then id
func SortByName(results []SearchResult) {
	slices.SortFunc(results, func(a, b SearchResult) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

// OwnerPath renders the ownership chain of e as "Root/Child/Leaf"
func OwnerPath(e Element) string {
	chain := Ancestors(e)
	slices.Reverse(chain)
	path := ""
	for _, a := range chain {
		path += labelOf(a) + "/"
	}
	return path + labelOf(e)
}

func labelOf(e Element) string {
	if name := NameOf(e); name != "" {
		return name
	}
	return "(" + e.TypeName() + ")"
}
