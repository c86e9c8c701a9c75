package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Element category colors
	ContainerColor    = lipgloss.Color("#6366F1") // Indigo
	ClassifierColor   = lipgloss.Color("#60A5FA") // Blue
	RelationshipColor = lipgloss.Color("#EC4899") // Pink
	ViewColor         = lipgloss.Color("#F97316") // Orange

	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Tree node styles
	NodeContainer = lipgloss.NewStyle().
			Bold(true).
			Foreground(ContainerColor)

	NodeClassifier = lipgloss.NewStyle().
			Foreground(ClassifierColor)

	NodeRelationship = lipgloss.NewStyle().
				Foreground(RelationshipColor)

	NodeView = lipgloss.NewStyle().
			Foreground(ViewColor)

	NodeFeature = lipgloss.NewStyle()

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	NodeType = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Tree indicators
	TreeBranch    = lipgloss.NewStyle().Foreground(Muted)
	TreeExpanded  = "▼ "
	TreeCollapsed = "▶ "
	TreeLeaf      = "  "

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusModified = lipgloss.NewStyle().
			Background(Warning).
			Foreground(Black).
			Padding(0, 1).
			MarginRight(1)

	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SearchMatch = lipgloss.NewStyle().
			Background(Warning).
			Foreground(Black)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// Category groups element types for coloring.
type Category int

const (
	CategoryFeature Category = iota
	CategoryContainer
	CategoryClassifier
	CategoryRelationship
	CategoryView
)

// NodeStyle returns the tree style for an element category
func NodeStyle(c Category) lipgloss.Style {
	switch c {
	case CategoryContainer:
		return NodeContainer
	case CategoryClassifier:
		return NodeClassifier
	case CategoryRelationship:
		return NodeRelationship
	case CategoryView:
		return NodeView
	default:
		return NodeFeature
	}
}
