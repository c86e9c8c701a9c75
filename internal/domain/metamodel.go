package domain

// Registered type names.
const (
	TypeElement              = "Element"
	TypeModelElement         = "ModelElement"
	TypeRelationship         = "Relationship"
	TypeDirectedRelationship = "DirectedRelationship"
	TypeView                 = "View"

	TypeProject        = "Project"
	TypeModel          = "Model"
	TypePackage        = "Package"
	TypeClass          = "Class"
	TypeProperty       = "Property"
	TypeMethod         = "Method"
	TypeTag            = "Tag"
	TypeDependency     = "Dependency"
	TypeGeneralization = "Generalization"
	TypeAssociation    = "Association"
	TypeAssociationEnd = "AssociationEnd"
	TypeDiagram        = "Diagram"
	TypeNodeView       = "NodeView"
	TypeEdgeView       = "EdgeView"
	TypeLabelView      = "LabelView"
)

var (
	VisibilityKinds  = []string{"public", "protected", "private", "package"}
	AggregationKinds = []string{"none", "shared", "composite"}
	TagKinds         = []string{"string", "boolean", "number", "reference", "hidden"}
	LineStyles       = []string{"rectilinear", "oblique", "rounded", "curve"}
)

// ModelElement is the base of every named model element.
type ModelElement struct {
	Core
	Name          string
	Documentation string
	Tags          []*Tag
	OwnedElements []Element
}

func (m *ModelElement) ModelBase() *ModelElement { return m }
func (m *ModelElement) GetName() string          { return m.Name }
func (m *ModelElement) SetName(name string)      { m.Name = name }

type modelElement interface{ ModelBase() *ModelElement }

// Tag is a user-defined name/value annotation.
type Tag struct {
	ModelElement
	Kind  int
	Value any
}

// Project is the document root.
type Project struct {
	ModelElement
	Author  string
	Company string
	Version string
}

type Model struct {
	ModelElement
}

type Package struct {
	ModelElement
	Visibility int
}

type Class struct {
	ModelElement
	Visibility int
	IsAbstract bool
	Attributes []*Property
	Operations []*Method
}

type Property struct {
	ModelElement
	Type         any
	Multiplicity string
	IsStatic     bool
}

type Method struct {
	ModelElement
	ReturnType any
	IsStatic   bool
}

// Relationship is the base of every model-level link between elements.
type Relationship struct {
	ModelElement
}

// DirectedRelationship links a source to a target.
type DirectedRelationship struct {
	Relationship
	Source Ref
	Target Ref
}

func (d *DirectedRelationship) DirectedBase() *DirectedRelationship { return d }

type directed interface{ DirectedBase() *DirectedRelationship }

type Dependency struct {
	DirectedRelationship
	Mapping string
}

type Generalization struct {
	DirectedRelationship
	Discriminator string
}

// Association connects two ends, each owned by the association.
type Association struct {
	Relationship
	End1 *AssociationEnd
	End2 *AssociationEnd
}

type AssociationEnd struct {
	ModelElement
	Reference    Ref
	Navigable    bool
	Multiplicity string
	Aggregation  int
}

type Diagram struct {
	ModelElement
	DefaultDiagram bool
	OwnedViews     []Element
}

// View is the base of every diagram element. Model points at the element it presents.
type View struct {
	Core
	Model    Ref
	Selected bool
	SubViews []Element
}

func (v *View) ViewBase() *View { return v }

type view interface{ ViewBase() *View }

type NodeView struct {
	View
	Left          float64
	Top           float64
	Width         float64
	Height        float64
	FillColor     string
	ContainerView Ref
}

type EdgeView struct {
	View
	Head      Ref
	Tail      Ref
	Points    Points
	LineStyle int
}

type LabelView struct {
	View
	Text string
}

// NewMetamodel returns a registry holding every built-in element type.
func NewMetamodel() *Registry {
	r := NewRegistry()
	r.MustRegister(
		TypeInfo{Name: TypeElement, Abstract: true},
		TypeInfo{Name: TypeModelElement, Super: TypeElement, Abstract: true, Attrs: []Attr{
			StringField("name", "", func(m modelElement) *string { return &m.ModelBase().Name }),
			StringField("documentation", "", func(m modelElement) *string { return &m.ModelBase().Documentation }),
			ObjsField("tags", TypeTag, func(m modelElement) *[]*Tag { return &m.ModelBase().Tags }),
			ObjsField("ownedElements", TypeModelElement, func(m modelElement) *[]Element { return &m.ModelBase().OwnedElements }),
		}},
		TypeInfo{Name: TypeTag, Super: TypeModelElement, New: func() Element { return &Tag{} }, Attrs: []Attr{
			EnumField("kind", "TagKind", TagKinds, 0, func(t *Tag) *int { return &t.Kind }),
			VariantField("value", TypeModelElement, func(t *Tag) *any { return &t.Value }),
		}},
		TypeInfo{Name: TypeProject, Super: TypeModelElement, New: func() Element { return &Project{} }, Attrs: []Attr{
			StringField("author", "", func(p *Project) *string { return &p.Author }),
			StringField("company", "", func(p *Project) *string { return &p.Company }),
			StringField("version", "", func(p *Project) *string { return &p.Version }),
		}},
		TypeInfo{Name: TypeModel, Super: TypeModelElement, New: func() Element { return &Model{} }},
		TypeInfo{Name: TypePackage, Super: TypeModelElement, New: func() Element { return &Package{} }, Attrs: []Attr{
			EnumField("visibility", "VisibilityKind", VisibilityKinds, 0, func(p *Package) *int { return &p.Visibility }),
		}},
		TypeInfo{Name: TypeClass, Super: TypeModelElement, New: func() Element { return &Class{} }, Attrs: []Attr{
			EnumField("visibility", "VisibilityKind", VisibilityKinds, 0, func(c *Class) *int { return &c.Visibility }),
			BoolField("isAbstract", false, func(c *Class) *bool { return &c.IsAbstract }),
			ObjsField("attributes", TypeProperty, func(c *Class) *[]*Property { return &c.Attributes }),
			ObjsField("operations", TypeMethod, func(c *Class) *[]*Method { return &c.Operations }),
		}},
		TypeInfo{Name: TypeProperty, Super: TypeModelElement, New: func() Element { return &Property{} }, Attrs: []Attr{
			VariantField("type", TypeModelElement, func(p *Property) *any { return &p.Type }),
			StringField("multiplicity", "", func(p *Property) *string { return &p.Multiplicity }),
			BoolField("isStatic", false, func(p *Property) *bool { return &p.IsStatic }),
		}},
		TypeInfo{Name: TypeMethod, Super: TypeModelElement, New: func() Element { return &Method{} }, Attrs: []Attr{
			VariantField("returnType", TypeModelElement, func(m *Method) *any { return &m.ReturnType }),
			BoolField("isStatic", false, func(m *Method) *bool { return &m.IsStatic }),
		}},
		TypeInfo{Name: TypeRelationship, Super: TypeModelElement, Abstract: true},
		TypeInfo{Name: TypeDirectedRelationship, Super: TypeRelationship, Abstract: true, Attrs: []Attr{
			RefField("source", TypeModelElement, func(d directed) *Ref { return &d.DirectedBase().Source }),
			RefField("target", TypeModelElement, func(d directed) *Ref { return &d.DirectedBase().Target }),
		}},
		TypeInfo{Name: TypeDependency, Super: TypeDirectedRelationship, New: func() Element { return &Dependency{} }, Attrs: []Attr{
			StringField("mapping", "", func(d *Dependency) *string { return &d.Mapping }),
		}},
		TypeInfo{Name: TypeGeneralization, Super: TypeDirectedRelationship, New: func() Element { return &Generalization{} }, Attrs: []Attr{
			StringField("discriminator", "", func(g *Generalization) *string { return &g.Discriminator }),
		}},
		TypeInfo{Name: TypeAssociationEnd, Super: TypeModelElement, New: func() Element { return &AssociationEnd{} }, Attrs: []Attr{
			RefField("reference", TypeModelElement, func(e *AssociationEnd) *Ref { return &e.Reference }),
			BoolField("navigable", true, func(e *AssociationEnd) *bool { return &e.Navigable }),
			StringField("multiplicity", "", func(e *AssociationEnd) *string { return &e.Multiplicity }),
			EnumField("aggregation", "AggregationKind", AggregationKinds, 0, func(e *AssociationEnd) *int { return &e.Aggregation }),
		}},
		TypeInfo{Name: TypeAssociation, Super: TypeRelationship, New: func() Element { return &Association{} }, Attrs: []Attr{
			ObjField("end1", TypeAssociationEnd, func(a *Association) **AssociationEnd { return &a.End1 }),
			ObjField("end2", TypeAssociationEnd, func(a *Association) **AssociationEnd { return &a.End2 }),
		}},
		TypeInfo{Name: TypeDiagram, Super: TypeModelElement, New: func() Element { return &Diagram{} }, Attrs: []Attr{
			BoolField("defaultDiagram", false, func(d *Diagram) *bool { return &d.DefaultDiagram }),
			ObjsField("ownedViews", TypeView, func(d *Diagram) *[]Element { return &d.OwnedViews }),
		}},
		TypeInfo{Name: TypeView, Super: TypeElement, Abstract: true, Attrs: []Attr{
			RefField("model", TypeModelElement, func(v view) *Ref { return &v.ViewBase().Model }),
			transient(BoolField("selected", false, func(v view) *bool { return &v.ViewBase().Selected })),
			ObjsField("subViews", TypeView, func(v view) *[]Element { return &v.ViewBase().SubViews }),
		}},
		TypeInfo{Name: TypeNodeView, Super: TypeView, New: func() Element { return &NodeView{} }, Attrs: []Attr{
			NumberField("left", 0, func(n *NodeView) *float64 { return &n.Left }),
			NumberField("top", 0, func(n *NodeView) *float64 { return &n.Top }),
			NumberField("width", 100, func(n *NodeView) *float64 { return &n.Width }),
			NumberField("height", 40, func(n *NodeView) *float64 { return &n.Height }),
			StringField("fillColor", "#ffffff", func(n *NodeView) *string { return &n.FillColor }),
			RefField("containerView", TypeView, func(n *NodeView) *Ref { return &n.ContainerView }),
		}},
		TypeInfo{Name: TypeEdgeView, Super: TypeView, New: func() Element { return &EdgeView{} }, Attrs: []Attr{
			RefField("head", TypeView, func(e *EdgeView) *Ref { return &e.Head }),
			RefField("tail", TypeView, func(e *EdgeView) *Ref { return &e.Tail }),
			CustomField("points", "Points", Points(nil), func(e *EdgeView) *Points { return &e.Points }, encodePoints, decodePoints),
			EnumField("lineStyle", "LineStyle", LineStyles, 0, func(e *EdgeView) *int { return &e.LineStyle }),
		}},
		TypeInfo{Name: TypeLabelView, Super: TypeView, New: func() Element { return &LabelView{} }, Attrs: []Attr{
			StringField("text", "", func(l *LabelView) *string { return &l.Text }),
		}},
	)
	return r
}

func transient(a Attr) Attr {
	a.Transient = true
	return a
}
