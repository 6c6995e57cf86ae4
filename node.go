package sapling

// NodeRef is a handle to a node slot in a Tree's pool. Handles are plain
// indices and are only meaningful for the Tree that issued them, until that
// Tree is cleared.
type NodeRef int32

// NoNode is the null handle.
const NoNode NodeRef = -1

// Valid reports whether ref is not NoNode. It does not check that the handle
// belongs to a live slot; use Tree.Node for that.
func (ref NodeRef) Valid() bool {
	return ref >= 0
}

// Props is the flat set of display properties shared by every node kind.
// Not every field is meaningful for every kind; unused fields are ignored by
// the reconciler. Props is comparable, so two values can be checked for a
// visible change with ==.
type Props struct {
	// Geometry
	X, Y          int16
	Width, Height uint16

	// Colors
	Color       Color // foreground: text, shape fill, progress fill
	Background  Color // 0 means none for grouping nodes
	BorderColor Color

	// Decoration
	BorderWidth  uint8
	CornerRadius uint8
	Opacity      uint8

	// Text
	Text     string
	FontSize uint8
	Align    TextAlign

	// Shapes
	Radius    uint16
	LineWidth uint8

	// State
	Visible bool
	Enabled bool
	Focused bool
	Pressed bool

	// Flex weight; progress nodes read it as a 0-100 percentage.
	Flex    uint8
	Padding uint8
	Margin  uint8
	Gap     uint8

	// Metadata
	Key uint32 // reconciliation key; 0 means none
	Tag uint32 // caller-defined
}

// DefaultFontSize is the pixel height of the built-in bitmap font.
const DefaultFontSize = 13

// DefaultProps returns the property defaults used by the builder helpers:
// visible, enabled, fully opaque, white foreground, default font size.
func DefaultProps() Props {
	return Props{
		Color:    ColorWhite,
		Opacity:  255,
		FontSize: DefaultFontSize,
		Visible:  true,
		Enabled:  true,
	}
}

// Equal reports whether p and other would render identically.
func (p *Props) Equal(other *Props) bool {
	return *p == *other
}

// Bounds returns the node's screen-space rectangle.
func (p *Props) Bounds() Rect {
	return Rect{X: int(p.X), Y: int(p.Y), Width: int(p.Width), Height: int(p.Height)}
}

// Node is a single element of the scene tree. All kinds share this flat
// struct; relationships are handles into the owning Tree's pool, forming a
// doubly linked sibling list under each parent.
type Node struct {
	// Identity
	ID   uint32
	Kind NodeKind

	Props Props

	// Hierarchy
	parent      NodeRef
	firstChild  NodeRef
	lastChild   NodeRef
	nextSibling NodeRef
	prevSibling NodeRef
	childCount  int
	depth       int
}

// Parent returns the node's parent handle, or NoNode for the root and
// detached nodes.
func (n *Node) Parent() NodeRef { return n.parent }

// FirstChild returns the first child handle or NoNode.
func (n *Node) FirstChild() NodeRef { return n.firstChild }

// LastChild returns the last child handle or NoNode.
func (n *Node) LastChild() NodeRef { return n.lastChild }

// NextSibling returns the following sibling handle or NoNode.
func (n *Node) NextSibling() NodeRef { return n.nextSibling }

// PrevSibling returns the preceding sibling handle or NoNode.
func (n *Node) PrevSibling() NodeRef { return n.prevSibling }

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int { return n.childCount }

// Depth returns the distance from the root (the root has depth 0).
func (n *Node) Depth() int { return n.depth }

// reset puts the slot into its freshly allocated state.
func (n *Node) reset(id uint32, kind NodeKind, props Props) {
	*n = Node{
		ID:          id,
		Kind:        kind,
		Props:       props,
		parent:      NoNode,
		firstChild:  NoNode,
		lastChild:   NoNode,
		nextSibling: NoNode,
		prevSibling: NoNode,
	}
}
