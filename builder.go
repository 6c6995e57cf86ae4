package sapling

// Builder constructs a tree declaratively with a parent stack. Each helper
// appends a node to the current parent; Push makes a node the parent of the
// following calls and Pop returns to the previous one.
//
// Errors are sticky: after the first failure every call is a no-op that
// returns NoNode, and Err reports the failure. A partially built tree must
// not be rendered.
type Builder struct {
	tree  *Tree
	stack []NodeRef
	err   error
}

// Build returns a Builder that appends under the tree's root.
func (t *Tree) Build() *Builder {
	return t.BuildAt(t.root)
}

// BuildAt returns a Builder that appends under parent.
func (t *Tree) BuildAt(parent NodeRef) *Builder {
	t.mustNode(parent, "BuildAt")
	return &Builder{tree: t, stack: []NodeRef{parent}}
}

// Tree returns the tree being built.
func (b *Builder) Tree() *Tree {
	return b.tree
}

// Err returns the first error encountered, if any.
func (b *Builder) Err() error {
	return b.err
}

// Parent returns the node new children are appended to.
func (b *Builder) Parent() NodeRef {
	return b.stack[len(b.stack)-1]
}

// Node appends a node of any kind with explicit props.
func (b *Builder) Node(kind NodeKind, props Props) NodeRef {
	if b.err != nil {
		return NoNode
	}
	ref, err := b.tree.CreateChild(b.Parent(), kind, props)
	if err != nil {
		b.err = err
		return NoNode
	}
	return ref
}

// Push appends a grouping node and makes it the current parent.
func (b *Builder) Push(kind NodeKind, props Props) NodeRef {
	ref := b.Node(kind, props)
	if ref != NoNode {
		b.stack = append(b.stack, ref)
	}
	return ref
}

// Pop returns to the previous parent. Popping the starting parent is a
// no-op, so an unbalanced Pop after a failed Push is harmless.
func (b *Builder) Pop() {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func boxProps(x, y, w, h int) Props {
	p := DefaultProps()
	p.X, p.Y = int16(x), int16(y)
	p.Width, p.Height = uint16(w), uint16(h)
	return p
}

// Rect appends a filled rectangle.
func (b *Builder) Rect(x, y, w, h int, c Color) NodeRef {
	p := boxProps(x, y, w, h)
	p.Color = c
	return b.Node(KindRect, p)
}

// Circle appends a filled circle centered at (cx, cy). Its bounds are the
// enclosing square.
func (b *Builder) Circle(cx, cy, r int, c Color) NodeRef {
	p := boxProps(cx-r, cy-r, 2*r+1, 2*r+1)
	p.Radius = uint16(r)
	p.Color = c
	return b.Node(KindCircle, p)
}

// Line appends a segment from (x0, y0) to (x0+dx, y0+dy). The offsets are
// stored as the node size, so they must not be negative.
func (b *Builder) Line(x0, y0, dx, dy int, c Color) NodeRef {
	p := boxProps(x0, y0, dx, dy)
	p.Color = c
	p.LineWidth = 1
	return b.Node(KindLine, p)
}

// Text appends a left-aligned text node sized to its content.
func (b *Builder) Text(x, y int, s string, c Color) NodeRef {
	p := boxProps(x, y, TextWidth(s, DefaultFontSize), DefaultFontSize)
	p.Text = s
	p.Color = c
	return b.Node(KindText, p)
}

// Label appends a text node laid out inside a fixed box.
func (b *Builder) Label(x, y, w, h int, s string, align TextAlign, c Color) NodeRef {
	p := boxProps(x, y, w, h)
	p.Text = s
	p.Align = align
	p.Color = c
	return b.Node(KindLabel, p)
}

// Button appends a button with a centered label.
func (b *Builder) Button(x, y, w, h int, label string, bg, fg Color) NodeRef {
	p := boxProps(x, y, w, h)
	p.Text = label
	p.Align = AlignCenter
	p.Background = bg
	p.Color = fg
	p.BorderColor = fg
	p.BorderWidth = 1
	return b.Node(KindButton, p)
}

// Panel appends a panel and makes it the current parent.
func (b *Builder) Panel(x, y, w, h int, bg Color) NodeRef {
	p := boxProps(x, y, w, h)
	p.Background = bg
	return b.Push(KindPanel, p)
}

// Progress appends a progress bar filled to percent (0-100).
func (b *Builder) Progress(x, y, w, h, percent int, track, fill Color) NodeRef {
	p := boxProps(x, y, w, h)
	p.Background = track
	p.Color = fill
	p.Flex = uint8(max(0, min(percent, 100)))
	return b.Node(KindProgress, p)
}

// Image appends an image placeholder.
func (b *Builder) Image(x, y, w, h int, bg Color) NodeRef {
	p := boxProps(x, y, w, h)
	p.Background = bg
	return b.Node(KindImage, p)
}

// Container appends a container and makes it the current parent.
func (b *Builder) Container(x, y, w, h int) NodeRef {
	return b.Push(KindContainer, boxProps(x, y, w, h))
}

// HStack appends a horizontal stack and makes it the current parent.
// Positions are not computed; children carry their own coordinates.
func (b *Builder) HStack(x, y, w, h, gap int) NodeRef {
	p := boxProps(x, y, w, h)
	p.Gap = uint8(gap)
	return b.Push(KindHStack, p)
}

// VStack appends a vertical stack and makes it the current parent.
func (b *Builder) VStack(x, y, w, h, gap int) NodeRef {
	p := boxProps(x, y, w, h)
	p.Gap = uint8(gap)
	return b.Push(KindVStack, p)
}
