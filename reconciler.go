package sapling

// Canvas is the drawing capability the reconciler renders through. Every
// operation clips silently to the drawing surface, and every operation but
// Clear also clips to the rectangle given to SetClip until ResetClip.
type Canvas interface {
	SetClip(r Rect)
	ResetClip()
	Clear(c Color)
	FillRect(x, y, w, h int, c Color)
	DrawRect(x, y, w, h int, c Color)
	FillRoundedRect(x, y, w, h, r int, c Color)
	DrawRoundedRect(x, y, w, h, r int, c Color)
	FillCircle(cx, cy, r int, c Color)
	DrawLine(x0, y0, x1, y1 int, c Color)
	DrawText(x, y int, s string, size int, c Color)
}

// pressedDarken is how much a pressed button's background is darkened, in
// percent.
const pressedDarken = 25

// Reconciler turns diff results into draw calls. Drawing a node is
// idempotent: it always repaints the node's full visual from its new props.
type Reconciler struct {
	canvas Canvas

	// Background is painted over every dirty rectangle before changes are
	// applied, and over the whole canvas by RenderFull.
	Background Color

	// DirtyRegions enables erasing dirty rectangles before applying changes.
	// Without it removed content stays on screen.
	DirtyRegions bool

	drawCalls int
}

// NewReconciler creates a reconciler drawing on canvas with dirty-region
// erasing enabled.
func NewReconciler(canvas Canvas) *Reconciler {
	return &Reconciler{canvas: canvas, DirtyRegions: true}
}

// SetCanvas replaces the canvas.
func (r *Reconciler) SetCanvas(canvas Canvas) {
	r.canvas = canvas
}

// Canvas returns the bound canvas, or nil.
func (r *Reconciler) Canvas() Canvas {
	return r.canvas
}

// DrawCalls returns the number of canvas calls issued since the last
// ResetDrawCalls.
func (r *Reconciler) DrawCalls() int {
	return r.drawCalls
}

// ResetDrawCalls zeroes the draw-call counter.
func (r *Reconciler) ResetDrawCalls() {
	r.drawCalls = 0
}

// Apply erases the diff's dirty rectangles (when DirtyRegions is set) and
// then redraws every created or updated node in change-list order. Removes
// need no drawing; the erase pass already cleared them.
func (r *Reconciler) Apply(d *DiffResult) error {
	if r.canvas == nil {
		return ErrNoGraphics
	}
	if r.DirtyRegions {
		for _, rc := range d.Dirty {
			r.canvas.FillRect(rc.X, rc.Y, rc.Width, rc.Height, r.Background)
			r.drawCalls++
		}
	}
	for i := range d.Changes {
		ch := &d.Changes[i]
		switch ch.Kind {
		case ChangeCreate, ChangeUpdate, ChangeMove:
			if ch.New != nil {
				r.drawNode(ch.NodeKind, ch.New)
			}
		case ChangeRemove:
		}
	}
	return nil
}

// RenderFull clears the canvas and draws every attached node of t in
// pre-order, bypassing the diff.
func (r *Reconciler) RenderFull(t *Tree) error {
	if r.canvas == nil {
		return ErrNoGraphics
	}
	r.canvas.Clear(r.Background)
	r.drawCalls++
	t.Walk(func(_ NodeRef, n *Node) bool {
		r.drawNode(n.Kind, &n.Props)
		return true
	})
	return nil
}

// inkBounds returns the rectangle a node of the given kind may paint. The
// diff records it as the node's dirty region and the reconciler clips the
// node's drawing to it, so erasing a node's ink bounds always removes it.
//
// Lines include their end point at (X+Width, Y+Height). Circles cover the
// square around their center, which can exceed the box when Radius is set.
// Every other kind, text included, paints inside its box.
func inkBounds(kind NodeKind, p *Props) Rect {
	b := p.Bounds()
	switch kind {
	case KindLine:
		b.Width++
		b.Height++
	case KindCircle:
		radius := circleRadius(p)
		b = Rect{
			X:      b.X + b.Width/2 - radius,
			Y:      b.Y + b.Height/2 - radius,
			Width:  2*radius + 1,
			Height: 2*radius + 1,
		}
	}
	return b
}

// circleRadius is Radius, or half the shorter side when Radius is zero.
func circleRadius(p *Props) int {
	if p.Radius != 0 {
		return int(p.Radius)
	}
	return min(int(p.Width), int(p.Height)) / 2
}

// drawNode paints one node, clipped to its ink bounds. Children are separate
// nodes and are not drawn here.
func (r *Reconciler) drawNode(kind NodeKind, p *Props) {
	if !p.Visible {
		return
	}
	r.canvas.SetClip(inkBounds(kind, p))
	defer r.canvas.ResetClip()

	x, y := int(p.X), int(p.Y)
	w, h := int(p.Width), int(p.Height)

	switch kind {
	case KindRect:
		r.fillBox(x, y, w, h, int(p.CornerRadius), p.Color)
		r.drawBorder(p)
	case KindCircle:
		r.canvas.FillCircle(x+w/2, y+h/2, circleRadius(p), p.Color)
		r.drawCalls++
	case KindLine:
		r.canvas.DrawLine(x, y, x+w, y+h, p.Color)
		r.drawCalls++
	case KindText, KindLabel:
		if p.Background != 0 {
			r.fillBox(x, y, w, h, int(p.CornerRadius), p.Background)
		}
		r.drawText(p, false)
	case KindButton:
		bg := p.Background
		if p.Pressed {
			bg = bg.Darken(pressedDarken)
		}
		r.fillBox(x, y, w, h, int(p.CornerRadius), bg)
		r.drawBorder(p)
		r.drawText(p, true)
	case KindPanel:
		r.fillBox(x, y, w, h, int(p.CornerRadius), p.Background)
		r.drawBorder(p)
	case KindProgress:
		r.fillBox(x, y, w, h, int(p.CornerRadius), p.Background)
		pct := min(int(p.Flex), 100)
		if fill := w * pct / 100; fill > 0 {
			r.fillBox(x, y, fill, h, int(p.CornerRadius), p.Color)
		}
		r.drawBorder(p)
	case KindImage, KindList, KindListItem, KindContainer, KindScrollView,
		KindHStack, KindVStack, KindRoot:
		if p.Background != 0 {
			r.fillBox(x, y, w, h, int(p.CornerRadius), p.Background)
		}
	case KindFragment:
	}
}

// fillBox fills a rectangle, rounding the corners when radius > 0.
func (r *Reconciler) fillBox(x, y, w, h, radius int, c Color) {
	if w <= 0 || h <= 0 {
		return
	}
	if radius > 0 {
		r.canvas.FillRoundedRect(x, y, w, h, radius, c)
	} else {
		r.canvas.FillRect(x, y, w, h, c)
	}
	r.drawCalls++
}

// drawBorder strokes BorderWidth nested outlines inside the node bounds.
func (r *Reconciler) drawBorder(p *Props) {
	x, y := int(p.X), int(p.Y)
	w, h := int(p.Width), int(p.Height)
	radius := int(p.CornerRadius)
	for i := 0; i < int(p.BorderWidth) && w > 2*i && h > 2*i; i++ {
		if radius > i {
			r.canvas.DrawRoundedRect(x+i, y+i, w-2*i, h-2*i, radius-i, p.BorderColor)
		} else {
			r.canvas.DrawRect(x+i, y+i, w-2*i, h-2*i, p.BorderColor)
		}
		r.drawCalls++
	}
}

// drawText places the text inside the node bounds according to Align.
// Buttons center their label vertically; plain text sits on the top edge
// plus padding. Text that does not fit is cut off at the node's edges.
func (r *Reconciler) drawText(p *Props, centerVertically bool) {
	if p.Text == "" {
		return
	}
	size := int(p.FontSize)
	if size == 0 {
		size = DefaultFontSize
	}
	x, y := int(p.X), int(p.Y)
	w, h := int(p.Width), int(p.Height)
	pad := int(p.Padding)
	tw := TextWidth(p.Text, size)

	tx := x + pad
	switch p.Align {
	case AlignCenter:
		tx = x + (w-tw)/2
	case AlignRight:
		tx = x + w - tw - pad
	}
	ty := y + pad
	if centerVertically {
		ty = y + (h-TextHeight(size))/2
	}
	r.canvas.DrawText(tx, ty, p.Text, size, p.Color)
	r.drawCalls++
}
