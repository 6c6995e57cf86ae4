package sapling

import (
	"math"
	"unicode/utf8"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph metrics of the built-in 7x13 bitmap font.
const (
	glyphWidth  = 7
	glyphHeight = 13
)

// textScale returns the integer magnification used for a font size.
func textScale(size int) int {
	return max(1, size/glyphHeight)
}

// TextWidth returns the approximate pixel width of s at the given font size,
// assuming a fixed glyph advance.
func TextWidth(s string, size int) int {
	return utf8.RuneCountInString(s) * glyphWidth * textScale(size)
}

// TextHeight returns the pixel height of one line at the given font size.
func TextHeight(size int) int {
	return glyphHeight * textScale(size)
}

// FramebufferCanvas implements Canvas by rasterizing directly into a
// Framebuffer. Shapes are drawn with integer midpoint and Bresenham
// algorithms; text uses the basicfont 7x13 face scaled by whole pixels.
type FramebufferCanvas struct {
	fb *Framebuffer

	clip     Rect
	clipping bool
}

// NewFramebufferCanvas returns a canvas drawing into fb.
func NewFramebufferCanvas(fb *Framebuffer) *FramebufferCanvas {
	return &FramebufferCanvas{fb: fb}
}

// Framebuffer returns the target framebuffer.
func (c *FramebufferCanvas) Framebuffer() *Framebuffer {
	return c.fb
}

// SetClip restricts every drawing operation except Clear to r.
func (c *FramebufferCanvas) SetClip(r Rect) {
	c.clip = r
	c.clipping = true
}

// ResetClip lifts the clip set by SetClip.
func (c *FramebufferCanvas) ResetClip() {
	c.clip = Rect{}
	c.clipping = false
}

// Clear fills the whole framebuffer, ignoring the clip.
func (c *FramebufferCanvas) Clear(col Color) {
	c.fb.Clear(col)
}

// FillRect fills a rectangle.
func (c *FramebufferCanvas) FillRect(x, y, w, h int, col Color) {
	c.fill(x, y, w, h, col)
}

// fill is the clipped form of Framebuffer.FillRect that every shape ends in.
func (c *FramebufferCanvas) fill(x, y, w, h int, col Color) {
	if w <= 0 || h <= 0 {
		return
	}
	if c.clipping {
		r := Rect{X: x, Y: y, Width: w, Height: h}.Intersect(c.clip)
		if r.Empty() {
			return
		}
		x, y, w, h = r.X, r.Y, r.Width, r.Height
	}
	c.fb.FillRect(x, y, w, h, col)
}

func (c *FramebufferCanvas) hline(x, y, w int, col Color) { c.fill(x, y, w, 1, col) }

func (c *FramebufferCanvas) vline(x, y, h int, col Color) { c.fill(x, y, 1, h, col) }

func (c *FramebufferCanvas) set(x, y int, col Color) {
	if c.clipping && !c.clip.Contains(x, y) {
		return
	}
	c.fb.SetPixel(x, y, col)
}

// DrawRect strokes a one-pixel outline just inside the rectangle.
func (c *FramebufferCanvas) DrawRect(x, y, w, h int, col Color) {
	if w <= 0 || h <= 0 {
		return
	}
	c.hline(x, y, w, col)
	c.hline(x, y+h-1, w, col)
	c.vline(x, y, h, col)
	c.vline(x+w-1, y, h, col)
}

// clampRadius keeps corner arcs from overlapping.
func clampRadius(w, h, r int) int {
	return max(0, min(r, w/2, h/2))
}

// FillRoundedRect fills a rectangle with quarter-circle corners of radius r.
func (c *FramebufferCanvas) FillRoundedRect(x, y, w, h, r int, col Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r = clampRadius(w, h, r)
	c.fill(x, y+r, w, h-2*r, col)
	for i := 0; i < r; i++ {
		d := r - i
		dx := isqrt(r*r - d*d)
		span := w - 2*(r-dx)
		c.hline(x+r-dx, y+i, span, col)
		c.hline(x+r-dx, y+h-1-i, span, col)
	}
}

// DrawRoundedRect strokes a one-pixel outline with quarter-circle corners.
func (c *FramebufferCanvas) DrawRoundedRect(x, y, w, h, r int, col Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r = clampRadius(w, h, r)
	if r == 0 {
		c.DrawRect(x, y, w, h, col)
		return
	}
	c.hline(x+r, y, w-2*r, col)
	c.hline(x+r, y+h-1, w-2*r, col)
	c.vline(x, y+r, h-2*r, col)
	c.vline(x+w-1, y+r, h-2*r, col)

	left, right := x+r, x+w-1-r
	top, bottom := y+r, y+h-1-r
	px, py := r, 0
	err := 1 - r
	for px >= py {
		c.set(right+px, bottom+py, col)
		c.set(right+py, bottom+px, col)
		c.set(left-px, bottom+py, col)
		c.set(left-py, bottom+px, col)
		c.set(left-px, top-py, col)
		c.set(left-py, top-px, col)
		c.set(right+px, top-py, col)
		c.set(right+py, top-px, col)
		py++
		if err < 0 {
			err += 2*py + 1
		} else {
			px--
			err += 2*(py-px) + 1
		}
	}
}

// FillCircle fills a circle of radius r centered at (cx, cy).
func (c *FramebufferCanvas) FillCircle(cx, cy, r int, col Color) {
	if r < 0 {
		return
	}
	for dy := -r; dy <= r; dy++ {
		dx := isqrt(r*r - dy*dy)
		c.hline(cx-dx, cy+dy, 2*dx+1, col)
	}
}

// DrawLine draws a one-pixel segment between both endpoints, inclusive.
func (c *FramebufferCanvas) DrawLine(x0, y0, x1, y1 int, col Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawText draws s with its top-left corner at (x, y). Runes missing from
// the font are drawn as the replacement glyph.
func (c *FramebufferCanvas) DrawText(x, y int, s string, size int, col Color) {
	face := basicfont.Face7x13
	scale := textScale(size)
	dot := fixed.P(0, face.Ascent)
	penX := x
	for _, r := range s {
		dr, mask, maskp, _, ok := face.Glyph(dot, r)
		if ok {
			for gy := 0; gy < dr.Dy(); gy++ {
				for gx := 0; gx < dr.Dx(); gx++ {
					_, _, _, a := mask.At(maskp.X+gx, maskp.Y+gy).RGBA()
					if a < 0x8000 {
						continue
					}
					px := penX + (dr.Min.X+gx)*scale
					py := y + (dr.Min.Y+gy)*scale
					c.fill(px, py, scale, scale, col)
				}
			}
		}
		penX += glyphWidth * scale
	}
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Sqrt(float64(n)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
