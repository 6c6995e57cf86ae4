package sapling

import (
	"fmt"
	"image"
	"image/color"
)

// Framebuffer is a packed RGB565 pixel store. Pixels are stored big-endian,
// the byte order display controllers expect on the wire, so a row of the
// buffer can be handed to a transport without conversion.
//
// Every mutation grows a single aggregate dirty rectangle. It never shrinks
// until ResetDirty, so once non-empty it bounds every pixel written since the
// last reset.
//
// Out-of-range coordinates are ignored rather than reported: drawing code can
// overhang the screen edges freely.
type Framebuffer struct {
	width, height int
	format        PixelFormat
	stride        int

	buffers [2][]byte
	back    int // index of the draw target
	double  bool

	dirty     Rect
	presented Rect // dirty region at the last ResetDirty, resynced on swap
}

// NewFramebuffer allocates a width×height framebuffer. With double set, two
// buffers are allocated and SwapBuffers alternates the draw target between
// them. Only FormatRGB565 is supported.
func NewFramebuffer(width, height int, format PixelFormat, double bool) (*Framebuffer, error) {
	if format != FormatRGB565 {
		return nil, fmt.Errorf("new framebuffer: %w: %s", ErrUnsupportedFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("new framebuffer: invalid size %dx%d", width, height)
	}
	stride := width * format.BytesPerPixel()
	fb := &Framebuffer{
		width:  width,
		height: height,
		format: format,
		stride: stride,
		double: double,
	}
	fb.buffers[0] = make([]byte, stride*height)
	if double {
		fb.buffers[1] = make([]byte, stride*height)
	} else {
		fb.buffers[1] = fb.buffers[0]
	}
	return fb, nil
}

// Width returns the width in pixels.
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the height in pixels.
func (fb *Framebuffer) Height() int { return fb.height }

// Size returns the dimensions (width, height).
func (fb *Framebuffer) Size() (width, height int) { return fb.width, fb.height }

// Stride returns the number of bytes per row.
func (fb *Framebuffer) Stride() int { return fb.stride }

// Format returns the pixel format.
func (fb *Framebuffer) Format() PixelFormat { return fb.format }

// DoubleBuffered reports whether two buffers are allocated.
func (fb *Framebuffer) DoubleBuffered() bool { return fb.double }

// Rect returns the framebuffer bounds as a Rect at (0, 0).
func (fb *Framebuffer) Rect() Rect {
	return Rect{Width: fb.width, Height: fb.height}
}

// RawBuffer returns the draw target: the bytes holding the most recently
// drawn frame, which the display transport ships. The slice aliases the
// framebuffer's storage.
func (fb *Framebuffer) RawBuffer() []byte {
	return fb.buffers[fb.back]
}

// FrontBuffer returns the buffer presented at the last SwapBuffers. With
// single buffering it is the same slice as RawBuffer.
func (fb *Framebuffer) FrontBuffer() []byte {
	return fb.buffers[1-fb.back]
}

// offset converts (x, y) to a byte offset in a buffer, or -1 if out of
// bounds.
func (fb *Framebuffer) offset(x, y int) int {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return -1
	}
	return y*fb.stride + x*2
}

// SetPixel writes c at (x, y). Out-of-range coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	i := fb.offset(x, y)
	if i < 0 {
		return
	}
	buf := fb.buffers[fb.back]
	buf[i] = byte(c >> 8)
	buf[i+1] = byte(c)
	fb.markDirty(Rect{X: x, Y: y, Width: 1, Height: 1})
}

// GetPixel returns the color at (x, y), or 0 if out of range.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	i := fb.offset(x, y)
	if i < 0 {
		return 0
	}
	buf := fb.buffers[fb.back]
	return Color(buf[i])<<8 | Color(buf[i+1])
}

// Clear fills the whole draw target with c.
func (fb *Framebuffer) Clear(c Color) {
	fillPattern(fb.buffers[fb.back], c)
	fb.markDirty(fb.Rect())
}

// FillRect fills the part of the rectangle that lies on screen. A zero or
// negative width or height does nothing.
func (fb *Framebuffer) FillRect(x, y, w, h int, c Color) {
	r := Rect{X: x, Y: y, Width: w, Height: h}.Intersect(fb.Rect())
	if r.Empty() {
		return
	}
	buf := fb.buffers[fb.back]
	first := buf[r.Y*fb.stride+r.X*2 : r.Y*fb.stride+r.Right()*2]
	fillPattern(first, c)
	for row := r.Y + 1; row < r.Bottom(); row++ {
		start := row*fb.stride + r.X*2
		copy(buf[start:start+len(first)], first)
	}
	fb.markDirty(r)
}

// HLine draws a horizontal line of w pixels starting at (x, y).
func (fb *Framebuffer) HLine(x, y, w int, c Color) {
	fb.FillRect(x, y, w, 1, c)
}

// VLine draws a vertical line of h pixels starting at (x, y).
func (fb *Framebuffer) VLine(x, y, h int, c Color) {
	fb.FillRect(x, y, 1, h, c)
}

// Blit copies a srcWidth×srcHeight block of packed pixels (same format and
// byte order as the framebuffer) to (x, y), clipped to the screen. Rows
// missing from a short src are skipped.
func (fb *Framebuffer) Blit(x, y int, src []byte, srcWidth, srcHeight int) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return
	}
	srcHeight = min(srcHeight, len(src)/(srcWidth*2))
	r := Rect{X: x, Y: y, Width: srcWidth, Height: srcHeight}.Intersect(fb.Rect())
	if r.Empty() {
		return
	}
	buf := fb.buffers[fb.back]
	sx := r.X - x
	for row := 0; row < r.Height; row++ {
		sy := r.Y - y + row
		from := (sy*srcWidth + sx) * 2
		to := (r.Y+row)*fb.stride + r.X*2
		copy(buf[to:to+r.Width*2], src[from:from+r.Width*2])
	}
	fb.markDirty(r)
}

// fillPattern writes c repeatedly across buf, doubling the copied span each
// step.
func fillPattern(buf []byte, c Color) {
	if len(buf) < 2 {
		return
	}
	buf[0] = byte(c >> 8)
	buf[1] = byte(c)
	for n := 2; n < len(buf); n *= 2 {
		copy(buf[n:], buf[:n])
	}
}

// --- Dirty tracking ---

func (fb *Framebuffer) markDirty(r Rect) {
	fb.dirty = fb.dirty.Union(r)
}

// DirtyRegion returns the bounding rectangle of all pixels written since the
// last ResetDirty. It is empty when nothing changed.
func (fb *Framebuffer) DirtyRegion() Rect {
	return fb.dirty
}

// IsDirty reports whether any pixel was written since the last ResetDirty.
func (fb *Framebuffer) IsDirty() bool {
	return !fb.dirty.Empty()
}

// ResetDirty marks the current contents as transferred.
func (fb *Framebuffer) ResetDirty() {
	fb.presented = fb.presented.Union(fb.dirty)
	fb.dirty = Rect{}
}

// SwapBuffers exchanges the draw target and the front buffer. It is a no-op
// with single buffering. The region changed since the previous swap is
// copied into the new draw target, so both buffers hold the same frame and
// incremental redraws stay correct.
func (fb *Framebuffer) SwapBuffers() {
	if !fb.double {
		return
	}
	fb.back = 1 - fb.back
	sync := fb.presented.Union(fb.dirty)
	front, draw := fb.buffers[1-fb.back], fb.buffers[fb.back]
	for row := sync.Y; row < sync.Bottom(); row++ {
		start := row*fb.stride + sync.X*2
		end := start + sync.Width*2
		copy(draw[start:end], front[start:end])
	}
	fb.presented = Rect{}
}

// --- image.Image / draw.Image ---

// ColorModel implements image.Image.
func (fb *Framebuffer) ColorModel() color.Model {
	return RGB565Model
}

// Bounds implements image.Image.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// At implements image.Image, reading the draw target.
func (fb *Framebuffer) At(x, y int) color.Color {
	return fb.GetPixel(x, y)
}

// Set implements draw.Image.
func (fb *Framebuffer) Set(x, y int, c color.Color) {
	fb.SetPixel(x, y, RGB565Model.Convert(c).(Color))
}
