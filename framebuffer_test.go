package sapling

import (
	"errors"
	"image/color"
	"testing"
)

func newTestFramebuffer(t *testing.T, w, h int, double bool) *Framebuffer {
	t.Helper()
	fb, err := NewFramebuffer(w, h, FormatRGB565, double)
	if err != nil {
		t.Fatalf("NewFramebuffer: %v", err)
	}
	return fb
}

func TestNewFramebufferErrors(t *testing.T) {
	if _, err := NewFramebuffer(10, 10, FormatRGB888, false); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("RGB888 error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := NewFramebuffer(0, 10, FormatRGB565, false); err == nil {
		t.Error("zero width should fail")
	}
}

func TestFramebufferGeometry(t *testing.T) {
	fb := newTestFramebuffer(t, 240, 135, false)
	if w, h := fb.Size(); w != 240 || h != 135 {
		t.Errorf("Size = %dx%d, want 240x135", w, h)
	}
	if fb.Stride() != 480 {
		t.Errorf("Stride = %d, want 480", fb.Stride())
	}
	if len(fb.RawBuffer()) != 240*135*2 {
		t.Errorf("buffer len = %d, want %d", len(fb.RawBuffer()), 240*135*2)
	}
	if fb.IsDirty() {
		t.Error("new framebuffer should not be dirty")
	}
}

func TestSetGetPixelRoundTrip(t *testing.T) {
	fb := newTestFramebuffer(t, 8, 4, false)
	for y := range 4 {
		for x := range 8 {
			fb.SetPixel(x, y, Color((y*8+x)*977))
		}
	}
	for y := range 4 {
		for x := range 8 {
			if got, want := fb.GetPixel(x, y), Color((y*8+x)*977); got != want {
				t.Errorf("GetPixel(%d, %d) = %#04x, want %#04x", x, y, uint16(got), uint16(want))
			}
		}
	}
}

func TestPixelsAreBigEndian(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 4, false)
	fb.SetPixel(1, 0, ColorRed)
	buf := fb.RawBuffer()
	if buf[2] != 0xF8 || buf[3] != 0x00 {
		t.Errorf("bytes at (1, 0) = %#02x %#02x, want 0xf8 0x00", buf[2], buf[3])
	}
	fb.SetPixel(0, 1, ColorBlue)
	if buf[8] != 0x00 || buf[9] != 0x1F {
		t.Errorf("bytes at (0, 1) = %#02x %#02x, want 0x00 0x1f", buf[8], buf[9])
	}
}

func TestOutOfRangeIgnored(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 4, false)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(4, 0, ColorRed)
	fb.SetPixel(0, 4, ColorRed)
	if fb.IsDirty() {
		t.Error("out-of-range writes should not mark dirty")
	}
	for i, b := range fb.RawBuffer() {
		if b != 0 {
			t.Fatalf("byte %d = %#02x, want 0", i, b)
		}
	}
	if got := fb.GetPixel(100, 100); got != 0 {
		t.Errorf("GetPixel out of range = %v, want 0", got)
	}
}

func TestFillRectClipsAndMarksDirty(t *testing.T) {
	fb := newTestFramebuffer(t, 20, 20, false)
	fb.FillRect(-5, -5, 10, 10, ColorGreen)
	if got, want := fb.DirtyRegion(), (Rect{0, 0, 5, 5}); got != want {
		t.Errorf("DirtyRegion = %v, want %v", got, want)
	}
	if fb.GetPixel(4, 4) != ColorGreen {
		t.Error("(4, 4) should be filled")
	}
	if fb.GetPixel(5, 5) != 0 || fb.GetPixel(0, 5) != 0 {
		t.Error("pixels outside the clipped rect should be untouched")
	}
}

func TestFillRectDegenerate(t *testing.T) {
	fb := newTestFramebuffer(t, 10, 10, false)
	fb.FillRect(2, 2, 0, 5, ColorRed)
	fb.FillRect(2, 2, 5, -1, ColorRed)
	fb.FillRect(20, 20, 5, 5, ColorRed)
	if fb.IsDirty() {
		t.Errorf("degenerate fills should not mark dirty, got %v", fb.DirtyRegion())
	}
}

func TestDirtyRegionGrowsUntilReset(t *testing.T) {
	fb := newTestFramebuffer(t, 20, 20, false)
	fb.SetPixel(1, 1, ColorWhite)
	fb.SetPixel(5, 7, ColorWhite)
	if got, want := fb.DirtyRegion(), (Rect{1, 1, 5, 7}); got != want {
		t.Errorf("DirtyRegion = %v, want %v", got, want)
	}
	fb.SetPixel(3, 3, ColorWhite)
	if got, want := fb.DirtyRegion(), (Rect{1, 1, 5, 7}); got != want {
		t.Errorf("DirtyRegion after inner write = %v, want %v", got, want)
	}
	fb.ResetDirty()
	if fb.IsDirty() {
		t.Error("IsDirty after ResetDirty")
	}
	fb.Clear(ColorBlack)
	if got := fb.DirtyRegion(); got != fb.Rect() {
		t.Errorf("DirtyRegion after Clear = %v, want %v", got, fb.Rect())
	}
}

func TestClearFillsEveryPixel(t *testing.T) {
	fb := newTestFramebuffer(t, 7, 3, false)
	fb.Clear(ColorMagenta)
	for y := range 3 {
		for x := range 7 {
			if fb.GetPixel(x, y) != ColorMagenta {
				t.Fatalf("GetPixel(%d, %d) = %v, want magenta", x, y, fb.GetPixel(x, y))
			}
		}
	}
}

func TestLines(t *testing.T) {
	fb := newTestFramebuffer(t, 10, 10, false)
	fb.HLine(2, 3, 4, ColorRed)
	fb.VLine(8, 1, 3, ColorBlue)
	for x := 2; x < 6; x++ {
		if fb.GetPixel(x, 3) != ColorRed {
			t.Errorf("HLine pixel (%d, 3) not set", x)
		}
	}
	if fb.GetPixel(6, 3) != 0 {
		t.Error("HLine overran its width")
	}
	for y := 1; y < 4; y++ {
		if fb.GetPixel(8, y) != ColorBlue {
			t.Errorf("VLine pixel (8, %d) not set", y)
		}
	}
}

func TestBlit(t *testing.T) {
	src := make([]byte, 4*4*2)
	for i := range 16 {
		c := Color(i + 1)
		src[2*i] = byte(c >> 8)
		src[2*i+1] = byte(c)
	}

	fb := newTestFramebuffer(t, 10, 10, false)
	fb.Blit(3, 2, src, 4, 4)
	if got := fb.GetPixel(3, 2); got != 1 {
		t.Errorf("top-left = %v, want 1", uint16(got))
	}
	if got := fb.GetPixel(6, 5); got != 16 {
		t.Errorf("bottom-right = %v, want 16", uint16(got))
	}
	if got, want := fb.DirtyRegion(), (Rect{3, 2, 4, 4}); got != want {
		t.Errorf("DirtyRegion = %v, want %v", got, want)
	}

	// Clipped at the top-left corner: (0, 0) receives source pixel (2, 2).
	fb = newTestFramebuffer(t, 10, 10, false)
	fb.Blit(-2, -2, src, 4, 4)
	if got := fb.GetPixel(0, 0); got != 11 {
		t.Errorf("clipped (0, 0) = %v, want 11", uint16(got))
	}
	if got, want := fb.DirtyRegion(), (Rect{0, 0, 2, 2}); got != want {
		t.Errorf("clipped DirtyRegion = %v, want %v", got, want)
	}

	// A short source only supplies the rows it has.
	fb = newTestFramebuffer(t, 10, 10, false)
	fb.Blit(0, 0, src[:2*4*2], 4, 4)
	if got, want := fb.DirtyRegion(), (Rect{0, 0, 4, 2}); got != want {
		t.Errorf("short source DirtyRegion = %v, want %v", got, want)
	}
}

func TestSingleBufferFrontIsRaw(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 4, false)
	if fb.DoubleBuffered() {
		t.Error("DoubleBuffered = true")
	}
	if &fb.RawBuffer()[0] != &fb.FrontBuffer()[0] {
		t.Error("single buffering should share one buffer")
	}
	fb.SetPixel(1, 1, ColorRed)
	fb.SwapBuffers()
	if fb.GetPixel(1, 1) != ColorRed {
		t.Error("SwapBuffers should be a no-op with single buffering")
	}
}

func TestDoubleBufferSwapKeepsBuffersInSync(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 4, true)
	if &fb.RawBuffer()[0] == &fb.FrontBuffer()[0] {
		t.Fatal("double buffering should allocate two buffers")
	}

	fb.SetPixel(1, 1, ColorRed)
	if fb.FrontBuffer()[2*(4+1)] != 0 {
		t.Error("drawing should not touch the front buffer")
	}
	drawn := fb.RawBuffer()

	fb.ResetDirty()
	fb.SwapBuffers()

	if &fb.FrontBuffer()[0] != &drawn[0] {
		t.Error("the drawn buffer should become the front buffer")
	}
	if fb.GetPixel(1, 1) != ColorRed {
		t.Error("new draw target should hold the presented frame")
	}

	// The next frame draws incrementally on top.
	fb.SetPixel(2, 2, ColorBlue)
	if fb.GetPixel(1, 1) != ColorRed || fb.GetPixel(2, 2) != ColorBlue {
		t.Error("incremental draw lost pixels")
	}
	if off := 2 * (2*4 + 2); fb.FrontBuffer()[off] != 0 || fb.FrontBuffer()[off+1] != 0 {
		t.Error("front buffer changed before the swap")
	}
	fb.ResetDirty()
	fb.SwapBuffers()
	if fb.GetPixel(1, 1) != ColorRed || fb.GetPixel(2, 2) != ColorBlue {
		t.Error("buffers diverged after the second swap")
	}
}

func TestFramebufferImplementsImage(t *testing.T) {
	fb := newTestFramebuffer(t, 4, 4, false)
	fb.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	if fb.GetPixel(0, 0) != ColorRed {
		t.Errorf("Set(red) stored %v", fb.GetPixel(0, 0))
	}
	if got := fb.At(0, 0); got != ColorRed {
		t.Errorf("At = %v, want red", got)
	}
	if b := fb.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("Bounds = %v", b)
	}
	if fb.ColorModel() != RGB565Model {
		t.Error("ColorModel should be RGB565Model")
	}
}
