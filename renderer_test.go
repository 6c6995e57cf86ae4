package sapling

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestZeroRendererNotInitialized(t *testing.T) {
	var r Renderer
	if _, err := r.Begin(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Begin error = %v, want ErrNotInitialized", err)
	}
	if err := r.Render(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render error = %v, want ErrNotInitialized", err)
	}
	if err := r.ForceRedraw(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ForceRedraw error = %v, want ErrNotInitialized", err)
	}
	if ref, n := r.HitTest(0, 0); ref != NoNode || n != nil {
		t.Errorf("HitTest = %d, %v; want NoNode, nil", ref, n)
	}
}

// renderFrame rebuilds the next tree with fn and renders it.
func renderFrame(t *testing.T, r *Renderer, fn func(*Builder)) {
	t.Helper()
	b, err := r.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	fn(b)
	if err := b.Err(); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := r.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestRendererStats(t *testing.T) {
	c := &recordingCanvas{}
	r := NewRenderer(c, DefaultRendererConfig())
	rect := func(col Color) func(*Builder) {
		return func(b *Builder) { b.Rect(0, 0, 10, 10, col) }
	}

	renderFrame(t, r, rect(ColorRed))
	st := r.Stats()
	if st.Frames != 1 || st.Created != 1 || st.LastChanges != 1 || st.LastDirtyRects != 1 {
		t.Errorf("after first frame: %+v", st)
	}
	if st.LastDrawCalls != 2 {
		t.Errorf("LastDrawCalls = %d, want 2 (erase + fill)", st.LastDrawCalls)
	}

	// An identical frame draws nothing.
	c.calls = nil
	renderFrame(t, r, rect(ColorRed))
	st = r.Stats()
	if st.LastChanges != 0 || st.LastDrawCalls != 0 || len(c.calls) != 0 {
		t.Errorf("identical frame: stats %+v, calls %v", st, c.calls)
	}

	renderFrame(t, r, rect(ColorBlue))
	renderFrame(t, r, func(*Builder) {})
	st = r.Stats()
	want := Stats{
		Frames: 4, Diffs: 4, Created: 1, Updated: 1, Removed: 1,
		LastChanges: 1, LastDirtyRects: 1, LastDrawCalls: 1,
	}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRendererSwapsTrees(t *testing.T) {
	r := NewRenderer(&recordingCanvas{}, DefaultRendererConfig())
	renderFrame(t, r, func(b *Builder) { b.Rect(0, 0, 10, 10, ColorRed) })
	cur := r.Current()
	if cur.ChildCount(cur.Root()) != 1 {
		t.Fatalf("current tree has %d children, want 1", cur.ChildCount(cur.Root()))
	}
	if r.Tree() == cur {
		t.Error("next tree should differ from the current tree")
	}
	if d := r.LastDiff(); d == nil || len(d.Changes) != 1 {
		t.Errorf("LastDiff = %+v, want one change", d)
	}

	// Begin clears the next tree only.
	if _, err := r.Begin(); err != nil {
		t.Fatal(err)
	}
	if r.Tree().Len() != 1 {
		t.Errorf("next tree Len after Begin = %d, want 1", r.Tree().Len())
	}
	if cur.ChildCount(cur.Root()) != 1 {
		t.Error("Begin must not touch the current tree")
	}
}

func TestRendererNoCanvasDoesNotSwap(t *testing.T) {
	r := NewRenderer(nil, DefaultRendererConfig())
	b, err := r.Begin()
	if err != nil {
		t.Fatal(err)
	}
	b.Rect(0, 0, 5, 5, ColorRed)
	if err := r.Render(); !errors.Is(err, ErrNoGraphics) {
		t.Fatalf("Render error = %v, want ErrNoGraphics", err)
	}
	if r.Current().Len() != 1 {
		t.Error("failed render should not swap trees")
	}
	if r.Stats().Frames != 0 {
		t.Errorf("Frames = %d, want 0", r.Stats().Frames)
	}
}

func TestRendererCapacity(t *testing.T) {
	cfg := DefaultRendererConfig()
	cfg.MaxNodes = 2
	r := NewRenderer(&recordingCanvas{}, cfg)
	b, _ := r.Begin()
	b.Rect(0, 0, 1, 1, ColorRed)
	b.Rect(0, 0, 1, 1, ColorRed)
	if !errors.Is(b.Err(), ErrOutOfCapacity) {
		t.Errorf("Err = %v, want ErrOutOfCapacity", b.Err())
	}
}

func TestRenderRefusesFailedBuild(t *testing.T) {
	c := &recordingCanvas{}
	cfg := DefaultRendererConfig()
	cfg.MaxNodes = 2
	r := NewRenderer(c, cfg)
	renderFrame(t, r, func(b *Builder) { b.Rect(0, 0, 4, 4, ColorRed) })
	c.calls = nil

	b, err := r.Begin()
	if err != nil {
		t.Fatal(err)
	}
	b.Rect(0, 0, 1, 1, ColorBlue)
	b.Rect(2, 2, 1, 1, ColorBlue)
	if err := r.Render(); !errors.Is(err, ErrOutOfCapacity) {
		t.Fatalf("Render error = %v, want ErrOutOfCapacity", err)
	}
	if len(c.calls) != 0 {
		t.Errorf("failed frame drew %v", c.calls)
	}
	if st := r.Stats(); st.Frames != 1 {
		t.Errorf("Frames = %d, want 1", st.Frames)
	}
	if n := r.Current().Node(r.Current().ChildAt(r.Current().Root(), 0)); n == nil || n.Props.Color != ColorRed {
		t.Errorf("current tree changed after a failed frame: %+v", n)
	}

	// A fresh Begin clears the failure.
	renderFrame(t, r, func(b *Builder) { b.Rect(0, 0, 1, 1, ColorBlue) })
	if st := r.Stats(); st.Frames != 2 {
		t.Errorf("Frames = %d, want 2", st.Frames)
	}
}

func TestForceRedraw(t *testing.T) {
	c := &recordingCanvas{}
	cfg := DefaultRendererConfig()
	cfg.Background = ColorBlue
	r := NewRenderer(c, cfg)
	renderFrame(t, r, func(b *Builder) { b.Rect(0, 0, 10, 10, ColorRed) })

	c.calls = nil
	if err := r.ForceRedraw(); err != nil {
		t.Fatal(err)
	}
	want := []string{"clear #0000FF", "fill 0,0 10x10 #FF0000"}
	if diff := cmp.Diff(want, c.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if st := r.Stats(); st.Frames != 2 || st.LastDrawCalls != 2 || st.LastChanges != 0 {
		t.Errorf("stats after ForceRedraw = %+v", st)
	}
}

func TestRendererHitTest(t *testing.T) {
	r := NewRenderer(&recordingCanvas{}, DefaultRendererConfig())
	renderFrame(t, r, func(b *Builder) {
		b.Panel(0, 0, 100, 100, ColorBlack)
		b.Button(10, 10, 30, 20, "ok", ColorBlue, ColorWhite)
		b.Pop()
	})
	ref, n := r.HitTest(15, 15)
	if ref == NoNode || n == nil || n.Kind != KindButton {
		t.Errorf("HitTest(15, 15) = %d, %+v; want the button", ref, n)
	}
	if ref, n := r.HitTest(500, 500); ref != NoNode || n != nil {
		t.Errorf("HitTest outside = %d, %v; want NoNode, nil", ref, n)
	}
}

func TestRendererDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&recordingCanvas{}, DefaultRendererConfig())
	r.SetDebugOutput(&buf)
	renderFrame(t, r, func(b *Builder) { b.Rect(0, 0, 10, 10, ColorRed) })

	out := buf.String()
	for _, want := range []string{
		"[sapling] frame 1 | diff: ",
		"[sapling] changes: 1 (+1 ~0 -0) | dirty rects: 1 (100 px) | draw calls: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	r.SetDebugOutput(nil)
	renderFrame(t, r, func(b *Builder) { b.Rect(0, 0, 10, 10, ColorBlue) })
	if buf.Len() != 0 {
		t.Errorf("debug output after disabling: %q", buf.String())
	}
}

// --- End to end on a framebuffer ---

func TestRendererIncrementalFramebuffer(t *testing.T) {
	fb := newTestFramebuffer(t, 32, 32, false)
	r := NewRenderer(NewFramebufferCanvas(fb), DefaultRendererConfig())

	renderFrame(t, r, func(b *Builder) { b.Rect(4, 4, 8, 8, ColorRed) })
	if fb.GetPixel(5, 5) != ColorRed {
		t.Fatal("rect not drawn")
	}
	if got, want := fb.DirtyRegion(), (Rect{4, 4, 8, 8}); got != want {
		t.Errorf("DirtyRegion = %v, want %v", got, want)
	}
	fb.ResetDirty()

	renderFrame(t, r, func(b *Builder) { b.Rect(16, 16, 8, 8, ColorRed) })
	if fb.GetPixel(5, 5) != ColorBlack {
		t.Error("old position not erased")
	}
	if fb.GetPixel(17, 17) != ColorRed {
		t.Error("new position not drawn")
	}
	fb.ResetDirty()

	renderFrame(t, r, func(*Builder) {})
	if fb.GetPixel(17, 17) != ColorBlack {
		t.Error("removed rect not erased")
	}

	fb.ResetDirty()
	renderFrame(t, r, func(*Builder) {})
	if fb.IsDirty() {
		t.Errorf("unchanged frame dirtied %v", fb.DirtyRegion())
	}
}

// litPixels counts pixels that differ from black.
func litPixels(fb *Framebuffer) int {
	n := 0
	for y := range fb.Height() {
		for x := range fb.Width() {
			if fb.GetPixel(x, y) != ColorBlack {
				n++
			}
		}
	}
	return n
}

func TestRemovedNodesLeaveNoPixels(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
	}{
		{"horizontal line", func(b *Builder) { b.Line(5, 5, 20, 0, ColorWhite) }},
		{"vertical line", func(b *Builder) { b.Line(5, 5, 0, 20, ColorWhite) }},
		{"diagonal line", func(b *Builder) { b.Line(5, 5, 10, 10, ColorWhite) }},
		{"overflowing label", func(b *Builder) {
			b.Label(40, 4, 20, 16, "overflowing", AlignLeft, ColorWhite)
		}},
		{"right aligned overflow", func(b *Builder) {
			b.Label(10, 4, 20, 16, "overflowing", AlignRight, ColorWhite)
		}},
		{"narrow button", func(b *Builder) {
			b.Button(20, 30, 10, 8, "Cancel", ColorBlue, ColorWhite)
		}},
		{"circle radius past box", func(b *Builder) {
			p := boxProps(20, 20, 4, 4)
			p.Radius = 8
			p.Color = ColorRed
			b.Node(KindCircle, p)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newTestFramebuffer(t, 64, 64, false)
			r := NewRenderer(NewFramebufferCanvas(fb), DefaultRendererConfig())

			renderFrame(t, r, tt.build)
			if litPixels(fb) == 0 {
				t.Fatal("nothing drawn")
			}
			var dirty Rect
			for _, rc := range r.LastDiff().Dirty {
				dirty = dirty.Union(rc)
			}
			if got := fb.DirtyRegion(); got.Union(dirty) != dirty {
				t.Errorf("drawing touched %v outside the dirty rects %v", got, dirty)
			}

			renderFrame(t, r, func(*Builder) {})
			if n := litPixels(fb); n != 0 {
				t.Errorf("%d pixels left after removal", n)
			}
		})
	}
}
