package sapling

import (
	"fmt"
	"io"
	"time"
)

// frameDebug holds per-frame timing and change metrics. Only populated when
// debug output is enabled.
type frameDebug struct {
	diffTime   time.Duration
	applyTime  time.Duration
	changes    int
	created    int
	updated    int
	removed    int
	dirtyRects int
	dirtyArea  int
	drawCalls  int
}

// debugSink writes debug lines when a writer is attached. The renderer
// itself never logs; output only happens after SetDebugOutput.
type debugSink struct {
	w io.Writer
}

func (d debugSink) enabled() bool {
	return d.w != nil
}

// SetDebugOutput enables per-frame timing and change statistics written to
// w, one pair of lines per Render. Pass nil to disable.
func (r *Renderer) SetDebugOutput(w io.Writer) {
	r.debug.w = w
}

func (d debugSink) logFrame(frame uint64, s frameDebug) {
	if d.w == nil {
		return
	}
	_, _ = fmt.Fprintf(d.w,
		"[sapling] frame %d | diff: %v | apply: %v | total: %v\n",
		frame, s.diffTime, s.applyTime, s.diffTime+s.applyTime)
	_, _ = fmt.Fprintf(d.w,
		"[sapling] changes: %d (+%d ~%d -%d) | dirty rects: %d (%d px) | draw calls: %d\n",
		s.changes, s.created, s.updated, s.removed, s.dirtyRects, s.dirtyArea, s.drawCalls)
}

// DumpTree writes an indented outline of the attached tree, one node per
// line, for inspecting a frame by hand.
func DumpTree(w io.Writer, t *Tree) error {
	var err error
	t.Walk(func(_ NodeRef, n *Node) bool {
		if err != nil {
			return false
		}
		p := &n.Props
		_, err = fmt.Fprintf(w, "%*s%s #%d (%d,%d %dx%d)",
			2*n.depth, "", n.Kind, n.ID, p.X, p.Y, p.Width, p.Height)
		if err == nil && p.Text != "" {
			_, err = fmt.Fprintf(w, " %q", p.Text)
		}
		if err == nil && !p.Visible {
			_, err = io.WriteString(w, " hidden")
		}
		if err == nil {
			_, err = io.WriteString(w, "\n")
		}
		return true
	})
	return err
}
