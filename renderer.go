package sapling

import "time"

// RendererConfig sizes the renderer's trees and configures its reconciler.
type RendererConfig struct {
	MaxNodes     int   // pool capacity of each tree, including the root
	MaxDepth     int   // 0 selects DefaultMaxDepth
	Background   Color // erase color for dirty rectangles and full redraws
	DirtyRegions bool  // erase dirty rectangles before applying changes
}

// DefaultRendererConfig returns a configuration suited to small screens.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		MaxNodes:     256,
		MaxDepth:     DefaultMaxDepth,
		Background:   ColorBlack,
		DirtyRegions: true,
	}
}

// Stats holds cumulative renderer counters plus details of the last frame.
type Stats struct {
	Frames  uint64 // Render and ForceRedraw calls that completed
	Diffs   uint64 // diffs computed
	Created uint64
	Updated uint64
	Removed uint64

	LastChanges    int
	LastDirtyRects int
	LastDrawCalls  int
}

// Renderer owns two trees and drives the per-frame pipeline: Begin clears
// the next tree, the caller rebuilds it, and Render diffs it against the
// current tree, reconciles the changes onto the canvas and swaps the trees.
//
// A Renderer is single-threaded; every call runs to completion synchronously.
type Renderer struct {
	trees      [2]*Tree
	current    int
	differ     Differ
	reconciler *Reconciler
	stats      Stats

	debug    debugSink
	lastDiff *DiffResult
	builder  *Builder // from the last Begin
}

// NewRenderer creates a renderer drawing on canvas.
func NewRenderer(canvas Canvas, cfg RendererConfig) *Renderer {
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = DefaultRendererConfig().MaxNodes
	}
	rec := NewReconciler(canvas)
	rec.Background = cfg.Background
	rec.DirtyRegions = cfg.DirtyRegions
	return &Renderer{
		trees: [2]*Tree{
			NewTree(cfg.MaxNodes, cfg.MaxDepth),
			NewTree(cfg.MaxNodes, cfg.MaxDepth),
		},
		reconciler: rec,
	}
}

// Reconciler returns the renderer's reconciler.
func (r *Renderer) Reconciler() *Reconciler {
	return r.reconciler
}

// Current returns the tree that matches what is on the canvas.
func (r *Renderer) Current() *Tree {
	return r.trees[r.current]
}

// Tree returns the next tree, the one being built for the coming frame.
func (r *Renderer) Tree() *Tree {
	return r.trees[1-r.current]
}

// Begin clears the next tree for a fresh rebuild and returns a builder
// rooted at it.
func (r *Renderer) Begin() (*Builder, error) {
	if r.reconciler == nil {
		return nil, ErrNotInitialized
	}
	next := r.Tree()
	next.Clear()
	r.builder = next.Build()
	return r.builder, nil
}

// Render diffs the current tree against the next one, applies the changes,
// then makes the next tree current. On error the trees are not swapped.
// If the builder returned by Begin failed, Render returns its error and
// draws nothing, so a truncated tree is never presented.
func (r *Renderer) Render() error {
	if r.reconciler == nil {
		return ErrNotInitialized
	}
	if r.builder != nil {
		if err := r.builder.Err(); err != nil {
			return err
		}
	}
	var t0 time.Time
	var ds frameDebug
	if r.debug.enabled() {
		t0 = time.Now()
	}

	d := r.differ.Diff(r.Current(), r.Tree())
	r.stats.Diffs++

	if r.debug.enabled() {
		ds.diffTime = time.Since(t0)
		t0 = time.Now()
	}

	r.reconciler.ResetDrawCalls()
	if err := r.reconciler.Apply(d); err != nil {
		return err
	}

	if r.debug.enabled() {
		ds.applyTime = time.Since(t0)
	}

	r.current = 1 - r.current
	created, updated, removed := d.Counts()
	r.stats.Created += uint64(created)
	r.stats.Updated += uint64(updated)
	r.stats.Removed += uint64(removed)
	r.stats.LastChanges = len(d.Changes)
	r.stats.LastDirtyRects = len(d.Dirty)
	r.stats.LastDrawCalls = r.reconciler.DrawCalls()
	r.stats.Frames++
	r.lastDiff = d

	if r.debug.enabled() {
		ds.changes = len(d.Changes)
		ds.created, ds.updated, ds.removed = created, updated, removed
		ds.dirtyRects = len(d.Dirty)
		ds.dirtyArea = d.DirtyArea()
		ds.drawCalls = r.stats.LastDrawCalls
		r.debug.logFrame(r.stats.Frames, ds)
	}
	return nil
}

// LastDiff returns the result of the most recent Render. It is overwritten
// by the next Render and invalidated by the next Begin.
func (r *Renderer) LastDiff() *DiffResult {
	return r.lastDiff
}

// ForceRedraw repaints the whole current tree without diffing, for example
// after the display wakes from sleep.
func (r *Renderer) ForceRedraw() error {
	if r.reconciler == nil {
		return ErrNotInitialized
	}
	r.reconciler.ResetDrawCalls()
	if err := r.reconciler.RenderFull(r.Current()); err != nil {
		return err
	}
	r.stats.Frames++
	r.stats.LastChanges = 0
	r.stats.LastDirtyRects = 0
	r.stats.LastDrawCalls = r.reconciler.DrawCalls()
	return nil
}

// Stats returns a snapshot of the counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// HitTest returns the topmost visible node of the current tree at (x, y).
func (r *Renderer) HitTest(x, y int) (NodeRef, *Node) {
	if r.reconciler == nil {
		return NoNode, nil
	}
	t := r.Current()
	ref := t.HitTest(x, y)
	return ref, t.Node(ref)
}
