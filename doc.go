// Package sapling is a retained-tree renderer for small, bandwidth-limited
// displays.
//
// Each frame the caller rebuilds a complete scene tree. Sapling compares it
// with the previous frame's tree, redraws only what changed into an RGB565
// framebuffer, and ships only the dirty part of the framebuffer to the panel.
//
// # Quick start
//
//	cfg := sapling.DefaultConfig()
//	disp, err := cfg.NewDisplay(transport) // transport drives the panel
//	if err != nil {
//		log.Fatal(err)
//	}
//	for {
//		b, _ := disp.Renderer.Begin()
//		b.Panel(0, 0, 240, 135, sapling.RGB(16, 16, 24))
//		b.Label(8, 8, 224, 16, status, sapling.AlignLeft, sapling.ColorWhite)
//		b.Progress(8, 40, 224, 10, percent, sapling.ColorGray, sapling.ColorGreen)
//		b.Pop()
//		if err := b.Err(); err != nil {
//			log.Fatal(err)
//		}
//		if _, err := disp.Frame(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Scene tree
//
// A [Tree] is a fixed-capacity pool of [Node] slots addressed by [NodeRef]
// handles. Children form a doubly linked sibling list, so appending and
// unlinking are O(1). Nodes are never freed individually; [Tree.Clear]
// resets the pool. Running out of slots returns [ErrOutOfCapacity] instead of
// growing, which keeps memory and frame time predictable.
//
// Positions and sizes are supplied by the builder. Sapling performs no
// layout.
//
// # Diffing
//
// [Diff] compares two trees by position: the i-th child of a node in the old
// tree is compared with the i-th child of the same position in the new tree.
// Keys are not used, so inserting into the middle of a list reports every
// following sibling as updated. Each change contributes its bounds to a list
// of dirty rectangles, merged with the first rectangle they overlap.
//
// # Drawing and transfer
//
// The [Reconciler] erases the dirty rectangles and redraws created and
// updated nodes through a [Canvas]. [FramebufferCanvas] draws into a
// [Framebuffer], which tracks one aggregate dirty rectangle. The
// [DisplayController] sends that rectangle row by row when it covers less
// than half of the screen and the whole frame otherwise.
//
// Out-of-range pixel writes are silently clipped. Capacity and missing-canvas
// failures are returned as errors.
package sapling
