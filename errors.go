package sapling

import "errors"

var (
	// ErrOutOfCapacity is returned when a Tree's node pool is exhausted. The
	// frame being built is incomplete and must not be rendered.
	ErrOutOfCapacity = errors.New("sapling: node pool out of capacity")

	// ErrMaxDepth is returned when appending a child would place a node
	// deeper than the tree's depth bound.
	ErrMaxDepth = errors.New("sapling: maximum tree depth exceeded")

	// ErrNoGraphics is returned when the reconciler has no canvas to draw on.
	ErrNoGraphics = errors.New("sapling: no canvas bound")

	// ErrNotInitialized is returned by a Renderer that was not created with
	// NewRenderer.
	ErrNotInitialized = errors.New("sapling: renderer not initialized")

	// ErrTransferFailed wraps transport failures at the display boundary.
	ErrTransferFailed = errors.New("sapling: display transfer failed")

	// ErrUnsupportedFormat is returned for pixel formats without a packing.
	ErrUnsupportedFormat = errors.New("sapling: unsupported pixel format")
)
