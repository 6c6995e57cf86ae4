package sapling

import "fmt"

// Transport moves pixels to the panel. SetWindow selects the destination
// rectangle; WritePixels streams packed rows into it in order, the way SPI
// display controllers accept a column/row address window followed by a RAM
// write.
type Transport interface {
	SetWindow(x, y, width, height int) error
	WritePixels(p []byte) error
}

// FrameEnder is implemented by transports that need to know when a frame's
// transfers are complete.
type FrameEnder interface {
	EndFrame() error
}

// DefaultPartialThreshold is the dirty fraction of the screen below which
// only the dirty rectangle is transferred.
const DefaultPartialThreshold = 0.5

// TransferMode reports what a Flush sent.
type TransferMode uint8

const (
	TransferNone    TransferMode = iota // nothing was dirty
	TransferPartial                     // dirty rectangle, row by row
	TransferFull                        // whole framebuffer in one write
)

func (m TransferMode) String() string {
	switch m {
	case TransferNone:
		return "none"
	case TransferPartial:
		return "partial"
	case TransferFull:
		return "full"
	default:
		return fmt.Sprintf("TransferMode(%d)", m)
	}
}

// Transfer describes one Flush.
type Transfer struct {
	Mode   TransferMode
	Region Rect
	Bytes  int
}

// DisplayStats counts transfers since the controller was created.
type DisplayStats struct {
	Partial uint64
	Full    uint64
	Bytes   uint64
}

// DisplayController ships the framebuffer's dirty region to a Transport,
// choosing between a partial row-by-row transfer and a full-frame transfer
// from the dirty fraction of the screen.
type DisplayController struct {
	fb        *Framebuffer
	transport Transport

	// Threshold is the dirty fraction below which a partial transfer is
	// used. At or above it the whole frame is sent.
	Threshold float64

	stats DisplayStats
}

// NewDisplayController creates a controller with DefaultPartialThreshold.
func NewDisplayController(fb *Framebuffer, transport Transport) *DisplayController {
	return &DisplayController{
		fb:        fb,
		transport: transport,
		Threshold: DefaultPartialThreshold,
	}
}

// Framebuffer returns the source framebuffer.
func (d *DisplayController) Framebuffer() *Framebuffer {
	return d.fb
}

// Stats returns the transfer counters.
func (d *DisplayController) Stats() DisplayStats {
	return d.stats
}

// Flush transfers the dirty region, if any. On success the dirty region is
// reset and, with double buffering, the buffers are swapped. On failure the
// error wraps ErrTransferFailed and the dirty region is kept so the next
// Flush retries it.
func (d *DisplayController) Flush() (Transfer, error) {
	if !d.fb.IsDirty() {
		return Transfer{Mode: TransferNone}, nil
	}
	dirty := d.fb.DirtyRegion().Intersect(d.fb.Rect())
	screen := d.fb.Rect()

	var tr Transfer
	var err error
	if !dirty.Empty() && float64(dirty.Area()) < d.Threshold*float64(screen.Area()) {
		tr, err = d.sendPartial(dirty)
	} else {
		tr, err = d.sendFull()
	}
	if err == nil {
		if fe, ok := d.transport.(FrameEnder); ok {
			err = fe.EndFrame()
		}
	}
	if err != nil {
		return Transfer{}, fmt.Errorf("%w: %s transfer of %+v: %w", ErrTransferFailed, tr.Mode, tr.Region, err)
	}

	switch tr.Mode {
	case TransferPartial:
		d.stats.Partial++
	case TransferFull:
		d.stats.Full++
	}
	d.stats.Bytes += uint64(tr.Bytes)

	d.fb.ResetDirty()
	d.fb.SwapBuffers()
	return tr, nil
}

// sendPartial opens a window over r and writes it one row at a time.
func (d *DisplayController) sendPartial(r Rect) (Transfer, error) {
	tr := Transfer{Mode: TransferPartial, Region: r}
	if err := d.transport.SetWindow(r.X, r.Y, r.Width, r.Height); err != nil {
		return tr, err
	}
	buf := d.fb.RawBuffer()
	stride := d.fb.Stride()
	rowBytes := r.Width * 2
	for row := r.Y; row < r.Bottom(); row++ {
		start := row*stride + r.X*2
		if err := d.transport.WritePixels(buf[start : start+rowBytes]); err != nil {
			return tr, err
		}
		tr.Bytes += rowBytes
	}
	return tr, nil
}

// sendFull writes the whole framebuffer in one call.
func (d *DisplayController) sendFull() (Transfer, error) {
	screen := d.fb.Rect()
	tr := Transfer{Mode: TransferFull, Region: screen}
	if err := d.transport.SetWindow(0, 0, screen.Width, screen.Height); err != nil {
		return tr, err
	}
	buf := d.fb.RawBuffer()
	if err := d.transport.WritePixels(buf); err != nil {
		return tr, err
	}
	tr.Bytes = len(buf)
	return tr, nil
}

// WaitVsync waits for the panel's vertical blank. Panels driven over SPI
// expose no vsync signal, so it returns immediately.
func (d *DisplayController) WaitVsync() {}
