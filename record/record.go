// Package record captures display transfers to a compact log and replays
// them into a framebuffer.
//
// A log is an LZ4 frame stream of CBOR-encoded packets. Each packet holds one
// address window and every pixel written into it, so replaying the packets in
// order reproduces the panel contents exactly.
package record

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pierrec/lz4/v4"

	"github.com/phanxgames/sapling"
)

// Packet is one window transfer.
type Packet struct {
	Frame  uint32 `cbor:"1,keyasint"`
	X      int    `cbor:"2,keyasint"`
	Y      int    `cbor:"3,keyasint"`
	Width  int    `cbor:"4,keyasint"`
	Height int    `cbor:"5,keyasint"`
	Pixels []byte `cbor:"6,keyasint"`
}

// Apply blits the packet's pixels into fb.
func (p *Packet) Apply(fb *sapling.Framebuffer) {
	fb.Blit(p.X, p.Y, p.Pixels, p.Width, p.Height)
}

// encMode uses Core Deterministic Encoding so identical sessions produce
// identical logs.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("record: CBOR encoder initialization failed: " + err.Error())
	}
}

// Writer records transfers. It implements sapling.Transport and
// sapling.FrameEnder, so it can stand in for a panel or be chained in front
// of one with Tee.
type Writer struct {
	lz      *lz4.Writer
	enc     *cbor.Encoder
	frame   uint32
	pending Packet
	open    bool
	packets int
}

// NewWriter starts a log on w. Close must be called to flush it.
func NewWriter(w io.Writer) *Writer {
	lz := lz4.NewWriter(w)
	return &Writer{lz: lz, enc: encMode.NewEncoder(lz)}
}

// SetWindow implements sapling.Transport. It ends the previous window's
// packet.
func (w *Writer) SetWindow(x, y, width, height int) error {
	if err := w.flushPending(); err != nil {
		return err
	}
	w.pending = Packet{Frame: w.frame, X: x, Y: y, Width: width, Height: height}
	w.open = true
	return nil
}

// WritePixels implements sapling.Transport.
func (w *Writer) WritePixels(p []byte) error {
	if !w.open {
		return errors.New("record: pixels written before SetWindow")
	}
	w.pending.Pixels = append(w.pending.Pixels, p...)
	return nil
}

// EndFrame implements sapling.FrameEnder.
func (w *Writer) EndFrame() error {
	if err := w.flushPending(); err != nil {
		return err
	}
	w.frame++
	return nil
}

// Frames returns the number of completed frames.
func (w *Writer) Frames() uint32 {
	return w.frame
}

// Packets returns the number of packets written.
func (w *Writer) Packets() int {
	return w.packets
}

// Close writes any open window and flushes the LZ4 stream. It does not close
// the underlying writer.
func (w *Writer) Close() error {
	if err := w.flushPending(); err != nil {
		return err
	}
	if err := w.lz.Close(); err != nil {
		return fmt.Errorf("record: close lz4 stream: %w", err)
	}
	return nil
}

func (w *Writer) flushPending() error {
	if !w.open {
		return nil
	}
	w.open = false
	if err := w.enc.Encode(&w.pending); err != nil {
		return fmt.Errorf("record: encode packet: %w", err)
	}
	w.packets++
	w.pending.Pixels = w.pending.Pixels[:0]
	return nil
}

// Reader decodes a log written by Writer.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader reads a log from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(lz4.NewReader(r))}
}

// Next returns the next packet, or io.EOF after the last one.
func (r *Reader) Next() (Packet, error) {
	var p Packet
	if err := r.dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Packet{}, io.EOF
		}
		return Packet{}, fmt.Errorf("record: decode packet: %w", err)
	}
	return p, nil
}

// Replay applies every remaining packet to fb. fn, if non-nil, is called
// after the last packet of each frame with that frame's number.
func (r *Reader) Replay(fb *sapling.Framebuffer, fn func(frame uint32) error) error {
	var (
		last    uint32
		started bool
	)
	for {
		p, err := r.Next()
		if err == io.EOF {
			if started && fn != nil {
				return fn(last)
			}
			return nil
		}
		if err != nil {
			return err
		}
		if started && p.Frame != last && fn != nil {
			if err := fn(last); err != nil {
				return err
			}
		}
		p.Apply(fb)
		last, started = p.Frame, true
	}
}

// Tee returns a transport that forwards every call to each of ts in order,
// stopping at the first error.
func Tee(ts ...sapling.Transport) sapling.Transport {
	return tee(ts)
}

type tee []sapling.Transport

func (t tee) SetWindow(x, y, width, height int) error {
	for _, tr := range t {
		if err := tr.SetWindow(x, y, width, height); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) WritePixels(p []byte) error {
	for _, tr := range t {
		if err := tr.WritePixels(p); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) EndFrame() error {
	for _, tr := range t {
		if fe, ok := tr.(sapling.FrameEnder); ok {
			if err := fe.EndFrame(); err != nil {
				return err
			}
		}
	}
	return nil
}
