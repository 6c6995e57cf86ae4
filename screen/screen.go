// Package screen simulates a small display panel in a desktop window using
// Ebitengine, so sapling programs can be developed without hardware.
package screen

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/sapling"
)

// Panel is an in-memory RGBA mirror of a display. It implements
// sapling.Transport the way a panel controller does: SetWindow selects an
// address window and WritePixels fills it left to right, top to bottom.
type Panel struct {
	width, height int
	pix           []byte // RGBA, 4 bytes per pixel

	window image.Rectangle
	cursor int // pixels written into the current window
	open   bool

	changed bool
	writes  int
}

// New creates a black panel of the given size.
func New(width, height int) *Panel {
	p := &Panel{
		width:  width,
		height: height,
		pix:    make([]byte, 4*width*height),
	}
	for i := 3; i < len(p.pix); i += 4 {
		p.pix[i] = 0xFF
	}
	return p
}

// Size returns the panel dimensions.
func (p *Panel) Size() (width, height int) {
	return p.width, p.height
}

// Pixels returns the RGBA contents. The slice aliases the panel's storage.
func (p *Panel) Pixels() []byte {
	return p.pix
}

// Writes returns the number of WritePixels calls received.
func (p *Panel) Writes() int {
	return p.writes
}

// ColorAt returns the RGB565 color last written at (x, y).
func (p *Panel) ColorAt(x, y int) sapling.Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0
	}
	i := 4 * (y*p.width + x)
	return sapling.RGB(p.pix[i], p.pix[i+1], p.pix[i+2])
}

// SetWindow implements sapling.Transport.
func (p *Panel) SetWindow(x, y, width, height int) error {
	win := image.Rect(x, y, x+width, y+height)
	if win.Empty() || !win.In(image.Rect(0, 0, p.width, p.height)) {
		return fmt.Errorf("screen: window %v outside %dx%d panel", win, p.width, p.height)
	}
	p.window = win
	p.cursor = 0
	p.open = true
	return nil
}

// WritePixels implements sapling.Transport, converting big-endian RGB565
// pixels into the RGBA mirror.
func (p *Panel) WritePixels(buf []byte) error {
	if !p.open {
		return fmt.Errorf("screen: pixels written before SetWindow")
	}
	w := p.window.Dx()
	area := w * p.window.Dy()
	if len(buf)%2 != 0 {
		return fmt.Errorf("screen: odd pixel payload of %d bytes", len(buf))
	}
	if p.cursor+len(buf)/2 > area {
		return fmt.Errorf("screen: %d pixels overflow %v window", len(buf)/2, p.window)
	}
	for i := 0; i < len(buf); i += 2 {
		c := sapling.Color(buf[i])<<8 | sapling.Color(buf[i+1])
		x := p.window.Min.X + p.cursor%w
		y := p.window.Min.Y + p.cursor/w
		o := 4 * (y*p.width + x)
		p.pix[o], p.pix[o+1], p.pix[o+2] = c.RGBA8()
		p.cursor++
	}
	p.writes++
	p.changed = true
	return nil
}

// RunConfig configures the simulator window.
type RunConfig struct {
	Title   string
	Scale   int  // window pixels per panel pixel; 0 means 3
	ShowFPS bool // overlay ebiten's FPS counter
}

// PointerFunc receives presses and releases in panel coordinates.
type PointerFunc func(x, y int, pressed bool)

// game adapts a Panel to ebiten.Game.
type game struct {
	panel   *Panel
	img     *ebiten.Image
	update  func() error
	pointer PointerFunc
	showFPS bool
}

func (g *game) Update() error {
	if g.pointer != nil {
		x, y := ebiten.CursorPosition()
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.pointer(x, y, true)
		}
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			g.pointer(x, y, false)
		}
	}
	if g.update != nil {
		return g.update()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(g.panel.width, g.panel.height)
		g.panel.changed = true
	}
	// Upload only when a transfer touched the panel since the last draw.
	if g.panel.changed {
		g.img.WritePixels(g.panel.pix)
		g.panel.changed = false
	}
	screen.DrawImage(g.img, nil)
	if g.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f", ebiten.ActualFPS()))
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.panel.width, g.panel.height
}

// Run opens a window showing panel and calls update once per tick until it
// returns an error or the window is closed. pointer may be nil.
func Run(panel *Panel, cfg RunConfig, update func() error, pointer PointerFunc) error {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 3
	}
	ebiten.SetWindowSize(panel.width*scale, panel.height*scale)
	ebiten.SetWindowTitle(cfg.Title)
	return ebiten.RunGame(&game{
		panel:   panel,
		update:  update,
		pointer: pointer,
		showFPS: cfg.ShowFPS,
	})
}
