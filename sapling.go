package sapling

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a packed RGB565 color: 5 bits red, 6 bits green, 5 bits blue.
// It implements color.Color so framebuffers can be handed to image encoders.
type Color uint16

// Common colors.
const (
	ColorBlack   Color = 0x0000
	ColorWhite   Color = 0xFFFF
	ColorRed     Color = 0xF800
	ColorGreen   Color = 0x07E0
	ColorBlue    Color = 0x001F
	ColorYellow  Color = 0xFFE0
	ColorCyan    Color = 0x07FF
	ColorMagenta Color = 0xF81F
	ColorGray    Color = 0x8410
)

var namedColors = map[string]Color{
	"black":   ColorBlack,
	"white":   ColorWhite,
	"red":     ColorRed,
	"green":   ColorGreen,
	"blue":    ColorBlue,
	"yellow":  ColorYellow,
	"cyan":    ColorCyan,
	"magenta": ColorMagenta,
	"gray":    ColorGray,
}

// RGB packs 8-bit channels into an RGB565 color, dropping the low bits.
func RGB(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// RGBA8 expands the color to 8-bit channels. The low bits are filled by bit
// replication so that white maps to 255 and RGB(RGBA8()) is the identity.
func (c Color) RGBA8() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements color.Color. RGB565 colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGBA8()
	r = uint32(r8) * 0x101
	g = uint32(g8) * 0x101
	b = uint32(b8) * 0x101
	return r, g, b, 0xFFFF
}

// Darken scales every channel down by percent (0-100).
func (c Color) Darken(percent int) Color {
	percent = max(0, min(percent, 100))
	r, g, b := c.RGBA8()
	scale := func(v uint8) uint8 {
		return uint8(int(v) * (100 - percent) / 100)
	}
	return RGB(scale(r), scale(g), scale(b))
}

// String returns the color as #RRGGBB.
func (c Color) String() string {
	r, g, b := c.RGBA8()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// UnmarshalText accepts "#RRGGBB", a raw RGB565 value such as "0xF800", or
// one of the named colors.
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if named, ok := namedColors[s]; ok {
		*c = named
		return nil
	}
	switch {
	case strings.HasPrefix(s, "#") && len(s) == 7:
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return fmt.Errorf("parse color %q: %w", s, err)
		}
		*c = RGB(uint8(v>>16), uint8(v>>8), uint8(v))
		return nil
	case strings.HasPrefix(s, "0x"):
		v, err := strconv.ParseUint(s[2:], 16, 16)
		if err != nil {
			return fmt.Errorf("parse color %q: %w", s, err)
		}
		*c = Color(v)
		return nil
	}
	return fmt.Errorf("parse color %q: want #RRGGBB, 0xNNNN or a color name", s)
}

// RGB565Model converts any color to the nearest RGB565 Color.
var RGB565Model = color.ModelFunc(func(c color.Color) color.Color {
	if rc, ok := c.(Color); ok {
		return rc
	}
	r, g, b, _ := c.RGBA()
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
})

// Rect is an axis-aligned screen-space rectangle. The origin is the top-left
// corner with Y increasing downward; Right and Bottom are exclusive.
type Rect struct {
	X, Y, Width, Height int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns Width*Height, or 0 for an empty rectangle.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether the pixel (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlaps reports whether the open interiors of r and other intersect.
// Rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// Union returns the smallest rectangle containing both r and other. An empty
// operand is ignored.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.Right(), other.Right())
	y1 := max(r.Bottom(), other.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Intersect returns the overlap of r and other, or the zero Rect if they are
// disjoint.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.Right(), other.Right())
	y1 := min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// NodeKind selects how the reconciler draws a Node.
type NodeKind uint8

const (
	KindRect       NodeKind = iota // filled rectangle, optional border and rounded corners
	KindCircle                     // filled circle inscribed in the node bounds
	KindLine                       // segment from (X, Y) to (X+Width, Y+Height)
	KindText                       // single line of text
	KindImage                      // placeholder; draws its background only
	KindButton                     // background, border and centered label
	KindLabel                      // text with an optional background
	KindPanel                      // background and border
	KindProgress                   // track plus a fill of Flex percent
	KindList                       // grouping node, background only
	KindListItem                   // grouping node, background only
	KindContainer                  // grouping node, background only
	KindScrollView                 // grouping node, background only
	KindHStack                     // grouping node, background only
	KindVStack                     // grouping node, background only
	KindRoot                       // permanent tree root
	KindFragment                   // grouping node with no visual output
)

var kindNames = [...]string{
	KindRect:       "rect",
	KindCircle:     "circle",
	KindLine:       "line",
	KindText:       "text",
	KindImage:      "image",
	KindButton:     "button",
	KindLabel:      "label",
	KindPanel:      "panel",
	KindProgress:   "progress",
	KindList:       "list",
	KindListItem:   "list-item",
	KindContainer:  "container",
	KindScrollView: "scroll-view",
	KindHStack:     "hstack",
	KindVStack:     "vstack",
	KindRoot:       "root",
	KindFragment:   "fragment",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// UnmarshalText parses the names returned by String.
func (k *NodeKind) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range kindNames {
		if name == s {
			*k = NodeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", s)
}

// TextAlign controls horizontal placement of text within a node.
type TextAlign uint8

const (
	AlignLeft   TextAlign = iota // text starts at the node's X
	AlignCenter                  // text is centered in the node's width
	AlignRight                   // text ends at the node's right edge
)

// UnmarshalText accepts "left", "center" and "right".
func (a *TextAlign) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "left", "":
		*a = AlignLeft
	case "center", "centre":
		*a = AlignCenter
	case "right":
		*a = AlignRight
	default:
		return fmt.Errorf("unknown text alignment %q", text)
	}
	return nil
}

// ChangeKind classifies a Change emitted by the diff engine.
type ChangeKind uint8

const (
	ChangeCreate ChangeKind = iota // node exists only in the new tree
	ChangeUpdate                   // same kind at the same position, props differ
	ChangeRemove                   // node exists only in the old tree
	ChangeMove                     // reserved for keyed diffing; never produced
)

func (c ChangeKind) String() string {
	switch c {
	case ChangeCreate:
		return "create"
	case ChangeUpdate:
		return "update"
	case ChangeRemove:
		return "remove"
	case ChangeMove:
		return "move"
	default:
		return fmt.Sprintf("ChangeKind(%d)", c)
	}
}

// PixelFormat describes how pixels are packed in a framebuffer.
type PixelFormat uint8

const (
	FormatRGB565 PixelFormat = iota // 16 bits per pixel, big-endian on the wire
	FormatRGB666                    // 18 bits in 3 bytes (not implemented)
	FormatRGB888                    // 24 bits in 3 bytes (not implemented)
	FormatMono1                     // 1 bit per pixel (not implemented)
)

// BytesPerPixel returns the storage size of one pixel, rounded up to whole
// bytes.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB565:
		return 2
	case FormatRGB666, FormatRGB888:
		return 3
	default:
		return 1
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatRGB565:
		return "rgb565"
	case FormatRGB666:
		return "rgb666"
	case FormatRGB888:
		return "rgb888"
	case FormatMono1:
		return "mono1"
	default:
		return fmt.Sprintf("PixelFormat(%d)", f)
	}
}

// UnmarshalText parses the names returned by String.
func (f *PixelFormat) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for _, cand := range []PixelFormat{FormatRGB565, FormatRGB666, FormatRGB888, FormatMono1} {
		if cand.String() == s {
			*f = cand
			return nil
		}
	}
	return fmt.Errorf("unknown pixel format %q", s)
}
