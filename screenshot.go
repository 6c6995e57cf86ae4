package sapling

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EncodePNG writes the draw target as a PNG image.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, fb); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNG writes the draw target to a PNG file at path.
func (fb *Framebuffer) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fb.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Screenshot writes the draw target to dir as a timestamped PNG named after
// label and returns the file path.
func (fb *Framebuffer) Screenshot(dir, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, SanitizeLabel(label)))
	if err := fb.WritePNG(path); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}

// maxLabelLen bounds the label part of a screenshot file name.
const maxLabelLen = 64

// SanitizeLabel turns a free-form label, such as a node name or a caption
// like "clock: 12:34", into a file name fragment. Runs of characters other
// than ASCII letters, digits, '-' and '.' collapse into one underscore.
// Leading and trailing separators are dropped so the name can be neither
// hidden nor a path component like "..". The result is cut to 64 bytes, and
// an empty result becomes "screen".
func SanitizeLabel(label string) string {
	var b strings.Builder
	b.Grow(min(len(label), maxLabelLen))
	gap := false
	for _, r := range label {
		safe := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' || r == '-' || r == '.'
		if !safe {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte('_')
		}
		gap = false
		b.WriteRune(r)
	}
	name := b.String()
	if len(name) > maxLabelLen {
		name = name[:maxLabelLen]
	}
	name = strings.Trim(name, "._-")
	if name == "" {
		return "screen"
	}
	return name
}
