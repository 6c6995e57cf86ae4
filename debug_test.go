package sapling

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDumpTree(t *testing.T) {
	tr := buildTree(t, func(b *Builder) {
		b.Panel(0, 0, 100, 50, ColorBlue)
		b.Label(4, 4, 40, 16, "hi", AlignLeft, ColorWhite)
		p := boxProps(0, 0, 5, 5)
		p.Visible = false
		b.Node(KindRect, p)
		b.Pop()
	})

	var buf bytes.Buffer
	if err := DumpTree(&buf, tr); err != nil {
		t.Fatal(err)
	}
	want := "root #1 (0,0 0x0)\n" +
		"  panel #2 (0,0 100x50)\n" +
		"    label #3 (4,4 40x16) \"hi\"\n" +
		"    rect #4 (0,0 5x5) hidden\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("DumpTree mismatch (-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestDumpTreeWriteError(t *testing.T) {
	tr := buildTree(t, func(b *Builder) { b.Rect(0, 0, 1, 1, ColorRed) })
	if err := DumpTree(failingWriter{}, tr); err == nil {
		t.Error("expected the writer's error")
	}
}
