package sapling

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NodeDoc is the declarative form of one node in a scene document.
// Omitted fields take the DefaultProps values.
type NodeDoc struct {
	Name         string    `yaml:"name"`
	Kind         NodeKind  `yaml:"kind"`
	X            int       `yaml:"x"`
	Y            int       `yaml:"y"`
	Width        int       `yaml:"width"`
	Height       int       `yaml:"height"`
	Color        Color     `yaml:"color"`
	Background   Color     `yaml:"background"`
	BorderColor  Color     `yaml:"border_color"`
	BorderWidth  int       `yaml:"border_width"`
	CornerRadius int       `yaml:"corner_radius"`
	Text         string    `yaml:"text"`
	FontSize     int       `yaml:"font_size"`
	Align        TextAlign `yaml:"align"`
	Radius       int       `yaml:"radius"`
	Visible      bool      `yaml:"visible"`
	Enabled      bool      `yaml:"enabled"`
	Pressed      bool      `yaml:"pressed"`
	Value        int       `yaml:"value"`
	Padding      int       `yaml:"padding"`
	Gap          int       `yaml:"gap"`
	Key          uint32    `yaml:"key"`
	Tag          uint32    `yaml:"tag"`
	Children     []NodeDoc `yaml:"children"`
}

// UnmarshalYAML decodes a node over the default property values.
func (n *NodeDoc) UnmarshalYAML(value *yaml.Node) error {
	type plain NodeDoc
	def := DefaultProps()
	p := plain{
		Color:    def.Color,
		FontSize: int(def.FontSize),
		Visible:  def.Visible,
		Enabled:  def.Enabled,
	}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*n = NodeDoc(p)
	return nil
}

// Props converts the document fields to node properties.
func (n *NodeDoc) Props() Props {
	p := DefaultProps()
	p.X, p.Y = int16(n.X), int16(n.Y)
	p.Width, p.Height = uint16(n.Width), uint16(n.Height)
	p.Color = n.Color
	p.Background = n.Background
	p.BorderColor = n.BorderColor
	p.BorderWidth = uint8(n.BorderWidth)
	p.CornerRadius = uint8(n.CornerRadius)
	p.Text = n.Text
	p.FontSize = uint8(n.FontSize)
	p.Align = n.Align
	p.Radius = uint16(n.Radius)
	p.Visible = n.Visible
	p.Enabled = n.Enabled
	p.Pressed = n.Pressed
	p.Flex = uint8(max(0, min(n.Value, 255)))
	p.Padding = uint8(n.Padding)
	p.Gap = uint8(n.Gap)
	p.Key = n.Key
	p.Tag = n.Tag
	return p
}

// SceneDoc is a declarative scene: a list of top-level nodes appended under
// the builder's parent. JSON documents decode as well, being valid YAML.
type SceneDoc struct {
	Nodes []NodeDoc `yaml:"nodes"`
}

// BindFunc lets the caller adjust a named node's props while a scene is
// built, to fill in values that change from frame to frame.
type BindFunc func(name string, p *Props)

// LoadScene parses a YAML or JSON scene document.
func LoadScene(data []byte) (*SceneDoc, error) {
	var doc SceneDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("parse scene: no nodes")
	}
	return &doc, nil
}

// Build appends the document's nodes to b. bind, if non-nil, is called for
// every node that has a name. Returns the builder's error.
func (d *SceneDoc) Build(b *Builder, bind BindFunc) error {
	for i := range d.Nodes {
		buildNodeDoc(b, &d.Nodes[i], bind)
	}
	return b.Err()
}

func buildNodeDoc(b *Builder, n *NodeDoc, bind BindFunc) {
	p := n.Props()
	if bind != nil && n.Name != "" {
		bind(n.Name, &p)
	}
	// Unsized text fits its content, as Builder.Text does; drawing is
	// clipped to the box.
	if n.Kind == KindText && p.Width == 0 && p.Height == 0 {
		size := int(p.FontSize)
		if size == 0 {
			size = DefaultFontSize
		}
		p.Width = uint16(TextWidth(p.Text, size))
		p.Height = uint16(TextHeight(size))
	}
	if len(n.Children) == 0 {
		b.Node(n.Kind, p)
		return
	}
	if b.Push(n.Kind, p) == NoNode {
		return
	}
	for i := range n.Children {
		buildNodeDoc(b, &n.Children[i], bind)
	}
	b.Pop()
}
