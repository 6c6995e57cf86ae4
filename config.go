package sapling

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config describes a display and the renderer driving it. It can be loaded
// from YAML:
//
//	width: 240
//	height: 135
//	format: rgb565
//	double_buffer: true
//	max_nodes: 128
//	background: "#101018"
//	partial_threshold: 0.5
type Config struct {
	Width            int         `yaml:"width"`
	Height           int         `yaml:"height"`
	Format           PixelFormat `yaml:"format"`
	DoubleBuffer     bool        `yaml:"double_buffer"`
	MaxNodes         int         `yaml:"max_nodes"`
	MaxDepth         int         `yaml:"max_depth"`
	Background       Color       `yaml:"background"`
	DirtyRegions     bool        `yaml:"dirty_regions"`
	PartialThreshold float64     `yaml:"partial_threshold"`
}

// DefaultConfig returns the settings for a 240x135 RGB565 panel.
func DefaultConfig() Config {
	return Config{
		Width:            240,
		Height:           135,
		Format:           FormatRGB565,
		DoubleBuffer:     false,
		MaxNodes:         DefaultRendererConfig().MaxNodes,
		MaxDepth:         DefaultMaxDepth,
		Background:       ColorBlack,
		DirtyRegions:     true,
		PartialThreshold: DefaultPartialThreshold,
	}
}

// LoadConfig decodes YAML over DefaultConfig, so omitted keys keep their
// defaults, and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	if c.Width > 1<<15 || c.Height > 1<<15 {
		errs = append(errs, fmt.Errorf("size %dx%d exceeds node coordinate range", c.Width, c.Height))
	}
	if c.Format != FormatRGB565 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.Format))
	}
	if c.MaxNodes < 1 {
		errs = append(errs, fmt.Errorf("max_nodes must be at least 1, got %d", c.MaxNodes))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if c.PartialThreshold < 0 || c.PartialThreshold > 1 {
		errs = append(errs, fmt.Errorf("partial_threshold must be within [0, 1], got %v", c.PartialThreshold))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewFramebuffer allocates a framebuffer matching the configuration.
func (c Config) NewFramebuffer() (*Framebuffer, error) {
	return NewFramebuffer(c.Width, c.Height, c.Format, c.DoubleBuffer)
}

// RendererConfig returns the renderer part of the configuration.
func (c Config) RendererConfig() RendererConfig {
	return RendererConfig{
		MaxNodes:     c.MaxNodes,
		MaxDepth:     c.MaxDepth,
		Background:   c.Background,
		DirtyRegions: c.DirtyRegions,
	}
}

// Display bundles the objects a Config describes: the framebuffer, a
// renderer drawing into it and a display controller shipping it.
type Display struct {
	Framebuffer *Framebuffer
	Renderer    *Renderer
	Controller  *DisplayController
}

// NewDisplay wires a framebuffer, renderer and display controller together.
func (c Config) NewDisplay(transport Transport) (*Display, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	fb, err := c.NewFramebuffer()
	if err != nil {
		return nil, err
	}
	ctrl := NewDisplayController(fb, transport)
	ctrl.Threshold = c.PartialThreshold
	return &Display{
		Framebuffer: fb,
		Renderer:    NewRenderer(NewFramebufferCanvas(fb), c.RendererConfig()),
		Controller:  ctrl,
	}, nil
}

// Frame renders the tree built since the last Begin and flushes the result
// to the panel.
func (d *Display) Frame() (Transfer, error) {
	if err := d.Renderer.Render(); err != nil {
		return Transfer{}, err
	}
	tr, err := d.Controller.Flush()
	if err != nil {
		return Transfer{}, err
	}
	d.Controller.WaitVsync()
	return tr, nil
}
