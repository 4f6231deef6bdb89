package blockart

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultResolution is the grid's longer side when a config leaves it unset.
const DefaultResolution = 50

const maxConfigSize = 1 << 20

// Config is the JSON form of a conversion setup. Every field is optional;
// omitted values fall back to DefaultOptions and DefaultRenderOptions.
type Config struct {
	// Sampling and matching
	Resolution      *int    `json:"resolution,omitempty"`
	MaxGridSize     *int    `json:"max_grid_size,omitempty"`
	MaxSourcePixels *int    `json:"max_source_pixels,omitempty"`
	Workers         *int    `json:"workers,omitempty"`
	Metric          *string `json:"metric,omitempty"` // rgb, lab or redmean
	Weighted        *bool   `json:"weighted,omitempty"`
	Background      *string `json:"background,omitempty"` // hex like "#ffffff"
	QuantizeColors  *int    `json:"quantize_colors,omitempty"`

	// Preview
	CellSize    *int    `json:"cell_size,omitempty"`
	GridLines   *bool   `json:"grid_lines,omitempty"`
	Textures    *bool   `json:"textures,omitempty"`
	TextureSeed *uint64 `json:"texture_seed,omitempty"`

	// Palette
	PalettePath *string  `json:"palette_path,omitempty"`
	Families    []string `json:"families,omitempty"`
}

// LoadConfig reads a Config from a .json file of at most 1MB and validates it.
func LoadConfig(path string) (*Config, error) {
	const op = "LoadConfig"
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, NewError(KindInvalidArgument, op, "config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return nil, WrapError(KindInvalidArgument, op, err, "stat config file")
	}
	if info.Size() > maxConfigSize {
		return nil, NewError(KindInvalidArgument, op, "config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, WrapError(KindInvalidArgument, op, err, "read config file")
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates JSON config bytes.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, WrapError(KindInvalidArgument, "ParseConfig", err, "parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every set field.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c.Resolution != nil && *c.Resolution < 1 {
		return NewError(KindInvalidArgument, op, "resolution must be positive, got %d", *c.Resolution)
	}
	if c.CellSize != nil && *c.CellSize < 1 {
		return NewError(KindInvalidArgument, op, "cell_size must be positive, got %d", *c.CellSize)
	}
	for _, name := range c.Families {
		if _, ok := ParseFamily(name); !ok {
			return NewError(KindInvalidArgument, op, "unknown family %q", name)
		}
	}
	opt, err := c.Options()
	if err != nil {
		return err
	}
	if r := c.GetResolution(); r > opt.MaxGridSize {
		return NewError(KindInvalidArgument, op, "resolution %d above max_grid_size %d", r, opt.MaxGridSize)
	}
	return opt.Validate()
}

// GetResolution returns resolution or DefaultResolution.
func (c *Config) GetResolution() int {
	if c.Resolution == nil {
		return DefaultResolution
	}
	return *c.Resolution
}

// Options overlays the set fields on DefaultOptions.
func (c *Config) Options() (Options, error) {
	const op = "Config.Options"
	opt := DefaultOptions()
	if c.MaxGridSize != nil {
		opt.MaxGridSize = *c.MaxGridSize
	}
	if c.MaxSourcePixels != nil {
		opt.MaxSourcePixels = *c.MaxSourcePixels
	}
	if c.Workers != nil {
		opt.Workers = *c.Workers
	}
	if c.Metric != nil {
		m, err := ParseMetric(*c.Metric)
		if err != nil {
			return Options{}, WrapError(KindInvalidArgument, op, err, "metric")
		}
		opt.Metric = m
	}
	if c.Weighted != nil {
		opt.Weighted = *c.Weighted
	}
	if c.Background != nil {
		bg, err := ParseHex(*c.Background)
		if err != nil {
			return Options{}, WrapError(KindInvalidArgument, op, err, "background")
		}
		opt.Background = bg
	}
	if c.QuantizeColors != nil {
		opt.QuantizeColors = *c.QuantizeColors
	}
	return opt, nil
}

// RenderOptions overlays the set preview fields on DefaultRenderOptions.
func (c *Config) RenderOptions() RenderOptions {
	opt := DefaultRenderOptions()
	if c.CellSize != nil {
		opt.CellSize = *c.CellSize
	}
	if c.GridLines != nil {
		opt.GridLines = *c.GridLines
	}
	if c.Textures != nil {
		opt.Textures = *c.Textures
	}
	if c.TextureSeed != nil {
		seed := *c.TextureSeed
		opt.Seed = &seed
	}
	return opt
}

// Palette loads palette_path, or the embedded table, and narrows it to families.
func (c *Config) Palette() (*Palette, error) {
	var (
		p   *Palette
		err error
	)
	if c.PalettePath != nil && *c.PalettePath != "" {
		p, err = LoadPaletteFile(*c.PalettePath)
	} else {
		p, err = LoadPalette()
	}
	if err != nil || len(c.Families) == 0 {
		return p, err
	}
	fams := make([]Family, 0, len(c.Families))
	for _, name := range c.Families {
		f, ok := ParseFamily(name)
		if !ok {
			return nil, NewError(KindInvalidArgument, "Config.Palette", "unknown family %q", name)
		}
		fams = append(fams, f)
	}
	return p.Filter(fams...)
}
