package blockart

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

//go:embed blocks.json
var defaultBlockTable []byte

// maxPaletteSize keeps palette indices representable as uint16 in schematics.
const maxPaletteSize = 1<<16 - 1

// RGB is an opaque 8-bit sRGB color.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// Colorful converts c to a go-colorful color in [0,1].
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255.0, G: float64(c.G) / 255.0, B: float64(c.B) / 255.0}
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string { return c.Colorful().Hex() }

// RGBFromColorful clamps a go-colorful color back to 8-bit channels.
func RGBFromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return RGBFromColorful(c), nil
}

// Block is one selectable palette entry. Name is the namespaced block id.
type Block struct {
	Name        string
	Label       string
	Color       RGB
	Family      Family
	Transparent bool
}

// BlockSpec is the on-disk shape of a palette entry. Color is validated at load.
type BlockSpec struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Color       []int  `json:"color"`
	Transparent bool   `json:"transparent,omitempty"`
	Family      string `json:"family,omitempty"`
}

// Palette is an ordered, immutable set of blocks keyed by name.
// Iteration order is table order and defines the matcher's tie break.
type Palette struct {
	blocks []Block
	byName map[string]int
}

// LoadPalette loads the built-in block table.
func LoadPalette() (*Palette, error) {
	return parsePalette("LoadPalette", defaultBlockTable)
}

// LoadPaletteFile loads a palette from a JSON file of BlockSpec entries.
func LoadPaletteFile(path string) (*Palette, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, WrapError(KindPaletteLoad, "LoadPaletteFile", err, "read %s", path)
	}
	return parsePalette("LoadPaletteFile", data)
}

// MustLoadPalette is LoadPalette for process startup and tests. It panics on failure.
func MustLoadPalette() *Palette {
	p, err := LoadPalette()
	if err != nil {
		panic(err)
	}
	return p
}

func parsePalette(op string, data []byte) (*Palette, error) {
	var specs []BlockSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, WrapError(KindPaletteLoad, op, err, "parse block table")
	}
	return newPalette(op, specs)
}

// NewPalette validates specs and builds a palette in the given order.
func NewPalette(specs []BlockSpec) (*Palette, error) {
	return newPalette("NewPalette", specs)
}

func newPalette(op string, specs []BlockSpec) (*Palette, error) {
	if len(specs) == 0 {
		return nil, NewError(KindPaletteLoad, op, "block table is empty")
	}
	if len(specs) > maxPaletteSize {
		return nil, NewError(KindPaletteLoad, op, "block table has %d entries (max %d)", len(specs), maxPaletteSize)
	}
	p := &Palette{
		blocks: make([]Block, 0, len(specs)),
		byName: make(map[string]int, len(specs)),
	}
	for i, s := range specs {
		if s.Name == "" {
			return nil, NewError(KindPaletteLoad, op, "entry %d has no name", i)
		}
		if _, dup := p.byName[s.Name]; dup {
			return nil, NewError(KindPaletteLoad, op, "duplicate block name %q", s.Name)
		}
		if len(s.Color) != 3 {
			return nil, NewError(KindPaletteLoad, op, "block %q has %d color channels, want 3", s.Name, len(s.Color))
		}
		for _, ch := range s.Color {
			if ch < 0 || ch > 255 {
				return nil, NewError(KindPaletteLoad, op, "block %q channel %d out of range [0,255]", s.Name, ch)
			}
		}
		family := ClassifyFamily(s.Name)
		if s.Family != "" {
			f, ok := ParseFamily(s.Family)
			if !ok {
				return nil, NewError(KindPaletteLoad, op, "block %q has unknown family %q", s.Name, s.Family)
			}
			family = f
		}
		label := s.Label
		if label == "" {
			label = s.Name
		}
		p.byName[s.Name] = len(p.blocks)
		p.blocks = append(p.blocks, Block{
			Name:        s.Name,
			Label:       label,
			Color:       RGB{uint8(s.Color[0]), uint8(s.Color[1]), uint8(s.Color[2])},
			Family:      family,
			Transparent: s.Transparent,
		})
	}
	return p, nil
}

// Len returns the number of blocks; a nil palette has none.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.blocks)
}

// Block returns the block at index i in palette order.
func (p *Palette) Block(i int) Block { return p.blocks[i] }

// Blocks returns a copy of the blocks in palette order.
func (p *Palette) Blocks() []Block { return slices.Clone(p.blocks) }

// Index returns the palette position of the named block.
func (p *Palette) Index(name string) (int, bool) {
	i, ok := p.byName[name]
	return i, ok
}

// Lookup returns the named block.
func (p *Palette) Lookup(name string) (Block, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Block{}, false
	}
	return p.blocks[i], true
}

// Filter returns a new palette holding only blocks of the given families,
// keeping palette order.
func (p *Palette) Filter(families ...Family) (*Palette, error) {
	specs := make([]BlockSpec, 0, len(p.blocks))
	for _, b := range p.blocks {
		if !slices.Contains(families, b.Family) {
			continue
		}
		specs = append(specs, b.spec())
	}
	return newPalette("Palette.Filter", specs)
}

func (b Block) spec() BlockSpec {
	return BlockSpec{
		Name:        b.Name,
		Label:       b.Label,
		Color:       []int{int(b.Color.R), int(b.Color.G), int(b.Color.B)},
		Transparent: b.Transparent,
		Family:      b.Family.String(),
	}
}
