package blockart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPalette(t *testing.T, specs ...BlockSpec) *Palette {
	t.Helper()
	p, err := NewPalette(specs)
	require.NoError(t, err)
	return p
}

func spec(name string, r, g, b int) BlockSpec {
	return BlockSpec{Name: name, Color: []int{r, g, b}}
}

func TestLoadPalette(t *testing.T) {
	p, err := LoadPalette()
	require.NoError(t, err)
	assert.Equal(t, 160, p.Len())

	seen := make(map[string]bool)
	for _, b := range p.Blocks() {
		assert.True(t, strings.HasPrefix(b.Name, "minecraft:"), b.Name)
		assert.NotEmpty(t, b.Label, b.Name)
		assert.False(t, seen[b.Name], "duplicate %s", b.Name)
		seen[b.Name] = true
	}

	stone, ok := p.Lookup("minecraft:stone")
	require.True(t, ok)
	assert.Equal(t, RGB{125, 125, 125}, stone.Color)
	assert.Equal(t, FamilyStone, stone.Family)

	// Explicit family entries override keyword classification.
	redstone, ok := p.Lookup("minecraft:redstone_block")
	require.True(t, ok)
	assert.Equal(t, FamilyMetal, redstone.Family)
	blackstone, ok := p.Lookup("minecraft:blackstone")
	require.True(t, ok)
	assert.Equal(t, FamilyNether, blackstone.Family)

	_, ok = p.Lookup("minecraft:does_not_exist")
	assert.False(t, ok)
}

func TestNewPaletteErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []BlockSpec
	}{
		{"empty", nil},
		{"no name", []BlockSpec{spec("", 1, 2, 3)}},
		{"duplicate", []BlockSpec{spec("minecraft:a", 1, 2, 3), spec("minecraft:a", 4, 5, 6)}},
		{"two channels", []BlockSpec{{Name: "minecraft:a", Color: []int{1, 2}}}},
		{"four channels", []BlockSpec{{Name: "minecraft:a", Color: []int{1, 2, 3, 4}}}},
		{"channel above 255", []BlockSpec{spec("minecraft:a", 256, 0, 0)}},
		{"negative channel", []BlockSpec{spec("minecraft:a", 0, -1, 0)}},
		{"unknown family", []BlockSpec{{Name: "minecraft:a", Color: []int{1, 2, 3}, Family: "lava"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPalette(tt.specs)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrPaletteLoad), err.Error())
			assert.Equal(t, KindPaletteLoad, KindOf(err))
		})
	}
}

func TestNewPaletteDefaults(t *testing.T) {
	p := testPalette(t,
		spec("minecraft:white_wool", 233, 236, 236),
		BlockSpec{Name: "minecraft:glass", Label: "Glass", Color: []int{200, 220, 230}, Transparent: true},
	)
	wool := p.Block(0)
	assert.Equal(t, "minecraft:white_wool", wool.Label)
	assert.Equal(t, FamilyWool, wool.Family)
	glass := p.Block(1)
	assert.Equal(t, "Glass", glass.Label)
	assert.True(t, glass.Transparent)
	assert.Equal(t, FamilyGlass, glass.Family)

	i, ok := p.Index("minecraft:glass")
	require.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestLoadPaletteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "minecraft:black_wool", "color": [20, 21, 25]},
		{"name": "minecraft:white_wool", "color": [233, 236, 236], "family": "plain"}
	]`), 0o644))

	p, err := LoadPaletteFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, FamilyPlain, p.Block(1).Family)

	_, err = LoadPaletteFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, KindPaletteLoad, KindOf(err))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name": 1}`), 0o644))
	_, err = LoadPaletteFile(bad)
	assert.Equal(t, KindPaletteLoad, KindOf(err))
}

func TestClassifyFamily(t *testing.T) {
	tests := []struct {
		name string
		want Family
	}{
		{"minecraft:stone_bricks", FamilyStone},
		{"minecraft:red_sandstone", FamilyStone},
		{"minecraft:oak_log", FamilyLog},
		{"minecraft:oak_planks", FamilyWood},
		{"minecraft:white_wool", FamilyWool},
		{"minecraft:white_concrete_powder", FamilyConcrete},
		{"minecraft:terracotta", FamilyTerracotta},
		{"minecraft:light_blue_stained_glass", FamilyGlass},
		{"minecraft:netherrack", FamilyNether},
		{"minecraft:warped_planks", FamilyWood},
		{"minecraft:iron_block", FamilyMetal},
		{"minecraft:cut_copper", FamilyMetal},
		{"minecraft:iron_ore", FamilyPlain},
		{"minecraft:oak_leaves", FamilyLeaves},
		{"minecraft:sponge", FamilyPlain},
		{"OAK_LOG", FamilyLog},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyFamily(tt.name), tt.name)
	}
}

func TestParseFamily(t *testing.T) {
	for f := FamilyPlain; f <= FamilyLeaves; f++ {
		got, ok := ParseFamily(f.String())
		require.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}
	_, ok := ParseFamily("lava")
	assert.False(t, ok)
}

func TestPaletteFilter(t *testing.T) {
	p := MustLoadPalette()
	wool, err := p.Filter(FamilyWool)
	require.NoError(t, err)
	require.Positive(t, wool.Len())
	last := -1
	for _, b := range wool.Blocks() {
		assert.Equal(t, FamilyWool, b.Family)
		i, ok := p.Index(b.Name)
		require.True(t, ok)
		assert.Greater(t, i, last, "filter keeps palette order")
		last = i
	}

	small := testPalette(t, spec("minecraft:white_wool", 233, 236, 236))
	_, err = small.Filter(FamilyGlass)
	assert.Equal(t, KindPaletteLoad, KindOf(err))
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 128, 0}, c)
	assert.Equal(t, "#ff8000", c.Hex())

	_, err = ParseHex("orange")
	assert.Error(t, err)
}

func TestRGBColor(t *testing.T) {
	r, g, b, a := RGB{255, 0, 1}.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0x0101), b)
	assert.Equal(t, uint32(0xffff), a)
}
