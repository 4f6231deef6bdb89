package blockart

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	p := testPalette(t, spec("minecraft:a", 0, 0, 0), spec("minecraft:b", 9, 9, 9))
	indices := []int{0, 1, 1, 0, 0, 1}
	g, err := NewGrid(p, 3, 2, indices)
	require.NoError(t, err)
	indices[0] = 1
	assert.Equal(t, 0, g.Index(0, 0), "grid owns its cells")
	assert.Equal(t, "minecraft:b", g.At(1, 2).Name)
	assert.Equal(t, 6, g.Area())
	assert.Same(t, p, g.Palette())

	rows := g.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "minecraft:a", rows[1][0].Name)

	var visited []Cell
	for c := range g.Cells() {
		visited = append(visited, c)
		if len(visited) == 4 {
			break
		}
	}
	require.Len(t, visited, 4)
	assert.Equal(t, 1, visited[3].Row)
	assert.Equal(t, 0, visited[3].Col)

	empty, err := NewGrid(p, 0, 5, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Area())
}

func TestNewGridErrors(t *testing.T) {
	p := testPalette(t, spec("minecraft:a", 0, 0, 0))
	_, err := NewGrid(nil, 1, 1, []int{0})
	assert.ErrorIs(t, err, ErrEmptyPalette)
	_, err = NewGrid(p, -1, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewGrid(p, 2, 2, []int{0, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewGrid(p, 1, 1, []int{1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGridEqual(t *testing.T) {
	a := testPalette(t, spec("minecraft:a", 0, 0, 0), spec("minecraft:b", 9, 9, 9))
	b := testPalette(t, spec("minecraft:b", 9, 9, 9), spec("minecraft:a", 0, 0, 0))
	ga, err := NewGrid(a, 2, 1, []int{0, 1})
	require.NoError(t, err)
	gb, err := NewGrid(b, 2, 1, []int{1, 0})
	require.NoError(t, err)
	assert.True(t, ga.Equal(gb), "equality is by block name, not index")

	gc, err := NewGrid(a, 1, 2, []int{0, 1})
	require.NoError(t, err)
	assert.False(t, ga.Equal(gc))
	assert.False(t, ga.Equal(nil))
	var none *Grid
	assert.True(t, none.Equal(nil))
}

func TestErrorFormat(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(KindDecode, "schematic.Decode", cause, "bad %s", "row")
	err.Offset = 12
	err.Field = "row"
	assert.Equal(t, "blockart: schematic.Decode: decode at offset 12 (row): bad row: boom", err.Error())
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEncode)
	assert.Equal(t, KindUnknown, KindOf(cause))

	plain := NewError(KindEmptyGrid, "Render", "nothing")
	assert.Equal(t, "blockart: Render: empty grid: nothing", plain.Error())
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, uniform(6, 4, RGB{1, 2, 3})))

	img, err := DecodeImage(bytes.NewReader(buf.Bytes()), 0)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	_, err = DecodeImage(bytes.NewReader(buf.Bytes()), 23)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = DecodeImage(strings.NewReader("GIF89a"), 0)
	assert.ErrorIs(t, err, ErrInvalidImage)

	truncated := buf.Bytes()[:buf.Len()-20]
	_, err = DecodeImage(bytes.NewReader(truncated), 0)
	assert.ErrorIs(t, err, ErrInvalidImage)
}
