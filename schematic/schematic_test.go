package schematic

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/setanarut/blockart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomGrid(t *testing.T, p *blockart.Palette, w, h int, seed uint64) *blockart.Grid {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	indices := make([]int, w*h)
	for i := range indices {
		indices[i] = rng.IntN(p.Len())
	}
	g, err := blockart.NewGrid(p, w, h, indices)
	require.NoError(t, err)
	return g
}

func decodeErr(t *testing.T, err error) *blockart.Error {
	t.Helper()
	require.Error(t, err)
	var e *blockart.Error
	require.True(t, errors.As(err, &e), err.Error())
	assert.Equal(t, blockart.KindDecode, e.Kind, err.Error())
	return e
}

func TestRoundTrip(t *testing.T) {
	p := blockart.MustLoadPalette()
	for _, size := range [][2]int{{1, 1}, {3, 2}, {17, 9}, {64, 64}} {
		g := randomGrid(t, p, size[0], size[1], uint64(size[0]))
		data, err := Encode(g)
		require.NoError(t, err)
		got, err := Decode(data, p)
		require.NoError(t, err)
		assert.True(t, g.Equal(got), "%v", size)
		if diff := cmp.Diff(g.Indices(), got.Indices()); diff != "" {
			t.Errorf("cells differ (-want +got):\n%s", diff)
		}
	}
}

func TestWriteRead(t *testing.T) {
	p := blockart.MustLoadPalette()
	g := randomGrid(t, p, 40, 25, 9)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	got, err := Read(&buf, p)
	require.NoError(t, err)
	assert.True(t, g.Equal(got))
}

func TestEncodeDeterministic(t *testing.T) {
	p := blockart.MustLoadPalette()
	g := randomGrid(t, p, 12, 7, 3)
	a, err := Encode(g)
	require.NoError(t, err)
	b, err := Encode(g)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeLayout(t *testing.T) {
	p, err := blockart.NewPalette([]blockart.BlockSpec{
		{Name: "minecraft:a", Color: []int{0, 0, 0}},
		{Name: "minecraft:bb", Color: []int{1, 1, 1}},
		{Name: "minecraft:ccc", Color: []int{2, 2, 2}},
	})
	require.NoError(t, err)
	g, err := blockart.NewGrid(p, 2, 1, []int{2, 0})
	require.NoError(t, err)
	data, err := Encode(g)
	require.NoError(t, err)

	want := []byte("MCBG")
	want = binary.BigEndian.AppendUint16(want, 1)
	want = binary.BigEndian.AppendUint32(want, 2)
	want = binary.BigEndian.AppendUint32(want, 1)
	want = binary.BigEndian.AppendUint16(want, 2)
	want = binary.BigEndian.AppendUint16(want, 11)
	want = append(want, "minecraft:a"...)
	want = binary.BigEndian.AppendUint16(want, 13)
	want = append(want, "minecraft:ccc"...)
	want = binary.BigEndian.AppendUint16(want, 1)
	want = binary.BigEndian.AppendUint16(want, 0)
	require.Equal(t, want, data[:len(data)-4])
}

func TestEncodeErrors(t *testing.T) {
	p := blockart.MustLoadPalette()
	for _, size := range [][2]int{{0, 0}, {0, 3}, {3, 0}} {
		g, err := blockart.NewGrid(p, size[0], size[1], nil)
		require.NoError(t, err)
		_, err = Encode(g)
		assert.ErrorIs(t, err, blockart.ErrEncode, "%v", size)
		_, err = EncodeSponge(g)
		assert.ErrorIs(t, err, blockart.ErrEncode, "%v", size)
	}
	_, err := Encode(nil)
	assert.ErrorIs(t, err, blockart.ErrEncode)

	wide, err := blockart.NewGrid(p, MaxSide+1, 1, make([]int, MaxSide+1))
	require.NoError(t, err)
	_, err = Encode(wide)
	assert.ErrorIs(t, err, blockart.ErrEncode)
}

func TestDecodeTruncatedRow(t *testing.T) {
	p := blockart.MustLoadPalette()
	g := randomGrid(t, p, 5, 4, 1)
	data, err := Encode(g)
	require.NoError(t, err)

	// Drop the final row and the checksum.
	cut := len(data) - 4 - 2*g.Width()
	got, err := Decode(data[:cut], p)
	assert.Nil(t, got)
	e := decodeErr(t, err)
	assert.Equal(t, int64(cut), e.Offset)
	assert.Equal(t, "row", e.Field)
	assert.Contains(t, e.Error(), "row 3 of 4")

	// Mid-row truncation points at the first incomplete cell.
	_, err = Decode(data[:cut+3], p)
	e = decodeErr(t, err)
	assert.Equal(t, int64(cut+2), e.Offset)
}

func TestDecodeErrors(t *testing.T) {
	p := blockart.MustLoadPalette()
	g := randomGrid(t, p, 3, 3, 5)
	data, err := Encode(g)
	require.NoError(t, err)
	mutate := func(f func([]byte) []byte) []byte {
		return f(bytes.Clone(data))
	}
	tableStart := 4 + 2 + 4 + 4

	tests := []struct {
		name   string
		data   []byte
		field  string
		offset int64
	}{
		{"empty", nil, "magic", 0},
		{"bad magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), "magic", 0},
		{"short header", data[:7], "width", 6},
		{"version", mutate(func(b []byte) []byte { b[5] = 2; return b }), "version", 4},
		{"zero width", mutate(func(b []byte) []byte { copy(b[6:10], []byte{0, 0, 0, 0}); return b }), "dimensions", 6},
		{"huge height", mutate(func(b []byte) []byte { binary.BigEndian.PutUint32(b[10:], 1<<20); return b }), "dimensions", 6},
		{"empty table", mutate(func(b []byte) []byte { binary.BigEndian.PutUint16(b[tableStart:], 0); return b }), "table count", int64(tableStart)},
		{"truncated name", data[:tableStart+2+2+3], "table entry name", int64(tableStart + 4)},
		{"checksum", mutate(func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }), "checksum", int64(len(data) - 4)},
		{"missing checksum", data[:len(data)-2], "checksum", int64(len(data) - 4)},
		{"trailing", append(bytes.Clone(data), 0), "end", int64(len(data))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, p)
			assert.Nil(t, got)
			e := decodeErr(t, err)
			assert.Equal(t, tt.field, e.Field)
			assert.Equal(t, tt.offset, e.Offset)
		})
	}
}

func TestDecodeIndexOutsideTable(t *testing.T) {
	p := blockart.MustLoadPalette()
	g, err := blockart.NewGrid(p, 2, 1, []int{4, 4})
	require.NoError(t, err)
	data, err := Encode(g)
	require.NoError(t, err)
	cells := len(data) - 4 - 4
	binary.BigEndian.PutUint16(data[cells+2:], 7)
	_, err = Decode(data, p)
	e := decodeErr(t, err)
	assert.Equal(t, "row", e.Field)
	assert.Equal(t, int64(cells+2), e.Offset)
}

func TestDecodeUnknownBlock(t *testing.T) {
	p := blockart.MustLoadPalette()
	stone, ok := p.Index("minecraft:stone")
	require.True(t, ok)
	g, err := blockart.NewGrid(p, 1, 1, []int{stone})
	require.NoError(t, err)
	data, err := Encode(g)
	require.NoError(t, err)

	wool, err := p.Filter(blockart.FamilyWool)
	require.NoError(t, err)
	_, err = Decode(data, wool)
	e := decodeErr(t, err)
	assert.Equal(t, "table entry name", e.Field)
	assert.Contains(t, e.Msg, "minecraft:stone")

	_, err = Decode(data, nil)
	assert.ErrorIs(t, err, blockart.ErrEmptyPalette)
}

func TestDecodeAcrossPalettes(t *testing.T) {
	p := blockart.MustLoadPalette()
	wool, err := p.Filter(blockart.FamilyWool)
	require.NoError(t, err)
	g := randomGrid(t, wool, 6, 6, 2)
	data, err := Encode(g)
	require.NoError(t, err)

	// Names, not indices, are stored, so the full palette resolves a wool-only grid.
	got, err := Decode(data, p)
	require.NoError(t, err)
	assert.True(t, g.Equal(got))
}

func TestDecodeForgedDimensions(t *testing.T) {
	p := blockart.MustLoadPalette()
	data := []byte("MCBG")
	data = binary.BigEndian.AppendUint16(data, Version)
	data = binary.BigEndian.AppendUint32(data, MaxSide)
	data = binary.BigEndian.AppendUint32(data, MaxSide)
	data = binary.BigEndian.AppendUint16(data, 1)
	data = binary.BigEndian.AppendUint16(data, uint16(len("minecraft:stone")))
	data = append(data, "minecraft:stone"...)

	got, err := Decode(data, p)
	assert.Nil(t, got)
	e := decodeErr(t, err)
	assert.Equal(t, "row", e.Field)
	assert.Equal(t, int64(len(data)), e.Offset)
	assert.Contains(t, e.Error(), "row 0 of 32767")
}
