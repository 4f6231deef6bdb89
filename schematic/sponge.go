package schematic

import (
	"bytes"
	"io"
	"reflect"

	"github.com/klauspost/compress/gzip"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/setanarut/blockart"
)

const (
	SpongeVersion = 2
	// DataVersion 3100 is Minecraft Java 1.19.2.
	DataVersion = 3100

	// maxSpongeSize bounds the decompressed NBT payload.
	maxSpongeSize = 64 << 20
)

// EncodeSponge serializes g as a gzip compressed Sponge schematic v2, one block
// tall. Grid rows run along Z and columns along X.
func EncodeSponge(g *blockart.Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSponge(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSponge streams the Sponge encoding of g to w.
func WriteSponge(w io.Writer, g *blockart.Grid) error {
	const op = "schematic.EncodeSponge"
	if err := checkEncodable(op, g); err != nil {
		return err
	}

	local, names := blockTable(g)
	palette := make(map[string]int32, len(names))
	for i, name := range names {
		palette[name] = int32(i)
	}

	// Index is x + z*Width with y fixed at 0, which is row-major grid order.
	var data []byte
	for _, idx := range g.Indices() {
		data = appendVarint(data, uint32(local[idx]))
	}

	root := map[string]any{
		"Version":     int32(SpongeVersion),
		"DataVersion": int32(DataVersion),
		"Width":       int16(g.Width()),
		"Height":      int16(1),
		"Length":      int16(g.Height()),
		"Offset":      [3]int32{},
		"PaletteMax":  int32(len(names)),
		"Palette":     palette,
		"BlockData":   byteArray(data),
	}

	zw := gzip.NewWriter(w)
	if err := nbt.NewEncoderWithEncoding(zw, nbt.BigEndian).Encode(root); err != nil {
		return blockart.WrapError(blockart.KindEncode, op, err, "encode NBT")
	}
	if err := zw.Close(); err != nil {
		return blockart.WrapError(blockart.KindEncode, op, err, "flush gzip")
	}
	return nil
}

// DecodeSponge reads a one block tall Sponge schematic v2 back into a grid.
func DecodeSponge(data []byte, p *blockart.Palette) (*blockart.Grid, error) {
	return ReadSponge(bytes.NewReader(data), p)
}

// ReadSponge is DecodeSponge over a stream.
func ReadSponge(r io.Reader, p *blockart.Palette) (*blockart.Grid, error) {
	const op = "schematic.DecodeSponge"
	if p.Len() == 0 {
		return nil, blockart.NewError(blockart.KindEmptyPalette, op, "no palette to resolve blocks")
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, decodeError(op, "gzip", err, "open gzip stream")
	}
	defer zr.Close()

	var root map[string]any
	if err := nbt.NewDecoderWithEncoding(io.LimitReader(zr, maxSpongeSize), nbt.BigEndian).Decode(&root); err != nil {
		return nil, decodeError(op, "nbt", err, "decode NBT")
	}

	version, err := tag[int32](op, root, "Version")
	if err != nil {
		return nil, err
	}
	if version != SpongeVersion {
		return nil, decodeError(op, "Version", nil, "unsupported Sponge version %d", version)
	}
	width, err := tag[int16](op, root, "Width")
	if err != nil {
		return nil, err
	}
	height, err := tag[int16](op, root, "Height")
	if err != nil {
		return nil, err
	}
	length, err := tag[int16](op, root, "Length")
	if err != nil {
		return nil, err
	}
	if height != 1 {
		return nil, decodeError(op, "Height", nil, "height %d, only flat schematics are supported", height)
	}
	w, h := int(uint16(width)), int(uint16(length))
	if w == 0 || h == 0 || w > MaxSide || h > MaxSide {
		return nil, decodeError(op, "Width", nil, "invalid size %dx%d", w, h)
	}

	pal, err := tag[map[string]any](op, root, "Palette")
	if err != nil {
		return nil, err
	}
	table := make(map[uint32]int, len(pal))
	for name, v := range pal {
		id, ok := v.(int32)
		if !ok || id < 0 {
			return nil, decodeError(op, "Palette", nil, "entry %q has id %v", name, v)
		}
		idx, ok := p.Index(name)
		if !ok {
			return nil, decodeError(op, "Palette", nil, "unknown block %q", name)
		}
		if _, dup := table[uint32(id)]; dup {
			return nil, decodeError(op, "Palette", nil, "id %d assigned twice", id)
		}
		table[uint32(id)] = idx
	}

	raw, ok := root["BlockData"]
	if !ok {
		return nil, decodeError(op, "BlockData", nil, "missing tag")
	}
	blockData, ok := bytesOf(raw)
	if !ok {
		return nil, decodeError(op, "BlockData", nil, "tag is %T, want byte array", raw)
	}

	// Every cell needs at least one varint byte.
	if len(blockData) < w*h {
		e := decodeError(op, "BlockData", nil, "%d bytes for %dx%d", len(blockData), w, h)
		e.Offset = int64(len(blockData))
		return nil, e
	}
	cells := make([]int, 0, w*h)
	for off := 0; off < len(blockData); {
		id, n := readVarint(blockData[off:])
		if n == 0 {
			e := decodeError(op, "BlockData", nil, "malformed varint")
			e.Offset = int64(off)
			return nil, e
		}
		idx, ok := table[id]
		if !ok {
			e := decodeError(op, "BlockData", nil, "id %d not in palette", id)
			e.Offset = int64(off)
			return nil, e
		}
		if len(cells) == w*h {
			e := decodeError(op, "BlockData", nil, "more than %d blocks", w*h)
			e.Offset = int64(off)
			return nil, e
		}
		cells = append(cells, idx)
		off += n
	}
	if len(cells) != w*h {
		e := decodeError(op, "BlockData", nil, "%d blocks for %dx%d", len(cells), w, h)
		e.Offset = int64(len(blockData))
		return nil, e
	}

	g, gerr := blockart.NewGrid(p, w, h, cells)
	if gerr != nil {
		return nil, decodeError(op, "BlockData", gerr, "assemble grid")
	}
	return g, nil
}

func decodeError(op, field string, err error, format string, args ...any) *blockart.Error {
	e := blockart.WrapError(blockart.KindDecode, op, err, format, args...)
	e.Field = field
	return e
}

// tag fetches a typed value from an NBT compound.
func tag[T any](op string, m map[string]any, name string) (T, error) {
	var zero T
	v, ok := m[name]
	if !ok {
		return zero, decodeError(op, name, nil, "missing tag")
	}
	t, ok := v.(T)
	if !ok {
		return zero, decodeError(op, name, nil, "tag is %T, want %T", v, zero)
	}
	return t, nil
}

// byteArray wraps b in a fixed size array, the Go shape that encodes as TAG_Byte_Array.
func byteArray(b []byte) any {
	arr := reflect.New(reflect.ArrayOf(len(b), reflect.TypeFor[byte]())).Elem()
	reflect.Copy(arr, reflect.ValueOf(b))
	return arr.Interface()
}

// bytesOf accepts the [N]byte arrays the NBT decoder produces for TAG_Byte_Array.
func bytesOf(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	out := make([]byte, rv.Len())
	for i := range out {
		out[i] = byte(rv.Index(i).Uint())
	}
	return out, true
}

func appendVarint(b []byte, v uint32) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// readVarint returns the value and its length, or n == 0 on malformed input.
func readVarint(b []byte) (v uint32, n int) {
	for i, c := range b {
		if i == 5 {
			return 0, 0
		}
		v |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return v, i + 1
		}
	}
	return 0, 0
}
