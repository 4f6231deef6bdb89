// Package schematic serializes block grids.
//
// The native format is a small versioned binary layout, big-endian:
//
//	magic "MCBG" | version u16 | width u32 | height u32 |
//	table count u16 | count x (u16 length + UTF-8 block name) |
//	height rows of width u16 table indices | crc32 (IEEE) of all preceding bytes
//
// The table lists the blocks the grid uses in palette order, so equal grids
// encode to equal bytes. Names are resolved against the caller's palette on
// decode. Sponge schematics (.schem v2) are handled by EncodeSponge and
// DecodeSponge.
package schematic

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/setanarut/blockart"
)

const (
	Magic   = "MCBG"
	Version = 1
	// MaxSide bounds width and height so grids stay exportable as Sponge schematics.
	MaxSide = 1<<15 - 1
)

// Encode serializes g in the native format.
func Encode(g *blockart.Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the native encoding of g to w.
func Write(w io.Writer, g *blockart.Grid) error {
	const op = "schematic.Encode"
	if err := checkEncodable(op, g); err != nil {
		return err
	}

	local, names := blockTable(g)
	crc := crc32.NewIEEE()
	ew := &errWriter{w: io.MultiWriter(w, crc)}
	ew.write([]byte(Magic))
	ew.u16(Version)
	ew.u32(uint32(g.Width()))
	ew.u32(uint32(g.Height()))
	ew.u16(uint16(len(names)))
	for _, name := range names {
		if len(name) > math.MaxUint16 {
			return blockart.NewError(blockart.KindEncode, op, "block name of %d bytes too long", len(name))
		}
		ew.u16(uint16(len(name)))
		ew.write([]byte(name))
	}
	row := make([]byte, 2*g.Width())
	for r := range g.Height() {
		for c := range g.Width() {
			binary.BigEndian.PutUint16(row[2*c:], local[g.Index(r, c)])
		}
		ew.write(row)
	}
	if ew.err != nil {
		return blockart.WrapError(blockart.KindEncode, op, ew.err, "write")
	}
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	if _, err := w.Write(sum[:]); err != nil {
		return blockart.WrapError(blockart.KindEncode, op, err, "write checksum")
	}
	return nil
}

// blockTable maps palette indices to positions in the table of used blocks,
// which keeps palette order.
func blockTable(g *blockart.Grid) (local []uint16, names []string) {
	p := g.Palette()
	used := make([]bool, p.Len())
	for _, idx := range g.Indices() {
		used[idx] = true
	}
	local = make([]uint16, p.Len())
	for i, ok := range used {
		if ok {
			local[i] = uint16(len(names))
			names = append(names, p.Block(i).Name)
		}
	}
	return local, names
}

func checkEncodable(op string, g *blockart.Grid) error {
	switch {
	case g == nil:
		return blockart.NewError(blockart.KindEncode, op, "nil grid")
	case g.Area() == 0:
		return blockart.NewError(blockart.KindEncode, op, "grid %dx%d has zero area", g.Width(), g.Height())
	case g.Width() > MaxSide || g.Height() > MaxSide:
		return blockart.NewError(blockart.KindEncode, op, "grid %dx%d exceeds %d per side", g.Width(), g.Height(), MaxSide)
	}
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
	buf [4]byte
}

func (e *errWriter) write(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *errWriter) u16(v uint16) {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	e.write(e.buf[:2])
}

func (e *errWriter) u32(v uint32) {
	binary.BigEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

// Read decodes a native schematic from r.
func Read(r io.Reader, p *blockart.Palette) (*blockart.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, blockart.WrapError(blockart.KindDecode, "schematic.Decode", err, "read")
	}
	return Decode(data, p)
}

// Decode parses data produced by Encode and resolves block names against p.
// Failures are *blockart.Error of kind Decode carrying the byte offset and field.
func Decode(data []byte, p *blockart.Palette) (*blockart.Grid, error) {
	if p.Len() == 0 {
		return nil, blockart.NewError(blockart.KindEmptyPalette, "schematic.Decode", "no palette to resolve blocks")
	}
	d := decoder{data: data}

	magic, err := d.take(len(Magic), "magic")
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, d.fail(0, "magic", "got %q, want %q", magic, Magic)
	}
	at := d.off
	version, err := d.u16("version")
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, d.fail(at, "version", "unsupported version %d", version)
	}

	at = d.off
	width, err := d.u32("width")
	if err != nil {
		return nil, err
	}
	height, err := d.u32("height")
	if err != nil {
		return nil, err
	}
	if width == 0 || height == 0 || width > MaxSide || height > MaxSide {
		return nil, d.fail(at, "dimensions", "invalid grid %dx%d", width, height)
	}

	at = d.off
	count, err := d.u16("table count")
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, d.fail(at, "table count", "empty block table")
	}
	table := make([]int, count)
	for i := range table {
		at = d.off
		n, err := d.u16("table entry length")
		if err != nil {
			return nil, err
		}
		name, err := d.take(int(n), "table entry name")
		if err != nil {
			return nil, err
		}
		idx, ok := p.Index(string(name))
		if !ok {
			return nil, d.fail(at, "table entry name", "unknown block %q", name)
		}
		table[i] = idx
	}

	w, h := int(width), int(height)
	// Each cell takes two bytes, so the remaining payload bounds the buffer.
	cells := make([]int, 0, min(w*h, (len(data)-d.off)/2))
	for r := range h {
		for range w {
			at = d.off
			v, err := d.u16("row")
			if err != nil {
				err.Msg = fmt.Sprintf("truncated in row %d of %d", r, h)
				return nil, err
			}
			if int(v) >= len(table) {
				return nil, d.fail(at, "row", "index %d outside table of %d", v, len(table))
			}
			cells = append(cells, table[v])
		}
	}

	body := d.off
	sum, err := d.u32("checksum")
	if err != nil {
		return nil, err
	}
	if got := crc32.ChecksumIEEE(data[:body]); got != sum {
		return nil, d.fail(body, "checksum", "crc32 %08x, stored %08x", got, sum)
	}
	if d.off != len(data) {
		return nil, d.fail(d.off, "end", "%d trailing bytes", len(data)-d.off)
	}

	g, gerr := blockart.NewGrid(p, w, h, cells)
	if gerr != nil {
		return nil, blockart.WrapError(blockart.KindDecode, "schematic.Decode", gerr, "assemble grid")
	}
	return g, nil
}

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) fail(off int, field, format string, args ...any) *blockart.Error {
	e := blockart.NewError(blockart.KindDecode, "schematic.Decode", format, args...)
	e.Offset = int64(off)
	e.Field = field
	return e
}

// take consumes n bytes. A short read reports the offset where the field starts.
func (d *decoder) take(n int, field string) ([]byte, *blockart.Error) {
	if len(d.data)-d.off < n {
		return nil, d.fail(d.off, field, "truncated, need %d bytes, have %d", n, len(d.data)-d.off)
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u16(field string) (uint16, *blockart.Error) {
	b, err := d.take(2, field)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) u32(field string) (uint32, *blockart.Error) {
	b, err := d.take(4, field)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}
