package blockart

import (
	"iter"
	"slices"
)

// Grid is an immutable width x height block assignment. Every cell refers to a
// block of the palette the grid was built with.
type Grid struct {
	width, height int
	palette       *Palette
	cells         []int // palette indices, row-major
}

// Cell is one (row, col) position and its block.
type Cell struct {
	Row, Col int
	Block    Block
}

// NewGrid builds a grid from row-major palette indices. Zero-area grids are allowed.
func NewGrid(p *Palette, width, height int, indices []int) (*Grid, error) {
	const op = "NewGrid"
	if p == nil {
		return nil, NewError(KindEmptyPalette, op, "nil palette")
	}
	if width < 0 || height < 0 {
		return nil, NewError(KindInvalidArgument, op, "negative dimensions %dx%d", width, height)
	}
	if len(indices) != width*height {
		return nil, NewError(KindInvalidArgument, op, "%d indices for %dx%d grid", len(indices), width, height)
	}
	for i, idx := range indices {
		if idx < 0 || idx >= p.Len() {
			return nil, NewError(KindInvalidArgument, op, "cell %d index %d outside palette of %d", i, idx, p.Len())
		}
	}
	return &Grid{width: width, height: height, palette: p, cells: slices.Clone(indices)}, nil
}

func (g *Grid) Width() int        { return g.width }
func (g *Grid) Height() int       { return g.height }
func (g *Grid) Area() int         { return g.width * g.height }
func (g *Grid) Palette() *Palette { return g.palette }

// Index returns the palette index at (row, col).
func (g *Grid) Index(row, col int) int { return g.cells[row*g.width+col] }

// At returns the block at (row, col).
func (g *Grid) At(row, col int) Block { return g.palette.blocks[g.Index(row, col)] }

// Indices returns a copy of the row-major palette indices.
func (g *Grid) Indices() []int { return slices.Clone(g.cells) }

// Cells yields every cell in row-major order.
func (g *Grid) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for i, idx := range g.cells {
			if !yield(Cell{Row: i / g.width, Col: i % g.width, Block: g.palette.blocks[idx]}) {
				return
			}
		}
	}
}

// Rows returns the grid as rows of blocks.
func (g *Grid) Rows() [][]Block {
	rows := make([][]Block, g.height)
	for r := range g.height {
		rows[r] = make([]Block, g.width)
		for c := range g.width {
			rows[r][c] = g.At(r, c)
		}
	}
	return rows
}

// Equal reports same dimensions and the same block name in every cell.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.palette.blocks[g.cells[i]].Name != o.palette.blocks[o.cells[i]].Name {
			return false
		}
	}
	return true
}

// counts returns per-palette-index occurrences.
func (g *Grid) counts() []int {
	counts := make([]int, g.palette.Len())
	for _, idx := range g.cells {
		counts[idx]++
	}
	return counts
}
