package blockart

import (
	"image"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result is the output of one conversion.
type Result struct {
	ID      uuid.UUID
	Grid    *Grid
	Stats   Stats
	Elapsed time.Duration
}

// Builder turns images into block grids against one palette. It holds no
// per-conversion state and may be shared by concurrent callers.
type Builder struct {
	palette *Palette
	matcher *Matcher
	opt     Options
}

func NewBuilder(p *Palette, opt Options) (*Builder, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	m, err := NewMatcher(p, MatchOptions{Metric: opt.Metric, Weighted: opt.Weighted})
	if err != nil {
		return nil, err
	}
	return &Builder{palette: p, matcher: m, opt: opt}, nil
}

func (b *Builder) Palette() *Palette { return b.palette }
func (b *Builder) Options() Options  { return b.opt }
func (b *Builder) Matcher() *Matcher { return b.matcher }

// Build samples img to width x height cells and assigns a block to each.
func (b *Builder) Build(img image.Image, width, height int) (*Result, error) {
	start := time.Now()
	samples, err := Sample(img, width, height, b.opt)
	if err != nil {
		return nil, err
	}
	grid, stats := b.assemble(samples)
	res := &Result{
		ID:      uuid.New(),
		Grid:    grid,
		Stats:   stats,
		Elapsed: time.Since(start),
	}
	Logf("blockart: %dx%d grid, %d distinct blocks, mean error %.2f in %s",
		width, height, stats.Distinct, stats.MeanError, res.Elapsed)
	return res, nil
}

// BuildResolution derives grid dimensions from img's aspect ratio, see DimensionsFromSize.
func (b *Builder) BuildResolution(img image.Image, resolution int) (*Result, error) {
	if img == nil {
		return nil, NewError(KindInvalidImage, "BuildResolution", "nil image")
	}
	w, h := DimensionsFromSize(img.Bounds().Size(), resolution)
	return b.Build(img, w, h)
}

// BuildReader decodes an encoded image and builds it.
func (b *Builder) BuildReader(r io.Reader, width, height int) (*Result, error) {
	img, err := DecodeImage(r, b.opt.MaxSourcePixels)
	if err != nil {
		return nil, err
	}
	return b.Build(img, width, height)
}

// Build converts img with default options. It is the plain form of Builder.Build.
func Build(img image.Image, width, height int, p *Palette) (*Grid, Stats, time.Duration, error) {
	b, err := NewBuilder(p, DefaultOptions())
	if err != nil {
		return nil, Stats{}, 0, err
	}
	res, err := b.Build(img, width, height)
	if err != nil {
		return nil, Stats{}, 0, err
	}
	return res.Grid, res.Stats, res.Elapsed, nil
}

type match struct {
	index int
	dist  float64
}

// assemble matches samples in contiguous row bands. Each band writes only its
// own slice of the indexed buffers and keeps private counts, merged afterwards.
func (b *Builder) assemble(s *Samples) (*Grid, Stats) {
	n := len(s.Pix)
	indices := make([]int, n)
	dists := make([]float64, n)

	bands := min(b.opt.workers(), s.Height)
	rowsPerBand := (s.Height + bands - 1) / bands
	partial := make([][]int, bands)

	var wg sync.WaitGroup
	for band := range bands {
		lo := min(band*rowsPerBand, s.Height) * s.Width
		hi := min((band+1)*rowsPerBand, s.Height) * s.Width
		wg.Go(func() {
			counts := make([]int, b.palette.Len())
			memo := make(map[RGB]match)
			for i := lo; i < hi; i++ {
				c := s.Pix[i]
				m, ok := memo[c]
				if !ok {
					m.index, m.dist = b.matcher.MatchIndex(c)
					memo[c] = m
				}
				indices[i] = m.index
				dists[i] = m.dist
				counts[m.index]++
			}
			partial[band] = counts
		})
	}
	wg.Wait()

	counts := make([]int, b.palette.Len())
	for _, pc := range partial {
		for i, v := range pc {
			counts[i] += v
		}
	}
	grid := &Grid{width: s.Width, height: s.Height, palette: b.palette, cells: indices}
	return grid, newStats(b.palette, counts, dists)
}
