package blockart

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Samples is a row-major grid of representative colors, one per target cell.
type Samples struct {
	Width, Height int
	Pix           []RGB
}

// At returns the sample at (row, col).
func (s *Samples) At(row, col int) RGB {
	return s.Pix[row*s.Width+col]
}

type span struct{ lo, hi int }

// Sample partitions img into targetWidth x targetHeight regions and averages
// each one. Region edges are rounded; the final region ends at the image edge.
// A region that rounds to nothing takes the pixel under its center.
func Sample(img image.Image, targetWidth, targetHeight int, opt Options) (*Samples, error) {
	const op = "Sample"
	if err := checkGridSize(op, targetWidth, targetHeight, opt.MaxGridSize); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, NewError(KindInvalidImage, op, "source image is empty")
	}
	src := toRGBA(img)
	b := src.Bounds()
	cols := spans(targetWidth, b.Dx())
	rows := spans(targetHeight, b.Dy())
	out := &Samples{
		Width:  targetWidth,
		Height: targetHeight,
		Pix:    make([]RGB, targetWidth*targetHeight),
	}

	var g errgroup.Group
	g.SetLimit(opt.workers())
	for row := range targetHeight {
		g.Go(func() error {
			sampleRow(src, rows[row], cols, opt.Background, out.Pix[row*targetWidth:(row+1)*targetWidth])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opt.QuantizeColors > 0 {
		if err := quantizeSamples(out, opt.QuantizeColors); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sampleRow(src *image.RGBA, ys span, cols []span, bg RGB, dst []RGB) {
	b := src.Bounds()
	for col, xs := range cols {
		var sr, sg, sb uint64
		for y := ys.lo; y < ys.hi; y++ {
			off := src.PixOffset(b.Min.X+xs.lo, b.Min.Y+y)
			for range xs.hi - xs.lo {
				p := src.Pix[off : off+4 : off+4]
				sr += uint64(composite(p[0], p[3], bg.R))
				sg += uint64(composite(p[1], p[3], bg.G))
				sb += uint64(composite(p[2], p[3], bg.B))
				off += 4
			}
		}
		n := uint64((ys.hi - ys.lo) * (xs.hi - xs.lo))
		dst[col] = RGB{
			R: uint8((sr + n/2) / n),
			G: uint8((sg + n/2) / n),
			B: uint8((sb + n/2) / n),
		}
	}
}

// composite places a premultiplied channel over an opaque background.
func composite(c, a, bg uint8) uint8 {
	return c + uint8((uint32(255-a)*uint32(bg)+127)/255)
}

// spans splits src pixels into n half-open ranges with rounded boundaries.
func spans(n, src int) []span {
	out := make([]span, n)
	for i := range n {
		lo := (2*i*src + n) / (2 * n)
		hi := src
		if i+1 < n {
			hi = (2*(i+1)*src + n) / (2 * n)
		}
		if hi <= lo {
			lo = min((2*i+1)*src/(2*n), src-1)
			hi = lo + 1
		}
		out[i] = span{lo, hi}
	}
	return out
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

func checkGridSize(op string, w, h, limit int) error {
	if w < 1 || h < 1 || w > limit || h > limit {
		return NewError(KindGridSizeExceeded, op, "grid %dx%d outside [1, %d]", w, h, limit)
	}
	return nil
}
