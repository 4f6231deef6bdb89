package blockart

import (
	"image"
	"runtime"
)

// Options configures sampling and matching for one Builder.
type Options struct {
	// Upper bound for both target grid dimensions.
	// Sponge schematics store dimensions as 16-bit shorts, so keep it well below 32767.
	MaxGridSize int
	// Upper bound on decoded source pixels (width*height), checked before decode.
	MaxSourcePixels int
	// Worker goroutines for sampling and matching. 1 runs everything inline.
	Workers int
	// Distance metric used by the matcher.
	Metric Metric
	// Transparent/natural block bias.
	Weighted bool
	// Transparent source pixels are composited over this color before averaging.
	Background RGB
	// When > 0, sampled colors are snapped to this many k-means centroids before
	// matching. Seeding is random, so results vary run to run.
	QuantizeColors int
}

func DefaultOptions() Options {
	return Options{
		MaxGridSize:     512,
		MaxSourcePixels: 64 << 20,
		Workers:         runtime.GOMAXPROCS(0),
		Metric:          MetricRGB,
		Background:      RGB{255, 255, 255},
	}
}

// Validate reports the first out-of-range field.
func (o Options) Validate() error {
	const op = "Options.Validate"
	switch {
	case o.MaxGridSize < 1:
		return NewError(KindInvalidArgument, op, "max grid size %d must be positive", o.MaxGridSize)
	case o.MaxGridSize > maxSchematicSide:
		return NewError(KindInvalidArgument, op, "max grid size %d above %d", o.MaxGridSize, maxSchematicSide)
	case o.MaxSourcePixels < 1:
		return NewError(KindInvalidArgument, op, "max source pixels %d must be positive", o.MaxSourcePixels)
	case o.Workers < 0:
		return NewError(KindInvalidArgument, op, "workers %d must not be negative", o.Workers)
	case o.Metric < MetricRGB || o.Metric > MetricRedmean:
		return NewError(KindInvalidArgument, op, "unknown metric %d", o.Metric)
	case o.QuantizeColors < 0:
		return NewError(KindInvalidArgument, op, "quantize colors %d must not be negative", o.QuantizeColors)
	}
	return nil
}

func (o Options) workers() int {
	return max(1, o.Workers)
}

// maxSchematicSide is the largest grid side a Sponge schematic can hold.
const maxSchematicSide = 1<<15 - 1

// DimensionsFromSize derives grid dimensions from a single resolution knob:
// the longer source side maps to resolution, the shorter keeps the aspect ratio.
func DimensionsFromSize(size image.Point, resolution int) (w, h int) {
	if size.X <= 0 || size.Y <= 0 || resolution <= 0 {
		return 0, 0
	}
	if size.X >= size.Y {
		w = resolution
		h = (2*resolution*size.Y + size.X) / (2 * size.X)
	} else {
		h = resolution
		w = (2*resolution*size.X + size.Y) / (2 * size.Y)
	}
	return max(1, w), max(1, h)
}
