package blockart

import (
	"bytes"
	"image"
	"image/png"
	"math/rand/v2"
)

// RenderOptions controls the preview raster.
type RenderOptions struct {
	// Edge length of one block in pixels.
	CellSize int
	// Outline every cell with a faint dark edge.
	GridLines bool
	// Overlay decorative per-family patterns.
	Textures bool
	// Seed for texture noise. nil seeds randomly, so textured previews differ
	// between runs; block colors never do.
	Seed *uint64
	// Upper bound on preview pixels.
	MaxPreviewPixels int
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		CellSize:         16,
		Textures:         true,
		MaxPreviewPixels: 64 << 20,
	}
}

// Render rasterizes g with one CellSize x CellSize square per block.
func Render(g *Grid, opt RenderOptions) (*image.RGBA, error) {
	const op = "Render"
	if g == nil || g.Area() == 0 {
		return nil, NewError(KindEmptyGrid, op, "grid has no cells")
	}
	if opt.CellSize < 1 {
		return nil, NewError(KindInvalidArgument, op, "cell size %d must be positive", opt.CellSize)
	}
	w, h := g.width*opt.CellSize, g.height*opt.CellSize
	if opt.MaxPreviewPixels > 0 && int64(w)*int64(h) > int64(opt.MaxPreviewPixels) {
		return nil, NewError(KindGridSizeExceeded, op, "preview %dx%d exceeds %d pixels", w, h, opt.MaxPreviewPixels)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var rng *rand.Rand
	if opt.Textures {
		seed := rand.Uint64()
		if opt.Seed != nil {
			seed = *opt.Seed
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	size := opt.CellSize
	for i, idx := range g.cells {
		b := g.palette.blocks[idx]
		cell := painter{
			img:  img,
			rect: image.Rect(0, 0, size, size).Add(image.Pt((i%g.width)*size, (i/g.width)*size)),
			rng:  rng,
		}
		cell.fill(b.Color)
		if opt.Textures {
			cell.texture(b.Family)
		}
		if opt.GridLines && size > 2 {
			cell.outline(0, 1, shade, 0.15)
		}
	}
	return img, nil
}

// RenderPNG renders g and encodes it as PNG.
func RenderPNG(g *Grid, opt RenderOptions) ([]byte, error) {
	img, err := Render(g, opt)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, WrapError(KindEncode, "RenderPNG", err, "encode preview")
	}
	return buf.Bytes(), nil
}
