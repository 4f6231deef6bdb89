package utils

import (
	"bytes"
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/blockart"
	"golang.org/x/image/draw"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// luminance is relative luminance over linear RGB.
func luminance(c blockart.RGB) float64 {
	r, g, b := c.Colorful().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// SortBlocksByBrightness orders blocks from darkest to brightest, by name on ties.
func SortBlocksByBrightness(blocks []blockart.Block) {
	slices.SortStableFunc(blocks, func(a, b blockart.Block) int {
		ya, yb := luminance(a.Color), luminance(b.Color)
		if ya < yb {
			return -1
		}
		if ya > yb {
			return 1
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
}

// ExtractDominantPalette picks k diverse dominant colors of img.
func ExtractDominantPalette(img image.Image, k int) []blockart.RGB {
	if k <= 0 {
		return nil
	}

	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: c.Weight})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse keeps the heaviest color, then repeatedly adds the candidate
// farthest in Lab from everything kept so far, favoring heavier candidates.
func selectDiverse(cands []weightedColor, k int) []blockart.RGB {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	pool := make([]weightedColor, len(cands))
	heaviest := 0.0
	for i, c := range cands {
		pool[i] = weightedColor{Col: c.Col.Clamped(), Weight: max(c.Weight, 1e-6)}
		heaviest = max(heaviest, pool[i].Weight)
	}
	slices.SortStableFunc(pool, func(a, b weightedColor) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	// nearest[i] is the Lab distance from pool[i] to the closest kept color.
	nearest := make([]float64, len(pool))
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}
	out := make([]blockart.RGB, 0, min(k, len(pool)))
	next := 0
	for next >= 0 && len(out) < k {
		kept := pool[next].Col
		out = append(out, blockart.RGBFromColorful(kept))
		nearest[next] = -1

		next = -1
		best := -1.0
		for i, c := range pool {
			if nearest[i] < 0 {
				continue
			}
			nearest[i] = min(nearest[i], c.Col.DistanceLab(kept))
			score := nearest[i] * (0.55 + 0.45*math.Sqrt(c.Weight/heaviest))
			if score > best {
				next, best = i, score
			}
		}
	}
	return out
}

// maxKMeansSamples bounds the pixels fed to kmeans.
const maxKMeansSamples = 12000

// opaqueSamples strides over img so at most maxKMeansSamples pixels are
// visited, skipping fully transparent ones.
func opaqueSamples(img image.Image) clusters.Observations {
	b := img.Bounds()
	area := b.Dx() * b.Dy()
	if area == 0 {
		return nil
	}
	stride := 1
	if area > maxKMeansSamples {
		stride = 1 + int(math.Sqrt(float64(area)/maxKMeansSamples))
	}
	var obs clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			obs = append(obs, clusters.Coordinates{
				float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255,
			})
		}
	}
	return obs
}

// ExtractKMeansPalette clusters the opaque pixels of img and picks k diverse
// centroids, weighting each by its cluster size.
func ExtractKMeansPalette(img image.Image, k int) []blockart.RGB {
	if k <= 0 {
		return nil
	}
	obs := opaqueSamples(img)
	if len(obs) == 0 {
		return nil
	}
	// Over-cluster so selectDiverse has room to choose.
	parts, err := kmeans.New().Partition(obs, min(max(4*k, k+2), len(obs)))
	if err != nil {
		return nil
	}
	var weighted []weightedColor
	for _, part := range parts {
		if len(part.Observations) == 0 || len(part.Center) < 3 {
			continue
		}
		weighted = append(weighted, weightedColor{
			Col:    colorful.Color{R: part.Center[0], G: part.Center[1], B: part.Center[2]},
			Weight: float64(len(part.Observations)),
		})
	}
	return selectDiverse(weighted, k)
}

// ExtractPalette returns k representative colors of img. kmeans falls back to
// dominantcolor when clustering yields nothing.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []blockart.RGB {
	if method == PaletteMethodKMeans {
		if p := ExtractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
		blockart.Logf("palette warning: kmeans returned empty palette, falling back to dominantcolor")
	}
	return ExtractDominantPalette(img, k)
}

// SuggestBlocks matches each color and returns the distinct blocks in first-seen order.
func SuggestBlocks(colors []blockart.RGB, m *blockart.Matcher) []blockart.Block {
	seen := make(map[string]bool, len(colors))
	out := make([]blockart.Block, 0, len(colors))
	for _, c := range colors {
		b := m.Match(c)
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		out = append(out, b)
	}
	return out
}

// ReadImage decodes the image at path, refusing sources above maxPixels.
func ReadImage(path string, maxPixels int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return blockart.DecodeImage(f, maxPixels)
}

// Downscale shrinks img so its longer side is at most maxSide. Smaller images
// are returned as is.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || max(b.Dx(), b.Dy()) <= maxSide {
		return img
	}
	w, h := blockart.DimensionsFromSize(b.Size(), maxSide)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func WriteFile(data []byte, filename string) error {
	return os.WriteFile(filename, data, 0o644)
}

// PaletteImage lays blocks out as a row of tileSize swatches.
func PaletteImage(blocks []blockart.Block, tileSize int) (*image.RGBA, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(blocks), tileSize))
	for i, b := range blocks {
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		draw.Draw(img, tile, image.NewUniform(b.Color), image.Point{}, draw.Src)
	}
	return img, nil
}

func SavePalette(blocks []blockart.Block, tileSize int, filename string) error {
	img, err := PaletteImage(blocks, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}
