package blockart

import (
	"image"
	"math"
	"math/rand/v2"
)

var (
	shade = RGB{0, 0, 0}
	light = RGB{255, 255, 255}
)

// painter draws into one cell of the preview. Every primitive clips to rect.
type painter struct {
	img  *image.RGBA
	rect image.Rectangle
	rng  *rand.Rand
}

func (p painter) size() int { return p.rect.Dx() }

// frac scales a cell-relative fraction to pixels.
func (p painter) frac(f float64) float64 { return f * float64(p.size()) }

func (p painter) fill(c RGB) {
	for y := p.rect.Min.Y; y < p.rect.Max.Y; y++ {
		row := p.img.Pix[p.img.PixOffset(p.rect.Min.X, y):]
		for x := 0; x < p.rect.Dx(); x++ {
			row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = c.R, c.G, c.B, 0xff
		}
	}
}

// blend mixes tone over the pixel at cell-relative (x, y) with opacity a.
func (p painter) blend(x, y int, tone RGB, a float64) {
	pt := image.Pt(x, y).Add(p.rect.Min)
	if !pt.In(p.rect) || a <= 0 {
		return
	}
	i := p.img.PixOffset(pt.X, pt.Y)
	px := p.img.Pix[i : i+3 : i+3]
	for k, t := range [3]uint8{tone.R, tone.G, tone.B} {
		px[k] = uint8(math.Round(float64(px[k])*(1-a) + float64(t)*a))
	}
}

func (p painter) rectangle(r image.Rectangle, tone RGB, a float64) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p.blend(x, y, tone, a)
		}
	}
}

// outline strokes a border of the given width, inset pixels from the cell edge.
func (p painter) outline(inset, width int, tone RGB, a float64) {
	n := p.size()
	outer := image.Rect(inset, inset, n-inset, n-inset)
	inner := outer.Inset(width)
	for y := outer.Min.Y; y < outer.Max.Y; y++ {
		for x := outer.Min.X; x < outer.Max.X; x++ {
			if !image.Pt(x, y).In(inner) {
				p.blend(x, y, tone, a)
			}
		}
	}
}

// dot paints a filled disc. Radii below half a pixel still cover the center pixel.
func (p painter) dot(cx, cy, r float64, tone RGB, a float64) {
	r = max(r, 0.5)
	for y := int(math.Floor(cy - r)); y <= int(math.Ceil(cy+r)); y++ {
		for x := int(math.Floor(cx - r)); x <= int(math.Ceil(cx+r)); x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				p.blend(x, y, tone, a)
			}
		}
	}
}

// ring strokes a one pixel circle.
func (p painter) ring(cx, cy, r float64, tone RGB, a float64) {
	for y := int(math.Floor(cy - r - 1)); y <= int(math.Ceil(cy+r+1)); y++ {
		for x := int(math.Floor(cx - r - 1)); x <= int(math.Ceil(cx+r+1)); x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if math.Abs(d-r) <= 0.5 {
				p.blend(x, y, tone, a)
			}
		}
	}
}

// line draws a Bresenham segment.
func (p painter) line(x0, y0, x1, y1 int, tone RGB, a float64) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		p.blend(x0, y0, tone, a)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// spot returns a random cell-relative position.
func (p painter) spot() (float64, float64) {
	n := float64(p.size())
	return p.rng.Float64() * n, p.rng.Float64() * n
}

func (p painter) speckle(count int, r float64, tone RGB, a float64) {
	for range count {
		x, y := p.spot()
		p.dot(x, y, p.frac(r), tone, a)
	}
}

// grain paints horizontal bands at random heights.
func (p painter) grain(count int, a float64) {
	n := p.size()
	h := max(1, n/16)
	for range count {
		y := p.rng.IntN(n)
		p.rectangle(image.Rect(0, y, n, y+h), shade, a)
	}
}

// texture overlays the decorative pattern for f.
func (p painter) texture(f Family) {
	n := p.size()
	if n < 4 {
		return
	}
	switch f {
	case FamilyStone:
		p.speckle(4, 0.1, shade, 0.2)
	case FamilyWood:
		p.grain(4, 0.1)
	case FamilyLog:
		p.grain(3, 0.1)
		c := float64(n) / 2
		p.ring(c, c, p.frac(0.25), shade, 0.1)
	case FamilyWool:
		p.speckle(10, 0.05, light, 0.1)
	case FamilyConcrete:
		p.speckle(20, 0.02, shade, 0.05)
	case FamilyTerracotta:
		for k := range 3 {
			base := float64(n) * float64(k+1) / 4
			phase := p.rng.Float64() * 2 * math.Pi
			for x := range n {
				y := base + p.frac(0.05)*math.Sin(phase+2*math.Pi*float64(x)/float64(n))
				p.blend(x, int(y), shade, 0.07)
			}
		}
	case FamilyGlass:
		lo, hi := int(p.frac(0.1)), int(p.frac(0.4))
		p.rectangle(image.Rect(lo, lo, hi, hi), light, 0.3)
		p.outline(int(p.frac(0.05)), max(1, n/16), light, 0.5)
	case FamilyNether:
		for range 3 {
			x0, y0 := p.spot()
			x1, y1 := p.spot()
			p.line(int(x0), int(y0), int(x1), int(y1), shade, 0.2)
		}
	case FamilyMetal:
		for y := range n {
			for x := range n {
				t := float64(x+y) / float64(2*(n-1))
				p.blend(x, y, light, 0.2*math.Abs(1-2*t))
			}
		}
		p.outline(int(p.frac(0.1)), 1, shade, 0.3)
	case FamilyLeaves:
		p.speckle(15, 0.03, shade, 0.1)
		p.speckle(8, 0.02, light, 0.1)
	case FamilyPlain:
		p.outline(1, 1, shade, 0.05)
		p.outline(3, 1, light, 0.1)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
