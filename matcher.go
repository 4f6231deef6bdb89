package blockart

import (
	"fmt"
	"math"
	"strings"
)

// Metric selects the color distance used by a Matcher.
type Metric int

const (
	// MetricRGB is squared Euclidean distance over 8-bit sRGB channels.
	MetricRGB Metric = iota
	// MetricLab is CIE76 delta E over CIELAB (D65).
	MetricLab
	// MetricRedmean is the low-cost weighted RGB approximation.
	MetricRedmean
)

func (m Metric) String() string {
	switch m {
	case MetricLab:
		return "lab"
	case MetricRedmean:
		return "redmean"
	default:
		return "rgb"
	}
}

// ParseMetric accepts the names produced by Metric.String.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "", "rgb":
		return MetricRGB, nil
	case "lab":
		return MetricLab, nil
	case "redmean":
		return MetricRedmean, nil
	}
	return MetricRGB, fmt.Errorf("unknown metric %q", s)
}

// Bias factors applied to the non-squared distance when weighting is enabled.
const (
	transparentPenalty = 1.2
	naturalPreference  = 0.9
)

var naturalKeywords = []string{
	"stone", "dirt", "grass", "sand", "gravel", "log", "leaves", "wood", "planks", "clay", "terracotta",
}

type MatchOptions struct {
	Metric Metric
	// Weighted penalises transparent blocks and prefers natural ones.
	Weighted bool
}

// Matcher finds the nearest palette block for a color. It is immutable and
// safe for concurrent use.
type Matcher struct {
	palette *Palette
	metric  Metric
	lab     [][3]float64
	weight2 []float64 // squared bias per block, nil when unweighted
}

// NewMatcher precomputes per-block data for the chosen metric.
func NewMatcher(p *Palette, opt MatchOptions) (*Matcher, error) {
	if p.Len() == 0 {
		return nil, NewError(KindEmptyPalette, "NewMatcher", "palette has no blocks")
	}
	m := &Matcher{palette: p, metric: opt.Metric}
	if opt.Metric == MetricLab {
		m.lab = make([][3]float64, p.Len())
		for i, b := range p.blocks {
			l, a, bb := b.Color.Colorful().Lab()
			m.lab[i] = [3]float64{l, a, bb}
		}
	}
	if opt.Weighted {
		m.weight2 = make([]float64, p.Len())
		for i, b := range p.blocks {
			w := 1.0
			if b.Transparent {
				w *= transparentPenalty
			}
			if containsAny(strings.ToLower(b.Name), naturalKeywords) {
				w *= naturalPreference
			}
			m.weight2[i] = w * w
		}
	}
	return m, nil
}

// Palette returns the palette the matcher searches.
func (m *Matcher) Palette() *Palette { return m.palette }

// Match returns the nearest block to c.
func (m *Matcher) Match(c RGB) Block {
	i, _ := m.MatchIndex(c)
	return m.palette.blocks[i]
}

// MatchIndex returns the palette index of the nearest block and its
// (non-squared) distance. Ties resolve to the earliest block in palette order.
func (m *Matcher) MatchIndex(c RGB) (int, float64) {
	var lab [3]float64
	if m.metric == MetricLab {
		l, a, b := c.Colorful().Lab()
		lab = [3]float64{l, a, b}
	}
	best := 0
	bestD := math.MaxFloat64
	for i := range m.palette.blocks {
		var d float64
		switch m.metric {
		case MetricLab:
			d = labDistSq(lab, m.lab[i])
		case MetricRedmean:
			d = redmeanDistSq(c, m.palette.blocks[i].Color)
		default:
			d = float64(rgbDistSq(c, m.palette.blocks[i].Color))
		}
		if m.weight2 != nil {
			d *= m.weight2[i]
		}
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best, math.Sqrt(bestD)
}

// Match returns the block in p nearest to c by squared Euclidean RGB distance.
// Ties go to the block that comes first in palette order.
func Match(c RGB, p *Palette) (Block, error) {
	if p.Len() == 0 {
		return Block{}, NewError(KindEmptyPalette, "Match", "palette has no blocks")
	}
	best := 0
	bestD := math.MaxInt
	for i, b := range p.blocks {
		if d := rgbDistSq(c, b.Color); d < bestD {
			bestD = d
			best = i
		}
	}
	return p.blocks[best], nil
}

func rgbDistSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

func labDistSq(a, b [3]float64) float64 {
	dl := a[0] - b[0]
	da := a[1] - b[1]
	db := a[2] - b[2]
	return dl*dl + da*da + db*db
}

func redmeanDistSq(a, b RGB) float64 {
	rMean := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return (2+rMean/256)*dr*dr + 4*dg*dg + (2+(255-rMean)/256)*db*db
}
