package blockart

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats aggregates block usage over one grid. Counts sums to Total = width*height.
type Stats struct {
	Counts   map[string]int
	Total    int
	Distinct int
	// Shannon entropy of the block distribution in bits.
	Entropy float64
	// Nearest-color distance between samples and their blocks, in metric units.
	MeanError   float64
	StdDevError float64
}

// Usage is one block's share of a grid.
type Usage struct {
	Name    string
	Label   string
	Count   int
	Percent float64
}

// StatsOf computes usage for an existing grid. Error fields stay zero since
// the source samples are unknown.
func StatsOf(g *Grid) Stats {
	return newStats(g.palette, g.counts(), nil)
}

func newStats(p *Palette, counts []int, dists []float64) Stats {
	s := Stats{Counts: make(map[string]int)}
	probs := make([]float64, 0, len(counts))
	for i, n := range counts {
		if n == 0 {
			continue
		}
		s.Counts[p.blocks[i].Name] = n
		s.Total += n
		probs = append(probs, float64(n))
	}
	s.Distinct = len(s.Counts)
	if s.Total > 0 {
		floats.Scale(1/float64(s.Total), probs)
		s.Entropy = stat.Entropy(probs) / math.Ln2
	}
	switch {
	case len(dists) > 1:
		s.MeanError, s.StdDevError = stat.MeanStdDev(dists, nil)
	case len(dists) == 1:
		s.MeanError = dists[0]
	}
	return s
}

// Sorted lists used blocks by descending count, then by name.
func (s Stats) Sorted(p *Palette) []Usage {
	out := make([]Usage, 0, len(s.Counts))
	for name, n := range s.Counts {
		u := Usage{Name: name, Label: name, Count: n}
		if b, ok := p.Lookup(name); ok {
			u.Label = b.Label
		}
		if s.Total > 0 {
			u.Percent = 100 * float64(n) / float64(s.Total)
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b Usage) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
