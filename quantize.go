package blockart

import (
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Subsample to keep kmeans tractable on large grids.
const maxQuantizeSamples = 12000

// quantizeSamples snaps every sample to the nearest of k k-means centroids.
func quantizeSamples(s *Samples, k int) error {
	step := 1
	if len(s.Pix) > maxQuantizeSamples {
		step = len(s.Pix)/maxQuantizeSamples + 1
	}
	dataset := make(clusters.Observations, 0, len(s.Pix)/step+1)
	for i := 0; i < len(s.Pix); i += step {
		dataset = append(dataset, coordinates(s.Pix[i]))
	}
	k = min(k, len(dataset))

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return WrapError(KindInvalidArgument, "Sample", err, "quantize to %d colors", k)
	}
	centers := make([]RGB, len(cc))
	for i, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		centers[i] = RGB{
			R: unit8(c.Center[0]),
			G: unit8(c.Center[1]),
			B: unit8(c.Center[2]),
		}
	}

	snapped := make(map[RGB]RGB)
	for i, c := range s.Pix {
		q, ok := snapped[c]
		if !ok {
			q = centers[cc.Nearest(coordinates(c))]
			snapped[c] = q
		}
		s.Pix[i] = q
	}
	return nil
}

func coordinates(c RGB) clusters.Coordinates {
	return clusters.Coordinates{
		float64(c.R) / 255.0,
		float64(c.G) / 255.0,
		float64(c.B) / 255.0,
	}
}

func unit8(v float64) uint8 {
	return uint8(max(0, min(255, v*255+0.5)))
}
