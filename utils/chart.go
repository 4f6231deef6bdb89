package utils

import (
	"bytes"
	"fmt"

	"github.com/setanarut/blockart"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// usagePlot charts the top most used blocks, each bar in its block color.
func usagePlot(stats blockart.Stats, p *blockart.Palette, top int) (*plot.Plot, error) {
	usage := stats.Sorted(p)
	if len(usage) == 0 {
		return nil, fmt.Errorf("no block usage to chart")
	}
	if top > 0 && len(usage) > top {
		usage = usage[:top]
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Block usage (%d blocks, %d distinct)", stats.Total, stats.Distinct)
	pl.Y.Label.Text = "Percent"
	names := make([]string, len(usage))
	for i, u := range usage {
		names[i] = u.Label
		bar, err := plotter.NewBarChart(plotter.Values{u.Percent}, vg.Points(14))
		if err != nil {
			return nil, err
		}
		bar.XMin = float64(i)
		if b, ok := p.Lookup(u.Name); ok {
			bar.Color = b.Color
		}
		pl.Add(bar)
	}
	pl.NominalX(names...)
	pl.X.Tick.Label.Rotation = 0.8
	pl.X.Tick.Label.XAlign = -1
	return pl, nil
}

// UsageChart renders a PNG bar chart of block usage.
func UsageChart(stats blockart.Stats, p *blockart.Palette, top int) ([]byte, error) {
	pl, err := usagePlot(stats, p, top)
	if err != nil {
		return nil, err
	}
	wt, err := pl.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveUsageChart writes the usage chart to filename; the extension picks the format.
func SaveUsageChart(stats blockart.Stats, p *blockart.Palette, top int, filename string) error {
	pl, err := usagePlot(stats, p, top)
	if err != nil {
		return err
	}
	return pl.Save(chartWidth, chartHeight, filename)
}
