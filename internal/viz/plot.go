package viz

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chainsim/internal/analysis"
	"github.com/san-kum/chainsim/internal/chainbinom"
)

var palette = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
	asciigraph.Blue,
}

// PlotCompartments draws the replica mean of every compartment on one chart.
func PlotCompartments(traj *chainbinom.Trajectory, compartments []string, width, height int) string {
	if traj.Len() == 0 {
		return Subtle.Render("no data to plot")
	}

	series := make([][]float64, len(compartments))
	colors := make([]asciigraph.AnsiColor, len(compartments))
	for i := range compartments {
		series[i] = traj.MeanSeries(i)
		colors[i] = palette[i%len(palette)]
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(compartments...),
		asciigraph.Caption("replica mean vs time"),
	)
}

// PlotBand draws a compartment's mean with its quantile envelope.
func PlotBand(band analysis.Band, label string, width, height int) string {
	if len(band.Mean) == 0 {
		return Subtle.Render("no data to plot")
	}
	return asciigraph.PlotMany([][]float64{band.Lower, band.Mean, band.Upper},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Cyan, asciigraph.Blue),
		asciigraph.Caption(label),
	)
}

// MetricsTable renders metrics sorted by name.
func MetricsTable(metrics map[string]float64) string {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(metrics)) {
		fmt.Fprintf(&b, "%s%s\n", MetricName.Render(name), MetricValue.Render(fmt.Sprintf("%.4f", metrics[name])))
	}
	return strings.TrimRight(b.String(), "\n")
}
