// Package export renders stored trajectories as standalone SVG charts.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/chainsim/internal/chainbinom"
)

var strokes = []string{"#00ccff", "#ff5555", "#55ff55", "#ffcc00", "#ff55ff", "#5555ff"}

const (
	padLeft   = 56.0
	padRight  = 96.0
	padTop    = 16.0
	padBottom = 32.0
)

// CompartmentsSVG draws the replica mean of every compartment against time as
// one polyline per compartment, with a legend on the right. It returns the
// empty string for a trajectory with fewer than two time points.
func CompartmentsSVG(traj *chainbinom.Trajectory, compartments []string, width, height int) string {
	if traj.Len() < 2 || len(compartments) == 0 {
		return ""
	}

	series := make([][]float64, len(compartments))
	minY, maxY := 0.0, 0.0
	for i := range compartments {
		series[i] = traj.MeanSeries(i)
		for _, v := range series[i] {
			maxY = max(maxY, v)
			minY = min(minY, v)
		}
	}
	if maxY == minY {
		maxY = minY + 1
	}
	minX, maxX := traj.Times[0], traj.Times[traj.Len()-1]

	plotW := float64(width) - padLeft - padRight
	plotH := float64(height) - padTop - padBottom
	px := func(t float64) float64 { return padLeft + (t-minX)/(maxX-minX)*plotW }
	py := func(v float64) float64 { return padTop + plotH - (v-minY)/(maxY-minY)*plotH }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#444466" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
<g fill="#aaaacc" font-family="monospace" font-size="11">
<text x="%.1f" y="%.1f" text-anchor="end">%.0f</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.0f</text>
<text x="%.1f" y="%.1f">%g</text>
<text x="%.1f" y="%.1f" text-anchor="end">%g</text>
</g>
`,
		width, height, width, height,
		padLeft, padTop, padLeft, padTop+plotH,
		padLeft, padTop+plotH, padLeft+plotW, padTop+plotH,
		padLeft-4, padTop+4, maxY,
		padLeft-4, padTop+plotH, minY,
		padLeft, padTop+plotH+16, minX,
		padLeft+plotW, padTop+plotH+16, maxX,
	)

	for i, name := range compartments {
		stroke := strokes[i%len(strokes)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
		for k, v := range series[i] {
			if k == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", px(traj.Times[k]), py(v))
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", px(traj.Times[k]), py(v))
			}
		}
		sb.WriteString("\"/>\n")

		ly := padTop + 8 + float64(i)*16
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12">%s</text>
`, padLeft+plotW+12, ly, stroke, escape(name))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG writes CompartmentsSVG to w.
func WriteSVG(w io.Writer, traj *chainbinom.Trajectory, compartments []string, width, height int) error {
	svg := CompartmentsSVG(traj, compartments, width, height)
	if svg == "" {
		return fmt.Errorf("export: need at least two time points, got %d", traj.Len())
	}
	_, err := io.WriteString(w, svg)
	return err
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
