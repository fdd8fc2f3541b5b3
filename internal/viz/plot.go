// Package viz renders fields in the terminal: axis profiles as ascii
// charts, run summaries, and a live view of transient solves.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/porelab/porenet/internal/network"
)

// AxisProfile bins a pore field along one axis (0=x, 1=y, 2=z) and
// returns the mean per bin, low to high coordinate.
func AxisProfile(net *network.Network, field []float64, axis, bins int) []float64 {
	coords := net.Coords()
	if len(coords) == 0 || bins < 1 {
		return nil
	}
	lo, hi := coords[0][axis], coords[0][axis]
	for _, c := range coords {
		if c[axis] < lo {
			lo = c[axis]
		}
		if c[axis] > hi {
			hi = c[axis]
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	sums := make([]float64, bins)
	counts := make([]int, bins)
	for p, c := range coords {
		b := int(float64(bins) * (c[axis] - lo) / span)
		if b >= bins {
			b = bins - 1
		}
		sums[b] += field[p]
		counts[b]++
	}
	profile := make([]float64, bins)
	for b := range profile {
		if counts[b] > 0 {
			profile[b] = sums[b] / float64(counts[b])
		}
	}
	return profile
}

// PlotProfile renders an axis profile as an ascii chart.
func PlotProfile(net *network.Network, field []float64, axis, bins int, caption string) string {
	profile := AxisProfile(net, field, axis, bins)
	if len(profile) == 0 {
		return ""
	}
	return asciigraph.Plot(profile,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption(caption),
	)
}

// PlotSeries renders a scalar time series, e.g. the mean field per step.
func PlotSeries(times, values []float64, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(12),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("%s  (t=%.4g..%.4g)", caption, times[0], times[len(times)-1])),
	)
}

// FieldStats summarizes a field for display.
func FieldStats(field []float64) (min, max, mean float64) {
	if len(field) == 0 {
		return 0, 0, 0
	}
	min, max = field[0], field[0]
	for _, v := range field {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		mean += v
	}
	mean /= float64(len(field))
	return min, max, mean
}

// Sparkline renders a compact one-line chart of values.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return strings.Repeat("─", width)
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	min, max, _ := FieldStats(values)
	rng := max - min
	if rng == 0 {
		rng = 1
	}
	step := len(values) / width
	if step < 1 {
		step = 1
	}
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		b.WriteRune(chars[idx])
	}
	return b.String()
}
