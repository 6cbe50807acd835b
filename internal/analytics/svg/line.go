package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders the cumulative profit chart. Segments touching negative
// territory and dots below zero switch to the loss colour so drawdowns
// stand out at a glance.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	minVal, maxVal := valueRange(series)
	f, err := newFrame(width, height, minVal, maxVal)
	if err != nil {
		return "", err
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	step := 0.0
	if len(series) > 1 {
		step = f.plotW / float64(len(series)-1)
	}
	for i, v := range series {
		if len(series) > 1 {
			xs[i] = padding + float64(i)*step
		} else {
			xs[i] = padding + f.plotW/2
		}
		ys[i] = f.y(v)
	}

	var b strings.Builder
	f.openSVG(&b, "line", fallbackText(opts.Title, "Line chart"), fallbackText(opts.Description, "Trend data"))
	f.grid(&b)

	// Area fill between the line and the zero baseline.
	base := f.y(0)
	var area strings.Builder
	fmt.Fprintf(&area, "M%.2f %.2f", xs[0], base)
	for i := range xs {
		fmt.Fprintf(&area, " L%.2f %.2f", xs[i], ys[i])
	}
	fmt.Fprintf(&area, " L%.2f %.2f Z", xs[len(xs)-1], base)
	fmt.Fprintf(&b, `<path d="%s" fill="%s" stroke="none" aria-hidden="true"></path>`, area.String(), profitFill)

	for i := 1; i < len(series); i++ {
		color := profitColor
		if series[i] < 0 || series[i-1] < 0 {
			color = lossColor
		}
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="2" stroke-linecap="round"></line>`, xs[i-1], ys[i-1], xs[i], ys[i], color)
	}

	if opts.ShowDots || len(series) == 1 {
		for i, v := range series {
			color := profitColor
			if v < 0 {
				color = lossColor
			}
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"></circle>`, xs[i], ys[i], color)
		}
	}

	f.xLabels(&b, labels, func(i int) float64 { return xs[i] })
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
