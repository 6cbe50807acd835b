package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders the revenue versus fees chart as grouped bars per day.
// Revenue and fee columns keep fixed colours so the legend stays stable
// across date ranges.
func Bars(width, height int, seriesA, seriesB []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(seriesA) == 0 && len(seriesB) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(seriesA) > 0 && len(seriesA) != len(labels) {
		return "", fmt.Errorf("svg: seriesA length must match labels")
	}
	if len(seriesB) > 0 && len(seriesB) != len(labels) {
		return "", fmt.Errorf("svg: seriesB length must match labels")
	}

	minVal, maxVal := 0.0, 0.0
	for _, s := range [][]float64{seriesA, seriesB} {
		for _, v := range s {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	f, err := newFrame(width, height, minVal, maxVal)
	if err != nil {
		return "", err
	}

	groupW := f.plotW / float64(len(labels))
	barW := groupW / 3
	labelA := fallbackText(opts.SeriesALabel, "Series A")
	labelB := fallbackText(opts.SeriesBLabel, "Series B")

	var b strings.Builder
	f.openSVG(&b, "bar", fallbackText(opts.Title, "Bar chart"), fallbackText(opts.Description, "Grouped bar comparison"))
	f.grid(&b)

	drawBar := func(x, value float64, color, seriesLabel, dayLabel string) {
		top, h := f.barSpan(value)
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s %s"></rect>`,
			x, top, barW, h, color, template.HTMLEscapeString(seriesLabel), template.HTMLEscapeString(dayLabel))
	}
	for i, label := range labels {
		baseX := padding + float64(i)*groupW
		if len(seriesA) > 0 {
			drawBar(baseX+barW*0.3, seriesA[i], revenueColor, labelA, label)
		}
		if len(seriesB) > 0 {
			drawBar(baseX+barW*1.4, seriesB[i], feeColor, labelB, label)
		}
	}

	f.xLabels(&b, labels, func(i int) float64 { return padding + float64(i)*groupW + groupW/2 })

	legendY := padding - 12
	if legendY < 12 {
		legendY = 12
	}
	legendX := padding
	if len(seriesA) > 0 {
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, legendX, legendY-8, revenueColor)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="start">%s</text>`, legendX+14, legendY, axisColor, template.HTMLEscapeString(labelA))
		legendX += 90
	}
	if len(seriesB) > 0 {
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, legendX, legendY-8, feeColor)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="start">%s</text>`, legendX+14, legendY, axisColor, template.HTMLEscapeString(labelB))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// barSpan clamps a bar to the plot area and returns its top edge and height.
func (f frame) barSpan(value float64) (float64, float64) {
	top := f.y(math.Max(value, 0))
	bottomEdge := f.y(math.Min(value, 0))
	if top < padding {
		top = padding
	}
	if bottomEdge > f.bottom() {
		bottomEdge = f.bottom()
	}
	h := bottomEdge - top
	if h < 0 {
		h = 0
	}
	return top, h
}
