// Package svg renders the dashboard charts as inline SVG so the pages need
// no client-side charting code. Every series plotted here is money, so tick
// labels carry thousands separators and negative values pick up the loss
// colour used by the tables.
package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LineOpts labels the cumulative profit chart.
type LineOpts struct {
	Title       string
	Description string
	ShowDots    bool
}

// BarOpts labels the revenue versus fees chart.
type BarOpts struct {
	Title        string
	Description  string
	SeriesALabel string
	SeriesBLabel string
}

// Palette. Profit and loss tones match the table styling in app.css.
const (
	profitColor  = "#2563eb"
	lossColor    = "#dc2626"
	profitFill   = "rgba(37,99,235,0.1)"
	revenueColor = "#0ea5e9"
	feeColor     = "#f97316"
	axisColor    = "#475569"
	gridColor    = "#cbd5e1"
)

const (
	// DefaultWidth and DefaultHeight apply when the caller passes zero.
	DefaultWidth  = 720
	DefaultHeight = 240

	padding    = 28.0
	tickCount  = 5
	maxXLabels = 10
)

var moneyTicks = message.NewPrinter(language.English)

func moneyTick(v float64) string {
	if nearZero(v - math.Round(v)) {
		return moneyTicks.Sprintf("%.0f", v)
	}
	return moneyTicks.Sprintf("%.2f", v)
}

// frame holds the plot area and value-to-pixel mapping shared by both charts.
type frame struct {
	width, height int
	plotW, plotH  float64
	minVal        float64
	maxVal        float64
	scale         float64
}

func newFrame(width, height int, minVal, maxVal float64) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	plotW := float64(width) - 2*padding
	plotH := float64(height) - 2*padding
	if plotW <= 0 || plotH <= 0 {
		return frame{}, fmt.Errorf("svg: viewport too small")
	}
	// Anchor the range at zero so profit and loss read against one baseline.
	if minVal > 0 {
		minVal = 0
	}
	if maxVal < 0 {
		maxVal = 0
	}
	if nearZero(maxVal - minVal) {
		maxVal = minVal + 1
	}
	return frame{
		width:  width,
		height: height,
		plotW:  plotW,
		plotH:  plotH,
		minVal: minVal,
		maxVal: maxVal,
		scale:  plotH / (maxVal - minVal),
	}, nil
}

func (f frame) y(value float64) float64 {
	return padding + f.plotH - (value-f.minVal)*f.scale
}

func (f frame) bottom() float64 { return padding + f.plotH }
func (f frame) right() float64  { return padding + f.plotW }

// openSVG writes the root element with an accessible title and description.
func (f frame) openSVG(b *strings.Builder, kind, title, desc string) {
	titleID := chartID(title, kind+"-title")
	descID := chartID(title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(title))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(desc))
}

// grid draws the horizontal guides with money ticks, both axes, and a dashed
// zero baseline when the range dips below zero.
func (f frame) grid(b *strings.Builder) {
	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / tickCount
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		y := f.bottom() - ratio*f.plotH
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, padding, y, f.right(), y, gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, padding-6, y+4, axisColor, template.HTMLEscapeString(moneyTick(value)))
	}
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"></line>`, padding, padding, padding, f.bottom(), axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"></line>`, padding, f.bottom(), f.right(), f.bottom(), axisColor)
	if f.minVal < 0 {
		zero := f.y(0)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1" stroke-dasharray="4,3" aria-hidden="true"></line>`, padding, zero, f.right(), zero, axisColor)
	}
}

// xLabels writes day labels under the axis, thinning them on long ranges so
// a month of days stays legible.
func (f frame) xLabels(b *strings.Builder, labels []string, center func(i int) float64) {
	stride := labelStride(len(labels))
	for i, label := range labels {
		if i%stride != 0 && i != len(labels)-1 {
			continue
		}
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, center(i), f.bottom()+14, axisColor, template.HTMLEscapeString(label))
	}
}

func labelStride(n int) int {
	stride := 1
	for n/stride > maxXLabels {
		stride++
	}
	return stride
}

func nearZero(v float64) bool { return math.Abs(v) < 1e-9 }

func valueRange(series []float64) (float64, float64) {
	minVal, maxVal := series[0], series[0]
	for _, v := range series[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

func fallbackText(value, alt string) string {
	if strings.TrimSpace(value) == "" {
		return alt
	}
	return value
}

func chartID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}
