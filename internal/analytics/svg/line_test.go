package svg

import (
	"fmt"
	"strings"
	"testing"
)

func TestLineProducesSVG(t *testing.T) {
	html, err := Line(400, 200, []float64{450, 400, -50}, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, LineOpts{
		Title:       "Cumulative Profit",
		Description: "Running net profit by day",
		ShowDots:    true,
	})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if !strings.Contains(output, "<path") {
		t.Fatalf("expected area path in svg")
	}
	if !strings.Contains(output, "aria-labelledby") {
		t.Fatalf("expected accessibility attributes")
	}
}

func TestLineColorsLossSegments(t *testing.T) {
	html, err := Line(400, 200, []float64{100, -40, 60}, []string{"d1", "d2", "d3"}, LineOpts{ShowDots: true})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if !strings.Contains(output, lossColor) {
		t.Fatal("expected loss colour on negative segments")
	}
	if !strings.Contains(output, profitColor) {
		t.Fatal("expected profit colour on positive segments")
	}
}

func TestLineFormatsMoneyTicks(t *testing.T) {
	html, err := Line(400, 200, []float64{0, 12500}, []string{"d1", "d2"}, LineOpts{})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	if !strings.Contains(string(html), "12,500") {
		t.Fatalf("expected grouped tick label, got %s", html)
	}
}

func TestLineThinsCrowdedLabels(t *testing.T) {
	series := make([]float64, 30)
	labels := make([]string, 30)
	for i := range series {
		series[i] = float64(i * 10)
		labels[i] = fmt.Sprintf("2024-01-%02d", i+1)
	}
	html, err := Line(400, 200, series, labels, LineOpts{})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	drawn := strings.Count(string(html), `text-anchor="middle"`)
	if drawn > maxXLabels+1 {
		t.Fatalf("expected at most %d day labels, got %d", maxXLabels+1, drawn)
	}
	if !strings.Contains(string(html), "2024-01-30") {
		t.Fatal("expected the last day label to survive thinning")
	}
}

func TestLineRejectsMismatchedLabels(t *testing.T) {
	if _, err := Line(400, 200, []float64{1, 2}, []string{"only"}, LineOpts{}); err == nil {
		t.Fatal("expected error for mismatched labels")
	}
}

func TestLineHandlesSinglePoint(t *testing.T) {
	html, err := Line(400, 200, []float64{-50}, []string{"2024-01-01"}, LineOpts{})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if !strings.Contains(output, "<circle") {
		t.Fatal("expected a dot for the single value")
	}
	if !strings.Contains(output, lossColor) {
		t.Fatal("expected loss colour for a negative value")
	}
}
