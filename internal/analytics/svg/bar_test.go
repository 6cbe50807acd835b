package svg

import (
	"strings"
	"testing"
)

func TestBarsProducesGroupedBars(t *testing.T) {
	html, err := Bars(400, 200, []float64{500, 300}, []float64{50, 30}, []string{"2024-01-01", "2024-01-02"}, BarOpts{
		Title:        "Revenue vs Fees",
		SeriesALabel: "Revenue",
		SeriesBLabel: "Fees",
	})
	if err != nil {
		t.Fatalf("bar renderer error: %v", err)
	}
	output := string(html)
	if strings.Count(output, "<rect") < 4 {
		t.Fatalf("expected bars and legend rects, got %s", output)
	}
	if !strings.Contains(output, "Revenue") || !strings.Contains(output, "Fees") {
		t.Fatal("expected legend labels")
	}
	if !strings.Contains(output, revenueColor) || !strings.Contains(output, feeColor) {
		t.Fatal("expected series colours")
	}
}

func TestBarsFormatsMoneyTicks(t *testing.T) {
	html, err := Bars(400, 200, []float64{5000, 3000}, nil, []string{"d1", "d2"}, BarOpts{})
	if err != nil {
		t.Fatalf("bar renderer error: %v", err)
	}
	if !strings.Contains(string(html), "1,000") {
		t.Fatalf("expected grouped tick label, got %s", html)
	}
}

func TestBarsHandlesNegativeValues(t *testing.T) {
	html, err := Bars(400, 200, []float64{-120}, nil, []string{"2024-01-01"}, BarOpts{})
	if err != nil {
		t.Fatalf("bar renderer error: %v", err)
	}
	if !strings.Contains(string(html), "<rect") {
		t.Fatal("expected at least one bar")
	}
}

func TestBarsRequiresSeries(t *testing.T) {
	if _, err := Bars(400, 200, nil, nil, []string{"a"}, BarOpts{}); err == nil {
		t.Fatal("expected error when both series empty")
	}
}
