package analytics

import (
	"sort"
	"time"

	"github.com/marginboard/marginboard/internal/refdata"
	"github.com/marginboard/marginboard/internal/sales"
)

const dayLayout = "2006-01-02"

// DailySummary is one per-day profit and loss row.
type DailySummary struct {
	Day       time.Time `json:"day"`
	Revenue   float64   `json:"revenue"`
	Fees      float64   `json:"fees"`
	AdCost    float64   `json:"ad_cost"`
	NetProfit float64   `json:"net_profit"`
}

// TrendPoint is one point of the cumulative profit series.
type TrendPoint struct {
	Day       time.Time `json:"day"`
	NetProfit float64   `json:"net_profit"`
	Total     float64   `json:"total"`
}

type siteProduct struct {
	site    string
	product string
}

type daySite struct {
	day  string
	site string
}

// Rollup aggregates sale events into one profit and loss row per distinct
// event day, ordered by day ascending.
//
// Missing reference entries are not errors: an absent unit price or
// commission rate contributes zero, and an absent ad spend entry costs
// zero. Ad spend is a per-(day, site) scalar, so a day with many sale
// events on one site still carries that site's spend exactly once.
func Rollup(events []sales.Event, prices []refdata.ProductPrice, rates []refdata.CommissionRate, spends []refdata.AdSpend) []DailySummary {
	if len(events) == 0 {
		return nil
	}

	priceBySiteProduct := make(map[siteProduct]int64, len(prices))
	for _, p := range prices {
		priceBySiteProduct[siteProduct{site: p.Site, product: p.Product}] = p.UnitPrice
	}
	rateBySite := make(map[string]float64, len(rates))
	for _, r := range rates {
		rateBySite[r.Site] = r.Rate
	}
	spendByDaySite := make(map[daySite]int64, len(spends))
	for _, a := range spends {
		spendByDaySite[daySite{day: a.Day.UTC().Format(dayLayout), site: a.Site}] = a.Amount
	}

	summaries := make(map[string]*DailySummary)
	sitesSeen := make(map[daySite]bool)
	for _, e := range events {
		day := e.Day.UTC().Format(dayLayout)
		row, ok := summaries[day]
		if !ok {
			row = &DailySummary{Day: e.Day.UTC().Truncate(24 * time.Hour)}
			summaries[day] = row
		}

		unitPrice := priceBySiteProduct[siteProduct{site: e.Site, product: e.Product}]
		revenue := float64(unitPrice * e.Quantity)
		row.Revenue += revenue
		row.Fees += revenue * rateBySite[e.Site] / 100

		// Each site's spend enters the day total once, however many
		// product rows share the (day, site) pair.
		key := daySite{day: day, site: e.Site}
		if !sitesSeen[key] {
			sitesSeen[key] = true
			row.AdCost += float64(spendByDaySite[key])
		}
	}

	result := make([]DailySummary, 0, len(summaries))
	for _, row := range summaries {
		row.NetProfit = row.Revenue - row.Fees - row.AdCost
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})
	return result
}

// CumulativeProfit derives the running net profit series used by the
// dashboard line chart. Input order is preserved, so callers pass the
// ascending output of Rollup.
func CumulativeProfit(summaries []DailySummary) []TrendPoint {
	if len(summaries) == 0 {
		return nil
	}
	points := make([]TrendPoint, 0, len(summaries))
	total := 0.0
	for _, row := range summaries {
		total += row.NetProfit
		points = append(points, TrendPoint{Day: row.Day, NetProfit: row.NetProfit, Total: total})
	}
	return points
}
