package analytichttp

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/marginboard/marginboard/internal/analytics"
	"github.com/marginboard/marginboard/internal/analytics/svg"
	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/internal/view"
)

// DashboardService defines the rollup data contract used by the handler.
type DashboardService interface {
	GetDailySummaries(ctx context.Context) ([]analytics.DailySummary, error)
	GetProfitTrend(ctx context.Context) ([]analytics.TrendPoint, error)
}

// LineRenderer renders a single-series line chart.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer renders a grouped bar chart.
type BarRenderer interface {
	Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// LineFunc adapts a plain function to LineRenderer.
type LineFunc func(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)

func (f LineFunc) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return f(width, height, series, labels, opts)
}

// BarFunc adapts a plain function to BarRenderer.
type BarFunc func(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error)

func (f BarFunc) Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return f(width, height, seriesA, seriesB, labels, opts)
}

// Handler coordinates HTTP requests for the profit dashboard.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	templates *view.Engine
	csrf      *shared.CSRFManager
	line      LineRenderer
	bars      BarRenderer
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, csrf *shared.CSRFManager, line LineRenderer, bars BarRenderer) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		line:      line,
		bars:      bars,
	}
}

type dashboardPageData struct {
	Rows         []analytics.DailySummary
	HasData      bool
	ProfitChart  template.HTML
	RevenueChart template.HTML
	TotalRevenue float64
	TotalFees    float64
	TotalAdCost  float64
	TotalProfit  float64
}

// ShowDashboard renders the daily profit and loss table plus charts.
func (h *Handler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		summaries []analytics.DailySummary
		trend     []analytics.TrendPoint
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summaries, err = h.service.GetDailySummaries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = h.service.GetProfitTrend(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard rollup", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data := dashboardPageData{HasData: len(summaries) > 0}
	labels := make([]string, 0, len(summaries))
	revenueSeries := make([]float64, 0, len(summaries))
	feeSeries := make([]float64, 0, len(summaries))
	for _, row := range summaries {
		labels = append(labels, row.Day.Format("2006-01-02"))
		revenueSeries = append(revenueSeries, row.Revenue)
		feeSeries = append(feeSeries, row.Fees)
		data.TotalRevenue += row.Revenue
		data.TotalFees += row.Fees
		data.TotalAdCost += row.AdCost
		data.TotalProfit += row.NetProfit
	}

	// Table newest first; charts keep ascending order.
	data.Rows = make([]analytics.DailySummary, len(summaries))
	for i, row := range summaries {
		data.Rows[len(summaries)-1-i] = row
	}

	if data.HasData {
		profitSeries := make([]float64, len(trend))
		for i, point := range trend {
			profitSeries[i] = point.Total
		}
		chart, err := h.line.Line(0, 0, profitSeries, labels, svg.LineOpts{
			Title:       "Cumulative Profit",
			Description: "Running net profit by day",
			ShowDots:    true,
		})
		if err != nil {
			h.logger.Error("render profit chart", slog.Any("error", err))
		} else {
			data.ProfitChart = chart
		}

		barChart, err := h.bars.Bars(0, 0, revenueSeries, feeSeries, labels, svg.BarOpts{
			Title:        "Revenue vs Fees",
			SeriesALabel: "Revenue",
			SeriesBLabel: "Fees",
		})
		if err != nil {
			h.logger.Error("render revenue chart", slog.Any("error", err))
		} else {
			data.RevenueChart = barChart
		}
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	nickname := ""
	if sess != nil {
		flash = sess.PopFlash()
		nickname = sess.Nickname()
	}
	viewData := view.TemplateData{
		Title:       "Dashboard",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: "/dashboard",
		Nickname:    nickname,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
