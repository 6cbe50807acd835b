package refdata

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/internal/view"
)

const dayLayout = "2006-01-02"

// Handler wires HTTP endpoints for the reference data pages.
type Handler struct {
	logger    *slog.Logger
	service   Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
	}
}

// MountRoutes registers reference data routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/prices", h.showPrices)
	r.Post("/prices", h.handleUpsertPrice)
	r.Post("/prices/delete", h.handleDeletePrice)

	r.Get("/rates", h.showRates)
	r.Post("/rates", h.handleUpsertRate)
	r.Post("/rates/delete", h.handleDeleteRate)

	r.Get("/adspend", h.showAdSpend)
	r.Post("/adspend", h.handleUpsertAdSpend)
	r.Post("/adspend/delete", h.handleDeleteAdSpend)
}

type priceForm struct {
	Site      string `validate:"required"`
	Product   string `validate:"required"`
	UnitPrice string `validate:"required"`
}

type pricesPageData struct {
	Prices []ProductPrice
	Form   priceForm
	Errors map[string]string
}

func (h *Handler) showPrices(w http.ResponseWriter, r *http.Request) {
	h.renderPrices(w, r, priceForm{}, nil, http.StatusOK)
}

func (h *Handler) handleUpsertPrice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := priceForm{
		Site:      r.PostFormValue("site"),
		Product:   r.PostFormValue("product"),
		UnitPrice: r.PostFormValue("unit_price"),
	}
	errs := h.structErrors(form)
	unitPrice, err := strconv.ParseInt(form.UnitPrice, 10, 64)
	if form.UnitPrice != "" && (err != nil || unitPrice < 0) {
		errs["UnitPrice"] = "must be a non-negative whole number"
	}
	if len(errs) == 0 {
		price := ProductPrice{Site: form.Site, Product: form.Product, UnitPrice: unitPrice}
		if err := h.service.UpsertPrice(r.Context(), price); err != nil {
			h.logger.Error("upsert price", slog.Any("error", err))
			errs["general"] = "Could not save the price"
		}
	}
	if len(errs) > 0 {
		h.renderPrices(w, r, form, errs, http.StatusBadRequest)
		return
	}
	h.flash(r, "Price saved")
	http.Redirect(w, r, "/prices", http.StatusSeeOther)
}

func (h *Handler) handleDeletePrice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.DeletePrice(r.Context(), r.PostFormValue("site"), r.PostFormValue("product")); err != nil {
		h.logger.Error("delete price", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/prices", http.StatusSeeOther)
}

func (h *Handler) renderPrices(w http.ResponseWriter, r *http.Request, form priceForm, errs map[string]string, status int) {
	prices, err := h.service.ListPrices(r.Context())
	if err != nil {
		h.logger.Error("list prices", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "Prices", "/prices", "pages/prices.html", pricesPageData{Prices: prices, Form: form, Errors: errs}, status)
}

type rateForm struct {
	Site string `validate:"required"`
	Rate string `validate:"required"`
}

type ratesPageData struct {
	Rates  []CommissionRate
	Form   rateForm
	Errors map[string]string
}

func (h *Handler) showRates(w http.ResponseWriter, r *http.Request) {
	h.renderRates(w, r, rateForm{}, nil, http.StatusOK)
}

func (h *Handler) handleUpsertRate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := rateForm{
		Site: r.PostFormValue("site"),
		Rate: r.PostFormValue("rate"),
	}
	errs := h.structErrors(form)
	rate, err := strconv.ParseFloat(form.Rate, 64)
	if form.Rate != "" && (err != nil || rate < 0 || rate > 100) {
		errs["Rate"] = "must be a percentage between 0 and 100"
	}
	if len(errs) == 0 {
		if err := h.service.UpsertRate(r.Context(), CommissionRate{Site: form.Site, Rate: rate}); err != nil {
			h.logger.Error("upsert rate", slog.Any("error", err))
			errs["general"] = "Could not save the commission rate"
		}
	}
	if len(errs) > 0 {
		h.renderRates(w, r, form, errs, http.StatusBadRequest)
		return
	}
	h.flash(r, "Commission rate saved")
	http.Redirect(w, r, "/rates", http.StatusSeeOther)
}

func (h *Handler) handleDeleteRate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteRate(r.Context(), r.PostFormValue("site")); err != nil {
		h.logger.Error("delete rate", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/rates", http.StatusSeeOther)
}

func (h *Handler) renderRates(w http.ResponseWriter, r *http.Request, form rateForm, errs map[string]string, status int) {
	rates, err := h.service.ListRates(r.Context())
	if err != nil {
		h.logger.Error("list rates", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "Commission", "/rates", "pages/rates.html", ratesPageData{Rates: rates, Form: form, Errors: errs}, status)
}

type adSpendForm struct {
	Day    string `validate:"required"`
	Site   string `validate:"required"`
	Amount string `validate:"required"`
}

type adSpendPageData struct {
	Entries []AdSpend
	Form    adSpendForm
	Errors  map[string]string
}

func (h *Handler) showAdSpend(w http.ResponseWriter, r *http.Request) {
	h.renderAdSpend(w, r, adSpendForm{Day: time.Now().UTC().Format(dayLayout)}, nil, http.StatusOK)
}

func (h *Handler) handleUpsertAdSpend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := adSpendForm{
		Day:    r.PostFormValue("day"),
		Site:   r.PostFormValue("site"),
		Amount: r.PostFormValue("amount"),
	}
	errs := h.structErrors(form)
	day, err := time.ParseInLocation(dayLayout, form.Day, time.UTC)
	if form.Day != "" && err != nil {
		errs["Day"] = "must be a date in YYYY-MM-DD form"
	}
	amount, err := strconv.ParseInt(form.Amount, 10, 64)
	if form.Amount != "" && (err != nil || amount < 0) {
		errs["Amount"] = "must be a non-negative whole number"
	}
	if len(errs) == 0 {
		if err := h.service.UpsertAdSpend(r.Context(), AdSpend{Day: day, Site: form.Site, Amount: amount}); err != nil {
			h.logger.Error("upsert ad spend", slog.Any("error", err))
			errs["general"] = "Could not save the ad spend entry"
		}
	}
	if len(errs) > 0 {
		h.renderAdSpend(w, r, form, errs, http.StatusBadRequest)
		return
	}
	h.flash(r, "Ad spend saved")
	http.Redirect(w, r, "/adspend", http.StatusSeeOther)
}

func (h *Handler) handleDeleteAdSpend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	day, err := time.ParseInLocation(dayLayout, r.PostFormValue("day"), time.UTC)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteAdSpend(r.Context(), day, r.PostFormValue("site")); err != nil {
		h.logger.Error("delete ad spend", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/adspend", http.StatusSeeOther)
}

func (h *Handler) renderAdSpend(w http.ResponseWriter, r *http.Request, form adSpendForm, errs map[string]string, status int) {
	entries, err := h.service.ListAdSpend(r.Context())
	if err != nil {
		h.logger.Error("list ad spend", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "Ad Spend", "/adspend", "pages/adspend.html", adSpendPageData{Entries: entries, Form: form, Errors: errs}, status)
}

func (h *Handler) structErrors(form any) map[string]string {
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = "required"
		}
	}
	return errs
}

func (h *Handler) flash(r *http.Request, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title, path, page string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	nickname := ""
	if sess != nil {
		flash = sess.PopFlash()
		nickname = sess.Nickname()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: path,
		Nickname:    nickname,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render reference data page", slog.Any("error", err), slog.String("page", page))
	}
}
