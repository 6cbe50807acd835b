package sales

import (
	"errors"
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

// Handler wires HTTP endpoints for the sales entry pages.
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

// MountRoutes registers sales routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.showList)
	r.Post("/sales", h.handleCreate)
	r.Post("/sales/{id}/update", h.handleUpdate)
	r.Post("/sales/{id}/delete", h.handleDelete)
}

type eventForm struct {
	Day      string `validate:"required"`
	Site     string `validate:"required"`
	Product  string `validate:"required"`
	Quantity string `validate:"required"`
}

type listPageData struct {
	Events []Event
	Form   eventForm
	Errors map[string]string
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, eventForm{Day: time.Now().UTC().Format(dayLayout)}, nil, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := eventForm{
		Day:      r.PostFormValue("day"),
		Site:     r.PostFormValue("site"),
		Product:  r.PostFormValue("product"),
		Quantity: r.PostFormValue("quantity"),
	}
	event, errs := h.parseForm(form)
	if len(errs) == 0 {
		if _, err := h.service.CreateEvent(r.Context(), event); err != nil {
			h.logger.Error("create sale event", slog.Any("error", err))
			errs = map[string]string{"general": "Could not save the sale entry"}
		}
	}
	if len(errs) > 0 {
		h.renderList(w, r, form, errs, http.StatusBadRequest)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Sale recorded"})
	}
	http.Redirect(w, r, "/sales", http.StatusSeeOther)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := eventForm{
		Day:      r.PostFormValue("day"),
		Site:     r.PostFormValue("site"),
		Product:  r.PostFormValue("product"),
		Quantity: r.PostFormValue("quantity"),
	}
	event, errs := h.parseForm(form)
	if len(errs) == 0 {
		if err := h.service.UpdateEvent(r.Context(), id, event); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			h.logger.Error("update sale event", slog.Any("error", err), slog.Int64("id", id))
			errs = map[string]string{"general": "Could not update the sale entry"}
		}
	}
	if len(errs) > 0 {
		h.renderList(w, r, form, errs, http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/sales", http.StatusSeeOther)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteEvent(r.Context(), id); err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error("delete sale event", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/sales", http.StatusSeeOther)
}

func (h *Handler) parseForm(form eventForm) (Event, map[string]string) {
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = "required"
		}
	}
	day, err := time.ParseInLocation(dayLayout, form.Day, time.UTC)
	if form.Day != "" && err != nil {
		errs["Day"] = "must be a date in YYYY-MM-DD form"
	}
	quantity, err := strconv.ParseInt(form.Quantity, 10, 64)
	if form.Quantity != "" && (err != nil || quantity < 0) {
		errs["Quantity"] = "must be a non-negative whole number"
	}
	if len(errs) > 0 {
		return Event{}, errs
	}
	return Event{Day: day, Site: form.Site, Product: form.Product, Quantity: quantity}, nil
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, form eventForm, errs map[string]string, status int) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.logger.Error("list sale events", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
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
		Title:       "Sales",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: "/sales",
		Nickname:    nickname,
		Data:        listPageData{Events: events, Form: form, Errors: errs},
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/sales.html", viewData); err != nil {
		h.logger.Error("render sales", slog.Any("error", err))
	}
}
