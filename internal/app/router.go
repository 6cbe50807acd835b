package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/marginboard/marginboard/internal/analytics/http"
	"github.com/marginboard/marginboard/internal/auth"
	"github.com/marginboard/marginboard/internal/chat"
	"github.com/marginboard/marginboard/internal/observability"
	"github.com/marginboard/marginboard/internal/platform/httpx"
	"github.com/marginboard/marginboard/internal/refdata"
	"github.com/marginboard/marginboard/internal/sales"
	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/internal/view"
	"github.com/marginboard/marginboard/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	SalesHandler     *sales.Handler
	RefdataHandler   *refdata.Handler
	DashboardHandler *analytichttp.Handler
	ChatHandler      *chat.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Marginboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Landing page for unauthenticated visitors
	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess != nil && sess.User() != "" {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:     "Marginboard",
			CSRFToken: csrfToken,
			Flash:     flash,
		}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	params.AuthHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(requireLogin)
		params.DashboardHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.RefdataHandler.MountRoutes(r)
		params.ChatHandler.MountRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// requireLogin redirects anonymous visitors to the login page.
func requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
