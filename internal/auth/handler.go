package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

type registerForm struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=8"`
	Nickname string
}

type registerPageData struct {
	Form   registerForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(formErrors) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
		if err != nil {
			formErrors["general"] = "Invalid username or password"
		} else {
			if sess == nil {
				h.logger.Error("session missing during login")
			} else {
				sess.SetUser(user.Username)
				sess.SetNickname(user.Nickname)
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})
			}
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	form.Password = ""
	h.renderLogin(w, r, http.StatusBadRequest, loginPageData{Form: form, Errors: formErrors})
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, http.StatusOK, registerPageData{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := registerForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Nickname: r.PostFormValue("nickname"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(formErrors) == 0 {
		user, err := h.service.Register(r.Context(), form.Username, form.Password, form.Nickname)
		switch {
		case errors.Is(err, shared.ErrUsernameTaken):
			formErrors["Username"] = "This username is already taken"
		case err != nil:
			h.logger.Error("register user", slog.Any("error", err))
			formErrors["general"] = "Could not create the account"
		default:
			if sess == nil {
				h.logger.Error("session missing during registration")
			} else {
				sess.SetUser(user.Username)
				sess.SetNickname(user.Nickname)
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Account created"})
			}
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	form.Password = ""
	h.renderRegister(w, r, http.StatusBadRequest, registerPageData{Form: form, Errors: formErrors})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/welcome", http.StatusSeeOther)
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleRegisterForTest exposes the registration POST handler for tests.
func (h *Handler) HandleRegisterForTest(w http.ResponseWriter, r *http.Request) {
	h.handleRegister(w, r)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	h.renderPage(w, r, status, "pages/login.html", "Sign In", data)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, status int, data registerPageData) {
	h.renderPage(w, r, status, "pages/register.html", "Register", data)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render auth page", slog.String("page", page), slog.Any("error", err))
		if status == http.StatusOK {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
