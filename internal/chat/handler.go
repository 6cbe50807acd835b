package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/internal/view"
)

const historyKey = "chat_history"

// maxHistory bounds the per-session transcript kept in Redis.
const maxHistory = 50

// Message is one line of the advisor transcript.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Handler serves the sales advisor chat page. Replies simply mirror the
// visitor's message back, prefixed with their nickname.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs the chat handler.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, templates: templates, csrf: csrf}
}

// MountRoutes registers chat routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/chat", h.showChat)
	r.Post("/chat", h.handleMessage)
	r.Post("/chat/clear", h.handleClear)
}

type chatPageData struct {
	Messages []Message
}

func (h *Handler) showChat(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.render(w, r, history(sess))
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	text := strings.TrimSpace(r.PostFormValue("message"))
	if text != "" && sess != nil {
		messages := history(sess)
		nickname := sess.Nickname()
		if nickname == "" {
			nickname = "you"
		}
		messages = append(messages,
			Message{Role: "user", Text: text},
			Message{Role: "advisor", Text: nickname + " said: " + text},
		)
		if len(messages) > maxHistory {
			messages = messages[len(messages)-maxHistory:]
		}
		saveHistory(sess, messages)
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Delete(historyKey)
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, messages []Message) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	nickname := ""
	if sess != nil {
		flash = sess.PopFlash()
		nickname = sess.Nickname()
	}
	viewData := view.TemplateData{
		Title:       "Advisor",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: "/chat",
		Nickname:    nickname,
		Data:        chatPageData{Messages: messages},
	}
	if err := h.templates.Render(w, "pages/chat.html", viewData); err != nil {
		h.logger.Error("render chat", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func history(sess *shared.Session) []Message {
	if sess == nil {
		return nil
	}
	raw := sess.Get(historyKey)
	if raw == "" {
		return nil
	}
	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil
	}
	return messages
}

func saveHistory(sess *shared.Session, messages []Message) {
	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}
	sess.Set(historyKey, string(raw))
}
