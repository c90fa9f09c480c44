package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"edumate/internal/models"
	"edumate/internal/service/chat"
	"edumate/internal/session"
)

// MsgRequestFailed is returned when the exchange cannot be recorded.
const MsgRequestFailed = "Mohon maaf, terjadi kendala teknis. Silakan coba beberapa saat lagi."

//go:embed templates/*.html
var templateFS embed.FS

// Gateway answers a question for one session.
type Gateway interface {
	Handle(ctx context.Context, sessionID, question string) string
}

// HistoryStore is the transcript lifecycle used by the handlers.
type HistoryStore interface {
	History(ctx context.Context, sessionID string) ([]models.Message, error)
	AppendExchange(ctx context.Context, sessionID, question, answer, at string) error
	Clear(ctx context.Context, sessionID string) error
	CheckOverflow(ctx context.Context, sessionID string) (bool, error)
}

// Handler wires HTTP routes to the chat gateway and the session history.
type Handler struct {
	gateway  Gateway
	history  HistoryStore
	sessions *session.Manager
	now      func() time.Time
}

// NewHandler constructs a Handler instance.
func NewHandler(gateway Gateway, history HistoryStore, sessions *session.Manager) *Handler {
	return &Handler{
		gateway:  gateway,
		history:  history,
		sessions: sessions,
		now:      time.Now,
	}
}

// RegisterRoutes attaches templates, middleware and routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	tpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
	router.SetHTMLTemplate(tpl)

	router.Use(h.sessions.Middleware(), h.checkOverflow())
	router.GET("/", h.index)
	for _, path := range []string{"/chat", "/chat.html"} {
		router.GET(path, h.chatPage)
		router.POST(path, h.chat)
	}
	router.POST("/clear_history", h.clearHistory)
}

// checkOverflow resets oversized transcripts before the request is processed.
func (h *Handler) checkOverflow() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, ok := session.IDFromContext(c); ok {
			if _, err := h.history.CheckOverflow(c.Request.Context(), sessionID); err != nil {
				log.Error().Err(err).Str("session", sessionID).Msg("history overflow check failed")
			}
		}
		c.Next()
	}
}

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

type messageView struct {
	models.Message
}

func (m messageView) IsBot() bool {
	return m.Role == models.RoleBot
}

// HTML marks bot text as trusted; it was produced by the formatter or is a fixed reply.
func (m messageView) HTML() template.HTML {
	return template.HTML(m.Text)
}

func (h *Handler) chatPage(c *gin.Context) {
	sessionID, _ := session.IDFromContext(c)
	msgs, err := h.history.History(c.Request.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("load history failed")
		msgs = nil
	}
	views := make([]messageView, 0, len(msgs))
	for _, msg := range msgs {
		views = append(views, messageView{Message: msg})
	}
	c.HTML(http.StatusOK, "chat.html", gin.H{"History": views})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) chat(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("chat handler panicked")
			c.JSON(http.StatusOK, gin.H{"answer": MsgRequestFailed})
		}
	}()
	sessionID, ok := session.IDFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"answer": MsgRequestFailed})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Str("session", sessionID).Msg("invalid chat request body")
		c.JSON(http.StatusOK, gin.H{"answer": chat.MsgNotUnderstood})
		return
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		c.JSON(http.StatusOK, gin.H{"answer": chat.MsgNotUnderstood})
		return
	}

	log.Debug().Str("session", sessionID).Str("question", question).Msg("received question")
	answer := h.gateway.Handle(c.Request.Context(), sessionID, question)
	log.Debug().Str("session", sessionID).Str("answer", answer).Msg("generated answer")

	at := h.now().Format(models.TimeLayout)
	if err := h.history.AppendExchange(c.Request.Context(), sessionID, question, answer, at); err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("record exchange failed")
		c.JSON(http.StatusOK, gin.H{"answer": MsgRequestFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *Handler) clearHistory(c *gin.Context) {
	if sessionID, ok := session.IDFromContext(c); ok {
		if err := h.history.Clear(c.Request.Context(), sessionID); err != nil {
			log.Error().Err(err).Str("session", sessionID).Msg("clear history failed")
		}
	}
	c.Redirect(http.StatusFound, "/chat")
}
