package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"roz-chat/internal/domain"
	httpinfra "roz-chat/internal/infra/http"
	"roz-chat/internal/infra/metrics"
	chatusecase "roz-chat/internal/usecase/chat"
	feedbackusecase "roz-chat/internal/usecase/feedback"
	speechusecase "roz-chat/internal/usecase/speech"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler обслуживает JSON API и HTML-страницы чата.
type Handler struct {
	chat     *chatusecase.Service
	speech   *speechusecase.Service
	feedback *feedbackusecase.Service
	gate     *httpinfra.Gate
	log      zerolog.Logger
	tmpl     *template.Template
}

// NewHandler создаёт обработчик.
func NewHandler(
	chat *chatusecase.Service,
	speech *speechusecase.Service,
	feedback *feedbackusecase.Service,
	gate *httpinfra.Gate,
	logger zerolog.Logger,
) (*Handler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("разбор шаблонов: %w", err)
	}
	return &Handler{
		chat:     chat,
		speech:   speech,
		feedback: feedback,
		gate:     gate,
		log:      logger,
		tmpl:     tmpl,
	}, nil
}

// Routes регистрирует все маршруты.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(pages chi.Router) {
		pages.Use(httpinfra.PageAuthMiddleware(h.gate, "/login"))
		pages.Get("/", h.ChatPage)
		pages.Get("/dashboard", h.DashboardPage)
	})
	r.With(httpinfra.LoginPageMiddleware(h.gate, "/")).Get("/login", h.LoginPage)

	// API доступен и с префиксом /api, и без него.
	for _, mount := range []string{"", "/api"} {
		r.Post(mount+"/auth", h.AuthCheck)
		r.Get(mount+"/auth", h.AuthStatus)
		r.Get(mount+"/chat", h.NewSession)
		r.Post(mount+"/chat", h.Chat)
		r.Post(mount+"/tts", h.TTS)
		r.Group(func(protected chi.Router) {
			protected.Use(httpinfra.APIAuthMiddleware(h.gate))
			protected.Post(mount+"/feedback", h.SubmitFeedback)
			protected.Get(mount+"/feedback", h.ListFeedback)
		})
	}
}

type authRequest struct {
	Token string `json:"token"`
}

// AuthCheck обрабатывает POST /auth.
func (h *Handler) AuthCheck(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("missing").Inc()
		httpinfra.WriteError(w, http.StatusBadRequest, "Token is vereist")
		return
	}
	if !h.gate.Check(req.Token) {
		metrics.AuthAttemptsTotal.WithLabelValues("denied").Inc()
		httpinfra.WriteError(w, http.StatusUnauthorized, "Ongeldig toegangstoken")
		return
	}
	metrics.AuthAttemptsTotal.WithLabelValues("granted").Inc()
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Toegang verleend",
	})
}

// AuthStatus обрабатывает GET /auth с bearer-заголовком.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	if h.gate.Check(httpinfra.TokenFromRequest(r)) {
		httpinfra.WriteJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
		return
	}
	httpinfra.WriteJSON(w, http.StatusUnauthorized, map[string]bool{"authenticated": false})
}

type chatRequest struct {
	Message   string               `json:"message"`
	SessionID string               `json:"sessionId"`
	History   []domain.ChatMessage `json:"history"`
}

// Chat обрабатывает POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Bericht is vereist")
		return
	}
	reply, sessionID, err := h.chat.Reply(r.Context(), req.Message, req.SessionID, req.History)
	if err != nil {
		if errors.Is(err, chatusecase.ErrMessageRequired) {
			httpinfra.WriteError(w, http.StatusBadRequest, "Bericht is vereist")
			return
		}
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("web: chat")
		httpinfra.WriteError(w, http.StatusInternalServerError, "Er is iets misgegaan. Probeer het opnieuw.")
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]string{
		"response":  reply,
		"sessionId": sessionID,
	})
}

// NewSession обрабатывает GET /chat: выдаёт свежий идентификатор сессии.
func (h *Handler) NewSession(w http.ResponseWriter, r *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, map[string]string{
		"sessionId": chatusecase.NewSessionID(),
	})
}

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Model string `json:"model"`
}

// TTS обрабатывает POST /tts и отдаёт mp3.
func (h *Handler) TTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Tekst is vereist")
		return
	}
	audio, err := h.speech.Synthesize(r.Context(), req.Text, req.Voice, req.Model)
	if err != nil {
		switch {
		case errors.Is(err, speechusecase.ErrTextRequired):
			httpinfra.WriteError(w, http.StatusBadRequest, "Tekst is vereist")
		case errors.Is(err, speechusecase.ErrInvalidVoice):
			httpinfra.WriteError(w, http.StatusBadRequest, "Ongeldige stem")
		case errors.Is(err, speechusecase.ErrInvalidModel):
			httpinfra.WriteError(w, http.StatusBadRequest, "Ongeldig model")
		default:
			h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("web: tts")
			httpinfra.WriteError(w, http.StatusInternalServerError, "Er is iets misgegaan bij het genereren van audio.")
		}
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	_, _ = w.Write(audio)
}

type feedbackRequest struct {
	SessionID string `json:"sessionId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// SubmitFeedback обрабатывает POST /feedback.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Sessie-ID en beoordeling zijn vereist")
		return
	}
	if req.SessionID == "" || req.Rating == 0 {
		httpinfra.WriteError(w, http.StatusBadRequest, "Sessie-ID en beoordeling zijn vereist")
		return
	}
	if _, err := h.feedback.Submit(req.SessionID, req.Rating, req.Comment); err != nil {
		switch {
		case errors.Is(err, feedbackusecase.ErrSessionRequired):
			httpinfra.WriteError(w, http.StatusBadRequest, "Sessie-ID en beoordeling zijn vereist")
		case errors.Is(err, feedbackusecase.ErrRatingRange):
			httpinfra.WriteError(w, http.StatusBadRequest, "Beoordeling moet tussen 1 en 5 zijn")
		default:
			h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("web: сохранение отзыва")
			httpinfra.WriteError(w, http.StatusInternalServerError, "Er is iets misgegaan bij het opslaan van je feedback.")
		}
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Bedankt voor je feedback!",
	})
}

// ListFeedback обрабатывает GET /feedback: отзывы в порядке добавления.
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := h.feedback.List()
	if err != nil {
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("web: чтение отзывов")
		httpinfra.WriteError(w, http.StatusInternalServerError, "Er is iets misgegaan bij het ophalen van feedback.")
		return
	}
	if list == nil {
		list = []domain.Feedback{}
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{"feedback": list})
}

// LoginPage отдаёт страницу входа.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "login.html", nil)
}

// ChatPage отдаёт страницу чата.
func (h *Handler) ChatPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "chat.html", nil)
}

type dashboardRecord struct {
	SessionID string
	Rating    int
	Comment   string
	When      string
}

type dashboardData struct {
	Summary feedbackusecase.Summary
	Buckets []dashboardBucket
	Records []dashboardRecord
}

type dashboardBucket struct {
	Rating int
	Count  int
}

// DashboardPage отдаёт страницу с агрегатами и отзывами,
// отсортированными от новых к старым.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	list, err := h.feedback.List()
	if err != nil {
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("web: dashboard")
		http.Error(w, "Er is iets misgegaan bij het ophalen van feedback.", http.StatusInternalServerError)
		return
	}
	summary := feedbackusecase.Aggregate(list)
	data := dashboardData{Summary: summary}
	for rating := 5; rating >= 1; rating-- {
		data.Buckets = append(data.Buckets, dashboardBucket{Rating: rating, Count: summary.Distribution[rating]})
	}
	for _, fb := range feedbackusecase.SortForDisplay(list) {
		data.Records = append(data.Records, dashboardRecord{
			SessionID: fb.SessionID,
			Rating:    fb.Rating,
			Comment:   fb.Comment,
			When:      fb.Timestamp.Local().Format("02-01-2006 15:04"),
		})
	}
	h.renderPage(w, "dashboard.html", data)
}

func (h *Handler) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("web: рендер страницы")
	}
}
