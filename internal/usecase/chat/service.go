package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"roz-chat/internal/domain"
	"roz-chat/internal/infra/metrics"
)

// ErrMessageRequired возвращается на пустое сообщение пользователя.
var ErrMessageRequired = errors.New("сообщение обязательно")

// FallbackReply показывается, когда модель не вернула текст.
const FallbackReply = "Sorry, ik kon geen antwoord genereren."

// Персона ассистента. Роз говорит только по-нидерландски
// и рассчитана на собеседников 16-25 лет.
const systemPrompt = `Je bent Roz, een vriendelijke en begripvolle gesprekspartner voor jongeren tussen 16-25 jaar in Nederland. Je spreekt alleen Nederlands en helpt mensen die zich overweldigd, angstig of vastgelopen voelen.

Je persoonlijkheid:
- Warm, empathisch en niet-oordelend
- Spreekt op een natuurlijke, menselijke manier (geen robotachtige antwoorden)
- Gebruikt informele taal die past bij jongeren
- Toont oprechte interesse en begrip
- Biedt praktische ondersteuning en perspectief

Je doel:
- Luisteren zonder oordeel
- Helpen bij het verwerken van gevoelens
- Praktische tips geven voor dagelijkse uitdagingen
- Mensen helpen zich minder alleen te voelen
- Motiveren en hoop geven

Belangrijk:
- Spreek ALLEEN Nederlands
- Wees geen therapeut, maar een begripvolle vriend
- Houd gesprekken licht en toegankelijk
- Vraag door om beter te begrijpen
- Deel geen medisch advies, verwijs bij ernstige problemen naar professionals`

// Service пересылает сообщения пользователя модели.
type Service struct {
	completer domain.Completer
	log       zerolog.Logger
}

// NewService создаёт сервис чата.
func NewService(completer domain.Completer, logger zerolog.Logger) *Service {
	return &Service{completer: completer, log: logger}
}

// NewSessionID возвращает свежий идентификатор сессии.
// Идентификатор корреляционный, не секрет и сервером не хранится.
func NewSessionID() string {
	return uuid.NewString()
}

// Reply отправляет сообщение модели и возвращает ответ вместе с
// идентификатором сессии. Пустой sessionID заменяется свежим.
// История диалога приходит от клиента: сервер не хранит состояние
// сессии и пропускает sessionID как есть.
func (s *Service) Reply(ctx context.Context, message, sessionID string, history []domain.ChatMessage) (string, string, error) {
	if strings.TrimSpace(message) == "" {
		return "", "", ErrMessageRequired
	}
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	msgs := make([]domain.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: systemPrompt})
	for _, h := range history {
		if h.Role != domain.RoleUser && h.Role != domain.RoleAssistant {
			continue
		}
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		msgs = append(msgs, h)
	}
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleUser, Content: message})

	reply, err := s.completer.Complete(ctx, msgs)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("chat: генерация ответа")
		return "", "", fmt.Errorf("генерация ответа: %w", err)
	}
	if reply == "" {
		reply = FallbackReply
	}
	metrics.ChatRequestsTotal.WithLabelValues("success").Inc()
	return reply, sessionID, nil
}
