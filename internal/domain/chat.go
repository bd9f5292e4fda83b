package domain

import "context"

// Роли сообщений в диалоге с моделью.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage представляет одну реплику диалога.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer генерирует ответ модели по набору сообщений.
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Synthesizer озвучивает текст выбранным голосом и моделью.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, model string) ([]byte, error)
}
