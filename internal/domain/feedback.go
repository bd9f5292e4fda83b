package domain

import (
	"errors"
	"time"
)

// ErrCorruptLog сигнализирует, что журнал отзывов не удалось разобрать.
var ErrCorruptLog = errors.New("журнал отзывов повреждён")

// Feedback представляет один отзыв пользователя о диалоге.
// Запись неизменяема после создания.
type Feedback struct {
	SessionID string    `json:"sessionId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackRepo описывает журнал отзывов. Журнал append-only:
// операций обновления и удаления нет.
type FeedbackRepo interface {
	Append(fb Feedback) error
	ReadAll() ([]Feedback, error)
}
