package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"roz-chat/internal/domain"
	"roz-chat/internal/infra/metrics"
)

var (
	ErrTextRequired = errors.New("текст обязателен")
	ErrInvalidVoice = errors.New("недопустимый голос")
	ErrInvalidModel = errors.New("недопустимая модель")
)

// Значения по умолчанию, как в исходном продукте.
const (
	DefaultVoice = "alloy"
	DefaultModel = "tts-1"
)

var validVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}

var validModels = map[string]bool{
	"tts-1":           true,
	"tts-1-hd":        true,
	"gpt-4o-mini-tts": true,
}

// Service озвучивает текст через внешний синтезатор.
type Service struct {
	synth domain.Synthesizer
	log   zerolog.Logger
}

// NewService создаёт сервис синтеза речи.
func NewService(synth domain.Synthesizer, logger zerolog.Logger) *Service {
	return &Service{synth: synth, log: logger}
}

// Synthesize проверяет параметры и возвращает mp3-аудио.
// Недопустимые голос или модель отклоняются до обращения к провайдеру.
func (s *Service) Synthesize(ctx context.Context, text, voice, model string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if model == "" {
		model = DefaultModel
	}
	if !validVoices[voice] {
		return nil, ErrInvalidVoice
	}
	if !validModels[model] {
		return nil, ErrInvalidModel
	}

	audio, err := s.synth.Synthesize(ctx, text, voice, model)
	if err != nil {
		metrics.TTSRequestsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("voice", voice).Str("model", model).Msg("tts: синтез речи")
		return nil, fmt.Errorf("синтез речи: %w", err)
	}
	metrics.TTSRequestsTotal.WithLabelValues("success").Inc()
	metrics.TTSAudioBytes.Observe(float64(len(audio)))
	return audio, nil
}
