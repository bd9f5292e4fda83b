package assistant

import (
	"context"
	"fmt"
	"strings"

	"roz-chat/internal/domain"
	openai "roz-chat/internal/infra/openai"
)

type openaiClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateSpeech(ctx context.Context, req openai.SpeechRequest) ([]byte, error)
}

// OpenAI реализует Completer и Synthesizer через OpenAI API.
type OpenAI struct {
	client      openaiClient
	model       string
	temperature float64
	maxTokens   int
}

// NewOpenAI создаёт провайдер генерации и синтеза речи.
func NewOpenAI(client openaiClient, model string, temperature float64, maxTokens int) *OpenAI {
	if model == "" {
		model = "gpt-4"
	}
	if temperature <= 0 {
		temperature = 0.8
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &OpenAI{client: client, model: model, temperature: temperature, maxTokens: maxTokens}
}

// Complete генерирует ответ модели. Пустой список choices не ошибка:
// возвращается пустая строка, подстановку заглушки делает вызывающий.
func (a *OpenAI) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
		Messages:    make([]openai.ChatMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Synthesize озвучивает текст и возвращает mp3 как есть.
func (a *OpenAI) Synthesize(ctx context.Context, text, voice, model string) ([]byte, error) {
	req := openai.SpeechRequest{
		Model:          model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: "mp3",
	}
	audio, err := a.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	return audio, nil
}
