package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"roz-chat/internal/adapters/assistant"
	"roz-chat/internal/adapters/feedbackfile"
	"roz-chat/internal/adapters/web"
	"roz-chat/internal/infra/config"
	httpinfra "roz-chat/internal/infra/http"
	infralog "roz-chat/internal/infra/log"
	"roz-chat/internal/infra/metrics"
	"roz-chat/internal/infra/openai"
	chatusecase "roz-chat/internal/usecase/chat"
	feedbackusecase "roz-chat/internal/usecase/feedback"
	speechusecase "roz-chat/internal/usecase/speech"
)

func main() {
	cfg := config.Load()
	logger := infralog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
	provider := assistant.NewOpenAI(openaiClient, cfg.Chat.Model, cfg.Chat.Temperature, cfg.Chat.MaxTokens)
	store := feedbackfile.NewStore(cfg.FeedbackFile)
	gate := httpinfra.NewGate(cfg.AccessToken)

	chatSvc := chatusecase.NewService(provider, logger.With().Str("component", "chat").Logger())
	speechSvc := speechusecase.NewService(provider, logger.With().Str("component", "tts").Logger())
	feedbackSvc := feedbackusecase.NewService(store, logger.With().Str("component", "feedback").Logger())

	handler, err := web.NewHandler(chatSvc, speechSvc, feedbackSvc, gate, logger.With().Str("component", "web").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("api: инициализация обработчика")
	}

	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	handler.Routes(srv.Router)

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	go func() {
		logger.Info().Msg("api: старт")
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
