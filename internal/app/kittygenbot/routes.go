package kittygenbot

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/kittygen-bot/internal/bot"
	"github.com/magabrotheeeer/kittygen-bot/internal/http/handlers/health"
	"github.com/magabrotheeeer/kittygen-bot/internal/http/handlers/webhook"
	"github.com/magabrotheeeer/kittygen-bot/internal/http/middlewarectx"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, botService *bot.Bot, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	// Конечная точка Telegram-вебхука, защищена секретом и лимитом частоты
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.SecretTokenMiddleware(webhookSecret, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post(webhookPath, webhook.New(logger, botService).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
