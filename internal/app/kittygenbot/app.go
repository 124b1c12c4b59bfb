// Package kittygenbot собирает приложение: хранилище, сервисы, бота
// и HTTP-сервер вебхука.
package kittygenbot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/kittygen-bot/internal/bot"
	"github.com/magabrotheeeer/kittygen-bot/internal/config"
	"github.com/magabrotheeeer/kittygen-bot/internal/lib/sl"
	"github.com/magabrotheeeer/kittygen-bot/internal/perplexity"
	entitlementservice "github.com/magabrotheeeer/kittygen-bot/internal/services/entitlement"
	generationservice "github.com/magabrotheeeer/kittygen-bot/internal/services/generation"
	paymentservice "github.com/magabrotheeeer/kittygen-bot/internal/services/payment"
	"github.com/magabrotheeeer/kittygen-bot/internal/storage/repository"
	"github.com/magabrotheeeer/kittygen-bot/internal/tonapi"
)

const webhookPath = "/webhook"

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	api    *tgbotapi.BotAPI
	cfg    *config.Config
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	entitlements := entitlementservice.New(db, logger, cfg.FreeDaily)

	ledger := tonapi.NewClient(cfg.ExplorerAPI, cfg.Wallet, cfg.TimeoutLedger)
	verifier, err := paymentservice.New(ledger, cfg.Wallet, logger)
	if err != nil {
		return nil, err
	}

	provider := perplexity.NewClient(cfg.Perplexity, logger)
	generator := generationservice.New(entitlements, provider, logger)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	logger.Info("authorized on telegram", slog.String("username", api.Self.UserName))

	botService := bot.New(api, entitlements, generator, verifier, cfg, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, botService, cfg.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		api:    api,
		cfg:    cfg,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.setWebhook(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		a.deleteWebhook()
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close storage", sl.Err(cerr))
		}
		return err
	}
}

// setWebhook регистрирует вебхук в Telegram. Пустой WebhookBase означает,
// что вебхук настраивается снаружи (например, при локальном туннеле).
func (a *App) setWebhook() error {
	if a.cfg.WebhookBase == "" {
		a.logger.Warn("webhook base is not set, skipping webhook registration")
		return nil
	}

	params := tgbotapi.Params{
		"url": strings.TrimRight(a.cfg.WebhookBase, "/") + webhookPath,
	}
	params.AddNonEmpty("secret_token", a.cfg.WebhookSecret)

	if _, err := a.api.MakeRequest("setWebhook", params); err != nil {
		return err
	}
	a.logger.Info("webhook set", slog.String("url", params["url"]))
	return nil
}

func (a *App) deleteWebhook() {
	if a.cfg.WebhookBase == "" {
		return
	}
	if _, err := a.api.MakeRequest("deleteWebhook", tgbotapi.Params{"drop_pending_updates": "true"}); err != nil {
		a.logger.Error("failed to delete webhook", sl.Err(err))
		return
	}
	a.logger.Info("webhook deleted")
}
