// Package bot разбирает обновления Telegram и превращает их в вызовы
// движка квот, генератора и проверки платежей. Сюда же относятся
// тексты ответов и платёжная клавиатура.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/kittygen-bot/internal/config"
	"github.com/magabrotheeeer/kittygen-bot/internal/lib/sl"
	"github.com/magabrotheeeer/kittygen-bot/internal/metrics"
	"github.com/magabrotheeeer/kittygen-bot/internal/models"
	"github.com/magabrotheeeer/kittygen-bot/internal/services/generation"
)

// данные callback-кнопок проверки оплаты
const (
	checkMonthly = "check_monthly"
	checkOne     = "check_one"
)

// TelegramAPI определяет используемую часть Bot API клиента.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Entitlements определяет нужную боту часть движка квот.
type Entitlements interface {
	GrantSubscription(ctx context.Context, userID int64, days int) error
	GrantCredit(ctx context.Context, userID int64, count int) error
	GetStats(ctx context.Context, userID int64) (*models.Stats, error)
}

// Generator определяет сценарий генерации изображения.
type Generator interface {
	Generate(ctx context.Context, userID int64, prompt string) ([]byte, error)
}

// Verifier определяет проверку входящего платежа.
type Verifier interface {
	Verify(ctx context.Context, minCoins float64) bool
}

// Bot маршрутизирует команды и callback-кнопки бота.
type Bot struct {
	api          TelegramAPI
	entitlements Entitlements
	generator    Generator
	verifier     Verifier
	log          *slog.Logger

	wallet     string
	monthlyTON float64
	perGenTON  float64
	proDays    int
	freeLimit  int
}

// New создает новый экземпляр Bot.
func New(api TelegramAPI, entitlements Entitlements, generator Generator, verifier Verifier,
	cfg *config.Config, log *slog.Logger) *Bot {
	return &Bot{
		api:          api,
		entitlements: entitlements,
		generator:    generator,
		verifier:     verifier,
		log:          log,
		wallet:       cfg.Wallet,
		monthlyTON:   cfg.MonthlyPriceTON,
		perGenTON:    cfg.PerGenPriceTON,
		proDays:      cfg.ProDays,
		freeLimit:    cfg.FreeDaily,
	}
}

// HandleUpdate обрабатывает одно обновление Telegram. Ошибки внешних
// вызовов превращаются в ответы пользователю и никогда не поднимаются
// выше: вебхук всегда отвечает Telegram успехом.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	const op = "bot.handleCommand"
	log := b.log.With(slog.String("op", op),
		slog.Int64("user_id", msg.From.ID),
		slog.String("command", msg.Command()))

	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"Welcome to KittyKodakAI! Generate cute cat images with AI.\n"+
				"Free: %d/day. Try /cat astronaut → cat astronaut!\n"+
				"Ready to upgrade? /pay for Pro.", b.freeLimit))
	case "help":
		b.reply(msg.Chat.ID,
			"This bot generates unique cat images using AI.\n\n"+
				"Commands:\n"+
				"/cat <prompt> - generate a cat image\n"+
				"/pay - upgrade to Pro or buy a single generation\n"+
				"/stats - show your usage")
	case "cat":
		b.handleCat(ctx, msg, log)
	case "pay":
		reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
			"Upgrade to Pro via TON.\n"+
				"Pro subscription: %g TON / month.\n"+
				"Single generation: %g TON.", b.monthlyTON, b.perGenTON))
		reply.ReplyMarkup = paymentKeyboard(b.wallet, b.monthlyTON, b.perGenTON)
		b.send(reply)
	case "stats", "my_stats":
		b.handleStats(ctx, msg, log)
	default:
		log.Info("unknown command ignored")
	}
}

func (b *Bot) handleCat(ctx context.Context, msg *tgbotapi.Message, log *slog.Logger) {
	prompt := msg.CommandArguments()

	b.send(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatUploadPhoto))

	img, err := b.generator.Generate(ctx, msg.From.ID, prompt)
	switch {
	case errors.Is(err, generation.ErrEmptyPrompt):
		b.reply(msg.Chat.ID, "Send like: /cat astronaut cat sipping coffee.")
		return
	case errors.Is(err, generation.ErrLimitReached):
		b.reply(msg.Chat.ID, "Free limit reached. Upgrade to Pro: /pay")
		return
	case err != nil:
		log.Error("generation failed", sl.Err(err))
		b.reply(msg.Chat.ID, "Generation failed. Please try again later.")
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "kitty.png", Bytes: img})
	photo.Caption = "Pro tip: /pay to unlock unlimited kitty magic."
	b.send(photo)
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message, log *slog.Logger) {
	stats, err := b.entitlements.GetStats(ctx, msg.From.ID)
	if err != nil {
		log.Error("failed to get stats", sl.Err(err))
		b.reply(msg.Chat.ID, "Stats are unavailable right now. Please try again later.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Used: %d/%d free today.\n"+
			"Pro until: %s\n"+
			"Paid credits available: %d",
		stats.FreeUsed, stats.FreeLimit, stats.ProUntil, stats.PaidCredits))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	const op = "bot.handleCallback"
	log := b.log.With(slog.String("op", op),
		slog.Int64("user_id", cb.From.ID),
		slog.String("data", cb.Data))

	if cb.Data != checkMonthly && cb.Data != checkOne {
		log.Info("unknown callback ignored")
		return
	}
	if cb.Message == nil {
		log.Info("callback without message ignored")
		return
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "Checking TON payment...")); err != nil {
		log.Error("failed to answer callback", sl.Err(err))
	}

	chatID := cb.Message.Chat.ID
	required := b.perGenTON
	if cb.Data == checkMonthly {
		required = b.monthlyTON
	}

	if !b.verifier.Verify(ctx, required) {
		b.reply(chatID, "Payment not found yet. Try again in 30s or contact support.")
		return
	}

	if cb.Data == checkMonthly {
		if err := b.entitlements.GrantSubscription(ctx, cb.From.ID, b.proDays); err != nil {
			log.Error("failed to grant subscription", sl.Err(err))
			b.reply(chatID, "Payment received but activation failed. Please press the button again.")
			return
		}
		metrics.PaymentsVerifiedTotal.WithLabelValues("monthly").Inc()
		b.reply(chatID, fmt.Sprintf("Pro activated for %d days! Enjoy unlimited cats.", b.proDays))
		return
	}

	if err := b.entitlements.GrantCredit(ctx, cb.From.ID, 1); err != nil {
		log.Error("failed to grant credit", sl.Err(err))
		b.reply(chatID, "Payment received but activation failed. Please press the button again.")
		return
	}
	metrics.PaymentsVerifiedTotal.WithLabelValues("credit").Inc()
	b.reply(chatID, "One-time generation unlocked! Use /cat now.")
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("failed to send message", sl.Err(err))
	}
}
