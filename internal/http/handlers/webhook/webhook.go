// Package webhook реализует HTTP-обработчик вебхука Telegram.
//
// Handler декодирует обновление из тела запроса и передаёт его боту.
// Telegram ждёт только подтверждения доставки, поэтому ответ всегда
// успешный, а ошибки обработки живут внутри бота.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/kittygen-bot/internal/http/response"
	"github.com/magabrotheeeer/kittygen-bot/internal/lib/sl"
)

// Handler управляет HTTP-запросами вебхука Telegram.
type Handler struct {
	log *slog.Logger
	bot UpdateHandler
}

// UpdateHandler описывает интерфейс обработки обновлений Telegram.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// New создает новый Handler с переданными логгером и ботом.
func New(log *slog.Logger, bot UpdateHandler) *Handler {
	return &Handler{
		log: log,
		bot: bot,
	}
}

// ServeHTTP принимает одно обновление Telegram.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Error("failed to decode update", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid update payload"))
		return
	}
	log.Info("update received", slog.Int("update_id", update.UpdateID))

	h.bot.HandleUpdate(r.Context(), update)

	render.JSON(w, r, response.OK())
}
