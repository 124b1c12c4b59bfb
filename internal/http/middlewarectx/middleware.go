// Package middlewarectx содержит middleware для HTTP-сервера бота:
// проверку секрета вебхука Telegram и ограничение частоты запросов.
package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/kittygen-bot/internal/http/response"
)

// заголовок, в котором Telegram присылает секрет, заданный при setWebhook
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

var limiter = rate.NewLimiter(30, 60)

// SecretTokenMiddleware возвращает middleware, которое сверяет секрет
// вебхука. Пустой секрет в конфиге отключает проверку.
func SecretTokenMiddleware(secret string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" && r.Header.Get(secretTokenHeader) != secret {
				log.Error("webhook secret mismatch")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware возвращает middleware, ограничивающее частоту запросов.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
