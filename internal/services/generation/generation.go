// Package generation связывает движок квот и провайдера генерации:
// проверяет доступ, отправляет запрос и списывает использование.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/kittygen-bot/internal/lib/sl"
	"github.com/magabrotheeeer/kittygen-bot/internal/metrics"
)

var (
	// ErrEmptyPrompt возвращается для пустого описания; состояние не меняется.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrLimitReached возвращается, когда пользователю недоступна генерация.
	ErrLimitReached = errors.New("generation limit reached")
)

// Entitlements определяет нужную сервису часть движка квот.
type Entitlements interface {
	CanGenerate(ctx context.Context, userID int64) (bool, error)
	HasActiveSubscription(ctx context.Context, userID int64) (bool, error)
	RecordGeneration(ctx context.Context, userID int64, isPro bool) error
}

// ImageProvider определяет провайдера генерации изображений.
type ImageProvider interface {
	GenerateCatImage(ctx context.Context, prompt string) ([]byte, error)
}

// Service реализует сценарий одной генерации.
type Service struct {
	entitlements Entitlements
	provider     ImageProvider
	log          *slog.Logger
}

// New создает новый экземпляр Service.
func New(entitlements Entitlements, provider ImageProvider, log *slog.Logger) *Service {
	return &Service{
		entitlements: entitlements,
		provider:     provider,
		log:          log,
	}
}

// Generate выполняет одну генерацию для пользователя. Использование
// списывается после того, как провайдер вернул байты — в том числе
// заглушку: доставленная заглушка считается выполненной генерацией.
// Если провайдер не вернул ничего, квота не расходуется и пользователь
// может просто повторить запрос.
func (s *Service) Generate(ctx context.Context, userID int64, prompt string) ([]byte, error) {
	const op = "services.generation.Generate"

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	ok, err := s.entitlements.CanGenerate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		metrics.GenerationsTotal.WithLabelValues("refused").Inc()
		return nil, ErrLimitReached
	}

	isPro, err := s.entitlements.HasActiveSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	img, err := s.provider.GenerateCatImage(ctx, prompt)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.entitlements.RecordGeneration(ctx, userID, isPro); err != nil {
		// картинка уже получена, пользователь её получит; расхождение
		// счётчика только логируется
		s.log.Error("failed to record generation", slog.Int64("user_id", userID), sl.Err(err))
	}
	metrics.GenerationsTotal.WithLabelValues("ok").Inc()

	s.log.Info("image generated", slog.Int64("user_id", userID), slog.Bool("is_pro", isPro))
	return img, nil
}
