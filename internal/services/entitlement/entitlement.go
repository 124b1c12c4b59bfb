// Package entitlement содержит бизнес-логику учёта генераций:
// суточный бесплатный лимит, оплаченные разовые генерации и
// ограниченная по времени Pro-подписка.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/kittygen-bot/internal/models"
)

// AccountRepository определяет методы для работы с записями пользователей в хранилище.
type AccountRepository interface {
	// Get возвращает запись пользователя; для неизвестного — нулевую запись.
	Get(ctx context.Context, userID int64) (*models.Account, error)
	// Update атомарно изменяет запись пользователя и возвращает результат.
	Update(ctx context.Context, userID int64, fn func(acc *models.Account) error) (*models.Account, error)
}

// Service реализует движок квот поверх хранилища записей.
// Мутации выполняются под общим мьютексом процесса, а на уровне
// хранилища — через атомарный Update, так что несколько экземпляров
// бота могут разделять один Redis.
type Service struct {
	repo      AccountRepository
	log       *slog.Logger
	freeLimit int

	mu  sync.Mutex
	now func() time.Time
}

// New создает новый экземпляр Service.
func New(repo AccountRepository, log *slog.Logger, freeLimit int) *Service {
	return &Service{
		repo:      repo,
		log:       log,
		freeLimit: freeLimit,
		now:       time.Now,
	}
}

// FreeLimit возвращает суточный бесплатный лимит.
func (s *Service) FreeLimit() int {
	return s.freeLimit
}

func (s *Service) today() string {
	return s.now().UTC().Format(models.DateLayout)
}

// resetIfStale обнуляет суточный счётчик, если запись последний раз
// сбрасывалась не сегодня. Повторный вызов в тот же день ничего не меняет.
func resetIfStale(acc *models.Account, today string) bool {
	if acc.LastReset == today {
		return false
	}
	acc.FreeUsed = 0
	acc.LastReset = today
	return true
}

// EnsureDailyReset возвращает запись пользователя, предварительно
// выполнив ленивый суточный сброс. Запись сохраняется только если
// сброс действительно произошёл.
func (s *Service) EnsureDailyReset(ctx context.Context, userID int64) (*models.Account, error) {
	const op = "services.entitlement.EnsureDailyReset"

	acc, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	today := s.today()
	if acc.LastReset == today {
		return acc, nil
	}

	acc, err = s.repo.Update(ctx, userID, func(acc *models.Account) error {
		resetIfStale(acc, today)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("daily quota reset", slog.Int64("user_id", userID), slog.String("date", today))
	return acc, nil
}

// parseProUntil разбирает сохранённую дату окончания подписки.
// Время без зоны трактуется как UTC, нечитаемое значение — как
// отсутствие подписки.
func parseProUntil(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// HasActiveSubscription сообщает, действует ли у пользователя Pro-подписка.
func (s *Service) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	const op = "services.entitlement.HasActiveSubscription"

	acc, err := s.EnsureDailyReset(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	until, ok := parseProUntil(acc.ProUntil)
	if !ok {
		return false, nil
	}
	return until.After(s.now().UTC()), nil
}

// CanGenerate сообщает, доступна ли пользователю ещё одна генерация:
// действует подписка, есть оплаченные генерации или не исчерпан
// бесплатный суточный лимит.
func (s *Service) CanGenerate(ctx context.Context, userID int64) (bool, error) {
	const op = "services.entitlement.CanGenerate"

	acc, err := s.EnsureDailyReset(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if until, ok := parseProUntil(acc.ProUntil); ok && until.After(s.now().UTC()) {
		return true, nil
	}
	if acc.PaidCredits > 0 {
		return true, nil
	}
	return acc.FreeUsed < s.freeLimit, nil
}

// RecordGeneration списывает одну генерацию после её отправки провайдеру.
// Для подписчика счётчики не трогаются; иначе сначала расходуются
// оплаченные генерации, затем бесплатный лимит. Повторной проверки
// CanGenerate здесь нет: вызывающая сторона обязана проверить доступ
// до отправки и не вызывать RecordGeneration для несостоявшейся попытки.
func (s *Service) RecordGeneration(ctx context.Context, userID int64, isPro bool) error {
	const op = "services.entitlement.RecordGeneration"

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	_, err := s.repo.Update(ctx, userID, func(acc *models.Account) error {
		resetIfStale(acc, today)
		if isPro {
			return nil
		}
		if acc.PaidCredits > 0 {
			acc.PaidCredits--
			return nil
		}
		acc.FreeUsed++
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GrantSubscription продлевает Pro-подписку на days дней. Отсчёт идёт от
// max(сейчас, текущее окончание), поэтому покупка при действующей
// подписке не сжигает оставшееся время.
func (s *Service) GrantSubscription(ctx context.Context, userID int64, days int) error {
	const op = "services.entitlement.GrantSubscription"

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	nowUTC := s.now().UTC()
	_, err := s.repo.Update(ctx, userID, func(acc *models.Account) error {
		resetIfStale(acc, today)
		base := nowUTC
		if until, ok := parseProUntil(acc.ProUntil); ok && until.After(base) {
			base = until
		}
		acc.ProUntil = base.AddDate(0, 0, days).Format(time.RFC3339)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription granted", slog.Int64("user_id", userID), slog.Int("days", days))
	return nil
}

// GrantCredit добавляет пользователю count оплаченных генераций.
func (s *Service) GrantCredit(ctx context.Context, userID int64, count int) error {
	const op = "services.entitlement.GrantCredit"

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	_, err := s.repo.Update(ctx, userID, func(acc *models.Account) error {
		resetIfStale(acc, today)
		acc.PaidCredits += count
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("paid credits granted", slog.Int64("user_id", userID), slog.Int("count", count))
	return nil
}

// GetStats возвращает статистику пользователя для показа в чате.
func (s *Service) GetStats(ctx context.Context, userID int64) (*models.Stats, error) {
	const op = "services.entitlement.GetStats"

	acc, err := s.EnsureDailyReset(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	proUntil := "N/A"
	if until, ok := parseProUntil(acc.ProUntil); ok {
		proUntil = until.Format("2006-01-02 15:04 MST")
	}
	return &models.Stats{
		FreeUsed:    acc.FreeUsed,
		FreeLimit:   s.freeLimit,
		ProUntil:    proUntil,
		PaidCredits: acc.PaidCredits,
	}, nil
}
