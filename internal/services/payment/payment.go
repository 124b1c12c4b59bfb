// Package payment содержит проверку оплаты: поиск подходящего входящего
// перевода на принимающий кошелёк среди последних транзакций счёта.
// Сеть TON не шлёт колбэков, поэтому проверка работает опросом
// обозревателя и является best-effort заменой платёжного вебхука.
package payment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/kittygen-bot/internal/lib/sl"
	"github.com/magabrotheeeer/kittygen-bot/internal/lib/tonaddr"
	"github.com/magabrotheeeer/kittygen-bot/internal/tonapi"
)

// NanotonsPerTON количество внутренних единиц сети в одной монете.
const NanotonsPerTON = 1_000_000_000

// LedgerClient определяет доступ к обозревателю блокчейна.
type LedgerClient interface {
	Transactions(ctx context.Context) ([]tonapi.Transaction, error)
}

// Service проверяет входящие платежи на принимающий кошелёк.
type Service struct {
	ledger LedgerClient
	wallet string // каноничная форма принимающего кошелька
	log    *slog.Logger
}

// New создаёт сервис проверки платежей. Адрес кошелька нормализуется
// один раз при создании; кривой адрес в конфиге — ошибка старта.
func New(ledger LedgerClient, wallet string, log *slog.Logger) (*Service, error) {
	canonical, err := tonaddr.Normalize(wallet)
	if err != nil {
		return nil, err
	}
	return &Service{
		ledger: ledger,
		wallet: canonical,
		log:    log,
	}, nil
}

// Verify сообщает, пришёл ли на кошелёк перевод не меньше minCoins монет.
// Ошибки обозревателя и кривые транзакции трактуются как "платёж пока
// не найден": пользователь просто повторит проверку.
//
// Совпавшая транзакция ничем не помечается, поэтому один и тот же
// перевод подтверждает и повторные проверки, и чужие покупки. Это
// известная слабость протокола проверки, сохранённая намеренно;
// её фиксирует TestVerify_SameTransactionMatchesTwice.
func (s *Service) Verify(ctx context.Context, minCoins float64) bool {
	const op = "services.payment.Verify"

	txs, err := s.ledger.Transactions(ctx)
	if err != nil {
		s.log.Error("ledger query failed", slog.String("op", op), sl.Err(err))
		return false
	}

	required := int64(minCoins * NanotonsPerTON)
	for _, tx := range txs {
		if tx.InMsg == nil {
			continue
		}
		dest, err := tonaddr.Normalize(tx.InMsg.Destination)
		if err != nil {
			continue
		}
		if strings.EqualFold(dest, s.wallet) && int64(tx.InMsg.Value) >= required {
			s.log.Info("qualifying transaction found",
				slog.String("hash", tx.Hash),
				slog.Int64("value", int64(tx.InMsg.Value)),
				slog.Int64("required", required))
			return true
		}
	}
	return false
}
