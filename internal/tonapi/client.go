// Package tonapi реализует клиент для сервиса просмотра блокчейна TON
// (tonapi.io-совместимый API). Используется только чтение: последние
// транзакции по счёту принимающего кошелька.
package tonapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// сколько последних транзакций запрашивается у обозревателя
const transactionsLimit = 20

// Client клиент обозревателя блокчейна. Ответы сервиса считаются
// best-effort: вызывающая сторона трактует любую ошибку как
// "платёж пока не найден".
type Client struct {
	apiURL     string
	wallet     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент обозревателя для заданного кошелька.
func NewClient(apiURL, wallet string, timeout time.Duration) *Client {
	return &Client{
		apiURL: apiURL,
		wallet: wallet,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Transactions возвращает последние входящие транзакции на счёт кошелька.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	const op = "tonapi.Transactions"

	reqURL := fmt.Sprintf("%s/v2/blockchain/accounts/%s/transactions?limit=%d",
		c.apiURL, url.PathEscape(c.wallet), transactionsLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", op, errors.New("unexpected status: "+resp.Status))
	}

	var txResp TransactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&txResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return txResp.Transactions, nil
}
