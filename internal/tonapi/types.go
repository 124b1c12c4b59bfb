package tonapi

import (
	"strconv"
	"strings"
)

// TransactionsResponse представляет ответ обозревателя со списком транзакций.
type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// Transaction одна транзакция счёта.
type Transaction struct {
	Hash  string   `json:"hash"`
	InMsg *Message `json:"in_msg,omitempty"` // входящее сообщение, может отсутствовать
}

// Message входящее сообщение транзакции.
type Message struct {
	Value       Nanotons `json:"value"`       // сумма в нанотонах, приходит строкой или числом
	Destination string   `json:"destination"` // адрес получателя в любой текстовой записи
}

// Nanotons сумма во внутренних единицах сети (1e9 на монету).
// Обозреватель отдаёт её то строкой, то числом; нечитаемое значение
// трактуется как 0, чтобы одна кривая транзакция не ломала весь ответ.
type Nanotons int64

// UnmarshalJSON реализует лояльный разбор суммы.
func (n *Nanotons) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Nanotons(v)
	return nil
}
