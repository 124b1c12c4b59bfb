// Package models содержит доменные структуры бота: запись пользователя
// с его счётчиками генераций и проекцию статистики для вывода в чат.
package models

// DateLayout формат календарной даты (UTC) в поле LastReset.
const DateLayout = "2006-01-02"

// Account представляет запись пользователя в хранилище.
// Запись создаётся неявно: для неизвестного пользователя возвращается
// нулевой Account, отдельной регистрации нет.
type Account struct {
	FreeUsed    int    `json:"free_used"`           // Бесплатные генерации, израсходованные с последнего сброса
	PaidCredits int    `json:"paid_credits"`        // Оплаченные разовые генерации
	ProUntil    string `json:"pro_until,omitempty"` // Окончание Pro-подписки, RFC3339; пустая строка — подписки нет
	LastReset   string `json:"last_reset"`          // Дата последнего суточного сброса, формат DateLayout
}

// Stats проекция счётчиков пользователя для команды /stats.
type Stats struct {
	FreeUsed    int    // Израсходовано бесплатных генераций за сегодня
	FreeLimit   int    // Суточный бесплатный лимит
	ProUntil    string // Окончание подписки в читаемом виде, "N/A" если подписки нет
	PaidCredits int    // Остаток оплаченных генераций
}
