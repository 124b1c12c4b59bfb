package bot

import (
	"fmt"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/kittygen-bot/internal/services/payment"
)

// transferURL собирает ссылку на перевод через tonhub с суммой в нанотонах.
func transferURL(wallet string, coins float64, comment string) string {
	return fmt.Sprintf("https://tonhub.com/transfer/%s?amount=%d&text=%s",
		wallet, int64(coins*payment.NanotonsPerTON), url.QueryEscape(comment))
}

// paymentKeyboard возвращает клавиатуру оплаты: верхний ряд — ссылки на
// перевод, нижний — кнопки "я оплатил" для проверки платежа.
func paymentKeyboard(wallet string, monthlyTON, perGenTON float64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(
				fmt.Sprintf("Buy Pro %g TON / month", monthlyTON),
				transferURL(wallet, monthlyTON, "KittyKodakAI Pro")),
			tgbotapi.NewInlineKeyboardButtonURL(
				fmt.Sprintf("Pay %g TON / gen", perGenTON),
				transferURL(wallet, perGenTON, "KittyKodakAI One Gen")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("I paid %g TON (Pro)", monthlyTON), checkMonthly),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("I paid %g TON (1 gen)", perGenTON), checkOne),
		),
	)
}
