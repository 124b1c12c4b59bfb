package config

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput перехватывает вывод log.Fatal
func captureOutput(f func()) (string, bool) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	oldFlags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(oldFlags)
	}()

	panicked := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
			}
		}()
		f()
	}()

	return buf.String(), panicked
}

func writeTempConfig(t *testing.T, content string) {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "test_config_*.yaml")
	require.NoError(t, err)

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	originalPath := os.Getenv("CONFIG_PATH")
	t.Cleanup(func() {
		require.NoError(t, os.Setenv("CONFIG_PATH", originalPath))
	})
	require.NoError(t, os.Setenv("CONFIG_PATH", tmpFile.Name()))
}

func TestMustLoad_ValidConfig(t *testing.T) {
	// Создаем временный конфиг файл
	configContent := `
env: test
redis_connection:
  addressredis: "localhost:6379"
  password: "redis_pass"
  user: "redis_user"
  db: 1
  max_retries: 3
  dial_timeout: 5s
  timeoutredis: 10s
http_server:
  addresshttp: ":8080"
  timeouthttp: 30s
  idle_timeout: 60s
telegram:
  bot_token: "123456:test-token"
  webhook_base: "https://bot.example.com"
  webhook_secret: "hook_secret"
perplexity:
  api_key: "pplx-test-key"
  model: "sonar-pro"
  timeout: 60s
ton:
  wallet: "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"
  monthly_price_ton: 5
  pergen_price_ton: 0.5
  pro_days: 30
limits:
  free_daily: 3
`
	writeTempConfig(t, configContent)

	// Не должно быть ошибок
	output, panicked := captureOutput(func() {
		cfg := MustLoad()

		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, "localhost:6379", cfg.AddressRedis)
		assert.Equal(t, "redis_pass", cfg.Password)
		assert.Equal(t, "redis_user", cfg.User)
		assert.Equal(t, 1, cfg.DB)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, 5*time.Second, cfg.DialTimeout)
		assert.Equal(t, 10*time.Second, cfg.TimeoutRedis)
		assert.Equal(t, ":8080", cfg.AddressHTTP)
		assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
		assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
		assert.Equal(t, "123456:test-token", cfg.BotToken)
		assert.Equal(t, "https://bot.example.com", cfg.WebhookBase)
		assert.Equal(t, "hook_secret", cfg.WebhookSecret)
		assert.Equal(t, "pplx-test-key", cfg.APIKey)
		assert.Equal(t, "sonar-pro", cfg.Model)
		assert.Equal(t, 60*time.Second, cfg.TimeoutGen)
		assert.Equal(t, "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N", cfg.Wallet)
		assert.Equal(t, 5.0, cfg.MonthlyPriceTON)
		assert.Equal(t, 0.5, cfg.PerGenPriceTON)
		assert.Equal(t, 30, cfg.ProDays)
		assert.Equal(t, 3, cfg.FreeDaily)
	})

	assert.Empty(t, output)
	assert.False(t, panicked)
}

func TestConfig_DefaultValues(t *testing.T) {
	// Минимальный конфиг, остальное должно заполниться значениями по умолчанию
	configContent := `
env: test
redis_connection:
  addressredis: "localhost:6379"
telegram:
  bot_token: "123456:test-token"
perplexity:
  api_key: "pplx-test-key"
ton:
  wallet: "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"
`
	writeTempConfig(t, configContent)

	output, panicked := captureOutput(func() {
		cfg := MustLoad()

		assert.Equal(t, ":8080", cfg.AddressHTTP)
		assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
		assert.Equal(t, "https://api.perplexity.ai/chat/completions", cfg.APIURL)
		assert.Equal(t, "sonar-pro", cfg.Model)
		assert.Equal(t, "https://cataas.com/cat", cfg.FallbackURL)
		assert.Equal(t, "https://tonapi.io", cfg.ExplorerAPI)
		assert.Equal(t, 5.0, cfg.MonthlyPriceTON)
		assert.Equal(t, 0.5, cfg.PerGenPriceTON)
		assert.Equal(t, 30, cfg.ProDays)
		assert.Equal(t, 15*time.Second, cfg.TimeoutLedger)
		assert.Equal(t, 3, cfg.FreeDaily)
	})

	assert.Empty(t, output)
	assert.False(t, panicked)
}
