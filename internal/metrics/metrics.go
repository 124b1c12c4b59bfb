// Package metrics регистрирует prometheus-счётчики приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal счётчик попыток генерации по результату:
	// ok, refused, failed.
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kittygen_generations_total",
		Help: "Number of image generation attempts by result.",
	}, []string{"result"})

	// PaymentsVerifiedTotal счётчик подтверждённых платежей по типу
	// покупки: monthly, credit.
	PaymentsVerifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kittygen_payments_verified_total",
		Help: "Number of verified TON payments by purchase kind.",
	}, []string{"kind"})
)
