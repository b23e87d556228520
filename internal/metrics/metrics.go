// Package metrics собирает метрики Prometheus: HTTP запросы и напоминания о списаниях.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "subscription_tracker"

// Collector хранит метрики сервиса.
type Collector struct {
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	RemindersPublished prometheus.Counter
	RemindersSent      prometheus.Counter
	RemindersFailed    prometheus.Counter
}

// NewCollector создаёт Collector и регистрирует метрики в reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Количество HTTP запросов по маршруту, методу и статусу.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность обработки HTTP запросов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RemindersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_published_total",
			Help:      "Опубликованные напоминания о завтрашних списаниях.",
		}),
		RemindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Отправленные письма-напоминания.",
		}),
		RemindersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Письма-напоминания, которые не удалось отправить.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.RemindersPublished,
		c.RemindersSent,
		c.RemindersFailed,
	)
	return c
}

// ObserveHTTP записывает результат обработки запроса.
func (c *Collector) ObserveHTTP(route, method string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Handler возвращает обработчик для сбора метрик Prometheus.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
