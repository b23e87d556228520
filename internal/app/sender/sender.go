// Package sender собирает процесс отправки писем-напоминаний.
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	senderservice "github.com/magabrotheeeer/subscription-tracker/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	metricsServer *http.Server
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	var metricsServer *http.Server
	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsServer = &http.Server{Addr: cfg.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewService(transport, collector.RemindersSent, collector.RemindersFailed, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		metricsServer: metricsServer,
		logger:        logger,
	}, nil
}

// Run читает очередь напоминаний до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}()

	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("metrics server stopped", sl.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.metricsServer.Shutdown(shutdownCtx)
		}()
	}

	a.logger.Info("consuming billing reminders", slog.String("queue", rabbitmq.QueueBillingUpcoming))
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.QueueBillingUpcoming, a.logger, a.senderService.SendBillingReminder)
	if err != nil {
		a.logger.Error("failed to start billing reminder consumer", sl.Err(err))
		return err
	}
	a.logger.Info("shutting down sender service")
	return nil
}
