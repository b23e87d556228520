// Package sender отправляет пользователям письма-напоминания о списаниях.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Counter счётчик отправленных или неудачных писем.
type Counter interface {
	Inc()
}

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	sent      Counter
	failed    Counter
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(transport smtp.TransportInterface, sent, failed Counter, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		sent:      sent,
		failed:    failed,
		log:       log,
	}
}

// SendBillingReminder разбирает models.BillingReminder из body и отправляет письмо владельцу подписки.
func (s *Service) SendBillingReminder(ctx context.Context, body []byte) error {
	const op = "sender.SendBillingReminder"

	var message models.BillingReminder
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, errors.Join(rabbitmq.ErrDiscard, err))
	}
	if message.Email == "" {
		return fmt.Errorf("%s: %w", op, errors.Join(rabbitmq.ErrDiscard, models.ErrInvalidEmail))
	}

	subject := fmt.Sprintf("Завтра списание за %s", message.ServiceName)
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\n"+
		"Завтра, %s, по подписке %s будет списано %d (%s).\n\n"+
		"Проверьте, что на выбранном способе оплаты достаточно средств.",
		message.UserName, message.BillingDate, message.ServiceName, message.Amount, cycleName(message.BillingCycle))

	if err := s.sendEmail(ctx, []string{message.Email}, subject, bodyText); err != nil {
		s.failed.Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.sent.Inc()
	return nil
}

func cycleName(cycle string) string {
	if cycle == models.BillingCycleYearly.String() {
		return "ежегодно"
	}
	return "ежемесячно"
}

func (s *Service) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err = client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		_ = wc.Close()
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Warn("failed to quit SMTP client", sl.Err(err))
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
