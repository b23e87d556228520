// Package smtp отправляет письма через SMTP-сервер с STARTTLS и PLAIN-аутентификацией.
package smtp

import (
	"context"
	"io"
)

// Client часть *smtp.Client, нужная для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает аутентифицированные SMTP-сессии.
type TransportInterface interface {
	Connect(ctx context.Context) (Client, error)
	GetSMTPUser() string
}
