package sender

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
)

type MockTransport struct{ mock.Mock }

func (m *MockTransport) Connect(ctx context.Context) (smtp.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	return m.Called().String(0)
}

type MockSMTPClient struct{ mock.Mock }

func (m *MockSMTPClient) Mail(from string) error { return m.Called(from).Error(0) }

func (m *MockSMTPClient) Rcpt(to string) error { return m.Called(to).Error(0) }

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Quit() error { return m.Called().Error(0) }

func (m *MockSMTPClient) Close() error { return m.Called().Error(0) }

// bufferWriter собирает текст письма.
type bufferWriter struct {
	bytes.Buffer
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

type counter struct{ n int }

func (c *counter) Inc() { c.n++ }

const reminderJSON = `{"subscription_id":"s1","user_id":"u1","email":"test@example.com","user_name":"Анна",` +
	`"service_name":"Netflix","amount":990,"billing_cycle":"monthly","billing_date":"2024-02-29"}`

func newTestService(tr *MockTransport, sent, failed *counter) *Service {
	return NewService(tr, sent, failed, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_SendBillingReminder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tr, client, w := new(MockTransport), new(MockSMTPClient), &bufferWriter{}
		tr.On("GetSMTPUser").Return("bot@example.com")
		tr.On("Connect", mock.Anything).Return(client, nil).Once()
		client.On("Mail", "bot@example.com").Return(nil).Once()
		client.On("Rcpt", "test@example.com").Return(nil).Once()
		client.On("Data").Return(w, nil).Once()
		client.On("Quit").Return(nil).Once()
		client.On("Close").Return(nil).Once()

		sent, failed := &counter{}, &counter{}
		err := newTestService(tr, sent, failed).SendBillingReminder(context.Background(), []byte(reminderJSON))
		require.NoError(t, err)

		body := w.String()
		assert.True(t, w.closed)
		assert.Contains(t, body, "To: test@example.com")
		assert.Contains(t, body, "Subject: =?utf-8?q?")
		assert.Contains(t, body, "Netflix")
		assert.Contains(t, body, "2024-02-29")
		assert.Contains(t, body, "990")
		assert.Equal(t, 1, sent.n)
		assert.Equal(t, 0, failed.n)
		client.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tr := new(MockTransport)
		err := newTestService(tr, &counter{}, &counter{}).SendBillingReminder(context.Background(), []byte("invalid json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error unmarshalling message")
		assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
		tr.AssertNotCalled(t, "Connect", mock.Anything)
	})

	t.Run("SMTP connection error", func(t *testing.T) {
		tr := new(MockTransport)
		tr.On("GetSMTPUser").Return("bot@example.com")
		tr.On("Connect", mock.Anything).Return(nil, errors.New("connection error")).Once()

		failed := &counter{}
		err := newTestService(tr, &counter{}, failed).SendBillingReminder(context.Background(), []byte(reminderJSON))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection error")
		assert.Equal(t, 1, failed.n)
	})

	t.Run("recipient rejected", func(t *testing.T) {
		tr, client := new(MockTransport), new(MockSMTPClient)
		tr.On("GetSMTPUser").Return("bot@example.com")
		tr.On("Connect", mock.Anything).Return(client, nil).Once()
		client.On("Mail", "bot@example.com").Return(nil).Once()
		client.On("Rcpt", "test@example.com").Return(errors.New("550 no such user")).Once()
		client.On("Close").Return(nil).Once()

		err := newTestService(tr, &counter{}, &counter{}).SendBillingReminder(context.Background(), []byte(reminderJSON))
		require.Error(t, err)
		client.AssertNotCalled(t, "Data")
	})
}
