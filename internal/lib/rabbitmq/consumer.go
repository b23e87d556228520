package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// ErrDiscard помечает сообщение, которое бессмысленно обрабатывать повторно.
// Такое сообщение отклоняется без возврата в очередь.
var ErrDiscard = errors.New("rabbitmq: discard message")

// ConsumeChannel часть *amqp.Channel, нужная для чтения очереди.
type ConsumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ConsumerMessage читает очередь queueName и передает тело каждого сообщения в handler.
// Успешно обработанные сообщения подтверждаются, при ошибке сообщение
// возвращается в очередь, а при ErrDiscard отклоняется. Блокируется до отмены ctx или закрытия канала
// доставки и дожидается завершения запущенных обработчиков.
func ConsumerMessage(ctx context.Context, ch ConsumeChannel, queueName string, log *slog.Logger,
	handler func(context.Context, []byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, maxInFlight)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-delivery:
			if !ok {
				return nil
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if nackErr := d.Nack(false, true); nackErr != nil {
					log.Error("failed to nack message", sl.Err(nackErr))
				}
				return nil
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				err := handler(ctx, d.Body)
				if errors.Is(err, ErrDiscard) {
					log.Error("message discarded", slog.Uint64("delivery_tag", d.DeliveryTag), sl.Err(err))
					if rejErr := d.Reject(false); rejErr != nil {
						log.Error("failed to reject message", sl.Err(rejErr))
					}
					return
				}
				if err != nil {
					log.Warn("message handling failed, requeue", slog.Uint64("delivery_tag", d.DeliveryTag), sl.Err(err))
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		}
	}
}
