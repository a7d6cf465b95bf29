package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/observability"
)

// ErrMalformed marks a message that can never be processed and must not be redelivered.
var ErrMalformed = errors.New("malformed message")

type StatusChangeHandler func(ctx context.Context, change models.StatusChange) error

type Consumer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewConsumer(natsURL string) (*Consumer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Consumer{nc: nc, js: js}, nil
}

// DecodeStatusChange parses a published change.
func DecodeStatusChange(data []byte) (models.StatusChange, error) {
	var c models.StatusChange
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if c.ModelID == 0 || len(c.Subparts) == 0 {
		return c, fmt.Errorf("%w: status change without model or subparts", ErrMalformed)
	}
	return c, nil
}

// ConsumeStatusChanges starts consuming the PARTS stream.
// workerCount determines how many goroutines process messages concurrently.
func (c *Consumer) ConsumeStatusChanges(ctx context.Context, consumerName string, handler StatusChangeHandler, workerCount int) error {
	if workerCount < 1 {
		workerCount = 1
	}

	stream, err := c.js.Stream(ctx, PartsStreamName)
	if err != nil {
		return fmt.Errorf("get stream %s: %w", PartsStreamName, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		FilterSubject: StatusSubjectBase + ".>",
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", consumerName, err)
	}

	msgCh := make(chan jetstream.Msg, workerCount*2)

	// Start consumer fetch loop
	go func() {
		defer close(msgCh)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			batch, err := cons.Fetch(workerCount, jetstream.FetchMaxWait(5*time.Second))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("fetch status changes error", "error", err)
				time.Sleep(time.Second)
				continue
			}

			for msg := range batch.Messages() {
				select {
				case msgCh <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	// Start workers
	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			for msg := range msgCh {
				settle(ctx, msg, handler, workerID)
			}
		}(i)
	}

	slog.Info("status change consumer started", "consumer", consumerName, "workers", workerCount)
	return nil
}

func settle(ctx context.Context, msg jetstream.Msg, handler StatusChangeHandler, workerID int) {
	change, err := DecodeStatusChange(msg.Data())
	if err == nil {
		err = handler(ctx, change)
	}

	var ackErr error
	switch {
	case err == nil:
		ackErr = msg.Ack()
	case errors.Is(err, ErrMalformed):
		slog.Error("dropping status change", "worker", workerID, "error", err, "subject", msg.Subject())
		observability.AuditEventsProcessed.WithLabelValues("malformed").Inc()
		ackErr = msg.Term()
	default:
		slog.Error("process status change error", "worker", workerID, "error", err, "subject", msg.Subject())
		ackErr = msg.Nak()
	}
	// An unacknowledged message comes back after AckWait.
	if ackErr != nil {
		slog.Warn("settle status change failed", "worker", workerID, "subject", msg.Subject(), "error", ackErr)
	}
}

func (c *Consumer) Close() {
	c.nc.Close()
}
