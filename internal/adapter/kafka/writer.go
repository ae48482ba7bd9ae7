package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/couchcryptid/wire-resistivity-etl/internal/config"
	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes derived samples to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    batchSize,
		WriteTimeout: cfg.KafkaTimeout,
	}
	return newWriter(w, cfg.KafkaTimeout, logger)
}

func newWriter(w messageWriter, timeout time.Duration, logger *slog.Logger) *Writer {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-sink",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Writer{writer: w, breaker: breaker, timeout: timeout, logger: logger}
}

// batchSize bounds the number of messages per WriteMessages call.
const batchSize = 100

// Load publishes every valid sample in batches and returns how many were
// written. Samples with non-numeric fields are skipped. Publishing stops at
// the first failed batch.
func (w *Writer) Load(ctx context.Context, samples []domain.Sample) (int, error) {
	msgs := make([]kafkago.Message, 0, len(samples))
	skipped := 0
	for _, s := range samples {
		if !s.Valid() {
			skipped++
			continue
		}
		msg, err := serializeToMessage(s)
		if err != nil {
			return 0, err
		}
		msgs = append(msgs, msg)
	}
	if skipped > 0 {
		w.logger.Debug("skipping invalid samples for sink", "count", skipped)
	}

	written := 0
	for start := 0; start < len(msgs); start += batchSize {
		end := min(start+batchSize, len(msgs))
		if err := w.writeBatch(ctx, msgs[start:end]); err != nil {
			return written, fmt.Errorf("publish samples %d-%d: %w", start, end-1, err)
		}
		written += end - start
	}
	return written, nil
}

func (w *Writer) writeBatch(ctx context.Context, msgs []kafkago.Message) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	_, err := w.breaker.Execute(func() (interface{}, error) {
		return nil, w.writer.WriteMessages(ctx, msgs...)
	})
	return err
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Sample into a Kafka message.
func serializeToMessage(s domain.Sample) (kafkago.Message, error) {
	out, err := domain.SerializeSample(s)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   out.Key,
		Value: out.Value,
		Headers: []kafkago.Header{
			{Key: "mode", Value: []byte(out.Headers["mode"])},
			{Key: "processed_at", Value: []byte(out.Headers["processed_at"])},
		},
	}, nil
}
