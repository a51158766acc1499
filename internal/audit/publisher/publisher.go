// Package publisher mirrors appended audit entries to a Kafka topic for the
// compliance/SIEM pipeline. The mirror is asynchronous and best-effort: the
// synchronous store append stays the source of truth, and a full buffer
// drops the oldest-style overload onto a counter instead of blocking the
// access gate.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"custodia/internal/domain"
)

const defaultBuffer = 1024

// Publisher buffers entries and produces them to Kafka in the background.
type Publisher struct {
	client *kgo.Client
	topic  string
	inbox  chan domain.Entry
	logger *slog.Logger

	dropped atomic.Int64
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBufferSize overrides the inbox capacity. Entries beyond it are
// dropped and counted rather than blocking the caller.
func WithBufferSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.inbox = make(chan domain.Entry, n)
		}
	}
}

// New connects a producer for the given brokers and topic.
func New(brokers []string, topic string, logger *slog.Logger, opts ...Option) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	p := &Publisher{
		client: client,
		topic:  topic,
		inbox:  make(chan domain.Entry, defaultBuffer),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// EnsureTopic creates the audit topic when it does not exist yet.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replicas int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopics(ctx, partitions, replicas, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Enqueue hands an entry to the background producer without blocking. When
// the buffer is full the entry is dropped and counted; the store already
// holds the authoritative record.
func (p *Publisher) Enqueue(entry domain.Entry) {
	select {
	case p.inbox <- entry:
	default:
		dropped := p.dropped.Add(1)
		if dropped%100 == 1 {
			p.logger.Warn("audit mirror buffer full, dropping entries",
				"dropped_total", dropped,
			)
		}
	}
}

// Dropped reports how many entries the mirror has discarded under overload.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// wireEntry is the JSON shape produced to the topic.
type wireEntry struct {
	ID           uint64    `json:"id"`
	Timestamp    time.Time `json:"ts"`
	Actor        string    `json:"actor"`
	ActorID      string    `json:"actor_id,omitempty"`
	Action       string    `json:"action"`
	Resource     string    `json:"resource"`
	ResourceKind string    `json:"resource_kind"`
	Status       string    `json:"status"`
	OriginAddr   string    `json:"origin_addr"`
	Details      string    `json:"details"`
}

// Run consumes the inbox until ctx is cancelled, producing one record per
// entry. Produce failures are logged and skipped; the mirror never retries
// into the gate's latency path.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-p.inbox:
			if err := p.produce(ctx, entry); err != nil {
				p.logger.Error("audit mirror produce failed",
					"entry_id", uint64(entry.ID),
					"error", err,
				)
			}
		}
	}
}

func (p *Publisher) produce(ctx context.Context, entry domain.Entry) error {
	wire := wireEntry{
		ID:           uint64(entry.ID),
		Timestamp:    entry.Timestamp,
		Actor:        entry.Actor,
		Action:       entry.Action,
		Resource:     entry.Resource,
		ResourceKind: string(entry.ResourceKind),
		Status:       string(entry.Status),
		OriginAddr:   entry.OriginAddr,
		Details:      entry.Details,
	}
	if !entry.ActorID.IsNil() {
		wire.ActorID = entry.ActorID.String()
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(strconv.FormatUint(wire.ID, 10)),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce entry: %w", err)
	}
	return nil
}

// Close flushes and releases the producer.
func (p *Publisher) Close() {
	p.client.Close()
}
