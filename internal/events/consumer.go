package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ConsumerConfig selects the subjects and queue group to consume.
type ConsumerConfig struct {
	SetSubject   string
	UnsetSubject string
	QueueGroup   string
	// HandleTimeout bounds the storage work of one event. Zero means no bound.
	HandleTimeout time.Duration
}

// Consumer routes NATS messages into an Adapter.
type Consumer struct {
	sub     *NATSSubscriber
	adapter *Adapter
	cfg     ConsumerConfig
}

// NewConsumer creates a Consumer. Empty subjects fall back to SubjectSet and SubjectUnset.
func NewConsumer(sub *NATSSubscriber, adapter *Adapter, cfg ConsumerConfig) *Consumer {
	if cfg.SetSubject == "" {
		cfg.SetSubject = SubjectSet
	}
	if cfg.UnsetSubject == "" {
		cfg.UnsetSubject = SubjectUnset
	}

	return &Consumer{sub: sub, adapter: adapter, cfg: cfg}
}

// Start subscribes to both subjects. Events are handled until ctx is done or Close is called.
func (c *Consumer) Start(ctx context.Context) error {
	routes := []struct {
		subject string
		handle  func(context.Context, []byte) bool
	}{
		{c.cfg.SetSubject, c.adapter.HandleSet},
		{c.cfg.UnsetSubject, c.adapter.HandleUnset},
	}

	for _, r := range routes {
		handle := r.handle
		subject := r.subject

		if _, err := c.sub.Subscribe(subject, c.cfg.QueueGroup, func(data []byte) {
			c.dispatch(ctx, subject, data, handle)
		}); err != nil {
			return err
		}

		log.Info().Str("subject", subject).Str("queue", c.cfg.QueueGroup).Msg("consuming replication events")
	}

	return nil
}

// Close stops consuming.
func (c *Consumer) Close() error {
	return c.sub.Close()
}

func (c *Consumer) dispatch(ctx context.Context, subject string, data []byte, handle func(context.Context, []byte) bool) {
	if ctx.Err() != nil {
		return
	}

	if c.cfg.HandleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.HandleTimeout)
		defer cancel()
	}

	logger := log.With().Str("eventID", uuid.NewString()).Str("subject", subject).Logger()
	handle(logger.WithContext(ctx), data)
}
