package notify

import (
	"context"
	"log/slog"
)

// Publisher sends a message to a topic. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
}

// LogPublisher writes messages to the log. It is the fallback when the
// primary transport is failing, and the primary when none is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, msg Message) error {
	p.logger.InfoContext(ctx, "change notification",
		"topic", topic,
		"entity", msg.Entity,
		"action", msg.Action,
		"id", msg.ID,
		"request_id", msg.RequestID,
	)
	return nil
}
