// Package audit emits action entries to an external audit store. The sink is
// fire-and-forget: a failed write is logged and swallowed, never surfaced to
// the business operation that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Entry describes one audited action with its before/after images and
// request context.
type Entry struct {
	Action     string
	Actor      string
	EntityType string
	EntityID   string
	Before     any
	After      any
	RequestID  string
	At         time.Time
}

// Sink records audit entries.
type Sink interface {
	Record(ctx context.Context, entry Entry)
}

type redisSink struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisSink writes entries to a redis stream via XADD. A nil client
// degrades to a no-op sink.
func NewRedisSink(client *redis.Client, stream string, logger *zap.Logger) Sink {
	return &redisSink{client: client, stream: stream, logger: logger}
}

func (s *redisSink) Record(ctx context.Context, entry Entry) {
	if s.client == nil {
		return
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	values := map[string]any{
		"action":      entry.Action,
		"actor":       entry.Actor,
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"request_id":  entry.RequestID,
		"at":          entry.At.Format(time.RFC3339Nano),
	}
	if entry.Before != nil {
		values["before"] = marshalImage(entry.Before)
	}
	if entry.After != nil {
		values["after"] = marshalImage(entry.After)
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{Stream: s.stream, Values: values}).Err(); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}

func marshalImage(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(buf)
}

type nopSink struct{}

// NewNopSink returns a sink that discards everything.
func NewNopSink() Sink { return nopSink{} }

func (nopSink) Record(context.Context, Entry) {}
