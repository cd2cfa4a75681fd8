package event

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel observers subscribe to.
const Channel = "rps:events"

// Emitter receives one call per state transition. Emission is
// fire-and-forget from the engine's point of view: a failing sink must
// not fail the transition.
type Emitter interface {
	Emit(ctx context.Context, payload any)
}

// LogEmitter writes every event to the structured log.
type LogEmitter struct {
	logger *slog.Logger
}

func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger.With("component", "events")}
}

func (that *LogEmitter) Emit(_ context.Context, payload any) {
	that.logger.Info(Name(payload), "event", payload)
}

// RedisEmitter publishes events as JSON envelopes over pub/sub so
// external indexers can tail transitions.
type RedisEmitter struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisEmitter(client *redis.Client, logger *slog.Logger) *RedisEmitter {
	return &RedisEmitter{
		client: client,
		logger: logger.With("component", "events"),
	}
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (that *RedisEmitter) Emit(ctx context.Context, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal event", "type", Name(payload), "error", err)
		return
	}

	message, err := json.Marshal(envelope{Type: Name(payload), Payload: raw})
	if err != nil {
		that.logger.Error("failed to marshal envelope", "type", Name(payload), "error", err)
		return
	}

	if err = that.client.Publish(ctx, Channel, message).Err(); err != nil {
		that.logger.Error("failed to publish event", "type", Name(payload), "error", err)
	}
}

// MultiEmitter fans one event out to several sinks.
type MultiEmitter []Emitter

func (that MultiEmitter) Emit(ctx context.Context, payload any) {
	for _, emitter := range that {
		emitter.Emit(ctx, payload)
	}
}
