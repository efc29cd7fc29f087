package websocket

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	EventChannelPrefix = "chat-widget:events:"
	IntentChannel      = "chat-widget:intents"
)

// EventChannel is the Redis channel carrying a tenant's host events.
func EventChannel(tenantKey string) string {
	return EventChannelPrefix + tenantKey
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, tenantKey string, event HostEvent) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishEvent(ctx context.Context, tenantKey string, event HostEvent) error {
	if tenantKey == "" {
		return errors.New("websocket publish: tenant key required")
	}
	if p == nil || p.client == nil {
		return errors.New("websocket publish: redis client not initialised")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "websocket publish: marshal payload")
	}

	if err := p.client.Publish(ctx, EventChannel(tenantKey), string(payload)).Err(); err != nil {
		return errors.Wrap(err, "websocket publish: redis publish")
	}
	return nil
}

// NewRedisClient connects to the chat Redis instance.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}
