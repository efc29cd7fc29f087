package websocket

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// IntentSubscriber feeds visibility intents published on IntentChannel into the hub.
type IntentSubscriber struct {
	client *redis.Client
	hub    *Hub
	logger zerolog.Logger
}

func NewIntentSubscriber(client *redis.Client, hub *Hub, logger zerolog.Logger) *IntentSubscriber {
	return &IntentSubscriber{
		client: client,
		hub:    hub,
		logger: logger.With().Str("component", "intent_subscriber").Logger(),
	}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (s *IntentSubscriber) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, IntentChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribe to intents")
	}
	s.logger.Info().Str("channel", IntentChannel).Msg("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("intent subscription closed")
			}
			intent, err := decodeIntent(msg.Payload)
			if err != nil {
				s.logger.Warn().Err(err).Str("payload", msg.Payload).Msg("dropping intent")
				countIntent("invalid")
				continue
			}
			if !s.hub.Route(ctx, intent) {
				return nil
			}
		}
	}
}

func decodeIntent(payload string) (IntentMessage, error) {
	var intent IntentMessage
	if err := json.Unmarshal([]byte(payload), &intent); err != nil {
		return IntentMessage{}, errors.Wrap(err, "decode intent")
	}
	if intent.SessionID == "" {
		return IntentMessage{}, errors.New("intent without sessionId")
	}
	return intent, nil
}
