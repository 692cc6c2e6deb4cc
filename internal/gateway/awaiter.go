package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	outcomeChannelPrefix = "rental:payment:outcome:"
	outcomeKeyPrefix     = "rental:payment:result:"
	eventKeyPrefix       = "rental:webhook:event:"
)

// Outcome is the final state of a gateway transaction as reported by a webhook.
type Outcome struct {
	Reference  string    `json:"reference"`
	GatewayRef string    `json:"gateway_ref"`
	Succeeded  bool      `json:"succeeded"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}

// OutcomeBus connects the process waiting on a payment with the process receiving its webhook.
type OutcomeBus interface {
	Await(ctx context.Context, reference string) (Outcome, error)

	// Publish returns false when eventID was already seen.
	Publish(ctx context.Context, eventID string, outcome Outcome) (bool, error)
}

type redisOutcomeBus struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOutcomeBus(client *redis.Client, ttl time.Duration) OutcomeBus {
	return &redisOutcomeBus{client: client, ttl: ttl}
}

func (b *redisOutcomeBus) Await(ctx context.Context, reference string) (Outcome, error) {
	sub := b.client.Subscribe(ctx, outcomeChannelPrefix+reference)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return Outcome{}, fmt.Errorf("subscribe to payment outcome: %w", err)
	}

	// The webhook may have landed before the subscription was live.
	stored, err := b.client.Get(ctx, outcomeKeyPrefix+reference).Result()
	switch {
	case err == nil:
		return decodeOutcome(stored)
	case !errors.Is(err, redis.Nil):
		return Outcome{}, fmt.Errorf("read payment outcome: %w", err)
	}

	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case msg, ok := <-sub.Channel():
		if !ok {
			return Outcome{}, errors.New("payment outcome subscription closed")
		}
		return decodeOutcome(msg.Payload)
	}
}

// Publish stores and announces outcome, then records eventID. The event id is
// written last so a delivery that fails partway is retried in full instead
// of being acknowledged as a duplicate. Concurrent duplicates may both
// announce; the outcome is the same and Await takes the first.
func (b *redisOutcomeBus) Publish(ctx context.Context, eventID string, outcome Outcome) (bool, error) {
	eventKey := eventKeyPrefix + eventID

	seen, err := b.client.Exists(ctx, eventKey).Result()
	if err != nil {
		return false, err
	}
	if seen > 0 {
		return false, nil
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		return false, err
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, outcomeKeyPrefix+outcome.Reference, payload, b.ttl)
		pipe.Publish(ctx, outcomeChannelPrefix+outcome.Reference, payload)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store payment outcome: %w", err)
	}

	fresh, err := b.client.SetNX(ctx, eventKey, outcome.Reference, b.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("record webhook event: %w", err)
	}
	return fresh, nil
}

func decodeOutcome(payload string) (Outcome, error) {
	var o Outcome
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		return Outcome{}, fmt.Errorf("decode payment outcome: %w", err)
	}
	return o, nil
}
