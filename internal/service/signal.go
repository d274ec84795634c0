package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openprofile/openprofile"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event openprofile.ProfileEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime relays profile events for the requested channels until ctx
// is cancelled. New channel lists on input replace the current
// subscription.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- openprofile.ProfileEvent) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case channels, ok := <-input:
			if !ok {
				return
			}
			if err := pubsub.Unsubscribe(ctx); err != nil {
				slog.ErrorContext(ctx, "unsubscribe failed",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
			}
			if len(channels) == 0 {
				continue
			}
			if err := pubsub.Subscribe(ctx, channels...); err != nil {
				slog.ErrorContext(ctx, "subscribe failed",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event openprofile.ProfileEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "malformed event payload",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
