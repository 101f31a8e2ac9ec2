package events

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/actionsum/activitymon/internal/models"
)

// DefaultRedisChannel is used when no channel is configured.
const DefaultRedisChannel = "activitymon:" + ActivityUpdate

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes events on a redis pub/sub channel for consumers
// outside the process.
type RedisSink struct {
	client  publisher
	closer  func() error
	channel string
}

// NewRedisSink connects lazily to redisURL (redis://[:password@]host[:port][/db]).
func NewRedisSink(redisURL, channel string) (*RedisSink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	if channel == "" {
		channel = DefaultRedisChannel
	}
	client := redis.NewClient(opts)
	return &RedisSink{client: client, closer: client.Close, channel: channel}, nil
}

func (r *RedisSink) Name() string {
	return "redis"
}

// Channel returns the pub/sub channel name.
func (r *RedisSink) Channel() string {
	return r.channel
}

func (r *RedisSink) Deliver(ctx context.Context, sample models.Sample) error {
	data, err := json.Marshal(Event{Name: ActivityUpdate, Payload: sample})
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish to %s", r.channel)
	}
	return nil
}

// Close releases the redis connection pool.
func (r *RedisSink) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
