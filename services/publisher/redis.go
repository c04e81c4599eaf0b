package publisher

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// MessageField is the stream entry field holding the base64-encoded JSON payload
const MessageField = "b64_result"

// RedisPublisher implements Publisher using Redis streams, one stream per terminal
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, streamPrefix string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		streamPrefix:    streamPrefix,
		streamMaxLength: streamMaxLength,
	}
}

// Ping checks that Redis is reachable
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Stream returns the stream name for terminal
func (p *RedisPublisher) Stream(terminal string) string {
	return p.streamPrefix + ":" + terminal
}

// Publish appends a message to the terminal's stream
// The message is base64 encoded before publishing
func (p *RedisPublisher) Publish(ctx context.Context, terminal string, message []byte) error {
	args := &redis.XAddArgs{
		Stream: p.Stream(terminal),
		Values: map[string]interface{}{
			"terminal":   terminal,
			MessageField: base64.StdEncoding.EncodeToString(message),
		},
	}
	if p.streamMaxLength > 0 {
		args.MaxLen = int64(p.streamMaxLength)
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", args.Stream, err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	var cursor uint64
	for {
		streams, next, err := p.client.Scan(ctx, cursor, p.streamPrefix+":*", 100).Result()
		if err != nil {
			return err
		}
		for _, stream := range streams {
			if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
				return fmt.Errorf("failed to trim %s: %w", stream, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
