package publisher

import "context"

// Publisher represents a service for publishing schedule results
type Publisher interface {
	// Publish publishes a message to the stream of one terminal
	Publish(ctx context.Context, terminal string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
