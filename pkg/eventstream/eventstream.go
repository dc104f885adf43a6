// Package eventstream fans project changes out to view subscribers.
package eventstream

import "context"

// SyncStreamer delivers payloads published under a topic to every subscriber
// whose filter accepts the topic.
type SyncStreamer[Topic any, Payload any] interface {
	// Subscribe returns a channel of events. The channel is closed when ctx
	// is done or the streamer shuts down.
	Subscribe(ctx context.Context, filter TopicFilter[Topic]) (<-chan Event[Topic, Payload], error)

	// Publish never blocks. Events are dropped for subscribers whose buffer
	// is full.
	Publish(topic Topic, payloads ...Payload)

	Shutdown()
}

type Event[Topic any, Payload any] struct {
	Topic   Topic
	Payload Payload
}

// TopicFilter reports whether a subscriber wants events for topic. A nil
// filter accepts everything.
type TopicFilter[Topic any] func(Topic) bool
