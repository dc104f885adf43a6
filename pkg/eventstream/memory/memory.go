//nolint:revive // exported
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/the-dev-tools/contextmap/pkg/eventstream"
)

// defaultSubscriberBuffer covers a replayed script or a burst of remote
// updates arriving before the view drains its channel.
const defaultSubscriberBuffer = 1024

var ErrStreamerClosed = errors.New("eventstream: streamer closed")

type subscriber[Topic any, Payload any] struct {
	ctx    context.Context
	filter eventstream.TopicFilter[Topic]
	ch     chan eventstream.Event[Topic, Payload]
	closed atomic.Bool
}

type streamer[Topic any, Payload any] struct {
	mu          sync.RWMutex
	subscribers map[*subscriber[Topic, Payload]]struct{}
	buffer      int
	closed      atomic.Bool
	// done is closed by Shutdown and ends every context monitor.
	done     chan struct{}
	monitors sync.WaitGroup
}

type Option func(*options)

type options struct {
	buffer int
}

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// NewInMemorySyncStreamer returns a streamer that keeps subscribers in
// process memory.
func NewInMemorySyncStreamer[Topic any, Payload any](opts ...Option) eventstream.SyncStreamer[Topic, Payload] {
	o := options{buffer: defaultSubscriberBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	return &streamer[Topic, Payload]{
		subscribers: make(map[*subscriber[Topic, Payload]]struct{}),
		buffer:      o.buffer,
		done:        make(chan struct{}),
	}
}

func (s *streamer[Topic, Payload]) Publish(topic Topic, payloads ...Payload) {
	if s.closed.Load() || len(payloads) == 0 {
		return
	}

	s.mu.RLock()
	subs := make([]*subscriber[Topic, Payload], 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()

	for _, sub := range subs {
		if sub.closed.Load() || !sub.filter(topic) {
			continue
		}
		for _, payload := range payloads {
			s.trySend(sub, eventstream.Event[Topic, Payload]{Topic: topic, Payload: payload})
		}
	}
}

func (s *streamer[Topic, Payload]) Subscribe(
	ctx context.Context,
	filter eventstream.TopicFilter[Topic],
) (<-chan eventstream.Event[Topic, Payload], error) {
	if s.closed.Load() {
		return nil, ErrStreamerClosed
	}
	if filter == nil {
		filter = func(Topic) bool { return true }
	}

	sub := &subscriber[Topic, Payload]{
		ctx:    ctx,
		filter: filter,
		ch:     make(chan eventstream.Event[Topic, Payload], s.buffer),
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return nil, ErrStreamerClosed
	}
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()

	s.monitors.Add(1)
	go s.monitorContext(sub)

	return sub.ch, nil
}

func (s *streamer[Topic, Payload]) Shutdown() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	close(s.done)
	for sub := range s.subscribers {
		if sub.closed.CompareAndSwap(false, true) {
			close(sub.ch)
		}
	}
	s.subscribers = nil
}

func (s *streamer[Topic, Payload]) monitorContext(sub *subscriber[Topic, Payload]) {
	defer s.monitors.Done()
	select {
	case <-sub.ctx.Done():
		s.removeSubscriber(sub)
	case <-s.done:
	}
}

func (s *streamer[Topic, Payload]) removeSubscriber(sub *subscriber[Topic, Payload]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribers == nil {
		return
	}
	if _, ok := s.subscribers[sub]; !ok {
		return
	}
	delete(s.subscribers, sub)
	if sub.closed.CompareAndSwap(false, true) {
		close(sub.ch)
	}
}

func (s *streamer[Topic, Payload]) trySend(sub *subscriber[Topic, Payload], evt eventstream.Event[Topic, Payload]) {
	// The channel may be closed by a concurrent unsubscribe.
	defer func() {
		if r := recover(); r != nil {
			sub.closed.Store(true)
		}
	}()

	select {
	case sub.ch <- evt:
	default:
	}
}
