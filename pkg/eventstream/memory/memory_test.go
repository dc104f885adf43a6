package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/contextmap/pkg/eventstream"
	"github.com/the-dev-tools/contextmap/pkg/eventstream/memory"
)

type change struct {
	Version int
}

func receive(t *testing.T, ch <-chan eventstream.Event[string, change]) eventstream.Event[string, change] {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "channel closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("did not receive event within timeout")
		return eventstream.Event[string, change]{}
	}
}

func TestPublishSubscribe(t *testing.T) {
	s := memory.NewInMemorySyncStreamer[string, change]()
	defer s.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, err := s.Subscribe(ctx, nil)
	require.NoError(t, err)
	only, err := s.Subscribe(ctx, func(topic string) bool { return topic == "proj-2" })
	require.NoError(t, err)

	s.Publish("proj-1", change{Version: 1})
	s.Publish("proj-2", change{Version: 2}, change{Version: 3})

	assert.Equal(t, 1, receive(t, all).Payload.Version)
	assert.Equal(t, 2, receive(t, all).Payload.Version)
	assert.Equal(t, 3, receive(t, all).Payload.Version)

	evt := receive(t, only)
	assert.Equal(t, "proj-2", evt.Topic)
	assert.Equal(t, 2, evt.Payload.Version)
	assert.Equal(t, 3, receive(t, only).Payload.Version)
}

func TestContextCancelClosesChannel(t *testing.T) {
	s := memory.NewInMemorySyncStreamer[string, change]()
	defer s.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Subscribe(ctx, nil)
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Publishing after the subscriber left must not panic.
	s.Publish("proj-1", change{Version: 1})
}

func TestFullBufferDropsEvents(t *testing.T) {
	s := memory.NewInMemorySyncStreamer[string, change](memory.WithBuffer(2))
	defer s.Shutdown()

	ch, err := s.Subscribe(context.Background(), nil)
	require.NoError(t, err)

	s.Publish("proj-1", change{Version: 1}, change{Version: 2}, change{Version: 3})
	assert.Len(t, ch, 2)
}

func TestShutdown(t *testing.T) {
	s := memory.NewInMemorySyncStreamer[string, change]()
	ch, err := s.Subscribe(context.Background(), nil)
	require.NoError(t, err)

	s.Shutdown()
	s.Shutdown()

	_, ok := <-ch
	assert.False(t, ok)

	_, err = s.Subscribe(context.Background(), nil)
	assert.ErrorIs(t, err, memory.ErrStreamerClosed)
}

func TestShutdownStopsContextMonitors(t *testing.T) {
	s := memory.NewInMemorySyncStreamer[string, change]()
	ctx := context.Background()
	for range 3 {
		_, err := s.Subscribe(ctx, nil)
		require.NoError(t, err)
	}

	s.Shutdown()

	done := make(chan struct{})
	go func() {
		memory.WaitMonitors(s)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("context monitors still running after shutdown")
	}
}
