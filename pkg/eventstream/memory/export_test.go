package memory

import "github.com/the-dev-tools/contextmap/pkg/eventstream"

// WaitMonitors blocks until every context monitor of s has returned.
func WaitMonitors[Topic any, Payload any](s eventstream.SyncStreamer[Topic, Payload]) {
	s.(*streamer[Topic, Payload]).monitors.Wait()
}
