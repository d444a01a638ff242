package pipeline

import "github.com/artificial-agent/ros-to-huggingface/internal/config"

// Window is one topic's sampling policy: an inclusive start index, an
// exclusive end bound, and a throttle stride.
type Window struct {
	Start  int
	End    config.Bound
	Stride int
}

// WindowFor builds the sampling window from a schema entry.
func WindowFor(e config.Entry) Window {
	return Window{Start: e.Start, End: e.End, Stride: e.Stride}
}

// Keep reports whether the message at cursor is sampled. Cursors count every
// message on the topic, so "every Nth" is defined over arrivals, not over
// previously kept messages.
func (w Window) Keep(cursor int) bool {
	return cursor >= w.Start && w.End.Contains(cursor) && cursor%w.Stride == 0
}
