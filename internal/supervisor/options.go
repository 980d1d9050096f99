package supervisor

import "time"

// Options configures the timing of a supervised Process, following the
// teacher repo's option-struct-with-setDefaults convention
// (internal/service/channel_summary.go's SummaryOptions).
type Options struct {
	// StartTimeout bounds how long Start waits for the child's alive
	// signal. Default 5s (spec.md _START_TIMEOUT).
	StartTimeout time.Duration
	// StopTimeout bounds each phase of Stop (watcher join, graceful
	// wait, forceful wait); the worst-case wall time for Stop is
	// 3*StopTimeout. Default 5s (spec.md _STOP_TIMEOUT).
	StopTimeout time.Duration
	// WatchInterval is the poll timeout the watcher uses on both
	// sides of the lifeline. Default 500ms (spec.md _WATCH_TIMEOUT).
	WatchInterval time.Duration
}

func (o *Options) setDefaults() {
	if o.StartTimeout <= 0 {
		o.StartTimeout = 5 * time.Second
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = 5 * time.Second
	}
	if o.WatchInterval <= 0 {
		o.WatchInterval = 500 * time.Millisecond
	}
}
