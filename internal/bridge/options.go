package bridge

import (
	"os"
	"time"
)

// Options configures a Bridge, following the teacher repo's
// option-struct-with-setDefaults convention
// (internal/service/channel_summary.go's SummaryOptions).
type Options struct {
	// BulkSize caps how many buffered items a single Getter request
	// drains in one reply. Default 10 (spec.md bulk_size).
	BulkSize int
	// AddrDir is the directory the channel's <channel>.url address
	// file is written to and read from. Default is the process's
	// working directory, matching the source's use of os.getcwd().
	AddrDir string
	// PollInterval bounds how often the relay re-checks the buffer
	// while it is empty (before answering a Getter request) or at
	// HighWaterMark (before reading more Put deliveries). Default 50ms.
	PollInterval time.Duration
	// ListenHost is the interface the bridge's sockets bind on, and the
	// host published in the address file. Default is the result of
	// getHostIP(), matching the source's practice of publishing a
	// routable address rather than the bind wildcard.
	ListenHost string
	// Linger bounds how long Close waits for the buffer to drain before
	// tearing down the sockets. Default 250ms (spec.md linger).
	Linger time.Duration
	// HighWaterMark caps how many items the relay buffers before it
	// stops draining the input socket, applying backpressure to
	// Putters. 0 means unbounded (spec.md high_water_mark).
	HighWaterMark int
}

func (o *Options) setDefaults() {
	if o.BulkSize <= 0 {
		o.BulkSize = 10
	}
	if o.AddrDir == "" {
		if wd, err := os.Getwd(); err == nil {
			o.AddrDir = wd
		} else {
			o.AddrDir = "."
		}
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 50 * time.Millisecond
	}
	if o.ListenHost == "" {
		o.ListenHost = getHostIP()
	}
	if o.Linger <= 0 {
		o.Linger = 250 * time.Millisecond
	}
	// HighWaterMark's zero value is already its documented default
	// (unbounded), so there is nothing to overwrite here.
}
