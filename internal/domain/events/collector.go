package events

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/matchpulse/internal/domain/model"
	"github.com/okian/matchpulse/pkg/logger"
	"github.com/okian/matchpulse/pkg/metrics"
)

// defaultWindowMS is the half-width of the collection window around the
// render timestamp.
const defaultWindowMS = 500

// Collector walks a monotonic cursor over a time-ordered event list and
// emits each valid event exactly once when its normalized time falls inside
// the window around the render timestamp.
type Collector struct {
	mu       sync.Mutex
	timeline []model.Event
	cursor   int
	ledger   *Ledger
	windowMS int64
	lastSeen int64 // newest normalized event time ever added
	log      logger.Logger
}

// CollectorOption applies a configuration option to the Collector.
type CollectorOption func(*Collector)

// WithWindow sets the half-width of the collection window in milliseconds.
func WithWindow(ms int64) CollectorOption {
	return func(c *Collector) {
		if ms > 0 {
			c.windowMS = ms
		}
	}
}

// WithLedger sets the dedup ledger.
func WithLedger(l *Ledger) CollectorOption {
	return func(c *Collector) {
		if l != nil {
			c.ledger = l
		}
	}
}

// WithLogger sets the collector's logger.
func WithLogger(log logger.Logger) CollectorOption {
	return func(c *Collector) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCollector creates an event window collector.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		windowMS: defaultWindowMS,
		ledger:   NewLedger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add normalizes raw events and inserts them into the timeline, keeping it
// ordered by normalized time. An event landing behind the cursor stays in the
// already-walked region; without the cursor adjustment the insertion would
// shift the newest walked event back into the un-walked region.
func (c *Collector) Add(raw []model.RawEvent) {
	if len(raw) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range raw {
		e := r.Normalize()
		i := sort.Search(len(c.timeline), func(i int) bool {
			return c.timeline[i].TimeMS > e.TimeMS
		})
		c.timeline = append(c.timeline, model.Event{})
		copy(c.timeline[i+1:], c.timeline[i:])
		c.timeline[i] = e
		if i < c.cursor {
			c.cursor++
		}
		if e.TimeMS > c.lastSeen {
			c.lastSeen = e.TimeMS
		}
	}
}

// Load replaces the timeline wholesale (bulk replay ingestion) and rewinds
// the cursor and ledger.
func (c *Collector) Load(raw []model.RawEvent) {
	c.mu.Lock()
	c.timeline = c.timeline[:0]
	c.cursor = 0
	c.lastSeen = 0
	c.ledger.Reset()
	c.mu.Unlock()
	c.Add(raw)
}

// Collect advances the cursor up to renderTime+window and returns every
// novel, valid event inside [renderTime-window, renderTime+window].
func (c *Collector) Collect(ctx context.Context, renderTimeMS int64) []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []model.Event
	lo := renderTimeMS - c.windowMS
	hi := renderTimeMS + c.windowMS

	for c.cursor < len(c.timeline) && c.timeline[c.cursor].TimeMS <= hi {
		e := c.timeline[c.cursor]
		c.cursor++

		if e.TimeMS < lo {
			continue
		}
		if !e.Valid() {
			metrics.RecordEventInvalid()
			continue
		}
		if c.ledger.SeenAndRecord(ctx, e.Key()) {
			metrics.RecordEventDuplicate()
			if c.log != nil {
				c.log.Debug(ctx, "duplicate event suppressed",
					logger.String("key", e.Key()),
				)
			}
			continue
		}
		metrics.RecordEventEmitted()
		out = append(out, e)
	}
	metrics.UpdateLedgerSize(c.ledger.Size())
	return out
}

// LastEventTime returns the newest normalized event time ever added, used by
// seek to detect backward scrubs.
func (c *Collector) LastEventTime() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Rewind resets the cursor and the ledger but keeps the timeline. Used on
// playhead regression beyond the scrub threshold.
func (c *Collector) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = 0
	c.ledger.Reset()
}

// Reset discards the timeline, cursor and ledger.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeline = c.timeline[:0]
	c.cursor = 0
	c.lastSeen = 0
	c.ledger.Reset()
}

// LedgerSize returns the number of identity keys currently retained.
func (c *Collector) LedgerSize() int {
	return c.ledger.Size()
}

// Pending returns the number of timeline events not yet passed by the cursor.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timeline) - c.cursor
}
