package statusline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cptspacemanspiff/dwmstatus/internal/collector"
)

// DefaultSegmentTimeout bounds a single segment within one tick.
const DefaultSegmentTimeout = 800 * time.Millisecond

// Options configures an Assembler.
type Options struct {
	Capacity int           // line byte budget, DefaultCapacity when zero
	Timeout  time.Duration // per-segment deadline, DefaultSegmentTimeout when zero
	Palette  Palette
}

// Snapshot is the outcome of the most recent tick.
type Snapshot struct {
	Line      string    `json:"line"`
	Segments  []string  `json:"segments"`
	Truncated bool      `json:"truncated"`
	At        time.Time `json:"at"`
}

// Assembler renders all segments once per tick and joins them into a padded
// line.
type Assembler struct {
	segments []Segment
	capacity int
	timeout  time.Duration
	palette  Palette
	log      *slog.Logger

	// Tick is serialised so the width history sees lines in order.
	tickMu  sync.Mutex
	history WidthHistory

	mu   sync.RWMutex
	snap Snapshot
}

// NewAssembler creates an assembler over segments, rendered in the given
// order.
func NewAssembler(segments []Segment, opts Options, logger *slog.Logger) *Assembler {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSegmentTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		segments: segments,
		capacity: opts.Capacity,
		timeout:  opts.Timeout,
		palette:  opts.Palette,
		log:      logger,
	}
}

type segmentResult struct {
	frag string
	err  error
}

// Tick renders every segment concurrently, each under its own deadline, and
// returns the assembled line. Segments that fail or miss the deadline are
// left out.
func (a *Assembler) Tick(ctx context.Context) string {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()

	results := make([]segmentResult, len(a.segments))
	var g errgroup.Group
	for i, seg := range a.segments {
		i, seg := i, seg
		g.Go(func() error {
			results[i] = a.render(ctx, seg)
			return nil
		})
	}
	g.Wait()

	line := NewLine(a.capacity)
	var rendered []string
	for i, seg := range a.segments {
		r := results[i]
		if r.err != nil {
			level := slog.LevelWarn
			if errors.Is(r.err, collector.ErrUnavailable) {
				level = slog.LevelDebug
			}
			a.log.Log(ctx, level, "segment skipped", "topic", seg.Name, "err", r.err)
			continue
		}
		line.Append(a.palette.Switch(seg.Color))
		line.Append(r.frag)
		rendered = append(rendered, seg.Name)
	}
	if line.Truncated() {
		a.log.Warn("status line truncated", "capacity", a.capacity, "segments", len(rendered))
	}

	out := string(a.history.Pad(line.Bytes(), a.capacity))

	a.mu.Lock()
	a.snap = Snapshot{Line: out, Segments: rendered, Truncated: line.Truncated(), At: time.Now()}
	a.mu.Unlock()
	return out
}

// render runs one segment and gives up when its deadline passes, even if
// the segment itself ignores ctx. Segment.Timeout overrides the assembler's
// per-segment timeout.
func (a *Assembler) render(ctx context.Context, seg Segment) segmentResult {
	timeout := a.timeout
	if seg.Timeout > 0 {
		timeout = seg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan segmentResult, 1)
	go func() {
		frag, err := seg.Render(ctx)
		ch <- segmentResult{frag: frag, err: err}
	}()

	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		return segmentResult{err: fmt.Errorf("%s: %w", seg.Name, ctx.Err())}
	}
}

// Snapshot returns the result of the last tick.
func (a *Assembler) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.snap
	s.Segments = append([]string(nil), a.snap.Segments...)
	return s
}
