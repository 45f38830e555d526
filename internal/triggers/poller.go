package triggers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/logging"
)

// dedupeCapacity is the number of delivered item IDs remembered per poller.
// Items older than the watermark are filtered by time; the ring only covers
// items sharing the watermark timestamp or arriving out of order within the
// lookback window.
const dedupeCapacity = 512

// PollerOptions configures a Poller.
type PollerOptions struct {
	// Name is the configured trigger name, used in logs and health output
	Name string

	// Account is the Google account the source polls with
	Account string

	// Interval between polls. Ignored when Cron is set.
	Interval time.Duration

	// Cron is an optional cron expression (standard 5 field form) that
	// replaces the fixed interval.
	Cron string

	// MaxConsecutiveErrors marks the poller unhealthy once exceeded
	MaxConsecutiveErrors int

	// RateLimit caps polls per second across manual and scheduled polls.
	// Zero means no limit.
	RateLimit rate.Limit

	// Retry controls per-poll retries against the source
	Retry engine.RetryConfig

	// Logger is the base logger, required
	Logger *slog.Logger

	// Metrics records poll and event counters when set
	Metrics *instrumentation.Metrics
}

func (o *PollerOptions) defaults() {
	if o.Interval <= 0 {
		o.Interval = time.Minute
	}
	if o.MaxConsecutiveErrors <= 0 {
		o.MaxConsecutiveErrors = 5
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = engine.DefaultRetryConfig()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Poller periodically polls a Source and delivers new items to a Handler.
//
// A watermark tracks the timestamp of the last delivered item and never
// regresses. Each poll asks the source for items after the watermark; items
// are delivered oldest first and the watermark advances only after the
// handler accepts an item, so a failed delivery is retried on the next poll.
type Poller struct {
	source  Source
	opts    PollerOptions
	logger  *slog.Logger
	limiter *rate.Limiter
	sched   cron.Schedule

	mu                sync.RWMutex
	running           bool
	cancel            context.CancelFunc
	done              chan struct{}
	handler           Handler
	watermark         time.Time
	lastPoll          time.Time
	nextPoll          time.Time
	consecutiveErrors int

	// delivered item IDs, ring buffer plus membership set
	seen     map[string]struct{}
	seenRing []string
	seenPos  int
}

// NewPoller creates a poller for the given source. The watermark starts at
// the current time so only changes after startup fire.
func NewPoller(source Source, opts PollerOptions) (*Poller, error) {
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("trigger name cannot be empty")
	}
	opts.defaults()

	p := &Poller{
		source:    source,
		opts:      opts,
		logger:    logging.WithTrigger(opts.Logger, opts.Name),
		watermark: time.Now(),
		seen:      make(map[string]struct{}, dedupeCapacity),
		seenRing:  make([]string, dedupeCapacity),
	}

	if opts.Cron != "" {
		sched, err := cron.ParseStandard(opts.Cron)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", opts.Cron, err)
		}
		p.sched = sched
	}
	if opts.RateLimit > 0 {
		p.limiter = rate.NewLimiter(opts.RateLimit, 1)
	}

	return p, nil
}

// Name returns the configured trigger name.
func (p *Poller) Name() string {
	return p.opts.Name
}

// Type returns the source type.
func (p *Poller) Type() string {
	return p.source.Type()
}

// IsRunning reports whether the poll loop is active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Watermark returns the timestamp of the newest delivered item.
func (p *Poller) Watermark() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.watermark
}

// SetWatermark moves the watermark, typically to resume from persisted
// state. The watermark never regresses.
func (p *Poller) SetWatermark(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.After(p.watermark) {
		p.watermark = t
	}
}

// LastPoll returns the start time of the most recent poll.
func (p *Poller) LastPoll() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastPoll
}

// NextPoll returns when the next poll is due.
func (p *Poller) NextPoll() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nextPoll
}

// Health returns an error when the poller is stopped or has failed too many
// polls in a row.
func (p *Poller) Health() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrNotRunning
	}
	if p.consecutiveErrors > p.opts.MaxConsecutiveErrors {
		return fmt.Errorf("too many consecutive errors: %d", p.consecutiveErrors)
	}
	return nil
}

// Start begins the poll loop. The first poll runs immediately.
func (p *Poller) Start(ctx context.Context, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	p.handler = handler
	p.consecutiveErrors = 0
	p.nextPoll = time.Now()
	p.mu.Unlock()

	go p.loop(ctx)

	if p.opts.Metrics != nil {
		p.opts.Metrics.IncrementActiveTriggers(ctx)
	}
	p.logger.Info("trigger started",
		slog.String("type", p.source.Type()),
		slog.Duration("interval", p.opts.Interval),
		slog.String("cron", p.opts.Cron))
	return nil
}

// Stop cancels the poll loop and waits for it to finish.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running = false
	p.cancel()
	done := p.done
	p.mu.Unlock()

	<-done
	if p.opts.Metrics != nil {
		p.opts.Metrics.DecrementActiveTriggers(context.Background())
	}
	p.logger.Info("trigger stopped")
	return nil
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	// First poll fires immediately
	p.poll(ctx)

	for {
		wait := p.untilNext()
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			p.poll(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// untilNext computes the delay to the next poll and records it.
func (p *Poller) untilNext() time.Duration {
	now := time.Now()
	var next time.Time
	if p.sched != nil {
		next = p.sched.Next(now)
	} else {
		next = now.Add(p.opts.Interval)
	}

	p.mu.Lock()
	p.nextPoll = next
	p.mu.Unlock()

	return time.Until(next)
}

func (p *Poller) poll(ctx context.Context) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
	}

	start := time.Now()
	p.mu.Lock()
	p.lastPoll = start
	since := p.watermark
	p.mu.Unlock()

	var items []Item
	err := engine.RetryWithBackoff(ctx, p.opts.Retry, func() error {
		var pollErr error
		items, pollErr = p.source.Poll(ctx, since)
		return pollErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.mu.Lock()
		p.consecutiveErrors++
		errCount := p.consecutiveErrors
		p.mu.Unlock()

		if p.opts.Metrics != nil {
			p.opts.Metrics.RecordTriggerPoll(ctx, p.opts.Name, p.source.Type(),
				instrumentation.StatusError, time.Since(start))
		}
		p.logger.Error("poll failed",
			logging.Err(err),
			slog.Int("consecutive_errors", errCount),
			slog.Duration("duration", time.Since(start)))
		return
	}

	p.mu.Lock()
	p.consecutiveErrors = 0
	p.mu.Unlock()

	delivered := 0
	// newest and second-newest distinct delivered timestamps of this poll
	var newestTS, olderTS time.Time
	var failedAt time.Time
	failed := false
	for i := range items {
		item := items[i]
		if p.isSeen(item.ID) {
			continue
		}

		event := &Event{
			Trigger: p.opts.Name,
			Type:    p.source.Type(),
			Account: p.opts.Account,
			Item:    item,
			FiredAt: time.Now(),
		}
		if err := p.handler(ctx, event); err != nil {
			failed = true
			failedAt = item.Timestamp
			p.logger.Error("event handler failed",
				logging.Err(err),
				slog.String("item_id", item.ID))
			break
		}

		p.markSeen(item.ID)
		if item.Timestamp.After(newestTS) {
			olderTS = newestTS
			newestTS = item.Timestamp
		}
		delivered++
	}

	// Advance the watermark over the delivered items, but never to or past a
	// failed item's timestamp: sources filter strictly after the watermark,
	// so a delivered item sharing the failed timestamp must not push the
	// failed item out of reach. The dedupe ring suppresses the items already
	// delivered at that timestamp when the next poll returns them again.
	target := newestTS
	if failed && !newestTS.Before(failedAt) {
		target = olderTS
	}
	if !target.IsZero() {
		p.mu.Lock()
		if target.After(p.watermark) {
			p.watermark = target
		}
		p.mu.Unlock()
	}

	if p.opts.Metrics != nil {
		p.opts.Metrics.RecordTriggerPoll(ctx, p.opts.Name, p.source.Type(),
			instrumentation.StatusSuccess, time.Since(start))
		p.opts.Metrics.RecordTriggerEvents(ctx, p.opts.Name, p.source.Type(), int64(delivered))
	}

	if delivered > 0 {
		p.logger.Info("trigger fired",
			slog.Int("events", delivered),
			slog.Duration("duration", time.Since(start)))
	} else {
		p.logger.Debug("no changes detected",
			slog.Duration("duration", time.Since(start)))
	}
}

func (p *Poller) isSeen(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.seen[id]
	return ok
}

func (p *Poller) markSeen(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[id]; ok {
		return
	}
	if old := p.seenRing[p.seenPos]; old != "" {
		delete(p.seen, old)
	}
	p.seenRing[p.seenPos] = id
	p.seen[id] = struct{}{}
	p.seenPos = (p.seenPos + 1) % len(p.seenRing)
}
