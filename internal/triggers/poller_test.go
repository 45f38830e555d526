package triggers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/flowspace/internal/engine"
)

// fakeSource returns a scripted set of items per poll.
type fakeSource struct {
	mu    sync.Mutex
	polls int
	items func(poll int, since time.Time) ([]Item, error)
}

func (s *fakeSource) Type() string {
	return "fake"
}

func (s *fakeSource) Poll(ctx context.Context, since time.Time) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.items == nil {
		return nil, nil
	}
	return s.items(s.polls, since)
}

func (s *fakeSource) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// collector collects delivered events, optionally failing some of them.
type collector struct {
	mu     sync.Mutex
	events []*Event
	fail   func(event *Event) error
}

func (c *collector) handle(ctx context.Context, event *Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		if err := c.fail(event); err != nil {
			return err
		}
	}
	c.events = append(c.events, event)
	return nil
}

func (c *collector) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(c.events))
	for i, e := range c.events {
		ids[i] = e.Item.ID
	}
	return ids
}

func fastOptions(name string) PollerOptions {
	return PollerOptions{
		Name:     name,
		Account:  "default",
		Interval: 10 * time.Millisecond,
		Retry: engine.RetryConfig{
			MaxAttempts:   1,
			InitialDelay:  time.Millisecond,
			MaxDelay:      time.Millisecond,
			BackoffFactor: 1,
		},
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNewPollerValidation(t *testing.T) {
	_, err := NewPoller(nil, fastOptions("t"))
	assert.Error(t, err)

	_, err = NewPoller(&fakeSource{}, PollerOptions{})
	assert.Error(t, err)

	opts := fastOptions("t")
	opts.Cron = "not a cron"
	_, err = NewPoller(&fakeSource{}, opts)
	assert.Error(t, err)
}

func TestPollerDeliversNewItems(t *testing.T) {
	base := time.Now()
	source := &fakeSource{
		items: func(poll int, since time.Time) ([]Item, error) {
			if poll == 1 {
				return []Item{
					{ID: "a", Timestamp: base.Add(time.Second)},
					{ID: "b", Timestamp: base.Add(2 * time.Second)},
				}, nil
			}
			return nil, nil
		},
	}

	poller, err := NewPoller(source, fastOptions("deliver"))
	require.NoError(t, err)

	sink := &collector{}
	require.NoError(t, poller.Start(context.Background(), sink.handle))
	defer func() { _ = poller.Stop() }()

	waitFor(t, time.Second, func() bool { return len(sink.ids()) == 2 })
	assert.Equal(t, []string{"a", "b"}, sink.ids())

	event := sink.events[0]
	assert.Equal(t, "deliver", event.Trigger)
	assert.Equal(t, "fake", event.Type)
	assert.Equal(t, "default", event.Account)

	// Watermark advanced to the newest delivered item
	assert.Equal(t, base.Add(2*time.Second), poller.Watermark())
}

func TestPollerDeduplicatesRepeatedItems(t *testing.T) {
	base := time.Now()
	source := &fakeSource{
		items: func(poll int, since time.Time) ([]Item, error) {
			// The same item keeps coming back on every poll
			return []Item{{ID: "same", Timestamp: base.Add(time.Second)}}, nil
		},
	}

	poller, err := NewPoller(source, fastOptions("dedupe"))
	require.NoError(t, err)

	sink := &collector{}
	require.NoError(t, poller.Start(context.Background(), sink.handle))
	defer func() { _ = poller.Stop() }()

	waitFor(t, time.Second, func() bool { return source.pollCount() >= 3 })
	assert.Equal(t, []string{"same"}, sink.ids())
}

func TestPollerRedeliversAfterHandlerFailure(t *testing.T) {
	base := time.Now()
	source := &fakeSource{
		items: func(poll int, since time.Time) ([]Item, error) {
			if since.Before(base.Add(time.Second)) {
				return []Item{{ID: "x", Timestamp: base.Add(time.Second)}}, nil
			}
			return nil, nil
		},
	}

	attempts := 0
	sink := &collector{
		fail: func(event *Event) error {
			attempts++
			if attempts == 1 {
				return fmt.Errorf("downstream unavailable")
			}
			return nil
		},
	}

	poller, err := NewPoller(source, fastOptions("redeliver"))
	require.NoError(t, err)
	require.NoError(t, poller.Start(context.Background(), sink.handle))
	defer func() { _ = poller.Stop() }()

	waitFor(t, time.Second, func() bool { return len(sink.ids()) == 1 })

	// First delivery failed, the second poll delivered the same item again
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []string{"x"}, sink.ids())
}

func TestPollerRedeliversEqualTimestampItemAfterFailure(t *testing.T) {
	base := time.Now()
	shared := base.Add(time.Second)
	source := &fakeSource{
		items: func(poll int, since time.Time) ([]Item, error) {
			// Two changes carrying the same timestamp, as Drive or Gmail
			// report for changes within the same second
			if since.Before(shared) {
				return []Item{
					{ID: "a", Timestamp: shared},
					{ID: "b", Timestamp: shared},
				}, nil
			}
			return nil, nil
		},
	}

	failedOnce := false
	sink := &collector{
		fail: func(event *Event) error {
			if event.Item.ID == "b" && !failedOnce {
				failedOnce = true
				return fmt.Errorf("downstream unavailable")
			}
			return nil
		},
	}

	poller, err := NewPoller(source, fastOptions("equalts"))
	require.NoError(t, err)
	require.NoError(t, poller.Start(context.Background(), sink.handle))
	defer func() { _ = poller.Stop() }()

	// The first poll delivers a and fails on b. The watermark must stay
	// below the shared timestamp so a later poll still returns b.
	waitFor(t, time.Second, func() bool {
		return len(sink.ids()) == 2 && poller.Watermark().Equal(shared)
	})
	assert.Equal(t, []string{"a", "b"}, sink.ids())
}

func TestPollerWatermarkNeverRegresses(t *testing.T) {
	poller, err := NewPoller(&fakeSource{}, fastOptions("watermark"))
	require.NoError(t, err)

	now := poller.Watermark()
	poller.SetWatermark(now.Add(-time.Hour))
	assert.Equal(t, now, poller.Watermark())

	future := now.Add(time.Hour)
	poller.SetWatermark(future)
	assert.Equal(t, future, poller.Watermark())
}

func TestPollerHealth(t *testing.T) {
	source := &fakeSource{
		items: func(poll int, since time.Time) ([]Item, error) {
			return nil, fmt.Errorf("api unavailable")
		},
	}

	opts := fastOptions("health")
	opts.MaxConsecutiveErrors = 2
	poller, err := NewPoller(source, opts)
	require.NoError(t, err)

	assert.ErrorIs(t, poller.Health(), ErrNotRunning)

	sink := &collector{}
	require.NoError(t, poller.Start(context.Background(), sink.handle))
	defer func() { _ = poller.Stop() }()

	waitFor(t, 2*time.Second, func() bool { return poller.Health() != nil })
	assert.Contains(t, poller.Health().Error(), "consecutive errors")
	assert.Empty(t, sink.ids())
}

func TestPollerStartStop(t *testing.T) {
	poller, err := NewPoller(&fakeSource{}, fastOptions("lifecycle"))
	require.NoError(t, err)

	assert.ErrorIs(t, poller.Stop(), ErrNotRunning)

	sink := &collector{}
	require.NoError(t, poller.Start(context.Background(), sink.handle))
	assert.ErrorIs(t, poller.Start(context.Background(), sink.handle), ErrAlreadyRunning)
	assert.True(t, poller.IsRunning())

	require.NoError(t, poller.Stop())
	assert.False(t, poller.IsRunning())
	assert.ErrorIs(t, poller.Stop(), ErrNotRunning)
}

func TestPollerStartRequiresHandler(t *testing.T) {
	poller, err := NewPoller(&fakeSource{}, fastOptions("nohandler"))
	require.NoError(t, err)
	assert.Error(t, poller.Start(context.Background(), nil))
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(nil)

	p1, err := NewPoller(&fakeSource{}, fastOptions("one"))
	require.NoError(t, err)
	p2, err := NewPoller(&fakeSource{}, fastOptions("two"))
	require.NoError(t, err)

	require.NoError(t, m.Add(p1))
	require.NoError(t, m.Add(p2))
	assert.Error(t, m.Add(p1), "duplicate name")
	assert.Equal(t, 2, m.Len())

	sink := &collector{}
	require.NoError(t, m.StartAll(context.Background(), sink.handle))
	assert.ErrorIs(t, m.StartAll(context.Background(), sink.handle), ErrAlreadyRunning)
	assert.NoError(t, m.Health())

	statuses := m.StatusAll()
	require.Len(t, statuses, 2)
	assert.Equal(t, "one", statuses[0].Name)
	assert.Equal(t, "two", statuses[1].Name)
	assert.True(t, statuses[0].Running)
	assert.True(t, statuses[0].Healthy)

	require.NoError(t, m.StopAll())
	assert.False(t, p1.IsRunning())
	assert.False(t, p2.IsRunning())
	assert.ErrorIs(t, m.StopAll(), ErrNotRunning)
}
