package triggers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/teemow/flowspace/internal/logging"
)

// Status is a point in time snapshot of one poller.
type Status struct {
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Running           bool      `json:"running"`
	Watermark         time.Time `json:"watermark"`
	LastPoll          time.Time `json:"lastPoll,omitempty"`
	NextPoll          time.Time `json:"nextPoll,omitempty"`
	Healthy           bool      `json:"healthy"`
	HealthError       string    `json:"healthError,omitempty"`
	ConsecutiveErrors int       `json:"-"`
}

// Manager owns a set of pollers and starts and stops them together.
type Manager struct {
	logger *slog.Logger

	mu      sync.RWMutex
	pollers map[string]*Poller
	started bool
}

// NewManager creates an empty trigger manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger,
		pollers: make(map[string]*Poller),
	}
}

// Add registers a poller. Names must be unique, and pollers cannot be added
// after the manager has started.
func (m *Manager) Add(p *Poller) error {
	if p == nil {
		return fmt.Errorf("poller cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("cannot add trigger %s: manager already started", p.Name())
	}
	if _, exists := m.pollers[p.Name()]; exists {
		return fmt.Errorf("trigger %s is already registered", p.Name())
	}
	m.pollers[p.Name()] = p
	return nil
}

// Len returns the number of registered pollers.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pollers)
}

// StartAll starts every poller with the given handler. On failure the
// already started pollers are stopped again.
func (m *Manager) StartAll(ctx context.Context, handler Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyRunning
	}

	var started []*Poller
	for _, name := range m.sortedNames() {
		p := m.pollers[name]
		if err := p.Start(ctx, handler); err != nil {
			for _, s := range started {
				_ = s.Stop()
			}
			return fmt.Errorf("failed to start trigger %s: %w", name, err)
		}
		started = append(started, p)
	}

	m.started = true
	m.logger.Info("trigger manager started", slog.Int("triggers", len(m.pollers)))
	return nil
}

// StopAll stops every running poller and collects their errors.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotRunning
	}

	var errs []error
	for _, name := range m.sortedNames() {
		if err := m.pollers[name].Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
			errs = append(errs, fmt.Errorf("trigger %s: %w", name, err))
		}
	}

	m.started = false
	m.logger.Info("trigger manager stopped")
	return errors.Join(errs...)
}

// Health returns the first unhealthy poller's error, or nil when all
// pollers are healthy.
func (m *Manager) Health() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.started {
		return nil
	}

	for _, name := range m.sortedNames() {
		if err := m.pollers[name].Health(); err != nil {
			return fmt.Errorf("trigger %s: %w", name, err)
		}
	}
	return nil
}

// StatusAll returns a snapshot of every poller, sorted by name.
func (m *Manager) StatusAll() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]Status, 0, len(m.pollers))
	for _, name := range m.sortedNames() {
		p := m.pollers[name]
		status := Status{
			Name:      p.Name(),
			Type:      p.Type(),
			Running:   p.IsRunning(),
			Watermark: p.Watermark(),
			LastPoll:  p.LastPoll(),
			NextPoll:  p.NextPoll(),
			Healthy:   true,
		}
		if err := p.Health(); err != nil {
			status.Healthy = false
			status.HealthError = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// sortedNames returns poller names in stable order. Callers hold m.mu.
func (m *Manager) sortedNames() []string {
	names := make([]string, 0, len(m.pollers))
	for name := range m.pollers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogStatus writes one log line per poller at debug level.
func (m *Manager) LogStatus() {
	for _, s := range m.StatusAll() {
		m.logger.Debug("trigger status",
			logging.Trigger(s.Name),
			slog.String("type", s.Type),
			slog.Bool("running", s.Running),
			slog.Bool("healthy", s.Healthy),
			slog.Time("watermark", s.Watermark))
	}
}
