// Package health folds the verdicts of the journal's backing dependencies into the
// single up/down answer served on /api/health and awaited at startup.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Component is a dependency that polls itself on its own schedule, such as the
// state store checker.
type Component interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// Monitor reports the journal as up only while every component is up. It starts
// down and is re-evaluated by Check, either directly or from Start's ticker.
type Monitor struct {
	components []Component
	log        zerolog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	up      bool
	down    []string
	changed time.Time
}

// NewMonitor returns a monitor over components. With no components the first
// Check reports up.
func NewMonitor(log zerolog.Logger, components ...Component) *Monitor {
	return &Monitor{components: components, log: log, now: time.Now}
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.up
}

// Unhealthy names the components found down by the last Check.
func (m *Monitor) Unhealthy() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.down...)
}

// Since is when the verdict last flipped; zero until the first Check.
func (m *Monitor) Since() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.changed
}

// Check polls every component once and returns the new verdict. Flips are logged.
func (m *Monitor) Check() bool {
	var down []string
	for _, c := range m.components {
		if !c.IsHealthy() {
			down = append(down, c.Name())
		}
	}
	up := len(down) == 0

	m.mu.Lock()
	flipped := up != m.up || m.changed.IsZero()
	m.up, m.down = up, down
	if flipped {
		m.changed = m.now()
	}
	m.mu.Unlock()

	switch {
	case flipped && up:
		m.log.Info().Int("components", len(m.components)).Msg("journal dependencies up")
	case flipped:
		m.log.Error().Strs("down", down).Msg("journal dependencies down")
	}
	return up
}

// Start runs Check now and then every interval until ctx is done.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}
