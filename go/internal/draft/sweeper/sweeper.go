package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is how often the sweeper runs its duties.
const DefaultInterval = 30 * time.Second

// Engine is what the sweeper drives on every tick
type Engine interface {
	ProcessScheduledDrafts(ctx context.Context) error
	ProcessTurnTimeout(ctx context.Context) error
}

// Sweeper periodically starts due scheduled drafts and enforces the
// turn timeout. The two duties are fault isolated: one failing never
// stops the other, and a failed tick never stops the loop.
type Sweeper struct {
	engine   Engine
	clock    clockwork.Clock
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a sweeper around the draft engine. A zero interval
// falls back to DefaultInterval.
func New(engine Engine, clock clockwork.Clock, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		engine:   engine,
		clock:    clock,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop. Returns immediately.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	log.Info().Dur("interval", s.interval).Msg("draft sweeper started")
}

// Stop halts the loop and waits for an in-flight sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	log.Info().Msg("draft sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.Chan():
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if err := s.engine.ProcessScheduledDrafts(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process scheduled drafts")
	}
	if err := s.engine.ProcessTurnTimeout(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process turn timeout")
	}
}
