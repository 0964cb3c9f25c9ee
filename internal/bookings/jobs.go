package bookings

import (
	"context"
	"sync"
	"time"

	"cinely/pkg/logger"
)

// Sweeper periodically reclaims seats from PENDING bookings whose hold
// window has lapsed and repairs orphaned seat reservations.
type Sweeper struct {
	service  Service
	interval time.Duration
	logger   *logger.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger.GetDefault(),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("booking sweeper started", "interval", s.interval.String())
}

func (s *Sweeper) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.logger.Info("booking sweeper stopped")
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(context.Background())
		case <-s.done:
			return
		}
	}
}

// SweepOnce runs a single pass. Exposed so operators and tests can trigger a
// sweep without waiting for the ticker.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	expired, repaired, err := s.service.ExpireStale(ctx)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "sweep pass failed", err, nil)
	}
	if expired > 0 || repaired > 0 {
		s.logger.LogSweepPass(ctx, expired, repaired)
	}
}
