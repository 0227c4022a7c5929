package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/chaitanyaghughuskar/cdac-project/logging"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

// expiredSweeper is implemented by challenge stores that keep expired
// entries around until swept (the in-memory adapter; Redis expires keys
// itself).
type expiredSweeper interface {
	DeleteExpired(cutoff time.Time) int
}

// CleanupService periodically removes expired challenges and QR sessions
// so abandoned ceremonies don't accumulate.
type CleanupService struct {
	tokens     ports.SessionTokenStore
	challenges expiredSweeper // may be nil
	retention  time.Duration

	cron *cron.Cron
}

// NewCleanupService creates the sweeper. Expired QR sessions are kept
// for the retention window before deletion so faculty listings stay
// usable through the day.
func NewCleanupService(tokens ports.SessionTokenStore, challenges expiredSweeper, retention time.Duration) *CleanupService {
	return &CleanupService{
		tokens:     tokens,
		challenges: challenges,
		retention:  retention,
		cron:       cron.New(),
	}
}

// Start schedules the hourly sweep.
func (s *CleanupService) Start() error {
	_, err := s.cron.AddFunc("@hourly", s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *CleanupService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CleanupService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()

	if s.challenges != nil {
		if n := s.challenges.DeleteExpired(now); n > 0 {
			logging.Logger.WithField("count", n).Debug("swept expired challenges")
		}
	}

	n, err := s.tokens.DeleteExpired(ctx, now.Add(-s.retention))
	if err != nil {
		logging.Logger.WithError(err).Warn("failed to sweep expired sessions")
		return
	}
	if n > 0 {
		logging.Logger.WithField("count", n).Debug("swept expired sessions")
	}
}
