package services

import (
	"context"
	"time"

	"membership-portal/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultPurgeSchedule runs the token purge at 02:15 every night
const DefaultPurgeSchedule = "15 2 * * *"

// CronService runs periodic maintenance jobs
type CronService struct {
	store    repositories.Store
	cron     *cron.Cron
	schedule string
}

// NewCronService creates a new cron service. An empty schedule uses DefaultPurgeSchedule.
func NewCronService(store repositories.Store, schedule string) *CronService {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	return &CronService{
		store:    store,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		schedule: schedule,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.PurgeTokens(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	logrus.WithField("schedule", s.schedule).Info("cron service started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logrus.Info("cron service stopped")
}

// PurgeTokens deletes expired and revoked refresh tokens
func (s *CronService) PurgeTokens(ctx context.Context) int64 {
	n, err := s.store.RefreshTokens().DeleteExpired(ctx)
	if err != nil {
		logrus.WithError(err).Error("refresh token purge failed")
		return 0
	}
	logrus.WithField("deleted", n).Info("refresh tokens purged")
	return n
}
