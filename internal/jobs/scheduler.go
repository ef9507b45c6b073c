// Package jobs runs the periodic membership maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// MembershipMaintainer is the subset of the membership service the jobs call.
type MembershipMaintainer interface {
	CheckExpired() ([]models.Membership, error)
	AutoRenew() ([]models.Membership, error)
}

// Scheduler wraps a cron runner. Jobs never overlap with themselves.
type Scheduler struct {
	cron *cron.Cron
}

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Spec string
	Run  func() error
}

func NewScheduler() *Scheduler {
	logger := cronLogger{}
	return &Scheduler{cron: cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)}
}

// Add registers job under its standard 5 field cron spec.
func (s *Scheduler) Add(job Job) error {
	_, err := s.cron.AddFunc(job.Spec, func() {
		start := time.Now()
		if err := job.Run(); err != nil {
			utils.LogError(err, fmt.Sprintf("job %s failed", job.Name))
			return
		}
		utils.LogInfo("job finished", map[string]interface{}{"job": job.Name, "took": time.Since(start).String()})
	})
	if err != nil {
		return fmt.Errorf("scheduling %s (%q): %w", job.Name, job.Spec, err)
	}
	utils.LogInfo("job scheduled", map[string]interface{}{"job": job.Name, "spec": job.Spec})
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// MembershipJobs builds the expiration check and auto renewal jobs.
func MembershipJobs(m MembershipMaintainer, expiredSpec, renewSpec string) []Job {
	return []Job{
		{Name: "check-expired", Spec: expiredSpec, Run: func() error {
			_, err := m.CheckExpired()
			return err
		}},
		{Name: "auto-renew", Spec: renewSpec, Run: func() error {
			_, err := m.AutoRenew()
			return err
		}},
	}
}

// cronLogger adapts cron's logr style logger to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
