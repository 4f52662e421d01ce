// Package scheduler wires the retention jobs onto cron
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/tailtown/platform/internal/retention"
)

// Config controls when the retention jobs fire
type Config struct {
	// Enabled turns the in-process scheduler on or off
	Enabled bool
	// SweepTime is when the daily archival sweep runs, "HH:MM"
	SweepTime string
	// PurgeDay is the day of week for the permanent-deletion run (0 = Sunday)
	PurgeDay int
	// PurgeTime is when the weekly purge runs on PurgeDay, "HH:MM"
	PurgeTime string
}

// DefaultConfig schedules the sweep nightly at 02:00 and the purge on Sunday
// at 03:00.
func DefaultConfig() Config {
	return Config{Enabled: true, SweepTime: "02:00", PurgeDay: 0, PurgeTime: "03:00"}
}

// Scheduler runs the archival sweep and the permanent-deletion job on a timer
type Scheduler struct {
	cron      *cron.Cron
	retention *retention.Service
	config    Config
	isRunning bool
}

// NewScheduler creates a scheduler for the retention jobs
func NewScheduler(svc *retention.Service, cfg Config) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		retention: svc,
		config:    cfg,
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		log.Println("Scheduler: retention jobs are disabled in configuration")
		return nil
	}

	sweepSpec := dailySpec(s.config.SweepTime)
	_, err := s.cron.AddFunc(sweepSpec, func() {
		log.Println("Scheduler: starting archival sweep...")
		if _, err := s.retention.RunArchiveSweep(); err != nil {
			log.Printf("Scheduler: archival sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	purgeSpec := weeklySpec(s.config.PurgeTime, s.config.PurgeDay)
	_, err = s.cron.AddFunc(purgeSpec, func() {
		log.Println("Scheduler: starting permanent deletion job...")
		result := s.retention.RunPermanentDeletionJob()
		if !result.Success {
			log.Printf("Scheduler: permanent deletion finished with failures: deleted=%d failed=%d error=%s",
				result.PropertiesDeleted, result.PropertiesFailed, result.Error)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: started (sweep: %s, purge: %s)", sweepSpec, purgeSpec)
	return nil
}

// Stop stops the cron loop
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: stopped")
	}
}

// dailySpec converts "HH:MM" to a daily cron specification
func dailySpec(timeStr string) string {
	hour, minute, ok := parseClock(timeStr)
	if !ok {
		log.Printf("Scheduler: failed to parse time '%s', using default 02:00", timeStr)
		return "0 2 * * *"
	}
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// weeklySpec converts "HH:MM" plus a weekday to a weekly cron specification
func weeklySpec(timeStr string, day int) string {
	if day < 0 || day > 6 {
		day = 0
	}
	hour, minute, ok := parseClock(timeStr)
	if !ok {
		log.Printf("Scheduler: failed to parse time '%s', using default 03:00", timeStr)
		return fmt.Sprintf("0 3 * * %d", day)
	}
	return fmt.Sprintf("%d %d * * %d", minute, hour, day)
}

func parseClock(timeStr string) (hour, minute int, ok bool) {
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	return hour, minute, n == 2
}
