package service

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// HousekeepingService periodically removes abandoned uploads from the temp
// directory.
type HousekeepingService struct {
	TempDir  string
	MaxAge   time.Duration
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service.
// Non-positive interval or maxAge default to 1 hour.
func NewHousekeepingService(tempDir string, maxAge time.Duration, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if maxAge <= 0 {
		maxAge = 1 * time.Hour
	}

	return &HousekeepingService{
		TempDir:  tempDir,
		MaxAge:   maxAge,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "temp_dir", s.TempDir)
}

// Stop gracefully shuts down the background worker.
// Blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes regular files in TempDir older than MaxAge and returns how
// many were removed. Failures on one file don't stop the others.
func (s *HousekeepingService) Sweep() int {
	entries, err := os.ReadDir(s.TempDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.Logger.Error("failed to read temp dir", "dir", s.TempDir, "error", err)
		}
		return 0
	}

	cutoff := s.Now().Add(-s.MaxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.TempDir, e.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.Logger.Error("failed to remove stale upload", "path", path, "error", err)
			continue
		}
		removed++
	}

	s.Logger.Info("housekeeping sweep completed", "removed", removed)
	return removed
}
