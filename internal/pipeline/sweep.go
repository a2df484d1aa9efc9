package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/furiview/furiview/internal/logging"
)

// Sweeper removes annotated images older than the retention window so the
// output directory does not grow without bound.
type Sweeper struct {
	dir       string
	prefix    string
	retention time.Duration
	interval  time.Duration
	logger    *logging.Logger
}

// NewSweeper creates a sweeper over dir for files starting with prefix.
func NewSweeper(dir, prefix string, retention, interval time.Duration, logger *logging.Logger) *Sweeper {
	return &Sweeper{
		dir:       dir,
		prefix:    prefix,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes expired output files. Per-file failures are logged and do
// not stop the pass.
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("Sweep skipped, cannot read output directory", "dir", s.dir, "error", err)
		return
	}

	cutoff := time.Now().Add(-s.retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), s.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("Sweep cannot stat file", "file", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Sweep cannot remove file", "file", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("Swept expired output files", "removed", removed)
	}
}
