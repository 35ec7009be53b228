package janitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
)

// Evicter drops idle per-client state, the inbound rate limiter implements it
type Evicter interface {
	Evict() int
}

type Janitor struct {
	cfg              *config.Config
	log              *zap.Logger
	limiter          Evicter
	announceNoAction bool
	cancel           context.CancelFunc
	now              func() time.Time
}

// NewJanitor creates a janitor. limiter may be nil when no server is running.
func NewJanitor(cfg *config.Config, log *zap.Logger, limiter Evicter, announceNoAction bool) *Janitor {
	return &Janitor{
		cfg:              cfg,
		log:              log.Named("janitor"),
		limiter:          limiter,
		announceNoAction: announceNoAction,
		now:              time.Now,
	}
}

func (jan *Janitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	jan.cancel = cancel

	go func() {
		shortTicker := time.NewTicker(jan.cfg.Janitor.ShortCleanInterval)
		defer shortTicker.Stop()
		fullTicker := time.NewTicker(jan.cfg.Janitor.FullCleanInterval)
		defer fullTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-shortTicker.C:
				jan.RunShort()
			case <-fullTicker.C:
				jan.RunFull()
			}
		}
	}()
}

func (jan *Janitor) Stop() {
	if jan.cancel != nil {
		jan.cancel()
		jan.cancel = nil
	}
}

func (jan *Janitor) RunShort() {
	jan.log.Debug("Running short cleaning sequence")
	jan.EvictIdleClients()
}

func (jan *Janitor) RunFull() {
	jan.log.Info("Running full cleaning sequence")
	jan.RunShort()

	jan.CleanUpExportFiles()
}

// EvictIdleClients drops rate limiter state of clients that went quiet
func (jan *Janitor) EvictIdleClients() {
	if jan.limiter == nil {
		return
	}
	evicted := jan.limiter.Evict()
	if jan.announceNoAction || evicted != 0 {
		jan.log.Info("Evicted idle rate limiter clients", zap.Int("count", evicted))
	}
}

// CleanUpExportFiles removes export documents older than the configured age.
// Exports delete their own file, so anything left behind is from a crash.
func (jan *Janitor) CleanUpExportFiles() int {
	dir := jan.cfg.Export.TempDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			jan.log.Error("Failed to read export directory", zap.String("dir", dir), zap.Error(err))
		}
		return 0
	}

	cutoff := jan.now().Add(-jan.cfg.Export.StaleAfter)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xlsx") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			jan.log.Error("Failed to remove stale export file", zap.String("file", path), zap.Error(err))
			continue
		}
		removed++
	}

	if jan.announceNoAction || removed != 0 {
		jan.log.Info("Cleaned stale export files", zap.Int("count", removed))
	}
	return removed
}
