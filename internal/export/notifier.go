// Package export turns grouped survey results into a spreadsheet and delivers
// it to the administrators' messaging channel.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/config"
	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
	"github.com/CLDWare/csi-survey-backend/internal/results"
)

const (
	NoDataMessage = "Survey results: no data to send"
	ProbeMessage  = "CSI Survey App connection test"
)

// Notifier exports results to a Channel.
type Notifier struct {
	channel    Channel
	tempDir    string
	probeDelay time.Duration
	log        *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewNotifier(channel Channel, cfg *config.Config, log *zap.Logger) *Notifier {
	return &Notifier{
		channel:    channel,
		tempDir:    cfg.Export.TempDir,
		probeDelay: cfg.Telegram.ProbeDelay,
		log:        log.Named("export"),
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Configured reports whether the channel can be delivered to.
func (n *Notifier) Configured() bool {
	return n.channel.Configured()
}

// Export delivers the results as a workbook attachment, or a short notice when
// there are none. Throttling by the channel fails with a RateLimitedError,
// every other failure with an ExportError after a best-effort failure notice.
// The workbook file is removed whatever the outcome.
func (n *Notifier) Export(ctx context.Context, grouped []results.GroupedResult) error {
	if !n.channel.Configured() {
		return apperrors.ErrChannelNotConfigured
	}

	if len(grouped) == 0 {
		n.log.Info("No survey results to export")
		if err := n.channel.SendMessage(ctx, NoDataMessage); err != nil {
			return n.fail(ctx, "notify", err)
		}
		return nil
	}

	now := n.now()
	path, err := WriteDocument(n.tempDir, grouped, now)
	if err != nil {
		return n.fail(ctx, "build", err)
	}
	defer n.remove(path)

	n.log.Info("Sending survey results", zap.String("file", path), zap.Int("results", len(grouped)))
	if err := n.channel.SendDocument(ctx, path, caption(now, len(grouped))); err != nil {
		return n.fail(ctx, "deliver", err)
	}

	n.log.Info("Survey results sent", zap.Int("results", len(grouped)))
	return nil
}

func (n *Notifier) fail(ctx context.Context, stage string, err error) error {
	var rl *apperrors.RateLimitedError
	if errors.As(err, &rl) {
		n.log.Warn("Export channel rate limited", zap.String("stage", stage), zap.Duration("retry_after", rl.RetryAfter))
		return rl
	}

	n.log.Error("Failed to export survey results", zap.String("stage", stage), zap.Error(err))
	if notifyErr := n.channel.SendMessage(ctx, "Failed to send survey results:\n"+err.Error()); notifyErr != nil {
		n.log.Error("Failed to send export failure notice", zap.Error(notifyErr))
	}
	return &apperrors.ExportError{Stage: stage, Err: err}
}

func (n *Notifier) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		n.log.Error("Failed to remove export file", zap.String("file", path), zap.Error(err))
		return
	}
	n.log.Debug("Removed export file", zap.String("file", path))
}

// Probe sends a probe message after the configured delay, which keeps it
// clear of the channel's short window throttling right after another send.
func (n *Notifier) Probe(ctx context.Context) error {
	if !n.channel.Configured() {
		return apperrors.ErrChannelNotConfigured
	}
	if err := n.sleep(ctx, n.probeDelay); err != nil {
		return err
	}
	return n.channel.SendMessage(ctx, ProbeMessage)
}

// TestChannel reports whether a probe message reaches the channel.
func (n *Notifier) TestChannel(ctx context.Context) bool {
	if err := n.Probe(ctx); err != nil {
		n.log.Warn("Export channel probe failed", zap.Error(err))
		return false
	}
	return true
}

func caption(now time.Time, participants int) string {
	return fmt.Sprintf("Survey results: systems analysis\n\nDate: %s\nParticipants: %d\n\nThe file contains the detailed ratings and comments.",
		now.Format("2006-01-02"), participants)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
