package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/logger"
	"github.com/deckhand-sh/deckhand/internal/output"
	"github.com/deckhand-sh/deckhand/internal/proxy"
)

// watchDebounce batches the burst of writes a renewal produces (key, cert,
// chain in quick succession) into one reload.
const watchDebounce = 2 * time.Second

var certWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the proxy when certificates change",
	Long: `Watch the certificate live directory and reload the proxy when
certificates are rotated, so renewals from cron or systemd timers are
picked up without manual intervention.

Runs until interrupted.

Examples:
  deckhand cert watch`,
	RunE: runCertWatch,
}

func init() {
	certCmd.AddCommand(certWatchCmd)
}

func runCertWatch(cmd *cobra.Command, args []string) error {
	_, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if err := requireRoot(); err != nil {
		return err
	}

	liveDir := certLiveDir()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output.Info("Watching %s (ctrl-c to stop)", liveDir)
	return watchCertDir(ctx, liveDir, drv)
}

// watchCertDir blocks until ctx is cancelled, reloading drv after each
// debounced burst of certificate writes.
func watchCertDir(ctx context.Context, liveDir string, drv proxy.Driver) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(liveDir); err != nil {
		return err
	}
	// watch per-domain subdirectories too; renewals replace files inside them
	if entries, err := os.ReadDir(liveDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				_ = watcher.Add(liveDir + "/" + entry.Name())
			}
		}
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isCertEvent(event) {
				// new domain directory: start watching it
				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				continue
			}
			logger.DebugKV("certificate change", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			output.Info("Certificates changed, reloading %s...", drv.Name())
			if err := drv.Test(); err != nil {
				output.Error("Configuration test failed, skipping reload: %v", err)
				continue
			}
			if err := drv.Reload(); err != nil {
				output.Error("Reload failed: %v", err)
				continue
			}
			output.Success("%s reloaded", drv.Name())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnKV("watch error", "error", err)
		}
	}
}

// isCertEvent reports whether the event concerns a certificate artifact.
func isCertEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasSuffix(event.Name, ".pem")
}
