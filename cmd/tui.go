package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheuskafuri/factlet/internal/notify"
	"github.com/matheuskafuri/factlet/internal/tui"
)

// runTUI opens the interactive app. While it runs, the app also delivers
// notifications and follows writes made by other factlet processes.
func runTUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var changes <-chan struct{}
	w, err := e.store.Watch(ctx, 0)
	if err != nil {
		logger.Warn("live reload disabled", zap.Error(err))
	} else {
		defer w.Close()
		changes = w.Changes()
	}

	d, err := notify.NewDispatcher(e.store, e.notifier, e.mgr.Replenish, cfg.PollDuration(), logger)
	if err != nil {
		return err
	}
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := d.Stop(); err != nil {
			logger.Warn("stopping dispatcher", zap.Error(err))
		}
	}()

	if err := tui.Run(tui.RunOpts{
		Ctx:     ctx,
		Manager: e.mgr,
		Changes: changes,
		Log:     logger,
	}); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
