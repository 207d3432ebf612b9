package aerospace

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourusername/spaces-cli/internal/gateway"
)

// DefaultFocusDelay separates a space switch from the following window focus
// so the tool has settled on the new space before the second command lands.
const DefaultFocusDelay = 100 * time.Millisecond

// Dispatcher turns focus intents into commands for the external tool.
// Commands are fire-and-forget: failures are logged and returned, and the
// next refresh shows whether they took effect. Since every failure is already
// logged, callers may ignore the returned error.
type Dispatcher struct {
	run   gateway.Runner
	delay time.Duration
	log   zerolog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher. A zero delay uses DefaultFocusDelay.
func NewDispatcher(run gateway.Runner, delay time.Duration, log zerolog.Logger) *Dispatcher {
	if delay == 0 {
		delay = DefaultFocusDelay
	}
	return &Dispatcher{
		run:   run,
		delay: delay,
		log:   log.With().Str("component", "dispatch").Logger(),
		sleep: sleepContext,
	}
}

// FocusSpace switches to the given space.
func (d *Dispatcher) FocusSpace(ctx context.Context, spaceID string) error {
	if spaceID == "" {
		return errors.New("space id is required")
	}
	return d.exec(ctx, focusSpaceArgs(spaceID))
}

// FocusWindow focuses the given window. It does not switch spaces first.
func (d *Dispatcher) FocusWindow(ctx context.Context, windowID string) error {
	if windowID == "" {
		return errors.New("window id is required")
	}
	return d.exec(ctx, focusWindowArgs(windowID))
}

// Activate switches to spaceID, waits for the focus delay, then focuses
// windowID. The window command is issued even when the space switch failed.
func (d *Dispatcher) Activate(ctx context.Context, spaceID, windowID string) error {
	if windowID == "" {
		return errors.New("window id is required")
	}

	spaceErr := d.FocusSpace(ctx, spaceID)

	if err := d.sleep(ctx, d.delay); err != nil {
		return errors.Wrap(err, "activate interrupted")
	}

	if err := d.FocusWindow(ctx, windowID); err != nil {
		return err
	}
	if spaceErr != nil {
		return errors.Wrap(spaceErr, "window focused but space switch failed")
	}
	return nil
}

func (d *Dispatcher) exec(ctx context.Context, args []string) error {
	if _, err := d.run.Run(ctx, args...); err != nil {
		d.log.Error().Err(err).Strs("args", args).Msg("command failed")
		return errors.Wrap(err, args[0])
	}
	d.log.Debug().Strs("args", args).Msg("command sent")
	return nil
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
