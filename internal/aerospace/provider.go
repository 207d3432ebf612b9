package aerospace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourusername/spaces-cli/internal/gateway"
	"github.com/yourusername/spaces-cli/internal/models"
	"github.com/yourusername/spaces-cli/internal/reconcile"
)

// OrphanFocus selects where unassigned windows learn the focused space from.
type OrphanFocus string

const (
	// OrphanFocusFresh queries the tool again for each unassigned window, so a
	// focus change after the parallel fetch is still picked up.
	OrphanFocusFresh OrphanFocus = "fresh"
	// OrphanFocusCached reuses the focused space from the parallel fetch.
	OrphanFocusCached OrphanFocus = "cached"
)

// Options configures a Provider
type Options struct {
	Timeout     time.Duration
	FocusDelay  time.Duration
	OrphanFocus OrphanFocus
}

// Provider produces reconciled trees and carries out focus intents.
type Provider struct {
	fetch    *Fetcher
	dispatch *Dispatcher
	orphan   OrphanFocus
	log      zerolog.Logger
}

// NewProvider creates a provider that runs the executable at path.
func NewProvider(path string, opts Options, log zerolog.Logger) *Provider {
	return NewProviderWithRunner(gateway.NewExecRunner(path, opts.Timeout, log), opts, log)
}

// NewProviderWithRunner creates a provider on an existing runner.
func NewProviderWithRunner(run gateway.Runner, opts Options, log zerolog.Logger) *Provider {
	orphan := opts.OrphanFocus
	if orphan == "" {
		orphan = OrphanFocusFresh
	}
	return &Provider{
		fetch:    NewFetcher(run, log),
		dispatch: NewDispatcher(run, opts.FocusDelay, log),
		orphan:   orphan,
		log:      log.With().Str("component", "provider").Logger(),
	}
}

// SpacesWithWindows runs one refresh cycle: four parallel queries, then the
// merge. It returns ErrNoData (wrapped) when no tree can be built.
func (p *Provider) SpacesWithWindows(ctx context.Context) (*models.Tree, error) {
	cycleID := uuid.New().String()
	log := p.log.With().Str("cycle", cycleID).Logger()

	snap, err := p.fetch.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("refresh produced no data")
		return nil, err
	}

	in := reconcile.Input{
		Spaces:        snap.Spaces,
		Windows:       snap.Windows,
		FocusedSpace:  snap.FocusedSpace,
		FocusedWindow: snap.FocusedWindow,
	}
	if p.orphan == OrphanFocusFresh {
		in.ResolveFocusedSpace = func() (string, bool) {
			space, err := p.fetch.FetchFocusedSpace(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("focused space lookup for unassigned window failed")
				return "", false
			}
			if space == nil {
				return "", false
			}
			return space.ID, true
		}
	}

	spaces := reconcile.Merge(in)
	log.Debug().Int("visible", len(spaces)).Int("fetched", len(snap.Spaces)).Msg("reconciled")
	return models.NewTree(cycleID, spaces), nil
}

// FocusSpace switches to the given space.
func (p *Provider) FocusSpace(ctx context.Context, spaceID string) error {
	return p.dispatch.FocusSpace(ctx, spaceID)
}

// FocusWindow focuses the given window without switching spaces.
func (p *Provider) FocusWindow(ctx context.Context, windowID string) error {
	return p.dispatch.FocusWindow(ctx, windowID)
}

// Activate switches to a space and then focuses a window on it.
func (p *Provider) Activate(ctx context.Context, spaceID, windowID string) error {
	return p.dispatch.Activate(ctx, spaceID, windowID)
}

// IsNoData reports whether err means a refresh produced no data.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}
