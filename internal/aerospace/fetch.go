package aerospace

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourusername/spaces-cli/internal/gateway"
	"github.com/yourusername/spaces-cli/internal/models"
)

// ErrNoData means the mandatory queries produced nothing usable this cycle.
var ErrNoData = errors.New("no data available")

// Snapshot holds the four independently fetched query results of one
// refresh cycle. Focused values are nil when absent or when their query
// failed; Failures records which queries failed and why.
type Snapshot struct {
	Spaces        []models.Space
	Windows       []models.Window
	FocusedSpace  *models.Space
	FocusedWindow *models.Window
	Failures      map[string]error
}

// Fetcher issues queries against the external tool.
type Fetcher struct {
	run gateway.Runner
	log zerolog.Logger
}

// NewFetcher creates a fetcher over the given runner
func NewFetcher(run gateway.Runner, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		run: run,
		log: log.With().Str("component", "fetch").Logger(),
	}
}

// FetchSpaces lists every workspace.
func (f *Fetcher) FetchSpaces(ctx context.Context) ([]models.Space, error) {
	data, err := f.run.Run(ctx, allSpacesArgs()...)
	if err != nil {
		return nil, errors.Wrap(err, QuerySpaces)
	}
	spaces, err := DecodeSpaces(data)
	if err != nil {
		f.log.Warn().Err(err).Str("query", QuerySpaces).Msg("decode failed")
		return nil, errors.Wrap(err, QuerySpaces)
	}
	return spaces, nil
}

// FetchWindows lists every window in depth-first order.
func (f *Fetcher) FetchWindows(ctx context.Context) ([]models.Window, error) {
	data, err := f.run.Run(ctx, allWindowsArgs()...)
	if err != nil {
		return nil, errors.Wrap(err, QueryWindows)
	}
	windows, err := DecodeWindows(data)
	if err != nil {
		f.log.Warn().Err(err).Str("query", QueryWindows).Msg("decode failed")
		return nil, errors.Wrap(err, QueryWindows)
	}
	return windows, nil
}

// FetchFocusedSpace returns the focused workspace, or nil when there is none.
func (f *Fetcher) FetchFocusedSpace(ctx context.Context) (*models.Space, error) {
	data, err := f.run.Run(ctx, focusedSpaceArgs()...)
	if err != nil {
		return nil, errors.Wrap(err, QueryFocusedSpace)
	}
	space, err := DecodeFocusedSpace(data)
	if err != nil {
		f.log.Warn().Err(err).Str("query", QueryFocusedSpace).Msg("decode failed")
		return nil, errors.Wrap(err, QueryFocusedSpace)
	}
	return space, nil
}

// FetchFocusedWindow returns the focused window, or nil when there is none.
func (f *Fetcher) FetchFocusedWindow(ctx context.Context) (*models.Window, error) {
	data, err := f.run.Run(ctx, focusedWindowArgs()...)
	if err != nil {
		return nil, errors.Wrap(err, QueryFocusedWindow)
	}
	window, err := DecodeFocusedWindow(data)
	if err != nil {
		f.log.Warn().Err(err).Str("query", QueryFocusedWindow).Msg("decode failed")
		return nil, errors.Wrap(err, QueryFocusedWindow)
	}
	return window, nil
}

type result[T any] struct {
	val T
	err error
}

// async runs fn on its own goroutine and delivers its result on the
// returned channel exactly once.
func async[T any](fn func() (T, error)) <-chan result[T] {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{val: v, err: err}
	}()
	return ch
}

// Fetch runs the four queries in parallel and waits for all of them. A
// failed query leaves its slot empty. Fetch fails with ErrNoData only when
// no spaces could be obtained, since a tree cannot be built without them.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	spacesCh := async(func() ([]models.Space, error) { return f.FetchSpaces(ctx) })
	windowsCh := async(func() ([]models.Window, error) { return f.FetchWindows(ctx) })
	focusedSpaceCh := async(func() (*models.Space, error) { return f.FetchFocusedSpace(ctx) })
	focusedWindowCh := async(func() (*models.Window, error) { return f.FetchFocusedWindow(ctx) })

	spaces := <-spacesCh
	windows := <-windowsCh
	focusedSpace := <-focusedSpaceCh
	focusedWindow := <-focusedWindowCh

	snap := &Snapshot{
		Spaces:        spaces.val,
		Windows:       windows.val,
		FocusedSpace:  focusedSpace.val,
		FocusedWindow: focusedWindow.val,
		Failures:      make(map[string]error),
	}
	for name, err := range map[string]error{
		QuerySpaces:        spaces.err,
		QueryWindows:       windows.err,
		QueryFocusedSpace:  focusedSpace.err,
		QueryFocusedWindow: focusedWindow.err,
	} {
		if err != nil {
			snap.Failures[name] = err
			f.log.Warn().Err(err).Str("query", name).Msg("query failed")
		}
	}

	f.log.Debug().
		Int("spaces", len(snap.Spaces)).
		Int("windows", len(snap.Windows)).
		Int("failures", len(snap.Failures)).
		Dur("elapsed", time.Since(start)).
		Msg("fetch complete")

	if spaces.err != nil && windows.err != nil {
		return nil, errors.Wrapf(ErrNoData, "spaces: %v; windows: %v", spaces.err, windows.err)
	}
	if spaces.err != nil {
		return nil, errors.Wrapf(ErrNoData, "spaces: %v", spaces.err)
	}
	if len(snap.Spaces) == 0 {
		return nil, errors.Wrap(ErrNoData, "no spaces reported")
	}
	return snap, nil
}
