// Package refresh owns the refresh cadence: it coalesces concurrent refresh
// requests, keeps the last good tree and pushes new trees to subscribers.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/spaces-cli/internal/models"
)

// Source produces one reconciled tree per call.
type Source interface {
	SpacesWithWindows(ctx context.Context) (*models.Tree, error)
}

// subscriberBuffer is how many trees a slow subscriber may lag behind
// before updates to it are dropped.
const subscriberBuffer = 4

// Refresher wraps a Source with coalescing and last-good retention.
type Refresher struct {
	src Source
	log zerolog.Logger
	sf  singleflight.Group

	mu       sync.RWMutex
	last     *models.Tree
	lastErr  error
	subs     map[chan *models.Tree]struct{}
	onUpdate func(*models.Tree)
}

// New creates a refresher over src
func New(src Source, log zerolog.Logger) *Refresher {
	return &Refresher{
		src:  src,
		log:  log.With().Str("component", "refresh").Logger(),
		subs: make(map[chan *models.Tree]struct{}),
	}
}

// OnUpdate registers a hook called with every new tree, after subscribers
// are notified. It runs on the refreshing goroutine.
func (r *Refresher) OnUpdate(fn func(*models.Tree)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

// Seed installs a tree as last-good without fetching, e.g. one loaded from disk.
func (r *Refresher) Seed(t *models.Tree) {
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		r.last = t
	}
}

// Refresh fetches a new tree. Callers arriving while a fetch is in flight
// share its result instead of starting another. On failure the last good
// tree is kept and the error is returned. A caller whose ctx ends stops
// waiting; the shared fetch still completes and is stored.
func (r *Refresher) Refresh(ctx context.Context) (*models.Tree, error) {
	ch := r.sf.DoChan("refresh", func() (interface{}, error) {
		// The fetch outlives any single caller
		tree, err := r.src.SpacesWithWindows(context.WithoutCancel(ctx))
		r.store(tree, err)
		return tree, err
	})

	select {
	case <-ctx.Done():
		r.log.Debug().Err(ctx.Err()).Msg("stopped waiting for refresh")
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			r.log.Debug().Msg("joined in-flight refresh")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Tree).Clone(), nil
	}
}

// Current returns a copy of the last good tree, or nil before the first
// successful refresh.
func (r *Refresher) Current() *models.Tree {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last.Clone()
}

// LastError returns the error of the most recent refresh, nil if it succeeded.
func (r *Refresher) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Run refreshes every interval until ctx is cancelled. Failures are logged
// and the loop continues.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
		r.log.Warn().Err(err).Msg("refresh failed, keeping last good tree")
	}
}

// Subscribe returns a channel receiving every new tree.
func (r *Refresher) Subscribe() <-chan *models.Tree {
	ch := make(chan *models.Tree, subscriberBuffer)
	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (r *Refresher) Unsubscribe(ch <-chan *models.Tree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.subs {
		if c == ch {
			delete(r.subs, c)
			close(c)
			return
		}
	}
}

func (r *Refresher) store(tree *models.Tree, err error) {
	r.mu.Lock()
	r.lastErr = err
	if err != nil || tree == nil {
		r.mu.Unlock()
		return
	}
	r.last = tree
	for ch := range r.subs {
		select {
		case ch <- tree.Clone():
		default:
			r.log.Debug().Msg("subscriber lagging, dropped update")
		}
	}
	hook := r.onUpdate
	r.mu.Unlock()

	if hook != nil {
		hook(tree.Clone())
	}
}
