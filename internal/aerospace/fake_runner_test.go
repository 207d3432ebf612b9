package aerospace

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type fakeReply struct {
	data  string
	err   error
	delay time.Duration
}

// fakeRunner answers canned replies keyed by the joined argument list and
// records every call.
type fakeRunner struct {
	mu      sync.Mutex
	replies map[string][]fakeReply
	calls   [][]string
	times   []time.Time
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{replies: make(map[string][]fakeReply)}
}

// on queues a reply for args. Replies are consumed in order; the last one
// repeats.
func (f *fakeRunner) on(args []string, r fakeReply) *fakeRunner {
	key := strings.Join(args, " ")
	f.replies[key] = append(f.replies[key], r)
	return f
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")

	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.times = append(f.times, time.Now())
	queue := f.replies[key]
	var r fakeReply
	found := len(queue) > 0
	if found {
		r = queue[0]
		if len(queue) > 1 {
			f.replies[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	if !found {
		return nil, errors.Errorf("unexpected command: %s", key)
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.data), nil
}

func (f *fakeRunner) callCount(args []string) int {
	key := strings.Join(args, " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.Join(c, " ") == key {
			n++
		}
	}
	return n
}

func (f *fakeRunner) allCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}
