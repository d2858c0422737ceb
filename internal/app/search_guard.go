package app

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSearchSuperseded is returned to a search that was replaced by a newer
// one for the same key before it could complete.
var ErrSearchSuperseded = errors.New("search superseded by a newer request")

// SearchGuard gives each key a quiet period before running a search and
// guarantees that only the newest search for a key delivers a result. An
// older search still waiting or in flight is cancelled and its result
// discarded.
type SearchGuard struct {
	quiet time.Duration

	mu   sync.Mutex
	keys map[string]*pendingSearch
}

type pendingSearch struct {
	cancel     context.CancelFunc
	superseded bool
}

// NewSearchGuard creates a guard with the given quiet period. Zero disables
// the wait but keeps stale-result discarding.
func NewSearchGuard(quiet time.Duration) *SearchGuard {
	return &SearchGuard{quiet: quiet, keys: make(map[string]*pendingSearch)}
}

// Do waits out the quiet period and runs fn unless a newer call for key
// arrives first. fn receives a context that is cancelled when superseded.
func (g *SearchGuard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mine := &pendingSearch{cancel: cancel}
	g.mu.Lock()
	if prev, ok := g.keys[key]; ok {
		prev.superseded = true
		prev.cancel()
	}
	g.keys[key] = mine
	g.mu.Unlock()

	defer g.release(key, mine)

	if g.quiet > 0 {
		timer := time.NewTimer(g.quiet)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			if g.isSuperseded(mine) {
				return ErrSearchSuperseded
			}
			return ctx.Err()
		}
	}

	err := fn(ctx)
	if g.isSuperseded(mine) {
		return ErrSearchSuperseded
	}
	return err
}

func (g *SearchGuard) isSuperseded(p *pendingSearch) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return p.superseded
}

func (g *SearchGuard) release(key string, p *pendingSearch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys[key] == p {
		delete(g.keys, key)
	}
}
