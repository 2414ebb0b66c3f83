package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Guard versions a piece of shared state. Each fetch takes a token when it
// starts; its result is applied only if no newer fetch was applied first and
// the state was not invalidated in between.
type Guard struct {
	mu      sync.Mutex
	gen     uint64
	seq     uint64
	applied uint64
}

// Token identifies one fetch started by a Guard.
type Token struct {
	gen uint64
	seq uint64
}

func (g *Guard) Begin() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return Token{gen: g.gen, seq: g.seq}
}

// Version changes on every Invalidate.
func (g *Guard) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

// Current reports whether a result fetched under t may still be applied.
func (g *Guard) Current(t Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current(t)
}

func (g *Guard) current(t Token) bool {
	return t.gen == g.gen && t.seq > g.applied
}

// Commit runs apply under the guard lock when t is still current. It reports
// whether apply ran.
func (g *Guard) Commit(t Token, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.current(t) {
		return false
	}
	g.applied = t.seq
	apply()
	return true
}

// Invalidate discards the results of every fetch already started.
func (g *Guard) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
}

// shared merges concurrent fetches of state shared by every caller. The fetch
// runs detached from the caller that started it, so a client going away does
// not abort it for the others; each caller only stops waiting when its own
// context ends.
type shared[T any] struct {
	group singleflight.Group
	guard Guard
}

// do fetches under kind and hands the result to apply when it is still
// current. Cancellations and deadlines are never applied.
func (s *shared[T]) do(ctx context.Context, kind string, fetch func(context.Context) (T, error), apply func(T, error)) (T, error) {
	key := fmt.Sprintf("%s/%d", kind, s.guard.Version())
	ch := s.group.DoChan(key, func() (any, error) {
		token := s.guard.Begin()
		data, err := fetch(context.WithoutCancel(ctx))
		if !isContextErr(err) {
			s.guard.Commit(token, func() { apply(data, err) })
		}
		return data, err
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		data, _ := res.Val.(T)
		return data, res.Err
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
