// Package keylock serializes work per key using a fixed set of sharded mutexes.
//
// Keys hash onto shards with FNV-1a, so unrelated keys rarely contend and the
// memory cost is constant regardless of how many keys are seen.
package keylock

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	dErrors "rosterid/pkg/domain-errors"
)

const (
	defaultShards  = 128
	defaultTimeout = 30 * time.Second
)

// Locker holds the shard mutexes.
type Locker struct {
	shards  []sync.Mutex
	timeout time.Duration
}

// Option configures a Locker.
type Option func(*Locker)

// WithShards sets the number of shards.
func WithShards(n int) Option {
	return func(l *Locker) {
		if n > 0 {
			l.shards = make([]sync.Mutex, n)
		}
	}
}

// WithTimeout bounds fn when the caller's context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func New(opts ...Option) *Locker {
	l := &Locker{
		shards:  make([]sync.Mutex, defaultShards),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do runs fn while holding the shards of every key. Shards are acquired in
// ascending order so overlapping key sets cannot deadlock.
func (l *Locker) Do(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "lock aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	shards := l.shardsFor(keys)
	for _, s := range shards {
		l.shards[s].Lock()
	}
	defer func() {
		for i := len(shards) - 1; i >= 0; i-- {
			l.shards[shards[i]].Unlock()
		}
	}()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "lock aborted: context cancelled")
	}
	return fn(ctx)
}

func (l *Locker) shardsFor(keys []string) []int {
	seen := make(map[int]struct{}, len(keys))
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		s := l.shard(k)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func (l *Locker) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(l.shards)))
}
