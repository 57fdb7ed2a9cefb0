package keylock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rosterid/pkg/domain-errors"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := New()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), []string{"pmaho", "pmhms"}, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLocker_OverlappingKeySetsDoNotDeadlock(t *testing.T) {
	l := New(WithShards(4))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		keys := []string{"a", "b", "c"}
		if i%2 == 0 {
			keys = []string{"c", "b", "a"}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Do(context.Background(), keys, func(context.Context) error { return nil }))
		}()
	}
	wg.Wait()
}

func TestLocker_CancelledContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := l.Do(ctx, []string{"k"}, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, called)
}

func TestLocker_DuplicateKeysShareShard(t *testing.T) {
	l := New(WithShards(1))
	err := l.Do(context.Background(), []string{"x", "y", "x"}, func(context.Context) error { return nil })
	require.NoError(t, err)
}
