package download

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_CeilingEnforced(t *testing.T) {
	l := NewLimiter(3)

	assert.True(t, l.TryAcquire(1))
	assert.True(t, l.TryAcquire(1))
	assert.True(t, l.TryAcquire(1))

	// fourth attempt is rejected and does not bump the count
	assert.False(t, l.TryAcquire(1))
	assert.Equal(t, 3, l.Active(1))
}

func TestLimiter_PerUser(t *testing.T) {
	l := NewLimiter(1)

	assert.True(t, l.TryAcquire(1))
	assert.False(t, l.TryAcquire(1))

	// a different user has their own budget
	assert.True(t, l.TryAcquire(2))
}

func TestLimiter_ReleaseFreesSlot(t *testing.T) {
	l := NewLimiter(1)

	assert.True(t, l.TryAcquire(7))
	l.Release(7)
	assert.True(t, l.TryAcquire(7))
}

func TestLimiter_ReleaseNeverGoesNegative(t *testing.T) {
	l := NewLimiter(2)

	l.Release(1)
	l.Release(1)
	assert.Equal(t, 0, l.Active(1))

	// an unpaired release must not create phantom capacity beyond the limit
	assert.True(t, l.TryAcquire(1))
	assert.True(t, l.TryAcquire(1))
	assert.False(t, l.TryAcquire(1))
}

func TestLimiter_ConcurrentAcquires(t *testing.T) {
	l := NewLimiter(3)

	var wg sync.WaitGroup
	granted := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire(42) {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	count := 0
	for range granted {
		count++
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, l.Active(42))
}
