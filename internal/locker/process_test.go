//go:build unit

package locker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_TryLockIsExclusive(t *testing.T) {
	t.Parallel()

	guard := NewProcess()

	ok, err := guard.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = guard.Unlock()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProcess_UnlockWithoutHoldIsNoOp(t *testing.T) {
	t.Parallel()

	guard := NewProcess()

	ok, err := guard.Unlock()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProcess_OnlyOneWinnerUnderContention(t *testing.T) {
	t.Parallel()

	guard := NewProcess()

	var wg sync.WaitGroup
	wins := make(chan struct{}, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := guard.TryLock(); ok {
				wins <- struct{}{}
			}
		}()
	}

	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}
