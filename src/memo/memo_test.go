package memo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ComputesOncePerKey(t *testing.T) {
	c := NewString[int]()
	var calls atomic.Int32

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]int, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			v, _, err := c.GetOrCompute("k", func() (int, error) {
				calls.Add(1)
				time.Sleep(5 * time.Millisecond)
				return 42, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, c.Len())
}

func TestCache_ErrorsAreNotStored(t *testing.T) {
	c := NewString[int]()
	boom := errors.New("boom")

	_, computed, err := c.GetOrCompute("k", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, computed)
	assert.Equal(t, 0, c.Len())

	v, computed, err := c.GetOrCompute("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.True(t, computed)
	assert.Equal(t, 7, v)

	v, computed, err = c.GetOrCompute("k", func() (int, error) { return 8, nil })
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Equal(t, 7, v, "first stored value is final")
}
