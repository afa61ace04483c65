package workerpool

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_Submit(t *testing.T) {
	p, err := New(&Config{Workers: 4}, zap.NewNop())
	require.NoError(t, err)
	defer p.Shutdown()

	var counter int64
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Submit(func() {
			atomic.AddInt64(&counter, 1)
		}))
	}
	p.Wait()

	assert.Equal(t, int64(100), atomic.LoadInt64(&counter))
	stats := p.Stats()
	assert.Equal(t, int64(100), stats.Submitted)
	assert.Equal(t, int64(100), stats.Completed)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, int64(0), stats.Running)
	assert.Equal(t, 4, p.Cap())
}

func TestPool_SubmitWithResult(t *testing.T) {
	p, err := New(&Config{Workers: 2}, nil)
	require.NoError(t, err)
	defer p.Shutdown()

	ok := p.SubmitWithResult(func() (interface{}, error) {
		return 42, nil
	})
	failed := p.SubmitWithResult(func() (interface{}, error) {
		return nil, errors.New("boom")
	})
	panicked := p.SubmitWithResult(func() (interface{}, error) {
		panic("bad input")
	})

	res := <-ok
	assert.NoError(t, res.Error)
	assert.Equal(t, 42, res.Data)

	res = <-failed
	assert.EqualError(t, res.Error, "boom")

	res = <-panicked
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "bad input")

	p.Wait()
	stats := p.Stats()
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, int64(2), stats.Failed)
}

func TestPool_Closed(t *testing.T) {
	p, err := New(DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	p.Shutdown()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)

	res := <-p.SubmitWithResult(func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, res.Error, ErrPoolClosed)
}
