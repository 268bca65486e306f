package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllTasksBeforeStop(t *testing.T) {
	p := NewPool(3, 16)
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		assert.True(t, p.Submit(func() { n.Add(1) }))
	}
	p.Stop()
	assert.EqualValues(t, 10, n.Load())
}

func TestSubmitAfterStopIsRejected(t *testing.T) {
	p := NewPool(1, 1)
	p.Stop()
	p.Stop()
	assert.False(t, p.Submit(func() {}))
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	p := NewPool(1, 4)
	var ran atomic.Bool
	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })
	p.Stop()
	assert.True(t, ran.Load())
}
