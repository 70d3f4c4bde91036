package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OneRunPerQuietPeriod(t *testing.T) {
	clock := &manualClock{}
	var runs []time.Duration
	d := NewDebouncer(clock, time.Second, func() { runs = append(runs, clock.Elapsed()) })

	d.Trigger()
	clock.Advance(400 * time.Millisecond)
	d.Trigger()
	clock.Advance(500 * time.Millisecond)
	d.Trigger()

	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, runs, "nothing fires before the quiet period ends")
	assert.True(t, d.Pending())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []time.Duration{1900 * time.Millisecond}, runs)
	assert.False(t, d.Pending())

	clock.Advance(10 * time.Second)
	assert.Len(t, runs, 1, "exactly one run")
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	clock := &manualClock{}
	var n atomic.Int32
	d := NewDebouncer(clock, 100*time.Millisecond, func() { n.Add(1) })

	d.Trigger()
	clock.Advance(150 * time.Millisecond)
	d.Trigger()
	clock.Advance(150 * time.Millisecond)

	assert.Equal(t, int32(2), n.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := &manualClock{}
	var n atomic.Int32
	d := NewDebouncer(clock, 100*time.Millisecond, func() { n.Add(1) })

	d.Trigger()
	d.Cancel()
	assert.False(t, d.Pending())
	clock.Advance(time.Second)
	assert.Zero(t, n.Load())

	d.Trigger()
	clock.Advance(time.Second)
	assert.Equal(t, int32(1), n.Load(), "triggers after Cancel still run")
}

func TestDebouncer_Stop(t *testing.T) {
	clock := &manualClock{}
	var n atomic.Int32
	d := NewDebouncer(clock, 100*time.Millisecond, func() { n.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()
	clock.Advance(time.Second)

	assert.Zero(t, n.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_RealClock(t *testing.T) {
	done := make(chan struct{})
	d := NewDebouncer(nil, 10*time.Millisecond, func() { close(done) })
	d.Trigger()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function did not run")
	}
}
