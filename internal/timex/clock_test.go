package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestFake_AdvanceFiresDueTimersInOrder(t *testing.T) {
	c := NewFake(epoch)
	var fired []string

	c.AfterFunc(2*time.Minute, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Minute, func() { fired = append(fired, "a") })
	c.AfterFunc(10*time.Minute, func() { fired = append(fired, "late") })

	c.Advance(5 * time.Minute)

	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, epoch.Add(5*time.Minute), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestFake_NowInsideCallbackIsDeadline(t *testing.T) {
	c := NewFake(epoch)
	var at time.Time
	c.AfterFunc(3*time.Minute, func() { at = c.Now() })

	c.Advance(time.Hour)
	assert.Equal(t, epoch.Add(3*time.Minute), at)
}

func TestFake_StopPreventsFiring(t *testing.T) {
	c := NewFake(epoch)
	called := false
	tm := c.AfterFunc(time.Second, func() { called = true })

	require.True(t, tm.Stop())
	require.False(t, tm.Stop(), "second stop reports nothing pending")

	c.Advance(time.Minute)
	assert.False(t, called)
	assert.Zero(t, c.Pending())
}

func TestFake_TimerArmedFromCallbackFiresInSameAdvance(t *testing.T) {
	c := NewFake(epoch)
	count := 0
	var rearm func()
	rearm = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Minute, rearm)
		}
	}
	c.AfterFunc(time.Minute, rearm)

	c.Advance(10 * time.Minute)
	assert.Equal(t, 3, count)
}

func TestReal_AfterFuncStops(t *testing.T) {
	tm := Real().AfterFunc(time.Hour, func() { t.Error("must not fire") })
	assert.True(t, tm.Stop())
	assert.WithinDuration(t, time.Now(), Real().Now(), time.Second)
}
