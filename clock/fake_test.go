package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeSetAdvancesMonoTogether(t *testing.T) {
	f := NewFake(1000)
	before := f.Mono()

	f.Set(1005)
	require.Equal(t, int64(1005), f.Now())
	require.Equal(t, 5*time.Second, f.Mono().Sub(before))
}

func TestFakeAdvance(t *testing.T) {
	f := NewFake(1000)
	f.Advance(2500 * time.Millisecond)
	require.Equal(t, int64(1002), f.Now(), "sub-second advances truncate toward zero seconds")
}

func TestSystemClockAdvancesWithWallTime(t *testing.T) {
	s := System{}
	require.WithinDuration(t, time.Now(), time.Unix(s.Now(), 0), 2*time.Second)
}
