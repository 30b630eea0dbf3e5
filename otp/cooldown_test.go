package otp_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jrsteele09/ideathon-portal/otp"
	"github.com/stretchr/testify/require"
)

func setupCooldown(t *testing.T, d time.Duration) (*otp.Cooldown, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	cd := otp.NewCooldown(d, otp.WithClock(mock))
	t.Cleanup(cd.Stop)
	return cd, mock
}

// tick advances the mock clock one second and waits for the countdown to observe it.
func tick(t *testing.T, cd *otp.Cooldown, mock *clock.Mock, want int) {
	t.Helper()
	mock.Add(time.Second)
	require.Eventually(t, func() bool { return cd.Remaining() == want }, time.Second, time.Millisecond)
}

func TestCooldown_CountsDownToZero(t *testing.T) {
	cd, mock := setupCooldown(t, otp.DefaultCooldown)
	require.False(t, cd.Active())

	cd.Start()
	require.Equal(t, 60, cd.Remaining())
	require.True(t, cd.Running())

	for want := 59; want >= 0; want-- {
		tick(t, cd, mock, want)
	}
	require.False(t, cd.Active())
	require.Eventually(t, func() bool { return !cd.Running() }, time.Second, time.Millisecond)

	mock.Add(5 * time.Second)
	require.Equal(t, 0, cd.Remaining(), "never negative")
}

func TestCooldown_Clear(t *testing.T) {
	cd, mock := setupCooldown(t, 10*time.Second)
	cd.Start()
	tick(t, cd, mock, 9)

	cd.Clear()
	require.Equal(t, 0, cd.Remaining())
	require.False(t, cd.Running())

	cd.Clear()
	mock.Add(3 * time.Second)
	require.Equal(t, 0, cd.Remaining())
}

func TestCooldown_StopIsIdempotentAndFreezes(t *testing.T) {
	cd, mock := setupCooldown(t, 10*time.Second)
	cd.Start()
	tick(t, cd, mock, 9)

	cd.Stop()
	cd.Stop()
	mock.Add(3 * time.Second)
	require.Equal(t, 9, cd.Remaining())
	require.False(t, cd.Running())
}

func TestCooldown_RestartResetsCount(t *testing.T) {
	cd, mock := setupCooldown(t, 10*time.Second)
	cd.Start()
	tick(t, cd, mock, 9)
	tick(t, cd, mock, 8)

	cd.Start()
	require.Equal(t, 10, cd.Remaining())
	tick(t, cd, mock, 9)
}
