package session

import (
	"testing"
)

func TestCountdownTicksDown(t *testing.T) {
	cd := NewCountdown(10, nil)
	for i := 0; i < 3; i++ {
		if !cd.Tick() {
			t.Fatalf("countdown stopped early at tick %d", i)
		}
	}
	if got := cd.Remaining(); got != 7 {
		t.Errorf("Remaining() = %d, want 7", got)
	}
}

func TestCountdownFiresExpiryExactlyOnce(t *testing.T) {
	fired := 0
	cd := NewCountdown(3, func() { fired++ })

	for i := 0; i < 10; i++ {
		cd.Tick()
	}

	if fired != 1 {
		t.Errorf("expiry fired %d times, want exactly 1", fired)
	}
	if got := cd.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}

func TestCountdownExpirySynchronousWithZeroTick(t *testing.T) {
	fired := false
	cd := NewCountdown(1, func() { fired = true })

	live := cd.Tick()
	if live {
		t.Error("tick reaching zero should report the countdown as finished")
	}
	if !fired {
		t.Error("expiry must fire synchronously with the tick that reaches zero")
	}
}

func TestCountdownStopSuppressesExpiry(t *testing.T) {
	fired := false
	cd := NewCountdown(2, func() { fired = true })

	cd.Stop()
	for i := 0; i < 5; i++ {
		if cd.Tick() {
			t.Error("stopped countdown must not keep ticking")
		}
	}
	if fired {
		t.Error("stopped countdown must not fire expiry")
	}
	if got := cd.Remaining(); got != 2 {
		t.Errorf("Remaining() = %d after stop, want 2", got)
	}
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	cd := NewCountdown(5, nil)
	cd.Stop()
	cd.Stop() // must not panic on a second stop
}

func TestCountdownStopAfterExpiry(t *testing.T) {
	cd := NewCountdown(1, nil)
	cd.Tick()
	cd.Stop() // must not panic once expired
}
