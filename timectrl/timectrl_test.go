package timectrl

import (
	"testing"
	"time"
)

func TestTickClockReflectsLastSetMs(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTickClock(epoch)

	if got := c.NowMs(); got != 0 {
		t.Fatalf("NowMs() = %d, want 0", got)
	}
	if got := c.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}

	c.SetMs(1500)
	if got := c.NowMs(); got != 1500 {
		t.Fatalf("NowMs() = %d, want 1500", got)
	}
	want := epoch.Add(1500 * time.Millisecond)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestTickClockImplementsSimClock(t *testing.T) {
	var _ SimClock = NewTickClock(time.Now())
}

func TestTickClockNotifiesListeners(t *testing.T) {
	c := NewTickClock(time.Time{})

	var seen []int
	c.AddListener(func(ms int) { seen = append(seen, ms) })

	c.SetMs(100)
	c.SetMs(200)
	c.SetMs(300)

	want := []int{100, 200, 300}
	if len(seen) != len(want) {
		t.Fatalf("listener calls = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("listener calls = %v, want %v", seen, want)
		}
	}
}

func TestTickClockDoesNotAdvanceOnItsOwn(t *testing.T) {
	c := NewTickClock(time.Time{})
	c.SetMs(50)

	time.Sleep(5 * time.Millisecond)

	if got := c.NowMs(); got != 50 {
		t.Fatalf("NowMs() = %d, want 50 (clock must not self-advance)", got)
	}
}
