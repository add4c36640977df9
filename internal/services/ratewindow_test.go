package services_test

import (
	"testing"
	"time"

	"gaadibazaar/internal/services"
)

func TestRateWindow_LimitsAndResets(t *testing.T) {
	w := services.NewRateWindow(2, time.Minute)
	now := time.Now()

	if !w.Allow("p1", now) || !w.Allow("p1", now) {
		t.Fatal("first two attempts must pass")
	}
	if w.Allow("p1", now) {
		t.Fatal("third attempt inside the window must be blocked")
	}

	// independent keys don't share a window
	if !w.Allow("p2", now) {
		t.Fatal("another partner must have its own window")
	}

	// window elapses: entry resets
	later := now.Add(time.Minute + time.Second)
	if !w.Allow("p1", later) {
		t.Fatal("expired window must reset")
	}
	if got := w.Remaining("p1", later); got != 1 {
		t.Fatalf("want 1 remaining after reset+1 attempt, got %d", got)
	}
}
