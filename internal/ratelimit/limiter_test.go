package ratelimit

import (
	"testing"
	"time"
)

func TestAllowUpToMax(t *testing.T) {
	l := New(time.Minute, 5)

	for i := 0; i < 5; i++ {
		if !l.Allow("ip1") {
			t.Fatalf("Attempt %d should be admitted", i+1)
		}
	}
	if l.Allow("ip1") {
		t.Error("6th attempt should be limited")
	}
}

func TestLimitedAttemptNotRecorded(t *testing.T) {
	l := New(time.Minute, 2)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("k")
	now = now.Add(30 * time.Second)
	l.Allow("k")

	// Window is full; hammering while limited must not extend it.
	for i := 0; i < 10; i++ {
		now = now.Add(time.Second)
		if l.Allow("k") {
			t.Fatal("Attempt should be limited")
		}
	}

	// 65s in: the first hit has slid out, only the 30s hit remains.
	now = now.Add(25 * time.Second)
	if !l.Allow("k") {
		t.Error("Attempt should be admitted once the oldest hit slides out")
	}
}

func TestKeysIsolated(t *testing.T) {
	l := New(time.Minute, 1)

	if !l.Allow("a") {
		t.Fatal("First attempt for a should be admitted")
	}
	if !l.Allow("b") {
		t.Error("Attempts for b must not be affected by a")
	}
	if l.Allow("a") {
		t.Error("Second attempt for a should be limited")
	}
}

func TestSweepRemovesDrainedKeys(t *testing.T) {
	l := New(time.Minute, 5)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(30 * time.Second)
	l.Allow("fresh")

	now = now.Add(45 * time.Second)
	l.sweep()

	if l.Keys() != 1 {
		t.Errorf("Expected 1 tracked key after sweep, got %d", l.Keys())
	}
	if !l.Allow("old") {
		t.Error("Swept key should start a fresh window")
	}
}
