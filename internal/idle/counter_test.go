package idle

import (
	"testing"

	"loadwatch/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelError)
}

func TestCounter_Creation(t *testing.T) {
	counter := NewCounter(3, testLogger())

	if counter == nil {
		t.Fatal("Expected counter to be created")
	}
	if counter.Count() != 0 {
		t.Errorf("Expected initial count 0, got %d", counter.Count())
	}
	if counter.Required() != 3 {
		t.Errorf("Expected required 3, got %d", counter.Required())
	}
}

func TestCounter_CommitAfterRequiredStreak(t *testing.T) {
	counter := NewCounter(3, testLogger())

	if counter.Observe(true) {
		t.Error("Commit after 1 low verdict, expected none")
	}
	if counter.Observe(true) {
		t.Error("Commit after 2 low verdicts, expected none")
	}
	if !counter.Observe(true) {
		t.Error("Expected commit after 3rd consecutive low verdict")
	}
}

func TestCounter_HighVerdictResetsStreak(t *testing.T) {
	counter := NewCounter(3, testLogger())

	counter.Observe(true)
	counter.Observe(true)

	if counter.Observe(false) {
		t.Error("High verdict must never commit")
	}
	if counter.Count() != 0 {
		t.Errorf("Expected full reset after high verdict, got count %d", counter.Count())
	}

	// The streak must start over from scratch
	counter.Observe(true)
	counter.Observe(true)
	if counter.Count() != 2 {
		t.Errorf("Expected count 2 after fresh partial streak, got %d", counter.Count())
	}
	if !counter.Observe(true) {
		t.Error("Expected commit after fresh full streak")
	}
}

func TestCounter_CountStaysWithinBounds(t *testing.T) {
	const required = 3
	counter := NewCounter(required, testLogger())

	verdicts := []bool{true, true, false, true, true, true, false, false, true, true, true, true, true}
	for i, low := range verdicts {
		commit := counter.Observe(low)
		if counter.Count() < 0 || counter.Count() > required {
			t.Fatalf("Count out of bounds after verdict %d: %d", i, counter.Count())
		}
		if commit {
			counter.Reset()
		}
	}
}

func TestCounter_CommitOncePerStreak(t *testing.T) {
	counter := NewCounter(2, testLogger())

	commits := 0
	for _, low := range []bool{true, true} {
		if counter.Observe(low) {
			commits++
			counter.Reset()
		}
	}

	if commits != 1 {
		t.Errorf("Expected exactly one commit per streak, got %d", commits)
	}
	if counter.Count() != 0 {
		t.Errorf("Expected count 0 after commit was acted upon, got %d", counter.Count())
	}
}

func TestCounter_ReEmitsCommitWhenAlreadyAtRequired(t *testing.T) {
	// Defensive path: an observation arriving at count == required must
	// re-emit commit without growing the count.
	counter := NewCounter(2, testLogger())

	counter.Observe(true)
	if !counter.Observe(true) {
		t.Fatal("Expected commit at required streak")
	}

	// Commit not acted upon (no Reset) before the next low observation
	if !counter.Observe(true) {
		t.Error("Expected re-emitted commit when count already at required")
	}
	if counter.Count() != 2 {
		t.Errorf("Expected count to stay at required, got %d", counter.Count())
	}
}

func TestCounter_RequiredOne(t *testing.T) {
	counter := NewCounter(1, testLogger())

	if !counter.Observe(true) {
		t.Error("Expected immediate commit with required=1")
	}
	counter.Reset()

	if counter.Observe(false) {
		t.Error("High verdict must not commit even with required=1")
	}
}
