package agent

import (
	"fmt"
	"testing"
	"time"

	"loadwatch/internal/idle"
	"loadwatch/internal/logging"
	"loadwatch/internal/state"
)

type scriptedSampler struct {
	samples []float64
	calls   int
	err     error
}

func (s *scriptedSampler) Sample() (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.calls >= len(s.samples) {
		return 0, fmt.Errorf("sampler script exhausted after %d calls", s.calls)
	}
	sample := s.samples[s.calls]
	s.calls++
	return sample, nil
}

type fakeSuspender struct {
	calls int
	err   error
}

func (f *fakeSuspender) Suspend() error {
	f.calls++
	return f.err
}

type fakeGuard struct {
	blocked bool
	reason  string
}

func (g *fakeGuard) Blocked() (bool, string) {
	return g.blocked, g.reason
}

type statusRecorder struct {
	snapshots []state.Status
}

func (r *statusRecorder) Save(s state.Status) error {
	r.snapshots = append(r.snapshots, s)
	return nil
}

func newTestAgent(sampler LoadSampler, suspender Suspender, guard SuspendGuard, threshold float64, required int) *Agent {
	logger := logging.NewLogger(logging.LevelError)
	return &Agent{
		logger:    logger,
		sampler:   sampler,
		suspender: suspender,
		guard:     guard,
		status:    &statusRecorder{},
		counter:   idle.NewCounter(required, logger),
		threshold: threshold,
		interval:  time.Second,
	}
}

func runTicks(t *testing.T, a *Agent, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := a.tick(); err != nil {
			t.Fatalf("tick %d failed: %v", i+1, err)
		}
	}
}

func TestAgent_SuspendsAfterConsecutiveLowSamples(t *testing.T) {
	// ratio 0.5 on 8 cores gives threshold 4.0; three samples below it
	// must trigger exactly one suspend, right after the third sample.
	sampler := &scriptedSampler{samples: []float64{3.9, 3.8, 3.7}}
	suspender := &fakeSuspender{}
	a := newTestAgent(sampler, suspender, &fakeGuard{}, 4.0, 3)

	runTicks(t, a, 2)
	if suspender.calls != 0 {
		t.Fatalf("Expected no suspend before the streak completes, got %d", suspender.calls)
	}

	runTicks(t, a, 1)
	if suspender.calls != 1 {
		t.Errorf("Expected exactly one suspend after 3rd low sample, got %d", suspender.calls)
	}
	if a.counter.Count() != 0 {
		t.Errorf("Expected counter reset after suspend, got %d", a.counter.Count())
	}
}

func TestAgent_HighSampleResetsStreak(t *testing.T) {
	// Samples 1-2 are low (count 2), sample 3 is high (reset), samples
	// 4-6 rebuild the streak; the suspend happens at sample 6 only.
	sampler := &scriptedSampler{samples: []float64{3.9, 3.8, 4.5, 3.7, 3.6, 3.5}}
	suspender := &fakeSuspender{}
	a := newTestAgent(sampler, suspender, &fakeGuard{}, 4.0, 3)

	runTicks(t, a, 3)
	if suspender.calls != 0 {
		t.Fatalf("Expected no suspend after reset, got %d", suspender.calls)
	}
	if a.counter.Count() != 0 {
		t.Fatalf("Expected count 0 after high sample, got %d", a.counter.Count())
	}

	runTicks(t, a, 2)
	if suspender.calls != 0 {
		t.Fatalf("Expected no suspend at count 2, got %d", suspender.calls)
	}

	runTicks(t, a, 1)
	if suspender.calls != 1 {
		t.Errorf("Expected suspend at 6th sample, got %d calls", suspender.calls)
	}
}

func TestAgent_ThresholdEqualityIsNotLow(t *testing.T) {
	// A sample exactly at the threshold must not extend the streak
	sampler := &scriptedSampler{samples: []float64{3.9, 4.0, 3.9}}
	suspender := &fakeSuspender{}
	a := newTestAgent(sampler, suspender, &fakeGuard{}, 4.0, 2)

	runTicks(t, a, 3)

	if suspender.calls != 0 {
		t.Errorf("Expected no suspend, equality broke the streak; got %d calls", suspender.calls)
	}
	if a.counter.Count() != 1 {
		t.Errorf("Expected streak 1 after reset and one low sample, got %d", a.counter.Count())
	}
}

func TestAgent_SampleFailureIsFatal(t *testing.T) {
	sampler := &scriptedSampler{err: fmt.Errorf("loadavg unreadable")}
	a := newTestAgent(sampler, &fakeSuspender{}, &fakeGuard{}, 4.0, 3)

	if err := a.tick(); err == nil {
		t.Error("Expected fatal error when the load sample fails")
	}
}

func TestAgent_SuspendFailureIsFatalAndKeepsCounter(t *testing.T) {
	sampler := &scriptedSampler{samples: []float64{3.0, 3.0, 3.0}}
	suspender := &fakeSuspender{err: fmt.Errorf("suspend rejected")}
	a := newTestAgent(sampler, suspender, &fakeGuard{}, 4.0, 3)

	runTicks(t, a, 2)

	err := a.tick()
	if err == nil {
		t.Fatal("Expected fatal error when suspend fails")
	}
	if suspender.calls != 1 {
		t.Errorf("Expected a single suspend attempt, got %d", suspender.calls)
	}
	// The process terminates on this path; the counter is not reset
	if a.counter.Count() != 3 {
		t.Errorf("Expected counter untouched on suspend failure, got %d", a.counter.Count())
	}
}

func TestAgent_GuardSuppressesSuspend(t *testing.T) {
	sampler := &scriptedSampler{samples: []float64{3.0, 3.0, 3.0, 3.0}}
	suspender := &fakeSuspender{}
	a := newTestAgent(sampler, suspender, &fakeGuard{blocked: true, reason: "override_file"}, 4.0, 3)

	runTicks(t, a, 3)

	if suspender.calls != 0 {
		t.Errorf("Expected suspend suppressed by guard, got %d calls", suspender.calls)
	}
	// A suppressed commit still requires a fresh full streak afterwards
	if a.counter.Count() != 0 {
		t.Errorf("Expected counter reset after suppressed commit, got %d", a.counter.Count())
	}

	runTicks(t, a, 1)
	if a.counter.Count() != 1 {
		t.Errorf("Expected new streak to start from scratch, got %d", a.counter.Count())
	}
}

func TestAgent_WritesStatusEveryTick(t *testing.T) {
	sampler := &scriptedSampler{samples: []float64{3.9, 4.5}}
	recorder := &statusRecorder{}
	a := newTestAgent(sampler, &fakeSuspender{}, &fakeGuard{}, 4.0, 3)
	a.status = recorder

	runTicks(t, a, 2)

	if len(recorder.snapshots) != 2 {
		t.Fatalf("Expected 2 status snapshots, got %d", len(recorder.snapshots))
	}

	first := recorder.snapshots[0]
	if first.Load != 3.9 || !first.LowLoad || first.Streak != 1 || first.Threshold != 4.0 {
		t.Errorf("Unexpected first snapshot: %+v", first)
	}

	second := recorder.snapshots[1]
	if second.Load != 4.5 || second.LowLoad || second.Streak != 0 {
		t.Errorf("Unexpected second snapshot: %+v", second)
	}
}

func TestAgent_SuspendCountInStatus(t *testing.T) {
	sampler := &scriptedSampler{samples: []float64{1.0, 1.0}}
	recorder := &statusRecorder{}
	a := newTestAgent(sampler, &fakeSuspender{}, &fakeGuard{}, 4.0, 1)
	a.status = recorder

	runTicks(t, a, 2)

	if got := recorder.snapshots[1].Suspends; got != 2 {
		t.Errorf("Expected 2 suspends recorded, got %d", got)
	}
}
