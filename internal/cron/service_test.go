package cron

import (
	"context"
	"errors"
	"testing"
)

type recordedJob struct {
	name string
	runs int
	err  error
}

func (j *recordedJob) Name() string { return j.name }

func (j *recordedJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

type stubLock struct {
	held     bool
	acquires int
	releases int
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return !l.held, nil
}

func (l *stubLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

func TestRegistryPreservesOrderAndSkipsNil(t *testing.T) {
	a := &recordedJob{name: "a"}
	b := &recordedJob{name: "b"}
	registry := NewRegistry(a, nil, b)
	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0].Name() != "a" || jobs[1].Name() != "b" {
		t.Fatalf("unexpected jobs: %v", jobs)
	}
}

func TestRunCycleRunsEveryJobAndReleasesLock(t *testing.T) {
	first := &recordedJob{name: "first"}
	second := &recordedJob{name: "second", err: errors.New("boom")}
	third := &recordedJob{name: "third"}
	lock := &stubLock{}

	svc, err := NewService(ServiceParams{
		Logger:   cronTestLogger(),
		Registry: NewRegistry(first, second, third),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle returned error: %v", err)
	}

	if first.runs != 1 || second.runs != 1 || third.runs != 1 {
		t.Fatalf("every job should run once despite failures: %d %d %d", first.runs, second.runs, third.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("lock should be released, got %d releases", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &recordedJob{name: "only"}
	lock := &stubLock{held: true}

	svc, _ := NewService(ServiceParams{
		Logger:   cronTestLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle returned error: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("jobs must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatal("lock release should be skipped when not acquired")
	}
}
