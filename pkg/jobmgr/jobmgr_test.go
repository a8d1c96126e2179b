package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartAsyncRejectsDuplicates(t *testing.T) {
	m := NewManager(nil)
	block := func(ctx context.Context) error { <-ctx.Done(); return nil }

	if err := m.StartAsync("a", block); err != nil {
		t.Fatal(err)
	}
	if err := m.StartAsync("a", block); err == nil {
		t.Fatal("duplicate job should fail")
	}
	if !m.Stop("a") {
		t.Fatal("Stop should report a running job")
	}
	if m.Stop("a") {
		t.Fatal("second Stop should report nothing running")
	}
	if got := m.Status(); got != "No jobs are running." {
		t.Errorf("Status = %q", got)
	}
}

func TestReplaceCancelsPrevious(t *testing.T) {
	m := NewManager(nil)
	firstDone := make(chan struct{})

	m.Replace("idle", func(ctx context.Context) error {
		<-ctx.Done()
		close(firstDone)
		return nil
	})
	m.Replace("idle", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first job was not cancelled")
	}

	// the old job finishing must not drop the replacement
	if got := m.List(); len(got) != 1 || got[0] != "idle" {
		t.Fatalf("List = %v", got)
	}
	m.StopAll()
	if len(m.List()) != 0 {
		t.Error("StopAll left jobs behind")
	}
}

func TestReporterAndCompletion(t *testing.T) {
	var mu sync.Mutex
	var events []string
	m := NewManager(func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})

	_ = m.StartAsync("ok", func(context.Context) error { return nil })
	_ = m.StartAsync("bad", func(context.Context) error { return errors.New("boom") })

	waitFor(t, func() bool { return len(m.List()) == 0 })
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 4
	})

	mu.Lock()
	defer mu.Unlock()
	seen := map[string]bool{}
	for _, e := range events {
		seen[e] = true
	}
	for _, want := range []string{"running:ok", "done:ok", "running:bad", "error:bad:boom"} {
		if !seen[want] {
			t.Errorf("missing event %q in %v", want, events)
		}
	}
}

func TestStopAllWaitsForJobs(t *testing.T) {
	m := NewManager(nil)
	returned := false

	_ = m.StartAsync("sync", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		returned = true
		return nil
	})

	m.StopAll()
	if !returned {
		t.Error("StopAll returned before the job did")
	}
}
