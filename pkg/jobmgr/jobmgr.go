// Package jobmgr runs named background jobs with cancellation and tracks the
// ones still running.
//
//	jm := jobmgr.NewManager(nil)
//	jm.Replace("idle:123", func(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	})
//	jm.Stop("idle:123")
//
// No retries, no persistence. A job is forgotten as soon as it returns.
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Job is a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
	done   chan struct{}
}

// StatusReporter receives lifecycle messages such as "running:idle:1",
// "error:idle:1:<err>" and "done:idle:1".
type StatusReporter func(string)

// Manager starts, stops and tracks jobs. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a Manager; reporter may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartAsync runs runner in its own goroutine. It fails when a job with the
// same name is still running.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already running", name)
	}
	m.startLocked(name, runner)
	return nil
}

// Replace cancels the job called name (if any) and starts runner in its place.
// It does not wait for the old job to return.
func (m *Manager) Replace(name string, runner func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.jobs[name]; ok {
		old.Cancel()
		delete(m.jobs, name)
	}
	m.startLocked(name, runner)
}

func (m *Manager) startLocked(name string, runner func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{Name: name, Cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = job

	go func() {
		defer close(job.done)
		defer cancel()
		m.report("running:" + name)

		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
}

// Stop cancels a running job by name. It reports whether a job was running.
func (m *Manager) Stop(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return false
	}
	job.Cancel()
	delete(m.jobs, name)
	return true
}

// StopAll cancels every running job and waits for them to return.
func (m *Manager) StopAll() {
	m.mu.Lock()
	running := make([]*Job, 0, len(m.jobs))
	for name, job := range m.jobs {
		job.Cancel()
		running = append(running, job)
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	for _, job := range running {
		<-job.done
	}
}

// List returns the names of running jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	m.mu.Unlock()

	sort.Strings(out)
	return out
}

// Status returns "Running jobs: a, b" or "No jobs are running.".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
