// Package writeback runs fire-and-forget storage writes on a fixed set of
// workers fed by a bounded queue.
package writeback

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"city-weather/internal/metrics"
	"city-weather/pkg/logger"
)

type Task func(ctx context.Context) error

// Failure describes a task that returned an error or panicked.
type Failure struct {
	TaskID   string
	Name     string
	Err      error
	Panicked bool
}

type job struct {
	id   string
	name string
	run  Task
}

type Pool struct {
	workers  int
	tasks    chan job
	failures chan Failure

	mu      sync.RWMutex
	closed  bool
	started bool

	wg       sync.WaitGroup
	stopOnce sync.Once
	drained  chan struct{}

	l *logger.Logger
	m *metrics.Metrics
}

func New(workers, queueSize int, l *logger.Logger, m *metrics.Metrics) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Pool{
		workers:  workers,
		tasks:    make(chan job, queueSize),
		failures: make(chan Failure, queueSize),
		drained:  make(chan struct{}),
		l:        l.With(map[string]any{"component": "writeback"}),
		m:        m,
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.l.Info("write-back pool started", map[string]any{"workers": p.workers, "queue": cap(p.tasks)})
}

// Submit enqueues task without blocking. It returns false when the queue is
// full or the pool is stopped; the task is then dropped.
func (p *Pool) Submit(name string, task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.m.WritebackTask(name, "rejected")
		return false
	}

	j := job{id: uuid.NewString(), name: name, run: task}
	select {
	case p.tasks <- j:
		p.m.WritebackQueueDepth(len(p.tasks))
		return true
	default:
		p.m.WritebackTask(name, "dropped")
		p.l.Warning("write-back queue full, task dropped", map[string]any{"task": name, "task_id": j.id})
		return false
	}
}

// Failures is closed once every accepted task has finished after Stop.
// Failures that find the channel full are only counted and logged.
func (p *Pool) Failures() <-chan Failure {
	return p.failures
}

// Stop rejects new tasks and waits for queued ones to finish. If ctx ends
// first the remaining tasks keep running and ctx's error is returned.
func (p *Pool) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()

		go func() {
			p.wg.Wait()
			close(p.failures)
			close(p.drained)
		}()
	})

	select {
	case <-p.drained:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "write-back drain")
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.tasks {
		p.m.WritebackQueueDepth(len(p.tasks))
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			p.fail(Failure{TaskID: j.id, Name: j.name, Err: errors.Errorf("panic: %v", r), Panicked: true})
		}
	}()

	if err := j.run(context.Background()); err != nil {
		p.fail(Failure{TaskID: j.id, Name: j.name, Err: err})
		return
	}
	p.m.WritebackTask(j.name, "ok")
}

func (p *Pool) fail(f Failure) {
	outcome := "failed"
	if f.Panicked {
		outcome = "panic"
	}
	p.m.WritebackTask(f.Name, outcome)

	select {
	case p.failures <- f:
	default:
		p.l.Error(f.Err, map[string]any{"task": f.Name, "task_id": f.TaskID, "note": "failure channel full"})
	}
}
