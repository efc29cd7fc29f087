package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("queue: closed")

// Job runs on a worker. If Errc is set it receives the job's result.
type Job struct {
	Fn   func() error
	Errc chan error
}

// Manager runs jobs on a fixed set of workers. Enqueue never blocks, so a job
// may enqueue further jobs. With one worker, jobs run strictly in order.
type Manager struct {
	MaxWorkers int

	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []Job
	closed bool
	wg     sync.WaitGroup
	logger zerolog.Logger
}

func NewManager(maxWorkers int, logger zerolog.Logger) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	m := &Manager{
		MaxWorkers: maxWorkers,
		logger:     logger.With().Str("component", "queue").Logger(),
	}
	m.cond = sync.NewCond(&m.mu)
	m.startWorkers()
	return m
}

// NewSerial returns a manager with a single worker.
func NewSerial(logger zerolog.Logger) *Manager {
	return NewManager(1, logger)
}

func (m *Manager) startWorkers() {
	for i := 0; i < m.MaxWorkers; i++ {
		m.wg.Add(1)
		go func(workerID int) {
			defer m.wg.Done()
			m.logger.Debug().Int("worker", workerID).Msg("worker started")
			for {
				job, ok := m.next()
				if !ok {
					break
				}
				err := run(job.Fn)
				if err != nil && job.Errc == nil {
					m.logger.Warn().Err(err).Int("worker", workerID).Msg("job failed")
				}
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			m.logger.Debug().Int("worker", workerID).Msg("worker stopped")
		}(i)
	}
}

func (m *Manager) next() (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.jobs) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.jobs) == 0 {
		return Job{}, false
	}
	job := m.jobs[0]
	m.jobs[0] = Job{}
	m.jobs = m.jobs[1:]
	return job, true
}

func run(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("queue: job panicked: %v", p)
		}
	}()
	if fn == nil {
		return nil
	}
	return fn()
}

// EnqueueJob adds job to the queue. It returns ErrClosed after Shutdown.
// Errc, if set, should be buffered when the caller does not wait on it.
func (m *Manager) EnqueueJob(job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.jobs = append(m.jobs, job)
	m.cond.Signal()
	return nil
}

// Do enqueues fn and waits for it. It must not be called from inside a job on
// a single-worker manager.
func (m *Manager) Do(fn func() error) error {
	errc := make(chan error, 1)
	if err := m.EnqueueJob(Job{Fn: fn, Errc: errc}); err != nil {
		return err
	}
	return <-errc
}

// Depth is the number of jobs waiting to run.
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Shutdown stops accepting jobs, lets queued jobs finish and waits for the workers.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.wg.Wait()
		return
	}
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()
	m.wg.Wait()
}
