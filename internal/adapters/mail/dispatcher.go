package mail

import (
	"sync"

	"go.uber.org/zap"
)

type Job struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single mail synchronously. The SMTP implementation
// lives in sender.go; tests substitute a stub.
type Sender interface {
	Send(job Job) error
}

// Dispatcher decouples request latency from delivery latency: Enqueue
// returns immediately and a pool of workers drains the queue. Delivery is
// best-effort; a failed or dropped job is logged, never surfaced to the
// enqueuing request.
type Dispatcher struct {
	jobs   chan Job
	sender Sender
	log    *zap.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(sender Sender, workers, queueSize int, log *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		jobs:   make(chan Job, queueSize),
		sender: sender,
		log:    log,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue never blocks: when the queue is full the job is dropped, which is
// an accepted loss since the caller can always trigger a resend.
func (d *Dispatcher) Enqueue(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn("mail dispatcher closed, dropping job", zap.String("to", job.To))
		return
	}
	select {
	case d.jobs <- job:
	default:
		d.log.Warn("mail queue full, dropping job",
			zap.String("to", job.To),
			zap.String("subject", job.Subject),
		)
	}
}

// Close stops intake, drains queued jobs and waits for the workers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.jobs)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		if err := d.sender.Send(job); err != nil {
			d.log.Error("mail delivery failed",
				zap.String("to", job.To),
				zap.String("subject", job.Subject),
				zap.Error(err),
			)
			continue
		}
		d.log.Debug("mail delivered", zap.String("to", job.To))
	}
}
