// Package queue implements the asynchronous notification dispatcher. Writes
// are fire-and-forget from the caller's point of view: a full queue or a
// failed write is logged, never surfaced to the request that produced it.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/brandreg/crm-api/internal/api/metrics"
	"github.com/brandreg/crm-api/internal/core/ports"
)

const defaultQueueSize = 256

// Dispatcher fans notification writes out to a fixed pool of workers.
// Notifications for the same job hash to the same worker, so per-job
// ordering is preserved.
type Dispatcher struct {
	service ports.NotificationService
	workers []chan ports.NotificationInput
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(service ports.NotificationService, workers int, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	d := &Dispatcher{
		service: service,
		workers: make([]chan ports.NotificationInput, workers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotificationInput, defaultQueueSize)
	}
	return d
}

// Start launches the worker goroutines. Workers drain their channels after
// ctx is cancelled, so already-enqueued notifications are still written.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Wait stops intake, then blocks until all workers have drained and exited.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue routes one notification to its worker. It never blocks: when the
// worker's queue is full, or the dispatcher has already been stopped, the
// notification is dropped with a warning.
func (d *Dispatcher) Enqueue(in ports.NotificationInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn().
			Str("type", string(in.Type)).
			Str("job_id", in.JobID).
			Msg("dispatcher stopped, dropping notification")
		return
	}
	idx := d.shard(in)
	select {
	case d.workers[idx] <- in:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().
			Int("worker_id", idx).
			Str("type", string(in.Type)).
			Str("job_id", in.JobID).
			Msg("notification queue full, dropping")
	}
}

// shard picks a worker by hashing the job id, falling back to the addressee
// for notifications without one.
func (d *Dispatcher) shard(in ports.NotificationInput) int {
	key := in.JobID
	if key == "" {
		key = in.Recipient + in.Role
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for in := range d.workers[id] {
		metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(d.workers[id])))
		// Writes use a detached context so shutdown does not abort them.
		if err := d.service.Notify(context.WithoutCancel(ctx), in); err != nil {
			d.log.Error().Err(err).
				Str("type", string(in.Type)).
				Str("job_id", in.JobID).
				Msg("notification write failed")
		}
	}
}
