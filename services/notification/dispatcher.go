package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/upb/ciw-intake/internal/observability"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/repositories"
	"github.com/upb/ciw-intake/services"
	"go.uber.org/zap"
)

// Notification results recorded in metrics
const (
	ResultQueued  = "queued"
	ResultWritten = "written"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
)

// Dispatcher renders notifications and writes them to the email outbox
// from a pool of background workers.
type Dispatcher struct {
	outbox      repositories.OutboxRepository
	renderer    *Renderer
	metrics     *observability.Metrics
	logger      *zap.Logger
	queue       chan *models.OutboxMessage
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	stopped     bool
	mu          sync.Mutex
}

// Config holds configuration for the Dispatcher
type Config struct {
	From           string
	SupportAddress string
	BufferSize     int // Size of the message buffer channel
	WorkerCount    int // Number of concurrent outbox writers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		From:           "ciw-intake@gsa.gov",
		SupportAddress: "gcims-support@gsa.gov",
		BufferSize:     100,
		WorkerCount:    2,
	}
}

// NewDispatcher creates a new Dispatcher. It fails only when a template
// does not parse.
func NewDispatcher(outbox repositories.OutboxRepository, config Config, metrics *observability.Metrics, logger *zap.Logger) (*Dispatcher, error) {
	renderer, err := NewRenderer(config.From, config.SupportAddress)
	if err != nil {
		return nil, err
	}
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.BufferSize < 1 {
		config.BufferSize = 1
	}

	return &Dispatcher{
		outbox:      outbox,
		renderer:    renderer,
		metrics:     metrics,
		logger:      logger,
		queue:       make(chan *models.OutboxMessage, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}, nil
}

// Start starts the background workers
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return fmt.Errorf("notification dispatcher already started")
	}
	if d.stopped {
		return fmt.Errorf("notification dispatcher stopped")
	}

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	d.started = true
	d.logger.Info("started notification dispatcher",
		zap.Int("worker_count", d.workerCount),
		zap.Int("buffer_size", d.bufferSize))

	return nil
}

// Stop stops accepting notifications and waits for queued messages to be
// written
func (d *Dispatcher) Stop(timeout time.Duration) error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return fmt.Errorf("notification dispatcher not started")
	}
	d.started = false
	d.stopped = true
	d.logger.Info("stopping notification dispatcher", zap.Int("pending_messages", len(d.queue)))
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("notification dispatcher stop timeout after %v", timeout)
	}
}

// Notify renders n and queues it for the outbox without blocking. Rendering
// errors and a full buffer are returned; the caller only logs them.
func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) error {
	msg, err := d.renderer.Render(n)
	if err != nil {
		d.metrics.IncrementNotification(string(n.Kind), ResultFailed)
		return services.WrapError(services.ErrNotifyFailed, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return fmt.Errorf("notification dispatcher not started")
	}

	select {
	case d.queue <- msg:
		d.metrics.IncrementNotification(string(n.Kind), ResultQueued)
		return nil
	default:
		d.logger.Warn("notification buffer full, dropping message",
			zap.String("kind", string(n.Kind)),
			zap.String("file_id", n.FileID))
		d.metrics.IncrementNotification(string(n.Kind), ResultDropped)
		return services.WrapError(services.ErrNotifyFailed, fmt.Errorf("notification buffer full"))
	}
}

// worker writes messages from the queue
func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	d.logger.Debug("notification worker started", zap.Int("worker_id", id))

	for msg := range d.queue {
		if err := d.write(msg); err != nil {
			d.metrics.IncrementNotification(string(msg.Kind), ResultFailed)
			d.logger.Error("failed to write notification",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("kind", string(msg.Kind)),
				zap.String("file_id", msg.FileID))
			continue
		}
		d.metrics.IncrementNotification(string(msg.Kind), ResultWritten)
	}

	d.logger.Debug("notification worker stopped", zap.Int("worker_id", id))
}

func (d *Dispatcher) write(msg *models.OutboxMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.outbox.Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	return nil
}

// Stats returns statistics about the dispatcher
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Stats{
		BufferSize:      d.bufferSize,
		PendingMessages: len(d.queue),
		WorkerCount:     d.workerCount,
		Started:         d.started,
	}
}

// Stats represents dispatcher statistics
type Stats struct {
	BufferSize      int
	PendingMessages int
	WorkerCount     int
	Started         bool
}
