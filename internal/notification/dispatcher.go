package notification

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/property-management/internal/core/events"
	"github.com/frahmantamala/property-management/internal/metrics"
)

var ErrQueueFull = stderrors.New("notification queue full")

type Job struct {
	Kind    string
	EventID string
	Notice  events.PaymentNotice
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("mail worker processing job", "worker_id", w.ID, "kind", job.Kind, "payment_id", job.Notice.PaymentID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers   int
	JobQueueSize int
	SendTimeout  time.Duration
}

// Dispatcher renders and delivers notification mail on a bounded pool of
// workers. Enqueue never blocks; a full queue drops the job.
type Dispatcher struct {
	mailer      Mailer
	logger      *slog.Logger
	sendTimeout time.Duration

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewDispatcher(config DispatcherConfig, mailer Mailer, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}

	return &Dispatcher{
		mailer:      mailer,
		logger:      logger,
		sendTimeout: sendTimeout,
		maxWorkers:  maxWorkers,
		jobQueue:    make(chan Job, jobQueueSize),
		workerPool:  make(chan chan Job, maxWorkers),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("notification dispatcher shutting down")
			return
		}
	}
}

func (d *Dispatcher) Enqueue(job Job) error {
	select {
	case d.jobQueue <- job:
		d.logger.Debug("notification queued",
			"kind", job.Kind,
			"payment_id", job.Notice.PaymentID,
			"queue_length", len(d.jobQueue))
		return nil
	default:
		metrics.Notifications.WithLabelValues(job.Kind, "dropped").Inc()
		d.logger.Warn("notification queue full, dropping job",
			"kind", job.Kind,
			"payment_id", job.Notice.PaymentID,
			"queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

// Drain waits until queued jobs have been handed to workers or ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for len(d.jobQueue) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down notification dispatcher")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}

func (d *Dispatcher) process(job Job) {
	msg, err := render(job.Kind, job.Notice)
	if err != nil {
		metrics.Notifications.WithLabelValues(job.Kind, "failed").Inc()
		d.logger.Error("failed to render notification", "error", err, "kind", job.Kind, "payment_id", job.Notice.PaymentID)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), d.sendTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, msg); err != nil {
		metrics.Notifications.WithLabelValues(job.Kind, "failed").Inc()
		d.logger.Error("failed to send notification",
			"error", err,
			"kind", job.Kind,
			"payment_id", job.Notice.PaymentID,
			"event_id", job.EventID)
		return
	}

	metrics.Notifications.WithLabelValues(job.Kind, "sent").Inc()
	d.logger.Info("notification sent",
		"kind", job.Kind,
		"payment_id", job.Notice.PaymentID,
		"event_id", job.EventID)
}
