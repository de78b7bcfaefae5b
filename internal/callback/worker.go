package callback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/vigilante/pkg/logging"
)

// Sink receives every dequeued report. Sinks are independent; one failing
// does not stop the others.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r Report) error
}

// DeliveryRecorder observes per-sink outcomes.
type DeliveryRecorder interface {
	ObserveCallback(sink, status string)
}

const (
	defaultWorkerCount  = 2
	defaultWaitSeconds  = 2
	defaultBatchSize    = 5
	maxWaitSeconds      = 20
	maxReceiveBatchSize = 10
	defaultSinkTimeout  = 5 * time.Second
	deleteTimeout       = 5 * time.Second
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	sinkTimeout      time.Duration
	recorder         DeliveryRecorder
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithSinkTimeout bounds each sink delivery.
func WithSinkTimeout(d time.Duration) WorkerOption {
	return func(cfg *workerConfig) {
		if d > 0 {
			cfg.sinkTimeout = d
		}
	}
}

// WithDeliveryRecorder wires per-sink delivery metrics.
func WithDeliveryRecorder(r DeliveryRecorder) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.recorder = r
	}
}

// Worker consumes queued reports and fans them out to the sinks.
type Worker struct {
	queue  queueClient
	sinks  []Sink
	logger *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

// NewWorker builds a worker. Nil sinks are skipped.
func NewWorker(queue queueClient, sinks []Sink, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("callback: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
		sinkTimeout:      defaultSinkTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Worker{queue: queue, sinks: active, logger: logger, cfg: cfg}
}

// Start launches the consumer goroutines; they exit when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("callback worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("callback worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to receive callback reports", "error", err, "worker_id", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	// Delivery is single-attempt: the message is removed whatever the outcome.
	defer w.deleteMessage(msg.ReceiptHandle)

	report, err := decodeReport(msg.Body)
	if err != nil {
		w.logger.Error("failed to decode callback report", "error", err, "msg_id", msg.ID)
		return
	}
	w.Deliver(ctx, report)
}

// Deliver runs every sink for one report and returns the number that failed.
func (w *Worker) Deliver(ctx context.Context, r Report) int {
	failed := 0
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.sinkTimeout)
		err := sink.Deliver(sinkCtx, r)
		cancel()

		status := "ok"
		if err != nil {
			status = "error"
			failed++
			w.logger.Error("callback delivery failed",
				"sink", sink.Name(),
				"session_id", r.Payload.SessionID,
				"report_id", r.ID,
				"error", err,
			)
		} else {
			w.logger.Info("callback delivered",
				"sink", sink.Name(),
				"session_id", r.Payload.SessionID,
				"report_id", r.ID,
			)
		}
		if w.cfg.recorder != nil {
			w.cfg.recorder.ObserveCallback(sink.Name(), status)
		}
	}
	return failed
}

func (w *Worker) deleteMessage(receiptHandle string) {
	if receiptHandle == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete callback report", "error", err)
	}
}
