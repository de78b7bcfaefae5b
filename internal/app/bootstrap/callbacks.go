package bootstrap

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/vigilante/internal/callback"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/pkg/logging"
)

const (
	memoryQueueBuffer = 256
	drainPollInterval = 50 * time.Millisecond
)

// Pipeline is the report path out of the engine. Worker is nil when reports
// go to SQS; cmd/callback-worker consumes them there.
type Pipeline struct {
	Publisher *callback.Publisher
	Worker    *callback.Worker

	memory *callback.MemoryQueue
	cancel context.CancelFunc
}

// BuildCallbackPipeline wires the publisher and, for the in-process queue,
// the worker that drains it.
func BuildCallbackPipeline(cfg *appconfig.Config, awsCfg aws.Config, sinks []callback.Sink, recorder callback.DeliveryRecorder, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.UsesSQS() {
		queue := callback.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CallbackQueueURL)
		logger.Info("callback queue", "backend", "sqs", "url", cfg.CallbackQueueURL)
		return &Pipeline{Publisher: callback.NewPublisher(queue, logger)}
	}

	queue := callback.NewMemoryQueue(memoryQueueBuffer)
	logger.Info("callback queue", "backend", "memory", "workers", cfg.CallbackWorkers, "sinks", len(sinks))
	return &Pipeline{
		Publisher: callback.NewPublisher(queue, logger),
		Worker:    callback.NewWorker(queue, sinks, logger, workerOptions(cfg, recorder)...),
		memory:    queue,
	}
}

// Start launches the in-process worker, if any.
func (p *Pipeline) Start() {
	if p.Worker == nil || p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.Worker.Start(ctx)
}

// Shutdown flushes scheduled reports, lets the worker empty the in-process
// queue until ctx is done, then stops it.
func (p *Pipeline) Shutdown(ctx context.Context) {
	p.Publisher.Close()
	if p.cancel == nil {
		return
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
drain:
	for p.memory.Len() > 0 {
		select {
		case <-ctx.Done():
			break drain
		case <-ticker.C:
		}
	}
	p.cancel()
	p.Worker.Wait()
}

// BuildSQSWorker is the consumer side of the SQS pipeline.
func BuildSQSWorker(cfg *appconfig.Config, awsCfg aws.Config, sinks []callback.Sink, recorder callback.DeliveryRecorder, logger *logging.Logger) *callback.Worker {
	queue := callback.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CallbackQueueURL)
	return callback.NewWorker(queue, sinks, logger, workerOptions(cfg, recorder)...)
}

func workerOptions(cfg *appconfig.Config, recorder callback.DeliveryRecorder) []callback.WorkerOption {
	opts := []callback.WorkerOption{
		callback.WithWorkerCount(cfg.CallbackWorkers),
		callback.WithSinkTimeout(cfg.CallbackTimeout),
	}
	if recorder != nil {
		opts = append(opts, callback.WithDeliveryRecorder(recorder))
	}
	return opts
}
