package callback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/vigilante/pkg/logging"
)

const defaultPublishTimeout = 3 * time.Second

// Publisher hands reports to the delivery queue.
type Publisher struct {
	queue   queueClient
	timeout time.Duration
	logger  *logging.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPublisher wraps a queue (MemoryQueue or SQSQueue).
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("callback: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, timeout: defaultPublishTimeout, logger: logger}
}

// Publish enqueues a report. The caller's cancellation does not abort the
// enqueue; only the publisher's own timeout does.
func (p *Publisher) Publish(ctx context.Context, r Report) error {
	body, err := encodeReport(r)
	if err != nil {
		return err
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.queue.Send(sendCtx, body); err != nil {
		return fmt.Errorf("callback: enqueue report for %s: %w", r.Payload.SessionID, err)
	}
	p.logger.Debug("callback report enqueued",
		"session_id", r.Payload.SessionID,
		"report_id", r.ID,
		"first_detection", r.FirstDetection,
	)
	return nil
}

// Schedule publishes in the background so the caller never waits on the
// queue. Failures are logged. After Close it is a no-op.
func (p *Publisher) Schedule(r Report) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("callback publisher closed, dropping report", "session_id", r.Payload.SessionID)
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		if err := p.Publish(context.Background(), r); err != nil {
			p.logger.Error("failed to schedule callback report",
				"session_id", r.Payload.SessionID,
				"error", err,
			)
		}
	}()
}

// Close stops accepting reports and waits for in-flight sends.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
