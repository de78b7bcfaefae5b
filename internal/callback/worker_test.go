package callback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/pkg/logging"
)

type recordingSink struct {
	name string
	err  error

	mu      sync.Mutex
	reports []Report
	done    chan struct{}
}

func newRecordingSink(name string, err error) *recordingSink {
	return &recordingSink{name: name, err: err, done: make(chan struct{}, 16)}
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, r Report) error {
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type recorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *recorder) ObserveCallback(sink, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[sink+"/"+status]++
}

func sampleReport(id string) Report {
	return NewReport(id, "grandma", 2, intel.NewRecord(),
		intel.Assessment{IsScam: true, Confidence: 0.7}, "stalling", true, time.Now())
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestWorkerDeliversToEverySinkEvenWhenOneFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := NewMemoryQueue(4)
	failing := newRecordingSink("evaluator", errors.New("boom"))
	ok := newRecordingSink("archive", nil)
	rec := &recorder{}

	worker := NewWorker(queue, []Sink{failing, nil, ok}, logging.Discard(),
		WithWorkerCount(1), WithReceiveWaitSeconds(1), WithDeliveryRecorder(rec))
	publisher := NewPublisher(queue, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	require.NoError(t, publisher.Publish(context.Background(), sampleReport("s1")))
	waitFor(t, failing.done)
	waitFor(t, ok.done)

	cancel()
	worker.Wait()

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, "s1", ok.reports[0].Payload.SessionID)
	assert.Equal(t, 1, rec.counts["evaluator/error"])
	assert.Equal(t, 1, rec.counts["archive/ok"])
	assert.Zero(t, queue.Len())
}

func TestWorkerSkipsUndecodableMessages(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := NewMemoryQueue(4)
	sink := newRecordingSink("evaluator", nil)
	worker := NewWorker(queue, []Sink{sink}, logging.Discard(), WithWorkerCount(1))

	require.NoError(t, queue.Send(context.Background(), "garbage"))
	require.NoError(t, NewPublisher(queue, nil).Publish(context.Background(), sampleReport("s2")))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	waitFor(t, sink.done)
	cancel()
	worker.Wait()

	assert.Equal(t, 1, sink.count())
}

func TestPublishIgnoresCallerCancellation(t *testing.T) {
	queue := NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, NewPublisher(queue, nil).Publish(ctx, sampleReport("s3")))
	assert.Equal(t, 1, queue.Len())
}

func TestDeliverCountsFailures(t *testing.T) {
	w := NewWorker(NewMemoryQueue(1), []Sink{
		newRecordingSink("a", errors.New("x")),
		newRecordingSink("b", nil),
	}, logging.Discard())

	assert.Equal(t, 1, w.Deliver(context.Background(), sampleReport("s4")))
}

func TestWorkerOptionsClamp(t *testing.T) {
	cfg := workerConfig{}
	WithReceiveWaitSeconds(99)(&cfg)
	WithReceiveBatchSize(50)(&cfg)
	WithWorkerCount(-1)(&cfg)
	assert.Equal(t, maxWaitSeconds, cfg.receiveWaitSecs)
	assert.Equal(t, maxReceiveBatchSize, cfg.receiveBatchSize)
	assert.Zero(t, cfg.workers)
}

func TestScheduleThenClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := NewMemoryQueue(4)
	p := NewPublisher(queue, logging.Discard())
	p.Schedule(sampleReport("a"))
	p.Schedule(sampleReport("b"))
	p.Close()

	assert.Equal(t, 2, queue.Len())

	p.Schedule(sampleReport("c"))
	assert.Equal(t, 2, queue.Len())
}

func TestScheduleDropsWhenQueueStaysFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := NewMemoryQueue(1)
	p := NewPublisher(queue, logging.Discard())
	p.timeout = 20 * time.Millisecond

	p.Schedule(sampleReport("a"))
	p.Schedule(sampleReport("b"))
	p.Close()

	assert.Equal(t, 1, queue.Len())
}
