package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"flock/internal/broker"
	"flock/internal/constants"
	"flock/internal/logger"
	"flock/pkg/metrics"
	"flock/pkg/models"
)

var ErrWorkerStopped = errors.New("fan-out worker is not running")

// Worker supervises the consume loop that feeds Service.
type Worker struct {
	consumer       broker.Consumer
	handler        broker.HandlerFunc
	topic          string
	unhealthyAfter int64
	logger         logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
	failed  atomic.Int64
	lastErr atomic.Value
}

func NewWorker(consumer broker.Consumer, svc *Service, topic string, unhealthyAfter int, log logger.Logger) *Worker {
	return NewWorkerWithHandler(consumer, svc.Handle, topic, unhealthyAfter, log)
}

func NewWorkerWithHandler(consumer broker.Consumer, handler broker.HandlerFunc, topic string, unhealthyAfter int, log logger.Logger) *Worker {
	if unhealthyAfter <= 0 {
		unhealthyAfter = constants.DefaultUnhealthyAfterFailures
	}
	if topic == "" {
		topic = constants.DefaultMessageCreatedTopic
	}
	w := &Worker{
		consumer:       consumer,
		topic:          topic,
		unhealthyAfter: int64(unhealthyAfter),
		logger:         log.With("component", "fanout-worker"),
	}
	// Consumers that retry in-process report one outcome per delivery, so
	// the failure streak counts events rather than attempts.
	if oc, ok := consumer.(broker.ObservableConsumer); ok {
		oc.ObserveDeliveries(w.record)
		w.handler = handler
	} else {
		w.handler = func(ctx context.Context, env models.EventEnvelope) error {
			err := handler(ctx, env)
			w.record(env, err)
			return err
		}
	}
	return w
}

// Start launches the consume loop. It returns an error if the worker is already running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running.Load() {
		return errors.New("fan-out worker already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.failed.Store(0)
	w.running.Store(true)
	metrics.SetFanoutWorkerHealthy(true)

	go func(done chan struct{}) {
		defer close(done)
		defer w.running.Store(false)
		defer metrics.SetFanoutWorkerHealthy(false)

		w.logger.InfowCtx(runCtx, "Fan-out worker started", "topic", w.topic)
		if err := w.consumer.Consume(runCtx, w.topic, w.handler); err != nil {
			w.lastErr.Store(err)
			w.logger.ErrorwCtx(runCtx, "Fan-out consume loop exited", "error", err)
			return
		}
		w.logger.InfowCtx(runCtx, "Fan-out worker stopped")
	}(w.done)

	return nil
}

// Done is closed when the consume loop exits.
func (w *Worker) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Wait blocks until ctx is done or the consume loop exits. It returns nil
// only for cancellation; a loop that ends on its own is always an error.
func (w *Worker) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-w.Done():
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := w.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkerStopped, err)
	}
	return fmt.Errorf("%w: consume loop exited", ErrWorkerStopped)
}

// Err returns the error the consume loop exited with, if any.
func (w *Worker) Err() error {
	if err, ok := w.lastErr.Load().(error); ok {
		return err
	}
	return nil
}

func (w *Worker) record(_ models.EventEnvelope, err error) {
	if err != nil {
		if w.failed.Add(1) >= w.unhealthyAfter {
			metrics.SetFanoutWorkerHealthy(false)
		}
		return
	}
	if w.failed.Swap(0) >= w.unhealthyAfter {
		metrics.SetFanoutWorkerHealthy(true)
	}
}

// Stop cancels the consume loop, waits for the in-flight event until ctx
// expires and closes the consumer.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return w.consumer.Close()
	}

	cancel()

	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = fmt.Errorf("timed out waiting for in-flight event: %w", ctx.Err())
	}

	return errors.Join(waitErr, w.consumer.Close())
}

func (w *Worker) Name() string {
	return "fanout-worker"
}

// Check reports unhealthy when the loop is not running or the last
// unhealthyAfter deliveries in a row failed.
func (w *Worker) Check(context.Context) error {
	if !w.running.Load() {
		if err := w.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrWorkerStopped, err)
		}
		return ErrWorkerStopped
	}
	if n := w.failed.Load(); n >= w.unhealthyAfter {
		return fmt.Errorf("%d consecutive processing failures", n)
	}
	return nil
}
