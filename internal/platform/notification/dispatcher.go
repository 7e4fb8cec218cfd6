package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// DispatcherConfig holds the queue and circuit breaker settings.
type DispatcherConfig struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration

	// The breaker opens once BreakerMinRequests have been seen in
	// BreakerInterval and at least BreakerRatio of them failed. It stays open
	// for BreakerTimeout.
	BreakerMinRequests uint32
	BreakerRatio       float64
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// DefaultDispatcherConfig returns the production defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:          1000,
		Workers:            2,
		SendTimeout:        10 * time.Second,
		BreakerMinRequests: 5,
		BreakerRatio:       0.5,
		BreakerInterval:    time.Minute,
		BreakerTimeout:     30 * time.Second,
	}
}

// Dispatcher delivers messages on background workers through one transport
// guarded by a circuit breaker.
type Dispatcher struct {
	transport Transport
	breaker   *gobreaker.CircuitBreaker
	timeout   time.Duration

	queue     chan *Message
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewDispatcher starts the workers. Call Close to drain and stop them.
func NewDispatcher(transport Transport, cfg DispatcherConfig) *Dispatcher {
	defaults := DefaultDispatcherConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaults.SendTimeout
	}

	d := &Dispatcher{
		transport: transport,
		timeout:   cfg.SendTimeout,
		queue:     make(chan *Message, cfg.QueueSize),
	}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     transport.Name(),
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("Notification circuit breaker state changed",
				"transport", name,
				"from", from.String(),
				"to", to.String())
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	slog.Info("Notification dispatcher started",
		"transport", transport.Name(),
		"workers", cfg.Workers,
		"queueSize", cfg.QueueSize)
	return d
}

// Enqueue hands a message to the workers. When the queue is full or the
// dispatcher is closed the message is dropped and logged.
func (d *Dispatcher) Enqueue(msg *Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.Warn("Notification dropped after shutdown", "id", msg.ID, "kind", msg.Kind)
		deliveries.WithLabelValues(d.transport.Name(), "dropped").Inc()
		return
	}

	select {
	case d.queue <- msg:
		queueDepth.Inc()
	default:
		slog.Warn("Notification queue full, dropping message", "id", msg.ID, "kind", msg.Kind)
		deliveries.WithLabelValues(d.transport.Name(), "dropped").Inc()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		queueDepth.Dec()
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	_, err := d.breaker.Execute(func() (any, error) {
		return nil, d.transport.Send(ctx, msg)
	})

	name := d.transport.Name()
	switch {
	case err == nil:
		deliveries.WithLabelValues(name, "sent").Inc()
		slog.Debug("Notification delivered", "id", msg.ID, "kind", msg.Kind, "transport", name)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		deliveries.WithLabelValues(name, "rejected").Inc()
		slog.Warn("Notification skipped, circuit open", "id", msg.ID, "kind", msg.Kind, "transport", name)
	default:
		deliveries.WithLabelValues(name, "failed").Inc()
		slog.Error("Notification delivery failed", "error", err, "id", msg.ID, "kind", msg.Kind, "transport", name)
	}
}

// Close stops accepting messages and waits for queued ones to be delivered
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the circuit breaker state.
func (d *Dispatcher) State() gobreaker.State {
	return d.breaker.State()
}
