// Package lifecycle connects infrastructure and supervises the long running
// services of a binary.
//
// The HTTP API and the notification dispatcher each implement Service so
// that one supervisor starts them together and stops them in reverse order.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service represents a startable/stoppable component.
type Service interface {
	// Name returns the service identifier for logging
	Name() string

	// Start runs the service. It blocks until ctx is cancelled and returns
	// an error only if the service failed.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the service within the context deadline.
	Stop(ctx context.Context) error

	// Health returns nil if the service is healthy
	Health() error
}

// DefaultStopTimeout bounds each service's Stop
const DefaultStopTimeout = 30 * time.Second

// Supervisor manages multiple services with coordinated lifecycle.
type Supervisor struct {
	services    []Service
	stopTimeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewSupervisor creates a supervisor for the given services.
func NewSupervisor(services ...Service) *Supervisor {
	return &Supervisor{services: services, stopTimeout: DefaultStopTimeout}
}

// Run starts every service and blocks until ctx is cancelled or a service
// fails. Services are then stopped in reverse order of registration. The
// first service failure is returned.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("supervisor already running")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range s.services {
		g.Go(func() error {
			slog.Info("Starting service", "service", svc.Name())
			if err := svc.Start(gctx); err != nil {
				return fmt.Errorf("service %s failed: %w", svc.Name(), err)
			}
			return nil
		})
	}

	<-gctx.Done()
	slog.Info("Stopping services")
	s.stopAll()

	return g.Wait()
}

func (s *Supervisor) stopAll() {
	for i := len(s.services) - 1; i >= 0; i-- {
		svc := s.services[i]
		stopCtx, cancel := context.WithTimeout(context.Background(), s.stopTimeout)
		if err := svc.Stop(stopCtx); err != nil {
			slog.Error("Service stop error", "service", svc.Name(), "error", err)
		} else {
			slog.Info("Service stopped", "service", svc.Name())
		}
		cancel()
	}
}

// Health returns nil only if every service is healthy.
func (s *Supervisor) Health() error {
	for _, svc := range s.services {
		if err := svc.Health(); err != nil {
			return fmt.Errorf("service %s unhealthy: %w", svc.Name(), err)
		}
	}
	return nil
}

// ServiceFunc adapts functions to the Service interface.
type ServiceFunc struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func(ctx context.Context) error
	healthFn  func() error
}

// NewServiceFunc creates a Service from functions. A nil start blocks until
// the context ends.
func NewServiceFunc(name string, start func(ctx context.Context) error, stop func(ctx context.Context) error) *ServiceFunc {
	if start == nil {
		start = func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}
	}
	if stop == nil {
		stop = func(context.Context) error { return nil }
	}
	return &ServiceFunc{
		name:      name,
		startFunc: start,
		stopFunc:  stop,
		healthFn:  func() error { return nil },
	}
}

func (s *ServiceFunc) Name() string                    { return s.name }
func (s *ServiceFunc) Start(ctx context.Context) error { return s.startFunc(ctx) }
func (s *ServiceFunc) Stop(ctx context.Context) error  { return s.stopFunc(ctx) }
func (s *ServiceFunc) Health() error                   { return s.healthFn() }

// WithHealth sets the health probe.
func (s *ServiceFunc) WithHealth(fn func() error) *ServiceFunc {
	s.healthFn = fn
	return s
}
