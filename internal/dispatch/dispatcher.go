package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"matchwell/backend/internal/logging"
)

// Sink consumes events. Handle is called from dispatcher workers, possibly concurrently.
type Sink interface {
	Name() string
	Accepts(kind Kind) bool
	Handle(ctx context.Context, ev Event) error
}

// Observer receives dispatcher outcomes, e.g. for metrics.
type Observer interface {
	EventDropped(ev Event)
	SinkFailed(sink string, ev Event)
}

// Config controls the worker pool and sink isolation.
type Config struct {
	Workers   int
	QueueSize int
	// Timeout bounds a single sink call.
	Timeout time.Duration
	// FailureThreshold consecutive failures open a sink's breaker for BreakerTimeout.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// DefaultConfig returns the settings used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		Workers:          4,
		QueueSize:        1024,
		Timeout:          5 * time.Second,
		FailureThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

var ErrClosed = errors.New("dispatcher closed")

type guardedSink struct {
	sink    Sink
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// Dispatcher fans events out to sinks on a bounded queue. Dispatch never blocks the caller.
type Dispatcher struct {
	cfg      Config
	sinks    []guardedSink
	queue    chan Event
	observer Observer
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a dispatcher and starts its workers.
func New(cfg Config, observer Observer, sinks ...Sink) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}

	d := &Dispatcher{
		cfg:      cfg,
		queue:    make(chan Event, cfg.QueueSize),
		observer: observer,
		log:      logging.Logger.With().Str("component", "dispatcher").Logger(),
	}

	for _, s := range sinks {
		name := s.Name()
		threshold := cfg.FailureThreshold
		breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    name,
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				d.log.Warn().
					Str("sink", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("sink circuit breaker state changed")
			},
		})
		d.sinks = append(d.sinks, guardedSink{sink: s, breaker: breaker})
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch enqueues ev. When the queue is full or the dispatcher is closed the event is
// dropped and logged.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ctx, ev, ErrClosed)
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.drop(ctx, ev, errors.New("queue full"))
	}
}

func (d *Dispatcher) drop(ctx context.Context, ev Event, reason error) {
	logging.Warn(ctx).
		Err(reason).
		Str("kind", string(ev.Kind)).
		Str("topic", ev.Topic).
		Uint("actor_id", ev.ActorID).
		Uint("target_id", ev.TargetID).
		Msg("side effect dropped")
	if d.observer != nil {
		d.observer.EventDropped(ev)
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		for _, gs := range d.sinks {
			if !gs.sink.Accepts(ev.Kind) {
				continue
			}
			if err := d.deliver(gs, ev); err != nil {
				d.log.Error().
					Err(err).
					Str("sink", gs.sink.Name()).
					Str("kind", string(ev.Kind)).
					Str("topic", ev.Topic).
					Str("interest_id", ev.InterestID).
					Msg("side effect failed")
				if d.observer != nil {
					d.observer.SinkFailed(gs.sink.Name(), ev)
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(gs guardedSink, ev Event) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	_, err = gs.breaker.Execute(func() (_ struct{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panic: %v", r)
			}
		}()
		return struct{}{}, gs.sink.Handle(ctx, ev)
	})
	return err
}

// Close stops accepting events and waits for queued ones to be delivered or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

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
