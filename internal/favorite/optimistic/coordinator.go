package optimistic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMutationTimeout bounds a single add or remove call and the refresh
// that follows it.
const DefaultMutationTimeout = 10 * time.Second

// Remote performs the favorite mutations against the backend. Both calls
// must be idempotent.
type Remote interface {
	AddFavorite(ctx context.Context, itemID string) error
	RemoveFavorite(ctx context.Context, itemID string) error
}

// State is the lifecycle position of a toggle.
type State string

const (
	StateIdle       State = "idle"
	StatePending    State = "pending"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout overrides DefaultMutationTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics records toggle outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithLogger sets the logger used for settlement and refresh failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// Coordinator drives favorite toggles: the override is written before any
// network I/O, the remote mutation runs, and the override is cleared once
// the backend has answered.
//
// Toggles of the same item run their remote mutations one at a time, in
// request order. Only the most recent toggle of an item may clear or roll
// back its override, so an older toggle settling never hides a newer intent.
// Listeners must not start a toggle of the item they are being notified
// about from inside the notification.
type Coordinator struct {
	store     *Store
	confirmed *Confirmed
	remote    Remote
	timeout   time.Duration
	metrics   *Metrics
	log       zerolog.Logger
	tracer    trace.Tracer

	mu    sync.Mutex
	items map[string]*itemQueue
}

type itemQueue struct {
	intent sync.Mutex // guards latest and the paired override write
	latest uint64

	turnMu   sync.Mutex
	turnCond *sync.Cond
	turn     uint64 // seq allowed to run its mutation

	refs int // guarded by Coordinator.mu
}

func newItemQueue() *itemQueue {
	q := &itemQueue{turn: 1}
	q.turnCond = sync.NewCond(&q.turnMu)
	return q
}

func (q *itemQueue) wait(seq uint64) {
	q.turnMu.Lock()
	for q.turn != seq {
		q.turnCond.Wait()
	}
	q.turnMu.Unlock()
}

func (q *itemQueue) pass(seq uint64) {
	q.turnMu.Lock()
	q.turn = seq + 1
	q.turnMu.Unlock()
	q.turnCond.Broadcast()
}

// NewCoordinator wires a coordinator to its store, confirmed cache and remote.
func NewCoordinator(store *Store, confirmed *Confirmed, remote Remote, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     store,
		confirmed: confirmed,
		remote:    remote,
		timeout:   DefaultMutationTimeout,
		log:       zerolog.Nop(),
		tracer:    otel.Tracer("maidmarket/favorite/optimistic"),
		items:     make(map[string]*itemQueue),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics.observe(store)
	return c
}

// Toggle flips itemID from current and blocks until the toggle settles.
// The returned error, if any, matches ErrToggleMutationFailed; the override
// has been rolled back by then.
func (c *Coordinator) Toggle(ctx context.Context, itemID string, current bool) error {
	return <-c.ToggleAsync(ctx, itemID, current)
}

// ToggleAsync writes the override for !current and cancels any in-flight
// confirmed refresh before returning. The remote mutation and its
// reconciliation run in the background; the channel receives exactly one
// value when they are done. Cancelling ctx does not cancel the mutation.
func (c *Coordinator) ToggleAsync(ctx context.Context, itemID string, current bool) <-chan error {
	intended := !current
	started := time.Now()

	q := c.acquire(itemID)

	q.intent.Lock()
	q.latest++
	seq := q.latest
	c.store.Set(itemID, intended)
	q.intent.Unlock()

	c.confirmed.Cancel()

	c.log.Debug().
		Str("item_id", itemID).
		Bool("intended", intended).
		Str("state", string(StatePending)).
		Msg("favorite toggle started")

	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer c.release(itemID)
		done <- c.settle(context.WithoutCancel(ctx), q, seq, itemID, current, intended, started)
	}()
	return done
}

func (c *Coordinator) settle(ctx context.Context, q *itemQueue, seq uint64, itemID string, current, intended bool, started time.Time) error {
	q.wait(seq)
	passed := false
	defer func() {
		if !passed {
			q.pass(seq)
		}
	}()

	ctx, span := c.tracer.Start(ctx, "favorite.toggle",
		trace.WithAttributes(
			attribute.String("favorite.item_id", itemID),
			attribute.Bool("favorite.intended", intended),
		),
	)
	defer span.End()

	err := c.mutate(ctx, itemID, intended)

	var state State
	if err == nil {
		state = StateCommitted
		c.confirmed.Mark(itemID, intended)
		c.clearIfLatest(q, seq, itemID, nil)
	} else {
		state = StateRolledBack
		c.clearIfLatest(q, seq, itemID, &current)
		span.RecordError(err)
		span.SetStatus(codes.Error, "mutation failed")
		err = &ToggleError{ItemID: itemID, Intended: intended, Err: err}
	}
	span.SetAttributes(attribute.String("favorite.state", string(state)))

	q.pass(seq)
	passed = true

	c.metrics.settled(state, started)

	ev := c.log.Info()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("item_id", itemID).
		Bool("intended", intended).
		Str("state", string(state)).
		Dur("latency", time.Since(started)).
		Msg("favorite toggle settled")

	refreshCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if rerr := c.confirmed.Refresh(refreshCtx); rerr != nil && !errors.Is(rerr, ErrRefreshSuperseded) {
		c.log.Warn().Err(rerr).Str("item_id", itemID).Msg("favorites refresh after toggle failed")
	}

	return err
}

func (c *Coordinator) mutate(ctx context.Context, itemID string, intended bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if intended {
		return c.remote.AddFavorite(ctx, itemID)
	}
	return c.remote.RemoveFavorite(ctx, itemID)
}

// clearIfLatest removes the override unless a newer toggle of the same item
// has been requested. A non-nil rollback is written first so observers see
// the original value before the override disappears.
func (c *Coordinator) clearIfLatest(q *itemQueue, seq uint64, itemID string, rollback *bool) {
	q.intent.Lock()
	defer q.intent.Unlock()

	if q.latest != seq {
		return
	}
	if rollback != nil {
		c.store.Set(itemID, *rollback)
	}
	c.store.Clear(itemID)
}

func (c *Coordinator) acquire(itemID string) *itemQueue {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.items[itemID]
	if !ok {
		q = newItemQueue()
		c.items[itemID] = q
	}
	q.refs++
	return q
}

func (c *Coordinator) release(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.items[itemID]
	if !ok {
		return
	}
	q.refs--
	if q.refs == 0 {
		delete(c.items, itemID)
	}
}
