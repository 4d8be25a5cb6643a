// Package timer tracks the auto-completion timers that move a ready
// category to completed when no manual action arrives in time. At most one
// live timer exists per (order, category) key; starting a new one supersedes
// the old, and cancellation is cooperative: the background task re-checks
// its entry at every poll interval rather than being preempted.
package timer

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Key identifies at most one live timer.
type Key struct {
	OrderID  uuid.UUID
	Category string
}

// entry is shared between the registry map and the running task. The
// generation token lets a task detect it has been superseded even if a new
// timer reused its key.
type entry struct {
	token     uuid.UUID
	cancelled bool
}

// FireFunc performs the automatic completion path for a key whose delay
// fully elapsed. It runs on the timer's goroutine.
type FireFunc func(key Key)

// Registry owns the timer map. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	timers map[Key]*entry

	delay  time.Duration
	poll   time.Duration
	done   chan struct{}
	closed bool
	logger zerolog.Logger
}

// NewRegistry creates a registry whose timers fire after delay, checking for
// cancellation every poll interval.
func NewRegistry(delay, poll time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		timers: make(map[Key]*entry),
		delay:  delay,
		poll:   poll,
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "timer").Logger(),
	}
}

// Start registers a fresh timer for key, replacing any prior entry, and
// launches the background task that will call fire once the delay elapses
// with the entry still live.
func (r *Registry) Start(key Key, fire FireFunc) {
	token := uuid.New()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.timers[key] = &entry{token: token}
	r.mu.Unlock()

	r.logger.Debug().
		Str("order_id", key.OrderID.String()).
		Str("category", key.Category).
		Str("token", token.String()).
		Msg("timer started")

	go r.run(key, token, fire)
}

// Cancel marks any live entry for key as cancelled and removes it. The
// background task may not have observed the cancellation yet; it will exit
// at its next poll.
func (r *Registry) Cancel(key Key) {
	r.mu.Lock()
	e, ok := r.timers[key]
	if ok {
		e.cancelled = true
		delete(r.timers, key)
	}
	r.mu.Unlock()

	if ok {
		r.logger.Debug().
			Str("order_id", key.OrderID.String()).
			Str("category", key.Category).
			Msg("timer cancelled")
	}
}

// Len reports the number of live timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Close cancels every live timer and stops their background tasks. Start
// becomes a no-op afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for key, e := range r.timers {
		e.cancelled = true
		delete(r.timers, key)
	}
	r.mu.Unlock()

	close(r.done)
}

// alive reports whether the registry still holds this exact activation: the
// key is present, the token matches, and nobody cancelled it.
func (r *Registry) alive(key Key, token uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.timers[key]
	return ok && e.token == token && !e.cancelled
}

// remove drops the entry if it still belongs to this activation. Idempotent:
// a manual transition racing the timer may already have removed it.
func (r *Registry) remove(key Key, token uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.timers[key]; ok && e.token == token {
		delete(r.timers, key)
	}
}

// run sleeps for the delay in poll-sized increments, bailing out as soon as
// this activation is superseded or cancelled. The liveness check repeats
// after the final sleep because a manual transition can race the timer
// between its last poll and the completion action.
func (r *Registry) run(key Key, token uuid.UUID, fire FireFunc) {
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for elapsed := time.Duration(0); elapsed < r.delay; elapsed += r.poll {
		select {
		case <-ticker.C:
		case <-r.done:
			return
		}

		if !r.alive(key, token) {
			return
		}
	}

	if !r.alive(key, token) {
		return
	}

	r.remove(key, token)

	r.logger.Debug().
		Str("order_id", key.OrderID.String()).
		Str("category", key.Category).
		Msg("timer fired")

	fire(key)
}
