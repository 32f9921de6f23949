// Package evsync provides an event object for goroutine synchronization: a
// durable boolean flag that waiters block on and signalers set to release
// one or all of them, with auto-reset and manual-reset wait semantics.
package evsync

import (
	"context"
	"sync"
	"time"
)

// Event is a signalable flag. Waiters block until the flag is set; a signal
// issued with no waiter parked is not lost, the next wait observes it. An
// auto-reset wait consumes the flag as part of returning, a manual-reset
// wait leaves it set for subsequent waiters until Reset is called.
//
// The zero value is not usable, call New.
type Event struct {
	mu       sync.Mutex
	cond     *sync.Cond
	signaled bool
}

// New returns an event in the clear state.
func New() *Event {
	e := &Event{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Signal sets the flag and wakes one parked waiter, if there is any.
func (e *Event) Signal() {
	e.mu.Lock()
	e.signaled = true
	e.cond.Signal()
	e.mu.Unlock()
}

// SignalAll sets the flag and wakes every parked waiter.
//
// With more than one auto-reset waiter parked, which of them consumes the
// flag is a race: each woken waiter re-checks it under the lock, the first
// to run resets it and the rest park again. Callers that want exactly one
// consumer per signal should use Signal instead.
func (e *Event) SignalAll() {
	e.mu.Lock()
	e.signaled = true
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Reset clears the flag. It wakes nobody and consumes nothing.
func (e *Event) Reset() {
	e.mu.Lock()
	e.signaled = false
	e.mu.Unlock()
}

// IsSignaled reports whether the flag is currently set, without blocking.
func (e *Event) IsSignaled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.signaled
}

// Wait blocks until the flag is set. If it is already set, Wait returns
// immediately. When autoReset is true the flag is cleared before Wait
// returns, atomically with observing it.
func (e *Event) Wait(autoReset bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for !e.signaled {
		e.cond.Wait()
	}
	if autoReset {
		e.signaled = false
	}
}

// WaitFor blocks until the flag is set or d elapses. It reports whether the
// flag was observed set; on false the flag is untouched. The duration is
// converted to a deadline once, at entry, so d is a hard cap on blocking
// time no matter how often the waiter is woken and parked again.
func (e *Event) WaitFor(d time.Duration, autoReset bool) bool {
	return e.WaitUntil(time.Now().Add(d), autoReset)
}

// WaitUntil blocks until the flag is set or the deadline passes. It reports
// whether the flag was observed set. A deadline already in the past still
// succeeds if the flag is set, since no blocking is needed to observe it.
func (e *Event) WaitUntil(deadline time.Time, autoReset bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	expired := false
	var timer *time.Timer
	for !e.signaled {
		if expired {
			return false
		}
		if timer == nil {
			// The timer broadcasts rather than signals: Signal could wake
			// some other waiter and leave this one parked past its deadline.
			timer = time.AfterFunc(time.Until(deadline), func() {
				e.mu.Lock()
				expired = true
				e.mu.Unlock()
				e.cond.Broadcast()
			})
			defer timer.Stop()
		}
		e.cond.Wait()
	}
	if autoReset {
		e.signaled = false
	}
	return true
}

// WaitContext blocks until the flag is set or ctx is done. It returns nil
// when the flag was observed set and ctx.Err() otherwise; on error the flag
// is untouched. An already-set flag wins over an already-cancelled context.
func (e *Event) WaitContext(ctx context.Context, autoReset bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stop chan struct{}
	for !e.signaled {
		if err := ctx.Err(); err != nil {
			return err
		}
		if stop == nil {
			stop = make(chan struct{})
			defer close(stop)
			go func() {
				select {
				case <-ctx.Done():
					// Taking the lock orders the broadcast after the waiter
					// has parked, so the cancellation cannot be missed.
					e.mu.Lock()
					e.cond.Broadcast()
					e.mu.Unlock()
				case <-stop:
				}
			}()
		}
		e.cond.Wait()
	}
	if autoReset {
		e.signaled = false
	}
	return nil
}
