// Package control implements the process-wide synchronisation barriers
// shared by every client worker and the administrator: the pause barrier,
// the quiescence ("drain") barrier, and the chopping-block handoff used for
// graceful worker self-termination. Per the spec's design notes, all three
// are bundled into a single Context rather than left as module-level
// singletons, and handed by reference to every worker and to the Reaper.
package control

import (
	"sync"

	"github.com/dijkstracula/ctreed/internal/metrics"
)

// Context bundles the pause flag, the running-worker counter and the
// chopping-block slot: the process-wide state every worker and the Reaper
// must share.
type Context struct {
	m *metrics.Registry

	pauseMu sync.Mutex
	pauseCV *sync.Cond
	paused  bool

	runMu   sync.Mutex
	runCV   *sync.Cond
	running int

	blockMu sync.Mutex
	blockCV *sync.Cond
	block   ChoppingBlockOccupant
	stopped bool
}

// ChoppingBlockOccupant is whatever a worker hands to the Reaper when it
// self-terminates. The control package only needs to hold and hand back an
// opaque reference; internal/worker defines what it actually contains.
type ChoppingBlockOccupant interface{}

// New returns a Context with an empty chopping block, an unpaused pause
// barrier, and a zero running-worker count. m may be nil to skip metrics
// instrumentation (e.g. in unit tests that don't care about it).
func New(m *metrics.Registry) *Context {
	c := &Context{m: m}
	c.pauseCV = sync.NewCond(&c.pauseMu)
	c.runCV = sync.NewCond(&c.runMu)
	c.blockCV = sync.NewCond(&c.blockMu)
	return c
}

// --- Pause barrier (spec 4.D) ---

// Pause engages the pause barrier. No broadcast: a worker only observes
// the flag when it next checks, so there is nothing to wake.
func (c *Context) Pause() {
	c.pauseMu.Lock()
	c.paused = true
	c.pauseMu.Unlock()
	if c.m != nil {
		c.m.Paused.Set(1)
	}
}

// Resume releases the pause barrier and wakes every worker waiting on it.
func (c *Context) Resume() {
	c.pauseMu.Lock()
	c.paused = false
	c.pauseCV.Broadcast()
	c.pauseMu.Unlock()
	if c.m != nil {
		c.m.Paused.Set(0)
	}
}

// WaitIfPaused blocks the caller while the pause barrier is engaged. It is
// called by a worker between commands, never while holding any tree lock.
func (c *Context) WaitIfPaused() {
	c.pauseMu.Lock()
	for c.paused {
		c.pauseCV.Wait()
	}
	c.pauseMu.Unlock()
}

// --- Quiescence barrier (spec 4.E) ---

// Spawned records one more worker that has not yet been reaped. Called by
// the administrator before handing the new worker its command loop.
func (c *Context) Spawned() {
	c.runMu.Lock()
	c.running++
	n := c.running
	c.runMu.Unlock()
	if c.m != nil {
		c.m.WorkersRunning.Set(float64(n))
		c.m.WorkersSpawned.Inc()
	}
}

// Reaped records that one worker has been fully torn down. Called only by
// the Reaper, after the worker has been joined and its window destroyed.
func (c *Context) Reaped() {
	c.runMu.Lock()
	c.running--
	n := c.running
	c.runCV.Signal()
	c.runMu.Unlock()
	if c.m != nil {
		c.m.WorkersRunning.Set(float64(n))
		c.m.WorkersReaped.Inc()
	}
}

// Drain blocks until every worker spawned before the call has been reaped.
// Workers spawned after Drain is entered but before it returns extend the
// wait; callers must not spawn new workers concurrently with a Drain call
// (the administrator satisfies this by running `w` inline on its own
// single-threaded command loop).
func (c *Context) Drain() {
	c.runMu.Lock()
	for c.running > 0 {
		c.runCV.Wait()
	}
	c.runMu.Unlock()
}

// Running returns the current running-worker count, for tests and metrics.
func (c *Context) Running() int {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.running
}
