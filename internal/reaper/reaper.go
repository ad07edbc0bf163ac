// Package reaper implements the single thread responsible for retiring
// exactly one terminating client worker at a time: it drains the chopping
// block, cancels and joins the worker's Tomb, destroys its window, and
// decrements the running-worker counter.
package reaper

import (
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"

	"github.com/dijkstracula/ctreed/internal/control"
	"github.com/dijkstracula/ctreed/internal/metrics"
	"github.com/dijkstracula/ctreed/internal/worker"
)

// Reaper drains ctrl's chopping block until Stop is called.
type Reaper struct {
	ctrl *control.Context
	m    *metrics.Registry
	log  zerolog.Logger
	Tomb *tomb.Tomb
}

// New returns a Reaper bound to ctrl. m may be nil to skip metrics
// instrumentation. Callers start it with `r.Tomb.Go(r.Run)`.
func New(ctrl *control.Context, m *metrics.Registry, log zerolog.Logger) *Reaper {
	return &Reaper{ctrl: ctrl, m: m, log: log.With().Str("component", "reaper").Logger(), Tomb: new(tomb.Tomb)}
}

// Run is the Reaper's goroutine body: drain the chopping block until
// StopReaper wakes Take with nothing queued.
func (r *Reaper) Run() error {
	for {
		occupant, ok := r.ctrl.Take()
		if !ok {
			return nil
		}
		r.retire(occupant.(*worker.Client))
	}
}

// Stop asks the Reaper to end its loop and blocks until it has. It is safe
// to call even if a client is currently queued: that client is retired
// first, the same way spec design note (c) treats "un-drained workers are
// abandoned" -- Stop never discards a queued occupant.
func (r *Reaper) Stop() error {
	r.ctrl.StopReaper()
	r.Tomb.Kill(nil)
	return r.Tomb.Wait()
}

// retire cancels and joins client's worker, destroys its window, and
// updates the quiescence barrier. It never panics: any join outcome other
// than a clean cooperative exit is logged as a reaper anomaly but does not
// stop the server.
func (r *Reaper) retire(client *worker.Client) {
	log := r.log.With().Int("client_id", client.ID).Logger()

	client.Tomb.Kill(nil)
	err := client.Tomb.Wait()
	if err != nil {
		log.Warn().Err(err).Msg("reaper anomaly: worker did not exit cleanly")
		if r.m != nil {
			r.m.ReaperAnomalies.Inc()
		}
	} else {
		log.Info().Msg("client cancelled successfully")
	}

	if err := client.Window.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to destroy client window")
	}

	r.ctrl.Reaped()
	r.ctrl.Clear()
}
