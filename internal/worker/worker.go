// Package worker implements the client worker: one goroutine per client,
// reading commands from its window, respecting the pause barrier between
// commands, dispatching into the interpreter, and handing itself to the
// chopping block when its window reports end-of-input. Each worker runs
// under its own tomb.Tomb, which stands in for the pthread identifier and
// gives the Reaper cooperative cancellation plus an unconditional join.
package worker

import (
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"

	"github.com/dijkstracula/ctreed/internal/control"
	"github.com/dijkstracula/ctreed/internal/interp"
	"github.com/dijkstracula/ctreed/internal/window"
)

// Client is the handle the administrator creates and the Reaper destroys.
// Its id is assigned by the administrator; its Tomb supervises the
// goroutine running Run.
type Client struct {
	ID     int
	Window window.Window
	Tomb   *tomb.Tomb
}

// Worker serves one client's command stream until end-of-input.
type Worker struct {
	client *Client
	interp *interp.Interpreter
	ctrl   *control.Context
	log    zerolog.Logger
}

// New returns a Worker for client, dispatching commands to interp and
// observing ctrl's pause barrier and chopping block.
func New(client *Client, interp *interp.Interpreter, ctrl *control.Context, log zerolog.Logger) *Worker {
	return &Worker{
		client: client,
		interp: interp,
		ctrl:   ctrl,
		log:    log.With().Int("client_id", client.ID).Logger(),
	}
}

// Run is the worker's goroutine body, registered with the client's Tomb by
// the caller as `client.Tomb.Go(w.Run)`.
func (w *Worker) Run() error {
	resp := make([]byte, interp.ResponseCapacity)
	prevResponse := ""

	for {
		cmd, eof, err := w.client.Window.Serve(prevResponse)
		if err != nil {
			w.log.Warn().Err(err).Msg("window serve failed; retiring client")
			break
		}
		if eof {
			break
		}

		// Observe the pause flag between commands, never while holding
		// any tree lock and never across the window's blocking read.
		w.ctrl.WaitIfPaused()

		n := w.interp.Interpret(cmd, resp)
		prevResponse = string(resp[:n])
	}

	w.log.Debug().Msg("client reached end of input")

	// Hand ourselves to the Reaper: queue on the chopping block, then
	// wait cooperatively to be retired. No cancellation mask is needed
	// here since nothing preempts a goroutine; the queueing and the
	// final wait are simply sequential.
	w.ctrl.Offer(w.client)

	<-w.client.Tomb.Dying()
	return nil
}
