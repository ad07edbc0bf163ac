// Package admin implements the administrator loop: it reads single-letter
// control commands from its own input, validates arity, and spawns,
// pauses, resumes, drains or exits the server.
package admin

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"

	"github.com/dijkstracula/ctreed/internal/control"
	"github.com/dijkstracula/ctreed/internal/interp"
	"github.com/dijkstracula/ctreed/internal/metrics"
	"github.com/dijkstracula/ctreed/internal/reaper"
	"github.com/dijkstracula/ctreed/internal/tree"
	"github.com/dijkstracula/ctreed/internal/window"
	"github.com/dijkstracula/ctreed/internal/worker"
)

// WindowFactory creates the window for an interactive (`e`) client. It is
// swappable so tests can avoid spawning a real pseudo-terminal.
type WindowFactory func(title string) (window.Window, error)

// Admin runs the administrator's read-tokenize-dispatch loop.
type Admin struct {
	in     *bufio.Scanner
	out    io.Writer
	log    zerolog.Logger
	ctrl   *control.Context
	tree   *tree.Tree
	interp *interp.Interpreter
	reaper *reaper.Reaper
	newWin WindowFactory
	nextID int
}

// New returns an Admin reading commands from in and writing diagnostics to
// out. newWin backs the `e` (interactive) command; pass nil to use a real
// PTY-backed window. m may be nil to skip metrics instrumentation.
func New(in io.Reader, out io.Writer, ctrl *control.Context, m *metrics.Registry, log zerolog.Logger, newWin WindowFactory) *Admin {
	t := tree.New()
	r := reaper.New(ctrl, m, log)
	r.Tomb.Go(r.Run)

	if newWin == nil {
		newWin = func(title string) (window.Window, error) {
			return window.NewPTYWindow(title)
		}
	}

	return &Admin{
		in:     bufio.NewScanner(in),
		out:    out,
		log:    log.With().Str("component", "admin").Logger(),
		ctrl:   ctrl,
		tree:   t,
		interp: interp.New(t),
		reaper: r,
		newWin: newWin,
	}
}

// Run executes the administrator loop until `x` is received or the input
// is exhausted. It returns the process exit status per spec section 6: 0
// on a clean `x`, non-zero if the input ended without one.
func (a *Admin) Run() int {
	for a.in.Scan() {
		line := a.in.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			fmt.Fprintln(a.out, "YOU HAVE TO TYPE SOMETHING FIRST.")
			continue
		}

		cmd := fields[0]
		if len(cmd) != 1 {
			fmt.Fprintln(a.out, "IMPROPER COMMAND FORMAT. CHECK FIRST ARGUMENT.")
			continue
		}

		switch cmd {
		case "e":
			if len(fields) != 1 {
				fmt.Fprintln(a.out, "IMPROPER COMMAND. TRY AGAIN.")
				continue
			}
			a.spawnInteractive()

		case "E":
			if len(fields) < 2 || len(fields) > 3 {
				fmt.Fprintln(a.out, "IMPROPER USAGE. TRY AGAIN. 'E input_file [output_file]'")
				continue
			}
			outPath := ""
			if len(fields) == 3 {
				outPath = fields[2]
			}
			a.spawnFileBacked(fields[1], outPath)

		case "s":
			if len(fields) != 1 {
				fmt.Fprintln(a.out, "IMPROPER COMMAND. TRY AGAIN.")
				continue
			}
			a.ctrl.Pause()

		case "g":
			if len(fields) != 1 {
				fmt.Fprintln(a.out, "IMPROPER COMMAND. TRY AGAIN.")
				continue
			}
			a.ctrl.Resume()

		case "w":
			if len(fields) != 1 {
				fmt.Fprintln(a.out, "IMPROPER COMMAND. TRY AGAIN.")
				continue
			}
			a.ctrl.Drain()

		case "x":
			if len(fields) != 1 {
				fmt.Fprintln(a.out, "IMPROPER COMMAND. TRY AGAIN.")
				continue
			}
			a.shutdown()
			return 0

		default:
			fmt.Fprintln(a.out, "ERROR. INVALID COMMAND.")
		}
	}

	a.shutdown()
	return 1
}

func (a *Admin) spawnInteractive() {
	id := a.nextID
	win, err := a.newWin(fmt.Sprintf("Client %d", id))
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to create interactive window")
		fmt.Fprintln(a.out, "COULD NOT CREATE CLIENT WINDOW.")
		return
	}
	a.nextID++
	a.spawn(id, win)
}

func (a *Admin) spawnFileBacked(inPath, outPath string) {
	win, err := window.NewFileWindow(inPath, outPath)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to create file-backed window")
		fmt.Fprintln(a.out, "INVALID INPUT FILE. TRY AGAIN.")
		return
	}
	id := a.nextID
	a.nextID++
	a.spawn(id, win)
}

func (a *Admin) spawn(id int, win window.Window) {
	client := &worker.Client{ID: id, Window: win, Tomb: new(tomb.Tomb)}
	w := worker.New(client, a.interp, a.ctrl, a.log)
	a.ctrl.Spawned()
	client.Tomb.Go(w.Run)
}

// shutdown implements spec section 4.F's exit path: it cancels and joins
// the Reaper and does nothing else; no window-level cleanup runs, and the
// windows of workers not yet reaped stay open. Workers still running are
// not forcibly killed; draining them is the responsibility of a preceding
// `w`.
func (a *Admin) shutdown() {
	if err := a.reaper.Stop(); err != nil {
		a.log.Warn().Err(err).Msg("reaper did not stop cleanly")
	}
}
