package window

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PTYWindow backs an interactive client (administrator command `e`): it
// spawns the user's shell under a pseudo-terminal, the Go analogue of the
// original spawning an xterm and talking to the process underneath it.
type PTYWindow struct {
	cmd    *exec.Cmd
	master *os.File
	scan   *bufio.Scanner
	closed bool
}

// NewPTYWindow starts title's shell session under a new pseudo-terminal.
// title labels the session the way the original labelled its xterm.
func NewPTYWindow(title string) (*PTYWindow, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "CTREED_SESSION="+title)

	master, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("start pty for %q: %w", title, err)
	}

	return &PTYWindow{
		cmd:    cmd,
		master: master,
		scan:   bufio.NewScanner(master),
	}, nil
}

// Serve implements Window.
func (w *PTYWindow) Serve(prevResponse string) (string, bool, error) {
	if prevResponse != "" {
		if _, err := fmt.Fprintln(w.master, prevResponse); err != nil {
			return "", false, fmt.Errorf("write response: %w", err)
		}
	}

	if !w.scan.Scan() {
		if err := w.scan.Err(); err != nil {
			return "", false, fmt.Errorf("read command: %w", err)
		}
		return "", true, nil
	}
	return w.scan.Text(), false, nil
}

// Close implements Window: it closes the pseudo-terminal and kills and
// reaps the shell process underneath it.
func (w *PTYWindow) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	closeErr := w.master.Close()
	_ = w.cmd.Process.Kill()
	_, _ = w.cmd.Process.Wait()
	return closeErr
}
