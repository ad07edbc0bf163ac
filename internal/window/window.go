// Package window implements the client's communication channel, standing
// in for the spec's window_create/nowindow_create/serve/destroy
// collaborator. A Window delivers one command line per Serve call and
// echoes the previous response back to the client as its prompt, exactly
// as the original `serve(win, prev_response, &cmd, &cmd_len)` contract
// describes.
package window

import "io"

// Window is the per-client communication channel a worker serves.
type Window interface {
	// Serve writes prevResponse to the client (the response produced by
	// the previous command, empty on the first call) and blocks until
	// the client's next command line arrives. eof is true and cmd is
	// empty once the client has closed its input.
	Serve(prevResponse string) (cmd string, eof bool, err error)

	// Close tears down the underlying terminal or files. It is called
	// exactly once, by the Reaper, after the owning worker has been
	// joined.
	Close() error
}

// nopCloser adapts an io.Writer that must not be closed (e.g. os.Stdout)
// into something window implementations can always Close safely.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
