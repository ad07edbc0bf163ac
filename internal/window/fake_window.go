package window

import "sync"

// FakeWindow is a programmatic stand-in for an interactive client, used by
// tests to drive a worker through a scripted command sequence without a
// real pseudo-terminal. Commands is consumed in order; once exhausted,
// Serve reports end-of-input.
type FakeWindow struct {
	mu        sync.Mutex
	commands  []string
	responses []string
	closed    bool
}

// NewFakeWindow returns a FakeWindow that will hand out commands in order.
func NewFakeWindow(commands ...string) *FakeWindow {
	return &FakeWindow{commands: commands}
}

// Serve implements Window.
func (w *FakeWindow) Serve(prevResponse string) (string, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prevResponse != "" {
		w.responses = append(w.responses, prevResponse)
	}
	if len(w.commands) == 0 {
		return "", true, nil
	}
	cmd := w.commands[0]
	w.commands = w.commands[1:]
	return cmd, false, nil
}

// Close implements Window.
func (w *FakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Responses returns every response observed so far, in order.
func (w *FakeWindow) Responses() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.responses...)
}

// Closed reports whether Close has been called.
func (w *FakeWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}
