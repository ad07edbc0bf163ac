package window

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// FileWindow backs a file-to-file client (administrator command `E`):
// commands are read line by line from in, and the prompt/response text is
// written to out. If no output path is given, responses go to the server's own stdout,
// matching the original's "/dev/stdout" default.
type FileWindow struct {
	in     io.ReadCloser
	out    io.WriteCloser
	scan   *bufio.Scanner
	closed bool
}

// NewFileWindow opens inPath for reading and outPath (or stdout, if empty)
// for writing.
func NewFileWindow(inPath, outPath string) (*FileWindow, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open input %q: %w", inPath, err)
	}

	var out io.WriteCloser
	if outPath == "" {
		out = nopCloser{os.Stdout}
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("open output %q: %w", outPath, err)
		}
		out = f
	}

	return &FileWindow{
		in:   in,
		out:  out,
		scan: bufio.NewScanner(in),
	}, nil
}

// Serve implements Window.
func (w *FileWindow) Serve(prevResponse string) (string, bool, error) {
	if prevResponse != "" {
		if _, err := fmt.Fprintln(w.out, prevResponse); err != nil {
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

// Close implements Window.
func (w *FileWindow) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	inErr := w.in.Close()
	outErr := w.out.Close()
	if inErr != nil {
		return inErr
	}
	return outErr
}
