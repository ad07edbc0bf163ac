// Package interp implements the node-level command interpreter that the
// spec treats as an external collaborator: it receives a tokenized
// database command, executes it against a tree.Tree, and writes a
// NUL-terminated response into a fixed-capacity buffer, mirroring the C
// signature `interpret_command(char *, char *, int)`.
package interp

import (
	"strings"

	"github.com/dijkstracula/ctreed/internal/tree"
)

// ResponseCapacity is the fixed response buffer size from spec section 6.
const ResponseCapacity = 256

// Interpreter executes tokenized commands against a single shared tree.
type Interpreter struct {
	tree *tree.Tree
}

// New returns an Interpreter backed by t.
func New(t *tree.Tree) *Interpreter {
	return &Interpreter{tree: t}
}

// Interpret parses cmd and executes it, writing a NUL-terminated response
// (never longer than len(resp)-1 bytes) into resp. It returns the number
// of bytes written, not counting the NUL terminator.
//
// Grammar (whitespace-tokenized, mirroring split_words):
//
//	a <key> <value...>   add key with the (possibly multi-word) value
//	q <key>              query key
//	d <key>               delete key
func (i *Interpreter) Interpret(cmd string, resp []byte) int {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return writeResponse(resp, "empty command")
	}

	switch fields[0] {
	case "a":
		if len(fields) < 3 {
			return writeResponse(resp, "usage: a <key> <value>")
		}
		key := fields[1]
		value := strings.Join(fields[2:], " ")
		if err := i.tree.Add(key, value); err != nil {
			return writeResponse(resp, err.Error())
		}
		return writeResponse(resp, "ok")

	case "q":
		if len(fields) != 2 {
			return writeResponse(resp, "usage: q <key>")
		}
		v, err := i.tree.Query(fields[1])
		if err != nil {
			return writeResponse(resp, err.Error())
		}
		return writeResponse(resp, v)

	case "d":
		if len(fields) != 2 {
			return writeResponse(resp, "usage: d <key>")
		}
		if err := i.tree.Delete(fields[1]); err != nil {
			return writeResponse(resp, err.Error())
		}
		return writeResponse(resp, "ok")

	default:
		return writeResponse(resp, "unknown command: "+fields[0])
	}
}

// writeResponse copies s into resp, truncated to leave room for the NUL
// terminator, and returns the number of bytes written excluding it.
func writeResponse(resp []byte, s string) int {
	n := len(s)
	if n > len(resp)-1 {
		n = len(resp) - 1
	}
	copy(resp, s[:n])
	if n < len(resp) {
		resp[n] = 0
	}
	return n
}
