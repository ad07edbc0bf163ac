// Package tree implements the ordered binary search tree that backs the
// server's shared keyed database: names map to values, traversal is
// hand-over-hand, and each node's value and child links are guarded by an
// intention lock (see the ilock package) rather than a single global lock.
package tree

import (
	"errors"

	"github.com/dijkstracula/ctreed/ilock"
)

// ErrNotFound is returned by Query and Delete when the key is absent.
var ErrNotFound = errors.New("key not found")

// ErrExists is returned by Add when the key is already present.
var ErrExists = errors.New("key already exists")

// node is one entry in the tree. lock guards value, left and right; name is
// immutable once the node is linked and needs no lock of its own.
type node struct {
	name  string
	value string
	lock  *ilock.Mutex
	left  *node
	right *node
}

func newNode(name, value string) *node {
	return &node{name: name, value: value, lock: ilock.New()}
}

// Tree is an ordered binary search tree keyed by string, with a sentinel
// root that is never removed. The zero value is not usable; use New.
type Tree struct {
	root *node
}

// New returns an empty Tree. The sentinel root's key sorts below every
// legal key since split-word tokens are never empty.
func New() *Tree {
	return &Tree{root: newNode("", "")}
}

// Query returns the value stored under key, or ErrNotFound.
//
// Hand-over-hand IS descent: the root is latched IS, then at each step the
// child is latched IS before the parent is released. The target node
// additionally takes S, on top of its IS, while its value is read.
func (t *Tree) Query(key string) (string, error) {
	parent := t.root
	parent.lock.ISLock()

	for {
		var next *node
		if key == parent.name {
			// Upgrade our own hold: take S on the node we're actually
			// reading, then drop the IS we took to get here.
			parent.lock.SLock()
			value := parent.value
			parent.lock.SUnlock()
			parent.lock.ISUnlock()
			return value, nil
		} else if key < parent.name {
			next = parent.left
		} else {
			next = parent.right
		}

		if next == nil {
			parent.lock.ISUnlock()
			return "", ErrNotFound
		}
		next.lock.ISLock()
		parent.lock.ISUnlock()
		parent = next
	}
}

// Add inserts key with the given value, or returns ErrExists.
//
// Hand-over-hand IX descent down to the prospective parent. A node can
// never hold IX and X at once (the ilock transition table only allows X
// from Unlocked), so the parent's IX is released before X is taken on it;
// the child slot is rechecked immediately after, since a racing writer
// may have filled it during that gap.
func (t *Tree) Add(key, value string) error {
	parent := t.root
	parent.lock.IXLock()

	for {
		if key == parent.name {
			parent.lock.IXUnlock()
			return ErrExists
		}

		var childPtr **node
		if key < parent.name {
			childPtr = &parent.left
		} else {
			childPtr = &parent.right
		}

		if next := *childPtr; next != nil {
			next.lock.IXLock()
			parent.lock.IXUnlock()
			parent = next
			continue
		}

		parent.lock.IXUnlock()
		parent.lock.XLock()
		if *childPtr == nil {
			*childPtr = newNode(key, value)
			parent.lock.XUnlock()
			return nil
		}
		// Lost the race: another writer linked a child here first.
		// Re-descend from parent with it as the next ancestor.
		next := *childPtr
		next.lock.IXLock()
		parent.lock.XUnlock()
		parent = next
	}
}

// Delete removes key, or returns ErrNotFound.
//
// Hand-over-hand IX descent to the victim's parent. As in Add, IX and X
// can never both be held on the same node, so the parent's IX is released
// before X is taken on it to unlink the victim; the child slot is
// rechecked immediately after, since a racing writer may have changed it
// during that gap. The victim itself is latched X to serialise against
// any reader that had already latched S on it, per spec: readers that
// started before the delete still see a consistent, if stale, value.
func (t *Tree) Delete(key string) error {
	parent := t.root
	parent.lock.IXLock()

	for {
		if key == parent.name {
			parent.lock.IXUnlock()
			return ErrNotFound // never remove the sentinel root
		}

		var childPtr **node
		if key < parent.name {
			childPtr = &parent.left
		} else {
			childPtr = &parent.right
		}

		next := *childPtr
		if next == nil {
			parent.lock.IXUnlock()
			return ErrNotFound
		}

		if next.name != key {
			next.lock.IXLock()
			parent.lock.IXUnlock()
			parent = next
			continue
		}

		parent.lock.IXUnlock()
		parent.lock.XLock()

		victim := *childPtr
		if victim == nil {
			parent.lock.XUnlock()
			return ErrNotFound
		}
		if victim.name != key {
			// Raced with another writer; re-descend with victim as the
			// next ancestor.
			victim.lock.IXLock()
			parent.lock.XUnlock()
			parent = victim
			continue
		}

		victim.lock.XLock()
		t.unlink(childPtr, victim)
		victim.lock.XUnlock()
		parent.lock.XUnlock()
		return nil
	}
}

// unlink splices victim out of the tree, reparenting its children. Called
// with childPtr's owning node X-locked and victim X-locked.
func (t *Tree) unlink(childPtr **node, victim *node) {
	switch {
	case victim.left == nil:
		*childPtr = victim.right
	case victim.right == nil:
		*childPtr = victim.left
	default:
		// Two children: splice in the in-order successor (the
		// leftmost node of the right subtree) in victim's place.
		successorParent := victim
		successor := victim.right
		successor.lock.XLock()
		for successor.left != nil {
			next := successor.left
			next.lock.XLock()
			if successorParent != victim {
				successorParent.lock.XUnlock()
			}
			successorParent = successor
			successor = next
		}
		if successorParent != victim {
			successorParent.left = successor.right
		} else {
			successorParent.right = successor.right
		}
		successor.left = victim.left
		successor.right = victim.right
		*childPtr = successor
		if successorParent != victim {
			successorParent.lock.XUnlock()
		}
		successor.lock.XUnlock()
	}
}
