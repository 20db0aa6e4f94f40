package engine

import (
	"errors"
	"time"
)

// ErrNodeLinked is returned when a node that already belongs to a list is added again.
var ErrNodeLinked = errors.New("engine: node is already linked")

// Node is an intrusive list element holding one cache entry.
// A node is linked while both left and right are non-nil.
type Node[K comparable, V any] struct {
	Key        K
	Value      V
	AccessedAt time.Time

	left  *Node[K, V]
	right *Node[K, V]
}

// NewNode returns an unlinked node.
func NewNode[K comparable, V any](key K, value V) *Node[K, V] {
	return &Node[K, V]{Key: key, Value: value}
}

// Linked reports whether the node is currently part of a list.
func (n *Node[K, V]) Linked() bool {
	return n.left != nil && n.right != nil
}

// List is a circular doubly linked list with a sentinel root.
// root.right is the head (most recent), root.left is the tail (least recent).
type List[K comparable, V any] struct {
	root *Node[K, V]
	size int
}

// NewList returns an empty list.
func NewList[K comparable, V any]() *List[K, V] {
	root := &Node[K, V]{}
	root.left = root
	root.right = root
	return &List[K, V]{root: root}
}

func (l *List[K, V]) Len() int { return l.size }

// Head returns the most recently added or moved node, nil when empty.
func (l *List[K, V]) Head() *Node[K, V] {
	if l.size == 0 {
		return nil
	}
	return l.root.right
}

// Tail returns the least recently added or moved node, nil when empty.
func (l *List[K, V]) Tail() *Node[K, V] {
	if l.size == 0 {
		return nil
	}
	return l.root.left
}

// AddHead links n right after the root.
func (l *List[K, V]) AddHead(n *Node[K, V]) error {
	if n == l.root || n.Linked() {
		return ErrNodeLinked
	}
	n.left = l.root
	n.right = l.root.right
	l.root.right.left = n
	l.root.right = n
	l.size++
	return nil
}

// MoveToHead relinks an already linked node at the head.
func (l *List[K, V]) MoveToHead(n *Node[K, V]) {
	if l.Head() == n || l.Remove(n) == nil {
		return
	}
	_ = l.AddHead(n)
}

// Remove unlinks n and returns it. Removing the root or an unlinked node returns nil.
func (l *List[K, V]) Remove(n *Node[K, V]) *Node[K, V] {
	if n == nil || n == l.root || !n.Linked() {
		return nil
	}
	n.left.right = n.right
	n.right.left = n.left
	n.left = nil
	n.right = nil
	l.size--
	return n
}

// RemoveTail unlinks and returns the tail node, nil when empty.
func (l *List[K, V]) RemoveTail() *Node[K, V] {
	return l.Remove(l.Tail())
}
