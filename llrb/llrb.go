// Package llrb implements a left-leaning Red-Black tree (Sedgewick, 2008):
// a Red-Black tree restricted so that every red link leans left, which
// collapses the classic four insert/delete fixup cases down to three
// primitives — rotateLeft, rotateRight, and flipColors — applied on the way
// back up from an ordinary recursive-shaped BST operation.
//
// This implementation walks iteratively with parent pointers rather than
// recursively, reusing the same sentinel-based substrate as avltree and
// rbtree, and resolves the double-black case on delete with moveRedLeft /
// moveRedRight rather than Sedgewick's recursive fixUp.
package llrb

import (
	"fmt"

	"github.com/mikenye/ordtrees/internal/bst"
	"github.com/mikenye/ordtrees/ordered"
	"golang.org/x/exp/constraints"
)

// Color is a link's color: the color stored at a node describes the link
// from its parent, per Sedgewick's convention.
type Color bool

const (
	Red   Color = false
	Black Color = true
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Iterator is a bidirectional in-order cursor over an LLRB tree.
type Iterator[K, V any] = bst.Iterator[K, V, Color]

// Tree is a left-leaning Red-Black tree keyed by K, carrying values V.
type Tree[K, V any] struct {
	t *bst.Tree[K, V, Color]
}

// New constructs an empty LLRB tree ordered by less.
func New[K, V any](less ordered.LessFunc[K]) *Tree[K, V] {
	return &Tree[K, V]{t: bst.New[K, V, Color](less)}
}

// NewOrdered constructs an empty LLRB tree over a key type with a natural
// order.
func NewOrdered[K constraints.Ordered, V any]() *Tree[K, V] {
	return New[K, V](ordered.Less[K]())
}

func color[K, V any](t *bst.Tree[K, V, Color], n *bst.Node[K, V, Color]) Color {
	if t.IsNil(n) {
		return Black
	}
	return t.Metadata(n)
}

func isRed[K, V any](t *bst.Tree[K, V, Color], n *bst.Node[K, V, Color]) bool {
	return color(t, n) == Red
}

// rotateLeft performs the shared structural rotation and carries the
// color of node across to its replacement, leaving node red — the LLRB
// recoloring step that rbtree's plain rotation doesn't do on its own.
func rotateLeft[K, V any](t *bst.Tree[K, V, Color], node *bst.Node[K, V, Color]) *bst.Node[K, V, Color] {
	r := t.Right(node)
	t.SetMetadata(r, t.Metadata(node))
	t.SetMetadata(node, Red)
	t.RotateLeft(node)
	return r
}

func rotateRight[K, V any](t *bst.Tree[K, V, Color], node *bst.Node[K, V, Color]) *bst.Node[K, V, Color] {
	l := t.Left(node)
	t.SetMetadata(l, t.Metadata(node))
	t.SetMetadata(node, Red)
	t.RotateRight(node)
	return l
}

func flipColors[K, V any](t *bst.Tree[K, V, Color], node *bst.Node[K, V, Color]) {
	t.SetMetadata(node, !t.Metadata(node))
	t.SetMetadata(t.Left(node), !t.Metadata(t.Left(node)))
	t.SetMetadata(t.Right(node), !t.Metadata(t.Right(node)))
}

// fixUp restores the left-leaning invariant at node after a structural
// change below it: a lone right-leaning red link is rotated left, two
// left-leaning reds in a row are rotated right, and a node with both
// children red has its colors flipped up.
func fixUp[K, V any](t *bst.Tree[K, V, Color], node *bst.Node[K, V, Color]) *bst.Node[K, V, Color] {
	if isRed(t, t.Right(node)) && !isRed(t, t.Left(node)) {
		node = rotateLeft(t, node)
	}
	if isRed(t, t.Left(node)) && isRed(t, t.Left(t.Left(node))) {
		node = rotateRight(t, node)
	}
	if isRed(t, t.Left(node)) && isRed(t, t.Right(node)) {
		flipColors(t, node)
	}
	return node
}

// retraceUp walks from n to the root applying fixUp at every ancestor,
// mirroring the bottom-up pass Sedgewick's recursive insert performs on
// its way back out of the call stack.
func retraceUp[K, V any](t *bst.Tree[K, V, Color], n *bst.Node[K, V, Color]) {
	for !t.IsNil(n) {
		n = fixUp(t, n)
		n = t.Parent(n)
	}
	t.SetMetadata(t.Root(), Black)
}

// Len returns the number of entries in the tree.
func (t *Tree[K, V]) Len() int { return t.t.Size() }

// Empty reports whether the tree holds no entries.
func (t *Tree[K, V]) Empty() bool { return t.t.Size() == 0 }

// Contains reports whether key is present.
func (t *Tree[K, V]) Contains(key K) bool {
	_, found := t.t.Search(key)
	return found
}

// Find returns the value stored under key, and whether key was present.
func (t *Tree[K, V]) Find(key K) (V, bool) {
	n, found := t.t.Search(key)
	if !found {
		var zero V
		return zero, false
	}
	return t.t.Value(n), true
}

// Insert adds key/value if key is not already present. It returns the
// value now stored under key and whether a new entry was created.
func (t *Tree[K, V]) Insert(key K, value V) (V, bool) {
	n, existed := t.t.FindOrInsert(key, value)
	if existed {
		return t.t.Value(n), false
	}
	t.t.SetMetadata(n, Red)
	retraceUp(t.t, n)
	return value, true
}

// Replace upserts key/value, returning the value previously stored under
// key, if any.
func (t *Tree[K, V]) Replace(key K, value V) (old V, hadOld bool) {
	n, existed := t.t.FindOrInsert(key, value)
	if existed {
		old = t.t.Value(n)
		t.t.SetValue(n, value)
		return old, true
	}
	t.t.SetMetadata(n, Red)
	retraceUp(t.t, n)
	var zero V
	return zero, false
}

// moveRedLeft borrows a node from node's right sibling subtree so that
// node's left child (the one we're about to descend into) is not a
// single black link — the precondition delete needs before stepping down
// the left spine.
func moveRedLeft[K, V any](t *bst.Tree[K, V, Color], node *bst.Node[K, V, Color]) *bst.Node[K, V, Color] {
	flipColors(t, node)
	if isRed(t, t.Left(t.Right(node))) {
		rotateRight(t, t.Right(node))
		node = rotateLeft(t, node)
		flipColors(t, node)
	}
	return node
}

func moveRedRight[K, V any](t *bst.Tree[K, V, Color], node *bst.Node[K, V, Color]) *bst.Node[K, V, Color] {
	flipColors(t, node)
	if isRed(t, t.Left(t.Left(node))) {
		node = rotateRight(t, node)
		flipColors(t, node)
	}
	return node
}

// Erase removes key, returning its value and true, or the zero value and
// false if key was absent.
func (t *Tree[K, V]) Erase(key K) (V, bool) {
	n, found := t.t.Search(key)
	if !found {
		var zero V
		return zero, false
	}
	erased := t.t.Value(n)

	if t.t.IsFull(n) {
		succ := t.t.Successor(n)
		t.t.SetKey(n, t.t.Key(succ))
		t.t.SetValue(n, t.t.Value(succ))
		n = succ
	}

	if !isRed(t.t, n) && !isRed(t.t, t.t.Left(n)) && !isRed(t.t, t.t.Right(n)) {
		// n is a 2-node leaf: borrow from a sibling before unlinking so the
		// black-height along this path doesn't drop.
		parent := t.t.Parent(n)
		if !t.t.IsNil(parent) {
			if n == t.t.Left(parent) {
				moveRedLeft(t.t, parent)
			} else {
				moveRedRight(t.t, parent)
			}
		}
	}
	// n's parent must be read fresh here: the moveRedLeft/moveRedRight
	// above may have rotated n to a new position in the tree. Unlink
	// itself returns only n's replacement child, which is the sentinel
	// for the common case of erasing a leaf — retracing from that would
	// never reach the node whose color bookkeeping fixUp needs to fix.
	parent := t.t.Parent(n)
	t.t.Unlink(n)
	retraceUp(t.t, parent)
	return erased, true
}

// Clear removes every entry from the tree.
func (t *Tree[K, V]) Clear() { t.t.Clear() }

// Iterator returns a forward cursor positioned at the smallest key.
func (t *Tree[K, V]) Iterator() *Iterator[K, V] { return t.t.IterInit() }

// ReverseIterator returns a cursor positioned at the largest key.
func (t *Tree[K, V]) ReverseIterator() *Iterator[K, V] { return t.t.ReverseIterInit() }

// ForEach visits every entry in ascending key order, stopping early if f
// returns false.
func (t *Tree[K, V]) ForEach(f func(K, V) bool) {
	t.t.TraverseInOrder(t.t.Root(), func(n *bst.Node[K, V, Color]) bool {
		return f(t.t.Key(n), t.t.Value(n))
	})
}

// RangeEach visits every entry with key in [low, high) in ascending order,
// stopping early if f returns false.
func (t *Tree[K, V]) RangeEach(low, high K, f func(K, V) bool) {
	it := t.t.IterInit()
	for !it.End() && t.t.Less(it.Key(), low) {
		it.Next()
	}
	for !it.End() && t.t.Less(it.Key(), high) {
		if !f(it.Key(), it.Value()) {
			return
		}
		it.Next()
	}
}

// String renders the tree as a box-drawn diagram.
func (t *Tree[K, V]) String() string { return t.t.String() }

// IsValid checks the BST ordering invariant, the left-leaning invariant (no
// node has a red right child without a red left child), and black-height
// balance.
func (t *Tree[K, V]) IsValid() error {
	if err := t.t.CheckOrder(); err != nil {
		return err
	}
	if err := t.t.CheckLinks(); err != nil {
		return err
	}
	if !t.t.IsNil(t.t.Root()) && color(t.t, t.t.Root()) != Black {
		return fmt.Errorf("llrb: root is red")
	}
	_, err := t.checkBlackHeight(t.t.Root())
	return err
}

func (t *Tree[K, V]) checkBlackHeight(n *bst.Node[K, V, Color]) (int, error) {
	if t.t.IsNil(n) {
		return 1, nil
	}
	if isRed(t.t, t.t.Right(n)) {
		return 0, fmt.Errorf("llrb: node %v leans right", t.t.Key(n))
	}
	if isRed(t.t, n) && isRed(t.t, t.t.Left(n)) {
		return 0, fmt.Errorf("llrb: two red links in a row at %v", t.t.Key(n))
	}
	lh, err := t.checkBlackHeight(t.t.Left(n))
	if err != nil {
		return 0, err
	}
	rh, err := t.checkBlackHeight(t.t.Right(n))
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, fmt.Errorf("llrb: node %v has mismatched black heights (%d vs %d)", t.t.Key(n), lh, rh)
	}
	if !isRed(t.t, n) {
		lh++
	}
	return lh, nil
}
