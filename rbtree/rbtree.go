// Package rbtree implements a Red-Black tree (Guibas & Sedgewick, 1978) in
// the CLRS formulation: a BST with a sentinel nil leaf, each node colored
// red or black, maintaining:
//
//   - the root and every sentinel leaf are black;
//   - a red node never has a red child;
//   - every root-to-leaf path passes through the same number of black
//     nodes.
//
// Insert and delete both do a normal BST operation followed by a fixup pass
// that recolors and rotates to restore these invariants; neither ever
// revisits more than O(log n) nodes.
package rbtree

import (
	"fmt"

	"github.com/mikenye/ordtrees/internal/bst"
	"github.com/mikenye/ordtrees/ordered"
	"golang.org/x/exp/constraints"
)

// Color is a node's Red-Black color.
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

// Iterator is a bidirectional in-order cursor over a Red-Black tree.
type Iterator[K, V any] = bst.Iterator[K, V, Color]

// Tree is a self-balancing Red-Black tree keyed by K, carrying values V.
type Tree[K, V any] struct {
	t *bst.Tree[K, V, Color]
}

// New constructs an empty Red-Black tree ordered by less.
func New[K, V any](less ordered.LessFunc[K]) *Tree[K, V] {
	return &Tree[K, V]{t: bst.New[K, V, Color](less)}
}

// NewOrdered constructs an empty Red-Black tree over a key type with a
// natural order.
func NewOrdered[K constraints.Ordered, V any]() *Tree[K, V] {
	return New[K, V](ordered.Less[K]())
}

func color[K, V any](t *bst.Tree[K, V, Color], n *bst.Node[K, V, Color]) Color {
	if t.IsNil(n) {
		return Black
	}
	return t.Metadata(n)
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
	t.insertFixup(n)
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
	t.insertFixup(n)
	var zero V
	return zero, false
}

// insertFixup restores the Red-Black invariants after a fresh red leaf has
// been linked in, walking up via the uncle's color and at most one
// recolor-or-rotate taxonomy (LL/LR/RL/RR) per level.
func (t *Tree[K, V]) insertFixup(z *bst.Node[K, V, Color]) {
	for color(t.t, t.t.Parent(z)) == Red {
		parent := t.t.Parent(z)
		grandparent := t.t.Parent(parent)
		if parent == t.t.Left(grandparent) {
			uncle := t.t.Right(grandparent)
			if color(t.t, uncle) == Red {
				t.t.SetMetadata(parent, Black)
				t.t.SetMetadata(uncle, Black)
				t.t.SetMetadata(grandparent, Red)
				z = grandparent
				continue
			}
			if z == t.t.Right(parent) {
				z = parent
				t.t.RotateLeft(z)
				parent = t.t.Parent(z)
				grandparent = t.t.Parent(parent)
			}
			t.t.SetMetadata(parent, Black)
			t.t.SetMetadata(grandparent, Red)
			t.t.RotateRight(grandparent)
		} else {
			uncle := t.t.Left(grandparent)
			if color(t.t, uncle) == Red {
				t.t.SetMetadata(parent, Black)
				t.t.SetMetadata(uncle, Black)
				t.t.SetMetadata(grandparent, Red)
				z = grandparent
				continue
			}
			if z == t.t.Left(parent) {
				z = parent
				t.t.RotateRight(z)
				parent = t.t.Parent(z)
				grandparent = t.t.Parent(parent)
			}
			t.t.SetMetadata(parent, Black)
			t.t.SetMetadata(grandparent, Red)
			t.t.RotateLeft(grandparent)
		}
	}
	t.t.SetMetadata(t.t.Root(), Black)
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

	removedColor := color(t.t, n)
	parent := t.t.Parent(n)
	replacement := t.t.Unlink(n)
	if removedColor == Black {
		// When the removed node was a leaf, the sentinel carries the extra
		// black; give it n's parent so deleteFixup can find the sibling,
		// then point it back at itself.
		if t.t.IsNil(replacement) {
			t.t.SetParent(replacement, parent)
		}
		t.deleteFixup(replacement)
		t.t.SetParent(t.t.Sentinel(), t.t.Sentinel())
	}
	return erased, true
}

// deleteFixup resolves the "extra black" left at x after unlinking a black
// node, walking up through the four sibling-shape cases until the double
// black is absorbed or reaches the root.
func (t *Tree[K, V]) deleteFixup(x *bst.Node[K, V, Color]) {
	for x != t.t.Root() && color(t.t, x) == Black {
		parent := t.t.Parent(x)
		if x == t.t.Left(parent) {
			sibling := t.t.Right(parent)
			if color(t.t, sibling) == Red {
				t.t.SetMetadata(sibling, Black)
				t.t.SetMetadata(parent, Red)
				t.t.RotateLeft(parent)
				parent = t.t.Parent(x)
				sibling = t.t.Right(parent)
			}
			if color(t.t, t.t.Left(sibling)) == Black && color(t.t, t.t.Right(sibling)) == Black {
				t.t.SetMetadata(sibling, Red)
				x = parent
				continue
			}
			if color(t.t, t.t.Right(sibling)) == Black {
				t.t.SetMetadata(t.t.Left(sibling), Black)
				t.t.SetMetadata(sibling, Red)
				t.t.RotateRight(sibling)
				parent = t.t.Parent(x)
				sibling = t.t.Right(parent)
			}
			t.t.SetMetadata(sibling, color(t.t, parent))
			t.t.SetMetadata(parent, Black)
			t.t.SetMetadata(t.t.Right(sibling), Black)
			t.t.RotateLeft(parent)
			x = t.t.Root()
		} else {
			sibling := t.t.Left(parent)
			if color(t.t, sibling) == Red {
				t.t.SetMetadata(sibling, Black)
				t.t.SetMetadata(parent, Red)
				t.t.RotateRight(parent)
				parent = t.t.Parent(x)
				sibling = t.t.Left(parent)
			}
			if color(t.t, t.t.Right(sibling)) == Black && color(t.t, t.t.Left(sibling)) == Black {
				t.t.SetMetadata(sibling, Red)
				x = parent
				continue
			}
			if color(t.t, t.t.Left(sibling)) == Black {
				t.t.SetMetadata(t.t.Right(sibling), Black)
				t.t.SetMetadata(sibling, Red)
				t.t.RotateLeft(sibling)
				parent = t.t.Parent(x)
				sibling = t.t.Left(parent)
			}
			t.t.SetMetadata(sibling, color(t.t, parent))
			t.t.SetMetadata(parent, Black)
			t.t.SetMetadata(t.t.Left(sibling), Black)
			t.t.RotateRight(parent)
			x = t.t.Root()
		}
	}
	t.t.SetMetadata(x, Black)
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

// IsValid checks the BST ordering invariant and the three Red-Black
// invariants: root and leaves black, no red node has a red child, and
// every root-to-leaf path has the same black-height.
func (t *Tree[K, V]) IsValid() error {
	if err := t.t.CheckOrder(); err != nil {
		return err
	}
	if err := t.t.CheckLinks(); err != nil {
		return err
	}
	if !t.t.IsNil(t.t.Root()) && color(t.t, t.t.Root()) != Black {
		return fmt.Errorf("rbtree: root is red")
	}
	_, err := t.checkBlackHeight(t.t.Root())
	return err
}

func (t *Tree[K, V]) checkBlackHeight(n *bst.Node[K, V, Color]) (int, error) {
	if t.t.IsNil(n) {
		return 1, nil
	}
	if color(t.t, n) == Red {
		if color(t.t, t.t.Left(n)) == Red || color(t.t, t.t.Right(n)) == Red {
			return 0, fmt.Errorf("rbtree: red node %v has a red child", t.t.Key(n))
		}
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
		return 0, fmt.Errorf("rbtree: node %v has mismatched black heights (%d vs %d)", t.t.Key(n), lh, rh)
	}
	if color(t.t, n) == Black {
		lh++
	}
	return lh, nil
}
