// Package avltree implements a height-balanced binary search tree (Adelson-
// Velsky and Landis, 1962).
//
// Every node tracks its own subtree height. After each insertion or
// deletion the tree is rebalanced with LL/LR/RL/RR rotations so that for
// every node, the heights of its two children differ by at most one,
// guaranteeing O(log n) search, insert, and erase.
//
// # Usage
//
//	tree := avltree.NewOrdered[int, string]()
//	tree.Insert(10, "ten")
//	tree.Insert(20, "twenty")
//	v, ok := tree.Find(10)
//
// Keys must satisfy a strict weak order; see ordered.LessFunc.
package avltree

import (
	"fmt"

	"github.com/mikenye/ordtrees/internal/bst"
	"github.com/mikenye/ordtrees/ordered"
	"golang.org/x/exp/constraints"
)

// Iterator is a bidirectional in-order cursor over an AVL tree. Obtain one
// from Tree.Iterator or Tree.ReverseIterator.
type Iterator[K, V any] = bst.Iterator[K, V, int]

// Tree is a self-balancing AVL tree keyed by K, carrying values of type V.
type Tree[K, V any] struct {
	t *bst.Tree[K, V, int]
}

// New constructs an empty AVL tree ordered by less.
func New[K, V any](less ordered.LessFunc[K]) *Tree[K, V] {
	return &Tree[K, V]{t: bst.New[K, V, int](less)}
}

// NewOrdered constructs an empty AVL tree over a key type with a natural
// order, for callers who don't need a custom comparator.
func NewOrdered[K constraints.Ordered, V any]() *Tree[K, V] {
	return New[K, V](ordered.Less[K]())
}

func height[K, V any](t *bst.Tree[K, V, int], n *bst.Node[K, V, int]) int {
	if t.IsNil(n) {
		return 0
	}
	return t.Metadata(n)
}

func balanceFactor[K, V any](t *bst.Tree[K, V, int], n *bst.Node[K, V, int]) int {
	return height(t, t.Left(n)) - height(t, t.Right(n))
}

func updateHeight[K, V any](t *bst.Tree[K, V, int], n *bst.Node[K, V, int]) {
	l, r := height(t, t.Left(n)), height(t, t.Right(n))
	if l > r {
		t.SetMetadata(n, 1+l)
	} else {
		t.SetMetadata(n, 1+r)
	}
}

// rotateLeftHeavy resolves a pivot whose left subtree is too tall, applying
// LL or LR as dictated by the shape of the left child.
func rotateLeftHeavy[K, V any](t *bst.Tree[K, V, int], pivot *bst.Node[K, V, int]) *bst.Node[K, V, int] {
	left := t.Left(pivot)
	if balanceFactor(t, left) < 0 {
		// Left child is right-heavy: LR case — rotate it left first.
		t.RotateLeft(left)
	}
	t.RotateRight(pivot)
	newSub := t.Parent(pivot)
	updateHeight(t, pivot)
	updateHeight(t, left)
	updateHeight(t, newSub)
	return newSub
}

// rotateRightHeavy is the mirror of rotateLeftHeavy for a pivot whose right
// subtree is too tall (RR / RL).
func rotateRightHeavy[K, V any](t *bst.Tree[K, V, int], pivot *bst.Node[K, V, int]) *bst.Node[K, V, int] {
	right := t.Right(pivot)
	if balanceFactor(t, right) > 0 {
		t.RotateRight(right)
	}
	t.RotateLeft(pivot)
	newSub := t.Parent(pivot)
	updateHeight(t, pivot)
	updateHeight(t, right)
	updateHeight(t, newSub)
	return newSub
}

// retrace walks from n up to the root, recomputing heights and rotating at
// every ancestor whose balance factor has left [-1, 1]. Insert only ever
// needs one rotation; erase may need one at every level, so both paths
// share this same walk to the root (§4.2).
func retrace[K, V any](t *bst.Tree[K, V, int], n *bst.Node[K, V, int]) {
	for !t.IsNil(n) {
		updateHeight(t, n)
		switch bf := balanceFactor(t, n); {
		case bf > 1:
			n = rotateLeftHeavy(t, n)
		case bf < -1:
			n = rotateRightHeavy(t, n)
		}
		n = t.Parent(n)
	}
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

// Insert adds key/value if key is not already present. It is a no-op if key
// exists; it returns the value now stored under key (the existing value on
// a duplicate, or the one just inserted) and whether a new entry was
// created.
func (t *Tree[K, V]) Insert(key K, value V) (V, bool) {
	n, existed := t.t.FindOrInsert(key, value)
	if existed {
		return t.t.Value(n), false
	}
	t.t.SetMetadata(n, 1)
	retrace(t.t, n)
	return value, true
}

// Replace upserts key/value, returning the value previously stored under
// key (if any).
func (t *Tree[K, V]) Replace(key K, value V) (old V, hadOld bool) {
	n, existed := t.t.FindOrInsert(key, value)
	if existed {
		old = t.t.Value(n)
		t.t.SetValue(n, value)
		return old, true
	}
	t.t.SetMetadata(n, 1)
	retrace(t.t, n)
	var zero V
	return zero, false
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

	// Degree-2: swap with whichever of predecessor/successor sits in the
	// taller subtree, so the leaf we actually remove doesn't shrink the
	// shorter side further (§4.2).
	if t.t.IsFull(n) {
		var donor *bst.Node[K, V, int]
		if height(t.t, t.t.Left(n)) >= height(t.t, t.t.Right(n)) {
			donor = t.t.Predecessor(n)
		} else {
			donor = t.t.Successor(n)
		}
		t.t.SetKey(n, t.t.Key(donor))
		t.t.SetValue(n, t.t.Value(donor))
		n = donor
	}

	parent := t.t.Parent(n)
	t.t.Unlink(n)
	retrace(t.t, parent)
	return erased, true
}

// Clear removes every entry from the tree.
func (t *Tree[K, V]) Clear() { t.t.Clear() }

// Iterator returns a forward cursor positioned at the smallest key.
func (t *Tree[K, V]) Iterator() *Iterator[K, V] { return t.t.IterInit() }

// ReverseIterator returns a cursor positioned at the largest key, advancing
// toward smaller keys.
func (t *Tree[K, V]) ReverseIterator() *Iterator[K, V] { return t.t.ReverseIterInit() }

// ForEach visits every entry in ascending key order, stopping early if f
// returns false.
func (t *Tree[K, V]) ForEach(f func(K, V) bool) {
	t.t.TraverseInOrder(t.t.Root(), func(n *bst.Node[K, V, int]) bool {
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

// IsValid checks the BST ordering invariant and the AVL height-balance
// invariant (§3.4) at every node. It is intended for tests and debugging,
// not for use on a hot path.
func (t *Tree[K, V]) IsValid() error {
	if err := t.t.CheckOrder(); err != nil {
		return err
	}
	if err := t.t.CheckLinks(); err != nil {
		return err
	}
	var err error
	t.t.TraverseInOrder(t.t.Root(), func(n *bst.Node[K, V, int]) bool {
		l, r := height(t.t, t.t.Left(n)), height(t.t, t.t.Right(n))
		diff := l - r
		if diff < -1 || diff > 1 {
			err = fmt.Errorf("avltree: node %v unbalanced (left height %d, right height %d)", t.t.Key(n), l, r)
			return false
		}
		wantHeight := 1
		if l > r {
			wantHeight = 1 + l
		} else {
			wantHeight = 1 + r
		}
		if height(t.t, n) != wantHeight {
			err = fmt.Errorf("avltree: node %v has stale height %d, want %d", t.t.Key(n), height(t.t, n), wantHeight)
			return false
		}
		return true
	})
	return err
}
