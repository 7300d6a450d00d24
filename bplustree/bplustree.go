// Package bplustree implements a B+-tree of order m: internal nodes hold
// routing keys only, and every value lives in a leaf. Leaves are linked
// into a singly-linked list left-to-right, so a full ascending scan never
// has to touch an internal node. The list has no backward links.
//
// A routing key at index i is the largest key present in the i-th child
// subtree — not the classic B-tree median. Splitting a leaf copies its
// largest key up to the parent and keeps it in the leaf; splitting an
// internal node moves that key up and removes it from the node (§4.6).
package bplustree

import (
	"fmt"

	"github.com/mikenye/ordtrees/ordered"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

type node[K, V any] struct {
	leaf     bool
	keys     []K
	values   []V           // leaf only
	children []*node[K, V] // internal only, len(children) == len(keys)+1
	parent   *node[K, V]
	next     *node[K, V] // leaf only: link to the next leaf in key order
}

// Tree is a B+-tree of the given order, keyed by K and carrying values V.
type Tree[K, V any] struct {
	root     *node[K, V]
	leftmost *node[K, V] // first leaf, head of the external linked list
	less     ordered.LessFunc[K]
	order    int
	size     int
}

// New constructs an empty B+-tree of the given order (at least 3) ordered
// by less.
func New[K, V any](order int, less ordered.LessFunc[K]) *Tree[K, V] {
	if order < 3 {
		panic("bplustree: order must be at least 3")
	}
	leaf := &node[K, V]{leaf: true}
	return &Tree[K, V]{root: leaf, leftmost: leaf, less: less, order: order}
}

// NewOrdered constructs an empty B+-tree of the given order over a key
// type with a natural order.
func NewOrdered[K constraints.Ordered, V any](order int) *Tree[K, V] {
	return New[K, V](order, ordered.Less[K]())
}

// Len returns the number of entries in the tree.
func (t *Tree[K, V]) Len() int { return t.size }

// Empty reports whether the tree holds no entries.
func (t *Tree[K, V]) Empty() bool { return t.size == 0 }

func (t *Tree[K, V]) maxInternal() int { return t.order - 1 }
func (t *Tree[K, V]) maxLeaf() int     { return t.order }
func (t *Tree[K, V]) minInternal() int { return (t.order+1)/2 - 1 }
func (t *Tree[K, V]) minLeaf() int     { return (t.order + 1) / 2 }

func (t *Tree[K, V]) maxKeysFor(n *node[K, V]) int {
	if n.leaf {
		return t.maxLeaf()
	}
	return t.maxInternal()
}

// leafFor descends to the leaf that would hold key, recording the path of
// internal nodes visited (root first, leaf last).
func (t *Tree[K, V]) leafFor(key K) []*node[K, V] {
	path := []*node[K, V]{t.root}
	n := t.root
	for !n.leaf {
		i, _ := ordered.Search(t.less, n.keys, key)
		n = n.children[i]
		path = append(path, n)
	}
	return path
}

// Contains reports whether key is present.
func (t *Tree[K, V]) Contains(key K) bool {
	_, found := t.Find(key)
	return found
}

// Find returns the value stored under key, and whether key was present.
func (t *Tree[K, V]) Find(key K) (V, bool) {
	path := t.leafFor(key)
	leaf := path[len(path)-1]
	i, found := ordered.Search(t.less, leaf.keys, key)
	if !found {
		var zero V
		return zero, false
	}
	return leaf.values[i], true
}

// Insert adds key/value if key is not already present. It returns the
// value now stored under key and whether a new entry was created.
func (t *Tree[K, V]) Insert(key K, value V) (V, bool) {
	path := t.leafFor(key)
	leaf := path[len(path)-1]
	i, found := ordered.Search(t.less, leaf.keys, key)
	if found {
		return leaf.values[i], false
	}
	t.size++
	leaf.keys = slices.Insert(leaf.keys, i, key)
	leaf.values = slices.Insert(leaf.values, i, value)
	t.fixSeparator(path, leaf)
	t.splitUp(path)
	return value, true
}

// Replace upserts key/value, returning the value previously stored under
// key, if any.
func (t *Tree[K, V]) Replace(key K, value V) (old V, hadOld bool) {
	path := t.leafFor(key)
	leaf := path[len(path)-1]
	i, found := ordered.Search(t.less, leaf.keys, key)
	if found {
		old = leaf.values[i]
		leaf.values[i] = value
		return old, true
	}
	t.size++
	leaf.keys = slices.Insert(leaf.keys, i, key)
	leaf.values = slices.Insert(leaf.values, i, value)
	t.fixSeparator(path, leaf)
	t.splitUp(path)
	var zero V
	return zero, false
}

// fixSeparator updates every ancestor's routing key for n to n's new
// largest key, since the routing-key convention requires it to always
// equal the max key currently in the subtree (§4.6).
func (t *Tree[K, V]) fixSeparator(path []*node[K, V], n *node[K, V]) {
	if len(n.keys) == 0 {
		return
	}
	maxKey := n.keys[len(n.keys)-1]
	child := n
	for i := len(path) - 2; i >= 0; i-- {
		parent := path[i]
		idx := slices.Index(parent.children, child)
		if idx < len(parent.keys) {
			parent.keys[idx] = maxKey
		}
		if idx != len(parent.children)-1 {
			// Only the rightmost child's key doesn't route anything above
			// it; any other position's separator was just rewritten, and
			// since routing keys are exact maxima, nothing further up
			// needs touching unless this is also the rightmost at its
			// level.
			return
		}
		child = parent
	}
}

// splitUp walks path from the leaf upward, splitting any node over
// capacity and promoting the left half's maximum key.
func (t *Tree[K, V]) splitUp(path []*node[K, V]) {
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if n.leaf {
			if len(n.keys) <= t.maxLeaf() {
				return
			}
			t.splitLeaf(path, i)
		} else {
			if len(n.keys) <= t.maxInternal() {
				return
			}
			t.splitInternal(path, i)
		}
	}
}

func (t *Tree[K, V]) splitLeaf(path []*node[K, V], i int) {
	n := path[i]
	leftSize := (len(n.keys) + 1) / 2
	right := &node[K, V]{
		leaf:   true,
		keys:   append([]K(nil), n.keys[leftSize:]...),
		values: append([]V(nil), n.values[leftSize:]...),
		next:   n.next,
	}
	n.keys = n.keys[:leftSize]
	n.values = n.values[:leftSize]
	n.next = right

	t.linkSplitIntoParent(path, i, n, right, n.keys[len(n.keys)-1])
}

func (t *Tree[K, V]) splitInternal(path []*node[K, V], i int) {
	n := path[i]
	leftSize := (len(n.keys) + 1) / 2
	right := &node[K, V]{
		keys:     append([]K(nil), n.keys[leftSize:]...),
		children: append([]*node[K, V](nil), n.children[leftSize:]...),
	}
	for _, c := range right.children {
		c.parent = right
	}
	promoted := n.keys[leftSize-1]
	n.keys = n.keys[:leftSize-1]
	n.children = n.children[:leftSize]

	t.linkSplitIntoParent(path, i, n, right, promoted)
}

// linkSplitIntoParent inserts right as a new sibling of n immediately
// after it in n's parent (creating a new root if n had none), recording
// sepKey as the routing key for n's position.
func (t *Tree[K, V]) linkSplitIntoParent(path []*node[K, V], i int, n, right *node[K, V], sepKey K) {
	var parent *node[K, V]
	if i == 0 {
		parent = &node[K, V]{children: []*node[K, V]{n}}
		t.root = parent
	} else {
		parent = path[i-1]
	}
	right.parent = parent
	n.parent = parent

	childIdx := slices.Index(parent.children, n)
	parent.keys = slices.Insert(parent.keys, childIdx, sepKey)
	parent.children = slices.Insert(parent.children, childIdx+1, right)

	if i > 0 {
		path[i-1] = parent
	} else {
		path[0] = parent
	}
}

// Erase removes key, returning its value and true, or the zero value and
// false if key was absent.
func (t *Tree[K, V]) Erase(key K) (V, bool) {
	path := t.leafFor(key)
	leaf := path[len(path)-1]
	i, found := ordered.Search(t.less, leaf.keys, key)
	if !found {
		var zero V
		return zero, false
	}
	erased := leaf.values[i]
	t.size--
	leaf.keys = slices.Delete(leaf.keys, i, i+1)
	leaf.values = slices.Delete(leaf.values, i, i+1)
	t.fixSeparator(path, leaf)
	t.rebalance(path, len(path)-1)
	return erased, true
}

func (t *Tree[K, V]) minKeysFor(n *node[K, V]) int {
	if n.leaf {
		return t.minLeaf()
	}
	return t.minInternal()
}

func (t *Tree[K, V]) rebalance(path []*node[K, V], i int) {
	for i >= 0 {
		n := path[i]
		if n == t.root || len(n.keys) >= t.minKeysFor(n) {
			break
		}
		parent := n.parent
		childIdx := slices.Index(parent.children, n)

		var sibIdx int
		switch {
		case childIdx == 0:
			sibIdx = 1
		case childIdx == len(parent.children)-1:
			sibIdx = childIdx - 1
		default:
			if lenKeys(parent.children[childIdx+1]) >= lenKeys(parent.children[childIdx-1]) {
				sibIdx = childIdx + 1
			} else {
				sibIdx = childIdx - 1
			}
		}
		t.mergeOrBorrow(parent, childIdx, sibIdx)
		i--
		if i >= 0 && path[i] != parent {
			path[i] = parent
		}
	}
	if !t.root.leaf && len(t.root.children) == 1 {
		t.root = t.root.children[0]
		t.root.parent = nil
	}
}

func lenKeys[K, V any](n *node[K, V]) int { return len(n.keys) }

func (t *Tree[K, V]) mergeOrBorrow(parent *node[K, V], idx, sibIdx int) {
	n := parent.children[idx]
	sib := parent.children[sibIdx]

	if len(sib.keys) > t.minKeysFor(sib) {
		if sibIdx > idx {
			if n.leaf {
				n.keys = append(n.keys, sib.keys[0])
				n.values = append(n.values, sib.values[0])
				sib.keys = slices.Delete(sib.keys, 0, 1)
				sib.values = slices.Delete(sib.values, 0, 1)
				parent.keys[idx] = n.keys[len(n.keys)-1]
			} else {
				n.keys = append(n.keys, parent.keys[idx])
				moved := sib.children[0]
				moved.parent = n
				n.children = append(n.children, moved)
				parent.keys[idx] = sib.keys[0]
				sib.children = slices.Delete(sib.children, 0, 1)
				sib.keys = slices.Delete(sib.keys, 0, 1)
			}
		} else {
			last := len(sib.keys) - 1
			if n.leaf {
				n.keys = slices.Insert(n.keys, 0, sib.keys[last])
				n.values = slices.Insert(n.values, 0, sib.values[last])
				sib.keys = sib.keys[:last]
				sib.values = sib.values[:last]
				parent.keys[sibIdx] = sib.keys[len(sib.keys)-1]
			} else {
				n.keys = slices.Insert(n.keys, 0, parent.keys[sibIdx])
				moved := sib.children[len(sib.children)-1]
				moved.parent = n
				n.children = slices.Insert(n.children, 0, moved)
				parent.keys[sibIdx] = sib.keys[last]
				sib.children = sib.children[:len(sib.children)-1]
				sib.keys = sib.keys[:last]
			}
		}
		return
	}

	left, right := n, sib
	leftIdx := idx
	if sibIdx < idx {
		left, right = sib, n
		leftIdx = sibIdx
	}
	if left.leaf {
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
	} else {
		left.keys = append(left.keys, parent.keys[leftIdx])
		left.keys = append(left.keys, right.keys...)
		for _, c := range right.children {
			c.parent = left
		}
		left.children = append(left.children, right.children...)
	}
	parent.keys = slices.Delete(parent.keys, leftIdx, leftIdx+1)
	parent.children = slices.Delete(parent.children, leftIdx+1, leftIdx+2)
}

// Clear removes every entry from the tree.
func (t *Tree[K, V]) Clear() {
	leaf := &node[K, V]{leaf: true}
	t.root = leaf
	t.leftmost = leaf
	t.size = 0
}

// ForEach visits every entry in ascending key order by walking the
// external leaf list, stopping early if f returns false.
func (t *Tree[K, V]) ForEach(f func(K, V) bool) {
	for n := t.firstLeaf(); n != nil; n = n.next {
		for i := range n.keys {
			if !f(n.keys[i], n.values[i]) {
				return
			}
		}
	}
}

// firstLeaf returns the head of the external leaf list. t.leftmost is
// stable across splits: a split never moves the original node, only
// shrinks it and attaches a new right sibling, so the very first leaf
// created at construction remains the list head for the tree's lifetime.
func (t *Tree[K, V]) firstLeaf() *node[K, V] { return t.leftmost }

// RangeEach visits every entry with key in [low, high) in ascending order,
// stopping early if f returns false. It starts the external-list walk at
// the leaf that would hold low, so it doesn't have to scan from the
// beginning of the tree.
func (t *Tree[K, V]) RangeEach(low, high K, f func(K, V) bool) {
	path := t.leafFor(low)
	n := path[len(path)-1]
	for n != nil {
		for i, k := range n.keys {
			if t.less(k, low) {
				continue
			}
			if !t.less(k, high) {
				return
			}
			if !f(k, n.values[i]) {
				return
			}
		}
		n = n.next
	}
}

// IsValid checks key ordering, min/max key-count invariants, routing-key
// correctness, and that the external leaf list is contiguous and
// ascending.
func (t *Tree[K, V]) IsValid() error {
	var walk func(n *node[K, V]) error
	walk = func(n *node[K, V]) error {
		if n != t.root {
			if len(n.keys) < t.minKeysFor(n) {
				return fmt.Errorf("bplustree: node has %d keys, fewer than minimum %d", len(n.keys), t.minKeysFor(n))
			}
		}
		if len(n.keys) > t.maxKeysFor(n) {
			return fmt.Errorf("bplustree: node has %d keys, more than maximum %d", len(n.keys), t.maxKeysFor(n))
		}
		if n.leaf {
			for i := 1; i < len(n.keys); i++ {
				if !t.less(n.keys[i-1], n.keys[i]) {
					return fmt.Errorf("bplustree: out of order keys at leaf key %v", n.keys[i])
				}
			}
			return nil
		}
		if len(n.children) != len(n.keys)+1 {
			return fmt.Errorf("bplustree: node has %d keys but %d children", len(n.keys), len(n.children))
		}
		for i, c := range n.children {
			if c.parent != n {
				return fmt.Errorf("bplustree: child parent mismatch")
			}
			if err := walk(c); err != nil {
				return err
			}
			if i < len(n.keys) {
				maxOfChild := maxKey(t, c)
				if !keysEqual(t.less, maxOfChild, n.keys[i]) {
					return fmt.Errorf("bplustree: routing key %v does not match child max %v", n.keys[i], maxOfChild)
				}
			}
		}
		return nil
	}
	if err := walk(t.root); err != nil {
		return err
	}

	var prev K
	first := true
	for n := t.firstLeaf(); n != nil; n = n.next {
		for _, k := range n.keys {
			if !first && !t.less(prev, k) {
				return fmt.Errorf("bplustree: external leaf list out of order at %v", k)
			}
			prev = k
			first = false
		}
	}
	return nil
}

func maxKey[K, V any](t *Tree[K, V], n *node[K, V]) K {
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	return n.keys[len(n.keys)-1]
}

func keysEqual[K any](less ordered.LessFunc[K], a, b K) bool {
	return !less(a, b) && !less(b, a)
}
