// Package btree implements a classic (non-leaf-linked) B-tree of order m:
// every node holds between ⌈m/2⌉-1 and m-1 keys (the root may hold fewer),
// and an internal node has one more child than it has keys, so at most m
// children interleave those keys. Overflow on insert splits a
// node in two and promotes its median key to the parent; underflow on
// erase first tries to redistribute a key from a sibling, then merges with
// one, propagating up as needed.
//
// Unlike avltree/rbtree/llrb, each node stores its keys and values in
// parallel slices rather than as individually linked entries, and
// comparisons are done with a single binary search (ordered.Search) over
// those slices instead of descending link by link.
package btree

import (
	"fmt"

	"github.com/mikenye/ordtrees/ordered"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// node is a single B-tree node. children is empty for a leaf and has
// len(keys)+1 entries for an internal node.
type node[K, V any] struct {
	keys     []K
	values   []V
	children []*node[K, V]
	parent   *node[K, V]
}

func (n *node[K, V]) isLeaf() bool { return len(n.children) == 0 }

// Tree is a B-tree of the given order, keyed by K and carrying values V.
type Tree[K, V any] struct {
	root  *node[K, V]
	less  ordered.LessFunc[K]
	order int
	size  int
}

// New constructs an empty B-tree of the given order (order must be at
// least 3) ordered by less.
func New[K, V any](order int, less ordered.LessFunc[K]) *Tree[K, V] {
	if order < 3 {
		panic("btree: order must be at least 3")
	}
	return &Tree[K, V]{root: &node[K, V]{}, less: less, order: order}
}

// NewOrdered constructs an empty B-tree of the given order over a key type
// with a natural order.
func NewOrdered[K constraints.Ordered, V any](order int) *Tree[K, V] {
	return New[K, V](order, ordered.Less[K]())
}

// Len returns the number of entries in the tree.
func (t *Tree[K, V]) Len() int { return t.size }

// Empty reports whether the tree holds no entries.
func (t *Tree[K, V]) Empty() bool { return t.size == 0 }

func (t *Tree[K, V]) maxKeys() int { return t.order - 1 }
func (t *Tree[K, V]) minKeys() int { return (t.order+1)/2 - 1 }

// find descends to the leaf that would contain key, returning the path of
// nodes visited (root first) and, if key is present, its node and index.
func (t *Tree[K, V]) find(key K) (path []*node[K, V], holder *node[K, V], idx int, found bool) {
	n := t.root
	for {
		path = append(path, n)
		i, ok := ordered.Search(t.less, n.keys, key)
		if ok {
			return path, n, i, true
		}
		if n.isLeaf() {
			return path, n, i, false
		}
		n = n.children[i]
	}
}

// Contains reports whether key is present.
func (t *Tree[K, V]) Contains(key K) bool {
	_, _, _, found := t.find(key)
	return found
}

// Find returns the value stored under key, and whether key was present.
func (t *Tree[K, V]) Find(key K) (V, bool) {
	_, holder, idx, found := t.find(key)
	if !found {
		var zero V
		return zero, false
	}
	return holder.values[idx], true
}

// Insert adds key/value if key is not already present. It returns the
// value now stored under key and whether a new entry was created.
func (t *Tree[K, V]) Insert(key K, value V) (V, bool) {
	path, holder, idx, found := t.find(key)
	if found {
		return holder.values[idx], false
	}
	t.insertAt(path, key, value)
	return value, true
}

// Replace upserts key/value, returning the value previously stored under
// key, if any.
func (t *Tree[K, V]) Replace(key K, value V) (old V, hadOld bool) {
	path, holder, idx, found := t.find(key)
	if found {
		old = holder.values[idx]
		holder.values[idx] = value
		return old, true
	}
	t.insertAt(path, key, value)
	var zero V
	return zero, false
}

// insertAt places key/value into the leaf at the end of path (always a
// leaf, since find only stops early on an exact match) and splits upward
// as needed.
func (t *Tree[K, V]) insertAt(path []*node[K, V], key K, value V) {
	t.size++
	leaf := path[len(path)-1]
	i, _ := ordered.Search(t.less, leaf.keys, key)
	leaf.keys = slices.Insert(leaf.keys, i, key)
	leaf.values = slices.Insert(leaf.values, i, value)

	n := leaf
	for i := len(path) - 1; i >= 0 && len(n.keys) > t.maxKeys(); i-- {
		n = t.splitChild(path, i)
	}
}

// splitChild splits the overfull node path[i], promoting its median key
// into path[i-1] (or a brand new root, if i is 0). It returns the parent
// node, which the caller re-checks for overflow.
func (t *Tree[K, V]) splitChild(path []*node[K, V], i int) *node[K, V] {
	n := path[i]
	mid := len(n.keys) / 2
	midKey, midVal := n.keys[mid], n.values[mid]

	right := &node[K, V]{
		keys:   append([]K(nil), n.keys[mid+1:]...),
		values: append([]V(nil), n.values[mid+1:]...),
	}
	if !n.isLeaf() {
		right.children = append([]*node[K, V](nil), n.children[mid+1:]...)
		for _, c := range right.children {
			c.parent = right
		}
		n.children = n.children[:mid+1]
	}
	n.keys = n.keys[:mid]
	n.values = n.values[:mid]

	var parent *node[K, V]
	if i == 0 {
		parent = &node[K, V]{children: []*node[K, V]{n}}
		t.root = parent
	} else {
		parent = path[i-1]
	}
	right.parent = parent
	n.parent = parent

	childIdx, _ := ordered.Search(t.less, parent.keys, midKey)
	parent.keys = slices.Insert(parent.keys, childIdx, midKey)
	parent.values = slices.Insert(parent.values, childIdx, midVal)
	parent.children = slices.Insert(parent.children, childIdx+1, right)

	if i > 0 {
		path[i-1] = parent
	} else {
		path[0] = parent
	}
	return parent
}

// Erase removes key, returning its value and true, or the zero value and
// false if key was absent.
func (t *Tree[K, V]) Erase(key K) (V, bool) {
	path, holder, idx, found := t.find(key)
	if !found {
		var zero V
		return zero, false
	}
	erased := holder.values[idx]
	t.size--

	if !holder.isLeaf() {
		// Swap with the in-order predecessor (rightmost of the left child
		// subtree) and delete that leaf entry instead, per §4.5.
		predPath := append(append([]*node[K, V](nil), path...), holder.children[idx])
		p := predPath[len(predPath)-1]
		for !p.isLeaf() {
			p = p.children[len(p.children)-1]
			predPath = append(predPath, p)
		}
		last := len(p.keys) - 1
		holder.keys[idx], holder.values[idx] = p.keys[last], p.values[last]
		p.keys = p.keys[:last]
		p.values = p.values[:last]
		t.rebalance(predPath, len(predPath)-1)
		return erased, true
	}

	holder.keys = slices.Delete(holder.keys, idx, idx+1)
	holder.values = slices.Delete(holder.values, idx, idx+1)
	t.rebalance(path, len(path)-1)
	return erased, true
}

// rebalance restores the minimum-key-count invariant at path[i], walking
// up toward the root, after a key has been removed from it.
func (t *Tree[K, V]) rebalance(path []*node[K, V], i int) {
	for i >= 0 {
		n := path[i]
		if n == t.root || len(n.keys) >= t.minKeys() {
			break
		}
		parent := n.parent
		childIdx := slices.Index(parent.children, n)

		switch {
		case childIdx == 0:
			t.mergeOrBorrow(parent, childIdx, childIdx+1)
		case childIdx == len(parent.children)-1:
			t.mergeOrBorrow(parent, childIdx, childIdx-1)
		case len(parent.children[childIdx+1].keys) >= len(parent.children[childIdx-1].keys):
			t.mergeOrBorrow(parent, childIdx, childIdx+1)
		default:
			t.mergeOrBorrow(parent, childIdx, childIdx-1)
		}
		i--
	}
	if len(t.root.keys) == 0 && !t.root.isLeaf() {
		t.root = t.root.children[0]
		t.root.parent = nil
	}
}

// mergeOrBorrow fixes underflow in parent.children[idx] using the sibling
// at parent.children[sibIdx]: it borrows one key through the parent if the
// sibling can spare one, otherwise it merges idx's node, the separator,
// and the sibling into a single node.
func (t *Tree[K, V]) mergeOrBorrow(parent *node[K, V], idx, sibIdx int) {
	n := parent.children[idx]
	sib := parent.children[sibIdx]

	if len(sib.keys) > t.minKeys() {
		if sibIdx > idx {
			// Borrow from the right sibling: rotate the separator down,
			// the sibling's first key up.
			sepIdx := idx
			n.keys = append(n.keys, parent.keys[sepIdx])
			n.values = append(n.values, parent.values[sepIdx])
			parent.keys[sepIdx], parent.values[sepIdx] = sib.keys[0], sib.values[0]
			sib.keys = slices.Delete(sib.keys, 0, 1)
			sib.values = slices.Delete(sib.values, 0, 1)
			if !sib.isLeaf() {
				moved := sib.children[0]
				sib.children = slices.Delete(sib.children, 0, 1)
				moved.parent = n
				n.children = append(n.children, moved)
			}
		} else {
			sepIdx := idx - 1
			last := len(sib.keys) - 1
			n.keys = slices.Insert(n.keys, 0, parent.keys[sepIdx])
			n.values = slices.Insert(n.values, 0, parent.values[sepIdx])
			parent.keys[sepIdx], parent.values[sepIdx] = sib.keys[last], sib.values[last]
			sib.keys = sib.keys[:last]
			sib.values = sib.values[:last]
			if !sib.isLeaf() {
				moved := sib.children[len(sib.children)-1]
				sib.children = sib.children[:len(sib.children)-1]
				moved.parent = n
				n.children = slices.Insert(n.children, 0, moved)
			}
		}
		return
	}

	// Merge: combine n, the separator, and sib into whichever of the two
	// has the smaller index, and remove the other from parent.
	left, right := n, sib
	sepIdx := idx
	if sibIdx < idx {
		left, right = sib, n
		sepIdx = sibIdx
	}
	left.keys = append(left.keys, parent.keys[sepIdx])
	left.values = append(left.values, parent.values[sepIdx])
	left.keys = append(left.keys, right.keys...)
	left.values = append(left.values, right.values...)
	if !right.isLeaf() {
		for _, c := range right.children {
			c.parent = left
		}
		left.children = append(left.children, right.children...)
	}
	parent.keys = slices.Delete(parent.keys, sepIdx, sepIdx+1)
	parent.values = slices.Delete(parent.values, sepIdx, sepIdx+1)
	removeIdx := sepIdx + 1
	parent.children = slices.Delete(parent.children, removeIdx, removeIdx+1)
}

// Clear removes every entry from the tree.
func (t *Tree[K, V]) Clear() {
	t.root = &node[K, V]{}
	t.size = 0
}

// ForEach visits every entry in ascending key order, stopping early if f
// returns false.
func (t *Tree[K, V]) ForEach(f func(K, V) bool) {
	t.foreach(t.root, f)
}

func (t *Tree[K, V]) foreach(n *node[K, V], f func(K, V) bool) bool {
	if n == nil {
		return true
	}
	for i := range n.keys {
		if !n.isLeaf() {
			if !t.foreach(n.children[i], f) {
				return false
			}
		}
		if !f(n.keys[i], n.values[i]) {
			return false
		}
	}
	if !n.isLeaf() {
		return t.foreach(n.children[len(n.children)-1], f)
	}
	return true
}

// RangeEach visits every entry with key in [low, high) in ascending order,
// stopping early if f returns false.
func (t *Tree[K, V]) RangeEach(low, high K, f func(K, V) bool) {
	t.ForEach(func(k K, v V) bool {
		if t.less(k, low) {
			return true
		}
		if !t.less(k, high) {
			return false
		}
		return f(k, v)
	})
}

// IsValid checks key ordering, the min/max key-count invariant at every
// node (root excepted), and that every leaf sits at the same depth.
func (t *Tree[K, V]) IsValid() error {
	leafDepth := -1
	var walk func(n *node[K, V], depth int) error
	walk = func(n *node[K, V], depth int) error {
		if n != t.root {
			if len(n.keys) < t.minKeys() {
				return fmt.Errorf("btree: node has %d keys, fewer than minimum %d", len(n.keys), t.minKeys())
			}
		}
		if len(n.keys) > t.maxKeys() {
			return fmt.Errorf("btree: node has %d keys, more than maximum %d", len(n.keys), t.maxKeys())
		}
		for i := 1; i < len(n.keys); i++ {
			if !t.less(n.keys[i-1], n.keys[i]) {
				return fmt.Errorf("btree: out of order keys at %v", n.keys[i])
			}
		}
		if !n.isLeaf() && len(n.children) != len(n.keys)+1 {
			return fmt.Errorf("btree: node has %d keys but %d children", len(n.keys), len(n.children))
		}
		if n.isLeaf() {
			if leafDepth == -1 {
				leafDepth = depth
			} else if depth != leafDepth {
				return fmt.Errorf("btree: leaf at depth %d, expected %d", depth, leafDepth)
			}
			return nil
		}
		for _, c := range n.children {
			if c.parent != n {
				return fmt.Errorf("btree: child parent mismatch")
			}
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.root, 0)
}
