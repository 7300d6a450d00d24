package bst

import (
	"fmt"
	"strings"

	"github.com/mikenye/ordtrees/ordered"
)

// box-drawing connectors for Tree.String, identical to the teacher's BST
// visualization so every engine's debug dump looks the same.
const (
	connectorLeft     = " ╭── "
	connectorRight    = " ╰── "
	connectorVertical = " │   "
	connectorSpace    = "     "
)

// VisitFunc is applied to each node during a traversal. Traversal stops
// early if it returns false.
type VisitFunc[K, V, M any] func(n *Node[K, V, M]) bool

// Tree is the unbalanced BST substrate. Engines embed it and layer
// rebalancing on top; it never rebalances on its own.
type Tree[K, V, M any] struct {
	root     *Node[K, V, M]
	sentinel *Node[K, V, M]
	less     ordered.LessFunc[K]
	size     int
}

// New constructs an empty substrate using less to order keys.
func New[K, V, M any](less ordered.LessFunc[K]) *Tree[K, V, M] {
	t := &Tree[K, V, M]{
		sentinel: &Node[K, V, M]{},
		less:     less,
	}
	t.root = t.sentinel
	t.root.parent = t.sentinel
	return t
}

// Less reports whether a sorts before b under the tree's comparator.
func (t *Tree[K, V, M]) Less(a, b K) bool { return t.less(a, b) }

func (t *Tree[K, V, M]) keyEq(a, b K) bool { return ordered.Eq(t.less, a, b) }

// Sentinel returns the tree's nil sentinel node.
func (t *Tree[K, V, M]) Sentinel() *Node[K, V, M] { return t.sentinel }

// IsNil reports whether n is the tree's sentinel (the "absent" node).
func (t *Tree[K, V, M]) IsNil(n *Node[K, V, M]) bool { return n == t.sentinel }

// Root returns the root node, or the sentinel if the tree is empty.
func (t *Tree[K, V, M]) Root() *Node[K, V, M] { return t.root }

// SetRoot sets the root node. Engines use this after a rotation or delete
// replaces the top of the tree.
func (t *Tree[K, V, M]) SetRoot(n *Node[K, V, M]) { t.root = n }

// Size returns the number of entries in the tree.
func (t *Tree[K, V, M]) Size() int { return t.size }

// Key, Value, Metadata, Left, Right, and Parent read a node's fields.
func (t *Tree[K, V, M]) Key(n *Node[K, V, M]) K                 { return n.key }
func (t *Tree[K, V, M]) Value(n *Node[K, V, M]) V               { return n.value }
func (t *Tree[K, V, M]) Metadata(n *Node[K, V, M]) M            { return n.metadata }
func (t *Tree[K, V, M]) Left(n *Node[K, V, M]) *Node[K, V, M]   { return n.left }
func (t *Tree[K, V, M]) Right(n *Node[K, V, M]) *Node[K, V, M]  { return n.right }
func (t *Tree[K, V, M]) Parent(n *Node[K, V, M]) *Node[K, V, M] { return n.parent }

// SetKey, SetValue, SetMetadata, SetLeft, SetRight, and SetParent write a
// node's fields directly. These are low-level: engines use them to splice
// structure and to carry data across a predecessor/successor swap during a
// degree-2 delete. SetMetadata ignores writes to the sentinel; the other
// setters do not check for it.
func (t *Tree[K, V, M]) SetKey(n *Node[K, V, M], k K)           { n.key = k }
func (t *Tree[K, V, M]) SetValue(n *Node[K, V, M], v V)         { n.value = v }
func (t *Tree[K, V, M]) SetMetadata(n *Node[K, V, M], m M) {
	if n != t.sentinel {
		n.metadata = m
	}
}
func (t *Tree[K, V, M]) SetLeft(n, child *Node[K, V, M])  { n.left = child }
func (t *Tree[K, V, M]) SetRight(n, child *Node[K, V, M]) { n.right = child }
func (t *Tree[K, V, M]) SetParent(n, parent *Node[K, V, M]) { n.parent = parent }

// IsLeaf, IsUnary, and IsFull classify a node by child count.
func (t *Tree[K, V, M]) IsLeaf(n *Node[K, V, M]) bool {
	return n.left == t.sentinel && n.right == t.sentinel
}
func (t *Tree[K, V, M]) IsUnary(n *Node[K, V, M]) bool {
	return (n.left == t.sentinel) != (n.right == t.sentinel)
}
func (t *Tree[K, V, M]) IsFull(n *Node[K, V, M]) bool {
	return n.left != t.sentinel && n.right != t.sentinel
}

// Sibling returns n's sibling, or the sentinel if n is the root.
func (t *Tree[K, V, M]) Sibling(n *Node[K, V, M]) *Node[K, V, M] {
	if n.parent == t.sentinel {
		return t.sentinel
	}
	if n.parent.left == n {
		return n.parent.right
	}
	return n.parent.left
}

// Search looks up key, returning its node and true, or the sentinel and
// false if key is absent.
func (t *Tree[K, V, M]) Search(key K) (*Node[K, V, M], bool) {
	n := t.root
	for n != t.sentinel {
		if t.keyEq(n.key, key) {
			return n, true
		}
		if t.less(key, n.key) {
			n = n.left
		} else {
			n = n.right
		}
	}
	return t.sentinel, false
}

// FindOrInsert descends to key's position. If key is already present, it
// returns the existing node and true, leaving the tree untouched — the
// caller decides whether to overwrite the value (upsert) or leave it (plain
// insert). If key is absent, a new node is created, linked
// into place (engines set their own metadata default afterwards), the size
// counter is bumped, and the new node is returned with false.
func (t *Tree[K, V, M]) FindOrInsert(key K, value V) (node *Node[K, V, M], existed bool) {
	parent := t.sentinel
	curr := t.root
	for curr != t.sentinel {
		parent = curr
		switch {
		case t.keyEq(curr.key, key):
			return curr, true
		case t.less(key, curr.key):
			curr = curr.left
		default:
			curr = curr.right
		}
	}

	n := &Node[K, V, M]{
		key:    key,
		value:  value,
		parent: parent,
		left:   t.sentinel,
		right:  t.sentinel,
	}
	switch {
	case parent == t.sentinel:
		t.root = n
	case t.less(key, parent.key):
		parent.left = n
	default:
		parent.right = n
	}
	t.size++
	return n, false
}

// Transplant replaces the subtree rooted at toReplace with the subtree
// rooted at replacement, fixing up toReplace's parent's child pointer and,
// unless replacement is the sentinel, replacement's parent pointer. It does
// not touch toReplace's own children.
func (t *Tree[K, V, M]) Transplant(toReplace, replacement *Node[K, V, M]) {
	switch {
	case toReplace.parent == t.sentinel:
		t.root = replacement
	case toReplace == toReplace.parent.left:
		toReplace.parent.left = replacement
	default:
		toReplace.parent.right = replacement
	}
	if replacement != t.sentinel {
		replacement.parent = toReplace.parent
	}
}

// Unlink removes n, which must have at most one non-sentinel child, from
// the tree and splices that child into n's place. It returns the child
// (possibly the sentinel) that now occupies n's old slot — the starting
// point for an upward rebalancing walk — and decrements size. It does not
// handle degree-2 nodes; callers resolve those by copying a
// predecessor/successor's key and value into n and unlinking the leaf
// instead.
func (t *Tree[K, V, M]) Unlink(n *Node[K, V, M]) (replacement *Node[K, V, M]) {
	var child *Node[K, V, M]
	if n.left != t.sentinel {
		child = n.left
	} else {
		child = n.right
	}
	t.Transplant(n, child)
	t.size--
	return child
}

// Min returns the node with the smallest key in the subtree rooted at n.
func (t *Tree[K, V, M]) Min(n *Node[K, V, M]) *Node[K, V, M] {
	for n.left != t.sentinel {
		n = n.left
	}
	return n
}

// Max returns the node with the largest key in the subtree rooted at n.
func (t *Tree[K, V, M]) Max(n *Node[K, V, M]) *Node[K, V, M] {
	for n.right != t.sentinel {
		n = n.right
	}
	return n
}

// Successor returns n's in-order successor, or the sentinel if n holds the
// maximum key in the tree.
func (t *Tree[K, V, M]) Successor(n *Node[K, V, M]) *Node[K, V, M] {
	if n.right != t.sentinel {
		return t.Min(n.right)
	}
	p := n.parent
	for p != t.sentinel && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

// Predecessor returns n's in-order predecessor, or the sentinel if n holds
// the minimum key in the tree.
func (t *Tree[K, V, M]) Predecessor(n *Node[K, V, M]) *Node[K, V, M] {
	if n.left != t.sentinel {
		return t.Max(n.left)
	}
	p := n.parent
	for p != t.sentinel && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

// RotateLeft performs a standard left rotation pivoting on node, which must
// have a non-sentinel right child. It updates every parent/child link
// touched, including the root link when node was the root. It does not
// touch metadata — height/color bookkeeping is the calling engine's job.
func (t *Tree[K, V, M]) RotateLeft(node *Node[K, V, M]) {
	r := node.right
	node.right = r.left
	if r.left != t.sentinel {
		r.left.parent = node
	}
	r.parent = node.parent
	switch {
	case node.parent == t.sentinel:
		t.root = r
	case node.parent.left == node:
		node.parent.left = r
	default:
		node.parent.right = r
	}
	r.left = node
	node.parent = r
}

// RotateRight is the mirror of RotateLeft, pivoting on node's left child.
func (t *Tree[K, V, M]) RotateRight(node *Node[K, V, M]) {
	l := node.left
	node.left = l.right
	if l.right != t.sentinel {
		l.right.parent = node
	}
	l.parent = node.parent
	switch {
	case node.parent == t.sentinel:
		t.root = l
	case node.parent.left == node:
		node.parent.left = l
	default:
		node.parent.right = l
	}
	l.right = node
	node.parent = l
}

// Clear empties the tree in O(1): dropping the root makes every node
// unreachable and thus collectible.
func (t *Tree[K, V, M]) Clear() {
	t.root = t.sentinel
	t.size = 0
}

// TraverseInOrder visits nodes of the subtree rooted at n in ascending key
// order, applying f to each. It stops early if f returns false.
func (t *Tree[K, V, M]) TraverseInOrder(n *Node[K, V, M], f VisitFunc[K, V, M]) bool {
	if n == t.sentinel {
		return true
	}
	if !t.TraverseInOrder(n.left, f) {
		return false
	}
	if !f(n) {
		return false
	}
	return t.TraverseInOrder(n.right, f)
}

// TraverseReverse is TraverseInOrder in descending key order.
func (t *Tree[K, V, M]) TraverseReverse(n *Node[K, V, M], f VisitFunc[K, V, M]) bool {
	if n == t.sentinel {
		return true
	}
	if !t.TraverseReverse(n.right, f) {
		return false
	}
	if !f(n) {
		return false
	}
	return t.TraverseReverse(n.left, f)
}

// depth returns the number of edges from the root to n; used only by
// String for indentation.
func (t *Tree[K, V, M]) depth(n *Node[K, V, M]) int {
	d := 0
	for n.parent != t.sentinel {
		d++
		n = n.parent
	}
	return d
}

// String renders the tree as a box-drawn diagram, minimum key first.
func (t *Tree[K, V, M]) String() string {
	if t.root == t.sentinel {
		return "Empty Tree"
	}
	b := new(strings.Builder)
	verticals := make(map[int]bool)
	t.TraverseInOrder(t.root, func(n *Node[K, V, M]) bool {
		h := t.depth(n)
		for j := 0; j < h-1; j++ {
			if verticals[j+1] {
				b.WriteString(connectorVertical)
			} else {
				b.WriteString(connectorSpace)
			}
		}
		if n.parent != t.sentinel && n.parent.left == n {
			b.WriteString(connectorLeft)
		} else if n.parent != t.sentinel && n.parent.right == n {
			b.WriteString(connectorRight)
		}
		b.WriteString(n.String())
		b.WriteString("\n")

		if n.parent != t.sentinel && n.parent.left == n {
			verticals[h] = true
		}
		if n.parent != t.sentinel && n.parent.right == n {
			verticals[h] = false
		}
		verticals[h+1] = n.right != t.sentinel
		return true
	})
	return b.String()
}

// CheckOrder walks the tree in order and returns an error at the first pair
// of adjacent keys that is not strictly ascending. It is the shared half of
// every engine's IsValid: structural (height/color) checks are layered on
// top by the embedding engine.
func (t *Tree[K, V, M]) CheckOrder() error {
	var prev K
	first := true
	var err error
	t.TraverseInOrder(t.root, func(n *Node[K, V, M]) bool {
		if !first && !t.less(prev, n.key) {
			err = fmt.Errorf("out of order keys at %v", n.key)
			return false
		}
		prev = n.key
		first = false
		return true
	})
	return err
}

// CheckLinks verifies every node's parent back-link agrees with its
// parent's forward link, and that the root's parent is the sentinel.
func (t *Tree[K, V, M]) CheckLinks() error {
	if t.root.parent != t.sentinel {
		return fmt.Errorf("root parent is not sentinel")
	}
	var err error
	t.TraverseInOrder(t.root, func(n *Node[K, V, M]) bool {
		if n.parent == t.sentinel {
			return true
		}
		if n.parent.left != n && n.parent.right != n {
			err = fmt.Errorf("parent/child mismatch at %v", n.key)
			return false
		}
		return true
	})
	return err
}
