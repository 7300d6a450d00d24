package bst

import (
	"testing"

	"github.com/mikenye/ordtrees/ordered"
	"github.com/stretchr/testify/require"
)

func newTestTree() *Tree[int, string, int] {
	return New[int, string, int](ordered.Less[int]())
}

func TestFindOrInsert(t *testing.T) {
	tree := newTestTree()

	n, existed := tree.FindOrInsert(5, "five")
	require.False(t, existed)
	require.Equal(t, 5, tree.Key(n))
	require.Equal(t, 1, tree.Size())

	n2, existed := tree.FindOrInsert(5, "cinco")
	require.True(t, existed)
	require.Same(t, n, n2)
	require.Equal(t, "five", tree.Value(n2), "FindOrInsert must not overwrite an existing value")
	require.Equal(t, 1, tree.Size())
}

func TestSearchAbsentReturnsSentinel(t *testing.T) {
	tree := newTestTree()
	tree.FindOrInsert(1, "one")
	n, found := tree.Search(2)
	require.False(t, found)
	require.True(t, tree.IsNil(n))
}

func TestMinMaxSuccessorPredecessor(t *testing.T) {
	tree := newTestTree()
	for _, k := range []int{50, 25, 75, 10, 30, 60, 90} {
		tree.FindOrInsert(k, "v")
	}

	require.Equal(t, 10, tree.Key(tree.Min(tree.Root())))
	require.Equal(t, 90, tree.Key(tree.Max(tree.Root())))

	n25, _ := tree.Search(25)
	succ := tree.Successor(n25)
	require.Equal(t, 30, tree.Key(succ))

	n75, _ := tree.Search(75)
	pred := tree.Predecessor(n75)
	require.Equal(t, 60, tree.Key(pred))
}

func TestRotateLeftRightPreserveInOrder(t *testing.T) {
	tree := newTestTree()
	for _, k := range []int{20, 10, 30, 5, 15, 25, 35} {
		tree.FindOrInsert(k, "v")
	}

	before := collectInOrder(tree)

	tree.RotateLeft(tree.Root())
	require.Equal(t, before, collectInOrder(tree), "rotation must preserve in-order key sequence")

	tree.RotateRight(tree.Root())
	require.Equal(t, before, collectInOrder(tree))
}

func TestUnlinkLeaf(t *testing.T) {
	tree := newTestTree()
	for _, k := range []int{10, 5, 15} {
		tree.FindOrInsert(k, "v")
	}
	n, _ := tree.Search(5)
	tree.Unlink(n)
	require.Equal(t, 2, tree.Size())
	_, found := tree.Search(5)
	require.False(t, found)
}

func TestClearResetsSizeAndRoot(t *testing.T) {
	tree := newTestTree()
	tree.FindOrInsert(1, "a")
	tree.FindOrInsert(2, "b")
	tree.Clear()
	require.Equal(t, 0, tree.Size())
	require.True(t, tree.IsNil(tree.Root()))
}

func TestCheckOrderDetectsViolation(t *testing.T) {
	tree := newTestTree()
	for _, k := range []int{10, 5, 15} {
		tree.FindOrInsert(k, "v")
	}
	require.NoError(t, tree.CheckOrder())

	// Directly corrupt a key to simulate a broken engine without going
	// through the public API.
	n, _ := tree.Search(5)
	tree.SetKey(n, 20)
	require.Error(t, tree.CheckOrder())
}

func collectInOrder(tree *Tree[int, string, int]) []int {
	var keys []int
	tree.TraverseInOrder(tree.Root(), func(n *Node[int, string, int]) bool {
		keys = append(keys, tree.Key(n))
		return true
	})
	return keys
}
