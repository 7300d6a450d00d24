package rbtree_test

import (
	"math/rand"
	"testing"

	"github.com/mikenye/ordtrees/internal/proptest"
	"github.com/mikenye/ordtrees/ordered"
	"github.com/mikenye/ordtrees/rbtree"
	"github.com/stretchr/testify/require"
)

func newIntTree() *rbtree.Tree[int, string] {
	return rbtree.New[int, string](ordered.Less[int]())
}

func TestInsertFindContains(t *testing.T) {
	tree := newIntTree()

	v, inserted := tree.Insert(5, "five")
	require.True(t, inserted)
	require.Equal(t, "five", v)

	v, inserted = tree.Insert(5, "cinco")
	require.False(t, inserted)
	require.Equal(t, "five", v, "duplicate insert must fail silently and report the existing value")

	got, ok := tree.Find(5)
	require.True(t, ok)
	require.Equal(t, "five", got)

	require.True(t, tree.Contains(5))
	require.False(t, tree.Contains(6))

	_, ok = tree.Find(6)
	require.False(t, ok)
}

func TestReplaceUpserts(t *testing.T) {
	tree := newIntTree()

	old, hadOld := tree.Replace(1, "one")
	require.False(t, hadOld)
	require.Equal(t, "", old)

	old, hadOld = tree.Replace(1, "uno")
	require.True(t, hadOld)
	require.Equal(t, "one", old)

	got, _ := tree.Find(1)
	require.Equal(t, "uno", got)
}

func TestEraseReturnsValueAndShrinksSize(t *testing.T) {
	tree := newIntTree()
	for i, w := range []string{"zero", "one", "two", "three", "four"} {
		tree.Insert(i, w)
	}
	require.Equal(t, 5, tree.Len())

	v, found := tree.Erase(2)
	require.True(t, found)
	require.Equal(t, "two", v)
	require.Equal(t, 4, tree.Len())
	require.False(t, tree.Contains(2))

	_, found = tree.Erase(2)
	require.False(t, found, "erasing an absent key must report false")
}

func TestInsertEraseToEmpty(t *testing.T) {
	tree := newIntTree()
	keys := []int{50, 20, 70, 10, 30, 60, 80, 5, 15, 25, 35}
	for _, k := range keys {
		tree.Insert(k, "v")
		require.NoError(t, tree.IsValid())
	}
	for _, k := range keys {
		_, found := tree.Erase(k)
		require.True(t, found)
		require.NoError(t, tree.IsValid())
	}
	require.Equal(t, 0, tree.Len())
	require.True(t, tree.Empty())
}

func TestForwardAndReverseIteration(t *testing.T) {
	tree := newIntTree()
	for _, k := range []int{30, 10, 50, 20, 40} {
		tree.Insert(k, "v")
	}

	var forward []int
	it := tree.Iterator()
	for !it.End() {
		forward = append(forward, it.Key())
		it.Next()
	}
	require.Equal(t, []int{10, 20, 30, 40, 50}, forward)

	var reverse []int
	rit := tree.ReverseIterator()
	for !rit.End() {
		reverse = append(reverse, rit.Key())
		rit.Next()
	}
	require.Equal(t, []int{50, 40, 30, 20, 10}, reverse)
}

func TestRangeEach(t *testing.T) {
	tree := newIntTree()
	for i := 0; i < 10; i++ {
		tree.Insert(i, "v")
	}
	var got []int
	tree.RangeEach(3, 7, func(k int, _ string) bool {
		got = append(got, k)
		return true
	})
	require.Equal(t, []int{3, 4, 5, 6}, got)
}

func TestIsValidAfterRandomOps(t *testing.T) {
	tree := newIntTree()
	model := proptest.Model[int, string]{}
	rng := rand.New(rand.NewSource(1))
	keys := make([]int, 40)
	for i := range keys {
		keys[i] = i
	}
	values := []string{"a", "b", "c"}

	for _, op := range proptest.GenOps[int, string](rng, 2000, keys, values) {
		if msg := proptest.Apply[int, string](tree, model, op); msg != "" {
			t.Fatalf("%s (op=%+v)", msg, op)
		}
	}
	if msg := proptest.CheckAgainstModel[int, string](tree, model); msg != "" {
		t.Fatalf("%s", msg)
	}
	require.NoError(t, tree.IsValid())

	var keysSeen []int
	tree.ForEach(func(k int, _ string) bool {
		keysSeen = append(keysSeen, k)
		return true
	})
	require.True(t, proptest.CheckAscending(func(a, b int) bool { return a < b }, keysSeen))
}

func TestClear(t *testing.T) {
	tree := newIntTree()
	tree.Insert(1, "a")
	tree.Insert(2, "b")
	tree.Clear()
	require.Equal(t, 0, tree.Len())
	_, ok := tree.Find(1)
	require.False(t, ok)
}
