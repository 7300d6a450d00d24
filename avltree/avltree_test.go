package avltree_test

import (
	"math/rand"
	"testing"

	"github.com/mikenye/ordtrees/avltree"
	"github.com/mikenye/ordtrees/internal/proptest"
	"github.com/stretchr/testify/require"
)

func TestInsertFindContains(t *testing.T) {
	tree := avltree.NewOrdered[int, string]()

	v, inserted := tree.Insert(5, "five")
	require.True(t, inserted)
	require.Equal(t, "five", v)

	v, inserted = tree.Insert(5, "cinco")
	require.False(t, inserted)
	require.Equal(t, "five", v)

	got, ok := tree.Find(5)
	require.True(t, ok)
	require.Equal(t, "five", got)
	require.True(t, tree.Contains(5))
	require.False(t, tree.Contains(9))
}

func TestReplaceUpserts(t *testing.T) {
	tree := avltree.NewOrdered[int, string]()
	_, hadOld := tree.Replace(1, "one")
	require.False(t, hadOld)
	old, hadOld := tree.Replace(1, "uno")
	require.True(t, hadOld)
	require.Equal(t, "one", old)
}

func TestBalanceStaysWithinOneAfterAscendingInserts(t *testing.T) {
	tree := avltree.NewOrdered[int, struct{}]()
	for i := 0; i < 1000; i++ {
		tree.Insert(i, struct{}{})
		require.NoError(t, tree.IsValid())
	}
	require.Equal(t, 1000, tree.Len())
}

func TestEraseRebalancesUpToRoot(t *testing.T) {
	tree := avltree.NewOrdered[int, struct{}]()
	keys := []int{50, 25, 75, 12, 37, 62, 87, 6, 18, 31, 43}
	for _, k := range keys {
		tree.Insert(k, struct{}{})
	}
	require.NoError(t, tree.IsValid())

	for _, k := range keys {
		_, found := tree.Erase(k)
		require.True(t, found)
		require.NoError(t, tree.IsValid())
	}
	require.True(t, tree.Empty())
}

func TestForwardAndReverseIteration(t *testing.T) {
	tree := avltree.NewOrdered[int, string]()
	for _, k := range []int{30, 10, 50, 20, 40} {
		tree.Insert(k, "v")
	}
	var forward []int
	for it := tree.Iterator(); !it.End(); it.Next() {
		forward = append(forward, it.Key())
	}
	require.Equal(t, []int{10, 20, 30, 40, 50}, forward)

	var reverse []int
	for it := tree.ReverseIterator(); !it.End(); it.Next() {
		reverse = append(reverse, it.Key())
	}
	require.Equal(t, []int{50, 40, 30, 20, 10}, reverse)
}

func TestIsValidAfterRandomOps(t *testing.T) {
	tree := avltree.NewOrdered[int, string]()
	model := proptest.Model[int, string]{}
	rng := rand.New(rand.NewSource(2))
	keys := make([]int, 60)
	for i := range keys {
		keys[i] = i
	}
	values := []string{"a", "b", "c"}

	for _, op := range proptest.GenOps[int, string](rng, 3000, keys, values) {
		if msg := proptest.Apply[int, string](tree, model, op); msg != "" {
			t.Fatalf("%s (op=%+v)", msg, op)
		}
	}
	if msg := proptest.CheckAgainstModel[int, string](tree, model); msg != "" {
		t.Fatalf("%s", msg)
	}
	require.NoError(t, tree.IsValid())
}
