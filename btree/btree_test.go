package btree_test

import (
	"math/rand"
	"testing"

	"github.com/mikenye/ordtrees/btree"
	"github.com/mikenye/ordtrees/internal/proptest"
	"github.com/stretchr/testify/require"
)

func TestInsertFindContains(t *testing.T) {
	tree := btree.NewOrdered[int, string](4)

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
}

func TestReplaceUpserts(t *testing.T) {
	tree := btree.NewOrdered[int, string](4)
	_, hadOld := tree.Replace(1, "one")
	require.False(t, hadOld)
	old, hadOld := tree.Replace(1, "uno")
	require.True(t, hadOld)
	require.Equal(t, "one", old)
}

func TestSplitsAndMergesStayValid(t *testing.T) {
	for _, order := range []int{3, 4, 5, 8} {
		tree := btree.NewOrdered[int, struct{}](order)
		for i := 0; i < 500; i++ {
			tree.Insert(i, struct{}{})
			require.NoErrorf(t, tree.IsValid(), "order %d after inserting %d", order, i)
		}
		for i := 0; i < 500; i++ {
			_, found := tree.Erase(i)
			require.True(t, found)
			require.NoErrorf(t, tree.IsValid(), "order %d after erasing %d", order, i)
		}
		require.True(t, tree.Empty())
	}
}

func TestEraseInternalNodeUsesPredecessor(t *testing.T) {
	tree := btree.NewOrdered[int, int](3)
	for i := 1; i <= 15; i++ {
		tree.Insert(i, i*10)
	}
	require.NoError(t, tree.IsValid())

	v, found := tree.Erase(8)
	require.True(t, found)
	require.Equal(t, 80, v)
	require.NoError(t, tree.IsValid())
	require.False(t, tree.Contains(8))
}

func TestForEachAscendingOrder(t *testing.T) {
	tree := btree.NewOrdered[int, struct{}](4)
	order := rand.New(rand.NewSource(4)).Perm(200)
	for _, k := range order {
		tree.Insert(k, struct{}{})
	}
	var keys []int
	tree.ForEach(func(k int, _ struct{}) bool {
		keys = append(keys, k)
		return true
	})
	require.Len(t, keys, 200)
	require.True(t, proptest.CheckAscending(func(a, b int) bool { return a < b }, keys))
}

func TestRangeEach(t *testing.T) {
	tree := btree.NewOrdered[int, struct{}](4)
	for i := 0; i < 20; i++ {
		tree.Insert(i, struct{}{})
	}
	var got []int
	tree.RangeEach(5, 10, func(k int, _ struct{}) bool {
		got = append(got, k)
		return true
	})
	require.Equal(t, []int{5, 6, 7, 8, 9}, got)
}

func TestIsValidAfterRandomOps(t *testing.T) {
	tree := btree.NewOrdered[int, string](5)
	model := proptest.Model[int, string]{}
	rng := rand.New(rand.NewSource(5))
	keys := make([]int, 80)
	for i := range keys {
		keys[i] = i
	}
	values := []string{"a", "b", "c"}

	for _, op := range proptest.GenOps[int, string](rng, 4000, keys, values) {
		if msg := proptest.Apply[int, string](tree, model, op); msg != "" {
			t.Fatalf("%s (op=%+v)", msg, op)
		}
	}
	if msg := proptest.CheckAgainstModel[int, string](tree, model); msg != "" {
		t.Fatalf("%s", msg)
	}
	require.NoError(t, tree.IsValid())
}
