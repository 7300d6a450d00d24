package llrb_test

import (
	"math/rand"
	"testing"

	"github.com/mikenye/ordtrees/internal/proptest"
	"github.com/mikenye/ordtrees/llrb"
	"github.com/stretchr/testify/require"
)

func TestInsertFindContains(t *testing.T) {
	tree := llrb.NewOrdered[int, string]()

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

func TestInsertKeepsLeftLeaningInvariant(t *testing.T) {
	tree := llrb.NewOrdered[int, struct{}]()
	for i := 0; i < 500; i++ {
		tree.Insert(i, struct{}{})
		require.NoError(t, tree.IsValid())
	}
	require.Equal(t, 500, tree.Len())
}

func TestEraseToEmpty(t *testing.T) {
	tree := llrb.NewOrdered[int, struct{}]()
	keys := []int{50, 25, 75, 12, 37, 62, 87, 6, 18, 31, 43, 1, 99}
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
	tree := llrb.NewOrdered[int, string]()
	for _, k := range []int{30, 10, 50, 20, 40} {
		tree.Insert(k, "v")
	}
	var forward []int
	for it := tree.Iterator(); !it.End(); it.Next() {
		forward = append(forward, it.Key())
	}
	require.Equal(t, []int{10, 20, 30, 40, 50}, forward)
}

func TestIsValidAfterRandomOps(t *testing.T) {
	tree := llrb.NewOrdered[int, string]()
	model := proptest.Model[int, string]{}
	rng := rand.New(rand.NewSource(3))
	keys := make([]int, 50)
	for i := range keys {
		keys[i] = i
	}
	values := []string{"a", "b", "c"}

	for _, op := range proptest.GenOps[int, string](rng, 2000, keys, values) {
		if msg := proptest.Apply[int, string](tree, model, op); msg != "" {
			t.Fatalf("%s (op=%+v)", msg, op)
		}
		require.NoError(t, tree.IsValid())
	}
	if msg := proptest.CheckAgainstModel[int, string](tree, model); msg != "" {
		t.Fatalf("%s", msg)
	}
	require.NoError(t, tree.IsValid())
}
