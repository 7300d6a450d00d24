package bst

import (
	"testing"

	"github.com/mikenye/ordtrees/ordered"
	"github.com/stretchr/testify/require"
)

func TestIteratorForwardAndReverse(t *testing.T) {
	tree := New[int, string, int](ordered.Less[int]())
	for _, k := range []int{30, 10, 50, 20, 40} {
		tree.FindOrInsert(k, "v")
	}

	var forward []int
	for it := tree.IterInit(); !it.End(); it.Next() {
		forward = append(forward, it.Key())
	}
	require.Equal(t, []int{10, 20, 30, 40, 50}, forward)

	var reverse []int
	for it := tree.ReverseIterInit(); !it.End(); it.Next() {
		reverse = append(reverse, it.Key())
	}
	require.Equal(t, []int{50, 40, 30, 20, 10}, reverse)
}

func TestIteratorOnEmptyTreeEndsImmediately(t *testing.T) {
	tree := New[int, string, int](ordered.Less[int]())
	it := tree.IterInit()
	require.True(t, it.End())
}

func TestIteratorPrevRetracesNext(t *testing.T) {
	tree := New[int, string, int](ordered.Less[int]())
	for _, k := range []int{1, 2, 3} {
		tree.FindOrInsert(k, "v")
	}
	it := tree.IterInit()
	require.Equal(t, 1, it.Key())
	it.Next()
	require.Equal(t, 2, it.Key())
	it.Next()
	require.Equal(t, 3, it.Key())
	it.Prev()
	require.Equal(t, 2, it.Key())
}
