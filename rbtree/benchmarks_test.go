package rbtree_test

import (
	"testing"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/mikenye/ordtrees/ordered"
	"github.com/mikenye/ordtrees/rbtree"
)

func BenchmarkTree_Insert(b *testing.B) {
	tree := rbtree.New[int, struct{}](ordered.Less[int]())
	i := 0
	for b.Loop() {
		tree.Insert(i, struct{}{})
		i++
	}
}

func BenchmarkGoDSRedBlackTree_Insert(b *testing.B) {
	tree := redblacktree.NewWithIntComparator()
	i := 0
	for b.Loop() {
		tree.Put(i, struct{}{})
		i++
	}
}

func BenchmarkTree_FindErase(b *testing.B) {
	tree := rbtree.New[int, struct{}](ordered.Less[int]())
	for i := 0; i < 100_000; i++ {
		tree.Insert(i, struct{}{})
	}
	i := 0
	for b.Loop() {
		tree.Erase(i % 100_000)
		i++
	}
}

func BenchmarkGoDSRedBlackTree_FindErase(b *testing.B) {
	tree := redblacktree.NewWithIntComparator()
	for i := 0; i < 100_000; i++ {
		tree.Put(i, struct{}{})
	}
	i := 0
	for b.Loop() {
		tree.Remove(i % 100_000)
		i++
	}
}
