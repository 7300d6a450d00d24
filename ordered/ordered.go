// Package ordered defines the comparator contract shared by every engine in
// this module (avltree, rbtree, llrb, btree, bplustree) and a small binary
// search primitive built on top of it.
//
// No engine stores a copy of this package's types; each engine is handed a
// LessFunc at construction time and treats it as an oracle. Equality is
// always derived, never stored: for keys a and b, a == b if and only if
// !less(a, b) && !less(b, a).
package ordered

import "golang.org/x/exp/constraints"

// LessFunc reports whether a sorts strictly before b.
//
// It must describe a strict weak order: irreflexive (less(a, a) is always
// false) and transitive (less(a, b) && less(b, c) implies less(a, c)).
// Keys for which neither less(a, b) nor less(b, a) holds are treated as
// equal, even if they are not == in the Go sense.
type LessFunc[K any] func(a, b K) bool

// Less returns the natural LessFunc for any constraints.Ordered key type,
// for callers who don't need a custom comparator.
func Less[K constraints.Ordered]() LessFunc[K] {
	return func(a, b K) bool { return a < b }
}

// Eq derives equality from less, per the comparator contract: a and b are
// equal iff neither is less than the other.
func Eq[K any](less LessFunc[K], a, b K) bool {
	return !less(a, b) && !less(b, a)
}

// Search does a binary search for key in the sorted slice keys.
//
// If key is present, it returns its index and true. If key is absent, it
// returns the insertion index — the leftmost position i such that
// less(key, keys[i]) holds, or len(keys) if key is greater than every
// element — and false. This is the shared primitive §4.1 of the
// specification calls for; it backs leaf-array lookup, insert slot
// selection, and internal-node child descent (descend into children[i])
// across the B-tree and B+-tree engines.
func Search[K any](less LessFunc[K], keys []K, key K) (idx int, found bool) {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch {
		case less(key, keys[mid]):
			hi = mid
		case less(keys[mid], key):
			lo = mid + 1
		default:
			return mid, true
		}
	}
	return lo, false
}
