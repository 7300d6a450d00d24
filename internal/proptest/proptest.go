// Package proptest is a small property-based testing harness shared by the
// five engine packages' test suites. It generates random operation
// sequences against an engine and a reference map, and checks the
// testable properties every engine must satisfy (§8): find-returns-
// last-write, absent-key-returns-null, in-order ascending iteration, and
// size correctness. It has no round-trip (insert-then-erase-to-empty)
// check of its own.
package proptest

import (
	"fmt"
	"math/rand"

	"github.com/google/go-cmp/cmp"
)

// Engine is the minimal surface every tree package exposes that the
// property harness needs to drive it.
type Engine[K comparable, V any] interface {
	Insert(key K, value V) (V, bool)
	Replace(key K, value V) (V, bool)
	Erase(key K) (V, bool)
	Find(key K) (V, bool)
	Len() int
	ForEach(func(K, V) bool)
}

// Op is one step of a random operation sequence.
type Op[K comparable, V any] struct {
	Kind  OpKind
	Key   K
	Value V
}

// OpKind identifies which Engine method an Op drives.
type OpKind int

const (
	OpInsert OpKind = iota
	OpReplace
	OpErase
)

// GenOps produces n random operations over the given key and value pools.
func GenOps[K comparable, V any](rng *rand.Rand, n int, keys []K, values []V) []Op[K, V] {
	ops := make([]Op[K, V], n)
	for i := range ops {
		ops[i] = Op[K, V]{
			Kind:  OpKind(rng.Intn(3)),
			Key:   keys[rng.Intn(len(keys))],
			Value: values[rng.Intn(len(values))],
		}
	}
	return ops
}

// Model is the map-based reference implementation an Engine is checked
// against.
type Model[K comparable, V any] map[K]V

// Apply runs op against both the engine and the model and reports a
// mismatch, if any. It does not check ordering; callers can run
// CheckAscending over a ForEach walk after a full run.
func Apply[K comparable, V comparable](e Engine[K, V], m Model[K, V], op Op[K, V]) (mismatch string) {
	switch op.Kind {
	case OpInsert:
		wantExisted := false
		if _, ok := m[op.Key]; ok {
			wantExisted = true
		} else {
			m[op.Key] = op.Value
		}
		_, inserted := e.Insert(op.Key, op.Value)
		if inserted == wantExisted {
			return "Insert: inserted flag disagrees with model presence"
		}
	case OpReplace:
		old, hadOld := m[op.Key]
		m[op.Key] = op.Value
		gotOld, gotHadOld := e.Replace(op.Key, op.Value)
		if hadOld != gotHadOld {
			return "Replace: hadOld flag disagrees with model"
		}
		if hadOld && old != gotOld {
			return "Replace: returned stale value disagrees with model"
		}
	case OpErase:
		old, hadOld := m[op.Key]
		delete(m, op.Key)
		gotOld, gotHadOld := e.Erase(op.Key)
		if hadOld != gotHadOld {
			return "Erase: found flag disagrees with model"
		}
		if hadOld && old != gotOld {
			return "Erase: returned value disagrees with model"
		}
	}
	return ""
}

// CheckAgainstModel verifies every key in the model is found in e with the
// matching value, that e holds no key absent from the model, and that
// e.Len matches the model's size.
func CheckAgainstModel[K comparable, V comparable](e Engine[K, V], m Model[K, V]) (mismatch string) {
	if e.Len() != len(m) {
		return "Len disagrees with model size"
	}
	for k, v := range m {
		got, found := e.Find(k)
		if !found {
			return "Find: key present in model but missing from engine"
		}
		if got != v {
			return "Find: value disagrees with model"
		}
	}
	visited := make(map[K]V, len(m))
	e.ForEach(func(k K, v V) bool {
		visited[k] = v
		return true
	})
	if diff := cmp.Diff(map[K]V(m), visited); diff != "" {
		return fmt.Sprintf("ForEach: visited set disagrees with model (-want +got):\n%s", diff)
	}
	return ""
}

// CheckAscending reports whether the keys argument (collected from a
// forward ForEach/iterator walk) is in strictly ascending order per less.
func CheckAscending[K any](less func(a, b K) bool, keys []K) bool {
	for i := 1; i < len(keys); i++ {
		if !less(keys[i-1], keys[i]) {
			return false
		}
	}
	return true
}
