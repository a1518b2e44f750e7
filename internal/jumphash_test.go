package internal

import (
	"testing"
)

func TestJumpHashInRange(t *testing.T) {
	for _, buckets := range []int{1, 2, 7, 64, 1000} {
		for key := uint64(0); key < 1000; key++ {
			b := JumpHash(key*2654435761, buckets)
			if b < 0 || b >= buckets {
				t.Fatalf("JumpHash(%d, %d) = %d, out of range", key, buckets, b)
			}
		}
	}
}

func TestJumpHashDeterministic(t *testing.T) {
	for key := uint64(0); key < 100; key++ {
		if JumpHash(key, 10) != JumpHash(key, 10) {
			t.Fatalf("JumpHash not deterministic for key %d", key)
		}
	}
}

func TestJumpHashNoBuckets(t *testing.T) {
	if got := JumpHash(42, 0); got != 0 {
		t.Fatalf("JumpHash(42, 0) = %d, want 0", got)
	}
	if got := JumpHash(42, -1); got != 0 {
		t.Fatalf("JumpHash(42, -1) = %d, want 0", got)
	}
}

// Growing the bucket count should move only ~1/n of the keys.
func TestJumpHashConsistency(t *testing.T) {
	const keys = 10000
	moved := 0
	for key := uint64(0); key < keys; key++ {
		if JumpHash(key, 10) != JumpHash(key, 11) {
			moved++
		}
	}
	// Expect about keys/11 moves; allow generous slack.
	if moved > keys/5 {
		t.Fatalf("%d of %d keys moved when adding a bucket", moved, keys)
	}
}
