// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package randperm

import (
	"math/rand"
	"testing"
)

func TestNewProducesABijection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p, err := New(256, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var seen [256]bool
	for i := 0; i < 256; i++ {
		v := p.Apply(byte(i))
		if seen[v] {
			t.Fatalf("value %d produced by more than one input: not a bijection", v)
		}
		seen[v] = true
		if p.ApplyInverse(v) != byte(i) {
			t.Fatalf("ApplyInverse(Apply(%d)) = %d, want %d", i, p.ApplyInverse(v), i)
		}
	}
}

func TestFromTableRebuildsInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p, err := New(16, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reloaded := FromTable(p.Table())

	for i := 0; i < 16; i++ {
		if reloaded.Apply(byte(i)) != p.Apply(byte(i)) {
			t.Fatalf("reloaded forward table mismatch at %d", i)
		}
		if reloaded.ApplyInverse(byte(i)) != p.ApplyInverse(byte(i)) {
			t.Fatalf("reloaded inverse table mismatch at %d", i)
		}
	}
}

func TestWidthReported(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p, err := New(16, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w := p.Width(); w != 16 {
		t.Fatalf("Width() = %d, want 16", w)
	}
}
