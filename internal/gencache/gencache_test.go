// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package gencache

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
	"github.com/AeonDave/whitebox-aes/internal/whitebox"
)

func testBundle(seed int64) *whitebox.Bundle {
	rng := rand.New(rand.NewSource(seed))
	var key [aesprims.KeyBytes]byte
	copy(key[:], []byte("gencache-test-ke"))
	gen := whitebox.New(key, whitebox.Options{}, rng)
	return gen.GenerateEncryption()
}

func TestGetOrComputeCachesResult(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundles")
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var key [aesprims.KeyBytes]byte
	copy(key[:], []byte("gencache-test-ke"))
	id := ActionID(key, whitebox.Options{}, false)

	calls := 0
	compute := func() (*whitebox.Bundle, error) {
		calls++
		return testBundle(1), nil
	}

	b1, err := c.GetOrCompute(id, compute)
	if err != nil {
		t.Fatalf("GetOrCompute (first): %v", err)
	}
	b2, err := c.GetOrCompute(id, compute)
	if err != nil {
		t.Fatalf("GetOrCompute (second): %v", err)
	}
	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}
	if b1.FinalTBoxes != b2.FinalTBoxes {
		t.Fatal("cached bundle differs from the one just computed")
	}
}

func TestGetOrComputeSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundles")

	var key [aesprims.KeyBytes]byte
	copy(key[:], []byte("gencache-test-ke"))
	id := ActionID(key, whitebox.Options{}, false)
	bundle := testBundle(2)

	c1, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c1.Put(id, bundle); err != nil {
		t.Fatalf("Put: %v", err)
	}

	c2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := c2.Get(id)
	if !ok {
		t.Fatal("expected cache hit in a freshly reopened cache")
	}
	if got.FinalTBoxes != bundle.FinalTBoxes {
		t.Fatal("reloaded bundle differs from the one stored")
	}
}

func TestActionIDDistinguishesInputs(t *testing.T) {
	var key1, key2 [aesprims.KeyBytes]byte
	copy(key1[:], []byte("key-material-one"))
	copy(key2[:], []byte("key-material-two"))

	if ActionID(key1, whitebox.Options{}, false) == ActionID(key2, whitebox.Options{}, false) {
		t.Fatal("different keys produced the same ActionID")
	}
	if ActionID(key1, whitebox.Options{}, false) == ActionID(key1, whitebox.Options{}, true) {
		t.Fatal("different directions produced the same ActionID")
	}
	if ActionID(key1, whitebox.Options{}, false) == ActionID(key1, whitebox.Options{UseMixingBijections: true}, false) {
		t.Fatal("different options produced the same ActionID")
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundles")
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var key [aesprims.KeyBytes]byte
	if _, ok := c.Get(ActionID(key, whitebox.Options{}, false)); ok {
		t.Fatal("expected a miss on an empty cache")
	}
}
