// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package whitebox

import (
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
)

func mustState(t *testing.T, s string) aesprims.State {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != aesprims.BlockBytes {
		t.Fatalf("bad test vector %q: %v", s, err)
	}
	var st aesprims.State
	copy(st[:], b)
	return st
}

var katVectors = []struct {
	key, plaintext, ciphertext string
}{
	{"5468617473206d79204b756e67204675", "54776f204f6e65204e696e652054776f", "29c3505f571420f6402299b31a02d73a"},
	{"2b7e151628aed2a6abf7158809cf4f3c", "6bc1bee22e409f96e93d7e117393172a", "3ad77bb40d7a3660a89ecaf32466ef97"},
	{"2b7e151628aed2a6abf7158809cf4f3c", "ae2d8a571e03ac9c9eb76fac45af8e51", "f5d3d58503b9699de785895a96fdbaaf"},
	{"2b7e151628aed2a6abf7158809cf4f3c", "30c81c46a35ce411e5fbc1191a0a52ef", "43b1cd7f598ece23881b00e3ed030688"},
}

func TestKATVectorsPlainConfiguration(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, v := range katVectors {
		key := mustState(t, v.key)
		var keyArr [aesprims.KeyBytes]byte
		copy(keyArr[:], key[:])

		gen := New(keyArr, Options{}, rng)
		encBundle := gen.GenerateEncryption()
		decBundle := gen.GenerateDecryption()
		interp := Interpreter{}

		pt := mustState(t, v.plaintext)
		ct := mustState(t, v.ciphertext)

		got := interp.Interpret(encBundle, pt, false)
		if got != ct {
			t.Errorf("key %s: encrypt(%s) = %x, want %s", v.key, v.plaintext, got, v.ciphertext)
		}

		gotPt := interp.Interpret(decBundle, ct, true)
		if gotPt != pt {
			t.Errorf("key %s: decrypt(%s) = %x, want %s", v.key, v.ciphertext, gotPt, v.plaintext)
		}
	}
}

func TestRoundTripAllConfigurations(t *testing.T) {
	configs := []Options{
		{UseMixingBijections: false, UseInternalEncoding: false},
		{UseMixingBijections: true, UseInternalEncoding: false},
		{UseMixingBijections: false, UseInternalEncoding: true},
		{UseMixingBijections: true, UseInternalEncoding: true},
	}

	rng := rand.New(rand.NewSource(7))
	var key [aesprims.KeyBytes]byte
	copy(key[:], []byte("0123456789abcdef"))

	interp := Interpreter{}
	for _, cfg := range configs {
		gen := New(key, cfg, rng)
		enc := gen.GenerateEncryption()
		dec := gen.GenerateDecryption()

		var pt aesprims.State
		for i := range pt {
			pt[i] = byte(i * 17)
		}

		ct := interp.Interpret(enc, pt, false)
		gotPt := interp.Interpret(dec, ct, true)
		if gotPt != pt {
			t.Errorf("config %+v: round trip failed, got %x want %x", cfg, gotPt, pt)
		}
	}
}

func TestRedundantInterpreterAgreesWithPlain(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var key [aesprims.KeyBytes]byte
	copy(key[:], []byte("redundancy-check"))

	gen := New(key, Options{}, rng)
	enc := gen.GenerateEncryption()

	var pt aesprims.State
	for i := range pt {
		pt[i] = byte(i)
	}

	plain := Interpreter{}.Interpret(enc, pt, false)
	redundant := Interpreter{Redundant: true}.Interpret(enc, pt, false)
	if plain != redundant {
		t.Fatalf("redundant interpreter disagreed with plain run: %x vs %x", redundant, plain)
	}
}
