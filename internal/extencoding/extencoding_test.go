// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package extencoding

import (
	"math/rand"
	"testing"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
	"github.com/AeonDave/whitebox-aes/internal/whitebox"
)

func TestApplyInputOutputRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	var key [aesprims.KeyBytes]byte
	copy(key[:], []byte("ext-encoding-key"))

	gen := whitebox.New(key, whitebox.Options{}, rng)
	bundle := gen.GenerateEncryption()

	var pt aesprims.State
	for i := range pt {
		pt[i] = byte(i * 3)
	}
	interp := whitebox.Interpreter{}
	wantCt := interp.Interpret(bundle, pt, false)

	enc, err := New(rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	enc.ApplyInput(bundle)
	enc.ApplyOutput(bundle)

	var encodedPt aesprims.State
	// Round-0 Tyi table i reads input byte ShiftedIndex(i), so perm i
	// encodes that byte; table 15 is left un-encoded when FullWidth is false.
	for i := 0; i < 15; i++ {
		src := aesprims.ShiftedIndex(i)
		encodedPt[src] = enc.perms[i].ApplyInverse(pt[src])
	}
	encodedPt[aesprims.ShiftedIndex(15)] = pt[aesprims.ShiftedIndex(15)]

	gotEncodedCt := interp.Interpret(bundle, encodedPt, false)

	var gotCt aesprims.State
	for i := 0; i < 15; i++ {
		gotCt[i] = enc.perms[i].ApplyInverse(gotEncodedCt[i])
	}
	gotCt[15] = gotEncodedCt[15]

	// The encoded bundle, fed the externally-encoded plaintext and with its
	// externally-encoded output decoded back, must reproduce plain AES.
	if gotCt != wantCt {
		t.Fatalf("external encoding round trip mismatch: got %x want %x", gotCt, wantCt)
	}
}

func TestFullWidthCoversAllPositions(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	e, err := New(rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.FullWidth = true
	if e.width() != 16 {
		t.Fatalf("FullWidth width = %d, want 16", e.width())
	}
	e.FullWidth = false
	if e.width() != 15 {
		t.Fatalf("default width = %d, want 15", e.width())
	}
}
