// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package aesprims

import (
	"encoding/hex"
	"testing"
)

// TestKeyScheduleFIPS197Vector checks the expansion against the worked
// example from FIPS-197 Appendix A.1.
func TestKeyScheduleFIPS197Vector(t *testing.T) {
	keyBytes, err := hex.DecodeString("2b7e151628aed2a6abf7158809cf4f3c")
	if err != nil {
		t.Fatalf("decode key: %v", err)
	}
	var key [KeyBytes]byte
	copy(key[:], keyBytes)

	want := []string{
		"2b7e151628aed2a6abf7158809cf4f3c",
		"a0fafe1788542cb123a339392a6c7605",
		"f2c295f27a96b9435935807a7359f67f",
		"3d80477d4716fe3e1e237e446d7a883b",
		"ef44a541a8525b7fb671253bdb0bad00",
		"d4d1c6f87c839d87caf2b8bc11f915bc",
		"6d88a37a110b3efddbf98641ca0093fd",
		"4e54f70e5f5fc9f384a64fb24ea6dc4f",
		"ead27321b58dbad2312bf5607f8d292f",
		"ac7766f319fadc2128d12941575c006e",
		"d014f9a8c9ee2589e13f0cc8b6630ca6",
	}

	expanded := KeySchedule(key)
	if len(expanded) != len(want) {
		t.Fatalf("got %d round keys, want %d", len(expanded), len(want))
	}
	for round, roundKey := range expanded {
		got := hex.EncodeToString(roundKey[:])
		if got != want[round] {
			t.Fatalf("round %d: got %s, want %s", round, got, want[round])
		}
	}
}

func TestSBoxIsInvolutiveWithItsInverse(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		if InvSubByte(SubByte(b)) != b {
			t.Fatalf("InvSBox(SBox(%#x)) != %#x", b, b)
		}
	}
}

func TestShiftRowsRoundTrip(t *testing.T) {
	var s State
	for i := range s {
		s[i] = byte(i)
	}
	if got := InvShiftRows(ShiftRows(s)); got != s {
		t.Fatalf("InvShiftRows(ShiftRows(s)) = %v, want %v", got, s)
	}
}

func TestGMulIdentityAndZero(t *testing.T) {
	for i := 0; i < 256; i++ {
		a := byte(i)
		if GMul(a, 1) != a {
			t.Fatalf("GMul(%#x, 1) = %#x, want %#x", a, GMul(a, 1), a)
		}
		if GMul(a, 0) != 0 {
			t.Fatalf("GMul(%#x, 0) = %#x, want 0", a, GMul(a, 0))
		}
	}
}
