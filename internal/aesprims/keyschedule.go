// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package aesprims

const (
	// KeyBytes is the length in bytes of an AES-128 key.
	KeyBytes = 16
	// BlockBytes is the length in bytes of an AES block.
	BlockBytes = 16
	// Rounds is the number of AES-128 rounds.
	Rounds = 10
	// RoundKeys is the number of 16-byte round keys produced by the
	// schedule (one more than Rounds, for the initial AddRoundKey).
	RoundKeys = Rounds + 1
)

// ExpandedKey holds every round key produced by KeySchedule, in order.
type ExpandedKey [RoundKeys][BlockBytes]byte

// rcon holds the round constants used by the key schedule, indexed from 1.
var rcon = [11]byte{0x00, 0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

func subWord(w [4]byte) [4]byte {
	return [4]byte{SubByte(w[0]), SubByte(w[1]), SubByte(w[2]), SubByte(w[3])}
}

func rotWord(w [4]byte) [4]byte {
	return [4]byte{w[1], w[2], w[3], w[0]}
}

func xorWord(a, b [4]byte) [4]byte {
	return [4]byte{a[0] ^ b[0], a[1] ^ b[1], a[2] ^ b[2], a[3] ^ b[3]}
}

// KeySchedule expands a 16-byte AES-128 key into the 11 round keys defined
// by FIPS-197, N=4.
func KeySchedule(key [KeyBytes]byte) ExpandedKey {
	var w [4 * RoundKeys][4]byte
	for i := 0; i < 4; i++ {
		copy(w[i][:], key[4*i:4*i+4])
	}
	for i := 4; i < 4*RoundKeys; i++ {
		temp := w[i-1]
		if i%4 == 0 {
			temp = xorWord(subWord(rotWord(temp)), [4]byte{rcon[i/4], 0, 0, 0})
		}
		w[i] = xorWord(w[i-4], temp)
	}

	var expanded ExpandedKey
	for round := 0; round < RoundKeys; round++ {
		for word := 0; word < 4; word++ {
			copy(expanded[round][4*word:4*word+4], w[4*round+word][:])
		}
	}
	return expanded
}
