// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package whitebox builds and interprets Chow/Muir-style white-box AES-128
// lookup-table bundles: a key is folded into a fixed set of byte- and
// word-indexed tables once, at generation time, so that afterward the key
// never exists as a recognizable byte string — only as the shape of the
// tables themselves.
package whitebox

import "github.com/AeonDave/whitebox-aes/internal/aesprims"

const (
	blockSize  = aesprims.BlockBytes
	numRounds  = 9   // interior rounds with a composed Tyi table (rounds 1..9 of AES-128)
	xorPerRound = 96 // ROUND_XOR_TABLES
	xorSecondCascadeOffset = 64
)

// TBox maps one input byte to one output byte.
type TBox [256]byte

// TyiTable maps one input byte to the 32-bit MixColumns-column contribution
// of that byte, with the round's T-box (AddRoundKey+SubBytes, or its
// decryption equivalent) already composed in.
type TyiTable [256]uint32

// XorTable maps a packed pair of 4-bit values (hi nibble = left operand,
// lo nibble = right operand) to their XORed result, stored in the low
// nibble of the output byte.
type XorTable [256]byte

// MixingTable re-expands one mixed-state byte back into its 32-bit
// one-hot contribution to a mixing-bijection-transformed column, the same
// shape as TyiTable but feeding the mixing cascade instead of the main one.
type MixingTable [256]uint32

// Bundle holds every precomputed table needed to run the interpreter in one
// direction (encryption or decryption) for one key.
type Bundle struct {
	UsesMixing bool

	FinalTBoxes [16]TBox
	Tyi         [numRounds][16]TyiTable
	Xor         [numRounds][xorPerRound]XorTable

	Mixing    [numRounds][16]MixingTable
	MixingXor [numRounds][xorPerRound]XorTable
}
