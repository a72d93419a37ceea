// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package whitebox

import "github.com/AeonDave/whitebox-aes/internal/aesprims"

// mixColRow gives the four coefficients (applied to output rows 0..3) that
// input row j contributes through AES MixColumns.
var mixColRow = [4][4]byte{
	{2, 1, 1, 3},
	{3, 2, 1, 1},
	{1, 3, 2, 1},
	{1, 1, 3, 2},
}

// invMixColRow is the same table for InvMixColumns: row 0 is (14, 9, 13, 11)
// and each following row is that tuple rotated right by one.
var invMixColRow = [4][4]byte{
	{14, 9, 13, 11},
	{11, 14, 9, 13},
	{13, 11, 14, 9},
	{9, 13, 11, 14},
}

// packColumn folds a T-box output byte through one row of a MixColumns-style
// coefficient matrix and packs the four products into a 32-bit word, with
// output row 0 in the highest byte lane and row 3 in the lowest. This lane
// convention must match onehot32's placement exactly, since the mixing
// tables split a Tyi-derived column word back into those same lanes when
// mixing bijections are in play.
func packColumn(coeffs [4]byte, s byte) uint32 {
	var w uint32
	for outRow, c := range coeffs {
		w |= uint32(aesprims.GMul(c, s)) << uint(24-8*outRow)
	}
	return w
}

// tboxCoreEncrypt computes the composed T-box byte for interior round r
// (0..8) and state position pos, AES-128 encryption direction. ShiftRows is
// folded into the round key rather than applied to the state: position pos
// reads round key byte shiftedIndex[pos], matching how the reference
// generator precomputes shift_rows(round_key) once per round.
func tboxCoreEncrypt(ek aesprims.ExpandedKey, r, pos int, x byte) byte {
	return aesprims.SubByte(x ^ ek[r][aesprims.ShiftedIndex(pos)])
}

// finalTBoxEncrypt computes the last round's composed T-box, which folds in
// both the penultimate round key (pre-SubBytes, shifted) and the final
// whitening round key (post-SubBytes, unshifted since no ShiftRows follows
// it).
func finalTBoxEncrypt(ek aesprims.ExpandedKey, pos int, x byte) byte {
	return aesprims.SubByte(x^ek[9][aesprims.ShiftedIndex(pos)]) ^ ek[10][pos]
}

// tyiCoreEncrypt computes the raw (unmixed, unencoded) Tyi table entry for
// interior round r and state position pos.
func tyiCoreEncrypt(ek aesprims.ExpandedKey, r, pos int, x byte) uint32 {
	s := tboxCoreEncrypt(ek, r, pos, x)
	return packColumn(mixColRow[pos%4], s)
}

// tboxCoreDecrypt computes the composed decryption T-box byte for interior
// round r (0..8) and state position pos.
//
// Round 0 is special: the interpreter's decryption dataflow never performs
// a standalone AddRoundKey for the initial ciphertext whitening, so this
// table folds it in via an InvShiftRows-shifted copy of the last round key,
// then adds back the penultimate round key that a plain AES decrypt would
// apply at this point. Rounds 1..8 only need the InvSubBytes output XORed
// with the corresponding round key, since by then InvShiftRows has already
// repositioned the byte and no further shift is needed.
func tboxCoreDecrypt(ek aesprims.ExpandedKey, r, pos int, x byte) byte {
	if r == 0 {
		return aesprims.InvSubByte(x^ek[10][aesprims.InvShiftedIndex(pos)]) ^ ek[9][pos]
	}
	return aesprims.InvSubByte(x) ^ ek[9-r][pos]
}

// finalTBoxDecrypt computes the outermost decryption T-box (applied after
// the last interior round), which only needs InvSubBytes plus the very
// first round key.
func finalTBoxDecrypt(ek aesprims.ExpandedKey, pos int, x byte) byte {
	return aesprims.InvSubByte(x) ^ ek[0][pos]
}

// tyiCoreDecrypt computes the raw (unmixed, unencoded) decryption Tyi table
// entry for interior round r and state position pos.
func tyiCoreDecrypt(ek aesprims.ExpandedKey, r, pos int, x byte) uint32 {
	s := tboxCoreDecrypt(ek, r, pos, x)
	return packColumn(invMixColRow[pos%4], s)
}
