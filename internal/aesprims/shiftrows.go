// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package aesprims

// State is one AES block, addressed the way the rest of the white-box
// pipeline addresses it: State[4*c+r] is row r, column c.
type State [BlockBytes]byte

// shiftedIndex maps output position i to the input position ShiftRows reads
// from: shifted[i] = current[shiftedIndex[i]].
var shiftedIndex = [16]int{0, 5, 10, 15, 4, 9, 14, 3, 8, 13, 2, 7, 12, 1, 6, 11}

// invShiftedIndex is the corresponding map for InvShiftRows.
var invShiftedIndex = [16]int{0, 13, 10, 7, 4, 1, 14, 11, 8, 5, 2, 15, 12, 9, 6, 3}

// ShiftRows applies the AES ShiftRows permutation.
func ShiftRows(s State) State {
	var out State
	for i, src := range shiftedIndex {
		out[i] = s[src]
	}
	return out
}

// InvShiftRows applies the inverse of ShiftRows.
func InvShiftRows(s State) State {
	var out State
	for i, src := range invShiftedIndex {
		out[i] = s[src]
	}
	return out
}

// ShiftedIndex reports the input byte position that ShiftRows reads into
// output position i. The table generator uses this to fold ShiftRows into
// the T-boxes of adjacent rounds instead of applying it at run time.
func ShiftedIndex(i int) int { return shiftedIndex[i] }

// InvShiftedIndex reports the input byte position that InvShiftRows reads
// into output position i.
func InvShiftedIndex(i int) int { return invShiftedIndex[i] }
