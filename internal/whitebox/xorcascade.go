// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package whitebox

// canonicalXorTable returns the 256-entry table that recovers a 4-bit XOR
// of two nibbles packed into one byte: table[hi<<4|lo] = hi^lo, stored in
// the low nibble of the result. Every xor table starts out as this table
// and is only rewritten away from it when internal encodings are folded in.
func canonicalXorTable() XorTable {
	var t XorTable
	for x := 0; x < 256; x++ {
		hi := byte(x) >> 4
		lo := byte(x) & 0xF
		t[x] = hi ^ lo
	}
	return t
}

func nibble(v uint32, shift uint) byte { return byte((v >> shift) & 0xF) }

// firstXorCascade is calculate_first_xor_cascade for one group of 4 Tyi
// outputs (one MixColumns column's worth): it folds them into 2 packed
// 32-bit words, nibble by nibble, through 16 xor tables starting at base.
func firstXorCascade(tables *[xorPerRound]XorTable, base int, in [4]uint32) (res1, res2 uint32) {
	i1, i2, i3, i4 := in[0], in[1], in[2], in[3]

	lookup := func(offset int, a, b byte) byte {
		return tables[base+offset][a<<4|b]
	}

	res1 = uint32(lookup(0, nibble(i1, 28), nibble(i2, 28)))<<28 |
		uint32(lookup(1, nibble(i1, 24), nibble(i2, 24)))<<24 |
		uint32(lookup(2, nibble(i1, 20), nibble(i2, 20)))<<20 |
		uint32(lookup(3, nibble(i1, 16), nibble(i2, 16)))<<16 |
		uint32(lookup(4, nibble(i1, 12), nibble(i2, 12)))<<12 |
		uint32(lookup(5, nibble(i1, 8), nibble(i2, 8)))<<8 |
		uint32(lookup(6, nibble(i1, 4), nibble(i2, 4)))<<4 |
		uint32(lookup(7, nibble(i1, 0), nibble(i2, 0)))

	res2 = uint32(lookup(8, nibble(i3, 28), nibble(i4, 28)))<<28 |
		uint32(lookup(9, nibble(i3, 24), nibble(i4, 24)))<<24 |
		uint32(lookup(10, nibble(i3, 20), nibble(i4, 20)))<<20 |
		uint32(lookup(11, nibble(i3, 16), nibble(i4, 16)))<<16 |
		uint32(lookup(12, nibble(i3, 12), nibble(i4, 12)))<<12 |
		uint32(lookup(13, nibble(i3, 8), nibble(i4, 8)))<<8 |
		uint32(lookup(14, nibble(i3, 4), nibble(i4, 4)))<<4 |
		uint32(lookup(15, nibble(i3, 0), nibble(i4, 0)))

	return res1, res2
}

// secondXorCascade is calculate_second_xor_cascade for one group of 2
// packed words from firstXorCascade: it folds them back down into 4 output
// state bytes, reading 8 xor tables starting at xorSecondCascadeOffset+base.
func secondXorCascade(tables *[xorPerRound]XorTable, base int, left, right uint32) [4]byte {
	lookup := func(offset int, a, b byte) byte {
		return tables[xorSecondCascadeOffset+base+offset][a<<4|b]
	}

	b8 := lookup(0, nibble(left, 28), nibble(right, 28))
	b7 := lookup(1, nibble(left, 24), nibble(right, 24))
	b6 := lookup(2, nibble(left, 20), nibble(right, 20))
	b5 := lookup(3, nibble(left, 16), nibble(right, 16))
	b4 := lookup(4, nibble(left, 12), nibble(right, 12))
	b3 := lookup(5, nibble(left, 8), nibble(right, 8))
	b2 := lookup(6, nibble(left, 4), nibble(right, 4))
	b1 := lookup(7, nibble(left, 0), nibble(right, 0))

	return [4]byte{b8<<4 | b7, b6<<4 | b5, b4<<4 | b3, b2<<4 | b1}
}
