// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package hexcode parses the hex-encoded key and state strings accepted by
// the white-box command line: spaces are stripped, short strings are
// zero-left-padded to a full 16-byte block, and anything left over that
// isn't a hex digit is rejected.
package hexcode

import (
	"fmt"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
)

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

const nibblesPerBlock = aesprims.BlockBytes * 2

// ParseState decodes s into a 16-byte state: spaces are stripped, the
// remaining nibbles are left-zero-padded to 32 if shorter, and the result
// is rejected if more than 32 hex nibbles remain or if any non-hex
// character survives stripping. An empty string decodes to the all-zero
// state.
func ParseState(s string) (aesprims.State, error) {
	stripped := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isSpaceByte(s[i]) {
			continue
		}
		stripped = append(stripped, s[i])
	}

	if len(stripped) > nibblesPerBlock {
		return aesprims.State{}, fmt.Errorf("hexcode: input has %d hex digits, want at most %d", len(stripped), nibblesPerBlock)
	}

	padded := make([]byte, nibblesPerBlock)
	pad := nibblesPerBlock - len(stripped)
	for i := 0; i < pad; i++ {
		padded[i] = '0'
	}
	copy(padded[pad:], stripped)

	var out aesprims.State
	for i := 0; i < aesprims.BlockBytes; i++ {
		hi, lo := padded[i*2], padded[i*2+1]
		if !isHexByte(hi) || !isHexByte(lo) {
			return aesprims.State{}, fmt.Errorf("hexcode: invalid hex digit at nibble %d", i*2)
		}
		out[i] = hexValue(hi)<<4 | hexValue(lo)
	}
	return out, nil
}

// FormatState renders s as a 32-character lowercase hex string, the
// canonical form ParseState and FormatState round-trip on.
func FormatState(s aesprims.State) string {
	const hex = "0123456789abcdef"
	buf := make([]byte, nibblesPerBlock)
	for i, b := range s {
		buf[i*2] = hex[b>>4]
		buf[i*2+1] = hex[b&0xf]
	}
	return string(buf)
}

// ParseKey decodes a 16-byte AES key with the same rules as ParseState.
func ParseKey(s string) ([aesprims.KeyBytes]byte, error) {
	st, err := ParseState(s)
	if err != nil {
		return [aesprims.KeyBytes]byte{}, err
	}
	var key [aesprims.KeyBytes]byte
	copy(key[:], st[:])
	return key, nil
}
