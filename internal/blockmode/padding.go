// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package blockmode

import (
	"errors"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
)

var (
	ErrBadPadding = errors.New("blockmode: invalid padding")
	ErrNotBlockAligned = errors.New("blockmode: NONE padding requires block-aligned input")
)

// NonePadding requires the caller's data to already be block-aligned; ECB
// and CBC reject anything else rather than silently padding it.
type NonePadding struct{}

func (NonePadding) Pad(data []byte) []byte { return data }

func (NonePadding) Unpad(data []byte) ([]byte, error) {
	if len(data)%aesprims.BlockBytes != 0 {
		return nil, ErrNotBlockAligned
	}
	return data, nil
}

// ZerosPadding pads with zero bytes up to the next block boundary, always
// adding a full block of zeros when the input is already aligned. Unpad
// strips trailing zero bytes, which makes it ambiguous with messages that
// themselves end in zero bytes — the same limitation the scheme carries
// in every implementation of it.
type ZerosPadding struct{}

func (ZerosPadding) Pad(data []byte) []byte {
	n := aesprims.BlockBytes - len(data)%aesprims.BlockBytes
	if n == 0 {
		n = aesprims.BlockBytes
	}
	return append(append([]byte{}, data...), make([]byte, n)...)
}

func (ZerosPadding) Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aesprims.BlockBytes != 0 {
		return nil, ErrNotBlockAligned
	}
	i := len(data)
	for i > 0 && data[i-1] == 0 {
		i--
	}
	return data[:i], nil
}

// PKCSPadding is PKCS#7 padding: every added byte holds the pad length,
// including a full block of 0x10 bytes when the input is already aligned.
type PKCSPadding struct{}

func (PKCSPadding) Pad(data []byte) []byte {
	n := aesprims.BlockBytes - len(data)%aesprims.BlockBytes
	padded := append(append([]byte{}, data...), make([]byte, n)...)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func (PKCSPadding) Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aesprims.BlockBytes != 0 {
		return nil, ErrNotBlockAligned
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aesprims.BlockBytes || n > len(data) {
		return nil, ErrBadPadding
	}
	for i := len(data) - n; i < len(data); i++ {
		if data[i] != byte(n) {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-n], nil
}

// OneAndZerosPadding appends a single 0x80 byte followed by zeros up to the
// next block boundary, adding a full block when already aligned.
type OneAndZerosPadding struct{}

func (OneAndZerosPadding) Pad(data []byte) []byte {
	n := aesprims.BlockBytes - len(data)%aesprims.BlockBytes
	padded := append(append([]byte{}, data...), make([]byte, n)...)
	padded[len(data)] = 0x80
	return padded
}

func (OneAndZerosPadding) Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aesprims.BlockBytes != 0 {
		return nil, ErrNotBlockAligned
	}
	i := len(data)
	for i > 0 && data[i-1] == 0 {
		i--
	}
	if i == 0 || data[i-1] != 0x80 {
		return nil, ErrBadPadding
	}
	return data[:i-1], nil
}
