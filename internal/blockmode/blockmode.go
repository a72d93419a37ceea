// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package blockmode drives a white-box bundle through standard block
// cipher modes (ECB, CBC, CTR) and paddings, the way the reference
// construction's CryptoPP adapter drives a BlockCipher: one block at a
// time, xored against a caller-supplied chain value where the mode calls
// for it.
package blockmode

import (
	"errors"
	"fmt"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
	"github.com/AeonDave/whitebox-aes/internal/whitebox"
)

// BlockCipher processes one 16-byte block, optionally XORing the result
// against xorBlock first — the same shape as the reference adapter's
// ProcessAndXorBlock(in, xor, out), which lets CBC/CTR chaining reuse the
// single-block entry point without a separate XOR pass.
type BlockCipher interface {
	ProcessAndXorBlock(in, xorBlock aesprims.State) aesprims.State
}

// Cipher adapts a whitebox.Bundle into a BlockCipher. Setting a key is a
// no-op for white-box ciphers: the key only ever existed at generation
// time and is already baked into the bundle's tables.
type Cipher struct {
	Bundle    *whitebox.Bundle
	Decrypt   bool
	Interp    whitebox.Interpreter
}

// ProcessAndXorBlock implements BlockCipher.
func (c Cipher) ProcessAndXorBlock(in, xorBlock aesprims.State) aesprims.State {
	out := c.Interp.Interpret(c.Bundle, in, c.Decrypt)
	for i := range out {
		out[i] ^= xorBlock[i]
	}
	return out
}

// Padding rewrites a message's length to a multiple of the block size
// before encryption, and strips the padding back off after decryption.
type Padding interface {
	Pad(data []byte) []byte
	Unpad(data []byte) ([]byte, error)
}

// Mode identifies a block cipher mode of operation.
type Mode int

const (
	ECB Mode = iota
	CBC
	CTR
)

var ErrIVRequired = errors.New("blockmode: this mode requires an IV")
var ErrCTRPaddingUnsupported = errors.New("blockmode: CTR only supports NONE padding")
var ErrShortCiphertext = errors.New("blockmode: ciphertext is not a whole number of blocks")

// Encrypt pads (for ECB/CBC) or streams (for CTR) plaintext through cipher
// in the given mode. iv is required for CBC and CTR and ignored for ECB.
func Encrypt(mode Mode, cipher BlockCipher, padding Padding, iv aesprims.State, plaintext []byte) ([]byte, error) {
	switch mode {
	case ECB:
		return processBlocks(cipher, padding, aesprims.State{}, plaintext, false)
	case CBC:
		return processBlocks(cipher, padding, iv, plaintext, true)
	case CTR:
		if padding != nil {
			return nil, ErrCTRPaddingUnsupported
		}
		return ctrStream(cipher, iv, plaintext), nil
	default:
		return nil, fmt.Errorf("blockmode: unknown mode %d", mode)
	}
}

// Decrypt reverses Encrypt. For CTR, cipher must still be the
// encryption-direction BlockCipher: CTR only ever runs the cipher forward
// to generate keystream, on both the encrypt and decrypt paths, which the
// reference construction accomplishes by always passing encrypt=true to
// the interpreter for this mode.
func Decrypt(mode Mode, cipher BlockCipher, padding Padding, iv aesprims.State, data []byte) ([]byte, error) {
	switch mode {
	case ECB:
		return processBlocksDecrypt(cipher, padding, aesprims.State{}, data, false)
	case CBC:
		return processBlocksDecrypt(cipher, padding, iv, data, true)
	case CTR:
		if padding != nil {
			return nil, ErrCTRPaddingUnsupported
		}
		return ctrStream(cipher, iv, data), nil
	default:
		return nil, fmt.Errorf("blockmode: unknown mode %d", mode)
	}
}

func processBlocks(cipher BlockCipher, padding Padding, chain aesprims.State, plaintext []byte, chaining bool) ([]byte, error) {
	if padding == nil {
		padding = NonePadding{}
	}
	padded := padding.Pad(plaintext)
	if len(padded)%aesprims.BlockBytes != 0 {
		return nil, ErrShortCiphertext
	}

	out := make([]byte, 0, len(padded))
	prev := chain
	for off := 0; off < len(padded); off += aesprims.BlockBytes {
		var block aesprims.State
		copy(block[:], padded[off:off+aesprims.BlockBytes])
		for i := range block {
			block[i] ^= prev[i]
		}
		ct := cipher.ProcessAndXorBlock(block, aesprims.State{})
		out = append(out, ct[:]...)
		if chaining {
			prev = ct
		}
	}
	return out, nil
}

func processBlocksDecrypt(cipher BlockCipher, padding Padding, chain aesprims.State, data []byte, chaining bool) ([]byte, error) {
	if len(data)%aesprims.BlockBytes != 0 {
		return nil, ErrShortCiphertext
	}
	out := make([]byte, 0, len(data))
	prev := chain
	for off := 0; off < len(data); off += aesprims.BlockBytes {
		var block aesprims.State
		copy(block[:], data[off:off+aesprims.BlockBytes])
		pt := cipher.ProcessAndXorBlock(block, prev)
		out = append(out, pt[:]...)
		if chaining {
			prev = block
		}
	}
	if padding == nil {
		return out, nil
	}
	return padding.Unpad(out)
}

// ctrStream XORs data against the keystream produced by encrypting
// successive counter values starting at iv.
func ctrStream(cipher BlockCipher, iv aesprims.State, data []byte) []byte {
	out := make([]byte, len(data))
	counter := iv
	for off := 0; off < len(data); off += aesprims.BlockBytes {
		ks := cipher.ProcessAndXorBlock(counter, aesprims.State{})
		n := copy(out[off:], data[off:min(off+aesprims.BlockBytes, len(data))])
		for i := 0; i < n; i++ {
			out[off+i] ^= ks[i]
		}
		incrementCounter(&counter)
	}
	return out
}

func incrementCounter(s *aesprims.State) {
	for i := len(s) - 1; i >= 0; i-- {
		s[i]++
		if s[i] != 0 {
			return
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
