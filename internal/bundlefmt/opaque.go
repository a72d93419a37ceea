// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package bundlefmt persists a generated white-box bundle to disk, either
// as an opaque encrypted blob meant only for this tool to read back, or as
// a Go source file with the bundle's tables inlined as literals so the
// bundle can be linked straight into a caller's program without shipping
// a generator at all.
package bundlefmt

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/AeonDave/whitebox-aes/internal/asconaead"
	"github.com/AeonDave/whitebox-aes/internal/whitebox"
	runtimecrypto "github.com/AeonDave/whitebox-aes/internal/runtime_crypto"
)

// Cipher selects which AEAD construction seals an opaque bundle file.
type Cipher int

const (
	CipherASCON Cipher = iota
	CipherChaCha20Poly1305
)

// SealOpaque serializes bundle with gob and seals it under key (and, for
// ChaCha20-Poly1305, nonce) so the file on disk reveals nothing about the
// tables it carries without that key.
//
// For CipherASCON, key must be 16 bytes and nonce 16 bytes. For
// CipherChaCha20Poly1305, key must be 32 bytes and the first 12 bytes of
// nonce are used, zero-filled if nonce is shorter. Either way the nonce is
// written after the one-byte cipher tag, ahead of the sealed payload.
func SealOpaque(cipher Cipher, bundle *whitebox.Bundle, key, nonce []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(bundle); err != nil {
		return nil, fmt.Errorf("bundlefmt: serialize bundle: %w", err)
	}

	switch cipher {
	case CipherASCON:
		if len(nonce) != asconaead.NonceSize {
			return nil, fmt.Errorf("bundlefmt: ascon requires a %d-byte nonce", asconaead.NonceSize)
		}
		aead, err := asconaead.New(key)
		if err != nil {
			return nil, fmt.Errorf("bundlefmt: %w", err)
		}
		sealed := aead.Seal(nil, nonce, buf.Bytes())
		out := make([]byte, 1+len(nonce)+len(sealed))
		out[0] = byte(CipherASCON)
		copy(out[1:], nonce)
		copy(out[1+len(nonce):], sealed)
		return out, nil

	case CipherChaCha20Poly1305:
		aead, err := runtimecrypto.NewAEAD(key)
		if err != nil {
			return nil, fmt.Errorf("bundlefmt: %w", err)
		}
		fresh := make([]byte, aead.NonceSize())
		copy(fresh, nonce) // caller-supplied randomness, or zero if none given
		sealed := aead.Seal(nil, fresh, buf.Bytes(), nil)
		out := make([]byte, 1+len(fresh)+len(sealed))
		out[0] = byte(CipherChaCha20Poly1305)
		copy(out[1:], fresh)
		copy(out[1+len(fresh):], sealed)
		return out, nil

	default:
		return nil, fmt.Errorf("bundlefmt: unknown cipher %d", cipher)
	}
}

// OpenOpaque reverses SealOpaque, reading the cipher tag this package
// wrote as the file's first byte so callers don't need to remember which
// cipher a given file used.
func OpenOpaque(data []byte, key []byte) (*whitebox.Bundle, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("bundlefmt: empty opaque bundle")
	}
	cipher := Cipher(data[0])
	body := data[1:]

	var plaintext []byte
	switch cipher {
	case CipherASCON:
		if len(body) < asconaead.NonceSize {
			return nil, fmt.Errorf("bundlefmt: opaque bundle too short")
		}
		nonce := body[:asconaead.NonceSize]
		sealed := body[asconaead.NonceSize:]
		aead, err := asconaead.New(key)
		if err != nil {
			return nil, fmt.Errorf("bundlefmt: %w", err)
		}
		pt, ok := aead.Open(nil, nonce, sealed)
		if !ok {
			return nil, fmt.Errorf("bundlefmt: ascon authentication failed (wrong key or corrupted file)")
		}
		plaintext = pt

	case CipherChaCha20Poly1305:
		aead, err := runtimecrypto.NewAEAD(key)
		if err != nil {
			return nil, fmt.Errorf("bundlefmt: %w", err)
		}
		if len(body) < aead.NonceSize() {
			return nil, fmt.Errorf("bundlefmt: opaque bundle too short")
		}
		nonce := body[:aead.NonceSize()]
		sealed := body[aead.NonceSize():]
		pt, err := aead.Open(nil, nonce, sealed, nil)
		if err != nil {
			return nil, fmt.Errorf("bundlefmt: chacha20poly1305 authentication failed: %w", err)
		}
		plaintext = pt

	default:
		return nil, fmt.Errorf("bundlefmt: unknown cipher tag %d", cipher)
	}

	var bundle whitebox.Bundle
	if err := gob.NewDecoder(bytes.NewReader(plaintext)).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("bundlefmt: deserialize bundle: %w", err)
	}
	return &bundle, nil
}
