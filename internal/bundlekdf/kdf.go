// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package bundlekdf derives per-bundle sealing keys from a user passphrase
// and a bundle-specific salt, so that two bundles generated from the same
// passphrase never share a key even when stored side by side.
package bundlekdf

import (
	"crypto/hkdf"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// domain tags which derivation this Provider is being asked for, so the
// seal key/nonce and the embed-file salt can never collide even if both are
// requested from the same label at the same counter value.
type domain byte

const (
	domainSeal domain = iota + 1
	domainEmbedSalt
)

// Provider derives keying material for sealing (and, for the
// source-embeddable format, salting) a generated bundle. It extracts an
// HKDF pseudorandom key once at construction and expands fresh material
// from it on each call, rather than re-running the full extract step every
// time.
type Provider struct {
	prk     []byte
	label   []byte
	counter uint64
}

// New constructs a Provider backed by HKDF-SHA256.
//
// masterSecret is the passphrase or seed the caller supplies at generation
// time. bundleSalt must be a stable identifier for this particular bundle
// (for example, a hash of the AES key the bundle was generated for) so
// that two different bundles sealed with the same passphrase get
// independent keys, while a fresh Provider built from the same inputs
// re-derives the same sequence of keys. label is a caller-chosen string (such as the
// output file name) folded into the derivation for extra separation.
func New(masterSecret, bundleSalt []byte, label string) *Provider {
	if len(masterSecret) == 0 {
		panic("bundlekdf: master secret is empty")
	}
	if len(bundleSalt) == 0 {
		panic("bundlekdf: bundle salt is empty")
	}
	prk, err := hkdf.Extract(sha256.New, masterSecret, bundleSalt)
	if err != nil {
		panic(fmt.Sprintf("bundlekdf: hkdf extract failed: %v", err))
	}
	return &Provider{prk: prk, label: []byte(label)}
}

// contextInfo builds the HKDF info string for the given domain at the
// Provider's current counter: a one-byte domain tag, the caller's label,
// and an 8-byte big-endian counter, so advancing the counter always moves
// every derivation to fresh, unrelated output.
func (p *Provider) contextInfo(d domain) []byte {
	info := make([]byte, 0, 1+len(p.label)+8)
	info = append(info, byte(d))
	info = append(info, p.label...)
	return binary.BigEndian.AppendUint64(info, p.counter)
}

func (p *Provider) derive(d domain, size int) []byte {
	if size <= 0 {
		panic("bundlekdf: requested material size must be positive")
	}
	material, err := hkdf.Expand(sha256.New, p.prk, string(p.contextInfo(d)), size)
	if err != nil {
		panic(fmt.Sprintf("bundlekdf: hkdf expand failed: %v", err))
	}
	p.counter++
	return material
}

// SealingKeyNonce returns a fresh 16-byte ASCON key and 16-byte nonce pair
// for sealing a bundle. Each call advances the internal counter, so
// repeated calls on the same Provider never repeat a key/nonce pair.
func (p *Provider) SealingKeyNonce() (key, nonce []byte) {
	material := p.derive(domainSeal, 32)
	key = append([]byte(nil), material[:16]...)
	nonce = append([]byte(nil), material[16:32]...)
	return key, nonce
}

// EmbedSalt returns size deterministic pseudorandom bytes from a derivation
// domain separate from SealingKeyNonce's, advancing the same counter.
// bundlefmt.EmbedSource does not consume it: the embedded variable's name
// comes from EmbedSource's varName argument.
func (p *Provider) EmbedSalt(size int) []byte {
	return p.derive(domainEmbedSalt, size)
}
