// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package randperm builds random bijections over a fixed-width domain using
// Fisher-Yates shuffling. The table generator uses these for byte-level
// S-box-style encodings (width 256) and nibble-level encodings (width 16).
// Every draw comes from an io.Reader that callers are expected to back with
// a cryptographically secure source (crypto/rand.Reader in production); the
// tables this package builds are only as hard to correlate as the
// randomness that shuffled them.
package randperm

import (
	"fmt"
	"io"
)

// Permutation is a bijection over [0, Width) built by shuffling the
// identity permutation. Output and its inverse are both precomputed so
// callers never pay for an inverse lookup at apply time.
type Permutation struct {
	width   int
	output  []byte
	inverse []byte
}

// New builds a random permutation over [0, width), drawing swap indices from
// rng via unbiased rejection sampling. rng must be a cryptographically
// secure source in production; deterministic io.Readers are only for
// reproducible tests and golden fixtures.
//
// The shuffle runs width-1 steps, each drawing its swap partner from the
// full range [0, width) rather than the usual shrinking [c, width) range a
// textbook Fisher-Yates uses. That range choice is a deliberate deviation
// carried over from the reference construction this package is modeled on:
// every result is still a valid permutation (each step is an unconditional
// transposition with a uniformly random partner), but the distribution
// over permutations is not uniform, since the width^(width-1) equally
// likely swap sequences cannot spread evenly over the width! possible
// permutations. Rewriting it to the textbook range
// would silently change every derived table's values, so it is preserved
// rather than "fixed".
func New(width int, rng io.Reader) (*Permutation, error) {
	if width <= 0 {
		panic("randperm: width must be positive")
	}
	out := make([]byte, width)
	for i := range out {
		out[i] = byte(i)
	}
	for c := 0; c < width-1; c++ {
		j, err := randIntn(rng, width)
		if err != nil {
			return nil, fmt.Errorf("randperm: %w", err)
		}
		out[c], out[j] = out[j], out[c]
	}

	inv := make([]byte, width)
	for i, v := range out {
		inv[v] = byte(i)
	}

	return &Permutation{width: width, output: out, inverse: inv}, nil
}

// randIntn draws an unbiased value in [0, n) from rng by rejection sampling
// single bytes: draws at or past the largest multiple of n not exceeding
// 256 are discarded so every output in range stays equiprobable, instead of
// reducing a draw with modulo and reintroducing bias.
func randIntn(rng io.Reader, n int) (int, error) {
	if n <= 0 || n > 256 {
		panic("randperm: randIntn width out of range")
	}
	limit := 256 - 256%n // multiple of n in (0, 256]
	var b [1]byte
	for {
		if _, err := io.ReadFull(rng, b[:]); err != nil {
			return 0, err
		}
		if int(b[0]) < limit {
			return int(b[0]) % n, nil
		}
	}
}

// FromTable builds a Permutation from an already-generated forward table,
// deriving its inverse. Used when loading a persisted bundle.
func FromTable(forward []byte) *Permutation {
	width := len(forward)
	out := make([]byte, width)
	copy(out, forward)
	inv := make([]byte, width)
	for i, v := range out {
		inv[v] = byte(i)
	}
	return &Permutation{width: width, output: out, inverse: inv}
}

// Width reports the domain size this permutation operates over.
func (p *Permutation) Width() int { return p.width }

// Apply maps x to its permuted value.
func (p *Permutation) Apply(x byte) byte { return p.output[x] }

// ApplyInverse maps x back through the inverse permutation.
func (p *Permutation) ApplyInverse(x byte) byte { return p.inverse[x] }

// Table returns the forward permutation table, suitable for persistence.
func (p *Permutation) Table() []byte {
	cpy := make([]byte, len(p.output))
	copy(cpy, p.output)
	return cpy
}

// InverseTable returns the inverse permutation table.
func (p *Permutation) InverseTable() []byte {
	cpy := make([]byte, len(p.inverse))
	copy(cpy, p.inverse)
	return cpy
}
