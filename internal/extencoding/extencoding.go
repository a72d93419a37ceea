// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package extencoding applies external byte encodings to the boundary of a
// white-box bundle: a random width-256 permutation per state position,
// rewritten directly into the bundle's input (Tyi) or output (final T-box)
// tables so that the interpreter itself never changes.
package extencoding

import (
	"io"

	"github.com/AeonDave/whitebox-aes/internal/randperm"
	"github.com/AeonDave/whitebox-aes/internal/whitebox"
)

// Encoding holds one independent width-256 permutation per state position.
type Encoding struct {
	perms [16]*randperm.Permutation
	// FullWidth opts into rewriting all 16 positions. The reference
	// construction this is modeled on only ever rewrites positions 0..14,
	// leaving position 15 un-encoded; that is preserved as the default so
	// a bundle encoded with FullWidth=false round-trips against bundles
	// produced by that construction.
	FullWidth bool
}

// New draws 16 fresh independent permutations from rng. rng should be a
// cryptographically secure source in production (crypto/rand.Reader);
// deterministic io.Readers are only for reproducible tests.
func New(rng io.Reader) (*Encoding, error) {
	var e Encoding
	for i := range e.perms {
		p, err := randperm.New(256, rng)
		if err != nil {
			return nil, err
		}
		e.perms[i] = p
	}
	return &e, nil
}

func (e *Encoding) width() int {
	if e.FullWidth {
		return 16
	}
	return 15
}

// ApplyInput rewrites bundle's Tyi tables so that the interpreter's first
// lookup at round 0 expects E(x) instead of x: every domain entry at
// position i is moved from j to the permutation's inverse image, i.e.
// tyi[0][i][j] := tyi_old[0][i][perm_i(j)]. Position i is the i-th Tyi
// table, which reads the input byte that the round's shift step moves to i
// (input byte aesprims.ShiftedIndex(i) for an encryption bundle), not
// input byte i.
func (e *Encoding) ApplyInput(b *whitebox.Bundle) {
	for i := 0; i < e.width(); i++ {
		p := e.perms[i]
		old := b.Tyi[0][i]
		var fresh whitebox.TyiTable
		for j := 0; j < 256; j++ {
			fresh[j] = old[p.Apply(byte(j))]
		}
		b.Tyi[0][i] = fresh
	}
}

// ApplyOutput rewrites bundle's final T-boxes so that the interpreter's
// last lookup at position i produces E(x) instead of x:
// final_t_boxes[i][j] := perm_i(final_t_boxes_old[i][j]).
func (e *Encoding) ApplyOutput(b *whitebox.Bundle) {
	for i := 0; i < e.width(); i++ {
		p := e.perms[i]
		old := b.FinalTBoxes[i]
		var fresh whitebox.TBox
		for j := 0; j < 256; j++ {
			fresh[j] = p.Apply(old[j])
		}
		b.FinalTBoxes[i] = fresh
	}
}
