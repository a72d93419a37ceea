// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package whitebox

import "github.com/AeonDave/whitebox-aes/internal/aesprims"

// Interpreter runs a Bundle against 16-byte blocks. It is the only code
// path that ever touches the tables at run time. Internal encodings only
// change table content, not control flow; mixing bijections add a second
// cascade over the mixing tables, which runs when the bundle's UsesMixing
// flag is set.
type Interpreter struct {
	// Redundant runs the core round function twice and compares results,
	// falling back to a third run only on agreement; on first-pair
	// disagreement it returns the all-zero block instead of the
	// (possibly fault-induced) mismatched result. Off by default: this
	// triples interpreter cost and exists for deployments that must
	// defend against fault-injection attacks on the table lookups.
	Redundant bool
}

// runOneRound executes one of the 9 interior rounds of the interpreter's
// fixed dataflow: shift, Tyi+xor cascade (producing the unmixed round
// output), then, when the bundle carries mixing bijections, a second
// Tyi-shaped cascade over the mixing tables that re-encodes that output.
func runOneRound(b *Bundle, round int, state aesprims.State, decrypt bool) aesprims.State {
	var shifted aesprims.State
	if !decrypt {
		shifted = aesprims.ShiftRows(state)
	} else {
		shifted = aesprims.InvShiftRows(state)
	}

	result := tyiAndCascade(&b.Tyi[round], &b.Xor[round], shifted)
	if b.UsesMixing {
		mixed := mixingAndCascade(&b.Mixing[round], &b.MixingXor[round], result)
		result = mixed
	}
	return result
}

// tyiAndCascade applies a round's 16 Tyi tables to a (shifted) state, then
// folds the 16 resulting 32-bit words back down to 16 bytes through the
// two xor cascades, column by column.
func tyiAndCascade(tyi *[16]TyiTable, xor *[xorPerRound]XorTable, in aesprims.State) aesprims.State {
	var out aesprims.State
	for col := 0; col < 4; col++ {
		var words [4]uint32
		for row := 0; row < 4; row++ {
			pos := col*4 + row
			words[row] = tyi[pos][in[pos]]
		}
		res1, res2 := firstXorCascade(xor, col*16, words)
		bytes := secondXorCascade(xor, col*8, res1, res2)
		copy(out[col*4:col*4+4], bytes[:])
	}
	return out
}

// mixingAndCascade is tyiAndCascade's counterpart over the mixing tables:
// same column-wise Tyi-shaped lookup and two-stage cascade, but reading the
// round's mixing tables and mixing xor tables instead.
func mixingAndCascade(mixing *[16]MixingTable, xor *[xorPerRound]XorTable, in aesprims.State) aesprims.State {
	var out aesprims.State
	for col := 0; col < 4; col++ {
		var words [4]uint32
		for row := 0; row < 4; row++ {
			pos := col*4 + row
			words[row] = mixing[pos][in[pos]]
		}
		res1, res2 := firstXorCascade(xor, col*16, words)
		bytes := secondXorCascade(xor, col*8, res1, res2)
		copy(out[col*4:col*4+4], bytes[:])
	}
	return out
}

func applyFinalTBoxes(b *Bundle, state aesprims.State) aesprims.State {
	var out aesprims.State
	for i, x := range state {
		out[i] = b.FinalTBoxes[i][x]
	}
	return out
}

// run executes the full 9-round interior loop plus the final shift and
// final T-box layer, for one direction, with no redundancy.
func run(b *Bundle, input aesprims.State, decrypt bool) aesprims.State {
	state := input
	for round := 0; round < numRounds; round++ {
		state = runOneRound(b, round, state, decrypt)
	}
	if !decrypt {
		state = aesprims.ShiftRows(state)
	} else {
		state = aesprims.InvShiftRows(state)
	}
	return applyFinalTBoxes(b, state)
}

// Interpret runs the bundle against one 16-byte block. decrypt must match
// the direction the bundle was generated for (GenerateDecryption bundles
// expect decrypt=true): the bundle carries no direction flag of its own,
// since its tables are only meaningful for the one direction they were
// built for.
func (it Interpreter) Interpret(b *Bundle, input aesprims.State, decrypt bool) aesprims.State {
	if !it.Redundant {
		return run(b, input, decrypt)
	}

	first := run(b, input, decrypt)
	second := run(b, input, decrypt)
	if first != second {
		return aesprims.State{}
	}
	return run(b, input, decrypt)
}
