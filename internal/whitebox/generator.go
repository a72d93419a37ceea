// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package whitebox

import (
	"io"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
	"github.com/AeonDave/whitebox-aes/internal/mixbij"
	"github.com/AeonDave/whitebox-aes/internal/pipeline"
	"github.com/AeonDave/whitebox-aes/internal/randperm"
)

// Options controls which obfuscating layers a Generator folds into the
// tables it produces. The core T-box/Tyi/xor-cascade construction is always
// present; these two are independent hardenings on top of it.
type Options struct {
	// UseMixingBijections folds a random invertible GF(2) matrix into each
	// round's Tyi output, undone only by the companion mixing tables, so
	// no single table's output is a meaningful AES intermediate value.
	UseMixingBijections bool
	// UseInternalEncoding folds a random nibble-level re-encoding into the
	// boundary between each pair of adjacent rounds, so that even with
	// mixing bijections off, a table's raw byte values carry no meaning
	// outside the context of its neighbors.
	UseInternalEncoding bool
}

// Generator builds white-box bundles for one AES-128 key.
type Generator struct {
	key aesprims.ExpandedKey
	opt Options
	rng io.Reader
}

// New builds a Generator for key, drawing randomness from rng. rng must be
// a cryptographically secure source in production — crypto/rand.Reader,
// the default everywhere a caller doesn't have a reason to override it —
// since every obfuscating layer this package builds is only as hard to
// correlate as the randomness that shaped it. Deterministic io.Readers
// (e.g. a seeded math/rand.Rand, which already implements io.Reader) exist
// solely for reproducible tests and golden fixtures.
func New(key [aesprims.KeyBytes]byte, opt Options, rng io.Reader) *Generator {
	return &Generator{key: aesprims.KeySchedule(key), opt: opt, rng: rng}
}

// buildCtx is the shared state threaded through a Generator's pipeline
// stages while a single bundle is under construction.
type buildCtx struct {
	gen     *Generator
	decrypt bool
	bundle  *Bundle

	// roundBijections8[r] holds the 16 per-position 8-bit bijections
	// generated while mixing round r, kept around so the next round (and
	// the final T-box stage) can undo the domain remapping they induce.
	roundBijections8 [numRounds][16]*mixbij.Bijection
	// roundOutEnc[r] is the independent per-wire nibble encoding applied to
	// round r's output bytes (the mixing cascade's, when mixing bijections
	// are in play; the main cascade's otherwise), undone by round r+1's
	// Tyi/T-box input.
	roundOutEnc [numRounds]*roundEncoding
}

// wordEncoding is 8 independent width-16 permutations, one per nibble of a
// 32-bit table output, most-significant nibble first (index 0 is bits
// 31..28). Drawing one of these per position/group, rather than sharing a
// pair of permutations across a whole round, is what makes adjacent wires
// in a generated bundle uncorrelated with each other.
type wordEncoding [8]*randperm.Permutation

func newWordEncoding(rng io.Reader) (wordEncoding, error) {
	var w wordEncoding
	for i := range w {
		p, err := randperm.New(16, rng)
		if err != nil {
			return wordEncoding{}, err
		}
		w[i] = p
	}
	return w, nil
}

// encodeWord re-encodes every nibble of a 32-bit table output independently.
func (w wordEncoding) encodeWord(v uint32) uint32 {
	var out uint32
	for i, p := range w {
		shift := uint(28 - 4*i)
		out |= uint32(p.Apply(nibble(v, shift))) << shift
	}
	return out
}

// decodeByte undoes the nibble encoding that a wordEncoding's slot-th byte
// (high nibble at index 2*slot, low nibble at index 2*slot+1) carries.
func (w wordEncoding) decodeByte(slot int, b byte) byte {
	hi := w[2*slot].ApplyInverse(b >> 4)
	lo := w[2*slot+1].ApplyInverse(b & 0xF)
	return hi<<4 | lo
}

// roundEncoding holds one round's complete set of independent per-wire
// nibble permutations: one wordEncoding per Tyi-table position (16), per
// first-xor-cascade pair-group (8), and per second-xor-cascade column (4) —
// 128 + 64 + 32 width-16 permutations in total, matching the granularity
// the reference table generator draws its internal encodings at.
type roundEncoding struct {
	tyi  [16]wordEncoding
	xor1 [8]wordEncoding
	xor2 [4]wordEncoding
}

func newRoundEncoding(rng io.Reader) (*roundEncoding, error) {
	re := &roundEncoding{}
	for i := range re.tyi {
		w, err := newWordEncoding(rng)
		if err != nil {
			return nil, err
		}
		re.tyi[i] = w
	}
	for i := range re.xor1 {
		w, err := newWordEncoding(rng)
		if err != nil {
			return nil, err
		}
		re.xor1[i] = w
	}
	for i := range re.xor2 {
		w, err := newWordEncoding(rng)
		if err != nil {
			return nil, err
		}
		re.xor2[i] = w
	}
	return re, nil
}

// decodeRoundOutput undoes the second-xor-cascade encoding on one output
// byte of a round, given that byte's MixColumns column and row (pos =
// col*4+row).
func decodeRoundOutput(enc *roundEncoding, pos int, b byte) byte {
	return enc.xor2[pos/4].decodeByte(pos%4, b)
}

// GenerateEncryption builds the encryption-direction Bundle.
func (g *Generator) GenerateEncryption() *Bundle {
	return g.generate(false)
}

// GenerateDecryption builds the decryption-direction Bundle.
func (g *Generator) GenerateDecryption() *Bundle {
	return g.generate(true)
}

func (g *Generator) generate(decrypt bool) *Bundle {
	ctx := &buildCtx{gen: g, decrypt: decrypt, bundle: &Bundle{UsesMixing: g.opt.UseMixingBijections}}

	p := pipeline.New[*buildCtx]()
	p.Add(pipeline.NewFuncStep("core-tyi-and-xor", stepCoreTyiAndXor))
	if g.opt.UseMixingBijections {
		p.Add(pipeline.NewFuncStep("mixing-bijections", stepMixingBijections))
	}
	if g.opt.UseInternalEncoding {
		p.Add(pipeline.NewFuncStep("internal-encoding", stepInternalEncoding))
	}
	p.Add(pipeline.NewFuncStep("final-tboxes", stepFinalTBoxes))

	if err := p.Execute(ctx); err != nil {
		// Every stage here is pure arithmetic over an already-validated key
		// schedule, plus reads from the configured rng; the only failure
		// modes pipeline.Execute can report are a step bug or the entropy
		// source failing outright, neither of which this package can
		// recover from, so both fail loudly here rather than surface as a
		// runtime error a caller might try to retry around.
		panic(err)
	}
	return ctx.bundle
}

// stepCoreTyiAndXor fills in the unmixed, unencoded Tyi tables and the
// canonical xor tables (used as both the main and the mixing xor tables
// until a later stage rewrites the mixing ones).
func stepCoreTyiAndXor(ctx *buildCtx) error {
	ek := ctx.gen.key
	b := ctx.bundle
	for r := 0; r < numRounds; r++ {
		for pos := 0; pos < 16; pos++ {
			for x := 0; x < 256; x++ {
				if !ctx.decrypt {
					b.Tyi[r][pos][x] = tyiCoreEncrypt(ek, r, pos, byte(x))
				} else {
					b.Tyi[r][pos][x] = tyiCoreDecrypt(ek, r, pos, byte(x))
				}
			}
		}
		canon := canonicalXorTable()
		for t := 0; t < xorPerRound; t++ {
			b.Xor[r][t] = canon
			b.MixingXor[r][t] = canon
		}
	}
	return nil
}

// stepFinalTBoxes fills in the outermost T-box layer, applied after the
// last interior round's shift step.
func stepFinalTBoxes(ctx *buildCtx) error {
	ek := ctx.gen.key
	b := ctx.bundle
	for pos := 0; pos < 16; pos++ {
		for x := 0; x < 256; x++ {
			if !ctx.decrypt {
				b.FinalTBoxes[pos][x] = finalTBoxEncrypt(ek, pos, byte(x))
			} else {
				b.FinalTBoxes[pos][x] = finalTBoxDecrypt(ek, pos, byte(x))
			}
		}
	}

	// Undo the last round's mixing-bijection byte remapping, if any: the
	// final T-box's domain is whatever round 8 actually emitted.
	if ctx.gen.opt.UseMixingBijections {
		last := ctx.roundBijections8[numRounds-1]
		for pos := 0; pos < 16; pos++ {
			src := shiftedSourceForDirection(ctx.decrypt, pos)
			bij := last[src]
			old := b.FinalTBoxes[pos]
			var fresh TBox
			for x := 0; x < 256; x++ {
				fresh[x] = old[byte(bij.ApplyInverse(uint32(x)))]
			}
			b.FinalTBoxes[pos] = fresh
		}
	}
	if ctx.gen.opt.UseInternalEncoding {
		enc := ctx.roundOutEnc[numRounds-1]
		old := b.FinalTBoxes
		for pos := 0; pos < 16; pos++ {
			src := shiftedSourceForDirection(ctx.decrypt, pos)
			var fresh TBox
			for x := 0; x < 256; x++ {
				fresh[x] = old[pos][decodeRoundOutput(enc, src, byte(x))]
			}
			b.FinalTBoxes[pos] = fresh
		}
	}
	return nil
}

// shiftedSourceForDirection reports the position whose round-output byte
// ends up, after the fixed shift step, at input position pos of the next
// stage — ShiftedIndex for encryption, InvShiftedIndex for decryption.
func shiftedSourceForDirection(decrypt bool, pos int) int {
	if decrypt {
		return aesprims.InvShiftedIndex(pos)
	}
	return aesprims.ShiftedIndex(pos)
}

// onehot32 places byte x into one of 4 lanes of a 32-bit word, lane chosen
// by slot (the input row within a MixColumns column): slot 0 is the
// highest byte, slot 3 the lowest, matching packColumn's lane convention.
func onehot32(slot int, x byte) uint32 {
	return uint32(x) << uint(24-8*slot)
}

// stepMixingBijections folds a fresh random GF(2) mixing bijection into
// each round's Tyi output and builds the companion mixing tables that let
// the interpreter carry the encoding across to the next round. Each
// column bijection is linear over GF(2), so it commutes with the xor
// cascade's XOR summation, and the mixing tables' inverse applied to each
// one-hot byte lane sums back to the unmixed column word.
func stepMixingBijections(ctx *buildCtx) error {
	rng := ctx.gen.rng
	b := ctx.bundle

	var prevBij8 [16]*mixbij.Bijection // identity-ish: nil means "no previous round"

	for r := 0; r < numRounds; r++ {
		var mb [4]*mixbij.Bijection
		for c := range mb {
			bij, err := mixbij.New(32, rng)
			if err != nil {
				return err
			}
			mb[c] = bij
		}

		// Undo the previous round's per-byte remapping on this round's
		// Tyi domain, then apply this round's column mixing bijection to
		// the range.
		for pos := 0; pos < 16; pos++ {
			col := pos / 4
			old := b.Tyi[r][pos]
			var fresh TyiTable
			for x := 0; x < 256; x++ {
				in := byte(x)
				if r > 0 {
					src := shiftedSourceForDirection(ctx.decrypt, pos)
					in = byte(prevBij8[src].ApplyInverse(uint32(in)))
				}
				fresh[x] = mb[col].Apply(old[in])
			}
			b.Tyi[r][pos] = fresh
		}

		var bij8 [16]*mixbij.Bijection
		for i := range bij8 {
			bij, err := mixbij.New(8, rng)
			if err != nil {
				return err
			}
			bij8[i] = bij
		}
		var concat [4]*mixbij.Bijection
		for c := 0; c < 4; c++ {
			// Reversed argument order: this exactly compensates for
			// onehot32's slot-0-is-highest-byte convention, so that
			// concat[c].Apply ends up equal to bij8[4c+slot].Apply on
			// each of its four byte lanes independently.
			concat[c] = mixbij.Concat(bij8[4*c+3], bij8[4*c+2], bij8[4*c+1], bij8[4*c])
		}

		for pos := 0; pos < 16; pos++ {
			col := pos / 4
			slot := pos % 4
			var table MixingTable
			for x := 0; x < 256; x++ {
				v := onehot32(slot, byte(x))
				v = mb[col].ApplyInverse(v)
				v = concat[col].Apply(v)
				table[x] = v
			}
			b.Mixing[r][pos] = table
		}

		ctx.roundBijections8[r] = bij8
		prevBij8 = bij8
	}
	return nil
}

// stepInternalEncoding folds an independent per-wire nibble re-encoding
// into the Tyi/xor-cascade boundary between rounds: every state position's
// Tyi output, every first-cascade pair-group's output, and every
// second-cascade column's output each gets its own width-16 permutation
// per nibble, so no two wires in the same round share a codec the way a
// single shared (hi, lo) pair would. When mixing bijections are enabled,
// the mixing cascade gets its own independent set on top, and it is the
// mixing cascade's output encoding — not the main cascade's — that carries
// forward to the next round's Tyi input, since the mixing cascade runs
// last within a round.
func stepInternalEncoding(ctx *buildCtx) error {
	rng := ctx.gen.rng
	b := ctx.bundle
	withMixing := ctx.gen.opt.UseMixingBijections

	var prevOut *roundEncoding
	for r := 0; r < numRounds; r++ {
		main, err := newRoundEncoding(rng)
		if err != nil {
			return err
		}
		encodeTyiTables(&b.Tyi[r], main, prevOut, ctx.decrypt)
		encodeXorCascade(&b.Xor[r], main)

		next := main
		if withMixing {
			mixing, err := newRoundEncoding(rng)
			if err != nil {
				return err
			}
			encodeMixingTables(&b.Mixing[r], mixing, main)
			encodeXorCascade(&b.MixingXor[r], mixing)
			next = mixing
		}

		ctx.roundOutEnc[r] = next
		prevOut = next
	}
	return nil
}

// encodeTyiTables rewrites one round's Tyi tables to decode their input
// byte with prevOut (the previous round's output-side encoding, read
// through the ShiftRows permutation), when prevOut is non-nil, and
// re-encode their 32-bit output word with enc, one independent permutation
// per position.
func encodeTyiTables(tyi *[16]TyiTable, enc, prevOut *roundEncoding, decrypt bool) {
	for pos := 0; pos < 16; pos++ {
		old := tyi[pos]
		var fresh TyiTable
		for x := 0; x < 256; x++ {
			in := byte(x)
			if prevOut != nil {
				src := shiftedSourceForDirection(decrypt, pos)
				in = decodeRoundOutput(prevOut, src, in)
			}
			fresh[x] = enc.tyi[pos].encodeWord(old[in])
		}
		tyi[pos] = fresh
	}
}

// encodeMixingTables is encodeTyiTables' counterpart for the mixing cascade:
// its input is this same round's main-cascade output, read at the same
// position with no ShiftRows indirection (the mixing tables consume the
// main cascade's output before any further shift is applied).
func encodeMixingTables(mixing *[16]MixingTable, enc, mainOut *roundEncoding) {
	for pos := 0; pos < 16; pos++ {
		old := mixing[pos]
		var fresh MixingTable
		for x := 0; x < 256; x++ {
			in := decodeRoundOutput(mainOut, pos, byte(x))
			fresh[x] = enc.tyi[pos].encodeWord(old[in])
		}
		mixing[pos] = fresh
	}
}

// encodeXorCascade rewrites one set of 96 xor tables (a round's main or
// mixing cascade) so the first 64 tables (the first cascade, 8 pair-groups
// of 8) decode their two Tyi-output operands with enc.tyi and re-encode
// with enc.xor1, and the last 32 (the second cascade, 4 columns of 8)
// decode their two first-cascade operands with enc.xor1 and re-encode with
// enc.xor2. Each table's hi and lo operands come from different positions
// or groups, so each pulls its own independent permutation rather than
// sharing one between them.
func encodeXorCascade(xor *[xorPerRound]XorTable, enc *roundEncoding) {
	for col := 0; col < 4; col++ {
		for pair := 0; pair < 2; pair++ {
			group := col*2 + pair
			pos1 := col*4 + 2*pair
			pos2 := col*4 + 2*pair + 1
			base := col*16 + pair*8
			for t := 0; t < 8; t++ {
				old := xor[base+t]
				var fresh XorTable
				for x := 0; x < 256; x++ {
					hi := enc.tyi[pos1][t].ApplyInverse(byte(x) >> 4)
					lo := enc.tyi[pos2][t].ApplyInverse(byte(x) & 0xF)
					raw := old[hi<<4|lo]
					fresh[x] = enc.xor1[group][t].Apply(raw & 0xF)
				}
				xor[base+t] = fresh
			}
		}
	}

	for col := 0; col < 4; col++ {
		base := xorSecondCascadeOffset + col*8
		g1, g2 := col*2, col*2+1
		for t := 0; t < 8; t++ {
			old := xor[base+t]
			var fresh XorTable
			for x := 0; x < 256; x++ {
				hi := enc.xor1[g1][t].ApplyInverse(byte(x) >> 4)
				lo := enc.xor1[g2][t].ApplyInverse(byte(x) & 0xF)
				raw := old[hi<<4|lo]
				fresh[x] = enc.xor2[col][t].Apply(raw & 0xF)
			}
			xor[base+t] = fresh
		}
	}
}
