// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Command whitebox builds, inspects, and drives white-box AES-128 bundles
// from the shell: generate encryption/decryption tables for a key, apply
// external encodings, and stream data through ECB/CBC/CTR.
package main

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
	"github.com/AeonDave/whitebox-aes/internal/blockmode"
	"github.com/AeonDave/whitebox-aes/internal/bundlefmt"
	"github.com/AeonDave/whitebox-aes/internal/bundlekdf"
	"github.com/AeonDave/whitebox-aes/internal/extencoding"
	"github.com/AeonDave/whitebox-aes/internal/hexcode"
	"github.com/AeonDave/whitebox-aes/internal/whitebox"
)

// exitCode distinguishes the failure classes spec §6/§7 name: argument and
// configuration errors, parse errors, and I/O errors all get their own
// os.Exit status instead of collapsing into a single "nonzero".
type exitCode int

const (
	exitArg   exitCode = 1
	exitParse exitCode = 2
	exitIO    exitCode = 3
)

// cliError pairs a returned error with the exit code its class maps to.
type cliError struct {
	code exitCode
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func argErrf(format string, a ...any) error {
	return &cliError{code: exitArg, err: fmt.Errorf(format, a...)}
}

func parseErrf(format string, a ...any) error {
	return &cliError{code: exitParse, err: fmt.Errorf(format, a...)}
}

func ioErrf(format string, a ...any) error {
	return &cliError{code: exitIO, err: fmt.Errorf(format, a...)}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		newLogger(false).Error(err.Error())
		var ce *cliError
		if errors.As(err, &ce) {
			os.Exit(int(ce.code))
		}
		os.Exit(int(exitArg))
	}
}

// newLogger builds the CLI's only logging surface; core packages stay
// silent libraries and never log.
func newLogger(jsonOutput bool) *slog.Logger {
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return slog.New(handler)
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return argErrf("missing command")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "help", "-h", "-help", "--help":
		printUsage()
		return nil
	case "gen":
		return runGen(rest)
	case "load":
		return runLoad(rest)
	case "encode":
		return runEncode(rest)
	case "encrypt":
		return runCrypt(rest, false)
	case "decrypt":
		return runCrypt(rest, true)
	default:
		printUsage()
		return argErrf("unknown command %q", cmd)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  whitebox gen     -key HEX -passphrase STR -out FILE [-decrypt] [-mixing] [-internal-encoding] [-embed-package NAME]
  whitebox load    -table FILE -passphrase STR
  whitebox encode  -in FILE -out FILE -passphrase STR [-input | -output] [-full-width]
  whitebox encrypt -in FILE -out FILE -table FILE -passphrase STR -mode {ECB,CBC,CTR} [-padding {NONE,ZEROS,PKCS,ONE_AND_ZEROS}] [-iv HEX]
  whitebox decrypt -in FILE -out FILE -table FILE -passphrase STR -mode {ECB,CBC,CTR} [-padding {NONE,ZEROS,PKCS,ONE_AND_ZEROS}] [-iv HEX]
All subcommands accept -json to switch diagnostic logging to structured JSON.`)
}

// runGen creates encryption or decryption tables for a key and writes the
// sealed bundle to -out, or, if -embed-package is set, a Go source file
// declaring the bundle as a literal.
func runGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	key := fs.String("key", "", "AES-128 key, hex")
	passphrase := fs.String("passphrase", "", "passphrase sealing the bundle file")
	out := fs.String("out", "", "output file")
	decrypt := fs.Bool("decrypt", false, "generate a decryption bundle instead of encryption")
	mixing := fs.Bool("mixing", false, "use mixing bijections")
	internalEnc := fs.Bool("internal-encoding", false, "use internal nibble encoding")
	embedPackage := fs.String("embed-package", "", "if set, write a Go source file in this package instead of an opaque bundle")
	embedVar := fs.String("embed-var", "Bundle", "variable name for -embed-package")
	embedImport := fs.String("embed-import", "github.com/AeonDave/whitebox-aes/internal/whitebox", "import path for the whitebox package in the embedded source")
	jsonLog := fs.Bool("json", false, "emit structured JSON diagnostics")
	if err := fs.Parse(args); err != nil {
		return argErrf("gen: %w", err)
	}
	logger := newLogger(*jsonLog)
	if *key == "" {
		return argErrf("gen: -key is required")
	}
	if *out == "" {
		return argErrf("gen: -out is required")
	}
	if *embedPackage == "" && *passphrase == "" {
		return argErrf("gen: -passphrase is required unless -embed-package is set")
	}

	keyBytes, err := hexcode.ParseKey(*key)
	if err != nil {
		return parseErrf("gen: %w", err)
	}

	gen := whitebox.New(keyBytes, whitebox.Options{
		UseMixingBijections: *mixing,
		UseInternalEncoding: *internalEnc,
	}, rand.Reader)

	var bundle *whitebox.Bundle
	if *decrypt {
		bundle = gen.GenerateDecryption()
	} else {
		bundle = gen.GenerateEncryption()
	}
	logger.Info("generated bundle", "decrypt", *decrypt, "mixing", *mixing, "internal_encoding", *internalEnc)

	if *embedPackage != "" {
		src, err := bundlefmt.EmbedSource(bundle, *embedPackage, *embedVar, *embedImport)
		if err != nil {
			return argErrf("gen: %w", err)
		}
		if err := os.WriteFile(*out, src, 0o644); err != nil {
			return ioErrf("gen: write embedded source: %w", err)
		}
		return nil
	}

	kdf := bundlekdf.New([]byte(*passphrase), []byte(*out), *out)
	sealKey, nonce := kdf.SealingKeyNonce()
	sealed, err := bundlefmt.SealOpaque(bundlefmt.CipherASCON, bundle, sealKey, nonce)
	if err != nil {
		return ioErrf("gen: seal bundle: %w", err)
	}
	if err := os.WriteFile(*out, sealed, 0o600); err != nil {
		return ioErrf("gen: write bundle: %w", err)
	}
	return nil
}

// runLoad verifies a sealed bundle file opens under the given passphrase,
// without otherwise acting on it — useful for scripts that want to fail
// fast before committing to an encrypt/decrypt/encode pipeline.
func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	table := fs.String("table", "", "bundle file to load")
	passphrase := fs.String("passphrase", "", "passphrase the bundle was sealed with")
	jsonLog := fs.Bool("json", false, "emit structured JSON diagnostics")
	if err := fs.Parse(args); err != nil {
		return argErrf("load: %w", err)
	}
	logger := newLogger(*jsonLog)
	if *table == "" || *passphrase == "" {
		return argErrf("load: -table and -passphrase are both required")
	}

	bundle, _, err := loadBundle(*table, *passphrase, *table)
	if err != nil {
		return ioErrf("load: %w", err)
	}
	logger.Info("bundle loaded", "table", *table, "uses_mixing", bundle.UsesMixing)
	return nil
}

// runEncode applies an external input or output encoding to a previously
// generated bundle.
func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	in := fs.String("in", "", "bundle file to load")
	out := fs.String("out", "", "bundle file to write")
	passphrase := fs.String("passphrase", "", "passphrase the bundle was sealed with")
	input := fs.Bool("input", false, "apply the external encoding to the bundle's input boundary")
	output := fs.Bool("output", false, "apply the external encoding to the bundle's output boundary")
	fullWidth := fs.Bool("full-width", false, "encode all 16 state positions instead of the first 15")
	jsonLog := fs.Bool("json", false, "emit structured JSON diagnostics")
	if err := fs.Parse(args); err != nil {
		return argErrf("encode: %w", err)
	}
	logger := newLogger(*jsonLog)
	if *in == "" || *out == "" || *passphrase == "" {
		return argErrf("encode: -in, -out, and -passphrase are all required")
	}
	if *input == *output {
		return argErrf("encode: exactly one of -input or -output must be set")
	}

	bundle, _, err := loadBundle(*in, *passphrase, *in)
	if err != nil {
		return ioErrf("encode: %w", err)
	}

	enc, err := extencoding.New(rand.Reader)
	if err != nil {
		return ioErrf("encode: draw external encoding: %w", err)
	}
	enc.FullWidth = *fullWidth
	if *input {
		enc.ApplyInput(bundle)
	} else {
		enc.ApplyOutput(bundle)
	}
	logger.Info("applied external encoding", "boundary", encodingBoundary(*input), "full_width", *fullWidth)

	kdf := bundlekdf.New([]byte(*passphrase), []byte(*out), *out)
	newKey, nonce := kdf.SealingKeyNonce()
	sealed, err := bundlefmt.SealOpaque(bundlefmt.CipherASCON, bundle, newKey, nonce)
	if err != nil {
		return ioErrf("encode: seal bundle: %w", err)
	}
	if err := os.WriteFile(*out, sealed, 0o600); err != nil {
		return ioErrf("encode: write bundle: %w", err)
	}
	return nil
}

func encodingBoundary(input bool) string {
	if input {
		return "input"
	}
	return "output"
}

// runCrypt streams -in through the mode-wrapped bundle, writing the result
// to -out.
func runCrypt(args []string, decrypt bool) error {
	fs := flag.NewFlagSet("crypt", flag.ContinueOnError)
	in := fs.String("in", "", "input file")
	out := fs.String("out", "", "output file")
	table := fs.String("table", "", "bundle file to load")
	passphrase := fs.String("passphrase", "", "passphrase the bundle was sealed with")
	modeFlag := fs.String("mode", "CBC", "block cipher mode: ECB, CBC, or CTR")
	paddingFlag := fs.String("padding", "PKCS", "padding: NONE, ZEROS, PKCS, or ONE_AND_ZEROS")
	ivFlag := fs.String("iv", "", "initialization vector, hex (required for CBC/CTR)")
	jsonLog := fs.Bool("json", false, "emit structured JSON diagnostics")
	if err := fs.Parse(args); err != nil {
		return argErrf("crypt: %w", err)
	}
	logger := newLogger(*jsonLog)
	if *in == "" || *out == "" || *table == "" || *passphrase == "" {
		return argErrf("crypt: -in, -out, -table, and -passphrase are all required")
	}

	mode, err := parseMode(*modeFlag)
	if err != nil {
		return argErrf("crypt: %w", err)
	}
	padding, err := parsePadding(*paddingFlag)
	if err != nil {
		return argErrf("crypt: %w", err)
	}
	if mode == blockmode.CTR && padding != nil {
		return argErrf("crypt: CTR only supports -padding NONE")
	}
	if mode != blockmode.ECB && *ivFlag == "" {
		return argErrf("crypt: -iv is required for CBC and CTR")
	}

	var iv aesprims.State
	if *ivFlag != "" {
		iv, err = hexcode.ParseState(*ivFlag)
		if err != nil {
			return parseErrf("crypt: %w", err)
		}
	}

	bundle, _, err := loadBundle(*table, *passphrase, *table)
	if err != nil {
		return ioErrf("crypt: %w", err)
	}
	// CTR only ever drives the bundle in the encrypt direction to produce
	// keystream, on both the encrypt and decrypt paths; -table must hold an
	// encryption bundle for CTR regardless of which subcommand is used.
	cipherDecrypt := decrypt && mode != blockmode.CTR
	// Bundles built with mixing bijections run under the redundant
	// interpreter; plain bundles run it once.
	cipher := blockmode.Cipher{Bundle: bundle, Decrypt: cipherDecrypt, Interp: whitebox.Interpreter{Redundant: bundle.UsesMixing}}

	data, err := os.ReadFile(*in)
	if err != nil {
		return ioErrf("crypt: read input: %w", err)
	}

	var result []byte
	if decrypt {
		result, err = blockmode.Decrypt(mode, cipher, padding, iv, data)
	} else {
		result, err = blockmode.Encrypt(mode, cipher, padding, iv, data)
	}
	if err != nil {
		return argErrf("crypt: %w", err)
	}

	if err := os.WriteFile(*out, result, 0o644); err != nil {
		return ioErrf("crypt: write output: %w", err)
	}
	logger.Info("streamed bundle", "decrypt", decrypt, "mode", *modeFlag, "bytes_in", len(data), "bytes_out", len(result))
	return nil
}

func loadBundle(path, passphrase, label string) (bundle *whitebox.Bundle, sealKey []byte, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read bundle: %w", err)
	}
	// The bundle's own salt isn't recoverable from the sealed file alone in
	// this CLI, so re-derive it the same way runGen did: the label is the
	// file path the bundle was written to.
	kdf := bundlekdf.New([]byte(passphrase), []byte(label), label)
	key, _ := kdf.SealingKeyNonce()
	bundle, err = bundlefmt.OpenOpaque(data, key)
	if err != nil {
		return nil, nil, fmt.Errorf("open bundle: %w", err)
	}
	return bundle, key, nil
}

func parseMode(s string) (blockmode.Mode, error) {
	switch s {
	case "ECB":
		return blockmode.ECB, nil
	case "CBC":
		return blockmode.CBC, nil
	case "CTR":
		return blockmode.CTR, nil
	default:
		return 0, fmt.Errorf("unknown mode %q, want ECB, CBC, or CTR", s)
	}
}

func parsePadding(s string) (blockmode.Padding, error) {
	switch s {
	case "NONE":
		return nil, nil
	case "ZEROS":
		return blockmode.ZerosPadding{}, nil
	case "PKCS":
		return blockmode.PKCSPadding{}, nil
	case "ONE_AND_ZEROS":
		return blockmode.OneAndZerosPadding{}, nil
	default:
		return nil, fmt.Errorf("unknown padding %q, want NONE, ZEROS, PKCS, or ONE_AND_ZEROS", s)
	}
}

