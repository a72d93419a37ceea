// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGenEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "bundle.wbx")
	plain := filepath.Join(dir, "plain.bin")
	cipher := filepath.Join(dir, "cipher.bin")
	recovered := filepath.Join(dir, "recovered.bin")

	if err := os.WriteFile(plain, []byte("the quick brown fox jumps over the lazy dog!!"), 0o644); err != nil {
		t.Fatalf("write plaintext: %v", err)
	}

	if err := run([]string{
		"gen", "-key", "2b7e151628aed2a6abf7158809cf4f3c",
		"-passphrase", "correct horse battery staple",
		"-out", table,
	}); err != nil {
		t.Fatalf("gen: %v", err)
	}

	if err := run([]string{
		"encrypt", "-in", plain, "-out", cipher, "-table", table,
		"-passphrase", "correct horse battery staple",
		"-mode", "CBC", "-padding", "PKCS",
		"-iv", "000102030405060708090a0b0c0d0e0f",
	}); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	decTable := filepath.Join(dir, "bundle-dec.wbx")
	if err := run([]string{
		"gen", "-key", "2b7e151628aed2a6abf7158809cf4f3c",
		"-passphrase", "correct horse battery staple",
		"-out", decTable, "-decrypt",
	}); err != nil {
		t.Fatalf("gen -decrypt: %v", err)
	}

	if err := run([]string{
		"decrypt", "-in", cipher, "-out", recovered, "-table", decTable,
		"-passphrase", "correct horse battery staple",
		"-mode", "CBC", "-padding", "PKCS",
		"-iv", "000102030405060708090a0b0c0d0e0f",
	}); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	got, err := os.ReadFile(recovered)
	if err != nil {
		t.Fatalf("read recovered: %v", err)
	}
	want, _ := os.ReadFile(plain)
	if string(got) != string(want) {
		t.Fatalf("round trip mismatch: got %q want %q", got, want)
	}
}

func TestCTRRejectsNonNonePadding(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "bundle.wbx")
	plain := filepath.Join(dir, "plain.bin")
	cipher := filepath.Join(dir, "cipher.bin")

	os.WriteFile(plain, []byte("data"), 0o644)
	if err := run([]string{
		"gen", "-key", "2b7e151628aed2a6abf7158809cf4f3c",
		"-passphrase", "pw", "-out", table,
	}); err != nil {
		t.Fatalf("gen: %v", err)
	}

	err := run([]string{
		"encrypt", "-in", plain, "-out", cipher, "-table", table,
		"-passphrase", "pw", "-mode", "CTR", "-padding", "PKCS",
		"-iv", "00000000000000000000000000000000",
	})
	if err == nil {
		t.Fatal("expected an error rejecting PKCS padding under CTR")
	}
}

func TestCBCRequiresIV(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "bundle.wbx")
	plain := filepath.Join(dir, "plain.bin")
	cipher := filepath.Join(dir, "cipher.bin")

	os.WriteFile(plain, []byte("data"), 0o644)
	if err := run([]string{
		"gen", "-key", "2b7e151628aed2a6abf7158809cf4f3c",
		"-passphrase", "pw", "-out", table,
	}); err != nil {
		t.Fatalf("gen: %v", err)
	}

	err := run([]string{
		"encrypt", "-in", plain, "-out", cipher, "-table", table,
		"-passphrase", "pw", "-mode", "CBC",
	})
	if err == nil {
		t.Fatal("expected an error for missing -iv under CBC")
	}
}

func TestUnknownCommand(t *testing.T) {
	err := run([]string{"bogus"})
	if err == nil {
		t.Fatal("expected an error for an unknown command")
	}
	var ce *cliError
	if !errors.As(err, &ce) || ce.code != exitArg {
		t.Fatalf("expected an argument-class cliError, got %#v", err)
	}
}

func TestLoadValidatesBundle(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "bundle.wbx")

	if err := run([]string{
		"gen", "-key", "2b7e151628aed2a6abf7158809cf4f3c",
		"-passphrase", "pw", "-out", table,
	}); err != nil {
		t.Fatalf("gen: %v", err)
	}
	if err := run([]string{"load", "-table", table, "-passphrase", "pw"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := run([]string{"load", "-table", table, "-passphrase", "wrong"}); err == nil {
		t.Fatal("expected load to fail with the wrong passphrase")
	}
}

func TestParseErrorClassification(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "bundle.wbx")
	err := run([]string{"gen", "-key", "not-hex", "-passphrase", "pw", "-out", table})
	if err == nil {
		t.Fatal("expected an error for a non-hex key")
	}
	var ce *cliError
	if !errors.As(err, &ce) || ce.code != exitParse {
		t.Fatalf("expected a parse-class cliError, got %#v", err)
	}
}

func TestIOErrorClassification(t *testing.T) {
	err := run([]string{"load", "-table", "/nonexistent/path/bundle.wbx", "-passphrase", "pw"})
	if err == nil {
		t.Fatal("expected an error for a missing bundle file")
	}
	var ce *cliError
	if !errors.As(err, &ce) || ce.code != exitIO {
		t.Fatalf("expected an I/O-class cliError, got %#v", err)
	}
}

func TestMissingCommand(t *testing.T) {
	if err := run(nil); err == nil {
		t.Fatal("expected an error for no command")
	}
}

func TestCTRRoundTripUsesSingleEncryptionBundle(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "bundle.wbx")
	plain := filepath.Join(dir, "plain.bin")
	cipher := filepath.Join(dir, "cipher.bin")
	recovered := filepath.Join(dir, "recovered.bin")

	if err := os.WriteFile(plain, []byte("ctr mode streams without padding, any length at all"), 0o644); err != nil {
		t.Fatalf("write plaintext: %v", err)
	}
	if err := run([]string{
		"gen", "-key", "2b7e151628aed2a6abf7158809cf4f3c",
		"-passphrase", "pw", "-out", table,
	}); err != nil {
		t.Fatalf("gen: %v", err)
	}

	iv := "000102030405060708090a0b0c0d0e0f"
	if err := run([]string{
		"encrypt", "-in", plain, "-out", cipher, "-table", table,
		"-passphrase", "pw", "-mode", "CTR", "-padding", "NONE", "-iv", iv,
	}); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	// The same (encryption) bundle is reused for decrypt, per CTR's
	// always-encrypt-direction contract.
	if err := run([]string{
		"decrypt", "-in", cipher, "-out", recovered, "-table", table,
		"-passphrase", "pw", "-mode", "CTR", "-padding", "NONE", "-iv", iv,
	}); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	got, err := os.ReadFile(recovered)
	if err != nil {
		t.Fatalf("read recovered: %v", err)
	}
	want, _ := os.ReadFile(plain)
	if string(got) != string(want) {
		t.Fatalf("CTR round trip mismatch: got %q want %q", got, want)
	}
}

func TestEncodeInputWritesEncodedBundle(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "bundle.wbx")
	encoded := filepath.Join(dir, "bundle-encoded.wbx")

	if err := run([]string{
		"gen", "-key", "2b7e151628aed2a6abf7158809cf4f3c",
		"-passphrase", "pw", "-out", table,
	}); err != nil {
		t.Fatalf("gen: %v", err)
	}
	if err := run([]string{
		"encode", "-in", table, "-out", encoded, "-passphrase", "pw", "-input",
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := os.Stat(encoded); err != nil {
		t.Fatalf("expected encoded bundle file to exist: %v", err)
	}
}
