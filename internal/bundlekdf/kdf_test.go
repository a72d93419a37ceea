// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package bundlekdf

import (
	"bytes"
	"testing"
)

func TestNewPanicsOnEmptyInputs(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic for empty master secret")
			}
		}()
		New(nil, []byte("salt"), "bundle.wbx")
	})
	t.Run("empty salt", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic for empty bundle salt")
			}
		}()
		New([]byte("secret"), nil, "bundle.wbx")
	})
}

func TestSealingKeyNonceLengthsAndDeterminism(t *testing.T) {
	p := New([]byte("secret-0123456789"), []byte("salt-0123456789"), "bundle.wbx")
	k1, n1 := p.SealingKeyNonce()
	k2, n2 := p.SealingKeyNonce()
	if len(k1) != 16 || len(n1) != 16 {
		t.Fatalf("unexpected key/nonce lengths: %d/%d", len(k1), len(n1))
	}
	if bytes.Equal(k1, k2) && bytes.Equal(n1, n2) {
		t.Fatal("expected different key/nonce across successive calls")
	}

	salt := p.EmbedSalt(32)
	if len(salt) != 32 {
		t.Fatalf("embed salt length = %d, want 32", len(salt))
	}
}

func TestSealingKeyNonceCounterMonotonicity(t *testing.T) {
	p := New([]byte("master-secret-0123456789"), []byte("salt-0123456789"), "bundle.wbx")

	type keyNonce struct {
		key   [16]byte
		nonce [16]byte
	}
	seen := make(map[keyNonce]int)

	const iterations = 1000
	for i := 0; i < iterations; i++ {
		k, n := p.SealingKeyNonce()
		var kn keyNonce
		copy(kn.key[:], k)
		copy(kn.nonce[:], n)
		if prev, dup := seen[kn]; dup {
			t.Fatalf("duplicate key/nonce at iteration %d (first seen at %d)", i, prev)
		}
		seen[kn] = i
	}
}

func TestCrossLabelIndependence(t *testing.T) {
	master := []byte("shared-master-secret-0123456789")
	salt := []byte("shared-salt-0123456789")

	p1 := New(master, salt, "bundle_a.wbx")
	p2 := New(master, salt, "bundle_b.wbx")

	k1, n1 := p1.SealingKeyNonce()
	k2, n2 := p2.SealingKeyNonce()

	if bytes.Equal(k1, k2) {
		t.Fatal("different labels produced identical keys")
	}
	if bytes.Equal(n1, n2) {
		t.Fatal("different labels produced identical nonces")
	}
}

func TestCrossSaltIndependence(t *testing.T) {
	master := []byte("shared-master-secret-0123456789")

	p1 := New(master, []byte("bundle-alpha"), "bundle.wbx")
	p2 := New(master, []byte("bundle-bravo"), "bundle.wbx")

	k1, _ := p1.SealingKeyNonce()
	k2, _ := p2.SealingKeyNonce()

	if bytes.Equal(k1, k2) {
		t.Fatal("different bundle salts produced identical keys")
	}
}

func TestDeterminism(t *testing.T) {
	for trial := 0; trial < 5; trial++ {
		p1 := New([]byte("det-master"), []byte("det-salt"), "det.wbx")
		p2 := New([]byte("det-master"), []byte("det-salt"), "det.wbx")

		for i := 0; i < 20; i++ {
			k1, n1 := p1.SealingKeyNonce()
			k2, n2 := p2.SealingKeyNonce()
			if !bytes.Equal(k1, k2) || !bytes.Equal(n1, n2) {
				t.Fatalf("trial %d, call %d: non-deterministic output", trial, i)
			}
		}
	}
}

func TestSealAndEmbedDomainsAreSeparate(t *testing.T) {
	p1 := New([]byte("ctx-master"), []byte("ctx-salt"), "ctx.wbx")
	p2 := New([]byte("ctx-master"), []byte("ctx-salt"), "ctx.wbx")

	sealKey, _ := p1.SealingKeyNonce()
	embedSalt := p2.EmbedSalt(16)

	if bytes.Equal(sealKey, embedSalt) {
		t.Fatal("seal and embed domains produced identical material")
	}
}
