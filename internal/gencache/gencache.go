// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package gencache caches generated white-box bundles on disk, keyed by a
// hash of the AES key and generation options that produced them, so that
// re-running the generator against inputs it has already built skips the
// (comparatively expensive) table construction entirely.
package gencache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rogpeppe/go-internal/cache"

	"github.com/AeonDave/whitebox-aes/internal/aesprims"
	"github.com/AeonDave/whitebox-aes/internal/whitebox"
)

// ActionID computes the cache key for a given key/options/direction
// triple. Two generator calls with identical inputs always land on the
// same entry; any difference in the key, the options, or the direction
// produces an unrelated entry.
func ActionID(key [aesprims.KeyBytes]byte, opt whitebox.Options, decrypt bool) cache.ActionID {
	h := sha256.New()
	h.Write([]byte("whitebox-bundle-gencache:v1"))
	h.Write(key[:])
	var flags [3]byte
	if opt.UseMixingBijections {
		flags[0] = 1
	}
	if opt.UseInternalEncoding {
		flags[1] = 1
	}
	if decrypt {
		flags[2] = 1
	}
	h.Write(flags[:])
	var sum cache.ActionID
	copy(sum[:], h.Sum(nil))
	return sum
}

// Cache wraps a rogpeppe/go-internal/cache.Cache with get-or-compute
// access to generated bundles, plus an in-memory layer so that repeated
// lookups within the same process don't pay the filesystem round trip.
type Cache struct {
	fsCache *cache.Cache

	mu  sync.Mutex
	mem map[cache.ActionID]*whitebox.Bundle
}

// Open opens (creating if necessary) a bundle cache rooted at dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, fmt.Errorf("gencache: create cache dir: %w", err)
	}
	fsCache, err := cache.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("gencache: open cache: %w", err)
	}
	return &Cache{fsCache: fsCache, mem: make(map[cache.ActionID]*whitebox.Bundle)}, nil
}

// Get returns a previously stored bundle for id, or ok=false on a miss (or
// on any error reading back a corrupted entry — corruption is treated as
// a miss rather than a hard failure, same as a dependency-cache read in
// the reference package-cache adapter).
func (c *Cache) Get(id cache.ActionID) (bundle *whitebox.Bundle, ok bool) {
	c.mu.Lock()
	if b, found := c.mem[id]; found {
		c.mu.Unlock()
		return b, true
	}
	c.mu.Unlock()

	filename, _, err := c.fsCache.GetFile(id)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, false
	}
	var decoded whitebox.Bundle
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&decoded); err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.mem[id] = &decoded
	c.mu.Unlock()
	return &decoded, true
}

// Put stores bundle under id, for both the filesystem and in-memory
// layers.
func (c *Cache) Put(id cache.ActionID, bundle *whitebox.Bundle) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(bundle); err != nil {
		return fmt.Errorf("gencache: encode bundle: %w", err)
	}
	if err := c.fsCache.PutBytes(id, buf.Bytes()); err != nil {
		return fmt.Errorf("gencache: write entry: %w", err)
	}

	c.mu.Lock()
	c.mem[id] = bundle
	c.mu.Unlock()
	return nil
}

// GetOrCompute returns the cached bundle for id if present, otherwise
// calls compute, stores its result, and returns that.
func (c *Cache) GetOrCompute(id cache.ActionID, compute func() (*whitebox.Bundle, error)) (*whitebox.Bundle, error) {
	if bundle, ok := c.Get(id); ok {
		return bundle, nil
	}
	bundle, err := compute()
	if err != nil {
		return nil, err
	}
	if err := c.Put(id, bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

// DefaultDir returns the "bundles" subdirectory of base, mirroring the
// reference tool's convention of giving the hashed cache its own
// subdirectory so it can sit alongside other cache state without mixing.
func DefaultDir(base string) string {
	return filepath.Join(base, "bundles")
}
