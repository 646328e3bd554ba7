// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package assets caches poster image binaries in an embedded Badger
// store, keyed by (poster path, size variant).
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/config"
	"github.com/SBoyapati13/movie-recommender/internal/metrics"
)

const keyPrefix = "poster:"

// ErrNotCached is returned when no asset is stored under a key.
var ErrNotCached = errors.New("asset not cached")

// Cache is a disk-backed poster blob cache. Values are written and read
// whole; Badger handles durability and compaction.
type Cache struct {
	db     *badger.DB
	logger zerolog.Logger
}

// NewCache opens the Badger store at cfg.Path, or in memory when
// cfg.InMemory is set (used by tests).
func NewCache(cfg *config.AssetsConfig, logger zerolog.Logger) (*Cache, error) {
	componentLogger := logger.With().Str("component", "assets").Logger()

	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(nil).
		WithInMemory(cfg.InMemory)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset cache: %w", err)
	}

	return &Cache{db: db, logger: componentLogger}, nil
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

// assetKey builds the storage key for a (path, size) pair. Size leads so
// iteration groups variants together.
func assetKey(path, size string) []byte {
	return []byte(keyPrefix + size + ":" + path)
}

// Get returns the cached bytes for (path, size), or ErrNotCached.
func (c *Cache) Get(path, size string) ([]byte, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(assetKey(path, size))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		metrics.AssetCacheMisses.Inc()
		return nil, ErrNotCached
	case err != nil:
		metrics.AssetCacheMisses.Inc()
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	metrics.AssetCacheHits.Inc()
	return data, nil
}

// Put stores the bytes for (path, size), overwriting any previous value.
func (c *Cache) Put(path, size string, data []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(assetKey(path, size), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store asset: %w", err)
	}
	return nil
}

// Evict removes the entry for (path, size). Missing entries are not an
// error.
func (c *Cache) Evict(path, size string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(assetKey(path, size))
	})
	if err != nil {
		return fmt.Errorf("failed to evict asset: %w", err)
	}
	metrics.AssetEvictionsTotal.Inc()
	return nil
}

// Prune deletes every cached asset whose poster path is not in keep,
// returning the number of entries removed. Callers pass the set of
// poster paths still referenced by rated movies.
func (c *Cache) Prune(keep map[string]struct{}) (int, error) {
	type target struct{ path, size string }
	var doomed []target

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			size, path, ok := splitAssetKey(key)
			if !ok {
				continue
			}
			if _, keepIt := keep[path]; !keepIt {
				doomed = append(doomed, target{path: path, size: size})
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan asset cache: %w", err)
	}

	removed := 0
	for _, t := range doomed {
		if err := c.Evict(t.path, t.size); err != nil {
			c.logger.Error().Err(err).Str("path", t.path).Msg("Failed to prune asset")
			continue
		}
		removed++
	}
	return removed, nil
}

// splitAssetKey reverses assetKey. The poster path itself may contain
// no colon (TMDb paths are "/<hash>.jpg"), so splitting on the first
// colon after the prefix is unambiguous.
func splitAssetKey(key string) (size, path string, ok bool) {
	rest, found := strings.CutPrefix(key, keyPrefix)
	if !found {
		return "", "", false
	}
	size, path, found = strings.Cut(rest, ":")
	if !found {
		return "", "", false
	}
	return size, path, true
}

// validImage reports whether data decodes as a supported image format.
// Decoding the full image (not just the header) catches truncation as
// well as header corruption.
func validImage(data []byte) bool {
	_, _, err := image.Decode(bytes.NewReader(data))
	return err == nil
}
