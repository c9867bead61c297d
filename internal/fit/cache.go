package fit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// cacheDirPerm is the permission mode for the cache directory.
	cacheDirPerm = fs.FileMode(0o700)

	// cacheFilePerm is the permission mode for the cache database file.
	cacheFilePerm = fs.FileMode(0o600)

	// cacheOpenTimeout is the maximum time to wait for the bolt database lock.
	cacheOpenTimeout = 5 * time.Second
)

var analysesBucket = []byte("analyses")

// cacheKey returns the SHA-256 hex digest of a FIT file URL. The URLs
// are long presigned links; the digest keeps keys short and uniform.
func cacheKey(url string) []byte {
	h := sha256.Sum256([]byte(url))
	dst := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(dst, h[:])

	return dst
}

// Cache persists FIT analyses in a bbolt database keyed by file URL.
type Cache struct {
	db *bolt.DB
}

// OpenCache opens the cache database at path, creating it and its
// parent directory if they do not exist.
func OpenCache(path string) (*Cache, error) {
	if path == "" {
		return nil, errors.New("cache path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), cacheDirPerm); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := bolt.Open(path, cacheFilePerm, &bolt.Options{Timeout: cacheOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening FIT cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(analysesBucket)

		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing FIT cache: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached analysis for a URL, or false when absent or
// unreadable.
func (c *Cache) Get(url string) (*Analysis, bool) {
	var analysis *Analysis

	_ = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(analysesBucket).Get(cacheKey(url))
		if v == nil {
			return nil
		}

		var a Analysis
		if err := json.Unmarshal(v, &a); err != nil {
			return nil
		}

		analysis = &a

		return nil
	})

	return analysis, analysis != nil
}

// Put stores the analysis for a URL, replacing any previous entry.
func (c *Cache) Put(url string, a *Analysis) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}

		return tx.Bucket(analysesBucket).Put(cacheKey(url), data)
	})
}
