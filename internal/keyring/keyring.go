// Package keyring caches scheduled ICE ciphers so that jobs sharing a key
// build its schedule only once.
package keyring

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dcrodman/icecrypt/internal/ice"
)

// Keyring is a key-value store of ciphers indexed by strength and a
// fingerprint of the key. Raw keys are never stored.
type Keyring struct {
	cacheInstance *gocache.Cache

	hits   atomic.Int64
	misses atomic.Int64
}

// New returns a Keyring whose entries expire ttl after they were built. A ttl
// of 0 or less keeps entries until Flush.
func New(ttl time.Duration) *Keyring {
	if ttl <= 0 {
		return &Keyring{cacheInstance: gocache.New(gocache.NoExpiration, 10*time.Second)}
	}
	return &Keyring{cacheInstance: gocache.New(ttl, ttl)}
}

// Get returns a cipher of the given strength keyed with key, building and
// caching it on a miss.
func (k *Keyring) Get(strength int, key []byte) (*ice.Cipher, error) {
	id := fingerprint(strength, key)
	if c, found := k.cacheInstance.Get(id); found {
		k.hits.Add(1)
		return c.(*ice.Cipher), nil
	}
	k.misses.Add(1)

	c, err := ice.New(strength).SetKey(key)
	if err != nil {
		return nil, err
	}
	k.cacheInstance.SetDefault(id, c)
	return c, nil
}

// Len returns the number of cached ciphers, including expired ones not yet
// cleaned up.
func (k *Keyring) Len() int {
	return k.cacheInstance.ItemCount()
}

// Stats returns how many Get calls were served from the cache and how many
// had to build a schedule.
func (k *Keyring) Stats() (hits, misses int64) {
	return k.hits.Load(), k.misses.Load()
}

// Flush drops every cached cipher.
func (k *Keyring) Flush() {
	k.cacheInstance.Flush()
}

func fingerprint(strength int, key []byte) string {
	if strength < 0 {
		strength = 0
	}
	sum := sha256.Sum256(key)
	return strconv.Itoa(strength) + ":" + hex.EncodeToString(sum[:])
}
