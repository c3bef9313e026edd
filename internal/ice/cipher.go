// Package ice implements the ICE (Information Concealment Engine) block cipher
// designed by Matthew Kwan. The output is bit-compatible with the reference C
// implementation for every level, including Thin-ICE (level 0).
//
// Blocks are transformed independently; chaining, padding and handling of
// input that is not a multiple of BlockSize are left to the caller.
package ice

import (
	"encoding/binary"
	"sync/atomic"
)

// The ICE block size in bytes.
const BlockSize = 8

// A Cipher is an ICE key of a fixed strength. It is unusable until SetKey
// succeeds. Once a key is set, Encrypt and Decrypt may be called from any
// number of goroutines.
type Cipher struct {
	strength int
	rounds   int
	sbox     *sboxTable
	sched    atomic.Pointer[keySchedule]
}

// New returns a Cipher for the given strength. A strength below 1 selects
// Thin-ICE (8 rounds, 8-byte key); otherwise the cipher runs strength*16
// rounds over a strength*8 byte key.
func New(strength int) *Cipher {
	c := &Cipher{sbox: sboxes()}
	if strength < 1 {
		c.strength = 1
		c.rounds = 8
	} else {
		c.strength = strength
		c.rounds = strength * 16
	}
	return c
}

// SetKey builds the key schedule from key, which must be exactly KeySize
// bytes. On error the previously installed schedule, if any, is kept. The
// receiver is returned to allow chaining:
//
//	c, err := ice.New(1).SetKey(key)
func (c *Cipher) SetKey(key []byte) (*Cipher, error) {
	if len(key) != c.KeySize() {
		return c, KeySizeError{Got: len(key), Want: c.KeySize()}
	}

	ks := newKeySchedule(key, c.rounds)
	c.sched.Store(&ks)
	return c, nil
}

// Reset wipes the key schedule and returns the cipher to its uninitialized
// state. It must not be called while a transform is in flight.
func (c *Cipher) Reset() {
	if ks := c.sched.Swap(nil); ks != nil {
		ks.wipe()
	}
}

// Encrypt enciphers one 8-byte block and returns the result in a new slice.
func (c *Cipher) Encrypt(src []byte) ([]byte, error) {
	ks, err := c.schedule(src)
	if err != nil {
		return nil, err
	}

	l := binary.BigEndian.Uint32(src[0:4])
	r := binary.BigEndian.Uint32(src[4:8])

	for i := 0; i < c.rounds; i += 2 {
		l ^= roundFunc(r, &ks[i], c.sbox)
		r ^= roundFunc(l, &ks[i+1], c.sbox)
	}

	return pack(l, r), nil
}

// Decrypt deciphers one 8-byte block and returns the result in a new slice.
func (c *Cipher) Decrypt(src []byte) ([]byte, error) {
	ks, err := c.schedule(src)
	if err != nil {
		return nil, err
	}

	l := binary.BigEndian.Uint32(src[0:4])
	r := binary.BigEndian.Uint32(src[4:8])

	for i := c.rounds - 1; i > 0; i -= 2 {
		l ^= roundFunc(r, &ks[i], c.sbox)
		r ^= roundFunc(l, &ks[i-1], c.sbox)
	}

	return pack(l, r), nil
}

// schedule validates src and returns the installed key schedule.
func (c *Cipher) schedule(src []byte) (keySchedule, error) {
	if len(src) != BlockSize {
		return nil, BlockSizeError(len(src))
	}
	ks := c.sched.Load()
	if ks == nil {
		return nil, ErrUninitialized
	}
	return *ks, nil
}

// The halves swap places on the way out: right half first.
func pack(l, r uint32) []byte {
	dst := make([]byte, BlockSize)
	binary.BigEndian.PutUint32(dst[0:4], r)
	binary.BigEndian.PutUint32(dst[4:8], l)
	return dst
}

// KeySize returns the key size in bytes.
func (c *Cipher) KeySize() int { return c.strength * 8 }

// BlockSize returns the ICE block size, 8 bytes.
func (c *Cipher) BlockSize() int { return BlockSize }

// Rounds returns the number of Feistel rounds.
func (c *Cipher) Rounds() int { return c.rounds }

// Strength returns the effective strength, which is at least 1.
func (c *Cipher) Strength() int { return c.strength }

// Schedule returns a copy of the installed subkeys, one triple per round, or
// nil if no key has been set.
func (c *Cipher) Schedule() [][3]uint32 {
	ks := c.sched.Load()
	if ks == nil {
		return nil
	}
	out := make([][3]uint32, len(*ks))
	for i, sk := range *ks {
		out[i] = sk
	}
	return out
}
