package ice

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidKeyLength is matched by every KeySizeError.
	ErrInvalidKeyLength = errors.New("ice: invalid key length")
	// ErrInvalidBlockLength is matched by every BlockSizeError.
	ErrInvalidBlockLength = errors.New("ice: invalid block length")
	// ErrUninitialized is returned when a block is transformed before a key
	// schedule has been set.
	ErrUninitialized = errors.New("ice: key schedule not set")
)

// KeySizeError reports a key whose length does not match the cipher's KeySize.
type KeySizeError struct {
	Got  int
	Want int
}

func (k KeySizeError) Error() string {
	return "ice: invalid key size " + strconv.Itoa(k.Got) + " (expected " + strconv.Itoa(k.Want) + ")"
}

func (k KeySizeError) Is(target error) bool { return target == ErrInvalidKeyLength }

// BlockSizeError reports an input block that is not BlockSize bytes long.
type BlockSizeError int

func (b BlockSizeError) Error() string {
	return "ice: invalid block size " + strconv.Itoa(int(b))
}

func (b BlockSizeError) Is(target error) bool { return target == ErrInvalidBlockLength }
