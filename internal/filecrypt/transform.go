// Package filecrypt drives an ICE cipher over whole files: it splits input
// into blocks, applies the cipher to each one independently and deals with
// the trailing partial block.
package filecrypt

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// BlockCipher is the per-block contract of the cipher engine.
type BlockCipher interface {
	BlockSize() int
	Encrypt(src []byte) ([]byte, error)
	Decrypt(src []byte) ([]byte, error)
}

// Stats summarizes a single Transform.
type Stats struct {
	// Bytes read from the input.
	Bytes int64
	// Full blocks run through the cipher, including a zero-filled tail.
	Blocks int64
	// Length of the trailing partial block.
	Remainder int
}

// ProgressFunc is called after every buffer with the number of input bytes
// consumed so far and the expected total, which is negative if unknown.
type ProgressFunc func(done, total int64)

// Percent returns done as a percentage of total, or 0 when total is unknown.
func Percent(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// blocksPerBuffer is the number of blocks read from the input at a time.
const blocksPerBuffer = 512

// Transform reads src to the end, applies c in direction dir to every block
// and writes the result to dst. The context is checked between buffers.
func Transform(
	ctx context.Context,
	dst io.Writer,
	src io.Reader,
	c BlockCipher,
	dir Direction,
	policy RemainderPolicy,
	total int64,
	progress ProgressFunc,
) (Stats, error) {
	var stats Stats

	crypt := c.Encrypt
	if dir == Decrypt {
		crypt = c.Decrypt
	}

	bs := c.BlockSize()
	buf := make([]byte, bs*blocksPerBuffer)
	out := make([]byte, 0, len(buf))

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := io.ReadFull(src, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return stats, fmt.Errorf("error reading input: %w", err)
		}
		stats.Bytes += int64(n)

		full := n - n%bs
		out = out[:0]
		for off := 0; off < full; off += bs {
			block, cerr := crypt(buf[off : off+bs])
			if cerr != nil {
				return stats, cerr
			}
			out = append(out, block...)
			stats.Blocks++
		}

		if tail := n - full; tail > 0 {
			stats.Remainder = tail
			switch policy {
			case Passthrough:
				out = append(out, buf[full:n]...)
			case ZeroFill:
				padded := make([]byte, bs)
				copy(padded, buf[full:n])
				block, cerr := crypt(padded)
				if cerr != nil {
					return stats, cerr
				}
				out = append(out, block...)
				stats.Blocks++
			case Drop:
			default:
				return stats, fmt.Errorf("unknown remainder policy: %v", policy)
			}
		}

		if _, werr := dst.Write(out); werr != nil {
			return stats, fmt.Errorf("error writing output: %w", werr)
		}
		if progress != nil && n > 0 {
			progress(stats.Bytes, total)
		}

		// A short read means the input is exhausted.
		if err != nil {
			return stats, nil
		}
	}
}
