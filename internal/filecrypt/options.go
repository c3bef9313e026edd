package filecrypt

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Direction selects which half of the cipher is applied to a file.
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) String() string {
	switch d {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// RemainderPolicy decides what happens to the trailing bytes of an input
// that do not fill a whole block.
type RemainderPolicy int

const (
	// Passthrough copies the trailing bytes to the output unchanged.
	Passthrough RemainderPolicy = iota
	// ZeroFill pads the trailing bytes with zeros to a full block and
	// transforms it, reproducing the drag-and-drop encryption tool.
	ZeroFill
	// Drop leaves the trailing bytes out of the output.
	Drop
)

func (p RemainderPolicy) String() string {
	switch p {
	case Passthrough:
		return "passthrough"
	case ZeroFill:
		return "zero"
	case Drop:
		return "drop"
	default:
		return fmt.Sprintf("remainder(%d)", int(p))
	}
}

// ParseRemainderPolicy accepts the names produced by RemainderPolicy.String.
func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passthrough", "":
		return Passthrough, nil
	case "zero":
		return ZeroFill, nil
	case "drop":
		return Drop, nil
	default:
		return 0, fmt.Errorf("unknown remainder policy %q", s)
	}
}

// Extensions are the file extensions given to each side of the cipher.
type Extensions struct {
	Encrypted string
	Plain     string
}

// For returns the extension of files produced in direction d.
func (e Extensions) For(d Direction) string {
	if d == Encrypt {
		return e.Encrypted
	}
	return e.Plain
}

// DirectionFor encrypts files carrying the plain extension and decrypts
// everything else.
func (e Extensions) DirectionFor(path string) Direction {
	if strings.EqualFold(filepath.Ext(path), e.Plain) {
		return Encrypt
	}
	return Decrypt
}

// OutputPath replaces the extension of path with ext, or appends ext if path
// has none.
func OutputPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
