package keyring

import (
	"errors"
	"testing"
	"time"

	"github.com/dcrodman/icecrypt/internal/ice"
)

func TestKeyring_Get(t *testing.T) {
	k := New(time.Minute)

	first, err := k.Get(1, []byte("x9Ke0BY7"))
	if err != nil {
		t.Fatalf("Get() returned an unexpected error: %v", err)
	}
	second, err := k.Get(1, []byte("x9Ke0BY7"))
	if err != nil {
		t.Fatalf("Get() returned an unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected the cached cipher to be reused")
	}

	thin, _ := k.Get(0, []byte("x9Ke0BY7"))
	if thin == first || thin.Rounds() != 8 {
		t.Errorf("expected a separate Thin-ICE cipher, got %d rounds", thin.Rounds())
	}
	other, _ := k.Get(1, []byte("d7NSuLq2"))
	if other == first {
		t.Errorf("expected different keys to yield different ciphers")
	}
	if k.Len() != 3 {
		t.Errorf("expected 3 cached ciphers, got %d", k.Len())
	}
	if hits, misses := k.Stats(); hits != 1 || misses != 3 {
		t.Errorf("expected 1 hit and 3 misses, got %d and %d", hits, misses)
	}

	k.Flush()
	if k.Len() != 0 {
		t.Errorf("expected Flush() to empty the keyring, got %d", k.Len())
	}
}

func TestKeyring_NegativeStrengthSharesThinEntry(t *testing.T) {
	k := New(0)
	a, _ := k.Get(-1, []byte("SDhfi878"))
	b, _ := k.Get(0, []byte("SDhfi878"))
	if a != b {
		t.Errorf("expected strengths below 1 to share a cache entry")
	}
}

func TestKeyring_InvalidKey(t *testing.T) {
	k := New(time.Minute)
	if _, err := k.Get(2, []byte("too short")); !errors.Is(err, ice.ErrInvalidKeyLength) {
		t.Errorf("expected ErrInvalidKeyLength, got %v", err)
	}
	if k.Len() != 0 {
		t.Errorf("expected failed keys not to be cached")
	}
}

func TestKeyring_Expiry(t *testing.T) {
	k := New(20 * time.Millisecond)
	first, _ := k.Get(0, []byte("E2NcUkG2"))
	time.Sleep(50 * time.Millisecond)

	second, err := k.Get(0, []byte("E2NcUkG2"))
	if err != nil {
		t.Fatalf("Get() returned an unexpected error: %v", err)
	}
	if first == second {
		t.Errorf("expected an expired cipher to be rebuilt")
	}
}
