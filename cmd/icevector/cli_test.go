package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dcrodman/icecrypt/internal/ice"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := app()
	var out bytes.Buffer
	a.Writer = &out
	a.ErrWriter = &out
	err := a.Run(append([]string{"icevector"}, args...))
	return out.String(), err
}

func TestBlockCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "thin-ice",
			args: []string{"encrypt", "-s", "0", "-k", "deadbeef01234567", "fedcba9876543210"},
			want: "de240d83a00a9cc0\n",
		},
		{
			name: "level 1",
			args: []string{"encrypt", "-s", "1", "-k", "deadbeef01234567", "fedcba9876543210"},
			want: "7d6ef1ef30d47a96\n",
		},
		{
			name: "level 2",
			args: []string{"encrypt", "--strength", "2", "--key", "00112233445566778899aabbccddeeff", "fedcba9876543210"},
			want: "f94840d86972f21c\n",
		},
		{
			name: "text key",
			args: []string{"encrypt", "-k", "text:x9Ke0BY7", hexOf("ICE test")},
			want: "168afee400961d21\n",
		},
		{
			name: "decrypt",
			args: []string{"decrypt", "-s", "1", "-k", "hex:deadbeef01234567", "7d6ef1ef30d47a96"},
			want: "fedcba9876543210\n",
		},
		{
			name: "multiple arguments and blocks",
			args: []string{"encrypt", "-k", "deadbeef01234567", "fedcba9876543210fedcba9876543210", "fedcba9876543210"},
			want: "de240d83a00a9cc0de240d83a00a9cc0\nde240d83a00a9cc0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func hexOf(s string) string {
	const digits = "0123456789abcdef"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteByte(digits[s[i]>>4])
		b.WriteByte(digits[s[i]&0xf])
	}
	return b.String()
}

func TestBlockCommands_Errors(t *testing.T) {
	if _, err := run(t, "encrypt", "-k", "deadbeef", "fedcba9876543210"); !errors.Is(err, ice.ErrInvalidKeyLength) {
		t.Errorf("expected ErrInvalidKeyLength, got %v", err)
	}
	if _, err := run(t, "encrypt", "-k", "deadbeef01234567", "fedcba98"); !errors.Is(err, ice.ErrInvalidBlockLength) {
		t.Errorf("expected ErrInvalidBlockLength, got %v", err)
	}
	if _, err := run(t, "encrypt", "-k", "deadbeef01234567", "not hex!"); err == nil {
		t.Error("expected an error for invalid hex")
	}
	if _, err := run(t, "encrypt", "-k", "deadbeef01234567"); err == nil {
		t.Error("expected an error without blocks")
	}
}

func TestSchedule(t *testing.T) {
	got, err := run(t, "schedule", "-s", "1", "-k", "deadbeef01234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 17 {
		t.Fatalf("expected a header and 16 rounds, got %d lines:\n%s", len(lines), got)
	}
	want := []string{
		"strength 1, 16 rounds, 8 byte key",
		"  0: f3a33 e03b2 bfc39",
	}
	if diff := cmp.Diff(want, lines[:2]); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(" 15: b0ce8 ef3c6 caccc", lines[16]); diff != "" {
		t.Errorf("last round mismatch (-want +got):\n%s", diff)
	}

	dump, err := run(t, "schedule", "--dump", "-k", "deadbeef01234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(dump, "997939") {
		t.Errorf("expected the first subkey in the dump:\n%s", dump)
	}
}
