package testutil

import (
	"path/filepath"
	"testing"

	"github.com/mrz1836/wipecert/internal/crypto/rsapss"
)

// TestKeyBits is the smallest key size Generate accepts; it keeps tests fast.
const TestKeyBits = 2048

// GenerateKeyPair writes a fresh signing key pair under a per-test
// temporary directory and returns its paths.
func GenerateKeyPair(tb testing.TB) *rsapss.KeyPair {
	tb.Helper()
	return GenerateKeyPairIn(tb, filepath.Join(tb.TempDir(), "keys"))
}

// GenerateKeyPairIn writes a fresh signing key pair into dir.
func GenerateKeyPairIn(tb testing.TB, dir string) *rsapss.KeyPair {
	tb.Helper()

	pair, err := rsapss.Generate(dir, TestKeyBits)
	if err != nil {
		tb.Fatalf("generating test key pair: %v", err)
	}
	return pair
}
