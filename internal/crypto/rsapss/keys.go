package rsapss

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrz1836/wipecert/internal/constants"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// generateKey is swapped in tests to avoid slow key generation.
//
//nolint:gochecknoglobals // test seam
var generateKey = func(r io.Reader, bits int) (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(r, bits)
}

// ParsePrivateKeyPEM decodes a PKCS#1 or PKCS#8 RSA private key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", wcerrors.ErrInvalidKey)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", wcerrors.ErrInvalidKey, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is %T, not RSA", wcerrors.ErrInvalidKey, parsed)
	}
	return key, nil
}

// ParsePublicKeyPEM decodes a PKIX or PKCS#1 RSA public key.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", wcerrors.ErrInvalidKey)
	}

	if parsed, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: public key is %T, not RSA", wcerrors.ErrInvalidKey, parsed)
		}
		return key, nil
	}

	key, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", wcerrors.ErrInvalidKey, err)
	}
	return key, nil
}

// LoadVerifier reads a PEM public key from path.
func LoadVerifier(path string) (*Verifier, error) {
	data, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	pub, err := ParsePublicKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewVerifier(pub), nil
}

// KeyManager loads and caches the signing key from a configured path.
type KeyManager struct {
	keyPath string
	mu      sync.RWMutex
	priv    *rsa.PrivateKey
}

// NewKeyManager creates a KeyManager for the PEM private key at keyPath.
func NewKeyManager(keyPath string) *KeyManager {
	return &KeyManager{keyPath: keyPath}
}

// Path returns the private key path.
func (km *KeyManager) Path() string {
	return km.keyPath
}

// Exists reports whether the private key file exists.
func (km *KeyManager) Exists() bool {
	_, err := os.Stat(km.keyPath)
	return err == nil
}

// Load reads and parses the private key. Later calls reuse the cached key.
func (km *KeyManager) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if km.priv != nil {
		return nil
	}

	data, err := readKeyFile(km.keyPath)
	if err != nil {
		return err
	}

	priv, err := ParsePrivateKeyPEM(data)
	if err != nil {
		return fmt.Errorf("%s: %w", km.keyPath, err)
	}
	if priv.N.BitLen() < constants.MinKeyBits {
		return fmt.Errorf("%w: %d-bit key is below the %d-bit minimum", wcerrors.ErrInvalidKey, priv.N.BitLen(), constants.MinKeyBits)
	}

	km.priv = priv
	return nil
}

// NewSigner returns a Signer for the loaded key, loading it first if needed.
func (km *KeyManager) NewSigner(ctx context.Context) (*Signer, error) {
	if err := km.Load(ctx); err != nil {
		return nil, err
	}

	km.mu.RLock()
	defer km.mu.RUnlock()
	return NewSigner(km.priv), nil
}

// KeyPair holds the paths written by Generate.
type KeyPair struct {
	PrivateKeyPath string `json:"private_key"`
	PublicKeyPath  string `json:"public_key"`
	Bits           int    `json:"bits"`
}

// Generate creates a new RSA key pair in dir: a PKCS#8 private key (0600)
// and a PKIX public key (0644). Existing keys are never overwritten.
func Generate(dir string, bits int) (*KeyPair, error) {
	if bits < constants.MinKeyBits {
		return nil, fmt.Errorf("%w: %d bits is below the %d-bit minimum", wcerrors.ErrInvalidArgument, bits, constants.MinKeyBits)
	}

	pair := &KeyPair{
		PrivateKeyPath: filepath.Join(dir, constants.PrivateKeyFileName),
		PublicKeyPath:  filepath.Join(dir, constants.PublicKeyFileName),
		Bits:           bits,
	}
	for _, p := range []string{pair.PrivateKeyPath, pair.PublicKeyPath} {
		if _, err := os.Stat(p); err == nil {
			return nil, fmt.Errorf("%w: %s", wcerrors.ErrKeyExists, p)
		}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}

	priv, err := generateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generating rsa key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("encoding private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	if err := writeExclusive(pair.PrivateKeyPath, privPEM, 0o600); err != nil {
		return nil, err
	}
	if err := writeExclusive(pair.PublicKeyPath, pubPEM, 0o644); err != nil { //nolint:gosec // public key is meant to be shared
		_ = os.Remove(pair.PrivateKeyPath)
		return nil, err
	}

	return pair, nil
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // key path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", wcerrors.ErrKeyNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading key %s: %w", path, err)
	}
	return data, nil
}

// writeExclusive creates path with O_EXCL so a concurrent writer cannot be clobbered.
func writeExclusive(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm) //nolint:gosec // path built from the key directory
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", wcerrors.ErrKeyExists, path)
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
