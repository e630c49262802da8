// Package rsapss signs and verifies with RSA-PSS over SHA-256 using PEM keys.
//
// Signatures use the maximum salt length the key allows. Verification
// auto-detects the salt length, so signatures from other PSS implementations
// that used the maximum salt verify too.
package rsapss

import (
	"context"
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"

	wccrypto "github.com/mrz1836/wipecert/internal/crypto"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// Signer implements crypto.Signer with an RSA private key.
type Signer struct {
	priv *rsa.PrivateKey
	rand io.Reader
}

// NewSigner returns a Signer for priv.
func NewSigner(priv *rsa.PrivateKey) *Signer {
	return &Signer{priv: priv, rand: rand.Reader}
}

// Sign returns an RSA-PSS signature of SHA-256(message).
func (s *Signer) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPSS(s.rand, s.priv, stdcrypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
		Hash:       stdcrypto.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("rsa-pss sign: %w", err)
	}
	return sig, nil
}

// Verify checks signature against message with the signer's public half.
func (s *Signer) Verify(ctx context.Context, message, signature []byte) error {
	return NewVerifier(&s.priv.PublicKey).Verify(ctx, message, signature)
}

// PublicKey returns the public half of the signing key.
func (s *Signer) PublicKey() *rsa.PublicKey {
	return &s.priv.PublicKey
}

// Verifier implements crypto.Verifier with an RSA public key.
type Verifier struct {
	pub *rsa.PublicKey
}

// NewVerifier returns a Verifier for pub.
func NewVerifier(pub *rsa.PublicKey) *Verifier {
	return &Verifier{pub: pub}
}

// Verify returns errors.ErrInvalidSignature when the signature does not match.
func (v *Verifier) Verify(ctx context.Context, message, signature []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	digest := sha256.Sum256(message)
	err := rsa.VerifyPSS(v.pub, stdcrypto.SHA256, digest[:], signature, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
		Hash:       stdcrypto.SHA256,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", wcerrors.ErrInvalidSignature, err)
	}
	return nil
}

var (
	_ wccrypto.Signer   = (*Signer)(nil)
	_ wccrypto.Verifier = (*Verifier)(nil)
)
