// Package crypto defines the signing interfaces the certificate subsystem
// depends on. Backends live in subpackages.
package crypto

import "context"

// Verifier checks signatures over a message.
type Verifier interface {
	// Verify returns nil if signature is valid for message.
	// Implementations wrap errors.ErrInvalidSignature for a cryptographic mismatch.
	Verify(ctx context.Context, message, signature []byte) error
}

// Signer produces signatures over a message.
// Probabilistic schemes are allowed: signing the same message twice may yield
// different signatures, all of which verify.
type Signer interface {
	Verifier

	// Sign returns the raw signature bytes for message.
	Sign(ctx context.Context, message []byte) ([]byte, error)
}
