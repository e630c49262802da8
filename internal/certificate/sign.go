package certificate

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mrz1836/wipecert/internal/crypto"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// Sign signs the canonical form of r and returns a copy carrying the
// base64 signature. A record is signed exactly once.
func Sign(ctx context.Context, r Record, signer crypto.Signer) (Record, error) {
	if r.Signed() {
		return Record{}, fmt.Errorf("%w: record %s is already signed", wcerrors.ErrInvalidArgument, r.ReportID)
	}

	sig, err := signer.Sign(ctx, Canonicalize(r))
	if err != nil {
		return Record{}, wcerrors.Wrapf(err, "failed to sign %s", r.ReportID)
	}

	r.Signature = base64.StdEncoding.EncodeToString(sig)
	return r, nil
}
