package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/wipecert/internal/constants"
	"github.com/mrz1836/wipecert/internal/crypto/rsapss"
	"github.com/mrz1836/wipecert/internal/errors"
)

type keysGenerateOptions struct {
	dir  string
	bits int
}

// AddKeysCommand adds the keys command and its subcommands.
func AddKeysCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the certificate signing keys",
	}
	cmd.AddCommand(newKeysGenerateCmd())
	root.AddCommand(cmd)
}

func newKeysGenerateCmd() *cobra.Command {
	opts := &keysGenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create a new RSA signing key pair",
		Long: `Create a new RSA key pair for signing certificates.

The private key is written with mode 0600 and the public key with 0644.
Existing keys are never overwritten. Share the public key with whoever
needs to verify your certificates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeysGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory for the key pair (default: directory of signing.private_key)")
	cmd.Flags().IntVar(&opts.bits, "bits", 0, fmt.Sprintf("RSA modulus size, at least %d (default from config)", constants.MinKeyBits))

	return cmd
}

func runKeysGenerate(cmd *cobra.Command, opts *keysGenerateOptions) error {
	ctx := cmd.Context()
	if err := ctx.Err(); err != nil {
		return err
	}
	out, format := outputFor(cmd)
	cfg := configFromContext(ctx)

	dir := opts.dir
	if dir == "" {
		dir = filepath.Dir(cfg.Signing.PrivateKey)
	}
	bits := cfg.Signing.KeyBits
	if opts.bits != 0 {
		bits = opts.bits
	}

	pair, err := rsapss.Generate(dir, bits)
	if err != nil {
		return errors.Wrap(err, "failed to generate key pair")
	}
	logger := GetLogger()
	logger.Info().
		Str("private_key", pair.PrivateKeyPath).
		Str("public_key", pair.PublicKeyPath).
		Int("bits", pair.Bits).
		Msg("key pair generated")

	if format == OutputJSON {
		return out.JSON(pair)
	}

	out.Success(fmt.Sprintf("Generated %d-bit RSA key pair", pair.Bits))
	out.Info("Private key: " + pair.PrivateKeyPath)
	out.Info("Public key:  " + pair.PublicKeyPath)
	if pair.PrivateKeyPath != cfg.Signing.PrivateKey {
		out.Warning("signing.private_key points to " + cfg.Signing.PrivateKey + "; update it to sign with the new key")
	}
	return nil
}
