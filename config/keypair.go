package config

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrNoSigner          = errors.New("no private key or keypair path given")
)

// LoadSigner returns the base58 encoded secret when one is set, otherwise the solana-keygen
// file at keypairPath.
func LoadSigner(encoded, keypairPath string) (solana.PrivateKey, error) {
	if encoded != "" {
		raw, err := base58.Decode(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
		}
		if len(raw) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPrivateKey, len(raw), ed25519.PrivateKeySize)
		}
		return solana.PrivateKey(raw), nil
	}
	if keypairPath == "" {
		return nil, ErrNoSigner
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", keypairPath, err)
	}
	return key, nil
}
