package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"

	// EnvRPCURL and EnvProgramID override the network defaults.
	EnvRPCURL    = "CROWDFUNDING_RPC_URL"
	EnvProgramID = "CROWDFUNDING_PROGRAM_ID"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
)

type NetworkConfig struct {
	Moniker   string
	RPCURL    string
	ProgramID solana.PublicKey
}

func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var config *NetworkConfig
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		config = &NetworkConfig{Moniker: EnvMainnetBeta, RPCURL: MainnetRPCURL}
	case EnvTestnet:
		config = &NetworkConfig{Moniker: EnvTestnet, RPCURL: TestnetRPCURL}
	case EnvDevnet:
		config = &NetworkConfig{Moniker: EnvDevnet, RPCURL: DevnetRPCURL}
	case EnvLocalnet:
		config = &NetworkConfig{Moniker: EnvLocalnet, RPCURL: LocalnetRPCURL}
	default:
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s, %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvTestnet, EnvDevnet, EnvLocalnet)
	}

	programID := ProgramID
	if override := os.Getenv(EnvProgramID); override != "" {
		programID = override
	}
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program ID: %w", err)
	}
	config.ProgramID = pk

	if rpcURL := os.Getenv(EnvRPCURL); rpcURL != "" {
		config.RPCURL = rpcURL
	}

	return config, nil
}
