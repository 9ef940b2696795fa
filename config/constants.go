package config

const (
	// ProgramID is the address the crowdfunding program is deployed at on every cluster.
	ProgramID = "9h3Hsm8ypVtvQxyavYjqR87g4eyhixBHX3uvTLCpAAuK"

	MainnetRPCURL  = "https://api.mainnet-beta.solana.com"
	TestnetRPCURL  = "https://api.testnet.solana.com"
	DevnetRPCURL   = "https://api.devnet.solana.com"
	LocalnetRPCURL = "http://127.0.0.1:8899"
)
