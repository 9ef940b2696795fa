package crowdfunding

import (
	"github.com/gagliardetto/solana-go"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

// DeriveStatePDA derives the address of the global state account.
// Seeds: ["campaign_state"]
func DeriveStatePDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return program.DeriveStatePDA(programID)
}

// DeriveCampaignPDA derives the address of a campaign. Titles longer than MaxSeedLength bytes
// cannot be derived and fail with ErrSeedTooLong.
// Seeds: ["campaign", owner, title]
func DeriveCampaignPDA(programID, owner solana.PublicKey, title string) (solana.PublicKey, uint8, error) {
	return program.DeriveCampaignPDA(programID, owner, title)
}
