package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DeriveStatePDA derives the address of the singleton GlobalState account.
// Seeds: ["campaign_state"]
func DeriveStatePDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress([][]byte{[]byte(StateSeed)}, programID)
}

// DeriveCampaignPDA derives the address of the campaign created by owner with the given title.
// Seeds: ["campaign", owner, title]
func DeriveCampaignPDA(programID solana.PublicKey, owner solana.PublicKey, title string) (solana.PublicKey, uint8, error) {
	if title == "" {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: title is required", ErrInvalidSeeds)
	}
	seeds := [][]byte{
		[]byte(CampaignSeed),
		owner[:],
		[]byte(title),
	}
	return findProgramAddress(seeds, programID)
}

func findProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return solana.PublicKey{}, 0, ErrSeedTooLong
		}
	}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	return addr, bump, nil
}
