package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

type CreateCampaignInstructionConfig struct {
	Owner       solana.PublicKey
	Title       string
	Description string
	// Deadline is a unix timestamp in seconds.
	Deadline int64
}

func (c *CreateCampaignInstructionConfig) Validate() error {
	if c.Owner.IsZero() {
		return fmt.Errorf("owner public key is required")
	}
	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(c.Title) > MaxSeedLength {
		return fmt.Errorf("title length %d exceeds max %d", len(c.Title), MaxSeedLength)
	}
	if len(c.Description) > MaxDescriptionLength {
		return fmt.Errorf("description length %d exceeds max %d", len(c.Description), MaxDescriptionLength)
	}
	if c.Deadline <= 0 {
		return fmt.Errorf("deadline is required")
	}
	return nil
}

func BuildCreateCampaignInstruction(programID solana.PublicKey, config CreateCampaignInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := program.EncodeCreateCampaignData(program.CreateCampaignArgs{
		Title:       config.Title,
		Description: config.Description,
		Deadline:    config.Deadline,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	campaignPDA, _, err := DeriveCampaignPDA(programID, config.Owner, config.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to derive campaign PDA: %w", err)
	}
	statePDA, _, err := DeriveStatePDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: campaignPDA, IsSigner: false, IsWritable: true},
		{PublicKey: statePDA, IsSigner: false, IsWritable: true},
		{PublicKey: config.Owner, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
