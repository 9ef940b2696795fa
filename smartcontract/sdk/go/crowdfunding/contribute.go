package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

type ContributeInstructionConfig struct {
	Campaign    solana.PublicKey
	Contributor solana.PublicKey
	Amount      uint64
}

func (c *ContributeInstructionConfig) Validate() error {
	if c.Campaign.IsZero() {
		return fmt.Errorf("campaign public key is required")
	}
	if c.Contributor.IsZero() {
		return fmt.Errorf("contributor public key is required")
	}
	return nil
}

func BuildContributeInstruction(programID solana.PublicKey, config ContributeInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := program.EncodeContributeData(program.ContributeArgs{Amount: config.Amount})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Campaign, IsSigner: false, IsWritable: true},
		{PublicKey: config.Contributor, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
