package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

type WithdrawInstructionConfig struct {
	Campaign solana.PublicKey
	Owner    solana.PublicKey
}

func (c *WithdrawInstructionConfig) Validate() error {
	if c.Campaign.IsZero() {
		return fmt.Errorf("campaign public key is required")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("owner public key is required")
	}
	return nil
}

func BuildWithdrawInstruction(programID solana.PublicKey, config WithdrawInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	statePDA, _, err := DeriveStatePDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Campaign, IsSigner: false, IsWritable: true},
		{PublicKey: config.Owner, IsSigner: true, IsWritable: true},
		{PublicKey: statePDA, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     program.EncodeWithdrawData(),
	}, nil
}
