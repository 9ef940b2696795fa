package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

type InitializeStateInstructionConfig struct {
	Payer solana.PublicKey
}

func (c *InitializeStateInstructionConfig) Validate() error {
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	return nil
}

func BuildInitializeStateInstruction(programID solana.PublicKey, config InitializeStateInstructionConfig) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	statePDA, _, err := DeriveStatePDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: statePDA, IsSigner: false, IsWritable: true},
		{PublicKey: config.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     program.EncodeInitializeStateData(),
	}, nil
}
