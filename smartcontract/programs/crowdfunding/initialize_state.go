package crowdfunding

import (
	"fmt"

	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
)

// initializeState creates the GlobalState account with an empty campaign list.
//
// Accounts:
//  0. [writable] global state PDA
//  1. [writable, signer] payer
//  2. [] system program
func (p *Program) initializeState(ctx ledger.InvokeContext) error {
	accounts := ctx.Accounts()
	if err := requireAccounts(accounts, 3); err != nil {
		return err
	}
	state, payer, systemProgram := accounts[0], accounts[1], accounts[2]

	statePDA, bump, err := DeriveStatePDA(ctx.ProgramID())
	if err != nil {
		return err
	}
	if err := requireAddress(state, statePDA); err != nil {
		return err
	}
	if err := requireWritable(state); err != nil {
		return err
	}
	if err := requireSigner(payer); err != nil {
		return err
	}
	if err := requireWritable(payer); err != nil {
		return err
	}
	if err := requireSystemProgram(systemProgram); err != nil {
		return err
	}

	if state.Owner.Equals(ctx.ProgramID()) {
		return ErrAlreadyInitialized
	}

	if err := createProgramAccount(ctx, payer, state, GlobalStateBaseSize, [][]byte{[]byte(StateSeed), {bump}}); err != nil {
		return fmt.Errorf("failed to create global state account: %w", err)
	}

	data, err := encodeAccount(&GlobalState{}, GlobalStateBaseSize)
	if err != nil {
		return err
	}
	copy(state.Data, data)
	return nil
}
