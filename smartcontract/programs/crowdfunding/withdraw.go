package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
)

// withdraw sweeps the whole campaign balance, rent reserve included, to its owner and closes
// the account.
//
// Accounts:
//  0. [writable] campaign
//  1. [writable, signer] owner
//  2. [writable] global state PDA
//  3. [] system program
func (p *Program) withdraw(ctx ledger.InvokeContext) error {
	accounts := ctx.Accounts()
	if err := requireAccounts(accounts, 4); err != nil {
		return err
	}
	campaignAccount, owner, stateAccount, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3]

	if err := requireSystemProgram(systemProgram); err != nil {
		return err
	}
	statePDA, _, err := DeriveStatePDA(ctx.ProgramID())
	if err != nil {
		return err
	}
	if err := requireAddress(stateAccount, statePDA); err != nil {
		return err
	}
	if err := requireWritable(stateAccount); err != nil {
		return err
	}

	campaign, err := loadCampaign(ctx, campaignAccount)
	if err != nil {
		return err
	}
	if !owner.Key.Equals(campaign.Owner) {
		return fmt.Errorf("%w: %s is not the owner of %s", ErrUnauthorized, owner.Key, campaignAccount.Key)
	}
	if err := requireSigner(owner); err != nil {
		return err
	}
	if err := requireWritable(owner); err != nil {
		return err
	}
	if err := requireWritable(campaignAccount); err != nil {
		return err
	}

	if now := ctx.UnixTimestamp(); now < campaign.Deadline {
		return fmt.Errorf("%w: deadline %d, now %d", ErrDeadlineNotReached, campaign.Deadline, now)
	}

	swept := campaignAccount.Lamports
	if owner.Lamports+swept < owner.Lamports {
		return ErrOverflow
	}
	owner.Lamports += swept
	campaignAccount.Lamports = 0
	if err := campaignAccount.Realloc(0); err != nil {
		return err
	}
	campaignAccount.Owner = solana.SystemProgramID

	if p.compactOnWithdraw {
		if err := p.removeFromState(ctx, stateAccount, owner, campaignAccount.Key); err != nil {
			return err
		}
	}

	ctx.Log("Withdrew %d lamports from %s to %s", swept, campaignAccount.Key, owner.Key)
	return nil
}

// removeFromState drops a campaign address from the global state and refunds the rent the
// smaller account no longer needs.
func (p *Program) removeFromState(ctx ledger.InvokeContext, stateAccount, owner *ledger.AccountInfo, campaign solana.PublicKey) error {
	state, err := loadGlobalState(ctx, stateAccount)
	if err != nil {
		return err
	}
	kept := state.Campaigns[:0]
	for _, key := range state.Campaigns {
		if !key.Equals(campaign) {
			kept = append(kept, key)
		}
	}
	if len(kept) == len(state.Campaigns) {
		return nil
	}
	state.Campaigns = kept
	if err := writeGlobalState(stateAccount, state); err != nil {
		return err
	}

	refund := SpendableBalance(stateAccount.Lamports, ctx.MinimumBalance(uint64(len(stateAccount.Data))))
	stateAccount.Lamports -= refund
	owner.Lamports += refund
	return nil
}
