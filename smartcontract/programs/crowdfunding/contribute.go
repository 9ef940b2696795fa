package crowdfunding

import (
	"fmt"

	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
)

// contribute moves lamports from the contributor into an active campaign.
//
// Accounts:
//  0. [writable] campaign
//  1. [writable, signer] contributor
//  2. [] system program
func (p *Program) contribute(ctx ledger.InvokeContext, args ContributeArgs) error {
	accounts := ctx.Accounts()
	if err := requireAccounts(accounts, 3); err != nil {
		return err
	}
	campaignAccount, contributor, systemProgram := accounts[0], accounts[1], accounts[2]

	if err := requireSigner(contributor); err != nil {
		return err
	}
	if err := requireWritable(contributor); err != nil {
		return err
	}
	if err := requireSystemProgram(systemProgram); err != nil {
		return err
	}

	campaign, err := loadCampaign(ctx, campaignAccount)
	if err != nil {
		return err
	}
	if err := requireWritable(campaignAccount); err != nil {
		return err
	}
	campaignPDA, _, err := DeriveCampaignPDA(ctx.ProgramID(), campaign.Owner, campaign.Title)
	if err != nil {
		return err
	}
	if err := requireAddress(campaignAccount, campaignPDA); err != nil {
		return err
	}

	if now := ctx.UnixTimestamp(); now >= campaign.Deadline {
		return fmt.Errorf("%w: deadline %d, now %d", ErrCampaignExpired, campaign.Deadline, now)
	}
	if contributor.Lamports < args.Amount {
		return fmt.Errorf("%w: balance %d, amount %d", ErrInsufficientFunds, contributor.Lamports, args.Amount)
	}
	// The contributor is either drained or left rent-exempt.
	if remaining, floor := contributor.Lamports-args.Amount, ctx.MinimumBalance(uint64(len(contributor.Data))); remaining > 0 && remaining < floor {
		return fmt.Errorf("%w: balance %d, amount %d leaves %d below rent-exempt minimum %d", ErrInsufficientFunds, contributor.Lamports, args.Amount, remaining, floor)
	}
	total := campaign.TotalContribution + args.Amount
	if total < campaign.TotalContribution {
		return ErrOverflow
	}

	if err := transferFrom(ctx, contributor, campaignAccount, args.Amount); err != nil {
		return fmt.Errorf("failed to transfer contribution: %w", err)
	}

	campaign.TotalContribution = total
	data, err := encodeAccount(campaign, CampaignAccountSize)
	if err != nil {
		return err
	}
	copy(campaignAccount.Data, data)

	ctx.Log("Contributed %d lamports to %s, total %d", args.Amount, campaignAccount.Key, total)
	return nil
}
