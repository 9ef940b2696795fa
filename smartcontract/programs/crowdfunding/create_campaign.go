package crowdfunding

import (
	"fmt"

	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
)

// createCampaign allocates a campaign at its (owner, title) PDA and registers it in the
// global state.
//
// Accounts:
//  0. [writable] campaign PDA
//  1. [writable] global state PDA
//  2. [writable, signer] owner
//  3. [] system program
func (p *Program) createCampaign(ctx ledger.InvokeContext, args CreateCampaignArgs) error {
	accounts := ctx.Accounts()
	if err := requireAccounts(accounts, 4); err != nil {
		return err
	}
	campaignAccount, stateAccount, owner, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3]

	campaign := &Campaign{
		Owner:       owner.Key,
		Title:       args.Title,
		Description: args.Description,
		Deadline:    args.Deadline,
	}
	if err := campaign.Validate(); err != nil {
		return err
	}
	if now := ctx.UnixTimestamp(); args.Deadline <= now {
		return fmt.Errorf("%w: deadline %d, now %d", ErrDeadlineMustBeInFuture, args.Deadline, now)
	}

	if err := requireSigner(owner); err != nil {
		return err
	}
	if err := requireWritable(owner); err != nil {
		return err
	}
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
	campaignPDA, bump, err := DeriveCampaignPDA(ctx.ProgramID(), owner.Key, args.Title)
	if err != nil {
		return err
	}
	if err := requireAddress(campaignAccount, campaignPDA); err != nil {
		return err
	}
	if err := requireWritable(campaignAccount); err != nil {
		return err
	}

	state, err := loadGlobalState(ctx, stateAccount)
	if err != nil {
		return err
	}
	if campaignAccount.Owner.Equals(ctx.ProgramID()) {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyExists, campaignAccount.Key)
	}
	// A withdrawn campaign stays registered unless compaction removed it, and its address
	// stays closed for good.
	if state.contains(campaignAccount.Key) {
		return fmt.Errorf("%w: %s is registered as a closed campaign", ErrAccountAlreadyExists, campaignAccount.Key)
	}
	if len(state.Campaigns) >= MaxCampaigns {
		return fmt.Errorf("%w: global state holds %d campaigns", ErrSizeExceeded, len(state.Campaigns))
	}

	newStateSize := GlobalStateSize(len(state.Campaigns) + 1)
	stateTopUp := SpendableBalance(ctx.MinimumBalance(uint64(newStateSize)), stateAccount.Lamports)
	campaignRent := SpendableBalance(ctx.MinimumBalance(CampaignAccountSize), campaignAccount.Lamports)
	if owner.Lamports < campaignRent || owner.Lamports-campaignRent < stateTopUp {
		return fmt.Errorf("%w: owner holds %d lamports, needs %d", ErrInsufficientFunds, owner.Lamports, campaignRent+stateTopUp)
	}

	seeds := [][]byte{[]byte(CampaignSeed), owner.Key[:], []byte(args.Title), {bump}}
	if err := createProgramAccount(ctx, owner, campaignAccount, CampaignAccountSize, seeds); err != nil {
		return fmt.Errorf("failed to create campaign account: %w", err)
	}
	data, err := encodeAccount(campaign, CampaignAccountSize)
	if err != nil {
		return err
	}
	copy(campaignAccount.Data, data)

	state.Campaigns = append(state.Campaigns, campaignAccount.Key)
	if err := transferFrom(ctx, owner, stateAccount, stateTopUp); err != nil {
		return fmt.Errorf("failed to fund global state growth: %w", err)
	}
	if err := writeGlobalState(stateAccount, state); err != nil {
		return err
	}

	ctx.Log("Created campaign %s owned by %s, deadline %d", campaignAccount.Key, owner.Key, args.Deadline)
	return nil
}

// writeGlobalState resizes the state account to fit the list and stores it.
func writeGlobalState(account *ledger.AccountInfo, state *GlobalState) error {
	size := GlobalStateSize(len(state.Campaigns))
	data, err := encodeAccount(state, size)
	if err != nil {
		return err
	}
	if err := account.Realloc(size); err != nil {
		return fmt.Errorf("%w: %v", ErrSizeExceeded, err)
	}
	copy(account.Data, data)
	return nil
}
