package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
)

func requireAccounts(accounts []*ledger.AccountInfo, n int) error {
	if len(accounts) < n {
		return fmt.Errorf("%w: got %d, want %d", ErrNotEnoughAccountKeys, len(accounts), n)
	}
	return nil
}

func requireSigner(account *ledger.AccountInfo) error {
	if !account.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, account.Key)
	}
	return nil
}

func requireWritable(account *ledger.AccountInfo) error {
	if !account.IsWritable {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, account.Key)
	}
	return nil
}

func requireSystemProgram(account *ledger.AccountInfo) error {
	if !account.Key.Equals(solana.SystemProgramID) {
		return fmt.Errorf("%w: got %s", ErrInvalidProgramAccount, account.Key)
	}
	return nil
}

func requireAddress(account *ledger.AccountInfo, want solana.PublicKey) error {
	if !account.Key.Equals(want) {
		return fmt.Errorf("%w: got %s, want %s", ErrInvalidSeeds, account.Key, want)
	}
	return nil
}

func exists(account *ledger.AccountInfo) bool {
	return account.Lamports > 0 || len(account.Data) > 0
}

func loadCampaign(ctx ledger.InvokeContext, account *ledger.AccountInfo) (*Campaign, error) {
	if !exists(account) {
		return nil, fmt.Errorf("%w: campaign %s", ErrAccountNotFound, account.Key)
	}
	if !account.Owner.Equals(ctx.ProgramID()) {
		return nil, fmt.Errorf("%w: campaign %s is owned by %s", ErrInvalidAccountOwner, account.Key, account.Owner)
	}
	if len(account.Data) != CampaignAccountSize {
		return nil, fmt.Errorf("%w: campaign account is %d bytes", ErrCorruptData, len(account.Data))
	}
	return DeserializeCampaign(account.Data)
}

func loadGlobalState(ctx ledger.InvokeContext, account *ledger.AccountInfo) (*GlobalState, error) {
	if !exists(account) {
		return nil, fmt.Errorf("%w: global state %s is not initialized", ErrAccountNotFound, account.Key)
	}
	if !account.Owner.Equals(ctx.ProgramID()) {
		return nil, fmt.Errorf("%w: global state is owned by %s", ErrInvalidAccountOwner, account.Owner)
	}
	return DeserializeGlobalState(account.Data)
}

// createProgramAccount allocates a program-owned account at a PDA, funded to its rent-exempt
// minimum by payer. An address that was pre-funded by a plain transfer is topped up and
// claimed rather than rejected.
func createProgramAccount(ctx ledger.InvokeContext, payer, target *ledger.AccountInfo, space uint64, seeds [][]byte) error {
	required := ctx.MinimumBalance(space)
	programID := ctx.ProgramID()

	if target.Lamports == 0 {
		ix := system.NewCreateAccountInstruction(required, space, programID, payer.Key, target.Key).Build()
		return ctx.Invoke(ix, seeds)
	}

	if topUp := SpendableBalance(required, target.Lamports); topUp > 0 {
		ix := system.NewTransferInstruction(topUp, payer.Key, target.Key).Build()
		if err := ctx.Invoke(ix); err != nil {
			return err
		}
	}
	if err := ctx.Invoke(system.NewAllocateInstruction(space, target.Key).Build(), seeds); err != nil {
		return err
	}
	return ctx.Invoke(system.NewAssignInstruction(programID, target.Key).Build(), seeds)
}

func transferFrom(ctx ledger.InvokeContext, from, to *ledger.AccountInfo, lamports uint64) error {
	if lamports == 0 {
		return nil
	}
	return ctx.Invoke(system.NewTransferInstruction(lamports, from.Key, to.Key).Build())
}
