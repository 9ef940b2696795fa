package crowdfunding

import (
	"errors"
	"fmt"

	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
)

// Program is the crowdfunding program. It is registered with a ledger.Bank under its program
// id and processes the initialize_state, create_campaign, contribute and withdraw
// instructions.
type Program struct {
	compactOnWithdraw bool
}

type Option func(*Program)

// WithCompactOnWithdraw removes a campaign's address from the global state when it is
// withdrawn, shrinking the state account and refunding the freed rent to the owner. By default
// the entry is left in place and readers must existence-check every address.
func WithCompactOnWithdraw() Option {
	return func(p *Program) {
		p.compactOnWithdraw = true
	}
}

func New(opts ...Option) *Program {
	p := &Program{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process implements ledger.Program.
func (p *Program) Process(ctx ledger.InvokeContext, data []byte) error {
	err := p.dispatch(ctx, data)
	if err != nil {
		var perr *ProgramError
		if errors.As(err, &perr) {
			ctx.Log("Error Code: %s. Error Number: %d. Error Message: %s.", perr.Name, perr.Code, perr.Msg)
		}
	}
	return err
}

func (p *Program) dispatch(ctx ledger.InvokeContext, data []byte) error {
	disc, rest, err := splitInstruction(data)
	if err != nil {
		return err
	}

	switch disc {
	case InitializeStateDiscriminator:
		ctx.Log("Instruction: InitializeState")
		return p.initializeState(ctx)
	case CreateCampaignDiscriminator:
		ctx.Log("Instruction: CreateCampaign")
		var args CreateCampaignArgs
		if err := decodeArgs(rest, &args); err != nil {
			return err
		}
		return p.createCampaign(ctx, args)
	case ContributeDiscriminator:
		ctx.Log("Instruction: Contribute")
		var args ContributeArgs
		if err := decodeArgs(rest, &args); err != nil {
			return err
		}
		return p.contribute(ctx, args)
	case WithdrawDiscriminator:
		ctx.Log("Instruction: Withdraw")
		return p.withdraw(ctx)
	default:
		return fmt.Errorf("%w: unknown discriminator %x", ErrInvalidInstruction, disc[:])
	}
}
