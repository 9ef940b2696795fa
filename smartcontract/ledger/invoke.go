package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const maxInvokeDepth = 4

// Program is a natively implemented on-chain program.
type Program interface {
	Process(ctx InvokeContext, data []byte) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx InvokeContext, data []byte) error

func (f ProgramFunc) Process(ctx InvokeContext, data []byte) error {
	return f(ctx, data)
}

// InvokeContext is the runtime surface available to a program while it processes one
// instruction.
type InvokeContext interface {
	// ProgramID is the id of the executing program.
	ProgramID() solana.PublicKey
	// Accounts are the instruction accounts in the order the instruction listed them.
	Accounts() []*AccountInfo
	// UnixTimestamp is the chain time in seconds.
	UnixTimestamp() int64
	// MinimumBalance is the rent-exempt minimum for an account with the given data size.
	MinimumBalance(size uint64) uint64
	// Invoke executes a cross-program invocation. Each signer seed set, bump included, lets the
	// executing program sign for the address derived from it.
	Invoke(ix solana.Instruction, signerSeeds ...[][]byte) error
	// Log appends a "Program log:" line to the transaction logs.
	Log(format string, args ...any)
}

type invokeContext struct {
	bank      *Bank
	programID solana.PublicKey
	accounts  []*AccountInfo
	depth     int
	now       int64
	logs      *[]string
	pre       map[solana.PublicKey]accountSnapshot
}

func (c *invokeContext) ProgramID() solana.PublicKey {
	return c.programID
}

func (c *invokeContext) Accounts() []*AccountInfo {
	return c.accounts
}

func (c *invokeContext) UnixTimestamp() int64 {
	return c.now
}

func (c *invokeContext) MinimumBalance(size uint64) uint64 {
	return c.bank.rent(size)
}

func (c *invokeContext) Log(format string, args ...any) {
	*c.logs = append(*c.logs, "Program log: "+fmt.Sprintf(format, args...))
}

func (c *invokeContext) Invoke(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if c.depth >= maxInvokeDepth {
		return ErrCallDepth
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}

	pdaSigners := make(map[solana.PublicKey]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, c.programID)
		if err != nil {
			return ErrPrivilegeEscalation
		}
		pdaSigners[addr] = struct{}{}
	}

	metas := ix.Accounts()
	infos := make([]*AccountInfo, 0, len(metas))
	for _, meta := range metas {
		caller := c.lookup(meta.PublicKey)
		if caller == nil {
			return ErrMissingAccount
		}
		if meta.IsWritable && !caller.IsWritable {
			return ErrPrivilegeEscalation
		}
		if meta.IsSigner && !caller.IsSigner {
			if _, ok := pdaSigners[meta.PublicKey]; !ok {
				return ErrPrivilegeEscalation
			}
		}
		infos = append(infos, &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Account:    caller.Account,
		})
	}

	program, ok := c.bank.program(ix.ProgramID())
	if !ok {
		return ErrUnsupportedProgramID
	}
	if err := c.bank.invoke(program, ix.ProgramID(), infos, data, c.depth+1, c.now, c.logs); err != nil {
		return err
	}

	// The callee has been verified against its own privileges; the caller is only accountable
	// for changes made after this point.
	for _, info := range infos {
		c.pre[info.Key] = snapshotOf(info.Account)
	}
	return nil
}

func (c *invokeContext) lookup(key solana.PublicKey) *AccountInfo {
	for _, info := range c.accounts {
		if info.Key.Equals(key) {
			return info
		}
	}
	return nil
}

// invoke runs a program over the given accounts and verifies the changes it made.
func (b *Bank) invoke(program Program, programID solana.PublicKey, accounts []*AccountInfo, data []byte, depth int, now int64, logs *[]string) error {
	ctx := &invokeContext{
		bank:      b,
		programID: programID,
		accounts:  accounts,
		depth:     depth,
		now:       now,
		logs:      logs,
		pre:       make(map[solana.PublicKey]accountSnapshot, len(accounts)),
	}
	for _, info := range accounts {
		if _, ok := ctx.pre[info.Key]; !ok {
			ctx.pre[info.Key] = snapshotOf(info.Account)
		}
	}

	*logs = append(*logs, fmt.Sprintf("Program %s invoke [%d]", programID, depth))
	err := program.Process(ctx, data)
	if err == nil {
		err = verifyInstruction(programID, accounts, ctx.pre)
	}
	if err != nil {
		*logs = append(*logs, fmt.Sprintf("Program %s failed: %s", programID, instructionErrorText(err)))
		return err
	}
	*logs = append(*logs, fmt.Sprintf("Program %s success", programID))
	return nil
}

// verifyInstruction enforces the runtime ownership rules on every account the instruction
// touched.
func verifyInstruction(programID solana.PublicKey, accounts []*AccountInfo, pre map[solana.PublicKey]accountSnapshot) error {
	var preSum, postSum uint64
	seen := make(map[solana.PublicKey]struct{}, len(accounts))
	writable := make(map[solana.PublicKey]bool, len(accounts))
	for _, info := range accounts {
		writable[info.Key] = writable[info.Key] || info.IsWritable
	}

	for _, info := range accounts {
		if _, ok := seen[info.Key]; ok {
			continue
		}
		seen[info.Key] = struct{}{}
		before := pre[info.Key]
		preSum += before.lamports
		postSum += info.Lamports

		if len(info.Data) > MaxPermittedDataLength {
			return ErrInvalidRealloc
		}
		lamportsChanged := before.lamports != info.Lamports
		dataChanged := before.dataChanged(info.Account)
		ownerChanged := !before.owner.Equals(info.Owner)

		if !writable[info.Key] {
			if lamportsChanged {
				return ErrReadonlyLamportChange
			}
			if dataChanged {
				return ErrReadonlyDataModified
			}
			if ownerChanged {
				return ErrModifiedProgramID
			}
			continue
		}
		if ownerChanged && !before.owner.Equals(programID) {
			return ErrModifiedProgramID
		}
		if !before.owner.Equals(programID) {
			if info.Lamports < before.lamports {
				return ErrExternalAccountLamportSpend
			}
			if dataChanged {
				return ErrExternalAccountDataModified
			}
		}
	}
	if preSum != postSum {
		return ErrUnbalancedInstruction
	}
	return nil
}
