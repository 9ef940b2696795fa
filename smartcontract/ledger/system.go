package ledger

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// SystemError is a system program error, reported as a custom instruction error.
type SystemError struct {
	Code uint32
	Msg  string
}

func (e *SystemError) Error() string {
	return e.Msg
}

func (e *SystemError) CustomCode() uint32 {
	return e.Code
}

var (
	ErrAccountAlreadyInUse        = &SystemError{Code: 0, Msg: "an account with the same address already exists"}
	ErrResultWithNegativeLamports = &SystemError{Code: 1, Msg: "account does not have enough SOL to perform the operation"}
	ErrInvalidAccountDataLength   = &SystemError{Code: 3, Msg: "requested account data length exceeds the maximum"}
)

const (
	systemInstructionCreateAccount uint32 = 0
	systemInstructionAssign        uint32 = 1
	systemInstructionTransfer      uint32 = 2
	systemInstructionAllocate      uint32 = 8
)

// systemProgram implements the subset of the native system program used for account creation
// and lamport transfers.
type systemProgram struct{}

func (systemProgram) Process(ctx InvokeContext, data []byte) error {
	dec := bin.NewBinDecoder(data)
	kind, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return ErrInvalidInstructionData
	}
	accounts := ctx.Accounts()

	switch kind {
	case systemInstructionCreateAccount:
		lamports, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return ErrInvalidInstructionData
		}
		space, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return ErrInvalidInstructionData
		}
		ownerBytes, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return ErrInvalidInstructionData
		}
		if len(accounts) < 2 {
			return ErrNotEnoughAccountKeys
		}
		return createAccount(ctx, accounts[0], accounts[1], lamports, space, solana.PublicKeyFromBytes(ownerBytes))
	case systemInstructionAssign:
		ownerBytes, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return ErrInvalidInstructionData
		}
		if len(accounts) < 1 {
			return ErrNotEnoughAccountKeys
		}
		if !accounts[0].IsSigner {
			return ErrMissingRequiredSignature
		}
		accounts[0].Owner = solana.PublicKeyFromBytes(ownerBytes)
		return nil
	case systemInstructionTransfer:
		lamports, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return ErrInvalidInstructionData
		}
		if len(accounts) < 2 {
			return ErrNotEnoughAccountKeys
		}
		return transfer(ctx, accounts[0], accounts[1], lamports)
	case systemInstructionAllocate:
		space, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return ErrInvalidInstructionData
		}
		if len(accounts) < 1 {
			return ErrNotEnoughAccountKeys
		}
		return allocate(ctx, accounts[0], space)
	default:
		return fmt.Errorf("%w: unsupported system instruction %d", ErrInvalidInstructionData, kind)
	}
}

func createAccount(ctx InvokeContext, from, to *AccountInfo, lamports, space uint64, owner solana.PublicKey) error {
	if !to.IsEmpty() {
		ctx.Log("Create Account: account %s already in use", to.Key)
		return ErrAccountAlreadyInUse
	}
	if space > MaxPermittedDataLength {
		return ErrInvalidAccountDataLength
	}
	if !from.IsSigner || !to.IsSigner {
		return ErrMissingRequiredSignature
	}
	if from.Lamports < lamports {
		ctx.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return ErrResultWithNegativeLamports
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	to.Data = make([]byte, space)
	to.Owner = owner
	return nil
}

func allocate(ctx InvokeContext, account *AccountInfo, space uint64) error {
	if !account.IsSigner {
		return ErrMissingRequiredSignature
	}
	if len(account.Data) > 0 || !account.Owner.Equals(solana.SystemProgramID) {
		ctx.Log("Allocate: account %s already in use", account.Key)
		return ErrAccountAlreadyInUse
	}
	if space > MaxPermittedDataLength {
		return ErrInvalidAccountDataLength
	}
	account.Data = make([]byte, space)
	return nil
}

func transfer(ctx InvokeContext, from, to *AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return ErrMissingRequiredSignature
	}
	if len(from.Data) > 0 {
		ctx.Log("Transfer: `from` must not carry data")
		return ErrInvalidInstructionData
	}
	if from.Lamports < lamports {
		ctx.Log("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return ErrResultWithNegativeLamports
	}
	if to.Lamports+lamports < to.Lamports {
		return ErrArithmeticOverflow
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
