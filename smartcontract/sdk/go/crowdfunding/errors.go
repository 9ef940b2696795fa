package crowdfunding

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

// Program errors. Failed transactions are mapped back to these values, so errors.Is works the
// same way on both sides of the RPC boundary.
var (
	ErrDeadlineMustBeInFuture       = program.ErrDeadlineMustBeInFuture
	ErrCampaignExpired              = program.ErrCampaignExpired
	ErrDeadlineNotReached           = program.ErrDeadlineNotReached
	ErrOverflow                     = program.ErrOverflow
	ErrInsufficientFunds            = program.ErrInsufficientFunds
	ErrUnauthorized                 = program.ErrUnauthorized
	ErrAlreadyInitialized           = program.ErrAlreadyInitialized
	ErrAccountAlreadyExists         = program.ErrAccountAlreadyExists
	ErrAccountNotFound              = program.ErrAccountNotFound
	ErrSizeExceeded                 = program.ErrSizeExceeded
	ErrCorruptData                  = program.ErrCorruptData
	ErrAccountDiscriminatorMismatch = program.ErrAccountDiscriminatorMismatch
	ErrInvalidSeeds                 = program.ErrInvalidSeeds
	ErrInvalidAccountOwner          = program.ErrInvalidAccountOwner
	ErrSeedTooLong                  = program.ErrSeedTooLong
)

// ErrFeePayerNotFound is returned when the runtime rejects a transaction because its fee payer
// account does not exist. It is distinct from ErrAccountNotFound, which the program returns for
// missing campaign or global state accounts.
var ErrFeePayerNotFound = errors.New("fee payer account not found")

type ProgramError = program.ProgramError

// TransactionError is a transaction that landed or was simulated and failed without a
// program error code, such as a runtime or system program failure.
type TransactionError struct {
	Value any
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed: %v", e.Value)
}

// programErrorFromRPC extracts the program error from a failed sendTransaction, whose
// preflight simulation reports the transaction error under data["err"].
func programErrorFromRPC(err error) (error, bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return nil, false
	}
	data, ok := rpcErr.Data.(map[string]any)
	if !ok {
		return nil, false
	}
	txErr, ok := data["err"]
	if !ok || txErr == nil {
		return nil, false
	}
	return transactionError(txErr), true
}

// transactionError converts a transaction error value from a signature status or transaction
// meta into a typed error.
func transactionError(value any) error {
	if v, ok := value.(string); ok && v == "AccountNotFound" {
		return ErrFeePayerNotFound
	}
	data, ok := value.(map[string]any)
	if !ok {
		return &TransactionError{Value: value}
	}
	ie, ok := data["InstructionError"].([]any)
	if !ok || len(ie) != 2 {
		return &TransactionError{Value: value}
	}
	custom, ok := ie[1].(map[string]any)
	if !ok {
		return &TransactionError{Value: value}
	}
	code, ok := customCode(custom["Custom"])
	if !ok {
		return &TransactionError{Value: value}
	}
	if perr, ok := program.ErrorFromCode(code); ok {
		return perr
	}
	return &TransactionError{Value: value}
}

func customCode(v any) (uint32, bool) {
	switch code := v.(type) {
	case json.Number:
		n, err := strconv.ParseUint(code.String(), 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	case float64:
		return uint32(code), true
	case int:
		return uint32(code), true
	case uint32:
		return code, true
	}
	return 0, false
}
