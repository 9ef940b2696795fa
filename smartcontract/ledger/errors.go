package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// CustomError is implemented by program errors that surface as InstructionError::Custom(code).
type CustomError interface {
	error
	CustomCode() uint32
}

// BuiltinError is a runtime instruction error with a well-known name.
type BuiltinError struct {
	Name string
	Msg  string
}

func (e *BuiltinError) Error() string {
	return e.Msg
}

var (
	ErrMissingRequiredSignature    = &BuiltinError{Name: "MissingRequiredSignature", Msg: "missing required signature for instruction"}
	ErrNotEnoughAccountKeys        = &BuiltinError{Name: "NotEnoughAccountKeys", Msg: "insufficient account keys for instruction"}
	ErrInvalidInstructionData      = &BuiltinError{Name: "InvalidInstructionData", Msg: "invalid instruction data"}
	ErrUnbalancedInstruction       = &BuiltinError{Name: "UnbalancedInstruction", Msg: "sum of account balances before and after instruction do not match"}
	ErrReadonlyLamportChange       = &BuiltinError{Name: "ReadonlyLamportChange", Msg: "instruction changed the balance of a read-only account"}
	ErrReadonlyDataModified        = &BuiltinError{Name: "ReadonlyDataModified", Msg: "instruction modified data of a read-only account"}
	ErrExternalAccountLamportSpend = &BuiltinError{Name: "ExternalAccountLamportSpend", Msg: "instruction spent from the balance of an account it does not own"}
	ErrExternalAccountDataModified = &BuiltinError{Name: "ExternalAccountDataModified", Msg: "instruction modified data of an account it does not own"}
	ErrModifiedProgramID           = &BuiltinError{Name: "ModifiedProgramId", Msg: "instruction illegally modified the program id of an account"}
	ErrPrivilegeEscalation         = &BuiltinError{Name: "PrivilegeEscalation", Msg: "cross-program invocation with unauthorized signer or writable account"}
	ErrMissingAccount              = &BuiltinError{Name: "MissingAccount", Msg: "an account required by the instruction is missing"}
	ErrInvalidRealloc              = &BuiltinError{Name: "InvalidRealloc", Msg: "failed to reallocate account data"}
	ErrArithmeticOverflow          = &BuiltinError{Name: "ArithmeticOverflow", Msg: "program arithmetic overflowed"}
	ErrUnsupportedProgramID        = &BuiltinError{Name: "UnsupportedProgramId", Msg: "unsupported program id"}
	ErrCallDepth                   = &BuiltinError{Name: "CallDepth", Msg: "cross-program invocation call depth too deep"}
)

// Transaction-level error kinds, as reported in signature statuses and transaction meta.
const (
	TxErrAccountNotFound          = "AccountNotFound"
	TxErrInsufficientFundsForFee  = "InsufficientFundsForFee"
	TxErrBlockhashNotFound        = "BlockhashNotFound"
	TxErrAlreadyProcessed         = "AlreadyProcessed"
	TxErrSignatureFailure         = "SignatureFailure"
	TxErrProgramAccountNotFound   = "ProgramAccountNotFound"
	TxErrInstructionError         = "InstructionError"
	TxErrInsufficientFundsForRent = "InsufficientFundsForRent"
)

// TransactionError is the outcome of a failed transaction.
type TransactionError struct {
	Kind string
	// InstructionIndex is set for InstructionError.
	InstructionIndex int
	// AccountIndex is set for InsufficientFundsForRent.
	AccountIndex int
	Err          error
}

func (e *TransactionError) Error() string {
	switch e.Kind {
	case TxErrInstructionError:
		return fmt.Sprintf("Error processing Instruction %d: %s", e.InstructionIndex, instructionErrorText(e.Err))
	case TxErrInsufficientFundsForRent:
		return fmt.Sprintf("Transaction results in an account (%d) with insufficient funds for rent", e.AccountIndex)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// RPCValue returns the error in the JSON shape used by the RPC status and meta fields.
func (e *TransactionError) RPCValue() any {
	switch e.Kind {
	case TxErrInstructionError:
		index := json.Number(strconv.Itoa(e.InstructionIndex))
		var customErr CustomError
		if errors.As(e.Err, &customErr) {
			return map[string]any{
				TxErrInstructionError: []any{index, map[string]any{"Custom": json.Number(strconv.FormatUint(uint64(customErr.CustomCode()), 10))}},
			}
		}
		var builtin *BuiltinError
		if errors.As(e.Err, &builtin) {
			return map[string]any{TxErrInstructionError: []any{index, builtin.Name}}
		}
		return map[string]any{TxErrInstructionError: []any{index, "GenericError"}}
	case TxErrInsufficientFundsForRent:
		return map[string]any{
			TxErrInsufficientFundsForRent: map[string]any{"account_index": json.Number(strconv.Itoa(e.AccountIndex))},
		}
	}
	return e.Kind
}

func instructionErrorText(err error) string {
	var customErr CustomError
	if errors.As(err, &customErr) {
		return fmt.Sprintf("custom program error: 0x%x", customErr.CustomCode())
	}
	if err == nil {
		return "generic instruction error"
	}
	return err.Error()
}
