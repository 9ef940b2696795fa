package crowdfunding

import "fmt"

// ProgramError is a typed program failure. It is reported by the runtime as
// InstructionError::Custom(Code), so clients can map a failed transaction back to the same
// value with ErrorFromCode.
type ProgramError struct {
	Code uint32
	Name string
	Msg  string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Msg)
}

// CustomCode implements ledger.CustomError.
func (e *ProgramError) CustomCode() uint32 {
	return e.Code
}

const errorCodeOffset = 6000

var (
	ErrDeadlineMustBeInFuture       = &ProgramError{Code: errorCodeOffset + 0, Name: "DeadlineMustBeInFuture", Msg: "Deadline must be in the future"}
	ErrCampaignExpired              = &ProgramError{Code: errorCodeOffset + 1, Name: "CampaignExpired", Msg: "Campaign has already expired"}
	ErrDeadlineNotReached           = &ProgramError{Code: errorCodeOffset + 2, Name: "DeadlineNotReached", Msg: "Deadline has not been reached"}
	ErrOverflow                     = &ProgramError{Code: errorCodeOffset + 3, Name: "Overflow", Msg: "Overflow detected"}
	ErrInsufficientFunds            = &ProgramError{Code: errorCodeOffset + 4, Name: "InsufficientFunds", Msg: "Insufficient funds to contribute"}
	ErrUnauthorized                 = &ProgramError{Code: errorCodeOffset + 5, Name: "Unauthorized", Msg: "Signer is not the campaign owner"}
	ErrAlreadyInitialized           = &ProgramError{Code: errorCodeOffset + 6, Name: "AlreadyInitialized", Msg: "Global state is already initialized"}
	ErrAccountAlreadyExists         = &ProgramError{Code: errorCodeOffset + 7, Name: "AccountAlreadyExists", Msg: "A campaign with this owner and title already exists"}
	ErrAccountNotFound              = &ProgramError{Code: errorCodeOffset + 8, Name: "AccountNotFound", Msg: "Account does not exist"}
	ErrSizeExceeded                 = &ProgramError{Code: errorCodeOffset + 9, Name: "SizeExceeded", Msg: "Value exceeds the maximum encoded size"}
	ErrCorruptData                  = &ProgramError{Code: errorCodeOffset + 10, Name: "CorruptData", Msg: "Account data is corrupt"}
	ErrAccountDiscriminatorMismatch = &ProgramError{Code: errorCodeOffset + 11, Name: "AccountDiscriminatorMismatch", Msg: "Account discriminator did not match the expected record type"}
	ErrInvalidSeeds                 = &ProgramError{Code: errorCodeOffset + 12, Name: "InvalidSeeds", Msg: "Account address does not match its derivation seeds"}
	ErrMissingRequiredSignature     = &ProgramError{Code: errorCodeOffset + 13, Name: "MissingRequiredSignature", Msg: "Account must sign the transaction"}
	ErrInvalidInstruction           = &ProgramError{Code: errorCodeOffset + 14, Name: "InvalidInstruction", Msg: "Instruction data is invalid"}
	ErrNotEnoughAccountKeys         = &ProgramError{Code: errorCodeOffset + 15, Name: "NotEnoughAccountKeys", Msg: "Not enough accounts were provided"}
	ErrInvalidAccountOwner          = &ProgramError{Code: errorCodeOffset + 16, Name: "InvalidAccountOwner", Msg: "Account is not owned by this program"}
	ErrAccountNotWritable           = &ProgramError{Code: errorCodeOffset + 17, Name: "AccountNotWritable", Msg: "Account must be writable"}
	ErrInvalidProgramAccount        = &ProgramError{Code: errorCodeOffset + 18, Name: "InvalidProgramAccount", Msg: "Expected the system program"}
)

// ErrSeedTooLong is returned by address derivation for seeds longer than MaxSeedLength. It is
// reported on chain as InvalidSeeds.
var ErrSeedTooLong = fmt.Errorf("%w: seed exceeds %d bytes", ErrInvalidSeeds, MaxSeedLength)

var programErrors = []*ProgramError{
	ErrDeadlineMustBeInFuture,
	ErrCampaignExpired,
	ErrDeadlineNotReached,
	ErrOverflow,
	ErrInsufficientFunds,
	ErrUnauthorized,
	ErrAlreadyInitialized,
	ErrAccountAlreadyExists,
	ErrAccountNotFound,
	ErrSizeExceeded,
	ErrCorruptData,
	ErrAccountDiscriminatorMismatch,
	ErrInvalidSeeds,
	ErrMissingRequiredSignature,
	ErrInvalidInstruction,
	ErrNotEnoughAccountKeys,
	ErrInvalidAccountOwner,
	ErrAccountNotWritable,
	ErrInvalidProgramAccount,
}

var programErrorsByCode = func() map[uint32]*ProgramError {
	m := make(map[uint32]*ProgramError, len(programErrors))
	for _, e := range programErrors {
		m[e.Code] = e
	}
	return m
}()

// ErrorFromCode returns the program error for a custom error code.
func ErrorFromCode(code uint32) (*ProgramError, bool) {
	e, ok := programErrorsByCode[code]
	return e, ok
}

// Errors returns every program error in code order.
func Errors() []*ProgramError {
	out := make([]*ProgramError, len(programErrors))
	copy(out, programErrors)
	return out
}
