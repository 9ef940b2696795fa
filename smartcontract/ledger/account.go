package ledger

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
)

// MaxPermittedDataLength is the largest data buffer an account may hold.
const MaxPermittedDataLength = 10 * 1024 * 1024

// Account is the persisted state of a single address.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return &Account{
		Lamports:   a.Lamports,
		Data:       data,
		Owner:      a.Owner,
		Executable: a.Executable,
	}
}

// IsEmpty reports whether the account holds nothing and is still owned by the system program.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner.Equals(solana.SystemProgramID)
}

// AccountInfo is an account as seen by a program during a single instruction. Two infos for
// the same key share the underlying Account.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	*Account
}

// Realloc resizes the account data, zero-filling any growth.
func (a *AccountInfo) Realloc(size int) error {
	if size < 0 || size > MaxPermittedDataLength {
		return ErrInvalidRealloc
	}
	if size <= len(a.Data) {
		a.Data = a.Data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, a.Data)
	a.Data = grown
	return nil
}

type accountSnapshot struct {
	lamports uint64
	owner    solana.PublicKey
	data     []byte
}

func snapshotOf(a *Account) accountSnapshot {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return accountSnapshot{lamports: a.Lamports, owner: a.Owner, data: data}
}

func (s accountSnapshot) dataChanged(a *Account) bool {
	return !bytes.Equal(s.data, a.Data)
}
