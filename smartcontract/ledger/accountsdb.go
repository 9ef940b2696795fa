package ledger

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// AccountsDB is an in-memory account store. Reads and writes copy, so callers never share
// buffers with the store.
type AccountsDB struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*Account
}

func NewAccountsDB() *AccountsDB {
	return &AccountsDB{accounts: make(map[solana.PublicKey]*Account)}
}

// Get returns a copy of the account, or nil if it does not exist.
func (db *AccountsDB) Get(key solana.PublicKey) *Account {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.accounts[key].Clone()
}

// Set stores a copy of the account. Accounts with zero lamports are removed.
func (db *AccountsDB) Set(key solana.PublicKey, account *Account) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if account == nil || account.Lamports == 0 {
		delete(db.accounts, key)
		return
	}
	db.accounts[key] = account.Clone()
}

func (db *AccountsDB) Delete(key solana.PublicKey) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.accounts, key)
}

func (db *AccountsDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.accounts)
}

// ProgramAccounts returns copies of every account owned by the given program.
func (db *AccountsDB) ProgramAccounts(owner solana.PublicKey) map[solana.PublicKey]*Account {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make(map[solana.PublicKey]*Account)
	for key, account := range db.accounts {
		if account.Owner.Equals(owner) {
			out[key] = account.Clone()
		}
	}
	return out
}
