package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultLamportsPerSignature = 5000
	maxRecentBlockhashes        = 150
)

var ErrNilTransaction = errors.New("transaction is nil")

// TransactionRecord is the result of an executed transaction.
type TransactionRecord struct {
	Signature    solana.Signature
	Slot         uint64
	BlockTime    int64
	Fee          uint64
	Err          *TransactionError
	Logs         []string
	PreBalances  []uint64
	PostBalances []uint64
}

// Bank executes transactions one at a time against an in-memory accounts database. Every
// transaction is atomic: account changes are committed only if all of its instructions
// succeed, while the fee is charged regardless.
type Bank struct {
	log                  *slog.Logger
	clock                clockwork.Clock
	rent                 RentFunc
	lamportsPerSignature uint64

	mu           sync.Mutex
	db           *AccountsDB
	programs     map[solana.PublicKey]Program
	slot         uint64
	blockhashes  []solana.Hash
	records      map[solana.Signature]*TransactionRecord
	airdropNonce uint64
}

type Option func(*Bank)

func WithClock(clock clockwork.Clock) Option {
	return func(b *Bank) {
		b.clock = clock
	}
}

func WithRent(rent RentFunc) Option {
	return func(b *Bank) {
		b.rent = rent
	}
}

func WithLamportsPerSignature(lamports uint64) Option {
	return func(b *Bank) {
		b.lamportsPerSignature = lamports
	}
}

func NewBank(log *slog.Logger, opts ...Option) *Bank {
	b := &Bank{
		log:                  log,
		clock:                clockwork.NewRealClock(),
		rent:                 DefaultRent,
		lamportsPerSignature: DefaultLamportsPerSignature,
		db:                   NewAccountsDB(),
		programs:             make(map[solana.PublicKey]Program),
		records:              make(map[solana.Signature]*TransactionRecord),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.programs[solana.SystemProgramID] = systemProgram{}
	b.blockhashes = []solana.Hash{sha256.Sum256([]byte("genesis"))}
	return b
}

func (b *Bank) Clock() clockwork.Clock {
	return b.clock
}

// MinimumBalance returns the rent-exempt minimum for the given data size.
func (b *Bank) MinimumBalance(size uint64) uint64 {
	return b.rent(size)
}

func (b *Bank) LamportsPerSignature() uint64 {
	return b.lamportsPerSignature
}

// RegisterProgram makes a program invocable at the given id.
func (b *Bank) RegisterProgram(id solana.PublicKey, program Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.programs[id] = program
}

func (b *Bank) program(id solana.PublicKey) (Program, bool) {
	p, ok := b.programs[id]
	return p, ok
}

// GetAccount returns a copy of the account, or nil if it does not exist.
func (b *Bank) GetAccount(key solana.PublicKey) *Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Get(key)
}

// SetAccount overwrites an account outside of transaction processing.
func (b *Bank) SetAccount(key solana.PublicKey, account *Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.db.Set(key, account)
}

// ProgramAccounts returns every account owned by the program.
func (b *Bank) ProgramAccounts(owner solana.PublicKey) map[solana.PublicKey]*Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.ProgramAccounts(owner)
}

func (b *Bank) Slot() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slot
}

// LatestBlockhash returns the most recent blockhash and the last block height at which it is
// still accepted.
func (b *Bank) LatestBlockhash() (solana.Hash, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blockhashes[len(b.blockhashes)-1], b.slot + maxRecentBlockhashes
}

// Record returns the record of a processed transaction.
func (b *Bank) Record(sig solana.Signature) (*TransactionRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[sig]
	return rec, ok
}

// Airdrop credits lamports to an address, creating a system account if needed.
func (b *Bank) Airdrop(key solana.PublicKey, lamports uint64) (solana.Signature, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	account := b.db.Get(key)
	if account == nil {
		account = &Account{Owner: solana.SystemProgramID}
	}
	if account.Lamports+lamports < account.Lamports {
		return solana.Signature{}, ErrArithmeticOverflow
	}
	pre := account.Lamports
	account.Lamports += lamports
	b.db.Set(key, account)

	b.airdropNonce++
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], b.airdropNonce)
	h1 := sha256.Sum256(append(key.Bytes(), nonce[:]...))
	h2 := sha256.Sum256(h1[:])
	var sig solana.Signature
	copy(sig[:32], h1[:])
	copy(sig[32:], h2[:])

	b.records[sig] = &TransactionRecord{
		Signature:    sig,
		Slot:         b.slot,
		BlockTime:    b.clock.Now().Unix(),
		Logs:         []string{fmt.Sprintf("Airdrop %d lamports to %s", lamports, key)},
		PreBalances:  []uint64{pre},
		PostBalances: []uint64{account.Lamports},
	}
	b.advance()
	return sig, nil
}

// SimulateTransaction executes a transaction without committing any of its effects.
func (b *Bank) SimulateTransaction(tx *solana.Transaction) (*TransactionRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.execute(tx, false)
}

// ProcessTransaction executes and commits a transaction. A non-nil error means the
// transaction was rejected before execution and nothing was charged; a failed execution is
// reported through the record's Err.
func (b *Bank) ProcessTransaction(tx *solana.Transaction) (*TransactionRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.execute(tx, true)
}

// SubmitTransaction runs an optional preflight simulation and then commits the transaction
// under a single lock. A failed preflight returns the record with its error and commits
// nothing.
func (b *Bank) SubmitTransaction(tx *solana.Transaction, preflight bool) (*TransactionRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if preflight {
		rec, err := b.execute(tx, false)
		if err != nil {
			return nil, err
		}
		if rec.Err != nil {
			return rec, rec.Err
		}
	}
	return b.execute(tx, true)
}

func (b *Bank) execute(tx *solana.Transaction, commit bool) (*TransactionRecord, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	msg := tx.Message
	keys := msg.AccountKeys
	numSigners := int(msg.Header.NumRequiredSignatures)
	if len(keys) == 0 || numSigners == 0 || len(tx.Signatures) != numSigners || numSigners > len(keys) {
		return nil, &TransactionError{Kind: TxErrSignatureFailure}
	}
	if err := tx.VerifySignatures(); err != nil {
		return nil, &TransactionError{Kind: TxErrSignatureFailure, Err: err}
	}
	sig := tx.Signatures[0]
	if _, ok := b.records[sig]; ok {
		return nil, &TransactionError{Kind: TxErrAlreadyProcessed}
	}
	if !b.isRecentBlockhash(msg.RecentBlockhash) {
		return nil, &TransactionError{Kind: TxErrBlockhashNotFound}
	}

	payer := keys[0]
	payerAccount := b.db.Get(payer)
	if payerAccount == nil {
		return nil, &TransactionError{Kind: TxErrAccountNotFound}
	}
	fee := b.lamportsPerSignature * uint64(numSigners)
	if payerAccount.Lamports < fee {
		return nil, &TransactionError{Kind: TxErrInsufficientFundsForFee}
	}

	working := make(map[solana.PublicKey]*Account, len(keys))
	preBalances := make([]uint64, len(keys))
	for i, key := range keys {
		if _, ok := working[key]; !ok {
			account := b.db.Get(key)
			if account == nil {
				account = &Account{Owner: solana.SystemProgramID}
			}
			working[key] = account
		}
		preBalances[i] = working[key].Lamports
	}
	working[payer].Lamports -= fee
	feeCharged := working[payer].Clone()
	preTx := make(map[solana.PublicKey]accountSnapshot, len(working))
	for key, account := range working {
		preTx[key] = snapshotOf(account)
	}

	now := b.clock.Now().Unix()
	logs := make([]string, 0, 8)
	var txErr *TransactionError
	for i, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(keys) {
			txErr = &TransactionError{Kind: TxErrProgramAccountNotFound}
			break
		}
		programID := keys[ci.ProgramIDIndex]
		program, ok := b.program(programID)
		if !ok {
			txErr = &TransactionError{Kind: TxErrProgramAccountNotFound}
			break
		}
		infos := make([]*AccountInfo, 0, len(ci.Accounts))
		for _, idx := range ci.Accounts {
			if int(idx) >= len(keys) {
				txErr = &TransactionError{Kind: TxErrInstructionError, InstructionIndex: i, Err: ErrNotEnoughAccountKeys}
				break
			}
			key := keys[idx]
			infos = append(infos, &AccountInfo{
				Key:        key,
				IsSigner:   isSignerIndex(msg.Header, int(idx)),
				IsWritable: isWritableIndex(msg.Header, len(keys), int(idx)),
				Account:    working[key],
			})
		}
		if txErr != nil {
			break
		}
		if err := b.invoke(program, programID, infos, ci.Data, 1, now, &logs); err != nil {
			txErr = &TransactionError{Kind: TxErrInstructionError, InstructionIndex: i, Err: err}
			break
		}
	}

	if txErr == nil {
		txErr = b.checkRent(msg.Header, keys, working, preTx)
	}

	postBalances := make([]uint64, len(keys))
	for i, key := range keys {
		if txErr == nil {
			postBalances[i] = working[key].Lamports
		} else if key.Equals(payer) {
			postBalances[i] = feeCharged.Lamports
		} else {
			postBalances[i] = preBalances[i]
		}
	}

	rec := &TransactionRecord{
		Signature:    sig,
		Slot:         b.slot,
		BlockTime:    now,
		Fee:          fee,
		Err:          txErr,
		Logs:         logs,
		PreBalances:  preBalances,
		PostBalances: postBalances,
	}
	if !commit {
		return rec, nil
	}

	if txErr == nil {
		for i, key := range keys {
			if isWritableIndex(msg.Header, len(keys), i) {
				b.db.Set(key, working[key])
			}
		}
	} else {
		b.db.Set(payer, feeCharged)
	}
	b.records[sig] = rec
	b.advance()

	b.log.Debug("ledger: processed transaction", "signature", sig, "slot", rec.Slot, "fee", fee, "error", txErr)
	return rec, nil
}

// checkRent rejects transactions that leave a modified account funded below its rent-exempt
// minimum.
func (b *Bank) checkRent(header solana.MessageHeader, keys []solana.PublicKey, working map[solana.PublicKey]*Account, pre map[solana.PublicKey]accountSnapshot) *TransactionError {
	for i, key := range keys {
		if !isWritableIndex(header, len(keys), i) {
			continue
		}
		account := working[key]
		before := pre[key]
		if before.lamports == account.Lamports && !before.dataChanged(account) {
			continue
		}
		if account.Lamports > 0 && account.Lamports < b.rent(uint64(len(account.Data))) {
			return &TransactionError{Kind: TxErrInsufficientFundsForRent, AccountIndex: i}
		}
	}
	return nil
}

func (b *Bank) isRecentBlockhash(hash solana.Hash) bool {
	for _, h := range b.blockhashes {
		if h == hash {
			return true
		}
	}
	return false
}

func (b *Bank) advance() {
	b.slot++
	prev := b.blockhashes[len(b.blockhashes)-1]
	var slot [8]byte
	binary.LittleEndian.PutUint64(slot[:], b.slot)
	next := solana.Hash(sha256.Sum256(append(prev[:], slot[:]...)))
	b.blockhashes = append(b.blockhashes, next)
	if len(b.blockhashes) > maxRecentBlockhashes {
		b.blockhashes = b.blockhashes[len(b.blockhashes)-maxRecentBlockhashes:]
	}
}

func isSignerIndex(header solana.MessageHeader, i int) bool {
	return i < int(header.NumRequiredSignatures)
}

func isWritableIndex(header solana.MessageHeader, numKeys, i int) bool {
	numSigners := int(header.NumRequiredSignatures)
	if i < numSigners {
		return i < numSigners-int(header.NumReadonlySignedAccounts)
	}
	return i-numSigners < numKeys-numSigners-int(header.NumReadonlyUnsignedAccounts)
}
