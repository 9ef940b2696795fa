package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Preflight failures are reported with the same JSON-RPC code a cluster uses.
const rpcCodeSendTransactionPreflightFailure = -32002

// LocalRPC serves the subset of the Solana JSON-RPC API used by the program clients directly
// from a Bank, without a network hop. It is safe for concurrent use.
type LocalRPC struct {
	bank *Bank
}

func NewLocalRPC(bank *Bank) *LocalRPC {
	return &LocalRPC{bank: bank}
}

func (r *LocalRPC) Bank() *Bank {
	return r.bank
}

func (r *LocalRPC) rpcContext() solanarpc.RPCContext {
	return solanarpc.RPCContext{Context: solanarpc.Context{Slot: r.bank.Slot()}}
}

func (r *LocalRPC) GetLatestBlockhash(ctx context.Context, _ solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, lastValid := r.bank.LatestBlockhash()
	return &solanarpc.GetLatestBlockhashResult{
		RPCContext: r.rpcContext(),
		Value: &solanarpc.LatestBlockhashResult{
			Blockhash:            hash,
			LastValidBlockHeight: lastValid,
		},
	}, nil
}

func (r *LocalRPC) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return r.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{})
}

// SendTransactionWithOpts submits a transaction. Without SkipPreflight a failing simulation is
// returned as a *jsonrpc.RPCError carrying the transaction error under data["err"], and nothing
// lands. With SkipPreflight the transaction lands and failures are visible through the
// signature status and transaction meta; transactions that cannot be charged a fee are dropped.
func (r *LocalRPC) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	if tx == nil || len(tx.Signatures) == 0 {
		return solana.Signature{}, ErrNilTransaction
	}
	sig := tx.Signatures[0]

	rec, err := r.bank.SubmitTransaction(tx, !opts.SkipPreflight)
	if err != nil {
		var txErr *TransactionError
		if !errors.As(err, &txErr) {
			return solana.Signature{}, err
		}
		if opts.SkipPreflight && txErr.Kind != TxErrSignatureFailure {
			return sig, nil
		}
		var logs []any
		if rec != nil {
			for _, l := range rec.Logs {
				logs = append(logs, l)
			}
		}
		return solana.Signature{}, &jsonrpc.RPCError{
			Code:    rpcCodeSendTransactionPreflightFailure,
			Message: "Transaction simulation failed: " + txErr.Error(),
			Data: map[string]any{
				"err":  txErr.RPCValue(),
				"logs": logs,
			},
		}
	}
	return rec.Signature, nil
}

func (r *LocalRPC) GetSignatureStatuses(ctx context.Context, _ bool, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := &solanarpc.GetSignatureStatusesResult{
		RPCContext: r.rpcContext(),
		Value:      make([]*solanarpc.SignatureStatusesResult, len(sigs)),
	}
	for i, sig := range sigs {
		rec, ok := r.bank.Record(sig)
		if !ok {
			continue
		}
		status := &solanarpc.SignatureStatusesResult{
			Slot:               rec.Slot,
			ConfirmationStatus: solanarpc.ConfirmationStatusFinalized,
		}
		if rec.Err != nil {
			status.Err = rec.Err.RPCValue()
		}
		out.Value[i] = status
	}
	return out, nil
}

func (r *LocalRPC) GetTransaction(ctx context.Context, sig solana.Signature, _ *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := r.bank.Record(sig)
	if !ok {
		return nil, solanarpc.ErrNotFound
	}
	blockTime := solana.UnixTimeSeconds(rec.BlockTime)
	meta := &solanarpc.TransactionMeta{
		Fee:          rec.Fee,
		PreBalances:  rec.PreBalances,
		PostBalances: rec.PostBalances,
		LogMessages:  rec.Logs,
	}
	if rec.Err != nil {
		meta.Err = rec.Err.RPCValue()
	}
	return &solanarpc.GetTransactionResult{
		Slot:      rec.Slot,
		BlockTime: &blockTime,
		Meta:      meta,
	}, nil
}

// GetAccountInfo returns solanarpc.ErrNotFound for addresses that hold no account, matching
// the solana-go client.
func (r *LocalRPC) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acct := r.bank.GetAccount(account)
	if acct == nil {
		return nil, solanarpc.ErrNotFound
	}
	return &solanarpc.GetAccountInfoResult{
		RPCContext: r.rpcContext(),
		Value:      toRPCAccount(acct),
	}, nil
}

// GetMultipleAccounts returns one entry per requested address, nil where no account exists.
func (r *LocalRPC) GetMultipleAccounts(ctx context.Context, accounts ...solana.PublicKey) (*solanarpc.GetMultipleAccountsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := &solanarpc.GetMultipleAccountsResult{
		RPCContext: r.rpcContext(),
		Value:      make([]*solanarpc.Account, len(accounts)),
	}
	for i, key := range accounts {
		if acct := r.bank.GetAccount(key); acct != nil {
			out.Value[i] = toRPCAccount(acct)
		}
	}
	return out, nil
}

func (r *LocalRPC) GetBalance(ctx context.Context, account solana.PublicKey, _ solanarpc.CommitmentType) (*solanarpc.GetBalanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var lamports uint64
	if acct := r.bank.GetAccount(account); acct != nil {
		lamports = acct.Lamports
	}
	return &solanarpc.GetBalanceResult{
		RPCContext: r.rpcContext(),
		Value:      lamports,
	}, nil
}

func (r *LocalRPC) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, _ solanarpc.CommitmentType) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.bank.MinimumBalance(dataSize), nil
}

func (r *LocalRPC) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, _ solanarpc.CommitmentType) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	return r.bank.Airdrop(account, lamports)
}

func toRPCAccount(acct *Account) *solanarpc.Account {
	return &solanarpc.Account{
		Lamports:   acct.Lamports,
		Owner:      acct.Owner,
		Data:       solanarpc.DataBytesOrJSONFromBytes(acct.Data),
		Executable: acct.Executable,
	}
}
