package crowdfunding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrNoPrivateKey is returned when a transaction is sent by a client without a signer.
	ErrNoPrivateKey = errors.New("no private key configured")

	// ErrNoProgramID is returned when a transaction is sent by a client without a program ID.
	ErrNoProgramID = errors.New("no program ID configured")

	errSignatureNotSeen = errors.New("signature not seen by the cluster")
)

type executor struct {
	log        *slog.Logger
	rpc        RPCClient
	signer     *solana.PrivateKey
	programID  solana.PublicKey
	clock      clockwork.Clock
	commitment solanarpc.CommitmentType

	visibleTimeout time.Duration
	pollInterval   time.Duration
}

type ExecutorOption func(*executor)

// WithWaitForVisibleTimeout bounds how long a sent transaction may take to show up in
// signature statuses before it is treated as dropped.
func WithWaitForVisibleTimeout(timeout time.Duration) ExecutorOption {
	return func(e *executor) {
		e.visibleTimeout = timeout
	}
}

func WithPollInterval(interval time.Duration) ExecutorOption {
	return func(e *executor) {
		e.pollInterval = interval
	}
}

// WithCommitment sets the commitment a transaction must reach before its result is read.
// Only confirmed and finalized are meaningful.
func WithCommitment(commitment solanarpc.CommitmentType) ExecutorOption {
	return func(e *executor) {
		e.commitment = commitment
	}
}

func WithExecutorClock(clock clockwork.Clock) ExecutorOption {
	return func(e *executor) {
		e.clock = clock
	}
}

func NewExecutor(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ExecutorOption) *executor {
	e := &executor{
		log:            log,
		rpc:            rpc,
		signer:         signer,
		programID:      programID,
		clock:          clockwork.NewRealClock(),
		commitment:     solanarpc.CommitmentFinalized,
		visibleTimeout: 3 * time.Second,
		pollInterval:   250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ExecuteTransactionOptions struct {
	// SkipPreflight sends without simulation. A failing instruction then lands, pays its fee
	// and its error is read back from the transaction meta.
	SkipPreflight bool
}

func (e *executor) ExecuteTransaction(ctx context.Context, instruction solana.Instruction, opts *ExecuteTransactionOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	return e.ExecuteTransactions(ctx, []solana.Instruction{instruction}, opts)
}

// ExecuteTransactions sends the instructions as one transaction signed by the fee payer and
// waits for it to reach the configured commitment. When the transaction fails, in preflight or
// once landed, the returned error wraps the program error it failed with.
func (e *executor) ExecuteTransactions(ctx context.Context, instructions []solana.Instruction, opts *ExecuteTransactionOptions) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if opts == nil {
		opts = &ExecuteTransactionOptions{}
	}

	tx, err := e.signedTransaction(ctx, instructions)
	if err != nil {
		return solana.Signature{}, nil, err
	}

	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{SkipPreflight: opts.SkipPreflight})
	if err != nil {
		if programErr, ok := programErrorFromRPC(err); ok {
			return solana.Signature{}, nil, fmt.Errorf("transaction simulation failed: %w", programErr)
		}
		return solana.Signature{}, nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	log := e.log.With("sig", sig)
	log.Debug("Sent transaction", "instructions", len(instructions), "skipPreflight", opts.SkipPreflight)

	seen := func(*solanarpc.SignatureStatusesResult) bool { return true }
	if err := e.awaitStatus(ctx, sig, e.visibleTimeout, seen); err != nil {
		if opts.SkipPreflight {
			return solana.Signature{}, nil, fmt.Errorf("transaction dropped before the cluster saw it, check the payer balance: %w", err)
		}
		return solana.Signature{}, nil, fmt.Errorf("transaction dropped before the cluster saw it: %w", err)
	}

	start := e.clock.Now()
	if err := e.awaitStatus(ctx, sig, 0, e.committed); err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed waiting for transaction %s: %w", sig, err)
	}
	log.Debug("Transaction committed", "commitment", e.commitment, "duration", e.clock.Since(start))

	res, err := e.rpc.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: e.commitment,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if res == nil || res.Meta == nil {
		return solana.Signature{}, nil, fmt.Errorf("transaction %s has no metadata", sig)
	}
	if res.Meta.Err != nil {
		return sig, res, fmt.Errorf("transaction %s failed: %w", sig, transactionError(res.Meta.Err))
	}
	return sig, res, nil
}

func (e *executor) signedTransaction(ctx context.Context, instructions []solana.Instruction) (*solana.Transaction, error) {
	if e.signer == nil {
		return nil, ErrNoPrivateKey
	}
	if e.programID.IsZero() {
		return nil, ErrNoProgramID
	}

	blockhash, err := e.rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	payer := e.signer.PublicKey()
	tx, err := solana.NewTransaction(instructions, blockhash.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return e.signer
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

func (e *executor) committed(status *solanarpc.SignatureStatusesResult) bool {
	switch status.ConfirmationStatus {
	case solanarpc.ConfirmationStatusFinalized:
		return true
	case solanarpc.ConfirmationStatusConfirmed:
		return e.commitment == solanarpc.CommitmentConfirmed
	default:
		return false
	}
}

// awaitStatus polls the signature status until done reports true. A zero timeout waits until
// ctx is done.
func (e *executor) awaitStatus(ctx context.Context, sig solana.Signature, timeout time.Duration, done func(*solanarpc.SignatureStatusesResult) bool) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = e.clock.Now().Add(timeout)
	}
	for {
		res, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if res != nil && len(res.Value) > 0 && res.Value[0] != nil && done(res.Value[0]) {
			return nil
		}
		if !deadline.IsZero() && !e.clock.Now().Before(deadline) {
			return errSignatureNotSeen
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.clock.After(e.pollInterval):
		}
	}
}
