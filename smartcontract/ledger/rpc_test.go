package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
	"github.com/stretchr/testify/require"
)

func TestLedger_LocalRPC_PreflightFailure(t *testing.T) {
	t.Parallel()

	bank, _ := newTestBank(t)
	programID := solana.NewWallet().PublicKey()
	bank.RegisterProgram(programID, ledger.ProgramFunc(testProgram))
	rpc := ledger.NewLocalRPC(bank)
	payer := newFundedWallet(t, bank, 1_000_000_000)

	tx := newSignedTx(t, bank, []solana.PrivateKey{payer}, testInstruction(programID, 3))
	_, err := rpc.SendTransaction(context.Background(), tx)
	require.Error(t, err)

	var rpcErr *jsonrpc.RPCError
	require.True(t, errors.As(err, &rpcErr))
	data, ok := rpcErr.Data.(map[string]any)
	require.True(t, ok)
	txErr, ok := data["err"].(map[string]any)
	require.True(t, ok)
	ie, ok := txErr["InstructionError"].([]any)
	require.True(t, ok)
	require.Len(t, ie, 2)
	require.Equal(t, json.Number("0"), ie[0])
	require.Equal(t, map[string]any{"Custom": json.Number("42")}, ie[1])

	// Nothing landed, not even the fee.
	require.Equal(t, uint64(1_000_000_000), bank.GetAccount(payer.PublicKey()).Lamports)
	statuses, err := rpc.GetSignatureStatuses(context.Background(), true, tx.Signatures[0])
	require.NoError(t, err)
	require.Nil(t, statuses.Value[0])
}

func TestLedger_LocalRPC_SkipPreflightRecordsFailure(t *testing.T) {
	t.Parallel()

	bank, _ := newTestBank(t)
	programID := solana.NewWallet().PublicKey()
	bank.RegisterProgram(programID, ledger.ProgramFunc(testProgram))
	rpc := ledger.NewLocalRPC(bank)
	payer := newFundedWallet(t, bank, 1_000_000_000)
	ctx := context.Background()

	tx := newSignedTx(t, bank, []solana.PrivateKey{payer}, testInstruction(programID, 3))
	sig, err := rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{SkipPreflight: true})
	require.NoError(t, err)
	require.Equal(t, tx.Signatures[0], sig)

	statuses, err := rpc.GetSignatureStatuses(ctx, true, sig)
	require.NoError(t, err)
	require.NotNil(t, statuses.Value[0])
	require.Equal(t, solanarpc.ConfirmationStatusFinalized, statuses.Value[0].ConfirmationStatus)
	require.NotNil(t, statuses.Value[0].Err)

	res, err := rpc.GetTransaction(ctx, sig, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Meta)
	require.Equal(t, uint64(ledger.DefaultLamportsPerSignature), res.Meta.Fee)
	require.Equal(t, map[string]any{
		"InstructionError": []any{json.Number("0"), map[string]any{"Custom": json.Number("42")}},
	}, res.Meta.Err)
	require.NotEmpty(t, res.Meta.LogMessages)
}

func TestLedger_LocalRPC_Accounts(t *testing.T) {
	t.Parallel()

	bank, _ := newTestBank(t)
	rpc := ledger.NewLocalRPC(bank)
	ctx := context.Background()

	wallet := solana.NewWallet().PublicKey()
	missing := solana.NewWallet().PublicKey()
	sig, err := rpc.RequestAirdrop(ctx, wallet, 2_000_000_000, solanarpc.CommitmentFinalized)
	require.NoError(t, err)
	statuses, err := rpc.GetSignatureStatuses(ctx, true, sig)
	require.NoError(t, err)
	require.NotNil(t, statuses.Value[0])

	balance, err := rpc.GetBalance(ctx, wallet, solanarpc.CommitmentFinalized)
	require.NoError(t, err)
	require.Equal(t, uint64(2_000_000_000), balance.Value)

	info, err := rpc.GetAccountInfo(ctx, wallet)
	require.NoError(t, err)
	require.Equal(t, solana.SystemProgramID, info.Value.Owner)
	require.Empty(t, info.Value.Data.GetBinary())

	_, err = rpc.GetAccountInfo(ctx, missing)
	require.ErrorIs(t, err, solanarpc.ErrNotFound)

	multi, err := rpc.GetMultipleAccounts(ctx, wallet, missing)
	require.NoError(t, err)
	require.Len(t, multi.Value, 2)
	require.NotNil(t, multi.Value[0])
	require.Nil(t, multi.Value[1])

	rent, err := rpc.GetMinimumBalanceForRentExemption(ctx, 1264, solanarpc.CommitmentFinalized)
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultRent(1264), rent)
}

func TestLedger_LocalRPC_SendTransferAndFetch(t *testing.T) {
	t.Parallel()

	bank, _ := newTestBank(t)
	rpc := ledger.NewLocalRPC(bank)
	payer := newFundedWallet(t, bank, 1_000_000_000)
	recipient := solana.NewWallet().PublicKey()
	ctx := context.Background()

	blockhash, err := rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	require.NoError(t, err)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(3_000_000, payer.PublicKey(), recipient).Build()},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey { return &payer })
	require.NoError(t, err)

	sig, err := rpc.SendTransaction(ctx, tx)
	require.NoError(t, err)
	res, err := rpc.GetTransaction(ctx, sig, nil)
	require.NoError(t, err)
	require.Nil(t, res.Meta.Err)
	require.Equal(t, []uint64{1_000_000_000, 0, 0}, res.Meta.PreBalances)
	require.Equal(t, []uint64{1_000_000_000 - 3_000_000 - ledger.DefaultLamportsPerSignature, 3_000_000, 0}, res.Meta.PostBalances)
}
