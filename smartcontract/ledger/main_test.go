package ledger_test

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/crowdfunding/smartcontract/ledger"
	"github.com/stretchr/testify/require"
)

var (
	logger *slog.Logger
)

func TestMain(m *testing.M) {
	flag.Parse()
	verbose := false
	if vFlag := flag.Lookup("test.v"); vFlag != nil && vFlag.Value.String() == "true" {
		verbose = true
	}
	if verbose {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	os.Exit(m.Run())
}

func newTestBank(t *testing.T) (*ledger.Bank, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	return ledger.NewBank(logger, ledger.WithClock(clock)), clock
}

func newFundedWallet(t *testing.T, bank *ledger.Bank, lamports uint64) solana.PrivateKey {
	t.Helper()
	key := solana.NewWallet().PrivateKey
	_, err := bank.Airdrop(key.PublicKey(), lamports)
	require.NoError(t, err)
	return key
}

func newSignedTx(t *testing.T, bank *ledger.Bank, signers []solana.PrivateKey, ixs ...solana.Instruction) *solana.Transaction {
	t.Helper()
	blockhash, _ := bank.LatestBlockhash()
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(signers[0].PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}
