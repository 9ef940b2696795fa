package crowdfunding_test

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
	"github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
	"github.com/stretchr/testify/require"
)

var (
	logger *slog.Logger

	programID = solana.MustPublicKeyFromBase58("9h3Hsm8ypVtvQxyavYjqR87g4eyhixBHX3uvTLCpAAuK")
)

const fee = ledger.DefaultLamportsPerSignature

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

type testEnv struct {
	bank     *ledger.Bank
	clock    *clockwork.FakeClock
	statePDA solana.PublicKey
}

func newTestEnv(t *testing.T, opts ...crowdfunding.Option) *testEnv {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	bank := ledger.NewBank(logger, ledger.WithClock(clock))
	bank.RegisterProgram(programID, crowdfunding.New(opts...))
	statePDA, _, err := crowdfunding.DeriveStatePDA(programID)
	require.NoError(t, err)
	return &testEnv{bank: bank, clock: clock, statePDA: statePDA}
}

// newInitializedEnv returns an environment whose global state has already been created.
func newInitializedEnv(t *testing.T, opts ...crowdfunding.Option) *testEnv {
	t.Helper()
	env := newTestEnv(t, opts...)
	payer := env.fund(t, 1_000_000_000)
	env.requireSuccess(t, env.send(t, []solana.PrivateKey{payer}, env.initializeStateIx(payer.PublicKey())))
	return env
}

func (e *testEnv) now() int64 {
	return e.clock.Now().Unix()
}

func (e *testEnv) fund(t *testing.T, lamports uint64) solana.PrivateKey {
	t.Helper()
	key := solana.NewWallet().PrivateKey
	_, err := e.bank.Airdrop(key.PublicKey(), lamports)
	require.NoError(t, err)
	return key
}

func (e *testEnv) balance(key solana.PublicKey) uint64 {
	account := e.bank.GetAccount(key)
	if account == nil {
		return 0
	}
	return account.Lamports
}

// send signs and processes a transaction; the first signer pays the fee.
func (e *testEnv) send(t *testing.T, signers []solana.PrivateKey, ixs ...solana.Instruction) *ledger.TransactionRecord {
	t.Helper()
	tx := e.signedTx(t, signers, ixs...)
	rec, err := e.bank.ProcessTransaction(tx)
	require.NoError(t, err)
	return rec
}

func (e *testEnv) signedTx(t *testing.T, signers []solana.PrivateKey, ixs ...solana.Instruction) *solana.Transaction {
	t.Helper()
	blockhash, _ := e.bank.LatestBlockhash()
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

func (e *testEnv) requireSuccess(t *testing.T, rec *ledger.TransactionRecord) {
	t.Helper()
	if rec.Err != nil {
		require.FailNow(t, "transaction failed", "%v\nlogs:\n%v", rec.Err, rec.Logs)
	}
}

func requireProgramError(t *testing.T, rec *ledger.TransactionRecord, want *crowdfunding.ProgramError) {
	t.Helper()
	require.NotNil(t, rec.Err, "expected %s", want.Name)
	require.Equal(t, ledger.TxErrInstructionError, rec.Err.Kind)
	require.ErrorIs(t, rec.Err, want)
}

func (e *testEnv) campaign(t *testing.T, key solana.PublicKey) *crowdfunding.Campaign {
	t.Helper()
	account := e.bank.GetAccount(key)
	require.NotNil(t, account, "campaign %s does not exist", key)
	campaign, err := crowdfunding.DeserializeCampaign(account.Data)
	require.NoError(t, err)
	return campaign
}

func (e *testEnv) globalState(t *testing.T) *crowdfunding.GlobalState {
	t.Helper()
	account := e.bank.GetAccount(e.statePDA)
	require.NotNil(t, account)
	state, err := crowdfunding.DeserializeGlobalState(account.Data)
	require.NoError(t, err)
	return state
}

func (e *testEnv) initializeStateIx(payer solana.PublicKey) solana.Instruction {
	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: solana.AccountMetaSlice{
			solana.Meta(e.statePDA).WRITE(),
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(solana.SystemProgramID),
		},
		DataBytes: crowdfunding.EncodeInitializeStateData(),
	}
}

func (e *testEnv) createCampaignIx(t *testing.T, owner solana.PublicKey, title string, deadline int64) (solana.Instruction, solana.PublicKey) {
	t.Helper()
	campaign, _, err := crowdfunding.DeriveCampaignPDA(programID, owner, title)
	require.NoError(t, err)
	return e.createCampaignIxAt(t, campaign, owner, title, deadline), campaign
}

func (e *testEnv) createCampaignIxAt(t *testing.T, campaign, owner solana.PublicKey, title string, deadline int64) solana.Instruction {
	t.Helper()
	data, err := crowdfunding.EncodeCreateCampaignData(crowdfunding.CreateCampaignArgs{
		Title:       title,
		Description: "A campaign for " + title,
		Deadline:    deadline,
	})
	require.NoError(t, err)
	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: solana.AccountMetaSlice{
			solana.Meta(campaign).WRITE(),
			solana.Meta(e.statePDA).WRITE(),
			solana.Meta(owner).WRITE().SIGNER(),
			solana.Meta(solana.SystemProgramID),
		},
		DataBytes: data,
	}
}

func contributeIx(t *testing.T, campaign, contributor solana.PublicKey, amount uint64) solana.Instruction {
	t.Helper()
	data, err := crowdfunding.EncodeContributeData(crowdfunding.ContributeArgs{Amount: amount})
	require.NoError(t, err)
	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: solana.AccountMetaSlice{
			solana.Meta(campaign).WRITE(),
			solana.Meta(contributor).WRITE().SIGNER(),
			solana.Meta(solana.SystemProgramID),
		},
		DataBytes: data,
	}
}

func (e *testEnv) withdrawIx(campaign, owner solana.PublicKey) solana.Instruction {
	return &solana.GenericInstruction{
		ProgID: programID,
		AccountValues: solana.AccountMetaSlice{
			solana.Meta(campaign).WRITE(),
			solana.Meta(owner).WRITE().SIGNER(),
			solana.Meta(e.statePDA).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		DataBytes: crowdfunding.EncodeWithdrawData(),
	}
}

// createCampaign creates a funded owner and a campaign expiring after ttl.
func (e *testEnv) createCampaign(t *testing.T, title string, ttl time.Duration) (solana.PrivateKey, solana.PublicKey) {
	t.Helper()
	owner := e.fund(t, 1_000_000_000)
	ix, campaign := e.createCampaignIx(t, owner.PublicKey(), title, e.now()+int64(ttl.Seconds()))
	e.requireSuccess(t, e.send(t, []solana.PrivateKey{owner}, ix))
	return owner, campaign
}
