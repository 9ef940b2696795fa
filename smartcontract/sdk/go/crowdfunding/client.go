package crowdfunding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jellydator/ttlcache/v3"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

const (
	// getMultipleAccounts accepts at most this many addresses per request.
	maxAccountsPerRequest = 100

	defaultFetchConcurrency = 8
	defaultRentCacheTTL     = 10 * time.Minute
)

type Client struct {
	log          *slog.Logger
	rpc          RPCClient
	executor     *executor
	rentCache    *ttlcache.Cache[uint64, uint64]
	rentCacheTTL time.Duration
	accountsPool pond.ResultPool[[]*solanarpc.Account]
}

type clientOptions struct {
	fetchConcurrency int
	rentCacheTTL     time.Duration
	executorOpts     []ExecutorOption
}

type Option func(*clientOptions)

// WithFetchConcurrency bounds the number of getMultipleAccounts requests in flight while
// listing campaigns.
func WithFetchConcurrency(n int) Option {
	return func(o *clientOptions) {
		o.fetchConcurrency = n
	}
}

func WithRentCacheTTL(ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.rentCacheTTL = ttl
	}
}

func WithExecutorOptions(opts ...ExecutorOption) Option {
	return func(o *clientOptions) {
		o.executorOpts = append(o.executorOpts, opts...)
	}
}

func New(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...Option) *Client {
	o := &clientOptions{
		fetchConcurrency: defaultFetchConcurrency,
		rentCacheTTL:     defaultRentCacheTTL,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		log:          log,
		rpc:          rpc,
		executor:     NewExecutor(log, rpc, signer, programID, o.executorOpts...),
		rentCache:    ttlcache.New(ttlcache.WithTTL[uint64, uint64](o.rentCacheTTL)),
		rentCacheTTL: o.rentCacheTTL,
		accountsPool: pond.NewResultPool[[]*solanarpc.Account](o.fetchConcurrency),
	}
}

func (c *Client) ProgramID() solana.PublicKey {
	if c.executor == nil {
		return solana.PublicKey{}
	}
	return c.executor.programID
}

func (c *Client) Signer() *solana.PrivateKey {
	if c.executor == nil {
		return nil
	}
	return c.executor.signer
}

// Close stops the worker pool used for listing campaigns.
func (c *Client) Close() {
	c.accountsPool.StopAndWait()
}

func (c *Client) getAccount(ctx context.Context, address solana.PublicKey) (*solanarpc.Account, error) {
	account, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		return nil, fmt.Errorf("failed to get account data: %w", err)
	}
	if account == nil || account.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if !account.Value.Owner.Equals(c.ProgramID()) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrInvalidAccountOwner, address, account.Value.Owner)
	}
	return account.Value, nil
}

// GetGlobalState fetches the campaign registry.
func (c *Client) GetGlobalState(ctx context.Context) (*GlobalState, error) {
	pda, _, err := DeriveStatePDA(c.ProgramID())
	if err != nil {
		return nil, fmt.Errorf("failed to derive PDA: %w", err)
	}
	account, err := c.getAccount(ctx, pda)
	if err != nil {
		return nil, err
	}
	return DeserializeGlobalState(account.Data.GetBinary())
}

// GetCampaign fetches a campaign by address.
func (c *Client) GetCampaign(ctx context.Context, address solana.PublicKey) (*CampaignInfo, error) {
	account, err := c.getAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	campaign, err := DeserializeCampaign(account.Data.GetBinary())
	if err != nil {
		return nil, err
	}
	return &CampaignInfo{Address: address, Campaign: campaign, Lamports: account.Lamports}, nil
}

// GetCampaignByTitle fetches the campaign created by owner with the given title.
func (c *Client) GetCampaignByTitle(ctx context.Context, owner solana.PublicKey, title string) (*CampaignInfo, error) {
	pda, _, err := DeriveCampaignPDA(c.ProgramID(), owner, title)
	if err != nil {
		return nil, fmt.Errorf("failed to derive PDA: %w", err)
	}
	return c.GetCampaign(ctx, pda)
}

// ListCampaigns returns every address in the global state, in registry order. Addresses whose
// account no longer exists are returned as closed rather than dropped, so callers can tell
// dangling entries apart. Accounts that cannot be decoded are skipped.
func (c *Client) ListCampaigns(ctx context.Context) ([]CampaignInfo, error) {
	state, err := c.GetGlobalState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get global state: %w", err)
	}

	group := c.accountsPool.NewGroupContext(ctx)
	for start := 0; start < len(state.Campaigns); start += maxAccountsPerRequest {
		end := min(start+maxAccountsPerRequest, len(state.Campaigns))
		chunk := state.Campaigns[start:end]

		group.SubmitErr(func() ([]*solanarpc.Account, error) {
			res, err := c.rpc.GetMultipleAccounts(ctx, chunk...)
			if err != nil {
				return nil, fmt.Errorf("failed to get campaign accounts: %w", err)
			}
			if res == nil || len(res.Value) != len(chunk) {
				return nil, fmt.Errorf("expected %d accounts in response", len(chunk))
			}
			return res.Value, nil
		})
	}
	chunks, err := group.Wait()
	if err != nil {
		return nil, err
	}

	campaigns := make([]CampaignInfo, 0, len(state.Campaigns))
	i := 0
	for _, accounts := range chunks {
		for _, account := range accounts {
			address := state.Campaigns[i]
			i++
			info := CampaignInfo{Address: address}
			if account != nil && account.Owner.Equals(c.ProgramID()) {
				campaign, err := DeserializeCampaign(account.Data.GetBinary())
				if err != nil {
					c.log.Warn("failed to deserialize campaign account", "pubkey", address, "error", err)
					continue
				}
				info.Campaign = campaign
				info.Lamports = account.Lamports
			}
			campaigns = append(campaigns, info)
		}
	}
	return campaigns, nil
}

// MinimumBalance returns the rent-exempt minimum for an account of the given size. Results
// are cached, since rent parameters only change with a cluster upgrade.
func (c *Client) MinimumBalance(ctx context.Context, size uint64) (uint64, error) {
	if item := c.rentCache.Get(size); item != nil {
		return item.Value(), nil
	}
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get minimum balance for rent exemption: %w", err)
	}
	c.rentCache.Set(size, lamports, c.rentCacheTTL)
	return lamports, nil
}

// ActualContribution returns the spendable balance of a campaign: everything above its
// rent-exempt reserve, including lamports transferred to the address directly.
func (c *Client) ActualContribution(ctx context.Context, info *CampaignInfo) (uint64, error) {
	if info.Closed() {
		return 0, nil
	}
	rent, err := c.MinimumBalance(ctx, CampaignAccountSize)
	if err != nil {
		return 0, err
	}
	return program.SpendableBalance(info.Lamports, rent), nil
}

func (c *Client) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	res, err := c.rpc.GetBalance(ctx, address, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return res.Value, nil
}

func (c *Client) signerKey() (solana.PublicKey, error) {
	signer := c.Signer()
	if signer == nil {
		return solana.PublicKey{}, ErrNoPrivateKey
	}
	return signer.PublicKey(), nil
}

// InitializeState creates the global state account, paid for by the signer.
func (c *Client) InitializeState(ctx context.Context) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	payer, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	instruction, err := BuildInitializeStateInstruction(c.ProgramID(), InitializeStateInstructionConfig{Payer: payer})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return sig, res, fmt.Errorf("failed to execute instruction: %w", err)
	}
	return sig, res, nil
}

// CreateCampaign creates a campaign owned by the signer and returns its address.
func (c *Client) CreateCampaign(ctx context.Context, title, description string, deadline time.Time) (solana.PublicKey, solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.PublicKey{}, solana.Signature{}, nil, err
	}
	config := CreateCampaignInstructionConfig{
		Owner:       owner,
		Title:       title,
		Description: description,
		Deadline:    deadline.Unix(),
	}
	instruction, err := BuildCreateCampaignInstruction(c.ProgramID(), config)
	if err != nil {
		return solana.PublicKey{}, solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	address := instruction.Accounts()[0].PublicKey

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return solana.PublicKey{}, sig, res, fmt.Errorf("failed to execute instruction: %w", err)
	}
	return address, sig, res, nil
}

// Contribute transfers amount lamports from the signer to the campaign.
func (c *Client) Contribute(ctx context.Context, campaign solana.PublicKey, amount uint64) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	contributor, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	instruction, err := BuildContributeInstruction(c.ProgramID(), ContributeInstructionConfig{
		Campaign:    campaign,
		Contributor: contributor,
		Amount:      amount,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return sig, res, fmt.Errorf("failed to execute instruction: %w", err)
	}
	return sig, res, nil
}

// Withdraw closes an expired campaign owned by the signer and sweeps its balance to the signer.
func (c *Client) Withdraw(ctx context.Context, campaign solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	owner, err := c.signerKey()
	if err != nil {
		return solana.Signature{}, nil, err
	}
	instruction, err := BuildWithdrawInstruction(c.ProgramID(), WithdrawInstructionConfig{
		Campaign: campaign,
		Owner:    owner,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return sig, res, fmt.Errorf("failed to execute instruction: %w", err)
	}
	return sig, res, nil
}
