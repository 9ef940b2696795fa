package crowdfunding_test

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/require"
)

func TestSDK_Crowdfunding_BuildCreateCampaignInstruction(t *testing.T) {
	t.Parallel()

	owner := solana.NewWallet().PublicKey()
	config := crowdfunding.CreateCampaignInstructionConfig{
		Owner:       owner,
		Title:       "My Campaign",
		Description: "desc",
		Deadline:    1_700_000_005,
	}
	ix, err := crowdfunding.BuildCreateCampaignInstruction(testProgramID, config)
	require.NoError(t, err)
	require.Equal(t, testProgramID, ix.ProgramID())

	campaign, _, err := crowdfunding.DeriveCampaignPDA(testProgramID, owner, "My Campaign")
	require.NoError(t, err)
	state, _, err := crowdfunding.DeriveStatePDA(testProgramID)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	require.Equal(t, &solana.AccountMeta{PublicKey: campaign, IsWritable: true}, accounts[0])
	require.Equal(t, &solana.AccountMeta{PublicKey: state, IsWritable: true}, accounts[1])
	require.Equal(t, &solana.AccountMeta{PublicKey: owner, IsSigner: true, IsWritable: true}, accounts[2])
	require.Equal(t, &solana.AccountMeta{PublicKey: solana.SystemProgramID}, accounts[3])

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, program.CreateCampaignDiscriminator[:], data[:8])
	var args program.CreateCampaignArgs
	require.NoError(t, borsh.Deserialize(&args, data[8:]))
	require.Equal(t, program.CreateCampaignArgs{Title: "My Campaign", Description: "desc", Deadline: 1_700_000_005}, args)
}

func TestSDK_Crowdfunding_InstructionConfig_Validate(t *testing.T) {
	t.Parallel()

	key := solana.NewWallet().PublicKey()
	tests := []struct {
		name    string
		build   func() error
		wantErr string
	}{
		{
			name: "initialize without payer",
			build: func() error {
				_, err := crowdfunding.BuildInitializeStateInstruction(testProgramID, crowdfunding.InitializeStateInstructionConfig{})
				return err
			},
			wantErr: "payer public key is required",
		},
		{
			name: "create without title",
			build: func() error {
				_, err := crowdfunding.BuildCreateCampaignInstruction(testProgramID, crowdfunding.CreateCampaignInstructionConfig{Owner: key, Deadline: 1})
				return err
			},
			wantErr: "title is required",
		},
		{
			name: "create with title longer than a seed",
			build: func() error {
				_, err := crowdfunding.BuildCreateCampaignInstruction(testProgramID, crowdfunding.CreateCampaignInstructionConfig{
					Owner: key, Title: strings.Repeat("t", 33), Deadline: 1,
				})
				return err
			},
			wantErr: "title length 33 exceeds max 32",
		},
		{
			name: "create with long description",
			build: func() error {
				_, err := crowdfunding.BuildCreateCampaignInstruction(testProgramID, crowdfunding.CreateCampaignInstructionConfig{
					Owner: key, Title: "t", Description: strings.Repeat("d", 1001), Deadline: 1,
				})
				return err
			},
			wantErr: "description length 1001 exceeds max 1000",
		},
		{
			name: "create without deadline",
			build: func() error {
				_, err := crowdfunding.BuildCreateCampaignInstruction(testProgramID, crowdfunding.CreateCampaignInstructionConfig{Owner: key, Title: "t"})
				return err
			},
			wantErr: "deadline is required",
		},
		{
			name: "contribute without campaign",
			build: func() error {
				_, err := crowdfunding.BuildContributeInstruction(testProgramID, crowdfunding.ContributeInstructionConfig{Contributor: key})
				return err
			},
			wantErr: "campaign public key is required",
		},
		{
			name: "withdraw without owner",
			build: func() error {
				_, err := crowdfunding.BuildWithdrawInstruction(testProgramID, crowdfunding.WithdrawInstructionConfig{Campaign: key})
				return err
			},
			wantErr: "owner public key is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.build()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSDK_Crowdfunding_BuildWithdrawInstruction(t *testing.T) {
	t.Parallel()

	campaign := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	ix, err := crowdfunding.BuildWithdrawInstruction(testProgramID, crowdfunding.WithdrawInstructionConfig{Campaign: campaign, Owner: owner})
	require.NoError(t, err)

	state, _, err := crowdfunding.DeriveStatePDA(testProgramID)
	require.NoError(t, err)
	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	require.Equal(t, campaign, accounts[0].PublicKey)
	require.Equal(t, owner, accounts[1].PublicKey)
	require.True(t, accounts[1].IsSigner)
	require.Equal(t, state, accounts[2].PublicKey)
	require.True(t, accounts[2].IsWritable)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, program.WithdrawDiscriminator[:], data)
}
