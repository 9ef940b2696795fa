package crowdfunding_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/go-cmp/cmp"
	"github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
	"github.com/stretchr/testify/require"
)

func encodeCampaign(t *testing.T, c *crowdfunding.Campaign) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, c.Serialize(buf))
	data := make([]byte, crowdfunding.CampaignAccountSize)
	copy(data, buf.Bytes())
	return data
}

func TestCrowdfunding_CampaignAccountSize(t *testing.T) {
	t.Parallel()
	require.Equal(t, 1264, crowdfunding.CampaignAccountSize)
	require.Equal(t, 12, crowdfunding.GlobalStateBaseSize)
	require.Equal(t, 12+3*32, crowdfunding.GlobalStateSize(3))
}

func TestCrowdfunding_Campaign_Serialization(t *testing.T) {
	t.Parallel()

	want := &crowdfunding.Campaign{
		Owner:             solana.NewWallet().PublicKey(),
		Title:             "My Campaign",
		Description:       "Raising lamports for a good cause",
		Deadline:          1_700_000_005,
		TotalContribution: 1_000_000,
	}
	data := encodeCampaign(t, want)
	require.Equal(t, crowdfunding.CampaignDiscriminator[:], data[:crowdfunding.DiscriminatorSize])

	got, err := crowdfunding.DeserializeCampaign(data)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("campaign mismatch (-want +got):\n%s", diff)
	}

	t.Run("fields at maximum length fill the account", func(t *testing.T) {
		full := &crowdfunding.Campaign{
			Owner:             solana.NewWallet().PublicKey(),
			Title:             strings.Repeat("t", crowdfunding.MaxTitleLength),
			Description:       strings.Repeat("d", crowdfunding.MaxDescriptionLength),
			Deadline:          -1,
			TotalContribution: ^uint64(0),
		}
		buf := new(bytes.Buffer)
		require.NoError(t, full.Serialize(buf))
		require.Equal(t, crowdfunding.CampaignAccountSize, buf.Len())

		got, err := crowdfunding.DeserializeCampaign(buf.Bytes())
		require.NoError(t, err)
		require.Equal(t, full, got)
	})

	t.Run("oversized fields are rejected", func(t *testing.T) {
		err := (&crowdfunding.Campaign{Title: strings.Repeat("t", crowdfunding.MaxTitleLength+1)}).Serialize(new(bytes.Buffer))
		require.ErrorIs(t, err, crowdfunding.ErrSizeExceeded)
		err = (&crowdfunding.Campaign{Description: strings.Repeat("d", crowdfunding.MaxDescriptionLength+1)}).Serialize(new(bytes.Buffer))
		require.ErrorIs(t, err, crowdfunding.ErrSizeExceeded)
	})
}

func TestCrowdfunding_Campaign_DeserializeErrors(t *testing.T) {
	t.Parallel()

	valid := encodeCampaign(t, &crowdfunding.Campaign{
		Owner:    solana.NewWallet().PublicKey(),
		Title:    "title",
		Deadline: 10,
	})
	titleLenOffset := crowdfunding.DiscriminatorSize + 32

	tests := []struct {
		name    string
		data    func() []byte
		wantErr error
	}{
		{
			name:    "empty",
			data:    func() []byte { return nil },
			wantErr: crowdfunding.ErrCorruptData,
		},
		{
			name: "global state discriminator",
			data: func() []byte {
				data := bytes.Clone(valid)
				copy(data, crowdfunding.GlobalStateDiscriminator[:])
				return data
			},
			wantErr: crowdfunding.ErrAccountDiscriminatorMismatch,
		},
		{
			name:    "truncated owner",
			data:    func() []byte { return bytes.Clone(valid[:crowdfunding.DiscriminatorSize+16]) },
			wantErr: crowdfunding.ErrCorruptData,
		},
		{
			name: "title length past the end",
			data: func() []byte {
				data := bytes.Clone(valid)
				binary.LittleEndian.PutUint32(data[titleLenOffset:], 1<<30)
				return data
			},
			wantErr: crowdfunding.ErrCorruptData,
		},
		{
			name: "title length above the maximum",
			data: func() []byte {
				data := bytes.Clone(valid)
				binary.LittleEndian.PutUint32(data[titleLenOffset:], crowdfunding.MaxTitleLength+1)
				return data
			},
			wantErr: crowdfunding.ErrCorruptData,
		},
		{
			name:    "missing totals",
			data:    func() []byte { return bytes.Clone(valid[:titleLenOffset+4+5+4+4]) },
			wantErr: crowdfunding.ErrCorruptData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := crowdfunding.DeserializeCampaign(tt.data())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCrowdfunding_GlobalState_Serialization(t *testing.T) {
	t.Parallel()

	want := &crowdfunding.GlobalState{
		Campaigns: []solana.PublicKey{solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()},
	}
	buf := new(bytes.Buffer)
	require.NoError(t, want.Serialize(buf))
	require.Equal(t, crowdfunding.GlobalStateSize(2), buf.Len())

	got, err := crowdfunding.DeserializeGlobalState(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, want, got)

	t.Run("empty list", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, (&crowdfunding.GlobalState{}).Serialize(buf))
		got, err := crowdfunding.DeserializeGlobalState(buf.Bytes())
		require.NoError(t, err)
		require.Empty(t, got.Campaigns)
	})

	t.Run("campaign discriminator", func(t *testing.T) {
		data := encodeCampaign(t, &crowdfunding.Campaign{Title: "x"})
		_, err := crowdfunding.DeserializeGlobalState(data)
		require.ErrorIs(t, err, crowdfunding.ErrAccountDiscriminatorMismatch)
	})

	t.Run("count past the end", func(t *testing.T) {
		data := bytes.Clone(buf.Bytes())
		binary.LittleEndian.PutUint32(data[crowdfunding.DiscriminatorSize:], 3)
		_, err := crowdfunding.DeserializeGlobalState(data)
		require.ErrorIs(t, err, crowdfunding.ErrCorruptData)
	})
}
