package crowdfunding

import (
	"github.com/gagliardetto/solana-go"
	program "github.com/malbeclabs/crowdfunding/smartcontract/programs/crowdfunding"
)

type (
	Campaign    = program.Campaign
	GlobalState = program.GlobalState
)

var (
	DeserializeCampaign    = program.DeserializeCampaign
	DeserializeGlobalState = program.DeserializeGlobalState
)

const (
	CampaignAccountSize  = program.CampaignAccountSize
	MaxTitleLength       = program.MaxTitleLength
	MaxDescriptionLength = program.MaxDescriptionLength
	MaxSeedLength        = program.MaxSeedLength
)

type CampaignState string

const (
	CampaignStateActive  CampaignState = "active"
	CampaignStateExpired CampaignState = "expired"
	CampaignStateClosed  CampaignState = "closed"
)

// CampaignInfo is a campaign address as listed in the global state, with its record and
// balance when the account still exists.
type CampaignInfo struct {
	Address  solana.PublicKey
	Campaign *Campaign
	Lamports uint64
}

// Closed reports whether the campaign account no longer exists, either because it was
// withdrawn or because the global state entry is dangling.
func (i *CampaignInfo) Closed() bool {
	return i.Campaign == nil
}

// State returns the lifecycle state of the campaign at the given unix time.
func (i *CampaignInfo) State(now int64) CampaignState {
	switch {
	case i.Campaign == nil:
		return CampaignStateClosed
	case now >= i.Campaign.Deadline:
		return CampaignStateExpired
	default:
		return CampaignStateActive
	}
}
