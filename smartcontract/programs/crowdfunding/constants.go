package crowdfunding

// PDA seeds
const (
	StateSeed    = "campaign_state"
	CampaignSeed = "campaign"
)

// Limits
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000

	// MaxSeedLength is the per-seed byte limit of program address derivation. Titles are used
	// verbatim as a seed, so a usable title is bounded by this as well as MaxTitleLength.
	MaxSeedLength = 32
)

// Account sizes
const (
	DiscriminatorSize = 8

	// CampaignAccountSize is fixed at allocation time from the field maximums:
	// discriminator + owner + title + description + deadline + total contribution.
	CampaignAccountSize = DiscriminatorSize + 32 + (4 + MaxTitleLength) + (4 + MaxDescriptionLength) + 8 + 8

	// GlobalStateBaseSize holds the discriminator and the list length prefix. Every registered
	// campaign adds GlobalStateEntrySize bytes.
	GlobalStateBaseSize  = DiscriminatorSize + 4
	GlobalStateEntrySize = 32

	// MaxAccountSize is the largest account the runtime will allocate.
	MaxAccountSize = 10 * 1024 * 1024
)

// MaxCampaigns is the number of entries that fit in a maximally sized GlobalState account.
const MaxCampaigns = (MaxAccountSize - GlobalStateBaseSize) / GlobalStateEntrySize

// GlobalStateSize returns the account size needed to hold n campaign addresses.
func GlobalStateSize(n int) int {
	return GlobalStateBaseSize + n*GlobalStateEntrySize
}
