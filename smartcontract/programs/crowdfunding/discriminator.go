package crowdfunding

import (
	"crypto/sha256"
)

// Discriminator is the 8-byte tag that prefixes account data and instruction data.
type Discriminator [DiscriminatorSize]byte

func accountDiscriminator(name string) Discriminator {
	sum := sha256.Sum256([]byte("account:" + name))
	var out Discriminator
	copy(out[:], sum[:DiscriminatorSize])
	return out
}

func instructionDiscriminator(name string) Discriminator {
	sum := sha256.Sum256([]byte("global:" + name))
	var out Discriminator
	copy(out[:], sum[:DiscriminatorSize])
	return out
}

var (
	CampaignDiscriminator    = accountDiscriminator("Campaign")
	GlobalStateDiscriminator = accountDiscriminator("CampaignState")
)

var (
	InitializeStateDiscriminator = instructionDiscriminator("initialize_state")
	CreateCampaignDiscriminator  = instructionDiscriminator("create_campaign")
	ContributeDiscriminator      = instructionDiscriminator("contribute")
	WithdrawDiscriminator        = instructionDiscriminator("withdraw")
)
