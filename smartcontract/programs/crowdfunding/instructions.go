package crowdfunding

import (
	"fmt"

	"github.com/near/borsh-go"
)

// Instruction data is an 8-byte discriminator followed by the borsh encoded arguments.

type CreateCampaignArgs struct {
	Title       string
	Description string
	Deadline    int64
}

type ContributeArgs struct {
	Amount uint64
}

func splitInstruction(data []byte) (Discriminator, []byte, error) {
	if len(data) < DiscriminatorSize {
		return Discriminator{}, nil, fmt.Errorf("%w: instruction data is %d bytes", ErrInvalidInstruction, len(data))
	}
	return Discriminator(data[:DiscriminatorSize]), data[DiscriminatorSize:], nil
}

func decodeArgs(data []byte, out any) error {
	if err := borsh.Deserialize(out, data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	return nil
}

// EncodeInitializeStateData returns the instruction data for initialize_state.
func EncodeInitializeStateData() []byte {
	return append([]byte(nil), InitializeStateDiscriminator[:]...)
}

// EncodeCreateCampaignData returns the instruction data for create_campaign.
func EncodeCreateCampaignData(args CreateCampaignArgs) ([]byte, error) {
	return borsh.Serialize(struct {
		Discriminator Discriminator
		Title         string
		Description   string
		Deadline      int64
	}{
		Discriminator: CreateCampaignDiscriminator,
		Title:         args.Title,
		Description:   args.Description,
		Deadline:      args.Deadline,
	})
}

// EncodeContributeData returns the instruction data for contribute.
func EncodeContributeData(args ContributeArgs) ([]byte, error) {
	return borsh.Serialize(struct {
		Discriminator Discriminator
		Amount        uint64
	}{
		Discriminator: ContributeDiscriminator,
		Amount:        args.Amount,
	})
}

// EncodeWithdrawData returns the instruction data for withdraw.
func EncodeWithdrawData() []byte {
	return append([]byte(nil), WithdrawDiscriminator[:]...)
}
