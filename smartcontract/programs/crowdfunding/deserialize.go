package crowdfunding

import "fmt"

// DeserializeCampaign decodes campaign account data. It fails with
// ErrAccountDiscriminatorMismatch for any other record type and with ErrCorruptData for
// truncated or inconsistent data.
func DeserializeCampaign(data []byte) (*Campaign, error) {
	var campaign Campaign
	if err := campaign.Deserialize(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize campaign: %w", err)
	}
	return &campaign, nil
}

// DeserializeGlobalState decodes the global state account data.
func DeserializeGlobalState(data []byte) (*GlobalState, error) {
	var state GlobalState
	if err := state.Deserialize(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize global state: %w", err)
	}
	return &state, nil
}
