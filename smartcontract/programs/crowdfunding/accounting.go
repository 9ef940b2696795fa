package crowdfunding

// RentFunc returns the rent-exempt minimum balance for an account of the given data size.
type RentFunc func(size uint64) uint64

// SpendableBalance is the part of an account balance above its rent-exempt reserve.
func SpendableBalance(lamports, reserve uint64) uint64 {
	if lamports <= reserve {
		return 0
	}
	return lamports - reserve
}

// ActualContribution is the spendable balance of a campaign account. It counts direct
// transfers to the campaign address as well as recorded contributions.
func ActualContribution(lamports uint64, rent RentFunc) uint64 {
	return SpendableBalance(lamports, rent(CampaignAccountSize))
}
