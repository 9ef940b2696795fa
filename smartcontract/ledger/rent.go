package ledger

const (
	AccountStorageOverhead     = 128
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2
)

// RentFunc returns the minimum balance an account of the given data size must hold to be
// exempt from rent collection.
type RentFunc func(size uint64) uint64

// DefaultRent is the rent-exempt minimum used by mainnet.
func DefaultRent(size uint64) uint64 {
	return (size + AccountStorageOverhead) * DefaultLamportsPerByteYear * DefaultExemptionThreshold
}
