package crowdfunding

import (
	"bytes"
	"fmt"
	"io"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// GlobalState is the registry of every campaign address ever created. Entries are not
// removed on withdrawal unless the program compacts on withdraw, so readers must treat each
// address as possibly closed.
type GlobalState struct {
	Campaigns []solana.PublicKey // 4-byte count + N*32 bytes
}

func (g *GlobalState) Serialize(w io.Writer) error {
	if GlobalStateSize(len(g.Campaigns)) > MaxAccountSize {
		return fmt.Errorf("%w: %d campaigns exceed the maximum of %d", ErrSizeExceeded, len(g.Campaigns), MaxCampaigns)
	}
	enc := bin.NewBorshEncoder(w)
	if err := enc.WriteBytes(GlobalStateDiscriminator[:], false); err != nil {
		return err
	}
	if err := enc.Encode(g.Campaigns); err != nil {
		return err
	}
	return nil
}

func (g *GlobalState) Deserialize(data []byte) error {
	dec := bin.NewBorshDecoder(data)
	if err := readDiscriminator(dec, GlobalStateDiscriminator); err != nil {
		return err
	}
	count, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if uint64(count)*GlobalStateEntrySize > uint64(dec.Remaining()) {
		return fmt.Errorf("%w: %d campaigns declared but only %d bytes remain", ErrCorruptData, count, dec.Remaining())
	}
	g.Campaigns = make([]solana.PublicKey, 0, count)
	for i := uint32(0); i < count; i++ {
		key, err := readPublicKey(dec)
		if err != nil {
			return err
		}
		g.Campaigns = append(g.Campaigns, key)
	}
	return nil
}

func (g *GlobalState) contains(address solana.PublicKey) bool {
	for _, key := range g.Campaigns {
		if key.Equals(address) {
			return true
		}
	}
	return false
}

// Campaign is a single fundraising campaign. The account is always CampaignAccountSize bytes;
// the encoded record is zero padded to that size.
type Campaign struct {
	Owner             solana.PublicKey // 32 bytes
	Title             string           // 4-byte length prefix + at most 200 bytes
	Description       string           // 4-byte length prefix + at most 1000 bytes
	Deadline          int64            // 8 bytes LE, unix seconds
	TotalContribution uint64           // 8 bytes LE
}

func (c *Campaign) Validate() error {
	if len(c.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title is %d bytes, max %d", ErrSizeExceeded, len(c.Title), MaxTitleLength)
	}
	if len(c.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description is %d bytes, max %d", ErrSizeExceeded, len(c.Description), MaxDescriptionLength)
	}
	return nil
}

func (c *Campaign) Serialize(w io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	enc := bin.NewBorshEncoder(w)
	if err := enc.WriteBytes(CampaignDiscriminator[:], false); err != nil {
		return err
	}
	if err := enc.Encode(c.Owner); err != nil {
		return err
	}
	if err := enc.Encode(c.Title); err != nil {
		return err
	}
	if err := enc.Encode(c.Description); err != nil {
		return err
	}
	if err := enc.Encode(c.Deadline); err != nil {
		return err
	}
	if err := enc.Encode(c.TotalContribution); err != nil {
		return err
	}
	return nil
}

func (c *Campaign) Deserialize(data []byte) error {
	dec := bin.NewBorshDecoder(data)
	if err := readDiscriminator(dec, CampaignDiscriminator); err != nil {
		return err
	}
	owner, err := readPublicKey(dec)
	if err != nil {
		return err
	}
	title, err := readString(dec, MaxTitleLength)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	description, err := readString(dec, MaxDescriptionLength)
	if err != nil {
		return fmt.Errorf("description: %w", err)
	}
	deadline, err := dec.ReadInt64(bin.LE)
	if err != nil {
		return fmt.Errorf("%w: deadline: %v", ErrCorruptData, err)
	}
	total, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("%w: total contribution: %v", ErrCorruptData, err)
	}
	c.Owner = owner
	c.Title = title
	c.Description = description
	c.Deadline = deadline
	c.TotalContribution = total
	return nil
}

// encodeAccount serializes a record and zero pads it to size bytes.
func encodeAccount(record interface{ Serialize(io.Writer) error }, size int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := record.Serialize(buf); err != nil {
		return nil, err
	}
	if buf.Len() > size {
		return nil, fmt.Errorf("%w: record is %d bytes, account is %d", ErrSizeExceeded, buf.Len(), size)
	}
	out := make([]byte, size)
	copy(out, buf.Bytes())
	return out, nil
}

func readDiscriminator(dec *bin.Decoder, want Discriminator) error {
	raw, err := dec.ReadNBytes(DiscriminatorSize)
	if err != nil {
		return fmt.Errorf("%w: account data too short for discriminator", ErrCorruptData)
	}
	if Discriminator(raw) != want {
		return fmt.Errorf("%w: got %x, want %x", ErrAccountDiscriminatorMismatch, raw, want[:])
	}
	return nil
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return solana.PublicKeyFromBytes(raw), nil
}

func readString(dec *bin.Decoder, maxLen int) (string, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if uint64(n) > uint64(dec.Remaining()) {
		return "", fmt.Errorf("%w: declared length %d exceeds remaining %d bytes", ErrCorruptData, n, dec.Remaining())
	}
	if int(n) > maxLen {
		return "", fmt.Errorf("%w: declared length %d exceeds max %d", ErrCorruptData, n, maxLen)
	}
	raw, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return string(raw), nil
}
