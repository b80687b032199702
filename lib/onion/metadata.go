// Package onion implements the mn-to-mn onion request encoding: a bencoded
// envelope carrying an encrypted blob plus the routing metadata the next hop
// needs to peel its layer.
package onion

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/lib/channel"

	bencode "github.com/jackpal/bencode-go"
)

// MaxHops is the hop count at which relaying terminates.
const MaxHops = 15

// Metadata carries the routing data attached to an onion request layer.
type Metadata struct {
	// EphemeralKey is the x25519 pubkey the payload was encrypted with.
	EphemeralKey core.X25519PubKey

	// EncType is the cipher of the payload. Senders older than HF18 omit it,
	// implying aes-gcm.
	EncType channel.EncType

	// HopNo counts relays so far; incremented at each hop.
	HopNo int
}

type wireEnvelope struct {
	Data         string `bencode:"d"`
	EphemeralKey string `bencode:"ek"`
	EncType      string `bencode:"et"`
	HopNo        int64  `bencode:"nh"`
}

// Encode encodes an encrypted payload and its metadata into the bencoded
// envelope relayed between master nodes.
func Encode(payload []byte, md Metadata) ([]byte, error) {
	var buf bytes.Buffer
	err := bencode.Marshal(&buf, wireEnvelope{
		Data:         string(payload),
		EphemeralKey: string(md.EphemeralKey[:]),
		EncType:      md.EncType.String(),
		HopNo:        int64(md.HopNo),
	})
	if err != nil {
		return nil, fmt.Errorf("bencode: %s", err)
	}
	return buf.Bytes(), nil
}

// Decode decodes a bencoded onion envelope. Returns an error if the payload
// or ephemeral key is missing or malformed.
func Decode(data []byte) ([]byte, Metadata, error) {
	var w wireEnvelope
	if err := bencode.Unmarshal(bytes.NewReader(data), &w); err != nil {
		return nil, Metadata{}, fmt.Errorf("bencode: %s", err)
	}
	if len(w.Data) == 0 {
		return nil, Metadata{}, errors.New("onion envelope missing payload")
	}
	if len(w.EphemeralKey) != core.KeyLength {
		return nil, Metadata{}, fmt.Errorf(
			"onion envelope ephemeral key has invalid length %d", len(w.EphemeralKey))
	}
	et, err := channel.ParseEncType(w.EncType)
	if err != nil {
		return nil, Metadata{}, err
	}
	if w.HopNo < 0 || w.HopNo > MaxHops {
		return nil, Metadata{}, fmt.Errorf("onion envelope hop count %d out of range", w.HopNo)
	}
	var md Metadata
	copy(md.EphemeralKey[:], w.EphemeralKey)
	md.EncType = et
	md.HopNo = int(w.HopNo)
	return []byte(w.Data), md, nil
}
