package onion

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/lib/channel"
)

// Hop identifies one relay of an onion path by its auxiliary keys.
type Hop struct {
	Ed25519 core.Ed25519PubKey
	X25519  core.X25519PubKey
}

// Builder constructs layered onion request blobs ready to be posted to an
// entry node's /onion_req/v2 endpoint.
type Builder struct {
	encType *channel.EncType
}

// NewBuilder creates a Builder which encrypts every layer with et.
func NewBuilder(et channel.EncType) *Builder {
	return &Builder{encType: &et}
}

// NewRandomizedBuilder creates a Builder which picks a random cipher for
// each layer.
func NewRandomizedBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) pick() channel.EncType {
	if b.encType != nil {
		return *b.encType
	}
	switch rand.Intn(3) {
	case 0:
		return channel.AESCBC
	case 1:
		return channel.AESGCM
	default:
		return channel.XChaCha20
	}
}

// Request is a built onion request. The blob is opaque to every hop but the
// first; the Request retains the innermost ephemeral key so the caller can
// decrypt the final destination's response.
type Request struct {
	Blob []byte

	finalEnc     *channel.Encryption
	finalHop     core.X25519PubKey
	finalEncType channel.EncType
}

// Build wraps payload and control for the final destination and encrypts one
// layer per hop, innermost first. control is the json control data delivered
// to the final hop (e.g. {"headers":[]} for a storage server request).
func (b *Builder) Build(hops []Hop, payload, control []byte) (*Request, error) {
	if len(hops) == 0 {
		return nil, errors.New("need at least one hop")
	}
	if len(hops) > MaxHops {
		return nil, fmt.Errorf("path of %d hops exceeds limit of %d", len(hops), MaxHops)
	}

	enc, err := channel.NewEphemeral()
	if err != nil {
		return nil, fmt.Errorf("ephemeral key: %s", err)
	}

	// Innermost layer: the request itself, encrypted for the final hop.
	et := b.pick()
	final := hops[len(hops)-1]
	blob, err := enc.Encrypt(et, EncodeFrame(payload, control), final.X25519)
	if err != nil {
		return nil, fmt.Errorf("encrypt final layer: %s", err)
	}
	req := &Request{
		finalEnc:     enc,
		finalHop:     final.X25519,
		finalEncType: et,
	}

	// Each earlier hop gets the previous blob plus routing data pointing at
	// the next hop, encrypted with a fresh ephemeral key.
	for i := len(hops) - 2; i >= 0; i-- {
		routing, err := json.Marshal(map[string]string{
			"destination":   hops[i+1].Ed25519.String(),
			"ephemeral_key": enc.PubKey().String(),
			"enc_type":      et.String(),
		})
		if err != nil {
			return nil, err
		}
		framed := EncodeFrame(blob, routing)

		enc, err = channel.NewEphemeral()
		if err != nil {
			return nil, fmt.Errorf("ephemeral key: %s", err)
		}
		et = b.pick()
		blob, err = enc.Encrypt(et, framed, hops[i].X25519)
		if err != nil {
			return nil, fmt.Errorf("encrypt layer %d: %s", i, err)
		}
	}

	// The outermost frame tells the entry node how to decrypt its layer.
	control, err = json.Marshal(map[string]string{
		"ephemeral_key": enc.PubKey().String(),
		"enc_type":      et.String(),
	})
	if err != nil {
		return nil, err
	}
	req.Blob = EncodeFrame(blob, control)
	return req, nil
}

// DecryptResponse decrypts the final destination's reply to a built request.
// Replies are encrypted once, by the final hop, with the innermost ephemeral
// key, and are sometimes base64-wrapped in transit; both forms are accepted.
func (r *Request) DecryptResponse(body []byte) ([]byte, error) {
	plaintext, err := r.finalEnc.Decrypt(r.finalEncType, body, r.finalHop)
	if err == nil {
		return plaintext, nil
	}
	decoded, b64Err := base64.StdEncoding.DecodeString(string(body))
	if b64Err != nil {
		return nil, fmt.Errorf("decrypt response: %s", err)
	}
	plaintext, err = r.finalEnc.Decrypt(r.finalEncType, decoded, r.finalHop)
	if err != nil {
		return nil, fmt.Errorf("decrypt base64 response: %s", err)
	}
	return plaintext, nil
}
