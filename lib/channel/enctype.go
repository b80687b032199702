package channel

import "fmt"

// EncType identifies the cipher used to encrypt a channel payload.
type EncType int

// Supported channel ciphers.
const (
	AESCBC EncType = iota
	AESGCM
	XChaCha20
)

// String renders the wire name of the enc type.
func (t EncType) String() string {
	switch t {
	case AESCBC:
		return "aes-cbc"
	case AESGCM:
		return "aes-gcm"
	case XChaCha20:
		return "xchacha20"
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// ParseEncType parses an enc type from its wire name. An empty name defaults
// to aes-gcm for backwards compatibility with pre-HF18 senders.
func ParseEncType(s string) (EncType, error) {
	switch s {
	case "aes-cbc", "cbc":
		return AESCBC, nil
	case "aes-gcm", "gcm", "":
		return AESGCM, nil
	case "xchacha20", "xchacha20-poly1305":
		return XChaCha20, nil
	}
	return 0, fmt.Errorf("invalid enc type %q", s)
}
