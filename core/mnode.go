package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MasterNodeState describes one entry of a get_master_nodes response.
type MasterNodeState struct {
	PubKey         LegacyPubKey  `json:"master_node_pubkey"`
	PubKeyEd25519  Ed25519PubKey `json:"pubkey_ed25519"`
	PubKeyX25519   X25519PubKey  `json:"pubkey_x25519"`
	PublicIP       string        `json:"public_ip"`
	StoragePort    uint16        `json:"storage_port"`
	StorageLMQPort uint16        `json:"storage_lmq_port"`
}

// Addr returns the node's HTTPS endpoint in 'ip:port' format.
func (s MasterNodeState) Addr() string {
	return fmt.Sprintf("%s:%d", s.PublicIP, s.StoragePort)
}

// HTTPSAddress returns the node's HTTPS endpoint URL.
func (s MasterNodeState) HTTPSAddress() string {
	return fmt.Sprintf("https://%s:%d", s.PublicIP, s.StoragePort)
}

// LMQAddress returns the node's curve-encrypted LMQ endpoint address.
func (s MasterNodeState) LMQAddress() CurveAddr {
	return CurveAddr{
		Host:   s.PublicIP,
		Port:   s.StorageLMQPort,
		PubKey: s.PubKeyX25519,
	}
}

// CurveAddr is a curve-encrypted remote endpoint address of the form
// curve://<host>:<port>/<hex x25519 pubkey>.
type CurveAddr struct {
	Host   string
	Port   uint16
	PubKey X25519PubKey
}

// String renders the address in curve:// notation.
func (a CurveAddr) String() string {
	return fmt.Sprintf("curve://%s:%d/%s", a.Host, a.Port, a.PubKey)
}

// ParseCurveAddr parses a curve:// address.
func ParseCurveAddr(s string) (CurveAddr, error) {
	u, err := url.Parse(s)
	if err != nil {
		return CurveAddr{}, fmt.Errorf("parse address: %s", err)
	}
	if u.Scheme != "curve" {
		return CurveAddr{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	port, err := strconv.ParseUint(u.Port(), 10, 16)
	if err != nil {
		return CurveAddr{}, fmt.Errorf("invalid port: %s", err)
	}
	pk, err := ParseX25519PubKey(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return CurveAddr{}, fmt.Errorf("invalid pubkey: %s", err)
	}
	return CurveAddr{Host: u.Hostname(), Port: uint16(port), PubKey: pk}, nil
}
