package core

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMasterNodeStateJSON(t *testing.T) {
	require := require.New(t)

	state := MasterNodeStateFixture()

	b, err := json.Marshal(state)
	require.NoError(err)

	var parsed MasterNodeState
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(state, parsed)
}

func TestMasterNodeStateAddresses(t *testing.T) {
	require := require.New(t)

	state := MasterNodeStateFixture()

	require.Equal(
		fmt.Sprintf("%s:%d", state.PublicIP, state.StoragePort), state.Addr())
	require.Equal(
		fmt.Sprintf("https://%s:%d", state.PublicIP, state.StoragePort),
		state.HTTPSAddress())

	lmq := state.LMQAddress()
	require.Equal(state.PublicIP, lmq.Host)
	require.Equal(state.StorageLMQPort, lmq.Port)
	require.Equal(state.PubKeyX25519, lmq.PubKey)
}

func TestParseCurveAddr(t *testing.T) {
	require := require.New(t)

	addr, err := ParseCurveAddr(
		"curve://public.beldex.io:38161/80adaead94db3b0402a6057869bdbe63204a28e93589fd95a035480ed6c03b45")
	require.NoError(err)
	require.Equal("public.beldex.io", addr.Host)
	require.Equal(uint16(38161), addr.Port)
	require.Equal(
		"80adaead94db3b0402a6057869bdbe63204a28e93589fd95a035480ed6c03b45",
		addr.PubKey.String())
}

func TestCurveAddrRoundTrip(t *testing.T) {
	require := require.New(t)

	orig := MasterNodeStateFixture().LMQAddress()

	parsed, err := ParseCurveAddr(orig.String())
	require.NoError(err)
	require.Equal(orig, parsed)
}

func TestParseCurveAddrErrors(t *testing.T) {
	tests := []struct {
		desc  string
		input string
	}{
		{"wrong scheme", "tcp://1.2.3.4:8000/abcd"},
		{"missing port", "curve://1.2.3.4/80adaead94db3b0402a6057869bdbe63204a28e93589fd95a035480ed6c03b45"},
		{"bad pubkey", "curve://1.2.3.4:8000/nothex"},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			_, err := ParseCurveAddr(test.input)
			require.Error(t, err)
		})
	}
}
