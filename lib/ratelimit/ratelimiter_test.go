package ratelimit

import (
	"testing"

	"github.com/MichaleAnderson/beldex-storage-server/core"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/require"
)

func TestMNodeEmptyBucket(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	r := New(clk)

	pk, err := core.ParseLegacyPubKey(
		"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abc000")
	require.NoError(err)

	for i := 0; i < BucketSize; i++ {
		require.False(r.ShouldRateLimitMNode(pk))
	}
	require.True(r.ShouldRateLimitMNode(pk))

	// Wait just enough to allow one more request.
	clk.Add(TokenInterval)
	require.False(r.ShouldRateLimitMNode(pk))
	require.True(r.ShouldRateLimitMNode(pk))
}

func TestMNodeSteadyBucketFillup(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	r := New(clk)

	pk, err := core.ParseLegacyPubKey(
		"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abc000")
	require.NoError(err)

	// Make requests at the same rate as the bucket is filling up.
	for i := 0; i < BucketSize*10; i++ {
		require.False(r.ShouldRateLimitMNode(pk))
		clk.Add(TokenInterval)
	}
}

func TestMNodeMultipleIdentifiers(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	r := New(clk)

	pk1, err := core.ParseLegacyPubKey(
		"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abc000")
	require.NoError(err)

	for i := 0; i < BucketSize; i++ {
		require.False(r.ShouldRateLimitMNode(pk1))
	}
	require.True(r.ShouldRateLimitMNode(pk1))

	// Other id.
	pk2, err := core.ParseLegacyPubKey(
		"5123456789abcdef0123456789abcdef0123456789abcdef0123456789abc000")
	require.NoError(err)
	require.False(r.ShouldRateLimitMNode(pk2))
}

func TestClientEmptyBucket(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	r := New(clk)

	ip := uint32(10<<24 + 1<<16 + 1<<8 + 13)

	for i := 0; i < BucketSize; i++ {
		require.False(r.ShouldRateLimitClient(ip))
	}
	require.True(r.ShouldRateLimitClient(ip))

	// Wait just enough to allow one more request.
	clk.Add(TokenInterval)
	require.False(r.ShouldRateLimitClient(ip))
}

func TestClientSteadyBucketFillup(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	r := New(clk)

	ip := uint32(10<<24 + 1<<16 + 1<<8 + 13)

	for i := 0; i < BucketSize*10; i++ {
		require.False(r.ShouldRateLimitClient(ip))
		clk.Add(TokenInterval)
	}
}

func TestClientMultipleIdentifiers(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	r := New(clk)

	ip1 := uint32(10<<24 + 1<<16 + 1<<8 + 13)

	for i := 0; i < BucketSize; i++ {
		require.False(r.ShouldRateLimitClient(ip1))
	}
	require.True(r.ShouldRateLimitClient(ip1))

	// Other id.
	ip2 := uint32(10<<24 + 1<<16 + 1<<8 + 10)
	require.False(r.ShouldRateLimitClient(ip2))
}

func TestClientMaxLimit(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	r := New(clk)

	ipStart := uint32(10<<24 + 1)

	for i := uint32(0); i < MaxClients; i++ {
		r.ShouldRateLimitClient(ipStart + i)
	}
	overflowIP := ipStart + MaxClients
	require.True(r.ShouldRateLimitClient(overflowIP))

	// Wait for buckets to refill to capacity so they are evicted.
	clk.Add(TokenInterval)
	require.False(r.ShouldRateLimitClient(overflowIP))
}
