package mnodes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/lib/mnodes"
	mockmnodes "github.com/MichaleAnderson/beldex-storage-server/mocks/lib/mnodes"
	"github.com/MichaleAnderson/beldex-storage-server/utils/stringset"

	"github.com/andres-erbsen/clock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

type directoryMocks struct {
	config mnodes.Config
	clk    *clock.Mock
	client *mockmnodes.MockClient
}

func newDirectoryMocks(t *testing.T) (*directoryMocks, func()) {
	ctrl := gomock.NewController(t)
	return &directoryMocks{
		config: mnodes.Config{TTL: 10 * time.Minute},
		clk:    clock.NewMock(),
		client: mockmnodes.NewMockClient(ctrl),
	}, ctrl.Finish
}

func (m *directoryMocks) new() *mnodes.Directory {
	return mnodes.New(m.config, tally.NoopScope, m.clk, m.client, nil)
}

func TestDirectoryListCachesWithinTTL(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	states := core.MasterNodeStateListFixture(3)

	d := mocks.new()

	mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(states, nil)

	result, err := d.List(context.Background())
	require.NoError(err)
	require.Equal(states, result)

	// Within the TTL, no new fetch occurs.
	mocks.clk.Add(5 * time.Minute)

	result, err = d.List(context.Background())
	require.NoError(err)
	require.Equal(states, result)
}

func TestDirectoryListRefreshesAfterTTL(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	states1 := core.MasterNodeStateListFixture(3)
	states2 := core.MasterNodeStateListFixture(4)

	d := mocks.new()

	gomock.InOrder(
		mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(states1, nil),
		mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(states2, nil),
	)

	result, err := d.List(context.Background())
	require.NoError(err)
	require.Equal(states1, result)

	mocks.clk.Add(mocks.config.TTL + time.Second)

	result, err = d.List(context.Background())
	require.NoError(err)
	require.Equal(states2, result)
}

func TestDirectoryListStaleFallback(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	states := core.MasterNodeStateListFixture(3)

	d := mocks.new()

	gomock.InOrder(
		mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(states, nil),
		mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(nil, errors.New("some error")),
	)

	_, err := d.List(context.Background())
	require.NoError(err)

	mocks.clk.Add(mocks.config.TTL + time.Second)

	// The expired snapshot is still served when the refresh fails.
	result, err := d.List(context.Background())
	require.NoError(err)
	require.Equal(states, result)
}

func TestDirectoryListError(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	d := mocks.new()

	mocks.client.EXPECT().GetMasterNodes(
		gomock.Any(), gomock.Any()).Return(nil, errors.New("some error"))

	_, err := d.List(context.Background())
	require.Error(err)
}

func TestDirectoryRandomExcludes(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	states := core.MasterNodeStateListFixture(3)

	d := mocks.new()

	mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(states, nil)

	exclude := stringset.New(
		states[0].PubKey.String(),
		states[2].PubKey.String())

	for i := 0; i < 10; i++ {
		s, err := d.Random(context.Background(), exclude)
		require.NoError(err)
		require.Equal(states[1], s)
	}
}

func TestDirectoryRandomAllExcluded(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	states := core.MasterNodeStateListFixture(1)

	d := mocks.new()

	mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(states, nil)

	_, err := d.Random(context.Background(), stringset.New(states[0].PubKey.String()))
	require.Equal(mnodes.ErrNoNodes, err)
}

func TestDirectoryRandomEmptyList(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	d := mocks.new()

	mocks.client.EXPECT().GetMasterNodes(
		gomock.Any(), gomock.Any()).Return([]core.MasterNodeState{}, nil)

	_, err := d.Random(context.Background(), nil)
	require.Equal(mnodes.ErrNoNodes, err)
}

func TestDirectoryLookup(t *testing.T) {
	require := require.New(t)

	mocks, cleanup := newDirectoryMocks(t)
	defer cleanup()

	states := core.MasterNodeStateListFixture(3)

	d := mocks.new()

	mocks.client.EXPECT().GetMasterNodes(gomock.Any(), gomock.Any()).Return(states, nil)

	s, err := d.Lookup(context.Background(), states[1].PubKey)
	require.NoError(err)
	require.Equal(states[1], s)

	_, err = d.Lookup(context.Background(), core.LegacyPubKeyFixture())
	require.Error(err)
}
