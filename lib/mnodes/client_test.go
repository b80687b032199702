package mnodes

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/utils/testutil"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/require"
)

func newTestConfig(seeds ...string) Config {
	return Config{
		Seeds:   SeedsConfig{Static: seeds},
		Timeout: 5 * time.Second,
	}
}

// seedServer serves get_master_nodes the way a beldexd rpc endpoint does.
func seedServer(t *testing.T, states []core.MasterNodeState) (string, func()) {
	r := chi.NewRouter()
	r.Post("/json_rpc", func(w http.ResponseWriter, req *http.Request) {
		var rpcReq rpcRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&rpcReq))
		require.Equal(t, "2.0", rpcReq.JSONRPC)
		require.Equal(t, "get_master_nodes", rpcReq.Method)
		result, err := json.Marshal(getMasterNodesResult{MasterNodeStates: states})
		require.NoError(t, err)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      rpcReq.ID,
			"result":  json.RawMessage(result),
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	return testutil.StartServer(r)
}

func TestClientGetMasterNodes(t *testing.T) {
	require := require.New(t)

	states := core.MasterNodeStateListFixture(3)

	addr, stop := seedServer(t, states)
	defer stop()

	c := NewClient(newTestConfig(addr))

	result, err := c.GetMasterNodes(context.Background(), nil)
	require.NoError(err)
	require.Equal(states, result)
}

func TestClientGetMasterNodesRPCError(t *testing.T) {
	require := require.New(t)

	r := chi.NewRouter()
	r.Post("/json_rpc", func(w http.ResponseWriter, req *http.Request) {
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"error":   rpcError{Code: -32601, Message: "Method not found"},
		}
		json.NewEncoder(w).Encode(resp)
	})
	addr, stop := testutil.StartServer(r)
	defer stop()

	c := NewClient(newTestConfig(addr))

	_, err := c.GetMasterNodes(context.Background(), nil)
	require.Error(err)
	require.Contains(err.Error(), "Method not found")
}

func TestClientGetMasterNodesServerError(t *testing.T) {
	require := require.New(t)

	r := chi.NewRouter()
	r.Post("/json_rpc", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	addr, stop := testutil.StartServer(r)
	defer stop()

	c := NewClient(newTestConfig(addr))

	_, err := c.GetMasterNodes(context.Background(), nil)
	require.Error(err)
}

func TestClientGetMasterNodesSeedFallback(t *testing.T) {
	require := require.New(t)

	states := core.MasterNodeStateListFixture(2)

	good, stop := seedServer(t, states)
	defer stop()

	bad := chi.NewRouter()
	bad.Post("/json_rpc", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	badAddr, stopBad := testutil.StartServer(bad)
	defer stopBad()

	c := NewClient(newTestConfig(badAddr, good))

	result, err := c.GetMasterNodes(context.Background(), nil)
	require.NoError(err)
	require.Equal(states, result)
}

func TestClientGetMasterNodesNoSeeds(t *testing.T) {
	require := require.New(t)

	c := NewClient(Config{})

	_, err := c.GetMasterNodes(context.Background(), nil)
	require.Error(err)
}
