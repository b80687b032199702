package networktest

import (
	"encoding/json"
	"net/http"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/lib/mnodes"
	"github.com/MichaleAnderson/beldex-storage-server/utils/testutil"

	"github.com/go-chi/chi"
)

// SigningKeyFixture returns a fresh ed25519 signing key for request signing.
func SigningKeyFixture() core.Ed25519SecKey {
	return core.Ed25519SecKeyFixture()
}

// SeedServerFixture starts an HTTP server which answers get_master_nodes
// with the given node list, the way a beldexd seed endpoint does. Returns
// the server address and a closure for stopping the server.
func SeedServerFixture(states []core.MasterNodeState) (addr string, stop func()) {
	r := chi.NewRouter()
	r.Post("/json_rpc", func(w http.ResponseWriter, req *http.Request) {
		var rpcReq struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      rpcReq.ID,
			"result": map[string]interface{}{
				"master_node_states": states,
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	return testutil.StartServer(r)
}

// HarnessFixture returns a started Harness backed by an in-process seed
// server holding the given node list.
func HarnessFixture(states []core.MasterNodeState) (*Harness, func()) {
	addr, stop := SeedServerFixture(states)
	config := Config{
		MNodes: mnodes.Config{
			Seeds:              mnodes.SeedsConfig{Static: []string{addr}},
			DisableHealthcheck: true,
		},
	}
	h, err := New(config)
	if err != nil {
		stop()
		panic(err)
	}
	return h, func() {
		h.Close()
		stop()
	}
}
