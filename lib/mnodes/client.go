// Package mnodes provides a client for the master node directory: fetching
// node lists from beldexd seed endpoints and picking nodes for requests.
package mnodes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/utils/httputil"
	"github.com/MichaleAnderson/beldex-storage-server/utils/log"

	uuid "github.com/satori/go.uuid"
)

// Client makes rpc requests against beldexd seed endpoints.
type Client interface {
	GetMasterNodes(ctx context.Context, req *GetMasterNodesRequest) ([]core.MasterNodeState, error)
}

// GetMasterNodesRequest narrows a get_master_nodes query.
type GetMasterNodesRequest struct {
	// MasterNodePubKeys restricts the response to the given legacy pubkeys
	// (hex). Empty means all nodes.
	MasterNodePubKeys []string `json:"master_node_pubkeys,omitempty"`

	// Fields selects which fields each returned entry carries.
	Fields map[string]bool `json:"fields,omitempty"`

	// ActiveOnly excludes decommissioned nodes.
	ActiveOnly bool `json:"active_only,omitempty"`

	// Limit caps the number of returned entries. Zero means no limit.
	Limit int `json:"limit,omitempty"`
}

// StandardFields selects the fields the directory needs from every node.
func StandardFields() map[string]bool {
	return map[string]bool{
		"master_node_pubkey": true,
		"pubkey_ed25519":     true,
		"pubkey_x25519":      true,
		"public_ip":          true,
		"storage_port":       true,
		"storage_lmq_port":   true,
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

type getMasterNodesResult struct {
	MasterNodeStates []core.MasterNodeState `json:"master_node_states"`
}

type client struct {
	config Config
}

// NewClient creates a new seed rpc Client.
func NewClient(config Config) Client {
	config.applyDefaults()
	return &client{config}
}

// GetMasterNodes fetches the node list from a seed endpoint, trying each
// configured seed until one answers.
func (c *client) GetMasterNodes(
	ctx context.Context, req *GetMasterNodesRequest) ([]core.MasterNodeState, error) {

	seeds, err := c.config.Seeds.resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve seeds: %s", err)
	}

	if req == nil {
		req = &GetMasterNodesRequest{Fields: StandardFields(), ActiveOnly: true}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewV4().String(),
		Method:  "get_master_nodes",
		Params:  req,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %s", err)
	}

	var lastErr error
	for seed := range seeds {
		states, err := c.getMasterNodes(ctx, seed, body)
		if err != nil {
			log.With("seed", seed).Warnf("Error fetching master nodes: %s", err)
			lastErr = err
			continue
		}
		return states, nil
	}
	return nil, fmt.Errorf("all seeds failed, last error: %s", lastErr)
}

func (c *client) getMasterNodes(
	ctx context.Context, seed string, body []byte) ([]core.MasterNodeState, error) {

	resp, err := httputil.PostJSON(
		fmt.Sprintf("http://%s/json_rpc", seed),
		body,
		httputil.SendContext(ctx),
		httputil.SendTimeout(c.config.Timeout),
		httputil.SendRetry())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %s", err)
	}
	var rpcResp rpcResponse
	if err := json.Unmarshal(b, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %s", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if len(rpcResp.Result) == 0 {
		return nil, errors.New("rpc response missing result")
	}
	var result getMasterNodesResult
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, fmt.Errorf("unmarshal master node states: %s", err)
	}
	return result.MasterNodeStates, nil
}
