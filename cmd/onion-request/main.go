// Command onion-request sends an onion request through a path of master
// nodes and prints the decrypted response.
//
// Usage:
//
//	onion-request [-mainnet] [-xchacha20|-aes-gcm|-aes-cbc|-random] MNODE_PK [MNODE_PK ...] PAYLOAD CONTROL
//
// MNODE_PK are primary (legacy) pubkeys in hex, in hop order. PAYLOAD and
// CONTROL are delivered to the final hop; pass '{"headers":[]}' for CONTROL
// to address a storage server or beldexd request. Either value may be a
// filename prefixed with '@'.
package main

import (
	"context"
	"flag"
	"bytes"
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/MichaleAnderson/beldex-storage-server/core"
	"github.com/MichaleAnderson/beldex-storage-server/lib/channel"
	"github.com/MichaleAnderson/beldex-storage-server/lib/mnodes"
	"github.com/MichaleAnderson/beldex-storage-server/lib/onion"
	"github.com/MichaleAnderson/beldex-storage-server/utils/httputil"
	"github.com/MichaleAnderson/beldex-storage-server/utils/log"
)

const (
	mainnetSeed = "public.beldex.io:29095"
	testnetSeed = "54.80.140.73:19095"
)

func main() {
	mainnet := flag.Bool("mainnet", false, "use the mainnet seed endpoint")
	testnet := flag.Bool("testnet", false, "use the testnet seed endpoint (default)")
	xchacha20 := flag.Bool("xchacha20", false, "encrypt layers with xchacha20+poly1305 (default)")
	aesGCM := flag.Bool("aes-gcm", false, "encrypt layers with aes-gcm")
	aesCBC := flag.Bool("aes-cbc", false, "encrypt layers with aes-cbc")
	random := flag.Bool("random", false, "pick a random cipher per layer")
	seed := flag.String("seed", "", "seed rpc endpoint overriding the network default")
	timeout := flag.Duration("timeout", 30*time.Second, "onion request timeout")
	flag.Parse()

	if *mainnet && *testnet {
		log.Fatal("-mainnet and -testnet are mutually exclusive")
	}

	args := flag.Args()
	if len(args) < 3 {
		log.Fatal("Usage: onion-request [flags] MNODE_PK [MNODE_PK ...] PAYLOAD CONTROL")
	}
	pks, err := parsePubKeys(args[:len(args)-2])
	if err != nil {
		log.Fatal(err)
	}
	payload, err := readArg(args[len(args)-2])
	if err != nil {
		log.Fatalf("Error reading payload: %s", err)
	}
	control, err := readArg(args[len(args)-1])
	if err != nil {
		log.Fatalf("Error reading control: %s", err)
	}

	builder, err := newBuilder(*xchacha20, *aesGCM, *aesCBC, *random)
	if err != nil {
		log.Fatal(err)
	}

	seedAddr := *seed
	if seedAddr == "" {
		seedAddr = testnetSeed
		if *mainnet {
			seedAddr = mainnetSeed
		}
	}

	hops, entry, err := resolvePath(seedAddr, pks)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("Building %d-hop onion request", len(hops)-1)
	req, err := builder.Build(hops, payload, control)
	if err != nil {
		log.Fatalf("Error building onion request: %s", err)
	}

	body, err := send(entry, req, *timeout)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(body))
}

func parsePubKeys(args []string) ([]core.LegacyPubKey, error) {
	var pks []core.LegacyPubKey
	for _, arg := range args {
		pk, err := core.ParseLegacyPubKey(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey %q: %s", arg, err)
		}
		pks = append(pks, pk)
	}
	return pks, nil
}

// readArg returns arg, or the contents of a file when arg starts with '@'.
func readArg(arg string) ([]byte, error) {
	if strings.HasPrefix(arg, "@") {
		return ioutil.ReadFile(arg[1:])
	}
	return []byte(arg), nil
}

func newBuilder(xchacha20, aesGCM, aesCBC, random bool) (*onion.Builder, error) {
	n := 0
	for _, set := range []bool{xchacha20, aesGCM, aesCBC, random} {
		if set {
			n++
		}
	}
	if n > 1 {
		return nil, fmt.Errorf("at most one cipher flag may be given")
	}
	switch {
	case random:
		return onion.NewRandomizedBuilder(), nil
	case aesGCM:
		return onion.NewBuilder(channel.AESGCM), nil
	case aesCBC:
		return onion.NewBuilder(channel.AESCBC), nil
	default:
		return onion.NewBuilder(channel.XChaCha20), nil
	}
}

// resolvePath fetches the auxiliary keys of the requested nodes and returns
// the hop list in arg order, plus the entry node's HTTPS address.
func resolvePath(seed string, pks []core.LegacyPubKey) ([]onion.Hop, string, error) {
	hexPKs := make([]string, len(pks))
	for i, pk := range pks {
		hexPKs[i] = pk.String()
	}
	client := mnodes.NewClient(mnodes.Config{
		Seeds: mnodes.SeedsConfig{Static: []string{seed}},
	})
	states, err := client.GetMasterNodes(context.Background(), &mnodes.GetMasterNodesRequest{
		MasterNodePubKeys: hexPKs,
		Fields:            mnodes.StandardFields(),
		ActiveOnly:        true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("get master nodes: %s", err)
	}

	byPubKey := make(map[core.LegacyPubKey]core.MasterNodeState, len(states))
	for _, s := range states {
		byPubKey[s.PubKey] = s
	}
	var hops []onion.Hop
	for _, pk := range pks {
		s, ok := byPubKey[pk]
		if !ok {
			return nil, "", fmt.Errorf("%s is not an active master node", pk)
		}
		hops = append(hops, onion.Hop{Ed25519: s.PubKeyEd25519, X25519: s.PubKeyX25519})
	}
	entry := byPubKey[pks[0]].HTTPSAddress()
	return hops, entry, nil
}

// send posts the onion blob to the entry node and decrypts the reply. Node
// certificates are self-signed, so verification is skipped.
func send(entry string, req *onion.Request, timeout time.Duration) ([]byte, error) {
	url := entry + "/onion_req/v2"
	log.Infof("Posting %d byte onion blob to %s", len(req.Blob), url)

	start := time.Now()
	resp, err := httputil.Post(
		url,
		httputil.SendBody(bytes.NewReader(req.Blob)),
		httputil.SendTimeout(timeout),
		httputil.SendTLSTransport())
	if err != nil {
		return nil, fmt.Errorf("post onion request: %s", err)
	}
	defer resp.Body.Close()
	log.Infof("Got %s response in %v", resp.Status, time.Since(start))

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %s", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("request returned empty body")
	}
	plaintext, err := req.DecryptResponse(body)
	if err != nil {
		log.Warnf("Response is not encrypted (or decryption failed): %s", err)
		return body, nil
	}
	return plaintext, nil
}
