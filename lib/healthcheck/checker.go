// Package healthcheck filters unreachable master nodes out of a node set by
// actively probing their storage endpoints.
package healthcheck

import (
	"context"
	"fmt"

	"github.com/MichaleAnderson/beldex-storage-server/utils/httputil"
)

// Checker runs a health check against a storage node address.
type Checker interface {
	Check(ctx context.Context, addr string) error
}

// Default returns a Checker which pings a node's storage endpoint. Storage
// nodes serve self-signed certificates, so verification is skipped.
func Default() Checker {
	return defaultChecker{}
}

type defaultChecker struct{}

func (c defaultChecker) Check(ctx context.Context, addr string) error {
	_, err := httputil.Get(
		fmt.Sprintf("https://%s/ping", addr),
		httputil.SendContext(ctx),
		httputil.SendTLSTransport())
	return err
}
