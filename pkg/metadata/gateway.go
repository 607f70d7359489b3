package metadata // import "github.com/joincivil/civil-content-registry/pkg/metadata"

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
)

const (
	// MaxMetadataSize is the largest metadata blob a gateway will return
	MaxMetadataSize = 2 << 20

	defaultGatewayTimeout = 10 * time.Second
)

// Gateway fetches content-addressed blobs
type Gateway interface {
	Fetch(ctx context.Context, id cid.Cid) ([]byte, error)
}

// NewHTTPGateway returns a gateway for an HTTP IPFS gateway at baseURL. A
// timeout of 0 uses the default.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// HTTPGateway fetches blobs from <baseURL>/ipfs/<cid>
type HTTPGateway struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// Name returns the gateway base URL
func (g *HTTPGateway) Name() string {
	return g.baseURL
}

// Fetch retrieves the blob for id
func (g *HTTPGateway) Fetch(ctx context.Context, id cid.Cid) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/ipfs/%s", g.baseURL, id.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error building gateway request")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching from %v", g.baseURL)
	}
	defer resp.Body.Close() // nolint: errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Errorf("gateway %v returned status %v", g.baseURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxMetadataSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading from %v", g.baseURL)
	}
	if len(data) > MaxMetadataSize {
		return nil, errors.Errorf("metadata from %v exceeds %v bytes", g.baseURL, MaxMetadataSize)
	}
	err = verifyRaw(id, data)
	if err != nil {
		log.Warningf("Gateway %v returned bad content for %v", g.baseURL, id)
		return nil, err
	}
	return data, nil
}

// MultiGateway tries each gateway in order and returns the first success.
// The order is the slice order and must be fixed by the caller.
type MultiGateway struct {
	Gateways []Gateway
}

// Fetch retrieves the blob for id from the first gateway that has it.
// ErrNotFound is returned only when every gateway reported not found.
func (m MultiGateway) Fetch(ctx context.Context, id cid.Cid) ([]byte, error) {
	if len(m.Gateways) == 0 {
		return nil, errors.New("metadata: no gateways configured")
	}
	var lastErr error
	allNotFound := true
	for _, gateway := range m.Gateways {
		data, err := gateway.Fetch(ctx, id)
		if err == nil {
			return data, nil
		}
		log.V(2).Infof("Gateway failed for %v: err: %v", id, err)
		if !IsNotFound(err) {
			allNotFound = false
		}
		lastErr = err
	}
	if allNotFound {
		return nil, ErrNotFound
	}
	return nil, errors.Wrap(lastErr, "all gateways failed")
}
