package metadata // import "github.com/joincivil/civil-content-registry/pkg/metadata"

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
)

// Store writes blobs to content-addressed storage
type Store interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string][]byte{}}
}

// MemoryStore keeps blobs in memory, keyed by their CIDv1 raw sha2-256 CID.
// It is also a Gateway over the blobs it holds.
type MemoryStore struct {
	mutex sync.RWMutex
	blobs map[string][]byte
}

// Put stores data and returns its CID. Putting the same bytes twice is a no-op.
func (m *MemoryStore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	id, err := CIDv1RawSHA256(data)
	if err != nil {
		return cid.Undef, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	blob := make([]byte, len(data))
	copy(blob, data)
	m.blobs[id.KeyString()] = blob
	return id, nil
}

// Fetch returns the blob for id or ErrNotFound
func (m *MemoryStore) Fetch(ctx context.Context, id cid.Cid) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	blob, ok := m.blobs[id.KeyString()]
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}

// NewKuboStore returns a store writing raw blocks through the HTTP RPC API of
// an IPFS node at apiURL
func NewKuboStore(apiURL string, timeout time.Duration) *KuboStore {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &KuboStore{
		apiURL:  strings.TrimRight(apiURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// KuboStore writes blobs as raw sha2-256 blocks to an IPFS node
type KuboStore struct {
	apiURL  string
	timeout time.Duration
	client  *http.Client
}

type blockPutResponse struct {
	Key  string `json:"Key"`
	Size int    `json:"Size"`
}

// Put stores data as a raw block and checks the node computed the expected CID
func (k *KuboStore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	expected, err := CIDv1RawSHA256(data)
	if err != nil {
		return cid.Undef, err
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("data", "metadata.json")
	if err != nil {
		return cid.Undef, errors.Wrap(err, "error building block put body")
	}
	_, err = part.Write(data)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "error building block put body")
	}
	err = writer.Close()
	if err != nil {
		return cid.Undef, errors.Wrap(err, "error building block put body")
	}

	url := fmt.Sprintf("%s/api/v0/block/put?cid-codec=raw&mhtype=sha2-256&mhlen=32", k.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "error building block put request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := k.client.Do(req)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "error putting block")
	}
	defer resp.Body.Close() // nolint: errcheck
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024)) // nolint: errcheck
		return cid.Undef, errors.Errorf("block put returned status %v: %s", resp.StatusCode, msg)
	}

	putResp := &blockPutResponse{}
	err = json.NewDecoder(resp.Body).Decode(putResp)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "error decoding block put response")
	}
	got, err := cid.Decode(putResp.Key)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "unexpected block put key")
	}
	if !got.Equals(expected) {
		return cid.Undef, ErrCIDMismatch
	}
	return got, nil
}
