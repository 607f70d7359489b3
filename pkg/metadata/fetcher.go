package metadata // import "github.com/joincivil/civil-content-registry/pkg/metadata"

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/model"
)

// NewFetcher returns a metadata fetcher over gateway. A nil cache disables
// caching.
func NewFetcher(gateway Gateway, cache Cache, m *metrics.Metrics) *Fetcher {
	return &Fetcher{gateway: gateway, cache: cache, metrics: m}
}

// Fetcher resolves metadata pointers through a gateway, fronted by a cache
type Fetcher struct {
	gateway Gateway
	cache   Cache
	metrics *metrics.Metrics
}

// FetchMetadata returns the metadata a pointer refers to
func (f *Fetcher) FetchMetadata(ctx context.Context, pointer string) (*model.ContentMetadata, error) {
	data, err := f.fetchBlob(ctx, pointer)
	if err != nil {
		return nil, err
	}
	metadata := &model.ContentMetadata{}
	err = json.Unmarshal(data, metadata)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid metadata at %v", pointer)
	}
	return metadata, nil
}

// fetchBlob returns the raw blob a pointer refers to
func (f *Fetcher) fetchBlob(ctx context.Context, pointer string) ([]byte, error) {
	id, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}
	key := id.String()
	if f.cache != nil {
		if data, ok := f.cache.Get(ctx, key); ok {
			f.metrics.IncCacheLookup(true)
			return data, nil
		}
		f.metrics.IncCacheLookup(false)
	}

	start := time.Now()
	data, err := f.gateway.Fetch(ctx, id)
	f.metrics.ObserveSource("metadata", time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	if f.cache != nil && json.Valid(data) {
		f.cache.Set(ctx, key, data)
	}
	return data, nil
}
