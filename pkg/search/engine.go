package search // import "github.com/joincivil/civil-content-registry/pkg/search"

import (
	"context"
	"sort"

	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	// DefaultWindow is the number of recent registrations searched
	DefaultWindow = 50
	// MinScore is the lowest score kept in results
	MinScore = 50
	// MaxResults is the most results returned
	MaxResults = 10

	defaultFetchConcurrency = 8
)

// CandidateSource returns the most recent registrations, newest first
type CandidateSource interface {
	RecentRegistrations(ctx context.Context, count int) ([]*model.ContentRecord, error)
}

// Match is a registered record whose metadata title matched a query
type Match struct {
	Record   *model.ContentRecord
	Metadata *model.ContentMetadata
	Score    int
}

// NewEngine returns a search engine over source. A window of 0 or less uses
// DefaultWindow.
func NewEngine(source CandidateSource, fetcher model.MetadataFetcher, window int) *Engine {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Engine{
		source:      source,
		fetcher:     fetcher,
		window:      window,
		concurrency: defaultFetchConcurrency,
	}
}

// Engine matches free text queries against the titles of recent registrations
type Engine struct {
	source      CandidateSource
	fetcher     model.MetadataFetcher
	window      int
	concurrency int
}

// Search returns up to MaxResults matches scoring at least MinScore, best
// first with ties broken by newer registrations. Candidates whose metadata
// cannot be fetched or has no title are skipped.
func (e *Engine) Search(ctx context.Context, query string) ([]*Match, error) {
	matches, err := e.Match(ctx, query)
	if err != nil {
		log.Warningf("Search degraded to no results: err: %v", err)
		return []*Match{}, nil
	}
	return matches, nil
}

// Match ranks candidates like Search but returns the candidate source failure
// so callers can report the search as unavailable
func (e *Engine) Match(ctx context.Context, query string) ([]*Match, error) {
	candidates, err := e.source.RecentRegistrations(ctx, e.window)
	if err != nil {
		return nil, errors.Wrap(err, "error getting search candidates")
	}

	scored := make([]*Match, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			metadata, err := e.fetcher.FetchMetadata(gctx, candidate.MetadataPointer())
			if err != nil {
				log.V(2).Infof("Skipping %v, no metadata: err: %v", candidate.Fingerprint().Hex(), err)
				return nil
			}
			if metadata.Title() == "" {
				return nil
			}
			scored[i] = &Match{
				Record:   candidate,
				Metadata: metadata,
				Score:    Similarity(query, metadata.Title()),
			}
			return nil
		})
	}
	_ = g.Wait() // nolint: errcheck

	matches := []*Match{}
	for _, match := range scored {
		if match != nil && match.Score >= MinScore {
			matches = append(matches, match)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.Timestamp() > matches[j].Record.Timestamp()
	})
	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}
	return matches, nil
}

// RecentLister is a registry that lists its recent registrations
type RecentLister interface {
	RecentRegistrations(count int) ([]*model.ContentRecord, error)
}

// NewLocalSource returns a CandidateSource over a local registry
func NewLocalSource(lister RecentLister) *LocalSource {
	return &LocalSource{lister: lister}
}

// LocalSource adapts a local registry to a CandidateSource
type LocalSource struct {
	lister RecentLister
}

// RecentRegistrations returns the most recent registrations
func (l *LocalSource) RecentRegistrations(ctx context.Context, count int) ([]*model.ContentRecord, error) {
	return l.lister.RecentRegistrations(count)
}
