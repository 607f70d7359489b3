// Package verification orchestrates exact registry checks, fuzzy search and
// credibility oracles into a single verdict
package verification // import "github.com/joincivil/civil-content-registry/pkg/verification"

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joincivil/civil-content-registry/pkg/fingerprint"
	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/oracle"
	"github.com/joincivil/civil-content-registry/pkg/search"
)

const (
	// DefaultCallTimeout bounds each external call
	DefaultCallTimeout = 15 * time.Second

	// SourceRegistry is the name of the exact registry check
	SourceRegistry = "registry"
	// SourceSearch is the name of the fuzzy search
	SourceSearch = "search"
	// SourceMetadata is the name of the metadata fetch for an exact hit
	SourceMetadata = "metadata"
)

// Status is the outcome of a verification
type Status string

const (
	// StatusVerified means the exact fingerprint is registered
	StatusVerified Status = "verified"
	// StatusSimilar means no exact hit but similar registered content exists
	StatusSimilar Status = "similar"
	// StatusUnverified means neither an exact hit nor similar content
	StatusUnverified Status = "unverified"
)

// ExactChecker checks a fingerprint against the registry
type ExactChecker interface {
	Verify(ctx context.Context, caller common.Address, fingerprint common.Hash) (*model.VerificationResult, error)
}

// Searcher finds registered content similar to a query. An error means the
// search could not run.
type Searcher interface {
	Match(ctx context.Context, query string) ([]*search.Match, error)
}

// Input is the content to verify. Text takes precedence over Data.
type Input struct {
	Text   string
	Data   []byte
	Caller common.Address
}

// Result is the consolidated verification verdict
type Result struct {
	RequestID   string
	Fingerprint common.Hash
	Status      Status
	Record      *model.ContentRecord
	Metadata    *model.ContentMetadata
	Matches     []*search.Match
	Credibility *model.Credibility
	Unavailable []string
}

// Config configures an Orchestrator. Searcher, Fetcher and Oracles are
// optional.
type Config struct {
	Checker     ExactChecker
	Searcher    Searcher
	Fetcher     model.MetadataFetcher
	Oracles     []oracle.Oracle
	CallTimeout time.Duration
	Metrics     *metrics.Metrics
}

// NewOrchestrator returns an orchestrator for config
func NewOrchestrator(config *Config) *Orchestrator {
	timeout := config.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Orchestrator{
		checker:  config.Checker,
		searcher: config.Searcher,
		fetcher:  config.Fetcher,
		oracles:  config.Oracles,
		timeout:  timeout,
		metrics:  config.Metrics,
	}
}

// Orchestrator produces a verdict for raw content. An exact registry hit
// always wins and no further work is done. Only on a miss are fuzzy search
// and the oracles run, concurrently, each under its own timeout. External
// failures degrade the result instead of failing it.
type Orchestrator struct {
	checker  ExactChecker
	searcher Searcher
	fetcher  model.MetadataFetcher
	oracles  []oracle.Oracle
	timeout  time.Duration
	metrics  *metrics.Metrics
}

// Verify returns the verdict for input. The only error is empty input.
func (o *Orchestrator) Verify(ctx context.Context, input *Input) (*Result, error) {
	var fp common.Hash
	switch {
	case input.Text != "":
		fp = fingerprint.FromText(input.Text)
	case len(input.Data) > 0:
		fp = fingerprint.FromBytes(input.Data)
	default:
		return nil, model.ErrEmptyContent
	}

	result := &Result{
		RequestID:   uuid.New().String(),
		Fingerprint: fp,
		Unavailable: []string{},
	}
	collector := &unavailableCollector{}

	exact := o.exactCheck(ctx, input.Caller, fp, collector)
	if exact != nil && exact.Exists() {
		result.Status = StatusVerified
		result.Record = exact.Record()
		result.Metadata = o.fetchMetadata(ctx, exact.MetadataPointer(), collector)
	} else {
		o.runMissSources(ctx, input.Text, result, collector)
	}

	result.Unavailable = collector.sources()
	o.metrics.IncOrchestratedStatus(string(result.Status))
	log.Infof("Verification %v of %v: %v, unavailable: %v", result.RequestID, fp.Hex(),
		result.Status, result.Unavailable)
	return result, nil
}

func (o *Orchestrator) exactCheck(ctx context.Context, caller common.Address, fp common.Hash,
	collector *unavailableCollector) *model.VerificationResult {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	start := time.Now()
	exact, err := o.checker.Verify(ctx, caller, fp)
	o.metrics.ObserveSource(SourceRegistry, time.Since(start), err == nil)
	if err != nil {
		log.Errorf("Exact check unavailable for %v: err: %v", fp.Hex(), err)
		collector.add(SourceRegistry)
		return nil
	}
	return exact
}

func (o *Orchestrator) fetchMetadata(ctx context.Context, pointer string,
	collector *unavailableCollector) *model.ContentMetadata {
	if o.fetcher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	metadata, err := o.fetcher.FetchMetadata(ctx, pointer)
	if err != nil {
		log.Warningf("Metadata unavailable for %v: err: %v", pointer, err)
		collector.add(SourceMetadata)
		return nil
	}
	return metadata
}

// runMissSources runs fuzzy search and the oracles concurrently. Neither can
// fail the group, so Wait only joins.
func (o *Orchestrator) runMissSources(ctx context.Context, text string, result *Result,
	collector *unavailableCollector) {
	// One slot per configured oracle keeps judgments in config order
	judgments := make([]*model.SourceJudgment, len(o.oracles))
	var matches []*search.Match
	g := errgroup.Group{}

	if text != "" && o.searcher != nil {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()
			start := time.Now()
			found, err := o.searcher.Match(sctx, text)
			o.metrics.ObserveSource(SourceSearch, time.Since(start), err == nil)
			if err != nil {
				log.Warningf("Search unavailable: err: %v", err)
				collector.add(SourceSearch)
				return nil
			}
			matches = found
			return nil
		})
	}

	if text != "" {
		for i, orc := range o.oracles {
			i, orc := i, orc
			g.Go(func() error {
				start := time.Now()
				sj := oracle.Run(ctx, orc, text, o.timeout)
				o.metrics.ObserveSource(orc.Name(), time.Since(start), sj.Available())
				if !sj.Available() {
					log.Warningf("Oracle %v unavailable: %v", orc.Name(), sj.Error())
					collector.add(orc.Name())
				}
				judgments[i] = sj
				return nil
			})
		}
	}
	_ = g.Wait() // nolint: errcheck

	result.Matches = matches
	ran := make([]*model.SourceJudgment, 0, len(judgments))
	for _, sj := range judgments {
		if sj != nil {
			ran = append(ran, sj)
		}
	}
	result.Credibility = oracle.Merge(ran)
	if len(matches) > 0 {
		result.Status = StatusSimilar
	} else {
		result.Status = StatusUnverified
	}
}

type unavailableCollector struct {
	mutex sync.Mutex
	names []string
}

func (c *unavailableCollector) add(name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.names = append(c.names, name)
}

func (c *unavailableCollector) sources() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}
