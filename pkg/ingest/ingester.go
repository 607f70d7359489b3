package ingest // import "github.com/joincivil/civil-content-registry/pkg/ingest"

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-registry/pkg/fingerprint"
	"github.com/joincivil/civil-content-registry/pkg/metadata"
	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	outcomeRegistered = "registered"
	outcomeDuplicate  = "duplicate"
	outcomeSkipped    = "skipped"
	outcomeFailed     = "failed"
)

// Config configures an Ingester
type Config struct {
	Source    HeadlineSource
	Store     metadata.Store
	Registrar Registrar
	// AllowedSources limits ingestion to these source ids, all sources if empty
	AllowedSources []string
	// MaxPerRun caps the headlines registered per run, unlimited if 0
	MaxPerRun int
	Metrics   *metrics.Metrics
}

// RunSummary describes the outcome of one ingest run
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	Fetched    int
	Skipped    int
	Registered int
	Duplicates int
	Failed     int
}

// NewIngester is a convenience function to init an Ingester
func NewIngester(config *Config) *Ingester {
	allowed := map[string]struct{}{}
	for _, s := range config.AllowedSources {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			allowed[s] = struct{}{}
		}
	}
	return &Ingester{
		source:    config.Source,
		store:     config.Store,
		registrar: config.Registrar,
		allowed:   allowed,
		maxPerRun: config.MaxPerRun,
		metrics:   config.Metrics,
	}
}

// Ingester registers feed headlines as article content. Headline fingerprints
// are derived from title, source and publish time so a headline seen on a
// later run is rejected as a duplicate.
type Ingester struct {
	source    HeadlineSource
	store     metadata.Store
	registrar Registrar
	allowed   map[string]struct{}
	maxPerRun int
	metrics   *metrics.Metrics
}

// Run fetches the feed once and registers every allowed headline. Duplicates
// and per-headline failures are counted in the summary. The run stops early
// if the registry is paused.
func (i *Ingester) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{RunID: uuid.New().String(), StartedAt: time.Now().UTC()}

	headlines, err := i.source.Headlines(ctx)
	if err != nil {
		return summary, errors.WithMessage(err, "error fetching headlines")
	}
	summary.Fetched = len(headlines)
	log.Infof("Ingest run %v fetched %v headlines", summary.RunID, len(headlines))

	seen := map[common.Hash]struct{}{}
	for _, headline := range headlines {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if !i.isAllowed(headline.SourceID()) {
			summary.Skipped++
			i.metrics.IncIngestedHeadline(outcomeSkipped)
			continue
		}
		if i.maxPerRun > 0 && summary.Registered >= i.maxPerRun {
			summary.Skipped++
			i.metrics.IncIngestedHeadline(outcomeSkipped)
			continue
		}
		fp := fingerprint.Headline(headline.Title(), headline.SourceID(), headline.PublishedAt())
		if _, ok := seen[fp]; ok {
			summary.Duplicates++
			i.metrics.IncIngestedHeadline(outcomeDuplicate)
			continue
		}
		seen[fp] = struct{}{}

		err := i.ingest(ctx, fp, headline)
		switch {
		case err == nil:
			summary.Registered++
			i.metrics.IncIngestedHeadline(outcomeRegistered)
		case errors.Is(err, model.ErrDuplicateFingerprint):
			summary.Duplicates++
			i.metrics.IncIngestedHeadline(outcomeDuplicate)
		case errors.Is(err, model.ErrSystemPaused):
			log.Warningf("Registry paused, stopping ingest run %v", summary.RunID)
			return summary, err
		default:
			summary.Failed++
			i.metrics.IncIngestedHeadline(outcomeFailed)
			log.Errorf("Error ingesting headline %q: err: %v", headline.Title(), err)
		}
	}
	log.Infof("Ingest run %v done: registered %v, duplicates %v, skipped %v, failed %v",
		summary.RunID, summary.Registered, summary.Duplicates, summary.Skipped, summary.Failed)
	return summary, nil
}

func (i *Ingester) isAllowed(sourceID string) bool {
	if len(i.allowed) == 0 {
		return true
	}
	_, ok := i.allowed[strings.ToLower(sourceID)]
	return ok
}

func (i *Ingester) ingest(ctx context.Context, fp common.Hash, headline *model.Headline) error {
	data, err := json.Marshal(headline.Metadata(fp.Hex()))
	if err != nil {
		return errors.Wrap(err, "error marshalling metadata")
	}
	id, err := i.store.Put(ctx, data)
	if err != nil {
		return errors.WithMessage(err, "error storing metadata")
	}
	return i.registrar.Register(ctx, fp, model.CategoryArticle, metadata.FormatPointer(id))
}
