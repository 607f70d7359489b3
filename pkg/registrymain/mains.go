package registrymain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joincivil/civil-content-registry/pkg/helpers"
	"github.com/joincivil/civil-content-registry/pkg/ingest"
	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/processor"
	"github.com/joincivil/civil-content-registry/pkg/registry"
	"github.com/joincivil/civil-content-registry/pkg/utils"
)

const (
	indexerRunTimeout = 10 * time.Minute
	ingestRunTimeout  = 10 * time.Minute
)

// IndexerCronMain mirrors the ledger into the postgresql registry on the
// indexer cron schedule
func IndexerCronMain(config *utils.RegistryConfig) error {
	err := config.ValidateIndexer()
	if err != nil {
		return err
	}
	persister, err := helpers.RegistryPersister(config)
	if err != nil {
		return err
	}
	cronPersister, err := helpers.CronPersister(config)
	if err != nil {
		return err
	}
	ledgerRegistry, client, err := helpers.Ledger(config)
	if err != nil {
		return err
	}
	defer client.Close()

	proc := processor.NewEventProcessor(persister, metrics.New(prometheus.DefaultRegisterer))
	return runCron(config.IndexerCronConfig, func() {
		ctx, cancel := jobContext(indexerRunTimeout)
		defer cancel()
		err := RunIndexer(ctx, ledgerRegistry, cronPersister, proc)
		if err != nil {
			log.Errorf("Error running indexer: err: %v", err)
		}
	})
}

// IngestCronMain registers feed headlines on the ingest cron schedule. With
// a ledger configured headlines are registered on chain, otherwise in the
// local registry under the ingest publisher.
func IngestCronMain(config *utils.RegistryConfig) error {
	err := config.ValidateIngest()
	if err != nil {
		return err
	}
	m := metrics.New(prometheus.DefaultRegisterer)
	cronPersister, err := helpers.CronPersister(config)
	if err != nil {
		return err
	}
	registrar, closer, err := ingestRegistrar(config, m)
	if err != nil {
		return err
	}
	defer closer()

	ingester := ingest.NewIngester(&ingest.Config{
		Source: ingest.NewHTTPHeadlineSource(config.HeadlineFeedURL, config.HeadlineAPIKey,
			config.HeadlinePageSize),
		Store:          helpers.MetadataStore(config),
		Registrar:      registrar,
		AllowedSources: config.HeadlineSources,
		MaxPerRun:      config.IngestMaxPerRun,
		Metrics:        m,
	})
	return runCron(config.IngestCronConfig, func() {
		ctx, cancel := jobContext(ingestRunTimeout)
		defer cancel()
		_, err := RunIngest(ctx, ingester, cronPersister)
		if err != nil {
			log.Errorf("Error running ingest: err: %v", err)
		}
	})
}

func ingestRegistrar(config *utils.RegistryConfig, m *metrics.Metrics) (ingest.Registrar, func(), error) {
	if config.LedgerEnabled() {
		ledgerRegistry, client, err := helpers.Ledger(config)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Registering headlines on the ledger at %v", ledgerRegistry.Address().Hex())
		return ledgerRegistry, client.Close, nil
	}

	persister, err := helpers.RegistryPersister(config)
	if err != nil {
		return nil, nil, err
	}
	reg := registry.NewRegistry(persister, common.HexToAddress(config.OwnerAddress), nil)
	reg.SetMetrics(m)
	publisher := config.IngestPublisherAddress
	if publisher == "" {
		publisher = config.OwnerAddress
	}
	return ingest.NewLocalRegistrar(reg, common.HexToAddress(publisher)), func() {}, nil
}
