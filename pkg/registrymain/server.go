package registrymain

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joincivil/civil-content-registry/pkg/api"
	"github.com/joincivil/civil-content-registry/pkg/helpers"
	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/registry"
	"github.com/joincivil/civil-content-registry/pkg/search"
	"github.com/joincivil/civil-content-registry/pkg/utils"
	"github.com/joincivil/civil-content-registry/pkg/verification"
)

const (
	shutdownTimeout = 30 * time.Second
)

// ServerMain serves the registry API until SIGINT or SIGTERM. Without a
// ledger the API reads and writes the local registry. With a ledger the
// local store is the indexer's mirror: the API serves reads from it, refuses
// writes, and checks, searches and reads the pause flag on chain.
func ServerMain(config *utils.RegistryConfig) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	persister, err := helpers.RegistryPersister(config)
	if err != nil {
		return err
	}
	reg := registry.NewRegistry(persister, common.HexToAddress(config.OwnerAddress), nil)
	reg.SetMetrics(m)

	store := helpers.MetadataStore(config)
	fetcher := helpers.MetadataFetcher(config, store, m)
	oracles, err := helpers.Oracles(config)
	if err != nil {
		return err
	}

	var apiRegistry api.Registry = reg
	var checker verification.ExactChecker = verification.NewLocalChecker(reg)
	var source search.CandidateSource = search.NewLocalSource(reg)
	if config.LedgerEnabled() {
		ledgerRegistry, client, err := helpers.Ledger(config)
		if err != nil {
			return err
		}
		defer client.Close()
		if config.PersisterType != utils.PersisterTypePostgresql {
			log.Warningf("Ledger mirror is in memory, reads stay empty without the indexer's database")
		}
		mirror := registry.NewMirror(reg, ledgerRegistry, config.CallTimeout())
		apiRegistry = mirror
		checker = ledgerRegistry
		source = ledgerRegistry
	} else {
		publisher, err := helpers.Publisher(config)
		if err != nil {
			return err
		}
		if publisher != nil {
			defer publisher.Close() // nolint: errcheck
			reg.AddNotifier(publisher)
		}
	}

	engine := search.NewEngine(source, fetcher, config.SearchWindow)
	orchestrator := verification.NewOrchestrator(&verification.Config{
		Checker:     checker,
		Searcher:    engine,
		Fetcher:     fetcher,
		Oracles:     oracles,
		CallTimeout: config.CallTimeout(),
		Metrics:     m,
	})
	handler := api.NewHandler(&api.Config{
		Registry: apiRegistry,
		Verifier: orchestrator,
		Searcher: engine,
	})

	server := &http.Server{
		Addr:              config.ListenAddress,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Infof("Registry API listening on %v", config.ListenAddress)
		errs <- server.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		return err
	case sig := <-sigs:
		log.Infof("Received %v, shutting down", sig)
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
