// Package helpers contains various common helper functions.
// Normally they are shared functions used by the cmds.
package helpers

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/joincivil/civil-content-registry/pkg/ledger"
	"github.com/joincivil/civil-content-registry/pkg/metadata"
	"github.com/joincivil/civil-content-registry/pkg/metrics"
	"github.com/joincivil/civil-content-registry/pkg/model"
	"github.com/joincivil/civil-content-registry/pkg/oracle"
	"github.com/joincivil/civil-content-registry/pkg/persistence"
	"github.com/joincivil/civil-content-registry/pkg/pubsub"
	"github.com/joincivil/civil-content-registry/pkg/utils"
)

// Persister is a helper function to return an interface{} that is a initialized
// persister type. The postgres persister creates its tables.
func Persister(config *utils.RegistryConfig) (interface{}, error) {
	if config.PersisterType == utils.PersisterTypePostgresql {
		return postgresPersister(config)
	}
	return persistence.NewMemoryPersister(), nil
}

// RegistryPersister is a helper function to return the registry persister based
// on the given configuration
func RegistryPersister(config *utils.RegistryConfig) (model.RegistryPersister, error) {
	p, err := Persister(config)
	if err != nil {
		return nil, err
	}
	return p.(model.RegistryPersister), nil
}

// CronPersister is a helper function to return the correct cron persister based on
// the given configuration. The memory persister keeps cron state apart from
// the registry.
func CronPersister(config *utils.RegistryConfig) (model.CronPersister, error) {
	if config.PersisterType == utils.PersisterTypePostgresql {
		p, err := postgresPersister(config)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return persistence.NewCronPersister(), nil
}

func postgresPersister(config *utils.RegistryConfig) (*persistence.PostgresPersister, error) {
	persister, err := persistence.NewPostgresPersister(
		config.PersisterPostgresAddress,
		config.PersisterPostgresPort,
		config.PersisterPostgresUser,
		config.PersisterPostgresPw,
		config.PersisterPostgresDbname,
	)
	if err != nil {
		log.Errorf("Error connecting to Postgresql, stopping...; err: %v", err)
		return nil, err
	}
	err = persister.CreateTables()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create tables")
	}
	return persister, nil
}

// MetadataCache returns the redis cache if a redis address is configured,
// otherwise an in-process LRU cache
func MetadataCache(config *utils.RegistryConfig) metadata.Cache {
	if config.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddress})
		return metadata.NewRedisCache(client, config.MetadataCacheTTL())
	}
	return metadata.NewLRUCache(config.MetadataCacheSize, config.MetadataCacheTTL())
}

// MetadataStore returns the IPFS API store if configured, otherwise an
// in-memory store
func MetadataStore(config *utils.RegistryConfig) metadata.Store {
	if config.MetadataStoreAPIURL != "" {
		return metadata.NewKuboStore(config.MetadataStoreAPIURL, config.CallTimeout())
	}
	log.Infof("No metadata store API configured, storing metadata in memory")
	return metadata.NewMemoryStore()
}

// MetadataGateway returns the configured gateways in order. An in-memory
// store is tried first so blobs it holds resolve locally.
func MetadataGateway(config *utils.RegistryConfig, store metadata.Store) metadata.Gateway {
	gateways := []metadata.Gateway{}
	if memStore, ok := store.(*metadata.MemoryStore); ok {
		gateways = append(gateways, memStore)
	}
	for _, url := range config.MetadataGatewayURLs {
		gateways = append(gateways, metadata.NewHTTPGateway(url, config.CallTimeout()))
	}
	return metadata.MultiGateway{Gateways: gateways}
}

// MetadataFetcher returns a caching fetcher over the configured gateways
func MetadataFetcher(config *utils.RegistryConfig, store metadata.Store,
	m *metrics.Metrics) *metadata.Fetcher {
	return metadata.NewFetcher(MetadataGateway(config, store), MetadataCache(config), m)
}

// Oracles returns an oracle for each configured endpoint
func Oracles(config *utils.RegistryConfig) ([]oracle.Oracle, error) {
	endpoints, err := config.Oracles()
	if err != nil {
		return nil, err
	}
	oracles := make([]oracle.Oracle, 0, len(endpoints))
	for _, endpoint := range endpoints {
		oracles = append(oracles, oracle.NewHTTPOracle(endpoint.Name, endpoint.URL,
			config.OracleAPIKey))
	}
	return oracles, nil
}

// Ledger dials the eth API and returns the bound registry contract along with
// the client so the caller can close it
func Ledger(config *utils.RegistryConfig) (*ledger.Registry, *ethclient.Client, error) {
	client, err := ethclient.Dial(config.EthAPIURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error connecting to eth API")
	}
	ledgerConfig := &ledger.Config{
		Address:     common.HexToAddress(config.ContractAddress),
		DeployBlock: config.ContractDeployBlock,
		BlockWindow: config.BlockWindow,
	}
	if config.EthPrivateKey != "" {
		key, err := crypto.HexToECDSA(config.EthPrivateKey)
		if err != nil {
			client.Close()
			return nil, nil, errors.Wrap(err, "invalid eth private key")
		}
		ledgerConfig.Key = key
		ledgerConfig.ChainID = new(big.Int).SetInt64(config.EthChainID)
	}
	reg, err := ledger.NewRegistry(client, ledgerConfig)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return reg, client, nil
}

// Publisher returns the registration publisher or nil if pubsub is not
// configured
func Publisher(config *utils.RegistryConfig) (*pubsub.Publisher, error) {
	if !config.PubSubEnabled() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return pubsub.NewPublisher(ctx, config.PubSubProjectID, config.PubSubTopicName)
}
