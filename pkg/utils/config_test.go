// Package utils_test contains tests for the config utils
package utils_test

import (
	"testing"
	"time"

	"github.com/joincivil/civil-content-registry/pkg/utils"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("REGISTRY_OWNER_ADDRESS", "0x39eeD73fb1D4a5e4bCC8C9b5A7aF7A40c9E0b1D2")
	t.Setenv("REGISTRY_PERSISTER_TYPE_NAME", "postgresql")
	t.Setenv("REGISTRY_PERSISTER_POSTGRES_ADDRESS", "localhost")
	t.Setenv("REGISTRY_PERSISTER_POSTGRES_PORT", "5432")
	t.Setenv("REGISTRY_PERSISTER_POSTGRES_DBNAME", "civil_registry")
	t.Setenv("REGISTRY_INDEXER_CRON_CONFIG", "* * * * *")
	t.Setenv("REGISTRY_INGEST_CRON_CONFIG", "*/15 * * * *")
}

func TestRegistryConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REGISTRY_ETH_API_URL", "http://ethaddress.com")
	t.Setenv("REGISTRY_CONTRACT_ADDRESS", "0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	t.Setenv("REGISTRY_METADATA_GATEWAY_URLS", "http://localhost:8080,https://ipfs.io")
	t.Setenv("REGISTRY_ORACLE_ENDPOINTS", "claims=https://claims.example/v1,bias=http://localhost:9000/assess")
	t.Setenv("REGISTRY_HEADLINE_SOURCES", "bbc-news,reuters")
	t.Setenv("REGISTRY_HEADLINE_FEED_URL", "https://feed.example/v2/top-headlines")
	t.Setenv("REGISTRY_ETH_PRIVATE_KEY", "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	t.Setenv("REGISTRY_ETH_CHAIN_ID", "1337")

	config := &utils.RegistryConfig{}
	err := config.PopulateFromEnv()
	if err != nil {
		t.Fatalf("Failed to populate from environment: err: %v", err)
	}
	if config.PersisterType != utils.PersisterTypePostgresql {
		t.Errorf("Should have set the postgresql persister: %v", config.PersisterType)
	}
	if len(config.MetadataGatewayURLs) != 2 || config.MetadataGatewayURLs[0] != "http://localhost:8080" {
		t.Errorf("Should have split the gateway urls: %v", config.MetadataGatewayURLs)
	}
	oracles, err := config.Oracles()
	if err != nil {
		t.Fatalf("Should have parsed the oracles: err: %v", err)
	}
	if len(oracles) != 2 || oracles[1].Name != "bias" || oracles[1].URL != "http://localhost:9000/assess" {
		t.Errorf("Should have parsed name=url pairs: %v", oracles)
	}
	if config.CallTimeout() != 15*time.Second || config.MetadataCacheTTL() != 5*time.Minute {
		t.Errorf("Should have set default timeouts: %v %v", config.CallTimeout(), config.MetadataCacheTTL())
	}
	if config.ListenAddress != ":8080" || config.SearchWindow != 50 {
		t.Errorf("Should have set defaults: %v %v", config.ListenAddress, config.SearchWindow)
	}
	if !config.LedgerEnabled() || config.PubSubEnabled() {
		t.Errorf("Should have enabled only the ledger")
	}
	if err := config.ValidateIndexer(); err != nil {
		t.Errorf("Should have been a valid indexer config: err: %v", err)
	}
	if err := config.ValidateIngest(); err != nil {
		t.Errorf("Should have been a valid ingest config: err: %v", err)
	}
}

func TestMemoryPersisterConfig(t *testing.T) {
	t.Setenv("REGISTRY_OWNER_ADDRESS", "0x39eeD73fb1D4a5e4bCC8C9b5A7aF7A40c9E0b1D2")
	config := &utils.RegistryConfig{}
	err := config.PopulateFromEnv()
	if err != nil {
		t.Fatalf("Failed to populate from environment: err: %v", err)
	}
	if config.PersisterType != utils.PersisterTypeMemory {
		t.Errorf("Should have defaulted to the memory persister: %v", config.PersisterType)
	}
	if config.ValidateIndexer() == nil {
		t.Errorf("Should have required the indexer settings")
	}
	if config.ValidateIngest() == nil {
		t.Errorf("Should have required the ingest settings")
	}
}

func TestBadRegistryConfigs(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad persister name", "REGISTRY_PERSISTER_TYPE_NAME", "mysql"},
		{"bad postgres address", "REGISTRY_PERSISTER_POSTGRES_ADDRESS", ""},
		{"bad postgres port", "REGISTRY_PERSISTER_POSTGRES_PORT", "0"},
		{"bad postgres dbname", "REGISTRY_PERSISTER_POSTGRES_DBNAME", ""},
		{"short cron config", "REGISTRY_INDEXER_CRON_CONFIG", "* *"},
		{"bad cron config", "REGISTRY_INGEST_CRON_CONFIG", "* * * * 145"},
		{"bad owner", "REGISTRY_OWNER_ADDRESS", "0x1234"},
		{"bad publisher", "REGISTRY_INGEST_PUBLISHER_ADDRESS", "publisher"},
		{"bad eth url", "REGISTRY_ETH_API_URL", "ethaddress.com"},
		{"bad oracle", "REGISTRY_ORACLE_ENDPOINTS", "claims"},
		{"duplicate oracle", "REGISTRY_ORACLE_ENDPOINTS", "a=http://x,a=http://y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)
			config := &utils.RegistryConfig{}
			err := config.PopulateFromEnv()
			if err == nil {
				t.Errorf("Should have failed config for %v", tt.name)
			}
		})
	}
}

func TestLedgerConfigRequiresContract(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REGISTRY_ETH_API_URL", "wss://mainnet.example")
	config := &utils.RegistryConfig{}
	if err := config.PopulateFromEnv(); err == nil {
		t.Error("Should have required a contract address")
	}

	t.Setenv("REGISTRY_CONTRACT_ADDRESS", "0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	t.Setenv("REGISTRY_ETH_PRIVATE_KEY", "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	config = &utils.RegistryConfig{}
	if err := config.PopulateFromEnv(); err == nil {
		t.Error("Should have required a chain id with a private key")
	}

	t.Setenv("REGISTRY_ETH_CHAIN_ID", "1337")
	config = &utils.RegistryConfig{}
	if err := config.PopulateFromEnv(); err != nil {
		t.Errorf("Should have accepted the ledger config: err: %v", err)
	}
}

func TestLedgerIngestRequiresKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REGISTRY_ETH_API_URL", "http://localhost:8545")
	t.Setenv("REGISTRY_CONTRACT_ADDRESS", "0xDFe273082089bB7f70Ee36Eebcde64832FE97E55")
	t.Setenv("REGISTRY_HEADLINE_FEED_URL", "https://feed.example/v2/top-headlines")
	config := &utils.RegistryConfig{}
	err := config.PopulateFromEnv()
	if err != nil {
		t.Fatalf("Failed to populate from environment: err: %v", err)
	}
	if config.ValidateIngest() == nil {
		t.Error("Should have required a key to register headlines on the ledger")
	}
}
