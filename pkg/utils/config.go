// Package utils contains various common utils separate by utility types
package utils

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// PersisterType is the type of persister to use.
type PersisterType int

const (
	// PersisterTypeInvalid is an invalid persister value
	PersisterTypeInvalid PersisterType = iota

	// PersisterTypeMemory keeps the registry in process memory
	PersisterTypeMemory

	// PersisterTypePostgresql is a persister that uses PostgreSQL as the backend
	PersisterTypePostgresql
)

var (
	// PersisterNameToType maps valid persister names to the types above
	PersisterNameToType = map[string]PersisterType{
		"memory":     PersisterTypeMemory,
		"postgresql": PersisterTypePostgresql,
	}

	cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
)

const (
	envVarPrefix = "registry"

	usageListFormat = `The registry is configured via environment vars only. The following environment variables can be used:
{{range .}}
{{usage_key .}}
  description: {{usage_description .}}
  type:        {{usage_type .}}
  default:     {{usage_default .}}
  required:    {{usage_required .}}
{{end}}
`
)

// RegistryConfig is the master config for the registry binaries derived from
// environment variables.
type RegistryConfig struct {
	ListenAddress string `split_words:"true" default:":8080" desc:"Address the API server listens on"`
	OwnerAddress  string `split_words:"true" required:"true" desc:"Address allowed to pause and unpause the registry"`

	PersisterType            PersisterType `ignored:"true"`
	PersisterTypeName        string        `split_words:"true" default:"memory" desc:"Sets the persister type to use, memory or postgresql"`
	PersisterPostgresAddress string        `split_words:"true" desc:"If persister type is Postgresql, sets the address"`
	PersisterPostgresPort    int           `split_words:"true" desc:"If persister type is Postgresql, sets the port"`
	PersisterPostgresDbname  string        `split_words:"true" desc:"If persister type is Postgresql, sets the database name"`
	PersisterPostgresUser    string        `split_words:"true" desc:"If persister type is Postgresql, sets the database user"`
	PersisterPostgresPw      string        `split_words:"true" desc:"If persister type is Postgresql, sets the database password"`

	MetadataGatewayURLs  []string `envconfig:"metadata_gateway_urls" default:"https://ipfs.io" desc:"Comma separated IPFS gateway urls, tried in order"`
	MetadataStoreAPIURL  string   `envconfig:"metadata_store_api_url" desc:"Kubo RPC API url used to store metadata, in-memory store if empty"`
	MetadataCacheSize    int      `split_words:"true" default:"1024" desc:"Number of metadata blobs kept in the in-process cache"`
	MetadataCacheTTLSecs int      `split_words:"true" default:"300" desc:"Seconds a cached metadata blob stays valid"`
	RedisAddress         string   `split_words:"true" desc:"Redis address for a shared metadata cache, in-process cache if empty"`

	OracleEndpoints []string `split_words:"true" desc:"Comma separated name=url pairs of credibility oracles"`
	OracleAPIKey    string   `split_words:"true" desc:"Bearer key sent to the oracles"`
	CallTimeoutSecs int      `split_words:"true" default:"15" desc:"Timeout in seconds for each external call during verification"`
	SearchWindow    int      `split_words:"true" default:"50" desc:"Number of recent registrations scanned by fuzzy search"`

	EthAPIURL           string `envconfig:"eth_api_url" desc:"Ethereum API address, enables the ledger binding"`
	ContractAddress     string `split_words:"true" desc:"Address of the deployed registry contract"`
	ContractDeployBlock uint64 `split_words:"true" desc:"Block the registry contract was deployed at"`
	EthPrivateKey       string `split_words:"true" desc:"Hex private key used to send registry transactions"`
	EthChainID          int64  `envconfig:"eth_chain_id" desc:"Chain id used to sign transactions"`
	BlockWindow         uint64 `split_words:"true" default:"5000" desc:"Blocks per log filter request"`

	PubSubProjectID string `split_words:"true" desc:"Google Pub/Sub project id, enables registration notifications"`
	PubSubTopicName string `split_words:"true" desc:"Google Pub/Sub topic for registration notifications"`

	IndexerCronConfig string `split_words:"true" desc:"Cron config string * * * * * for the ledger indexer"`

	IngestCronConfig       string   `split_words:"true" desc:"Cron config string * * * * * for the headline ingester"`
	HeadlineFeedURL        string   `split_words:"true" desc:"Url of the JSON headline feed"`
	HeadlineAPIKey         string   `split_words:"true" desc:"Api key sent to the headline feed"`
	HeadlineSources        []string `split_words:"true" desc:"Comma separated source ids to ingest, all if empty"`
	HeadlinePageSize       int      `split_words:"true" default:"50" desc:"Number of headlines requested per run"`
	IngestMaxPerRun        int      `split_words:"true" desc:"Maximum headlines registered per run, unlimited if 0"`
	IngestPublisherAddress string   `split_words:"true" desc:"Publisher address of ingested headlines, the owner if empty"`
}

// OutputUsage prints the usage string to os.Stdout
func (c *RegistryConfig) OutputUsage() {
	tabs := tabwriter.NewWriter(os.Stdout, 1, 0, 4, ' ', 0)
	_ = envconfig.Usagef(envVarPrefix, c, tabs, usageListFormat) // nolint: gosec
	_ = tabs.Flush()                                             // nolint: gosec
}

// PopulateFromEnv processes the environment vars, populates RegistryConfig
// with the respective values, and validates the values.
func (c *RegistryConfig) PopulateFromEnv() error {
	err := envconfig.Process(envVarPrefix, c)
	if err != nil {
		return err
	}

	err = c.validateAddresses()
	if err != nil {
		return err
	}

	err = c.validateCronConfigs()
	if err != nil {
		return err
	}

	_, err = c.Oracles()
	if err != nil {
		return err
	}

	err = c.validateLedger()
	if err != nil {
		return err
	}

	err = c.populatePersisterType()
	if err != nil {
		return err
	}

	return c.validatePersister()
}

// ValidateIndexer checks the settings the ledger indexer needs
func (c *RegistryConfig) ValidateIndexer() error {
	if c.IndexerCronConfig == "" {
		return errors.New("Indexer cron config required")
	}
	if c.EthAPIURL == "" {
		return errors.New("Eth API URL required to index the ledger")
	}
	if c.PersisterType != PersisterTypePostgresql {
		return errors.New("Indexer requires the postgresql persister")
	}
	return nil
}

// ValidateIngest checks the settings the headline ingester needs
func (c *RegistryConfig) ValidateIngest() error {
	if c.IngestCronConfig == "" {
		return errors.New("Ingest cron config required")
	}
	if c.HeadlineFeedURL == "" {
		return errors.New("Headline feed url required")
	}
	if c.LedgerEnabled() && c.EthPrivateKey == "" {
		return errors.New("Eth private key required to register headlines on the ledger")
	}
	return nil
}

// OracleEndpoint is a named oracle url
type OracleEndpoint struct {
	Name string
	URL  string
}

// Oracles parses OracleEndpoints. Names must be unique.
func (c *RegistryConfig) Oracles() ([]OracleEndpoint, error) {
	endpoints := make([]OracleEndpoint, 0, len(c.OracleEndpoints))
	seen := map[string]bool{}
	for _, pair := range c.OracleEndpoints {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("Invalid oracle endpoint: '%v'", pair)
		}
		if seen[parts[0]] {
			return nil, fmt.Errorf("Duplicate oracle name: '%v'", parts[0])
		}
		seen[parts[0]] = true
		endpoints = append(endpoints, OracleEndpoint{Name: parts[0], URL: parts[1]})
	}
	return endpoints, nil
}

// CallTimeout returns the external call timeout as a duration
func (c *RegistryConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSecs) * time.Second
}

// MetadataCacheTTL returns the metadata cache ttl as a duration
func (c *RegistryConfig) MetadataCacheTTL() time.Duration {
	return time.Duration(c.MetadataCacheTTLSecs) * time.Second
}

// LedgerEnabled returns true if a registry contract is configured
func (c *RegistryConfig) LedgerEnabled() bool {
	return c.EthAPIURL != ""
}

// PubSubEnabled returns true if registration notifications are configured
func (c *RegistryConfig) PubSubEnabled() bool {
	return c.PubSubProjectID != "" && c.PubSubTopicName != ""
}

func (c *RegistryConfig) validateAddresses() error {
	if !common.IsHexAddress(c.OwnerAddress) {
		return fmt.Errorf("Invalid owner address: '%v'", c.OwnerAddress)
	}
	if c.IngestPublisherAddress != "" && !common.IsHexAddress(c.IngestPublisherAddress) {
		return fmt.Errorf("Invalid ingest publisher address: '%v'", c.IngestPublisherAddress)
	}
	return nil
}

func (c *RegistryConfig) validateCronConfigs() error {
	for _, spec := range []string{c.IndexerCronConfig, c.IngestCronConfig} {
		if spec == "" {
			continue
		}
		_, err := cronParser.Parse(spec)
		if err != nil {
			return fmt.Errorf("Invalid cron config: '%v'", spec)
		}
	}
	return nil
}

func (c *RegistryConfig) validateLedger() error {
	if c.EthAPIURL == "" {
		return nil
	}
	if !IsValidEthAPIURL(c.EthAPIURL) {
		return fmt.Errorf("Invalid eth API URL: '%v'", c.EthAPIURL)
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("Invalid contract address: '%v'", c.ContractAddress)
	}
	if c.EthPrivateKey != "" && c.EthChainID == 0 {
		return errors.New("Eth chain id required to sign transactions")
	}
	return nil
}

func (c *RegistryConfig) validatePersister() error {
	var err error
	if c.PersisterType == PersisterTypePostgresql {
		err = c.validatePostgresqlPersister()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *RegistryConfig) validatePostgresqlPersister() error {
	if c.PersisterPostgresAddress == "" {
		return errors.New("Postgresql address required")
	}
	if c.PersisterPostgresPort == 0 {
		return errors.New("Postgresql port required")
	}
	if c.PersisterPostgresDbname == "" {
		return errors.New("Postgresql db name required")
	}
	return nil
}

func (c *RegistryConfig) populatePersisterType() error {
	var err error
	c.PersisterType, err = PersisterTypeFromName(c.PersisterTypeName)
	return err
}

// PersisterTypeFromName returns the correct persisterType from the string name
func PersisterTypeFromName(typeStr string) (PersisterType, error) {
	pType, ok := PersisterNameToType[typeStr]
	if !ok {
		validNames := make([]string, len(PersisterNameToType))
		index := 0
		for name := range PersisterNameToType {
			validNames[index] = name
			index++
		}
		return PersisterTypeInvalid,
			fmt.Errorf("Invalid persister value: %v; valid types %v", typeStr, validNames)
	}
	return pType, nil
}

// IsValidEthAPIURL returns true if the url has a scheme ethclient can dial
func IsValidEthAPIURL(url string) bool {
	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return strings.HasSuffix(url, ".ipc")
}
