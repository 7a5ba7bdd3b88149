package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "INSCRIBER"

// ChainConfig describes the chain the inscriber talks to.
type ChainConfig struct {
	RPCAddress string `split_words:"true" default:"http://127.0.0.1:8545"`
	// ChainID is checked against the node on startup when non-zero.
	ChainID uint64 `split_words:"true" default:"0"`
	// ReceiptAttempts and ReceiptDelay bound one round of receipt polling;
	// an exhausted round surfaces as a no-receipt outcome and the engine
	// rebroadcasts the transaction.
	ReceiptAttempts uint          `split_words:"true" default:"10"`
	ReceiptDelay    time.Duration `split_words:"true" default:"2s"`
}

// InscriberConfig is the full application configuration, initialized from
// INSCRIBER_* environment variables. The mint command flags override the
// run-shaped fields.
type InscriberConfig struct {
	Chain      ChainConfig
	PrivateKey string `split_words:"true"`

	Transactions uint64 `default:"1"`
	Concurrency  uint64 `default:"16"`
	GasLimit     uint64 `split_words:"true" default:"30000"`
	// GasPriceWei fixes the gas price for the run; 0 asks the node once.
	GasPriceWei uint64 `split_words:"true" default:"0"`

	StoragePath    string `split_words:"true" default:"inscriber.db"`
	ExplorerURL    string `split_words:"true"`
	PrometheusPort uint16 `split_words:"true" default:"9999"`
	WebserverPort  uint16 `split_words:"true" default:"9998"`
}

func NewInscriberConfig() (InscriberConfig, error) {
	cfg := InscriberConfig{}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to init config: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields the engine cannot start without.
func (cfg InscriberConfig) Validate() error {
	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key must be set")
	}
	if cfg.Transactions < 1 {
		return fmt.Errorf("transactions must be at least 1")
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	return nil
}
