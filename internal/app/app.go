package app

import (
	"context"
	"fmt"
	"math/big"

	nlogger "github.com/neutron-org/neutron-logger"
	"go.uber.org/zap"

	"github.com/ethinscribe/inscriber/internal/chain"
	"github.com/ethinscribe/inscriber/internal/config"
	"github.com/ethinscribe/inscriber/internal/inscribe"
	"github.com/ethinscribe/inscriber/internal/storage"
	"github.com/ethinscribe/inscriber/internal/wallet"
)

var (
	Version = ""
	Commit  = ""
)

const (
	AppContext         = "app"
	EngineContext      = "engine"
	ChainClientContext = "chain_client"
	StorageContext     = "storage"
)

// NewDefaultStorage returns the LevelDB storage when a path is configured and
// the in-memory one otherwise.
func NewDefaultStorage(cfg config.InscriberConfig, logger *zap.Logger) (inscribe.Storage, error) {
	if cfg.StoragePath == "" {
		logger.Info("no storage path configured, inscriptions will not be persisted")
		return storage.NewMemoryStorage(), nil
	}

	leveldbStorage, err := storage.NewLevelDBStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create NewLevelDBStorage: %w", err)
	}

	return leveldbStorage, nil
}

// NewDefaultBroadcaster builds the chain client for the configured endpoint
// and signing key. Key parsing, endpoint dialing and the chain id check all
// happen here, before any nonce is allocated.
func NewDefaultBroadcaster(ctx context.Context, cfg config.InscriberConfig, logRegistry *nlogger.Registry) (*chain.Client, error) {
	w, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	client, err := chain.NewClient(ctx, cfg.Chain, w, logRegistry.Get(ChainClientContext))
	if err != nil {
		return nil, fmt.Errorf("failed to create chain client: %w", err)
	}

	return client, nil
}

// NewDefaultEngine seeds the initial nonce and the fixed gas price from the
// chain and returns an engine ready to Run.
func NewDefaultEngine(ctx context.Context, cfg config.InscriberConfig, client *chain.Client, calldata []byte, logRegistry *nlogger.Registry) (*inscribe.Engine, error) {
	nonce, err := client.PendingNonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch initial nonce: %w", err)
	}

	gasPrice := new(big.Int).SetUint64(cfg.GasPriceWei)
	if cfg.GasPriceWei == 0 {
		gasPrice, err = client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch gas price: %w", err)
		}
	}

	engine, err := inscribe.NewEngine(inscribe.Config{
		Sender:       client.Sender(),
		ChainID:      client.ChainID(),
		Calldata:     calldata,
		Transactions: cfg.Transactions,
		Concurrency:  cfg.Concurrency,
		GasLimit:     cfg.GasLimit,
		GasPrice:     gasPrice,
		InitialNonce: nonce,
	}, client, inscribe.IndefiniteResubmit{}, logRegistry.Get(EngineContext))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return engine, nil
}
