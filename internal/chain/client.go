package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/ethinscribe/inscriber/internal/config"
	"github.com/ethinscribe/inscriber/internal/wallet"
)

// retries configuration for the initial chain id query
var (
	rtyAtt = retry.Attempts(uint(5))
	rtyDel = retry.Delay(time.Second * 2)
	rtyErr = retry.LastErrorOnly(true)
)

// rpcClient is the subset of ethclient.Client the inscriber needs.
type rpcClient interface {
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

var _ rpcClient = (*ethclient.Client)(nil)

// Client signs and broadcasts inscription transactions over a single JSON-RPC
// endpoint and polls for their receipts. It implements inscribe.Broadcaster.
type Client struct {
	rpc             rpcClient
	wallet          *wallet.Wallet
	signer          types.Signer
	chainID         uint64
	receiptAttempts uint
	receiptDelay    time.Duration
	logger          *zap.Logger
}

// NewClient dials the configured RPC endpoint and verifies its chain id
// against the config. A mismatch or an unreachable endpoint is a fatal
// startup error.
func NewClient(ctx context.Context, cfg config.ChainConfig, w *wallet.Wallet, logger *zap.Logger) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, cfg.RPCAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint %s: %w", cfg.RPCAddress, err)
	}

	var chainID *big.Int
	if err := retry.Do(func() error {
		var err error
		chainID, err = rpc.ChainID(ctx)
		return err
	}, retry.Context(ctx), rtyAtt, rtyDel, rtyErr, retry.OnRetry(func(n uint, err error) {
		logger.Info("failed to query chain id", zap.Error(err))
	})); err != nil {
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	if cfg.ChainID != 0 && chainID.Uint64() != cfg.ChainID {
		return nil, fmt.Errorf("chain id mismatch: node reports %d, config expects %d", chainID.Uint64(), cfg.ChainID)
	}

	logger.Info("connected to chain",
		zap.String("rpc_address", cfg.RPCAddress),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.String("sender", w.Address().Hex()))

	return &Client{
		rpc:             rpc,
		wallet:          w,
		signer:          types.LatestSignerForChainID(chainID),
		chainID:         chainID.Uint64(),
		receiptAttempts: cfg.ReceiptAttempts,
		receiptDelay:    cfg.ReceiptDelay,
		logger:          logger,
	}, nil
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID() uint64 {
	return c.chainID
}

// Sender returns the address of the signing wallet.
func (c *Client) Sender() common.Address {
	return c.wallet.Address()
}

// PendingNonce returns the sender's current transaction count including
// pending transactions. The engine queries it once to seed nonce allocation.
func (c *Client) PendingNonce(ctx context.Context) (uint64, error) {
	nonce, err := c.rpc.PendingNonceAt(ctx, c.wallet.Address())
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending nonce: %w", err)
	}
	return nonce, nil
}

// SuggestGasPrice returns the node's suggested gas price. It is resolved once
// per run so that retried descriptors stay identical.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas price: %w", err)
	}
	return price, nil
}

// SignAndBroadcast signs tx and submits it. Rebroadcasts of a transaction the
// node has already seen are not errors: the engine resubmits identical
// descriptors until a receipt arrives.
func (c *Client) SignAndBroadcast(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	signed, err := c.wallet.SignTx(tx, c.signer)
	if err != nil {
		return common.Hash{}, err
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil && !alreadyKnown(err) {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Debug("broadcast transaction",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.Uint64("nonce", signed.Nonce()))

	return signed.Hash(), nil
}

// AwaitReceipt polls for the receipt of hash. It returns (nil, nil) when the
// receipt did not appear within the configured polling policy, which the
// engine treats as a retryable no-receipt outcome.
func (c *Client) AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt

	err := retry.Do(func() error {
		var err error
		receipt, err = c.rpc.TransactionReceipt(ctx, hash)
		return err
	},
		retry.Context(ctx),
		retry.Attempts(c.receiptAttempts),
		retry.Delay(c.receiptDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash.Hex(), err)
	}

	return receipt, nil
}

func alreadyKnown(err error) bool {
	return strings.Contains(err.Error(), "already known") ||
		strings.Contains(err.Error(), "transaction already imported")
}
