package inscribe

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/ethinscribe/inscriber/internal/metrics"
)

// Config is the engine input. InitialNonce must be the sender's current
// on-chain transaction count, queried once before the engine starts. GasPrice
// is fixed for the whole run so that retried descriptors stay identical.
type Config struct {
	Sender       common.Address
	ChainID      uint64
	Calldata     []byte
	Transactions uint64
	Concurrency  uint64
	GasLimit     uint64
	GasPrice     *big.Int
	InitialNonce uint64
}

func (cfg Config) validate() error {
	if cfg.Transactions < 1 {
		return fmt.Errorf("transactions must be at least 1, got %d", cfg.Transactions)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if len(cfg.Calldata) == 0 {
		return fmt.Errorf("calldata must not be empty")
	}
	if cfg.GasPrice == nil || cfg.GasPrice.Sign() <= 0 {
		return fmt.Errorf("gas price must be positive")
	}
	return nil
}

// Engine drives the whole inscription run:
// 1. allocates nonces in strictly increasing order while below the target and
//    the concurrency limit
// 2. submits one transaction per nonce through the Broadcaster and awaits
//    its receipt
// 3. resubmits the identical descriptor for any nonce whose attempt failed or
//    produced no receipt
// A nonce is retired only by a confirmed receipt.
type Engine struct {
	cfg         Config
	broadcaster Broadcaster
	policy      ResubmitPolicy
	logger      *zap.Logger
}

func NewEngine(cfg Config, broadcaster Broadcaster, policy ResubmitPolicy, logger *zap.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if policy == nil {
		policy = IndefiniteResubmit{}
	}

	return &Engine{
		cfg:         cfg,
		broadcaster: broadcaster,
		policy:      policy,
		logger:      logger,
	}, nil
}

// outcome is the resolution of a single submission attempt, tagged with the
// nonce it used.
type outcome struct {
	nonce   uint64
	txHash  common.Hash
	receipt *types.Receipt
	err     error
	fatal   error
}

// Run executes the engine until every allocated nonce has confirmed, writing
// one Inscription per confirmed nonce to events in resolution order. The
// events channel is closed once the run drains; it must not be reused. Run
// returns ctx.Err() on cancellation and the policy's error if a resubmit
// policy aborts the run.
func (e *Engine) Run(ctx context.Context, events chan<- Inscription) error {
	var (
		results  = make(chan outcome)
		inFlight = make(map[uint64]*types.Transaction, e.cfg.Concurrency)
		attempts = make(map[uint64]uint, e.cfg.Concurrency)
		next     = e.cfg.InitialNonce
		sent     uint64
	)

	e.logger.Info("starting inscription run",
		zap.String("sender", e.cfg.Sender.Hex()),
		zap.Uint64("chain_id", e.cfg.ChainID),
		zap.Uint64("transactions", e.cfg.Transactions),
		zap.Uint64("concurrency", e.cfg.Concurrency),
		zap.Uint64("initial_nonce", e.cfg.InitialNonce))

	for {
		for uint64(len(inFlight)) < e.cfg.Concurrency && sent < e.cfg.Transactions {
			tx := BuildTx(next, e.cfg.Calldata, e.cfg.Sender, e.cfg.GasLimit, e.cfg.GasPrice)
			inFlight[next] = tx
			attempts[next] = 1
			sent++

			e.logger.Debug("allocated nonce", zap.Uint64("nonce", next), zap.Uint64("sent", sent))
			go e.submit(ctx, tx, results)
			next++
		}
		metrics.SetInFlight(len(inFlight))

		if sent >= e.cfg.Transactions && len(inFlight) == 0 {
			e.logger.Info("inscription run complete", zap.Uint64("transactions", sent))
			close(events)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-results:
			if res.fatal != nil {
				return fmt.Errorf("resubmit policy aborted the run: %w", res.fatal)
			}

			tx, ok := inFlight[res.nonce]
			if !ok {
				// a nonce never resolves twice
				return fmt.Errorf("received outcome for unknown nonce %d", res.nonce)
			}

			if res.err == nil && res.receipt != nil {
				delete(inFlight, res.nonce)
				delete(attempts, res.nonce)
				metrics.IncSuccessAttempts()

				event := Inscription{
					Sender:   e.cfg.Sender,
					ChainID:  e.cfg.ChainID,
					Nonce:    res.nonce,
					TxHash:   res.txHash,
					Receipt:  res.receipt,
					Calldata: e.cfg.Calldata,
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return ctx.Err()
				}
				continue
			}

			metrics.IncFailedAttempts()
			if res.err != nil {
				e.logger.Warn("attempt failed, resubmitting",
					zap.Uint64("nonce", res.nonce), zap.Uint("attempts", attempts[res.nonce]), zap.Error(res.err))
			} else {
				e.logger.Warn("no receipt obtained, resubmitting",
					zap.Uint64("nonce", res.nonce), zap.Uint("attempts", attempts[res.nonce]))
			}

			// Retry with the identical descriptor: the slot stays occupied
			// until this nonce confirms.
			made := attempts[res.nonce]
			attempts[res.nonce] = made + 1
			go e.resubmit(ctx, tx, made, results)
		}
	}
}

func (e *Engine) submit(ctx context.Context, tx *types.Transaction, results chan<- outcome) {
	start := time.Now()

	hash, err := e.broadcaster.SignAndBroadcast(ctx, tx)
	if err != nil {
		e.deliver(ctx, results, outcome{nonce: tx.Nonce(), err: fmt.Errorf("failed to broadcast: %w", err)})
		return
	}

	receipt, err := e.broadcaster.AwaitReceipt(ctx, hash)
	if err != nil {
		e.deliver(ctx, results, outcome{nonce: tx.Nonce(), txHash: hash, err: fmt.Errorf("failed to await receipt: %w", err)})
		return
	}

	if receipt != nil {
		metrics.AddConfirmationTime(time.Since(start).Seconds())
	}
	e.deliver(ctx, results, outcome{nonce: tx.Nonce(), txHash: hash, receipt: receipt})
}

// resubmit waits the policy out and then runs a fresh attempt for the same
// descriptor.
func (e *Engine) resubmit(ctx context.Context, tx *types.Transaction, made uint, results chan<- outcome) {
	if err := e.policy.Pause(ctx, tx.Nonce(), made); err != nil {
		e.deliver(ctx, results, outcome{nonce: tx.Nonce(), fatal: err})
		return
	}
	e.submit(ctx, tx, results)
}

func (e *Engine) deliver(ctx context.Context, results chan<- outcome, res outcome) {
	select {
	case results <- res:
	case <-ctx.Done():
	}
}
