package inscribe_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/ethinscribe/inscriber/internal/inscribe"
	mock_inscribe "github.com/ethinscribe/inscriber/testutil/mocks/inscribe"
)

var (
	testSender   = common.HexToAddress("0x8D4E4Ee435a2FE82A037ba10d4486049bADbCdB2")
	testCalldata = []byte(`data:,{"p":"fair-20","op":"mint","tick":"brr","amt":"1000"}`)
)

func testConfig(transactions, concurrency, initialNonce uint64) inscribe.Config {
	return inscribe.Config{
		Sender:       testSender,
		ChainID:      5,
		Calldata:     testCalldata,
		Transactions: transactions,
		Concurrency:  concurrency,
		GasLimit:     30000,
		GasPrice:     big.NewInt(1_000_000_000),
		InitialNonce: initialNonce,
	}
}

type attemptOutcome int

const (
	outcomeConfirm attemptOutcome = iota
	outcomeNoReceipt
	outcomeBroadcastErr
	outcomeReceiptErr
)

// scriptedBroadcaster resolves every attempt according to script(nonce,
// attempt) and records everything the engine does to it.
type scriptedBroadcaster struct {
	script func(nonce uint64, attempt int) attemptOutcome
	// onAttempt is called with the total number of attempts made so far.
	onAttempt func(total int)

	mu            sync.Mutex
	attempts      map[uint64]int
	byHash        map[common.Hash]uint64
	descriptors   map[uint64][][]byte
	broadcasts    []uint64
	inFlight      int
	maxInFlight   int
	totalAttempts int
}

func newScriptedBroadcaster(script func(nonce uint64, attempt int) attemptOutcome) *scriptedBroadcaster {
	return &scriptedBroadcaster{
		script:      script,
		attempts:    make(map[uint64]int),
		byHash:      make(map[common.Hash]uint64),
		descriptors: make(map[uint64][][]byte),
	}
}

func (b *scriptedBroadcaster) SignAndBroadcast(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, err
	}

	b.mu.Lock()
	nonce := tx.Nonce()
	b.broadcasts = append(b.broadcasts, nonce)
	b.descriptors[nonce] = append(b.descriptors[nonce], raw)
	b.attempts[nonce]++
	attempt := b.attempts[nonce]
	b.totalAttempts++
	total := b.totalAttempts
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	hash := tx.Hash()
	b.byHash[hash] = nonce
	out := b.script(nonce, attempt)
	b.mu.Unlock()

	if b.onAttempt != nil {
		b.onAttempt(total)
	}

	if out == outcomeBroadcastErr {
		b.resolve()
		return common.Hash{}, errors.New("broadcast failed")
	}
	return hash, nil
}

func (b *scriptedBroadcaster) AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	// keep attempts overlapping so the concurrency bound is observable
	time.Sleep(time.Millisecond)

	b.mu.Lock()
	nonce := b.byHash[hash]
	out := b.script(nonce, b.attempts[nonce])
	b.mu.Unlock()
	b.resolve()

	switch out {
	case outcomeConfirm:
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			TxHash:      hash,
			BlockNumber: big.NewInt(int64(nonce) + 100),
		}, nil
	case outcomeNoReceipt:
		return nil, nil
	default:
		return nil, errors.New("rpc error")
	}
}

func (b *scriptedBroadcaster) resolve() {
	b.mu.Lock()
	b.inFlight--
	b.mu.Unlock()
}

func (b *scriptedBroadcaster) attemptsFor(nonce uint64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts[nonce]
}

func (b *scriptedBroadcaster) allocatedNonces() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.attempts)
}

func (b *scriptedBroadcaster) peakInFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxInFlight
}

func alwaysConfirm(uint64, int) attemptOutcome { return outcomeConfirm }

// runEngine drains the engine into a slice of events.
func runEngine(t *testing.T, eng *inscribe.Engine, ctx context.Context) ([]inscribe.Inscription, error) {
	t.Helper()

	events := make(chan inscribe.Inscription)
	var got []inscribe.Inscription
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			got = append(got, event)
		}
	}()

	err := eng.Run(ctx, events)
	if err != nil {
		// the engine only closes the channel on a drained run
		close(events)
	}
	<-done
	return got, err
}

func newTestEngine(t *testing.T, cfg inscribe.Config, b inscribe.Broadcaster, policy inscribe.ResubmitPolicy) *inscribe.Engine {
	t.Helper()
	eng, err := inscribe.NewEngine(cfg, b, policy, zap.NewNop())
	require.NoError(t, err)
	return eng
}

func TestEngineAllConfirmFirstTry(t *testing.T) {
	const (
		transactions = 5
		concurrency  = 2
		initialNonce = 42
	)
	broadcaster := newScriptedBroadcaster(alwaysConfirm)
	eng := newTestEngine(t, testConfig(transactions, concurrency, initialNonce), broadcaster, nil)

	got, err := runEngine(t, eng, context.Background())
	require.NoError(t, err)
	require.Len(t, got, transactions)

	seen := map[uint64]struct{}{}
	for _, event := range got {
		assert.Equal(t, testSender, event.Sender)
		assert.Equal(t, uint64(5), event.ChainID)
		assert.Equal(t, testCalldata, event.Calldata)
		require.NotNil(t, event.Receipt)

		_, dup := seen[event.Nonce]
		assert.False(t, dup, "nonce %d emitted twice", event.Nonce)
		seen[event.Nonce] = struct{}{}
		assert.GreaterOrEqual(t, event.Nonce, uint64(initialNonce))
		assert.Less(t, event.Nonce, uint64(initialNonce+transactions))
	}

	assert.LessOrEqual(t, broadcaster.peakInFlight(), concurrency)
}

func TestEngineConcurrencyBound(t *testing.T) {
	const concurrency = 3
	broadcaster := newScriptedBroadcaster(alwaysConfirm)
	eng := newTestEngine(t, testConfig(20, concurrency, 0), broadcaster, nil)

	got, err := runEngine(t, eng, context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.LessOrEqual(t, broadcaster.peakInFlight(), concurrency)
}

func TestEngineAllocatesNoncesInOrder(t *testing.T) {
	// with concurrency 1 the broadcast order is the allocation order
	broadcaster := newScriptedBroadcaster(alwaysConfirm)
	eng := newTestEngine(t, testConfig(10, 1, 7), broadcaster, nil)

	_, err := runEngine(t, eng, context.Background())
	require.NoError(t, err)

	require.Len(t, broadcaster.broadcasts, 10)
	for i, nonce := range broadcaster.broadcasts {
		assert.Equal(t, uint64(7+i), nonce)
	}
}

func TestEngineRetriesFailedAttemptWithSameNonce(t *testing.T) {
	// nonce fails on the first attempt and confirms on the second:
	// exactly one nonce is allocated and exactly one event is emitted
	broadcaster := newScriptedBroadcaster(func(nonce uint64, attempt int) attemptOutcome {
		if attempt == 1 {
			return outcomeBroadcastErr
		}
		return outcomeConfirm
	})
	eng := newTestEngine(t, testConfig(1, 1, 13), broadcaster, nil)

	got, err := runEngine(t, eng, context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(13), got[0].Nonce)
	assert.Equal(t, 2, broadcaster.attemptsFor(13))
}

func TestEngineResubmitsIdenticalDescriptor(t *testing.T) {
	// two no-receipt rounds before confirming: every broadcast for the nonce
	// must carry byte-identical bytes
	broadcaster := newScriptedBroadcaster(func(nonce uint64, attempt int) attemptOutcome {
		if attempt < 3 {
			return outcomeNoReceipt
		}
		return outcomeConfirm
	})
	eng := newTestEngine(t, testConfig(1, 1, 0), broadcaster, nil)

	got, err := runEngine(t, eng, context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	descriptors := broadcaster.descriptors[0]
	require.Len(t, descriptors, 3)
	assert.Equal(t, descriptors[0], descriptors[1])
	assert.Equal(t, descriptors[0], descriptors[2])
}

func TestEngineMixedRetriesStillEmitsEveryNonceOnce(t *testing.T) {
	// a later nonce can confirm before an earlier one that needed retries
	broadcaster := newScriptedBroadcaster(func(nonce uint64, attempt int) attemptOutcome {
		if nonce%2 == 0 && attempt == 1 {
			return outcomeReceiptErr
		}
		return outcomeConfirm
	})
	eng := newTestEngine(t, testConfig(6, 2, 0), broadcaster, nil)

	got, err := runEngine(t, eng, context.Background())
	require.NoError(t, err)
	require.Len(t, got, 6)

	seen := map[uint64]struct{}{}
	for _, event := range got {
		_, dup := seen[event.Nonce]
		require.False(t, dup, "nonce %d emitted twice", event.Nonce)
		seen[event.Nonce] = struct{}{}
	}
	for nonce := uint64(0); nonce < 6; nonce++ {
		_, ok := seen[nonce]
		assert.True(t, ok, "nonce %d never confirmed", nonce)
	}
}

func TestEngineNeverCompletesWithoutReceipts(t *testing.T) {
	// every attempt returns no receipt: the engine keeps resubmitting the
	// same three nonces until it is cancelled from outside
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster := newScriptedBroadcaster(func(uint64, int) attemptOutcome { return outcomeNoReceipt })
	broadcaster.onAttempt = func(total int) {
		if total >= 9 {
			cancel()
		}
	}
	eng := newTestEngine(t, testConfig(3, 3, 0), broadcaster, nil)

	got, err := runEngine(t, eng, ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)

	for nonce := uint64(0); nonce < 3; nonce++ {
		assert.GreaterOrEqual(t, broadcaster.attemptsFor(nonce), 1)
	}
	// no nonce beyond the target was ever allocated
	assert.Equal(t, 3, broadcaster.allocatedNonces())
}

func TestEngineCappedPolicyAbortsRun(t *testing.T) {
	broadcaster := newScriptedBroadcaster(func(uint64, int) attemptOutcome { return outcomeNoReceipt })
	eng := newTestEngine(t, testConfig(1, 1, 0), broadcaster, inscribe.CappedResubmit{Limit: 3})

	got, err := runEngine(t, eng, context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resubmit policy aborted the run")
	assert.Empty(t, got)
	assert.Equal(t, 3, broadcaster.attemptsFor(0))
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *inscribe.Config)
	}{
		{
			name:   "ZeroTransactions",
			mutate: func(cfg *inscribe.Config) { cfg.Transactions = 0 },
		},
		{
			name:   "ZeroConcurrency",
			mutate: func(cfg *inscribe.Config) { cfg.Concurrency = 0 },
		},
		{
			name:   "EmptyCalldata",
			mutate: func(cfg *inscribe.Config) { cfg.Calldata = nil },
		},
		{
			name:   "MissingGasPrice",
			mutate: func(cfg *inscribe.Config) { cfg.GasPrice = nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(1, 1, 0)
			tt.mutate(&cfg)
			_, err := inscribe.NewEngine(cfg, newScriptedBroadcaster(alwaysConfirm), nil, zap.NewNop())
			require.Error(t, err)
		})
	}
}

func TestEngineSingleMintWithMockBroadcaster(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockBroadcaster := mock_inscribe.NewMockBroadcaster(ctrl)

	cfg := testConfig(1, 1, 21)
	wantTx := inscribe.BuildTx(cfg.InitialNonce, cfg.Calldata, cfg.Sender, cfg.GasLimit, cfg.GasPrice)
	wantHash := wantTx.Hash()

	mockBroadcaster.EXPECT().
		SignAndBroadcast(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *types.Transaction) (common.Hash, error) {
			require.Equal(t, wantHash, tx.Hash())
			return tx.Hash(), nil
		})
	mockBroadcaster.EXPECT().
		AwaitReceipt(gomock.Any(), wantHash).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: wantHash, BlockNumber: big.NewInt(1)}, nil)

	eng := newTestEngine(t, cfg, mockBroadcaster, nil)
	got, err := runEngine(t, eng, context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(21), got[0].Nonce)
	assert.Equal(t, wantHash, got[0].TxHash)
}
