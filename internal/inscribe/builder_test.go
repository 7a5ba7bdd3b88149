package inscribe_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethinscribe/inscriber/internal/inscribe"
)

func TestBuildTxFields(t *testing.T) {
	gasPrice := big.NewInt(2_000_000_000)
	tx := inscribe.BuildTx(9, testCalldata, testSender, 30000, gasPrice)

	assert.Equal(t, uint64(9), tx.Nonce())
	require.NotNil(t, tx.To())
	assert.Equal(t, testSender, *tx.To(), "inscriptions are self-transfers")
	assert.Zero(t, tx.Value().Sign())
	assert.Equal(t, uint64(30000), tx.Gas())
	assert.Equal(t, gasPrice, tx.GasPrice())
	assert.Equal(t, testCalldata, tx.Data())
}

func TestBuildTxIsDeterministic(t *testing.T) {
	gasPrice := big.NewInt(1_000_000_000)

	first := inscribe.BuildTx(3, testCalldata, testSender, 30000, gasPrice)
	second := inscribe.BuildTx(3, testCalldata, testSender, 30000, gasPrice)

	firstRaw, err := first.MarshalBinary()
	require.NoError(t, err)
	secondRaw, err := second.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, firstRaw, secondRaw)
	assert.Equal(t, first.Hash(), second.Hash())
}

func TestBuildTxDiffersByNonce(t *testing.T) {
	gasPrice := big.NewInt(1_000_000_000)

	first := inscribe.BuildTx(1, testCalldata, testSender, 30000, gasPrice)
	second := inscribe.BuildTx(2, testCalldata, testSender, 30000, gasPrice)

	assert.NotEqual(t, first.Hash(), second.Hash())
}
