package inscribe

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BuildTx produces the transaction descriptor for a single inscription
// attempt: a zero-value self-transfer carrying calldata as data. It is a pure
// function of its inputs, so rebuilding a descriptor for a retried nonce
// yields a byte-identical transaction.
func BuildTx(nonce uint64, calldata []byte, sender common.Address, gasLimit uint64, gasPrice *big.Int) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &sender,
		Value:    big.NewInt(0),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     calldata,
	})
}
