package inscribe

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Broadcaster knows how to sign and broadcast a ready-made transaction and how
// to wait for its inclusion. Implementations must be safe for concurrent use
// and must tolerate repeated broadcasts of descriptors sharing a nonce: the
// engine resubmits the identical transaction until a receipt arrives, and the
// chain deduplicates by nonce.
type Broadcaster interface {
	// SignAndBroadcast signs tx and submits it to the chain, returning the
	// hash of the signed transaction.
	SignAndBroadcast(ctx context.Context, tx *types.Transaction) (common.Hash, error)

	// AwaitReceipt blocks until the transaction identified by hash is included
	// in a block. A (nil, nil) return means no receipt was obtainable within
	// the implementation's own polling policy; it is not an error.
	AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Inscription is emitted by the engine exactly once per nonce that confirmed
// on chain.
type Inscription struct {
	Sender   common.Address
	ChainID  uint64
	Nonce    uint64
	TxHash   common.Hash
	Receipt  *types.Receipt
	Calldata []byte
}

// InscriptionRecord is the persisted form of a confirmed inscription.
type InscriptionRecord struct {
	Sender      string    `json:"sender"`
	ChainID     uint64    `json:"chain_id"`
	Nonce       uint64    `json:"nonce"`
	TxHash      string    `json:"tx_hash"`
	Calldata    string    `json:"calldata"`
	BlockNumber uint64    `json:"block_number"`
	InscribedAt time.Time `json:"inscribed_at"`
}

// Storage keeps the history of confirmed inscriptions.
type Storage interface {
	InsertInscription(record InscriptionRecord) error
	GetAllInscriptions() ([]*InscriptionRecord, error)
	Close() error
}

// NewRecord converts a completion event into its persisted form.
func NewRecord(event Inscription) InscriptionRecord {
	var block uint64
	if event.Receipt != nil && event.Receipt.BlockNumber != nil {
		block = event.Receipt.BlockNumber.Uint64()
	}
	return InscriptionRecord{
		Sender:      event.Sender.Hex(),
		ChainID:     event.ChainID,
		Nonce:       event.Nonce,
		TxHash:      event.TxHash.Hex(),
		Calldata:    string(event.Calldata),
		BlockNumber: block,
		InscribedAt: time.Now(),
	}
}
