package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ethinscribe/inscriber/internal/inscribe"
)

const inscriptionPrefix = "inscriptions"

// LevelDBStorage keeps one record per confirmed inscription, keyed by
// chain id and transaction hash so reruns against the same chain never
// duplicate an entry.
type LevelDBStorage struct {
	sync.Mutex
	db *leveldb.DB
}

func NewLevelDBStorage(path string) (*LevelDBStorage, error) {
	database, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDBStorage{db: database}, nil
}

func (s *LevelDBStorage) InsertInscription(record inscribe.InscriptionRecord) error {
	s.Lock()
	defer s.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal InscriptionRecord: %w", err)
	}

	err = s.db.Put(constructKey(record.ChainID, record.TxHash), data, nil)
	if err != nil {
		return fmt.Errorf("failed to save inscription record: %w", err)
	}

	return nil
}

func (s *LevelDBStorage) GetAllInscriptions() ([]*inscribe.InscriptionRecord, error) {
	s.Lock()
	defer s.Unlock()

	iterator := s.db.NewIterator(util.BytesPrefix([]byte(inscriptionPrefix)), nil)
	defer iterator.Release()
	var records []*inscribe.InscriptionRecord
	for iterator.Next() {
		value := iterator.Value()
		var record inscribe.InscriptionRecord
		err := json.Unmarshal(value, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal data into InscriptionRecord: %w", err)
		}

		records = append(records, &record)
	}
	return records, nil
}

func (s *LevelDBStorage) Close() error {
	return s.db.Close()
}

func constructKey(chainID uint64, txHash string) []byte {
	return []byte(inscriptionPrefix + "/" + strconv.FormatUint(chainID, 10) + "/" + txHash)
}
