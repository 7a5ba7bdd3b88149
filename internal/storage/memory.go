package storage

import (
	"sync"

	"github.com/ethinscribe/inscriber/internal/inscribe"
)

// MemoryStorage is an in-memory Storage for runs that do not need a database
// on disk, and for tests.
type MemoryStorage struct {
	sync.Mutex
	records []*inscribe.InscriptionRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) InsertInscription(record inscribe.InscriptionRecord) error {
	s.Lock()
	defer s.Unlock()

	s.records = append(s.records, &record)
	return nil
}

func (s *MemoryStorage) GetAllInscriptions() ([]*inscribe.InscriptionRecord, error) {
	s.Lock()
	defer s.Unlock()

	out := make([]*inscribe.InscriptionRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
