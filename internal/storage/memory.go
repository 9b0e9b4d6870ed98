package storage

import (
	"context"
	"sync"

	"github.com/pennyledger/backend/internal/model/ledger"
)

// Memory keeps blobs and archived transactions in process memory. It is
// the default backend for local runs and the fixture for tests.
type Memory struct {
	mu           sync.RWMutex
	blobs        map[string]string
	transactions map[string]archivedTransaction
}

type archivedTransaction struct {
	sessionKey  string
	transaction ledger.Transaction
}

func NewMemory() *Memory {
	return &Memory{
		blobs:        make(map[string]string),
		transactions: make(map[string]archivedTransaction),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blobs[key], nil
}

func (m *Memory) Put(_ context.Context, key, blob string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = blob
	return nil
}

func (m *Memory) InsertTransaction(_ context.Context, sessionKey string, t ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = archivedTransaction{sessionKey: sessionKey, transaction: t}
	return nil
}

func (m *Memory) GetTransaction(_ context.Context, id string) (ledger.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.transactions[id]
	if !ok {
		return ledger.Transaction{}, "", ErrTransactionNotFound
	}
	return a.transaction, a.sessionKey, nil
}
