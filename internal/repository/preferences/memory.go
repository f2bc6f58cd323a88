package preferences

import (
	"context"
	"sync"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	dompref "github.com/kailas-cloud/marketsearch/internal/domain/preferences"
)

var _ dompref.Store = (*Memory)(nil)

// Memory keeps preferences for the process lifetime. Used when Redis is not configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]dompref.UI
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]dompref.UI)}
}

// Get returns the owner's preferences or domain.ErrNotFound.
func (m *Memory) Get(_ context.Context, owner string) (dompref.UI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ui, ok := m.data[owner]
	if !ok {
		return dompref.UI{}, domain.ErrNotFound
	}
	return ui, nil
}

// Put stores the owner's preferences.
func (m *Memory) Put(_ context.Context, owner string, ui dompref.UI) error {
	m.mu.Lock()
	m.data[owner] = ui
	m.mu.Unlock()
	return nil
}
