// Package store provides an in-memory implementation of the billing
// persistence interfaces, for tests and local development.
package store

import (
	"context"
	"sync"

	"github.com/vinculo/billing-engine/billing"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	clients map[string]billing.Client
	charges map[string]billing.Charge
}

func NewMemory() *Memory {
	return &Memory{
		clients: make(map[string]billing.Client),
		charges: make(map[string]billing.Charge),
	}
}

// -----------------------------------------------------------------------------
// ChargeStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveCharge(_ context.Context, ch billing.Charge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charges[ch.ID] = ch
	return nil
}

func (m *Memory) GetCharge(_ context.Context, id string) (*billing.Charge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.charges[id]
	if !ok {
		return nil, billing.ErrChargeNotFound
	}
	out := ch
	return &out, nil
}

func (m *Memory) UpdateCharge(_ context.Context, ch billing.Charge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.charges[ch.ID]; !ok {
		return billing.ErrChargeNotFound
	}
	m.charges[ch.ID] = ch
	return nil
}

func (m *Memory) DeleteCharge(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.charges[id]; !ok {
		return billing.ErrChargeNotFound
	}
	delete(m.charges, id)
	return nil
}

func (m *Memory) ListCharges(_ context.Context) ([]billing.Charge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.Charge, 0, len(m.charges))
	for _, ch := range m.charges {
		out = append(out, ch)
	}
	return out, nil
}

func (m *Memory) ListChargesByClient(_ context.Context, clientID string) ([]billing.Charge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []billing.Charge
	for _, ch := range m.charges {
		if ch.ClientID == clientID {
			out = append(out, ch)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// ClientStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveClient(_ context.Context, c billing.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
	return nil
}

func (m *Memory) GetClient(_ context.Context, id string) (*billing.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, billing.ErrClientNotFound
	}
	out := c
	return &out, nil
}

func (m *Memory) UpdateClient(_ context.Context, c billing.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return billing.ErrClientNotFound
	}
	m.clients[c.ID] = c
	return nil
}

func (m *Memory) ListClients(_ context.Context) ([]billing.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

// Reset drops everything. Used by the demo scenario loader.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = make(map[string]billing.Client)
	m.charges = make(map[string]billing.Charge)
	return nil
}
