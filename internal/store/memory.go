package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"rtoassist/pkg/types"
)

// MemoryRequestRepository keeps requests in process memory. It backs local
// development and tests.
type MemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*types.RtoAssistanceRequest
	order    []string
	counter  int
}

func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{
		requests: make(map[string]*types.RtoAssistanceRequest),
	}
}

func (m *MemoryRequestRepository) CreateRequest(_ context.Context, req *types.RtoAssistanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	req.ID = fmt.Sprintf("req-%d", m.counter)
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.UpdatedAt = req.CreatedAt

	stored := *req
	m.requests[req.ID] = &stored
	m.order = append(m.order, req.ID)
	return nil
}

func (m *MemoryRequestRepository) Request(_ context.Context, id string) (*types.RtoAssistanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, types.ErrRequestNotFound
	}
	out := *req
	return &out, nil
}

// Requests returns copies, newest first.
func (m *MemoryRequestRepository) Requests(_ context.Context, scope types.RequestScope) ([]*types.RtoAssistanceRequest, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("unknown request scope %q", scope)
	}
	status, filtered := scope.Status()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.RtoAssistanceRequest, 0, len(m.order))
	for _, id := range slices.Backward(m.order) {
		req := m.requests[id]
		if filtered && req.Status != status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRequestRepository) UpdateRequestStatus(_ context.Context, id string, status types.RequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return false, nil
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return true, nil
}
