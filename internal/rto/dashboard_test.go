package rto

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"rtoassist/internal/utils"
	"rtoassist/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequestStore struct {
	mu          sync.Mutex
	requests    []*types.RtoAssistanceRequest
	loads       int
	updates     int
	rejectAll   bool
	updateErr   error
	updatePanic bool
}

func newFakeRequestStore(n int) *fakeRequestStore {
	s := &fakeRequestStore{}
	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		s.requests = append(s.requests, &types.RtoAssistanceRequest{
			ID:          fmt.Sprintf("req-%d", i),
			ServiceType: types.ServiceTypeNewLicense,
			Status:      types.RequestStatusPending,
			FullName:    fmt.Sprintf("Applicant %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}
	return s
}

func (s *fakeRequestStore) Requests(_ context.Context, scope types.RequestScope) ([]*types.RtoAssistanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++

	status, filtered := scope.Status()
	out := make([]*types.RtoAssistanceRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if filtered && req.Status != status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeRequestStore) UpdateRequestStatus(_ context.Context, id string, status types.RequestStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++

	if s.updatePanic {
		panic("driver bug")
	}
	if s.updateErr != nil {
		return false, s.updateErr
	}
	if s.rejectAll {
		return false, nil
	}
	for _, req := range s.requests {
		if req.ID == id {
			req.Status = status
			return true, nil
		}
	}
	return false, nil
}

func pageIDs(reqs []*types.RtoAssistanceRequest) []string {
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ID)
	}
	return ids
}

func loadedList(t *testing.T, store *fakeRequestStore, scope types.RequestScope, opts ...ListOption) *RequestList {
	t.Helper()
	l := NewRequestList(nullLogger(), store, scope, opts...)
	require.NoError(t, l.Load(context.Background()))
	return l
}

func TestRequestListPagination(t *testing.T) {
	l := loadedList(t, newFakeRequestStore(12), types.RequestScopeAll)

	assert.Equal(t, 12, l.Len())
	assert.Equal(t, 3, l.TotalPages())
	assert.Equal(t, 1, l.CurrentPage())
	assert.False(t, l.HasPrevious())
	assert.Equal(t, []string{"req-1", "req-2", "req-3", "req-4", "req-5"}, pageIDs(l.Page()))

	l.Next()
	l.Next()
	assert.Equal(t, 3, l.CurrentPage())
	assert.False(t, l.HasNext())
	assert.Equal(t, []string{"req-11", "req-12"}, pageIDs(l.Page()))

	l.Next()
	assert.Equal(t, 3, l.CurrentPage())

	l.Previous()
	assert.Equal(t, 2, l.CurrentPage())
	assert.True(t, l.HasPrevious())
	assert.True(t, l.HasNext())
}

func TestRequestListSetPageClamps(t *testing.T) {
	l := loadedList(t, newFakeRequestStore(7), types.RequestScopeAll)

	l.SetPage(99)
	assert.Equal(t, 2, l.CurrentPage())

	l.SetPage(-3)
	assert.Equal(t, 1, l.CurrentPage())
}

func TestRequestListEmpty(t *testing.T) {
	l := loadedList(t, newFakeRequestStore(0), types.RequestScopePending)

	assert.Equal(t, 0, l.TotalPages())
	assert.Equal(t, 1, l.CurrentPage())
	assert.NotNil(t, l.Page())
	assert.Empty(t, l.Page())
	assert.False(t, l.HasNext())

	l.SetPage(2)
	assert.Equal(t, 1, l.CurrentPage())
}

func TestRequestListLoadResetsPage(t *testing.T) {
	l := loadedList(t, newFakeRequestStore(12), types.RequestScopeAll)

	l.SetPage(3)
	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, 1, l.CurrentPage())
}

func TestRequestListScopeFilters(t *testing.T) {
	store := newFakeRequestStore(4)
	store.requests[1].Status = types.RequestStatusCompleted

	l := loadedList(t, store, types.RequestScopeCompleted)
	assert.Equal(t, []string{"req-2"}, pageIDs(l.Requests()))
	assert.Equal(t, types.RequestScopeCompleted, l.Scope())
}

func TestUpdateStatusRejectedByStore(t *testing.T) {
	store := newFakeRequestStore(3)
	store.rejectAll = true
	observer := &recordingObserver{}
	l := loadedList(t, store, types.RequestScopeAll, WithListObserver(observer))

	err := l.UpdateStatus(context.Background(), "req-1", types.RequestStatusInProgress)

	var serr *types.StatusUpdateError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "req-1", serr.RequestID)
	assert.Equal(t, 1, store.loads)
	assert.Equal(t, types.RequestStatusPending, l.Requests()[0].Status)
	assert.Equal(t, []observed{{"In Progress", OutcomeRejected}}, observer.updates)
}

func TestUpdateStatusStoreError(t *testing.T) {
	store := newFakeRequestStore(3)
	store.updateErr = errors.New("deadlock detected")
	l := loadedList(t, store, types.RequestScopeAll)

	err := l.UpdateStatus(context.Background(), "req-2", types.RequestStatusRejected)

	var serr *types.StatusUpdateError
	require.True(t, errors.As(err, &serr))
	assert.ErrorIs(t, err, store.updateErr)
	assert.Equal(t, 1, store.loads)
	assert.Equal(t, types.RequestStatusPending, l.Requests()[1].Status)
}

func TestUpdateStatusRecoversFromPanic(t *testing.T) {
	store := newFakeRequestStore(1)
	store.updatePanic = true
	l := loadedList(t, store, types.RequestScopeAll)

	var err error
	require.NotPanics(t, func() {
		err = l.UpdateStatus(context.Background(), "req-1", types.RequestStatusCompleted)
	})

	var serr *types.StatusUpdateError
	assert.True(t, errors.As(err, &serr))
}

func TestUpdateStatusSuccessReloads(t *testing.T) {
	store := newFakeRequestStore(3)
	l := loadedList(t, store, types.RequestScopePending)
	l.SetPage(1)

	err := l.UpdateStatus(context.Background(), "req-3", types.RequestStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, 2, store.loads)
	assert.Equal(t, []string{"req-1", "req-2"}, pageIDs(l.Requests()))
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	store := newFakeRequestStore(1)
	store.requests[0].Status = types.RequestStatusRejected
	l := loadedList(t, store, types.RequestScopeAll)

	require.NoError(t, l.UpdateStatus(context.Background(), "req-1", types.RequestStatusPending))
	assert.Equal(t, types.RequestStatusPending, l.Requests()[0].Status)
}

func TestUpdateStatusCustomReload(t *testing.T) {
	store := newFakeRequestStore(1)
	reloadErr := errors.New("list endpoint down")
	var reloads int
	l := loadedList(t, store, types.RequestScopeAll, WithReload(func(context.Context) error {
		reloads++
		return reloadErr
	}))

	err := l.UpdateStatus(context.Background(), "req-1", types.RequestStatusInProgress)

	assert.ErrorIs(t, err, reloadErr)
	var serr *types.StatusUpdateError
	assert.False(t, errors.As(err, &serr))
	assert.Equal(t, 1, reloads)
}

func TestUpdateStatusInvalidStatus(t *testing.T) {
	store := newFakeRequestStore(1)
	l := loadedList(t, store, types.RequestScopeAll)

	err := l.UpdateStatus(context.Background(), "req-1", types.RequestStatus("Archived"))

	var serr *types.StatusUpdateError
	assert.True(t, errors.As(err, &serr))
	assert.Zero(t, store.updates)
}

func TestUpdateStatusBusyRow(t *testing.T) {
	store := newFakeRequestStore(2)
	locks := NewRowLocks()
	l := loadedList(t, store, types.RequestScopeAll, WithRowLocks(locks))

	require.True(t, locks.acquire("req-1"))

	err := l.UpdateStatus(context.Background(), "req-1", types.RequestStatusCompleted)
	assert.ErrorIs(t, err, types.ErrRowUpdateInFlight)
	assert.Zero(t, store.updates)

	// other rows are unaffected
	require.NoError(t, l.UpdateStatus(context.Background(), "req-2", types.RequestStatusCompleted))

	locks.release("req-1")
	require.NoError(t, l.UpdateStatus(context.Background(), "req-1", types.RequestStatusCompleted))
}

func TestRequestDetailNewLicense(t *testing.T) {
	req := &types.RtoAssistanceRequest{
		ID:                "req-1",
		ServiceType:       types.ServiceTypeNewLicense,
		FullName:          "Asha Rao",
		FathersName:       utils.StringPtr("Ravi Rao"),
		Address:           utils.StringPtr("12 Civil Lines"),
		AadharNumber:      utils.StringPtr("123412341234"),
		OldDlNumber:       utils.StringPtr("stale"),
		PassportPhotoURL:  utils.StringPtr("https://files.test/photo.png"),
		SignaturePhotoURL: utils.StringPtr("https://files.test/sign.png"),
		OldDlFileURL:      utils.StringPtr("https://files.test/stale.pdf"),
	}

	d := NewRequestDetail(req)

	items := map[string]string{}
	for _, item := range d.Items {
		items[item.Label] = item.Value
	}
	assert.Equal(t, "123412341234", items["Aadhaar Number"])
	assert.Equal(t, "Ravi Rao", items["Father's Name"])
	assert.NotContains(t, items, "Old DL Number")
	assert.NotContains(t, items, "Email")

	assert.Equal(t, []DocumentLink{
		{Label: "View Photo", URL: "https://files.test/photo.png"},
		{Label: "View Signature", URL: "https://files.test/sign.png"},
	}, d.Documents)
}

func TestRequestDetailRenewLicense(t *testing.T) {
	req := &types.RtoAssistanceRequest{
		ID:            "req-2",
		ServiceType:   types.ServiceTypeRenewLicense,
		FullName:      "Vikram Singh",
		OldDlNumber:   utils.StringPtr("RJ14 20110012345"),
		AadharNumber:  utils.StringPtr("123412341234"),
		AadharFileURL: utils.StringPtr("https://files.test/aadhaar.pdf"),
	}

	d := NewRequestDetail(req)

	labels := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "Old DL Number")
	assert.NotContains(t, labels, "Aadhaar Number")
	assert.Equal(t, []DocumentLink{{Label: "View Aadhaar", URL: "https://files.test/aadhaar.pdf"}}, d.Documents)
}

func TestRequestListDetails(t *testing.T) {
	l := loadedList(t, newFakeRequestStore(2), types.RequestScopeAll)

	d, err := l.Details("req-2")
	require.NoError(t, err)
	assert.Equal(t, "Applicant 2", d.Request.FullName)

	_, err = l.Details("req-9")
	assert.ErrorIs(t, err, types.ErrRequestNotFound)
}
