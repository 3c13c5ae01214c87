package rto

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"rtoassist/internal/utils"
	"rtoassist/pkg/types"

	"github.com/sirupsen/logrus"
)

// PageSize is the number of requests shown per dashboard page.
const PageSize = 5

// RequestStore is the subset of the request store the dashboard needs.
type RequestStore interface {
	Requests(ctx context.Context, scope types.RequestScope) ([]*types.RtoAssistanceRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status types.RequestStatus) (bool, error)
}

// RowLocks tracks requests with an outstanding status update. One RowLocks
// may be shared by every RequestList of a process.
type RowLocks struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewRowLocks() *RowLocks {
	return &RowLocks{busy: make(map[string]struct{})}
}

func (l *RowLocks) acquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[id]; ok {
		return false
	}
	l.busy[id] = struct{}{}
	return true
}

func (l *RowLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.busy, id)
}

// RequestList is the dashboard's view of one scope of requests. The list is
// only ever replaced wholesale, never merged.
type RequestList struct {
	logger   *logrus.Logger
	store    RequestStore
	scope    types.RequestScope
	locks    *RowLocks
	observer Observer
	reload   func(ctx context.Context) error

	mu       sync.RWMutex
	requests []*types.RtoAssistanceRequest
	page     int
}

type ListOption func(*RequestList)

func WithRowLocks(locks *RowLocks) ListOption {
	return func(l *RequestList) {
		if locks != nil {
			l.locks = locks
		}
	}
}

// WithReload sets the callback run after a successful status update. The
// default reloads the list from the store.
func WithReload(fn func(ctx context.Context) error) ListOption {
	return func(l *RequestList) { l.reload = fn }
}

func WithListObserver(o Observer) ListOption {
	return func(l *RequestList) {
		if o != nil {
			l.observer = o
		}
	}
}

func NewRequestList(logger *logrus.Logger, store RequestStore, scope types.RequestScope, opts ...ListOption) *RequestList {
	l := &RequestList{
		logger:   logger,
		store:    store,
		scope:    scope,
		locks:    NewRowLocks(),
		observer: nopObserver{},
		requests: []*types.RtoAssistanceRequest{},
		page:     1,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.reload == nil {
		l.reload = l.Load
	}
	return l
}

func (l *RequestList) Scope() types.RequestScope {
	return l.scope
}

// Load fetches the scope from the store and replaces the list.
func (l *RequestList) Load(ctx context.Context) error {
	requests, err := l.store.Requests(ctx, l.scope)
	if err != nil {
		return fmt.Errorf("load %s requests: %w", l.scope, err)
	}
	l.SetRequests(requests)
	return nil
}

// SetRequests replaces the list and returns to the first page.
func (l *RequestList) SetRequests(requests []*types.RtoAssistanceRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if requests == nil {
		requests = []*types.RtoAssistanceRequest{}
	}
	l.requests = requests
	l.page = 1
}

func (l *RequestList) Requests() []*types.RtoAssistanceRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.requests)
}

func (l *RequestList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.requests)
}

func (l *RequestList) TotalPages() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalPages()
}

func (l *RequestList) totalPages() int {
	return (len(l.requests) + PageSize - 1) / PageSize
}

func (l *RequestList) CurrentPage() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.page
}

// SetPage moves to page n, clamped to the available pages.
func (l *RequestList) SetPage(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = max(1, min(n, l.totalPages()))
}

func (l *RequestList) Next() {
	l.SetPage(l.CurrentPage() + 1)
}

func (l *RequestList) Previous() {
	l.SetPage(l.CurrentPage() - 1)
}

func (l *RequestList) HasPrevious() bool {
	return l.CurrentPage() > 1
}

func (l *RequestList) HasNext() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.page < l.totalPages()
}

// Page returns the requests on the current page.
func (l *RequestList) Page() []*types.RtoAssistanceRequest {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := (l.page - 1) * PageSize
	if start >= len(l.requests) {
		return []*types.RtoAssistanceRequest{}
	}
	end := min(start+PageSize, len(l.requests))
	return slices.Clone(l.requests[start:end])
}

// UpdateStatus asks the store to set the status of request id. The local
// list is never changed optimistically: on success the reload callback runs,
// on failure a *types.StatusUpdateError is returned and nothing changes.
func (l *RequestList) UpdateStatus(ctx context.Context, id string, status types.RequestStatus) error {
	if !status.Valid() {
		l.observer.ObserveStatusUpdate(status, OutcomeInvalid)
		return &types.StatusUpdateError{RequestID: id, Status: status, Err: fmt.Errorf("unknown status %q", status)}
	}

	if !l.locks.acquire(id) {
		l.observer.ObserveStatusUpdate(status, OutcomeBusy)
		return &types.StatusUpdateError{RequestID: id, Status: status, Err: types.ErrRowUpdateInFlight}
	}

	ok, err := l.updateStatus(ctx, id, status)
	l.locks.release(id)

	entry := l.logger.WithFields(logrus.Fields{"request_id": id, "status": status})
	if err != nil {
		entry.WithError(err).Error("failed to update rto request status")
		l.observer.ObserveStatusUpdate(status, OutcomeStoreError)
		return &types.StatusUpdateError{RequestID: id, Status: status, Err: err}
	}
	if !ok {
		entry.Warn("store rejected rto request status update")
		l.observer.ObserveStatusUpdate(status, OutcomeRejected)
		return &types.StatusUpdateError{RequestID: id, Status: status}
	}

	entry.Info("rto request status updated")
	l.observer.ObserveStatusUpdate(status, OutcomeSuccess)

	return utils.ErrorWrapOrNil(l.reload(ctx), "reload requests after status update")
}

func (l *RequestList) updateStatus(ctx context.Context, id string, status types.RequestStatus) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ok, err = false, fmt.Errorf("panic: %v", p)
		}
	}()
	return l.store.UpdateRequestStatus(ctx, id, status)
}

// Details returns the read-only detail view of a request in the list.
func (l *RequestList) Details(id string) (*RequestDetail, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, req := range l.requests {
		if req.ID == id {
			return NewRequestDetail(req), nil
		}
	}
	return nil, types.ErrRequestNotFound
}

type DetailItem struct {
	Label string
	Value string
}

type DocumentLink struct {
	Label string
	URL   string
}

// RequestDetail is the full read-only view of a request. Conditional items
// follow the request's own service type.
type RequestDetail struct {
	Request   types.RtoAssistanceRequest
	Items     []DetailItem
	Documents []DocumentLink
}

func NewRequestDetail(req *types.RtoAssistanceRequest) *RequestDetail {
	d := &RequestDetail{Request: *req}

	d.add("Full Name", req.FullName)
	d.add("Email", utils.PtrString(req.Email))
	d.add("Contact Number", req.ContactNumber)
	d.add("State", req.State)
	d.add("District", req.District)
	d.add("Pincode", req.Pincode)
	d.add("RTO Office", req.RtoOfficeName)

	switch req.ServiceType {
	case types.ServiceTypeNewLicense:
		d.add("Father's Name", utils.PtrString(req.FathersName))
		d.add("Full Address", utils.PtrString(req.Address))
		d.add("Aadhaar Number", utils.PtrString(req.AadharNumber))
	case types.ServiceTypeRenewLicense:
		d.add("Old DL Number", utils.PtrString(req.OldDlNumber))
	}

	links := map[string]struct {
		label string
		url   *string
	}{
		types.FieldAadharFile:     {"View Aadhaar", req.AadharFileURL},
		types.FieldPassportPhoto:  {"View Photo", req.PassportPhotoURL},
		types.FieldSignaturePhoto: {"View Signature", req.SignaturePhotoURL},
		types.FieldOldDlFile:      {"View Old DL", req.OldDlFileURL},
	}
	for _, field := range types.DocumentFields(req.ServiceType) {
		link := links[field]
		if u := utils.PtrString(link.url); u != "" {
			d.Documents = append(d.Documents, DocumentLink{Label: link.label, URL: u})
		}
	}

	return d
}

func (d *RequestDetail) add(label, value string) {
	if value == "" {
		return
	}
	d.Items = append(d.Items, DetailItem{Label: label, Value: value})
}
