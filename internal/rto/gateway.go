package rto

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"rtoassist/internal/utils"
	"rtoassist/pkg/types"

	"github.com/sirupsen/logrus"
)

// RequestCreator persists a new request and assigns its ID.
type RequestCreator interface {
	CreateRequest(ctx context.Context, req *types.RtoAssistanceRequest) error
}

// FileStorage stores uploaded documents and returns a stable URL per object.
type FileStorage interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Observer receives submission and status update outcomes.
type Observer interface {
	ObserveSubmission(serviceType types.ServiceType, outcome string)
	ObserveStatusUpdate(status types.RequestStatus, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(types.ServiceType, string)  {}
func (nopObserver) ObserveStatusUpdate(types.RequestStatus, string) {}

const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeUploadError = "upload_error"
	OutcomeStoreError  = "store_error"
	OutcomeRejected    = "rejected"
	OutcomeBusy        = "busy"
)

const (
	msgFixFields   = "Please fix the highlighted fields."
	msgPersistFail = "Could not save your application right now. Please try again."
	msgUnexpected  = "Something went wrong while submitting your application. Please try again."
)

// Result is the outcome of a submission. Error is safe to show to the
// applicant; Err carries the underlying cause for logging.
type Result struct {
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	FieldErrors types.ValidationErrors `json:"fieldErrors,omitempty"`
	RequestID   string                 `json:"requestId,omitempty"`
	Err         error                  `json:"-"`
}

func failure(msg string, err error) Result {
	return Result{Success: false, Error: msg, Err: err}
}

// Gateway validates, uploads and persists submitted applications.
type Gateway struct {
	logger    *logrus.Logger
	validator *Validator
	store     RequestCreator
	files     FileStorage
	observer  Observer
	timeout   time.Duration
	now       func() time.Time
}

type GatewayOption func(*Gateway)

// WithSubmitTimeout bounds a whole submission, uploads included.
func WithSubmitTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

func WithObserver(o Observer) GatewayOption {
	return func(g *Gateway) {
		if o != nil {
			g.observer = o
		}
	}
}

func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(logger *logrus.Logger, validator *Validator, store RequestCreator, files FileStorage, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		logger:    logger,
		validator: validator,
		store:     store,
		files:     files,
		observer:  nopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit never returns an error value: every failure, including a panic in
// a collaborator, resolves to a Result with Success false. Each call creates
// a new record.
func (g *Gateway) Submit(ctx context.Context, c *Candidate) (result Result) {
	serviceType := c.ServiceType
	defer func() {
		if p := recover(); p != nil {
			g.logger.WithField("panic", p).Error("rto submission panicked")
			result = failure(msgUnexpected, fmt.Errorf("panic: %v", p))
		}
		g.observer.ObserveSubmission(serviceType, outcomeOf(result))
	}()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	c.Normalize()
	serviceType = c.ServiceType

	if errs := g.validator.Validate(c); len(errs) > 0 {
		g.logger.WithField("field_errors", errs.Map()).Info("rejected rto submission with validation errors")
		return Result{
			Success:     false,
			Error:       fmt.Sprintf("%s %s", msgFixFields, errs[0].Reason),
			FieldErrors: errs,
			Err:         errs,
		}
	}

	req := c.Record()

	uploaded, err := g.uploadDocuments(ctx, c, req)
	if err != nil {
		g.rollback(ctx, uploaded)

		var uerr *types.UploadError
		if errors.As(err, &uerr) {
			g.logger.WithError(uerr.Err).WithField("field", uerr.Field).Error("failed to upload rto document")
			return failure(fmt.Sprintf("Could not upload %s. Please try again.", strings.ToLower(fieldLabels[uerr.Field])), err)
		}
		return failure(msgUnexpected, err)
	}

	now := g.now()
	req.Status = types.RequestStatusPending
	req.CreatedAt = now
	req.UpdatedAt = now

	if err := g.store.CreateRequest(ctx, req); err != nil {
		g.rollback(ctx, uploaded)
		g.logger.WithError(err).Error("failed to persist rto assistance request")
		return failure(msgPersistFail, &types.PersistenceError{Err: err})
	}

	g.logger.WithFields(logrus.Fields{
		"request_id":   req.ID,
		"service_type": req.ServiceType,
		"documents":    len(uploaded),
	}).Info("rto assistance request submitted")

	return Result{Success: true, RequestID: req.ID}
}

// uploadDocuments uploads the documents of the selected service type and
// records their URLs on req. The keys uploaded so far are returned even on
// failure so the caller can remove them.
func (g *Gateway) uploadDocuments(ctx context.Context, c *Candidate, req *types.RtoAssistanceRequest) ([]string, error) {
	batch := utils.NanoID()
	uploaded := make([]string, 0, 2)

	for _, field := range types.DocumentFields(c.ServiceType) {
		f := c.File(field)
		if f == nil {
			return uploaded, &types.UploadError{Field: field, Err: errors.New("file missing")}
		}

		if err := ctx.Err(); err != nil {
			return uploaded, &types.UploadError{Field: field, Err: err}
		}

		key := documentKey(batch, field, f)
		url, err := g.files.Upload(ctx, key, f.ContentType(), f.Data)
		if err != nil {
			return uploaded, &types.UploadError{Field: field, Err: err}
		}

		uploaded = append(uploaded, key)
		req.SetDocumentURL(field, url)
	}

	return uploaded, nil
}

func (g *Gateway) rollback(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	for _, key := range keys {
		if err := g.files.Delete(cleanupCtx, key); err != nil {
			g.logger.WithError(err).WithField("storage_key", key).Warn("failed to remove uploaded rto document after aborted submission")
		}
	}
}

func documentKey(batch, field string, f *File) string {
	ext := strings.ToLower(path.Ext(f.Name))
	if ext == "" {
		ext = extensionFor(f.ContentType())
	}
	return fmt.Sprintf("rto/%s/%s-%s%s", batch, field, utils.NanoIDSize(8), ext)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	return ""
}

func outcomeOf(r Result) string {
	if r.Success {
		return OutcomeSuccess
	}
	var (
		verrs types.ValidationErrors
		uerr  *types.UploadError
		perr  *types.PersistenceError
	)
	switch {
	case errors.As(r.Err, &verrs):
		return OutcomeInvalid
	case errors.As(r.Err, &uerr):
		return OutcomeUploadError
	case errors.As(r.Err, &perr):
		return OutcomeStoreError
	}
	return OutcomeRejected
}
