package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"rtoassist/internal/metrics"
	"rtoassist/internal/rto"
	"rtoassist/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// RequestStore is everything the HTTP layer needs from the request store.
type RequestStore interface {
	rto.RequestCreator
	rto.RequestStore
	Request(ctx context.Context, id string) (*types.RtoAssistanceRequest, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template
	cookie    *securecookie.SecureCookie
	metrics   *metrics.Recorder

	store     RequestStore
	validator *rto.Validator
	gateway   *rto.Gateway
	rowLocks  *rto.RowLocks
	formMode  rto.SuccessMode
	payment   rto.PaymentTarget

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	store RequestStore,
	files rto.FileStorage,
	recorder *metrics.Recorder,
) (*Service, error) {
	mux := flow.New()

	mode, err := rto.ParseSuccessMode(config.FormMode)
	if err != nil {
		return nil, err
	}

	cookie, err := newSecureCookie(config, logger)
	if err != nil {
		return nil, err
	}

	if recorder == nil {
		recorder = metrics.New()
	}

	validator := rto.NewValidator(config.MaxUploadBytes)

	s := &Service{
		logger:    logger,
		config:    config,
		cookie:    cookie,
		metrics:   recorder,
		store:     store,
		validator: validator,
		gateway: rto.NewGateway(logger, validator, store, files,
			rto.WithSubmitTimeout(time.Duration(config.SubmitTimeoutSec)*time.Second),
			rto.WithObserver(recorder),
		),
		rowLocks: rto.NewRowLocks(),
		formMode: mode,
		payment: rto.PaymentTarget{
			URL:   config.PaymentURL,
			Plan:  config.PaymentPlan,
			Price: config.PaymentPrice,
		},
		handler: mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP exposes the router for in-process use.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.RecoverMiddleware)
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)

	r.HandleFunc("/rto-services/apply", s.handleGetApply, http.MethodGet)
	r.HandleFunc("/rto-services/apply", s.handlePostApply, http.MethodPost)
	r.HandleFunc("/rto-services/apply/validate", s.handlePostApplyValidate, http.MethodPost)
	r.HandleFunc("/rto-services/districts", s.handleGetDistricts, http.MethodGet)

	r.HandleFunc("/payment", s.handleGetPayment, http.MethodGet)

	// Dashboard access control is left to the deployment (reverse proxy or
	// network policy).
	r.HandleFunc("/dashboard/rto", s.handleGetDashboard, http.MethodGet)
	r.HandleFunc("/dashboard/rto/:id", s.handleGetRequestDetail, http.MethodGet)
	r.HandleFunc("/dashboard/rto/:id/status", s.handlePostRequestStatus, http.MethodPost)

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func newSecureCookie(config *types.Config, logger *logrus.Logger) (*securecookie.SecureCookie, error) {
	if config.CookieHashKey == "" {
		logger.Warn("COOKIE_HASH_KEY not set, flash cookies will not survive a restart")
		return securecookie.New(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32)), nil
	}

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_HASH_KEY: %w", err)
	}

	var blockKey []byte
	if config.CookieBlockKey != "" {
		blockKey, err = base64.StdEncoding.DecodeString(config.CookieBlockKey)
		if err != nil {
			return nil, fmt.Errorf("decode COOKIE_BLOCK_KEY: %w", err)
		}
	}

	return securecookie.New(hashKey, blockKey), nil
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"statusClass": statusClass,
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict requires key value pairs")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func statusClass(status types.RequestStatus) string {
	switch status {
	case types.RequestStatusPending:
		return "badge badge-pending"
	case types.RequestStatusInProgress:
		return "badge badge-progress"
	case types.RequestStatusCompleted:
		return "badge badge-completed"
	case types.RequestStatusRejected:
		return "badge badge-rejected"
	default:
		return "badge"
	}
}
