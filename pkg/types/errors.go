package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestNotFound    = errors.New("rto assistance request not found")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrRowUpdateInFlight  = errors.New("a status update for this request is already in progress")
)

// ValidationError describes a single missing or malformed field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Map indexes the first reason per field, the shape templates render inline.
func (v ValidationErrors) Map() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Reason
		}
	}
	return out
}

// Has reports whether any error names field.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

type UploadError struct {
	Field string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Field, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist request: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type StatusUpdateError struct {
	RequestID string
	Status    RequestStatus
	Err       error
}

func (e *StatusUpdateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("update request %s to %q: store rejected update", e.RequestID, e.Status)
	}
	return fmt.Sprintf("update request %s to %q: %v", e.RequestID, e.Status, e.Err)
}

func (e *StatusUpdateError) Unwrap() error { return e.Err }
