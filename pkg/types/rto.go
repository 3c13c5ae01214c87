package types

import (
	"time"
)

type ServiceType string

const (
	ServiceTypeNewLicense   ServiceType = "New License"
	ServiceTypeRenewLicense ServiceType = "Renew License"
)

// ServiceTypeOptions is the display order of the service type selector.
var ServiceTypeOptions = []ServiceType{
	ServiceTypeNewLicense,
	ServiceTypeRenewLicense,
}

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeNewLicense, ServiceTypeRenewLicense:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusCompleted  RequestStatus = "Completed"
	RequestStatusRejected   RequestStatus = "Rejected"
)

// RequestStatusOptions lists every status an operator may pick. Any status
// can be set from any other status.
var RequestStatusOptions = []RequestStatus{
	RequestStatusPending,
	RequestStatusInProgress,
	RequestStatusCompleted,
	RequestStatusRejected,
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusCompleted, RequestStatusRejected:
		return true
	}
	return false
}

// RequestScope selects the subset of requests a dashboard list loads.
type RequestScope string

const (
	RequestScopeAll        RequestScope = "all"
	RequestScopePending    RequestScope = "pending"
	RequestScopeInProgress RequestScope = "in-progress"
	RequestScopeCompleted  RequestScope = "completed"
	RequestScopeRejected   RequestScope = "rejected"
)

var RequestScopeOptions = []RequestScope{
	RequestScopePending,
	RequestScopeInProgress,
	RequestScopeCompleted,
	RequestScopeRejected,
	RequestScopeAll,
}

// Status returns the status a scope filters on. ok is false for the "all"
// scope and for unknown scopes.
func (s RequestScope) Status() (RequestStatus, bool) {
	switch s {
	case RequestScopePending:
		return RequestStatusPending, true
	case RequestScopeInProgress:
		return RequestStatusInProgress, true
	case RequestScopeCompleted:
		return RequestStatusCompleted, true
	case RequestScopeRejected:
		return RequestStatusRejected, true
	}
	return "", false
}

func (s RequestScope) Valid() bool {
	if s == RequestScopeAll {
		return true
	}
	_, ok := s.Status()
	return ok
}

// RtoAssistanceRequest is a submitted licence assistance request.
type RtoAssistanceRequest struct {
	ID          string        `db:"id" json:"id"`
	ServiceType ServiceType   `db:"service_type" json:"serviceType"`
	Status      RequestStatus `db:"status" json:"status"`

	FullName      string  `db:"full_name" json:"fullName"`
	Email         *string `db:"email" json:"email,omitempty"`
	ContactNumber string  `db:"contact_number" json:"contactNumber"`
	State         string  `db:"state" json:"state"`
	District      string  `db:"district" json:"district"`
	Pincode       string  `db:"pincode" json:"pincode"`
	RtoOfficeName string  `db:"rto_office_name" json:"rtoOfficeName"`

	// New License
	FathersName  *string `db:"fathers_name" json:"fathersName,omitempty"`
	Address      *string `db:"address" json:"address,omitempty"`
	AadharNumber *string `db:"aadhar_number" json:"aadharNumber,omitempty"`

	// Renew License
	OldDlNumber *string `db:"old_dl_number" json:"oldDlNumber,omitempty"`

	AadharFileURL     *string `db:"aadhar_file_url" json:"aadharFileUrl,omitempty"`
	PassportPhotoURL  *string `db:"passport_photo_url" json:"passportPhotoUrl,omitempty"`
	SignaturePhotoURL *string `db:"signature_photo_url" json:"signaturePhotoUrl,omitempty"`
	OldDlFileURL      *string `db:"old_dl_file_url" json:"oldDlFileUrl,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Document field names as they appear in the form payload.
const (
	FieldAadharFile     = "aadharFile"
	FieldPassportPhoto  = "passportPhoto"
	FieldSignaturePhoto = "signaturePhoto"
	FieldOldDlFile      = "oldDlFile"
)

// DocumentFields returns the file fields a service type requires, in form
// order.
func DocumentFields(t ServiceType) []string {
	switch t {
	case ServiceTypeNewLicense:
		return []string{FieldPassportPhoto, FieldSignaturePhoto}
	case ServiceTypeRenewLicense:
		return []string{FieldAadharFile, FieldOldDlFile}
	}
	return nil
}

// SetDocumentURL stores the uploaded URL of a document field on the request.
func (r *RtoAssistanceRequest) SetDocumentURL(field, url string) {
	switch field {
	case FieldAadharFile:
		r.AadharFileURL = &url
	case FieldPassportPhoto:
		r.PassportPhotoURL = &url
	case FieldSignaturePhoto:
		r.SignaturePhotoURL = &url
	case FieldOldDlFile:
		r.OldDlFileURL = &url
	}
}
