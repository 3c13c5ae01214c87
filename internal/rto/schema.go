package rto

import (
	"net/http"
	"strings"

	"rtoassist/internal/utils"
	"rtoassist/pkg/types"
)

// Candidate is the transfer payload of the application form: every field
// value plus the raw document payloads keyed by field name.
type Candidate struct {
	ServiceType   types.ServiceType `form:"serviceType"`
	FullName      string            `form:"fullName"`
	Email         string            `form:"email"`
	ContactNumber string            `form:"contactNumber"`
	State         string            `form:"state"`
	District      string            `form:"district"`
	Pincode       string            `form:"pincode"`
	RtoOfficeName string            `form:"rtoOfficeName"`

	FathersName  string `form:"fathersName"`
	Address      string `form:"address"`
	AadharNumber string `form:"aadharNumber"`

	OldDlNumber string `form:"oldDlNumber"`

	Files map[string]*File `form:"-"`
}

// File is a document attached to a form field.
type File struct {
	Field    string
	Name     string
	Data     []byte
	sniffed  string
	declared string
}

func NewFile(field, name, declaredContentType string, data []byte) *File {
	return &File{Field: field, Name: name, Data: data, declared: declaredContentType}
}

func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// ContentType is sniffed from the payload; the declared type from the
// browser is only used when sniffing is inconclusive.
func (f *File) ContentType() string {
	if f.sniffed == "" {
		f.sniffed = http.DetectContentType(f.Data)
		if f.sniffed == "application/octet-stream" && f.declared != "" {
			f.sniffed = f.declared
		}
	}
	return f.sniffed
}

// File returns the attached document for field, nil when absent or empty.
func (c Candidate) File(field string) *File {
	if c.Files == nil {
		return nil
	}
	f := c.Files[field]
	if f == nil || len(f.Data) == 0 {
		return nil
	}
	return f
}

func (c *Candidate) Attach(f *File) {
	if c.Files == nil {
		c.Files = make(map[string]*File)
	}
	c.Files[f.Field] = f
}

// Normalize trims surrounding whitespace from every text value.
func (c *Candidate) Normalize() {
	c.ServiceType = types.ServiceType(strings.TrimSpace(string(c.ServiceType)))
	for _, p := range []*string{
		&c.FullName, &c.Email, &c.ContactNumber, &c.State, &c.District, &c.Pincode,
		&c.RtoOfficeName, &c.FathersName, &c.Address, &c.AadharNumber, &c.OldDlNumber,
	} {
		*p = strings.TrimSpace(*p)
	}
}

// Field group schemas. The group applied to a candidate is selected by its
// service type; the other group's values are never read.

type baseFields struct {
	ServiceType   string `json:"serviceType" validate:"required,service_type"`
	FullName      string `json:"fullName" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	ContactNumber string `json:"contactNumber" validate:"required,digits=10"`
	State         string `json:"state" validate:"required,allowed_state"`
	District      string `json:"district" validate:"required"`
	Pincode       string `json:"pincode" validate:"required,digits=6"`
	RtoOfficeName string `json:"rtoOfficeName" validate:"required"`
}

type newLicenseFields struct {
	FathersName  string `json:"fathersName" validate:"required"`
	Address      string `json:"address" validate:"required"`
	AadharNumber string `json:"aadharNumber" validate:"required,digits=12"`
}

type renewLicenseFields struct {
	OldDlNumber string `json:"oldDlNumber" validate:"required"`
}

func (c *Candidate) base() baseFields {
	return baseFields{
		ServiceType:   string(c.ServiceType),
		FullName:      c.FullName,
		Email:         c.Email,
		ContactNumber: c.ContactNumber,
		State:         c.State,
		District:      c.District,
		Pincode:       c.Pincode,
		RtoOfficeName: c.RtoOfficeName,
	}
}

// group returns the schema for the candidate's service type, nil when no
// valid service type is selected.
func (c *Candidate) group() any {
	switch c.ServiceType {
	case types.ServiceTypeNewLicense:
		return newLicenseFields{
			FathersName:  c.FathersName,
			Address:      c.Address,
			AadharNumber: c.AadharNumber,
		}
	case types.ServiceTypeRenewLicense:
		return renewLicenseFields{OldDlNumber: c.OldDlNumber}
	}
	return nil
}

// Record builds the request to persist. Only the selected service type's
// fields are copied; document URLs are filled in after upload.
func (c *Candidate) Record() *types.RtoAssistanceRequest {
	req := &types.RtoAssistanceRequest{
		ServiceType:   c.ServiceType,
		Status:        types.RequestStatusPending,
		FullName:      c.FullName,
		Email:         utils.NullableString(c.Email),
		ContactNumber: c.ContactNumber,
		State:         c.State,
		District:      c.District,
		Pincode:       c.Pincode,
		RtoOfficeName: c.RtoOfficeName,
	}

	switch c.ServiceType {
	case types.ServiceTypeNewLicense:
		req.FathersName = utils.StringPtr(c.FathersName)
		req.Address = utils.StringPtr(c.Address)
		req.AadharNumber = utils.StringPtr(c.AadharNumber)
	case types.ServiceTypeRenewLicense:
		req.OldDlNumber = utils.StringPtr(c.OldDlNumber)
	}

	return req
}

// Relevant reports whether field belongs to the shared group or to the
// candidate's selected service type.
func (c Candidate) Relevant(field string) bool {
	switch field {
	case "fathersName", "address", "aadharNumber", types.FieldPassportPhoto, types.FieldSignaturePhoto:
		return c.ServiceType == types.ServiceTypeNewLicense
	case "oldDlNumber", types.FieldAadharFile, types.FieldOldDlFile:
		return c.ServiceType == types.ServiceTypeRenewLicense
	}
	return true
}

// Selected keeps the non-empty values and documents of the shared group and
// the selected service type; the other group's input is dropped.
func (c Candidate) Selected() Candidate {
	out := c
	out.Files = make(map[string]*File, len(c.Files))
	for field := range c.Files {
		if f := c.File(field); f != nil && c.Relevant(field) {
			out.Files[field] = f
		}
	}
	if c.ServiceType != types.ServiceTypeNewLicense {
		out.FathersName, out.Address, out.AadharNumber = "", "", ""
	}
	if c.ServiceType != types.ServiceTypeRenewLicense {
		out.OldDlNumber = ""
	}
	return out
}
