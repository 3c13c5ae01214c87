package rto

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"rtoassist/pkg/types"

	"github.com/go-playground/validator/v10"
)

const DefaultMaxUploadBytes = 5 << 20

var fieldLabels = map[string]string{
	"serviceType":             "Service type",
	"fullName":                "Full name",
	"email":                   "Email",
	"contactNumber":           "Contact number",
	"state":                   "State",
	"district":                "District",
	"pincode":                 "Pincode",
	"rtoOfficeName":           "RTO office name",
	"fathersName":             "Father's name",
	"address":                 "Address",
	"aadharNumber":            "Aadhaar number",
	"oldDlNumber":             "Old driving license number",
	types.FieldAadharFile:     "Aadhaar card",
	types.FieldPassportPhoto:  "Passport size photo",
	types.FieldSignaturePhoto: "Signature photo",
	types.FieldOldDlFile:      "Old DL copy",
}

var (
	imageTypes    = []string{"image/jpeg", "image/png"}
	documentTypes = []string{"application/pdf", "image/jpeg", "image/png"}
)

// acceptedTypes mirrors the accept attribute of each file input.
var acceptedTypes = map[string][]string{
	types.FieldPassportPhoto:  imageTypes,
	types.FieldSignaturePhoto: imageTypes,
	types.FieldAadharFile:     documentTypes,
	types.FieldOldDlFile:      documentTypes,
}

// Validator checks a Candidate against the base schema and the schema of
// its service type.
type Validator struct {
	validate       *validator.Validate
	maxUploadBytes int64
}

func NewValidator(maxUploadBytes int64) *Validator {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})

	_ = v.RegisterValidation("digits", validateDigits)
	_ = v.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return types.ServiceType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("allowed_state", func(fl validator.FieldLevel) bool {
		return IsAllowedState(fl.Field().String())
	})
	v.RegisterStructValidation(validateDistrict, baseFields{})

	return &Validator{validate: v, maxUploadBytes: maxUploadBytes}
}

// MaxUploadBytes is the per-file size limit.
func (v *Validator) MaxUploadBytes() int64 {
	return v.maxUploadBytes
}

// Validate returns every field error of c, in form order. An empty result
// means the candidate may be submitted.
func (v *Validator) Validate(c *Candidate) types.ValidationErrors {
	errs := make(types.ValidationErrors, 0)

	errs = append(errs, v.structErrors(c.base())...)

	group := c.group()
	if group == nil {
		return errs
	}
	errs = append(errs, v.structErrors(group)...)

	for _, field := range types.DocumentFields(c.ServiceType) {
		if reason := v.fileReason(field, c.File(field)); reason != "" {
			errs = append(errs, types.ValidationError{Field: field, Reason: reason})
		}
	}

	return errs
}

// FieldErrors is the live variant of Validate: only errors for fields in
// touched are reported.
func (v *Validator) FieldErrors(c *Candidate, touched map[string]bool) types.ValidationErrors {
	all := v.Validate(c)
	out := make(types.ValidationErrors, 0, len(all))
	for _, e := range all {
		if touched[e.Field] {
			out = append(out, e)
		}
	}
	return out
}

func (v *Validator) structErrors(s any) types.ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.ValidationErrors{{Field: "form", Reason: err.Error()}}
	}

	out := make(types.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, types.ValidationError{
			Field:  fe.Field(),
			Reason: reasonFor(fe),
		})
	}
	return out
}

func (v *Validator) fileReason(field string, f *File) string {
	label := fieldLabels[field]
	if f == nil {
		return fmt.Sprintf("%s is required.", label)
	}

	if f.Size() > v.maxUploadBytes {
		return fmt.Sprintf("%s must be %s or smaller.", label, FormatBytes(v.maxUploadBytes))
	}

	accepted := acceptedTypes[field]
	if !slices.Contains(accepted, f.ContentType()) {
		if len(accepted) == len(imageTypes) {
			return fmt.Sprintf("%s must be a JPEG or PNG image.", label)
		}
		return fmt.Sprintf("%s must be a PDF, JPEG or PNG file.", label)
	}

	return ""
}

func reasonFor(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "digits":
		return fmt.Sprintf("%s must be exactly %s digits.", label, fe.Param())
	case "email":
		return "Enter a valid email address."
	case "service_type":
		return "Select New License or Renew License."
	case "allowed_state":
		return "Select a valid state."
	case "district_in_state":
		return "Select a district from the chosen state."
	}

	return fmt.Sprintf("%s is invalid.", label)
}

// validateDigits implements digits=N: exactly N ASCII digits.
func validateDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return IsDigits(fl.Field().String(), n)
}

func IsDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validateDistrict(sl validator.StructLevel) {
	b := sl.Current().Interface().(baseFields)
	if b.District == "" || !IsAllowedState(b.State) {
		return
	}
	if !DistrictInState(b.State, b.District) {
		sl.ReportError(b.District, "district", "District", "district_in_state", b.State)
	}
}

// FormatBytes renders an upload limit in the largest whole unit.
func FormatBytes(n int64) string {
	const mib = 1 << 20
	if n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	if n >= 1024 {
		return fmt.Sprintf("%d KB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}
