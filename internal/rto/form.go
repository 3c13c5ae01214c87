package rto

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"sync"

	"rtoassist/pkg/types"
)

// SuccessMode decides what the form does after a successful submission.
type SuccessMode string

const (
	// SuccessModePage hands off to the payment step.
	SuccessModePage SuccessMode = "page"
	// SuccessModeModal clears the form so it can be reused in place.
	SuccessModeModal SuccessMode = "modal"
)

func ParseSuccessMode(s string) (SuccessMode, error) {
	switch SuccessMode(s) {
	case SuccessModePage, SuccessModeModal:
		return SuccessMode(s), nil
	}
	return "", fmt.Errorf("unknown form mode %q", s)
}

// PaymentTarget is the payment step the page mode redirects to.
type PaymentTarget struct {
	URL   string
	Plan  string
	Price int
}

// Address returns the payment URL carrying plan and price as query
// parameters. Existing query parameters on URL are kept.
func (p PaymentTarget) Address() string {
	u, err := url.Parse(p.URL)
	if err != nil || p.URL == "" {
		u = &url.URL{Path: "/payment"}
	}
	q := u.Query()
	q.Set("plan", p.Plan)
	q.Set("price", strconv.Itoa(p.Price))
	u.RawQuery = q.Encode()
	return u.String()
}

// Submitter is the submission entry point the form hands its payload to.
type Submitter interface {
	Submit(ctx context.Context, c *Candidate) Result
}

// SubmitOutcome is what the presentation layer acts on after Submit.
type SubmitOutcome struct {
	Result
	// RedirectURL is set in page mode after a successful submission.
	RedirectURL string
	// Reset is true in modal mode after a successful submission.
	Reset bool
}

// FormController holds the in-progress application and its derived view
// state.
type FormController struct {
	mu sync.Mutex

	validator *Validator
	mode      SuccessMode
	payment   PaymentTarget

	values    Candidate
	touched   map[string]bool
	errors    types.ValidationErrors
	inFlight  bool
	lastError string
}

func NewFormController(validator *Validator, mode SuccessMode, payment PaymentTarget) *FormController {
	f := &FormController{
		validator: validator,
		mode:      mode,
		payment:   payment,
	}
	f.reset()
	return f
}

func (f *FormController) reset() {
	f.values = Candidate{Files: make(map[string]*File)}
	f.touched = make(map[string]bool)
	f.errors = nil
	f.lastError = ""
}

// Reset clears every value, error and attached file.
func (f *FormController) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *FormController) Mode() SuccessMode {
	return f.mode
}

// Fill loads a posted form in one step. State is applied last so a district
// left over from a previous state is cleared exactly as SelectState would.
// Every non-empty value counts as touched.
func (f *FormController) Fill(c *Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c.Normalize()
	state := c.State

	src := textFields(c)
	f.values.ServiceType = c.ServiceType
	for name, p := range textFields(&f.values) {
		if name == "state" {
			continue
		}
		*p = *src[name]
	}
	for field, file := range c.Files {
		if file != nil && len(file.Data) > 0 {
			file.Field = field
			f.values.Files[field] = file
		}
	}

	if c.ServiceType != "" {
		f.touched["serviceType"] = true
	}
	for name, p := range src {
		if *p != "" {
			f.touched[name] = true
		}
	}
	for field := range f.values.Files {
		f.touched[field] = true
	}

	f.selectState(state)
	f.revalidate()
}

// SelectServiceType switches the conditional field group. Values already
// entered are kept; fields of the other group are ignored from now on.
func (f *FormController) SelectServiceType(t types.ServiceType) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values.ServiceType = t
	f.touched["serviceType"] = true
	f.revalidate()
}

func (f *FormController) ServiceType() types.ServiceType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.ServiceType
}

// SharedFieldsVisible is true once a service type has been chosen.
func (f *FormController) SharedFieldsVisible() bool {
	return f.ServiceType().Valid()
}

// SelectState sets the state and clears the district when it does not
// belong to the new state.
func (f *FormController) SelectState(state string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selectState(state)
	f.touched["state"] = true
	f.revalidate()
}

func (f *FormController) selectState(state string) {
	f.values.State = state
	if f.values.District != "" && !DistrictInState(state, f.values.District) {
		f.values.District = ""
	}
}

// AvailableDistricts is derived from the selected state on every call.
func (f *FormController) AvailableDistricts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return DistrictsFor(f.values.State)
}

// DistrictEnabled is false while no state is selected or the state has no
// districts.
func (f *FormController) DistrictEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.State != "" && len(DistrictsFor(f.values.State)) > 0
}

// SetField updates a text field by its form name and re-runs live
// validation.
func (f *FormController) SetField(name, value string) error {
	switch name {
	case "serviceType":
		f.SelectServiceType(types.ServiceType(value))
		return nil
	case "state":
		f.SelectState(value)
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := textFields(&f.values)[name]
	if !ok {
		return fmt.Errorf("unknown form field %q", name)
	}

	*p = value
	f.touched[name] = true
	f.revalidate()
	return nil
}

// AttachFile sets the document for file.Field; a nil or empty payload
// removes it.
func (f *FormController) AttachFile(field string, file *File) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if file == nil || len(file.Data) == 0 {
		delete(f.values.Files, field)
	} else {
		file.Field = field
		f.values.Files[field] = file
	}
	f.touched[field] = true
	f.revalidate()
}

// Values returns a copy of the current input.
func (f *FormController) Values() Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := f.values
	v.Files = maps.Clone(f.values.Files)
	return v
}

// Errors are the live field errors for touched fields.
func (f *FormController) Errors() types.ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(types.ValidationErrors(nil), f.errors...)
}

// LastError is the message of the most recent failed submission.
func (f *FormController) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

// Submitting reports whether a submission is outstanding; the submit
// control is disabled while it is.
func (f *FormController) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

func (f *FormController) revalidate() {
	f.errors = f.validator.FieldErrors(&f.values, f.touched)
}

// Payload assembles the transfer payload handed to the submission gateway:
// shared values plus the selected service type's values and documents.
func (f *FormController) Payload() *Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := f.values.Selected()
	return &v
}

// Submit validates every field, then hands the payload to s. Only one
// submission may be outstanding per form; a concurrent call fails with
// ErrSubmissionInFlight without reaching s.
func (f *FormController) Submit(ctx context.Context, s Submitter) SubmitOutcome {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return SubmitOutcome{Result: failure(types.ErrSubmissionInFlight.Error(), types.ErrSubmissionInFlight)}
	}

	for _, name := range allFieldNames() {
		f.touched[name] = true
	}
	f.revalidate()
	if len(f.errors) > 0 {
		errs := append(types.ValidationErrors(nil), f.errors...)
		f.lastError = msgFixFields
		f.mu.Unlock()
		return SubmitOutcome{Result: Result{Error: msgFixFields, FieldErrors: errs, Err: errs}}
	}

	f.inFlight = true
	payload := f.values.Selected()
	f.mu.Unlock()

	result := dispatch(ctx, s, &payload)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false

	if !result.Success {
		f.lastError = result.Error
		if len(result.FieldErrors) > 0 {
			f.errors = append(types.ValidationErrors(nil), result.FieldErrors...)
		}
		return SubmitOutcome{Result: result}
	}

	out := SubmitOutcome{Result: result}
	switch f.mode {
	case SuccessModeModal:
		f.reset()
		out.Reset = true
	default:
		out.RedirectURL = f.payment.Address()
	}
	return out
}

// dispatch converts a panicking submitter into a failed result so the form
// is never left in flight.
func dispatch(ctx context.Context, s Submitter, c *Candidate) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			result = failure(msgUnexpected, fmt.Errorf("panic: %v", p))
		}
	}()
	return s.Submit(ctx, c)
}

func textFields(c *Candidate) map[string]*string {
	return map[string]*string{
		"fullName":      &c.FullName,
		"email":         &c.Email,
		"contactNumber": &c.ContactNumber,
		"state":         &c.State,
		"district":      &c.District,
		"pincode":       &c.Pincode,
		"rtoOfficeName": &c.RtoOfficeName,
		"fathersName":   &c.FathersName,
		"address":       &c.Address,
		"aadharNumber":  &c.AadharNumber,
		"oldDlNumber":   &c.OldDlNumber,
	}
}

func allFieldNames() []string {
	names := make([]string, 0, len(fieldLabels))
	for name := range fieldLabels {
		names = append(names, name)
	}
	return names
}
