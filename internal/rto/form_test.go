package rto

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"rtoassist/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitterFunc func(ctx context.Context, c *Candidate) Result

func (f submitterFunc) Submit(ctx context.Context, c *Candidate) Result {
	return f(ctx, c)
}

func succeed(context.Context, *Candidate) Result {
	return Result{Success: true, RequestID: "req-1"}
}

func newTestForm(mode SuccessMode) *FormController {
	return NewFormController(NewValidator(0), mode, PaymentTarget{
		URL:   "/payment",
		Plan:  "RTO Assistance",
		Price: 299,
	})
}

func TestParseSuccessMode(t *testing.T) {
	mode, err := ParseSuccessMode("modal")
	require.NoError(t, err)
	assert.Equal(t, SuccessModeModal, mode)

	_, err = ParseSuccessMode("popup")
	assert.Error(t, err)
}

func TestPaymentTargetAddress(t *testing.T) {
	p := PaymentTarget{URL: "https://pay.example.com/checkout?ref=rto", Plan: "RTO Assistance", Price: 299}
	assert.Equal(t, "https://pay.example.com/checkout?plan=RTO+Assistance&price=299&ref=rto", p.Address())

	assert.Equal(t, "/payment?plan=Basic&price=10", PaymentTarget{Plan: "Basic", Price: 10}.Address())
}

func TestFormDistrictDisabledUntilStateSelected(t *testing.T) {
	f := newTestForm(SuccessModePage)

	assert.False(t, f.DistrictEnabled())
	assert.Empty(t, f.AvailableDistricts())

	f.SelectState("Uttar Pradesh")
	assert.True(t, f.DistrictEnabled())
	assert.Contains(t, f.AvailableDistricts(), "Prayagraj")
}

func TestFormSelectStateClearsForeignDistrict(t *testing.T) {
	f := newTestForm(SuccessModePage)

	f.SelectState("Uttar Pradesh")
	require.NoError(t, f.SetField("district", "Prayagraj"))

	f.SelectState("Rajasthan")
	assert.Equal(t, "", f.Values().District)
	assert.NotContains(t, f.AvailableDistricts(), "Prayagraj")
}

func TestFormSelectStateKeepsSharedDistrict(t *testing.T) {
	f := newTestForm(SuccessModePage)

	f.SelectState("Uttar Pradesh")
	require.NoError(t, f.SetField("district", "Pratapgarh"))

	require.NoError(t, f.SetField("state", "Rajasthan"))
	assert.Equal(t, "Pratapgarh", f.Values().District)
}

func TestFormFillAppliesStateLast(t *testing.T) {
	f := newTestForm(SuccessModePage)

	c := newLicenseCandidate()
	c.State = "Rajasthan"
	f.Fill(c)

	assert.Equal(t, "Rajasthan", f.Values().State)
	assert.Equal(t, "", f.Values().District)
}

func TestFormServiceTypeControlsSharedFields(t *testing.T) {
	f := newTestForm(SuccessModePage)
	assert.False(t, f.SharedFieldsVisible())

	f.SelectServiceType(types.ServiceTypeRenewLicense)
	assert.True(t, f.SharedFieldsVisible())
	assert.Equal(t, types.ServiceTypeRenewLicense, f.ServiceType())
}

func TestFormLiveErrorsFollowTouchedFields(t *testing.T) {
	f := newTestForm(SuccessModePage)

	require.NoError(t, f.SetField("contactNumber", "123"))

	errs := f.Errors().Map()
	assert.Equal(t, "Contact number must be exactly 10 digits.", errs["contactNumber"])
	assert.NotContains(t, errs, "fullName")

	require.NoError(t, f.SetField("contactNumber", "9876543210"))
	assert.NotContains(t, f.Errors().Map(), "contactNumber")
}

func TestFormSetFieldUnknown(t *testing.T) {
	f := newTestForm(SuccessModePage)
	assert.Error(t, f.SetField("nickname", "Ash"))
}

func TestFormAttachFile(t *testing.T) {
	f := newTestForm(SuccessModePage)
	f.SelectServiceType(types.ServiceTypeNewLicense)

	f.AttachFile(types.FieldPassportPhoto, NewFile("", "photo.png", "image/png", pngBytes))
	assert.NotNil(t, f.Values().File(types.FieldPassportPhoto))
	assert.False(t, f.Errors().Has(types.FieldPassportPhoto))

	f.AttachFile(types.FieldPassportPhoto, nil)
	assert.Nil(t, f.Values().File(types.FieldPassportPhoto))
	assert.Equal(t, "Passport size photo is required.", f.Errors().Map()[types.FieldPassportPhoto])
}

func TestFormSubmitInvalidDoesNotReachGateway(t *testing.T) {
	f := newTestForm(SuccessModePage)
	f.SelectServiceType(types.ServiceTypeNewLicense)

	var calls int32
	out := f.Submit(context.Background(), submitterFunc(func(ctx context.Context, c *Candidate) Result {
		atomic.AddInt32(&calls, 1)
		return Result{Success: true}
	}))

	assert.False(t, out.Success)
	assert.Equal(t, msgFixFields, out.Error)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.True(t, f.Errors().Has("fullName"))
	assert.True(t, f.Errors().Has(types.FieldSignaturePhoto))
	assert.False(t, f.Errors().Has("oldDlNumber"))
}

func TestFormSubmitPageModeRedirectsToPayment(t *testing.T) {
	f := newTestForm(SuccessModePage)
	f.Fill(newLicenseCandidate())

	out := f.Submit(context.Background(), submitterFunc(succeed))

	require.True(t, out.Success)
	assert.False(t, out.Reset)
	assert.Equal(t, "/payment?plan=RTO+Assistance&price=299", out.RedirectURL)
}

func TestFormSubmitModalModeResets(t *testing.T) {
	f := newTestForm(SuccessModeModal)
	f.Fill(newLicenseCandidate())

	out := f.Submit(context.Background(), submitterFunc(succeed))

	require.True(t, out.Success)
	assert.True(t, out.Reset)
	assert.Empty(t, out.RedirectURL)

	values := f.Values()
	assert.Equal(t, "", values.FullName)
	assert.Equal(t, types.ServiceType(""), values.ServiceType)
	assert.Empty(t, values.Files)
	assert.Empty(t, f.Errors())
}

func TestFormSubmitFailureKeepsValues(t *testing.T) {
	f := newTestForm(SuccessModePage)
	f.Fill(newLicenseCandidate())

	out := f.Submit(context.Background(), submitterFunc(func(context.Context, *Candidate) Result {
		return failure(msgPersistFail, errors.New("db down"))
	}))

	assert.False(t, out.Success)
	assert.Equal(t, msgPersistFail, f.LastError())
	assert.Equal(t, "Asha Rao", f.Values().FullName)
	assert.NotNil(t, f.Values().File(types.FieldPassportPhoto))
	assert.False(t, f.Submitting())
}

func TestFormSubmitterPanicReleasesForm(t *testing.T) {
	f := newTestForm(SuccessModePage)
	f.Fill(newLicenseCandidate())

	out := f.Submit(context.Background(), submitterFunc(func(context.Context, *Candidate) Result {
		panic("submitter exploded")
	}))

	assert.False(t, out.Success)
	assert.Equal(t, msgUnexpected, out.Error)
	assert.Error(t, out.Err)
	assert.False(t, f.Submitting())
	assert.Equal(t, msgUnexpected, f.LastError())

	again := f.Submit(context.Background(), submitterFunc(succeed))
	assert.True(t, again.Success)
}

func TestFormAllowsOneSubmissionInFlight(t *testing.T) {
	f := newTestForm(SuccessModePage)
	f.Fill(newLicenseCandidate())

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	blocking := submitterFunc(func(context.Context, *Candidate) Result {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return Result{Success: true}
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.Submit(context.Background(), blocking)
	}()

	<-started
	assert.True(t, f.Submitting())

	second := f.Submit(context.Background(), blocking)
	assert.False(t, second.Success)
	assert.ErrorIs(t, second.Err, types.ErrSubmissionInFlight)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, f.Submitting())
}

func TestFormResetAndPayload(t *testing.T) {
	f := newTestForm(SuccessModeModal)
	assert.Equal(t, SuccessModeModal, f.Mode())

	f.Fill(newLicenseCandidate())
	payload := f.Payload()
	assert.Equal(t, "Asha Rao", payload.FullName)
	assert.NotNil(t, payload.File(types.FieldSignaturePhoto))

	payload.FullName = "changed"
	assert.Equal(t, "Asha Rao", f.Values().FullName)

	f.Reset()
	assert.Equal(t, "", f.Values().FullName)
	assert.Empty(t, f.Errors())
}

func TestFormPayloadDropsOtherGroup(t *testing.T) {
	f := newTestForm(SuccessModePage)
	f.Fill(newLicenseCandidate())
	require.NoError(t, f.SetField("oldDlNumber", "UP70 2010001"))
	f.AttachFile(types.FieldOldDlFile, NewFile("", "old.pdf", "application/pdf", pdfBytes))

	payload := f.Payload()
	assert.Equal(t, "Ram Rao", payload.FathersName)
	assert.Empty(t, payload.OldDlNumber)
	assert.Nil(t, payload.File(types.FieldOldDlFile))
	assert.NotNil(t, payload.File(types.FieldPassportPhoto))

	values := f.Values()
	assert.Equal(t, "UP70 2010001", values.OldDlNumber)
	assert.NotNil(t, values.File(types.FieldOldDlFile))

	var submitted *Candidate
	out := f.Submit(context.Background(), submitterFunc(func(_ context.Context, c *Candidate) Result {
		submitted = c
		return Result{Success: true}
	}))
	require.True(t, out.Success)
	require.NotNil(t, submitted)
	assert.Empty(t, submitted.OldDlNumber)
	assert.Nil(t, submitted.File(types.FieldOldDlFile))
}
