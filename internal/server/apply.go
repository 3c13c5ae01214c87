package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rtoassist/internal/rto"
	"rtoassist/pkg/types"
)

// ApplyPageData renders the application form from a FormController.
type ApplyPageData struct {
	types.BasePageData
	Values          rto.Candidate
	FieldErrors     map[string]string
	ServiceTypes    []types.ServiceType
	States          []string
	Districts       []string
	DistrictEnabled bool
	ShowShared      bool
	IsNewLicense    bool
	IsRenewLicense  bool
	Plan            string
	Price           int
	MaxUploadLabel  string
}

type validateResponse struct {
	FieldErrors     map[string]string `json:"fieldErrors"`
	Districts       []string          `json:"districts"`
	DistrictEnabled bool              `json:"districtEnabled"`
	District        string            `json:"district"`
}

type districtsResponse struct {
	State     string   `json:"state"`
	Districts []string `json:"districts"`
}

func (s *Service) newForm() *rto.FormController {
	return rto.NewFormController(s.validator, s.formMode, s.payment)
}

func (s *Service) handleGetApply(w http.ResponseWriter, r *http.Request) {
	form := s.newForm()

	// Allow deep links such as ?serviceType=Renew+License
	if st := strings.TrimSpace(r.URL.Query().Get("serviceType")); st != "" {
		form.SelectServiceType(types.ServiceType(st))
	}

	err := s.renderTemplate(w, r, "page.apply", s.applyPageData(form))
	if err != nil {
		s.logger.WithError(err).Error("failed to render rto apply page")
		s.internalServerError(w)
		return
	}
}

// handlePostApply handles both a plain re-render after the service type or
// state changed (intent=refresh) and the final submission.
func (s *Service) handlePostApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidate, err := s.decodeCandidate(w, r)
	if err != nil {
		s.logger.WithError(err).Warn("failed to decode rto application form")
		form := s.newForm()
		data := s.applyPageData(form)
		data.Flash.Error = decodeErrorMessage(err, s.validator.MaxUploadBytes())
		s.renderApply(w, r, http.StatusBadRequest, data)
		return
	}

	form := s.newForm()
	form.Fill(candidate)

	if r.FormValue("intent") == "refresh" {
		s.renderApply(w, r, http.StatusOK, s.applyPageData(form))
		return
	}

	outcome := form.Submit(ctx, s.gateway)
	if !outcome.Success {
		data := s.applyPageData(form)
		data.Flash.Error = outcome.Error
		s.renderApply(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if outcome.Reset {
		s.redirectWithNotice(w, r, "/rto-services/apply", "Application details saved. We will contact you shortly.")
		return
	}

	s.redirectWithNotice(w, r, outcome.RedirectURL, "Application details saved. Complete the payment to finish your request.")
}

// handlePostApplyValidate is the live validation endpoint used while the
// applicant types.
func (s *Service) handlePostApplyValidate(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.decodeCandidate(w, r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": decodeErrorMessage(err, s.validator.MaxUploadBytes())})
		return
	}

	form := s.newForm()
	form.Fill(candidate)

	values := form.Values()
	s.writeJSON(w, http.StatusOK, validateResponse{
		FieldErrors:     form.Errors().Map(),
		Districts:       form.AvailableDistricts(),
		DistrictEnabled: form.DistrictEnabled(),
		District:        values.District,
	})
}

func (s *Service) handleGetDistricts(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	s.writeJSON(w, http.StatusOK, districtsResponse{
		State:     state,
		Districts: rto.DistrictsFor(state),
	})
}

func (s *Service) renderApply(w http.ResponseWriter, r *http.Request, status int, data *ApplyPageData) {
	err := s.renderTemplateStatus(w, r, status, "page.apply", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render rto apply page")
	}
}

func (s *Service) applyPageData(form *rto.FormController) *ApplyPageData {
	values := form.Values()
	serviceType := values.ServiceType

	data := &ApplyPageData{
		BasePageData:    types.BasePageData{Title: "RTO Assistance Application"},
		Values:          values,
		FieldErrors:     form.Errors().Map(),
		ServiceTypes:    types.ServiceTypeOptions,
		States:          rto.AllowedStates,
		Districts:       form.AvailableDistricts(),
		DistrictEnabled: form.DistrictEnabled(),
		ShowShared:      serviceType.Valid(),
		IsNewLicense:    serviceType == types.ServiceTypeNewLicense,
		IsRenewLicense:  serviceType == types.ServiceTypeRenewLicense,
		Plan:            s.payment.Plan,
		Price:           s.payment.Price,
		MaxUploadLabel:  rto.FormatBytes(s.validator.MaxUploadBytes()),
	}

	if msg := form.LastError(); msg != "" {
		data.Flash.Error = msg
	}

	return data
}

// decodeCandidate parses a multipart or urlencoded application form. Each
// document is read fully, up to one byte past the upload limit so oversize
// files are still reported by the validator.
func (s *Service) decodeCandidate(w http.ResponseWriter, r *http.Request) (*rto.Candidate, error) {
	maxFile := s.validator.MaxUploadBytes()
	maxBody := 4*maxFile + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	err := r.ParseMultipartForm(maxBody)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
	}

	var candidate = new(rto.Candidate)
	if err := decoder.Decode(candidate, r.Form); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}

	if r.MultipartForm == nil {
		return candidate, nil
	}

	for _, field := range []string{types.FieldAadharFile, types.FieldPassportPhoto, types.FieldSignaturePhoto, types.FieldOldDlFile} {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 || headers[0].Size == 0 {
			continue
		}
		header := headers[0]

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", field, err)
		}

		data, err := io.ReadAll(io.LimitReader(file, maxFile+1))
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", field, err)
		}

		candidate.Attach(rto.NewFile(field, header.Filename, header.Header.Get("Content-Type"), data))
	}

	return candidate, nil
}

func decodeErrorMessage(err error, maxFile int64) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Sprintf("Your upload is too large. Each document must be %s or smaller.", rto.FormatBytes(maxFile))
	}
	return "We could not read the submitted form. Please try again."
}
