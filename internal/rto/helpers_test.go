package rto

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rtoassist/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), make([]byte, 64)...)
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
)

func nullLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func newLicenseCandidate() *Candidate {
	c := &Candidate{
		ServiceType:   types.ServiceTypeNewLicense,
		FullName:      "Asha Rao",
		ContactNumber: "9876543210",
		State:         "Uttar Pradesh",
		District:      "Prayagraj",
		Pincode:       "211001",
		RtoOfficeName: "Prayagraj RTO",
		FathersName:   "Ram Rao",
		Address:       "123 MG Road",
		AadharNumber:  "123412341234",
	}
	c.Attach(NewFile(types.FieldPassportPhoto, "photo.png", "image/png", pngBytes))
	c.Attach(NewFile(types.FieldSignaturePhoto, "sign.jpg", "image/jpeg", jpegBytes))
	return c
}

func renewLicenseCandidate() *Candidate {
	c := &Candidate{
		ServiceType:   types.ServiceTypeRenewLicense,
		FullName:      "Vikram Singh",
		ContactNumber: "9812345678",
		State:         "Rajasthan",
		District:      "Jaipur",
		Pincode:       "302001",
		RtoOfficeName: "Jaipur RTO",
		OldDlNumber:   "RJ14 20110012345",
	}
	c.Attach(NewFile(types.FieldAadharFile, "aadhaar.pdf", "application/pdf", pdfBytes))
	c.Attach(NewFile(types.FieldOldDlFile, "old-dl.png", "image/png", pngBytes))
	return c
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  string
	block   bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.failOn != "" && strings.Contains(key, "/"+f.failOn+"-") {
		return "", errors.New("storage unavailable")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	return "https://files.test/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeCreator struct {
	created []*types.RtoAssistanceRequest
	err     error
	panics  bool
}

func (f *fakeCreator) CreateRequest(_ context.Context, req *types.RtoAssistanceRequest) error {
	if f.panics {
		panic("connection reset")
	}
	if f.err != nil {
		return f.err
	}
	req.ID = fmt.Sprintf("req-%d", len(f.created)+1)
	f.created = append(f.created, req)
	return nil
}

type observed struct {
	label   string
	outcome string
}

type recordingObserver struct {
	mu          sync.Mutex
	submissions []observed
	updates     []observed
}

func (r *recordingObserver) ObserveSubmission(t types.ServiceType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, observed{string(t), outcome})
}

func (r *recordingObserver) ObserveStatusUpdate(s types.RequestStatus, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, observed{string(s), outcome})
}
