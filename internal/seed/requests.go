package seed

import (
	"context"
	"fmt"
	"time"

	"rtoassist/internal/rto"
	"rtoassist/pkg/types"
)

// demoRequests covers both service types and every status so the dashboard
// tabs and pagination have something to show.
var demoRequests = []struct {
	candidate rto.Candidate
	status    types.RequestStatus
}{
	{
		candidate: rto.Candidate{
			ServiceType: types.ServiceTypeNewLicense, FullName: "Asha Rao", Email: "asha.rao@example.com",
			ContactNumber: "9876543210", State: "Uttar Pradesh", District: "Lucknow", Pincode: "226001",
			RtoOfficeName: "Lucknow RTO", FathersName: "Ravi Rao", Address: "12 MG Road, Lucknow", AadharNumber: "123412341234",
		},
		status: types.RequestStatusPending,
	},
	{
		candidate: rto.Candidate{
			ServiceType: types.ServiceTypeRenewLicense, FullName: "Vikram Singh",
			ContactNumber: "9812345678", State: "Rajasthan", District: "Jaipur", Pincode: "302001",
			RtoOfficeName: "Jaipur RTO", OldDlNumber: "RJ14 20110012345",
		},
		status: types.RequestStatusInProgress,
	},
	{
		candidate: rto.Candidate{
			ServiceType: types.ServiceTypeNewLicense, FullName: "Meera Iyer", Email: "meera.iyer@example.com",
			ContactNumber: "9900112233", State: "Karnataka", District: "Bengaluru Urban", Pincode: "560001",
			RtoOfficeName: "Koramangala RTO", FathersName: "Suresh Iyer", Address: "4th Cross, Koramangala", AadharNumber: "432143214321",
		},
		status: types.RequestStatusCompleted,
	},
	{
		candidate: rto.Candidate{
			ServiceType: types.ServiceTypeRenewLicense, FullName: "Imran Khan",
			ContactNumber: "9123456780", State: "Maharashtra", District: "Pune", Pincode: "411001",
			RtoOfficeName: "Pune RTO", OldDlNumber: "MH12 20090054321",
		},
		status: types.RequestStatusRejected,
	},
	{
		candidate: rto.Candidate{
			ServiceType: types.ServiceTypeNewLicense, FullName: "Pooja Sharma",
			ContactNumber: "9988776655", State: "Delhi", District: "New Delhi", Pincode: "110001",
			RtoOfficeName: "Sarai Kale Khan RTO", FathersName: "Anil Sharma", Address: "22 Lodhi Colony", AadharNumber: "567856785678",
		},
		status: types.RequestStatusPending,
	},
	{
		candidate: rto.Candidate{
			ServiceType: types.ServiceTypeRenewLicense, FullName: "Rahul Verma", Email: "rahul.verma@example.com",
			ContactNumber: "9090909090", State: "Bihar", District: "Patna", Pincode: "800001",
			RtoOfficeName: "Patna DTO", OldDlNumber: "BR01 20150098765",
		},
		status: types.RequestStatusPending,
	},
}

// SeedRequests inserts the demo requests, oldest first, a minute apart.
// Requests without documents render with an empty document list.
func SeedRequests(ctx context.Context, repo rto.RequestCreator, now time.Time) (int, error) {
	start := now.Add(-time.Duration(len(demoRequests)) * time.Minute)

	for i, demo := range demoRequests {
		candidate := demo.candidate
		candidate.Normalize()

		req := candidate.Record()
		req.Status = demo.status
		req.CreatedAt = start.Add(time.Duration(i) * time.Minute)
		req.UpdatedAt = req.CreatedAt

		if err := repo.CreateRequest(ctx, req); err != nil {
			return i, fmt.Errorf("failed to seed request for %s: %w", candidate.FullName, err)
		}
	}

	return len(demoRequests), nil
}
