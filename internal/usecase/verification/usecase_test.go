package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	domainApp "lendmitra-backend/internal/domain/application"
	domain "lendmitra-backend/internal/domain/verification"
	"lendmitra-backend/internal/provider"
	"lendmitra-backend/internal/testutil/appmock"

	"gorm.io/gorm"
)

const (
	orgID = "11111111111111111111111111111111"
	appID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

// mockRecords implements domain.Repository.
type mockRecords struct {
	CreateFn            func(ctx context.Context, r *domain.Record) error
	LatestByTypeFn      func(ctx context.Context, id uint64, t domain.Type) (*domain.Record, error)
	ListByApplicationFn func(ctx context.Context, id uint64) ([]domain.Record, error)
}

func (m *mockRecords) Create(ctx context.Context, r *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}
func (m *mockRecords) LatestByType(ctx context.Context, id uint64, t domain.Type) (*domain.Record, error) {
	if m.LatestByTypeFn != nil {
		return m.LatestByTypeFn(ctx, id, t)
	}
	return nil, errors.New("not implemented")
}
func (m *mockRecords) ListByApplication(ctx context.Context, id uint64) ([]domain.Record, error) {
	if m.ListByApplicationFn != nil {
		return m.ListByApplicationFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

// mockKYC implements KYCProvider; a nil Result means the call fails with Err.
type mockKYC struct {
	Result *provider.KYCResult
	Err    error
	Calls  int
}

func (m *mockKYC) answer() (*provider.KYCResult, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
func (m *mockKYC) VerifyPAN(ctx context.Context, orgID string, env provider.Environment, pan string) (*provider.KYCResult, error) {
	return m.answer()
}
func (m *mockKYC) VerifyAadhaar(ctx context.Context, orgID string, env provider.Environment, aadhaar string) (*provider.KYCResult, error) {
	return m.answer()
}
func (m *mockKYC) VerifyBankAccount(ctx context.Context, orgID string, env provider.Environment, account, ifsc string) (*provider.KYCResult, error) {
	return m.answer()
}
func (m *mockKYC) VerifyIFSC(ctx context.Context, orgID string, env provider.Environment, ifsc string) (*provider.KYCResult, error) {
	return m.answer()
}

func knownApp() *appmock.Repo {
	return &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*domainApp.LoanApplication, error) {
			return &domainApp.LoanApplication{ID: 7, ApplicationID: id}, nil
		},
		GetPrimaryApplicantFn: func(ctx context.Context, id uint64) (*domainApp.Applicant, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
}

func TestVerifyPAN_FormatFailsFast(t *testing.T) {
	kyc := &mockKYC{}
	records := &mockRecords{
		CreateFn: func(ctx context.Context, r *domain.Record) error {
			t.Fatal("no record must be written for a local format failure")
			return nil
		},
	}
	uc := NewUsecase(orgID, provider.EnvUAT, knownApp(), records, kyc)

	for _, pan := range []string{"", "ABCDE123F", "abcde1234f", "1BCDE1234F", "ABCDE1234FX"} {
		if _, err := uc.VerifyPAN(context.Background(), appID, pan); !errors.Is(err, domain.ErrInvalidFormat) {
			t.Fatalf("VerifyPAN(%q) err=%v", pan, err)
		}
	}
	if kyc.Calls != 0 {
		t.Fatalf("provider called %d times", kyc.Calls)
	}
}

func TestVerifyPAN_Success(t *testing.T) {
	kyc := &mockKYC{Result: &provider.KYCResult{
		Verified: true, Name: "ASHA RAO", DOB: "1991-07-15", Provider: "kycbridge",
		Raw: []byte(`{"status":"ok"}`),
	}}
	var rec *domain.Record
	records := &mockRecords{
		CreateFn: func(ctx context.Context, r *domain.Record) error {
			rec = r
			return nil
		},
	}
	uc := NewUsecase(orgID, provider.EnvUAT, knownApp(), records, kyc)

	dto, err := uc.VerifyPAN(context.Background(), appID, "ABCDE1234F")
	if err != nil {
		t.Fatalf("VerifyPAN: %v", err)
	}
	if !dto.Verified || dto.Status != string(domain.StatusSuccess) {
		t.Fatalf("dto=%+v", dto)
	}
	if rec.Type != domain.TypePAN || rec.ApplicationID != 7 || rec.Provider != "kycbridge" {
		t.Fatalf("record=%+v", rec)
	}
	if rec.ResponseJSON != `{"status":"ok"}` {
		t.Fatalf("response=%q", rec.ResponseJSON)
	}
}

func TestVerify_ProviderFailureStillPersists(t *testing.T) {
	pe := &provider.Error{Provider: "kycbridge", StatusCode: 503, Message: "upstream down"}
	kyc := &mockKYC{Err: pe}
	var rec *domain.Record
	records := &mockRecords{
		CreateFn: func(ctx context.Context, r *domain.Record) error {
			rec = r
			return nil
		},
	}
	uc := NewUsecase(orgID, provider.EnvUAT, knownApp(), records, kyc)

	_, err := uc.VerifyAadhaar(context.Background(), appID, "123456789012")
	if !errors.Is(err, pe) {
		t.Fatalf("err=%v", err)
	}
	if rec == nil || rec.Status != domain.StatusFailed || rec.Message != "upstream down" {
		t.Fatalf("record=%+v", rec)
	}
}

func TestVerify_ProviderReportsInvalid(t *testing.T) {
	kyc := &mockKYC{Result: &provider.KYCResult{Verified: false, Provider: "kycbridge"}}
	var rec *domain.Record
	records := &mockRecords{
		CreateFn: func(ctx context.Context, r *domain.Record) error {
			rec = r
			return nil
		},
	}
	uc := NewUsecase(orgID, provider.EnvUAT, knownApp(), records, kyc)

	dto, err := uc.VerifyIFSC(context.Background(), appID, "HDFC0001234")
	if err != nil {
		t.Fatalf("VerifyIFSC: %v", err)
	}
	if dto.Verified || rec.Status != domain.StatusFailed {
		t.Fatalf("dto=%+v record=%+v", dto, rec)
	}
}

func TestVerifyBankAccount_Format(t *testing.T) {
	uc := NewUsecase(orgID, provider.EnvUAT, knownApp(), &mockRecords{}, &mockKYC{})
	if _, err := uc.VerifyBankAccount(context.Background(), appID, "12345678", "HDFC0001234"); !errors.Is(err, domain.ErrInvalidFormat) {
		t.Fatalf("short account err=%v", err)
	}
	if _, err := uc.VerifyBankAccount(context.Background(), appID, "123456789012", "HDFC1001234"); !errors.Is(err, domain.ErrInvalidFormat) {
		t.Fatalf("bad ifsc err=%v", err)
	}
}

func TestBackfill_FillsOnlyMissingFields(t *testing.T) {
	ap := &domainApp.Applicant{Name: "Asha Rao", Address: "NA"}
	var saved *domainApp.Applicant
	apps := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*domainApp.LoanApplication, error) {
			return &domainApp.LoanApplication{ID: 7}, nil
		},
		GetPrimaryApplicantFn: func(ctx context.Context, id uint64) (*domainApp.Applicant, error) {
			return ap, nil
		},
		SaveApplicantFn: func(ctx context.Context, got *domainApp.Applicant) error {
			saved = got
			return nil
		},
	}
	kyc := &mockKYC{Result: &provider.KYCResult{
		Verified: true, Name: "A RAO (KYC)", DOB: "1991-07-15", Address: "12 MG Road, Pune", Provider: "kycbridge",
	}}
	uc := NewUsecase(orgID, provider.EnvUAT, apps, &mockRecords{}, kyc)

	if _, err := uc.VerifyPAN(context.Background(), appID, "ABCDE1234F"); err != nil {
		t.Fatalf("VerifyPAN: %v", err)
	}
	if saved == nil {
		t.Fatal("applicant not saved")
	}
	if saved.Name != "Asha Rao" {
		t.Fatalf("user-supplied name overwritten: %q", saved.Name)
	}
	if saved.Address != "12 MG Road, Pune" {
		t.Fatalf("placeholder address not backfilled: %q", saved.Address)
	}
	if saved.DateOfBirth == nil || !saved.DateOfBirth.Equal(time.Date(1991, 7, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("dob=%v", saved.DateOfBirth)
	}
}

func TestBackfill_SkippedForBankChecks(t *testing.T) {
	apps := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*domainApp.LoanApplication, error) {
			return &domainApp.LoanApplication{ID: 7}, nil
		},
		GetPrimaryApplicantFn: func(ctx context.Context, id uint64) (*domainApp.Applicant, error) {
			t.Fatal("bank checks must not touch the applicant")
			return nil, nil
		},
	}
	kyc := &mockKYC{Result: &provider.KYCResult{Verified: true, Provider: "kycbridge"}}
	uc := NewUsecase(orgID, provider.EnvUAT, apps, &mockRecords{}, kyc)
	if _, err := uc.VerifyIFSC(context.Background(), appID, "HDFC0001234"); err != nil {
		t.Fatalf("VerifyIFSC: %v", err)
	}
}

func TestRun_UnknownApplication(t *testing.T) {
	apps := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*domainApp.LoanApplication, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	uc := NewUsecase(orgID, provider.EnvUAT, apps, &mockRecords{}, &mockKYC{})
	if _, err := uc.VerifyPAN(context.Background(), appID, "ABCDE1234F"); !errors.Is(err, domainApp.ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}
