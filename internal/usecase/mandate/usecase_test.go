package mandate

import (
	"context"
	"errors"
	"testing"
	"time"

	domainApp "lendmitra-backend/internal/domain/application"
	domain "lendmitra-backend/internal/domain/mandate"
	"lendmitra-backend/internal/domain/uow"
	domainVerification "lendmitra-backend/internal/domain/verification"
	"lendmitra-backend/internal/provider"
	"lendmitra-backend/internal/testutil/appmock"
	"lendmitra-backend/internal/testutil/mandatemock"
	"lendmitra-backend/internal/testutil/uowmock"

	"gorm.io/gorm"
)

const orgID = "11111111111111111111111111111111"

// mockGateway implements PaymentsProvider.
type mockGateway struct {
	AuthenticateFn    func(ctx context.Context) (string, time.Duration, error)
	RegisterMandateFn func(ctx context.Context, token string, amount float64, date time.Time) (string, error)
	MandateStatusFn   func(ctx context.Context, token, providerRef string) (string, string, error)
	PennyDropFn       func(ctx context.Context, token, account, ifsc string) (bool, string, error)
	PayoutFn          func(ctx context.Context, token string, amount float64, account, ifsc string) (string, error)
}

func (m *mockGateway) Authenticate(ctx context.Context, orgID string, env provider.Environment) (string, time.Duration, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx)
	}
	return "tok-fresh", time.Hour, nil
}
func (m *mockGateway) RegisterMandate(ctx context.Context, orgID string, env provider.Environment, token string, amount float64, date time.Time) (string, error) {
	if m.RegisterMandateFn != nil {
		return m.RegisterMandateFn(ctx, token, amount, date)
	}
	return "PGREF-1", nil
}
func (m *mockGateway) MandateStatus(ctx context.Context, orgID string, env provider.Environment, token, providerRef string) (string, string, error) {
	if m.MandateStatusFn != nil {
		return m.MandateStatusFn(ctx, token, providerRef)
	}
	return "", "", errors.New("not implemented")
}
func (m *mockGateway) PennyDrop(ctx context.Context, orgID string, env provider.Environment, token, account, ifsc string) (bool, string, error) {
	if m.PennyDropFn != nil {
		return m.PennyDropFn(ctx, token, account, ifsc)
	}
	return false, "", errors.New("not implemented")
}
func (m *mockGateway) Payout(ctx context.Context, orgID string, env provider.Environment, token string, amount float64, account, ifsc string) (string, error) {
	if m.PayoutFn != nil {
		return m.PayoutFn(ctx, token, amount, account, ifsc)
	}
	return "PAY-1", nil
}

// mockRecords implements the verification repository.
type mockRecords struct {
	CreateFn func(ctx context.Context, r *domainVerification.Record) error
}

func (m *mockRecords) Create(ctx context.Context, r *domainVerification.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}
func (m *mockRecords) LatestByType(ctx context.Context, id uint64, t domainVerification.Type) (*domainVerification.Record, error) {
	return nil, errors.New("not implemented")
}
func (m *mockRecords) ListByApplication(ctx context.Context, id uint64) ([]domainVerification.Record, error) {
	return nil, errors.New("not implemented")
}

func fixedNow() time.Time { return time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC) }

func knownApp(a *domainApp.LoanApplication) *appmock.Repo {
	return &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*domainApp.LoanApplication, error) {
			return a, nil
		},
	}
}

func newUsecase(repo domain.Repository, apps domainApp.Repository, records domainVerification.Repository, client PaymentsProvider, tx uow.UnitOfWork) *Usecase {
	uc := NewUsecase(orgID, provider.EnvUAT, repo, apps, records, client, tx)
	uc.now = fixedNow
	return uc
}

// ----- token cache -----

func TestGetAccessToken_CacheHit(t *testing.T) {
	repo := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok-cached", ExpiresAt: fixedNow().Add(time.Hour)}, nil
		},
	}
	client := &mockGateway{
		AuthenticateFn: func(ctx context.Context) (string, time.Duration, error) {
			t.Fatal("Authenticate must not be called on a cache hit")
			return "", 0, nil
		},
	}
	uc := newUsecase(repo, nil, nil, client, nil)

	tok, err := uc.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("GetAccessToken: %v", err)
	}
	if tok != "tok-cached" {
		t.Fatalf("token=%s", tok)
	}
}

func TestGetAccessToken_RefreshInsideBuffer(t *testing.T) {
	// cached token expires in 2 minutes: inside the safety buffer, refresh
	var upserted *domain.AccessToken
	repo := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok-stale", ExpiresAt: fixedNow().Add(2 * time.Minute)}, nil
		},
		UpsertTokenFn: func(ctx context.Context, tok *domain.AccessToken) error {
			upserted = tok
			return nil
		},
	}
	uc := newUsecase(repo, nil, nil, &mockGateway{}, nil)

	tok, err := uc.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("GetAccessToken: %v", err)
	}
	if tok != "tok-fresh" {
		t.Fatalf("token=%s", tok)
	}
	if want := fixedNow().Add(time.Hour - tokenSafetyBuffer); !upserted.ExpiresAt.Equal(want) {
		t.Fatalf("cached expiry=%v want=%v", upserted.ExpiresAt, want)
	}
}

func TestGetAccessToken_MissAndShortTTL(t *testing.T) {
	var upserted *domain.AccessToken
	repo := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return nil, gorm.ErrRecordNotFound
		},
		UpsertTokenFn: func(ctx context.Context, tok *domain.AccessToken) error {
			upserted = tok
			return nil
		},
	}
	client := &mockGateway{
		AuthenticateFn: func(ctx context.Context) (string, time.Duration, error) {
			return "tok-short", 4 * time.Minute, nil // shorter than the buffer
		},
	}
	uc := newUsecase(repo, nil, nil, client, nil)

	if _, err := uc.GetAccessToken(context.Background()); err != nil {
		t.Fatalf("GetAccessToken: %v", err)
	}
	if want := fixedNow().Add(2 * time.Minute); !upserted.ExpiresAt.Equal(want) {
		t.Fatalf("short-ttl expiry=%v want=%v", upserted.ExpiresAt, want)
	}
}

func TestGetAccessToken_AuthFailure(t *testing.T) {
	repo := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	client := &mockGateway{
		AuthenticateFn: func(ctx context.Context) (string, time.Duration, error) {
			return "", 0, errors.New("401 from gateway")
		},
	}
	uc := newUsecase(repo, nil, nil, client, nil)
	if _, err := uc.GetAccessToken(context.Background()); !errors.Is(err, domain.ErrTokenMissing) {
		t.Fatalf("err=%v", err)
	}
}

// ----- mandates -----

func TestCreate(t *testing.T) {
	a := &domainApp.LoanApplication{ID: 7}
	var created *domain.Mandate
	repo := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok", ExpiresAt: fixedNow().Add(time.Hour)}, nil
		},
		CreateFn: func(ctx context.Context, m *domain.Mandate) error {
			created = m
			return nil
		},
	}
	uc := newUsecase(repo, knownApp(a), nil, &mockGateway{}, nil)

	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	dto, err := uc.Create(context.Background(), CreateInput{
		ApplicationID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", CollectionAmount: 10_700, CollectionDate: date,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Status != string(domain.StatusInitiated) {
		t.Fatalf("status=%s", dto.Status)
	}
	if created.ApplicationID != 7 || created.ProviderRef != "PGREF-1" {
		t.Fatalf("mandate %+v", created)
	}
}

func TestCheckStatus_TerminalSkipsGateway(t *testing.T) {
	m := &domain.Mandate{MandateID: "m1", Status: domain.StatusActive, UMRN: "UMRN1"}
	repo := &mandatemock.Repo{
		GetByMandateIDFn: func(ctx context.Context, id string) (*domain.Mandate, error) {
			return m, nil
		},
	}
	client := &mockGateway{
		MandateStatusFn: func(ctx context.Context, token, ref string) (string, string, error) {
			t.Fatal("gateway must not be polled for a terminal mandate")
			return "", "", nil
		},
	}
	uc := newUsecase(repo, nil, nil, client, nil)

	dto, err := uc.CheckStatus(context.Background(), "m1")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if dto.Status != string(domain.StatusActive) {
		t.Fatalf("status=%s", dto.Status)
	}
}

func TestCheckStatus_RefreshesAndStoresUMRN(t *testing.T) {
	m := &domain.Mandate{MandateID: "m1", Status: domain.StatusInitiated, ProviderRef: "PGREF-1"}
	saved := false
	repo := &mandatemock.Repo{
		GetByMandateIDFn: func(ctx context.Context, id string) (*domain.Mandate, error) {
			return m, nil
		},
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok", ExpiresAt: fixedNow().Add(time.Hour)}, nil
		},
		SaveFn: func(ctx context.Context, got *domain.Mandate) error {
			saved = true
			return nil
		},
	}
	client := &mockGateway{
		MandateStatusFn: func(ctx context.Context, token, ref string) (string, string, error) {
			return "registered", "UMRN9", nil
		},
	}
	uc := newUsecase(repo, nil, nil, client, nil)

	dto, err := uc.CheckStatus(context.Background(), "m1")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if !saved || dto.Status != string(domain.StatusRegistered) || dto.UMRN != "UMRN9" {
		t.Fatalf("saved=%v dto=%+v", saved, dto)
	}
}

func TestCheckStatus_GatewayApprovedIsStored(t *testing.T) {
	m := &domain.Mandate{MandateID: "m1", Status: domain.StatusRegistered, ProviderRef: "PGREF-1"}
	saved := false
	repo := &mandatemock.Repo{
		GetByMandateIDFn: func(ctx context.Context, id string) (*domain.Mandate, error) {
			return m, nil
		},
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok", ExpiresAt: fixedNow().Add(time.Hour)}, nil
		},
		SaveFn: func(ctx context.Context, got *domain.Mandate) error {
			saved = true
			return nil
		},
	}
	client := &mockGateway{
		MandateStatusFn: func(ctx context.Context, token, ref string) (string, string, error) {
			return "approved", "", nil
		},
	}
	uc := newUsecase(repo, nil, nil, client, nil)

	dto, err := uc.CheckStatus(context.Background(), "m1")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if !saved || dto.Status != string(domain.StatusApproved) {
		t.Fatalf("approved must be a recognized gateway status, saved=%v dto=%+v", saved, dto)
	}
}

func TestLatest_NoneIsNil(t *testing.T) {
	a := &domainApp.LoanApplication{ID: 7}
	repo := &mandatemock.Repo{
		LatestByApplicationFn: func(ctx context.Context, id uint64) (*domain.Mandate, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	uc := newUsecase(repo, knownApp(a), nil, &mockGateway{}, nil)

	dto, err := uc.Latest(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if dto != nil {
		t.Fatalf("dto=%+v want nil", dto)
	}
}

// ----- penny drop -----

func TestPennyDrop_RecordsEvenOnGatewayFailure(t *testing.T) {
	a := &domainApp.LoanApplication{ID: 7}
	var rec *domainVerification.Record
	records := &mockRecords{
		CreateFn: func(ctx context.Context, r *domainVerification.Record) error {
			rec = r
			return nil
		},
	}
	repo := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok", ExpiresAt: fixedNow().Add(time.Hour)}, nil
		},
	}
	client := &mockGateway{
		PennyDropFn: func(ctx context.Context, token, account, ifsc string) (bool, string, error) {
			return false, "", errors.New("gateway timeout")
		},
	}
	uc := newUsecase(repo, knownApp(a), records, client, nil)

	_, _, err := uc.PennyDrop(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "123456789012", "HDFC0001234")
	if err == nil {
		t.Fatal("want gateway error")
	}
	if rec == nil || rec.Status != domainVerification.StatusFailed || rec.Type != domainVerification.TypeBankAccount {
		t.Fatalf("record=%+v", rec)
	}
}

func TestPennyDrop_Valid(t *testing.T) {
	a := &domainApp.LoanApplication{ID: 7}
	var rec *domainVerification.Record
	records := &mockRecords{
		CreateFn: func(ctx context.Context, r *domainVerification.Record) error {
			rec = r
			return nil
		},
	}
	repo := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok", ExpiresAt: fixedNow().Add(time.Hour)}, nil
		},
	}
	client := &mockGateway{
		PennyDropFn: func(ctx context.Context, token, account, ifsc string) (bool, string, error) {
			return true, "ASHA RAO", nil
		},
	}
	uc := newUsecase(repo, knownApp(a), records, client, nil)

	valid, holder, err := uc.PennyDrop(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "123456789012", "HDFC0001234")
	if err != nil {
		t.Fatalf("PennyDrop: %v", err)
	}
	if !valid || holder != "ASHA RAO" {
		t.Fatalf("valid=%v holder=%s", valid, holder)
	}
	if rec.Status != domainVerification.StatusSuccess || !rec.Verified {
		t.Fatalf("record=%+v", rec)
	}
}

// ----- disburse -----

func TestDisburse(t *testing.T) {
	token := &mandatemock.Repo{
		GetTokenFn: func(ctx context.Context, org, env string) (*domain.AccessToken, error) {
			return &domain.AccessToken{Token: "tok", ExpiresAt: fixedNow().Add(time.Hour)}, nil
		},
	}
	in := DisburseInput{
		ApplicationID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Account:       "123456789012", IFSC: "HDFC0001234",
	}

	t.Run("happy path", func(t *testing.T) {
		a := &domainApp.LoanApplication{
			ID: 7, Status: domainApp.StatusSanctioned, Stage: domainApp.StageDisbursementPending,
			SanctionedAmount: 9_000,
		}
		mandates := &mandatemock.Repo{
			LatestByApplicationFn: func(ctx context.Context, id uint64) (*domain.Mandate, error) {
				return &domain.Mandate{MandateID: "m1", Status: domain.StatusActive}, nil
			},
		}
		apps := &appmock.Repo{
			SaveFn: func(ctx context.Context, got *domainApp.LoanApplication) error {
				if got.Stage != domainApp.StageDisbursed || got.DisbursedAmount != 9_000 {
					t.Fatalf("saved %+v", got)
				}
				return nil
			},
		}
		paid := false
		client := &mockGateway{
			PayoutFn: func(ctx context.Context, tok string, amount float64, account, ifsc string) (string, error) {
				if amount != 9_000 {
					t.Fatalf("payout amount=%v", amount)
				}
				paid = true
				return "PAY-1", nil
			},
		}
		tx := uowmock.Locked(uow.Repos{Applications: apps, Mandates: mandates}, a)
		uc := newUsecase(token, apps, nil, client, tx)

		dto, err := uc.Disburse(context.Background(), in)
		if err != nil {
			t.Fatalf("Disburse: %v", err)
		}
		if !paid || dto.MandateID != "m1" {
			t.Fatalf("paid=%v dto=%+v", paid, dto)
		}
		if a.Status != domainApp.StatusDisbursed {
			t.Fatalf("status=%s", a.Status)
		}
	})

	t.Run("wrong stage", func(t *testing.T) {
		a := &domainApp.LoanApplication{Status: domainApp.StatusSanctioned, Stage: domainApp.StageSanctioned}
		tx := uowmock.Locked(uow.Repos{}, a)
		uc := newUsecase(token, nil, nil, &mockGateway{}, tx)
		if _, err := uc.Disburse(context.Background(), in); !errors.Is(err, domainApp.ErrInvalidTransition) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("mandate not ready", func(t *testing.T) {
		a := &domainApp.LoanApplication{Status: domainApp.StatusSanctioned, Stage: domainApp.StageDisbursementPending}
		mandates := &mandatemock.Repo{
			LatestByApplicationFn: func(ctx context.Context, id uint64) (*domain.Mandate, error) {
				return &domain.Mandate{MandateID: "m1", Status: domain.StatusPending}, nil
			},
		}
		client := &mockGateway{
			PayoutFn: func(ctx context.Context, tok string, amount float64, account, ifsc string) (string, error) {
				t.Fatal("Payout must not run without a ready mandate")
				return "", nil
			},
		}
		tx := uowmock.Locked(uow.Repos{Mandates: mandates}, a)
		uc := newUsecase(token, nil, nil, client, tx)
		if _, err := uc.Disburse(context.Background(), in); err == nil {
			t.Fatal("want error")
		}
	})

	t.Run("no mandate on file", func(t *testing.T) {
		a := &domainApp.LoanApplication{Status: domainApp.StatusSanctioned, Stage: domainApp.StageDisbursementPending}
		mandates := &mandatemock.Repo{
			LatestByApplicationFn: func(ctx context.Context, id uint64) (*domain.Mandate, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		tx := uowmock.Locked(uow.Repos{Mandates: mandates}, a)
		uc := newUsecase(token, nil, nil, &mockGateway{}, tx)
		if _, err := uc.Disburse(context.Background(), in); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err=%v", err)
		}
	})
}
