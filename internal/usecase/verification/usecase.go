package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	domainApp "lendmitra-backend/internal/domain/application"
	domain "lendmitra-backend/internal/domain/verification"
	"lendmitra-backend/internal/provider"
	"lendmitra-backend/pkg/id"

	"gorm.io/gorm"
)

// Local format guards; no provider call is made when these fail.
var (
	rePAN     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
	reAadhaar = regexp.MustCompile(`^[0-9]{12}$`)
	reIFSC    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	reAccount = regexp.MustCompile(`^[0-9]{9,18}$`)
)

// KYCProvider is the slice of the provider client this usecase needs.
type KYCProvider interface {
	VerifyPAN(ctx context.Context, orgID string, env provider.Environment, pan string) (*provider.KYCResult, error)
	VerifyAadhaar(ctx context.Context, orgID string, env provider.Environment, aadhaar string) (*provider.KYCResult, error)
	VerifyBankAccount(ctx context.Context, orgID string, env provider.Environment, account, ifsc string) (*provider.KYCResult, error)
	VerifyIFSC(ctx context.Context, orgID string, env provider.Environment, ifsc string) (*provider.KYCResult, error)
}

type Usecase struct {
	orgID   string
	env     provider.Environment
	apps    domainApp.Repository
	records domain.Repository
	kyc     KYCProvider
}

func NewUsecase(orgID string, env provider.Environment, apps domainApp.Repository, records domain.Repository, kyc KYCProvider) *Usecase {
	return &Usecase{orgID: orgID, env: env, apps: apps, records: records, kyc: kyc}
}

type RecordDTO struct {
	RecordID  string    `json:"record_id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Verified  bool      `json:"verified"`
	Provider  string    `json:"provider"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *Usecase) VerifyPAN(ctx context.Context, applicationID, pan string) (*RecordDTO, error) {
	if !rePAN.MatchString(pan) {
		return nil, fmt.Errorf("%w: pan must match AAAAA9999A", domain.ErrInvalidFormat)
	}
	return u.run(ctx, applicationID, domain.TypePAN, map[string]string{"pan": pan},
		func(ctx context.Context) (*provider.KYCResult, error) {
			return u.kyc.VerifyPAN(ctx, u.orgID, u.env, pan)
		})
}

func (u *Usecase) VerifyAadhaar(ctx context.Context, applicationID, aadhaar string) (*RecordDTO, error) {
	if !reAadhaar.MatchString(aadhaar) {
		return nil, fmt.Errorf("%w: aadhaar must be 12 digits", domain.ErrInvalidFormat)
	}
	return u.run(ctx, applicationID, domain.TypeAadhaar, map[string]string{"aadhaar": aadhaar},
		func(ctx context.Context) (*provider.KYCResult, error) {
			return u.kyc.VerifyAadhaar(ctx, u.orgID, u.env, aadhaar)
		})
}

func (u *Usecase) VerifyBankAccount(ctx context.Context, applicationID, account, ifsc string) (*RecordDTO, error) {
	if !reAccount.MatchString(account) {
		return nil, fmt.Errorf("%w: account number must be 9-18 digits", domain.ErrInvalidFormat)
	}
	if !reIFSC.MatchString(ifsc) {
		return nil, fmt.Errorf("%w: bad ifsc", domain.ErrInvalidFormat)
	}
	return u.run(ctx, applicationID, domain.TypeBankAccount, map[string]string{"account": account, "ifsc": ifsc},
		func(ctx context.Context) (*provider.KYCResult, error) {
			return u.kyc.VerifyBankAccount(ctx, u.orgID, u.env, account, ifsc)
		})
}

func (u *Usecase) VerifyIFSC(ctx context.Context, applicationID, ifsc string) (*RecordDTO, error) {
	if !reIFSC.MatchString(ifsc) {
		return nil, fmt.Errorf("%w: bad ifsc", domain.ErrInvalidFormat)
	}
	return u.run(ctx, applicationID, domain.TypeIFSC, map[string]string{"ifsc": ifsc},
		func(ctx context.Context) (*provider.KYCResult, error) {
			return u.kyc.VerifyIFSC(ctx, u.orgID, u.env, ifsc)
		})
}

func (u *Usecase) List(ctx context.Context, applicationID string) ([]RecordDTO, error) {
	a, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainApp.ErrNotFound
		}
		return nil, err
	}
	records, err := u.records.ListByApplication(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	out := make([]RecordDTO, 0, len(records))
	for i := range records {
		out = append(out, *toDTO(&records[i]))
	}
	return out, nil
}

// run executes one provider call and always persists a record of the
// attempt, even when the call fails, for audit purposes.
func (u *Usecase) run(ctx context.Context, applicationID string, t domain.Type, request map[string]string, call func(context.Context) (*provider.KYCResult, error)) (*RecordDTO, error) {
	a, err := u.apps.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainApp.ErrNotFound
		}
		return nil, err
	}

	rec := &domain.Record{
		RecordID:      id.NewID32(),
		ApplicationID: a.ID,
		OrgID:         u.orgID,
		Type:          t,
		RequestJSON:   jsonString(request),
	}

	result, callErr := call(ctx)
	if callErr != nil {
		rec.Status = domain.StatusFailed
		if pe, ok := provider.IsProviderError(callErr); ok {
			rec.Provider = pe.Provider
			rec.Message = pe.Message
		} else {
			rec.Message = callErr.Error()
		}
		if err := u.records.Create(ctx, rec); err != nil {
			log.Printf("verification record persist failed (%s/%s): %v", applicationID, t, err)
		}
		return nil, callErr
	}

	rec.Provider = result.Provider
	rec.Verified = result.Verified
	rec.ResponseJSON = string(result.Raw)
	if result.Verified {
		rec.Status = domain.StatusSuccess
	} else {
		rec.Status = domain.StatusFailed
		rec.Message = "provider reported invalid"
	}
	if err := u.records.Create(ctx, rec); err != nil {
		return nil, err
	}

	if result.Verified && (t == domain.TypePAN || t == domain.TypeAadhaar) {
		u.backfillApplicant(ctx, a.ID, result)
	}
	return toDTO(rec), nil
}

// backfillApplicant fills KYC fields the borrower has not supplied yet.
// Existing user-confirmed values are never overwritten.
func (u *Usecase) backfillApplicant(ctx context.Context, applicationNumericID uint64, result *provider.KYCResult) {
	ap, err := u.apps.GetPrimaryApplicant(ctx, applicationNumericID)
	if err != nil {
		log.Printf("applicant backfill lookup failed: %v", err)
		return
	}

	changed := false
	if ap.DateOfBirth == nil && result.DOB != "" {
		if dob, err := time.Parse("2006-01-02", result.DOB); err == nil {
			ap.DateOfBirth = &dob
			changed = true
		}
	}
	if isPlaceholder(ap.Address) && result.Address != "" {
		ap.Address = result.Address
		changed = true
	}
	if isPlaceholder(ap.Name) && result.Name != "" {
		ap.Name = result.Name
		changed = true
	}
	if !changed {
		return
	}
	if err := u.apps.SaveApplicant(ctx, ap); err != nil {
		log.Printf("applicant backfill save failed: %v", err)
	}
}

func isPlaceholder(v string) bool {
	return v == "" || v == "NA" || v == "N/A"
}

func toDTO(r *domain.Record) *RecordDTO {
	return &RecordDTO{
		RecordID:  r.RecordID,
		Type:      string(r.Type),
		Status:    string(r.Status),
		Verified:  r.Verified,
		Provider:  r.Provider,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
}

func jsonString(m map[string]string) string {
	b, _ := json.Marshal(m)
	return string(b)
}
