package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

type PaymentsClient struct {
	cfgs ConfigRepository
	http *retryablehttp.Client
}

func NewPaymentsClient(cfgs ConfigRepository) *PaymentsClient {
	return &PaymentsClient{cfgs: cfgs, http: newHTTPClient()}
}

func (c *PaymentsClient) Mode(ctx context.Context, orgID string, env Environment) Mode {
	if _, err := c.cfgs.Get(ctx, orgID, env, "paygate"); err != nil {
		return ModeMock
	}
	return ModeLive
}

// Authenticate fetches a fresh gateway token and its provider-stated TTL.
func (c *PaymentsClient) Authenticate(ctx context.Context, orgID string, env Environment) (token string, ttl time.Duration, err error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "paygate")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return "mock-token-" + uuid.NewString(), time.Hour, nil
		}
		return "", 0, err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"` // seconds
	}
	in := map[string]string{"client_id": cfg.APIKey, "client_secret": cfg.APISecret}
	if err := postJSON(ctx, c.http, "paygate", cfg.BaseURL+"/auth/token", cfg.APIKey, in, &resp); err != nil {
		return "", 0, err
	}
	return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
}

// RegisterMandate creates an eMandate registration and returns the provider
// reference number.
func (c *PaymentsClient) RegisterMandate(ctx context.Context, orgID string, env Environment, token string, amount float64, collectionDate time.Time) (string, error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "paygate")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return "MOCK-" + uuid.NewString()[:8], nil
		}
		return "", err
	}

	var resp struct {
		ReferenceNo string `json:"reference_no"`
	}
	in := map[string]any{
		"amount":          amount,
		"collection_date": collectionDate.Format("2006-01-02"),
	}
	if err := postJSON(ctx, c.http, "paygate", cfg.BaseURL+"/mandates", token, in, &resp); err != nil {
		return "", err
	}
	return resp.ReferenceNo, nil
}

// MandateStatus polls a mandate registration. Mock mandates report
// "registered" so UAT flows can progress.
func (c *PaymentsClient) MandateStatus(ctx context.Context, orgID string, env Environment, token, providerRef string) (status, umrn string, err error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "paygate")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return "registered", "MOCKUMRN0001", nil
		}
		return "", "", err
	}

	var resp struct {
		Status string `json:"status"`
		UMRN   string `json:"umrn"`
	}
	url := fmt.Sprintf("%s/mandates/%s", cfg.BaseURL, providerRef)
	if err := getJSON(ctx, c.http, "paygate", url, token, &resp); err != nil {
		return "", "", err
	}
	return resp.Status, resp.UMRN, nil
}

// PennyDrop runs the gateway's account-validation drop and returns the
// registered holder name alongside the validity flag.
func (c *PaymentsClient) PennyDrop(ctx context.Context, orgID string, env Environment, token, account, ifsc string) (valid bool, holderName string, err error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "paygate")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return true, "MOCK HOLDER", nil
		}
		return false, "", err
	}

	var resp struct {
		Valid      bool   `json:"account_valid"`
		HolderName string `json:"holder_name"`
	}
	in := map[string]string{"account_number": account, "ifsc": ifsc}
	if err := postJSON(ctx, c.http, "paygate", cfg.BaseURL+"/verification/penny-drop", token, in, &resp); err != nil {
		return false, "", err
	}
	return resp.Valid, resp.HolderName, nil
}

// Payout initiates a disbursement transfer and returns the transfer ref.
func (c *PaymentsClient) Payout(ctx context.Context, orgID string, env Environment, token string, amount float64, account, ifsc string) (string, error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "paygate")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return "MOCKPAYOUT-" + uuid.NewString()[:8], nil
		}
		return "", err
	}

	var resp struct {
		TransferRef string `json:"transfer_ref"`
	}
	in := map[string]any{"amount": amount, "account_number": account, "ifsc": ifsc}
	if err := postJSON(ctx, c.http, "paygate", cfg.BaseURL+"/payouts", token, in, &resp); err != nil {
		return "", err
	}
	return resp.TransferRef, nil
}
