package provider

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hashicorp/go-retryablehttp"
)

// KYCResult is the normalized outcome of one identity/bank verification call.
// Verified reflects the provider's own validity flag, not HTTP status.
type KYCResult struct {
	Verified bool
	Name     string
	DOB      string // YYYY-MM-DD when the provider returns it
	Address  string
	Provider string
	Raw      json.RawMessage
}

type VerificationClient struct {
	cfgs ConfigRepository
	http *retryablehttp.Client
}

func NewVerificationClient(cfgs ConfigRepository) *VerificationClient {
	return &VerificationClient{cfgs: cfgs, http: newHTTPClient()}
}

// Mode reports whether live credentials exist for the verification provider.
func (c *VerificationClient) Mode(ctx context.Context, orgID string, env Environment) Mode {
	if _, err := c.cfgs.Get(ctx, orgID, env, "kycbridge"); err != nil {
		return ModeMock
	}
	return ModeLive
}

type kycResponse struct {
	Valid   bool   `json:"valid"`
	Name    string `json:"registered_name"`
	DOB     string `json:"date_of_birth"`
	Address string `json:"address"`
}

func (c *VerificationClient) VerifyPAN(ctx context.Context, orgID string, env Environment, pan string) (*KYCResult, error) {
	return c.verify(ctx, orgID, env, "/v1/pan/verify", map[string]string{"pan": pan})
}

func (c *VerificationClient) VerifyAadhaar(ctx context.Context, orgID string, env Environment, aadhaar string) (*KYCResult, error) {
	return c.verify(ctx, orgID, env, "/v1/aadhaar/verify", map[string]string{"aadhaar": aadhaar})
}

func (c *VerificationClient) VerifyBankAccount(ctx context.Context, orgID string, env Environment, account, ifsc string) (*KYCResult, error) {
	return c.verify(ctx, orgID, env, "/v1/bank/verify", map[string]string{"account_number": account, "ifsc": ifsc})
}

func (c *VerificationClient) VerifyIFSC(ctx context.Context, orgID string, env Environment, ifsc string) (*KYCResult, error) {
	return c.verify(ctx, orgID, env, "/v1/ifsc/lookup", map[string]string{"ifsc": ifsc})
}

func (c *VerificationClient) verify(ctx context.Context, orgID string, env Environment, path string, payload map[string]string) (*KYCResult, error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "kycbridge")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return mockKYCResult(payload), nil
		}
		return nil, err
	}

	var resp kycResponse
	if err := postJSON(ctx, c.http, "kycbridge", cfg.BaseURL+path, cfg.APIKey, payload, &resp); err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(resp)
	return &KYCResult{
		Verified: resp.Valid,
		Name:     resp.Name,
		DOB:      resp.DOB,
		Address:  resp.Address,
		Provider: "kycbridge",
		Raw:      raw,
	}, nil
}

// mockKYCResult backs environments without live credentials with a
// deterministic successful verification.
func mockKYCResult(payload map[string]string) *KYCResult {
	raw, _ := json.Marshal(payload)
	return &KYCResult{
		Verified: true,
		Name:     "MOCK HOLDER",
		DOB:      "1990-01-01",
		Address:  "MOCK ADDRESS, IN",
		Provider: "mock",
		Raw:      raw,
	}
}
