package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// SignSession is one provider-side signing session.
type SignSession struct {
	ProviderRef string
	SignerURL   string
	Provider    string
}

type ESignClient struct {
	cfgs ConfigRepository
	http *retryablehttp.Client
}

func NewESignClient(cfgs ConfigRepository) *ESignClient {
	return &ESignClient{cfgs: cfgs, http: newHTTPClient()}
}

func (c *ESignClient) Mode(ctx context.Context, orgID string, env Environment) Mode {
	if _, err := c.cfgs.Get(ctx, orgID, env, "signdesk"); err != nil {
		return ModeMock
	}
	return ModeLive
}

func (c *ESignClient) CreateSession(ctx context.Context, orgID string, env Environment, documentType, signerName, signerMobile string) (*SignSession, error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "signdesk")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			ref := uuid.NewString()
			return &SignSession{
				ProviderRef: ref,
				SignerURL:   "https://esign.mock.local/sign/" + ref,
				Provider:    "mock",
			}, nil
		}
		return nil, err
	}

	var resp struct {
		SessionID string `json:"session_id"`
		SignURL   string `json:"sign_url"`
	}
	in := map[string]string{
		"document_type": documentType,
		"signer_name":   signerName,
		"signer_mobile": signerMobile,
	}
	if err := postJSON(ctx, c.http, "signdesk", cfg.BaseURL+"/v2/sessions", cfg.APIKey, in, &resp); err != nil {
		return nil, err
	}
	return &SignSession{ProviderRef: resp.SessionID, SignerURL: resp.SignURL, Provider: "signdesk"}, nil
}

// SessionStatus returns the provider's view of a session: one of
// pending/sent/viewed/signed/expired/failed. Mock sessions stay "sent".
func (c *ESignClient) SessionStatus(ctx context.Context, orgID string, env Environment, providerRef string) (string, error) {
	cfg, err := c.cfgs.Get(ctx, orgID, env, "signdesk")
	if err != nil {
		if errors.Is(err, ErrConfigurationMissing) {
			return "sent", nil
		}
		return "", err
	}

	var resp struct {
		Status string `json:"status"`
	}
	url := fmt.Sprintf("%s/v2/sessions/%s", cfg.BaseURL, providerRef)
	if err := getJSON(ctx, c.http, "signdesk", url, cfg.APIKey, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}
