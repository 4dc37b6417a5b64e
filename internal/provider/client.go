package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// newHTTPClient builds the shared retrying client used by every provider
// adapter. Retries cover transient transport errors and 5xx only.
func newHTTPClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = 15 * time.Second
	c.Logger = nil
	return c
}

// postJSON sends a bearer-authenticated JSON POST and decodes the response
// into out. Non-2xx responses come back as *Error tagged with the provider
// name; out may be nil when the body is irrelevant.
func postJSON(ctx context.Context, c *retryablehttp.Client, providerName, url, apiKey string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.Do(req)
	if err != nil {
		return &Error{Provider: providerName, StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Provider: providerName, StatusCode: resp.StatusCode, Message: providerMessage(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Provider: providerName, StatusCode: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

func getJSON(ctx context.Context, c *retryablehttp.Client, providerName, url, apiKey string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.Do(req)
	if err != nil {
		return &Error{Provider: providerName, StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Provider: providerName, StatusCode: resp.StatusCode, Message: providerMessage(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Provider: providerName, StatusCode: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

// providerMessage pulls a human-readable message out of an error body,
// falling back to the raw payload.
func providerMessage(raw []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if len(raw) > 256 {
		raw = raw[:256]
	}
	return string(raw)
}
