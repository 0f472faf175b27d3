package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ProviderError is a failure reported by the marketplace API itself, carrying
// the provider's identifying codes. Callers decide whether to retry.
type ProviderError struct {
	Code    string
	SubCode string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %s/%s: %s", e.Code, e.SubCode, e.Message)
}

type errorBody struct {
	Code    json.Number `json:"code"`
	SubCode string      `json:"sub_code"`
	Message string      `json:"msg"`
}

func (b *errorBody) toError() *ProviderError {
	return &ProviderError{Code: b.Code.String(), SubCode: b.SubCode, Message: b.Message}
}

// apiClient is the shared transport for the affiliate API: signed GET requests
// with a common parameter envelope.
type apiClient struct {
	host   string
	signer *Signer
	client *http.Client
}

func newAPIClient(host string, signer *Signer) apiClient {
	return apiClient{
		host:   host,
		signer: signer,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) get(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	all := make(map[string]string, len(params)+4)
	for k, v := range params {
		all[k] = v
	}
	all["method"] = method
	all["app_key"] = c.signer.AppKey()
	all["sign_method"] = "hmac-sha256"
	all["timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)

	q := url.Values{}
	for k, v := range all {
		q.Set(k, v)
	}
	q.Set("sign", c.signer.Sign(all))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}
	return body, nil
}
