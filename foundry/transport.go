// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

// transport is an unexported interface for HTTP communication.
// The default implementation uses net/http; tests inject a mock.
type transport interface {
	do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error)
}

// httpTransport is the default transport using net/http.
type httpTransport struct {
	client          *http.Client
	endpoint        string
	apiKey          string
	apiVersion      string
	headers         map[string]string
	azureCredential azcore.TokenCredential
	tokenScope      string
}

func newHTTPTransport(endpoint string, opts *clientConfig) *httpTransport {
	t := &httpTransport{
		client:          opts.httpClient,
		endpoint:        strings.TrimRight(endpoint, "/"),
		apiKey:          opts.apiKey,
		apiVersion:      opts.apiVersion,
		headers:         opts.headers,
		azureCredential: opts.azureCredential,
		tokenScope:      opts.tokenScope,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.apiVersion == "" {
		t.apiVersion = DefaultAPIVersion
	}
	if t.tokenScope == "" {
		t.tokenScope = DefaultTokenScope
	}
	return t
}

func (t *httpTransport) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("api-version", t.apiVersion)

	req, err := http.NewRequestWithContext(ctx, method, t.endpoint+path+"?"+q.Encode(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	switch {
	case t.azureCredential != nil:
		token, err := t.azureCredential.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{t.tokenScope},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: get azure token: %w", agents.ErrAuth, err)
		}
		slog.DebugContext(ctx, "using Azure AD token authentication", "token_expires_on", token.ExpiresOn)
		req.Header.Set("Authorization", "Bearer "+token.Token)
	case t.apiKey != "":
		req.Header.Set("api-key", t.apiKey)
	}

	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %w", agents.ErrService, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, parseErrorResponse(resp)
	}

	return resp, nil
}

// parseErrorResponse reads an error response body and returns a typed error.
func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	svcErr := &agents.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Code:       apiErr.Error.Code,
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		svcErr.Err = agents.ErrAuth
	case http.StatusNotFound:
		svcErr.Err = agents.ErrNotFound
	case http.StatusTooManyRequests:
		svcErr.Err = agents.ErrRateLimited
	case http.StatusBadRequest:
		svcErr.Err = agents.ErrInvalidRequest
	default:
		svcErr.Err = agents.ErrService
	}

	return svcErr
}

// decodeResponse reads a JSON body into v and closes it.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", agents.ErrService, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: parse response: %v", agents.ErrInvalidResponse, err)
	}
	return nil
}
