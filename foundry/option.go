// Copyright (c) Microsoft. All rights reserved.

package foundry

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// DefaultAPIVersion is the api-version sent when none is configured.
const DefaultAPIVersion = "2025-05-01"

// DefaultTokenScope is the Azure AD scope of the Foundry Agent Service.
const DefaultTokenScope = "https://ai.azure.com/.default"

// clientConfig holds resolved configuration for the Foundry client.
type clientConfig struct {
	apiKey          string
	apiVersion      string
	httpClient      *http.Client
	headers         map[string]string
	azureCredential azcore.TokenCredential
	tokenScope      string
}

// Option configures a Foundry [Client].
type Option func(*clientConfig)

// WithAPIKey authenticates requests with the project's api-key header.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithAzureCredential enables Azure AD token authentication using the provided credential.
// When set, the client obtains a token per request instead of using an API key.
func WithAzureCredential(cred azcore.TokenCredential) Option {
	return func(c *clientConfig) { c.azureCredential = cred }
}

// WithTokenScope overrides the scope requested from the Azure credential.
func WithTokenScope(scope string) Option {
	return func(c *clientConfig) { c.tokenScope = scope }
}

// WithAPIVersion overrides the api-version query parameter.
func WithAPIVersion(version string) Option {
	return func(c *clientConfig) { c.apiVersion = version }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) { c.headers = headers }
}
