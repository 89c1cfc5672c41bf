// Copyright 2024 go-dataspace
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package shared contains the outbound HTTP plumbing used by the access clients.
package shared

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-dataspace/run-access/internal/authforwarder"
	"github.com/go-dataspace/run-access/logging"
)

// StatusError is returned when the remote end answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received status code %d", e.StatusCode)
}

// Response is the body and content type of a successful response.
type Response struct {
	ContentType string
	Body        []byte
}

// RequestOption changes a single outgoing request.
type RequestOption func(*http.Request)

// WithAccept sets the accept header, the default is application/json.
func WithAccept(accept string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Accept", accept)
	}
}

// WithHeader sets an arbitrary header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// Requester sends a single HTTP request. Implementations must not retry.
type Requester interface {
	SendHTTPRequest(
		ctx context.Context, method string, url *url.URL, reqBody []byte, opts ...RequestOption,
	) (*Response, error)
}

// HTTPRequester is the default Requester.
type HTTPRequester struct {
	Client *http.Client
}

// NewHTTPRequester returns a requester that forwards the caller's credentials. Only use it
// for the repository API.
func NewHTTPRequester(timeout time.Duration) *HTTPRequester {
	return &HTTPRequester{
		Client: &http.Client{
			Timeout: timeout,
			Transport: authforwarder.AuthRoundTripper{
				Proxied: http.DefaultTransport,
			},
		},
	}
}

// NewPlainHTTPRequester returns a requester that never forwards the caller's credentials.
func NewPlainHTTPRequester(timeout time.Duration) *HTTPRequester {
	return &HTTPRequester{
		Client: &http.Client{Timeout: timeout},
	}
}

func (hr *HTTPRequester) SendHTTPRequest(
	ctx context.Context, method string, url *url.URL, reqBody []byte, opts ...RequestOption,
) (*Response, error) {
	if hr.Client == nil {
		hr.Client = NewPlainHTTPRequester(0).Client
	}
	logger := logging.Extract(ctx).With("method", method, "target_url", url.String())
	logger.Debug("Doing HTTP request")

	var payload io.Reader
	if reqBody != nil {
		payload = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url.String(), payload)
	if err != nil {
		logger.Error("Failed to create request", "err", err)
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	resp, err := hr.Client.Do(req)
	if err != nil {
		logger.Error("Failed to send request", "err", err)
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read body", "err", err)
		return nil, fmt.Errorf("could not read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("Received non-200 status code", "status_code", resp.StatusCode, "body", string(respBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	return &Response{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// MustParseURL parses u or panics, meant for constants and tests.
func MustParseURL(u string) *url.URL {
	pu, err := url.Parse(u)
	if err != nil {
		panic(err.Error())
	}
	return pu
}
