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

package access_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-dataspace/run-access/access"
	"github.com/go-dataspace/run-access/access/shared"
	"github.com/google/uuid"
)

var (
	bitstreamID = uuid.MustParse("1c0a8c5e-6a8b-4c55-9a0f-6d3f5e2f9b10")
	itemID      = uuid.MustParse("9b7e2a44-0d0a-4d4e-8d2b-52c0f5d4b7a1")
	endpoints   = access.Endpoints{
		API:     shared.MustParseURL("http://repo.example.org/server/api"),
		UI:      shared.MustParseURL("http://ui.example.org"),
		Licence: shared.MustParseURL("http://lcp.example.org/api/lcp/download"),
		Viewer:  shared.MustParseURL("http://viewer.example.org/viewer"),
	}
)

type sentRequest struct {
	method  string
	u       *url.URL
	reqBody []byte
	header  http.Header
}

type mockResponse struct {
	resp *shared.Response
	err  error
}

// mockRequester answers by URL path and records every request.
type mockRequester struct {
	sync.Mutex
	responses map[string]mockResponse
	sent      []sentRequest
}

func newMockRequester() *mockRequester {
	return &mockRequester{responses: make(map[string]mockResponse)}
}

func (mr *mockRequester) respond(path string, body string) {
	mr.responses[path] = mockResponse{resp: &shared.Response{ContentType: "application/json", Body: []byte(body)}}
}

func (mr *mockRequester) fail(path string, err error) {
	mr.responses[path] = mockResponse{err: err}
}

func (mr *mockRequester) SendHTTPRequest(
	_ context.Context, method string, u *url.URL, reqBody []byte, opts ...shared.RequestOption,
) (*shared.Response, error) {
	req, _ := http.NewRequest(method, u.String(), nil)
	for _, opt := range opts {
		opt(req)
	}
	mr.Lock()
	defer mr.Unlock()
	mr.sent = append(mr.sent, sentRequest{method: method, u: u, reqBody: reqBody, header: req.Header})
	r, ok := mr.responses[u.Path]
	if !ok {
		return nil, &shared.StatusError{StatusCode: http.StatusNotFound}
	}
	return r.resp, r.err
}

func (mr *mockRequester) calls() int {
	mr.Lock()
	defer mr.Unlock()
	return len(mr.sent)
}

// mockAuthorizer answers per feature and counts queries.
type mockAuthorizer struct {
	sync.Mutex
	answers map[access.FeatureID]bool
	err     error
	queries int
}

func (ma *mockAuthorizer) IsAuthorized(_ context.Context, feature access.FeatureID, _ string) (bool, error) {
	ma.Lock()
	defer ma.Unlock()
	ma.queries++
	return ma.answers[feature], ma.err
}
