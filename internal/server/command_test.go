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

package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path          string
	authorization string
	body          map[string]string
}

type recorder struct {
	sync.Mutex
	requests []recordedRequest
}

func (rec *recorder) record(r *http.Request) {
	req := recordedRequest{path: r.URL.Path, authorization: r.Header.Get("Authorization")}
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &req.body)
	}
	rec.Lock()
	defer rec.Unlock()
	rec.requests = append(rec.requests, req)
}

func (rec *recorder) get() []recordedRequest {
	rec.Lock()
	defer rec.Unlock()
	return append([]recordedRequest(nil), rec.requests...)
}

// newWiredHandler serves the routes with the production clients against fake repository and
// licence services.
func newWiredHandler(t *testing.T, trustForward bool) (http.Handler, *recorder, *recorder) {
	t.Helper()
	repoRec, lcpRec := &recorder{}, &recorder{}
	repo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		repoRec.record(r)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/server/api/authn/status":
			_, _ = w.Write([]byte(`{"authenticated": false}`))
		case "/server/api/authn/shortlivedtokens":
			_, _ = w.Write([]byte(`{"token": "short-lived"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(repo.Close)
	lcp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lcpRec.record(r)
		w.Header().Set("Content-Type", "application/vnd.readium.lcp.license.v1.0+json")
		_, _ = w.Write([]byte("licence-bytes"))
	}))
	t.Cleanup(lcp.Close)

	c := validConfig()
	c.RepositoryURL = repo.URL + "/server/api"
	c.LicenceURL = lcp.URL + "/api/lcp/download"
	c.TrustForward = trustForward
	require.NoError(t, c.validate())
	ah, err := newAccessHandlers(c, nil)
	require.NoError(t, err)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return withMiddleware(logger, c.SessionCookie, GetRoutes(ah)), repoRec, lcpRec
}

func licencePost() *http.Request {
	req := httptest.NewRequest(http.MethodPost, bitstreamPath("licence"), strings.NewReader(`{"password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer repo-user-jwt")
	req.Header.Set("X-Forwarded-Email", "proxy@example.org")
	req.Header.Set("X-Forwarded-User", "Proxy User")
	return req
}

func TestLicenceServiceGetsNoRepositoryCredentials(t *testing.T) {
	h, repoRec, lcpRec := newWiredHandler(t, false)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, licencePost())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "licence-bytes", rr.Body.String())

	repoCalls := repoRec.get()
	require.NotEmpty(t, repoCalls)
	for _, req := range repoCalls {
		assert.Equal(t, "Bearer repo-user-jwt", req.authorization, req.path)
	}

	lcpCalls := lcpRec.get()
	require.Len(t, lcpCalls, 1)
	assert.Equal(t, "/api/lcp/download/"+bitstreamID.String(), lcpCalls[0].path)
	assert.Empty(t, lcpCalls[0].authorization)
	assert.Contains(t, lcpCalls[0].body["signedUrl"], "authentication-token=short-lived")
}

func TestForwardedUserOnlyWhenTrusted(t *testing.T) {
	tests := []struct {
		name         string
		trustForward bool
		wantEmail    string
		wantName     string
	}{
		{"untrusted", false, "", ""},
		{"trusted", true, "proxy@example.org", "Proxy User"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, lcpRec := newWiredHandler(t, tt.trustForward)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, licencePost())
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			lcpCalls := lcpRec.get()
			require.Len(t, lcpCalls, 1)
			assert.Equal(t, tt.wantEmail, lcpCalls[0].body["userEmail"])
			assert.Equal(t, tt.wantName, lcpCalls[0].body["userName"])
		})
	}
}
