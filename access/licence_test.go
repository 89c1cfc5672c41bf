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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-dataspace/run-access/access"
	"github.com/go-dataspace/run-access/access/shared"
	"github.com/go-dataspace/run-access/internal/authforwarder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var licencePath = "/api/lcp/download/" + bitstreamID.String()

func TestLicenceRequest(t *testing.T) {
	mr := newMockRequester()
	mr.responses[licencePath] = mockResponse{resp: &shared.Response{
		ContentType: "application/vnd.readium.lcp.license.v1.0+json",
		Body:        []byte("licence-bytes"),
	}}
	lc := access.NewLicenceClient(mr, endpoints.Licence)
	identity := access.UserIdentity{Email: "a@b.com", Name: "A"}
	signed := "http://repo.example.org/server/api/core/bitstreams/x/content?authentication-token=t"

	lic, err := lc.Request(context.Background(), bitstreamID, identity, "hunter2", signed)
	require.NoError(t, err)
	assert.Equal(t, bitstreamID.String()+".lcpl", lic.Filename)
	assert.Equal(t, []byte("licence-bytes"), lic.Data)
	assert.Equal(t, "application/vnd.readium.lcp.license.v1.0+json", lic.ContentType)

	require.Len(t, mr.sent, 1)
	assert.Equal(t, http.MethodPost, mr.sent[0].method)
	var body map[string]string
	require.NoError(t, json.Unmarshal(mr.sent[0].reqBody, &body))
	assert.Equal(t, map[string]string{
		"userEmail":    "a@b.com",
		"userName":     "A",
		"userPassword": "hunter2",
		"signedUrl":    signed,
	}, body)
}

func TestLicenceRequestMissingCredential(t *testing.T) {
	mr := newMockRequester()
	lc := access.NewLicenceClient(mr, endpoints.Licence)

	lic, err := lc.Request(context.Background(), bitstreamID, access.UserIdentity{}, "", "http://x/y")
	assert.Nil(t, lic)
	assert.ErrorIs(t, err, access.ErrMissingCredential)
	assert.Equal(t, 0, mr.calls())
}

func TestLicenceRequestInvalidSignedURL(t *testing.T) {
	tests := []struct {
		name      string
		signedURL string
	}{
		{"empty", ""},
		{"not a URL", "content?authentication-token=t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := newMockRequester()
			lc := access.NewLicenceClient(mr, endpoints.Licence)

			_, err := lc.Request(context.Background(), bitstreamID, access.UserIdentity{}, "pw", tt.signedURL)
			assert.ErrorIs(t, err, access.ErrInvalidLicenceRequest)
			var licErr *access.LicenceIssuanceError
			assert.False(t, errors.As(err, &licErr))
			assert.Equal(t, 0, mr.calls())
		})
	}
}

func TestLicenceRequestSendsNoRepositoryCredentials(t *testing.T) {
	gotAuth := "unset"
	var gotPath string
	lcp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/vnd.readium.lcp.license.v1.0+json")
		_, _ = w.Write([]byte("licence-bytes"))
	}))
	defer lcp.Close()

	base := shared.MustParseURL(lcp.URL).JoinPath("api", "lcp", "download")
	lc := access.NewLicenceClient(shared.NewPlainHTTPRequester(time.Second), base)
	ctx := authforwarder.Inject(context.Background(), authforwarder.Credentials{
		Authorization: "Bearer repo-user-jwt",
	})

	lic, err := lc.Request(ctx, bitstreamID, access.UserIdentity{Email: "a@b.com"}, "pw",
		"http://repo.example.org/server/api/core/bitstreams/x/content?authentication-token=t")
	require.NoError(t, err)
	assert.Equal(t, []byte("licence-bytes"), lic.Data)
	assert.Equal(t, licencePath, gotPath)
	assert.Empty(t, gotAuth)
}

func TestLicenceRequestFailureNotRetried(t *testing.T) {
	mr := newMockRequester()
	mr.fail(licencePath, &shared.StatusError{StatusCode: http.StatusInternalServerError})
	lc := access.NewLicenceClient(mr, endpoints.Licence)

	_, err := lc.Request(context.Background(), bitstreamID, access.UserIdentity{}, "pw", "http://x/y")
	var licErr *access.LicenceIssuanceError
	require.True(t, errors.As(err, &licErr))
	assert.Equal(t, bitstreamID, licErr.BitstreamID)
	assert.Equal(t, http.StatusBadGateway, licErr.StatusCode())
	var statusErr *shared.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 1, mr.calls())
}
