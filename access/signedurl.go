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

package access

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-dataspace/run-access/access/shared"
	"github.com/go-dataspace/run-access/internal/authforwarder"
	"github.com/go-dataspace/run-access/logging"
)

const tokenParameter = "authentication-token"

// SignedURLIssuer turns a raw resource location into a short-lived signed URL.
// Every call must go to the token service, signed URLs are capabilities and are not cached.
type SignedURLIssuer interface {
	Issue(ctx context.Context, rawURL string) (string, error)
}

// TokenIssuer signs URLs with a short-lived token from the repository.
type TokenIssuer struct {
	requester shared.Requester
	tokenURL  *url.URL
}

// NewTokenIssuer returns an issuer for the repository API rooted at api.
func NewTokenIssuer(requester shared.Requester, api *url.URL) *TokenIssuer {
	return &TokenIssuer{
		requester: requester,
		tokenURL:  api.JoinPath("authn", "shortlivedtokens"),
	}
}

type shortLivedToken struct {
	Token string `json:"token"`
}

// Issue returns rawURL with a fresh token attached. Anonymous callers have no token to get,
// they are handed the raw URL and the repository decides what they may see.
func (ti *TokenIssuer) Issue(ctx context.Context, rawURL string) (string, error) {
	logger := logging.Extract(ctx).With("raw_url", rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &SignedURLIssuanceError{RawURL: rawURL, Err: err}
	}
	if authforwarder.Extract(ctx).Anonymous() {
		logger.Debug("Anonymous caller, not signing URL")
		return rawURL, nil
	}

	resp, err := ti.requester.SendHTTPRequest(ctx, http.MethodPost, ti.tokenURL, nil)
	if err != nil {
		return "", &SignedURLIssuanceError{RawURL: rawURL, Err: err}
	}
	var token shortLivedToken
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return "", &SignedURLIssuanceError{RawURL: rawURL, Err: err}
	}
	if token.Token == "" {
		return "", &SignedURLIssuanceError{RawURL: rawURL, Err: errors.New("empty token in response")}
	}

	q := u.Query()
	q.Set(tokenParameter, token.Token)
	u.RawQuery = q.Encode()
	logger.Debug("Issued signed URL")
	return u.String(), nil
}
