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
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-dataspace/run-access/access/shared"
)

// FeatureID names a repository authorization feature.
type FeatureID string

const (
	FeatureCanDownload     FeatureID = "canDownload"
	FeatureCanRequestACopy FeatureID = "canRequestACopy"
)

// Authorizer answers whether the current user has a feature on a resource.
type Authorizer interface {
	IsAuthorized(ctx context.Context, feature FeatureID, resource string) (bool, error)
}

// AuthorizationClient asks the repository's authorization search endpoint. The caller's
// credentials are forwarded by the requester.
type AuthorizationClient struct {
	requester shared.Requester
	searchURL *url.URL
}

// NewAuthorizationClient returns a client for the repository API rooted at api.
func NewAuthorizationClient(requester shared.Requester, api *url.URL) *AuthorizationClient {
	return &AuthorizationClient{
		requester: requester,
		searchURL: api.JoinPath("authz", "authorizations", "search", "object"),
	}
}

type authorizationPage struct {
	Embedded struct {
		Authorizations []json.RawMessage `json:"authorizations"`
	} `json:"_embedded"`
	Page struct {
		TotalElements int `json:"totalElements"`
	} `json:"page"`
}

func (ac *AuthorizationClient) IsAuthorized(ctx context.Context, feature FeatureID, resource string) (bool, error) {
	u := *ac.searchURL
	q := url.Values{}
	q.Set("uri", resource)
	q.Set("feature", string(feature))
	u.RawQuery = q.Encode()

	resp, err := ac.requester.SendHTTPRequest(ctx, http.MethodGet, &u, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrAuthorizationQuery, feature, err)
	}
	// No content means no authorizations.
	if len(resp.Body) == 0 {
		return false, nil
	}
	var page authorizationPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return false, fmt.Errorf("%w: %s: could not decode response: %w", ErrAuthorizationQuery, feature, err)
	}
	return page.Page.TotalElements > 0 || len(page.Embedded.Authorizations) > 0, nil
}
