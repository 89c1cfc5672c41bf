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
	"strings"

	"github.com/go-dataspace/run-access/access/shared"
	"github.com/go-dataspace/run-access/logging"
)

// IdentityStore keeps identities per session.
type IdentityStore interface {
	// GetIdentity returns nil without an error if the session is unknown or expired.
	GetIdentity(ctx context.Context, sessionID string) (*UserIdentity, error)
	PutIdentity(ctx context.Context, sessionID string, identity UserIdentity) error
}

// AuthenticatedUserStrategy asks the repository who the bearer of the authorization header
// is. If a Store is set, found identities are remembered for the session.
type AuthenticatedUserStrategy struct {
	requester shared.Requester
	statusURL *url.URL
	Store     IdentityStore
}

// NewAuthenticatedUserStrategy returns a strategy for the repository API rooted at api.
func NewAuthenticatedUserStrategy(requester shared.Requester, api *url.URL) *AuthenticatedUserStrategy {
	u := api.JoinPath("authn", "status")
	u.RawQuery = url.Values{"embed": []string{"eperson"}}.Encode()
	return &AuthenticatedUserStrategy{
		requester: requester,
		statusURL: u,
	}
}

func (s *AuthenticatedUserStrategy) Name() string { return "authenticated-user" }

type metadataValue struct {
	Value string `json:"value"`
}

type authStatus struct {
	Authenticated bool `json:"authenticated"`
	Embedded      struct {
		EPerson *struct {
			Email    string                     `json:"email"`
			Name     string                     `json:"name"`
			Metadata map[string][]metadataValue `json:"metadata"`
		} `json:"eperson"`
	} `json:"_embedded"`
}

func firstValue(md map[string][]metadataValue, key string) string {
	if v := md[key]; len(v) > 0 {
		return v[0].Value
	}
	return ""
}

func (s *AuthenticatedUserStrategy) Lookup(ctx context.Context, src Source) (*UserIdentity, error) {
	if src.Authorization == "" {
		return nil, ErrStrategyUnavailable
	}
	resp, err := s.requester.SendHTTPRequest(
		ctx, http.MethodGet, s.statusURL, nil,
		shared.WithHeader("Authorization", src.Authorization),
	)
	if err != nil {
		return nil, err
	}
	var status authStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return nil, fmt.Errorf("could not decode authentication status: %w", err)
	}
	if !status.Authenticated || status.Embedded.EPerson == nil {
		return nil, nil
	}

	ep := status.Embedded.EPerson
	identity := &UserIdentity{Email: ep.Email, Name: ep.Name}
	if identity.Name == "" {
		identity.Name = strings.TrimSpace(
			firstValue(ep.Metadata, "eperson.firstname") + " " + firstValue(ep.Metadata, "eperson.lastname"))
	}

	if s.Store != nil && src.SessionID != "" {
		if err := s.Store.PutIdentity(ctx, src.SessionID, *identity); err != nil {
			logging.Extract(ctx).Warn("Could not remember identity for session", "err", err)
		}
	}
	return identity, nil
}

// SessionStoreStrategy looks the session up in the identity store.
type SessionStoreStrategy struct {
	Store IdentityStore
}

func (s *SessionStoreStrategy) Name() string { return "session-store" }

func (s *SessionStoreStrategy) Lookup(ctx context.Context, src Source) (*UserIdentity, error) {
	if s.Store == nil || src.SessionID == "" {
		return nil, ErrStrategyUnavailable
	}
	return s.Store.GetIdentity(ctx, src.SessionID)
}

// ForwardedUserStrategy uses the identity a trusted proxy put in front of the request.
type ForwardedUserStrategy struct{}

func (ForwardedUserStrategy) Name() string { return "forwarded-user" }

func (ForwardedUserStrategy) Lookup(_ context.Context, src Source) (*UserIdentity, error) {
	if src.ForwardedEmail == "" && src.ForwardedName == "" {
		return nil, ErrStrategyUnavailable
	}
	return &UserIdentity{Email: src.ForwardedEmail, Name: src.ForwardedName}, nil
}
