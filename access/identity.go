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
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-dataspace/run-access/internal/authforwarder"
	"github.com/go-dataspace/run-access/logging"
)

// UserIdentity is the display identity of the requesting user. It is best effort, may be
// empty, and must never be used to authorize anything.
type UserIdentity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Empty returns true if nothing is known about the user.
func (u UserIdentity) Empty() bool {
	return u.Email == "" && u.Name == ""
}

// Source is everything an identity strategy may look at.
type Source struct {
	Authorization  string
	SessionID      string
	ForwardedEmail string
	ForwardedName  string
}

// SourceFromCredentials builds a source from the credentials captured on the request.
func SourceFromCredentials(creds authforwarder.Credentials) Source {
	return Source{
		Authorization:  creds.Authorization,
		SessionID:      creds.SessionID,
		ForwardedEmail: creds.ForwardedEmail,
		ForwardedName:  creds.ForwardedUser,
	}
}

// IdentityStrategy is one way of finding out who the user is.
//
// Lookup returns ErrStrategyUnavailable if the strategy does not apply to the source at all,
// nil without an error if it applies but found nobody, and an error if it failed.
type IdentityStrategy interface {
	Name() string
	Lookup(ctx context.Context, src Source) (*UserIdentity, error)
}

// IdentityResolver tries its strategies in order and uses the first one that finds the user.
type IdentityResolver struct {
	strategies []IdentityStrategy
}

// NewIdentityResolver returns a resolver trying the strategies in the given order.
func NewIdentityResolver(strategies ...IdentityStrategy) *IdentityResolver {
	return &IdentityResolver{strategies: strategies}
}

// Resolve never fails. If no strategy finds the user it falls back to the claims in the
// bearer token, and if that fails too the identity stays empty.
func (ir *IdentityResolver) Resolve(ctx context.Context, src Source) UserIdentity {
	logger := logging.Extract(ctx)
	for _, s := range ir.strategies {
		identity, err := lookup(ctx, s, src)
		switch {
		case errors.Is(err, ErrStrategyUnavailable):
			continue
		case err != nil:
			logger.Warn("Identity strategy failed", "strategy", s.Name(), "err", err)
			continue
		case identity == nil:
			continue
		}
		logger.Debug("Resolved identity", "strategy", s.Name())
		return *identity
	}

	identity, err := DecodeBearerIdentity(src.Authorization)
	if err != nil {
		logger.Warn("Could not resolve user identity", "err", errors.Join(ErrIdentityUnavailable, err))
		return UserIdentity{}
	}
	logger.Debug("Resolved identity", "strategy", "bearer-token")
	return identity
}

// lookup keeps a panicking strategy from taking the request down with it.
func lookup(ctx context.Context, s IdentityStrategy, src Source) (identity *UserIdentity, err error) {
	defer func() {
		if r := recover(); r != nil {
			identity = nil
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	return s.Lookup(ctx, src)
}

type tokenClaims struct {
	Email    string `json:"email"`
	Sub      string `json:"sub"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// DecodeBearerIdentity reads the email and name claims from the payload of a JWT style
// token. The signature is not checked, the result is only fit for display.
func DecodeBearerIdentity(authorization string) (UserIdentity, error) {
	token := strings.TrimSpace(authorization)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return UserIdentity{}, fmt.Errorf("%w: no token", ErrTokenDecode)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return UserIdentity{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrTokenDecode, len(parts))
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return UserIdentity{}, fmt.Errorf("%w: %w", ErrTokenDecode, err)
	}
	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return UserIdentity{}, fmt.Errorf("%w: %w", ErrTokenDecode, err)
	}

	identity := UserIdentity{Email: claims.Email, Name: claims.Name}
	if identity.Email == "" {
		identity.Email = claims.Sub
	}
	if identity.Name == "" {
		identity.Name = claims.Username
	}
	return identity, nil
}

// decodeSegment accepts both the URL and the standard alphabet, with or without padding.
func decodeSegment(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
