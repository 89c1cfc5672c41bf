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
	"testing"

	"github.com/go-dataspace/run-access/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMode(t *testing.T) {
	type args struct {
		canDownload, canRequestACopy, hasItemContext bool
	}
	tests := []struct {
		name string
		args args
		want access.Decision
	}{
		{"download, copy, item", args{true, true, true}, access.Direct},
		{"download, copy, no item", args{true, true, false}, access.Direct},
		{"download, no copy, item", args{true, false, true}, access.Direct},
		{"download only", args{true, false, false}, access.Direct},
		{"copy with item", args{false, true, true}, access.RequestCopy},
		{"copy without item falls back", args{false, true, false}, access.Direct},
		{"nothing with item falls back", args{false, false, true}, access.Direct},
		{"nothing falls back", args{false, false, false}, access.Direct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := access.ResolveMode(tt.args.canDownload, tt.args.canRequestACopy, tt.args.hasItemContext)
			assert.Equal(t, tt.want, got)
			// Same inputs, same answer.
			assert.Equal(t, got, access.ResolveMode(tt.args.canDownload, tt.args.canRequestACopy, tt.args.hasItemContext))
		})
	}
}

func TestDecisionText(t *testing.T) {
	for _, d := range []access.Decision{access.Direct, access.RequestCopy, access.Denied} {
		b, err := d.MarshalText()
		require.NoError(t, err)
		var back access.Decision
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, d, back)
	}
	var d access.Decision
	assert.Error(t, d.UnmarshalText([]byte("maybe")))
}

func TestModeResolverRequestCopy(t *testing.T) {
	auth := &mockAuthorizer{answers: map[access.FeatureID]bool{
		access.FeatureCanDownload:     false,
		access.FeatureCanRequestACopy: true,
	}}
	mr := &access.ModeResolver{Authorizer: auth, Endpoints: endpoints, RequestACopy: true}

	mode, err := mr.Resolve(context.Background(), access.Bitstream{ID: bitstreamID}, &itemID)
	require.NoError(t, err)
	assert.Equal(t, access.RequestCopy, mode.Decision)
	assert.False(t, mode.CanDownload)
	assert.Equal(t,
		"http://ui.example.org/items/"+itemID.String()+"/request-a-copy?bitstream="+bitstreamID.String(),
		mode.Href)
	assert.Equal(t, 2, auth.queries)

	b, err := json.Marshal(mode)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"decision":"request-copy"`)
}

func TestModeResolverDirect(t *testing.T) {
	auth := &mockAuthorizer{answers: map[access.FeatureID]bool{
		access.FeatureCanDownload: true,
	}}
	mr := &access.ModeResolver{Authorizer: auth, Endpoints: endpoints, RequestACopy: true}

	mode, err := mr.Resolve(context.Background(), access.Bitstream{ID: bitstreamID}, nil)
	require.NoError(t, err)
	assert.Equal(t, access.Direct, mode.Decision)
	assert.True(t, mode.CanDownload)
	assert.Equal(t, "http://ui.example.org/bitstreams/"+bitstreamID.String()+"/download", mode.Href)
}

func TestModeResolverRequestACopyDisabled(t *testing.T) {
	auth := &mockAuthorizer{}
	mr := &access.ModeResolver{Authorizer: auth, Endpoints: endpoints, RequestACopy: false}

	mode, err := mr.Resolve(context.Background(), access.Bitstream{ID: bitstreamID}, &itemID)
	require.NoError(t, err)
	assert.Equal(t, access.Direct, mode.Decision)
	assert.True(t, mode.CanDownload)
	assert.Equal(t, 0, auth.queries)
}

func TestModeResolverAuthorizerError(t *testing.T) {
	auth := &mockAuthorizer{err: access.ErrAuthorizationQuery}
	mr := &access.ModeResolver{Authorizer: auth, Endpoints: endpoints, RequestACopy: true}

	_, err := mr.Resolve(context.Background(), access.Bitstream{ID: bitstreamID}, &itemID)
	assert.True(t, errors.Is(err, access.ErrAuthorizationQuery))
}

func TestAuthorizationClient(t *testing.T) {
	mr := newMockRequester()
	path := "/server/api/authz/authorizations/search/object"
	mr.respond(path, `{"_embedded":{"authorizations":[{"id":"x"}]},"page":{"totalElements":1}}`)
	ac := access.NewAuthorizationClient(mr, endpoints.API)

	ok, err := ac.IsAuthorized(context.Background(), access.FeatureCanDownload, endpoints.Self(access.Bitstream{ID: bitstreamID}))
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, mr.sent, 1)
	q := mr.sent[0].u.Query()
	assert.Equal(t, "canDownload", q.Get("feature"))
	assert.Equal(t, "http://repo.example.org/server/api/core/bitstreams/"+bitstreamID.String(), q.Get("uri"))

	mr.respond(path, `{"page":{"totalElements":0}}`)
	ok, err = ac.IsAuthorized(context.Background(), access.FeatureCanRequestACopy, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.respond(path, ``)
	ok, err = ac.IsAuthorized(context.Background(), access.FeatureCanRequestACopy, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.fail(path, errors.New("boom"))
	_, err = ac.IsAuthorized(context.Background(), access.FeatureCanRequestACopy, "x")
	assert.True(t, errors.Is(err, access.ErrAuthorizationQuery))
}
