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
	"testing"

	"github.com/go-dataspace/run-access/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeader(t *testing.T) {
	tests := []struct {
		name  string
		links []access.SignpostingLink
		want  string
	}{
		{
			name: "two links, one typed",
			links: []access.SignpostingLink{
				{Href: "https://x/1", Rel: "item"},
				{Href: "https://x/2", Rel: "item", Type: "text/html"},
			},
			want: `<https://x/1> ; rel="item", <https://x/2> ; rel="item" ; type="text/html"`,
		},
		{
			name: "order is kept",
			links: []access.SignpostingLink{
				{Href: "https://x/b", Rel: "cite-as"},
				{Href: "https://x/a", Rel: "author"},
			},
			want: `<https://x/b> ; rel="cite-as", <https://x/a> ; rel="author"`,
		},
		{
			name: "empty",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, access.BuildHeader(tt.links))
		})
	}
}

func TestSetLinkHeader(t *testing.T) {
	h := http.Header{}
	assert.False(t, access.SetLinkHeader(h, nil))
	_, present := h["Link"]
	assert.False(t, present)

	assert.True(t, access.SetLinkHeader(h, []access.SignpostingLink{{Href: "https://x/1", Rel: "item"}}))
	assert.Equal(t, `<https://x/1> ; rel="item"`, h.Get("Link"))
}

func TestSignpostingClient(t *testing.T) {
	mr := newMockRequester()
	mr.respond("/server/api/signposting/links/"+bitstreamID.String(),
		`[{"href":"https://x/1","rel":"collection"},{"href":"https://x/2","rel":"linkset","type":"application/linkset"}]`)
	sc := access.NewSignpostingClient(mr, endpoints.API)

	links, err := sc.GetLinks(context.Background(), bitstreamID)
	require.NoError(t, err)
	assert.Equal(t, []access.SignpostingLink{
		{Href: "https://x/1", Rel: "collection"},
		{Href: "https://x/2", Rel: "linkset", Type: "application/linkset"},
	}, links)

	_, err = sc.GetLinks(context.Background(), itemID)
	assert.Error(t, err)
}

func TestEndpoints(t *testing.T) {
	b := access.Bitstream{ID: bitstreamID}
	assert.Equal(t, "http://repo.example.org/server/api/core/bitstreams/"+bitstreamID.String()+"/content",
		endpoints.ContentURL(b))
	assert.Equal(t, "http://repo.example.org/server/api/core/bitstreams/"+bitstreamID.String()+"/preview",
		endpoints.PreviewURL(b))
	assert.Equal(t, "https://s/x?authentication-token=t#toolbar=0&navpanes=0&scrollbar=0",
		access.PreviewTarget("https://s/x?authentication-token=t"))
	assert.Equal(t,
		"http://viewer.example.org/viewer?url=https%3A%2F%2Fs%2Fx%3Fauthentication-token%3Dt#toolbar=0&navpanes=0&scrollbar=0",
		endpoints.ViewerTarget("https://s/x?authentication-token=t"))
}
