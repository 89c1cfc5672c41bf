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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-dataspace/run-access/access"
	"github.com/go-dataspace/run-access/internal/authforwarder"
	"github.com/go-dataspace/run-access/internal/view"
	"github.com/go-dataspace/run-access/logging"
	"github.com/google/uuid"
)

const maxBodySize = 4 << 10

type modeResolver interface {
	Resolve(ctx context.Context, b access.Bitstream, itemID *uuid.UUID) (access.Mode, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, src access.Source) access.UserIdentity
}

type accessHandlers struct {
	endpoints   access.Endpoints
	selfURL     *url.URL
	modes       modeResolver
	signer      access.SignedURLIssuer
	identities  identityResolver
	licences    access.LicenceIssuer
	signposting access.SignpostingSource
}

type routeLinks struct {
	Download string `json:"download"`
	Preview  string `json:"preview"`
	Viewer   string `json:"viewer"`
	Licence  string `json:"licence"`
}

type accessResponse struct {
	access.Mode
	Links routeLinks `json:"links"`
}

type licenceRequest struct {
	Password string `json:"password"`
}

func bitstreamFromRequest(r *http.Request) (access.Bitstream, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return access.Bitstream{}, badRequest("Invalid bitstream ID", err)
	}
	return access.Bitstream{ID: id}, nil
}

func (ah *accessHandlers) links(b access.Bitstream) routeLinks {
	base := ah.selfURL.JoinPath("bitstreams", b.ID.String())
	return routeLinks{
		Download: base.JoinPath("download").String(),
		Preview:  base.JoinPath("preview").String(),
		Viewer:   base.JoinPath("viewer").String(),
		Licence:  base.JoinPath("licence").String(),
	}
}

func (ah *accessHandlers) accessHandler(w http.ResponseWriter, r *http.Request) error {
	b, err := bitstreamFromRequest(r)
	if err != nil {
		return err
	}
	var itemID *uuid.UUID
	if raw := r.URL.Query().Get("item"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest("Invalid item ID", err)
		}
		itemID = &id
	}

	mode, err := ah.modes.Resolve(r.Context(), b, itemID)
	if err != nil {
		return err
	}
	return encodeJSON(w, http.StatusOK, accessResponse{Mode: mode, Links: ah.links(b)})
}

// downloadHandler redirects to the signed content URL. The signposting links are fetched
// alongside the signed URL, a failure to get them only loses the Link header.
func (ah *accessHandlers) downloadHandler(w http.ResponseWriter, r *http.Request) error {
	b, err := bitstreamFromRequest(r)
	if err != nil {
		return err
	}
	ctx := r.Context()
	logger := logging.Extract(ctx)
	scope := view.New(ctx)
	defer scope.Close()

	var signed string
	var signErr error
	contentURL := ah.endpoints.ContentURL(b)
	view.Go(scope, "sign:"+contentURL, func(ctx context.Context) (string, error) {
		return ah.signer.Issue(ctx, contentURL)
	}, func(s string, err error) {
		signed, signErr = s, err
	})
	view.Go(scope, "signposting:"+b.ID.String(), func(ctx context.Context) ([]access.SignpostingLink, error) {
		return ah.signposting.GetLinks(ctx, b.ID)
	}, func(links []access.SignpostingLink, err error) {
		if err != nil {
			logger.Warn("Could not fetch signposting links", "err", err)
			return
		}
		access.SetLinkHeader(w.Header(), links)
	})
	scope.Wait()

	if signErr != nil {
		return signErr
	}
	http.Redirect(w, r, signed, http.StatusFound)
	return nil
}

func (ah *accessHandlers) previewHandler(w http.ResponseWriter, r *http.Request) error {
	b, err := bitstreamFromRequest(r)
	if err != nil {
		return err
	}
	signed, err := ah.signer.Issue(r.Context(), ah.endpoints.PreviewURL(b))
	if err != nil {
		return err
	}
	http.Redirect(w, r, access.PreviewTarget(signed), http.StatusFound)
	return nil
}

func (ah *accessHandlers) viewerHandler(w http.ResponseWriter, r *http.Request) error {
	b, err := bitstreamFromRequest(r)
	if err != nil {
		return err
	}
	signed, err := ah.signer.Issue(r.Context(), ah.endpoints.ContentURL(b))
	if err != nil {
		return err
	}
	http.Redirect(w, r, ah.endpoints.ViewerTarget(signed), http.StatusFound)
	return nil
}

// licenceHandler requests an LCP licence for the bitstream and hands it out as a download.
func (ah *accessHandlers) licenceHandler(w http.ResponseWriter, r *http.Request) error {
	b, err := bitstreamFromRequest(r)
	if err != nil {
		return err
	}
	var req licenceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("Invalid request body", err)
	}
	if req.Password == "" {
		return access.ErrMissingCredential
	}

	ctx := r.Context()
	scope := view.New(ctx)
	defer scope.Close()

	var identity access.UserIdentity
	src := access.SourceFromCredentials(authforwarder.Extract(ctx))
	view.Go(scope, "identity", func(ctx context.Context) (access.UserIdentity, error) {
		return ah.identities.Resolve(ctx, src), nil
	}, func(id access.UserIdentity, _ error) {
		identity = id
	})
	var signed string
	var signErr error
	contentURL := ah.endpoints.ContentURL(b)
	view.Go(scope, "sign:"+contentURL, func(ctx context.Context) (string, error) {
		return ah.signer.Issue(ctx, contentURL)
	}, func(s string, err error) {
		signed, signErr = s, err
	})
	scope.Wait()
	if signErr != nil {
		return signErr
	}

	lic, err := ah.licences.Request(ctx, b.ID, identity, req.Password, signed)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", lic.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, lic.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(lic.Data); err != nil {
		logging.Extract(ctx).Error("Could not write licence", "err", err)
	}
	return nil
}
