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
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-dataspace/run-access/access"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Viper configuration keys.
const (
	listenAddr    = "server.listenAddr"
	port          = "server.port"
	healthPort    = "server.healthPort"
	externalURL   = "server.externalURL"
	repositoryURL = "repository.url"
	uiURL         = "repository.uiURL"
	licenceURL    = "licence.url"
	viewerURL     = "viewer.url"
	requestACopy  = "access.requestACopy"
	trustForward  = "identity.trustForwarded"
	sessionMemory = "session.inMemory"
	sessionDBPath = "session.dbPath"
	sessionTTL    = "session.ttl"
	sessionCookie = "session.cookie"
	httpTimeout   = "http.timeout"
)

type config struct {
	ListenAddr    string        `validate:"required,ip"`
	Port          int           `validate:"min=1,max=65535"`
	HealthPort    int           `validate:"min=1,max=65535,nefield=Port"`
	ExternalURL   string        `validate:"required,http_url"`
	RepositoryURL string        `validate:"required,http_url"`
	UIURL         string        `validate:"required,http_url"`
	LicenceURL    string        `validate:"required,http_url"`
	ViewerURL     string        `validate:"required,http_url"`
	RequestACopy  bool
	TrustForward  bool
	SessionMemory bool
	SessionDBPath string        `validate:"required_if=SessionMemory false"`
	SessionTTL    time.Duration `validate:"gte=1s"`
	SessionCookie string        `validate:"required"`
	HTTPTimeout   time.Duration `validate:"gte=1s"`
}

func configFromViper() config {
	return config{
		ListenAddr:    viper.GetString(listenAddr),
		Port:          viper.GetInt(port),
		HealthPort:    viper.GetInt(healthPort),
		ExternalURL:   viper.GetString(externalURL),
		RepositoryURL: viper.GetString(repositoryURL),
		UIURL:         viper.GetString(uiURL),
		LicenceURL:    viper.GetString(licenceURL),
		ViewerURL:     viper.GetString(viewerURL),
		RequestACopy:  viper.GetBool(requestACopy),
		TrustForward:  viper.GetBool(trustForward),
		SessionMemory: viper.GetBool(sessionMemory),
		SessionDBPath: viper.GetString(sessionDBPath),
		SessionTTL:    viper.GetDuration(sessionTTL),
		SessionCookie: viper.GetString(sessionCookie),
		HTTPTimeout:   viper.GetDuration(httpTimeout),
	}
}

func (c config) validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

func (c config) endpoints() (access.Endpoints, error) {
	var e access.Endpoints
	var err error
	for _, p := range []struct {
		dst **url.URL
		raw string
	}{
		{&e.API, c.RepositoryURL},
		{&e.UI, c.UIURL},
		{&e.Licence, c.LicenceURL},
		{&e.Viewer, c.ViewerURL},
	} {
		if *p.dst, err = url.Parse(p.raw); err != nil {
			return access.Endpoints{}, fmt.Errorf("invalid URL %s: %w", p.raw, err)
		}
	}
	return e, nil
}
