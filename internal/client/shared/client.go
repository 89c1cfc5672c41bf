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

package shared

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	accessshared "github.com/go-dataspace/run-access/access/shared"
	"github.com/go-dataspace/run-access/internal/authforwarder"
	"github.com/go-dataspace/run-access/internal/client/authinjector"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GetRequester returns a requester for the RUN-ACCESS HTTP endpoint, along with a context
// carrying the configured authorization.
func GetRequester(ctx context.Context) (context.Context, *accessshared.HTTPRequester) {
	ctx = authforwarder.Inject(ctx, authforwarder.Credentials{
		Authorization: viper.GetString(Authorization),
	})
	return ctx, accessshared.NewHTTPRequester(viper.GetDuration(Timeout))
}

// BitstreamURL returns the URL of a bitstream route on the RUN-ACCESS endpoint.
func BitstreamURL(bitstreamID, route string) (*url.URL, error) {
	base, err := url.Parse(viper.GetString(Address))
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	return base.JoinPath("bitstreams", bitstreamID, route), nil
}

// ExplainError turns an error response of the RUN-ACCESS endpoint into something readable.
func ExplainError(err error) error {
	var statusErr *accessshared.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(statusErr.Body, &body) != nil || body.Error == "" {
		return err
	}
	return fmt.Errorf("%s (status %d)", body.Error, statusErr.StatusCode)
}

// GetHealthClient returns a configured health client and its connection.
func GetHealthClient() (healthpb.HealthClient, *grpc.ClientConn, error) {
	tlsCredentials, err := loadTLSCredentials()
	if err != nil {
		return nil, nil, err
	}

	conn, err := grpc.NewClient(
		viper.GetString(HealthAddress),
		grpc.WithTransportCredentials(tlsCredentials),
		grpc.WithChainUnaryInterceptor(
			authinjector.InjectUnaryAuthInterceptor(viper.GetString(Authorization)),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to endpoint: %w", err)
	}
	return healthpb.NewHealthClient(conn), conn, nil
}

func loadTLSCredentials() (credentials.TransportCredentials, error) {
	if viper.GetBool(InsecureConn) {
		return insecure.NewCredentials(), nil
	}

	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if cert := viper.GetString(CACert); cert != "" {
		pemServerCA, err := os.ReadFile(cert)
		if err != nil {
			return nil, fmt.Errorf("couldn't read CA file: %w", err)
		}

		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(pemServerCA) {
			return nil, fmt.Errorf("failed to add server CA certificate")
		}
		config.RootCAs = certPool
	}

	if viper.GetString(ClientCert) != "" && viper.GetString(ClientCertKey) != "" {
		cert, err := tls.LoadX509KeyPair(viper.GetString(ClientCert), viper.GetString(ClientCertKey))
		if err != nil {
			return nil, err
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return credentials.NewTLS(config), nil
}
