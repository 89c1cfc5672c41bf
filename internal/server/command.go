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

// Package server provides the server subcommand.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-dataspace/run-access/access"
	"github.com/go-dataspace/run-access/access/shared"
	"github.com/go-dataspace/run-access/internal/cfg"
	"github.com/go-dataspace/run-access/internal/session"
	"github.com/go-dataspace/run-access/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

// Command is the server subcommand.
var Command = &cobra.Command{
	Use:   "server",
	Short: "Start the RUN-ACCESS server",
	Long: `Start the RUN-ACCESS server, it mediates access to the bitstreams of a repository
and hands out signed URLs and LCP licences.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return configFromViper().validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, ok := viper.Get("initCTX").(context.Context)
		if !ok {
			return fmt.Errorf("couldn't fetch initial context")
		}
		return run(ctx, configFromViper())
	},
}

func init() {
	cfg.AddPersistentFlag(Command, listenAddr, "address", "Listen address", "0.0.0.0")
	cfg.AddPersistentFlag(Command, port, "port", "Listen port", 8090)
	cfg.AddPersistentFlag(Command, healthPort, "health-port", "Port of the gRPC health service", 8091)
	cfg.AddPersistentFlag(
		Command, externalURL, "external-url", "URL this service is reachable on", "http://localhost:8090/")
	cfg.AddPersistentFlag(
		Command, repositoryURL, "repository-url", "Root of the repository REST API", "http://localhost:8080/server/api")
	cfg.AddPersistentFlag(Command, uiURL, "ui-url", "Root of the repository front-end", "http://localhost:4000")
	cfg.AddPersistentFlag(
		Command, licenceURL, "licence-url", "Base URL of the LCP licence service",
		"http://localhost:9001/api/lcp/download")
	cfg.AddPersistentFlag(Command, viewerURL, "viewer-url", "URL of the secure viewer", "http://localhost:9000/viewer")
	cfg.AddPersistentFlag(Command, requestACopy, "request-a-copy", "Enable the request-a-copy workflow", true)
	cfg.AddPersistentFlag(
		Command, trustForward, "trust-forwarded-user",
		"Take the user from the X-Forwarded-Email and X-Forwarded-User headers, only set behind a proxy that sets them",
		false)
	cfg.AddPersistentFlag(Command, sessionMemory, "session-in-memory", "Keep the session store in memory", true)
	cfg.AddPersistentFlag(Command, sessionDBPath, "session-db-path", "Directory of the session store", "")
	cfg.AddPersistentFlag(Command, sessionTTL, "session-ttl", "How long a session identity is kept", 30*time.Minute)
	cfg.AddPersistentFlag(Command, sessionCookie, "session-cookie", "Name of the session cookie", "dsSession")
	cfg.AddPersistentFlag(Command, httpTimeout, "http-timeout", "Timeout of outbound HTTP requests", 30*time.Second)
}

// newAccessHandlers wires the access clients. Only the repository clients forward the
// caller's credentials, the licence service is authorized by the signed URL alone.
func newAccessHandlers(c config, store access.IdentityStore) (*accessHandlers, error) {
	endpoints, err := c.endpoints()
	if err != nil {
		return nil, err
	}
	selfURL, err := url.Parse(c.ExternalURL)
	if err != nil {
		return nil, fmt.Errorf("invalid external URL: %w", err)
	}
	repository := shared.NewHTTPRequester(c.HTTPTimeout)

	authenticated := access.NewAuthenticatedUserStrategy(repository, endpoints.API)
	authenticated.Store = store
	strategies := []access.IdentityStrategy{
		authenticated,
		&access.SessionStoreStrategy{Store: store},
	}
	if c.TrustForward {
		strategies = append(strategies, access.ForwardedUserStrategy{})
	}
	return &accessHandlers{
		endpoints: endpoints,
		selfURL:   selfURL,
		modes: &access.ModeResolver{
			Authorizer:   access.NewAuthorizationClient(repository, endpoints.API),
			Endpoints:    endpoints,
			RequestACopy: c.RequestACopy,
		},
		signer:      access.NewTokenIssuer(repository, endpoints.API),
		identities:  access.NewIdentityResolver(strategies...),
		licences:    access.NewLicenceClient(shared.NewPlainHTTPRequester(c.HTTPTimeout), endpoints.Licence),
		signposting: access.NewSignpostingClient(repository, endpoints.API),
	}, nil
}

func run(ctx context.Context, c config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	logger := logging.Extract(ctx)

	// The store outlives the HTTP server so that in-flight requests can still use it.
	storeCtx, storeCancel := context.WithCancel(context.WithoutCancel(ctx))
	defer storeCancel()
	store, err := session.New(storeCtx, c.SessionMemory, c.SessionDBPath, c.SessionTTL)
	if err != nil {
		return err
	}

	ah, err := newAccessHandlers(c, store)
	if err != nil {
		return err
	}

	grpcServer, hs := newHealthServer(logger)
	lis, err := net.Listen("tcp", net.JoinHostPort(c.ListenAddr, strconv.Itoa(c.HealthPort)))
	if err != nil {
		return fmt.Errorf("could not listen on health port: %w", err)
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort(c.ListenAddr, strconv.Itoa(c.Port)),
		Handler:           withMiddleware(logger, c.SessionCookie, GetRoutes(ah)),
		ReadHeaderTimeout: 2 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		logger.Info("Starting health service", "listenAddr", c.ListenAddr, "port", c.HealthPort)
		if err := grpcServer.Serve(lis); err != nil {
			errs <- fmt.Errorf("health service stopped: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		logger.Info("Starting server", "listenAddr", c.ListenAddr, "port", c.Port, "externalURL", c.ExternalURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("server stopped: %w", err)
		}
	}()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-errs:
		logger.Error("Server failed, shutting down", "err", runErr)
	}

	hs.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutdownCancel()
	runErr = errors.Join(runErr, srv.Shutdown(shutdownCtx))
	grpcServer.GracefulStop()
	wg.Wait()
	return runErr
}
