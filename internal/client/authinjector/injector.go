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

// Package authinjector adds the client's authorization to outgoing gRPC calls.
package authinjector

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const authorizationKey = "authorization"

// InjectUnaryAuthInterceptor returns a unary client interceptor that sends `val` as the
// `authorization` metadata. An empty value sends nothing.
func InjectUnaryAuthInterceptor(val string) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string, req, reply any,
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if val != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, authorizationKey, val)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
