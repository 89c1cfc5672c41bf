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

package authinjector_test

import (
	"context"
	"testing"

	"github.com/go-dataspace/run-access/internal/client/authinjector"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestInjectUnaryAuthInterceptor(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want []string
	}{
		{"with authorization", "Bearer abc", []string{"Bearer abc"}},
		{"without authorization", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
				md, _ := metadata.FromOutgoingContext(ctx)
				got = md.Get("authorization")
				return nil
			}
			interceptor := authinjector.InjectUnaryAuthInterceptor(tt.val)
			err := interceptor(context.Background(), "/grpc.health.v1.Health/Check", nil, nil, nil, invoker)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
