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
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-dataspace/run-access/logging"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateAndMarshal[T any](ctx context.Context, s T) ([]byte, error) {
	logger := logging.Extract(ctx)
	if err := validate.Struct(s); err != nil {
		return nil, handleValidationError(err, logger)
	}
	return json.Marshal(s)
}

func handleValidationError(err error, logger *slog.Logger) error {
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		logger.Error("Invalid validation", "error", err)
		return fmt.Errorf("invalid validation")
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			// Values are not logged, they include the passphrase.
			logger.Error(
				"Validation error",
				"Namespace", fe.Namespace(),
				"Field", fe.Field(),
				"Tag", fe.Tag(),
				"Param", fe.Param(),
			)
		}
		return fmt.Errorf("validation error: %w", err)
	}
	logger.Error("Unknown error", "error", err)
	return err
}
