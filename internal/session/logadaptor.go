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

package session

import (
	"fmt"
	"log/slog"
	"strings"
)

// logAdaptor lets badger log through slog.
type logAdaptor struct {
	l *slog.Logger
}

func format(f string, v ...any) string {
	return strings.TrimSpace(fmt.Sprintf(f, v...))
}

func (la logAdaptor) Errorf(f string, v ...any) {
	la.l.Error(format(f, v...))
}

func (la logAdaptor) Warningf(f string, v ...any) {
	la.l.Warn(format(f, v...))
}

func (la logAdaptor) Infof(f string, v ...any) {
	la.l.Info(format(f, v...))
}

func (la logAdaptor) Debugf(f string, v ...any) {
	la.l.Debug(format(f, v...))
}
