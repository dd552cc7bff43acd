/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logs

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	require.Equal(t, slog.LevelError, Level(0))
	require.Equal(t, slog.LevelWarn, Level(1))
	require.Equal(t, slog.LevelInfo, Level(2))
	require.Equal(t, slog.LevelDebug, Level(5))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, 1)
	log.Info("hidden")
	log.Warn("shown", "pass", "Unrolling")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "pass=Unrolling")
	require.NotNil(t, Or(nil))
	require.Same(t, log, Or(log))
}
