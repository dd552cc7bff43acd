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

package opts

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xyproto/env/v2"
)

func setenv(t *testing.T, key string, value string) {
	t.Setenv(key, value)
	env.Load()
}

func TestParseOrDefault(t *testing.T) {
	t.Cleanup(env.Load)
	setenv(t, "MICROCREATOR_TEST_VALUE", "")
	require.Equal(t, 7, parseOrDefault("MICROCREATOR_TEST_VALUE", 7, 0))
	setenv(t, "MICROCREATOR_TEST_VALUE", "0x10")
	require.Equal(t, 16, parseOrDefault("MICROCREATOR_TEST_VALUE", 7, 0))
	require.Panics(t, func() { parseOrDefault("MICROCREATOR_TEST_VALUE", 7, 32) })
	setenv(t, "MICROCREATOR_TEST_VALUE", "many")
	require.Panics(t, func() { parseOrDefault("MICROCREATOR_TEST_VALUE", 7, 0) })
}

func TestReload(t *testing.T) {
	max, verbose, check := MaxBenchmarks, Verbose, Check
	t.Cleanup(func() {
		env.Load()
		MaxBenchmarks, Verbose, Check = max, verbose, check
	})

	/* changes after start up are picked up by a reload */
	t.Setenv("MICROCREATOR_MAX_BENCHMARKS", "12")
	t.Setenv("MICROCREATOR_VERBOSE", "3")
	t.Setenv("MICROCREATOR_CHECK", "true")
	Reload()
	require.Equal(t, 12, MaxBenchmarks)
	require.Equal(t, 3, Verbose)
	require.True(t, Check)
	o := GetDefaultOptions()
	require.Equal(t, 12, o.MaxBenchmarks)
	require.True(t, o.Check)
}

func TestOptions_BenchmarkCap(t *testing.T) {
	o := Options{MaxBenchmarks: 10}
	require.Equal(t, 10, o.BenchmarkCap(0))
	require.Equal(t, 3, o.BenchmarkCap(3))
}
