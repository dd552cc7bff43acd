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
	"strconv"

	"github.com/xyproto/env/v2"
)

const (
	_DefaultMaxBenchmarks = 0 // unlimited
	_DefaultVerbose       = 1 // errors and warnings
)

var (
	MaxBenchmarks = parseOrDefault("MICROCREATOR_MAX_BENCHMARKS", _DefaultMaxBenchmarks, 0)
	Verbose       = parseOrDefault("MICROCREATOR_VERBOSE", _DefaultVerbose, 0)
	Check         = env.Bool("MICROCREATOR_CHECK")
)

// Reload rereads the environment and recomputes the defaults. The env
// package reads from a snapshot, so changes made with os.Setenv after start
// up are only seen after a reload.
func Reload() {
	env.Load()
	MaxBenchmarks = parseOrDefault("MICROCREATOR_MAX_BENCHMARKS", _DefaultMaxBenchmarks, 0)
	Verbose = parseOrDefault("MICROCREATOR_VERBOSE", _DefaultVerbose, 0)
	Check = env.Bool("MICROCREATOR_CHECK")
}

func parseOrDefault(key string, def int, min int) int {
	if str := env.Str(key); str == "" {
		return def
	} else if val, err := strconv.ParseUint(str, 0, 64); err != nil {
		panic("microcreator: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("microcreator: value too small for " + key)
	} else {
		return ret
	}
}
