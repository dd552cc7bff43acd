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

package microcreator

import (
	"fmt"
	"log/slog"

	"github.com/cloudwego/microcreator/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithMaxBenchmarks caps the number of outstanding candidates, which bounds
// the number of generated benchmarks.
//
// A positive "max_benchmarks" in the description takes priority over this
// option. Set this option to "0" disables the limit.
//
// The default value of this option is "0".
func WithMaxBenchmarks(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("microcreator: invalid benchmark limit: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxBenchmarks = n }
	}
}

// WithVerbose sets the logging verbosity: 0 for errors only, 1 adds warnings,
// 2 adds progress information and 3 traces every pass.
//
// The default value of this option is "1".
func WithVerbose(level int) Option {
	if level < 0 {
		panic(fmt.Sprintf("microcreator: invalid verbosity: %d", level))
	} else {
		return func(o *opts.Options) { o.Verbose = level }
	}
}

// WithCheck makes the emitter assemble every benchmark before writing it, and
// skip the ones that cannot be encoded.
func WithCheck(v bool) Option {
	return func(o *opts.Options) { o.Check = v }
}

// WithLogger replaces the default stderr logger, the verbosity is then up to
// the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *opts.Options) { o.Logger = l }
}

// SetMaxBenchmarks sets the default benchmark limit for every run from now on.
//
// This value can also be configured with the `MICROCREATOR_MAX_BENCHMARKS`
// environment variable.
//
// Returns the old opts.MaxBenchmarks value.
func SetMaxBenchmarks(n int) int {
	n, opts.MaxBenchmarks = opts.MaxBenchmarks, n
	return n
}
