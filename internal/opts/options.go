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
	"log/slog"
)

type Options struct {
	MaxBenchmarks int
	Verbose       int
	Check         bool
	Logger        *slog.Logger
}

// BenchmarkCap returns the admission limit for a run, a positive limit from
// the description wins over the option. Zero means unlimited.
func (self *Options) BenchmarkCap(fromDesc int) int {
	if fromDesc > 0 {
		return fromDesc
	} else {
		return self.MaxBenchmarks
	}
}

func GetDefaultOptions() Options {
	return Options{
		MaxBenchmarks: MaxBenchmarks,
		Verbose:       Verbose,
		Check:         Check,
	}
}
