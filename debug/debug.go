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

package debug

import (
	"sync/atomic"

	"github.com/cloudwego/microcreator/internal/kernel"
	"github.com/cloudwego/microcreator/internal/pass"
	"github.com/davecgh/go-spew/spew"
)

// A Stats records statistics about the generator.
type Stats struct {
	Candidates CandidateStats
}

// A CandidateStats records what happened to the candidates of every run so far.
type CandidateStats struct {
	Admitted  int
	Dropped   int
	Discarded int
	Emitted   int
}

// GetStats returns statistics of the generator.
func GetStats() Stats {
	return Stats{
		Candidates: CandidateStats{
			Admitted:  int(atomic.LoadInt64(&pass.AdmitCount)),
			Dropped:   int(atomic.LoadInt64(&pass.DropCount)),
			Discarded: int(atomic.LoadInt64(&pass.DiscardCount)),
			Emitted:   int(atomic.LoadInt64(&pass.EmitCount)),
		},
	}
}

var dumper = spew.ConfigState{
	Indent:                  "    ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump returns the full object graph of a kernel.
func Dump(k *kernel.Kernel) string {
	return dumper.Sdump(k)
}
