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

package kernel

import (
    `fmt`
)

// Range is an inclusive {min, max, progress} sweep.
//
// The zero Range means "not specified"; callers substitute their own default
// through Or. A single-point range (Min == Max) ignores Progress.
type Range struct {
    Min      int
    Max      int
    Progress int
}

// Fixed returns the single-point range {v, v, 1}.
func Fixed(v int) Range {
    return Range { Min: v, Max: v, Progress: 1 }
}

func (self Range) IsZero() bool {
    return self == Range{}
}

// Or returns def when the range is not specified.
func (self Range) Or(def Range) Range {
    if self.IsZero() {
        return def
    } else {
        return self
    }
}

// Single reports whether the range holds exactly one value.
func (self Range) Single() bool {
    return self.Min == self.Max
}

// Validate checks that the range can be swept.
func (self Range) Validate(what string) error {
    if self.Min > self.Max {
        return ERange(what, self, "minimum is greater than maximum")
    } else if self.Min != self.Max && self.Progress <= 0 {
        return ERange(what, self, "progress must be positive")
    } else {
        return nil
    }
}

// Count returns the number of values in the sweep, or 0 for an invalid range.
func (self Range) Count() int {
    if self.Validate("") != nil {
        return 0
    } else if self.Single() {
        return 1
    } else {
        return (self.Max - self.Min) / self.Progress + 1
    }
}

// At returns the i-th value of the sweep.
func (self Range) At(i int) int {
    if i == 0 {
        return self.Min
    } else {
        return self.Min + i * self.Progress
    }
}

// Values lists every value of the sweep in ascending order.
func (self Range) Values() []int {
    nb := self.Count()
    ret := make([]int, 0, nb)

    /* expand the sweep */
    for i := 0; i < nb; i++ {
        ret = append(ret, self.At(i))
    }
    return ret
}

func (self Range) String() string {
    if self.Single() {
        return fmt.Sprintf("{%d}", self.Min)
    } else {
        return fmt.Sprintf("{%d..%d step %d}", self.Min, self.Max, self.Progress)
    }
}
