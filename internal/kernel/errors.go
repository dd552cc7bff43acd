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

// RangeError occurs when a sweep range is inverted or has a non-positive progress.
type RangeError struct {
    What   string
    Range  Range
    Reason string
}

func (self RangeError) Error() string {
    return fmt.Sprintf("RangeError(%s = %d..%d step %d): %s", self.What, self.Range.Min, self.Range.Max, self.Range.Progress, self.Reason)
}

// InputError occurs when the description violates a structural constraint.
type InputError struct {
    Where  string
    Reason string
}

func (self InputError) Error() string {
    if self.Where != "" {
        return fmt.Sprintf("InputError(%s): %s", self.Where, self.Reason)
    } else {
        return "InputError: " + self.Reason
    }
}

func ERange(what string, r Range, reason string) RangeError {
    return RangeError {
        What   : what,
        Range  : r,
        Reason : reason,
    }
}

func EInput(where string, reason string) InputError {
    return InputError {
        Where  : where,
        Reason : reason,
    }
}

func EInputf(where string, format string, args ...interface{}) InputError {
    return EInput(where, fmt.Sprintf(format, args...))
}
