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
    `github.com/cloudwego/microcreator/internal/kernel`
)

// RangeError occurs when a sweep range is inverted or has a non-positive
// progress.
type RangeError = kernel.RangeError

// InputError occurs when the description is inconsistent, like several
// induction variables flagged last or a register the hardware does not have.
type InputError = kernel.InputError
