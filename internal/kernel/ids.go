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
    `sync/atomic`
)

var (
    idgen    uint64
    colorgen int64
)

func nextID() uint64 {
    return atomic.AddUint64(&idgen, 1)
}

// NewColor allocates a traversal marker that no other caller will use.
// Color 0 always means "unvisited".
func NewColor() int {
    return int(atomic.AddInt64(&colorgen, 1))
}
