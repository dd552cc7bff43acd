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

package pass

import (
    `github.com/cloudwego/microcreator/internal/kernel`
)

// find returns the first statement of the tree, in program order, that is
// accepted by fn. The root itself is not considered.
func find(k *kernel.Kernel, fn func(s kernel.Statement) bool) kernel.Statement {
    it := kernel.NewIter(k)
    for it.Next() {
        if fn(it.Statement()) {
            return it.Statement()
        }
    }
    return nil
}

// findKernel returns the first kernel of the tree, root included and in
// program order, accepted by fn.
func findKernel(k *kernel.Kernel, fn func(kk *kernel.Kernel) bool) *kernel.Kernel {
    if fn(k) {
        return k
    }
    if v := find(k, func(s kernel.Statement) bool { kk, ok := s.(*kernel.Kernel); return ok && fn(kk) }); v != nil {
        return v.(*kernel.Kernel)
    } else {
        return nil
    }
}

// findInstruction is find restricted to instructions.
func findInstruction(k *kernel.Kernel, fn func(p *kernel.Instruction) bool) *kernel.Instruction {
    if v := find(k, func(s kernel.Statement) bool { p, ok := s.(*kernel.Instruction); return ok && fn(p) }); v != nil {
        return v.(*kernel.Instruction)
    } else {
        return nil
    }
}

// forkKernel copies the whole candidate and returns the copy of t in it.
func forkKernel(k *kernel.Kernel, t *kernel.Kernel) (*kernel.Kernel, *kernel.Kernel) {
    nk, m := k.CopyWithMap()
    nt := m.LookupKernel(t)
    if nt == nil {
        panic("pass: kernel is not part of the candidate")
    }
    return nk, nt
}

// forkInstruction copies the whole candidate and returns the copy of p in it.
func forkInstruction(k *kernel.Kernel, p *kernel.Instruction) (*kernel.Kernel, *kernel.Instruction) {
    nk, m := k.CopyWithMap()
    np := m.LookupInstruction(p)
    if np == nil {
        panic("pass: instruction is not part of the candidate")
    }
    return nk, np
}

func name(s kernel.Statement) string {
    if v := s.Meta().Name; v != "" {
        return v
    } else {
        return s.Kind().String()
    }
}

// capped bounds the number of values a sweep turns into candidates. The
// first value is always kept, it is applied in place.
func capped(nb int, budget int) int {
    if budget < 1 {
        return min(nb, 1)
    } else {
        return min(nb, budget)
    }
}
