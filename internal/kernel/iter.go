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
    `github.com/oleiade/lane`
)

type _Frame struct {
    k *Kernel
    i int
}

// Iter walks a kernel tree depth-first in program order. A nested kernel is
// visited before its own statements. The tree must not be modified while
// iterating.
type Iter struct {
    s *lane.Stack
    v Statement
    k *Kernel
}

func NewIter(k *Kernel) *Iter {
    s := lane.NewStack()
    s.Push(&_Frame { k: k })
    return &Iter { s: s }
}

func (self *Iter) Next() bool {
    for !self.s.Empty() {
        fp := self.s.Head().(*_Frame)

        /* all the statements are visited, pop the current kernel */
        if fp.i >= len(fp.k.body) {
            self.s.Pop()
            continue
        }

        /* move to the next statement */
        self.k = fp.k
        self.v = fp.k.body[fp.i]
        fp.i++

        /* descend into nested kernels */
        if nk, ok := self.v.(*Kernel); ok {
            self.s.Push(&_Frame { k: nk })
        }
        return true
    }

    /* clear the statement to indicate no more statements */
    self.v = nil
    self.k = nil
    return false
}

func (self *Iter) Statement() Statement {
    return self.v
}

// Owner returns the kernel whose body holds the current statement.
func (self *Iter) Owner() *Kernel {
    return self.k
}

func (self *Iter) ForEach(action func(s Statement, owner *Kernel)) {
    for self.Next() {
        action(self.v, self.k)
    }
}

// Kernels lists the kernel and all the nested kernels, innermost first.
func Kernels(k *Kernel) []*Kernel {
    var ret []*Kernel
    for _, s := range k.body {
        if nk, ok := s.(*Kernel); ok {
            ret = append(ret, Kernels(nk)...)
        }
    }
    return append(ret, k)
}

// Instructions lists every instruction of the tree in program order.
func Instructions(k *Kernel) []*Instruction {
    var ret []*Instruction
    NewIter(k).ForEach(func(s Statement, _ *Kernel) {
        if p, ok := s.(*Instruction); ok {
            ret = append(ret, p)
        }
    })
    return ret
}
