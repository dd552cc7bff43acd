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

// InstructionSelection expands repeated statements, then sweeps the
// statement orderings of randomized kernels.
type InstructionSelection struct {
    repeat  int
    shuffle int
}

func NewInstructionSelection() *InstructionSelection {
    return &InstructionSelection {
        repeat  : kernel.NewColor(),
        shuffle : kernel.NewColor(),
    }
}

func (self *InstructionSelection) Name() string {
    return InstructionSelectionPass
}

func (self *InstructionSelection) Gate(_ *Context, k *kernel.Kernel) bool {
    return self.repeated(k) != nil || self.randomized(k) != nil
}

func (self *InstructionSelection) repeated(k *kernel.Kernel) kernel.Statement {
    return find(k, func(s kernel.Statement) bool {
        m := s.Meta()
        r := m.Repeat
        return m.Color != self.repeat && !r.IsZero() && !(r.Single() && r.Min == 1)
    })
}

func (self *InstructionSelection) randomized(k *kernel.Kernel) *kernel.Kernel {
    if self.repeated(k) != nil {
        return nil
    }
    return findKernel(k, func(kk *kernel.Kernel) bool {
        return kk.Randomize && kk.Meta().Color != self.shuffle
    })
}

func (self *InstructionSelection) Entry(ctx *Context, e *Element) ([]*Element, error) {
    if s := self.repeated(e.Kernel); s != nil {
        return self.expand(ctx, e, s)
    } else if kk := self.randomized(e.Kernel); kk != nil {
        return self.permute(ctx, e, kk), nil
    } else {
        return done(e), nil
    }
}

func (self *InstructionSelection) expand(ctx *Context, e *Element, s kernel.Statement) ([]*Element, error) {
    rep := s.Meta().Repeat
    if err := rep.Validate("repetition of " + name(s)); err != nil {
        return nil, err
    }
    if rep.Min < 0 {
        return nil, kernel.ERange("repetition of " + name(s), rep, "repetition count cannot be negative")
    }

    /* mark it before copying, so that every copy is marked as well */
    s.Meta().Color = self.repeat
    vals := rep.Values()
    ret := []*kernel.Kernel { e.Kernel }

    /* one candidate per repetition count, the first one in place */
    for _, n := range vals[1:capped(len(vals), ctx.Budget())] {
        nk, m := e.Kernel.CopyWithMap()
        repeat(nk, m.Lookup(s), n)
        ret = append(ret, nk)
    }

    /* the original candidate */
    ctx.Log.Debug("repeating statement", "statement", name(s), "counts", len(vals))
    repeat(e.Kernel, s, vals[0])
    return successors(self, ret...), nil
}

func repeat(k *kernel.Kernel, s kernel.Statement, n int) {
    ss := make([]kernel.Statement, 0, n)
    if n > 0 {
        ss = append(ss, s)
    }

    /* the copies */
    for i := 1; i < n; i++ {
        v := s.Copy()
        relabel(v, "r", i)
        ss = append(ss, v)
    }

    /* register names are chosen once the copies are bound */
    k.Replace(s, ss...)
    k.Rebind()

    /* select the register names */
    for i, v := range ss {
        v.UpdateRegisterName(i)
    }
}

func (self *InstructionSelection) permute(ctx *Context, e *Element, kk *kernel.Kernel) []*Element {
    kk.Meta().Color = self.shuffle
    body := kk.Statements()
    ret := []*kernel.Kernel { e.Kernel }

    /* statements copied from the same original form a group */
    groups := make([]uint64, len(body))
    for i, s := range body {
        groups[i] = s.Meta().Origin()
    }

    /* the identity ordering is the original candidate */
    orderings(groups, kk.Combination, func(order []int) bool {
        if isIdentity(order) {
            return true
        }
        if len(ret) >= ctx.Budget() {
            return false
        }

        /* reorder a copy */
        nk, nt := forkKernel(e.Kernel, kk)
        src := nt.Statements()
        dst := make([]kernel.Statement, len(src))
        for i, j := range order {
            dst[i] = src[j]
        }

        /* add the candidate */
        nt.SetStatements(dst)
        ret = append(ret, nk)
        return true
    })

    /* all orderings are generated */
    ctx.Log.Debug("randomized kernel", "kernel", name(kk), "orderings", len(ret), "combination", kk.Combination)
    return successors(self, ret...)
}

func isIdentity(order []int) bool {
    for i, v := range order {
        if i != v {
            return false
        }
    }
    return true
}

// orderings enumerates the permutations of len(groups) items in lexicographic
// order, calling fn on each until it returns false. In combination mode the
// items of a group are interchangeable, they are always placed in their
// original relative order so that no ordering is produced twice.
func orderings(groups []uint64, combination bool, fn func(order []int) bool) {
    nb := len(groups)
    used := make([]bool, nb)
    order := make([]int, nb)
    prev := make([]int, nb)

    /* the previous item of the same group */
    for i := range groups {
        prev[i] = -1
        for j := i - 1; j >= 0; j-- {
            if groups[j] == groups[i] {
                prev[i] = j
                break
            }
        }
    }

    /* place one item per position, backtracking */
    var place func(pos int) bool
    place = func(pos int) bool {
        if pos == nb {
            return fn(order)
        }

        /* try every unused item */
        for i := 0; i < nb; i++ {
            if used[i] {
                continue
            }

            /* the group head is not placed yet, skip the whole run */
            if combination && prev[i] >= 0 && !used[prev[i]] {
                for i + 1 < nb && groups[i + 1] == groups[i] {
                    i++
                }
                continue
            }

            /* place and recurse */
            used[i] = true
            order[pos] = i
            if !place(pos + 1) {
                return false
            }
            used[i] = false
        }
        return true
    }

    /* start from the first position */
    place(0)
}
