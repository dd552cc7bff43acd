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
    `strconv`

    `github.com/cloudwego/microcreator/internal/kernel`
)

// Unrolling sweeps the unroll factor of every kernel, innermost kernels
// first. A kernel linked to another one mirrors its factor.
type Unrolling struct{}

func NewUnrolling() *Unrolling {
    return new(Unrolling)
}

func (self *Unrolling) Name() string {
    return UnrollingPass
}

func (self *Unrolling) Gate(_ *Context, k *kernel.Kernel) bool {
    for _, kk := range kernel.Kernels(k) {
        if kk.ActualUnroll == 0 {
            return true
        }
    }
    return false
}

// follows returns the kernel kk takes its factor from, and whether that
// factor is already known.
func follows(k *kernel.Kernel, kk *kernel.Kernel) (*kernel.Kernel, bool) {
    if kk.UnrollLink == "" {
        return nil, true
    }
    if v, _ := k.FindByName(kk.UnrollLink).(*kernel.Kernel); v == nil || v == kk {
        return nil, true
    } else {
        return v, v.ActualUnroll != 0
    }
}

func (self *Unrolling) Entry(ctx *Context, e *Element) ([]*Element, error) {
    var kk *kernel.Kernel
    var src *kernel.Kernel
    var blocked *kernel.Kernel

    /* the innermost kernel not waiting on another one */
    for _, v := range kernel.Kernels(e.Kernel) {
        if v.ActualUnroll == 0 {
            if s, ok := follows(e.Kernel, v); ok {
                kk, src = v, s
                break
            } else if blocked == nil {
                blocked = v
            }
        }
    }

    /* the links form a cycle */
    if kk == nil {
        if blocked == nil {
            return done(e), nil
        }
        ctx.Log.Warn("linked unroll factor cannot be resolved, sweeping it independently", "kernel", name(blocked), "link", blocked.UnrollLink)
        kk = blocked
    } else if kk.UnrollLink != "" && src == nil {
        ctx.Log.Warn("unroll link target not found, sweeping independently", "kernel", name(kk), "link", kk.UnrollLink)
    }

    /* a linked kernel has exactly one factor */
    if src != nil {
        unroll(e.Kernel, kk, src.ActualUnroll)
        ctx.Log.Debug("linked unroll factor", "kernel", name(kk), "link", name(src), "factor", src.ActualUnroll)
        return successors(self, e.Kernel), nil
    }

    /* validate the sweep */
    r := kk.Unroll.Or(kernel.Fixed(1))
    if err := r.Validate("unroll factor of " + name(kk)); err != nil {
        return nil, err
    }
    if r.Min < 1 {
        return nil, kernel.ERange("unroll factor of " + name(kk), r, "unroll factor must be at least 1")
    }

    /* one candidate per factor, the minimum in place */
    vals := r.Values()
    ret := []*kernel.Kernel { e.Kernel }
    for _, f := range vals[1:capped(len(vals), ctx.Budget())] {
        nk, nt := forkKernel(e.Kernel, kk)
        unroll(nk, nt, f)
        ret = append(ret, nk)
    }

    /* the original candidate */
    unroll(e.Kernel, kk, vals[0])
    ctx.Log.Debug("unrolled kernel", "kernel", name(kk), "factors", len(vals))
    return successors(self, ret...), nil
}

// unroll replaces the body of kk with factor copies of itself. Copy i has its
// memory offsets advanced by i strides and its registers renamed for i.
func unroll(k *kernel.Kernel, kk *kernel.Kernel, factor int) {
    body := kk.Statements()
    copies := make([]kernel.Statement, 0, len(body) * factor)

    /* the first copy is the body itself */
    copies = append(copies, body...)
    for i := 1; i < factor; i++ {
        for _, s := range body {
            v := s.Copy()
            relabel(v, "", i)
            copies = append(copies, v)
        }
    }

    /* bind the copies before touching memory offsets */
    kk.SetStatements(copies)
    k.Rebind()

    /* advance and rename every copy */
    for i, s := range copies {
        s.UpdateUnroll(i / len(body))
        s.UpdateRegisterName(i / len(body))
    }

    /* record the factor */
    kk.ActualUnroll = factor
    kk.UpdateInductionUnrolling(factor)
}

// relabel keeps the labels of nested kernels unique across copies.
// Unrolled copies get "_<i>", repeated ones "_r<i>".
func relabel(s kernel.Statement, tag string, i int) {
    if v, ok := s.(*kernel.Kernel); ok {
        for _, kk := range kernel.Kernels(v) {
            if kk.LabelName != "" {
                kk.LabelName += "_" + tag + strconv.Itoa(i)
            }
        }
    }
}
