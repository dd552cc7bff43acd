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
    `github.com/samber/lo`
    `gonum.org/v1/gonum/stat/combin`
)

// StrideSelection sweeps the Cartesian product of the stride ranges of the
// unlinked induction variables, one kernel at a time.
type StrideSelection struct {
    color int
}

func NewStrideSelection() *StrideSelection {
    return &StrideSelection { color: kernel.NewColor() }
}

func (self *StrideSelection) Name() string {
    return StrideSelectionPass
}

func (self *StrideSelection) target(k *kernel.Kernel) *kernel.Kernel {
    return findKernel(k, func(kk *kernel.Kernel) bool {
        return kk.Meta().Color != self.color
    })
}

func (self *StrideSelection) Gate(_ *Context, k *kernel.Kernel) bool {
    return self.target(k) != nil
}

func (self *StrideSelection) Entry(ctx *Context, e *Element) ([]*Element, error) {
    kk := self.target(e.Kernel)
    if kk == nil {
        return done(e), nil
    }

    /* linked inductions follow their link */
    kk.Meta().Color = self.color
    free := lo.Filter(kk.Inductions(), func(v *kernel.Induction, _ int) bool {
        return v.LinkName == ""
    })

    /* the values of every sweep */
    vals := make([][]int, 0, len(free))
    for _, v := range free {
        r := v.StrideRange.Or(kernel.Fixed(v.Stride()))
        if err := r.Validate("stride of " + v.Key()); err != nil {
            return nil, err
        }
        vals = append(vals, r.Values())
    }

    /* nothing to sweep */
    if len(vals) == 0 {
        return successors(self, e.Kernel), nil
    }

    /* the first combination is applied in place */
    lens := lo.Map(vals, func(v []int, _ int) int { return len(v) })
    gen := combin.NewCartesianGenerator(lens)
    ret := []*kernel.Kernel { e.Kernel }
    sel := make([]int, len(lens))

    /* skip the all-minimum combination */
    gen.Next()
    for len(ret) < ctx.Budget() && gen.Next() {
        nk, nt := forkKernel(e.Kernel, kk)
        strides(nt, free, vals, gen.Product(sel))
        nk.Rebind()
        ret = append(ret, nk)
    }

    /* the original candidate */
    strides(kk, free, vals, make([]int, len(lens)))
    ctx.Log.Debug("swept strides", "kernel", name(kk), "inductions", len(free), "combinations", combin.Card(lens))
    return successors(self, ret...), nil
}

func strides(k *kernel.Kernel, free []*kernel.Induction, vals [][]int, sel []int) {
    for i, v := range free {
        if ind := k.LookupInduction(v.Key()); ind == nil {
            panic("pass: induction variable missing from the copied kernel: " + v.Key())
        } else {
            ind.SetStride(vals[i][sel[i]])
        }
    }
}
