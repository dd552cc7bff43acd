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
)

// InductionInsertion appends the increment of every induction variable at the
// end of the body of its kernel. The one flagged last goes after the others.
type InductionInsertion struct{}

func NewInductionInsertion() *InductionInsertion {
    return new(InductionInsertion)
}

func (self *InductionInsertion) Name() string {
    return InductionInsertionPass
}

func (self *InductionInsertion) Gate(_ *Context, _ *kernel.Kernel) bool {
    return true
}

func (self *InductionInsertion) Entry(ctx *Context, e *Element) ([]*Element, error) {
    for _, kk := range kernel.Kernels(e.Kernel) {
        inds := kk.Inductions()

        /* at most one of them goes last */
        if lo.CountBy(inds, func(v *kernel.Induction) bool { return v.Last }) > 1 {
            return nil, kernel.EInput(name(kk), "more than one induction variable is flagged last")
        }

        /* the regular ones first */
        for _, v := range inds {
            if !v.Last {
                self.insert(ctx, kk, v)
            }
        }

        /* then the last one */
        if v, ok := lo.Find(inds, func(v *kernel.Induction) bool { return v.Last }); ok {
            self.insert(ctx, kk, v)
        }
    }

    /* bind the new registers */
    e.Kernel.Rebind()
    return done(e), nil
}

func (self *InductionInsertion) insert(ctx *Context, kk *kernel.Kernel, v *kernel.Induction) {
    if v.NoEmit {
        return
    }

    /* nothing to add */
    inc := v.Increment()
    if inc == 0 {
        ctx.Log.Debug("induction variable does not move, no increment", "induction", v.Key())
        return
    }

    /* add a positive increment, subtract a negative one */
    op := "add"
    if inc < 0 {
        op, inc = "sub", -inc
    }

    /* the register is the induction variable itself */
    rn := v.At(0)
    p := kernel.NewInstruction(op, kernel.NewImmediate(int64(inc)), kernel.NewRegister(rn.Virtual, rn.Physical))
    p.Op.Size = 64
    kk.Add(p)
}
