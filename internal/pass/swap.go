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

// OperandSwap produces the transposed version of two-operand instructions
// flagged for it, the original order is kept as well.
type OperandSwap struct {
    phase kernel.Phase
}

func NewOperandSwap(phase kernel.Phase) *OperandSwap {
    return &OperandSwap { phase: phase }
}

func (self *OperandSwap) Name() string {
    return OperandSwapPass(self.phase)
}

func (self *OperandSwap) target(k *kernel.Kernel) *kernel.Instruction {
    return findInstruction(k, func(p *kernel.Instruction) bool {
        return p.Swap && p.SwapPhase == self.phase
    })
}

func (self *OperandSwap) Gate(_ *Context, k *kernel.Kernel) bool {
    return self.target(k) != nil
}

func (self *OperandSwap) Entry(ctx *Context, e *Element) ([]*Element, error) {
    p := self.target(e.Kernel)
    if p == nil {
        return done(e), nil
    }

    /* only two-operand instructions can be swapped */
    if len(p.Operands) != 2 {
        ctx.Log.Warn("operand swap needs exactly two operands, ignored", "instruction", name(p), "operands", len(p.Operands))
        p.Swap = false
        return []*Element { e }, nil
    }

    /* the swapped copy */
    p.Swap = false
    ret := []*kernel.Kernel { e.Kernel }

    /* unless the engine would drop it anyway */
    if ctx.Budget() > 1 {
        nk, np := forkInstruction(e.Kernel, p)
        np.SwapOperands()
        ret = append(ret, nk)
    }
    return successors(self, ret...), nil
}
