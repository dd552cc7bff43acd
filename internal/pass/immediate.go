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

// ImmediateSelection sweeps ranged immediates, one instruction at a time. An
// instruction linked to another one by name copies the value chosen there.
type ImmediateSelection struct {
    phase kernel.Phase
}

func NewImmediateSelection(phase kernel.Phase) *ImmediateSelection {
    return &ImmediateSelection { phase: phase }
}

func (self *ImmediateSelection) Name() string {
    return ImmediateSelectionPass(self.phase)
}

func (self *ImmediateSelection) eligible(p *kernel.Instruction) bool {
    return p.ImmPhase == self.phase && p.RangedImmediate() >= 0
}

func (self *ImmediateSelection) Gate(_ *Context, k *kernel.Kernel) bool {
    return findInstruction(k, self.eligible) != nil
}

// linked returns the instruction p takes its immediate from. ok is false
// when p has to wait for it to be resolved first.
func linked(k *kernel.Kernel, p *kernel.Instruction) (src *kernel.Instruction, ok bool) {
    if p.Meta().LinkedName == "" {
        return nil, true
    }

    /* lookup the linked instruction */
    v, _ := k.FindByName(p.Meta().LinkedName).(*kernel.Instruction)
    if v == nil || v == p || len(v.Immediates()) == 0 {
        return nil, true
    }

    /* only resolved immediates can be copied */
    if v.RangedImmediate() >= 0 {
        return v, false
    } else {
        return v, true
    }
}

func (self *ImmediateSelection) Entry(ctx *Context, e *Element) ([]*Element, error) {
    var p *kernel.Instruction
    var src *kernel.Instruction
    var blocked *kernel.Instruction

    /* the first instruction that is not waiting for its link */
    for _, v := range kernel.Instructions(e.Kernel) {
        if self.eligible(v) {
            if s, ok := linked(e.Kernel, v); ok {
                p, src = v, s
                break
            } else if blocked == nil {
                blocked = v
            }
        }
    }

    /* everything waits on something else, break the deadlock */
    if p == nil {
        if blocked == nil {
            return done(e), nil
        }
        ctx.Log.Warn("linked immediate cannot be resolved, sweeping it independently", "instruction", name(blocked), "link", blocked.Meta().LinkedName)
        p = blocked
    }

    /* the immediate to resolve */
    i := p.RangedImmediate()
    imm := p.Operands[i].(*kernel.Immediate)

    /* linked, copy the value over */
    if src != nil {
        imm.Set(pick(src, i))
        ctx.Log.Debug("linked immediate", "instruction", name(p), "link", name(src), "value", imm.Value())
        return []*Element { e }, nil
    }

    /* sweep the range */
    r := imm.Sweep
    if err := r.Validate("immediate of " + name(p)); err != nil {
        return nil, err
    }

    /* one candidate per value, the first one in place */
    vals := r.Values()
    ret := []*kernel.Kernel { e.Kernel }
    for _, v := range vals[1:capped(len(vals), ctx.Budget())] {
        nk, np := forkInstruction(e.Kernel, p)
        np.Operands[i].(*kernel.Immediate).Set(int64(v))
        ret = append(ret, nk)
    }

    /* the original candidate */
    imm.Set(int64(vals[0]))
    ctx.Log.Debug("swept immediate", "instruction", name(p), "values", len(vals))
    return successors(self, ret...), nil
}

// pick returns the immediate of src at operand i, or its first immediate.
func pick(src *kernel.Instruction, i int) int64 {
    if i < len(src.Operands) {
        if v, ok := src.Operands[i].(*kernel.Immediate); ok {
            return v.Value()
        }
    }
    return src.Immediates()[0].Value()
}
