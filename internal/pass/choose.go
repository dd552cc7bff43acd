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

// OperationChoice sweeps the alternative operations of an instruction.
type OperationChoice struct {
    phase kernel.Phase
}

func NewOperationChoice(phase kernel.Phase) *OperationChoice {
    return &OperationChoice { phase: phase }
}

func (self *OperationChoice) Name() string {
    return OperationChoicePass(self.phase)
}

func (self *OperationChoice) target(k *kernel.Kernel) *kernel.Instruction {
    return findInstruction(k, func(p *kernel.Instruction) bool {
        return len(p.Alternates) != 0 && p.ChoosePhase == self.phase
    })
}

func (self *OperationChoice) Gate(_ *Context, k *kernel.Kernel) bool {
    return self.target(k) != nil
}

func (self *OperationChoice) Entry(ctx *Context, e *Element) ([]*Element, error) {
    p := self.target(e.Kernel)
    if p == nil {
        return done(e), nil
    }

    /* one candidate per alternative */
    alts := p.Alternates
    ret := []*kernel.Kernel { e.Kernel }

    /* the first alternative is applied in place */
    for _, op := range alts[1:capped(len(alts), ctx.Budget())] {
        nk, np := forkInstruction(e.Kernel, p)
        np.Op = op
        np.Alternates = nil
        ret = append(ret, nk)
    }

    /* the original candidate */
    p.Op = alts[0]
    p.Alternates = nil
    ctx.Log.Debug("chose operation", "instruction", name(p), "alternatives", len(alts))
    return successors(self, ret...), nil
}
