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

// RegisterAllocation maps virtual register names to hardware registers and
// sized operations to concrete mnemonics.
type RegisterAllocation struct{}

func NewRegisterAllocation() *RegisterAllocation {
    return new(RegisterAllocation)
}

func (self *RegisterAllocation) Name() string {
    return RegisterAllocationPass
}

func (self *RegisterAllocation) Gate(_ *Context, _ *kernel.Kernel) bool {
    return true
}

func (self *RegisterAllocation) Entry(ctx *Context, e *Element) ([]*Element, error) {
    hw := ctx.Desc.Hardware()

    /* every register of every kernel */
    for _, kk := range kernel.Kernels(e.Kernel) {
        for _, v := range kk.Inductions() {
            if err := allocate(hw, kk, v.Registers()); err != nil {
                return nil, err
            }
        }
    }

    /* every operand and operation */
    for _, p := range kernel.Instructions(e.Kernel) {
        for _, v := range p.Operands {
            if err := allocate(hw, p, v.Registers()); err != nil {
                return nil, err
            }
        }

        /* sized operations */
        if m, ok := hw.Instruction(p.Op.Name, p.Op.Size); ok {
            p.Op = kernel.Operation { Name: m }
        } else {
            ctx.Log.Warn("operation not in the hardware description, emitted as is", "operation", p.Op.String())
            p.Op.Size = 0
        }
    }
    return done(e), nil
}

type _Mapper interface {
    Physical(virtual string) (string, bool)
}

func allocate(hw _Mapper, s kernel.Statement, regs []*kernel.Register) error {
    for _, r := range regs {
        for i := 0; i < r.Len(); i++ {
            rn := r.At(i)

            /* already allocated */
            if rn.Physical != "" {
                continue
            }

            /* lookup the hardware name */
            if p, ok := hw.Physical(rn.Virtual); !ok {
                return kernel.EInputf(name(s), "register %q is not in the hardware description", rn.Virtual)
            } else {
                r.SetPhysical(i, p)
            }
        }
    }
    return nil
}
