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
    `fmt`
    `strings`
)

// Phase tells whether a selection happens before or after unrolling.
type Phase uint8

const (
    BeforeUnroll Phase = iota
    AfterUnroll
)

func (self Phase) String() string {
    if self == AfterUnroll {
        return "after-unroll"
    } else {
        return "before-unroll"
    }
}

// Operation is an instruction mnemonic. Size is the operand width in bits
// used to pick a concrete mnemonic from the hardware description, 0 means
// the name is used verbatim.
type Operation struct {
    Name string
    Size int
}

func (self Operation) String() string {
    if self.Size == 0 {
        return self.Name
    } else {
        return fmt.Sprintf("%s/%d", self.Name, self.Size)
    }
}

// Instruction is an operation applied to an ordered operand list.
type Instruction struct {
    meta        Meta
    Op          Operation
    Operands    []Operand
    Alternates  []Operation
    ChoosePhase Phase
    Swap        bool
    SwapPhase   Phase
    ImmPhase    Phase
    Comment     string
}

func NewInstruction(op string, operands ...Operand) *Instruction {
    return &Instruction {
        meta     : newMeta(),
        Op       : Operation { Name: op },
        Operands : operands,
    }
}

func (self *Instruction) Kind() StatementKind {
    return KindInstruction
}

func (self *Instruction) Meta() *Meta {
    return &self.meta
}

func (self *Instruction) Copy() Statement {
    return self.clone(nil)
}

func (self *Instruction) clone(m CopyMap) Statement {
    ret := *self
    ret.meta = self.meta.derive()
    ret.Operands = make([]Operand, len(self.Operands))

    /* deep copy every operand */
    for i, v := range self.Operands {
        ret.Operands[i] = v.Copy()
    }

    /* alternates are plain values */
    if self.Alternates != nil {
        ret.Alternates = append([]Operation(nil), self.Alternates...)
    }

    /* record the copy */
    m.record(self, &ret)
    return &ret
}

func (self *Instruction) IsSimilar(other Statement) bool {
    v, ok := other.(*Instruction)
    if !ok {
        return false
    }

    /* compare all the scalar fields */
    if !self.meta.similar(&v.meta) ||
        self.Op          != v.Op          ||
        self.ChoosePhase != v.ChoosePhase ||
        self.Swap        != v.Swap        ||
        self.SwapPhase   != v.SwapPhase   ||
        self.ImmPhase    != v.ImmPhase    ||
        self.Comment     != v.Comment     ||
        len(self.Operands)   != len(v.Operands) ||
        len(self.Alternates) != len(v.Alternates) {
        return false
    }

    /* compare the operands pairwise */
    for i, p := range self.Operands {
        if !p.IsSimilar(v.Operands[i]) {
            return false
        }
    }

    /* compare the alternates pairwise */
    for i, p := range self.Alternates {
        if p != v.Alternates[i] {
            return false
        }
    }
    return true
}

func (self *Instruction) UpdateUnroll(iter int) {
    for _, v := range self.Operands {
        v.UpdateUnroll(iter)
    }
}

func (self *Instruction) UpdateRegisterName(iter int) {
    for _, v := range self.Operands {
        v.UpdateRegisterName(iter)
    }
}

func (self *Instruction) BindInductionVariables(scope Scope, force bool) {
    for _, v := range self.Operands {
        v.BindInductionVariables(scope, force)
    }
}

// Immediates lists the immediate operands in operand order.
func (self *Instruction) Immediates() []*Immediate {
    var ret []*Immediate
    for _, v := range self.Operands {
        if p, ok := v.(*Immediate); ok {
            ret = append(ret, p)
        }
    }
    return ret
}

// RangedImmediate returns the index of the first immediate operand that still
// carries a sweep, or -1.
func (self *Instruction) RangedImmediate() int {
    for i, v := range self.Operands {
        if p, ok := v.(*Immediate); ok && p.Ranged() {
            return i
        }
    }
    return -1
}

// SwapOperands transposes operands 0 and 1.
func (self *Instruction) SwapOperands() {
    if len(self.Operands) < 2 {
        panic("kernel: operand swap on an instruction with less than two operands")
    } else {
        self.Operands[0], self.Operands[1] = self.Operands[1], self.Operands[0]
    }
}

func (self *Instruction) Render(buf *strings.Builder) {
    buf.WriteString(self.Op.Name)

    /* add all the operands */
    for i, v := range self.Operands {
        if i == 0 {
            buf.WriteByte(' ')
        } else {
            buf.WriteString(", ")
        }
        v.Render(buf)
    }

    /* add the comment if any */
    if self.Comment != "" {
        buf.WriteString("  # ")
        buf.WriteString(self.Comment)
    }

    /* terminate the line */
    buf.WriteByte('\n')
}

func (self *Instruction) String() string {
    return strings.TrimSuffix(renderStatement(self), "\n")
}
