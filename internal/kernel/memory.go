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
    `strconv`
    `strings`
)

// Memory is a base register plus displacement.
type Memory struct {
    Base   *Register
    Offset int
}

func NewMemory(base *Register, offset int) *Memory {
    if base == nil {
        panic("kernel: memory operand without a base register")
    } else {
        return &Memory { Base: base, Offset: offset }
    }
}

func (self *Memory) Kind() OperandKind {
    return OpMemory
}

// Displacement is the rendered offset, including the starting offset of the
// bound induction variable.
func (self *Memory) Displacement() int {
    if ind := self.Base.Induction(); ind != nil {
        return self.Offset + ind.Offset()
    } else {
        return self.Offset
    }
}

func (self *Memory) Render(buf *strings.Builder) {
    if d := self.Displacement(); d != 0 {
        buf.WriteString(strconv.Itoa(d))
    }
    buf.WriteByte('(')
    self.Base.Render(buf)
    buf.WriteByte(')')
}

func (self *Memory) String() string {
    return renderOperand(self)
}

func (self *Memory) Copy() Operand {
    return &Memory {
        Base   : self.Base.clone(),
        Offset : self.Offset,
    }
}

func (self *Memory) UpdateUnroll(iter int) {
    if ind := self.Base.Induction(); ind != nil {
        self.Offset += iter * ind.Stride()
    }
}

func (self *Memory) UpdateRegisterName(_ int) {}

func (self *Memory) BindInductionVariables(scope Scope, force bool) {
    self.Base.BindInductionVariables(scope, force)
}

func (self *Memory) IsSimilar(other Operand) bool {
    if v, ok := other.(*Memory); !ok {
        return false
    } else {
        return self.Offset == v.Offset && self.Base.similar(v.Base)
    }
}

func (self *Memory) Registers() []*Register {
    return []*Register { self.Base }
}

// IndirectMemory is offset(base, index, scale).
type IndirectMemory struct {
    Base   *Register
    Index  *Register
    Scale  int
    Offset int
}

func NewIndirectMemory(base *Register, index *Register, scale int, offset int) *IndirectMemory {
    ret := &IndirectMemory {
        Base   : base,
        Index  : index,
        Scale  : scale,
        Offset : offset,
    }
    ret.check()
    return ret
}

func (self *IndirectMemory) check() {
    if self.Base == nil {
        panic("kernel: indirect memory operand without a base register")
    } else if self.Index == nil {
        panic("kernel: indirect memory operand without an index register")
    }
}

func (self *IndirectMemory) Kind() OperandKind {
    return OpIndirectMemory
}

// stride is the per-iteration address step: the base stride if the base is
// an induction variable, otherwise the scaled index stride.
func (self *IndirectMemory) stride() int {
    if ind := self.Base.Induction(); ind != nil {
        return ind.Stride()
    } else if ind = self.Index.Induction(); ind != nil {
        return ind.Stride() * self.scale()
    } else {
        return 0
    }
}

func (self *IndirectMemory) scale() int {
    if self.Scale == 0 {
        return 1
    } else {
        return self.Scale
    }
}

func (self *IndirectMemory) Displacement() int {
    if ind := self.Base.Induction(); ind != nil {
        return self.Offset + ind.Offset()
    } else {
        return self.Offset
    }
}

func (self *IndirectMemory) Render(buf *strings.Builder) {
    self.check()
    if d := self.Displacement(); d != 0 {
        buf.WriteString(strconv.Itoa(d))
    }
    buf.WriteByte('(')
    self.Base.Render(buf)
    buf.WriteByte(',')
    self.Index.Render(buf)
    buf.WriteByte(',')
    buf.WriteString(strconv.Itoa(self.scale()))
    buf.WriteByte(')')
}

func (self *IndirectMemory) String() string {
    return renderOperand(self)
}

func (self *IndirectMemory) Copy() Operand {
    self.check()
    return &IndirectMemory {
        Base   : self.Base.clone(),
        Index  : self.Index.clone(),
        Scale  : self.Scale,
        Offset : self.Offset,
    }
}

func (self *IndirectMemory) UpdateUnroll(iter int) {
    self.Offset += iter * self.stride()
}

func (self *IndirectMemory) UpdateRegisterName(_ int) {}

func (self *IndirectMemory) BindInductionVariables(scope Scope, force bool) {
    self.check()
    self.Base.BindInductionVariables(scope, force)
    self.Index.BindInductionVariables(scope, force)
}

func (self *IndirectMemory) IsSimilar(other Operand) bool {
    if v, ok := other.(*IndirectMemory); !ok {
        return false
    } else {
        return self.Offset == v.Offset &&
            self.Scale == v.Scale &&
            self.Base.similar(v.Base) &&
            self.Index.similar(v.Index)
    }
}

func (self *IndirectMemory) Registers() []*Register {
    return []*Register { self.Base, self.Index }
}
