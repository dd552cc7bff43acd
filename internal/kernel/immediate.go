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

// Immediate is either a fixed value or a sweep that a selection pass resolves.
type Immediate struct {
    Sweep Range
    value int64
}

func NewImmediate(v int64) *Immediate {
    return &Immediate { value: v }
}

func NewImmediateRange(r Range) *Immediate {
    return &Immediate { Sweep: r, value: int64(r.Min) }
}

func (self *Immediate) Kind() OperandKind {
    return OpImmediate
}

// Ranged reports whether the value still has to be selected.
func (self *Immediate) Ranged() bool {
    return !self.Sweep.IsZero()
}

func (self *Immediate) Value() int64 {
    return self.value
}

// Set fixes the value, dropping the sweep.
func (self *Immediate) Set(v int64) {
    self.value = v
    self.Sweep = Range{}
}

func (self *Immediate) Render(buf *strings.Builder) {
    buf.WriteByte('$')
    buf.WriteString(strconv.FormatInt(self.value, 10))
}

func (self *Immediate) String() string {
    return renderOperand(self)
}

func (self *Immediate) Copy() Operand {
    ret := *self
    return &ret
}

func (self *Immediate) UpdateUnroll(_ int) {}

func (self *Immediate) UpdateRegisterName(_ int) {}

func (self *Immediate) BindInductionVariables(_ Scope, _ bool) {}

func (self *Immediate) IsSimilar(other Operand) bool {
    if v, ok := other.(*Immediate); !ok {
        return false
    } else {
        return self.value == v.value && self.Sweep == v.Sweep
    }
}

func (self *Immediate) Registers() []*Register {
    return nil
}
