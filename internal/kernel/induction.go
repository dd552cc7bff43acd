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
)

// Induction is a register whose value progresses by a stride on every loop
// iteration. An induction variable may be linked to another one, in which
// case stride, increment and offset are all taken from the far end of the
// link chain.
type Induction struct {
    Register
    StrideRange      Range
    AffectedByUnroll bool
    Last             bool
    NoEmit           bool
    LinkName         string

    stride    int
    increment int
    offset    int
    scaleInc  bool
    scaleOff  bool
    unroll    int
    link      *Induction
}

// NewInduction creates an induction variable that advances by one stride per
// iteration and whose increment follows the unroll factor.
func NewInduction(virtual string, physical string) *Induction {
    return &Induction {
        Register         : *NewRegister(virtual, physical),
        AffectedByUnroll : true,
        increment        : 1,
        scaleInc         : true,
        unroll           : 1,
    }
}

func (self *Induction) Kind() OperandKind {
    return OpInduction
}

// Key is the name the induction variable is registered under in its kernel.
func (self *Induction) Key() string {
    if p := self.names[0]; p.Virtual != "" {
        return p.Virtual
    } else {
        return p.Physical
    }
}

// Link returns the induction variable this one is slaved to.
func (self *Induction) Link() *Induction {
    return self.link
}

// SetLink slaves this induction variable to v, or detaches it when v is nil.
func (self *Induction) SetLink(v *Induction) {
    if v == nil {
        self.link = nil
        self.LinkName = ""
        return
    }
    if linksTo(v, self) {
        panic(fmt.Sprintf("kernel: induction link cycle through %s", self.Key()))
    }
    self.link = v
    self.LinkName = v.Key()
}

// SetStride selects a stride value from the sweep.
func (self *Induction) SetStride(v int) {
    self.stride = v
}

// SetIncrement sets the per-iteration increment, in units of the stride when
// scaled is set.
func (self *Induction) SetIncrement(v int, scaled bool) {
    self.increment = v
    self.scaleInc = scaled
}

// SetOffset sets the starting offset, in units of the stride when scaled is set.
func (self *Induction) SetOffset(v int, scaled bool) {
    self.offset = v
    self.scaleOff = scaled
}

// SetUnroll records the unroll factor chosen for the owning kernel.
func (self *Induction) SetUnroll(factor int) {
    self.unroll = factor
}

func (self *Induction) Unroll() int {
    return self.unroll
}

func (self *Induction) Stride() int {
    if self.link != nil {
        return self.link.Stride()
    } else {
        return self.stride
    }
}

func (self *Induction) BaseIncrement() int {
    if self.link != nil {
        return self.link.BaseIncrement()
    } else if self.scaleInc {
        return self.increment * self.stride
    } else {
        return self.increment
    }
}

func (self *Induction) Increment() int {
    if self.link != nil {
        return self.link.Increment()
    } else if self.AffectedByUnroll && self.unroll > 1 {
        return self.BaseIncrement() * self.unroll
    } else {
        return self.BaseIncrement()
    }
}

func (self *Induction) BaseOffset() int {
    if self.link != nil {
        return self.link.BaseOffset()
    } else {
        return self.offset
    }
}

func (self *Induction) Offset() int {
    if self.link != nil {
        return self.link.Offset()
    } else if self.scaleOff {
        return self.offset * self.stride
    } else {
        return self.offset
    }
}

func (self *Induction) String() string {
    return renderOperand(self)
}

// Copy returns a copy detached from its link, LinkName is kept so that the
// link can be re-established by name inside the destination kernel.
func (self *Induction) Copy() Operand {
    return self.clone()
}

func (self *Induction) clone() *Induction {
    ret := *self
    ret.Register = *self.Register.clone()
    ret.link = nil
    return &ret
}

func (self *Induction) UpdateRegisterName(_ int) {}

func (self *Induction) BindInductionVariables(_ Scope, _ bool) {}

func (self *Induction) IsSimilar(other Operand) bool {
    if v, ok := other.(*Induction); !ok {
        return false
    } else {
        return self.similar(&v.Register) &&
            self.StrideRange      == v.StrideRange      &&
            self.AffectedByUnroll == v.AffectedByUnroll &&
            self.Last             == v.Last             &&
            self.NoEmit           == v.NoEmit           &&
            self.LinkName         == v.LinkName         &&
            self.stride           == v.stride           &&
            self.increment        == v.increment        &&
            self.offset           == v.offset           &&
            self.scaleInc         == v.scaleInc         &&
            self.scaleOff         == v.scaleOff         &&
            self.unroll           == v.unroll
    }
}

func (self *Induction) Registers() []*Register {
    return []*Register { &self.Register }
}
