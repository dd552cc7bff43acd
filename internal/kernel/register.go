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

// RegisterName is one (virtual, physical) name pair of a register, plus the
// induction variable it is bound to in the owning kernel, if any.
type RegisterName struct {
    Virtual  string
    Physical string
    ind      *Induction
}

func (self RegisterName) String() string {
    if self.Physical != "" {
        return self.Physical
    } else {
        return self.Virtual
    }
}

// Induction returns the bound induction variable.
func (self RegisterName) Induction() *Induction {
    return self.ind
}

func (self RegisterName) similar(other RegisterName) bool {
    return self.Virtual == other.Virtual && self.Physical == other.Physical
}

// Register is a register operand. It carries a list of names and renders the
// chosen one, the physical name taking priority over the virtual one.
type Register struct {
    names  []RegisterName
    chosen int
}

func NewRegister(virtual string, physical string) *Register {
    return &Register {
        names: []RegisterName {{ Virtual: virtual, Physical: physical }},
    }
}

func (self *Register) Kind() OperandKind {
    return OpRegister
}

func (self *Register) Len() int {
    return len(self.names)
}

func (self *Register) Chosen() int {
    return self.chosen
}

// At returns the i-th name slot.
func (self *Register) At(i int) RegisterName {
    return self.names[i]
}

// Current returns the chosen name slot.
func (self *Register) Current() RegisterName {
    if len(self.names) == 0 {
        panic("kernel: register without any name")
    } else {
        return self.names[self.chosen]
    }
}

func (self *Register) Name() string {
    return self.Current().String()
}

// Induction returns the induction variable bound to the chosen name.
func (self *Register) Induction() *Induction {
    return self.Current().ind
}

// SetPhysical assigns the physical name of the i-th slot.
func (self *Register) SetPhysical(i int, name string) {
    self.names[i].Physical = name
}

func (self *Register) Render(buf *strings.Builder) {
    buf.WriteString(self.Name())
}

func (self *Register) String() string {
    return renderOperand(self)
}

func (self *Register) Copy() Operand {
    return self.clone()
}

func (self *Register) clone() *Register {
    ret := &Register {
        names  : make([]RegisterName, len(self.names)),
        chosen : self.chosen,
    }

    /* bindings belong to the source tree, drop them */
    for i, v := range self.names {
        ret.names[i] = RegisterName { Virtual: v.Virtual, Physical: v.Physical }
    }
    return ret
}

func (self *Register) UpdateUnroll(_ int) {}

// UpdateRegisterName is only legal on registers bound to an induction
// variable, where it does nothing. Anything else means an earlier pass lost
// the binding.
func (self *Register) UpdateRegisterName(_ int) {
    if self.Induction() == nil {
        panic(fmt.Sprintf("kernel: register name update on %s, which is not bound to an induction variable", self.Name()))
    }
}

func (self *Register) BindInductionVariables(scope Scope, force bool) {
    for i := range self.names {
        p := &self.names[i]

        /* keep the existing binding unless asked to rebind */
        if p.ind != nil && !force {
            continue
        }

        /* lookup by virtual name first, then by physical name */
        ind := scope.LookupInduction(p.Virtual)
        if ind == nil && p.Physical != "" {
            ind = scope.LookupInduction(p.Physical)
        }

        /* record the binding */
        p.ind = ind
    }
}

func (self *Register) IsSimilar(other Operand) bool {
    if v, ok := other.(*Register); !ok {
        return false
    } else {
        return self.similar(v)
    }
}

func (self *Register) similar(other *Register) bool {
    if self.chosen != other.chosen || len(self.names) != len(other.names) {
        return false
    }
    for i, v := range self.names {
        if !v.similar(other.names[i]) {
            return false
        }
    }
    return true
}

func (self *Register) Registers() []*Register {
    return []*Register { self }
}

// RegularRegister is a register operand that cycles through its names when
// the enclosing statement is repeated or unrolled.
type RegularRegister struct {
    Register
}

func NewRegularRegister(virtual ...string) *RegularRegister {
    ret := new(RegularRegister)
    ret.names = make([]RegisterName, 0, len(virtual))

    /* add every name */
    for _, v := range virtual {
        ret.names = append(ret.names, RegisterName { Virtual: v })
    }
    return ret
}

func (self *RegularRegister) Kind() OperandKind {
    return OpRegularRegister
}

func (self *RegularRegister) String() string {
    return renderOperand(self)
}

func (self *RegularRegister) Copy() Operand {
    return &RegularRegister { Register: *self.Register.clone() }
}

// UpdateRegisterName moves the selection iter names forward, wrapping
// around. Repetition and unrolling compose this way.
func (self *RegularRegister) UpdateRegisterName(iter int) {
    if nb := len(self.names); nb != 0 {
        self.chosen = (self.chosen + iter) % nb
    }
}

func (self *RegularRegister) IsSimilar(other Operand) bool {
    if v, ok := other.(*RegularRegister); !ok {
        return false
    } else {
        return self.similar(&v.Register)
    }
}

func (self *RegularRegister) Registers() []*Register {
    return []*Register { &self.Register }
}
