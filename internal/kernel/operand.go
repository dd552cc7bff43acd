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

type OperandKind uint8

const (
    OpRegister OperandKind = iota
    OpRegularRegister
    OpInduction
    OpMemory
    OpIndirectMemory
    OpImmediate
)

var _OperandKindNames = [...]string {
    OpRegister        : "register",
    OpRegularRegister : "regular-register",
    OpInduction       : "induction",
    OpMemory          : "memory",
    OpIndirectMemory  : "indirect-memory",
    OpImmediate       : "immediate",
}

func (self OperandKind) String() string {
    if int(self) < len(_OperandKindNames) {
        return _OperandKindNames[self]
    } else {
        return fmt.Sprintf("OperandKind(%d)", self)
    }
}

// Scope resolves induction variables by register name.
type Scope interface {
    LookupInduction(name string) *Induction
}

// Operand is a value consumed or produced by an Instruction.
type Operand interface {
    fmt.Stringer
    Kind() OperandKind

    // Render appends the textual form of the operand.
    Render(buf *strings.Builder)

    // Copy returns a deep, independent copy. Induction bindings are not
    // carried over: the copy must be re-bound against its own kernel.
    Copy() Operand

    // UpdateUnroll advances address components for the iter-th unrolled copy.
    UpdateUnroll(iter int)

    // UpdateRegisterName selects the register name for the iter-th copy.
    UpdateRegisterName(iter int)

    // BindInductionVariables resolves every embedded register against scope.
    // An existing binding is only replaced when force is set.
    BindInductionVariables(scope Scope, force bool)

    // IsSimilar reports structural equality.
    IsSimilar(other Operand) bool

    // Registers lists every register embedded in the operand.
    Registers() []*Register
}

type _NoScope struct{}

func (_NoScope) LookupInduction(string) *Induction {
    return nil
}

// NoScope resolves nothing, it unbinds every register when used with force.
var NoScope Scope = _NoScope{}

func renderOperand(v Operand) string {
    var buf strings.Builder
    v.Render(&buf)
    return buf.String()
}
