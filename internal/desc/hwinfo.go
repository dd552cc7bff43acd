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

package desc

import (
    `fmt`
    `strings`
    `sync`

    `github.com/chenzhuoyu/iasm/x86_64`
    `github.com/klauspost/cpuid/v2`
)

// HWInformation maps virtual register names to physical ones, and abstract
// operations to concrete instructions for a given operand size.
type HWInformation struct {
    registers  map[string]string
    operations map[string]map[int]string
}

func NewHWInformation() *HWInformation {
    return &HWInformation {
        registers  : make(map[string]string),
        operations : make(map[string]map[int]string),
    }
}

func (self *HWInformation) AddRegister(virtual string, physical string) {
    self.registers[virtual] = physical
}

func (self *HWInformation) AddOperation(name string, size int, instr string) {
    m, ok := self.operations[name]
    if !ok {
        m = make(map[int]string)
        self.operations[name] = m
    }
    m[size] = instr
}

// Physical resolves a virtual register name. Names that are already real
// x86-64 registers resolve to themselves.
func (self *HWInformation) Physical(virtual string) (string, bool) {
    if v, ok := self.registers[virtual]; ok {
        return v, true
    } else if IsRegister(virtual) {
        return "%" + strings.TrimPrefix(virtual, "%"), true
    } else {
        return "", false
    }
}

// Instruction resolves an operation for an operand size in bits. Explicit
// mappings win, then the AT&T size suffix is tried, and finally the name is
// used as is.
func (self *HWInformation) Instruction(name string, size int) (string, bool) {
    if m, ok := self.operations[name]; ok {
        if v, ok := m[size]; ok {
            return v, true
        }
    }
    if sfx, ok := _SizeSuffix[size]; ok {
        if IsMnemonic(name + sfx) {
            return name + sfx, true
        }
    }
    if size == 0 || IsMnemonic(name) {
        return name, true
    } else {
        return name, false
    }
}

// Merge copies every entry of other into this description, overriding
// existing entries.
func (self *HWInformation) Merge(other *HWInformation) {
    for k, v := range other.registers {
        self.registers[k] = v
    }
    for name, m := range other.operations {
        for size, v := range m {
            self.AddOperation(name, size, v)
        }
    }
}

func (self *HWInformation) String() string {
    return fmt.Sprintf("HWInformation{registers: %d, operations: %d}", len(self.registers), len(self.operations))
}

var _SizeSuffix = map[int]string {
    8  : "b",
    16 : "w",
    32 : "l",
    64 : "q",
}

// IsRegister reports whether the name, with or without "%", is an x86-64 register.
func IsRegister(name string) bool {
    _, ok := x86_64.Registers[strings.TrimPrefix(name, "%")]
    return ok
}

// IsMnemonic reports whether the name is an x86-64 instruction known to the assembler.
func IsMnemonic(name string) bool {
    _, ok := x86_64.Instructions[name]
    return ok
}

var allocationOrder = [...]x86_64.Register64 {
    x86_64.R10, x86_64.R11, x86_64.R12, x86_64.R13, x86_64.R14, x86_64.R15,     // reserved registers first
    x86_64.RAX,                                                                 // then the return value
    x86_64.RBX,                                                                 // then RBX
    x86_64.R9, x86_64.R8, x86_64.RCX, x86_64.RDX, x86_64.RSI, x86_64.RDI,       // then argument registers in reverse order
}

var (
    defaultOnce sync.Once
    defaultHW   *HWInformation
)

// DefaultHWInformation maps the virtual general purpose registers r0..r13
// onto the allocation order, and the virtual vector registers v0..vN onto the
// widest vector register file the host supports. The result is shared and
// must not be modified, use Clone first.
func DefaultHWInformation() *HWInformation {
    defaultOnce.Do(func() {
        defaultHW = buildDefault(cpuid.CPU.Supports(cpuid.AVX512F), cpuid.CPU.Supports(cpuid.AVX))
    })
    return defaultHW
}

// Clone returns an independent copy.
func (self *HWInformation) Clone() *HWInformation {
    ret := NewHWInformation()
    ret.Merge(self)
    return ret
}

func buildDefault(avx512 bool, avx bool) *HWInformation {
    ret := NewHWInformation()

    /* general purpose registers */
    for i, r := range allocationOrder {
        ret.AddRegister(fmt.Sprintf("r%d", i), "%" + r.String())
    }

    /* vector registers */
    for i := 0; i < vectorCount(avx512); i++ {
        switch {
            case avx512 : ret.AddRegister(fmt.Sprintf("v%d", i), "%" + x86_64.ZMMRegister(i).String())
            case avx    : ret.AddRegister(fmt.Sprintf("v%d", i), "%" + x86_64.YMMRegister(i).String())
            default     : ret.AddRegister(fmt.Sprintf("v%d", i), "%" + x86_64.XMMRegister(i).String())
        }
    }
    return ret
}

func vectorCount(avx512 bool) int {
    if avx512 {
        return 32
    } else {
        return 16
    }
}
