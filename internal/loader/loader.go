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

package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloudwego/microcreator/internal/desc"
	"github.com/cloudwego/microcreator/internal/kernel"
	"gopkg.in/yaml.v3"
)

// Load parses a YAML description into the root kernel and the global
// settings. Unknown keys are rejected.
func Load(r io.Reader) (*kernel.Kernel, *desc.Description, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	/* decode the document */
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, kernel.EInput("description", "empty document")
		}
		return nil, nil, fmt.Errorf("loader: %w", err)
	}

	/* the global settings */
	d, err := description(&f)
	if err != nil {
		return nil, nil, err
	}

	/* the kernel itself */
	if f.Kernel == nil {
		return nil, nil, kernel.EInput("description", "no kernel")
	}
	k, err := (*builder)(nil).kernel(f.Kernel)
	if err != nil {
		return nil, nil, err
	}

	/* dangling links are reported by the engine */
	k.Rebind()
	return k, d, nil
}

// LoadFile is Load on a file.
func LoadFile(path string) (*kernel.Kernel, *desc.Description, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fp.Close()
	return Load(fp)
}

func description(f *File) (*desc.Description, error) {
	d := desc.NewDescription()
	if f.Motif != "" {
		d.Motif = f.Motif
	}
	if f.Separator != "" {
		d.Separator = f.Separator
	}
	if f.Output != "" {
		d.OutputDir = f.Output
	}

	/* output flavour */
	mode, err := desc.ParseMode(f.Mode)
	if err != nil {
		return nil, kernel.EInput("mode", err.Error())
	}

	/* plain settings */
	d.Mode = mode
	d.Suffix = f.Suffix
	d.Verbose = f.Verbose
	d.Prologue = f.Prologue
	d.Epilogue = f.Epilogue
	d.MaxBenchmarks = f.MaxBenchmarks

	/* nothing to add to the hardware tables */
	if len(f.Hardware.Registers) == 0 && len(f.Hardware.Operations) == 0 {
		return d, nil
	}

	/* layer the user tables over the default ones */
	hw := desc.DefaultHWInformation().Clone()
	for v, p := range f.Hardware.Registers {
		hw.AddRegister(v, physical(p))
	}
	for _, op := range f.Hardware.Operations {
		if op.Name == "" || op.Instruction == "" {
			return nil, kernel.EInput("hardware", "operations need a name and an instruction")
		}
		hw.AddOperation(op.Name, op.Size, op.Instruction)
	}

	/* use the merged tables */
	d.HW = hw
	return d, nil
}

// physical adds the AT&T "%" to real register names.
func physical(name string) string {
	if name != "" && !strings.HasPrefix(name, "%") && desc.IsRegister(name) {
		return "%" + name
	} else {
		return name
	}
}

func phase(where string, s string) (kernel.Phase, error) {
	switch s {
	case "", "before", "before-unroll":
		return kernel.BeforeUnroll, nil
	case "after", "after-unroll":
		return kernel.AfterUnroll, nil
	default:
		return 0, kernel.EInputf(where, "invalid phase %q", s)
	}
}

// builder tracks the kernels enclosing the one being built, innermost last,
// so that register operands can tell induction variables apart.
type builder struct {
	k     *kernel.Kernel
	outer *builder
}

func (self *builder) isInduction(name string) bool {
	for p := self; p != nil; p = p.outer {
		if p.k.LookupInduction(name) != nil {
			return true
		}
	}
	return false
}

func (self *builder) kernel(v *Kernel) (*kernel.Kernel, error) {
	k := kernel.NewKernel()
	k.Meta().Name = v.Name
	k.LabelName = v.Label
	k.LabelInstruction = v.Branch
	k.Unroll = kernel.Range(v.Unroll)
	k.UnrollLink = v.UnrollLink
	k.Bundle = kernel.Range(v.Bundle)
	k.Randomize = v.Randomize
	k.Combination = v.Combination
	k.OpenMP = kernel.OpenMP(v.OpenMP)

	/* a label without a branch loops with the default one */
	if k.LabelName != "" && k.LabelInstruction == "" {
		k.LabelInstruction = "jge"
	}

	/* C loop information */
	for _, l := range v.Loops {
		k.Loops = append(k.Loops, kernel.LoopInfo(l))
	}

	/* induction variables come first, the statements refer to them */
	for _, iv := range v.Inductions {
		if err := k.AddInduction(induction(&iv)); err != nil {
			return nil, err
		}
	}

	/* then the body */
	b := &builder{k: k, outer: self}
	for i := range v.Statements {
		s, err := b.statement(&v.Statements[i])
		if err != nil {
			return nil, err
		}
		k.Add(s)
	}
	return k, nil
}

func induction(v *Induction) *kernel.Induction {
	ind := kernel.NewInduction(v.Register, physical(v.Physical))
	ind.StrideRange = kernel.Range(v.Stride)
	ind.Last = v.Last
	ind.NoEmit = v.NoEmit
	ind.LinkName = v.Link

	/* the stride starts at the bottom of its sweep */
	if !ind.StrideRange.IsZero() {
		ind.SetStride(ind.StrideRange.Min)
	}

	/* increments are in strides unless told otherwise */
	if v.Increment != nil {
		ind.SetIncrement(*v.Increment, v.IncrementScaled == nil || *v.IncrementScaled)
	}
	if v.UnrollAffected != nil {
		ind.AffectedByUnroll = *v.UnrollAffected
	}

	/* the starting offset */
	ind.SetOffset(v.Offset, v.OffsetScaled)
	return ind
}

func (self *builder) statement(v *Statement) (kernel.Statement, error) {
	var err error
	var ret kernel.Statement

	/* exactly one kind of statement */
	switch nb := count(v.Comment != nil, v.Code != nil || v.File != "", v.Instruction != nil, v.Kernel != nil); {
	case nb == 0:
		return nil, kernel.EInput(where(v.Name), "empty statement")
	case nb > 1:
		return nil, kernel.EInput(where(v.Name), "a statement is exactly one of comment, code, instruction or kernel")
	}

	/* build the statement */
	switch {
	case v.Comment != nil:
		ret = kernel.NewComment(*v.Comment)
	case v.Kernel != nil:
		ret, err = self.kernel(v.Kernel)
	case v.Instruction != nil:
		ret, err = self.instruction(v.Name, v.Instruction)
	default:
		code := ""
		if v.Code != nil {
			code = *v.Code
		}
		ret = kernel.NewInsertCode(code, v.File)
	}

	/* check for errors */
	if err != nil {
		return nil, err
	}

	/* the common attributes */
	m := ret.Meta()
	m.Repeat = kernel.Range(v.Repeat)
	m.FileName = v.FileName
	m.LinkedName = v.Link
	if v.Name != "" {
		m.Name = v.Name
	}
	return ret, nil
}

func (self *builder) instruction(name string, v *Instruction) (*kernel.Instruction, error) {
	var err error
	if v.Op == "" {
		return nil, kernel.EInput(where(name), "instruction without an operation")
	}

	/* the operation and its alternatives */
	p := kernel.NewInstruction(v.Op)
	p.Op.Size = v.Size
	p.Comment = v.Comment
	p.Swap = v.Swap
	for _, op := range v.Alternates {
		p.Alternates = append(p.Alternates, kernel.Operation{Name: op.Op, Size: op.Size})
	}

	/* the phases */
	if p.ChoosePhase, err = phase(where(name), v.Choose); err != nil {
		return nil, err
	}
	if p.SwapPhase, err = phase(where(name), v.SwapPhase); err != nil {
		return nil, err
	}
	if p.ImmPhase, err = phase(where(name), v.ImmPhase); err != nil {
		return nil, err
	}

	/* the operands */
	for i := range v.Operands {
		op, err := self.operand(name, &v.Operands[i])
		if err != nil {
			return nil, err
		}
		p.Operands = append(p.Operands, op)
	}
	return p, nil
}

func (self *builder) operand(name string, v *Operand) (kernel.Operand, error) {
	switch count(len(v.Register) != 0, v.Memory != nil, v.Immediate != nil) {
	case 0:
		return nil, kernel.EInput(where(name), "empty operand")
	case 1:
		break
	default:
		return nil, kernel.EInput(where(name), "an operand is exactly one of register, memory or immediate")
	}

	/* immediates */
	if v.Immediate != nil {
		if r := kernel.Range(*v.Immediate); r.Single() {
			return kernel.NewImmediate(int64(r.Min)), nil
		} else {
			return kernel.NewImmediateRange(r), nil
		}
	}

	/* memory references */
	if m := v.Memory; m != nil {
		if m.Base == "" {
			return nil, kernel.EInput(where(name), "memory operand without a base register")
		} else if m.Index == "" {
			return kernel.NewMemory(kernel.NewRegister(m.Base, ""), m.Offset), nil
		} else {
			return kernel.NewIndirectMemory(kernel.NewRegister(m.Base, ""), kernel.NewRegister(m.Index, ""), m.Scale, m.Offset), nil
		}
	}

	/* induction variables are plain registers bound to them */
	if len(v.Register) == 1 && self.isInduction(v.Register[0]) {
		return kernel.NewRegister(v.Register[0], physical(v.Physical)), nil
	}

	/* everything else cycles through its names */
	r := kernel.NewRegularRegister(v.Register...)
	if v.Physical != "" {
		if len(v.Register) != 1 {
			return nil, kernel.EInput(where(name), "a physical name needs exactly one register name")
		}
		r.SetPhysical(0, physical(v.Physical))
	}
	return r, nil
}

func count(v ...bool) int {
	nb := 0
	for _, b := range v {
		if b {
			nb++
		}
	}
	return nb
}

func where(name string) string {
	if name == "" {
		return "statement"
	} else {
		return name
	}
}
