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
	"strings"
	"testing"

	"github.com/cloudwego/microcreator/internal/desc"
	"github.com/cloudwego/microcreator/internal/kernel"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
motif: triad
separator: "-"
mode: inline
max_benchmarks: 10
hardware:
  registers:
    base: rdi
  operations:
    - {name: load, size: 128, instruction: movaps}
kernel:
  name: main
  label: L0
  unroll: {min: 1, max: 4}
  randomize: true
  inductions:
    - register: r0
      stride: {min: 16, max: 64, progress: 16}
    - register: r1
      link: r0
      last: true
  statements:
    - comment: triad body
    - name: first
      repeat: 2
      instruction:
        op: load
        size: 128
        operands:
          - memory: {base: r0, offset: 8}
          - register: [v0, v1]
    - instruction:
        op: add
        alternates: [add, {op: sub, size: 64}]
        choose: after
        swap: true
        imm_phase: after-unroll
        operands:
          - immediate: {min: 0, max: 6, progress: 2}
          - register: r1
    - kernel:
        name: inner
        unroll_link: main
        statements:
          - code: "nop"
`

func TestLoad_Sample(t *testing.T) {
	k, d, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	/* global settings */
	require.Equal(t, "triad", d.Motif)
	require.Equal(t, "-", d.Separator)
	require.Equal(t, desc.ModeInline, d.Mode)
	require.Equal(t, 10, d.MaxBenchmarks)
	p, ok := d.Hardware().Physical("base")
	require.True(t, ok)
	require.Equal(t, "%rdi", p)
	op, ok := d.Hardware().Instruction("load", 128)
	require.True(t, ok)
	require.Equal(t, "movaps", op)

	/* the kernel */
	require.Equal(t, "main", k.Meta().Name)
	require.Equal(t, "jge", k.LabelInstruction)
	require.Equal(t, kernel.Range{Min: 1, Max: 4, Progress: 1}, k.Unroll)
	require.True(t, k.Randomize)
	require.Equal(t, 4, k.Len())

	/* inductions, linked after loading */
	r0, r1 := k.LookupInduction("r0"), k.LookupInduction("r1")
	require.Equal(t, 16, r0.Stride())
	require.Same(t, r0, r1.Link())
	require.True(t, r1.Last)

	/* a repeated load through an induction variable */
	ld := k.At(1).(*kernel.Instruction)
	require.Equal(t, "first", ld.Meta().Name)
	require.Equal(t, kernel.Fixed(2), ld.Meta().Repeat)
	require.Equal(t, kernel.Operation{Name: "load", Size: 128}, ld.Op)
	require.Same(t, r0, ld.Operands[0].(*kernel.Memory).Base.Induction())
	require.Equal(t, kernel.OpRegularRegister, ld.Operands[1].Kind())

	/* alternatives, phases and a plain register bound to r1 */
	add := k.At(2).(*kernel.Instruction)
	require.Equal(t, []kernel.Operation{{Name: "add"}, {Name: "sub", Size: 64}}, add.Alternates)
	require.Equal(t, kernel.AfterUnroll, add.ChoosePhase)
	require.Equal(t, kernel.AfterUnroll, add.ImmPhase)
	require.Equal(t, kernel.BeforeUnroll, add.SwapPhase)
	require.True(t, add.Swap)
	require.True(t, add.Operands[0].(*kernel.Immediate).Ranged())
	require.Equal(t, kernel.OpRegister, add.Operands[1].Kind())

	/* nested kernel */
	inner := k.At(3).(*kernel.Kernel)
	require.Equal(t, "main", inner.UnrollLink)
	require.Equal(t, "nop", inner.At(0).(*kernel.InsertCode).Code)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ``},
		{"no kernel", `motif: x`},
		{"unknown key", "kernel:\n  bogus: 1\n"},
		{"bad mode", "mode: fortran\nkernel: {}\n"},
		{"two kinds", "kernel:\n  statements:\n    - {comment: a, code: b}\n"},
		{"empty statement", "kernel:\n  statements:\n    - {name: a}\n"},
		{"no op", "kernel:\n  statements:\n    - instruction: {operands: []}\n"},
		{"bad phase", "kernel:\n  statements:\n    - instruction: {op: add, choose: sometime}\n"},
		{"two operand kinds", "kernel:\n  statements:\n    - instruction: {op: add, operands: [{register: r1, immediate: 1}]}\n"},
		{"duplicated induction", "kernel:\n  inductions: [{register: r0}, {register: r0}]\n"},
		{"bad range", "kernel:\n  unroll: [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(strings.NewReader(tt.src))
			require.Error(t, err)
		})
	}
}

func TestRange_Scalar(t *testing.T) {
	k, _, err := Load(strings.NewReader("kernel:\n  unroll: 3\n  bundle: {min: 2, max: 8, progress: 2}\n"))
	require.NoError(t, err)
	require.Equal(t, kernel.Fixed(3), k.Unroll)
	require.Equal(t, []int{2, 4, 6, 8}, k.Bundle.Values())
}
