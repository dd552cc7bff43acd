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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, tc := range []struct {
		in   string
		mode Mode
		sfx  string
	}{
		{"", ModeAssembly, ".s"},
		{"assembly", ModeAssembly, ".s"},
		{"inline", ModeInline, ".c"},
		{"c", ModeC, ".c"},
	} {
		m, err := ParseMode(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.mode, m)
		d := NewDescription()
		d.Mode = m
		require.Equal(t, tc.sfx, d.FileSuffix())
	}
	_, err := ParseMode("fortran")
	require.Error(t, err)
}

func TestDescription_Suffix(t *testing.T) {
	d := NewDescription()
	d.Suffix = ".S"
	require.Equal(t, ".S", d.FileSuffix())
	d.HW = nil
	require.NotNil(t, d.Hardware())
}

func TestHWInformation_Default(t *testing.T) {
	hw := buildDefault(false, false)
	v, ok := hw.Physical("r0")
	require.True(t, ok)
	require.Equal(t, "%r10", v)
	v, ok = hw.Physical("r13")
	require.True(t, ok)
	require.Equal(t, "%rdi", v)
	v, ok = hw.Physical("v0")
	require.True(t, ok)
	require.Equal(t, "%xmm0", v)
	_, ok = hw.Physical("v16")
	require.False(t, ok)

	/* wider register files */
	v, _ = buildDefault(false, true).Physical("v3")
	require.Equal(t, "%ymm3", v)
	v, _ = buildDefault(true, true).Physical("v31")
	require.Equal(t, "%zmm31", v)

	/* real names resolve to themselves */
	v, ok = hw.Physical("rax")
	require.True(t, ok)
	require.Equal(t, "%rax", v)
}

func TestHWInformation_Instruction(t *testing.T) {
	hw := NewHWInformation()
	v, ok := hw.Instruction("add", 64)
	require.True(t, ok)
	require.Equal(t, "addq", v)
	v, ok = hw.Instruction("whatever", 0)
	require.True(t, ok)
	require.Equal(t, "whatever", v)
	_, ok = hw.Instruction("whatever", 32)
	require.False(t, ok)

	/* explicit mappings win */
	hw.AddOperation("add", 64, "leaq")
	v, _ = hw.Instruction("add", 64)
	require.Equal(t, "leaq", v)
}

func TestHWInformation_MergeClone(t *testing.T) {
	a := NewHWInformation()
	a.AddRegister("x", "%rax")
	b := a.Clone()
	b.AddRegister("x", "%rbx")
	b.AddOperation("mov", 32, "movl")

	v, _ := a.Physical("x")
	require.Equal(t, "%rax", v)
	a.Merge(b)
	v, _ = a.Physical("x")
	require.Equal(t, "%rbx", v)
	v, _ = a.Instruction("mov", 32)
	require.Equal(t, "movl", v)
}
