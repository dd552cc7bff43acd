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

package pass

import (
	"regexp"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cloudwego/microcreator/internal/desc"
	"github.com/cloudwego/microcreator/internal/kernel"
	"github.com/cloudwego/microcreator/internal/logs"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func loop(t *testing.T, stride int) (*kernel.Kernel, *kernel.Induction) {
	k := kernel.NewKernel()
	k.Meta().Name = "main"
	ind := kernel.NewInduction("r0", "")
	ind.SetStride(stride)
	require.NoError(t, k.AddInduction(ind))
	return k, ind
}

func load(offset int) *kernel.Instruction {
	return kernel.NewInstruction("movaps", kernel.NewMemory(kernel.NewRegister("r0", ""), offset), kernel.NewRegularRegister("r1", "r2"))
}

func unique(t *testing.T, ss []string) {
	seen := make(map[string]bool)
	for _, s := range ss {
		require.False(t, seen[s], "duplicated candidate:\n%s", s)
		seen[s] = true
	}
}

func TestInstructionSelection_Repeat(t *testing.T) {
	k, _ := loop(t, 16)
	p := load(0)
	p.Meta().Repeat = kernel.Range{Min: 1, Max: 3, Progress: 1}
	k.Add(p)

	c, _ := runPasses(t, k, 0, NewInstructionSelection())
	require.Len(t, c.ks, 3)
	for i, v := range c.ks {
		require.Equal(t, i+1, v.Len())
	}

	/* copies are renamed by repetition index */
	require.Equal(t, []string{
		"movaps (r0), r1\n",
		"movaps (r0), r1\nmovaps (r0), r2\n",
		"movaps (r0), r1\nmovaps (r0), r2\nmovaps (r0), r1\n",
	}, c.strings())
}

func TestInstructionSelection_RepeatZero(t *testing.T) {
	k, _ := loop(t, 16)
	p := load(0)
	p.Meta().Repeat = kernel.Range{Min: 0, Max: 1, Progress: 1}
	k.Add(kernel.NewComment("x"), p)

	c, _ := runPasses(t, k, 0, NewInstructionSelection())
	require.Len(t, c.ks, 2)
	require.Equal(t, 1, c.ks[0].Len())
	require.Equal(t, 2, c.ks[1].Len())
}

func TestInstructionSelection_RepeatLabels(t *testing.T) {
	outer, _ := loop(t, 16)
	outer.Unroll = kernel.Fixed(2)
	inner := kernel.NewKernel()
	inner.LabelName = "L1"
	inner.LabelInstruction = "jne"
	inner.Meta().Repeat = kernel.Fixed(2)
	inner.Add(kernel.NewInstruction("nop"))
	outer.Add(inner)

	/* repeated and unrolled copies all get their own label */
	c, _ := runPasses(t, outer, 0, NewInstructionSelection(), NewUnrolling())
	require.Len(t, c.ks, 1)
	labels := regexp.MustCompile(`(?m)^(L[0-9a-z_]+):$`).FindAllStringSubmatch(c.ks[0].String(), -1)
	names := make([]string, 0, len(labels))
	for _, v := range labels {
		names = append(names, v[1])
	}
	require.Equal(t, []string{"L1", "L1_r1", "L1_1", "L1_r1_1"}, names)
}

func TestInstructionSelection_Randomize(t *testing.T) {
	k, _ := loop(t, 16)
	k.Randomize = true
	k.Add(load(0), load(16), load(32))

	c, _ := runPasses(t, k, 0, NewInstructionSelection())
	require.Len(t, c.ks, 6)
	unique(t, c.strings())

	/* the identity ordering comes first */
	require.Equal(t, "movaps (r0), r1\nmovaps 16(r0), r1\nmovaps 32(r0), r1\n", c.ks[0].String())
}

func TestInstructionSelection_Combination(t *testing.T) {
	k, _ := loop(t, 16)
	k.Randomize = true
	k.Combination = true
	p := load(0)
	p.Meta().Repeat = kernel.Fixed(2)
	k.Add(p, kernel.NewInstruction("nop"))

	/* 3! / 2! orderings, no two alike */
	c, _ := runPasses(t, k, 0, NewInstructionSelection())
	require.Len(t, c.ks, 3)
	unique(t, c.strings())

	/* without combination the repeated copies are told apart */
	k2, _ := loop(t, 16)
	k2.Randomize = true
	p2 := load(0)
	p2.Meta().Repeat = kernel.Fixed(2)
	k2.Add(p2, kernel.NewInstruction("nop"))
	c, _ = runPasses(t, k2, 0, NewInstructionSelection())
	require.Len(t, c.ks, 6)
}

func TestOrderings_Combination(t *testing.T) {
	count := func(groups []uint64, combination bool) (n int) {
		seen := make(map[string]bool)
		orderings(groups, combination, func(order []int) bool {
			key := make([]byte, len(order))
			for i, j := range order {
				key[i] = byte(groups[j])
			}
			if combination {
				require.False(t, seen[string(key)], "ordering %v produced twice", order)
			}
			seen[string(key)] = true
			n++
			return true
		})
		return
	}
	require.Equal(t, 24, count([]uint64{1, 2, 3, 4}, false))
	require.Equal(t, 12, count([]uint64{1, 1, 2, 3}, true))
	require.Equal(t, 6, count([]uint64{1, 1, 2, 2}, true))
	require.Equal(t, 1, count([]uint64{7, 7, 7}, true))
	require.Equal(t, 1, count(nil, true))
}

func TestOperationChoice(t *testing.T) {
	k, _ := loop(t, 16)
	p := kernel.NewInstruction("add", kernel.NewImmediate(1), kernel.NewRegularRegister("r1"))
	p.Alternates = []kernel.Operation{{Name: "add"}, {Name: "sub"}, {Name: "xor"}}
	k.Add(p)

	c, _ := runPasses(t, k, 0, NewOperationChoice(kernel.BeforeUnroll))
	require.Equal(t, []string{"add $1, r1\n", "sub $1, r1\n", "xor $1, r1\n"}, c.strings())

	/* the other phase leaves it alone */
	p.Alternates = []kernel.Operation{{Name: "sub"}, {Name: "xor"}}
	c, _ = runPasses(t, k, 0, NewOperationChoice(kernel.AfterUnroll))
	require.Len(t, c.ks, 1)
}

func TestImmediateSelection_Values(t *testing.T) {
	k, _ := loop(t, 16)
	k.Add(kernel.NewInstruction("shl", kernel.NewImmediateRange(kernel.Range{Min: 0, Max: 6, Progress: 2}), kernel.NewRegularRegister("r1")))

	c, _ := runPasses(t, k, 0, NewImmediateSelection(kernel.BeforeUnroll))
	require.Equal(t, []string{"shl $0, r1\n", "shl $2, r1\n", "shl $4, r1\n", "shl $6, r1\n"}, c.strings())
}

func TestImmediateSelection_Linked(t *testing.T) {
	k, _ := loop(t, 16)
	a := kernel.NewInstruction("shl", kernel.NewImmediateRange(kernel.Range{Min: 1, Max: 3, Progress: 1}), kernel.NewRegularRegister("r1"))
	b := kernel.NewInstruction("shr", kernel.NewImmediateRange(kernel.Range{Min: 0, Max: 100, Progress: 1}), kernel.NewRegularRegister("r2"))
	a.Meta().Name = "a"
	b.Meta().LinkedName = "a"
	k.Add(b, a)

	c, _ := runPasses(t, k, 0, NewImmediateSelection(kernel.BeforeUnroll))
	require.Equal(t, []string{
		"shr $1, r2\nshl $1, r1\n",
		"shr $2, r2\nshl $2, r1\n",
		"shr $3, r2\nshl $3, r1\n",
	}, c.strings())
}

func TestImmediateSelection_LinkCycle(t *testing.T) {
	k, _ := loop(t, 16)
	a := kernel.NewInstruction("shl", kernel.NewImmediateRange(kernel.Range{Min: 1, Max: 2, Progress: 1}), kernel.NewRegularRegister("r1"))
	b := kernel.NewInstruction("shr", kernel.NewImmediateRange(kernel.Range{Min: 5, Max: 6, Progress: 1}), kernel.NewRegularRegister("r2"))
	a.Meta().Name, a.Meta().LinkedName = "a", "b"
	b.Meta().Name, b.Meta().LinkedName = "b", "a"
	k.Add(a, b)

	/* the first one is swept, the second one follows */
	c, _ := runPasses(t, k, 0, NewImmediateSelection(kernel.BeforeUnroll))
	require.Equal(t, []string{"shl $1, r1\nshr $1, r2\n", "shl $2, r1\nshr $2, r2\n"}, c.strings())
}

func TestImmediateSelection_BadRange(t *testing.T) {
	k, _ := loop(t, 16)
	k.Add(kernel.NewInstruction("shl", kernel.NewImmediateRange(kernel.Range{Min: 4, Max: 1, Progress: 1}), kernel.NewRegularRegister("r1")))

	e := NewEngine(logs.Discard(), 0)
	e.AddPass(NewImmediateSelection(kernel.BeforeUnroll))
	_, err := e.Run(k, desc.NewDescription(), new(collector))
	require.IsType(t, kernel.RangeError{}, err)
}

func TestOperandSwap(t *testing.T) {
	k, _ := loop(t, 16)
	p := kernel.NewInstruction("add", kernel.NewImmediate(1), kernel.NewRegularRegister("r1"))
	p.Swap = true
	q := kernel.NewInstruction("vaddps", kernel.NewRegularRegister("v0"), kernel.NewRegularRegister("v1"), kernel.NewRegularRegister("v2"))
	q.Swap = true
	k.Add(p, q)

	c, _ := runPasses(t, k, 0, NewOperandSwap(kernel.BeforeUnroll))
	require.Equal(t, []string{
		"add $1, r1\nvaddps v0, v1, v2\n",
		"add r1, $1\nvaddps v0, v1, v2\n",
	}, c.strings())
	require.False(t, q.Swap)
}

func TestStrideSelection_Cartesian(t *testing.T) {
	gofakeit.Seed(0)
	for round := 0; round < 8; round++ {
		k := kernel.NewKernel()
		nb := gofakeit.Number(1, 3)
		want := 1

		/* unlinked inductions with random sweep sizes */
		for i := 0; i < nb; i++ {
			size := gofakeit.Number(1, 4)
			ind := kernel.NewInduction("r"+string(rune('0'+i)), "")
			ind.StrideRange = kernel.Range{Min: 8, Max: 8 * size, Progress: 8}
			require.NoError(t, k.AddInduction(ind))
			want *= size
		}

		/* a linked one does not add combinations */
		link := kernel.NewInduction("r9", "")
		link.StrideRange = kernel.Range{Min: 1, Max: 64, Progress: 1}
		link.LinkName = "r0"
		require.NoError(t, k.AddInduction(link))

		/* k1 * ... * kn candidates, all different */
		c, _ := runPasses(t, k, 0, NewStrideSelection())
		require.Len(t, c.ks, want)
		seen := make(map[string]bool)
		for _, v := range c.ks {
			var key []byte
			for _, ind := range v.Inductions() {
				key = append(key, byte(ind.Stride()))
			}
			require.False(t, seen[string(key)])
			seen[string(key)] = true
			require.Equal(t, v.LookupInduction("r0").Stride(), v.LookupInduction("r9").Stride())
		}
	}
}

func TestStrideSelection_Nested(t *testing.T) {
	outer, ind := loop(t, 0)
	ind.StrideRange = kernel.Range{Min: 8, Max: 16, Progress: 8}
	inner := kernel.NewKernel()
	iv := kernel.NewInduction("r3", "")
	iv.StrideRange = kernel.Range{Min: 1, Max: 3, Progress: 1}
	require.NoError(t, inner.AddInduction(iv))
	outer.Add(inner)

	c, _ := runPasses(t, outer, 0, NewStrideSelection())
	require.Len(t, c.ks, 6)
}

func TestUnrolling_RenameAndOffsets(t *testing.T) {
	k, ind := loop(t, 16)
	k.Unroll = kernel.Fixed(3)
	k.Add(load(0))

	c, _ := runPasses(t, k, 0, NewUnrolling())
	require.Len(t, c.ks, 1)
	require.Equal(t, "movaps (r0), r1\nmovaps 16(r0), r2\nmovaps 32(r0), r1\n", c.ks[0].String())
	require.Equal(t, 3, c.ks[0].ActualUnroll)
	require.Equal(t, 48, ind.Increment())
}

func TestUnrolling_Sweep(t *testing.T) {
	k, _ := loop(t, 16)
	k.Unroll = kernel.Range{Min: 2, Max: 4, Progress: 1}
	k.Add(load(0))

	c, _ := runPasses(t, k, 0, NewUnrolling())
	require.Len(t, c.ks, 3)
	for i, v := range c.ks {
		require.Equal(t, i+2, v.Len())
		require.Equal(t, i+2, v.ActualUnroll)
		require.Equal(t, 16*(i+2), v.LookupInduction("r0").Increment())
	}
}

func TestUnrolling_Link(t *testing.T) {
	outer, _ := loop(t, 16)
	outer.UnrollLink = "inner"
	outer.Unroll = kernel.Range{Min: 1, Max: 8, Progress: 1}
	inner := kernel.NewKernel()
	inner.Meta().Name = "inner"
	inner.LabelName = "L1"
	inner.Unroll = kernel.Range{Min: 1, Max: 2, Progress: 1}
	inner.Add(kernel.NewInstruction("nop"))
	outer.Add(inner)

	/* the outer kernel mirrors the inner factor */
	c, _ := runPasses(t, outer, 0, NewUnrolling())
	require.Len(t, c.ks, 2)
	for _, v := range c.ks {
		nk := v.FindByName("inner").(*kernel.Kernel)
		require.Equal(t, nk.ActualUnroll, v.ActualUnroll)
	}

	/* copied labels stay unique */
	require.Contains(t, c.ks[1].String(), "L1_1:")
}

func TestUnrolling_BadFactor(t *testing.T) {
	k, _ := loop(t, 16)
	k.Unroll = kernel.Range{Min: 0, Max: 2, Progress: 1}
	e := NewEngine(logs.Discard(), 0)
	e.AddPass(NewUnrolling())
	_, err := e.Run(k, desc.NewDescription(), new(collector))
	require.IsType(t, kernel.RangeError{}, err)
}

func TestInductionInsertion(t *testing.T) {
	k, _ := loop(t, 8)
	last := kernel.NewInduction("r1", "")
	last.SetStride(4)
	last.SetIncrement(-1, true)
	last.Last = true
	quiet := kernel.NewInduction("r2", "")
	quiet.SetStride(4)
	quiet.NoEmit = true
	require.NoError(t, k.AddInduction(last))
	require.NoError(t, k.AddInduction(quiet))
	require.NoError(t, k.AddInduction(kernel.NewInduction("r3", "")))
	k.Add(load(0))

	c, _ := runPasses(t, k, 0, NewInductionInsertion())
	require.Equal(t, "movaps (r0), r1\nadd $8, r0\nsub $4, r1\n", c.ks[0].String())
	require.Equal(t, 64, kernel.Instructions(c.ks[0])[1].Op.Size)

	/* two of them cannot both go last */
	k2, ind := loop(t, 8)
	ind.Last = true
	other := kernel.NewInduction("r1", "")
	other.Last = true
	require.NoError(t, k2.AddInduction(other))
	e := NewEngine(logs.Discard(), 0)
	e.AddPass(NewInductionInsertion())
	_, err := e.Run(k2, desc.NewDescription(), new(collector))
	require.IsType(t, kernel.InputError{}, err)
}

func TestRegisterAllocation(t *testing.T) {
	k, _ := loop(t, 8)
	p := kernel.NewInstruction("add", kernel.NewImmediate(8), kernel.NewRegister("r0", ""))
	p.Op.Size = 64
	k.Add(p, kernel.NewInstruction("mov", kernel.NewRegularRegister("rsi"), kernel.NewRegularRegister("r1")))

	c, _ := runPasses(t, k, 0, NewRegisterAllocation())
	require.Equal(t, "addq $8, %r10\nmov %rsi, %r11\n", c.ks[0].String())

	/* unknown registers are input errors */
	k2, _ := loop(t, 8)
	k2.Add(kernel.NewInstruction("mov", kernel.NewRegularRegister("bogus"), kernel.NewRegularRegister("r1")))
	e := NewEngine(logs.Discard(), 0)
	e.AddPass(NewRegisterAllocation())
	_, err := e.Run(k2, desc.NewDescription(), new(collector))
	require.IsType(t, kernel.InputError{}, err)
}

func TestDriver_Degenerate(t *testing.T) {
	k, _ := loop(t, 16)
	p := load(0)
	p.Meta().Repeat = kernel.Fixed(1)
	k.Add(p)

	c := new(collector)
	st, err := NewDriver(desc.NewDescription(), logs.Discard(), 0).Drive(k, c)
	require.NoError(t, err)
	require.Len(t, c.ks, 1)
	require.Equal(t, 1, st.Emitted)
}

func TestDriver_Terminates(t *testing.T) {
	k, _ := loop(t, 8)
	k.Add(load(0))

	/* every pass with an open gate runs once and moves on */
	type result struct {
		st  Stats
		err error
	}
	c := new(collector)
	ch := make(chan result, 1)
	go func() {
		st, err := NewDriver(desc.NewDescription(), logs.Discard(), 0).Drive(k, c)
		ch <- result{st, err}
	}()

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		require.Len(t, c.ks, 1)
		require.Equal(t, 1, r.st.Entries[InductionInsertionPass])
		require.Equal(t, 1, r.st.Entries[RegisterAllocationPass])
		require.Equal(t, "movaps (%r10), %r11\naddq $8, %r10\n", c.ks[0].String())
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not terminate")
	}
}

func pipeline(t *testing.T) *kernel.Kernel {
	k, ind := loop(t, 0)
	ind.StrideRange = kernel.Range{Min: 8, Max: 16, Progress: 8}
	k.Unroll = kernel.Range{Min: 1, Max: 2, Progress: 1}
	k.LabelName = "L0"
	k.LabelInstruction = "jge"
	p := kernel.NewInstruction("add", kernel.NewImmediateRange(kernel.Range{Min: 0, Max: 1, Progress: 1}), kernel.NewRegularRegister("r1", "r2"))
	p.Op.Size = 64
	k.Add(load(0), p)
	return k
}

func TestDriver_Cap(t *testing.T) {
	for _, max := range []int{1, 3, 5, 8, 20} {
		c := new(collector)
		st, err := NewDriver(desc.NewDescription(), logs.Discard(), max).Drive(pipeline(t), c)
		require.NoError(t, err)
		require.Len(t, c.ks, min(max, 8))
		require.Equal(t, len(c.ks), st.Emitted)
		unique(t, c.strings())
	}
}

func TestDriver_Pipeline(t *testing.T) {
	k := pipeline(t)

	/* 2 strides x 2 factors x 2 immediates, all unique */
	c := new(collector)
	st, err := NewDriver(desc.NewDescription(), logs.Discard(), 0).Drive(k, c)
	require.NoError(t, err)
	require.Len(t, c.ks, 8)
	require.Equal(t, 8, st.Emitted)
	unique(t, c.strings())

	/* every candidate ends with its increment */
	for _, v := range c.ks {
		body := v.Statements()
		inc := body[len(body)-1].(*kernel.Instruction)
		require.Equal(t, "addq", inc.Op.Name)
		require.Equal(t, int64(v.LookupInduction("r0").Increment()), inc.Operands[0].(*kernel.Immediate).Value())
	}

	/* the first candidate is the all-minimum one */
	require.Equal(t, "L0:\nmovaps (%r10), %r11\naddq $0, %r11\naddq $8, %r10\njge L0\n", c.ks[0].String())
	spew.Config.SortKeys = true
	spew.Dump(st)
}
