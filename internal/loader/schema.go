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
	"fmt"

	"github.com/cloudwego/microcreator/internal/kernel"
	"gopkg.in/yaml.v3"
)

// Range accepts either a single value or a {min, max, progress} mapping.
type Range kernel.Range

func (self *Range) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v int
		if err := node.Decode(&v); err != nil {
			return err
		}
		*self = Range(kernel.Fixed(v))
		return nil
	case yaml.MappingNode:
		var v struct {
			Min      int  `yaml:"min"`
			Max      *int `yaml:"max"`
			Progress int  `yaml:"progress"`
		}
		if err := node.Decode(&v); err != nil {
			return err
		}
		if v.Max == nil {
			v.Max = &v.Min
		}
		if v.Progress == 0 {
			v.Progress = 1
		}
		*self = Range{Min: v.Min, Max: *v.Max, Progress: v.Progress}
		return nil
	default:
		return fmt.Errorf("line %d: a range is either a number or a {min, max, progress} mapping", node.Line)
	}
}

// Names accepts either a single name or a sequence of names.
type Names []string

func (self *Names) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*self = Names{node.Value}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*self = v
		return nil
	default:
		return fmt.Errorf("line %d: expected a name or a list of names", node.Line)
	}
}

// Operation accepts either a bare mnemonic or an {op, size} mapping.
type Operation struct {
	Op   string `yaml:"op"`
	Size int    `yaml:"size"`
}

func (self *Operation) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		self.Op = node.Value
		return nil
	}
	type plain Operation
	return node.Decode((*plain)(self))
}

type File struct {
	Motif         string   `yaml:"motif"`
	Separator     string   `yaml:"separator"`
	Suffix        string   `yaml:"suffix"`
	Output        string   `yaml:"output"`
	Mode          string   `yaml:"mode"`
	Verbose       int      `yaml:"verbose"`
	MaxBenchmarks int      `yaml:"max_benchmarks"`
	Prologue      string   `yaml:"prologue"`
	Epilogue      string   `yaml:"epilogue"`
	Hardware      Hardware `yaml:"hardware"`
	Kernel        *Kernel  `yaml:"kernel"`
}

type Hardware struct {
	Registers  map[string]string `yaml:"registers"`
	Operations []struct {
		Name        string `yaml:"name"`
		Size        int    `yaml:"size"`
		Instruction string `yaml:"instruction"`
	} `yaml:"operations"`
}

type Kernel struct {
	Name        string      `yaml:"name"`
	Label       string      `yaml:"label"`
	Branch      string      `yaml:"branch"`
	Unroll      Range       `yaml:"unroll"`
	UnrollLink  string      `yaml:"unroll_link"`
	Bundle      Range       `yaml:"bundle"`
	Randomize   bool        `yaml:"randomize"`
	Combination bool        `yaml:"combination"`
	OpenMP      OpenMP      `yaml:"openmp"`
	Loops       []Loop      `yaml:"loops"`
	Inductions  []Induction `yaml:"inductions"`
	Statements  []Statement `yaml:"statements"`
}

type OpenMP struct {
	Shared       []string `yaml:"shared"`
	Private      []string `yaml:"private"`
	FirstPrivate []string `yaml:"firstprivate"`
	LastPrivate  []string `yaml:"lastprivate"`
	Used         []string `yaml:"used"`
}

type Loop struct {
	Induction string `yaml:"induction"`
	Register  string `yaml:"register"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	Step      string `yaml:"step"`
}

type Induction struct {
	Register        string `yaml:"register"`
	Physical        string `yaml:"physical"`
	Stride          Range  `yaml:"stride"`
	Increment       *int   `yaml:"increment"`
	IncrementScaled *bool  `yaml:"increment_scaled"`
	Offset          int    `yaml:"offset"`
	OffsetScaled    bool   `yaml:"offset_scaled"`
	UnrollAffected  *bool  `yaml:"unroll_affected"`
	Last            bool   `yaml:"last"`
	NoEmit          bool   `yaml:"no_emit"`
	Link            string `yaml:"link"`
}

// Statement is exactly one of comment, code, instruction or kernel.
type Statement struct {
	Name        string       `yaml:"name"`
	Link        string       `yaml:"link"`
	Repeat      Range        `yaml:"repeat"`
	FileName    bool         `yaml:"filename"`
	Comment     *string      `yaml:"comment"`
	Code        *string      `yaml:"code"`
	File        string       `yaml:"file"`
	Instruction *Instruction `yaml:"instruction"`
	Kernel      *Kernel      `yaml:"kernel"`
}

type Instruction struct {
	Op         string      `yaml:"op"`
	Size       int         `yaml:"size"`
	Alternates []Operation `yaml:"alternates"`
	Choose     string      `yaml:"choose"`
	Swap       bool        `yaml:"swap"`
	SwapPhase  string      `yaml:"swap_phase"`
	ImmPhase   string      `yaml:"imm_phase"`
	Comment    string      `yaml:"comment"`
	Operands   []Operand   `yaml:"operands"`
}

// Operand is exactly one of register, memory or immediate.
type Operand struct {
	Register  Names   `yaml:"register"`
	Physical  string  `yaml:"physical"`
	Memory    *Memory `yaml:"memory"`
	Immediate *Range  `yaml:"immediate"`
}

type Memory struct {
	Base   string `yaml:"base"`
	Index  string `yaml:"index"`
	Scale  int    `yaml:"scale"`
	Offset int    `yaml:"offset"`
}
