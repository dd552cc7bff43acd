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

package emit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cloudwego/microcreator/internal/desc"
	"github.com/cloudwego/microcreator/internal/kernel"
	"github.com/cloudwego/microcreator/internal/logs"
	"github.com/samber/lo"
)

// Emitter writes one source file per candidate. It implements pass.Sink.
type Emitter struct {
	log    *slog.Logger
	check  bool
	count  int
	memory map[string]string
	files  map[string]string
	names  []string
}

// New creates an Emitter writing to the output directory of the description.
// With check set, candidates that iasm cannot encode are skipped.
func New(log *slog.Logger, check bool) *Emitter {
	return &Emitter{
		log:   logs.Or(log),
		check: check,
		files: make(map[string]string),
	}
}

// NewMemory creates an Emitter that keeps the sources in memory.
func NewMemory(log *slog.Logger, check bool) *Emitter {
	ret := New(log, check)
	ret.memory = make(map[string]string)
	return ret
}

// Names lists the emitted file names in emission order.
func (self *Emitter) Names() []string {
	return append([]string(nil), self.names...)
}

// Source returns the in-memory source of an emitted file.
func (self *Emitter) Source(name string) (string, bool) {
	v, ok := self.memory[name]
	return v, ok
}

func (self *Emitter) Emit(k *kernel.Kernel, d *desc.Description) error {
	idx := self.count
	self.count++

	/* check the encoding first */
	if self.check {
		if err := Check(k); err != nil {
			self.log.Warn("candidate cannot be encoded, skipped", "index", idx, "error", err)
			return nil
		}
	}

	/* render the source */
	name := FileName(k, d, idx)
	src, err := self.Render(k, d, Symbol(name, d))
	if err != nil {
		return err
	}

	/* in memory */
	self.names = append(self.names, name)
	if self.memory != nil {
		self.memory[name] = src
		return nil
	}

	/* or on disk */
	if err = os.MkdirAll(d.OutputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d.OutputDir, name)
	self.log.Debug("writing benchmark", "file", path)
	return os.WriteFile(path, []byte(src), 0o644)
}

// FileName is motif, index, then the choices of every statement flagged for
// file naming, joined with the separator, followed by the suffix.
func FileName(k *kernel.Kernel, d *desc.Description, idx int) string {
	parts := []string{d.Motif, strconv.Itoa(idx)}
	if k.Meta().FileName {
		parts = append(parts, choice(k)...)
	}

	/* every flagged statement */
	kernel.NewIter(k).ForEach(func(s kernel.Statement, _ *kernel.Kernel) {
		if s.Meta().FileName {
			parts = append(parts, choice(s)...)
		}
	})
	return strings.Join(parts, d.Separator) + d.FileSuffix()
}

func choice(s kernel.Statement) []string {
	switch v := s.(type) {
	case *kernel.Instruction:
		ret := []string{v.Op.Name}
		for _, imm := range v.Immediates() {
			ret = append(ret, strconv.FormatInt(imm.Value(), 10))
		}
		return ret
	case *kernel.Kernel:
		return []string{"u" + strconv.Itoa(v.ActualUnroll)}
	default:
		return nil
	}
}

// Symbol turns a file name into the function name.
func Symbol(name string, d *desc.Description) string {
	name = strings.TrimSuffix(name, d.FileSuffix())
	return strings.Map(func(r rune) rune {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return '_'
	}, name)
}

func (self *Emitter) include(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if v, ok := self.files[path]; ok {
		return v, nil
	}

	/* read it once */
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("emit: %w", err)
	}
	self.files[path] = string(buf)
	return string(buf), nil
}

// clobbers lists the physical registers used by the kernel, without "%".
func clobbers(k *kernel.Kernel) []string {
	seen := make(map[string]bool)
	for _, p := range kernel.Instructions(k) {
		for _, v := range p.Operands {
			for _, r := range v.Registers() {
				for i := 0; i < r.Len(); i++ {
					if n := r.At(i).Physical; desc.IsRegister(n) {
						seen[strings.TrimPrefix(n, "%")] = true
					}
				}
			}
		}
	}

	/* sorted, for stable output */
	ret := lo.Keys(seen)
	sort.Strings(ret)
	return ret
}
