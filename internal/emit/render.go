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
	"strconv"
	"strings"

	"github.com/cloudwego/microcreator/internal/desc"
	"github.com/cloudwego/microcreator/internal/kernel"
)

type lineKind uint8

const (
	lineText lineKind = iota
	lineLabel
	lineInstr
)

type line struct {
	kind lineKind
	text string
}

// lines flattens the kernel tree into assembly lines.
func (self *Emitter) lines(k *kernel.Kernel) ([]line, error) {
	var ret []line
	if k.LabelName != "" {
		ret = append(ret, line{lineLabel, k.LabelName + ":"})
	}

	/* the body */
	for _, s := range k.Statements() {
		switch v := s.(type) {
		case *kernel.Kernel:
			sub, err := self.lines(v)
			if err != nil {
				return nil, err
			}
			ret = append(ret, sub...)
		case *kernel.Instruction:
			ret = append(ret, line{lineInstr, v.String()})
		case *kernel.Comment:
			ret = append(ret, line{lineText, v.String()})
		case *kernel.InsertCode:
			code := v.Code
			if v.File != "" {
				buf, err := self.include(v.File)
				if err != nil {
					return nil, err
				}
				code = buf
			}
			for _, ln := range strings.Split(strings.TrimSuffix(code, "\n"), "\n") {
				ret = append(ret, line{lineText, ln})
			}
		}
	}

	/* the backward branch */
	if k.LabelName != "" && k.LabelInstruction != "" {
		ret = append(ret, line{lineInstr, k.LabelInstruction + " " + k.LabelName})
	}
	return ret, nil
}

// Render produces the source of one candidate as function fn.
func (self *Emitter) Render(k *kernel.Kernel, d *desc.Description, fn string) (string, error) {
	body, err := self.lines(k)
	if err != nil {
		return "", err
	}

	/* prologue and epilogue */
	pro, err := self.include(d.Prologue)
	if err != nil {
		return "", err
	}
	epi, err := self.include(d.Epilogue)
	if err != nil {
		return "", err
	}

	/* pick the flavour */
	var buf strings.Builder
	switch d.Mode {
	case desc.ModeInline:
		renderInline(&buf, k, fn, pro, body, epi, nil)
	case desc.ModeC:
		renderInline(&buf, k, fn, pro, body, epi, k.Loops)
	default:
		renderAssembly(&buf, fn, pro, body, epi)
	}
	return buf.String(), nil
}

func verbatim(buf *strings.Builder, text string) {
	if text != "" {
		buf.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			buf.WriteByte('\n')
		}
	}
}

func renderAssembly(buf *strings.Builder, fn string, pro string, body []line, epi string) {
	buf.WriteString("\t.text\n")
	buf.WriteString("\t.globl\t" + fn + "\n")
	buf.WriteString("\t.type\t" + fn + ", @function\n")
	buf.WriteString(fn + ":\n")
	verbatim(buf, pro)

	/* labels are not indented */
	for _, ln := range body {
		if ln.kind != lineLabel {
			buf.WriteByte('\t')
		}
		buf.WriteString(ln.text)
		buf.WriteByte('\n')
	}

	/* return to the caller */
	verbatim(buf, epi)
	buf.WriteString("\tret\n")
	buf.WriteString("\t.size\t" + fn + ", .-" + fn + "\n")
}

func renderInline(buf *strings.Builder, k *kernel.Kernel, fn string, pro string, body []line, epi string, loops []kernel.LoopInfo) {
	buf.WriteString("void " + fn + "(void)\n{\n")
	indent := "\t"

	/* loop variables */
	for _, l := range loops {
		if l.Register != "" {
			buf.WriteString(indent + "register long " + l.Induction + " asm(\"" + l.Register + "\");\n")
		} else {
			buf.WriteString(indent + "long " + l.Induction + ";\n")
		}
	}

	/* the loop nest, parallel when asked to */
	if len(loops) != 0 {
		if pragma := openmp(k.OpenMP); pragma != "" {
			buf.WriteString(indent + pragma + "\n")
		}
	}
	for _, l := range loops {
		buf.WriteString(indent + "for (" + l.Induction + " = " + l.Start + "; " + l.Induction + " < " + l.End + "; " + l.Induction + " += " + step(l.Step) + ") {\n")
		indent += "\t"
	}

	/* the assembly block */
	verbatim(buf, pro)
	buf.WriteString(indent + "__asm__ volatile (\n")
	for _, ln := range body {
		buf.WriteString(indent + "\t" + strconv.Quote(ln.text+"\n\t") + "\n")
	}

	/* every register is clobbered */
	cc := []string{strconv.Quote("memory"), strconv.Quote("cc")}
	for _, r := range clobbers(k) {
		cc = append(cc, strconv.Quote(r))
	}
	buf.WriteString(indent + "\t::: " + strings.Join(cc, ", ") + ");\n")
	verbatim(buf, epi)

	/* close the loops */
	for range loops {
		indent = indent[:len(indent)-1]
		buf.WriteString(indent + "}\n")
	}
	buf.WriteString("}\n")
}

func step(v string) string {
	if v == "" {
		return "1"
	} else {
		return v
	}
}

func openmp(v kernel.OpenMP) string {
	var parts []string
	for _, c := range []struct {
		name string
		vars []string
	}{
		{"shared", v.Shared},
		{"private", v.Private},
		{"firstprivate", v.FirstPrivate},
		{"lastprivate", v.LastPrivate},
	} {
		if len(c.vars) != 0 {
			parts = append(parts, c.name+"("+strings.Join(c.vars, ", ")+")")
		}
	}
	if len(parts) == 0 && len(v.Used) == 0 {
		return ""
	}
	return strings.TrimSpace("#pragma omp parallel for " + strings.Join(parts, " "))
}
