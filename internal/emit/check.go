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
	"strings"

	"github.com/chenzhuoyu/iasm/x86_64"
	"github.com/cloudwego/microcreator/internal/kernel"
	"github.com/samber/lo"
)

// Check assembles the instructions and labels of the kernel with iasm, to
// catch candidates that cannot be encoded. Comments and inserted code are
// left out.
func Check(k *kernel.Kernel) (err error) {
	var src strings.Builder
	body, err := (&Emitter{files: make(map[string]string)}).lines(stripped(k))
	if err != nil {
		return err
	}

	/* only what the assembler has to encode */
	for _, ln := range body {
		if ln.kind != lineText {
			src.WriteString(ln.text)
			src.WriteByte('\n')
		}
	}

	/* the assembler may panic on unresolved references */
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("emit: %v", v)
		}
	}()

	/* assemble it */
	asm := new(x86_64.Assembler)
	asm.Options().InstructionAliasing = true
	return asm.Assemble(src.String())
}

// stripped copies the kernel without instruction comments or inserted code.
func stripped(k *kernel.Kernel) *kernel.Kernel {
	ret := k.Copy().(*kernel.Kernel)
	for _, p := range kernel.Instructions(ret) {
		p.Comment = ""
	}
	for _, kk := range kernel.Kernels(ret) {
		kk.SetStatements(withoutCode(kk.Statements()))
	}
	return ret
}

func withoutCode(ss []kernel.Statement) []kernel.Statement {
	return lo.Filter(ss, func(s kernel.Statement, _ int) bool {
		return s.Kind() != kernel.KindInsertCode
	})
}
