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

package microcreator

import (
	"strings"
	"testing"

	"github.com/cloudwego/microcreator/internal/logs"
	"github.com/cloudwego/microcreator/internal/pass"
	"github.com/stretchr/testify/require"
)

const copyLoop = `
kernel:
  label: L0
  unroll: {min: 1, max: 2}
  inductions:
    - register: r0
      stride: 8
  statements:
    - instruction:
        op: mov
        size: 64
        operands:
          - memory: {base: r0}
          - register: r1
`

func generate(t *testing.T, options ...Option) map[string]string {
	ret, err := GenerateSources(strings.NewReader(copyLoop), append([]Option{WithLogger(logs.Discard())}, options...)...)
	require.NoError(t, err)
	return ret
}

func TestGenerateSources(t *testing.T) {
	src := generate(t)
	require.Len(t, src, 2)
	all := src["benchmark_0.s"] + src["benchmark_1.s"]
	require.Contains(t, all, "\tmovq (%r10), %r11\n\taddq $8, %r10\n")
	require.Contains(t, all, "\tmovq (%r10), %r11\n\tmovq 8(%r10), %r11\n\taddq $16, %r10\n")
}

func TestGenerateSources_Cap(t *testing.T) {
	require.Len(t, generate(t, WithMaxBenchmarks(1)), 1)
	require.Len(t, generate(t, WithCheck(true)), 2)
}

func TestGenerateSources_BadInput(t *testing.T) {
	_, err := GenerateSources(strings.NewReader("kernel: [1, 2]"), WithLogger(logs.Discard()))
	require.Error(t, err)
}

func TestOptions_Invalid(t *testing.T) {
	require.Panics(t, func() { WithMaxBenchmarks(-1) })
	require.Panics(t, func() { WithVerbose(-1) })
	old := SetMaxBenchmarks(5)
	require.Equal(t, 5, SetMaxBenchmarks(old))
}

func TestPlugins(t *testing.T) {
	t.Cleanup(pass.ResetPlugins)
	require.Contains(t, Passes(), pass.UnrollingPass)

	/* a gate that never unrolls */
	RegisterGate(func(_ *Context, _ *Kernel, p Pass, def bool) bool {
		return def && p.Name() != pass.UnrollingPass
	})
	require.Len(t, generate(t), 1)

	/* a plugin that drops the pass altogether */
	RegisterGate(nil)
	RegisterPlugin(func(e *Engine) { e.RemovePass(pass.UnrollingPass) })
	require.NotContains(t, Passes(), pass.UnrollingPass)
	require.Len(t, generate(t), 1)
}
