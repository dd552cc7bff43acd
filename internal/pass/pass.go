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
    `log/slog`
    `math`

    `github.com/cloudwego/microcreator/internal/desc`
    `github.com/cloudwego/microcreator/internal/kernel`
)

// Pass is one named stage of the pipeline. Names are unique within an engine.
type Pass interface {
    Name() string

    // Gate tells whether the pass applies to the candidate at all.
    Gate(ctx *Context, k *kernel.Kernel) bool

    // Entry transforms one candidate into zero or more successors. Successors
    // with a nil Next continue with the pass that follows this one.
    Entry(ctx *Context, e *Element) ([]*Element, error)
}

// Element is a candidate: one kernel tree and the pass that runs next.
type Element struct {
    Kernel *kernel.Kernel
    Next   Pass
}

// Context is what a pass gets to see besides the candidate itself.
type Context struct {
    Desc   *desc.Description
    Log    *slog.Logger
    budget int
}

// Budget is the number of successors the engine will admit from the current
// entry, the rest are dropped. Passes may stop generating once they reach it.
func (self *Context) Budget() int {
    if self.budget < 0 {
        return math.MaxInt
    } else {
        return self.budget
    }
}

type _End struct{}

func (_End) Name() string                                    { return "<end>" }
func (_End) Gate(*Context, *kernel.Kernel) bool              { return false }
func (_End) Entry(*Context, *Element) ([]*Element, error)    { return nil, nil }

// End is the next pass of a candidate whose pipeline is over.
var End Pass = _End{}

// Func adapts plain functions to a Pass. A nil GateFunc always passes.
type Func struct {
    PassName  string
    GateFunc  func(ctx *Context, k *kernel.Kernel) bool
    EntryFunc func(ctx *Context, e *Element) ([]*Element, error)
}

func (self *Func) Name() string {
    return self.PassName
}

func (self *Func) Gate(ctx *Context, k *kernel.Kernel) bool {
    return self.GateFunc == nil || self.GateFunc(ctx, k)
}

func (self *Func) Entry(ctx *Context, e *Element) ([]*Element, error) {
    if self.EntryFunc == nil {
        return done(e), nil
    } else {
        return self.EntryFunc(ctx, e)
    }
}

// GateOverride replaces the gate of every pass. It receives the result of
// the pass' own gate.
type GateOverride func(ctx *Context, k *kernel.Kernel, p Pass, def bool) bool

// Plugin is run on every new Driver and may rearrange its passes.
type Plugin func(e *Engine)

var (
    gateOverride GateOverride
    plugins      []Plugin
)

// RegisterGate installs the global gate override, nil removes it.
func RegisterGate(fn GateOverride) {
    gateOverride = fn
}

// RegisterPlugin adds a hook applied to every Driver created afterwards.
func RegisterPlugin(fn Plugin) {
    plugins = append(plugins, fn)
}

// ResetPlugins removes every registered plugin and the gate override.
func ResetPlugins() {
    plugins = nil
    gateOverride = nil
}

// done hands the candidate over to the following pass.
func done(e *Element) []*Element {
    return []*Element {{ Kernel: e.Kernel }}
}

func successors(next Pass, kk ...*kernel.Kernel) []*Element {
    ret := make([]*Element, 0, len(kk))
    for _, k := range kk {
        ret = append(ret, &Element { Kernel: k, Next: next })
    }
    return ret
}
