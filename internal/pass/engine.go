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
    `fmt`
    `log/slog`
    `sync/atomic`

    `github.com/cloudwego/microcreator/internal/desc`
    `github.com/cloudwego/microcreator/internal/kernel`
    `github.com/cloudwego/microcreator/internal/logs`
    `github.com/oleiade/lane`
)

var (
    AdmitCount   int64
    DropCount    int64
    DiscardCount int64
    EmitCount    int64
)

// Stats records what happened to the candidates of one run.
type Stats struct {
    Admitted  int
    Dropped   int
    Discarded int
    Emitted   int
    Entries   map[string]int
}

// Sink receives every candidate whose pipeline is over.
type Sink interface {
    Emit(k *kernel.Kernel, d *desc.Description) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(k *kernel.Kernel, d *desc.Description) error

func (self SinkFunc) Emit(k *kernel.Kernel, d *desc.Description) error {
    return self(k, d)
}

// Engine runs candidates through an ordered list of passes, depth first.
type Engine struct {
    log    *slog.Logger
    max    int
    passes []Pass
    warned map[string]bool
}

// NewEngine creates an empty engine. max caps the number of outstanding
// candidates, emitted ones included; 0 means unlimited.
func NewEngine(log *slog.Logger, max int) *Engine {
    return &Engine {
        log    : logs.Or(log),
        max    : max,
        warned : make(map[string]bool),
    }
}

func (self *Engine) Passes() []Pass {
    return append([]Pass(nil), self.passes...)
}

// Names lists the pass names in pipeline order.
func (self *Engine) Names() []string {
    ret := make([]string, 0, len(self.passes))
    for _, p := range self.passes {
        ret = append(ret, p.Name())
    }
    return ret
}

func (self *Engine) index(name string) int {
    for i, p := range self.passes {
        if p.Name() == name {
            return i
        }
    }
    return -1
}

func (self *Engine) insert(i int, p Pass) {
    if self.index(p.Name()) >= 0 {
        panic(fmt.Sprintf("pass: duplicated pass name %q", p.Name()))
    }
    self.passes = append(self.passes, nil)
    copy(self.passes[i + 1:], self.passes[i:])
    self.passes[i] = p
}

// AddPass appends p to the pipeline.
func (self *Engine) AddPass(p Pass) {
    self.insert(len(self.passes), p)
}

// AddPassAfter inserts p right after the named pass, or at the end of the
// pipeline if there is no such pass.
func (self *Engine) AddPassAfter(p Pass, after string) {
    if i := self.index(after); i >= 0 {
        self.insert(i + 1, p)
    } else {
        self.log.Warn("pass not found, appending to the pipeline", "pass", p.Name(), "after", after)
        self.insert(len(self.passes), p)
    }
}

// AddPassBefore inserts p right before the named pass, or at the beginning of
// the pipeline if there is no such pass.
func (self *Engine) AddPassBefore(p Pass, before string) {
    if i := self.index(before); i >= 0 {
        self.insert(i, p)
    } else {
        self.log.Warn("pass not found, prepending to the pipeline", "pass", p.Name(), "before", before)
        self.insert(0, p)
    }
}

// ReplacePass substitutes the named pass with p.
func (self *Engine) ReplacePass(p Pass, name string) bool {
    if i := self.index(name); i < 0 {
        self.log.Warn("pass not found, nothing replaced", "pass", name)
        return false
    } else if j := self.index(p.Name()); j >= 0 && j != i {
        panic(fmt.Sprintf("pass: duplicated pass name %q", p.Name()))
    } else {
        self.passes[i] = p
        return true
    }
}

// RemovePass drops the named pass.
func (self *Engine) RemovePass(name string) bool {
    if i := self.index(name); i < 0 {
        self.log.Warn("pass not found, nothing removed", "pass", name)
        return false
    } else {
        self.passes = append(self.passes[:i], self.passes[i + 1:]...)
        return true
    }
}

// following returns the pass after p, or End.
func (self *Engine) following(p Pass) Pass {
    if i := self.index(p.Name()); i < 0 || i + 1 >= len(self.passes) {
        return End
    } else {
        return self.passes[i + 1]
    }
}

func (self *Engine) first() Pass {
    if len(self.passes) == 0 {
        return End
    } else {
        return self.passes[0]
    }
}

func (self *Engine) gate(ctx *Context, e *Element) bool {
    ok := e.Next.Gate(ctx, e.Kernel)
    if fn := gateOverride; fn != nil {
        ok = fn(ctx, e.Kernel, e.Next, ok)
    }
    return ok
}

func (self *Engine) rebind(k *kernel.Kernel) {
    for _, name := range k.Rebind() {
        if !self.warned[name] {
            self.warned[name] = true
            self.log.Warn("linked induction variable cannot be resolved, left unlinked", "link", name)
        }
    }
}

// Run expands k through the pipeline and hands every terminal candidate to
// sink. Input errors returned by a pass abort the run.
func (self *Engine) Run(k *kernel.Kernel, d *desc.Description, sink Sink) (Stats, error) {
    var err error
    var ret []*Element

    /* the run context */
    st := Stats { Entries: make(map[string]int) }
    ctx := &Context { Desc: d, Log: self.log }

    /* the root candidate */
    self.rebind(k)
    q := lane.NewStack()
    live := 0

    /* admit the root through the same path as every other candidate */
    adm, err := self.admit(ctx, sink, &st, &live, nil, []*Element {{ Kernel: k, Next: self.first() }})
    if err != nil {
        return st, err
    }
    for i := len(adm) - 1; i >= 0; i-- {
        q.Push(adm[i])
    }

    /* run until the worklist is empty */
    for !q.Empty() {
        e := q.Pop().(*Element)
        p := e.Next
        live--

        /* the budget of this entry */
        if self.max <= 0 {
            ctx.budget = -1
        } else {
            ctx.budget = self.max - live
        }

        /* a closed gate skips the pass */
        if !self.gate(ctx, e) {
            ret = []*Element { { Kernel: e.Kernel } }
        } else {
            st.Entries[p.Name()]++
            self.log.Debug("running pass", "pass", p.Name(), "outstanding", live)

            /* run the pass */
            if ret, err = p.Entry(ctx, e); err != nil {
                self.log.Error("pass failed, aborting", "pass", p.Name(), "error", err)
                return st, err
            }

            /* nothing came out, the candidate is gone */
            if len(ret) == 0 {
                st.Discarded++
                atomic.AddInt64(&DiscardCount, 1)
                continue
            }
        }

        /* wire, rebind and admit the successors */
        if adm, err = self.admit(ctx, sink, &st, &live, p, ret); err != nil {
            return st, err
        }

        /* keep the first successor on top */
        for i := len(adm) - 1; i >= 0; i-- {
            q.Push(adm[i])
        }
    }
    return st, nil
}

func (self *Engine) admit(ctx *Context, sink Sink, st *Stats, live *int, from Pass, ret []*Element) ([]*Element, error) {
    adm := make([]*Element, 0, len(ret))
    for _, e := range ret {
        if e == nil || e.Kernel == nil {
            panic("pass: successor without a kernel")
        }

        /* wire to the following pass */
        if e.Next == nil {
            if from == nil {
                e.Next = self.first()
            } else {
                e.Next = self.following(from)
            }
        }

        /* colors only live as long as a pass */
        if e.Next != from {
            e.Kernel.ClearColor()
        }

        /* copies may have silently lost their bindings */
        self.rebind(e.Kernel)

        /* admission control, over the cap means dropped for good */
        if self.max > 0 && *live >= self.max {
            st.Dropped++
            atomic.AddInt64(&DropCount, 1)
            continue
        }

        /* admitted */
        *live++
        st.Admitted++
        atomic.AddInt64(&AdmitCount, 1)

        /* end of the pipeline */
        if e.Next == End {
            st.Emitted++
            atomic.AddInt64(&EmitCount, 1)
            if err := sink.Emit(e.Kernel, ctx.Desc); err != nil {
                self.log.Error("emission failed, aborting", "error", err)
                return nil, err
            }
        } else {
            adm = append(adm, e)
        }
    }
    return adm, nil
}
