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

package kernel

import (
    `strings`

    `github.com/oleiade/lane`
)

// LoopInfo describes a C loop wrapped around the kernel when emitting C code.
type LoopInfo struct {
    Induction string
    Register  string
    Start     string
    End       string
    Step      string
}

// OpenMP lists the variables of each OpenMP data-sharing category.
type OpenMP struct {
    Shared       []string
    Private      []string
    FirstPrivate []string
    LastPrivate  []string
    Used         []string
}

func (self OpenMP) clone() OpenMP {
    return OpenMP {
        Shared       : cloneStrings(self.Shared),
        Private      : cloneStrings(self.Private),
        FirstPrivate : cloneStrings(self.FirstPrivate),
        LastPrivate  : cloneStrings(self.LastPrivate),
        Used         : cloneStrings(self.Used),
    }
}

func (self OpenMP) equal(other OpenMP) bool {
    return equalStrings(self.Shared, other.Shared) &&
        equalStrings(self.Private, other.Private) &&
        equalStrings(self.FirstPrivate, other.FirstPrivate) &&
        equalStrings(self.LastPrivate, other.LastPrivate) &&
        equalStrings(self.Used, other.Used)
}

// Kernel is a block of statements together with its induction variables and
// the sweep parameters that apply to it. Kernels nest.
type Kernel struct {
    meta             Meta
    body             []Statement
    inductions       map[string]*Induction
    order            []string
    Unroll           Range
    Bundle           Range
    OpenMP           OpenMP
    Loops            []LoopInfo
    Randomize        bool
    Combination      bool
    ActualUnroll     int
    LabelName        string
    LabelInstruction string
    UnrollLink       string
}

func NewKernel() *Kernel {
    return &Kernel {
        meta       : newMeta(),
        inductions : make(map[string]*Induction),
    }
}

func (self *Kernel) Kind() StatementKind {
    return KindKernel
}

func (self *Kernel) Meta() *Meta {
    return &self.meta
}

func (self *Kernel) Len() int {
    return len(self.body)
}

func (self *Kernel) At(i int) Statement {
    return self.body[i]
}

// Statements returns the body. The slice must not be modified, use
// SetStatements, Add or Replace instead.
func (self *Kernel) Statements() []Statement {
    return self.body
}

func (self *Kernel) SetStatements(ss []Statement) {
    self.body = ss
}

func (self *Kernel) Add(ss ...Statement) {
    self.body = append(self.body, ss...)
}

// ReplaceAt swaps the i-th statement and returns the old one.
func (self *Kernel) ReplaceAt(i int, s Statement) Statement {
    old := self.body[i]
    self.body[i] = s
    return old
}

// Replace substitutes old with the given statements, searching nested
// kernels as well. It reports whether old was found.
func (self *Kernel) Replace(old Statement, with ...Statement) bool {
    for i, s := range self.body {
        if s == old {
            self.splice(i, with)
            return true
        }
        if k, ok := s.(*Kernel); ok && k.Replace(old, with...) {
            return true
        }
    }
    return false
}

func (self *Kernel) splice(i int, with []Statement) {
    nb := len(self.body) - 1 + len(with)
    ret := make([]Statement, 0, nb)
    ret = append(ret, self.body[:i]...)
    ret = append(ret, with...)
    ret = append(ret, self.body[i + 1:]...)
    self.body = ret
}

// Inductions returns the induction variables in declaration order.
func (self *Kernel) Inductions() []*Induction {
    ret := make([]*Induction, 0, len(self.order))
    for _, name := range self.order {
        ret = append(ret, self.inductions[name])
    }
    return ret
}

// AddInduction registers an induction variable under its key, which must be
// unique within the kernel.
func (self *Kernel) AddInduction(ind *Induction) error {
    key := ind.Key()
    if key == "" {
        return EInput(self.meta.Name, "induction variable without a register name")
    }
    if _, ok := self.inductions[key]; ok {
        return EInputf(self.meta.Name, "duplicated induction variable %s", key)
    }
    if self.inductions == nil {
        self.inductions = make(map[string]*Induction)
    }
    self.inductions[key] = ind
    self.order = append(self.order, key)
    return nil
}

// LookupInduction implements Scope over this kernel only.
func (self *Kernel) LookupInduction(name string) *Induction {
    return self.inductions[name]
}

type _ChainScope struct {
    k     *Kernel
    outer Scope
}

func (self _ChainScope) LookupInduction(name string) *Induction {
    if v := self.k.inductions[name]; v != nil {
        return v
    } else if self.outer != nil {
        return self.outer.LookupInduction(name)
    } else {
        return nil
    }
}

func (self *Kernel) scope(outer Scope) Scope {
    return _ChainScope { k: self, outer: outer }
}

// LinkInductions resolves every induction LinkName through the kernel and
// its enclosing scopes, nested kernels included. It returns the names that
// could not be resolved, those inductions are left unlinked.
func (self *Kernel) LinkInductions(outer Scope) (unresolved []string) {
    sc := self.scope(outer)

    /* resolve the links of this kernel */
    for _, name := range self.order {
        ind := self.inductions[name]
        ind.link = nil

        /* not linked at all */
        if ind.LinkName == "" {
            continue
        }

        /* lookup the target, refusing cycles */
        if dst := sc.LookupInduction(ind.LinkName); dst == nil || linksTo(dst, ind) {
            unresolved = append(unresolved, ind.LinkName)
        } else {
            ind.link = dst
        }
    }

    /* nested kernels see the inductions of this one */
    for _, s := range self.body {
        if k, ok := s.(*Kernel); ok {
            unresolved = append(unresolved, k.LinkInductions(sc)...)
        }
    }
    return
}

func linksTo(from *Induction, to *Induction) bool {
    for p := from; p != nil; p = p.link {
        if p == to {
            return true
        }
    }
    return false
}

// BindInductionVariables binds the registers of every statement against this
// kernel, falling back to the enclosing scope.
func (self *Kernel) BindInductionVariables(outer Scope, force bool) {
    sc := self.scope(outer)
    for _, s := range self.body {
        s.BindInductionVariables(sc, force)
    }
}

// Rebind re-establishes all induction links and register bindings of the
// tree rooted at this kernel, and returns unresolved link names.
func (self *Kernel) Rebind() []string {
    ret := self.LinkInductions(nil)
    self.BindInductionVariables(nil, true)
    return ret
}

func (self *Kernel) Copy() Statement {
    ret, _ := self.CopyWithMap()
    return ret
}

// CopyWithMap deep-copies the tree and returns the map from every source
// statement id to its copy.
func (self *Kernel) CopyWithMap() (*Kernel, CopyMap) {
    m := make(CopyMap)
    ret := self.clone(m).(*Kernel)
    ret.Rebind()
    return ret, m
}

func (self *Kernel) clone(m CopyMap) Statement {
    ret := &Kernel {
        meta             : self.meta.derive(),
        body             : make([]Statement, 0, len(self.body)),
        inductions       : make(map[string]*Induction, len(self.inductions)),
        order            : cloneStrings(self.order),
        Unroll           : self.Unroll,
        Bundle           : self.Bundle,
        OpenMP           : self.OpenMP.clone(),
        Loops            : append([]LoopInfo(nil), self.Loops...),
        Randomize        : self.Randomize,
        Combination      : self.Combination,
        ActualUnroll     : self.ActualUnroll,
        LabelName        : self.LabelName,
        LabelInstruction : self.LabelInstruction,
        UnrollLink       : self.UnrollLink,
    }

    /* copy the induction variables, detached */
    for _, name := range self.order {
        ret.inductions[name] = self.inductions[name].clone()
    }

    /* rebuild the links that stay inside this kernel */
    for _, name := range self.order {
        if p := self.inductions[name].link; p != nil {
            if dst := ret.inductions[p.Key()]; dst != nil && self.inductions[p.Key()] == p {
                ret.inductions[name].link = dst
            }
        }
    }

    /* copy the body */
    for _, s := range self.body {
        ret.body = append(ret.body, s.clone(m))
    }

    /* record the kernel itself */
    m.record(self, ret)
    return ret
}

// Append copies the statements of other to the end of this kernel, together
// with the induction variables this kernel does not have yet.
func (self *Kernel) Append(other *Kernel) {
    for _, name := range other.order {
        if _, ok := self.inductions[name]; !ok {
            if self.inductions == nil {
                self.inductions = make(map[string]*Induction)
            }
            self.inductions[name] = other.inductions[name].clone()
            self.order = append(self.order, name)
        }
    }
    for _, s := range other.body {
        self.body = append(self.body, s.clone(nil))
    }
    self.Rebind()
}

// FindOrigin returns the first statement of the tree copied from the
// statement with the given id.
func (self *Kernel) FindOrigin(origin uint64) Statement {
    it := NewIter(self)
    for it.Next() {
        if m := it.Statement().Meta(); m.origin == origin {
            return it.Statement()
        }
    }
    return nil
}

// FindByName searches the tree breadth-first for a statement with the given
// name. The kernel itself is considered first.
func (self *Kernel) FindByName(name string) Statement {
    if name == "" {
        return nil
    }
    if self.meta.Name == name {
        return self
    }

    /* breadth-first, so that the closest statement wins */
    q := lane.NewQueue()
    q.Enqueue(self)

    /* scan every kernel */
    for !q.Empty() {
        k := q.Dequeue().(*Kernel)
        for _, s := range k.body {
            if s.Meta().Name == name {
                return s
            }
            if nk, ok := s.(*Kernel); ok {
                q.Enqueue(nk)
            }
        }
    }
    return nil
}

func (self *Kernel) IsSimilar(other Statement) bool {
    v, ok := other.(*Kernel)
    if !ok {
        return false
    }

    /* compare all the scalar fields */
    if !self.meta.similar(&v.meta) ||
        self.Unroll           != v.Unroll           ||
        self.Bundle           != v.Bundle           ||
        self.Randomize        != v.Randomize        ||
        self.Combination      != v.Combination      ||
        self.ActualUnroll     != v.ActualUnroll     ||
        self.LabelName        != v.LabelName        ||
        self.LabelInstruction != v.LabelInstruction ||
        self.UnrollLink       != v.UnrollLink       ||
        !self.OpenMP.equal(v.OpenMP)                ||
        len(self.Loops) != len(v.Loops)             ||
        len(self.body)  != len(v.body)              ||
        len(self.order) != len(v.order) {
        return false
    }

    /* loop descriptions */
    for i, p := range self.Loops {
        if p != v.Loops[i] {
            return false
        }
    }

    /* statements, pairwise */
    for i, s := range self.body {
        if !s.IsSimilar(v.body[i]) {
            return false
        }
    }

    /* induction variables, pairwise in declaration order */
    for i, name := range self.order {
        if v.order[i] != name || !self.inductions[name].IsSimilar(v.inductions[name]) {
            return false
        }
    }
    return true
}

// ClearColor resets the traversal marker of the whole tree.
func (self *Kernel) ClearColor() {
    self.meta.Color = 0
    for _, s := range self.body {
        if k, ok := s.(*Kernel); ok {
            k.ClearColor()
        } else {
            s.Meta().Color = 0
        }
    }
}

func (self *Kernel) UpdateUnroll(iter int) {
    for _, s := range self.body {
        s.UpdateUnroll(iter)
    }
}

func (self *Kernel) UpdateRegisterName(iter int) {
    for _, s := range self.body {
        s.UpdateRegisterName(iter)
    }
}

// UpdateInductionUnrolling records the chosen unroll factor in every
// induction variable of this kernel.
func (self *Kernel) UpdateInductionUnrolling(factor int) {
    for _, name := range self.order {
        self.inductions[name].SetUnroll(factor)
    }
}

func (self *Kernel) Render(buf *strings.Builder) {
    if self.LabelName != "" {
        buf.WriteString(self.LabelName)
        buf.WriteString(":\n")
    }

    /* the body */
    for _, s := range self.body {
        s.Render(buf)
    }

    /* the backward branch */
    if self.LabelName != "" && self.LabelInstruction != "" {
        buf.WriteString(self.LabelInstruction)
        buf.WriteByte(' ')
        buf.WriteString(self.LabelName)
        buf.WriteByte('\n')
    }
}

func (self *Kernel) String() string {
    return renderStatement(self)
}

func cloneStrings(v []string) []string {
    if v == nil {
        return nil
    } else {
        return append([]string(nil), v...)
    }
}

func equalStrings(a []string, b []string) bool {
    if len(a) != len(b) {
        return false
    }
    for i, v := range a {
        if b[i] != v {
            return false
        }
    }
    return true
}
