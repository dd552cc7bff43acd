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
    `fmt`
    `strings`
)

type StatementKind uint8

const (
    KindComment StatementKind = iota
    KindInsertCode
    KindInstruction
    KindKernel
)

func (self StatementKind) String() string {
    switch self {
        case KindComment     : return "comment"
        case KindInsertCode  : return "insert-code"
        case KindInstruction : return "instruction"
        case KindKernel      : return "kernel"
        default              : return fmt.Sprintf("StatementKind(%d)", self)
    }
}

// Meta holds the fields shared by every statement.
type Meta struct {
    Name       string
    LinkedName string
    Repeat     Range
    FileName   bool
    Color      int

    id     uint64
    origin uint64
}

func newMeta() Meta {
    return Meta { id: nextID() }
}

func (self *Meta) ID() uint64 {
    if self.id == 0 {
        self.id = nextID()
    }
    return self.id
}

// Origin is the id of the statement this one was first copied from, or its
// own id if it is an original.
func (self *Meta) Origin() uint64 {
    if self.origin != 0 {
        return self.origin
    } else {
        return self.ID()
    }
}

// IsCopy reports whether the statement was produced by a copy.
func (self *Meta) IsCopy() bool {
    return self.origin != 0
}

func (self *Meta) derive() Meta {
    ret := *self
    ret.origin = self.Origin()
    ret.id = nextID()
    return ret
}

func (self *Meta) similar(other *Meta) bool {
    return self.Name == other.Name &&
        self.LinkedName == other.LinkedName &&
        self.Repeat == other.Repeat &&
        self.FileName == other.FileName
}

// Statement is a node of a kernel body.
type Statement interface {
    fmt.Stringer
    Kind() StatementKind
    Meta() *Meta

    // Copy returns a deep copy of the statement. Register bindings inside the
    // copy must be re-established against the kernel that will own it.
    Copy() Statement

    // IsSimilar performs a structural comparison.
    IsSimilar(other Statement) bool

    UpdateUnroll(iter int)
    UpdateRegisterName(iter int)
    BindInductionVariables(scope Scope, force bool)

    // Render appends the textual form, one line per instruction.
    Render(buf *strings.Builder)

    clone(m CopyMap) Statement
}

// CopyMap maps the id of every statement of a copied tree to its copy.
type CopyMap map[uint64]Statement

// Lookup returns the copy of s, or nil if s was not part of the copied tree.
func (self CopyMap) Lookup(s Statement) Statement {
    if s == nil || self == nil {
        return nil
    } else {
        return self[s.Meta().ID()]
    }
}

// LookupKernel is Lookup for kernels.
func (self CopyMap) LookupKernel(k *Kernel) *Kernel {
    if v, ok := self.Lookup(k).(*Kernel); ok {
        return v
    } else {
        return nil
    }
}

// LookupInstruction is Lookup for instructions.
func (self CopyMap) LookupInstruction(p *Instruction) *Instruction {
    if v, ok := self.Lookup(p).(*Instruction); ok {
        return v
    } else {
        return nil
    }
}

func (self CopyMap) record(src Statement, dst Statement) {
    if self != nil {
        self[src.Meta().ID()] = dst
    }
}

// Comment is a comment line.
type Comment struct {
    meta Meta
    Text string
}

func NewComment(text string) *Comment {
    return &Comment { meta: newMeta(), Text: text }
}

func (self *Comment) Kind() StatementKind                  { return KindComment }
func (self *Comment) Meta() *Meta                          { return &self.meta }
func (self *Comment) UpdateUnroll(_ int)                   {}
func (self *Comment) UpdateRegisterName(_ int)             {}
func (self *Comment) BindInductionVariables(_ Scope, _ bool) {}

func (self *Comment) Copy() Statement {
    return self.clone(nil)
}

func (self *Comment) clone(m CopyMap) Statement {
    ret := &Comment { meta: self.meta.derive(), Text: self.Text }
    m.record(self, ret)
    return ret
}

func (self *Comment) IsSimilar(other Statement) bool {
    if v, ok := other.(*Comment); !ok {
        return false
    } else {
        return self.meta.similar(&v.meta) && self.Text == v.Text
    }
}

func (self *Comment) Render(buf *strings.Builder) {
    buf.WriteString("# ")
    buf.WriteString(self.Text)
    buf.WriteByte('\n')
}

func (self *Comment) String() string {
    return strings.TrimSuffix(renderStatement(self), "\n")
}

// InsertCode injects raw text, or the content of a file which is read at
// emission time.
type InsertCode struct {
    meta Meta
    Code string
    File string
}

func NewInsertCode(code string, file string) *InsertCode {
    return &InsertCode { meta: newMeta(), Code: code, File: file }
}

func (self *InsertCode) Kind() StatementKind                  { return KindInsertCode }
func (self *InsertCode) Meta() *Meta                          { return &self.meta }
func (self *InsertCode) UpdateUnroll(_ int)                   {}
func (self *InsertCode) UpdateRegisterName(_ int)             {}
func (self *InsertCode) BindInductionVariables(_ Scope, _ bool) {}

func (self *InsertCode) Copy() Statement {
    return self.clone(nil)
}

func (self *InsertCode) clone(m CopyMap) Statement {
    ret := &InsertCode { meta: self.meta.derive(), Code: self.Code, File: self.File }
    m.record(self, ret)
    return ret
}

func (self *InsertCode) IsSimilar(other Statement) bool {
    if v, ok := other.(*InsertCode); !ok {
        return false
    } else {
        return self.meta.similar(&v.meta) && self.Code == v.Code && self.File == v.File
    }
}

func (self *InsertCode) Render(buf *strings.Builder) {
    if self.Code != "" {
        buf.WriteString(self.Code)
        if !strings.HasSuffix(self.Code, "\n") {
            buf.WriteByte('\n')
        }
    }
}

func (self *InsertCode) String() string {
    if self.File != "" {
        return "#include " + self.File
    } else {
        return strings.TrimSuffix(renderStatement(self), "\n")
    }
}

func renderStatement(s Statement) string {
    var buf strings.Builder
    s.Render(&buf)
    return buf.String()
}
