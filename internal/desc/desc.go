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

package desc

import (
    `fmt`
)

// Mode selects the flavour of the emitted sources.
type Mode uint8

const (
    // ModeAssembly emits a standalone assembly function.
    ModeAssembly Mode = iota

    // ModeInline emits a C function wrapping the kernel in inline assembly.
    ModeInline

    // ModeC emits C loops around inline assembly, driven by the kernel loop information.
    ModeC
)

func (self Mode) String() string {
    switch self {
        case ModeAssembly : return "asm"
        case ModeInline   : return "inline"
        case ModeC        : return "c"
        default           : return fmt.Sprintf("Mode(%d)", self)
    }
}

// ParseMode converts the textual form of a Mode.
func ParseMode(s string) (Mode, error) {
    switch s {
        case "", "asm", "assembly" : return ModeAssembly, nil
        case "inline"              : return ModeInline, nil
        case "c"                   : return ModeC, nil
        default                    : return 0, fmt.Errorf("invalid output mode %q", s)
    }
}

// Description holds the global settings of one generation run.
type Description struct {
    Motif         string
    Separator     string
    Suffix        string
    OutputDir     string
    Verbose       int
    Mode          Mode
    Prologue      string
    Epilogue      string
    MaxBenchmarks int
    HW            *HWInformation
}

// NewDescription returns a Description with the default naming settings and
// the default hardware information.
func NewDescription() *Description {
    return &Description {
        Motif     : "benchmark",
        Separator : "_",
        OutputDir : ".",
        HW        : DefaultHWInformation(),
    }
}

// FileSuffix returns the file extension matching the output mode.
func (self *Description) FileSuffix() string {
    if self.Suffix != "" {
        return self.Suffix
    } else if self.Mode == ModeAssembly {
        return ".s"
    } else {
        return ".c"
    }
}

// Hardware returns the hardware information, falling back to the default one.
func (self *Description) Hardware() *HWInformation {
    if self.HW == nil {
        self.HW = DefaultHWInformation()
    }
    return self.HW
}
