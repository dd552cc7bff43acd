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
    `github.com/cloudwego/microcreator/internal/kernel`
)

const (
    InstructionSelectionPass = "Instruction Selection"
    StrideSelectionPass      = "Stride Selection"
    UnrollingPass            = "Unrolling"
    InductionInsertionPass   = "Induction Insertion"
    RegisterAllocationPass   = "Register Allocation"
)

// OperationChoicePass, ImmediateSelectionPass and OperandSwapPass name the
// phased passes.
func OperationChoicePass(phase kernel.Phase) string {
    return "Operation Choice (" + phase.String() + ")"
}

func ImmediateSelectionPass(phase kernel.Phase) string {
    return "Immediate Selection (" + phase.String() + ")"
}

func OperandSwapPass(phase kernel.Phase) string {
    return "Operand Swap (" + phase.String() + ")"
}

// Defaults lists the passes of the pipeline in order.
func Defaults() []Pass {
    return []Pass {
        NewInstructionSelection(),
        NewOperationChoice(kernel.BeforeUnroll),
        NewImmediateSelection(kernel.BeforeUnroll),
        NewOperandSwap(kernel.BeforeUnroll),
        NewStrideSelection(),
        NewUnrolling(),
        NewOperationChoice(kernel.AfterUnroll),
        NewImmediateSelection(kernel.AfterUnroll),
        NewOperandSwap(kernel.AfterUnroll),
        NewInductionInsertion(),
        NewRegisterAllocation(),
    }
}
