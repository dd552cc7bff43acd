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

    `github.com/cloudwego/microcreator/internal/desc`
    `github.com/cloudwego/microcreator/internal/kernel`
)

// Driver is an Engine loaded with the default passes and every registered
// plugin, bound to one description.
type Driver struct {
    *Engine
    desc *desc.Description
}

// NewDriver builds the default pipeline for d. max caps the outstanding
// candidates, 0 means unlimited.
func NewDriver(d *desc.Description, log *slog.Logger, max int) *Driver {
    ret := &Driver {
        Engine : NewEngine(log, max),
        desc   : d,
    }

    /* the default pipeline */
    for _, p := range Defaults() {
        ret.AddPass(p)
    }

    /* let the plugins rearrange it */
    for _, fn := range plugins {
        fn(ret.Engine)
    }
    return ret
}

// Drive runs k through the pipeline.
func (self *Driver) Drive(k *kernel.Kernel, sink Sink) (Stats, error) {
    self.log.Info("generating", "passes", len(self.passes), "max", self.max)
    st, err := self.Run(k, self.desc, sink)
    self.log.Info("generation done", "admitted", st.Admitted, "dropped", st.Dropped, "emitted", st.Emitted)
    return st, err
}
