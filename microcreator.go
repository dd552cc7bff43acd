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
	"io"
	"os"

	"github.com/cloudwego/microcreator/internal/desc"
	"github.com/cloudwego/microcreator/internal/emit"
	"github.com/cloudwego/microcreator/internal/kernel"
	"github.com/cloudwego/microcreator/internal/loader"
	"github.com/cloudwego/microcreator/internal/logs"
	"github.com/cloudwego/microcreator/internal/opts"
	"github.com/cloudwego/microcreator/internal/pass"
)

type (
	Kernel      = kernel.Kernel
	Description = desc.Description
	Engine      = pass.Engine
	Pass        = pass.Pass
	Element     = pass.Element
	Context     = pass.Context
	Sink        = pass.Sink
	Stats       = pass.Stats
)

// Generate expands k through the pass pipeline and hands every resulting
// benchmark to sink.
func Generate(k *Kernel, d *Description, sink Sink, options ...Option) (Stats, error) {
	return run(k, d, sink, setup(d, options))
}

// GenerateFile loads a YAML description and writes every benchmark into the
// output directory it names. It returns the file names.
func GenerateFile(path string, options ...Option) ([]string, error) {
	k, d, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return WriteBenchmarks(k, d, options...)
}

// WriteBenchmarks expands k and writes every benchmark into the output
// directory of d. It returns the file names.
func WriteBenchmarks(k *Kernel, d *Description, options ...Option) ([]string, error) {
	o := setup(d, options)
	sink := emit.New(o.Logger, o.Check)
	if _, err := run(k, d, sink, o); err != nil {
		return nil, err
	}
	return sink.Names(), nil
}

// GenerateSources is GenerateFile on a reader, keeping the sources in memory.
// It returns the sources by file name.
func GenerateSources(r io.Reader, options ...Option) (map[string]string, error) {
	k, d, err := loader.Load(r)
	if err != nil {
		return nil, err
	}

	/* collect the sources */
	o := setup(d, options)
	sink := emit.NewMemory(o.Logger, o.Check)
	if _, err = run(k, d, sink, o); err != nil {
		return nil, err
	}

	/* by file name */
	ret := make(map[string]string)
	for _, name := range sink.Names() {
		ret[name], _ = sink.Source(name)
	}
	return ret, nil
}

func setup(d *Description, options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}

	/* verbosity from the description unless a logger is given */
	if o.Logger == nil {
		o.Logger = logs.New(os.Stderr, max(o.Verbose, d.Verbose))
	}
	return o
}

func run(k *Kernel, d *Description, sink Sink, o opts.Options) (Stats, error) {
	return pass.NewDriver(d, o.Logger, o.BenchmarkCap(d.MaxBenchmarks)).Drive(k, sink)
}

// Passes lists the pass names of a new pipeline, plugins applied.
func Passes() []string {
	return pass.NewDriver(desc.NewDescription(), nil, 0).Names()
}

// RegisterPlugin adds a hook that may rearrange the passes of every pipeline
// created afterwards.
func RegisterPlugin(fn func(e *Engine)) {
	pass.RegisterPlugin(fn)
}

// RegisterGate installs the global gate override, nil removes it. The
// function receives the outcome of the pass' own gate.
func RegisterGate(fn func(ctx *Context, k *Kernel, p Pass, def bool) bool) {
	pass.RegisterGate(fn)
}
