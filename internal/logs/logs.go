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

package logs

import (
	"context"
	"io"
	"log/slog"
)

// Level maps a verbosity to the lowest severity that gets logged.
func Level(verbose int) slog.Level {
	switch {
	case verbose <= 0:
		return slog.LevelError
	case verbose == 1:
		return slog.LevelWarn
	case verbose == 2:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// New creates a text logger writing to w with the threshold of verbose.
func New(w io.Writer, verbose int) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(verbose)}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (self discardHandler) WithAttrs([]slog.Attr) slog.Handler   { return self }
func (self discardHandler) WithGroup(string) slog.Handler        { return self }

// Or returns l, or a discarding logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	} else {
		return l
	}
}
