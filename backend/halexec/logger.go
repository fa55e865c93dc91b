// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halexec

import (
	"context"
	"log/slog"
)

// discard silently drops all log records.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }
