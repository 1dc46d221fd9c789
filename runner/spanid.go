// SPDX-License-Identifier: GPL-3.0-or-later

package runner

import (
	"log/slog"

	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
	"github.com/mxinden/happyeyeballs-go/xlog"
)

// NewSpanID returns a UUIDv7 identifying one run of the engine loop.
//
// A span here is one call to [Run]: the full DNS-discovery-and-connection
// race for a single target, from construction to Succeeded/Failed. All
// structured log entries emitted by the resolver and connector adapters
// during that run share this span ID, enabling correlation across the
// DNS queries and connection attempts the engine interleaves.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}

// spanLogger tags every log entry it forwards with the span ID of the
// [Run] call that produced it. [Run] constructs one via [newSpanLogger]
// and passes it in place of [Runner.Logger] to the resolver and every
// connector constructor, so a race interleaving several DNS queries and
// connection attempts can be pieced back together from the logs alone.
type spanLogger struct {
	inner  xlog.SLogger
	spanID string
}

var _ xlog.SLogger = (*spanLogger)(nil)

// newSpanLogger wraps inner with a freshly minted span ID.
func newSpanLogger(inner xlog.SLogger) *spanLogger {
	return &spanLogger{inner: inner, spanID: NewSpanID()}
}

// Debug implements [xlog.SLogger].
func (l *spanLogger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, append([]any{slog.String("spanID", l.spanID)}, args...)...)
}

// Info implements [xlog.SLogger].
func (l *spanLogger) Info(msg string, args ...any) {
	l.inner.Info(msg, append([]any{slog.String("spanID", l.spanID)}, args...)...)
}
