//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/ooni/probe-cli/blob/v3.20.1/internal/netxlite/dialer.go
//

package connector

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/mxinden/happyeyeballs-go/xlog"
)

// QUICConn abstracts over [*quic.Conn].
//
// By using an abstraction we allow for unit testing without a real QUIC
// handshake and for swapping the underlying QUIC implementation.
type QUICConn interface {
	// CloseWithError closes the connection with an application error code.
	CloseWithError(code quic.ApplicationErrorCode, reason string) error

	// LocalAddr returns the local network address.
	LocalAddr() net.Addr

	// RemoteAddr returns the remote network address.
	RemoteAddr() net.Addr
}

var _ QUICConn = &quic.Conn{}

// QUICDialer abstracts dialing and handshaking a QUIC connection over UDP.
//
// By making [*QUICDialFunc] depend on an abstract implementation we allow
// for unit testing and for using alternative QUIC stacks.
type QUICDialer interface {
	DialAddrEarly(ctx context.Context, address string,
		tlsConfig *tls.Config, quicConfig *quic.Config) (QUICConn, error)
}

// DefaultQUICDialer implements [QUICDialer] using [quic-go].
//
// [quic-go]: https://github.com/quic-go/quic-go
//
// The zero value is ready to use.
type DefaultQUICDialer struct{}

var _ QUICDialer = DefaultQUICDialer{}

// DialAddrEarly implements [QUICDialer].
//
// This function uses [quic.DialAddrEarly], which allows sending 0-RTT data
// once a previous session has been resumed.
func (DefaultQUICDialer) DialAddrEarly(ctx context.Context, address string,
	tlsConfig *tls.Config, quicConfig *quic.Config) (QUICConn, error) {
	conn, err := quic.DialAddrEarly(ctx, address, tlsConfig, quicConfig)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// NewQUICDialFunc returns a new [*QUICDialFunc] with the default dialer.
//
// The cfg argument contains the common configuration for connector operations.
//
// The tlsConfig argument configures ALPN and certificate verification for
// the QUIC handshake; callers racing H3 endpoints set NextProtos to
// []string{"h3"}.
//
// The logger argument is the [xlog.SLogger] to use for structured logging.
func NewQUICDialFunc(cfg *Config, tlsConfig *tls.Config, logger xlog.SLogger) *QUICDialFunc {
	return &QUICDialFunc{
		Dialer:        cfg.QUICDialer,
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		QUICConfig:    &quic.Config{},
		TLSConfig:     tlsConfig,
		TimeNow:       cfg.TimeNow,
	}
}

// QUICDialFunc dials a [netip.AddrPort] and performs the QUIC handshake in a
// single step, since QUIC multiplexes transport establishment and the TLS
// handshake onto the same round trips.
//
// Returns either a valid [QUICConn] or an error, never both.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type QUICDialFunc struct {
	// Dialer is the [QUICDialer] to use.
	//
	// Set by [NewQUICDialFunc] from [Config.QUICDialer].
	Dialer QUICDialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewQUICDialFunc] from [Config.ErrClassifier].
	ErrClassifier xlog.ErrClassifier

	// Logger is the [xlog.SLogger] to use (configurable for testing or custom logging).
	//
	// Set by [NewQUICDialFunc] to the user-provided logger.
	Logger xlog.SLogger

	// QUICConfig is the [*quic.Config] to use for the handshake.
	//
	// Set by [NewQUICDialFunc] to an empty [*quic.Config].
	QUICConfig *quic.Config

	// TLSConfig is the [*tls.Config] to use for the handshake.
	//
	// Set by [NewQUICDialFunc] to the user-provided [*tls.Config] pointer.
	TLSConfig *tls.Config

	// TimeNow is the function to get the current time (configurable for testing).
	//
	// Set by [NewQUICDialFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

var _ Func[netip.AddrPort, QUICConn] = &QUICDialFunc{}

// Call invokes the [*QUICDialFunc] to dial and handshake the given [netip.AddrPort].
func (op *QUICDialFunc) Call(ctx context.Context, address netip.AddrPort) (QUICConn, error) {
	t0 := op.TimeNow()
	deadline, _ := ctx.Deadline()
	op.logQUICDialStart(address.String(), t0, deadline)
	conn, err := op.Dialer.DialAddrEarly(ctx, address.String(), op.TLSConfig, op.QUICConfig)
	op.logQUICDialDone(address.String(), t0, deadline, conn, err)
	return conn, err
}

func (op *QUICDialFunc) logQUICDialStart(address string, t0, deadline time.Time) {
	op.Logger.Info(
		"quicDialStart",
		slog.Time("deadline", deadline),
		slog.String("protocol", "udp"),
		slog.String("remoteAddr", address),
		slog.Time("t", t0),
		slog.Any("tlsOfferedProtocols", op.TLSConfig.NextProtos),
	)
}

func (op *QUICDialFunc) logQUICDialDone(address string, t0, deadline time.Time, conn QUICConn, err error) {
	var localAddr string
	if conn != nil {
		localAddr = conn.LocalAddr().String()
	}
	op.Logger.Info(
		"quicDialDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", op.ErrClassifier.Classify(err)),
		slog.String("localAddr", localAddr),
		slog.String("protocol", "udp"),
		slog.String("remoteAddr", address),
		slog.Time("t0", t0),
		slog.Time("t", op.TimeNow()),
	)
}
