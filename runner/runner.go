// SPDX-License-Identifier: GPL-3.0-or-later

// Package runner glues the pure [happyeyeballs.Engine] to the concrete
// resolver and connector collaborators: it owns the clock, the sockets,
// and the goroutines, translating engine outputs into real DNS queries and
// connection attempts and feeding their results back in.
package runner

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	happyeyeballs "github.com/mxinden/happyeyeballs-go"
	"github.com/mxinden/happyeyeballs-go/connector"
	"github.com/mxinden/happyeyeballs-go/resolver"
	"github.com/mxinden/happyeyeballs-go/xlog"
)

// Result is what [Run] returns on success: the established connection and
// the [happyeyeballs.Endpoint] it was established to.
type Result struct {
	Conn     net.Conn
	Endpoint happyeyeballs.Endpoint
}

// event is the internal union of everything the loop in [Run] selects on:
// a completed DNS query or a completed connection attempt. Exactly one of
// dns/conn is set. A completed connection attempt additionally carries the
// endpoint and, on success, the established [net.Conn] — both are folded
// into the loop's bookkeeping only by the single goroutine running [Run],
// never by the background dialers, so none of that state needs a lock.
type event struct {
	dns      *happyeyeballs.DnsResultInput
	conn     *happyeyeballs.ConnectionResultInput
	endpoint happyeyeballs.Endpoint
	estConn  net.Conn
}

// Runner bundles the collaborators one call to [Run] needs.
type Runner struct {
	// Resolver issues the DNS queries the engine schedules. [Run] calls
	// it through a per-call shallow copy with Logger replaced by a
	// span-tagged logger, so Resolver itself is safe to share across
	// concurrent [Run] calls.
	Resolver *resolver.Resolver

	// ConnectorConfig supplies the Dialer, QUICDialer, ErrClassifier, and
	// clock used to build per-attempt [connector.ConnectFunc],
	// [connector.TLSHandshakeFunc], and [connector.QUICDialFunc] values.
	ConnectorConfig *connector.Config

	// TLSConfig is cloned per TLS/QUIC attempt with ALPN set from the
	// endpoint's negotiated protocol.
	TLSConfig *tls.Config

	// Logger receives structured events for every collaborator call,
	// tagged per call to [Run] with that run's span ID (see [NewSpanID]).
	Logger xlog.SLogger
}

// Run drives one racing attempt against host:port to completion: it
// constructs a [happyeyeballs.Engine], dispatches every output to the real
// DNS resolver and connection dialers, and returns either the first
// established connection or a definitive error once the engine reports
// Failed.
//
// Run cancels every other in-flight DNS query and connection attempt
// before returning, whichever way it returns. Every log line emitted
// during the call — DNS exchanges, connects, handshakes — carries a
// single span ID unique to this call, so a race interleaving several
// queries and attempts can be correlated back to the [Run] that issued
// them.
func (r *Runner) Run(ctx context.Context, host string, port uint16, cfg *happyeyeballs.NetworkConfig) (*Result, error) {
	engine, err := happyeyeballs.New(host, port, cfg)
	if err != nil {
		return nil, err
	}

	logger := newSpanLogger(r.Logger)
	logger.Info("runStart", slog.String("host", host), slog.Int("port", int(port)))
	defer logger.Info("runDone")

	resolverForRun := *r.Resolver
	resolverForRun.Logger = logger

	ctx, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	events := make(chan event, 8)
	var wg sync.WaitGroup
	defer wg.Wait()

	attemptCancel := map[netip.AddrPort]context.CancelFunc{}
	attemptConn := map[netip.AddrPort]established{}

	now := time.Now()
	var timer *time.Timer
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	closeAllExcept := func(keep netip.AddrPort) {
		for addr, est := range attemptConn {
			if addr != keep {
				est.conn.Close()
			}
		}
	}

	waitForEvent := func() (event, error) {
		select {
		case <-ctx.Done():
			return event{}, ctx.Err()
		case ev := <-events:
			return ev, nil
		}
	}

	apply := func(ev event) {
		now = time.Now()
		switch {
		case ev.dns != nil:
			engine.ProcessInput(*ev.dns, now)
		case ev.conn != nil:
			if ev.conn.Err == nil && ev.estConn != nil {
				attemptConn[ev.endpoint.Address] = established{conn: ev.estConn, endpoint: ev.endpoint}
			}
			engine.ProcessInput(*ev.conn, now)
		}
	}

	for {
		out, ok := engine.ProcessOutput(now)
		if !ok {
			stopTimer()
			ev, err := waitForEvent()
			if err != nil {
				return nil, err
			}
			apply(ev)
			continue
		}

		switch o := out.(type) {
		case happyeyeballs.SendDnsQueryOutput:
			wg.Add(1)
			go func(o happyeyeballs.SendDnsQueryOutput) {
				defer wg.Done()
				res := resolverForRun.Query(ctx, o.Hostname, o.RecordType)
				res.ID = o.ID
				select {
				case events <- event{dns: &res}:
				case <-ctx.Done():
				}
			}(o)

		case happyeyeballs.AttemptConnectionOutput:
			attemptCtx, attemptCancelFunc := context.WithCancel(ctx)
			attemptCancel[o.Endpoint.Address] = attemptCancelFunc
			wg.Add(1)
			go func(o happyeyeballs.AttemptConnectionOutput) {
				defer wg.Done()
				conn, dialErr := r.dial(attemptCtx, o.Endpoint, logger)
				res := happyeyeballs.ConnectionResultInput{ID: o.ID, Err: dialErr}
				select {
				case events <- event{conn: &res, endpoint: o.Endpoint, estConn: conn}:
				case <-ctx.Done():
					if conn != nil {
						conn.Close()
					}
				}
			}(o)

		case happyeyeballs.CancelConnectionOutput:
			if cancel, found := attemptCancel[o.Address]; found {
				cancel()
				delete(attemptCancel, o.Address)
			}
			if est, found := attemptConn[o.Address]; found {
				est.conn.Close()
				delete(attemptConn, o.Address)
			}

		case happyeyeballs.TimerOutput:
			stopTimer()
			timer = time.NewTimer(o.Duration)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
				now = now.Add(o.Duration)
			case ev := <-events:
				apply(ev)
			}

		case happyeyeballs.SynthesizeNat64Output:
			logger.Info("synthesizeNat64Requested")

		case happyeyeballs.SucceededOutput:
			return r.finishSuccess(attemptConn, closeAllExcept)

		case happyeyeballs.FailedOutput:
			closeAllExcept(netip.AddrPort{})
			return nil, fmt.Errorf("runner: unable to establish a connection to %s:%d", host, port)
		}
	}
}

// established pairs a live connection with the endpoint it was dialed to.
type established struct {
	conn     net.Conn
	endpoint happyeyeballs.Endpoint
}

// finishSuccess picks the single surviving established connection. By the
// time [happyeyeballs.SucceededOutput] is emitted, the engine has already
// had [happyeyeballs.CancelConnectionOutput] close every other attempt, so
// exactly one entry remains.
func (r *Runner) finishSuccess(attemptConn map[netip.AddrPort]established, closeAllExcept func(netip.AddrPort)) (*Result, error) {
	if len(attemptConn) != 1 {
		closeAllExcept(netip.AddrPort{})
		return nil, fmt.Errorf("runner: expected exactly one surviving connection, found %d", len(attemptConn))
	}
	for _, est := range attemptConn {
		return &Result{Conn: est.conn, Endpoint: est.endpoint}, nil
	}
	panic("unreachable")
}

func (r *Runner) dial(ctx context.Context, ep happyeyeballs.Endpoint, logger xlog.SLogger) (net.Conn, error) {
	if ep.Protocol == happyeyeballs.AttemptH3 {
		return r.dialQUIC(ctx, ep, logger)
	}
	return r.dialTCP(ctx, ep, logger)
}

// dialTCP composes the endpoint, connect, observe, and cancel-watch
// primitives into a pipeline feeding the TLS handshake: the endpoint
// itself is the pipeline's source (via [connector.NewEndpointFunc], so
// the call takes no argument but [connector.Unit]), Connect establishes
// the TCP socket, ObserveConn logs the I/O happening over it, and
// CancelWatch closes it the moment attemptCtx is cancelled (by a sibling
// attempt winning the race) rather than waiting for an in-progress read
// or write to notice.
func (r *Runner) dialTCP(ctx context.Context, ep happyeyeballs.Endpoint, logger xlog.SLogger) (net.Conn, error) {
	tlsConfig := r.TLSConfig.Clone()
	tlsConfig.NextProtos = alpnTokens(ep.Protocol)

	pipeline := connector.Compose5(
		connector.NewEndpointFunc(ep.Address),
		connector.NewConnectFunc(r.ConnectorConfig, "tcp", logger),
		connector.NewObserveConnFunc(r.ConnectorConfig, logger),
		connector.NewCancelWatchFunc(),
		connector.NewTLSHandshakeFunc(r.ConnectorConfig, tlsConfig, logger),
	)
	return pipeline.Call(ctx, connector.Unit{})
}

func (r *Runner) dialQUIC(ctx context.Context, ep happyeyeballs.Endpoint, logger xlog.SLogger) (net.Conn, error) {
	tlsConfig := r.TLSConfig.Clone()
	tlsConfig.NextProtos = alpnTokens(ep.Protocol)
	dialFunc := connector.NewQUICDialFunc(r.ConnectorConfig, tlsConfig, logger)
	qconn, err := dialFunc.Call(ctx, ep.Address)
	if err != nil {
		return nil, err
	}
	return quicConnAdapter{qconn}, nil
}

func alpnTokens(p happyeyeballs.ConnectionAttemptProtocol) []string {
	switch p {
	case happyeyeballs.AttemptH3:
		return []string{"h3"}
	case happyeyeballs.AttemptH2OrH1:
		return []string{"h2", "http/1.1"}
	case happyeyeballs.AttemptH2:
		return []string{"h2"}
	case happyeyeballs.AttemptH1:
		return []string{"http/1.1"}
	default:
		return nil
	}
}

// quicConnAdapter makes a [connector.QUICConn] satisfy [net.Conn] enough
// for [Result.Conn] to carry either transport uniformly. QUIC has no
// stream-oriented Read/Write at the connection level; callers that need a
// QUIC stream must type-assert back to [connector.QUICConn].
type quicConnAdapter struct {
	connector.QUICConn
}

func (quicConnAdapter) Read([]byte) (int, error)         { return 0, net.ErrClosed }
func (quicConnAdapter) Write([]byte) (int, error)        { return 0, net.ErrClosed }
func (quicConnAdapter) Close() error                     { return nil }
func (quicConnAdapter) SetDeadline(time.Time) error      { return nil }
func (quicConnAdapter) SetReadDeadline(time.Time) error  { return nil }
func (quicConnAdapter) SetWriteDeadline(time.Time) error { return nil }
