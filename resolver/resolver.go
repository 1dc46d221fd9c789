// SPDX-License-Identifier: GPL-3.0-or-later

package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"

	happyeyeballs "github.com/mxinden/happyeyeballs-go"
	"github.com/mxinden/happyeyeballs-go/xlog"
)

// Resolver issues the SVCB/HTTPS, AAAA, and A queries a [happyeyeballs.Engine]
// asks for via [happyeyeballs.SendDnsQueryOutput], against a single
// configured upstream DNS server.
//
// All fields are safe to modify after construction but before first use.
type Resolver struct {
	// Client performs the wire exchange. Defaults to a plain UDP
	// [*dns.Client] from [NewResolver].
	Client *dns.Client

	// Server is the upstream nameserver address, e.g. "8.8.8.8:53".
	Server string

	// ErrClassifier classifies errors for structured logging.
	ErrClassifier xlog.ErrClassifier

	// Logger is the [xlog.SLogger] to use.
	Logger xlog.SLogger

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time
}

// NewResolver returns a [*Resolver] querying server over UDP with sane
// defaults for everything else.
func NewResolver(server string, logger xlog.SLogger) *Resolver {
	return &Resolver{
		Client:        &dns.Client{Net: "udp", Timeout: 5 * time.Second},
		Server:        server,
		ErrClassifier: xlog.DefaultErrClassifier,
		Logger:        logger,
		TimeNow:       time.Now,
	}
}

// Query issues one DNS query of recordType for name and translates the
// response into the shape a [happyeyeballs.Engine] expects to ingest back
// via a [happyeyeballs.DnsResultInput]. A DNS-layer failure (timeout,
// SERVFAIL, malformed response) is reported as Ok=false: from the engine's
// point of view a resolution error is evidence, not a protocol violation.
func (r *Resolver) Query(ctx context.Context, name happyeyeballs.TargetName, recordType happyeyeballs.DnsRecordType) happyeyeballs.DnsResultInput {
	qtype, err := questionType(recordType)
	if err != nil {
		return happyeyeballs.DnsResultInput{Target: name, RecordType: recordType, Ok: false}
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(string(name)), qtype)
	msg.RecursionDesired = true

	lc := &DNSExchangeLogContext{
		ErrClassifier:  r.ErrClassifier,
		Logger:         r.Logger,
		Protocol:       r.Client.Net,
		RecordType:     recordType.String(),
		RemoteAddr:     r.Server,
		ServerProtocol: r.Client.Net,
		TimeNow:        r.TimeNow,
	}

	t0 := r.TimeNow()
	deadline, _ := ctx.Deadline()
	lc.LogStart(t0, deadline)
	resp, _, err := r.Client.ExchangeContext(ctx, msg, r.Server)
	lc.LogDone(t0, deadline, err)

	if err != nil || resp == nil || resp.Rcode != dns.RcodeSuccess {
		return happyeyeballs.DnsResultInput{Target: name, RecordType: recordType, Ok: false}
	}

	switch recordType {
	case happyeyeballs.RecordTypeHTTPS:
		records := parseHTTPSRecords(resp)
		return happyeyeballs.DnsResultInput{
			Target: name, RecordType: recordType,
			Ok: len(records) > 0, HTTPSRecords: records,
		}
	default:
		addrs := parseAddressRecords(resp)
		return happyeyeballs.DnsResultInput{
			Target: name, RecordType: recordType,
			Ok: len(addrs) > 0, Addresses: addrs,
		}
	}
}

func questionType(recordType happyeyeballs.DnsRecordType) (uint16, error) {
	switch recordType {
	case happyeyeballs.RecordTypeHTTPS:
		return dns.TypeHTTPS, nil
	case happyeyeballs.RecordTypeAAAA:
		return dns.TypeAAAA, nil
	case happyeyeballs.RecordTypeA:
		return dns.TypeA, nil
	default:
		return 0, fmt.Errorf("resolver: unknown record type %v", recordType)
	}
}

func parseAddressRecords(resp *dns.Msg) []netip.Addr {
	var out []netip.Addr
	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.AAAA:
			if addr, ok := netip.AddrFromSlice(rec.AAAA); ok {
				out = append(out, addr.Unmap())
			}
		case *dns.A:
			if addr, ok := netip.AddrFromSlice(rec.A.To4()); ok {
				out = append(out, addr)
			}
		}
	}
	return out
}

func parseHTTPSRecords(resp *dns.Msg) []happyeyeballs.ServiceInfo {
	var out []happyeyeballs.ServiceInfo
	for _, rr := range resp.Answer {
		https, ok := rr.(*dns.HTTPS)
		if !ok {
			continue
		}
		out = append(out, serviceInfoFromSVCB(https.SVCB))
	}
	return out
}

func serviceInfoFromSVCB(svcb dns.SVCB) happyeyeballs.ServiceInfo {
	si := happyeyeballs.ServiceInfo{
		Priority:   svcb.Priority,
		TargetName: happyeyeballs.TargetName(normalizeTargetName(svcb.Target)),
		ALPN:       map[happyeyeballs.Protocol]bool{},
	}
	for _, kv := range svcb.Value {
		switch v := kv.(type) {
		case *dns.SVCBAlpn:
			for _, token := range v.Alpn {
				if p, ok := protocolFromALPN(token); ok {
					si.ALPN[p] = true
				}
			}
		case *dns.SVCBIPv4Hint:
			si.IPv4Hints = append(si.IPv4Hints, addrsFromIPSlice(v.Hint)...)
		case *dns.SVCBIPv6Hint:
			si.IPv6Hints = append(si.IPv6Hints, addrsFromIPSlice(v.Hint)...)
		case *dns.SVCBECHConfig:
			si.ECHConfig = append([]byte(nil), v.ECH...)
		}
	}
	return si
}

func normalizeTargetName(target string) string {
	if target == "." {
		return ""
	}
	return dnsTrimRoot(target)
}

func dnsTrimRoot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}

func protocolFromALPN(token string) (happyeyeballs.Protocol, bool) {
	switch token {
	case "h1", "http/1.1":
		return happyeyeballs.ProtocolH1, true
	case "h2":
		return happyeyeballs.ProtocolH2, true
	case "h3":
		return happyeyeballs.ProtocolH3, true
	default:
		return 0, false
	}
}

func addrsFromIPSlice(ips []net.IP) []netip.Addr {
	var out []netip.Addr
	for _, ip := range ips {
		if addr, ok := netip.AddrFromSlice(ip); ok {
			out = append(out, addr.Unmap())
		}
	}
	return out
}
