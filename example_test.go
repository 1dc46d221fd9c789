// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs_test

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/mxinden/happyeyeballs-go"
)

// Example demonstrates the ProcessInput/ProcessOutput drain loop a caller
// wires up around the engine. The caller owns the clock and every
// collaborator (DNS resolver, dialer); this example fakes both with
// canned answers for a single address family to keep the trace short.
func Example() {
	engine, err := happyeyeballs.New("example.com", 443, nil)
	if err != nil {
		panic(err)
	}

	now := time.Unix(0, 0)
	pending := map[happyeyeballs.Id]happyeyeballs.DnsRecordType{}

	for {
		out, ok := engine.ProcessOutput(now)
		if !ok {
			break
		}
		switch o := out.(type) {
		case happyeyeballs.SendDnsQueryOutput:
			pending[o.ID] = o.RecordType
			switch o.RecordType {
			case happyeyeballs.RecordTypeAAAA:
				engine.ProcessInput(happyeyeballs.DnsResultInput{
					ID: o.ID, Target: o.Hostname, RecordType: o.RecordType, Ok: true,
					Addresses: []netip.Addr{netip.MustParseAddr("2001:db8::1")},
				}, now)
			default:
				engine.ProcessInput(happyeyeballs.DnsResultInput{
					ID: o.ID, Target: o.Hostname, RecordType: o.RecordType, Ok: false,
				}, now)
			}
		case happyeyeballs.AttemptConnectionOutput:
			fmt.Println("attempting", o.Endpoint.Address, o.Endpoint.Protocol)
			engine.ProcessInput(happyeyeballs.ConnectionResultInput{ID: o.ID}, now)
		case happyeyeballs.TimerOutput:
			now = now.Add(o.Duration)
		case happyeyeballs.SucceededOutput:
			fmt.Println("succeeded")
			return
		case happyeyeballs.FailedOutput:
			fmt.Println("failed")
			return
		}
	}

	// Output:
	// attempting [2001:db8::1]:443 h2-or-h1
	// succeeded
}
