// Package stats holds the in-process tunnel counters shared by the GTP and
// IP listeners and exposed through the admin HTTP surface.
package stats

import "sync"

// Counters is a mutex-guarded set of monotonically increasing packet
// counters. All fields are accessed only through the Inc* methods; the zero
// value is ready to use.
type Counters struct {
	mu sync.Mutex

	RxGTP         uint64
	RxIgnoredGTP  uint64
	RxEchoRequest uint64
	TxEchoRequest uint64
	RxEchoResponse uint64
	TxEchoResponse uint64
	TxGTP         uint64
	RxIP          uint64
	TxIP          uint64
	RxIPDropped   uint64 // neither src nor dst filter matched
}

func (c *Counters) IncRxGTP()          { c.add(&c.RxGTP) }
func (c *Counters) IncRxIgnoredGTP()   { c.add(&c.RxIgnoredGTP) }
func (c *Counters) IncRxEchoRequest()  { c.add(&c.RxEchoRequest) }
func (c *Counters) IncTxEchoRequest()  { c.add(&c.TxEchoRequest) }
func (c *Counters) IncRxEchoResponse() { c.add(&c.RxEchoResponse) }
func (c *Counters) IncTxEchoResponse() { c.add(&c.TxEchoResponse) }
func (c *Counters) IncTxGTP()          { c.add(&c.TxGTP) }
func (c *Counters) IncRxIP()           { c.add(&c.RxIP) }
func (c *Counters) IncTxIP()           { c.add(&c.TxIP) }
func (c *Counters) IncRxIPDropped()    { c.add(&c.RxIPDropped) }

func (c *Counters) add(field *uint64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// Snapshot is a point-in-time copy of every counter, safe to serialize.
type Snapshot struct {
	RxGTP          uint64 `json:"rx_gtp"`
	RxIgnoredGTP   uint64 `json:"rx_ignored_gtp"`
	RxEchoRequest  uint64 `json:"rx_echo_request"`
	TxEchoRequest  uint64 `json:"tx_echo_request"`
	RxEchoResponse uint64 `json:"rx_echo_response"`
	TxEchoResponse uint64 `json:"tx_echo_response"`
	TxGTP          uint64 `json:"tx_gtp"`
	RxIP           uint64 `json:"rx_ip"`
	TxIP           uint64 `json:"tx_ip"`
	RxIPDropped    uint64 `json:"rx_ip_dropped"`
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		RxGTP:          c.RxGTP,
		RxIgnoredGTP:   c.RxIgnoredGTP,
		RxEchoRequest:  c.RxEchoRequest,
		TxEchoRequest:  c.TxEchoRequest,
		RxEchoResponse: c.RxEchoResponse,
		TxEchoResponse: c.TxEchoResponse,
		TxGTP:          c.TxGTP,
		RxIP:           c.RxIP,
		TxIP:           c.TxIP,
		RxIPDropped:    c.RxIPDropped,
	}
}
