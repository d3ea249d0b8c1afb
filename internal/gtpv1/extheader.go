package gtpv1

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// ExtHeaderType is the 1-octet discriminator of a GTPv1 extension header.
type ExtHeaderType uint8

const (
	ExtNoMore             ExtHeaderType = 0x00
	ExtMBMSSupportInd     ExtHeaderType = 0x01
	ExtMSInfoChangeRprtng ExtHeaderType = 0x02
	ExtUDPPort            ExtHeaderType = 0x40
	ExtLongPDCPPDUNumber  ExtHeaderType = 0x82
	ExtPDCPPDUNumber      ExtHeaderType = 0xC0
	ExtSuspendRequest     ExtHeaderType = 0xC1
	ExtSuspendResponse    ExtHeaderType = 0xC2
)

// ExtHeader is one link in the extension-header chain. Content is the
// payload octets excluding the leading length-in-words octet and the
// trailing next-type octet; Next is overwritten by the chain on push/pop and
// should not be set by callers directly.
type ExtHeader struct {
	Type    ExtHeaderType
	Content []byte
	Next    ExtHeaderType
}

// rawLen returns the extension's length field value (content length in
// 4-octet words, including the leading length octet and trailing next-type
// octet that bracket Content).
func (e ExtHeader) rawLen() uint8 {
	total := 2 + len(e.Content) // length octet + content + next-type octet
	words := (total + 3) / 4
	return uint8(words)
}

// byteLen is the extension's total on-wire contribution: rawLen() * 4.
func (e ExtHeader) byteLen() int {
	return int(e.rawLen()) * 4
}

// Chain is an ordered sequence of extension headers, as owned by a v1
// Header. Invariant: interior elements carry Next == successor's Type; only
// the tail carries Next == ExtNoMore. An empty chain corresponds to E=0.
type Chain struct {
	exts []ExtHeader
}

// Empty reports whether the chain has no extension headers (E=0 state).
func (c *Chain) Empty() bool {
	return len(c.exts) == 0
}

// Len returns the number of links in the chain.
func (c *Chain) Len() int {
	return len(c.exts)
}

// At returns the link at index i.
func (c *Chain) At(i int) ExtHeader {
	return c.exts[i]
}

// Push appends ext to the tail of the chain, re-linking the previous tail's
// Next pointer and setting ext's own Next to NoMore.
func (c *Chain) Push(ext ExtHeader) {
	ext.Next = ExtNoMore
	c.exts = append(c.exts, ext)
	if len(c.exts) > 1 {
		c.exts[len(c.exts)-2].Next = ext.Type
	}
}

// Pop removes the tail link, if any, re-terminating the new tail with NoMore.
func (c *Chain) Pop() (ExtHeader, bool) {
	if len(c.exts) == 0 {
		return ExtHeader{}, false
	}
	tail := c.exts[len(c.exts)-1]
	c.exts = c.exts[:len(c.exts)-1]
	if len(c.exts) > 0 {
		c.exts[len(c.exts)-1].Next = ExtNoMore
	}
	return tail, true
}

// length is the chain's total on-wire byte contribution, summed across
// every link's rawLen() * 4.
func (c *Chain) length() int {
	total := 0
	for _, e := range c.exts {
		total += e.byteLen()
	}
	return total
}

// headType is the type to stamp into the header's mandatory next-ext-hdr
// field: the first link's type, or NoMore if the chain is empty.
func (c *Chain) headType() ExtHeaderType {
	if len(c.exts) == 0 {
		return ExtNoMore
	}
	return c.exts[0].Type
}

// encode writes the chain body (everything after the header's next-type
// octet) into buf, returning the number of bytes written.
func (c *Chain) encode(buf []byte) (int, error) {
	pos := 0
	for _, e := range c.exts {
		need := e.byteLen()
		if pos+need > len(buf) {
			return 0, fmt.Errorf("gtpv1: extension chain: %w", field.ErrShortBuffer)
		}
		buf[pos] = e.rawLen()
		copy(buf[pos+1:], e.Content)
		buf[pos+need-1] = byte(e.Next)
		pos += need
	}
	return pos, nil
}

// decodeChain reads a chain starting with firstType (taken from the
// header's next-ext-hdr-type octet) out of buf, returning the chain and the
// number of bytes consumed. Encountering a type whose body we cannot bound
// (unknown type) is fatal: there is no skip path for extension headers,
// since their lengths are only self-describing via their own format.
func decodeChain(firstType ExtHeaderType, buf []byte) (*Chain, int, error) {
	c := &Chain{}
	pos := 0
	next := firstType
	for next != ExtNoMore {
		if pos >= len(buf) {
			return nil, 0, fmt.Errorf("gtpv1: extension chain: %w", field.ErrShortBuffer)
		}
		words := int(buf[pos])
		if words == 0 {
			return nil, 0, fmt.Errorf("gtpv1: extension header with zero length")
		}
		total := words * 4
		if pos+total > len(buf) {
			return nil, 0, fmt.Errorf("gtpv1: extension header: %w", field.ErrShortBuffer)
		}
		content := make([]byte, total-2)
		copy(content, buf[pos+1:pos+total-1])
		nextType := ExtHeaderType(buf[pos+total-1])
		c.exts = append(c.exts, ExtHeader{Type: next, Content: content, Next: nextType})
		pos += total
		next = nextType
	}
	return c, pos, nil
}
