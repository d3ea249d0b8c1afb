package gtpv2

import (
	"fmt"
	"net"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// InterfaceType names the GTP interface an F-TEID refers to (TS 29.274
// table 8.22-1). Decoding uses the literal 6-bit discriminant rather than
// any derived mapping, so every value this codec does not name still
// round-trips faithfully through the FTEID's Interface field.
type InterfaceType uint8

const (
	InterfaceS1UENodeBGtpU InterfaceType = 0
	InterfaceS1USgwGtpU    InterfaceType = 1
	InterfaceS12RncGtpU    InterfaceType = 2
	InterfaceS12SgwGtpU    InterfaceType = 3
	InterfaceS5S8SgwGtpU   InterfaceType = 4
	InterfaceS5S8PgwGtpU   InterfaceType = 5
	InterfaceS5S8SgwGtpC   InterfaceType = 6
	InterfaceS5S8PgwGtpC   InterfaceType = 7
	InterfaceS11MmeGtpC    InterfaceType = 10
	InterfaceS4SgsnGtpU    InterfaceType = 15
	InterfaceS11S4SgwGtpU  InterfaceType = 16
	InterfaceS4SgsnGtpC    InterfaceType = 17
	InterfaceS2bUPdgGtpU   InterfaceType = 32
	InterfaceS2aUTwanGtpU  InterfaceType = 34
	InterfaceN26AmfGtpC    InterfaceType = 40
)

// FTEID is the Fully Qualified TEID: an interface tag, a TEID, and either
// an IPv4 address, an IPv6 address, or both.
type FTEID struct {
	Instance  uint8
	Interface InterfaceType
	TEID      uint32
	IPv4      net.IP
	IPv6      net.IP
}

func (v FTEID) hasV4() bool { return v.IPv4 != nil }
func (v FTEID) hasV6() bool { return v.IPv6 != nil }

func (v FTEID) bodyLen() int {
	n := 1 + 4
	if v.hasV4() {
		n += 4
	}
	if v.hasV6() {
		n += 16
	}
	return n
}

func (v FTEID) length() int { return ieHeaderLen + v.bodyLen() }

func (v FTEID) encode(buf []byte) (int, error) {
	body := v.bodyLen()
	if err := encodeIEHeader(buf, IEFTEID, body, v.Instance); err != nil {
		return 0, err
	}
	pos := ieHeaderLen
	flags := byte(v.Interface) & 0x3F
	if v.hasV4() {
		flags |= 1 << 7
	}
	if v.hasV6() {
		flags |= 1 << 6
	}
	buf[pos] = flags
	pos++
	field.WriteU32(buf, pos, v.TEID)
	pos += 4
	if v.hasV4() {
		copy(buf[pos:], v.IPv4.To4())
		pos += 4
	}
	if v.hasV6() {
		copy(buf[pos:], v.IPv6.To16())
		pos += 16
	}
	return pos, nil
}

func decodeFTEID(buf []byte) (FTEID, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return FTEID{}, 0, err
	}
	if length < 5 || len(buf) < total {
		return FTEID{}, 0, fmt.Errorf("gtpv2: FTEID: %w", field.ErrShortBuffer)
	}
	pos := ieHeaderLen
	flags := buf[pos]
	hasV4 := flags&(1<<7) != 0
	hasV6 := flags&(1<<6) != 0
	v := FTEID{Instance: instance, Interface: InterfaceType(flags & 0x3F)}
	pos++
	teid, err := field.ReadU32(buf, pos)
	if err != nil {
		return FTEID{}, 0, err
	}
	v.TEID = teid
	pos += 4
	if hasV4 {
		if total-pos < 4 {
			return FTEID{}, 0, fmt.Errorf("gtpv2: FTEID: %w", field.ErrShortBuffer)
		}
		v.IPv4 = net.IP(append([]byte(nil), buf[pos:pos+4]...))
		pos += 4
	}
	if hasV6 {
		if total-pos < 16 {
			return FTEID{}, 0, fmt.Errorf("gtpv2: FTEID: %w", field.ErrShortBuffer)
		}
		v.IPv6 = net.IP(append([]byte(nil), buf[pos:pos+16]...))
		pos += 16
	}
	return v, total, nil
}
