package gtpv1

import (
	"fmt"
	"net"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// GSNAddress is the TLV-format GSN Address IE (8.8 TS 29.060): a variable
// length (4 or 16 octet) IPv4 or IPv6 address.
type GSNAddress struct {
	IP net.IP
}

func NewGSNAddress(ip net.IP) (GSNAddress, error) {
	if ip.To4() == nil && ip.To16() == nil {
		return GSNAddress{}, fmt.Errorf("gtpv1: GSNAddress: invalid IP")
	}
	return GSNAddress{IP: ip}, nil
}

func (v GSNAddress) addrBytes() []byte {
	if v4 := v.IP.To4(); v4 != nil {
		return v4
	}
	return v.IP.To16()
}

func (v GSNAddress) length() int { return 1 + 2 + len(v.addrBytes()) }

func (v GSNAddress) encode(buf []byte) (int, error) {
	addr := v.addrBytes()
	need := 3 + len(addr)
	if len(buf) < need {
		return 0, fmt.Errorf("gtpv1: GSNAddress: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(IEGSNAddress)
	field.WriteU16(buf, 1, uint16(len(addr)))
	copy(buf[3:], addr)
	return need, nil
}

func decodeGSNAddress(buf []byte) (GSNAddress, int, error) {
	if len(buf) < 3 {
		return GSNAddress{}, 0, fmt.Errorf("gtpv1: GSNAddress: %w", field.ErrShortBuffer)
	}
	length, err := field.ReadU16(buf, 1)
	if err != nil {
		return GSNAddress{}, 0, err
	}
	if length != 4 && length != 16 {
		return GSNAddress{}, 0, fmt.Errorf("gtpv1: GSNAddress: invalid length %d", length)
	}
	total := 3 + int(length)
	if len(buf) < total {
		return GSNAddress{}, 0, fmt.Errorf("gtpv1: GSNAddress: %w", field.ErrShortBuffer)
	}
	ip := make(net.IP, length)
	copy(ip, buf[3:total])
	return GSNAddress{IP: ip}, total, nil
}

// MSISDN is the TLV-format MSISDN IE (8.9 TS 29.060): a variable length
// TBCD-encoded phone number.
type MSISDN struct {
	Digits string
}

func NewMSISDN(digits string) (MSISDN, error) {
	if _, err := field.ASCIIToDigits(digits); err != nil {
		return MSISDN{}, fmt.Errorf("gtpv1: MSISDN: %w", err)
	}
	return MSISDN{Digits: digits}, nil
}

func (v MSISDN) bodyLen() int { return (len(v.Digits) + 1) / 2 }

func (v MSISDN) length() int { return 1 + 2 + v.bodyLen() }

func (v MSISDN) encode(buf []byte) (int, error) {
	need := v.length()
	if len(buf) < need {
		return 0, fmt.Errorf("gtpv1: MSISDN: %w", field.ErrShortBuffer)
	}
	digits, err := field.ASCIIToDigits(v.Digits)
	if err != nil {
		return 0, err
	}
	tbcd, err := field.EncodeTBCD(digits, field.DigitFiller)
	if err != nil {
		return 0, err
	}
	buf[0] = byte(IEMSISDN)
	field.WriteU16(buf, 1, uint16(len(tbcd)))
	copy(buf[3:], tbcd)
	return need, nil
}

func decodeMSISDN(buf []byte) (MSISDN, int, error) {
	if len(buf) < 3 {
		return MSISDN{}, 0, fmt.Errorf("gtpv1: MSISDN: %w", field.ErrShortBuffer)
	}
	length, err := field.ReadU16(buf, 1)
	if err != nil {
		return MSISDN{}, 0, err
	}
	total := 3 + int(length)
	if len(buf) < total {
		return MSISDN{}, 0, fmt.Errorf("gtpv1: MSISDN: %w", field.ErrShortBuffer)
	}
	digits := field.DecodeTBCD(buf[3:total], field.DigitFiller)
	return MSISDN{Digits: field.DigitsToASCII(digits)}, total, nil
}
