package gtpv1

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// IMSI is the TV-format International Mobile Subscriber Identity, always 15
// TBCD digits (8 octets on the wire).
type IMSI struct {
	Digits string // 15 decimal digits
}

func NewIMSI(digits string) (IMSI, error) {
	if len(digits) != 15 {
		return IMSI{}, fmt.Errorf("gtpv1: IMSI must be 15 digits, got %d", len(digits))
	}
	if _, err := field.ASCIIToDigits(digits); err != nil {
		return IMSI{}, fmt.Errorf("gtpv1: IMSI: %w", err)
	}
	return IMSI{Digits: digits}, nil
}

func (v IMSI) length() int { return 1 + 8 }

func (v IMSI) encode(buf []byte) (int, error) {
	if len(buf) < v.length() {
		return 0, fmt.Errorf("gtpv1: IMSI: %w", field.ErrShortBuffer)
	}
	digits, err := field.ASCIIToDigits(v.Digits)
	if err != nil {
		return 0, err
	}
	tbcd, err := field.EncodeTBCD(digits, field.DigitFiller)
	if err != nil {
		return 0, err
	}
	buf[0] = byte(IEIMSI)
	copy(buf[1:], tbcd)
	return v.length(), nil
}

func decodeIMSI(buf []byte) (IMSI, int, error) {
	if len(buf) < 1+8 {
		return IMSI{}, 0, fmt.Errorf("gtpv1: IMSI: %w", field.ErrShortBuffer)
	}
	digits := field.DecodeTBCD(buf[1:9], field.DigitFiller)
	return IMSI{Digits: field.DigitsToASCII(digits)}, 9, nil
}

// Recovery carries a GTP restart counter (8.5 TS 29.060), used in Echo
// Response and elsewhere as a peer-restart indicator.
type Recovery struct {
	RestartCounter uint8
}

func (v Recovery) length() int { return 1 + 1 }

func (v Recovery) encode(buf []byte) (int, error) {
	if len(buf) < v.length() {
		return 0, fmt.Errorf("gtpv1: Recovery: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(IERecovery)
	buf[1] = v.RestartCounter
	return v.length(), nil
}

func decodeRecovery(buf []byte) (Recovery, int, error) {
	if len(buf) < 2 {
		return Recovery{}, 0, fmt.Errorf("gtpv1: Recovery: %w", field.ErrShortBuffer)
	}
	return Recovery{RestartCounter: buf[1]}, 2, nil
}

// SelectionMode indicates who selected the APN (8.11 TS 29.060), carried in
// the low 2 bits of a single octet.
type SelectionMode struct {
	Mode uint8 // 0..=3
}

func (v SelectionMode) length() int { return 1 + 1 }

func (v SelectionMode) encode(buf []byte) (int, error) {
	if len(buf) < v.length() {
		return 0, fmt.Errorf("gtpv1: SelectionMode: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(IESelectionMode)
	buf[1] = 0xFC | (v.Mode & 0x3)
	return v.length(), nil
}

func decodeSelectionMode(buf []byte) (SelectionMode, int, error) {
	if len(buf) < 2 {
		return SelectionMode{}, 0, fmt.Errorf("gtpv1: SelectionMode: %w", field.ErrShortBuffer)
	}
	return SelectionMode{Mode: buf[1] & 0x3}, 2, nil
}

// NSAPI is the 4-bit Network-layer Service Access Point Identifier
// (8.10 TS 29.060), range 0..=15, carried in the low nibble of its octet.
type NSAPI struct {
	Value uint8
}

func NewNSAPI(v uint8) (NSAPI, error) {
	if v > 0xF {
		return NSAPI{}, fmt.Errorf("gtpv1: NSAPI out of range: %d", v)
	}
	return NSAPI{Value: v}, nil
}

func (v NSAPI) length() int { return 1 + 1 }

func (v NSAPI) encode(buf []byte) (int, error) {
	if len(buf) < v.length() {
		return 0, fmt.Errorf("gtpv1: NSAPI: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(IENSAPI)
	buf[1] = v.Value & 0xF
	return v.length(), nil
}

func decodeNSAPI(buf []byte) (NSAPI, int, error) {
	if len(buf) < 2 {
		return NSAPI{}, 0, fmt.Errorf("gtpv1: NSAPI: %w", field.ErrShortBuffer)
	}
	return NSAPI{Value: buf[1] & 0xF}, 2, nil
}

// ChargingCharacteristics is an opaque 2-octet bitmask (8.12 TS 29.060)
// describing which charging methods apply.
type ChargingCharacteristics struct {
	Value uint16
}

func (v ChargingCharacteristics) length() int { return 1 + 2 }

func (v ChargingCharacteristics) encode(buf []byte) (int, error) {
	if len(buf) < v.length() {
		return 0, fmt.Errorf("gtpv1: ChargingCharacteristics: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(IEChargingCharacteristics)
	field.WriteU16(buf, 1, v.Value)
	return v.length(), nil
}

func decodeChargingCharacteristics(buf []byte) (ChargingCharacteristics, int, error) {
	if len(buf) < 3 {
		return ChargingCharacteristics{}, 0, fmt.Errorf("gtpv1: ChargingCharacteristics: %w", field.ErrShortBuffer)
	}
	val, err := field.ReadU16(buf, 1)
	if err != nil {
		return ChargingCharacteristics{}, 0, err
	}
	return ChargingCharacteristics{Value: val}, 3, nil
}
