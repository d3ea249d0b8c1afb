package gtpv2

import (
	"fmt"
	"net"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// IMSI carries the subscriber identity as TBCD digits, the same wire form
// as the v1 IMSI IE but framed with the v2 type/length/instance header.
type IMSI struct {
	Instance uint8
	Digits   string
}

func NewIMSI(digits string, instance uint8) (IMSI, error) {
	if len(digits) == 0 || len(digits) > 15 {
		return IMSI{}, fmt.Errorf("gtpv2: IMSI: digits must be 1..15, got %d", len(digits))
	}
	if _, err := field.ASCIIToDigits(digits); err != nil {
		return IMSI{}, fmt.Errorf("gtpv2: IMSI: %w", err)
	}
	if err := checkInstance(instance); err != nil {
		return IMSI{}, err
	}
	return IMSI{Instance: instance, Digits: digits}, nil
}

func (v IMSI) bodyLen() int {
	return (len(v.Digits) + 1) / 2
}

func (v IMSI) length() int { return ieHeaderLen + v.bodyLen() }

func (v IMSI) encode(buf []byte) (int, error) {
	digits, err := field.ASCIIToDigits(v.Digits)
	if err != nil {
		return 0, err
	}
	body, err := field.EncodeTBCD(digits, field.DigitFiller)
	if err != nil {
		return 0, err
	}
	if err := encodeIEHeader(buf, IEIMSI, len(body), v.Instance); err != nil {
		return 0, err
	}
	copy(buf[ieHeaderLen:], body)
	return ieHeaderLen + len(body), nil
}

func decodeIMSI(buf []byte) (IMSI, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return IMSI{}, 0, err
	}
	if len(buf) < total {
		return IMSI{}, 0, fmt.Errorf("gtpv2: IMSI: %w", field.ErrShortBuffer)
	}
	digits := field.DecodeTBCD(buf[ieHeaderLen:total], field.DigitFiller)
	_ = length
	return IMSI{Instance: instance, Digits: field.DigitsToASCII(digits)}, total, nil
}

// Recovery carries the GTP restart counter (identical shape to v1's
// Recovery IE, different type byte).
type Recovery struct {
	Instance       uint8
	RestartCounter uint8
}

func (v Recovery) length() int { return ieHeaderLen + 1 }

func (v Recovery) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IERecovery, 1, v.Instance); err != nil {
		return 0, err
	}
	buf[ieHeaderLen] = v.RestartCounter
	return ieHeaderLen + 1, nil
}

func decodeRecovery(buf []byte) (Recovery, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return Recovery{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return Recovery{}, 0, fmt.Errorf("gtpv2: Recovery: %w", field.ErrShortBuffer)
	}
	return Recovery{Instance: instance, RestartCounter: buf[ieHeaderLen]}, total, nil
}

// EBI is the EPS Bearer ID, a 4-bit value (0..15) stored in the low nibble
// of the single body octet.
type EBI struct {
	Instance uint8
	Value    uint8
}

func NewEBI(value, instance uint8) (EBI, error) {
	if value > 0xF {
		return EBI{}, fmt.Errorf("gtpv2: EBI: value out of range: %d", value)
	}
	if err := checkInstance(instance); err != nil {
		return EBI{}, err
	}
	return EBI{Instance: instance, Value: value}, nil
}

func (v EBI) length() int { return ieHeaderLen + 1 }

func (v EBI) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IEEBI, 1, v.Instance); err != nil {
		return 0, err
	}
	buf[ieHeaderLen] = v.Value & 0xF
	return ieHeaderLen + 1, nil
}

func decodeEBI(buf []byte) (EBI, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return EBI{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return EBI{}, 0, fmt.Errorf("gtpv2: EBI: %w", field.ErrShortBuffer)
	}
	return EBI{Instance: instance, Value: buf[ieHeaderLen] & 0xF}, total, nil
}

// MEI is the Mobile Equipment Identity (IMEI or IMEISV), TBCD-encoded like
// IMSI.
type MEI struct {
	Instance uint8
	Digits   string
}

func NewMEI(digits string, instance uint8) (MEI, error) {
	if len(digits) != 15 && len(digits) != 16 {
		return MEI{}, fmt.Errorf("gtpv2: MEI: digits must be 15 (IMEI) or 16 (IMEISV), got %d", len(digits))
	}
	if _, err := field.ASCIIToDigits(digits); err != nil {
		return MEI{}, fmt.Errorf("gtpv2: MEI: %w", err)
	}
	if err := checkInstance(instance); err != nil {
		return MEI{}, err
	}
	return MEI{Instance: instance, Digits: digits}, nil
}

func (v MEI) bodyLen() int { return (len(v.Digits) + 1) / 2 }

func (v MEI) length() int { return ieHeaderLen + v.bodyLen() }

func (v MEI) encode(buf []byte) (int, error) {
	digits, err := field.ASCIIToDigits(v.Digits)
	if err != nil {
		return 0, err
	}
	body, err := field.EncodeTBCD(digits, field.DigitFiller)
	if err != nil {
		return 0, err
	}
	if err := encodeIEHeader(buf, IEMEI, len(body), v.Instance); err != nil {
		return 0, err
	}
	copy(buf[ieHeaderLen:], body)
	return ieHeaderLen + len(body), nil
}

func decodeMEI(buf []byte) (MEI, int, error) {
	_, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return MEI{}, 0, err
	}
	if len(buf) < total {
		return MEI{}, 0, fmt.Errorf("gtpv2: MEI: %w", field.ErrShortBuffer)
	}
	digits := field.DecodeTBCD(buf[ieHeaderLen:total], field.DigitFiller)
	return MEI{Instance: instance, Digits: field.DigitsToASCII(digits)}, total, nil
}

// MSISDN is the subscriber's dialable number, TBCD-encoded like IMSI but of
// variable declared length.
type MSISDN struct {
	Instance uint8
	Digits   string
}

func NewMSISDN(digits string, instance uint8) (MSISDN, error) {
	if len(digits) == 0 || len(digits) > 15 {
		return MSISDN{}, fmt.Errorf("gtpv2: MSISDN: digits must be 1..15, got %d", len(digits))
	}
	if _, err := field.ASCIIToDigits(digits); err != nil {
		return MSISDN{}, fmt.Errorf("gtpv2: MSISDN: %w", err)
	}
	if err := checkInstance(instance); err != nil {
		return MSISDN{}, err
	}
	return MSISDN{Instance: instance, Digits: digits}, nil
}

func (v MSISDN) bodyLen() int { return (len(v.Digits) + 1) / 2 }

func (v MSISDN) length() int { return ieHeaderLen + v.bodyLen() }

func (v MSISDN) encode(buf []byte) (int, error) {
	digits, err := field.ASCIIToDigits(v.Digits)
	if err != nil {
		return 0, err
	}
	body, err := field.EncodeTBCD(digits, field.DigitFiller)
	if err != nil {
		return 0, err
	}
	if err := encodeIEHeader(buf, IEMSISDN, len(body), v.Instance); err != nil {
		return 0, err
	}
	copy(buf[ieHeaderLen:], body)
	return ieHeaderLen + len(body), nil
}

func decodeMSISDN(buf []byte) (MSISDN, int, error) {
	_, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return MSISDN{}, 0, err
	}
	if len(buf) < total {
		return MSISDN{}, 0, fmt.Errorf("gtpv2: MSISDN: %w", field.ErrShortBuffer)
	}
	digits := field.DecodeTBCD(buf[ieHeaderLen:total], field.DigitFiller)
	return MSISDN{Instance: instance, Digits: field.DigitsToASCII(digits)}, total, nil
}

// RATType names the radio access technology the UE is attached through.
type RATType uint8

const (
	RATUTRAN    RATType = 1
	RATGERAN    RATType = 2
	RATWLAN     RATType = 3
	RATGAN      RATType = 4
	RATHSPAEvo  RATType = 5
	RATEUTRAN   RATType = 6
	RATVirtual  RATType = 7
	RATEUTRANNB RATType = 9
)

// RATTypeIE carries the radio access technology the UE is attached
// through.
type RATTypeIE struct {
	Instance uint8
	Value    RATType
}

func (v RATTypeIE) length() int { return ieHeaderLen + 1 }

func (v RATTypeIE) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IERATType, 1, v.Instance); err != nil {
		return 0, err
	}
	buf[ieHeaderLen] = byte(v.Value)
	return ieHeaderLen + 1, nil
}

func decodeRATType(buf []byte) (RATTypeIE, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return RATTypeIE{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return RATTypeIE{}, 0, fmt.Errorf("gtpv2: RATType: %w", field.ErrShortBuffer)
	}
	return RATTypeIE{Instance: instance, Value: RATType(buf[ieHeaderLen])}, total, nil
}

// ServingNetwork carries the PLMN (MCC/MNC) of the serving network.
type ServingNetwork struct {
	Instance uint8
	PLMN     field.PLMN
}

func (v ServingNetwork) length() int { return ieHeaderLen + 3 }

func (v ServingNetwork) encode(buf []byte) (int, error) {
	packed, err := field.EncodePLMN(v.PLMN)
	if err != nil {
		return 0, err
	}
	if err := encodeIEHeader(buf, IEServingNetwork, 3, v.Instance); err != nil {
		return 0, err
	}
	copy(buf[ieHeaderLen:], packed[:])
	return ieHeaderLen + 3, nil
}

func decodeServingNetwork(buf []byte) (ServingNetwork, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return ServingNetwork{}, 0, err
	}
	if length < 3 || len(buf) < total {
		return ServingNetwork{}, 0, fmt.Errorf("gtpv2: ServingNetwork: %w", field.ErrShortBuffer)
	}
	var raw [3]byte
	copy(raw[:], buf[ieHeaderLen:ieHeaderLen+3])
	return ServingNetwork{Instance: instance, PLMN: field.DecodePLMN(raw)}, total, nil
}

// PDNType names the PDN connection's address family.
type PDNType uint8

const (
	PDNTypeIPv4   PDNType = 1
	PDNTypeIPv6   PDNType = 2
	PDNTypeIPv4v6 PDNType = 3
	PDNTypeNonIP  PDNType = 4
)

type PDNTypeIE struct {
	Instance uint8
	Value    PDNType
}

func (v PDNTypeIE) length() int { return ieHeaderLen + 1 }

func (v PDNTypeIE) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IEPDNType, 1, v.Instance); err != nil {
		return 0, err
	}
	buf[ieHeaderLen] = byte(v.Value) & 0x7
	return ieHeaderLen + 1, nil
}

func decodePDNType(buf []byte) (PDNTypeIE, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return PDNTypeIE{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return PDNTypeIE{}, 0, fmt.Errorf("gtpv2: PDNType: %w", field.ErrShortBuffer)
	}
	return PDNTypeIE{Instance: instance, Value: PDNType(buf[ieHeaderLen] & 0x7)}, total, nil
}

// UETimeZone carries the timezone offset (as a raw TS 23.040 octet) and the
// daylight-saving-time adjustment (low 2 bits of the second octet).
type UETimeZone struct {
	Instance uint8
	TimeZone uint8
	DST      uint8 // 0..3
}

func (v UETimeZone) length() int { return ieHeaderLen + 2 }

func (v UETimeZone) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IEUETimeZone, 2, v.Instance); err != nil {
		return 0, err
	}
	buf[ieHeaderLen] = v.TimeZone
	buf[ieHeaderLen+1] = v.DST & 0x3
	return ieHeaderLen + 2, nil
}

func decodeUETimeZone(buf []byte) (UETimeZone, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return UETimeZone{}, 0, err
	}
	if length < 2 || len(buf) < total {
		return UETimeZone{}, 0, fmt.Errorf("gtpv2: UETimeZone: %w", field.ErrShortBuffer)
	}
	return UETimeZone{Instance: instance, TimeZone: buf[ieHeaderLen], DST: buf[ieHeaderLen+1] & 0x3}, total, nil
}

// APNRestriction names the maximum restriction class allowed alongside this
// PDN connection's APN.
type APNRestriction struct {
	Instance uint8
	Value    uint8
}

func (v APNRestriction) length() int { return ieHeaderLen + 1 }

func (v APNRestriction) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IEAPNRestriction, 1, v.Instance); err != nil {
		return 0, err
	}
	buf[ieHeaderLen] = v.Value
	return ieHeaderLen + 1, nil
}

func decodeAPNRestriction(buf []byte) (APNRestriction, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return APNRestriction{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return APNRestriction{}, 0, fmt.Errorf("gtpv2: APNRestriction: %w", field.ErrShortBuffer)
	}
	return APNRestriction{Instance: instance, Value: buf[ieHeaderLen]}, total, nil
}

// SelectionMode names how the APN used for this PDN connection was chosen.
type SelectionMode struct {
	Instance uint8
	Mode     uint8 // low 2 bits
}

func (v SelectionMode) length() int { return ieHeaderLen + 1 }

func (v SelectionMode) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IESelectionMode, 1, v.Instance); err != nil {
		return 0, err
	}
	buf[ieHeaderLen] = 0xFC | (v.Mode & 0x3)
	return ieHeaderLen + 1, nil
}

func decodeSelectionMode(buf []byte) (SelectionMode, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return SelectionMode{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return SelectionMode{}, 0, fmt.Errorf("gtpv2: SelectionMode: %w", field.ErrShortBuffer)
	}
	return SelectionMode{Instance: instance, Mode: buf[ieHeaderLen] & 0x3}, total, nil
}

// ChargingCharacteristics carries the 16-bit charging profile bitmask.
type ChargingCharacteristics struct {
	Instance uint8
	Value    uint16
}

func (v ChargingCharacteristics) length() int { return ieHeaderLen + 2 }

func (v ChargingCharacteristics) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IEChargingCharacteristics, 2, v.Instance); err != nil {
		return 0, err
	}
	field.WriteU16(buf, ieHeaderLen, v.Value)
	return ieHeaderLen + 2, nil
}

func decodeChargingCharacteristics(buf []byte) (ChargingCharacteristics, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return ChargingCharacteristics{}, 0, err
	}
	if length < 2 || len(buf) < total {
		return ChargingCharacteristics{}, 0, fmt.Errorf("gtpv2: ChargingCharacteristics: %w", field.ErrShortBuffer)
	}
	val, err := field.ReadU16(buf, ieHeaderLen)
	if err != nil {
		return ChargingCharacteristics{}, 0, err
	}
	return ChargingCharacteristics{Instance: instance, Value: val}, total, nil
}

// AMBR is the Aggregate Maximum Bit Rate, a pair of 32-bit kbps values.
type AMBR struct {
	Instance uint8
	UplinkKbps   uint32
	DownlinkKbps uint32
}

func (v AMBR) length() int { return ieHeaderLen + 8 }

func (v AMBR) encode(buf []byte) (int, error) {
	if err := encodeIEHeader(buf, IEAMBR, 8, v.Instance); err != nil {
		return 0, err
	}
	field.WriteU32(buf, ieHeaderLen, v.UplinkKbps)
	field.WriteU32(buf, ieHeaderLen+4, v.DownlinkKbps)
	return ieHeaderLen + 8, nil
}

func decodeAMBR(buf []byte) (AMBR, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return AMBR{}, 0, err
	}
	if length < 8 || len(buf) < total {
		return AMBR{}, 0, fmt.Errorf("gtpv2: AMBR: %w", field.ErrShortBuffer)
	}
	up, err := field.ReadU32(buf, ieHeaderLen)
	if err != nil {
		return AMBR{}, 0, err
	}
	down, err := field.ReadU32(buf, ieHeaderLen+4)
	if err != nil {
		return AMBR{}, 0, err
	}
	return AMBR{Instance: instance, UplinkKbps: up, DownlinkKbps: down}, total, nil
}

// PDNAddressAllocation carries the allocated PDN address: 4 bytes for
// IPv4, 16 for IPv6, or 4+16 for IPv4v6 (IPv4 octets first), selected by
// the PDN type in the leading octet's low nibble.
type PDNAddressAllocation struct {
	Instance uint8
	Type     PDNType
	IPv4     net.IP
	IPv6     net.IP
}

func (v PDNAddressAllocation) bodyLen() int {
	switch v.Type {
	case PDNTypeIPv4:
		return 1 + 4
	case PDNTypeIPv6:
		return 1 + 16
	case PDNTypeIPv4v6:
		return 1 + 4 + 16
	default:
		return 1
	}
}

func (v PDNAddressAllocation) length() int { return ieHeaderLen + v.bodyLen() }

func (v PDNAddressAllocation) encode(buf []byte) (int, error) {
	body := v.bodyLen()
	if err := encodeIEHeader(buf, IEPDNAddressAllocation, body, v.Instance); err != nil {
		return 0, err
	}
	pos := ieHeaderLen
	buf[pos] = byte(v.Type) & 0x7
	pos++
	switch v.Type {
	case PDNTypeIPv4:
		copy(buf[pos:], v.IPv4.To4())
		pos += 4
	case PDNTypeIPv6:
		copy(buf[pos:], v.IPv6.To16())
		pos += 16
	case PDNTypeIPv4v6:
		copy(buf[pos:], v.IPv4.To4())
		pos += 4
		copy(buf[pos:], v.IPv6.To16())
		pos += 16
	}
	return pos, nil
}

func decodePDNAddressAllocation(buf []byte) (PDNAddressAllocation, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return PDNAddressAllocation{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return PDNAddressAllocation{}, 0, fmt.Errorf("gtpv2: PDNAddressAllocation: %w", field.ErrShortBuffer)
	}
	v := PDNAddressAllocation{Instance: instance, Type: PDNType(buf[ieHeaderLen] & 0x7)}
	pos := ieHeaderLen + 1
	switch v.Type {
	case PDNTypeIPv4:
		if total-pos < 4 {
			return PDNAddressAllocation{}, 0, fmt.Errorf("gtpv2: PDNAddressAllocation: %w", field.ErrShortBuffer)
		}
		v.IPv4 = net.IP(append([]byte(nil), buf[pos:pos+4]...))
	case PDNTypeIPv6:
		if total-pos < 16 {
			return PDNAddressAllocation{}, 0, fmt.Errorf("gtpv2: PDNAddressAllocation: %w", field.ErrShortBuffer)
		}
		v.IPv6 = net.IP(append([]byte(nil), buf[pos:pos+16]...))
	case PDNTypeIPv4v6:
		if total-pos < 20 {
			return PDNAddressAllocation{}, 0, fmt.Errorf("gtpv2: PDNAddressAllocation: %w", field.ErrShortBuffer)
		}
		v.IPv4 = net.IP(append([]byte(nil), buf[pos:pos+4]...))
		v.IPv6 = net.IP(append([]byte(nil), buf[pos+4:pos+20]...))
	}
	return v, total, nil
}
