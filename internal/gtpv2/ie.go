// Package gtpv2 implements the GTPv2-C (3GPP TS 29.274) wire codec: header,
// Information Elements, message catalog, and Packet composition.
package gtpv2

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// IEType is the 1-octet GTPv2 Information Element discriminator.
type IEType uint8

const (
	IEIMSI                    IEType = 1
	IECause                   IEType = 2
	IERecovery                IEType = 3
	IEAPN                     IEType = 71
	IEAMBR                    IEType = 72
	IEEBI                     IEType = 73
	IEMEI                     IEType = 75
	IEMSISDN                  IEType = 76
	IEPDNAddressAllocation    IEType = 79
	IEBearerQoS               IEType = 80
	IERATType                 IEType = 82
	IEServingNetwork          IEType = 83
	IEULI                     IEType = 86
	IEFTEID                   IEType = 87
	IEBearerContext           IEType = 93
	IEChargingCharacteristics IEType = 95
	IEPDNType                 IEType = 99
	IEUETimeZone              IEType = 114
	IEAPNRestriction          IEType = 127
	IESelectionMode           IEType = 128
)

// ieHeaderLen is the common v2 IE header: type(1) + length(2) + spare/instance(1).
const ieHeaderLen = 4

// IE is the closed catalog of decoded v2 Information Elements. Exactly one
// field is meaningful per value, selected by Type.
type IE struct {
	Type IEType

	IMSI                    IMSI
	Cause                   Cause
	Recovery                Recovery
	APN                     APN
	AMBR                    AMBR
	EBI                     EBI
	MEI                     MEI
	MSISDN                  MSISDN
	PDNAddressAllocation    PDNAddressAllocation
	BearerQoS               BearerQoS
	RATType                 RATTypeIE
	ServingNetwork          ServingNetwork
	ULI                     ULI
	FTEID                   FTEID
	BearerContext           BearerContext
	ChargingCharacteristics ChargingCharacteristics
	PDNType                 PDNTypeIE
	UETimeZone              UETimeZone
	APNRestriction          APNRestriction
	SelectionMode           SelectionMode

	// Raw carries the body of an IE type this catalog recognizes only well
	// enough to skip (forward-compatibility pass-through).
	Raw []byte
}

// instance returns the v2 instance nibble (0..=15) this IE was tagged with.
func (ie IE) instance() uint8 {
	switch ie.Type {
	case IEIMSI:
		return ie.IMSI.Instance
	case IECause:
		return ie.Cause.Instance
	case IERecovery:
		return ie.Recovery.Instance
	case IEAPN:
		return ie.APN.Instance
	case IEAMBR:
		return ie.AMBR.Instance
	case IEEBI:
		return ie.EBI.Instance
	case IEMEI:
		return ie.MEI.Instance
	case IEMSISDN:
		return ie.MSISDN.Instance
	case IEPDNAddressAllocation:
		return ie.PDNAddressAllocation.Instance
	case IEBearerQoS:
		return ie.BearerQoS.Instance
	case IERATType:
		return ie.RATType.Instance
	case IEServingNetwork:
		return ie.ServingNetwork.Instance
	case IEULI:
		return ie.ULI.Instance
	case IEFTEID:
		return ie.FTEID.Instance
	case IEBearerContext:
		return ie.BearerContext.Instance
	case IEChargingCharacteristics:
		return ie.ChargingCharacteristics.Instance
	case IEPDNType:
		return ie.PDNType.Instance
	case IEUETimeZone:
		return ie.UETimeZone.Instance
	case IEAPNRestriction:
		return ie.APNRestriction.Instance
	case IESelectionMode:
		return ie.SelectionMode.Instance
	default:
		return 0
	}
}

// length is the IE's total on-wire size including its 4-octet header.
func (ie IE) length() int {
	switch ie.Type {
	case IEIMSI:
		return ie.IMSI.length()
	case IECause:
		return ie.Cause.length()
	case IERecovery:
		return ie.Recovery.length()
	case IEAPN:
		return ie.APN.length()
	case IEAMBR:
		return ie.AMBR.length()
	case IEEBI:
		return ie.EBI.length()
	case IEMEI:
		return ie.MEI.length()
	case IEMSISDN:
		return ie.MSISDN.length()
	case IEPDNAddressAllocation:
		return ie.PDNAddressAllocation.length()
	case IEBearerQoS:
		return ie.BearerQoS.length()
	case IERATType:
		return ie.RATType.length()
	case IEServingNetwork:
		return ie.ServingNetwork.length()
	case IEULI:
		return ie.ULI.length()
	case IEFTEID:
		return ie.FTEID.length()
	case IEBearerContext:
		return ie.BearerContext.length()
	case IEChargingCharacteristics:
		return ie.ChargingCharacteristics.length()
	case IEPDNType:
		return ie.PDNType.length()
	case IEUETimeZone:
		return ie.UETimeZone.length()
	case IEAPNRestriction:
		return ie.APNRestriction.length()
	case IESelectionMode:
		return ie.SelectionMode.length()
	default:
		return ieHeaderLen + len(ie.Raw)
	}
}

func (ie IE) encode(buf []byte) (int, error) {
	switch ie.Type {
	case IEIMSI:
		return ie.IMSI.encode(buf)
	case IECause:
		return ie.Cause.encode(buf)
	case IERecovery:
		return ie.Recovery.encode(buf)
	case IEAPN:
		return ie.APN.encode(buf)
	case IEAMBR:
		return ie.AMBR.encode(buf)
	case IEEBI:
		return ie.EBI.encode(buf)
	case IEMEI:
		return ie.MEI.encode(buf)
	case IEMSISDN:
		return ie.MSISDN.encode(buf)
	case IEPDNAddressAllocation:
		return ie.PDNAddressAllocation.encode(buf)
	case IEBearerQoS:
		return ie.BearerQoS.encode(buf)
	case IERATType:
		return ie.RATType.encode(buf)
	case IEServingNetwork:
		return ie.ServingNetwork.encode(buf)
	case IEULI:
		return ie.ULI.encode(buf)
	case IEFTEID:
		return ie.FTEID.encode(buf)
	case IEBearerContext:
		return ie.BearerContext.encode(buf)
	case IEChargingCharacteristics:
		return ie.ChargingCharacteristics.encode(buf)
	case IEPDNType:
		return ie.PDNType.encode(buf)
	case IEUETimeZone:
		return ie.UETimeZone.encode(buf)
	case IEAPNRestriction:
		return ie.APNRestriction.encode(buf)
	case IESelectionMode:
		return ie.SelectionMode.encode(buf)
	default:
		need := ieHeaderLen + len(ie.Raw)
		if len(buf) < need {
			return 0, fmt.Errorf("gtpv2: ie %d: %w", ie.Type, field.ErrShortBuffer)
		}
		buf[0] = byte(ie.Type)
		field.WriteU16(buf, 1, uint16(len(ie.Raw)))
		buf[3] = 0
		copy(buf[4:], ie.Raw)
		return need, nil
	}
}

// decodeIE peeks at the first byte of buf (the IE type) and dispatches to
// the matching catalog decoder. An unrecognized type is skipped via its
// explicit 2-octet length (every v2 IE, known or not, is TLIV-framed so the
// skip path is always available, unlike v1).
func decodeIE(buf []byte) (IE, int, error) {
	if len(buf) < ieHeaderLen {
		return IE{}, 0, fmt.Errorf("gtpv2: ie: %w", field.ErrShortBuffer)
	}
	t := IEType(buf[0])

	switch t {
	case IEIMSI:
		v, n, err := decodeIMSI(buf)
		return IE{Type: t, IMSI: v}, n, err
	case IECause:
		v, n, err := decodeCause(buf)
		return IE{Type: t, Cause: v}, n, err
	case IERecovery:
		v, n, err := decodeRecovery(buf)
		return IE{Type: t, Recovery: v}, n, err
	case IEAPN:
		v, n, err := decodeAPN(buf)
		return IE{Type: t, APN: v}, n, err
	case IEAMBR:
		v, n, err := decodeAMBR(buf)
		return IE{Type: t, AMBR: v}, n, err
	case IEEBI:
		v, n, err := decodeEBI(buf)
		return IE{Type: t, EBI: v}, n, err
	case IEMEI:
		v, n, err := decodeMEI(buf)
		return IE{Type: t, MEI: v}, n, err
	case IEMSISDN:
		v, n, err := decodeMSISDN(buf)
		return IE{Type: t, MSISDN: v}, n, err
	case IEPDNAddressAllocation:
		v, n, err := decodePDNAddressAllocation(buf)
		return IE{Type: t, PDNAddressAllocation: v}, n, err
	case IEBearerQoS:
		v, n, err := decodeBearerQoS(buf)
		return IE{Type: t, BearerQoS: v}, n, err
	case IERATType:
		v, n, err := decodeRATType(buf)
		return IE{Type: t, RATType: v}, n, err
	case IEServingNetwork:
		v, n, err := decodeServingNetwork(buf)
		return IE{Type: t, ServingNetwork: v}, n, err
	case IEULI:
		v, n, err := decodeULI(buf)
		return IE{Type: t, ULI: v}, n, err
	case IEFTEID:
		v, n, err := decodeFTEID(buf)
		return IE{Type: t, FTEID: v}, n, err
	case IEBearerContext:
		v, n, err := decodeBearerContext(buf)
		return IE{Type: t, BearerContext: v}, n, err
	case IEChargingCharacteristics:
		v, n, err := decodeChargingCharacteristics(buf)
		return IE{Type: t, ChargingCharacteristics: v}, n, err
	case IEPDNType:
		v, n, err := decodePDNType(buf)
		return IE{Type: t, PDNType: v}, n, err
	case IEUETimeZone:
		v, n, err := decodeUETimeZone(buf)
		return IE{Type: t, UETimeZone: v}, n, err
	case IEAPNRestriction:
		v, n, err := decodeAPNRestriction(buf)
		return IE{Type: t, APNRestriction: v}, n, err
	case IESelectionMode:
		v, n, err := decodeSelectionMode(buf)
		return IE{Type: t, SelectionMode: v}, n, err
	default:
		return skip(buf)
	}
}

// skip consumes an unrecognized IE using its declared length so the
// containing message/BearerContext parser can continue, per the "Other,
// skip" forward-compatibility path: total bytes consumed is 4 + length.
func skip(buf []byte) (IE, int, error) {
	length, err := field.ReadU16(buf, 1)
	if err != nil {
		return IE{}, 0, err
	}
	total := ieHeaderLen + int(length)
	if len(buf) < total {
		return IE{}, 0, fmt.Errorf("gtpv2: skip: %w", field.ErrShortBuffer)
	}
	raw := make([]byte, length)
	copy(raw, buf[ieHeaderLen:total])
	return IE{Type: IEType(buf[0]), Raw: raw}, total, nil
}

// encodeIEHeader writes the common type/length/spare-instance prefix,
// returning the position just past it (ieHeaderLen).
func encodeIEHeader(buf []byte, t IEType, bodyLen int, instance uint8) error {
	if len(buf) < ieHeaderLen+bodyLen {
		return fmt.Errorf("gtpv2: ie %d: %w", t, field.ErrShortBuffer)
	}
	buf[0] = byte(t)
	if err := field.WriteU16(buf, 1, uint16(bodyLen)); err != nil {
		return err
	}
	buf[3] = instance & 0xF
	return nil
}

// decodeIEHeader reads the common prefix, returning declared body length,
// instance, and total on-wire size (ieHeaderLen + length).
func decodeIEHeader(buf []byte) (length int, instance uint8, total int, err error) {
	if len(buf) < ieHeaderLen {
		return 0, 0, 0, fmt.Errorf("gtpv2: ie header: %w", field.ErrShortBuffer)
	}
	l, err := field.ReadU16(buf, 1)
	if err != nil {
		return 0, 0, 0, err
	}
	return int(l), buf[3] & 0xF, ieHeaderLen + int(l), nil
}

func checkInstance(instance uint8) error {
	if instance > 0xF {
		return fmt.Errorf("gtpv2: instance out of range: %d", instance)
	}
	return nil
}
