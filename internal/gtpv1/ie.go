// Package gtpv1 implements the GTPv1-U/C (3GPP TS 29.060) wire codec:
// header, extension-header chain, Information Elements, message catalog,
// and Packet composition.
package gtpv1

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// IEType is the 1-octet GTPv1 Information Element discriminator. Types below
// 0x80 are TV (fixed length, known only from this catalog); types 0x80 and
// above are TLV (explicit 2-octet length), and are the only ones an unknown
// decoder can skip over.
type IEType uint8

const (
	IECause                    IEType = 1
	IEIMSI                     IEType = 2
	IERecovery                 IEType = 14
	IESelectionMode            IEType = 15
	IETEIDDataI                IEType = 16
	IETEIDControlPlane         IEType = 17
	IENSAPI                    IEType = 20
	IEChargingCharacteristics  IEType = 26
	IEEndUserAddress           IEType = 128
	IEAPN                      IEType = 131
	IEProtocolConfigOptions    IEType = 132
	IEGSNAddress               IEType = 133
	IEMSISDN                   IEType = 134
	IEQoSProfile               IEType = 135
	IEPrivateExtension         IEType = 255
)

func isTLVType(t IEType) bool {
	return t >= 0x80
}

// IE is the closed catalog of decoded v1 Information Elements. Exactly one
// field is meaningful per value, selected by Type.
type IE struct {
	Type IEType

	IMSI                    IMSI
	Recovery                Recovery
	SelectionMode           SelectionMode
	TEIDDataI               TEIDDataI
	TEIDControlPlane        TEIDDataI
	NSAPI                   NSAPI
	ChargingCharacteristics ChargingCharacteristics
	APN                     APN
	GSNAddress              GSNAddress
	MSISDN                  MSISDN
	QoSProfile              QoSProfile

	// Raw holds the body bytes for IE types this catalog does not decompose
	// (e.g. PrivateExtension, ProtocolConfigOptions); only valid when Type
	// is one of those pass-through types.
	Raw []byte
}

// length returns the IE's total on-wire size including its type/length
// octets.
func (ie IE) length() int {
	switch ie.Type {
	case IEIMSI:
		return ie.IMSI.length()
	case IERecovery:
		return ie.Recovery.length()
	case IESelectionMode:
		return ie.SelectionMode.length()
	case IETEIDDataI:
		return ie.TEIDDataI.length()
	case IETEIDControlPlane:
		return ie.TEIDControlPlane.length()
	case IENSAPI:
		return ie.NSAPI.length()
	case IEChargingCharacteristics:
		return ie.ChargingCharacteristics.length()
	case IEAPN:
		return ie.APN.length()
	case IEGSNAddress:
		return ie.GSNAddress.length()
	case IEMSISDN:
		return ie.MSISDN.length()
	case IEQoSProfile:
		return ie.QoSProfile.length()
	default:
		return 1 + 2 + len(ie.Raw)
	}
}

// encode writes the IE into buf, returning the number of bytes written.
func (ie IE) encode(buf []byte) (int, error) {
	switch ie.Type {
	case IEIMSI:
		return ie.IMSI.encode(buf)
	case IERecovery:
		return ie.Recovery.encode(buf)
	case IESelectionMode:
		return ie.SelectionMode.encode(buf)
	case IETEIDDataI:
		return ie.TEIDDataI.encode(buf, IETEIDDataI)
	case IETEIDControlPlane:
		return ie.TEIDControlPlane.encode(buf, IETEIDControlPlane)
	case IENSAPI:
		return ie.NSAPI.encode(buf)
	case IEChargingCharacteristics:
		return ie.ChargingCharacteristics.encode(buf)
	case IEAPN:
		return ie.APN.encode(buf)
	case IEGSNAddress:
		return ie.GSNAddress.encode(buf)
	case IEMSISDN:
		return ie.MSISDN.encode(buf)
	case IEQoSProfile:
		return ie.QoSProfile.encode(buf)
	default:
		need := 1 + 2 + len(ie.Raw)
		if len(buf) < need {
			return 0, fmt.Errorf("gtpv1: ie %d: %w", ie.Type, field.ErrShortBuffer)
		}
		buf[0] = byte(ie.Type)
		field.WriteU16(buf, 1, uint16(len(ie.Raw)))
		copy(buf[3:], ie.Raw)
		return need, nil
	}
}

// decodeIE peeks at the first byte of buf (the IE type) and dispatches to
// the matching catalog decoder. Unknown TLV types (type >= 0x80) are
// consumed via their explicit length so the containing message parser can
// continue; unknown TV types cannot be bounded and are a hard decode error.
func decodeIE(buf []byte) (IE, int, error) {
	if len(buf) < 1 {
		return IE{}, 0, fmt.Errorf("gtpv1: ie: %w", field.ErrShortBuffer)
	}
	t := IEType(buf[0])

	switch t {
	case IEIMSI:
		v, n, err := decodeIMSI(buf)
		return IE{Type: t, IMSI: v}, n, err
	case IERecovery:
		v, n, err := decodeRecovery(buf)
		return IE{Type: t, Recovery: v}, n, err
	case IESelectionMode:
		v, n, err := decodeSelectionMode(buf)
		return IE{Type: t, SelectionMode: v}, n, err
	case IETEIDDataI:
		v, n, err := decodeTEIDDataI(buf)
		return IE{Type: t, TEIDDataI: v}, n, err
	case IETEIDControlPlane:
		v, n, err := decodeTEIDDataI(buf)
		return IE{Type: t, TEIDControlPlane: v}, n, err
	case IENSAPI:
		v, n, err := decodeNSAPI(buf)
		return IE{Type: t, NSAPI: v}, n, err
	case IEChargingCharacteristics:
		v, n, err := decodeChargingCharacteristics(buf)
		return IE{Type: t, ChargingCharacteristics: v}, n, err
	case IEAPN:
		v, n, err := decodeAPN(buf)
		return IE{Type: t, APN: v}, n, err
	case IEGSNAddress:
		v, n, err := decodeGSNAddress(buf)
		return IE{Type: t, GSNAddress: v}, n, err
	case IEMSISDN:
		v, n, err := decodeMSISDN(buf)
		return IE{Type: t, MSISDN: v}, n, err
	case IEQoSProfile:
		v, n, err := decodeQoSProfile(buf)
		return IE{Type: t, QoSProfile: v}, n, err
	default:
		if isTLVType(t) {
			return skipTLV(buf)
		}
		return IE{}, 0, fmt.Errorf("gtpv1: unknown TV ie type %d: cannot bound length", t)
	}
}

// skipTLV consumes a TLV-format IE of unrecognized type using its explicit
// 2-octet length, carrying the body through as Raw so forward-compatible
// messages can still round-trip it.
func skipTLV(buf []byte) (IE, int, error) {
	if len(buf) < 3 {
		return IE{}, 0, fmt.Errorf("gtpv1: skip: %w", field.ErrShortBuffer)
	}
	t := IEType(buf[0])
	length, err := field.ReadU16(buf, 1)
	if err != nil {
		return IE{}, 0, err
	}
	total := 3 + int(length)
	if len(buf) < total {
		return IE{}, 0, fmt.Errorf("gtpv1: skip: %w", field.ErrShortBuffer)
	}
	raw := make([]byte, length)
	copy(raw, buf[3:total])
	return IE{Type: t, Raw: raw}, total, nil
}
