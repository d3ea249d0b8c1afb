package gtpv1

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// MessageType is the GTPv1 message-type discriminator (octet 1 of the
// header).
type MessageType uint8

const (
	MsgEchoRequest            MessageType = 1
	MsgEchoResponse           MessageType = 2
	MsgCreatePDPContextReq    MessageType = 16
	MsgGPDU                   MessageType = 255
)

// EchoRequestMsg carries no IEs.
type EchoRequestMsg struct{}

// EchoResponseMsg carries a mandatory Recovery IE.
type EchoResponseMsg struct {
	Recovery Recovery
}

// CreatePDPContextRequestMsg is the full decode of the v1 Create PDP Context
// Request: typed required fields plus the optional IEs this catalog
// supports. Per the design decision on v1 decode, this loops over every IE
// in the body the same way CreateSessionRequest (v2) does, rather than
// stubbing the parse path.
type CreatePDPContextRequestMsg struct {
	IMSI                      *IMSI
	Recovery                  *Recovery
	SelectionMode             *SelectionMode
	TEIDDataI                 TEIDDataI
	TEIDControlPlane          TEIDDataI
	NSAPI                     NSAPI
	ChargingCharacteristics   *ChargingCharacteristics
	APN                       APN
	SGSNAddressForSignalling  GSNAddress
	SGSNAddressForUserTraffic GSNAddress
	MSISDN                    *MSISDN
	QoSProfile                QoSProfile

	// Unknown carries any IE this catalog could not decompose but could
	// skip (TLV types >= 0x80), preserved for forward compatibility.
	Unknown []IE
}

// GPDUMsg carries the encapsulated T-PDU (an IPv4 or IPv6 packet in this
// codec's scope) verbatim.
type GPDUMsg struct {
	Payload []byte
}

// NewGPDU builds a GPDU message directly from a raw inner-IP byte slice,
// mirroring the convenience constructor in the original g_pdu module.
func NewGPDU(innerIP []byte) GPDUMsg {
	return GPDUMsg{Payload: innerIP}
}

// Message is the closed v1 message catalog; exactly one field is
// meaningful, selected by Type.
type Message struct {
	Type                    MessageType
	EchoRequest             EchoRequestMsg
	EchoResponse            EchoResponseMsg
	CreatePDPContextRequest CreatePDPContextRequestMsg
	GPDU                    GPDUMsg
}

// length is the sum of the message's IE contributions (v1: the sum of each
// contained IE's on-wire size; for GPDU, the raw payload length).
func (m Message) length() int {
	switch m.Type {
	case MsgEchoRequest:
		return 0
	case MsgEchoResponse:
		return m.EchoResponse.Recovery.length()
	case MsgCreatePDPContextReq:
		c := m.CreatePDPContextRequest
		n := 0
		if c.IMSI != nil {
			n += c.IMSI.length()
		}
		if c.Recovery != nil {
			n += c.Recovery.length()
		}
		if c.SelectionMode != nil {
			n += c.SelectionMode.length()
		}
		n += c.TEIDDataI.length()
		n += TEIDDataI(c.TEIDControlPlane).length()
		n += c.NSAPI.length()
		if c.ChargingCharacteristics != nil {
			n += c.ChargingCharacteristics.length()
		}
		n += c.APN.length()
		n += c.SGSNAddressForSignalling.length()
		n += c.SGSNAddressForUserTraffic.length()
		if c.MSISDN != nil {
			n += c.MSISDN.length()
		}
		n += c.QoSProfile.length()
		for _, u := range c.Unknown {
			n += u.length()
		}
		return n
	case MsgGPDU:
		return len(m.GPDU.Payload)
	default:
		return 0
	}
}

// encode emits the message body into buf. CreatePDPContextRequest IEs are
// written in the order their fields are listed on CreatePDPContextRequestMsg
// (ascending IE type), followed by any Unknown IEs.
func (m Message) encode(buf []byte) (int, error) {
	switch m.Type {
	case MsgEchoRequest:
		return 0, nil
	case MsgEchoResponse:
		return m.EchoResponse.Recovery.encode(buf)
	case MsgCreatePDPContextReq:
		return m.encodeCreatePDPContextRequest(buf)
	case MsgGPDU:
		n := copy(buf, m.GPDU.Payload)
		if n < len(m.GPDU.Payload) {
			return 0, fmt.Errorf("gtpv1: GPDU: %w", field.ErrShortBuffer)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("gtpv1: encode: unsupported message type %d", m.Type)
	}
}

func (m Message) encodeCreatePDPContextRequest(buf []byte) (int, error) {
	c := m.CreatePDPContextRequest
	pos := 0

	write := func(n int, err error) error {
		if err != nil {
			return err
		}
		pos += n
		return nil
	}

	if c.IMSI != nil {
		if err := write(c.IMSI.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.Recovery != nil {
		if err := write(c.Recovery.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.SelectionMode != nil {
		if err := write(c.SelectionMode.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if err := write(c.TEIDDataI.encode(buf[pos:], IETEIDDataI)); err != nil {
		return 0, err
	}
	if err := write(c.TEIDControlPlane.encode(buf[pos:], IETEIDControlPlane)); err != nil {
		return 0, err
	}
	if err := write(c.NSAPI.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if c.ChargingCharacteristics != nil {
		if err := write(c.ChargingCharacteristics.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if err := write(c.APN.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if err := write(c.SGSNAddressForSignalling.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if err := write(c.SGSNAddressForUserTraffic.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if c.MSISDN != nil {
		if err := write(c.MSISDN.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if err := write(c.QoSProfile.encode(buf[pos:])); err != nil {
		return 0, err
	}
	for _, u := range c.Unknown {
		n, err := u.encode(buf[pos:])
		if err != nil {
			return 0, err
		}
		pos += n
	}

	return pos, nil
}

// decodeMessage dispatches on t and parses the message body out of buf.
func decodeMessage(t MessageType, buf []byte) (Message, int, error) {
	switch t {
	case MsgEchoRequest:
		return Message{Type: t, EchoRequest: EchoRequestMsg{}}, 0, nil
	case MsgEchoResponse:
		rec, n, err := decodeRecovery(buf)
		if err != nil {
			return Message{}, 0, fmt.Errorf("gtpv1: EchoResponse: %w", err)
		}
		return Message{Type: t, EchoResponse: EchoResponseMsg{Recovery: rec}}, n, nil
	case MsgCreatePDPContextReq:
		return decodeCreatePDPContextRequest(buf)
	case MsgGPDU:
		payload := make([]byte, len(buf))
		copy(payload, buf)
		return Message{Type: t, GPDU: GPDUMsg{Payload: payload}}, len(buf), nil
	default:
		return Message{}, 0, fmt.Errorf("gtpv1: decode: unsupported message type %d", t)
	}
}

// decodeCreatePDPContextRequest loops over the IEs in buf the way
// CreateSessionRequest (v2) does, dispatching each to the catalog and
// placing it into its typed slot; occurrences of GSNAddress are assigned by
// position (signalling plane first, user plane second), matching the order
// TS 29.060 mandates on the wire. Mandatory fields are validated once the
// loop completes.
func decodeCreatePDPContextRequest(buf []byte) (Message, int, error) {
	var c CreatePDPContextRequestMsg
	var teidDataI, teidControlPlane *TEIDDataI
	var nsapi *NSAPI
	var apn *APN
	var qos *QoSProfile
	gsnSeen := 0

	pos := 0
	for pos < len(buf) {
		ie, n, err := decodeIE(buf[pos:])
		if err != nil {
			return Message{}, 0, fmt.Errorf("gtpv1: CreatePDPContextRequest: %w", err)
		}
		switch ie.Type {
		case IEIMSI:
			v := ie.IMSI
			c.IMSI = &v
		case IERecovery:
			v := ie.Recovery
			c.Recovery = &v
		case IESelectionMode:
			v := ie.SelectionMode
			c.SelectionMode = &v
		case IETEIDDataI:
			v := ie.TEIDDataI
			teidDataI = &v
		case IETEIDControlPlane:
			v := ie.TEIDControlPlane
			teidControlPlane = &v
		case IENSAPI:
			v := ie.NSAPI
			nsapi = &v
		case IEChargingCharacteristics:
			v := ie.ChargingCharacteristics
			c.ChargingCharacteristics = &v
		case IEAPN:
			v := ie.APN
			apn = &v
		case IEGSNAddress:
			if gsnSeen == 0 {
				c.SGSNAddressForSignalling = ie.GSNAddress
			} else {
				c.SGSNAddressForUserTraffic = ie.GSNAddress
			}
			gsnSeen++
		case IEMSISDN:
			v := ie.MSISDN
			c.MSISDN = &v
		case IEQoSProfile:
			v := ie.QoSProfile
			qos = &v
		default:
			c.Unknown = append(c.Unknown, ie)
		}
		pos += n
	}

	if teidDataI == nil {
		return Message{}, 0, fmt.Errorf("gtpv1: CreatePDPContextRequest: missing TEID Data I")
	}
	if teidControlPlane == nil {
		return Message{}, 0, fmt.Errorf("gtpv1: CreatePDPContextRequest: missing TEID Control Plane")
	}
	if nsapi == nil {
		return Message{}, 0, fmt.Errorf("gtpv1: CreatePDPContextRequest: missing NSAPI")
	}
	if apn == nil {
		return Message{}, 0, fmt.Errorf("gtpv1: CreatePDPContextRequest: missing APN")
	}
	if qos == nil {
		return Message{}, 0, fmt.Errorf("gtpv1: CreatePDPContextRequest: missing QoS Profile")
	}

	c.TEIDDataI = *teidDataI
	c.TEIDControlPlane = *teidControlPlane
	c.NSAPI = *nsapi
	c.APN = *apn
	c.QoSProfile = *qos

	return Message{Type: MsgCreatePDPContextReq, CreatePDPContextRequest: c}, pos, nil
}
