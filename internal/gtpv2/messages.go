package gtpv2

import "fmt"

// MessageType is the GTPv2-C message-type discriminator (octet 1 of the
// header).
type MessageType uint8

const (
	MsgEchoRequest           MessageType = 1
	MsgEchoResponse          MessageType = 2
	MsgCreateSessionRequest  MessageType = 32
	// Byte 33 decodes as CreateSessionResponse. The original Rust source
	// this codec traces back to mapped it to CreateSessionRequest instead,
	// which does not match TS 29.274 table 6.1-1 and is corrected here.
	MsgCreateSessionResponse MessageType = 33
)

// EchoRequestMsg carries an optional Recovery IE (present when the sender
// just restarted).
type EchoRequestMsg struct {
	Recovery *Recovery
}

// EchoResponseMsg mirrors EchoRequestMsg.
type EchoResponseMsg struct {
	Recovery *Recovery
}

// CreateSessionRequestMsg is the decode of a Create Session Request: the
// mandatory fields the codec requires, the optional fields it recognizes,
// and a pass-through slot for everything else.
type CreateSessionRequestMsg struct {
	IMSI            *IMSI
	MSISDN          *MSISDN
	MEI             *MEI
	ULI             *ULI
	ServingNetwork  *ServingNetwork
	RATType         RATTypeIE
	SenderFTEID     FTEID // instance 0: Sender F-TEID for the control plane
	PGWS5S8FTEID    *FTEID // instance 1: PGW F-TEID for S5/S8, present on handover
	APN             APN
	SelectionMode   *SelectionMode
	PDNType         *PDNTypeIE
	PDNAddress      *PDNAddressAllocation
	APNRestriction  *APNRestriction
	AMBR            AMBR
	BearerContexts  []BearerContext
	Recovery        *Recovery
	ChargingChars   *ChargingCharacteristics

	Unknown []IE
}

// CreateSessionResponseMsg is the decode of a Create Session Response.
type CreateSessionResponseMsg struct {
	Cause          Cause
	PGWS5S8FTEID   *FTEID // instance 1
	PDNAddress     *PDNAddressAllocation
	APNRestriction *APNRestriction
	AMBR           *AMBR
	BearerContexts []BearerContext
	Recovery       *Recovery

	Unknown []IE
}

// Message is the closed v2 message catalog; exactly one field is
// meaningful, selected by Type.
type Message struct {
	Type                  MessageType
	EchoRequest           EchoRequestMsg
	EchoResponse          EchoResponseMsg
	CreateSessionRequest  CreateSessionRequestMsg
	CreateSessionResponse CreateSessionResponseMsg
}

func optLen(hasIt bool, l func() int) int {
	if hasIt {
		return l()
	}
	return 0
}

func (m Message) length() int {
	switch m.Type {
	case MsgEchoRequest:
		if m.EchoRequest.Recovery != nil {
			return m.EchoRequest.Recovery.length()
		}
		return 0
	case MsgEchoResponse:
		if m.EchoResponse.Recovery != nil {
			return m.EchoResponse.Recovery.length()
		}
		return 0
	case MsgCreateSessionRequest:
		c := m.CreateSessionRequest
		n := 0
		n += optLen(c.IMSI != nil, func() int { return c.IMSI.length() })
		n += optLen(c.MSISDN != nil, func() int { return c.MSISDN.length() })
		n += optLen(c.MEI != nil, func() int { return c.MEI.length() })
		n += optLen(c.ULI != nil, func() int { return c.ULI.length() })
		n += optLen(c.ServingNetwork != nil, func() int { return c.ServingNetwork.length() })
		n += c.RATType.length()
		n += c.SenderFTEID.length()
		n += optLen(c.PGWS5S8FTEID != nil, func() int { return c.PGWS5S8FTEID.length() })
		n += c.APN.length()
		n += optLen(c.SelectionMode != nil, func() int { return c.SelectionMode.length() })
		n += optLen(c.PDNType != nil, func() int { return c.PDNType.length() })
		n += optLen(c.PDNAddress != nil, func() int { return c.PDNAddress.length() })
		n += optLen(c.APNRestriction != nil, func() int { return c.APNRestriction.length() })
		n += c.AMBR.length()
		for _, bc := range c.BearerContexts {
			n += bc.length()
		}
		n += optLen(c.Recovery != nil, func() int { return c.Recovery.length() })
		n += optLen(c.ChargingChars != nil, func() int { return c.ChargingChars.length() })
		for _, u := range c.Unknown {
			n += u.length()
		}
		return n
	case MsgCreateSessionResponse:
		c := m.CreateSessionResponse
		n := c.Cause.length()
		n += optLen(c.PGWS5S8FTEID != nil, func() int { return c.PGWS5S8FTEID.length() })
		n += optLen(c.PDNAddress != nil, func() int { return c.PDNAddress.length() })
		n += optLen(c.APNRestriction != nil, func() int { return c.APNRestriction.length() })
		n += optLen(c.AMBR != nil, func() int { return c.AMBR.length() })
		for _, bc := range c.BearerContexts {
			n += bc.length()
		}
		n += optLen(c.Recovery != nil, func() int { return c.Recovery.length() })
		for _, u := range c.Unknown {
			n += u.length()
		}
		return n
	default:
		return 0
	}
}

func (m Message) encode(buf []byte) (int, error) {
	switch m.Type {
	case MsgEchoRequest:
		if m.EchoRequest.Recovery != nil {
			return m.EchoRequest.Recovery.encode(buf)
		}
		return 0, nil
	case MsgEchoResponse:
		if m.EchoResponse.Recovery != nil {
			return m.EchoResponse.Recovery.encode(buf)
		}
		return 0, nil
	case MsgCreateSessionRequest:
		return m.encodeCreateSessionRequest(buf)
	case MsgCreateSessionResponse:
		return m.encodeCreateSessionResponse(buf)
	default:
		return 0, fmt.Errorf("gtpv2: encode: unsupported message type %d", m.Type)
	}
}

func (m Message) encodeCreateSessionRequest(buf []byte) (int, error) {
	c := m.CreateSessionRequest
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
	if c.MSISDN != nil {
		if err := write(c.MSISDN.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.MEI != nil {
		if err := write(c.MEI.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.ULI != nil {
		if err := write(c.ULI.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.ServingNetwork != nil {
		if err := write(c.ServingNetwork.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if err := write(c.RATType.encode(buf[pos:])); err != nil {
		return 0, err
	}
	senderFTEID := c.SenderFTEID
	senderFTEID.Instance = 0
	if err := write(senderFTEID.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if c.PGWS5S8FTEID != nil {
		f := *c.PGWS5S8FTEID
		f.Instance = 1
		if err := write(f.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if err := write(c.APN.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if c.SelectionMode != nil {
		if err := write(c.SelectionMode.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.PDNType != nil {
		if err := write(c.PDNType.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.PDNAddress != nil {
		if err := write(c.PDNAddress.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.APNRestriction != nil {
		if err := write(c.APNRestriction.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if err := write(c.AMBR.encode(buf[pos:])); err != nil {
		return 0, err
	}
	for _, bc := range c.BearerContexts {
		if err := write(bc.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.Recovery != nil {
		if err := write(c.Recovery.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.ChargingChars != nil {
		if err := write(c.ChargingChars.encode(buf[pos:])); err != nil {
			return 0, err
		}
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

func (m Message) encodeCreateSessionResponse(buf []byte) (int, error) {
	c := m.CreateSessionResponse
	pos := 0
	write := func(n int, err error) error {
		if err != nil {
			return err
		}
		pos += n
		return nil
	}

	if err := write(c.Cause.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if c.PGWS5S8FTEID != nil {
		f := *c.PGWS5S8FTEID
		f.Instance = 1
		if err := write(f.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.PDNAddress != nil {
		if err := write(c.PDNAddress.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.APNRestriction != nil {
		if err := write(c.APNRestriction.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.AMBR != nil {
		if err := write(c.AMBR.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	for _, bc := range c.BearerContexts {
		if err := write(bc.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if c.Recovery != nil {
		if err := write(c.Recovery.encode(buf[pos:])); err != nil {
			return 0, err
		}
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

func decodeMessage(t MessageType, buf []byte) (Message, int, error) {
	switch t {
	case MsgEchoRequest:
		return decodeEchoRequest(buf)
	case MsgEchoResponse:
		return decodeEchoResponse(buf)
	case MsgCreateSessionRequest:
		return decodeCreateSessionRequest(buf)
	case MsgCreateSessionResponse:
		return decodeCreateSessionResponse(buf)
	default:
		return Message{}, 0, fmt.Errorf("gtpv2: decode: unsupported message type %d", t)
	}
}

func decodeEchoRequest(buf []byte) (Message, int, error) {
	if len(buf) == 0 {
		return Message{Type: MsgEchoRequest}, 0, nil
	}
	ie, n, err := decodeIE(buf)
	if err != nil {
		return Message{}, 0, fmt.Errorf("gtpv2: EchoRequest: %w", err)
	}
	msg := Message{Type: MsgEchoRequest}
	if ie.Type == IERecovery {
		rec := ie.Recovery
		msg.EchoRequest.Recovery = &rec
	}
	return msg, n, nil
}

func decodeEchoResponse(buf []byte) (Message, int, error) {
	if len(buf) == 0 {
		return Message{Type: MsgEchoResponse}, 0, nil
	}
	ie, n, err := decodeIE(buf)
	if err != nil {
		return Message{}, 0, fmt.Errorf("gtpv2: EchoResponse: %w", err)
	}
	msg := Message{Type: MsgEchoResponse}
	if ie.Type == IERecovery {
		rec := ie.Recovery
		msg.EchoResponse.Recovery = &rec
	}
	return msg, n, nil
}

func decodeCreateSessionRequest(buf []byte) (Message, int, error) {
	var c CreateSessionRequestMsg
	var senderFTEID *FTEID
	var ratType *RATTypeIE
	var apn *APN
	var ambr *AMBR

	pos := 0
	for pos < len(buf) {
		ie, n, err := decodeIE(buf[pos:])
		if err != nil {
			return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionRequest: %w", err)
		}
		switch ie.Type {
		case IEIMSI:
			v := ie.IMSI
			c.IMSI = &v
		case IEMSISDN:
			v := ie.MSISDN
			c.MSISDN = &v
		case IEMEI:
			v := ie.MEI
			c.MEI = &v
		case IEULI:
			v := ie.ULI
			c.ULI = &v
		case IEServingNetwork:
			v := ie.ServingNetwork
			c.ServingNetwork = &v
		case IERATType:
			v := ie.RATType
			ratType = &v
		case IEFTEID:
			v := ie.FTEID
			if v.Instance == 0 {
				senderFTEID = &v
			} else if v.Instance == 1 {
				c.PGWS5S8FTEID = &v
			}
		case IEAPN:
			v := ie.APN
			apn = &v
		case IESelectionMode:
			v := ie.SelectionMode
			c.SelectionMode = &v
		case IEPDNType:
			v := ie.PDNType
			c.PDNType = &v
		case IEPDNAddressAllocation:
			v := ie.PDNAddressAllocation
			c.PDNAddress = &v
		case IEAPNRestriction:
			v := ie.APNRestriction
			c.APNRestriction = &v
		case IEAMBR:
			v := ie.AMBR
			ambr = &v
		case IEBearerContext:
			c.BearerContexts = append(c.BearerContexts, ie.BearerContext)
		case IERecovery:
			v := ie.Recovery
			c.Recovery = &v
		case IEChargingCharacteristics:
			v := ie.ChargingCharacteristics
			c.ChargingChars = &v
		default:
			c.Unknown = append(c.Unknown, ie)
		}
		pos += n
	}

	if c.IMSI == nil {
		return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionRequest: missing IMSI")
	}
	if ratType == nil {
		return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionRequest: missing RAT Type")
	}
	if senderFTEID == nil {
		return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionRequest: missing Sender F-TEID")
	}
	if apn == nil {
		return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionRequest: missing APN")
	}
	if ambr == nil {
		return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionRequest: missing AMBR")
	}
	if len(c.BearerContexts) == 0 {
		return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionRequest: missing Bearer Context")
	}

	c.RATType = *ratType
	c.SenderFTEID = *senderFTEID
	c.APN = *apn
	c.AMBR = *ambr

	return Message{Type: MsgCreateSessionRequest, CreateSessionRequest: c}, pos, nil
}

func decodeCreateSessionResponse(buf []byte) (Message, int, error) {
	var c CreateSessionResponseMsg
	var cause *Cause

	pos := 0
	for pos < len(buf) {
		ie, n, err := decodeIE(buf[pos:])
		if err != nil {
			return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionResponse: %w", err)
		}
		switch ie.Type {
		case IECause:
			v := ie.Cause
			cause = &v
		case IEFTEID:
			v := ie.FTEID
			if v.Instance == 1 {
				c.PGWS5S8FTEID = &v
			}
		case IEPDNAddressAllocation:
			v := ie.PDNAddressAllocation
			c.PDNAddress = &v
		case IEAPNRestriction:
			v := ie.APNRestriction
			c.APNRestriction = &v
		case IEAMBR:
			v := ie.AMBR
			c.AMBR = &v
		case IEBearerContext:
			c.BearerContexts = append(c.BearerContexts, ie.BearerContext)
		case IERecovery:
			v := ie.Recovery
			c.Recovery = &v
		default:
			c.Unknown = append(c.Unknown, ie)
		}
		pos += n
	}

	if cause == nil {
		return Message{}, 0, fmt.Errorf("gtpv2: CreateSessionResponse: missing Cause")
	}
	c.Cause = *cause

	return Message{Type: MsgCreateSessionResponse, CreateSessionResponse: c}, pos, nil
}
