package gtpv1

import "fmt"

// Packet pairs a Header with a Message; the header's length field is always
// recomputed from the message at encode time and never trusted from prior
// state.
type Packet struct {
	Header  Header
	Message Message
}

// NewPacket constructs a Packet whose header message-type matches msg.
func NewPacket(msg Message, teid uint32) Packet {
	return Packet{
		Header: Header{
			ProtocolType: ProtocolTypeGTP,
			MessageType:  msg.Type,
			TEID:         teid,
		},
		Message: msg,
	}
}

// Generate encodes the packet into buf, returning the total bytes written.
func (p *Packet) Generate(buf []byte) (int, error) {
	p.Header.MessageType = p.Message.Type
	payloadLen := p.Message.length()

	hn, err := p.Header.encode(buf, payloadLen)
	if err != nil {
		return 0, fmt.Errorf("gtpv1: Packet.Generate: header: %w", err)
	}
	mn, err := p.Message.encode(buf[hn:])
	if err != nil {
		return 0, fmt.Errorf("gtpv1: Packet.Generate: message: %w", err)
	}
	return hn + mn, nil
}

// ParsePacket decodes a Packet from buf, returning the packet and the
// number of bytes consumed.
func ParsePacket(buf []byte) (Packet, int, error) {
	h, hn, err := decodeHeader(buf)
	if err != nil {
		return Packet{}, 0, fmt.Errorf("gtpv1: ParsePacket: header: %w", err)
	}

	// The header's declared length covers everything after the mandatory 8
	// octets; subtract what decodeHeader already consumed of that (SN,
	// N-PDU, extension chain) to get the message body length.
	declared := int(buf[2])<<8 | int(buf[3])
	length := declared - (hn - mandatoryHeaderLen)
	if length < 0 {
		return Packet{}, 0, fmt.Errorf("gtpv1: ParsePacket: declared length shorter than header optionals")
	}

	body := buf[hn:]
	if len(body) < length {
		return Packet{}, 0, fmt.Errorf("gtpv1: ParsePacket: body shorter than declared length")
	}

	msg, mn, err := decodeMessage(h.MessageType, body[:length])
	if err != nil {
		return Packet{}, 0, fmt.Errorf("gtpv1: ParsePacket: message: %w", err)
	}

	return Packet{Header: *h, Message: msg}, hn + mn, nil
}
