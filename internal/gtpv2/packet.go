package gtpv2

import "fmt"

// Packet pairs a Header with a Message; the header's message type and
// length are always recomputed from the message at encode time.
type Packet struct {
	Header  Header
	Message Message
}

// NewPacket constructs a Packet whose header carries teid (when hasTEID is
// true) and matches msg's type.
func NewPacket(msg Message, teid uint32, hasTEID bool, seq uint32) Packet {
	return Packet{
		Header: Header{
			MessageType:    msg.Type,
			HasTEID:        hasTEID,
			TEID:           teid,
			SequenceNumber: seq,
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
		return 0, fmt.Errorf("gtpv2: Packet.Generate: header: %w", err)
	}
	mn, err := p.Message.encode(buf[hn:])
	if err != nil {
		return 0, fmt.Errorf("gtpv2: Packet.Generate: message: %w", err)
	}
	return hn + mn, nil
}

// ParsePacket decodes a Packet from buf, returning the packet and the
// number of bytes consumed.
func ParsePacket(buf []byte) (Packet, int, error) {
	h, hn, err := decodeHeader(buf)
	if err != nil {
		return Packet{}, 0, fmt.Errorf("gtpv2: ParsePacket: header: %w", err)
	}

	declared, err := func() (int, error) {
		if len(buf) < 4 {
			return 0, fmt.Errorf("gtpv2: ParsePacket: header too short")
		}
		return int(buf[2])<<8 | int(buf[3]), nil
	}()
	if err != nil {
		return Packet{}, 0, err
	}
	length := declared - h.optionalLen()
	if length < 0 {
		return Packet{}, 0, fmt.Errorf("gtpv2: ParsePacket: declared length shorter than header optionals")
	}

	body := buf[hn:]
	if len(body) < length {
		return Packet{}, 0, fmt.Errorf("gtpv2: ParsePacket: body shorter than declared length")
	}

	msg, mn, err := decodeMessage(h.MessageType, body[:length])
	if err != nil {
		return Packet{}, 0, fmt.Errorf("gtpv2: ParsePacket: message: %w", err)
	}

	return Packet{Header: *h, Message: msg}, hn + mn, nil
}
