package gtpv2

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

const gtpVersion2 = 2
const mandatoryHeaderLenV2 = 4 // version/flags, message type, length

// ErrPiggybackUnsupported is returned by decodeHeader when the P (piggyback)
// flag is set: a piggybacked initial message concatenated after a triggered
// response is not a feature this codec implements, so such packets are
// rejected rather than misread as if P were 0.
var ErrPiggybackUnsupported = fmt.Errorf("gtpv2: header: piggybacked message (P=1) not supported")

// Header is the GTPv2-C fixed header. Sequence number is always present
// (24 bits); TEID is present unless explicitly suppressed (only the
// initial EchoRequest/EchoResponse on some paths omit it). MP (message
// priority) is optional; when present it occupies the high nibble of the
// header's trailing octet, which is otherwise always spare/zero.
type Header struct {
	MessageType     MessageType
	HasTEID         bool
	TEID            uint32
	SequenceNumber  uint32 // 24-bit
	MP              bool
	MessagePriority uint8 // 4-bit, valid only when MP is true
}

func (h Header) hasTEIDFlag() byte {
	if h.HasTEID {
		return 1 << 3
	}
	return 0
}

func (h Header) mpFlag() byte {
	if h.MP {
		return 1 << 2
	}
	return 0
}

func (h Header) optionalLen() int {
	n := 0
	if h.HasTEID {
		n += 4
	}
	n += 3 // sequence number
	n += 1 // MP/spare octet
	return n
}

// encode writes the header into buf; payloadLen is the size of the message
// body that follows, used to compute the declared length field (which, per
// TS 29.274, covers everything after the first 4 octets).
func (h Header) encode(buf []byte, payloadLen int) (int, error) {
	need := mandatoryHeaderLenV2 + h.optionalLen()
	if len(buf) < need {
		return 0, fmt.Errorf("gtpv2: header: %w", field.ErrShortBuffer)
	}
	buf[0] = (gtpVersion2 << 5) | h.hasTEIDFlag() | h.mpFlag() // P=0 (piggybacking not supported), spare bits 1-0 = 0
	buf[1] = byte(h.MessageType)
	length := h.optionalLen() + payloadLen
	field.WriteU16(buf, 2, uint16(length))

	pos := 4
	if h.HasTEID {
		field.WriteU32(buf, pos, h.TEID)
		pos += 4
	}
	buf[pos] = byte(h.SequenceNumber >> 16)
	buf[pos+1] = byte(h.SequenceNumber >> 8)
	buf[pos+2] = byte(h.SequenceNumber)
	pos += 3
	buf[pos] = 0
	if h.MP {
		buf[pos] = h.MessagePriority << 4
	}
	pos++
	return pos, nil
}

// decodeHeader parses the fixed header, returning the header and the
// number of bytes consumed.
func decodeHeader(buf []byte) (*Header, int, error) {
	if len(buf) < mandatoryHeaderLenV2 {
		return nil, 0, fmt.Errorf("gtpv2: header: %w", field.ErrShortBuffer)
	}
	version := buf[0] >> 5
	if version != gtpVersion2 {
		return nil, 0, fmt.Errorf("gtpv2: header: unsupported version %d", version)
	}
	if buf[0]&(1<<4) != 0 {
		return nil, 0, ErrPiggybackUnsupported
	}
	hasTEID := buf[0]&(1<<3) != 0
	hasMP := buf[0]&(1<<2) != 0

	h := &Header{MessageType: MessageType(buf[1]), HasTEID: hasTEID}
	pos := 4
	if hasTEID {
		if len(buf) < pos+4 {
			return nil, 0, fmt.Errorf("gtpv2: header: %w", field.ErrShortBuffer)
		}
		teid, err := field.ReadU32(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		h.TEID = teid
		pos += 4
	}
	if len(buf) < pos+4 {
		return nil, 0, fmt.Errorf("gtpv2: header: %w", field.ErrShortBuffer)
	}
	h.SequenceNumber = uint32(buf[pos])<<16 | uint32(buf[pos+1])<<8 | uint32(buf[pos+2])
	pos += 3
	if hasMP {
		h.MP = true
		h.MessagePriority = (buf[pos] >> 4) & 0xF
	}
	pos++ // MP/spare octet
	return h, pos, nil
}
