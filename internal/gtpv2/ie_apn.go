package gtpv2

import (
	"fmt"
	"strings"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// APN is the Access Point Name, stored as a dotted ASCII string and
// wire-encoded as DNS-style length-prefixed labels with no terminating
// zero label (same layout as the v1 APN IE).
type APN struct {
	Instance uint8
	Name     string
}

func (v APN) bodyLen() int {
	if v.Name == "" {
		return 0
	}
	n := 0
	for _, label := range strings.Split(v.Name, ".") {
		n += 1 + len(label)
	}
	return n
}

func (v APN) length() int { return ieHeaderLen + v.bodyLen() }

func (v APN) encode(buf []byte) (int, error) {
	body := v.bodyLen()
	if err := encodeIEHeader(buf, IEAPN, body, v.Instance); err != nil {
		return 0, err
	}
	pos := ieHeaderLen
	if v.Name != "" {
		for _, label := range strings.Split(v.Name, ".") {
			if len(label) > 0xFF {
				return 0, fmt.Errorf("gtpv2: APN: label too long")
			}
			buf[pos] = byte(len(label))
			pos++
			copy(buf[pos:], label)
			pos += len(label)
		}
	}
	return pos, nil
}

func decodeAPN(buf []byte) (APN, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return APN{}, 0, err
	}
	if len(buf) < total {
		return APN{}, 0, fmt.Errorf("gtpv2: APN: %w", field.ErrShortBuffer)
	}
	var labels []string
	pos := ieHeaderLen
	end := ieHeaderLen + length
	for pos < end {
		labelLen := int(buf[pos])
		pos++
		if pos+labelLen > end {
			return APN{}, 0, fmt.Errorf("gtpv2: APN: label overruns IE body")
		}
		labels = append(labels, string(buf[pos:pos+labelLen]))
		pos += labelLen
	}
	return APN{Instance: instance, Name: strings.Join(labels, ".")}, total, nil
}
