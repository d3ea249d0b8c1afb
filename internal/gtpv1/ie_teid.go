package gtpv1

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// TEIDDataI is the 32-bit data-plane or control-plane TEID carried by the
// TEID Data I / TEID Control Plane IEs (8.13/8.14 TS 29.060). Both share
// this shape; the enclosing IEType distinguishes them.
type TEIDDataI struct {
	TEID uint32
}

func (v TEIDDataI) length() int { return 1 + 4 }

func (v TEIDDataI) encode(buf []byte, t IEType) (int, error) {
	if len(buf) < v.length() {
		return 0, fmt.Errorf("gtpv1: TEID: %w", field.ErrShortBuffer)
	}
	buf[0] = byte(t)
	field.WriteU32(buf, 1, v.TEID)
	return v.length(), nil
}

func decodeTEIDDataI(buf []byte) (TEIDDataI, int, error) {
	if len(buf) < 5 {
		return TEIDDataI{}, 0, fmt.Errorf("gtpv1: TEID: %w", field.ErrShortBuffer)
	}
	teid, err := field.ReadU32(buf, 1)
	if err != nil {
		return TEIDDataI{}, 0, err
	}
	return TEIDDataI{TEID: teid}, 5, nil
}
