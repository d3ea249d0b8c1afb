package gtpv2

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// FTeidInstance names the instance nibble F-TEID sub-IEs carry inside a
// BearerContext, identifying which bearer-plane interface the F-TEID
// belongs to.
type FTeidInstance uint8

const (
	FTeidS1UENodeB FTeidInstance = 0
	FTeidS4USgsn   FTeidInstance = 1
	FTeidS5S8USgw  FTeidInstance = 2
	FTeidS5S8UPgw  FTeidInstance = 3
	FTeidS12Rnc    FTeidInstance = 4
	FTeidS2bUPdg   FTeidInstance = 5
	FTeidS2aUTwan  FTeidInstance = 6
	FTeidS11UMme   FTeidInstance = 7
)

// BearerContext is the composite container IE grouping one bearer's EBI,
// QoS, Cause (response direction only), and up to eight F-TEID variants
// keyed by FTeidInstance. F-TEIDs whose instance falls outside 0..7 are
// decoded but dropped, matching the containing parser's dispatch-by-known-
// instance behavior.
type BearerContext struct {
	Instance uint8

	EBI       EBI
	BearerQoS BearerQoS
	Cause     *Cause

	FTEIDs [8]*FTEID // indexed by FTeidInstance
}

func (v BearerContext) bodyLen() int {
	n := v.EBI.length() + v.BearerQoS.length()
	if v.Cause != nil {
		n += v.Cause.length()
	}
	for _, f := range v.FTEIDs {
		if f != nil {
			n += f.length()
		}
	}
	return n
}

func (v BearerContext) length() int { return ieHeaderLen + v.bodyLen() }

func (v BearerContext) encode(buf []byte) (int, error) {
	body := v.bodyLen()
	if err := encodeIEHeader(buf, IEBearerContext, body, v.Instance); err != nil {
		return 0, err
	}
	pos := ieHeaderLen

	write := func(n int, err error) error {
		if err != nil {
			return err
		}
		pos += n
		return nil
	}

	if v.Cause != nil {
		if err := write(v.Cause.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	if err := write(v.EBI.encode(buf[pos:])); err != nil {
		return 0, err
	}
	if err := write(v.BearerQoS.encode(buf[pos:])); err != nil {
		return 0, err
	}
	for i, f := range v.FTEIDs {
		if f == nil {
			continue
		}
		fteid := *f
		fteid.Instance = uint8(i)
		if err := write(fteid.encode(buf[pos:])); err != nil {
			return 0, err
		}
	}
	return pos, nil
}

func decodeBearerContext(buf []byte) (BearerContext, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return BearerContext{}, 0, err
	}
	if len(buf) < total {
		return BearerContext{}, 0, fmt.Errorf("gtpv2: BearerContext: %w", field.ErrShortBuffer)
	}
	v := BearerContext{Instance: instance}
	haveEBI, haveQoS := false, false

	pos := ieHeaderLen
	end := ieHeaderLen + length
	for pos < end {
		ie, n, err := decodeIE(buf[pos:end])
		if err != nil {
			return BearerContext{}, 0, fmt.Errorf("gtpv2: BearerContext: %w", err)
		}
		switch ie.Type {
		case IEEBI:
			v.EBI = ie.EBI
			haveEBI = true
		case IEBearerQoS:
			v.BearerQoS = ie.BearerQoS
			haveQoS = true
		case IECause:
			c := ie.Cause
			v.Cause = &c
		case IEFTEID:
			if ie.FTEID.Instance <= 7 {
				f := ie.FTEID
				v.FTEIDs[ie.FTEID.Instance] = &f
			}
		}
		pos += n
	}

	if !haveEBI {
		return BearerContext{}, 0, fmt.Errorf("gtpv2: BearerContext: missing EBI")
	}
	if !haveQoS {
		return BearerContext{}, 0, fmt.Errorf("gtpv2: BearerContext: missing BearerQoS")
	}
	return v, total, nil
}
