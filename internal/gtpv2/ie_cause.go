package gtpv2

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// CauseCode is the 1-octet GTPv2 cause value (TS 29.274 table 8.4-1). Only
// the codes this codec's message catalog and tests exercise are named;
// any other decimal value decodes as-is (the codec does not reject unknown
// cause codes, unlike an unknown IE type).
type CauseCode uint8

const (
	CauseRequestAccepted             CauseCode = 16
	CauseRequestAcceptedPartially    CauseCode = 17
	CauseContextNotFound             CauseCode = 64
	CauseInvalidMessageFormat        CauseCode = 65
	CauseMandatoryIEIncorrect        CauseCode = 69
	CauseMandatoryIEMissing          CauseCode = 70
	CauseSystemFailure               CauseCode = 72
	CauseNoResourcesAvailable        CauseCode = 73
	CauseSemanticErrorInTheTAD       CauseCode = 74
	CauseSyntacticErrorInTheTAD      CauseCode = 75
	CauseUnableToPageUE              CauseCode = 85
	CauseServiceNotSupported         CauseCode = 67
	CauseRemoteNodeNotReachable      CauseCode = 100
	CauseS1UPathFailure              CauseCode = 128
)

// CauseSource distinguishes who originated a cause: the node handling this
// message (LocalNode) or a node further along the signalling path
// (RemoteNode).
type CauseSource uint8

const (
	CauseSourceLocalNode  CauseSource = 0
	CauseSourceRemoteNode CauseSource = 1
)

// OffendingIE names the IE that triggered a negative Cause, present only
// when the cause's declared length is 6 rather than 2.
type OffendingIE struct {
	Type     IEType
	Instance uint8
}

// Cause is the GTPv2 result/error indication IE.
type Cause struct {
	Instance             uint8
	Code                 CauseCode
	PDNConnectionIEError bool
	BearerContextIEError bool
	Source               CauseSource
	Offending            *OffendingIE
}

func (v Cause) bodyLen() int {
	if v.Offending != nil {
		return 6
	}
	return 2
}

func (v Cause) length() int { return ieHeaderLen + v.bodyLen() }

func (v Cause) flags() byte {
	var f byte
	if v.PDNConnectionIEError {
		f |= 1 << 2
	}
	if v.BearerContextIEError {
		f |= 1 << 1
	}
	if v.Source == CauseSourceRemoteNode {
		f |= 1
	}
	return f
}

func (v Cause) encode(buf []byte) (int, error) {
	body := v.bodyLen()
	if err := encodeIEHeader(buf, IECause, body, v.Instance); err != nil {
		return 0, err
	}
	pos := ieHeaderLen
	buf[pos] = byte(v.Code)
	buf[pos+1] = v.flags()
	pos += 2
	if v.Offending != nil {
		buf[pos] = byte(v.Offending.Type)
		buf[pos+1] = 0
		buf[pos+2] = 0
		buf[pos+3] = v.Offending.Instance & 0xF
		pos += 4
	}
	return pos, nil
}

func decodeCause(buf []byte) (Cause, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return Cause{}, 0, err
	}
	if length < 2 || len(buf) < total {
		return Cause{}, 0, fmt.Errorf("gtpv2: Cause: %w", field.ErrShortBuffer)
	}
	pos := ieHeaderLen
	v := Cause{
		Instance:             instance,
		Code:                 CauseCode(buf[pos]),
		PDNConnectionIEError: buf[pos+1]&(1<<2) != 0,
		BearerContextIEError: buf[pos+1]&(1<<1) != 0,
		Source:               CauseSource(buf[pos+1] & 1),
	}
	if length >= 6 {
		o := OffendingIE{Type: IEType(buf[pos+2]), Instance: buf[pos+5] & 0xF}
		v.Offending = &o
	}
	return v, total, nil
}
