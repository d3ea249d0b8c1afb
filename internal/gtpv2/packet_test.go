package gtpv2

import (
	"bytes"
	"net"
	"testing"

	"github.com/your-org/gtp-tunnel/internal/field"
)

func TestS5IMSIExactBytes(t *testing.T) {
	imsi, err := NewIMSI("505013485090404", 0)
	if err != nil {
		t.Fatalf("NewIMSI: %v", err)
	}
	buf := make([]byte, 32)
	n, err := imsi.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x01, 0x00, 0x08, 0x00, 0x05, 0x05, 0x31, 0x84, 0x05, 0x09, 0x04, 0xF4}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("encoded = % x, want % x", buf[:n], want)
	}

	got, gn, err := decodeIMSI(buf[:n])
	if err != nil {
		t.Fatalf("decodeIMSI: %v", err)
	}
	if gn != n || got.Digits != "505013485090404" {
		t.Fatalf("got %+v, consumed %d", got, gn)
	}
}

func TestS6ULIAllEight(t *testing.T) {
	plmn := field.PLMN{MCC: [3]byte{5, 0, 5}, MNC: [3]byte{0, 9, 9}}
	u := ULI{
		CGI:     &CGI{PLMN: plmn, LAC: 0x1234, CI: 0x4321},
		SAI:     &SAI{PLMN: plmn, LAC: 0x1234, SAC: 0x4321},
		RAI:     &RAI{PLMN: plmn, LAC: 0x1234, RAC: 0x4321},
		TAI:     &TAI{PLMN: plmn, TAC: 0x1234},
		ECGI:    &ECGI{PLMN: plmn, ECI: 0x1234567 & 0x0FFFFFFF},
		LAI:     &LAI{PLMN: plmn, LAC: 0x1234},
		MeNBID:  &MeNBID{PLMN: plmn, ID: 0x12345 & 0xFFFFF},
		EMeNBID: &EMeNBID{PLMN: plmn, ID: 0x123456 & 0x1FFFFF},
	}

	if u.flags() != 0xFF {
		t.Fatalf("flags = %08b, want 11111111", u.flags())
	}
	if u.bodyLen() != 51 {
		t.Fatalf("bodyLen = %d, want 51", u.bodyLen())
	}

	buf := make([]byte, 128)
	n, err := u.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if n != ieHeaderLen+51 {
		t.Fatalf("encoded length = %d, want %d", n, ieHeaderLen+51)
	}

	got, gn, err := decodeULI(buf[:n])
	if err != nil {
		t.Fatalf("decodeULI: %v", err)
	}
	if gn != n {
		t.Fatalf("consumed %d, want %d", gn, n)
	}
	if got.CGI == nil || got.CGI.LAC != 0x1234 || got.CGI.CI != 0x4321 {
		t.Fatalf("CGI mismatch: %+v", got.CGI)
	}
	if got.ECGI == nil || got.ECGI.ECI != 0x1234567&0x0FFFFFFF {
		t.Fatalf("ECGI mismatch: %+v", got.ECGI)
	}
	if got.EMeNBID == nil || got.EMeNBID.ID != 0x123456&0x1FFFFF {
		t.Fatalf("EMeNBID mismatch: %+v", got.EMeNBID)
	}
}

// TestS6ULIEMeNBIDShortForm exercises an EMeNBID below the 0x3FFFF
// short-form threshold: the SMeNB flag bit (23) must be set on the wire and
// must not leak into the decoded ID.
func TestS6ULIEMeNBIDShortForm(t *testing.T) {
	plmn := field.PLMN{MCC: [3]byte{5, 0, 5}, MNC: [3]byte{0, 9, 9}}
	const shortID = 0x2ABCD // < 0x3FFFF
	u := ULI{EMeNBID: &EMeNBID{PLMN: plmn, ID: shortID}}

	buf := make([]byte, 32)
	n, err := u.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	eMeNBID := buf[ieHeaderLen+1+3:]
	if eMeNBID[0]&0x80 == 0 {
		t.Fatalf("SMeNB flag bit not set: % x", eMeNBID[:3])
	}

	got, gn, err := decodeULI(buf[:n])
	if err != nil {
		t.Fatalf("decodeULI: %v", err)
	}
	if gn != n {
		t.Fatalf("consumed %d, want %d", gn, n)
	}
	if got.EMeNBID == nil || got.EMeNBID.ID != shortID {
		t.Fatalf("EMeNBID mismatch: %+v, want ID=%#x", got.EMeNBID, shortID)
	}
}

func TestS7BearerContextWithBearerQoS(t *testing.T) {
	ebi, err := NewEBI(7, 0)
	if err != nil {
		t.Fatalf("NewEBI: %v", err)
	}
	qos, err := NewBearerQoS(BearerQoS{
		QCI:                7,
		PVI:                true,
		PCI:                false,
		PriorityLevel:      9,
		MaxBitrateUplink:   10_000_000,
		MaxBitrateDownlink: 10_000_000,
	})
	if err != nil {
		t.Fatalf("NewBearerQoS: %v", err)
	}
	if qos.flags() != 0b01100100 {
		t.Fatalf("flags = %08b, want 01100100", qos.flags())
	}
	if qos.length() != ieHeaderLen+22 {
		t.Fatalf("BearerQoS length = %d, want %d", qos.length(), ieHeaderLen+22)
	}

	bc := BearerContext{EBI: ebi, BearerQoS: qos}
	if bc.bodyLen() != 31 {
		t.Fatalf("BearerContext bodyLen = %d, want 31", bc.bodyLen())
	}

	buf := make([]byte, 128)
	n, err := bc.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, gn, err := decodeBearerContext(buf[:n])
	if err != nil {
		t.Fatalf("decodeBearerContext: %v", err)
	}
	if gn != n {
		t.Fatalf("consumed %d, want %d", gn, n)
	}
	if got.EBI.Value != 7 || got.BearerQoS.QCI != 7 || !got.BearerQoS.PVI || got.BearerQoS.PCI {
		t.Fatalf("got %+v", got)
	}
}

func TestByte33DecodesAsCreateSessionResponse(t *testing.T) {
	if MsgCreateSessionResponse != 33 {
		t.Fatalf("MsgCreateSessionResponse = %d, want 33", MsgCreateSessionResponse)
	}
	cause := Cause{Code: CauseRequestAccepted, Source: CauseSourceLocalNode}
	msg := Message{Type: MsgCreateSessionResponse, CreateSessionResponse: CreateSessionResponseMsg{Cause: cause}}

	buf := make([]byte, 64)
	n, err := msg.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, gn, err := decodeMessage(33, buf[:n])
	if err != nil {
		t.Fatalf("decodeMessage(33): %v", err)
	}
	if gn != n || got.Type != MsgCreateSessionResponse {
		t.Fatalf("got type %d, want CreateSessionResponse", got.Type)
	}
	if got.CreateSessionResponse.Cause.Code != CauseRequestAccepted {
		t.Fatalf("cause mismatch: %+v", got.CreateSessionResponse.Cause)
	}
}

func TestCreateSessionRequestRoundTrip(t *testing.T) {
	imsi, _ := NewIMSI("505013485090404", 0)
	ebi, _ := NewEBI(5, 0)
	qos, _ := NewBearerQoS(BearerQoS{QCI: 9, PriorityLevel: 1, MaxBitrateUplink: 100000, MaxBitrateDownlink: 100000})

	req := CreateSessionRequestMsg{
		IMSI:    &imsi,
		RATType: RATTypeIE{Value: RATEUTRAN},
		SenderFTEID: FTEID{
			Interface: InterfaceS11MmeGtpC,
			TEID:      0xAABBCCDD,
			IPv4:      net.ParseIP("10.0.0.1").To4(),
		},
		APN:  APN{Name: "internet.mnc001.mcc001.gprs"},
		AMBR: AMBR{UplinkKbps: 50000, DownlinkKbps: 100000},
		BearerContexts: []BearerContext{
			{EBI: ebi, BearerQoS: qos},
		},
	}
	msg := Message{Type: MsgCreateSessionRequest, CreateSessionRequest: req}
	p := NewPacket(msg, 0x11223344, true, 0x010203)

	buf := make([]byte, 1500)
	n, err := p.Generate(buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got, gn, err := ParsePacket(buf[:n])
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if gn != n {
		t.Fatalf("consumed %d, want %d", gn, n)
	}
	gotReq := got.Message.CreateSessionRequest
	if gotReq.IMSI == nil || gotReq.IMSI.Digits != "505013485090404" {
		t.Fatalf("IMSI mismatch: %+v", gotReq.IMSI)
	}
	if gotReq.SenderFTEID.TEID != 0xAABBCCDD {
		t.Fatalf("F-TEID mismatch: %+v", gotReq.SenderFTEID)
	}
	if len(gotReq.BearerContexts) != 1 || gotReq.BearerContexts[0].EBI.Value != 5 {
		t.Fatalf("BearerContexts mismatch: %+v", gotReq.BearerContexts)
	}
	if got.Header.TEID != 0x11223344 || got.Header.SequenceNumber != 0x010203 {
		t.Fatalf("header mismatch: %+v", got.Header)
	}
}

func TestCreateSessionRequestMissingMandatoryIE(t *testing.T) {
	imsi, _ := NewIMSI("505013485090404", 0)
	buf := make([]byte, 64)
	n, err := imsi.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, err := decodeCreateSessionRequest(buf[:n]); err == nil {
		t.Fatal("expected error for missing mandatory IEs")
	}
}
