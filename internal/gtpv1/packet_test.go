package gtpv1

import (
	"bytes"
	"testing"
)

func TestS1EchoRoundTrip(t *testing.T) {
	p := NewPacket(Message{Type: MsgEchoRequest, EchoRequest: EchoRequestMsg{}}, 0)

	buf := make([]byte, 1500)
	n, err := p.Generate(buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []byte{0x30, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("encoded = % x, want % x", buf[:n], want)
	}

	got, gn, err := ParsePacket(buf[:n])
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if gn != n {
		t.Fatalf("consumed %d, want %d", gn, n)
	}
	if got.Header.TEID != 0 {
		t.Fatalf("TEID = %d, want 0", got.Header.TEID)
	}
	if got.Message.Type != MsgEchoRequest {
		t.Fatalf("message type = %d, want EchoRequest", got.Message.Type)
	}
}

func TestS2HeaderWithAllOptionals(t *testing.T) {
	h := Header{
		ProtocolType:   ProtocolTypeGTP,
		MessageType:    MsgEchoRequest,
		TEID:           0,
		SequenceNumber: 0x1234,
		HasSeq:         true,
		NPDUNumber:     0x12,
		HasNPDU:        true,
	}

	buf := make([]byte, 32)
	n, err := h.encode(buf, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x33, 0x01, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x12, 0x34, 0x12}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("encoded = % x, want % x", buf[:n], want)
	}

	got, gn, err := decodeHeader(buf[:n])
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if gn != n {
		t.Fatalf("consumed %d, want %d", gn, n)
	}
	if got.SequenceNumber != 0x1234 || got.NPDUNumber != 0x12 {
		t.Fatalf("got %+v", got)
	}
}

func TestS3ExtensionChainPushPop(t *testing.T) {
	c := &Chain{}
	c.Push(ExtHeader{Type: ExtMBMSSupportInd, Content: []byte{0x00}})
	c.Push(ExtHeader{Type: ExtSuspendRequest, Content: []byte{0x00}})
	c.Push(ExtHeader{Type: ExtPDCPPDUNumber, Content: []byte{0x12, 0x34}})
	if _, ok := c.Pop(); !ok {
		t.Fatal("expected pop to succeed")
	}

	if c.Len() != 2 {
		t.Fatalf("chain len = %d, want 2", c.Len())
	}
	if c.At(0).Next != ExtSuspendRequest {
		t.Fatalf("interior next = %x, want SuspendRequest", c.At(0).Next)
	}
	if c.At(1).Next != ExtNoMore {
		t.Fatalf("tail next = %x, want NoMore", c.At(1).Next)
	}

	buf := make([]byte, 32)
	n, err := c.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Each extension is padded to one 4-octet word: length, content, pad, next.
	want := []byte{
		0x01, 0x00, 0x00, byte(ExtSuspendRequest),
		0x01, 0x00, 0x00, byte(ExtNoMore),
	}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("encoded = % x, want % x", buf[:n], want)
	}
}

func TestS4GPDUInnerIPv4(t *testing.T) {
	inner := make([]byte, 84)
	for i := range inner {
		inner[i] = byte(i)
	}

	p := NewPacket(Message{Type: MsgGPDU, GPDU: GPDUMsg{Payload: inner}}, 0x87654321)

	buf := make([]byte, 1500)
	n, err := p.Generate(buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wantHeader := []byte{0x30, 0xFF, 0x00, 0x54, 0x87, 0x65, 0x43, 0x21}
	if !bytes.Equal(buf[:8], wantHeader) {
		t.Fatalf("header = % x, want % x", buf[:8], wantHeader)
	}

	got, gn, err := ParsePacket(buf[:n])
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if gn != n {
		t.Fatalf("consumed %d, want %d", gn, n)
	}
	if got.Header.TEID != 0x87654321 {
		t.Fatalf("TEID = %x", got.Header.TEID)
	}
	if !bytes.Equal(got.Message.GPDU.Payload, inner) {
		t.Fatal("GPDU payload mismatch")
	}
}

func TestCreatePDPContextRequestRoundTrip(t *testing.T) {
	imsi, err := NewIMSI("505013485090404")
	if err != nil {
		t.Fatalf("NewIMSI: %v", err)
	}
	nsapi, err := NewNSAPI(5)
	if err != nil {
		t.Fatalf("NewNSAPI: %v", err)
	}
	gsnSig, err := NewGSNAddress([]byte{10, 0, 0, 1})
	if err != nil {
		t.Fatalf("NewGSNAddress: %v", err)
	}
	gsnUser, err := NewGSNAddress([]byte{10, 0, 0, 2})
	if err != nil {
		t.Fatalf("NewGSNAddress: %v", err)
	}

	msg := Message{
		Type: MsgCreatePDPContextReq,
		CreatePDPContextRequest: CreatePDPContextRequestMsg{
			IMSI:                      &imsi,
			TEIDDataI:                 TEIDDataI{TEID: 0x11111111},
			TEIDControlPlane:          TEIDDataI{TEID: 0x22222222},
			NSAPI:                     nsapi,
			APN:                       APN{Name: "internet.mnc001.mcc001.gprs"},
			SGSNAddressForSignalling:  gsnSig,
			SGSNAddressForUserTraffic: gsnUser,
			QoSProfile: QoSProfile{
				AllocationRetentionPriority: 2,
				DelayClass:                  1,
				ReliabilityClass:            1,
				PeakThroughput:              4,
				PrecedenceClass:             2,
				MeanThroughput:              31,
			},
		},
	}

	p := NewPacket(msg, 0)
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
	c := got.Message.CreatePDPContextRequest
	if c.IMSI == nil || c.IMSI.Digits != "505013485090404" {
		t.Fatalf("IMSI mismatch: %+v", c.IMSI)
	}
	if c.TEIDDataI.TEID != 0x11111111 || c.TEIDControlPlane.TEID != 0x22222222 {
		t.Fatalf("TEID mismatch: %+v", c)
	}
	if c.NSAPI.Value != 5 {
		t.Fatalf("NSAPI mismatch: %+v", c.NSAPI)
	}
	if c.APN.Name != "internet.mnc001.mcc001.gprs" {
		t.Fatalf("APN mismatch: %q", c.APN.Name)
	}
	if !c.SGSNAddressForSignalling.IP.Equal(gsnSig.IP) || !c.SGSNAddressForUserTraffic.IP.Equal(gsnUser.IP) {
		t.Fatalf("GSN address mismatch: %+v", c)
	}
}

func TestCreatePDPContextRequestMissingMandatoryIE(t *testing.T) {
	// TEID Control Plane, NSAPI, APN, QoS Profile all absent: decode must
	// fail rather than silently accept a partial message.
	imsi, _ := NewIMSI("505013485090404")
	buf := make([]byte, 64)
	n, err := imsi.encode(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, err := decodeCreatePDPContextRequest(buf[:n]); err == nil {
		t.Fatal("expected error for missing mandatory IEs")
	}
}
