package field

import (
	"reflect"
	"testing"
)

func TestReadWriteU16(t *testing.T) {
	buf := make([]byte, 4)
	if err := WriteU16(buf, 1, 0x1234); err != nil {
		t.Fatalf("WriteU16: %v", err)
	}
	got, err := ReadU16(buf, 1)
	if err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	if got != 0x1234 {
		t.Fatalf("got %x, want 0x1234", got)
	}
}

func TestReadWriteU32ShortBuffer(t *testing.T) {
	buf := make([]byte, 2)
	if err := WriteU32(buf, 0, 1); err == nil {
		t.Fatal("expected error writing past buffer end")
	}
	if _, err := ReadU32(buf, 0); err == nil {
		t.Fatal("expected error reading past buffer end")
	}
}

func TestUintBERoundTrip40Bit(t *testing.T) {
	buf := make([]byte, 5)
	if err := WriteUintBE(buf, 0, 5, 10_000_000); err != nil {
		t.Fatalf("WriteUintBE: %v", err)
	}
	got, err := ReadUintBE(buf, 0, 5)
	if err != nil {
		t.Fatalf("ReadUintBE: %v", err)
	}
	if got != 10_000_000 {
		t.Fatalf("got %d, want 10000000", got)
	}
}

func TestTBCDRoundTripIMSI(t *testing.T) {
	digits, err := ASCIIToDigits("505013485090404")
	if err != nil {
		t.Fatalf("ASCIIToDigits: %v", err)
	}
	encoded, err := EncodeTBCD(digits, DigitFiller)
	if err != nil {
		t.Fatalf("EncodeTBCD: %v", err)
	}
	want := []byte{0x05, 0x05, 0x31, 0x84, 0x05, 0x09, 0x04, 0xF4}
	if !reflect.DeepEqual(encoded, want) {
		t.Fatalf("encoded = % x, want % x", encoded, want)
	}

	decoded := DecodeTBCD(encoded, DigitFiller)
	if DigitsToASCII(decoded) != "505013485090404" {
		t.Fatalf("decoded = %q", DigitsToASCII(decoded))
	}
}

func TestTBCDOddLengthMSISDN(t *testing.T) {
	digits, err := ASCIIToDigits("123456789")
	if err != nil {
		t.Fatalf("ASCIIToDigits: %v", err)
	}
	encoded, err := EncodeTBCD(digits, DigitFiller)
	if err != nil {
		t.Fatalf("EncodeTBCD: %v", err)
	}
	if len(encoded) != 5 {
		t.Fatalf("encoded len = %d, want 5", len(encoded))
	}
	decoded := DecodeTBCD(encoded, DigitFiller)
	if DigitsToASCII(decoded) != "123456789" {
		t.Fatalf("decoded = %q", DigitsToASCII(decoded))
	}
}

func TestTBCDRejectsNonDigit(t *testing.T) {
	if _, err := ASCIIToDigits("5f5013485090404"); err == nil {
		t.Fatal("expected error for non-digit character")
	}
}

func TestPLMNRoundTrip(t *testing.T) {
	p := PLMN{MCC: [3]byte{5, 0, 5}, MNC: [3]byte{0, 9, 9}}
	enc, err := EncodePLMN(p)
	if err != nil {
		t.Fatalf("EncodePLMN: %v", err)
	}
	got := DecodePLMN(enc)
	if got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestPLMNTwoDigitMNC(t *testing.T) {
	p := PLMN{MCC: [3]byte{2, 3, 4}, MNC: [3]byte{5, 6, TwoDigitMNCFiller}}
	enc, err := EncodePLMN(p)
	if err != nil {
		t.Fatalf("EncodePLMN: %v", err)
	}
	got := DecodePLMN(enc)
	if got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}
