package field

import "fmt"

// DigitFiller is the nibble value used to pad an odd-length TBCD string.
const DigitFiller byte = 0xF

// EncodeTBCD packs a sequence of decimal digits (each 0..=9) into
// nibble-swapped TBCD octets: digit 2k lands in the low nibble of octet k,
// digit 2k+1 in the high nibble. An odd-length input pads the final high
// nibble with filler (0xF for ordinary TBCD strings, or the 4-bit
// software-version nibble for IMEI-SV).
func EncodeTBCD(digits []byte, filler byte) ([]byte, error) {
	for _, d := range digits {
		if d > 9 {
			return nil, fmt.Errorf("field: tbcd digit out of range: %d", d)
		}
	}

	out := make([]byte, (len(digits)+1)/2)
	for i := 0; i < len(out); i++ {
		lo := digits[2*i]
		hi := filler & 0xF
		if 2*i+1 < len(digits) {
			hi = digits[2*i+1]
		}
		out[i] = (hi << 4) | (lo & 0xF)
	}
	return out, nil
}

// DecodeTBCD unpacks TBCD octets into decimal digits. If the final nibble of
// the last octet equals the filler value it is dropped, recovering an
// odd-length digit sequence.
func DecodeTBCD(buf []byte, filler byte) []byte {
	digits := make([]byte, 0, len(buf)*2)
	for _, b := range buf {
		lo := b & 0xF
		hi := (b >> 4) & 0xF
		digits = append(digits, lo)
		if hi != (filler & 0xF) {
			digits = append(digits, hi)
		}
	}
	return digits
}

// DigitsToASCII renders a digit sequence (each 0..=9) as a decimal string.
func DigitsToASCII(digits []byte) string {
	out := make([]byte, len(digits))
	for i, d := range digits {
		out[i] = '0' + d
	}
	return string(out)
}

// ASCIIToDigits parses a decimal string into a digit sequence, rejecting any
// non-digit character.
func ASCIIToDigits(s string) ([]byte, error) {
	digits := make([]byte, len(s))
	for i, c := range []byte(s) {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("field: non-digit character %q in TBCD string", c)
		}
		digits[i] = c - '0'
	}
	return digits, nil
}
