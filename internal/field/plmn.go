package field

import "fmt"

// PLMN is a Mobile Country Code / Mobile Network Code pair, each digit
// stored separately so a 2-digit MNC can be told apart from a 3-digit one
// the caller supplies explicitly.
type PLMN struct {
	MCC [3]byte // MCC1, MCC2, MCC3
	MNC [3]byte // MNC1, MNC2, MNC3; MNC3 = 0xF sentinel for a 2-digit MNC
}

// TwoDigitMNCFiller marks MNC3 absent (2-digit MNC) on the wire.
const TwoDigitMNCFiller byte = 0xF

// EncodePLMN packs MCC/MNC across 3 octets:
// octet0 = (MCC2<<4)|MCC1, octet1 = (MNC3<<4)|MCC3, octet2 = (MNC2<<4)|MNC1.
func EncodePLMN(p PLMN) ([3]byte, error) {
	for _, d := range p.MCC {
		if d > 9 {
			return [3]byte{}, fmt.Errorf("field: MCC digit out of range: %d", d)
		}
	}
	for i, d := range p.MNC {
		if i == 2 && d == TwoDigitMNCFiller {
			continue
		}
		if d > 9 {
			return [3]byte{}, fmt.Errorf("field: MNC digit out of range: %d", d)
		}
	}

	var out [3]byte
	out[0] = (p.MCC[1] << 4) | (p.MCC[0] & 0xF)
	out[1] = (p.MNC[2] << 4) | (p.MCC[2] & 0xF)
	out[2] = (p.MNC[1] << 4) | (p.MNC[0] & 0xF)
	return out, nil
}

// DecodePLMN unpacks 3 PLMN octets into MCC/MNC digits.
func DecodePLMN(buf [3]byte) PLMN {
	var p PLMN
	p.MCC[0] = buf[0] & 0xF
	p.MCC[1] = (buf[0] >> 4) & 0xF
	p.MCC[2] = buf[1] & 0xF
	p.MNC[2] = (buf[1] >> 4) & 0xF
	p.MNC[0] = buf[2] & 0xF
	p.MNC[1] = (buf[2] >> 4) & 0xF
	return p
}
