package gtpv2

import (
	"fmt"

	"github.com/your-org/gtp-tunnel/internal/field"
)

// ULI is the User Location Information IE: a bitmask of which of the eight
// TS 23.003 location fields are present, each carried in the fixed wire
// order CGI, SAI, RAI, TAI, ECGI, LAI, MeNBID, EMeNBID (matching the flag
// octet's bit order, low bit first).
type ULI struct {
	Instance uint8

	CGI    *CGI
	SAI    *SAI
	RAI    *RAI
	TAI    *TAI
	ECGI   *ECGI
	LAI    *LAI
	MeNBID *MeNBID
	EMeNBID *EMeNBID
}

// CGI is the Cell Global Identity.
type CGI struct {
	PLMN field.PLMN
	LAC  uint16
	CI   uint16
}

// SAI is the Service Area Identity.
type SAI struct {
	PLMN field.PLMN
	LAC  uint16
	SAC  uint16
}

// RAI is the Routing Area Identity.
type RAI struct {
	PLMN field.PLMN
	LAC  uint16
	RAC  uint16
}

// TAI is the Tracking Area Identity.
type TAI struct {
	PLMN field.PLMN
	TAC  uint16
}

// ECGI is the E-UTRAN Cell Global Identity (28-bit E-UTRAN Cell ID in the
// low bits of a 4-byte field).
type ECGI struct {
	PLMN field.PLMN
	ECI  uint32 // low 28 bits significant
}

// LAI is the Location Area Identity.
type LAI struct {
	PLMN field.PLMN
	LAC  uint16
}

// MeNBID is the Macro eNodeB ID (20 significant bits).
type MeNBID struct {
	PLMN field.PLMN
	ID   uint32 // low 20 bits significant
}

// EMeNBID is the Extended/Home eNodeB ID (21 significant bits).
type EMeNBID struct {
	PLMN field.PLMN
	ID   uint32 // low 21 bits significant
}

func NewMeNBID(plmn field.PLMN, id uint32) (MeNBID, error) {
	if id > 0xFFFFF {
		return MeNBID{}, fmt.Errorf("gtpv2: MeNBID: id out of range: %d", id)
	}
	return MeNBID{PLMN: plmn, ID: id}, nil
}

func NewEMeNBID(plmn field.PLMN, id uint32) (EMeNBID, error) {
	if id > 0x1FFFFF {
		return EMeNBID{}, fmt.Errorf("gtpv2: EMeNBID: id out of range: %d", id)
	}
	return EMeNBID{PLMN: plmn, ID: id}, nil
}

const (
	uliFlagCGI uint8 = 1 << iota
	uliFlagSAI
	uliFlagRAI
	uliFlagTAI
	uliFlagECGI
	uliFlagLAI
	uliFlagMeNBID
	uliFlagEMeNBID
)

func (v ULI) flags() uint8 {
	var f uint8
	if v.CGI != nil {
		f |= uliFlagCGI
	}
	if v.SAI != nil {
		f |= uliFlagSAI
	}
	if v.RAI != nil {
		f |= uliFlagRAI
	}
	if v.TAI != nil {
		f |= uliFlagTAI
	}
	if v.ECGI != nil {
		f |= uliFlagECGI
	}
	if v.LAI != nil {
		f |= uliFlagLAI
	}
	if v.MeNBID != nil {
		f |= uliFlagMeNBID
	}
	if v.EMeNBID != nil {
		f |= uliFlagEMeNBID
	}
	return f
}

func (v ULI) bodyLen() int {
	n := 1
	if v.CGI != nil {
		n += 7
	}
	if v.SAI != nil {
		n += 7
	}
	if v.RAI != nil {
		n += 7
	}
	if v.TAI != nil {
		n += 5
	}
	if v.ECGI != nil {
		n += 7
	}
	if v.LAI != nil {
		n += 5
	}
	if v.MeNBID != nil {
		n += 6
	}
	if v.EMeNBID != nil {
		n += 6
	}
	return n
}

func (v ULI) length() int { return ieHeaderLen + v.bodyLen() }

func putPLMN(buf []byte, pos int, plmn field.PLMN) (int, error) {
	packed, err := field.EncodePLMN(plmn)
	if err != nil {
		return 0, err
	}
	copy(buf[pos:], packed[:])
	return pos + 3, nil
}

func getPLMN(buf []byte, pos int) field.PLMN {
	var raw [3]byte
	copy(raw[:], buf[pos:pos+3])
	return field.DecodePLMN(raw)
}

func (v ULI) encode(buf []byte) (int, error) {
	body := v.bodyLen()
	if err := encodeIEHeader(buf, IEULI, body, v.Instance); err != nil {
		return 0, err
	}
	pos := ieHeaderLen
	buf[pos] = v.flags()
	pos++

	var err error
	if v.CGI != nil {
		if pos, err = putPLMN(buf, pos, v.CGI.PLMN); err != nil {
			return 0, err
		}
		field.WriteU16(buf, pos, v.CGI.LAC)
		field.WriteU16(buf, pos+2, v.CGI.CI)
		pos += 4
	}
	if v.SAI != nil {
		if pos, err = putPLMN(buf, pos, v.SAI.PLMN); err != nil {
			return 0, err
		}
		field.WriteU16(buf, pos, v.SAI.LAC)
		field.WriteU16(buf, pos+2, v.SAI.SAC)
		pos += 4
	}
	if v.RAI != nil {
		if pos, err = putPLMN(buf, pos, v.RAI.PLMN); err != nil {
			return 0, err
		}
		field.WriteU16(buf, pos, v.RAI.LAC)
		field.WriteU16(buf, pos+2, v.RAI.RAC)
		pos += 4
	}
	if v.TAI != nil {
		if pos, err = putPLMN(buf, pos, v.TAI.PLMN); err != nil {
			return 0, err
		}
		field.WriteU16(buf, pos, v.TAI.TAC)
		pos += 2
	}
	if v.ECGI != nil {
		if pos, err = putPLMN(buf, pos, v.ECGI.PLMN); err != nil {
			return 0, err
		}
		field.WriteU32(buf, pos, v.ECGI.ECI&0x0FFFFFFF)
		pos += 4
	}
	if v.LAI != nil {
		if pos, err = putPLMN(buf, pos, v.LAI.PLMN); err != nil {
			return 0, err
		}
		field.WriteU16(buf, pos, v.LAI.LAC)
		pos += 2
	}
	if v.MeNBID != nil {
		if pos, err = putPLMN(buf, pos, v.MeNBID.PLMN); err != nil {
			return 0, err
		}
		id := v.MeNBID.ID & 0xFFFFF
		buf[pos] = byte(id >> 16)
		buf[pos+1] = byte(id >> 8)
		buf[pos+2] = byte(id)
		pos += 3
	}
	if v.EMeNBID != nil {
		if pos, err = putPLMN(buf, pos, v.EMeNBID.PLMN); err != nil {
			return 0, err
		}
		id := v.EMeNBID.ID & 0x1FFFFF
		if v.EMeNBID.ID < 0x3FFFF {
			// Short (18-bit) Macro eNB ID: flag it with the SMeNB bit (23).
			id |= 1 << 23
		}
		buf[pos] = byte(id >> 16)
		buf[pos+1] = byte(id >> 8)
		buf[pos+2] = byte(id)
		pos += 3
	}
	return pos, nil
}

func decodeULI(buf []byte) (ULI, int, error) {
	length, instance, total, err := decodeIEHeader(buf)
	if err != nil {
		return ULI{}, 0, err
	}
	if length < 1 || len(buf) < total {
		return ULI{}, 0, fmt.Errorf("gtpv2: ULI: %w", field.ErrShortBuffer)
	}
	pos := ieHeaderLen
	flags := buf[pos]
	pos++
	v := ULI{Instance: instance}

	need := func(n int) error {
		if total-pos < n {
			return fmt.Errorf("gtpv2: ULI: %w", field.ErrShortBuffer)
		}
		return nil
	}

	if flags&uliFlagCGI != 0 {
		if err := need(7); err != nil {
			return ULI{}, 0, err
		}
		lac, _ := field.ReadU16(buf, pos+3)
		ci, _ := field.ReadU16(buf, pos+5)
		v.CGI = &CGI{PLMN: getPLMN(buf, pos), LAC: lac, CI: ci}
		pos += 7
	}
	if flags&uliFlagSAI != 0 {
		if err := need(7); err != nil {
			return ULI{}, 0, err
		}
		lac, _ := field.ReadU16(buf, pos+3)
		sac, _ := field.ReadU16(buf, pos+5)
		v.SAI = &SAI{PLMN: getPLMN(buf, pos), LAC: lac, SAC: sac}
		pos += 7
	}
	if flags&uliFlagRAI != 0 {
		if err := need(7); err != nil {
			return ULI{}, 0, err
		}
		lac, _ := field.ReadU16(buf, pos+3)
		rac, _ := field.ReadU16(buf, pos+5)
		v.RAI = &RAI{PLMN: getPLMN(buf, pos), LAC: lac, RAC: rac}
		pos += 7
	}
	if flags&uliFlagTAI != 0 {
		if err := need(5); err != nil {
			return ULI{}, 0, err
		}
		tac, _ := field.ReadU16(buf, pos+3)
		v.TAI = &TAI{PLMN: getPLMN(buf, pos), TAC: tac}
		pos += 5
	}
	if flags&uliFlagECGI != 0 {
		if err := need(7); err != nil {
			return ULI{}, 0, err
		}
		eci, _ := field.ReadU32(buf, pos+3)
		v.ECGI = &ECGI{PLMN: getPLMN(buf, pos), ECI: eci & 0x0FFFFFFF}
		pos += 7
	}
	if flags&uliFlagLAI != 0 {
		if err := need(5); err != nil {
			return ULI{}, 0, err
		}
		lac, _ := field.ReadU16(buf, pos+3)
		v.LAI = &LAI{PLMN: getPLMN(buf, pos), LAC: lac}
		pos += 5
	}
	if flags&uliFlagMeNBID != 0 {
		if err := need(6); err != nil {
			return ULI{}, 0, err
		}
		id := uint32(buf[pos+3])<<16 | uint32(buf[pos+4])<<8 | uint32(buf[pos+5])
		v.MeNBID = &MeNBID{PLMN: getPLMN(buf, pos), ID: id & 0xFFFFF}
		pos += 6
	}
	if flags&uliFlagEMeNBID != 0 {
		if err := need(6); err != nil {
			return ULI{}, 0, err
		}
		raw := uint32(buf[pos+3])<<16 | uint32(buf[pos+4])<<8 | uint32(buf[pos+5])
		var id uint32
		if raw&(1<<23) != 0 {
			id = raw & 0x3FFFF // short (SMeNB) form: 18 significant bits
		} else {
			id = raw & 0x1FFFFF // long form: 21 significant bits
		}
		v.EMeNBID = &EMeNBID{PLMN: getPLMN(buf, pos), ID: id}
		pos += 6
	}
	return v, total, nil
}
