package k4

// Field locates one parameter inside a record buffer. The stored bits are
// (buf[Offset] >> Shift) & Mask and the parameter value is that plus
// Correction.
//
// Split fields hold an 8-bit quantity in two bytes: bit 0 of HiOffset is the
// top bit and the low seven bits of Offset are the rest.
type Field struct {
	Name       string
	Offset     int
	Shift      uint
	Mask       byte
	Correction int
	HiOffset   int
	Split      bool

	// Lo and Hi are the values the K4 accepts when Ranged is set. Otherwise
	// the range is everything the bits can hold.
	Lo, Hi int
	Ranged bool
}

func field(name string, offset int, shift uint, mask byte, correction int) Field {
	return Field{Name: name, Offset: offset, Shift: shift, Mask: mask, Correction: correction}
}

func splitField(name string, lo, hi int) Field {
	return Field{Name: name, Offset: lo, Mask: 0xFF, HiOffset: hi, Split: true}
}

// limit narrows the accepted range to lo..hi.
func (f Field) limit(lo, hi int) Field {
	f.Lo, f.Hi, f.Ranged = lo, hi, true
	return f
}

// Min returns the smallest value the K4 accepts for the field.
func (f Field) Min() int {
	if f.Ranged {
		return f.Lo
	}
	return f.Correction
}

// Max returns the largest value the K4 accepts for the field.
func (f Field) Max() int {
	if f.Ranged {
		return f.Hi
	}
	return int(f.Mask) + f.Correction
}

// Get reads the field from buf.
func (f Field) Get(buf []byte) int {
	if f.Split {
		return int(buf[f.HiOffset]&0x01)<<7 | int(buf[f.Offset]&0x7F) + f.Correction
	}
	return int((buf[f.Offset]>>f.Shift)&f.Mask) + f.Correction
}

// Set writes value into buf. Values the bits cannot hold are truncated;
// this is a quantization of the value, not an error. Min and Max are not
// enforced here. Bits of the byte outside the field are preserved. Set does
// not touch the checksum; Record.Set does.
func (f Field) Set(buf []byte, value int) {
	raw := value - f.Correction
	if f.Split {
		buf[f.HiOffset] = buf[f.HiOffset]&^0x01 | byte(raw>>7)&0x01
		buf[f.Offset] = buf[f.Offset]&^0x7F | byte(raw)&0x7F
		return
	}
	b := buf[f.Offset] &^ (f.Mask << f.Shift)
	buf[f.Offset] = b | (byte(raw)&f.Mask)<<f.Shift
}

// at returns a copy of f moved delta bytes further and renamed.
func (f Field) at(delta int, name string) Field {
	f.Offset += delta
	if f.Split {
		f.HiOffset += delta
	}
	f.Name = name
	return f
}
