package k4

// checksumSeed is added to the byte sum of every K4 record.
const checksumSeed = 0xA5

// Checksum computes the 7-bit checksum of data: the sum of all bytes plus
// 0xA5, keeping the low seven bits.
func Checksum(data []byte) byte {
	sum := checksumSeed
	for _, b := range data {
		sum += int(b)
	}
	return byte(sum & 0x7F)
}

// validChecksum reports whether the last byte of rec matches the checksum of
// the bytes before it.
func validChecksum(rec []byte) bool {
	if len(rec) == 0 {
		return false
	}
	n := len(rec) - 1
	return Checksum(rec[:n]) == rec[n]
}
