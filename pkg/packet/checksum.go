package packet

// Checksum computes the additive checksum used throughout the protocol:
// the byte sum seeded with 0xBEAF, truncated modulo 0x10000. The result
// depends only on the multiset of byte values, not their order.
func Checksum(data []byte) uint16 {
	sum := uint32(ChecksumSeed)
	for _, b := range data {
		sum += uint32(b)
	}
	return uint16(sum)
}
