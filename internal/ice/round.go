package ice

// subKey is the key material for a single round: the two halves XORed into
// the expanded input and the salt mask, in that order.
type subKey [3]uint32

// roundFunc is the ICE f function applied to one half of the block.
func roundFunc(p uint32, sk *subKey, t *sboxTable) uint32 {
	// Expand both 16-bit halves of p to 20 bits.
	tl := ((p >> 16) & 0x3FF) | (((p >> 14) | (p << 18)) & 0xFFC00)
	tr := (p & 0x3FF) | ((p << 2) & 0xFFC00)

	// Salt: swap the bits of tl and tr selected by the salt mask.
	al := sk[2] & (tl ^ tr)
	ar := al ^ tr
	al ^= tl

	al ^= sk[0]
	ar ^= sk[1]

	return t[0][al>>10] | t[1][al&0x3FF] | t[2][ar>>10] | t[3][ar&0x3FF]
}
