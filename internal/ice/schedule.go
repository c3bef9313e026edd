package ice

// Key word rotation schedules for the forward and mirrored halves of the
// key schedule.
var (
	rotForward = [8]int{0, 1, 2, 3, 2, 1, 3, 0}
	rotMirror  = [8]int{1, 3, 2, 0, 3, 1, 0, 2}
)

// keySchedule holds one subKey per round.
type keySchedule []subKey

// newKeySchedule expands key into a schedule of the given number of rounds.
// The key must already have been checked against the cipher's key size.
func newKeySchedule(key []byte, rounds int) keySchedule {
	ks := make(keySchedule, rounds)

	var kb [4]uint16
	if rounds == 8 {
		loadKeyWords(&kb, key[:8])
		ks.buildBlock(&kb, 0, &rotForward)
		return ks
	}

	for i := 0; i < rounds/16; i++ {
		loadKeyWords(&kb, key[i*8:i*8+8])
		ks.buildBlock(&kb, i*8, &rotForward)
		ks.buildBlock(&kb, rounds-8-i*8, &rotMirror)
	}
	return ks
}

// loadKeyWords splits 8 key bytes into four big-endian words, last word first.
func loadKeyWords(kb *[4]uint16, seg []byte) {
	for i := 0; i < 4; i++ {
		kb[3-i] = uint16(seg[i*2])<<8 | uint16(seg[i*2+1])
	}
}

// buildBlock sets rounds [n, n+7] of the schedule. The key words are consumed
// as a circular bit buffer: each bit taken from the bottom of a word is fed
// back inverted into its top.
func (ks keySchedule) buildBlock(kb *[4]uint16, n int, rot *[8]int) {
	for i := 0; i < 8; i++ {
		kr := rot[i]
		sk := &ks[n+i]
		*sk = subKey{}

		for j := 0; j < 15; j++ {
			w := &sk[j%3]

			for k := 0; k < 4; k++ {
				kw := &kb[(kr+k)&3]
				bit := *kw & 1

				*w = (*w << 1) | uint32(bit)
				*kw = (*kw >> 1) | ((bit ^ 1) << 15)
			}
		}
	}
}

// wipe zeroes every subkey.
func (ks keySchedule) wipe() {
	for i := range ks {
		ks[i] = subKey{}
	}
}
